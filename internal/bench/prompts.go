package bench

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Dimension is one evaluation axis with its own prompt and synthesis weight.
type Dimension struct {
	Name         string `yaml:"name"`
	Title        string `yaml:"title"`
	Agent        string `yaml:"agent"`
	Principle    string `yaml:"principle"`
	Weight       int    `yaml:"weight"`
	Instructions string `yaml:"instructions"`
}

// Band maps an aggregate score range to a decision.
type Band struct {
	Min      int    `yaml:"min"`
	Max      int    `yaml:"max"`
	Decision string `yaml:"decision"`
	Action   string `yaml:"action"`
}

// SynthesisPolicy is the weighting and override policy given to the synthesis call.
type SynthesisPolicy struct {
	Header     string   `yaml:"header"`
	Bands      []Band   `yaml:"bands"`
	AutoReject []string `yaml:"auto_reject"`
	Closing    string   `yaml:"closing"`
}

// Prompts is the full prompt set. It is read-only once loaded.
type Prompts struct {
	Preamble      string          `yaml:"preamble"`
	OpinionFormat string          `yaml:"opinion_format"`
	Closing       string          `yaml:"closing"`
	Dimensions    []Dimension     `yaml:"dimensions"`
	Synthesis     SynthesisPolicy `yaml:"synthesis"`
	TenderParser  string          `yaml:"tender_parser"`
	BenchChat     string          `yaml:"bench_chat"`
}

// LoadPrompts parses and checks a prompt document.
func LoadPrompts(data []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	if err := p.check(); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	return &p, nil
}

func (p *Prompts) check() error {
	if strings.TrimSpace(p.Preamble) == "" {
		return errors.New("preamble is empty")
	}
	if len(p.Dimensions) == 0 {
		return errors.New("no dimensions")
	}
	seen := make(map[string]bool, len(p.Dimensions))
	total := 0
	for _, d := range p.Dimensions {
		if d.Name == "" {
			return errors.New("dimension without name")
		}
		if seen[d.Name] {
			return fmt.Errorf("duplicate dimension %q", d.Name)
		}
		seen[d.Name] = true
		if strings.TrimSpace(d.Instructions) == "" {
			return fmt.Errorf("dimension %q has no instructions", d.Name)
		}
		if d.Weight <= 0 {
			return fmt.Errorf("dimension %q has non-positive weight", d.Name)
		}
		total += d.Weight
	}
	if total != 100 {
		return fmt.Errorf("dimension weights sum to %d, want 100", total)
	}
	if len(p.Synthesis.Bands) == 0 {
		return errors.New("synthesis has no decision bands")
	}
	return nil
}

var defaultPrompts = sync.OnceValue(func() *Prompts {
	p, err := LoadPrompts(promptsYAML)
	if err != nil {
		panic(err)
	}
	return p
})

// DefaultPrompts returns the embedded prompt set.
func DefaultPrompts() *Prompts {
	return defaultPrompts()
}

// DimensionNames returns dimension names in configured order.
func (p *Prompts) DimensionNames() []string {
	out := make([]string, len(p.Dimensions))
	for i, d := range p.Dimensions {
		out[i] = d.Name
	}
	return out
}

// Dimension looks up a dimension by name.
func (p *Prompts) Dimension(name string) (Dimension, bool) {
	for _, d := range p.Dimensions {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

// Decisions returns the decision tags from the band table, highest band first.
func (p *Prompts) Decisions() []string {
	out := make([]string, len(p.Synthesis.Bands))
	for i, b := range p.Synthesis.Bands {
		out[i] = b.Decision
	}
	return out
}
