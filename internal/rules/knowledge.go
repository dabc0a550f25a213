// Package rules holds the static procurement rule excerpts that ground every prompt,
// and deterministic advisory checks over a case.
package rules

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"nyaya-backend/internal/procurement"
)

//go:embed knowledge.yaml
var knowledgeYAML []byte

// Rule is one excerpt of the General Financial Rules or the Constitution.
type Rule struct {
	ID        string `yaml:"id"`
	Label     string `yaml:"label"`
	Title     string `yaml:"title"`
	Content   string `yaml:"content"`
	MinDays   int    `yaml:"min_days"`
	Relevance string `yaml:"relevance"`
}

// KnowledgeBase is read-only after load.
type KnowledgeBase struct {
	OpenTenderThreshold   float64 `yaml:"open_tender_threshold"`
	TechnicalBidThreshold float64 `yaml:"technical_bid_threshold"`
	MSMEPreferenceBand    float64 `yaml:"msme_preference_band"`
	Rules                 []Rule  `yaml:"rules"`
	Articles              []Rule  `yaml:"articles"`

	byID map[string]Rule
}

// Load parses a knowledge base document.
func Load(data []byte) (*KnowledgeBase, error) {
	var kb KnowledgeBase
	if err := yaml.Unmarshal(data, &kb); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	kb.byID = make(map[string]Rule, len(kb.Rules)+len(kb.Articles))
	for _, r := range append(append([]Rule{}, kb.Rules...), kb.Articles...) {
		if r.ID == "" {
			return nil, fmt.Errorf("parse knowledge base: rule without id")
		}
		kb.byID[r.ID] = r
	}
	for _, id := range []string{"rule_149", "rule_150", "rule_161", "rule_166", "article_14", "article_19"} {
		if _, ok := kb.byID[id]; !ok {
			return nil, fmt.Errorf("parse knowledge base: missing %s", id)
		}
	}
	if kb.OpenTenderThreshold <= 0 {
		return nil, fmt.Errorf("parse knowledge base: open_tender_threshold must be positive")
	}
	return &kb, nil
}

var defaultKB = sync.OnceValue(func() *KnowledgeBase {
	kb, err := Load(knowledgeYAML)
	if err != nil {
		panic(err)
	}
	return kb
})

// Default returns the embedded knowledge base.
func Default() *KnowledgeBase {
	return defaultKB()
}

// Rule returns the excerpt with the given id.
func (kb *KnowledgeBase) Rule(id string) (Rule, bool) {
	r, ok := kb.byID[id]
	return r, ok
}

// Context selects the excerpts that apply to a case of the given value and method.
// The output depends only on its inputs.
func (kb *KnowledgeBase) Context(estimatedValue float64, method procurement.Method) string {
	ids := make([]string, 0, 5)
	if estimatedValue >= kb.OpenTenderThreshold {
		ids = append(ids, "rule_149")
	} else {
		ids = append(ids, "rule_150")
	}
	ids = append(ids, "rule_161")
	if method == procurement.MethodSingleSource {
		ids = append(ids, "rule_166")
	}
	ids = append(ids, "article_14", "article_19")

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		r := kb.byID[id]
		parts = append(parts, r.Label+": "+strings.TrimSpace(r.Content))
	}
	return strings.Join(parts, "\n\n")
}

// Context is Default().Context.
func Context(estimatedValue float64, method procurement.Method) string {
	return Default().Context(estimatedValue, method)
}
