package bench

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// fakeClient answers prompts with canned replies and records every call.
type fakeClient struct {
	mu      sync.Mutex
	prompts []string
	systems []string
	reply   func(ctx context.Context, prompt string) (string, error)
}

func (f *fakeClient) Complete(ctx context.Context, prompt, systemPrompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.systems = append(f.systems, systemPrompt)
	f.mu.Unlock()
	return f.reply(ctx, prompt)
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeClient) promptsContaining(s string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, p := range f.prompts {
		if strings.Contains(p, s) {
			out = append(out, p)
		}
	}
	return out
}

const synthesisMarker = "CHIEF JUSTICE AGENT"

// dimensionOf returns the dimension a prompt was rendered for, or "" for other prompts.
func dimensionOf(prompt string) string {
	if strings.Contains(prompt, synthesisMarker) {
		return ""
	}
	for _, d := range DefaultPrompts().Dimensions {
		if strings.Contains(prompt, fmt.Sprintf("%q: %q", "agent", d.Agent)) {
			return d.Name
		}
	}
	return ""
}

func opinionReply(name string) string {
	d, _ := DefaultPrompts().Dimension(name)
	return fmt.Sprintf("Here is my analysis:\n"+
		`{"agent":%q,"principle":%q,"stance":"reject","score":35,`+
		`"findings":[{"issue":"Limited tender above threshold","severity":"critical","rule_violated":"GFR 149","evidence":"value 50 lakh"}],`+
		`"recommendation":"Cancel and re-tender (%s)","citizen_explanation":"The rules were not followed."}`+
		"\nI hope this helps.", d.Agent, d.Principle, name)
}

const verdictReply = `{"verdict":"REJECT","constitutional_score":32,` +
	`"score_breakdown":{"transparency":40,"equity":30,"legality":20,"accountability":45,"social_justice":50},` +
	`"critical_issues":["Wrong procurement method"],"mandatory_actions":["Re-tender as open tender"],` +
	`"citizen_summary":"The purchase skipped open bidding."}`

// scripted replies to dimension prompts with opinions and to synthesis with a verdict.
func scripted() *fakeClient {
	return &fakeClient{reply: func(ctx context.Context, prompt string) (string, error) {
		if name := dimensionOf(prompt); name != "" {
			return opinionReply(name), nil
		}
		return verdictReply, nil
	}}
}
