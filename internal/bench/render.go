package bench

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"nyaya-backend/internal/decode"
)

// render joins prompt parts with a blank line, skipping empty parts.
func render(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// DimensionPrompt renders the opinion request for one dimension: preamble,
// dimension instructions, legal context, then the case.
func (p *Prompts) DimensionPrompt(d Dimension, legalContext, caseText string) string {
	format := strings.NewReplacer("{agent}", d.Agent, "{principle}", d.Principle).Replace(p.OpinionFormat)
	return render(
		p.Preamble,
		render(d.Instructions, format),
		"LEGAL CONTEXT:\n"+legalContext,
		"CASE TO ANALYZE:\n"+caseText,
		p.Closing,
	)
}

// SynthesisPrompt renders the verdict request. Opinions are emitted in dimension
// order, so the prompt does not depend on the order calls finished in.
func (p *Prompts) SynthesisPrompt(caseText string, opinions map[string]decode.Result) (string, error) {
	var ops strings.Builder
	ops.WriteString("AGENT OPINIONS:")
	for _, d := range p.Dimensions {
		op, ok := opinions[d.Name]
		if !ok {
			return "", fmt.Errorf("missing opinion for dimension %q", d.Name)
		}
		data, err := json.Marshal(op)
		if err != nil {
			return "", fmt.Errorf("encode %s opinion: %w", d.Name, err)
		}
		fmt.Fprintf(&ops, "\n%s: %s", d.Title, data)
	}
	return render(p.Synthesis.Header, p.policyText(), p.verdictFormat(), caseText, ops.String(), p.Synthesis.Closing), nil
}

func (p *Prompts) policyText() string {
	dims := append([]Dimension(nil), p.Dimensions...)
	sort.SliceStable(dims, func(i, j int) bool { return dims[i].Weight > dims[j].Weight })

	var b strings.Builder
	b.WriteString("SCORING WEIGHTS:\n")
	for _, d := range dims {
		fmt.Fprintf(&b, "- %s: %d%%\n", d.Title, d.Weight)
	}

	b.WriteString("\nDECISION MATRIX:\n")
	b.WriteString("| Score  | Decision    | Action                    |\n")
	b.WriteString("|--------|-------------|---------------------------|\n")
	for _, band := range p.Synthesis.Bands {
		fmt.Fprintf(&b, "| %-6s | %-11s | %-25s |\n", fmt.Sprintf("%d-%d", band.Min, band.Max), band.Decision, band.Action)
	}

	if len(p.Synthesis.AutoReject) > 0 {
		b.WriteString("\nAUTO-REJECT (regardless of score) IF:\n")
		for _, cond := range p.Synthesis.AutoReject {
			fmt.Fprintf(&b, "- %s\n", cond)
		}
	}
	return b.String()
}

func (p *Prompts) verdictFormat() string {
	var b strings.Builder
	b.WriteString("RESPOND IN JSON:\n{\n")
	fmt.Fprintf(&b, "    \"verdict\": \"%s\",\n", strings.Join(p.Decisions(), "|"))
	b.WriteString("    \"constitutional_score\": 0-100,\n")
	b.WriteString("    \"score_breakdown\": {\n")
	for i, d := range p.Dimensions {
		sep := ","
		if i == len(p.Dimensions)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "        %q: X%s\n", d.Name, sep)
	}
	b.WriteString("    },\n")
	b.WriteString("    \"critical_issues\": [\"list of major problems\"],\n")
	b.WriteString("    \"mandatory_actions\": [\"what must be done\"],\n")
	b.WriteString("    \"citizen_summary\": \"2-3 sentence explanation for public\"\n")
	b.WriteString("}")
	return b.String()
}

// TenderPrompt renders the tender extraction request.
func (p *Prompts) TenderPrompt(text string) string {
	return render(p.TenderParser, "TENDER TEXT:\n"+text)
}

// BenchPrompt renders a cross-examination question with the case and result as context.
func (p *Prompts) BenchPrompt(question string, caseJSON, resultJSON []byte) string {
	return render(
		"CASE FACTS:\n"+string(caseJSON),
		"BENCH ANALYSIS:\n"+string(resultJSON),
		"QUESTION:\n"+question,
	)
}
