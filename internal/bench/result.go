package bench

import (
	"nyaya-backend/internal/decode"
	"nyaya-backend/internal/rules"
)

// AnalysisResult is the outcome of one review. Opinions and the verdict are
// carried as decoded objects or parse-failure sentinels.
type AnalysisResult struct {
	CaseID        string                   `json:"case_id"`
	AgentOpinions map[string]decode.Result `json:"agent_opinions"`
	Verdict       decode.Result            `json:"verdict"`
	RuleChecks    []rules.Finding          `json:"rule_checks"`
}

// OpinionFinding is one issue raised by a dimension.
type OpinionFinding struct {
	Issue        string `json:"issue"`
	Severity     string `json:"severity"`
	RuleViolated string `json:"rule_violated"`
	Evidence     string `json:"evidence"`
}

// AgentOpinion is the typed view of a decoded dimension reply.
type AgentOpinion struct {
	Agent              string           `json:"agent"`
	Principle          string           `json:"principle"`
	Stance             string           `json:"stance"`
	Score              float64          `json:"score"`
	Findings           []OpinionFinding `json:"findings"`
	Recommendation     string           `json:"recommendation"`
	CitizenExplanation string           `json:"citizen_explanation"`
}

// Verdict is the typed view of a decoded synthesis reply.
type Verdict struct {
	Verdict             string             `json:"verdict"`
	ConstitutionalScore float64            `json:"constitutional_score"`
	ScoreBreakdown      map[string]float64 `json:"score_breakdown"`
	CriticalIssues      []string           `json:"critical_issues"`
	MandatoryActions    []string           `json:"mandatory_actions"`
	CitizenSummary      string             `json:"citizen_summary"`
}

// Opinion returns the typed opinion for a dimension. It reports false when the
// reply failed to decode or does not have the opinion shape.
func (r AnalysisResult) Opinion(name string) (AgentOpinion, bool) {
	res, ok := r.AgentOpinions[name]
	if !ok || !res.OK() {
		return AgentOpinion{}, false
	}
	var op AgentOpinion
	if err := res.Into(&op); err != nil {
		return AgentOpinion{}, false
	}
	return op, true
}

// TypedVerdict returns the typed verdict, or false when it is unavailable.
func (r AnalysisResult) TypedVerdict() (Verdict, bool) {
	if !r.Verdict.OK() {
		return Verdict{}, false
	}
	var v Verdict
	if err := r.Verdict.Into(&v); err != nil {
		return Verdict{}, false
	}
	return v, true
}

// VerdictTag returns the decision tag, or "" when the verdict is unavailable.
func (r AnalysisResult) VerdictTag() string {
	tag, _ := r.Verdict.String("verdict")
	return tag
}
