// Package bench runs a procurement case past the review dimensions and the final synthesis.
//
// Each analysis makes one model call per dimension, all issued concurrently, and one
// synthesis call after every dimension has answered. Replies are decoded best-effort;
// a reply without a recoverable object becomes a parse-failure sentinel and the flow
// continues. A transport failure on any call fails the whole analysis.
package bench

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"nyaya-backend/internal/decode"
	"nyaya-backend/internal/llm"
	"nyaya-backend/internal/procurement"
	"nyaya-backend/internal/rules"
	"nyaya-backend/internal/shared/metrics"
	"nyaya-backend/internal/shared/telemetry"
)

// ErrInvalidCase is returned, wrapped with the validation details, for malformed cases.
var ErrInvalidCase = procurement.ErrInvalidCase

// ContextProvider returns the legal context injected into every dimension prompt.
type ContextProvider func(estimatedValue float64, method procurement.Method) string

// Orchestrator is safe for concurrent use; it holds no per-analysis state.
type Orchestrator struct {
	client   llm.Client
	prompts  *Prompts
	context  ContextProvider
	checks   func(procurement.Case) []rules.Finding
	pacing   time.Duration
	thoughts bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPrompts replaces the embedded prompt set.
func WithPrompts(p *Prompts) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.prompts = p
		}
	}
}

// WithContextProvider replaces the rule lookup.
func WithContextProvider(fn ContextProvider) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.context = fn
		}
	}
}

// WithRuleChecks replaces the deterministic advisory checks.
func WithRuleChecks(fn func(procurement.Case) []rules.Finding) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.checks = fn
		}
	}
}

// WithPacing sets the delay between streamed info messages.
func WithPacing(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.pacing = d
		}
	}
}

// WithThoughts enables thought events carrying each dimension's recommendation.
func WithThoughts(enabled bool) Option {
	return func(o *Orchestrator) {
		o.thoughts = enabled
	}
}

// New constructs an orchestrator over client.
func New(client llm.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		client:  client,
		prompts: DefaultPrompts(),
		context: rules.Context,
		checks:  rules.Check,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Prompts returns the prompt set in use.
func (o *Orchestrator) Prompts() *Prompts {
	return o.prompts
}

// RunDimension requests and decodes the opinion for one dimension. A reply with no
// recoverable object is a ParseFailure result, not an error.
func (o *Orchestrator) RunDimension(ctx context.Context, c procurement.Case, d Dimension, legalContext string) (decode.Result, error) {
	prompt := o.prompts.DimensionPrompt(d, legalContext, c.Text())
	reply, err := o.client.Complete(ctx, prompt, "")
	if err != nil {
		return decode.Result{}, fmt.Errorf("%s: %w", d.Name, err)
	}
	return decodeReply(d.Name, c.TenderID, reply), nil
}

// RunAll runs every dimension concurrently and waits for all of them. The first
// failure cancels the rest and RunAll returns a nil map.
func (o *Orchestrator) RunAll(ctx context.Context, c procurement.Case, legalContext string) (map[string]decode.Result, error) {
	return o.runAll(ctx, c, legalContext, nil)
}

func (o *Orchestrator) runAll(ctx context.Context, c procurement.Case, legalContext string, h *hooks) (map[string]decode.Result, error) {
	dims := o.prompts.Dimensions
	results := make([]decode.Result, len(dims))

	g, gctx := errgroup.WithContext(ctx)
	for i, d := range dims {
		g.Go(func() error {
			h.started(d)
			res, err := o.RunDimension(gctx, c, d, legalContext)
			if err != nil {
				return err
			}
			results[i] = res
			h.completed(d, res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]decode.Result, len(dims))
	for i, d := range dims {
		out[d.Name] = results[i]
	}
	return out, nil
}

// Synthesize requests and decodes the verdict over a complete set of opinions.
func (o *Orchestrator) Synthesize(ctx context.Context, c procurement.Case, opinions map[string]decode.Result) (decode.Result, error) {
	prompt, err := o.prompts.SynthesisPrompt(c.Text(), opinions)
	if err != nil {
		return decode.Result{}, err
	}
	reply, err := o.client.Complete(ctx, prompt, "")
	if err != nil {
		return decode.Result{}, fmt.Errorf("synthesis: %w", err)
	}
	return decodeReply("synthesis", c.TenderID, reply), nil
}

// Analyze validates c, runs every dimension, then the synthesis.
func (o *Orchestrator) Analyze(ctx context.Context, c procurement.Case) (AnalysisResult, error) {
	return o.analyze(ctx, c, nil)
}

func (o *Orchestrator) analyze(ctx context.Context, c procurement.Case, h *hooks) (AnalysisResult, error) {
	if err := procurement.Validate(c); err != nil {
		return AnalysisResult{}, err
	}

	start := time.Now()
	metrics.IncAnalysisStarted()
	result, err := o.run(ctx, c, h)
	elapsed := time.Since(start).Milliseconds()
	metrics.ObserveAnalysisDurationMs(float64(elapsed))
	if err != nil {
		metrics.IncAnalysisFailed()
		telemetry.Error("analysis_failed", map[string]any{
			"case_id":     c.TenderID,
			"duration_ms": elapsed,
			"error":       err,
		})
		return AnalysisResult{}, err
	}
	metrics.IncAnalysisCompleted()
	telemetry.Info("analysis_completed", map[string]any{
		"case_id":     c.TenderID,
		"verdict":     result.VerdictTag(),
		"duration_ms": elapsed,
		"rule_checks": len(result.RuleChecks),
	})
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, c procurement.Case, h *hooks) (AnalysisResult, error) {
	if err := h.info(ctx, "Case received. Initializing Constitutional Bench..."); err != nil {
		return AnalysisResult{}, err
	}
	if err := h.info(ctx, "Retrieving GFR 2017 Rules & Constitutional Articles..."); err != nil {
		return AnalysisResult{}, err
	}
	legalContext := o.context(c.EstimatedValue, c.ProcurementMethod)

	if err := h.info(ctx, fmt.Sprintf("Summoning %d AI Agents...", len(o.prompts.Dimensions))); err != nil {
		return AnalysisResult{}, err
	}
	opinions, err := o.runAll(ctx, c, legalContext, h)
	if err != nil {
		return AnalysisResult{}, err
	}

	if err := h.info(ctx, "Chief Justice is deliberating on the verdict..."); err != nil {
		return AnalysisResult{}, err
	}
	verdict, err := o.Synthesize(ctx, c, opinions)
	if err != nil {
		return AnalysisResult{}, err
	}

	checks := o.checks(c)
	if checks == nil {
		checks = []rules.Finding{}
	}
	return AnalysisResult{
		CaseID:        c.TenderID,
		AgentOpinions: opinions,
		Verdict:       verdict,
		RuleChecks:    checks,
	}, nil
}

func decodeReply(stage, caseID, reply string) decode.Result {
	res := decode.Parse(reply)
	if !res.OK() {
		metrics.IncDecodeFailure()
		telemetry.Warn("decode_failed", map[string]any{
			"case_id":     caseID,
			"stage":       stage,
			"reply_chars": len(reply),
		})
	}
	return res
}
