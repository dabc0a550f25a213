// Package llm defines the model client contract used by the review bench.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nyaya-backend/internal/shared/metrics"
	"nyaya-backend/internal/shared/telemetry"
)

// Client completes a single prompt. systemPrompt may be empty.
// The reply is returned unmodified.
type Client interface {
	Complete(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// ErrTransport marks failures to reach the model server or get a usable reply from it.
var ErrTransport = errors.New("model server unavailable")

// StatusError is returned when the model server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("model server http status %d: %s", e.StatusCode, body)
}

// Unwrap lets errors.Is(err, ErrTransport) match status failures.
func (e *StatusError) Unwrap() error { return ErrTransport }

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, prompt, systemPrompt string) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return f(ctx, prompt, systemPrompt)
}

// Observed wraps a client with call logging and metrics.
func Observed(next Client, model string) Client {
	return &observed{next: next, model: model}
}

type observed struct {
	next  Client
	model string
}

func (o *observed) Complete(ctx context.Context, prompt, systemPrompt string) (string, error) {
	start := time.Now()
	metrics.IncModelCall()
	out, err := o.next.Complete(ctx, prompt, systemPrompt)
	elapsed := time.Since(start).Milliseconds()
	metrics.ObserveModelCallDurationMs(float64(elapsed))
	if err != nil {
		metrics.IncModelCallFailure()
		telemetry.Error("model_call_failed", map[string]any{
			"model":        o.model,
			"duration_ms":  elapsed,
			"prompt_chars": len(prompt),
			"error":        err,
		})
		return "", err
	}
	telemetry.Debug("model_call", map[string]any{
		"model":        o.model,
		"duration_ms":  elapsed,
		"prompt_chars": len(prompt) + len(systemPrompt),
		"reply_chars":  len(out),
	})
	return out, nil
}
