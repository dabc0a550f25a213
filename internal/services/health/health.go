// Package health reports whether the model server is reachable.
package health

import (
	"context"
	"time"
)

const defaultTimeout = 5 * time.Second

// Pinger is implemented by the model client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the health payload.
type Status struct {
	Status string `json:"status"`
	LLM    string `json:"llm"`
}

// Healthy reports whether the model server answered.
func (s Status) Healthy() bool {
	return s.Status == "healthy"
}

// Service encapsulates health-related checks.
type Service struct {
	llm     Pinger
	timeout time.Duration
}

// NewService constructs a health service over the model client.
func NewService(llm Pinger) *Service {
	return &Service{llm: llm, timeout: defaultTimeout}
}

// Check pings the model server with a short timeout.
func (s *Service) Check(ctx context.Context) Status {
	if s == nil || s.llm == nil {
		return Status{Status: "unhealthy", LLM: "disconnected"}
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.llm.Ping(ctx); err != nil {
		return Status{Status: "unhealthy", LLM: "disconnected"}
	}
	return Status{Status: "healthy", LLM: "connected"}
}
