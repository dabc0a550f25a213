package bench

import (
	"context"
	"time"

	"nyaya-backend/internal/decode"
	"nyaya-backend/internal/procurement"
)

// Event statuses.
const (
	StatusInfo     = "info"
	StatusProgress = "progress"
	StatusThought  = "thought"
	StatusComplete = "complete"
	StatusError    = "error"
)

// Progress states.
const (
	StateAnalyzing = "analyzing"
	StateCompleted = "completed"
)

// Event is one streamed status update. Result holds a decode.Result on a
// completed progress event and an AnalysisResult on the complete event.
type Event struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Agent   string `json:"agent,omitempty"`
	State   string `json:"state,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// Terminal reports whether e ends the stream.
func (e Event) Terminal() bool {
	return e.Status == StatusComplete || e.Status == StatusError
}

// Stream runs the same analysis as Analyze and reports it as events. The stream
// ends with exactly one complete or error event and the channel is then closed.
// Once ctx is done nothing more is sent; the producer still waits for in-flight
// calls to return before closing the channel.
func (o *Orchestrator) Stream(ctx context.Context, c procurement.Case) <-chan Event {
	events := make(chan Event, 2*len(o.prompts.Dimensions)+8)
	h := &hooks{ctx: ctx, events: events, pacing: o.pacing, thoughts: o.thoughts}
	go func() {
		defer close(events)
		result, err := o.analyze(ctx, c, h)
		if err != nil {
			h.send(Event{Status: StatusError, Message: err.Error()})
			return
		}
		h.send(Event{Status: StatusComplete, Result: result})
	}()
	return events
}

// hooks turns analysis milestones into events. A nil *hooks does nothing, which
// is how the non-streaming path runs.
type hooks struct {
	ctx      context.Context
	events   chan<- Event
	pacing   time.Duration
	thoughts bool
}

func (h *hooks) send(e Event) bool {
	select {
	case <-h.ctx.Done():
		return false
	default:
	}
	select {
	case h.events <- e:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *hooks) info(ctx context.Context, msg string) error {
	if h == nil {
		return nil
	}
	if !h.send(Event{Status: StatusInfo, Message: msg}) {
		return ctx.Err()
	}
	if h.pacing <= 0 {
		return nil
	}
	t := time.NewTimer(h.pacing)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *hooks) started(d Dimension) {
	if h == nil {
		return
	}
	h.send(Event{Status: StatusProgress, Agent: d.Name, State: StateAnalyzing})
}

func (h *hooks) completed(d Dimension, res decode.Result) {
	if h == nil {
		return
	}
	h.send(Event{Status: StatusProgress, Agent: d.Name, State: StateCompleted, Result: res})
	if !h.thoughts {
		return
	}
	if rec, ok := res.String("recommendation"); ok && rec != "" {
		h.send(Event{Status: StatusThought, Agent: d.Name, Message: rec})
	}
}
