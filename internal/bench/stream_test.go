package bench

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyaya-backend/internal/llm"
	"nyaya-backend/internal/procurement"
)

func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var out []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return out
			}
			out = append(out, e)
		case <-timeout:
			t.Fatalf("stream did not close; got %d events", len(out))
		}
	}
}

func toJSONValue(t *testing.T, v any) any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var out any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestStreamMatchesAnalyze(t *testing.T) {
	c := procurement.SampleViolation()

	want, err := New(scripted()).Analyze(context.Background(), c)
	require.NoError(t, err)

	events := collect(t, New(scripted()).Stream(context.Background(), c))
	require.NotEmpty(t, events)

	terminals := 0
	for _, e := range events {
		if e.Terminal() {
			terminals++
		}
	}
	assert.Equal(t, 1, terminals)

	last := events[len(events)-1]
	require.Equal(t, StatusComplete, last.Status)
	got, ok := last.Result.(AnalysisResult)
	require.True(t, ok)
	if diff := cmp.Diff(toJSONValue(t, want), toJSONValue(t, got)); diff != "" {
		t.Fatalf("stream result differs from Analyze (-want +got):\n%s", diff)
	}
}

func TestStreamEventSequence(t *testing.T) {
	events := collect(t, New(scripted()).Stream(context.Background(), procurement.SampleCompliant()))

	require.Equal(t, StatusInfo, events[0].Status)
	assert.Equal(t, "Case received. Initializing Constitutional Bench...", events[0].Message)
	assert.Equal(t, "Summoning 5 AI Agents...", events[2].Message)

	analyzing := map[string]int{}
	completed := map[string]int{}
	lastCompleted, deliberating := -1, -1
	for i, e := range events {
		switch {
		case e.Status == StatusProgress && e.State == StateAnalyzing:
			analyzing[e.Agent]++
		case e.Status == StatusProgress && e.State == StateCompleted:
			completed[e.Agent]++
			lastCompleted = i
			assert.NotNil(t, e.Result)
		case e.Status == StatusInfo && e.Message == "Chief Justice is deliberating on the verdict...":
			deliberating = i
		case e.Status == StatusThought:
			t.Fatalf("thought emitted with thoughts disabled")
		}
	}
	for _, name := range DefaultPrompts().DimensionNames() {
		assert.Equal(t, 1, analyzing[name], name)
		assert.Equal(t, 1, completed[name], name)
	}
	assert.Less(t, lastCompleted, deliberating)
	assert.Equal(t, StatusComplete, events[len(events)-1].Status)
}

func TestStreamThoughtsCarryRecommendations(t *testing.T) {
	events := collect(t, New(scripted(), WithThoughts(true)).Stream(context.Background(), procurement.SampleViolation()))

	thoughts := map[string]string{}
	for _, e := range events {
		if e.Status == StatusThought {
			thoughts[e.Agent] = e.Message
		}
	}
	require.Len(t, thoughts, 5)
	assert.Equal(t, "Cancel and re-tender (equity)", thoughts["equity"])
}

func TestStreamTransportFailureEndsWithError(t *testing.T) {
	client := &fakeClient{reply: func(ctx context.Context, prompt string) (string, error) {
		if dimensionOf(prompt) == "transparency" {
			return "", fmt.Errorf("connection refused: %w", llm.ErrTransport)
		}
		return opinionReply(dimensionOf(prompt)), nil
	}}

	events := collect(t, New(client).Stream(context.Background(), procurement.SampleViolation()))

	last := events[len(events)-1]
	assert.Equal(t, StatusError, last.Status)
	assert.Contains(t, last.Message, "transparency")
	for _, e := range events[:len(events)-1] {
		assert.False(t, e.Terminal())
	}
	assert.Empty(t, client.promptsContaining(synthesisMarker))
}

func TestStreamInvalidCaseIsSingleErrorEvent(t *testing.T) {
	c := procurement.SampleViolation()
	c.TenderID = ""

	events := collect(t, New(scripted()).Stream(context.Background(), c))

	require.Len(t, events, 1)
	assert.Equal(t, StatusError, events[0].Status)
	assert.Contains(t, events[0].Message, "invalid case")
}

func TestStreamStopsWhenConsumerGoesAway(t *testing.T) {
	client := &fakeClient{reply: func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	ctx, cancel := context.WithCancel(context.Background())
	events := New(client, WithPacing(time.Millisecond)).Stream(ctx, procurement.SampleViolation())

	first := <-events
	assert.Equal(t, StatusInfo, first.Status)
	cancel()

	for _, e := range collect(t, events) {
		assert.NotEqual(t, StatusComplete, e.Status)
	}
}
