package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyaya-backend/internal/llm"
)

func TestCompleteSendsChatRequest(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"gemma3:4b","message":{"role":"assistant","content":"  {\"stance\":\"approve\"} "},"done":true}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL+"/", "gemma3:4b", time.Second)
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), "case text", "you are a judge")
	require.NoError(t, err)
	assert.Equal(t, `  {"stance":"approve"} `, out)

	assert.Equal(t, "gemma3:4b", got["model"])
	assert.Equal(t, false, got["stream"])
	messages := got["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "case text", messages[1].(map[string]any)["content"])
	opts := got["options"].(map[string]any)
	assert.Equal(t, 0.3, opts["temperature"])
	assert.Equal(t, 0.9, opts["top_p"])
	assert.Equal(t, float64(2000), opts["num_predict"])
}

func TestCompleteOmitsEmptySystemPrompt(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"ok"}}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "m", 0)
	require.NoError(t, err)
	_, err = client.Complete(context.Background(), "hello", "")
	require.NoError(t, err)

	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestCompleteNon2xxIsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "missing", time.Second)
	require.NoError(t, err)
	_, err = client.Complete(context.Background(), "hi", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrTransport))
	var se *llm.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Contains(t, se.Body, "model not found")
}

func TestCompleteUnreachableServerIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewClient(url, "m", time.Second)
	require.NoError(t, err)
	_, err = client.Complete(context.Background(), "hi", "")

	assert.ErrorIs(t, err, llm.ErrTransport)
}

func TestCompleteTimeoutIsDeadlineExceeded(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := NewClient(server.URL, "m", 50*time.Millisecond)
	require.NoError(t, err)
	_, err = client.Complete(context.Background(), "hi", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, llm.ErrTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCompleteCallerDeadlineIsKept(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client, err := NewClient(server.URL, "m", time.Minute)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Complete(ctx, "hi", "")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestListModelsAndPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"gemma3:4b","size":3300000000},{"name":"llama3:8b"}]}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "gemma3:4b", time.Second)
	require.NoError(t, err)

	models, err := client.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "gemma3:4b", models[0].Name)
	assert.NoError(t, client.Ping(context.Background()))
}

func TestNewClientRequiresURLAndModel(t *testing.T) {
	_, err := NewClient(" ", "m", 0)
	assert.Error(t, err)
	_, err = NewClient("http://localhost:11434", "", 0)
	assert.Error(t, err)
}
