package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClock() (*time.Time, func() time.Time) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &now, func() time.Time { return now }
}

func TestRateLimitOnlyGuardsItsGroup(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, clock := newClock()

	r := gin.New()
	r.GET("/sample-case-violation", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	model := r.Group("", RateLimit(NewLimiter(Limit{Rate: 1, Burst: 2}, clock)))
	model.POST("/analyze", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	serve := func(method, path string) int {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(method, path, nil))
		return resp.Code
	}

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, serve(http.MethodGet, "/sample-case-violation"), "fixture request %d", i+1)
	}
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, serve(http.MethodPost, "/analyze"), "analysis %d", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(http.MethodPost, "/analyze"))
}

func TestRateLimit429Body(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, clock := newClock()

	r := gin.New()
	r.Use(RateLimit(NewLimiter(Limit{Rate: 1, Burst: 1}, clock)))
	r.POST("/analyze", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/analyze", nil))
	require.Equal(t, http.StatusOK, first.Code)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/analyze", nil))
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "1", resp.Header().Get("Retry-After"))

	var body struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "rate_limited", body.Error.Code)
	assert.Equal(t, float64(1000), body.Error.Details["retry_after_ms"])
}

func TestLimiterRefillsOverTime(t *testing.T) {
	now, clock := newClock()
	l := NewLimiter(Limit{Rate: 2, Burst: 1}, clock)

	ok, _ := l.Allow("10.0.0.1")
	require.True(t, ok)
	ok, wait := l.Allow("10.0.0.1")
	require.False(t, ok)
	assert.Equal(t, 500*time.Millisecond, wait)

	// Other clients have their own bucket.
	ok, _ = l.Allow("10.0.0.2")
	assert.True(t, ok)

	*now = now.Add(500 * time.Millisecond)
	ok, _ = l.Allow("10.0.0.1")
	assert.True(t, ok)
}

func TestLimiterForgetsIdleClients(t *testing.T) {
	now, clock := newClock()
	l := NewLimiter(Limit{Rate: 1, Burst: 1}, clock)

	l.Allow("10.0.0.1")
	l.Allow("10.0.0.2")
	require.Equal(t, 2, l.Len())

	*now = now.Add(defaultIdleTTL)
	l.Allow("10.0.0.3")
	assert.Equal(t, 1, l.Len())
}

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	var nilLimiter *Limiter
	ok, _ := nilLimiter.Allow("x")
	assert.True(t, ok)

	l := NewLimiter(Limit{}, nil)
	for i := 0; i < 10; i++ {
		ok, _ := l.Allow("x")
		assert.True(t, ok)
	}
}
