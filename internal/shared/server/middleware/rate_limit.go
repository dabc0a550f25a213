package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"nyaya-backend/internal/shared/metrics"
	"nyaya-backend/internal/shared/server/respond"
)

// Buckets untouched for this long are full again and can be forgotten.
const defaultIdleTTL = 10 * time.Minute

// Limit is a token bucket refilled at Rate tokens per second up to Burst.
type Limit struct {
	Rate  float64
	Burst int
}

func (l Limit) enabled() bool { return l.Rate > 0 && l.Burst > 0 }

// Limiter holds one bucket per client. Every model-backed request costs one token,
// so a client cannot queue more analyses than the model server can work through.
type Limiter struct {
	limit   Limit
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewLimiter constructs a limiter; now defaults to time.Now.
func NewLimiter(limit Limit, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		limit:   limit,
		idleTTL: defaultIdleTTL,
		now:     now,
		buckets: make(map[string]*bucket),
	}
}

// Allow takes a token for key, or reports how long until one is available.
// A nil or disabled limiter allows everything.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	if l == nil || !l.limit.enabled() {
		return true, 0
	}
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(l.limit.Burst), last: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(float64(l.limit.Burst), b.tokens+elapsed*l.limit.Rate)
		b.last = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := (1 - b.tokens) / l.limit.Rate
	return false, time.Duration(math.Ceil(wait*1000)) * time.Millisecond
}

// Len reports how many client buckets are tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweep drops idle buckets at most once per idleTTL. Caller holds mu.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		if now.Sub(b.last) >= l.idleTTL {
			delete(l.buckets, key)
		}
	}
}

// RateLimit throttles requests per client IP, answering 429 with Retry-After.
func RateLimit(l *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := l.Allow(strings.TrimSpace(c.ClientIP()))
		if allowed {
			c.Next()
			return
		}
		metrics.IncRateLimited()
		retryAfterMs := retryAfter.Milliseconds()
		if retryAfterMs <= 0 {
			retryAfterMs = 1000
		}
		c.Header("Retry-After", strconv.FormatInt(int64(math.Ceil(float64(retryAfterMs)/1000)), 10))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many review requests, try again shortly", gin.H{
			"retry_after_ms": retryAfterMs,
		})
	}
}
