package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/mr1hm/histotrails/internal/metrics"
)

const clientIdleTimeout = 10 * time.Minute

// RateLimitMiddleware gives every client address its own bucket of rps
// requests per second, so one busy map viewer cannot starve the others. A
// non-positive rps disables limiting.
func RateLimitMiddleware(rps int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	clients := newClientLimiters(rate.Limit(rps), rps, clientIdleTimeout)

	return func(c *gin.Context) {
		if !clients.allow(c.ClientIP()) {
			metrics.RateLimitedRequests.Inc()
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiters keeps one limiter per key and forgets keys idle for longer
// than idle.
type clientLimiters struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

func newClientLimiters(limit rate.Limit, burst int, idle time.Duration) *clientLimiters {
	return &clientLimiters{
		limit:   limit,
		burst:   burst,
		idle:    idle,
		now:     time.Now,
		clients: make(map[string]*clientLimiter),
	}
}

func (l *clientLimiters) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}

	cl, ok := l.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = cl
		metrics.RateLimitClients.Set(float64(len(l.clients)))
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// sweep must be called with mu held.
func (l *clientLimiters) sweep(now time.Time) {
	for key, cl := range l.clients {
		if now.Sub(cl.lastSeen) >= l.idle {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
	metrics.RateLimitClients.Set(float64(len(l.clients)))
}

func (l *clientLimiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}
