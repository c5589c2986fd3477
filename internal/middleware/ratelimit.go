package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/placementcell/pipeline/internal/app/models/dto"
	"golang.org/x/time/rate"
)

// ClientLimiter rate-limits per client IP.
type ClientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientEntry
	r       rate.Limit
	b       int
	idle    time.Duration
	swept   time.Time
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewClientLimiter allows reqPerSec sustained requests per client with the given burst.
func NewClientLimiter(reqPerSec float64, burst int) *ClientLimiter {
	return &ClientLimiter{
		clients: make(map[string]*clientEntry),
		r:       rate.Limit(reqPerSec),
		b:       burst,
		idle:    10 * time.Minute,
	}
}

func (l *ClientLimiter) limiterFor(client string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Forget clients that have been quiet long enough to be back at full burst.
	if now.Sub(l.swept) > l.idle {
		for key, entry := range l.clients {
			if now.Sub(entry.lastSeen) > l.idle {
				delete(l.clients, key)
			}
		}
		l.swept = now
	}

	entry, ok := l.clients[client]
	if !ok {
		entry = &clientEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.clients[client] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Allow reports whether client may make a request now.
func (l *ClientLimiter) Allow(client string) bool {
	now := time.Now()
	return l.limiterFor(client, now).AllowN(now, 1)
}

// Middleware rejects over-limit requests with 429.
func (l *ClientLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeRateLimited, "Too many requests").
				WithSeverity(dto.ErrorSeverityWarning)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponse(errorDetail))
			return
		}
		c.Next()
	}
}
