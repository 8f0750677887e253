package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskflow/internal/errors"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a client's bucket is kept without requests. It
// is well past the time an empty bucket takes to refill, so forgetting a
// client never grants it more than a fresh bucket would.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	lastSweep time.Time
}

// NewRateLimiter allows perMinute requests per client per minute, with bursts
// of the same size.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     perMinute,
		now:       time.Now,
		limiters:  make(map[string]*clientLimiter),
		lastSweep: time.Now(),
	}
}

func (l *RateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterIdleTTL {
		l.sweep(now)
	}

	cl, ok := l.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// sweep drops clients idle for longer than limiterIdleTTL. Callers hold mu.
func (l *RateLimiter) sweep(now time.Time) {
	for key, cl := range l.limiters {
		if now.Sub(cl.lastSeen) > limiterIdleTTL {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

// Middleware answers 429 once the client's bucket is empty.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.limiter(c.ClientIP()).Allow() {
			apierrors.TooManyRequests(c, "Too many login attempts, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
