package http

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// SubmissionLimiter throttles public submissions per client address.
type SubmissionLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewSubmissionLimiter allows perMinute submissions per client with a burst of
// the same size. It returns nil when perMinute is not positive.
func NewSubmissionLimiter(perMinute int) *SubmissionLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &SubmissionLimiter{
		limiters:  make(map[string]*clientLimiter),
		rate:      rate.Limit(float64(perMinute) / 60.0),
		burst:     perMinute,
		idleTTL:   10 * time.Minute,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether key may submit now.
func (l *SubmissionLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > l.idleTTL {
		for k, cl := range l.limiters {
			if now.Sub(cl.lastAccess) > l.idleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}

	cl, ok := l.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[key] = cl
	}
	cl.lastAccess = now
	return cl.limiter.AllowN(now, 1)
}

// Size returns the number of tracked clients.
func (l *SubmissionLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Middleware rejects over-limit requests with 429 and a Retry-After header.
func (l *SubmissionLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l == nil {
			return c.Next()
		}
		if l.Allow(clientKey(c)) {
			return c.Next()
		}

		retryAfter := int(math.Ceil(1.0 / float64(l.rate)))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"success": false,
			"error":   "Too many submissions. Please try again later.",
		})
	}
}

// clientKey is the peer address. Forwarding headers count only when the app
// trusts the proxy (fiber's ProxyHeader with EnableTrustedProxyCheck).
func clientKey(c *fiber.Ctx) string {
	return c.IP()
}
