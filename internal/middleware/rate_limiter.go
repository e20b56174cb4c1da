package middleware

import (
	"strings"
	"sync"
	"time"

	"household-ledger/internal/errors"
	"household-ledger/internal/handlers"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	defaultRequestsPerSecond = 5
	defaultBurstSize         = 10
	visitorTTL               = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorStore keeps one token bucket per client IP
type visitorStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
}

// RateLimiter creates a middleware for rate limiting requests per IP
func RateLimiter() echo.MiddlewareFunc {
	return RateLimiterWithConfig(defaultRequestsPerSecond, defaultBurstSize)
}

// RateLimiterWithConfig creates a rate limiter with custom configuration.
// Each call gets its own visitor map, so limits on different routes do not share buckets.
func RateLimiterWithConfig(rps float64, burst int) echo.MiddlewareFunc {
	store := &visitorStore{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
	go store.cleanup()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !store.get(getIP(c)).Allow() {
				return handlers.SendError(c, errors.SystemRateLimitExceeded)
			}
			return next(c)
		}
	}
}

func (s *visitorStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, exists := s.visitors[ip]
	if !exists {
		limiter := rate.NewLimiter(s.limit, s.burst)
		s.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func (s *visitorStore) cleanup() {
	for {
		time.Sleep(time.Minute)
		s.sweep(time.Now())
	}
}

// sweep drops visitors idle for longer than visitorTTL
func (s *visitorStore) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ip, v := range s.visitors {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(s.visitors, ip)
		}
	}
}

func getIP(c echo.Context) string {
	if xff := c.Request().Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	if xri := c.Request().Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	return c.RealIP()
}
