package middleware

import (
	"strconv"
	"sync"
	"time"

	"storefront/config"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
	// maxTrackedClients bounds the bucket map; new clients are refused while it is full.
	maxTrackedClients = 100_000
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware keeps one token bucket per route and client IP.
type RateLimitMiddleware struct {
	enabled    bool
	limit      rate.Limit
	burst      int
	maxClients int
	metrics    *metrics.Metrics
	now        func() time.Time

	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	lastSweep time.Time
}

// NewRateLimitMiddleware creates a limiter from the rateLimit config section.
func NewRateLimitMiddleware(cfg *config.Config, m *metrics.Metrics) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		enabled:    cfg.RateLimit.Enabled,
		limit:      rate.Limit(cfg.RateLimit.RPS),
		burst:      cfg.RateLimit.Burst,
		maxClients: maxTrackedClients,
		metrics:    m,
		now:        time.Now,
		limiters:   make(map[string]*limiterEntry),
	}
}

// Limit returns a middleware for one route. The route name is the metrics label.
// Clients are told apart by c.RealIP, so the server's IPExtractor decides
// whether forwarding headers count.
func (m *RateLimitMiddleware) Limit(route string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !m.enabled {
				return next(c)
			}

			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}

			if !m.allow(route + "|" + ip) {
				m.metrics.RateLimit(route, false)
				c.Response().Header().Set("Retry-After", strconv.Itoa(m.retryAfterSeconds()))

				return domainerrors.ErrRateLimited
			}

			m.metrics.RateLimit(route, true)

			return next(c)
		}
	}
}

func (m *RateLimitMiddleware) allow(key string) bool {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) >= limiterSweepInterval {
		m.sweep(now)
	}

	entry, ok := m.limiters[key]
	if !ok {
		if len(m.limiters) >= m.maxClients {
			m.sweep(now)
		}
		if len(m.limiters) >= m.maxClients {
			return false
		}
		entry = &limiterEntry{limiter: rate.NewLimiter(m.limit, m.burst)}
		m.limiters[key] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

// sweep drops buckets unused for limiterIdleTTL. Caller holds mu.
func (m *RateLimitMiddleware) sweep(now time.Time) {
	for key, entry := range m.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(m.limiters, key)
		}
	}
	m.lastSweep = now
}

func (m *RateLimitMiddleware) retryAfterSeconds() int {
	if m.limit <= 0 {
		return 1
	}

	seconds := int(time.Duration(float64(time.Second) / float64(m.limit)).Seconds())
	if seconds < 1 {
		return 1
	}

	return seconds
}
