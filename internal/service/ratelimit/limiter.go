package ratelimit

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	pkghttp "RWAPulse/pkg/http"
)

type visitor struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter keeps one token bucket per key (client IP for the HTTP middleware).
// Idle keys are evicted after idleTTL.
type Limiter struct {
	mu      sync.Mutex
	m       map[string]*visitor
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

// New builds a limiter; rps <= 0 disables limiting.
func New(rps float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	lim := rate.Limit(rps)
	if rps <= 0 {
		lim = rate.Inf
	}
	return &Limiter{
		m:       make(map[string]*visitor),
		rps:     lim,
		burst:   burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

// Allow returns true if one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	v, ok := l.m[key]
	if !ok {
		v = &visitor{lim: rate.NewLimiter(l.rps, l.burst)}
		l.m[key] = v
	}
	v.seen = now
	l.mu.Unlock()
	return v.lim.AllowN(now, 1)
}

// Sweep drops keys idle for longer than idleTTL and returns how many were removed.
func (l *Limiter) Sweep() int {
	cutoff := l.now().Add(-l.idleTTL)
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k, v := range l.m {
		if v.seen.Before(cutoff) {
			delete(l.m, k)
			n++
		}
	}
	return n
}

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}

// Middleware rejects requests over the per-IP budget with 429.
func Middleware(l *Limiter) echo.MiddlewareFunc {
	var calls uint64
	var mu sync.Mutex
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			mu.Lock()
			calls++
			sweep := calls%1024 == 0
			mu.Unlock()
			if sweep {
				l.Sweep()
			}
			if !l.Allow(c.RealIP()) {
				c.Response().Header().Set("Retry-After", "1")
				return pkghttp.AppErrorResponse(c, pkghttp.TooManyRequestsError("rate limit exceeded"))
			}
			return next(c)
		}
	}
}
