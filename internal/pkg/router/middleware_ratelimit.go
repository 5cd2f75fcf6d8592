package router

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per client IP token bucket. Entries idle for longer than the
// idle window are swept while serving requests.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*ipLimiter
	r         rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter allows r requests per second with bursts of burst per client IP.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*ipLimiter),
		r:        r,
		burst:    burst,
		idle:     10 * time.Minute,
		now:      time.Now,
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > rl.idle {
		for k, v := range rl.limiters {
			if now.Sub(v.lastSeen) > rl.idle {
				delete(rl.limiters, k)
			}
		}
		rl.lastSweep = now
	}

	l, ok := rl.limiters[ip]
	if !ok {
		l = &ipLimiter{limiter: rate.NewLimiter(rl.r, rl.burst)}
		rl.limiters[ip] = l
	}
	l.lastSeen = now

	return l.limiter.AllowN(now, 1)
}

// Middleware rejects requests over the limit with 429. It relies on the IP
// middleware having normalized RemoteAddr.
func (rl *RateLimiter) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(r.RemoteAddr) {
				w.Header().Set("Retry-After", "1")
				writeJSON(w, errorResponse{Message: "Too many requests"}, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
