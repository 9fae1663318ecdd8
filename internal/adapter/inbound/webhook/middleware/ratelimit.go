package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per remote IP.
type rateLimiter struct {
	mu         sync.Mutex
	visitors   map[string]*visitor
	limit      rate.Limit
	burst      int
	maxEntries int
	trustProxy bool
	now        func() time.Time
}

func newRateLimiter(requestsPerMinute int, trustProxy bool) *rateLimiter {
	return &rateLimiter{
		visitors:   make(map[string]*visitor),
		limit:      rate.Limit(float64(requestsPerMinute) / 60),
		burst:      max(requestsPerMinute, 1),
		maxEntries: 10000,
		trustProxy: trustProxy,
		now:        time.Now,
	}
}

// allow reports whether ip may make a request now. New IPs are refused once
// maxEntries are tracked.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[ip]
	if !ok {
		if len(rl.visitors) >= rl.maxEntries {
			rl.evictLocked(now.Add(-10 * time.Minute))
			if len(rl.visitors) >= rl.maxEntries {
				return false
			}
		}
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (rl *rateLimiter) evictLocked(cutoff time.Time) {
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

// RateLimit limits requests per minute per remote IP. trustProxy controls
// whether X-Forwarded-For is used for IP extraction.
func RateLimit(requestsPerMinute int, trustProxy bool) func(http.Handler) http.Handler {
	rl := newRateLimiter(requestsPerMinute, trustProxy)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.allow(remoteIP(r, rl.trustProxy)) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// remoteIP extracts the client IP from the request.
func remoteIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if idx := strings.IndexByte(xff, ','); idx != -1 {
				return strings.TrimSpace(xff[:idx])
			}
			return strings.TrimSpace(xff)
		}
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndexByte(addr, ':'); idx != -1 {
		return addr[:idx]
	}
	return addr
}
