package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// RateLimiter implements a simple token bucket rate limiter.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewRateLimiter creates a rate limiter that allows rps requests per second.
func NewRateLimiter(rps int) *RateLimiter {
	return &RateLimiter{
		tokens:     float64(rps),
		maxTokens:  float64(rps),
		refillRate: float64(rps),
		lastRefill: time.Now(),
	}
}

// Allow reports whether a single request is permitted.
// It consumes one token if available.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill).Seconds()
	rl.tokens += elapsed * rl.refillRate
	if rl.tokens > rl.maxTokens {
		rl.tokens = rl.maxTokens
	}
	rl.lastRefill = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// idle reports whether the bucket has not been touched since before cutoff.
func (rl *RateLimiter) idle(cutoff time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.lastRefill.Before(cutoff)
}

// bucketIdleTimeout is how long an unused client bucket is kept.
const bucketIdleTimeout = 10 * time.Minute

// PerClientRateLimiter keeps one token bucket per client key.
type PerClientRateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*RateLimiter
	rps       int
	lastSweep time.Time
}

// NewPerClientRateLimiter creates a limiter granting each client rps requests per second.
func NewPerClientRateLimiter(rps int) *PerClientRateLimiter {
	return &PerClientRateLimiter{
		buckets:   make(map[string]*RateLimiter),
		rps:       rps,
		lastSweep: time.Now(),
	}
}

// Allow reports whether client may make a request now.
func (p *PerClientRateLimiter) Allow(client string) bool {
	p.mu.Lock()
	now := time.Now()
	if now.Sub(p.lastSweep) > bucketIdleTimeout {
		cutoff := now.Add(-bucketIdleTimeout)
		for key, b := range p.buckets {
			if b.idle(cutoff) {
				delete(p.buckets, key)
			}
		}
		p.lastSweep = now
	}

	bucket, ok := p.buckets[client]
	if !ok {
		bucket = NewRateLimiter(p.rps)
		p.buckets[client] = bucket
	}
	p.mu.Unlock()

	return bucket.Allow()
}

// PerClientRateLimitMiddleware rate-limits requests by remote IP.
func PerClientRateLimitMiddleware(limiter *PerClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientKey(r)) {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
