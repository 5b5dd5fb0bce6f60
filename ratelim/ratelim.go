// Package ratelim throttles requests per client IP so a runaway client
// cannot monopolize the booking or payment endpoints.
package ratelim

import (
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/time/rate"
)

const (
	requestsPerSecond = 5
	burstSize         = 10
	idleEviction      = 10 * time.Minute
)

type RateLimiter struct {
	perIP map[string]*rate.Limiter
	mu    sync.Mutex
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		perIP: make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.perIP[ip]; ok {
		return limiter
	}

	limiter := rate.NewLimiter(requestsPerSecond, burstSize)
	rl.perIP[ip] = limiter

	// Evict the entry once the client has been quiet for a while.
	go func() {
		time.Sleep(idleEviction)
		rl.mu.Lock()
		delete(rl.perIP, ip)
		rl.mu.Unlock()
	}()

	return limiter
}

// Limit wraps a handle with the caller's per-IP token bucket.
func (rl *RateLimiter) Limit(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !rl.limiterFor(r.RemoteAddr).Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, r, ps)
	}
}
