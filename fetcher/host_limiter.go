package fetcher

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter spaces requests per host so one worker never hammers a single
// origin, no matter how many feeds it hosts.
type HostLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	limit    rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing one request per interval per host.
func NewHostLimiter(interval rate.Limit, burst int) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    interval,
		burst:    burst,
	}
}

// Wait blocks until host may make another request or ctx is done.
func (h *HostLimiter) Wait(ctx context.Context, host string) error {
	h.mu.RLock()
	limiter, exists := h.limiters[host]
	h.mu.RUnlock()

	if !exists {
		h.mu.Lock()
		// Double check after acquiring write lock
		if limiter, exists = h.limiters[host]; !exists {
			limiter = rate.NewLimiter(h.limit, h.burst)
			h.limiters[host] = limiter
		}
		h.mu.Unlock()
	}

	return limiter.Wait(ctx)
}
