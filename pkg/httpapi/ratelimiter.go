package httpapi

import (
	"sync"
	"time"
)

// RateLimiter implements per-IP rate limiting with a sliding one-minute
// window.
type RateLimiter struct {
	limits            map[string][]int64
	maxRequestsPerMin int
	mu                sync.Mutex
	cleanupInterval   time.Duration
	stopCleanup       chan struct{}
	stopOnce          sync.Once
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(maxRequestsPerMinute int) *RateLimiter {
	rl := &RateLimiter{
		limits:            make(map[string][]int64),
		maxRequestsPerMin: maxRequestsPerMinute,
		cleanupInterval:   5 * time.Minute,
		stopCleanup:       make(chan struct{}),
	}

	go rl.startCleanup()

	return rl
}

// Allow reports whether a request from the given IP fits in the window and
// records it if so.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now().UnixMilli()

	valid := rl.limits[ip][:0]
	for _, reqTime := range rl.limits[ip] {
		if now-reqTime < 60000 {
			valid = append(valid, reqTime)
		}
	}
	rl.limits[ip] = valid

	if len(valid) >= rl.maxRequestsPerMin {
		return false
	}

	rl.limits[ip] = append(valid, now)
	return true
}

// RetryAfter returns the number of seconds until the window frees a slot
// for the given IP.
func (rl *RateLimiter) RetryAfter(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	requests := rl.limits[ip]
	if len(requests) == 0 {
		return 0
	}

	now := time.Now().UnixMilli()
	retryAfterMs := 60000 - (now - requests[0])
	if retryAfterMs < 0 {
		return 0
	}
	return int((retryAfterMs + 999) / 1000)
}

// Stop halts the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

func (rl *RateLimiter) startCleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now().UnixMilli()
	for ip, requests := range rl.limits {
		valid := requests[:0]
		for _, reqTime := range requests {
			if now-reqTime < 60000 {
				valid = append(valid, reqTime)
			}
		}
		if len(valid) == 0 {
			delete(rl.limits, ip)
		} else {
			rl.limits[ip] = valid
		}
	}
}
