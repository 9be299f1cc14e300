package cache

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LocalLimiter is an in-process per-IP limiter used when Redis is not
// configured. Idle entries are dropped by a background loop.
type LocalLimiter struct {
	rate  rate.Limit
	burst int
	ttl   time.Duration

	mu       sync.Mutex
	limiters map[string]*ipLimiter

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewLocalLimiter starts a limiter allowing rps requests per second with the
// given burst. Entries idle for twice cleanupInterval are removed.
func NewLocalLimiter(rps, burst int, cleanupInterval time.Duration) *LocalLimiter {
	l := &LocalLimiter{
		rate:     rate.Limit(rps),
		burst:    burst,
		ttl:      cleanupInterval * 2,
		limiters: make(map[string]*ipLimiter),
		stopCh:   make(chan struct{}),
	}
	go l.cleanupLoop(cleanupInterval)
	return l
}

// Allow consumes a token for ip.
func (l *LocalLimiter) Allow(_ context.Context, ip string) (*RateLimitResult, error) {
	now := time.Now()
	lim := l.limiterFor(hashIP(ip), now)

	res := &RateLimitResult{
		Limit:   l.burst,
		ResetAt: now.Add(resetInterval(float64(l.rate))),
	}

	if lim.AllowN(now, 1) {
		res.Allowed = true
		res.Remaining = int64(math.Max(0, math.Floor(lim.TokensAt(now))))
		return res, nil
	}

	retry := time.Duration(math.Ceil((1 - lim.TokensAt(now)) / float64(l.rate) * float64(time.Second)))
	res.RetryAfter = retry.Round(time.Second)
	if res.RetryAfter < time.Second {
		res.RetryAfter = time.Second
	}
	return res, nil
}

// Len returns the number of tracked clients.
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (l *LocalLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *LocalLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.limiters[key]; ok {
		entry.lastAccess = now
		return entry.limiter
	}

	lim := rate.NewLimiter(l.rate, l.burst)
	l.limiters[key] = &ipLimiter{limiter: lim, lastAccess: now}
	return lim
}

func (l *LocalLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			l.evictIdle(now)
		case <-l.stopCh:
			return
		}
	}
}

func (l *LocalLimiter) evictIdle(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, entry := range l.limiters {
		if now.Sub(entry.lastAccess) > l.ttl {
			delete(l.limiters, key)
		}
	}
}
