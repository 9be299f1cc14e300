package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// rateLimitPrefix is the Redis key prefix for per-IP buckets.
	rateLimitPrefix = "eventhub:ratelimit:"
	// rateLimitTTL bounds how long an idle bucket lives in Redis.
	rateLimitTTL = 10 * time.Second
)

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// tokenBucketScript refills and consumes a token atomically.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])      -- tokens per second
	local burst = tonumber(ARGV[2])     -- bucket capacity
	local now = tonumber(ARGV[3])       -- current time in seconds
	local ttl = tonumber(ARGV[4])       -- TTL in seconds

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = now - last_update
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// RedisLimiter is a per-IP token bucket shared by every instance that talks
// to the same Redis.
type RedisLimiter struct {
	cache *Cache
	scope string
	rps   int
	burst int
}

// NewIPLimiter returns a limiter for one class of endpoints. Buckets are
// keyed by scope and hashed client IP.
func (c *Cache) NewIPLimiter(scope string, rps, burst int) *RedisLimiter {
	return &RedisLimiter{cache: c, scope: scope, rps: rps, burst: burst}
}

// Allow consumes a token for ip. On a Redis error the result allows the
// request and the error is returned for logging.
func (l *RedisLimiter) Allow(ctx context.Context, ip string) (*RateLimitResult, error) {
	key := rateLimitPrefix + l.scope + ":" + hashIP(ip)
	now := time.Now()

	res, err := tokenBucketScript.Run(ctx, l.cache.client,
		[]string{key},
		l.rps, l.burst, now.Unix(), int(rateLimitTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return &RateLimitResult{
			Allowed:   true,
			Limit:     l.burst,
			Remaining: int64(l.burst),
			ResetAt:   now.Add(time.Second),
		}, fmt.Errorf("run token bucket: %w", err)
	}

	return &RateLimitResult{
		Allowed:    res[0] == 1,
		Limit:      l.burst,
		Remaining:  res[2],
		ResetAt:    now.Add(resetInterval(float64(l.rps))),
		RetryAfter: time.Duration(res[1]) * time.Second,
	}, nil
}

// resetInterval is the time for one token to refill.
func resetInterval(rate float64) time.Duration {
	if rate <= 0 {
		return time.Second
	}
	return time.Duration(math.Ceil(float64(time.Second) / rate))
}

// hashIP creates a truncated SHA256 hash of an IP address so raw addresses
// are never stored.
func hashIP(ip string) string {
	hash := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(hash[:8])
}
