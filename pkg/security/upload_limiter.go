package security

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// UploadLimiter enforces sliding-window quotas on resume uploads: per IP per
// minute and per user per day. Windows live in Redis when a client is given,
// otherwise in process memory.
type UploadLimiter struct {
	maxPerMinute int
	maxPerDay    int
	client       *goredis.Client
	now          func() time.Time

	mu        sync.Mutex
	windows   map[string]*uploadWindow
	lastSweep time.Time
}

type uploadWindow struct {
	hits   []time.Time
	window time.Duration
}

// Sliding window check-and-add
// KEYS[1] = rate limit key
// ARGV[1] = max count allowed
// ARGV[2] = window size in seconds
// ARGV[3] = current timestamp
// Returns: 1 if allowed, 0 if rate limited
const uploadRateLimitScript = `
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

local count = redis.call('ZCARD', key)
if count >= limit then
    return 0
end

redis.call('ZADD', key, now, now .. '-' .. math.random(1000000))
redis.call('EXPIRE', key, window)
return 1
`

const (
	minuteWindow = 60
	dayWindow    = 86400
)

// NewUploadLimiter defaults to 10 uploads/min per IP and 50 uploads/day per user.
func NewUploadLimiter(perMin, perDay int, client *goredis.Client) *UploadLimiter {
	if perMin <= 0 {
		perMin = 10
	}
	if perDay <= 0 {
		perDay = 50
	}
	return &UploadLimiter{
		maxPerMinute: perMin,
		maxPerDay:    perDay,
		client:       client,
		now:          time.Now,
		windows:      make(map[string]*uploadWindow),
	}
}

// AllowUpload returns (allowed, retryAfterSeconds, error). Redis errors fail
// closed.
func (ul *UploadLimiter) AllowUpload(ctx context.Context, ip, userID string) (bool, int, error) {
	ipKey := "ratelimit:upload:ip:" + ip
	allowed, err := ul.checkLimit(ctx, ipKey, ul.maxPerMinute, minuteWindow)
	if err != nil {
		return false, minuteWindow, fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return false, minuteWindow, nil
	}

	if userID != "" {
		userKey := "ratelimit:upload:user:" + userID
		allowed, err = ul.checkLimit(ctx, userKey, ul.maxPerDay, dayWindow)
		if err != nil {
			return false, 3600, fmt.Errorf("rate limit check failed: %w", err)
		}
		if !allowed {
			return false, 3600, nil
		}
	}

	return true, 0, nil
}

func (ul *UploadLimiter) checkLimit(ctx context.Context, key string, limit, windowSeconds int) (bool, error) {
	if ul.client == nil {
		return ul.checkLimitInMemory(key, limit, time.Duration(windowSeconds)*time.Second), nil
	}

	result, err := ul.client.Eval(ctx, uploadRateLimitScript, []string{key}, limit, windowSeconds, ul.now().Unix()).Result()
	if err != nil {
		return false, err
	}
	allowed, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected result type from rate limit script")
	}
	return allowed == 1, nil
}

func (ul *UploadLimiter) checkLimitInMemory(key string, limit int, window time.Duration) bool {
	ul.mu.Lock()
	defer ul.mu.Unlock()

	now := ul.now()
	ul.sweepLocked(now)

	w, ok := ul.windows[key]
	if !ok {
		w = &uploadWindow{window: window}
		ul.windows[key] = w
	}
	w.hits = pruneBefore(w.hits, now.Add(-window))
	if len(w.hits) >= limit {
		return false
	}
	w.hits = append(w.hits, now)
	return true
}

// sweepLocked drops windows with no hits left inside them. Callers hold ul.mu.
func (ul *UploadLimiter) sweepLocked(now time.Time) {
	if now.Sub(ul.lastSweep) < memorySweepInterval {
		return
	}
	ul.lastSweep = now
	for key, w := range ul.windows {
		w.hits = pruneBefore(w.hits, now.Add(-w.window))
		if len(w.hits) == 0 {
			delete(ul.windows, key)
		}
	}
}

func pruneBefore(hits []time.Time, cutoff time.Time) []time.Time {
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
