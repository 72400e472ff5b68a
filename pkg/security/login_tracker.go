package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LoginTrackerConfig holds configuration for login tracking
type LoginTrackerConfig struct {
	MaxAttempts   int           // Maximum failed attempts before block (default: 5)
	AttemptWindow time.Duration // Time window for tracking attempts (default: 15min)
	BlockDuration time.Duration // How long to block after max attempts (default: 15min)
	UseIPTracking bool          // Also track by IP address (default: true)
}

// DefaultLoginTrackerConfig returns sensible defaults
func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
		UseIPTracking: true,
	}
}

// LoginTracker counts failed logins per identifier (email or username) and
// per IP, and blocks both once MaxAttempts is reached. Counters live in Redis
// when a client is given, otherwise in process memory.
type LoginTracker struct {
	config LoginTrackerConfig
	client *goredis.Client
	logger *SecurityLogger
	now    func() time.Time

	mu        sync.Mutex
	counters  map[string]*attemptCounter
	blocks    map[string]time.Time
	lastSweep time.Time
}

// In-memory entries past their expiry are dropped at most this often.
const memorySweepInterval = time.Minute

type attemptCounter struct {
	count     int
	expiresAt time.Time
}

func NewLoginTracker(config LoginTrackerConfig, client *goredis.Client, logger *SecurityLogger) *LoginTracker {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 5
	}
	if config.AttemptWindow <= 0 {
		config.AttemptWindow = 15 * time.Minute
	}
	if config.BlockDuration <= 0 {
		config.BlockDuration = 15 * time.Minute
	}
	if logger == nil {
		logger = DefaultLogger()
	}
	return &LoginTracker{
		config:   config,
		client:   client,
		logger:   logger,
		now:      time.Now,
		counters: make(map[string]*attemptCounter),
		blocks:   make(map[string]time.Time),
	}
}

// Redis key patterns
const (
	failLoginUserPrefix    = "fail:login:user:"
	failLoginIPPrefix      = "fail:login:ip:"
	blockedLoginUserPrefix = "blocked:login:user:"
	blockedLoginIPPrefix   = "blocked:login:ip:"
)

// Atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

func normalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// IsBlocked reports whether the identifier or IP is currently blocked.
func (lt *LoginTracker) IsBlocked(ctx context.Context, identifier, ip string) (bool, error) {
	keys := []string{blockedLoginUserPrefix + normalizeIdentifier(identifier)}
	if lt.config.UseIPTracking && ip != "" {
		keys = append(keys, blockedLoginIPPrefix+ip)
	}

	if lt.client == nil {
		lt.mu.Lock()
		defer lt.mu.Unlock()
		now := lt.now()
		for _, key := range keys {
			if until, ok := lt.blocks[key]; ok {
				if now.Before(until) {
					return true, nil
				}
				delete(lt.blocks, key)
			}
		}
		return false, nil
	}

	exists, err := lt.client.Exists(ctx, keys...).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check login block: %w", err)
	}
	return exists > 0, nil
}

// RecordFailedAttempt records a failed login and reports whether the
// identifier is now blocked, with the current attempt count.
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, identifier, ip, userAgent, requestID string) (bool, int, error) {
	identifier = normalizeIdentifier(identifier)
	lt.logger.LogLoginFailed(ctx, identifier, ip, userAgent, requestID, "invalid_credentials")

	count, err := lt.increment(ctx, failLoginUserPrefix+identifier)
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment user counter: %w", err)
	}
	if lt.config.UseIPTracking && ip != "" {
		_, _ = lt.increment(ctx, failLoginIPPrefix+ip) // Best effort
	}

	if count >= lt.config.MaxAttempts {
		if err := lt.createBlock(ctx, identifier, ip, requestID); err != nil {
			return true, count, fmt.Errorf("failed to create block: %w", err)
		}
		lt.logger.LogLoginBlocked(ctx, identifier, ip, userAgent, requestID)
		return true, count, nil
	}
	return false, count, nil
}

func (lt *LoginTracker) increment(ctx context.Context, key string) (int, error) {
	if lt.client == nil {
		lt.mu.Lock()
		defer lt.mu.Unlock()
		now := lt.now()
		lt.sweepLocked(now)
		c, ok := lt.counters[key]
		if !ok || !now.Before(c.expiresAt) {
			c = &attemptCounter{expiresAt: now.Add(lt.config.AttemptWindow)}
			lt.counters[key] = c
		}
		c.count++
		return c.count, nil
	}

	ttlSeconds := int(lt.config.AttemptWindow.Seconds())
	result, err := lt.client.Eval(ctx, incrWithTTLScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, err
	}
	count, ok := result.(int64)
	if !ok {
		return 0, errors.New("unexpected result type from Lua script")
	}
	return int(count), nil
}

func (lt *LoginTracker) createBlock(ctx context.Context, identifier, ip, requestID string) error {
	keys := []string{blockedLoginUserPrefix + identifier}
	if lt.config.UseIPTracking && ip != "" {
		keys = append(keys, blockedLoginIPPrefix+ip)
	}

	if lt.client == nil {
		lt.mu.Lock()
		now := lt.now()
		lt.sweepLocked(now)
		until := now.Add(lt.config.BlockDuration)
		for _, key := range keys {
			lt.blocks[key] = until
		}
		lt.mu.Unlock()
	} else {
		if err := lt.client.Set(ctx, keys[0], "1", lt.config.BlockDuration).Err(); err != nil {
			return fmt.Errorf("failed to set user block: %w", err)
		}
		for _, key := range keys[1:] {
			if err := lt.client.Set(ctx, key, "1", lt.config.BlockDuration).Err(); err != nil {
				// User is already blocked
				lt.logger.zapLogger.Warn("failed to set IP block", zap.Error(err))
			}
		}
	}

	lt.logger.LogBlockCreated(ctx, subjectTypeOf(identifier), identifier, ip, requestID, int(lt.config.BlockDuration.Minutes()))
	return nil
}

// sweepLocked drops expired counters and blocks. Callers hold lt.mu.
func (lt *LoginTracker) sweepLocked(now time.Time) {
	if now.Sub(lt.lastSweep) < memorySweepInterval {
		return
	}
	lt.lastSweep = now
	for key, c := range lt.counters {
		if !now.Before(c.expiresAt) {
			delete(lt.counters, key)
		}
	}
	for key, until := range lt.blocks {
		if !now.Before(until) {
			delete(lt.blocks, key)
		}
	}
}

// ClearAttempts resets the counters after a successful login.
func (lt *LoginTracker) ClearAttempts(ctx context.Context, identifier, ip string) error {
	keys := []string{failLoginUserPrefix + normalizeIdentifier(identifier)}
	if lt.config.UseIPTracking && ip != "" {
		keys = append(keys, failLoginIPPrefix+ip)
	}

	if lt.client == nil {
		lt.mu.Lock()
		for _, key := range keys {
			delete(lt.counters, key)
		}
		lt.mu.Unlock()
		return nil
	}

	if err := lt.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear login attempts: %w", err)
	}
	return nil
}

// GetRemainingAttempts returns how many attempts remain before a block.
func (lt *LoginTracker) GetRemainingAttempts(ctx context.Context, identifier string) (int, error) {
	key := failLoginUserPrefix + normalizeIdentifier(identifier)

	var count int
	if lt.client == nil {
		lt.mu.Lock()
		if c, ok := lt.counters[key]; ok && lt.now().Before(c.expiresAt) {
			count = c.count
		}
		lt.mu.Unlock()
	} else {
		n, err := lt.client.Get(ctx, key).Int()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return 0, fmt.Errorf("failed to get attempt count: %w", err)
		}
		count = n
	}

	return max(lt.config.MaxAttempts-count, 0), nil
}
