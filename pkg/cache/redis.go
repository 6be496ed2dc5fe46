// Package cache wraps redis for short-lived counters and seat locks. A Cache
// built without an address keeps working: reads miss, writes are dropped and
// locks fall back to an in-process table.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"library-booking/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrMiss is returned when a key is absent
var ErrMiss = errors.New("cache miss")

type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger

	mu    sync.Mutex
	local map[string]localLock
}

type localLock struct {
	token     string
	expiresAt time.Time
}

// New connects to redis. An empty address or a failed ping yields a disabled cache.
func New(cfg utils.RedisConfig, log *zap.Logger) *Cache {
	c := &Cache{
		ttl:   cfg.TTL,
		log:   log.With(zap.String("component", "cache")),
		local: make(map[string]localLock),
	}
	if c.ttl <= 0 {
		c.ttl = 30 * time.Second
	}

	if cfg.Addr == "" {
		c.log.Info("Redis address not set, cache disabled")
		return c
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		c.log.Warn("Redis connection failed, cache disabled", zap.Error(err), zap.String("addr", cfg.Addr))
		client.Close()
		return c
	}

	c.client = client
	c.log.Info("Connected to redis", zap.String("addr", cfg.Addr))
	return c
}

// NewWithClient is used when the caller owns the redis client
func NewWithClient(client *redis.Client, ttl time.Duration, log *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("component", "cache")),
		local:  make(map[string]localLock),
	}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// GetInt64 reads a cached counter
func (c *Cache) GetInt64(ctx context.Context, key string) (int64, error) {
	if !c.Enabled() {
		return 0, ErrMiss
	}

	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrMiss
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", key, err)
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

// SetInt64 stores a counter with the default TTL
func (c *Cache) SetInt64(ctx context.Context, key string, value int64) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete keys: %w", err)
	}
	return nil
}

// AcquireLock takes key for ttl. It returns a release token, or "" when the
// lock is already held by someone else.
func (c *Cache) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := utils.GenerateUUID().String()

	if !c.Enabled() {
		c.mu.Lock()
		defer c.mu.Unlock()

		now := time.Now()
		if held, ok := c.local[key]; ok && held.expiresAt.After(now) {
			return "", nil
		}
		c.local[key] = localLock{token: token, expiresAt: now.Add(ttl)}
		return token, nil
	}

	ok, err := c.client.SetNX(ctx, "lock:"+key, token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// releaseScript deletes the lock only when it still carries our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (c *Cache) ReleaseLock(ctx context.Context, key, token string) error {
	if token == "" {
		return nil
	}

	if !c.Enabled() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if held, ok := c.local[key]; ok && held.token == token {
			delete(c.local, key)
		}
		return nil
	}

	if err := releaseScript.Run(ctx, c.client, []string{"lock:" + key}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}

// UnreadCountKey is the counter key for a user's unread notifications
func UnreadCountKey(userID string) string {
	return "notif:unread:" + userID
}

// SeatLockKey serialises checkouts of one seat
func SeatLockKey(seatID string) string {
	return "seat:" + seatID
}
