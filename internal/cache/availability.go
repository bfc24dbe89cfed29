package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/clinicadelvalle/agenda-api/config"
)

// AvailabilityCache is a derived read-through cache for availability
// responses. The database is the sole source of truth: every write path
// (book, attend, cancel) invalidates the affected key, and entries expire on
// a short TTL regardless. A nil *AvailabilityCache is valid and disables
// caching.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// New connects to redis and verifies the connection. Returns (nil, nil) when
// no redis address is configured.
func New(cfg config.RedisConfig, log *zap.Logger) (*AvailabilityCache, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &AvailabilityCache{client: client, ttl: cfg.TTL, log: log}, nil
}

func key(doctorID uuid.UUID, date string) string {
	return "availability:" + doctorID.String() + ":" + date
}

// Get returns the cached free-slot list and whether it was present. Cache
// failures degrade to a miss.
func (c *AvailabilityCache) Get(ctx context.Context, doctorID uuid.UUID, date string) ([]string, bool) {
	if c == nil {
		return nil, false
	}

	raw, err := c.client.Get(ctx, key(doctorID, date)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("availability cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var slots []string
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		c.log.Warn("availability cache entry corrupt, dropping", zap.Error(err))
		_ = c.client.Del(ctx, key(doctorID, date)).Err()
		return nil, false
	}
	return slots, true
}

func (c *AvailabilityCache) Set(ctx context.Context, doctorID uuid.UUID, date string, slots []string) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(slots)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(doctorID, date), raw, c.ttl).Err(); err != nil {
		c.log.Warn("availability cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached entry for one doctor/date. Called on every
// booking, attendance, and cancellation.
func (c *AvailabilityCache) Invalidate(ctx context.Context, doctorID uuid.UUID, date string) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, key(doctorID, date)).Err(); err != nil {
		c.log.Warn("availability cache invalidation failed", zap.Error(err))
	}
}

// Close releases the redis connection.
func (c *AvailabilityCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
