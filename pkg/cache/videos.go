// Package cache is a Redis-backed cache-aside store for per-user video lists.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vidforge/gateway/config"
	"github.com/vidforge/gateway/internal/models"
)

// VideoCache caches a user's video list under videos:user:{id} with a fixed
// TTL. Every failure degrades to a cache miss; the cache is never allowed to
// fail the status path.
type VideoCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewVideoCache creates the cache and verifies connectivity. An unreachable
// Redis is logged but not fatal: reads simply behave as misses until it
// recovers.
func NewVideoCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *VideoCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, video list cache degraded", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("video list cache connected", zap.String("addr", cfg.Addr))
	}
	return &VideoCache{client: rdb, ttl: cfg.VideoListTTL(), logger: logger}
}

func userVideosKey(userID int64) string {
	return fmt.Sprintf("videos:user:%d", userID)
}

// GetUserVideos returns the cached list for a user, or ok=false on a miss or
// any cache error.
func (c *VideoCache) GetUserVideos(ctx context.Context, userID int64) ([]models.Video, bool) {
	raw, err := c.client.Get(ctx, userVideosKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("video cache read failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		return nil, false
	}
	var videos []models.Video
	if err := json.Unmarshal(raw, &videos); err != nil {
		c.logger.Warn("video cache entry corrupt", zap.Int64("user_id", userID), zap.Error(err))
		return nil, false
	}
	return videos, true
}

// SetUserVideos stores the list with the configured TTL. Uploads do not write
// through this cache, so a fresh video may lag behind the list until expiry.
func (c *VideoCache) SetUserVideos(ctx context.Context, userID int64, videos []models.Video) {
	raw, err := json.Marshal(videos)
	if err != nil {
		c.logger.Warn("video cache marshal failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, userVideosKey(userID), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("video cache write failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

// Ping reports cache connectivity for health checks.
func (c *VideoCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying Redis connection.
func (c *VideoCache) Close() error {
	return c.client.Close()
}
