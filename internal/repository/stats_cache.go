package repository

import (
	"context"
	"encoding/json"
	"faang_prep_backend/internal/model"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// StatsCache 用户统计快照缓存，Redis 未启用时所有操作都是空操作
type StatsCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewStatsCache(rdb *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{Redis: rdb, TTL: ttl}
}

func statsKey(userID string) string {
	return fmt.Sprintf("stats:user:%s", userID)
}

func (c *StatsCache) Enabled() bool {
	return c != nil && c.Redis != nil
}

// Get 命中返回快照；未命中或 Redis 出错均视为未命中
func (c *StatsCache) Get(ctx context.Context, userID string) (*model.UserStats, bool) {
	if !c.Enabled() {
		return nil, false
	}
	raw, err := c.Redis.Get(ctx, statsKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var stats model.UserStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (c *StatsCache) Set(ctx context.Context, userID string, stats *model.UserStats) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, statsKey(userID), raw, c.TTL).Err()
}

// Invalidate 每次进度变更后调用
func (c *StatsCache) Invalidate(ctx context.Context, userID string) error {
	if !c.Enabled() {
		return nil
	}
	return c.Redis.Del(ctx, statsKey(userID)).Err()
}

// Ping 健康检查使用
func (c *StatsCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.Redis.Ping(ctx).Err()
}
