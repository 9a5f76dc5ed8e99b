package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss 缓存未命中
var ErrMiss = errors.New("cache miss")

// KV 键值存取接口（最新风险评估的发布端）
// 预测结果的写入是 write-through：读路径永远重算，Redis 只作为
// 下游展示/推送协作方的数据源
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// RiskKey 某用户最新风险评估的键
func RiskKey(userID string) string {
	return fmt.Sprintf("health-insight:user:%s:risk", userID)
}

// RedisKV Redis 实现
type RedisKV struct {
	c *redis.Client
}

// NewRedisKV 创建 Redis KV
func NewRedisKV(c *redis.Client) *RedisKV { return &RedisKV{c: c} }

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.c.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}
