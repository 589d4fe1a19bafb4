package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/storehub/pkg/errors"
)

// Cache 基于Redis的旁路缓存实现
// 设计说明：
// 1. 实现cache.Cache接口，读路径先查缓存、未命中回源后写入
// 2. redis.Nil表示缓存未命中，不是错误，返回(nil, false, nil)
// 3. Invalidate用DEL批量删除，多个Key一次网络往返
// 4. Key设计见cache/keys.go：冒号分隔命名空间（stock:1、stock:store:2）
type Cache struct {
	client *redis.Client
}

// NewCache 创建Redis缓存实例
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get 获取缓存值
// 返回值：(数据, 是否命中, 错误)
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// 未命中不算错误
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, apperrors.Wrapf(err, "读取缓存失败: %s", key)
	}

	return value, true, nil
}

// Set 写入缓存值并设置过期时间
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return apperrors.Wrapf(err, "写入缓存失败: %s", key)
	}

	return nil
}

// Invalidate 删除一个或多个缓存Key
// 学习要点：写路径成功后必须删除受影响的Key，宁可多删不可漏删
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return apperrors.Wrapf(err, "删除缓存失败: %v", keys)
	}

	return nil
}
