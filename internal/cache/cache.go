// Package cache 定义读路径缓存的契约（Cache-Aside模式）
//
// 教学要点：
// 1. 缓存策略：Cache-Aside（旁路缓存）
//   - 读：先查缓存，未命中再查数据库并回填（带TTL）
//   - 写：变更持久化后删除受影响的key（删除而非更新，避免并发脏写）
//
// 2. 一致性契约
//   - 写路径：同一逻辑事务内严格失效（strict invalidation-on-write）
//   - 读路径：TTL内最终一致
//   - 失效失败只记录日志，不回滚已应用的变更（TTL兜底）
//
// 3. 不指定具体后端，只约定契约：Redis（生产）与memory（测试/单机）都实现本接口
package cache

import (
	"context"
	"time"
)

// Cache 键值缓存契约
type Cache interface {
	// Get 获取缓存值
	// 返回：(值, 是否命中, 错误)；过期或不存在视为未命中
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set 写入缓存值并设置过期时间
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate 立即删除指定key（无视TTL）
	Invalidate(ctx context.Context, keys ...string) error
}
