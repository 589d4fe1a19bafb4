// Package memory 提供基于进程内map的缓存实现
// 用途：单机部署与单元测试，语义与Redis实现保持一致
package memory

import (
	"context"
	"sync"
	"time"
)

// entry 带过期时间的缓存条目
type entry struct {
	value     []byte
	expiresAt time.Time
}

// expired 判断条目是否已过期
func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Cache 进程内TTL缓存
// 说明：惰性过期（读时判断），不做后台清理，条目规模由TTL自然约束
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	// now 可注入的时钟（测试用）
	now func() time.Time
}

// New 创建进程内缓存
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get 获取缓存值，过期或不存在视为未命中
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(c.now()) {
		return nil, false, nil
	}

	// 返回拷贝，防止调用方修改缓存内部数据
	val := make([]byte, len(e.value))
	copy(val, e.value)
	return val, true, nil
}

// Set 写入缓存值并设置过期时间
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	val := make([]byte, len(value))
	copy(val, value)

	c.mu.Lock()
	c.entries[key] = entry{value: val, expiresAt: expiresAt}
	c.mu.Unlock()
	return nil
}

// Invalidate 立即删除指定key
func (c *Cache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return nil
}

// Len 当前条目数（含未清理的过期条目，测试用）
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
