package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/storehub/internal/infrastructure/config"
)

// NewClient 创建Redis客户端（旁路缓存后端）
//
// 教学要点：
// 1. Redis在本系统中只承担缓存职责，不是数据的持有者
//   - 启动时Ping失败直接报错（部署问题要尽早暴露）
//   - 运行期的故障由读路径的熔断器兜底，读请求降级走MySQL
//
// 2. 连接池与超时参数全部来自配置，便于按部署规模调整
func NewClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	// 启动探活：3秒内必须应答
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis连接失败(%s): %w", cfg.Redis.Addr(), err)
	}

	log.Printf("✓ Redis连接成功: %s (db=%d)", cfg.Redis.Addr(), cfg.Redis.DB)
	return client, nil
}
