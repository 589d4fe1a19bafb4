package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"github.com/xiebiao/storehub/internal/infrastructure/config"
	"github.com/xiebiao/storehub/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/storehub/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/storehub/internal/infrastructure/queue/rabbitmq"
	"github.com/xiebiao/storehub/internal/worker"
	"github.com/xiebiao/storehub/pkg/metrics"
)

// main 独立Worker进程入口
//
// 职责：消费库存变更队列, 执行账本写入与缓存失效
// 水平扩展：多个Worker进程消费同一队列, 互不感知;
// 并发安全由账本事务的行锁与流水表JobID唯一索引保证
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	if cfg.Queue.Backend != "rabbitmq" {
		log.Fatalf("独立Worker只支持rabbitmq队列后端, 当前: %s (memory后端请用API进程内Worker)", cfg.Queue.Backend)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - 队列: %s (失败队列: %s)\n", cfg.Queue.QueueName, cfg.Queue.FailedQueue)
	fmt.Printf("  - 并发度: %d\n", cfg.Worker.Concurrency)

	// 2. 初始化指标
	metrics.InitMetrics()

	// 3. 初始化数据库与缓存
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}
	stockCache := redis.NewCache(redisClient)

	// 4. 组装Worker
	stockRepo := mysql.NewStockRepository(db)
	w := worker.New(stockRepo, stockCache)

	// 5. 启动消费（每个并发度一条独立的channel连接, 各自Qos=1）
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	concurrency := cfg.Worker.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		consumer, err := rabbitmq.NewConsumer(rabbitmq.Options{
			URL:          cfg.Queue.URL,
			Exchange:     cfg.Queue.Exchange,
			QueueName:    cfg.Queue.QueueName,
			FailedQueue:  cfg.Queue.FailedQueue,
			MaxRetries:   cfg.Queue.MaxRetries,
			RetryBackoff: cfg.Queue.RetryBackoff,
		})
		if err != nil {
			log.Fatalf("初始化RabbitMQ消费者失败: %v", err)
		}
		defer consumer.Close()

		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			log.Printf("📤 Worker #%d 启动, 消费队列 %s", n, cfg.Queue.QueueName)
			if err := consumer.Consume(ctx, w.Handle); err != nil && ctx.Err() == nil {
				log.Printf("❌ Worker #%d 退出: %v", n, err)
			}
		}(i)
	}

	fmt.Printf("\n🚀 Worker启动成功！按Ctrl+C停止\n\n")

	// 6. 等待退出信号, 优雅停机
	<-ctx.Done()
	log.Println("🛑 收到退出信号, 等待在途任务完成...")
	wg.Wait()
	log.Println("✓ Worker已全部退出")
}
