package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appcatalog "github.com/xiebiao/storehub/internal/application/catalog"
	appstock "github.com/xiebiao/storehub/internal/application/stock"
	"github.com/xiebiao/storehub/internal/infrastructure/config"
	"github.com/xiebiao/storehub/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/storehub/internal/infrastructure/persistence/redis"
	qmemory "github.com/xiebiao/storehub/internal/infrastructure/queue/memory"
	"github.com/xiebiao/storehub/internal/infrastructure/queue/rabbitmq"
	"github.com/xiebiao/storehub/internal/interface/http/handler"
	"github.com/xiebiao/storehub/internal/interface/http/middleware"
	"github.com/xiebiao/storehub/internal/queue"
	"github.com/xiebiao/storehub/internal/worker"
	"github.com/xiebiao/storehub/pkg/circuitbreaker"
	"github.com/xiebiao/storehub/pkg/metrics"
	"github.com/xiebiao/storehub/pkg/response"
)

// main API服务入口
// 说明：手动依赖注入（wire.go提供等价的Wire版本）
//
// 部署形态：
//  1. API + 独立Worker进程（生产推荐）：worker.enabled=false,
//     另起cmd/worker消费队列
//  2. API内嵌Worker（开发/单机）：worker.enabled=true, 本进程内
//     启动消费者; 配合queue.backend=memory可做到零外部依赖的队列
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())
	fmt.Printf("  - 队列后端: %s\n", cfg.Queue.Backend)

	// 2. 初始化指标
	metrics.InitMetrics()

	// 3. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 4. 初始化Redis连接与缓存
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}
	stockCache := redis.NewCache(redisClient)

	// 5. 缓存熔断器（Redis故障时读路径降级回源）
	cacheBreaker := newCacheBreaker()

	// 6. 队列（生产端; memory后端时同一实例也是消费端）
	var producer queue.Producer
	var consumer queue.Consumer

	switch cfg.Queue.Backend {
	case "memory":
		q := qmemory.New(cfg.Queue.MaxRetries, cfg.Queue.RetryBackoff)
		producer = q
		consumer = q
		if !cfg.Worker.Enabled {
			log.Printf("⚠️ 队列后端为memory但worker.enabled=false, 入队的任务不会被消费")
		}
	default:
		p, err := rabbitmq.NewProducer(rabbitmqOptions(cfg))
		if err != nil {
			log.Fatalf("初始化RabbitMQ生产者失败: %v", err)
		}
		defer p.Close()
		producer = p

		if cfg.Worker.Enabled {
			c, err := rabbitmq.NewConsumer(rabbitmqOptions(cfg))
			if err != nil {
				log.Fatalf("初始化RabbitMQ消费者失败: %v", err)
			}
			defer c.Close()
			consumer = c
		}
	}

	// 7. 依赖注入（手动组装）
	// 依赖链：Repository ← UseCase ← Handler

	// 基础设施层
	stockRepo := mysql.NewStockRepository(db)
	productRepo := mysql.NewProductRepository(db)
	storeRepo := mysql.NewStoreRepository(db)
	auditRepo := mysql.NewAuditRepository(db)

	// 应用层
	enqueueStockIn := appstock.NewEnqueueStockInUseCase(storeRepo, productRepo, producer)
	enqueueStockMutation := appstock.NewEnqueueStockMutationUseCase(stockRepo, producer)
	getStock := appstock.NewGetStockUseCase(stockRepo, stockCache, cacheBreaker, cfg.Cache.TTL)
	listStockByStore := appstock.NewListStockByStoreUseCase(stockRepo, stockCache, cacheBreaker, cfg.Cache.TTL)
	listStoreMovements := appstock.NewListStoreMovementsUseCase(stockRepo)
	listStockAudit := appstock.NewListStockAuditUseCase(stockRepo, auditRepo)
	productUseCase := appcatalog.NewProductUseCase(productRepo, stockCache, cacheBreaker, cfg.Cache.TTL)
	storeUseCase := appcatalog.NewStoreUseCase(storeRepo, stockCache, cacheBreaker, cfg.Cache.TTL)

	// 接口层
	stockHandler := handler.NewStockHandler(enqueueStockIn, enqueueStockMutation, getStock, listStockByStore, listStoreMovements, listStockAudit)
	productHandler := handler.NewProductHandler(productUseCase)
	storeHandler := handler.NewStoreHandler(storeUseCase)

	// 8. 可选的进程内Worker
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Worker.Enabled && consumer != nil {
		w := worker.New(stockRepo, stockCache)
		for i := 0; i < cfg.Worker.Concurrency; i++ {
			go func(n int) {
				log.Printf("📤 进程内Worker #%d 启动", n)
				if err := consumer.Consume(ctx, w.Handle); err != nil && ctx.Err() == nil {
					log.Printf("❌ Worker #%d 退出: %v", n, err)
				}
			}(i)
		}
	}

	// 9. 初始化Gin引擎并注册路由
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())

	registerRoutes(r, stockHandler, productHandler, storeHandler)

	// 10. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   指标端点: http://localhost%s/metrics\n", addr)
	fmt.Printf("   入库请求: POST http://localhost%s/api/v1/stock\n", addr)
	fmt.Printf("   扣减请求: PUT  http://localhost%s/api/v1/stock/:stockId\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 信号触发ctx取消后优雅关停：进程内Worker与HTTP服务共用同一个ctx
	if err := serveHTTP(ctx, srv); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
	log.Println("✅ 服务已退出")
}

// serveHTTP 启动HTTP服务并在ctx取消时优雅关停
//
// 教学要点：
//  1. gin的Run()会一直阻塞，收到信号后无法回收存量请求
//  2. 用http.Server托管gin引擎，ctx取消时调用Shutdown：
//     停止接收新连接，等待存量请求完成（上限10秒）
func serveHTTP(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		// 端口被占用等启动期错误
		return err
	case <-ctx.Done():
	}

	log.Println("🛑 收到退出信号, 正在关闭HTTP服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// registerRoutes 注册路由
func registerRoutes(r *gin.Engine, stockHandler *handler.StockHandler, productHandler *handler.ProductHandler, storeHandler *handler.StoreHandler) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API路由组
	v1 := r.Group("/api/v1")
	{
		// 库存模块（核心异步管道）
		stock := v1.Group("/stock")
		{
			stock.POST("", stockHandler.StockIn)                               // ✅ 入库（202受理）
			stock.PUT("/:stockId", stockHandler.Mutate)                        // ✅ 扣减（202受理）
			stock.GET("/:stockId", stockHandler.GetStock)                      // ✅ 查询单条库存
			stock.GET("/store/:storeId", stockHandler.ListByStore)             // ✅ 查询门店库存
			stock.GET("/store/:storeId/movements", stockHandler.ListMovements) // ✅ 门店库存流水（分页）
			stock.GET("/:stockId/audit", stockHandler.ListAudit)               // ✅ 库存审计记录
		}

		// 商品模块
		products := v1.Group("/products")
		{
			products.POST("", productHandler.Create)
			products.GET("", productHandler.List)
			products.GET("/:productId", productHandler.Get)
			products.PUT("/:productId", productHandler.Update)
			products.DELETE("/:productId", productHandler.Delete)
		}

		// 门店模块
		stores := v1.Group("/stores")
		{
			stores.POST("", storeHandler.Create)
			stores.GET("", storeHandler.List)
			stores.GET("/:storeId", storeHandler.Get)
			stores.DELETE("/:storeId", storeHandler.Delete)
		}
	}
}

// newCacheBreaker 创建保护缓存读写的熔断器
// 状态变化同步到日志与Prometheus指标
func newCacheBreaker() *circuitbreaker.CircuitBreaker {
	cb := circuitbreaker.NewCircuitBreaker("redis-cache", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("🛑 熔断器[%s]状态变化: %s -> %s", name, from, to)
		metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
	})

	cb.SetRequestCallback(func(name string, success bool) {
		result := "success"
		if !success {
			result = "failure"
		}
		metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{
			"name":   name,
			"result": result,
		})
	})

	return cb
}

// rabbitmqOptions 从配置构建RabbitMQ连接参数
func rabbitmqOptions(cfg *config.Config) rabbitmq.Options {
	return rabbitmq.Options{
		URL:          cfg.Queue.URL,
		Exchange:     cfg.Queue.Exchange,
		QueueName:    cfg.Queue.QueueName,
		FailedQueue:  cfg.Queue.FailedQueue,
		MaxRetries:   cfg.Queue.MaxRetries,
		RetryBackoff: cfg.Queue.RetryBackoff,
	}
}
