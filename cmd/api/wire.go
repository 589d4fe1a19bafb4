//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()
package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

	appcatalog "github.com/xiebiao/storehub/internal/application/catalog"
	appstock "github.com/xiebiao/storehub/internal/application/stock"
	"github.com/xiebiao/storehub/internal/cache"
	"github.com/xiebiao/storehub/internal/infrastructure/config"
	"github.com/xiebiao/storehub/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/storehub/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/storehub/internal/infrastructure/queue/rabbitmq"
	"github.com/xiebiao/storehub/internal/interface/http/handler"
	"github.com/xiebiao/storehub/internal/interface/http/middleware"
	"github.com/xiebiao/storehub/internal/queue"
	"github.com/xiebiao/storehub/pkg/circuitbreaker"
	"github.com/xiebiao/storehub/pkg/response"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,     // 加载配置文件
	mysql.NewDB,     // 创建MySQL连接
	redis.NewClient, // 创建Redis连接
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewStockRepository,   // 库存账本仓储
	mysql.NewProductRepository, // 商品仓储
	mysql.NewStoreRepository,   // 门店仓储
	mysql.NewAuditRepository,   // 审计仓储
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appstock.NewEnqueueStockInUseCase,       // 入库请求用例
	appstock.NewEnqueueStockMutationUseCase, // 扣减请求用例
	appstock.NewGetStockUseCase,             // 库存查询用例
	appstock.NewListStockByStoreUseCase,     // 门店库存列表用例
	appstock.NewListStoreMovementsUseCase,   // 门店流水分页用例
	appstock.NewListStockAuditUseCase,       // 库存审计查询用例
	appcatalog.NewProductUseCase,            // 商品目录用例
	appcatalog.NewStoreUseCase,              // 门店目录用例
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewStockHandler,   // 库存处理器
	handler.NewProductHandler, // 商品处理器
	handler.NewStoreHandler,   // 门店处理器
)

// provideCache 从Redis客户端创建旁路缓存
func provideCache(client *goredis.Client) cache.Cache {
	return redis.NewCache(client)
}

// provideCacheTTL 从配置提取缓存TTL
func provideCacheTTL(cfg *config.Config) time.Duration {
	return cfg.Cache.TTL
}

// provideCacheBreaker 创建缓存熔断器（与手工装配共用构造逻辑）
func provideCacheBreaker() *circuitbreaker.CircuitBreaker {
	return newCacheBreaker()
}

// provideProducer 从配置创建队列生产者
func provideProducer(cfg *config.Config) (queue.Producer, error) {
	return rabbitmq.NewProducer(rabbitmq.Options{
		URL:          cfg.Queue.URL,
		Exchange:     cfg.Queue.Exchange,
		QueueName:    cfg.Queue.QueueName,
		FailedQueue:  cfg.Queue.FailedQueue,
		MaxRetries:   cfg.Queue.MaxRetries,
		RetryBackoff: cfg.Queue.RetryBackoff,
	})
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(
	cfg *config.Config,
	stockHandler *handler.StockHandler,
	productHandler *handler.ProductHandler,
	storeHandler *handler.StoreHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	v1 := r.Group("/api/v1")
	{
		stock := v1.Group("/stock")
		{
			stock.POST("", stockHandler.StockIn)
			stock.PUT("/:stockId", stockHandler.Mutate)
			stock.GET("/:stockId", stockHandler.GetStock)
			stock.GET("/store/:storeId", stockHandler.ListByStore)
			stock.GET("/store/:storeId/movements", stockHandler.ListMovements)
			stock.GET("/:stockId/audit", stockHandler.ListAudit)
		}

		products := v1.Group("/products")
		{
			products.POST("", productHandler.Create)
			products.GET("", productHandler.List)
			products.GET("/:productId", productHandler.Get)
			products.PUT("/:productId", productHandler.Update)
			products.DELETE("/:productId", productHandler.Delete)
		}

		stores := v1.Group("/stores")
		{
			stores.POST("", storeHandler.Create)
			stores.GET("", storeHandler.List)
			stores.GET("/:storeId", storeHandler.Get)
			stores.DELETE("/:storeId", storeHandler.Delete)
		}
	}

	return r
}

// InitializeApp 初始化整个应用
//
// Wire会分析依赖链并按正确顺序调用所有构造函数：
// *gin.Engine ← Handler ← UseCase ← Repository ← *gorm.DB ← *config.Config
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		provideCache,
		provideCacheTTL,
		provideCacheBreaker,
		provideProducer,
		applicationSet,
		handlerSet,
		provideGinEngine,
	)

	// 占位返回值，实际代码由wire_gen.go生成
	return nil, nil
}
