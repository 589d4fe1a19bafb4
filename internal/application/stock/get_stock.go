package stock

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/xiebiao/storehub/internal/cache"
	"github.com/xiebiao/storehub/internal/domain/stock"
	"github.com/xiebiao/storehub/pkg/circuitbreaker"
	"github.com/xiebiao/storehub/pkg/metrics"
)

// GetStockUseCase 库存查询用例（旁路缓存）
// 设计说明:
// 1. 读路径: 先查缓存, 命中直接返回; 未命中回源数据库并写入缓存(TTL 60秒)
// 2. 缓存操作经过熔断器: Redis故障时快速失败直接回源, 读接口只是变慢不变错
// 3. 缓存写入失败只记日志: 下一次读会再次尝试填充
type GetStockUseCase struct {
	stocks  stock.Repository
	cache   cache.Cache
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
}

// NewGetStockUseCase 创建库存查询用例
func NewGetStockUseCase(stocks stock.Repository, c cache.Cache, breaker *circuitbreaker.CircuitBreaker, ttl time.Duration) *GetStockUseCase {
	return &GetStockUseCase{
		stocks:  stocks,
		cache:   c,
		breaker: breaker,
		ttl:     ttl,
	}
}

// StockView 库存视图DTO（也是缓存中的序列化形态）
type StockView struct {
	StockID   uint   `json:"stock_id"`
	StoreID   uint   `json:"store_id"`
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UpdatedAt string `json:"updated_at"`
}

func toStockView(s *stock.Stock) StockView {
	return StockView{
		StockID:   s.StockID,
		StoreID:   s.StoreID,
		ProductID: s.ProductID,
		Quantity:  s.Quantity,
		UpdatedAt: s.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Execute 执行库存查询用例
// 学习要点:
// 1. 旁路缓存(Cache-Aside): 读多写少场景的标准做法
// 2. 熔断降级: 缓存层故障不能拖垮读路径
func (uc *GetStockUseCase) Execute(ctx context.Context, stockID uint) (*StockView, error) {
	key := cache.StockKey(stockID)

	// 1. 查缓存（经过熔断器, Redis故障时直接回源）
	var cached []byte
	var hit bool
	cbErr := uc.breaker.Execute(func() error {
		var err error
		cached, hit, err = uc.cache.Get(ctx, key)
		return err
	})

	if cbErr == nil && hit {
		var view StockView
		if err := json.Unmarshal(cached, &view); err == nil {
			metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"result": "hit"})
			return &view, nil
		}
		// 缓存数据损坏按未命中处理
	}
	metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"result": "miss"})

	// 2. 回源数据库
	row, err := uc.stocks.GetByID(ctx, stockID)
	if err != nil {
		return nil, err
	}
	view := toStockView(row)

	// 3. 写入缓存（尽力而为）
	if data, err := json.Marshal(view); err == nil {
		setErr := uc.breaker.Execute(func() error {
			return uc.cache.Set(ctx, key, data, uc.ttl)
		})
		if setErr != nil {
			log.Printf("⚠️ 写入库存缓存失败: %v", setErr)
		}
	}

	return &view, nil
}
