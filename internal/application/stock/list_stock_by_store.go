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

// ListStockByStoreUseCase 门店库存列表查询用例（旁路缓存）
// 设计说明:
//  1. 缓存整个门店的库存列表, Key: stock:store:<storeID>
//  2. 门店下没有任何库存时返回ErrStockNotFound(历史接口行为),
//     空结果不写缓存
type ListStockByStoreUseCase struct {
	stocks  stock.Repository
	cache   cache.Cache
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
}

// NewListStockByStoreUseCase 创建门店库存列表查询用例
func NewListStockByStoreUseCase(stocks stock.Repository, c cache.Cache, breaker *circuitbreaker.CircuitBreaker, ttl time.Duration) *ListStockByStoreUseCase {
	return &ListStockByStoreUseCase{
		stocks:  stocks,
		cache:   c,
		breaker: breaker,
		ttl:     ttl,
	}
}

// Execute 执行门店库存列表查询
func (uc *ListStockByStoreUseCase) Execute(ctx context.Context, storeID uint) ([]StockView, error) {
	key := cache.StoreStockKey(storeID)

	// 1. 查缓存
	var cached []byte
	var hit bool
	cbErr := uc.breaker.Execute(func() error {
		var err error
		cached, hit, err = uc.cache.Get(ctx, key)
		return err
	})

	if cbErr == nil && hit {
		var views []StockView
		if err := json.Unmarshal(cached, &views); err == nil {
			metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"result": "hit"})
			return views, nil
		}
	}
	metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"result": "miss"})

	// 2. 回源数据库
	rows, err := uc.stocks.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		// 门店下没有任何库存批次
		return nil, stock.ErrStockNotFound
	}

	views := make([]StockView, len(rows))
	for i, row := range rows {
		views[i] = toStockView(row)
	}

	// 3. 写入缓存（尽力而为）
	if data, err := json.Marshal(views); err == nil {
		setErr := uc.breaker.Execute(func() error {
			return uc.cache.Set(ctx, key, data, uc.ttl)
		})
		if setErr != nil {
			log.Printf("⚠️ 写入门店库存缓存失败: %v", setErr)
		}
	}

	return views, nil
}
