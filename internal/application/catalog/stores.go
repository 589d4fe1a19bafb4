package catalog

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/xiebiao/storehub/internal/cache"
	"github.com/xiebiao/storehub/internal/domain/catalog"
	"github.com/xiebiao/storehub/pkg/circuitbreaker"
	"github.com/xiebiao/storehub/pkg/metrics"
)

// StoreUseCase 门店目录用例
type StoreUseCase struct {
	stores  catalog.StoreRepository
	cache   cache.Cache
	breaker *circuitbreaker.CircuitBreaker
	ttl     time.Duration
}

// NewStoreUseCase 创建门店目录用例
func NewStoreUseCase(stores catalog.StoreRepository, c cache.Cache, breaker *circuitbreaker.CircuitBreaker, ttl time.Duration) *StoreUseCase {
	return &StoreUseCase{
		stores:  stores,
		cache:   c,
		breaker: breaker,
		ttl:     ttl,
	}
}

// StoreView 门店视图DTO
type StoreView struct {
	StoreID   uint   `json:"store_id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	CreatedAt string `json:"created_at"`
}

func toStoreView(s *catalog.Store) StoreView {
	return StoreView{
		StoreID:   s.ID,
		Name:      s.Name,
		Location:  s.Location,
		CreatedAt: s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// CreateStoreRequest 创建门店请求DTO
type CreateStoreRequest struct {
	Name     string
	Location string
}

// Create 创建门店
func (uc *StoreUseCase) Create(ctx context.Context, req CreateStoreRequest) (*StoreView, error) {
	store := &catalog.Store{
		Name:     req.Name,
		Location: req.Location,
	}

	if err := uc.stores.Create(ctx, store); err != nil {
		return nil, err
	}

	uc.invalidate(ctx, cache.StoresAllKey)

	view := toStoreView(store)
	return &view, nil
}

// Get 获取单个门店（旁路缓存）
func (uc *StoreUseCase) Get(ctx context.Context, id uint) (*StoreView, error) {
	key := cache.StoreKey(id)

	var cached []byte
	var hit bool
	cbErr := uc.breaker.Execute(func() error {
		var err error
		cached, hit, err = uc.cache.Get(ctx, key)
		return err
	})

	if cbErr == nil && hit {
		var view StoreView
		if err := json.Unmarshal(cached, &view); err == nil {
			metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"result": "hit"})
			return &view, nil
		}
	}
	metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"result": "miss"})

	store, err := uc.stores.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := toStoreView(store)

	uc.fill(ctx, key, view)
	return &view, nil
}

// List 获取门店列表（旁路缓存）
func (uc *StoreUseCase) List(ctx context.Context) ([]StoreView, error) {
	var cached []byte
	var hit bool
	cbErr := uc.breaker.Execute(func() error {
		var err error
		cached, hit, err = uc.cache.Get(ctx, cache.StoresAllKey)
		return err
	})

	if cbErr == nil && hit {
		var views []StoreView
		if err := json.Unmarshal(cached, &views); err == nil {
			metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"result": "hit"})
			return views, nil
		}
	}
	metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"result": "miss"})

	stores, err := uc.stores.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]StoreView, len(stores))
	for i, s := range stores {
		views[i] = toStoreView(s)
	}

	uc.fill(ctx, cache.StoresAllKey, views)
	return views, nil
}

// Delete 删除门店
func (uc *StoreUseCase) Delete(ctx context.Context, id uint) error {
	if err := uc.stores.Delete(ctx, id); err != nil {
		return err
	}

	uc.invalidate(ctx, cache.StoreKey(id), cache.StoresAllKey)
	return nil
}

// fill 尽力而为写入缓存
func (uc *StoreUseCase) fill(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	setErr := uc.breaker.Execute(func() error {
		return uc.cache.Set(ctx, key, data, uc.ttl)
	})
	if setErr != nil {
		log.Printf("⚠️ 写入门店缓存失败: %v", setErr)
	}
}

// invalidate 失效缓存Key, 失败只记日志（TTL兜底）
func (uc *StoreUseCase) invalidate(ctx context.Context, keys ...string) {
	err := uc.breaker.Execute(func() error {
		return uc.cache.Invalidate(ctx, keys...)
	})
	if err != nil {
		log.Printf("⚠️ 失效门店缓存失败: %v", err)
	}
}
