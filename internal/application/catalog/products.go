// Package catalog 商品/门店目录的应用层用例
//
// 目录数据读多写少, 读路径走旁路缓存(TTL 60秒), 写路径落库成功后
// 失效受影响的Key: product:<id>与products:all、store:<id>与stores:all
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

// ProductUseCase 商品目录用例
type ProductUseCase struct {
	products catalog.ProductRepository
	cache    cache.Cache
	breaker  *circuitbreaker.CircuitBreaker
	ttl      time.Duration
}

// NewProductUseCase 创建商品目录用例
func NewProductUseCase(products catalog.ProductRepository, c cache.Cache, breaker *circuitbreaker.CircuitBreaker, ttl time.Duration) *ProductUseCase {
	return &ProductUseCase{
		products: products,
		cache:    c,
		breaker:  breaker,
		ttl:      ttl,
	}
}

// ProductView 商品视图DTO
type ProductView struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"` // 价格(分)
	CreatedAt string `json:"created_at"`
}

func toProductView(p *catalog.Product) ProductView {
	return ProductView{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		CreatedAt: p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// CreateProductRequest 创建商品请求DTO
type CreateProductRequest struct {
	Name  string
	Price int64 // 价格(分)
}

// Create 创建商品
func (uc *ProductUseCase) Create(ctx context.Context, req CreateProductRequest) (*ProductView, error) {
	product := &catalog.Product{
		Name:  req.Name,
		Price: req.Price,
	}

	if err := uc.products.Create(ctx, product); err != nil {
		return nil, err
	}

	// 商品列表缓存已过期
	uc.invalidate(ctx, cache.ProductsAllKey)

	view := toProductView(product)
	return &view, nil
}

// Get 获取单个商品（旁路缓存）
func (uc *ProductUseCase) Get(ctx context.Context, id uint) (*ProductView, error) {
	key := cache.ProductKey(id)

	var cached []byte
	var hit bool
	cbErr := uc.breaker.Execute(func() error {
		var err error
		cached, hit, err = uc.cache.Get(ctx, key)
		return err
	})

	if cbErr == nil && hit {
		var view ProductView
		if err := json.Unmarshal(cached, &view); err == nil {
			metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"result": "hit"})
			return &view, nil
		}
	}
	metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"result": "miss"})

	product, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := toProductView(product)

	uc.fill(ctx, key, view)
	return &view, nil
}

// List 获取商品列表（旁路缓存）
func (uc *ProductUseCase) List(ctx context.Context) ([]ProductView, error) {
	var cached []byte
	var hit bool
	cbErr := uc.breaker.Execute(func() error {
		var err error
		cached, hit, err = uc.cache.Get(ctx, cache.ProductsAllKey)
		return err
	})

	if cbErr == nil && hit {
		var views []ProductView
		if err := json.Unmarshal(cached, &views); err == nil {
			metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"result": "hit"})
			return views, nil
		}
	}
	metrics.IncCounterVec(metrics.CacheRequestsTotal, map[string]string{"result": "miss"})

	products, err := uc.products.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = toProductView(p)
	}

	uc.fill(ctx, cache.ProductsAllKey, views)
	return views, nil
}

// UpdateProductRequest 更新商品请求DTO
type UpdateProductRequest struct {
	ProductID uint
	Name      string
	Price     int64
}

// Update 更新商品
func (uc *ProductUseCase) Update(ctx context.Context, req UpdateProductRequest) (*ProductView, error) {
	product := &catalog.Product{
		ID:    req.ProductID,
		Name:  req.Name,
		Price: req.Price,
	}

	if err := uc.products.Update(ctx, product); err != nil {
		return nil, err
	}

	// 单品与列表缓存都已过期
	uc.invalidate(ctx, cache.ProductKey(req.ProductID), cache.ProductsAllKey)

	updated, err := uc.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	view := toProductView(updated)
	return &view, nil
}

// Delete 删除商品
func (uc *ProductUseCase) Delete(ctx context.Context, id uint) error {
	if err := uc.products.Delete(ctx, id); err != nil {
		return err
	}

	uc.invalidate(ctx, cache.ProductKey(id), cache.ProductsAllKey)
	return nil
}

// fill 尽力而为写入缓存
func (uc *ProductUseCase) fill(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	setErr := uc.breaker.Execute(func() error {
		return uc.cache.Set(ctx, key, data, uc.ttl)
	})
	if setErr != nil {
		log.Printf("⚠️ 写入商品缓存失败: %v", setErr)
	}
}

// invalidate 失效缓存Key, 失败只记日志（TTL兜底）
func (uc *ProductUseCase) invalidate(ctx context.Context, keys ...string) {
	err := uc.breaker.Execute(func() error {
		return uc.cache.Invalidate(ctx, keys...)
	})
	if err != nil {
		log.Printf("⚠️ 失效商品缓存失败: %v", err)
	}
}
