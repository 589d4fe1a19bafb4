package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/storehub/internal/cache"
	cachemem "github.com/xiebiao/storehub/internal/cache/memory"
	"github.com/xiebiao/storehub/internal/domain/catalog"
	"github.com/xiebiao/storehub/pkg/circuitbreaker"
)

// memProductRepo 内存版商品仓储
type memProductRepo struct {
	nextID   uint
	rows     map[uint]*catalog.Product
	getCalls int
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{nextID: 1, rows: make(map[uint]*catalog.Product)}
}

func (r *memProductRepo) Create(ctx context.Context, p *catalog.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.ID = r.nextID
	r.nextID++
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(ctx context.Context, id uint) (*catalog.Product, error) {
	r.getCalls++
	row, ok := r.rows[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *memProductRepo) List(ctx context.Context) ([]*catalog.Product, error) {
	r.getCalls++
	out := make([]*catalog.Product, 0, len(r.rows))
	for _, row := range r.rows {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memProductRepo) Update(ctx context.Context, p *catalog.Product) error {
	row, ok := r.rows[p.ID]
	if !ok {
		return catalog.ErrProductNotFound
	}
	row.Name = p.Name
	row.Price = p.Price
	return nil
}

func (r *memProductRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.rows[id]; !ok {
		return catalog.ErrProductNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memProductRepo) Exists(ctx context.Context, id uint) (bool, error) {
	_, ok := r.rows[id]
	return ok, nil
}

// memStoreRepo 内存版门店仓储
type memStoreRepo struct {
	nextID uint
	rows   map[uint]*catalog.Store
}

func newMemStoreRepo() *memStoreRepo {
	return &memStoreRepo{nextID: 1, rows: make(map[uint]*catalog.Store)}
}

func (r *memStoreRepo) Create(ctx context.Context, s *catalog.Store) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.ID = r.nextID
	r.nextID++
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

func (r *memStoreRepo) GetByID(ctx context.Context, id uint) (*catalog.Store, error) {
	row, ok := r.rows[id]
	if !ok {
		return nil, catalog.ErrStoreNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *memStoreRepo) List(ctx context.Context) ([]*catalog.Store, error) {
	out := make([]*catalog.Store, 0, len(r.rows))
	for _, row := range r.rows {
		cp := *row
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memStoreRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.rows[id]; !ok {
		return catalog.ErrStoreNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memStoreRepo) Exists(ctx context.Context, id uint) (bool, error) {
	_, ok := r.rows[id]
	return ok, nil
}

func newTestBreaker() *circuitbreaker.CircuitBreaker {
	return circuitbreaker.NewCircuitBreaker("test-cache", circuitbreaker.Config{
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// ==================== 商品用例 ====================

func TestProductUseCase_CreateAndGet(t *testing.T) {
	repo := newMemProductRepo()
	c := cachemem.New()
	uc := NewProductUseCase(repo, c, newTestBreaker(), time.Minute)

	ctx := context.Background()
	created, err := uc.Create(ctx, CreateProductRequest{Name: "乌龙茶", Price: 1200})
	require.NoError(t, err)
	assert.NotZero(t, created.ProductID)

	view, err := uc.Get(ctx, created.ProductID)
	require.NoError(t, err)
	assert.Equal(t, "乌龙茶", view.Name)
	assert.Equal(t, int64(1200), view.Price)

	// 第二次读命中缓存, 不回源
	calls := repo.getCalls
	_, err = uc.Get(ctx, created.ProductID)
	require.NoError(t, err)
	assert.Equal(t, calls, repo.getCalls)
}

func TestProductUseCase_CreateInvalid(t *testing.T) {
	uc := NewProductUseCase(newMemProductRepo(), cachemem.New(), newTestBreaker(), time.Minute)

	_, err := uc.Create(context.Background(), CreateProductRequest{Name: "", Price: 100})
	assert.ErrorIs(t, err, catalog.ErrInvalidProductName)

	_, err = uc.Create(context.Background(), CreateProductRequest{Name: "乌龙茶", Price: -1})
	assert.ErrorIs(t, err, catalog.ErrInvalidPrice)
}

func TestProductUseCase_UpdateInvalidatesCache(t *testing.T) {
	repo := newMemProductRepo()
	c := cachemem.New()
	uc := NewProductUseCase(repo, c, newTestBreaker(), time.Minute)

	ctx := context.Background()
	created, err := uc.Create(ctx, CreateProductRequest{Name: "乌龙茶", Price: 1200})
	require.NoError(t, err)

	// 填充缓存
	_, err = uc.Get(ctx, created.ProductID)
	require.NoError(t, err)
	_, hit, _ := c.Get(ctx, cache.ProductKey(created.ProductID))
	require.True(t, hit)

	// 更新后缓存被失效
	updated, err := uc.Update(ctx, UpdateProductRequest{ProductID: created.ProductID, Name: "茉莉花茶", Price: 1500})
	require.NoError(t, err)
	assert.Equal(t, "茉莉花茶", updated.Name)

	// 再次读取拿到新值
	view, err := uc.Get(ctx, created.ProductID)
	require.NoError(t, err)
	assert.Equal(t, "茉莉花茶", view.Name)
	assert.Equal(t, int64(1500), view.Price)
}

func TestProductUseCase_ListCacheInvalidatedOnWrite(t *testing.T) {
	repo := newMemProductRepo()
	c := cachemem.New()
	uc := NewProductUseCase(repo, c, newTestBreaker(), time.Minute)

	ctx := context.Background()
	_, err := uc.Create(ctx, CreateProductRequest{Name: "乌龙茶", Price: 1200})
	require.NoError(t, err)

	// 填充列表缓存
	views, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 1)

	// 新建商品后列表缓存失效, 再次List能看到新商品
	_, err = uc.Create(ctx, CreateProductRequest{Name: "龙井", Price: 3000})
	require.NoError(t, err)

	views, err = uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 2)
}

func TestProductUseCase_Delete(t *testing.T) {
	repo := newMemProductRepo()
	uc := NewProductUseCase(repo, cachemem.New(), newTestBreaker(), time.Minute)

	ctx := context.Background()
	created, err := uc.Create(ctx, CreateProductRequest{Name: "乌龙茶", Price: 1200})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(ctx, created.ProductID))

	_, err = uc.Get(ctx, created.ProductID)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)

	// 删除不存在的商品
	err = uc.Delete(ctx, 999)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

// ==================== 门店用例 ====================

func TestStoreUseCase_CRUD(t *testing.T) {
	repo := newMemStoreRepo()
	c := cachemem.New()
	uc := NewStoreUseCase(repo, c, newTestBreaker(), time.Minute)

	ctx := context.Background()
	created, err := uc.Create(ctx, CreateStoreRequest{Name: "中山路店", Location: "厦门市中山路1号"})
	require.NoError(t, err)
	assert.NotZero(t, created.StoreID)

	view, err := uc.Get(ctx, created.StoreID)
	require.NoError(t, err)
	assert.Equal(t, "中山路店", view.Name)

	views, err := uc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, views, 1)

	require.NoError(t, uc.Delete(ctx, created.StoreID))
	_, err = uc.Get(ctx, created.StoreID)
	assert.ErrorIs(t, err, catalog.ErrStoreNotFound)
}

func TestStoreUseCase_CreateInvalid(t *testing.T) {
	uc := NewStoreUseCase(newMemStoreRepo(), cachemem.New(), newTestBreaker(), time.Minute)

	_, err := uc.Create(context.Background(), CreateStoreRequest{Name: "", Location: "某地"})
	assert.ErrorIs(t, err, catalog.ErrInvalidStoreName)
}
