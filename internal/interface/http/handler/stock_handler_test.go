package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appstock "github.com/xiebiao/storehub/internal/application/stock"
	memcache "github.com/xiebiao/storehub/internal/cache/memory"
	"github.com/xiebiao/storehub/internal/domain/audit"
	"github.com/xiebiao/storehub/internal/domain/catalog"
	"github.com/xiebiao/storehub/internal/domain/stock"
	"github.com/xiebiao/storehub/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/storehub/pkg/errors"
	"github.com/xiebiao/storehub/pkg/response"
)

// HTTP层测试：用内存缓存与桩仓储搭建完整路由，
// 验证状态码、业务错误码与响应结构（不依赖MySQL/Redis/RabbitMQ）

// stubProducer 记录入队意图的桩生产者
type stubProducer struct {
	intents []*stock.MutationIntent
}

func (p *stubProducer) Enqueue(_ context.Context, intent *stock.MutationIntent) (string, error) {
	intent.JobID = "JOB-HTTP-1"
	p.intents = append(p.intents, intent)
	return intent.JobID, nil
}

// stubStockRepo 预置库存行的桩仓储
type stubStockRepo struct {
	rows      map[uint]*stock.Stock
	movements []*stock.Movement
}

func (r *stubStockRepo) GetByID(_ context.Context, stockID uint) (*stock.Stock, error) {
	row, ok := r.rows[stockID]
	if !ok {
		return nil, stock.ErrStockNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *stubStockRepo) ListByStore(_ context.Context, storeID uint) ([]*stock.Stock, error) {
	var out []*stock.Stock
	for _, row := range r.rows {
		if row.StoreID == storeID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *stubStockRepo) AddLot(_ context.Context, intent *stock.MutationIntent) (uint, error) {
	return 0, nil
}

func (r *stubStockRepo) Deduct(_ context.Context, intent *stock.MutationIntent) (*stock.Stock, error) {
	return nil, nil
}

func (r *stubStockRepo) ListMovementsByStore(_ context.Context, storeID uint, page, pageSize int) ([]*stock.Movement, int64, error) {
	var out []*stock.Movement
	for _, m := range r.movements {
		if m.StoreID == storeID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

// stubAuditRepo 预置审计日志的桩仓储
type stubAuditRepo struct {
	entries []*audit.Entry
}

func (r *stubAuditRepo) Create(_ context.Context, entry *audit.Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *stubAuditRepo) ListByStock(_ context.Context, stockID uint) ([]*audit.Entry, error) {
	var out []*audit.Entry
	for _, e := range r.entries {
		if e.StockID == stockID {
			out = append(out, e)
		}
	}
	return out, nil
}

// stubProductRepo / stubStoreRepo 只支撑存在性校验
type stubProductRepo struct{ existing map[uint]bool }

func (r *stubProductRepo) Create(_ context.Context, _ *catalog.Product) error { return nil }
func (r *stubProductRepo) GetByID(_ context.Context, _ uint) (*catalog.Product, error) {
	return nil, catalog.ErrProductNotFound
}
func (r *stubProductRepo) List(_ context.Context) ([]*catalog.Product, error) { return nil, nil }
func (r *stubProductRepo) Update(_ context.Context, _ *catalog.Product) error { return nil }
func (r *stubProductRepo) Delete(_ context.Context, _ uint) error             { return nil }
func (r *stubProductRepo) Exists(_ context.Context, id uint) (bool, error) {
	return r.existing[id], nil
}

type stubStoreRepo struct{ existing map[uint]bool }

func (r *stubStoreRepo) Create(_ context.Context, _ *catalog.Store) error { return nil }
func (r *stubStoreRepo) GetByID(_ context.Context, _ uint) (*catalog.Store, error) {
	return nil, catalog.ErrStoreNotFound
}
func (r *stubStoreRepo) List(_ context.Context) ([]*catalog.Store, error) { return nil, nil }
func (r *stubStoreRepo) Delete(_ context.Context, _ uint) error           { return nil }
func (r *stubStoreRepo) Exists(_ context.Context, id uint) (bool, error) {
	return r.existing[id], nil
}

// newTestRouter 搭建库存路由（与cmd/api注册保持一致）
func newTestRouter(stockRepo *stubStockRepo, auditRepo *stubAuditRepo, producer *stubProducer) *gin.Engine {
	gin.SetMode(gin.TestMode)

	storeRepo := &stubStoreRepo{existing: map[uint]bool{1: true}}
	productRepo := &stubProductRepo{existing: map[uint]bool{2: true}}
	c := memcache.New()
	breaker := circuitbreaker.NewCircuitBreaker("test-cache", circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Second,
		Timeout:     time.Second,
	})

	h := NewStockHandler(
		appstock.NewEnqueueStockInUseCase(storeRepo, productRepo, producer),
		appstock.NewEnqueueStockMutationUseCase(stockRepo, producer),
		appstock.NewGetStockUseCase(stockRepo, c, breaker, time.Minute),
		appstock.NewListStockByStoreUseCase(stockRepo, c, breaker, time.Minute),
		appstock.NewListStoreMovementsUseCase(stockRepo),
		appstock.NewListStockAuditUseCase(stockRepo, auditRepo),
	)

	r := gin.New()
	g := r.Group("/api/v1/stock")
	{
		g.POST("", h.StockIn)
		g.PUT("/:stockId", h.Mutate)
		g.GET("/:stockId", h.GetStock)
		g.GET("/store/:storeId", h.ListByStore)
		g.GET("/store/:storeId/movements", h.ListMovements)
		g.GET("/:stockId/audit", h.ListAudit)
	}
	return r
}

// doJSON 发起JSON请求并解析统一响应
func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

// seededRepo 返回预置了一行库存的桩仓储
func seededRepo() *stubStockRepo {
	return &stubStockRepo{
		rows: map[uint]*stock.Stock{
			10: {StockID: 10, StoreID: 1, ProductID: 2, Quantity: 100},
		},
	}
}

// TestStockIn_Accepted 测试入库请求受理（202）
func TestStockIn_Accepted(t *testing.T) {
	producer := &stubProducer{}
	r := newTestRouter(seededRepo(), &stubAuditRepo{}, producer)

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/stock", map[string]interface{}{
		"store_id":   1,
		"product_id": 2,
		"quantity":   50,
	})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "accepted", resp.Message)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "JOB-HTTP-1", data["job_id"])
	assert.Equal(t, "queued", data["status"])

	require.Len(t, producer.intents, 1)
	assert.Equal(t, stock.ActionStockIn, producer.intents[0].Action)
}

// TestStockIn_StoreNotFound 测试引用不存在的门店
func TestStockIn_StoreNotFound(t *testing.T) {
	producer := &stubProducer{}
	r := newTestRouter(seededRepo(), &stubAuditRepo{}, producer)

	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/stock", map[string]interface{}{
		"store_id":   999,
		"product_id": 2,
		"quantity":   50,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.ErrCodeStoreNotFound, resp.Code)
	assert.Empty(t, producer.intents, "校验失败不应入队")
}

// TestStockIn_BindError 测试参数绑定失败
func TestStockIn_BindError(t *testing.T) {
	r := newTestRouter(seededRepo(), &stubAuditRepo{}, &stubProducer{})

	// quantity=0 违反min=1
	w, resp := doJSON(t, r, http.MethodPost, "/api/v1/stock", map[string]interface{}{
		"store_id":   1,
		"product_id": 2,
		"quantity":   0,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)
}

// TestMutate_Accepted 测试扣减请求受理
func TestMutate_Accepted(t *testing.T) {
	producer := &stubProducer{}
	r := newTestRouter(seededRepo(), &stubAuditRepo{}, producer)

	w, resp := doJSON(t, r, http.MethodPut, "/api/v1/stock/10", map[string]interface{}{
		"action":   "SALE",
		"quantity": 3,
	})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 0, resp.Code)
	require.Len(t, producer.intents, 1)
	assert.Equal(t, uint(10), producer.intents[0].StockID)
}

// TestMutate_RejectsStockIn 测试扣减端点拒绝STOCK_IN
// 说明：入库走POST（插入新批次），不允许通过已有行的更新端点触发
func TestMutate_RejectsStockIn(t *testing.T) {
	r := newTestRouter(seededRepo(), &stubAuditRepo{}, &stubProducer{})

	// oneof校验在绑定阶段拦截
	w, resp := doJSON(t, r, http.MethodPut, "/api/v1/stock/10", map[string]interface{}{
		"action":   "STOCK_IN",
		"quantity": 3,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, apperrors.ErrCodeBindError, resp.Code)
}

// TestMutate_StockNotFound 测试扣减不存在的库存行
func TestMutate_StockNotFound(t *testing.T) {
	r := newTestRouter(seededRepo(), &stubAuditRepo{}, &stubProducer{})

	w, resp := doJSON(t, r, http.MethodPut, "/api/v1/stock/999", map[string]interface{}{
		"action":   "SALE",
		"quantity": 3,
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.ErrCodeStockNotFound, resp.Code)
}

// TestGetStock_OK 测试库存查询
func TestGetStock_OK(t *testing.T) {
	r := newTestRouter(seededRepo(), &stubAuditRepo{}, &stubProducer{})

	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/stock/10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(10), data["stock_id"])
	assert.Equal(t, float64(100), data["quantity"])
}

// TestGetStock_InvalidID 测试非法路径参数
func TestGetStock_InvalidID(t *testing.T) {
	r := newTestRouter(seededRepo(), &stubAuditRepo{}, &stubProducer{})

	for _, raw := range []string{"abc", "0", "-1"} {
		w, resp := doJSON(t, r, http.MethodGet, "/api/v1/stock/"+raw, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, apperrors.ErrCodeInvalidParams, resp.Code, "id=%s", raw)
	}
}

// TestGetStock_NotFound 测试查询不存在的库存行
func TestGetStock_NotFound(t *testing.T) {
	r := newTestRouter(seededRepo(), &stubAuditRepo{}, &stubProducer{})

	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/stock/999", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.ErrCodeStockNotFound, resp.Code)
}

// TestListMovements_OK 测试门店流水查询
func TestListMovements_OK(t *testing.T) {
	repo := seededRepo()
	repo.movements = []*stock.Movement{
		{ID: 1, StoreID: 1, ProductID: 2, Quantity: 100, Kind: stock.ActionStockIn, JobID: "JOB-A"},
		{ID: 2, StoreID: 1, ProductID: 2, Quantity: 3, Kind: stock.ActionSale, JobID: "JOB-B"},
	}
	r := newTestRouter(repo, &stubAuditRepo{}, &stubProducer{})

	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/stock/store/1/movements?page=1&page_size=10", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
	assert.Len(t, data["list"], 2)
}

// TestListAudit_OK 测试审计日志查询
func TestListAudit_OK(t *testing.T) {
	audits := &stubAuditRepo{
		entries: []*audit.Entry{
			{ID: 1, Action: "SALE", StockID: 10, StoreID: 1, ProductID: 2, Quantity: 3},
		},
	}
	r := newTestRouter(seededRepo(), audits, &stubProducer{})

	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/stock/10/audit", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)
	assert.Len(t, resp.Data, 1)
}

// TestListAudit_StockNotFound 测试审计查询要求库存行存在
func TestListAudit_StockNotFound(t *testing.T) {
	r := newTestRouter(seededRepo(), &stubAuditRepo{}, &stubProducer{})

	w, resp := doJSON(t, r, http.MethodGet, "/api/v1/stock/999/audit", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.ErrCodeStockNotFound, resp.Code)
}
