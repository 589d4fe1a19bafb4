package worker

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/xiebiao/storehub/internal/cache"
	cachemem "github.com/xiebiao/storehub/internal/cache/memory"
	"github.com/xiebiao/storehub/internal/domain/audit"
	"github.com/xiebiao/storehub/internal/domain/stock"
	"github.com/xiebiao/storehub/internal/queue"
)

// fakeStockRepo 内存版库存账本，模拟MySQL仓储的事务语义
//
// 关键行为对齐：
// 1. 互斥锁模拟行锁：扣减的"读-校验-写"在锁内完成
// 2. JobID去重模拟流水表唯一索引
// 3. injectErr模拟数据库瞬时故障
type fakeStockRepo struct {
	mu        sync.Mutex
	nextID    uint
	rows      map[uint]*stock.Stock
	movements map[string]*stock.Movement // key: JobID
	audits    []*audit.Entry
	injectErr error // 下一次调用返回该错误（模拟瞬时故障）
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{
		nextID:    1,
		rows:      make(map[uint]*stock.Stock),
		movements: make(map[string]*stock.Movement),
	}
}

func (r *fakeStockRepo) seed(storeID, productID uint, quantity int) uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.rows[id] = &stock.Stock{StockID: id, StoreID: storeID, ProductID: productID, Quantity: quantity}
	return id
}

func (r *fakeStockRepo) GetByID(ctx context.Context, stockID uint) (*stock.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[stockID]
	if !ok {
		return nil, stock.ErrStockNotFound
	}
	cp := *row
	return &cp, nil
}

func (r *fakeStockRepo) ListByStore(ctx context.Context, storeID uint) ([]*stock.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*stock.Stock
	for _, row := range r.rows {
		if row.StoreID == storeID {
			cp := *row
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) AddLot(ctx context.Context, intent *stock.MutationIntent) (uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.injectErr != nil {
		err := r.injectErr
		r.injectErr = nil
		return 0, err
	}
	if _, ok := r.movements[intent.JobID]; ok {
		return 0, stock.ErrDuplicateJob
	}

	id := r.nextID
	r.nextID++
	r.rows[id] = &stock.Stock{StockID: id, StoreID: intent.StoreID, ProductID: intent.ProductID, Quantity: intent.Quantity}
	r.movements[intent.JobID] = &stock.Movement{
		StoreID: intent.StoreID, ProductID: intent.ProductID,
		Quantity: intent.Quantity, Kind: stock.ActionStockIn, JobID: intent.JobID,
	}
	r.audits = append(r.audits, audit.NewEntry(string(stock.ActionStockIn), id, intent.StoreID, intent.ProductID, intent.Quantity))
	return id, nil
}

func (r *fakeStockRepo) Deduct(ctx context.Context, intent *stock.MutationIntent) (*stock.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.injectErr != nil {
		err := r.injectErr
		r.injectErr = nil
		return nil, err
	}
	if _, ok := r.movements[intent.JobID]; ok {
		return nil, stock.ErrDuplicateJob
	}

	row, ok := r.rows[intent.StockID]
	if !ok {
		return nil, stock.ErrStockNotFound
	}
	if !row.CanDeduct(intent.Quantity) {
		return nil, stock.ErrInsufficientStock
	}

	row.Quantity -= intent.Quantity
	r.movements[intent.JobID] = &stock.Movement{
		StoreID: row.StoreID, ProductID: row.ProductID,
		Quantity: intent.Quantity, Kind: intent.Action, JobID: intent.JobID,
	}
	r.audits = append(r.audits, audit.NewEntry(string(intent.Action), row.StockID, row.StoreID, row.ProductID, intent.Quantity))

	cp := *row
	return &cp, nil
}

func (r *fakeStockRepo) ListMovementsByStore(ctx context.Context, storeID uint, page, pageSize int) ([]*stock.Movement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*stock.Movement
	for _, m := range r.movements {
		if m.StoreID == storeID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeStockRepo) movementCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.movements)
}

func (r *fakeStockRepo) auditCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.audits)
}

// TestWorker_StockIn 测试入库任务
func TestWorker_StockIn(t *testing.T) {
	repo := newFakeStockRepo()
	c := cachemem.New()
	w := New(repo, c)

	// 预先放一条门店库存列表缓存，验证入库后被失效
	ctx := context.Background()
	_ = c.Set(ctx, cache.StoreStockKey(1), []byte("stale"), 0)

	intent := &stock.MutationIntent{
		JobID:     "JOB1001",
		Action:    stock.ActionStockIn,
		StoreID:   1,
		ProductID: 2,
		Quantity:  50,
	}

	if err := w.Handle(ctx, intent); err != nil {
		t.Fatalf("入库任务期望成功，实际失败: %v", err)
	}

	// 验证新批次已创建
	rows, _ := repo.ListByStore(ctx, 1)
	if len(rows) != 1 || rows[0].Quantity != 50 {
		t.Errorf("期望门店1有1条数量50的批次，实际: %+v", rows)
	}

	// 验证流水与审计各一条
	if repo.movementCount() != 1 {
		t.Errorf("期望1条流水，实际%d条", repo.movementCount())
	}
	if repo.auditCount() != 1 {
		t.Errorf("期望1条审计，实际%d条", repo.auditCount())
	}

	// 验证门店库存缓存已被失效
	if _, hit, _ := c.Get(ctx, cache.StoreStockKey(1)); hit {
		t.Error("入库后门店库存缓存应被失效")
	}
}

// TestWorker_Sale 测试销售扣减任务
func TestWorker_Sale(t *testing.T) {
	repo := newFakeStockRepo()
	c := cachemem.New()
	w := New(repo, c)

	ctx := context.Background()
	stockID := repo.seed(1, 2, 100)
	_ = c.Set(ctx, cache.StockKey(stockID), []byte("stale"), 0)
	_ = c.Set(ctx, cache.StoreStockKey(1), []byte("stale"), 0)

	intent := &stock.MutationIntent{
		JobID:    "JOB2001",
		Action:   stock.ActionSale,
		StockID:  stockID,
		Quantity: 30,
	}

	if err := w.Handle(ctx, intent); err != nil {
		t.Fatalf("销售任务期望成功，实际失败: %v", err)
	}

	row, _ := repo.GetByID(ctx, stockID)
	if row.Quantity != 70 {
		t.Errorf("期望剩余70，实际%d", row.Quantity)
	}
	if repo.movementCount() != 1 || repo.auditCount() != 1 {
		t.Errorf("期望流水和审计各1条，实际流水%d条、审计%d条", repo.movementCount(), repo.auditCount())
	}

	// 两个缓存Key都应被失效
	if _, hit, _ := c.Get(ctx, cache.StockKey(stockID)); hit {
		t.Error("扣减后库存缓存应被失效")
	}
	if _, hit, _ := c.Get(ctx, cache.StoreStockKey(1)); hit {
		t.Error("扣减后门店库存缓存应被失效")
	}
}

// TestWorker_InsufficientStock 测试余量不足（永久失败、无副作用）
func TestWorker_InsufficientStock(t *testing.T) {
	repo := newFakeStockRepo()
	w := New(repo, cachemem.New())

	ctx := context.Background()
	stockID := repo.seed(1, 2, 10)

	intent := &stock.MutationIntent{
		JobID:    "JOB3001",
		Action:   stock.ActionSale,
		StockID:  stockID,
		Quantity: 11, // 超过余量
	}

	err := w.Handle(ctx, intent)
	if err == nil {
		t.Fatal("期望余量不足错误，实际成功")
	}
	if !queue.IsPermanent(err) {
		t.Errorf("余量不足应为永久失败，实际: %v", err)
	}
	if !errors.Is(err, stock.ErrInsufficientStock) {
		t.Errorf("期望ErrInsufficientStock，实际: %v", err)
	}

	// 无副作用：数量不变、流水审计为空
	row, _ := repo.GetByID(ctx, stockID)
	if row.Quantity != 10 {
		t.Errorf("失败任务不应改变数量，实际%d", row.Quantity)
	}
	if repo.movementCount() != 0 || repo.auditCount() != 0 {
		t.Error("失败任务不应留下流水或审计")
	}
}

// TestWorker_StockNotFound 测试目标不存在（永久失败）
func TestWorker_StockNotFound(t *testing.T) {
	w := New(newFakeStockRepo(), cachemem.New())

	intent := &stock.MutationIntent{
		JobID:    "JOB4001",
		Action:   stock.ActionManualRemove,
		StockID:  999,
		Quantity: 1,
	}

	err := w.Handle(context.Background(), intent)
	if !queue.IsPermanent(err) {
		t.Errorf("库存不存在应为永久失败，实际: %v", err)
	}
	if !errors.Is(err, stock.ErrStockNotFound) {
		t.Errorf("期望ErrStockNotFound，实际: %v", err)
	}
}

// TestWorker_InvalidIntent 测试参数非法（永久失败）
func TestWorker_InvalidIntent(t *testing.T) {
	w := New(newFakeStockRepo(), cachemem.New())
	ctx := context.Background()

	cases := []struct {
		name   string
		intent *stock.MutationIntent
	}{
		{"数量为零", &stock.MutationIntent{JobID: "J1", Action: stock.ActionStockIn, StoreID: 1, ProductID: 1, Quantity: 0}},
		{"数量为负", &stock.MutationIntent{JobID: "J2", Action: stock.ActionSale, StockID: 1, Quantity: -5}},
		{"未知动作", &stock.MutationIntent{JobID: "J3", Action: "TELEPORT", StockID: 1, Quantity: 1}},
		{"入库缺门店", &stock.MutationIntent{JobID: "J4", Action: stock.ActionStockIn, ProductID: 1, Quantity: 1}},
		{"扣减缺库存ID", &stock.MutationIntent{JobID: "J5", Action: stock.ActionSale, Quantity: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := w.Handle(ctx, tc.intent)
			if err == nil {
				t.Fatal("期望校验失败，实际成功")
			}
			if !queue.IsPermanent(err) {
				t.Errorf("校验失败应为永久失败，实际: %v", err)
			}
		})
	}
}

// TestWorker_DuplicateJob 测试重复投递（至少一次语义下不二次扣减）
func TestWorker_DuplicateJob(t *testing.T) {
	repo := newFakeStockRepo()
	w := New(repo, cachemem.New())

	ctx := context.Background()
	stockID := repo.seed(1, 2, 100)

	intent := &stock.MutationIntent{
		JobID:    "JOB5001",
		Action:   stock.ActionSale,
		StockID:  stockID,
		Quantity: 30,
	}

	// 第一次投递
	if err := w.Handle(ctx, intent); err != nil {
		t.Fatalf("首次投递期望成功: %v", err)
	}

	// 同一JobID重复投递
	if err := w.Handle(ctx, intent); err != nil {
		t.Fatalf("重复投递应视为已完成: %v", err)
	}

	// 只扣减了一次
	row, _ := repo.GetByID(ctx, stockID)
	if row.Quantity != 70 {
		t.Errorf("重复投递不应二次扣减，期望70，实际%d", row.Quantity)
	}
	if repo.movementCount() != 1 {
		t.Errorf("期望只有1条流水，实际%d条", repo.movementCount())
	}
}

// TestWorker_TransientFailure 测试瞬时失败（应可重试）
func TestWorker_TransientFailure(t *testing.T) {
	repo := newFakeStockRepo()
	w := New(repo, cachemem.New())

	ctx := context.Background()
	stockID := repo.seed(1, 2, 100)

	repo.injectErr = errors.New("connection reset by peer")

	intent := &stock.MutationIntent{
		JobID:    "JOB6001",
		Action:   stock.ActionSale,
		StockID:  stockID,
		Quantity: 10,
	}

	err := w.Handle(ctx, intent)
	if err == nil {
		t.Fatal("期望瞬时失败，实际成功")
	}
	if queue.IsPermanent(err) {
		t.Errorf("数据库抖动应为瞬时失败（可重试），实际被标记为永久失败")
	}

	// 故障恢复后重试同一任务应成功
	if err := w.Handle(ctx, intent); err != nil {
		t.Fatalf("重试期望成功: %v", err)
	}
	row, _ := repo.GetByID(ctx, stockID)
	if row.Quantity != 90 {
		t.Errorf("期望剩余90，实际%d", row.Quantity)
	}
}

// TestWorker_ConcurrentSales 测试并发扣减不超卖
func TestWorker_ConcurrentSales(t *testing.T) {
	repo := newFakeStockRepo()
	w := New(repo, cachemem.New())

	ctx := context.Background()
	stockID := repo.seed(1, 2, 50)

	// 100个并发任务各扣1，只有50个能成功
	const workers = 100
	var wg sync.WaitGroup
	var successCount, insufficientCount int64
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			intent := &stock.MutationIntent{
				JobID:    queue.GenerateJobID(),
				Action:   stock.ActionSale,
				StockID:  stockID,
				Quantity: 1,
			}
			err := w.Handle(ctx, intent)

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successCount++
			} else if errors.Is(err, stock.ErrInsufficientStock) {
				insufficientCount++
			}
		}(i)
	}
	wg.Wait()

	row, _ := repo.GetByID(ctx, stockID)
	if row.Quantity < 0 {
		t.Fatalf("库存不应为负，实际%d", row.Quantity)
	}
	if successCount != 50 {
		t.Errorf("期望恰好50次成功，实际%d次（剩余%d）", successCount, row.Quantity)
	}
	if int(successCount) != repo.movementCount() {
		t.Errorf("成功次数(%d)应等于流水条数(%d)", successCount, repo.movementCount())
	}

	t.Logf("✅ 并发扣减: 成功=%d, 余量不足=%d, 剩余=%d", successCount, insufficientCount, row.Quantity)
}

// TestWorker_StateLog 测试任务日志标注处理阶段
func TestWorker_StateLog(t *testing.T) {
	repo := newFakeStockRepo()
	stockID := repo.seed(1, 2, 10)
	w := New(repo, cachemem.New())

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	intent := &stock.MutationIntent{
		JobID:    "JOB9001",
		Action:   stock.ActionSale,
		StockID:  stockID,
		Quantity: 3,
	}
	if err := w.Handle(context.Background(), intent); err != nil {
		t.Fatalf("扣减任务期望成功，实际失败: %v", err)
	}

	out := buf.String()
	for _, state := range []string{"RECEIVED", "DONE"} {
		if !strings.Contains(out, state) {
			t.Errorf("日志缺少阶段标注 %s, 实际输出:\n%s", state, out)
		}
	}
}
