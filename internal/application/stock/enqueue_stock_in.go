package stock

import (
	"context"

	"github.com/xiebiao/storehub/internal/domain/catalog"
	"github.com/xiebiao/storehub/internal/domain/stock"
	"github.com/xiebiao/storehub/internal/queue"
)

// EnqueueStockInUseCase 入库请求用例（生产端）
// 设计说明:
//  1. 生产端只做"值得入队吗"的校验: 门店/商品必须存在、数量必须为正
//  2. 校验通过后投递到队列立即返回任务ID, 真正的账本写入由Worker异步完成
//  3. 生产端校验挡掉必然失败的任务, 但不能代替消费端校验
//     (入队到消费之间数据可能已变化)
type EnqueueStockInUseCase struct {
	stores   catalog.StoreRepository
	products catalog.ProductRepository
	producer queue.Producer
}

// NewEnqueueStockInUseCase 创建入库请求用例
func NewEnqueueStockInUseCase(stores catalog.StoreRepository, products catalog.ProductRepository, producer queue.Producer) *EnqueueStockInUseCase {
	return &EnqueueStockInUseCase{
		stores:   stores,
		products: products,
		producer: producer,
	}
}

// EnqueueStockInRequest 入库请求DTO
type EnqueueStockInRequest struct {
	StoreID   uint // 门店ID
	ProductID uint // 商品ID
	Quantity  int  // 入库数量(必须为正)
}

// EnqueueStockInResponse 入库受理响应DTO
type EnqueueStockInResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// Execute 执行入库请求用例
// 学习要点:
// 1. 异步受理模式: 返回202与任务ID, 不等待账本写入
// 2. 存在性检查在入队前完成, 非法请求不进入队列
func (uc *EnqueueStockInUseCase) Execute(ctx context.Context, req EnqueueStockInRequest) (*EnqueueStockInResponse, error) {
	// 1. 门店存在性检查
	ok, err := uc.stores.Exists(ctx, req.StoreID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, catalog.ErrStoreNotFound
	}

	// 2. 商品存在性检查
	ok, err = uc.products.Exists(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, catalog.ErrProductNotFound
	}

	// 3. 构建变更意图并校验
	intent := &stock.MutationIntent{
		Action:    stock.ActionStockIn,
		StoreID:   req.StoreID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	}
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	// 4. 投递到队列
	jobID, err := uc.producer.Enqueue(ctx, intent)
	if err != nil {
		return nil, err
	}

	return &EnqueueStockInResponse{
		JobID:  jobID,
		Status: "queued",
	}, nil
}
