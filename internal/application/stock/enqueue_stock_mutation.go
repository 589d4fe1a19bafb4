package stock

import (
	"context"

	"github.com/xiebiao/storehub/internal/domain/stock"
	"github.com/xiebiao/storehub/internal/queue"
)

// EnqueueStockMutationUseCase 库存扣减请求用例（生产端）
// 设计说明:
//  1. 面向已有库存行的变更: SALE(销售)与MANUAL_REMOVE(手动移除)
//  2. 入队前检查库存行存在, 避免必然失败的任务进入队列
//  3. 余量是否足够不在这里判断: 入队到消费之间余量可能变化,
//     最终判定只能在Worker的行锁事务里做
type EnqueueStockMutationUseCase struct {
	stocks   stock.Repository
	producer queue.Producer
}

// NewEnqueueStockMutationUseCase 创建扣减请求用例
func NewEnqueueStockMutationUseCase(stocks stock.Repository, producer queue.Producer) *EnqueueStockMutationUseCase {
	return &EnqueueStockMutationUseCase{
		stocks:   stocks,
		producer: producer,
	}
}

// EnqueueStockMutationRequest 扣减请求DTO
type EnqueueStockMutationRequest struct {
	StockID  uint   // 目标库存行ID
	Action   string // SALE 或 MANUAL_REMOVE
	Quantity int    // 扣减数量(必须为正)
}

// EnqueueStockMutationResponse 扣减受理响应DTO
type EnqueueStockMutationResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// Execute 执行扣减请求用例
func (uc *EnqueueStockMutationUseCase) Execute(ctx context.Context, req EnqueueStockMutationRequest) (*EnqueueStockMutationResponse, error) {
	// 1. 动作合法性: 这条接口只接受扣减类动作
	action := stock.Action(req.Action)
	if !action.IsRemoval() {
		return nil, stock.ErrUnknownAction
	}

	// 2. 库存行存在性检查
	if _, err := uc.stocks.GetByID(ctx, req.StockID); err != nil {
		return nil, err
	}

	// 3. 构建变更意图并校验
	intent := &stock.MutationIntent{
		Action:   action,
		StockID:  req.StockID,
		Quantity: req.Quantity,
	}
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	// 4. 投递到队列
	jobID, err := uc.producer.Enqueue(ctx, intent)
	if err != nil {
		return nil, err
	}

	return &EnqueueStockMutationResponse{
		JobID:  jobID,
		Status: "queued",
	}, nil
}
