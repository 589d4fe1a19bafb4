package stock

import (
	"context"

	"github.com/xiebiao/storehub/internal/domain/stock"
)

// ListStoreMovementsUseCase 门店库存流水查询用例
// 设计说明:
// 1. 流水是变更历史, 不走缓存: 运营排查时要看到最新记录
// 2. 支持分页, 默认每页20条, 最大100条
type ListStoreMovementsUseCase struct {
	stocks stock.Repository
}

// NewListStoreMovementsUseCase 创建流水查询用例
func NewListStoreMovementsUseCase(stocks stock.Repository) *ListStoreMovementsUseCase {
	return &ListStoreMovementsUseCase{stocks: stocks}
}

// ListStoreMovementsRequest 流水查询请求DTO
type ListStoreMovementsRequest struct {
	StoreID  uint
	Page     int // 页码(从1开始)
	PageSize int // 每页数量
}

// MovementView 流水视图DTO
type MovementView struct {
	ID        uint   `json:"id"`
	StoreID   uint   `json:"store_id"`
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Kind      string `json:"kind"`
	JobID     string `json:"job_id"`
	CreatedAt string `json:"created_at"`
}

// ListStoreMovementsResponse 流水查询响应DTO
type ListStoreMovementsResponse struct {
	List     []MovementView `json:"list"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// Execute 执行流水查询用例
func (uc *ListStoreMovementsUseCase) Execute(ctx context.Context, req ListStoreMovementsRequest) (*ListStoreMovementsResponse, error) {
	// 参数默认值处理(仓储层还会再做范围限制)
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}

	movements, total, err := uc.stocks.ListMovementsByStore(ctx, req.StoreID, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	list := make([]MovementView, len(movements))
	for i, m := range movements {
		list[i] = MovementView{
			ID:        m.ID,
			StoreID:   m.StoreID,
			ProductID: m.ProductID,
			Quantity:  m.Quantity,
			Kind:      string(m.Kind),
			JobID:     m.JobID,
			CreatedAt: m.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	return &ListStoreMovementsResponse{
		List:     list,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}
