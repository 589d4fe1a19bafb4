package stock

import (
	"context"

	"github.com/xiebiao/storehub/internal/domain/audit"
	"github.com/xiebiao/storehub/internal/domain/stock"
)

// ListStockAuditUseCase 库存审计日志查询用例
// 设计说明: 审计日志面向追责场景, 先确认库存行存在再查日志,
// 不存在的库存行返回404而不是空列表
type ListStockAuditUseCase struct {
	stocks stock.Repository
	audits audit.Repository
}

// NewListStockAuditUseCase 创建审计日志查询用例
func NewListStockAuditUseCase(stocks stock.Repository, audits audit.Repository) *ListStockAuditUseCase {
	return &ListStockAuditUseCase{
		stocks: stocks,
		audits: audits,
	}
}

// AuditView 审计日志视图DTO
type AuditView struct {
	ID        uint   `json:"id"`
	Action    string `json:"action"`
	StockID   uint   `json:"stock_id"`
	StoreID   uint   `json:"store_id"`
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	CreatedAt string `json:"created_at"`
}

// Execute 执行审计日志查询用例
func (uc *ListStockAuditUseCase) Execute(ctx context.Context, stockID uint) ([]AuditView, error) {
	// 库存行必须存在
	if _, err := uc.stocks.GetByID(ctx, stockID); err != nil {
		return nil, err
	}

	entries, err := uc.audits.ListByStock(ctx, stockID)
	if err != nil {
		return nil, err
	}

	views := make([]AuditView, len(entries))
	for i, e := range entries {
		views[i] = AuditView{
			ID:        e.ID,
			Action:    e.Action,
			StockID:   e.StockID,
			StoreID:   e.StoreID,
			ProductID: e.ProductID,
			Quantity:  e.Quantity,
			CreatedAt: e.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	return views, nil
}
