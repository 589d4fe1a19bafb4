package audit

import "context"

// Repository 审计日志仓储接口
type Repository interface {
	// Create 追加审计日志
	Create(ctx context.Context, entry *Entry) error

	// ListByStock 查询指定库存行的审计日志（时间倒序）
	// 说明：单个库存行的审计记录量有限，不做分页
	ListByStock(ctx context.Context, stockID uint) ([]*Entry, error)
}
