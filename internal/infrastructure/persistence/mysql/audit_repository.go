package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/xiebiao/storehub/internal/domain/audit"
)

// auditRepository MySQL审计日志仓储实现
//
// 审计表只追加，不提供更新/删除：留痕一旦写入就是历史事实
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository 创建审计日志仓储实例
func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &auditRepository{db: db}
}

// Create 追加一条审计日志
func (r *auditRepository) Create(ctx context.Context, entry *audit.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("追加审计日志失败: %w", err)
	}

	return nil
}

// ListByStock 查询指定库存行的审计日志（时间倒序）
func (r *auditRepository) ListByStock(ctx context.Context, stockID uint) ([]*audit.Entry, error) {
	var entries []*audit.Entry

	if err := r.db.WithContext(ctx).
		Where("stock_id = ?", stockID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("查询审计日志失败: %w", err)
	}

	return entries, nil
}
