package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/storehub/internal/domain/audit"
	"github.com/xiebiao/storehub/internal/domain/stock"
)

// stockRepository MySQL库存账本仓储实现
//
// 教学要点：
// 1. "原子应用"事务
//   - 库存变更、流水、审计三张表在同一事务内写入
//   - 要么全部落库，要么什么都没发生，不存在"改了数量没留流水"的中间态
//
// 2. 并发安全：SELECT FOR UPDATE悲观锁
//   - 队列不按库存ID分片，两个Worker可能同时处理同一行的变更
//   - 行锁把竞争串行化：后到的事务在锁上等待，拿到锁后重新看到最新数量
//   - DO：事务 + 行锁下重新校验余量
//   - DON'T：先读后写两步分开（并发下丢失更新、卖出负库存）
//
// 3. 幂等性：流水表JobID唯一索引
//   - 至少一次投递下，重复的任务在插入流水时触发唯一索引冲突
//   - 事务回滚，返回ErrDuplicateJob，调用方视为已完成，不会二次扣减
type stockRepository struct {
	db *gorm.DB
}

// NewStockRepository 创建库存账本仓储实例
func NewStockRepository(db *gorm.DB) stock.Repository {
	return &stockRepository{db: db}
}

// GetByID 根据库存ID获取库存行
func (r *stockRepository) GetByID(ctx context.Context, stockID uint) (*stock.Stock, error) {
	var s stock.Stock

	if err := r.db.WithContext(ctx).Where("stock_id = ?", stockID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, stock.ErrStockNotFound
		}
		return nil, fmt.Errorf("查询库存失败: %w", err)
	}

	return &s, nil
}

// ListByStore 查询指定门店的全部库存批次
func (r *stockRepository) ListByStore(ctx context.Context, storeID uint) ([]*stock.Stock, error) {
	var items []*stock.Stock

	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("stock_id ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("查询门店库存失败: %w", err)
	}

	return items, nil
}

// AddLot 入库：插入新库存批次
//
// 说明：STOCK_IN总是插入新行（批次语义），不合并到已有的(门店,商品)行
// 同事务内追加流水与审计，顺序：库存 → 流水 → 审计
func (r *stockRepository) AddLot(ctx context.Context, intent *stock.MutationIntent) (uint, error) {
	if err := intent.Validate(); err != nil {
		return 0, err
	}

	var newStockID uint

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 步骤1：插入新库存批次
		row := &stock.Stock{
			StoreID:   intent.StoreID,
			ProductID: intent.ProductID,
			Quantity:  intent.Quantity,
		}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("插入库存批次失败: %w", err)
		}
		newStockID = row.StockID

		// 步骤2：追加流水（JobID唯一索引兜底幂等）
		movement := &stock.Movement{
			StoreID:   intent.StoreID,
			ProductID: intent.ProductID,
			Quantity:  intent.Quantity,
			Kind:      stock.ActionStockIn,
			JobID:     intent.JobID,
		}
		if err := tx.Create(movement).Error; err != nil {
			if isDuplicateError(err) {
				return stock.ErrDuplicateJob
			}
			return fmt.Errorf("追加库存流水失败: %w", err)
		}

		// 步骤3：追加审计日志
		entry := audit.NewEntry(string(stock.ActionStockIn),
			newStockID, intent.StoreID, intent.ProductID, intent.Quantity)
		if err := entry.Validate(); err != nil {
			return err
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("追加审计日志失败: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return newStockID, nil
}

// Deduct 扣减（SALE / MANUAL_REMOVE）
//
// 完整流程（单事务）：
//  1. SELECT FOR UPDATE锁定库存行
//  2. 行锁下重新校验余量（防止并发扣减超卖）
//  3. 写回新数量
//  4. 追加流水与审计
//
// 审计中的门店/商品取自锁定的库存行，不信任意图里调用方传的值
func (r *stockRepository) Deduct(ctx context.Context, intent *stock.MutationIntent) (*stock.Stock, error) {
	if err := intent.Validate(); err != nil {
		return nil, err
	}
	if !intent.Action.IsRemoval() {
		return nil, stock.ErrUnknownAction
	}

	var row stock.Stock

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 步骤1：锁定库存行（SELECT FOR UPDATE）
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("stock_id = ?", intent.StockID).
			First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return stock.ErrStockNotFound
			}
			return fmt.Errorf("锁定库存失败: %w", err)
		}

		// 步骤2：行锁下校验余量
		if !row.CanDeduct(intent.Quantity) {
			return stock.ErrInsufficientStock
		}

		// 步骤3：写回新数量
		row.Quantity -= intent.Quantity
		if err := tx.Save(&row).Error; err != nil {
			return fmt.Errorf("写回库存失败: %w", err)
		}

		// 步骤4：追加流水
		movement := &stock.Movement{
			StoreID:   row.StoreID,
			ProductID: row.ProductID,
			Quantity:  intent.Quantity,
			Kind:      intent.Action,
			JobID:     intent.JobID,
		}
		if err := tx.Create(movement).Error; err != nil {
			if isDuplicateError(err) {
				return stock.ErrDuplicateJob
			}
			return fmt.Errorf("追加库存流水失败: %w", err)
		}

		// 步骤5：追加审计日志（门店/商品来自锁定的行）
		entry := audit.NewEntry(string(intent.Action),
			row.StockID, row.StoreID, row.ProductID, intent.Quantity)
		if err := entry.Validate(); err != nil {
			return err
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("追加审计日志失败: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &row, nil
}

// ListMovementsByStore 分页查询指定门店的库存流水
func (r *stockRepository) ListMovementsByStore(ctx context.Context, storeID uint, page, pageSize int) ([]*stock.Movement, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&stock.Movement{}).
		Where("store_id = ?", storeID).
		Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("查询流水总数失败: %w", err)
	}

	var movements []*stock.Movement
	offset := (page - 1) * pageSize

	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&movements).Error; err != nil {
		return nil, 0, fmt.Errorf("查询库存流水失败: %w", err)
	}

	return movements, total, nil
}

// isDuplicateError 判断错误是否为流水表JobID唯一索引冲突
//
// 本仓储唯一的期望冲突来源是stock_movements.uk_job_id：
// 同一JobID的变更意图被重复投递时，第二次插入流水触发冲突，
// AddLot/Deduct据此回滚并返回stock.ErrDuplicateJob（幂等约定）。
// MySQL错误码1062（Duplicate entry），GORM v2译为ErrDuplicatedKey；
// 驱动未开启错误翻译时退化为错误信息匹配
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}
