package audit

import (
	"errors"
	"time"
)

// Entry 审计日志（领域模型）
//
// 教学要点：
// 1. 审计日志独立于库存流水
//   - 流水回答"数量怎么变的"，审计回答"哪次操作动了哪行"
//   - 两者都是只增不改（Append-Only）
//
// 2. 记录时机：变更持久化之后、任务标记完成之前
type Entry struct {
	// 主键ID
	ID uint `gorm:"primaryKey" json:"id"`

	// 操作类型（STOCK_IN / SALE / MANUAL_REMOVE）
	Action string `gorm:"type:varchar(20);not null;index:idx_audit_action" json:"action"`

	// 库存行ID
	StockID uint `gorm:"not null;index:idx_audit_stock_id" json:"stock_id"`

	// 门店ID
	StoreID uint `gorm:"not null" json:"store_id"`

	// 商品ID
	ProductID uint `gorm:"not null" json:"product_id"`

	// 变更数量
	Quantity int `gorm:"not null" json:"quantity"`

	// 创建时间
	CreatedAt time.Time `gorm:"index:idx_audit_created_at" json:"created_at"`
}

// TableName 指定表名
func (Entry) TableName() string {
	return "audit_logs"
}

// ErrMissingField 必填字段缺失
// Worker在写入前校验，缺失视为任务失败
var ErrMissingField = errors.New("审计日志缺少必填字段")

// Validate 校验审计日志的必填字段
// 说明：Action、StockID、StoreID、ProductID、Quantity必须全部有效
func (e *Entry) Validate() error {
	if e.Action == "" {
		return ErrMissingField
	}
	if e.StockID == 0 || e.StoreID == 0 || e.ProductID == 0 {
		return ErrMissingField
	}
	if e.Quantity <= 0 {
		return ErrMissingField
	}
	return nil
}

// NewEntry 创建审计日志
func NewEntry(action string, stockID, storeID, productID uint, quantity int) *Entry {
	return &Entry{
		Action:    action,
		StockID:   stockID,
		StoreID:   storeID,
		ProductID: productID,
		Quantity:  quantity,
	}
}
