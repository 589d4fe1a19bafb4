package stock

import "time"

// Stock 库存实体（领域模型）
//
// 教学要点：
// 1. 一行代表某门店某商品的一个库存批次
//   - STOCK_IN总是插入新行（批次语义），不合并到已有行
//   - SALE / MANUAL_REMOVE针对已有行就地扣减
//
// 2. 核心不变式：Quantity永不为负
//   - 会导致负数的变更在应用前被拒绝
//   - 扣减在数据库事务内用行锁保证（见mysql实现）
type Stock struct {
	// 库存ID（主键）
	StockID uint `gorm:"primaryKey;column:stock_id" json:"stock_id"`

	// 门店ID
	StoreID uint `gorm:"not null;index:idx_store_id" json:"store_id"`

	// 商品ID
	ProductID uint `gorm:"not null;index:idx_product_id" json:"product_id"`

	// 当前数量（>= 0）
	Quantity int `gorm:"not null;default:0" json:"quantity"`

	// 创建时间
	CreatedAt time.Time `json:"created_at"`

	// 更新时间
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Stock) TableName() string {
	return "stock"
}

// CanDeduct 判断是否可以扣减
// 教学要点：扣减前的业务规则验证，当前量减去扣减量不得为负
func (s *Stock) CanDeduct(quantity int) bool {
	return quantity > 0 && s.Quantity >= quantity
}

// IsOutOfStock 判断是否缺货
func (s *Stock) IsOutOfStock() bool {
	return s.Quantity <= 0
}

// Movement 库存流水（领域模型）
//
// 教学要点：
// 1. 为什么需要库存流水？
//   - 审计需求：所有数量变化必须可追溯
//   - 对账需求：流水累加应与库存现值吻合
//
// 2. 设计原则
//   - 只增不改（Append-Only）
//   - Quantity记录本次变更的绝对量（正整数），方向由Kind表达
//   - JobID是队列任务的幂等键，唯一索引防止重复投递导致的重复应用
type Movement struct {
	// 主键ID
	ID uint `gorm:"primaryKey" json:"id"`

	// 门店ID
	StoreID uint `gorm:"not null;index:idx_mv_store_id" json:"store_id"`

	// 商品ID
	ProductID uint `gorm:"not null;index:idx_mv_product_id" json:"product_id"`

	// 变更数量（正整数）
	Quantity int `gorm:"not null" json:"quantity"`

	// 变更类型
	Kind Action `gorm:"type:varchar(20);not null" json:"kind"`

	// 队列任务ID（幂等键）
	JobID string `gorm:"type:varchar(64);uniqueIndex:uk_job_id" json:"job_id"`

	// 创建时间
	CreatedAt time.Time `gorm:"index:idx_mv_created_at" json:"created_at"`
}

// TableName 指定表名
func (Movement) TableName() string {
	return "stock_movements"
}
