package catalog

import "time"

// Product 商品实体（领域模型）
//
// 教学要点：
// 1. 商品一旦被库存引用即视为不可变（只改名称/价格，不改ID）
// 2. 价格以分为单位存储（int64），避免浮点精度问题
type Product struct {
	// 商品ID（主键）
	ID uint `gorm:"primaryKey" json:"product_id"`

	// 商品名称
	Name string `gorm:"type:varchar(100);not null" json:"name"`

	// 价格（单位：分）
	Price int64 `gorm:"not null" json:"price"`

	// 创建时间
	CreatedAt time.Time `json:"created_at"`

	// 更新时间
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// Validate 验证商品实体
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrInvalidProductName
	}
	if p.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}
