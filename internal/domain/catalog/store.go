package catalog

import "time"

// Store 门店实体（领域模型）
// 生命周期与Product相同：由目录CRUD创建/删除，库存只引用其ID
type Store struct {
	// 门店ID（主键）
	ID uint `gorm:"primaryKey" json:"store_id"`

	// 门店名称
	Name string `gorm:"type:varchar(100);not null" json:"name"`

	// 门店位置
	Location string `gorm:"type:varchar(255)" json:"location"`

	// 创建时间
	CreatedAt time.Time `json:"created_at"`

	// 更新时间
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Store) TableName() string {
	return "stores"
}

// Validate 验证门店实体
func (s *Store) Validate() error {
	if s.Name == "" {
		return ErrInvalidStoreName
	}
	return nil
}
