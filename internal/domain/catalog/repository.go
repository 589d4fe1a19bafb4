package catalog

import "context"

// ProductRepository 商品仓储接口（领域层定义）
//
// 教学要点：依赖倒置原则（高层定义接口，低层实现）
// Exists方法供库存入库的生产者做引用存在性校验，
// Worker侧出于性能考虑不再二次校验（由生产者契约保证）
type ProductRepository interface {
	// Create 创建商品
	Create(ctx context.Context, p *Product) error

	// GetByID 根据ID获取商品
	GetByID(ctx context.Context, id uint) (*Product, error)

	// List 获取所有商品
	List(ctx context.Context) ([]*Product, error)

	// Update 更新商品
	Update(ctx context.Context, p *Product) error

	// Delete 删除商品
	Delete(ctx context.Context, id uint) error

	// Exists 判断商品是否存在
	Exists(ctx context.Context, id uint) (bool, error)
}

// StoreRepository 门店仓储接口
type StoreRepository interface {
	// Create 创建门店
	Create(ctx context.Context, s *Store) error

	// GetByID 根据ID获取门店
	GetByID(ctx context.Context, id uint) (*Store, error)

	// List 获取所有门店
	List(ctx context.Context) ([]*Store, error)

	// Delete 删除门店
	Delete(ctx context.Context, id uint) error

	// Exists 判断门店是否存在
	Exists(ctx context.Context, id uint) (bool, error)
}
