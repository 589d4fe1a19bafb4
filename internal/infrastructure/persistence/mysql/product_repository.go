package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/xiebiao/storehub/internal/domain/catalog"
)

// productRepository MySQL商品仓储实现
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储实例
func NewProductRepository(db *gorm.DB) catalog.ProductRepository {
	return &productRepository{db: db}
}

// Create 创建商品
func (r *productRepository) Create(ctx context.Context, product *catalog.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("创建商品失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取商品
func (r *productRepository) GetByID(ctx context.Context, id uint) (*catalog.Product, error) {
	var product catalog.Product

	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("查询商品失败: %w", err)
	}

	return &product, nil
}

// List 获取全部商品
func (r *productRepository) List(ctx context.Context) ([]*catalog.Product, error) {
	var products []*catalog.Product

	if err := r.db.WithContext(ctx).Order("id ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("查询商品列表失败: %w", err)
	}

	return products, nil
}

// Update 更新商品
func (r *productRepository) Update(ctx context.Context, product *catalog.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"name":  product.Name,
			"price": product.Price,
		})
	if result.Error != nil {
		return fmt.Errorf("更新商品失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return catalog.ErrProductNotFound
	}

	return nil
}

// Delete 删除商品
func (r *productRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("删除商品失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return catalog.ErrProductNotFound
	}

	return nil
}

// Exists 判断商品是否存在
func (r *productRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64

	if err := r.db.WithContext(ctx).Model(&catalog.Product{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("查询商品失败: %w", err)
	}

	return count > 0, nil
}
