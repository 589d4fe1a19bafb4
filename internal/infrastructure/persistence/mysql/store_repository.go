package mysql

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/xiebiao/storehub/internal/domain/catalog"
)

// storeRepository MySQL门店仓储实现
type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository 创建门店仓储实例
func NewStoreRepository(db *gorm.DB) catalog.StoreRepository {
	return &storeRepository{db: db}
}

// Create 创建门店
func (r *storeRepository) Create(ctx context.Context, store *catalog.Store) error {
	if err := store.Validate(); err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return fmt.Errorf("创建门店失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取门店
func (r *storeRepository) GetByID(ctx context.Context, id uint) (*catalog.Store, error) {
	var store catalog.Store

	if err := r.db.WithContext(ctx).First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrStoreNotFound
		}
		return nil, fmt.Errorf("查询门店失败: %w", err)
	}

	return &store, nil
}

// List 获取全部门店
func (r *storeRepository) List(ctx context.Context) ([]*catalog.Store, error) {
	var stores []*catalog.Store

	if err := r.db.WithContext(ctx).Order("id ASC").Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("查询门店列表失败: %w", err)
	}

	return stores, nil
}

// Delete 删除门店
func (r *storeRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Store{}, id)
	if result.Error != nil {
		return fmt.Errorf("删除门店失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return catalog.ErrStoreNotFound
	}

	return nil
}

// Exists 判断门店是否存在
func (r *storeRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64

	if err := r.db.WithContext(ctx).Model(&catalog.Store{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("查询门店失败: %w", err)
	}

	return count > 0, nil
}
