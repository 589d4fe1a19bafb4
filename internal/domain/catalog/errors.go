package catalog

import "errors"

// 领域错误定义
var (
	// 参数错误
	ErrInvalidProductName = errors.New("商品名称不能为空")
	ErrInvalidStoreName   = errors.New("门店名称不能为空")
	ErrInvalidPrice       = errors.New("价格不能为负数")

	// 资源错误
	ErrProductNotFound = errors.New("商品不存在")
	ErrStoreNotFound   = errors.New("门店不存在")
)
