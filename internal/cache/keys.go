package cache

import "fmt"

// 缓存Key设计规范
//
// 教学要点：
// 1. 使用冒号分隔（Redis规范），带业务前缀便于管理
// 2. 固定布局：
//   - stock:{stock_id}        单条库存
//   - stock:store:{store_id}  门店库存列表
//   - product:{product_id}    单个商品
//   - products:all            商品全量列表
//   - store:{store_id}        单个门店
//   - stores:all              门店全量列表

const (
	// ProductsAllKey 商品全量列表缓存key
	ProductsAllKey = "products:all"

	// StoresAllKey 门店全量列表缓存key
	StoresAllKey = "stores:all"
)

// StockKey 生成单条库存缓存key
func StockKey(stockID uint) string {
	return fmt.Sprintf("stock:%d", stockID)
}

// StoreStockKey 生成门店库存列表缓存key
func StoreStockKey(storeID uint) string {
	return fmt.Sprintf("stock:store:%d", storeID)
}

// ProductKey 生成单个商品缓存key
func ProductKey(productID uint) string {
	return fmt.Sprintf("product:%d", productID)
}

// StoreKey 生成单个门店缓存key
func StoreKey(storeID uint) string {
	return fmt.Sprintf("store:%d", storeID)
}
