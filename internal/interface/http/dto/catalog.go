package dto

import "fmt"

// CreateProductRequest HTTP创建商品请求
type CreateProductRequest struct {
	Name  string `json:"name" binding:"required,max=200" example:"铁观音"`
	Price int64  `json:"price" binding:"required,min=1,max=99999999" example:"1200"` // 价格(分)
}

// UpdateProductRequest HTTP更新商品请求
type UpdateProductRequest struct {
	Name  string `json:"name" binding:"required,max=200" example:"铁观音"`
	Price int64  `json:"price" binding:"required,min=1,max=99999999" example:"1500"`
}

// CreateStoreRequest HTTP创建门店请求
type CreateStoreRequest struct {
	Name     string `json:"name" binding:"required,max=200" example:"中山路店"`
	Location string `json:"location" binding:"max=500" example:"厦门市中山路1号"`
}

// ProductResponse HTTP商品响应
// 说明: 附带展示用的元格式价格, 存储与计算一律用分
type ProductResponse struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`      // 价格(分)
	PriceYuan string `json:"price_yuan"` // 价格(元, 展示用)
	CreatedAt string `json:"created_at"`
}

// FormatPriceYuan 格式化价格(分→元)
// 例如: 1200分 → "12.00"
func FormatPriceYuan(priceFen int64) string {
	yuan := float64(priceFen) / 100.0
	return fmt.Sprintf("%.2f", yuan)
}
