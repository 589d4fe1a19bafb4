package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/storehub/internal/application/catalog"
	"github.com/xiebiao/storehub/internal/interface/http/dto"
	apperrors "github.com/xiebiao/storehub/pkg/errors"
	"github.com/xiebiao/storehub/pkg/response"
)

// ProductHandler 商品HTTP处理器
type ProductHandler struct {
	products *appcatalog.ProductUseCase
}

// NewProductHandler 创建商品处理器
func NewProductHandler(products *appcatalog.ProductUseCase) *ProductHandler {
	return &ProductHandler{products: products}
}

// toProductResponse 构建HTTP响应（附带元格式价格）
func toProductResponse(v *appcatalog.ProductView) *dto.ProductResponse {
	return &dto.ProductResponse{
		ProductID: v.ProductID,
		Name:      v.Name,
		Price:     v.Price,
		PriceYuan: dto.FormatPriceYuan(v.Price),
		CreatedAt: v.CreatedAt,
	}
}

// Create 创建商品
// @Summary      创建商品
// @Tags         商品
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateProductRequest true "商品信息"
// @Success      200 {object} response.Response{data=dto.ProductResponse}
// @Router       /api/v1/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	view, err := h.products.Create(c.Request.Context(), appcatalog.CreateProductRequest{
		Name:  req.Name,
		Price: req.Price,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, toProductResponse(view))
}

// Get 获取商品详情
// @Summary      商品详情
// @Tags         商品
// @Produce      json
// @Param        productId path int true "商品ID"
// @Success      200 {object} response.Response{data=dto.ProductResponse}
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/products/{productId} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "productId")
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "商品ID格式错误")
		return
	}

	view, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, toProductResponse(view))
}

// List 获取商品列表
// @Summary      商品列表
// @Tags         商品
// @Produce      json
// @Success      200 {object} response.Response{data=[]dto.ProductResponse}
// @Router       /api/v1/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	views, err := h.products.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	list := make([]*dto.ProductResponse, len(views))
	for i := range views {
		list[i] = toProductResponse(&views[i])
	}
	response.Success(c, list)
}

// Update 更新商品
// @Summary      更新商品
// @Tags         商品
// @Accept       json
// @Produce      json
// @Param        productId path int true "商品ID"
// @Param        request body dto.UpdateProductRequest true "商品信息"
// @Success      200 {object} response.Response{data=dto.ProductResponse}
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/products/{productId} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := parseUintParam(c, "productId")
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "商品ID格式错误")
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	view, err := h.products.Update(c.Request.Context(), appcatalog.UpdateProductRequest{
		ProductID: id,
		Name:      req.Name,
		Price:     req.Price,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, toProductResponse(view))
}

// Delete 删除商品
// @Summary      删除商品
// @Tags         商品
// @Produce      json
// @Param        productId path int true "商品ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/products/{productId} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := parseUintParam(c, "productId")
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "商品ID格式错误")
		return
	}

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, nil)
}
