package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/storehub/internal/application/catalog"
	"github.com/xiebiao/storehub/internal/interface/http/dto"
	apperrors "github.com/xiebiao/storehub/pkg/errors"
	"github.com/xiebiao/storehub/pkg/response"
)

// StoreHandler 门店HTTP处理器
type StoreHandler struct {
	stores *appcatalog.StoreUseCase
}

// NewStoreHandler 创建门店处理器
func NewStoreHandler(stores *appcatalog.StoreUseCase) *StoreHandler {
	return &StoreHandler{stores: stores}
}

// Create 创建门店
// @Summary      创建门店
// @Tags         门店
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateStoreRequest true "门店信息"
// @Success      200 {object} response.Response{data=appcatalog.StoreView}
// @Router       /api/v1/stores [post]
func (h *StoreHandler) Create(c *gin.Context) {
	var req dto.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	view, err := h.stores.Create(c.Request.Context(), appcatalog.CreateStoreRequest{
		Name:     req.Name,
		Location: req.Location,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, view)
}

// Get 获取门店详情
// @Summary      门店详情
// @Tags         门店
// @Produce      json
// @Param        storeId path int true "门店ID"
// @Success      200 {object} response.Response{data=appcatalog.StoreView}
// @Failure      404 {object} response.Response "门店不存在"
// @Router       /api/v1/stores/{storeId} [get]
func (h *StoreHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "storeId")
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "门店ID格式错误")
		return
	}

	view, err := h.stores.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, view)
}

// List 获取门店列表
// @Summary      门店列表
// @Tags         门店
// @Produce      json
// @Success      200 {object} response.Response{data=[]appcatalog.StoreView}
// @Router       /api/v1/stores [get]
func (h *StoreHandler) List(c *gin.Context) {
	views, err := h.stores.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, views)
}

// Delete 删除门店
// @Summary      删除门店
// @Tags         门店
// @Produce      json
// @Param        storeId path int true "门店ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "门店不存在"
// @Router       /api/v1/stores/{storeId} [delete]
func (h *StoreHandler) Delete(c *gin.Context) {
	id, err := parseUintParam(c, "storeId")
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "门店ID格式错误")
		return
	}

	if err := h.stores.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, nil)
}
