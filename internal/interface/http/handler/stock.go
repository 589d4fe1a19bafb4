package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appstock "github.com/xiebiao/storehub/internal/application/stock"
	"github.com/xiebiao/storehub/internal/interface/http/dto"
	apperrors "github.com/xiebiao/storehub/pkg/errors"
	"github.com/xiebiao/storehub/pkg/response"
)

// StockHandler 库存HTTP处理器
type StockHandler struct {
	enqueueStockIn       *appstock.EnqueueStockInUseCase
	enqueueStockMutation *appstock.EnqueueStockMutationUseCase
	getStock             *appstock.GetStockUseCase
	listStockByStore     *appstock.ListStockByStoreUseCase
	listStoreMovements   *appstock.ListStoreMovementsUseCase
	listStockAudit       *appstock.ListStockAuditUseCase
}

// NewStockHandler 创建库存处理器
func NewStockHandler(
	enqueueStockIn *appstock.EnqueueStockInUseCase,
	enqueueStockMutation *appstock.EnqueueStockMutationUseCase,
	getStock *appstock.GetStockUseCase,
	listStockByStore *appstock.ListStockByStoreUseCase,
	listStoreMovements *appstock.ListStoreMovementsUseCase,
	listStockAudit *appstock.ListStockAuditUseCase,
) *StockHandler {
	return &StockHandler{
		enqueueStockIn:       enqueueStockIn,
		enqueueStockMutation: enqueueStockMutation,
		getStock:             getStock,
		listStockByStore:     listStockByStore,
		listStoreMovements:   listStoreMovements,
		listStockAudit:       listStockAudit,
	}
}

// StockIn 入库（异步受理）
// @Summary      入库
// @Description  为指定门店/商品新增库存批次, 请求入队后立即返回任务ID
// @Tags         库存
// @Accept       json
// @Produce      json
// @Param        request body dto.StockInRequest true "入库信息"
// @Success      202 {object} response.Response{data=dto.JobAcceptedResponse}
// @Failure      404 {object} response.Response "门店或商品不存在"
// @Router       /api/v1/stock [post]
func (h *StockHandler) StockIn(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.StockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	// 2. 调用应用层用例
	result, err := h.enqueueStockIn.Execute(c.Request.Context(), appstock.EnqueueStockInRequest{
		StoreID:   req.StoreID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	// 3. 202受理响应
	response.Accepted(c, &dto.JobAcceptedResponse{
		JobID:  result.JobID,
		Status: result.Status,
	})
}

// Mutate 扣减库存（异步受理）
// @Summary      扣减库存
// @Description  对指定库存行执行SALE或MANUAL_REMOVE, 请求入队后立即返回任务ID
// @Tags         库存
// @Accept       json
// @Produce      json
// @Param        stockId path int true "库存行ID"
// @Param        request body dto.StockMutationRequest true "变更信息"
// @Success      202 {object} response.Response{data=dto.JobAcceptedResponse}
// @Failure      404 {object} response.Response "库存记录不存在"
// @Router       /api/v1/stock/{stockId} [put]
func (h *StockHandler) Mutate(c *gin.Context) {
	stockID, err := parseUintParam(c, "stockId")
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "库存ID格式错误")
		return
	}

	var req dto.StockMutationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
		return
	}

	result, err := h.enqueueStockMutation.Execute(c.Request.Context(), appstock.EnqueueStockMutationRequest{
		StockID:  stockID,
		Action:   req.Action,
		Quantity: req.Quantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.Accepted(c, &dto.JobAcceptedResponse{
		JobID:  result.JobID,
		Status: result.Status,
	})
}

// GetStock 查询单条库存
// @Summary      查询库存
// @Tags         库存
// @Produce      json
// @Param        stockId path int true "库存行ID"
// @Success      200 {object} response.Response{data=appstock.StockView}
// @Failure      404 {object} response.Response "库存记录不存在"
// @Router       /api/v1/stock/{stockId} [get]
func (h *StockHandler) GetStock(c *gin.Context) {
	stockID, err := parseUintParam(c, "stockId")
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "库存ID格式错误")
		return
	}

	view, err := h.getStock.Execute(c.Request.Context(), stockID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, view)
}

// ListByStore 查询门店库存列表
// @Summary      查询门店库存
// @Tags         库存
// @Produce      json
// @Param        storeId path int true "门店ID"
// @Success      200 {object} response.Response{data=[]appstock.StockView}
// @Failure      404 {object} response.Response "门店下无库存"
// @Router       /api/v1/stock/store/{storeId} [get]
func (h *StockHandler) ListByStore(c *gin.Context) {
	storeID, err := parseUintParam(c, "storeId")
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "门店ID格式错误")
		return
	}

	views, err := h.listStockByStore.Execute(c.Request.Context(), storeID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, views)
}

// ListMovements 查询门店库存流水
// @Summary      查询门店库存流水
// @Tags         库存
// @Produce      json
// @Param        storeId path int true "门店ID"
// @Param        page query int false "页码" default(1)
// @Param        page_size query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=appstock.ListStoreMovementsResponse}
// @Router       /api/v1/stock/store/{storeId}/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	storeID, err := parseUintParam(c, "storeId")
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "门店ID格式错误")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.listStoreMovements.Execute(c.Request.Context(), appstock.ListStoreMovementsRequest{
		StoreID:  storeID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, result)
}

// ListAudit 查询库存行的审计记录
// @Summary      查询库存审计记录
// @Tags         库存
// @Produce      json
// @Param        stockId path int true "库存行ID"
// @Success      200 {object} response.Response{data=[]appstock.AuditView}
// @Failure      404 {object} response.Response "库存记录不存在"
// @Router       /api/v1/stock/{stockId}/audit [get]
func (h *StockHandler) ListAudit(c *gin.Context) {
	stockID, err := parseUintParam(c, "stockId")
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "库存ID格式错误")
		return
	}

	views, err := h.listStockAudit.Execute(c.Request.Context(), stockID)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, views)
}

// parseUintParam 解析路径中的正整数ID
func parseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return uint(id), nil
}
