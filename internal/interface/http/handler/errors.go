package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/storehub/internal/domain/catalog"
	"github.com/xiebiao/storehub/internal/domain/stock"
	apperrors "github.com/xiebiao/storehub/pkg/errors"
	"github.com/xiebiao/storehub/pkg/response"
)

// respondError 统一的领域错误→HTTP响应转换
//
// 设计说明：
// 1. 领域层只认哨兵错误(errors.Is), 不感知HTTP; 错误码转换集中在这一处
// 2. 资源不存在类错误使用HTTP 404 + 业务错误码
// 3. 未识别的错误按系统内部错误处理, 细节不下发给客户端
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		response.NotFound(c, apperrors.ErrProductNotFound)
	case errors.Is(err, catalog.ErrStoreNotFound):
		response.NotFound(c, apperrors.ErrStoreNotFound)
	case errors.Is(err, stock.ErrStockNotFound):
		response.NotFound(c, apperrors.ErrStockNotFound)
	case errors.Is(err, stock.ErrInsufficientStock):
		response.ErrorWithCode(c, apperrors.ErrCodeInsufficientStock, "库存不足")
	case errors.Is(err, stock.ErrUnknownAction):
		response.ErrorWithCode(c, apperrors.ErrCodeUnknownAction, "未知的库存变更类型")
	case errors.Is(err, stock.ErrInvalidQuantity):
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidQuantity, "数量必须为正整数")
	case errors.Is(err, stock.ErrInvalidTarget):
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "变更目标不完整")
	case errors.Is(err, catalog.ErrInvalidProductName),
		errors.Is(err, catalog.ErrInvalidStoreName),
		errors.Is(err, catalog.ErrInvalidPrice):
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, err.Error())
	default:
		response.Error(c, err)
	}
}
