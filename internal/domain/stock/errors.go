package stock

import "errors"

// 领域错误定义
//
// 教学要点：
// 1. 校验类错误（数量非法、库存不足、记录不存在）是永久失败
//   - 重新投递只会复现同样的前置条件，不重试
//
// 2. 基础设施错误（数据库/缓存/队列不可用）是瞬时失败
//   - 在队列的重试预算内重试
var (
	// 参数错误
	ErrInvalidQuantity = errors.New("数量必须为正整数")
	ErrInvalidTarget   = errors.New("变更目标缺失")
	ErrUnknownAction   = errors.New("未知的库存变更类型")

	// 业务错误
	ErrStockNotFound     = errors.New("库存记录不存在")
	ErrInsufficientStock = errors.New("库存不足")

	// 幂等性错误
	// 说明：同一JobID的变更已被持久化，重复投递直接视为已完成
	ErrDuplicateJob = errors.New("重复任务（该变更已应用）")
)
