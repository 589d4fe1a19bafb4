package dto

// StockInRequest HTTP入库请求
// validator tag说明:
// - required: 必填字段
// - min: 数量必须为正(非法数量不进入队列)
type StockInRequest struct {
	StoreID   uint `json:"store_id" binding:"required" example:"1"`
	ProductID uint `json:"product_id" binding:"required" example:"2"`
	Quantity  int  `json:"quantity" binding:"required,min=1" example:"100"`
}

// StockMutationRequest HTTP库存扣减请求
// Action只接受SALE与MANUAL_REMOVE(入库走POST接口)
type StockMutationRequest struct {
	Action   string `json:"action" binding:"required,oneof=SALE MANUAL_REMOVE" example:"SALE"`
	Quantity int    `json:"quantity" binding:"required,min=1" example:"3"`
}

// JobAcceptedResponse HTTP异步受理响应
// 变更结果不同步返回, 调用方通过查询库存接口观察最终状态
type JobAcceptedResponse struct {
	JobID  string `json:"job_id" example:"JOB1699248000123456"`
	Status string `json:"status" example:"queued"`
}
