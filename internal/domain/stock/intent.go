package stock

// Action 库存变更类型
type Action string

const (
	// ActionStockIn 入库（插入新库存批次）
	ActionStockIn Action = "STOCK_IN"

	// ActionSale 销售出库（就地扣减已有批次）
	ActionSale Action = "SALE"

	// ActionManualRemove 人工移除（盘亏、报损等）
	ActionManualRemove Action = "MANUAL_REMOVE"
)

// IsValid 判断变更类型是否合法
func (a Action) IsValid() bool {
	switch a {
	case ActionStockIn, ActionSale, ActionManualRemove:
		return true
	default:
		return false
	}
}

// IsRemoval 判断是否为扣减类变更
func (a Action) IsRemoval() bool {
	return a == ActionSale || a == ActionManualRemove
}

// MutationIntent 库存变更意图（队列载荷）
//
// 教学要点：
// 1. 生产者构造意图入队，Worker消费后应用到库存账本
// 2. 意图是短命对象：只存在于队列的持久化窗口和处理过程中
// 3. STOCK_IN携带(StoreID, ProductID)，SALE/MANUAL_REMOVE携带StockID
//   - 扣减类变更的门店/商品信息由Worker从库存行恢复，
//     不信任调用方传入的值（可能过期）
type MutationIntent struct {
	// JobID 队列任务ID（入队时生成，作为应用侧幂等键）
	JobID string `json:"job_id"`

	// Action 变更类型
	Action Action `json:"action"`

	// StockID 目标库存行（SALE / MANUAL_REMOVE）
	StockID uint `json:"stock_id,omitempty"`

	// StoreID / ProductID 新批次归属（STOCK_IN）
	StoreID   uint `json:"store_id,omitempty"`
	ProductID uint `json:"product_id,omitempty"`

	// Quantity 变更数量（正整数）
	Quantity int `json:"quantity"`
}

// Validate 校验意图自身的合法性
// 说明：只校验数量与目标字段，引用存在性由生产者契约保证
func (m *MutationIntent) Validate() error {
	if !m.Action.IsValid() {
		return ErrUnknownAction
	}

	if m.Quantity <= 0 {
		return ErrInvalidQuantity
	}

	switch m.Action {
	case ActionStockIn:
		if m.StoreID == 0 || m.ProductID == 0 {
			return ErrInvalidTarget
		}
	case ActionSale, ActionManualRemove:
		if m.StockID == 0 {
			return ErrInvalidTarget
		}
	}

	return nil
}
