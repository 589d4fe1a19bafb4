package stock

import "context"

// Repository 库存账本仓储接口（领域层定义）
//
// 教学要点：
// 1. AddLot / Deduct是"原子应用"操作：
//   - 库存变更、流水、审计在同一数据库事务内完成
//   - 两个并发Worker竞争同一库存行时由行锁串行化，
//     不依赖队列层做资源分片
//
// 2. 幂等性契约：
//   - 流水表的JobID唯一索引是幂等键
//   - 同一JobID第二次应用返回ErrDuplicateJob，调用方视为已完成
//     （至少一次投递下防止重复扣减）
type Repository interface {
	// GetByID 根据库存ID获取库存行，不存在返回ErrStockNotFound
	GetByID(ctx context.Context, stockID uint) (*Stock, error)

	// ListByStore 查询指定门店的全部库存批次
	ListByStore(ctx context.Context, storeID uint) ([]*Stock, error)

	// AddLot 入库：插入新库存批次并返回生成的库存ID
	// 同事务内追加Movement(STOCK_IN)与审计记录
	AddLot(ctx context.Context, intent *MutationIntent) (uint, error)

	// Deduct 扣减（SALE / MANUAL_REMOVE）：
	// 行锁加载 → 校验余量 → 写回新数量 → 追加流水与审计，全部在一个事务内
	// 余量不足返回ErrInsufficientStock且不产生任何副作用
	Deduct(ctx context.Context, intent *MutationIntent) (*Stock, error)

	// ListMovementsByStore 分页查询指定门店的库存流水
	ListMovementsByStore(ctx context.Context, storeID uint, page, pageSize int) ([]*Movement, int64, error)
}
