// Package worker 实现库存变更任务的消费端处理器
//
// 设计说明：
//  1. 单任务状态机：RECEIVED → VALIDATING → APPLYING → RECORDING →
//     CACHE_INVALIDATING → DONE；VALIDATING/APPLYING阶段出错进入FAILED
//  2. 账本写入（APPLYING + RECORDING）由仓储在一个事务里完成，
//     状态机层面不存在"改了数量没留流水"的中间态
//  3. 失败分类是消费端语义的核心：
//     - 永久失败（参数非法、库存不存在、余量不足、未知动作）：
//     重试一万次也不会变好，直接进失败队列，不重试
//     - 瞬时失败（数据库抖动、网络问题）：返回普通错误，由队列按
//     退避策略重试
//  4. 缓存失效失败只记日志不算任务失败：账本已经落库，让任务重试
//     会带来二次投递，而缓存陈旧最多持续一个TTL窗口（60秒）
package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/xiebiao/storehub/internal/cache"
	"github.com/xiebiao/storehub/internal/domain/stock"
	"github.com/xiebiao/storehub/internal/queue"
	"github.com/xiebiao/storehub/pkg/metrics"
)

// jobState 任务处理阶段（用于日志）
// 说明：VALIDATING/APPLYING/RECORDING在一个事务内一闪而过，
// 日志只标注可观测的落点：接收、缓存失效、终态
type jobState string

const (
	stateReceived          jobState = "RECEIVED"
	stateCacheInvalidating jobState = "CACHE_INVALIDATING"
	stateDone              jobState = "DONE"
	stateFailed            jobState = "FAILED"
)

// Worker 库存变更任务处理器
//
// 一个Worker实例同一时刻只处理一个任务；并发能力来自启动多个实例
// 消费同一个队列，行级安全由账本事务的SELECT FOR UPDATE保证
type Worker struct {
	stocks stock.Repository
	cache  cache.Cache
}

// New 创建Worker实例
func New(stocks stock.Repository, c cache.Cache) *Worker {
	return &Worker{
		stocks: stocks,
		cache:  c,
	}
}

// Handle 处理单个库存变更任务
//
// 返回值语义（与queue.Handler契约一致）：
//   - nil: 任务完成，队列Ack
//   - queue.Permanent包装的错误: 永久失败，进失败队列，不重试
//   - 其他错误: 瞬时失败，队列按退避策略重试
func (w *Worker) Handle(ctx context.Context, intent *stock.MutationIntent) error {
	start := time.Now()
	log.Printf("📥 [%s] %s 任务开始处理 (状态: %s)", intent.JobID, intent.Action, stateReceived)

	err := w.process(ctx, intent)

	duration := time.Since(start)
	metrics.ObserveHistogram(metrics.StockJobDuration, duration.Seconds())

	if err != nil {
		if queue.IsPermanent(err) {
			metrics.IncCounterVec(metrics.StockJobsTotal, map[string]string{
				"action":  string(intent.Action),
				"outcome": "failed",
			})
			log.Printf("❌ [%s] %s 任务永久失败: %v (状态: %s)", intent.JobID, intent.Action, err, stateFailed)
		} else {
			log.Printf("⚠️ [%s] %s 任务瞬时失败，等待重试: %v", intent.JobID, intent.Action, err)
		}
		return err
	}

	metrics.IncCounterVec(metrics.StockJobsTotal, map[string]string{
		"action":  string(intent.Action),
		"outcome": "done",
	})
	log.Printf("✅ [%s] %s 任务完成，耗时%v (状态: %s)", intent.JobID, intent.Action, duration, stateDone)
	return nil
}

// process 执行状态机主体
func (w *Worker) process(ctx context.Context, intent *stock.MutationIntent) error {
	// 阶段1：VALIDATING
	// 参数非法属于永久失败：重试不会让非法请求变合法
	if err := intent.Validate(); err != nil {
		return queue.Permanent(err)
	}

	// 阶段2：APPLYING + RECORDING（仓储单事务完成）
	var keys []string

	switch intent.Action {
	case stock.ActionStockIn:
		newStockID, err := w.stocks.AddLot(ctx, intent)
		if err != nil {
			return w.classify(err)
		}
		keys = []string{
			cache.StockKey(newStockID),
			cache.StoreStockKey(intent.StoreID),
		}

	case stock.ActionSale, stock.ActionManualRemove:
		row, err := w.stocks.Deduct(ctx, intent)
		if err != nil {
			if errors.Is(err, stock.ErrDuplicateJob) {
				// 至少一次投递下的重复任务：账本里已有这条流水，
				// 视为已完成，绝不二次扣减
				log.Printf("🔁 [%s] 重复任务，已应用过，跳过", intent.JobID)
				return nil
			}
			return w.classify(err)
		}
		// 失效Key用锁定行里的门店ID，不信任payload
		keys = []string{
			cache.StockKey(row.StockID),
			cache.StoreStockKey(row.StoreID),
		}

	default:
		return queue.Permanent(stock.ErrUnknownAction)
	}

	// 阶段3：CACHE_INVALIDATING
	// 失效失败不让任务失败：账本已落库，重试会造成重复投递
	if err := w.cache.Invalidate(ctx, keys...); err != nil {
		log.Printf("⚠️ [%s] 缓存失效失败（TTL兜底）: %v (状态: %s)", intent.JobID, err, stateCacheInvalidating)
	}

	return nil
}

// classify 失败分类
//
// 业务规则类错误 → 永久失败；其余（数据库、网络） → 瞬时失败
func (w *Worker) classify(err error) error {
	if errors.Is(err, stock.ErrDuplicateJob) {
		// 入库场景的重复任务同样视为已完成
		return nil
	}

	switch {
	case errors.Is(err, stock.ErrStockNotFound),
		errors.Is(err, stock.ErrInsufficientStock),
		errors.Is(err, stock.ErrInvalidQuantity),
		errors.Is(err, stock.ErrInvalidTarget),
		errors.Is(err, stock.ErrUnknownAction):
		return queue.Permanent(err)
	}

	return err
}
