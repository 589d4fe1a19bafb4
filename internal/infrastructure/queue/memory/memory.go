// Package memory 提供进程内的任务队列实现
//
// 用途：单机部署与单元测试
// 语义与rabbitmq实现保持一致：FIFO投递、失败重试（指数退避）、
// 超过重试预算进入失败列表（终态，不丢弃）
package memory

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xiebiao/storehub/internal/domain/stock"
	"github.com/xiebiao/storehub/internal/queue"
	"github.com/xiebiao/storehub/pkg/metrics"
)

// task 队列内部任务（意图 + 投递次数）
type task struct {
	intent   *stock.MutationIntent
	attempts int
}

// FailedJob 终态失败任务（供运维检查）
type FailedJob struct {
	Intent   *stock.MutationIntent
	Attempts int
	Reason   string
	FailedAt time.Time
}

// Queue 进程内任务队列
//
// 教学要点：
//  1. backlog + notify通道：入队时唤醒消费者，空转时靠ticker兜底
//  2. 多个消费者goroutine可以并发调用Consume，
//     取任务由互斥锁串行化，处理互相独立（对应多Worker实例）
type Queue struct {
	mu      sync.Mutex
	backlog []*task
	failed  []*FailedJob
	notify  chan struct{}

	maxRetries   int
	retryBackoff time.Duration

	closed    atomic.Bool
	enqueued  atomic.Uint64
	processed atomic.Uint64
}

// New 创建进程内队列
func New(maxRetries int, retryBackoff time.Duration) *Queue {
	if retryBackoff <= 0 {
		retryBackoff = time.Second
	}
	return &Queue{
		notify:       make(chan struct{}, 1),
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
	}
}

// Enqueue 将变更意图入队，返回任务ID
func (q *Queue) Enqueue(_ context.Context, intent *stock.MutationIntent) (string, error) {
	if q.closed.Load() {
		return "", queue.ErrQueueClosed
	}

	if intent.JobID == "" {
		intent.JobID = queue.GenerateJobID()
	}

	q.mu.Lock()
	q.backlog = append(q.backlog, &task{intent: intent})
	size := len(q.backlog)
	q.mu.Unlock()
	q.enqueued.Add(1)
	metrics.SetGauge(metrics.QueueBacklogSize, float64(size))

	// 非阻塞唤醒
	select {
	case q.notify <- struct{}{}:
	default:
	}

	return intent.JobID, nil
}

// Consume 阻塞消费，直到ctx取消
// 多个goroutine可并发调用（每个相当于一个Worker实例）
func (q *Queue) Consume(ctx context.Context, handler queue.Handler) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		t := q.pop()
		if t == nil {
			select {
			case <-ctx.Done():
				return nil
			case <-q.notify:
			case <-ticker.C:
			}
			continue
		}

		q.process(ctx, t, handler)
	}
}

// process 处理单个任务：成功确认、永久失败入终态、瞬时失败退避重投
func (q *Queue) process(ctx context.Context, t *task, handler queue.Handler) {
	// 退出过程中不消耗重试预算：任务原样回到backlog，等下次启动再处理
	if ctx.Err() != nil {
		q.requeue(t)
		return
	}

	t.attempts++

	err := handler(ctx, t.intent)
	if err == nil {
		q.processed.Add(1)
		return
	}

	if queue.IsPermanent(err) {
		log.Printf("[队列] 任务永久失败: JobID=%s, 原因=%v", t.intent.JobID, err)
		q.park(t, err.Error())
		return
	}

	if t.attempts > q.maxRetries {
		log.Printf("[队列] 任务超过重试预算(%d次): JobID=%s, 最后错误=%v",
			q.maxRetries, t.intent.JobID, err)
		q.park(t, err.Error())
		return
	}

	// 指数退避后重新入队
	metrics.IncCounter(metrics.StockJobsRetriedTotal)
	backoff := queue.Backoff(q.retryBackoff, t.attempts)
	log.Printf("[队列] 任务瞬时失败, %v后第%d次重试: JobID=%s, 错误=%v",
		backoff, t.attempts, t.intent.JobID, err)

	select {
	case <-ctx.Done():
		// 退出时直接回到backlog，进程内队列不跨重启持久化
		q.requeue(t)
	case <-time.After(backoff):
		q.requeue(t)
	}
}

// pop 取出队首任务（FIFO）
func (q *Queue) pop() *task {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.backlog) == 0 {
		return nil
	}
	t := q.backlog[0]
	q.backlog = q.backlog[1:]
	metrics.SetGauge(metrics.QueueBacklogSize, float64(len(q.backlog)))
	return t
}

// requeue 任务重新入队（队尾）
func (q *Queue) requeue(t *task) {
	q.mu.Lock()
	q.backlog = append(q.backlog, t)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// park 任务进入终态失败列表（永不丢弃）
func (q *Queue) park(t *task, reason string) {
	q.mu.Lock()
	q.failed = append(q.failed, &FailedJob{
		Intent:   t.intent,
		Attempts: t.attempts,
		Reason:   reason,
		FailedAt: time.Now(),
	})
	q.mu.Unlock()
}

// FailedJobs 返回终态失败任务快照（供运维检查）
func (q *Queue) FailedJobs() []*FailedJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*FailedJob, len(q.failed))
	copy(out, q.failed)
	return out
}

// BacklogSize 当前待处理任务数
func (q *Queue) BacklogSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// Processed 已成功处理的任务数
func (q *Queue) Processed() uint64 {
	return q.processed.Load()
}

// Close 关闭入队
func (q *Queue) Close() error {
	q.closed.Store(true)
	return nil
}
