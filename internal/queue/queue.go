// Package queue 定义库存变更任务队列的契约
//
// 教学要点：
// 1. 投递语义：至少一次（At-Least-Once）
//   - 消费与确认之间崩溃会导致重复投递
//   - 应用侧用JobID幂等键保证"不重复应用"（见stock.Repository）
//
// 2. 失败分类
//   - 永久失败（校验失败、库存不足、记录不存在）：不重试，直接进入失败队列
//   - 瞬时失败（数据库/缓存不可用）：指数退避重试，超过预算进入失败队列
//   - 失败队列中的任务永不静默丢弃，留待运维检查
//
// 3. 顺序保证
//   - 按入队顺序FIFO投递，但不按库存ID分片
//   - 同一库存行的并发安全由账本层的行锁保证
package queue

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/xiebiao/storehub/internal/domain/stock"
)

// Producer 任务生产者契约
type Producer interface {
	// Enqueue 将变更意图入队，返回任务ID
	// 说明：意图的JobID字段由实现填充（与返回值一致）
	Enqueue(ctx context.Context, intent *stock.MutationIntent) (string, error)
}

// Handler 任务处理函数
//
// 返回值语义：
//   - nil：处理成功，消息确认
//   - Permanent包装的错误：永久失败，不重试
//   - 其他错误：瞬时失败，按退避重试
type Handler func(ctx context.Context, intent *stock.MutationIntent) error

// Consumer 任务消费者契约
type Consumer interface {
	// Consume 阻塞消费，直到ctx取消
	Consume(ctx context.Context, handler Handler) error

	// Close 释放底层连接
	Close() error
}

// ErrQueueClosed 队列已关闭，拒绝新任务入队
var ErrQueueClosed = errors.New("队列已关闭")

// permanentError 永久失败标记
type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return fmt.Sprintf("永久失败: %v", e.err)
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent 将错误标记为永久失败（不重试）
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent 判断错误是否为永久失败
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// GenerateJobID 生成任务ID
// 格式：JOB + 纳秒时间戳 + 6位随机数
// 说明：JobID同时是应用侧的幂等键，时间有序便于排查
func GenerateJobID() string {
	timestamp := time.Now().UnixNano()
	random := rand.Intn(1000000) // 6位随机数
	return fmt.Sprintf("JOB%d%06d", timestamp, random)
}

// Backoff 计算第attempt次重试的退避时间（指数退避）
// attempt从1开始：base、2*base、4*base...
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}
