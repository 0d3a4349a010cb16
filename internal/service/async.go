package service

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/carmarket/pkg/logger"
)

type asyncTask struct {
	name  string
	fn    func(ctx context.Context) error
	enqAt time.Time
}

// AsyncRunner 本地异步副作用执行器：有界队列 + 固定 worker。
// Enqueue 永不阻塞，队满丢弃并告警；任务失败只记录，不重试、不上抛。
type AsyncRunner struct {
	ch chan asyncTask

	processed atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

func NewAsyncRunner(queueSize int) *AsyncRunner {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &AsyncRunner{ch: make(chan asyncTask, queueSize)}
}

// Start 启动 worker，返回停止函数（停止前给队列一小段排空时间）。
func (r *AsyncRunner) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case task := <-r.ch:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					if err := task.fn(ctx); err != nil {
						r.failed.Add(1)
						logger.Warn("async task failed",
							zap.String("task", task.name),
							zap.Duration("queued", time.Since(task.enqAt)),
							zap.Error(err))
					}
					cancel()
					r.processed.Add(1)
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(r.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

// Enqueue 提交一个不阻塞调用方的副作用任务。
func (r *AsyncRunner) Enqueue(name string, fn func(ctx context.Context) error) {
	select {
	case r.ch <- asyncTask{name: name, fn: fn, enqAt: time.Now()}:
	default:
		r.dropped.Add(1)
		logger.Warn("async queue full, drop task", zap.String("task", name))
	}
}

// QueueLen 当前队列长度（采样值）
func (r *AsyncRunner) QueueLen() int { return len(r.ch) }

// AsyncCounters 运行计数快照
type AsyncCounters struct {
	Processed int64 `json:"processed"`
	Dropped   int64 `json:"dropped"`
	Failed    int64 `json:"failed"`
}

func (r *AsyncRunner) Counters() AsyncCounters {
	return AsyncCounters{
		Processed: r.processed.Load(),
		Dropped:   r.dropped.Load(),
		Failed:    r.failed.Load(),
	}
}
