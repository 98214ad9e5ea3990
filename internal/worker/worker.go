package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/minhyannv/task-go-prioritize/internal/constants"
	"github.com/minhyannv/task-go-prioritize/internal/datastore"
	"github.com/minhyannv/task-go-prioritize/internal/registry"
	"github.com/minhyannv/task-go-prioritize/pkg/job"
)

// Options 工作器选项
type Options struct {
	PollInterval   time.Duration             // 所有队列为空时的等待时间
	DefaultRetry   int                       // 作业类型未声明时的重试次数
	DefaultTimeout time.Duration             // 作业类型未声明时的超时
	Backoff        func(attempt int) time.Duration
}

// Worker 队列工作器，按顺序轮询队列，每次取出一个作业执行
type Worker struct {
	logger   *zap.Logger
	id       string
	queues   []string
	store    *datastore.DataStore
	resolver registry.Resolver
	opts     Options

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

// NewWorker 创建工作器
func NewWorker(logger *zap.Logger, id string, queues []string, store *datastore.DataStore, resolver registry.Resolver, opts Options) *Worker {
	if opts.Backoff == nil {
		opts.Backoff = func(attempt int) time.Duration {
			return time.Duration(attempt*attempt) * time.Second
		}
	}
	return &Worker{
		logger:   logger.With(zap.String("workerId", id)),
		id:       id,
		queues:   queues,
		store:    store,
		resolver: resolver,
		opts:     opts,
		stopCh:   make(chan struct{}),
	}
}

// Run 工作器运行
func (w *Worker) Run(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		w.logger.Sugar().Warnf("worker: %s are running", w.id)
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Sugar().Infof("工作器 %s 启动 (队列: %v)", w.id, w.queues)

	for {
		select {
		case <-w.stopCh:
			w.logger.Sugar().Infof("工作器 %s 收到停止信号", w.id)
			return
		case <-ctx.Done():
			w.logger.Sugar().Infof("工作器 %s 收到上下文取消信号", w.id)
			return
		default:
		}

		processed, err := w.Work(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Sugar().Errorf("处理作业失败: %v", err)
		}
		if processed {
			continue
		}

		// 短暂休眠避免过度轮询
		select {
		case <-time.After(w.opts.PollInterval):
		case <-w.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Work 取出并执行一个作业；所有队列为空时返回 false
func (w *Worker) Work(ctx context.Context) (bool, error) {
	j, err := w.Reserve(ctx)
	if err != nil || j == nil {
		return false, err
	}
	return true, w.Perform(ctx, j)
}

// Reserve 按顺序从队列中取出一个作业
func (w *Worker) Reserve(ctx context.Context) (*job.Job, error) {
	queues, err := w.watchedQueues(ctx)
	if err != nil {
		return nil, err
	}

	for _, queue := range queues {
		item, err := w.store.PopFromQueue(ctx, queue).Text()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("从队列 %s 获取作业失败: %w", queue, err)
		}

		j, err := w.decode(queue, item)
		if err != nil {
			w.fail(ctx, queue, item, err)
			return nil, err
		}
		return j, nil
	}
	return nil, nil
}

// Perform 执行作业，失败时按作业类型的重试次数重试
func (w *Worker) Perform(ctx context.Context, j *job.Job) error {
	perform := j.Handle.Performer()
	if perform == nil {
		err := fmt.Errorf("作业类型 %s 没有执行函数", j.Handle.Name())
		w.fail(ctx, j.Queue, j.Payload, err)
		return err
	}

	maxRetries := j.Handle.Retry()
	if maxRetries <= 0 {
		maxRetries = w.opts.DefaultRetry
	}
	timeout := j.Handle.Timeout()
	if timeout <= 0 {
		timeout = w.opts.DefaultTimeout
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			w.logger.Sugar().Infof("作业 %s 第 %d 次重试", j.Handle.Name(), attempt)
			select {
			case <-time.After(w.opts.Backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := w.performOnce(ctx, j, perform, timeout)
		if err == nil {
			w.logger.Sugar().Infof("作业 %s 执行成功 (队列: %s)", j.Handle.Name(), j.Queue)
			return nil
		}

		w.logger.Sugar().Errorf("作业 %s 执行失败 (第 %d/%d 次): %v", j.Handle.Name(), attempt+1, maxRetries+1, err)

		if attempt == maxRetries {
			w.fail(ctx, j.Queue, j.Payload, err)
			return fmt.Errorf("作业 %s 最终执行失败: %w", j.Handle.Name(), err)
		}
	}

	return nil
}

// Stop 停止工作器
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
}

func (w *Worker) performOnce(ctx context.Context, j *job.Job, perform job.Performer, timeout time.Duration) error {
	// 创建带超时的上下文
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- perform(timeoutCtx, j)
	}()

	select {
	case err := <-errCh:
		return err
	case <-timeoutCtx.Done():
		return fmt.Errorf("作业执行超时")
	}
}

func (w *Worker) decode(queue, item string) (*job.Job, error) {
	payload, err := job.Decode(item)
	if err != nil {
		return nil, err
	}
	h, err := w.resolver.Resolve(payload.Class)
	if err != nil {
		return nil, fmt.Errorf("解析作业类型失败: %w", err)
	}
	return &job.Job{
		Queue:   queue,
		Handle:  h,
		Args:    payload.Args,
		Payload: item,
	}, nil
}

func (w *Worker) fail(ctx context.Context, queue, item string, cause error) {
	err := w.store.RecordFailure(ctx, datastore.Failure{
		Queue:   queue,
		Payload: item,
		Error:   cause.Error(),
		Worker:  w.id,
	})
	if err != nil {
		w.logger.Sugar().Errorf("记录失败作业失败: %v", err)
	}
}

func (w *Worker) watchedQueues(ctx context.Context) ([]string, error) {
	for _, q := range w.queues {
		if q == constants.AllQueues {
			return w.store.Queues(ctx)
		}
	}
	return w.queues, nil
}
