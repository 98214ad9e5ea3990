package datastore

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/minhyannv/task-go-prioritize/internal/future"
)

// Executor 命令执行上下文：直接执行，或写入批处理管道
type Executor struct {
	rdb     redis.Cmdable
	pipe    redis.Pipeliner
	futures *[]*future.Future
}

func newExecutor(rdb redis.Cmdable) *Executor {
	return &Executor{rdb: rdb}
}

func newBatchExecutor(rdb redis.Cmdable, pipe redis.Pipeliner) *Executor {
	return &Executor{rdb: rdb, pipe: pipe, futures: &[]*future.Future{}}
}

// Cmdable 当前应使用的命令接口
func (e *Executor) Cmdable() redis.Cmdable {
	if e.pipe != nil {
		return e.pipe
	}
	return e.rdb
}

// Batched 是否处于批处理（pipeline / MULTI）中
func (e *Executor) Batched() bool {
	return e.pipe != nil
}

// Track 登记 Future：批处理中等待 EXEC 后就绪，否则立即就绪
func (e *Executor) Track(f *future.Future) *future.Future {
	if e.Batched() {
		*e.futures = append(*e.futures, f)
		return f
	}
	f.Resolve()
	return f
}

// Fail 返回失败的 Future；批处理中同时登记，使整个批处理被放弃
func (e *Executor) Fail(err error) *future.Future {
	return e.Track(future.Failed(err))
}

// Group 将多个命令作为一组发送；批处理中直接写入当前管道
func (e *Executor) Group(ctx context.Context, fn func(c redis.Cmdable) error) error {
	if e.Batched() {
		return fn(e.pipe)
	}
	_, err := e.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		return fn(p)
	})
	return err
}

func (e *Executor) tracked() []*future.Future {
	if e.futures == nil {
		return nil
	}
	return *e.futures
}
