package datastore

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/minhyannv/task-go-prioritize/internal/constants"
	"github.com/minhyannv/task-go-prioritize/internal/future"
)

// QueueAccess 队列读写操作集合
//
// 所有操作返回 Future：非批处理时已就绪，批处理时在 EXEC 之后就绪。
type QueueAccess interface {
	PushToQueue(ctx context.Context, ex *Executor, queue, item string) *future.Future
	PopFromQueue(ctx context.Context, ex *Executor, queue string) *future.Future
	QueueSize(ctx context.Context, ex *Executor, queue string) *future.Future
	EverythingInQueue(ctx context.Context, ex *Executor, queue string) *future.Future
	RemoveFromQueue(ctx context.Context, ex *Executor, queue, data string) *future.Future
	ListRange(ctx context.Context, ex *Executor, key string, start, count int64) *future.Future
}

// Wrapper 包装默认的 QueueAccess
type Wrapper func(base QueueAccess) QueueAccess

// QueueKey 队列名对应的 Redis 键
func QueueKey(queue string) string {
	if strings.HasPrefix(queue, constants.QueuePrefix) {
		return queue
	}
	return constants.QueuePrefix + queue
}

// WatchQueue 把队列名记录到已知队列集合
func WatchQueue(ctx context.Context, c redis.Cmdable, queue string) *redis.IntCmd {
	return c.SAdd(ctx, constants.QueuesKey, strings.TrimPrefix(queue, constants.QueuePrefix))
}

// ListAccess 基于 Redis 列表的 FIFO 队列
type ListAccess struct{}

// PushToQueue RPUSH 到队尾
func (ListAccess) PushToQueue(ctx context.Context, ex *Executor, queue, item string) *future.Future {
	var push *redis.IntCmd
	err := ex.Group(ctx, func(c redis.Cmdable) error {
		WatchQueue(ctx, c, queue)
		push = c.RPush(ctx, QueueKey(queue), item)
		return nil
	})
	if err != nil {
		return ex.Fail(err)
	}
	return ex.Track(future.FromCmd(push))
}

// PopFromQueue LPOP 取出最早入队的元素
func (ListAccess) PopFromQueue(ctx context.Context, ex *Executor, queue string) *future.Future {
	return ex.Track(future.FromCmd(ex.Cmdable().LPop(ctx, QueueKey(queue))))
}

// QueueSize 队列长度
func (ListAccess) QueueSize(ctx context.Context, ex *Executor, queue string) *future.Future {
	return ex.Track(future.FromCmd(ex.Cmdable().LLen(ctx, QueueKey(queue))))
}

// EverythingInQueue 队列全部元素
func (ListAccess) EverythingInQueue(ctx context.Context, ex *Executor, queue string) *future.Future {
	return ex.Track(future.FromCmd(ex.Cmdable().LRange(ctx, QueueKey(queue), 0, -1)))
}

// RemoveFromQueue 删除所有与 data 完全相同的元素，返回删除数量
func (ListAccess) RemoveFromQueue(ctx context.Context, ex *Executor, queue, data string) *future.Future {
	return ex.Track(future.FromCmd(ex.Cmdable().LRem(ctx, QueueKey(queue), 0, data)))
}

// ListRange 读取 key 从 start 开始的 count 个元素；count 为 1 时返回单个元素
func (ListAccess) ListRange(ctx context.Context, ex *Executor, key string, start, count int64) *future.Future {
	key = QueueKey(key)
	if count <= 0 {
		return ex.Track(future.Value([]string{}))
	}
	if count == 1 {
		return ex.Track(future.FromCmd(ex.Cmdable().LIndex(ctx, key, start)))
	}
	return ex.Track(future.FromCmd(ex.Cmdable().LRange(ctx, key, start, start+count-1)))
}
