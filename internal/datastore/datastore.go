// Package datastore Redis 队列存储：列表队列读写、已知队列登记以及批处理
package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/minhyannv/task-go-prioritize/internal/constants"
	"github.com/minhyannv/task-go-prioritize/internal/future"
)

// DataStore Redis 队列存储
type DataStore struct {
	rdb    *redis.Client
	logger *zap.Logger
	access QueueAccess
	exec   *Executor
}

// Option 存储选项
type Option func(*DataStore)

// WithQueueAccess 用 wrap 包装默认的列表队列实现
func WithQueueAccess(wrap Wrapper) Option {
	return func(s *DataStore) {
		s.access = wrap(s.access)
	}
}

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(s *DataStore) {
		s.logger = logger
	}
}

// New 创建队列存储
func New(rdb *redis.Client, opts ...Option) *DataStore {
	s := &DataStore{
		rdb:    rdb,
		logger: zap.NewNop(),
		access: ListAccess{},
		exec:   newExecutor(rdb),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Client 获取原始 Redis 客户端
func (s *DataStore) Client() *redis.Client {
	return s.rdb
}

// Ping 测试 Redis 连接
func (s *DataStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close 关闭 Redis 连接
func (s *DataStore) Close() error {
	return s.rdb.Close()
}

// Executor 当前的命令执行上下文
func (s *DataStore) Executor() *Executor {
	return s.exec
}

// Batched 是否为批处理中的存储
func (s *DataStore) Batched() bool {
	return s.exec.Batched()
}

// === 队列操作 ===

// PushToQueue 推入队列
func (s *DataStore) PushToQueue(ctx context.Context, queue, item string) *future.Future {
	return s.access.PushToQueue(ctx, s.exec, queue, item)
}

// PopFromQueue 从队列取出一个元素，队列为空时结果为空值
func (s *DataStore) PopFromQueue(ctx context.Context, queue string) *future.Future {
	return s.access.PopFromQueue(ctx, s.exec, queue)
}

// QueueSize 队列长度
func (s *DataStore) QueueSize(ctx context.Context, queue string) *future.Future {
	return s.access.QueueSize(ctx, s.exec, queue)
}

// EverythingInQueue 按出队顺序列出队列全部元素
func (s *DataStore) EverythingInQueue(ctx context.Context, queue string) *future.Future {
	return s.access.EverythingInQueue(ctx, s.exec, queue)
}

// RemoveFromQueue 删除队列中的 data，结果为删除数量
func (s *DataStore) RemoveFromQueue(ctx context.Context, queue, data string) *future.Future {
	return s.access.RemoveFromQueue(ctx, s.exec, queue, data)
}

// ListRange 读取队列键 key 的一段元素
func (s *DataStore) ListRange(ctx context.Context, key string, start, count int64) *future.Future {
	return s.access.ListRange(ctx, s.exec, key, start, count)
}

// === 队列管理 ===

// Queues 已知队列名称（按字母排序）
func (s *DataStore) Queues(ctx context.Context) ([]string, error) {
	queues, err := s.rdb.SMembers(ctx, constants.QueuesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("获取队列列表失败: %w", err)
	}
	sort.Strings(queues)
	return queues, nil
}

// RemoveQueue 删除队列及其登记
func (s *DataStore) RemoveQueue(ctx context.Context, queue string) error {
	pipe := s.rdb.TxPipeline()
	pipe.SRem(ctx, constants.QueuesKey, queue)
	pipe.Del(ctx, QueueKey(queue))
	_, err := pipe.Exec(ctx)
	return err
}

// Failure 执行失败记录
type Failure struct {
	Queue    string `json:"queue"`
	Payload  string `json:"payload"`
	Error    string `json:"error"`
	Worker   string `json:"worker"`
	FailedAt int64  `json:"failed_at"`
}

// RecordFailure 记录执行失败的作业
func (s *DataStore) RecordFailure(ctx context.Context, f Failure) error {
	if f.FailedAt == 0 {
		f.FailedAt = time.Now().Unix()
	}
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("序列化失败记录失败: %w", err)
	}
	return s.rdb.RPush(ctx, constants.FailedKey, data).Err()
}

// Failures 读取失败记录
func (s *DataStore) Failures(ctx context.Context) ([]Failure, error) {
	items, err := s.rdb.LRange(ctx, constants.FailedKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	failures := make([]Failure, 0, len(items))
	for _, item := range items {
		var f Failure
		if err := json.Unmarshal([]byte(item), &f); err != nil {
			return nil, fmt.Errorf("解析失败记录失败: %w", err)
		}
		failures = append(failures, f)
	}
	return failures, nil
}

// === 批处理 ===

// Multi 在 MULTI/EXEC 事务中执行 fn，返回其中所有操作的结果
func (s *DataStore) Multi(ctx context.Context, fn func(tx *DataStore) error) ([]interface{}, error) {
	return s.batch(ctx, s.rdb.TxPipeline(), fn)
}

// Pipelined 在管道中执行 fn，返回其中所有操作的结果
func (s *DataStore) Pipelined(ctx context.Context, fn func(tx *DataStore) error) ([]interface{}, error) {
	return s.batch(ctx, s.rdb.Pipeline(), fn)
}

func (s *DataStore) batch(ctx context.Context, pipe redis.Pipeliner, fn func(tx *DataStore) error) ([]interface{}, error) {
	if s.Batched() {
		return nil, errors.New("不支持嵌套批处理")
	}

	tx := &DataStore{
		rdb:    s.rdb,
		logger: s.logger,
		access: s.access,
		exec:   newBatchExecutor(s.rdb, pipe),
	}

	if err := fn(tx); err != nil {
		pipe.Discard()
		return nil, err
	}

	futures := tx.exec.tracked()
	for _, f := range futures {
		if err := f.Err(); err != nil {
			pipe.Discard()
			s.logger.Sugar().Warnf("批处理已放弃: %v", err)
			return nil, err
		}
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	results := make([]interface{}, 0, len(futures))
	for _, f := range futures {
		f.Resolve()
		v, err := f.Result()
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, nil
}
