// Package taskgo 基于 Redis 的作业队列，支持按优先级出队
package taskgo

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/minhyannv/task-go-prioritize/internal/config"
	"github.com/minhyannv/task-go-prioritize/internal/datastore"
	"github.com/minhyannv/task-go-prioritize/internal/future"
	"github.com/minhyannv/task-go-prioritize/internal/naming"
	"github.com/minhyannv/task-go-prioritize/internal/prioritize"
	"github.com/minhyannv/task-go-prioritize/internal/queue"
	"github.com/minhyannv/task-go-prioritize/internal/registry"
	"github.com/minhyannv/task-go-prioritize/internal/worker"
	"github.com/minhyannv/task-go-prioritize/pkg/job"
)

// 对外类型别名
type (
	Config = config.Config
	Store  = datastore.DataStore
	Future = future.Future
)

// Client TaskGo客户端
type Client struct {
	ctx         context.Context
	config      *config.Config
	logger      *zap.Logger
	redisClient *redis.Client

	naming   *naming.Convention
	registry *registry.Registry
	binder   *job.Binder
	resolver *prioritize.Resolver
	store    *datastore.DataStore
	group    *queue.Group
}

// Option 客户端选项
type Option func(*Client)

// WithConfig 设置配置
func WithConfig(cfg *config.Config) Option {
	return func(c *Client) {
		c.config = cfg
	}
}

// WithLogger 设置日志器
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRedisClient 设置Redis客户端
func WithRedisClient(redisClient *redis.Client) Option {
	return func(c *Client) {
		c.redisClient = redisClient
	}
}

// NewClient 创建新的TaskGo客户端
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	client := &Client{
		ctx:    ctx,
		config: config.DefaultConfig(),
	}

	// 应用选项
	for _, opt := range opts {
		opt(client)
	}

	// 验证配置
	if err := client.config.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	// 设置默认日志器
	if client.logger == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("创建日志器失败: %w", err)
		}
		client.logger = logger
	}

	// 设置Redis客户端
	if client.redisClient == nil {
		client.redisClient = redis.NewClient(&redis.Options{
			Addr:     client.config.Redis.Addr,
			Password: client.config.Redis.Password,
			DB:       client.config.Redis.DB,
		})
	}

	// 测试Redis连接
	if err := client.redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis连接失败: %w", err)
	}

	// 初始化组件
	client.naming = naming.NewConvention(client.config.Queue.PrioritizedSuffix)
	client.registry = registry.New(client.logger)
	client.binder = job.NewBinder(client.naming)
	client.resolver = prioritize.NewResolver(client.registry, client.binder)
	client.store = datastore.New(client.redisClient,
		datastore.WithLogger(client.logger),
		datastore.WithQueueAccess(prioritize.Wrap(client.naming, client.logger.Named("prioritize"))),
	)
	client.group = queue.NewGroup(
		client.logger,
		client.store,
		client.resolver,
		client.config.Queue.Names,
		client.config.Worker.Count,
		worker.Options{
			PollInterval:   client.config.Worker.PollInterval,
			DefaultRetry:   client.config.Task.DefaultRetry,
			DefaultTimeout: client.config.Task.DefaultTimeout,
		},
	)

	return client, nil
}

// === 作业类型 ===

// RegisterClass 注册作业类型
func (c *Client) RegisterClass(class *job.Class) error {
	return c.registry.Register(class)
}

// WithPriority 为作业类型绑定优先级
func (c *Client) WithPriority(class *job.Class, priority int) (job.Handle, error) {
	return c.binder.WithPriority(class, priority)
}

// Bind 为类型句柄绑定优先级，已绑定时替换原优先级
func (c *Client) Bind(h job.Handle, priority *int) (job.Handle, error) {
	return c.binder.Bind(h, priority)
}

// Resolve 按名称解析作业类型，名称可以带优先级标签
func (c *Client) Resolve(name string) (job.Handle, error) {
	return c.resolver.Resolve(name)
}

// PrioritizedSuffix 当前优先级队列后缀
func (c *Client) PrioritizedSuffix() string {
	return c.naming.Suffix()
}

// SetPrioritizedSuffix 修改优先级队列后缀
func (c *Client) SetPrioritizedSuffix(suffix string) {
	c.naming.SetSuffix(suffix)
	c.logger.Sugar().Infof("优先级队列后缀已修改为: %s", c.naming.Suffix())
}

// === 队列操作 ===

// Enqueue 把作业放入类型句柄声明的队列
func (c *Client) Enqueue(ctx context.Context, h job.Handle, args ...interface{}) error {
	return c.EnqueueTo(ctx, h.Queue(), h, args...)
}

// EnqueueTo 把作业放入指定队列
func (c *Client) EnqueueTo(ctx context.Context, queue string, h job.Handle, args ...interface{}) error {
	if queue == "" {
		return fmt.Errorf("作业类型 %s 没有声明队列", h.Name())
	}
	item, err := job.Encode(h, args...)
	if err != nil {
		return err
	}
	if _, err := c.store.PushToQueue(ctx, queue, item).Result(); err != nil {
		return fmt.Errorf("作业入队失败: %w", err)
	}
	return nil
}

// Pop 取出一个作业，队列为空时返回 nil
func (c *Client) Pop(ctx context.Context, queue string) (*job.Job, error) {
	item, err := c.store.PopFromQueue(ctx, queue).Text()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	payload, err := job.Decode(item)
	if err != nil {
		return nil, err
	}
	h, err := c.resolver.Resolve(payload.Class)
	if err != nil {
		return nil, err
	}
	return &job.Job{Queue: queue, Handle: h, Args: payload.Args, Payload: item}, nil
}

// Dequeue 删除队列中与 h、args 匹配的作业，返回删除数量
func (c *Client) Dequeue(ctx context.Context, queue string, h job.Handle, args ...interface{}) (int64, error) {
	item, err := job.Encode(h, args...)
	if err != nil {
		return 0, err
	}
	return c.store.RemoveFromQueue(ctx, queue, item).Int64()
}

// Size 队列长度
func (c *Client) Size(ctx context.Context, queue string) (int64, error) {
	return c.store.QueueSize(ctx, queue).Int64()
}

// List 按出队顺序列出队列中的作业
func (c *Client) List(ctx context.Context, queue string) ([]string, error) {
	return c.store.EverythingInQueue(ctx, queue).Strings()
}

// Peek 查看队列中从 start 开始的 count 个作业
func (c *Client) Peek(ctx context.Context, queue string, start, count int64) ([]string, error) {
	f := c.store.ListRange(ctx, datastore.QueueKey(queue), start, count)
	if count != 1 {
		return f.Strings()
	}

	item, err := f.Text()
	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []string{item}, nil
}

// Queues 已知队列
func (c *Client) Queues(ctx context.Context) ([]string, error) {
	return c.store.Queues(ctx)
}

// Multi 在事务中执行一组队列操作，返回各操作的结果
func (c *Client) Multi(ctx context.Context, fn func(tx *Store) error) ([]interface{}, error) {
	return c.store.Multi(ctx, fn)
}

// Store 底层队列存储
func (c *Client) Store() *Store {
	return c.store
}

// === 工作器 ===

// Start 启动工作器
func (c *Client) Start() error {
	c.logger.Sugar().Info("启动TaskGo客户端...")
	if err := c.group.Start(c.ctx); err != nil {
		return err
	}
	c.logger.Sugar().Info("TaskGo客户端启动成功")
	return nil
}

// Stop 停止工作器
func (c *Client) Stop() {
	if !c.group.Running() {
		return
	}
	c.logger.Sugar().Info("停止TaskGo客户端...")
	c.group.Stop()
	c.logger.Sugar().Info("TaskGo客户端已停止")
}

// GetStats 获取统计信息
func (c *Client) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := c.group.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取统计信息失败: %w", err)
	}
	stats["classes"] = c.registry.List()
	stats["prioritized_suffix"] = c.naming.Suffix()
	return stats, nil
}

// Logger 客户端使用的日志器
func (c *Client) Logger() *zap.Logger {
	return c.logger
}

// Failures 执行失败的作业
func (c *Client) Failures(ctx context.Context) ([]datastore.Failure, error) {
	return c.store.Failures(ctx)
}

// Close 关闭客户端
func (c *Client) Close() error {
	c.Stop()
	return c.store.Close()
}
