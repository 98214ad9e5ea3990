package queue

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/minhyannv/task-go-prioritize/internal/datastore"
	"github.com/minhyannv/task-go-prioritize/internal/registry"
	"github.com/minhyannv/task-go-prioritize/internal/worker"
)

// Group 一组监听相同队列的工作器
type Group struct {
	logger   *zap.Logger
	store    *datastore.DataStore
	resolver registry.Resolver

	queues       []string
	workerNumber int // 工作器数量
	opts         worker.Options

	workers map[string]*worker.Worker
	running bool
	wg      sync.WaitGroup
	mu      sync.RWMutex
}

// NewGroup 创建工作器组
func NewGroup(logger *zap.Logger, store *datastore.DataStore, resolver registry.Resolver, queues []string, workerNumber int, opts worker.Options) *Group {
	return &Group{
		logger:       logger,
		store:        store,
		resolver:     resolver,
		queues:       queues,
		workerNumber: workerNumber,
		opts:         opts,
		workers:      make(map[string]*worker.Worker),
	}
}

// Start 启动工作器
func (g *Group) Start(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running {
		return fmt.Errorf("工作器组已在运行")
	}
	g.running = true

	for i := 0; i < g.workerNumber; i++ {
		workerID := fmt.Sprintf("worker-%d", i+1)
		wk := worker.NewWorker(g.logger, workerID, g.queues, g.store, g.resolver, g.opts)

		g.workers[workerID] = wk
		g.wg.Add(1)
		go func(w *worker.Worker) {
			defer g.wg.Done()
			w.Run(ctx)
		}(wk)
	}

	g.logger.Sugar().Infof("工作器组已启动，队列: %v，工作器数量: %d", g.queues, g.workerNumber)
	return nil
}

// Stop 停止所有工作器并等待退出
func (g *Group) Stop() {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return
	}
	g.running = false
	workers := g.workers
	g.workers = make(map[string]*worker.Worker)
	g.mu.Unlock()

	g.logger.Sugar().Infof("正在停止工作器组...")

	for _, wk := range workers {
		wk.Stop()
	}
	g.wg.Wait()

	g.logger.Sugar().Infof("工作器组已停止")
}

// Running 是否在运行
func (g *Group) Running() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.running
}

// GetStats 获取统计信息
func (g *Group) GetStats(ctx context.Context) (map[string]interface{}, error) {
	g.mu.RLock()
	stats := map[string]interface{}{
		"workers": len(g.workers),
		"running": g.running,
	}
	g.mu.RUnlock()

	queues, err := g.store.Queues(ctx)
	if err != nil {
		return nil, err
	}

	sizes := make(map[string]int64, len(queues))
	for _, q := range queues {
		size, err := g.store.QueueSize(ctx, q).Int64()
		if err != nil {
			return nil, fmt.Errorf("获取队列 %s 长度失败: %w", q, err)
		}
		sizes[q] = size
	}
	stats["queues"] = sizes

	return stats, nil
}
