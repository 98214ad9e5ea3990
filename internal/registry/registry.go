// Package registry 作业类型注册表，按名称解析作业类型
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/minhyannv/task-go-prioritize/pkg/job"
)

// ErrUnknownClass 名称没有对应的作业类型
var ErrUnknownClass = errors.New("未知的作业类型")

// Resolver 按名称解析作业类型
type Resolver interface {
	Resolve(name string) (job.Handle, error)
}

// Registry 作业类型注册表
type Registry struct {
	logger  *zap.Logger
	classes map[string]*job.Class
	mu      sync.RWMutex
}

// New 创建注册表
func New(logger *zap.Logger) *Registry {
	return &Registry{
		logger:  logger,
		classes: make(map[string]*job.Class),
	}
}

// Register 注册作业类型
func (r *Registry) Register(c *job.Class) error {
	if c == nil || c.Name == "" {
		return fmt.Errorf("作业类型名称不能为空")
	}
	if c.Perform == nil {
		return fmt.Errorf("作业类型 %s 缺少执行函数", c.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.classes[c.Name]; exists {
		r.logger.Sugar().Warnf("作业类型 %s 已存在，将被覆盖", c.Name)
	}

	r.classes[c.Name] = c
	r.logger.Sugar().Infof("已注册作业类型: %s (队列: %s)", c.Name, c.Queue)
	return nil
}

// Unregister 注销作业类型
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.classes[name]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownClass, name)
	}

	delete(r.classes, name)
	r.logger.Sugar().Infof("已注销作业类型: %s", name)
	return nil
}

// Resolve 按名称解析为普通类型句柄
func (r *Registry) Resolve(name string) (job.Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.classes[name]
	if !exists {
		return job.Handle{}, fmt.Errorf("%w: %s", ErrUnknownClass, name)
	}
	return c.Handle(), nil
}

// Has 是否注册了 name
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.classes[name]
	return exists
}

// List 已注册的类型名称
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count 已注册的类型数量
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.classes)
}
