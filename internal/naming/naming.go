// Package naming 优先级队列的命名约定
package naming

import (
	"strings"
	"sync/atomic"
)

// DefaultSuffix 默认的优先级队列后缀
const DefaultSuffix = "_prioritized"

// Convention 队列命名约定，可在运行时修改后缀，由使用方共享同一个实例
type Convention struct {
	suffix atomic.Value
}

// NewConvention 创建命名约定，suffix 为空时使用默认值
func NewConvention(suffix string) *Convention {
	c := &Convention{}
	c.SetSuffix(suffix)
	return c
}

// Suffix 当前后缀
func (c *Convention) Suffix() string {
	if s, ok := c.suffix.Load().(string); ok {
		return s
	}
	return DefaultSuffix
}

// SetSuffix 设置后缀
func (c *Convention) SetSuffix(suffix string) {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	c.suffix.Store(suffix)
}

// Prioritized 返回队列的优先级版本名称，已包含后缀时原样返回
func (c *Convention) Prioritized(queue string) string {
	if c.IsPrioritized(queue) {
		return queue
	}
	return queue + c.Suffix()
}

// IsPrioritized 按名称判断是否为优先级队列
func (c *Convention) IsPrioritized(queue string) bool {
	return strings.Contains(queue, c.Suffix())
}
