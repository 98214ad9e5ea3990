// Package job 作业类型、带优先级的类型句柄以及作业载荷编码
package job

import (
	"context"
	"time"
)

// Performer 作业执行函数
type Performer func(ctx context.Context, j *Job) error

// Class 作业类型，声明名称、队列和执行参数
type Class struct {
	Name    string            // 类型名称，写入载荷的 class 字段
	Queue   string            // 默认队列
	Retry   int               // 失败重试次数
	Timeout time.Duration     // 单次执行超时
	Attrs   map[string]string // 其他声明配置
	Perform Performer
}

// Handle 无优先级的类型句柄
func (c *Class) Handle() Handle {
	return Handle{orig: c, conf: c}
}

// String 类型名称
func (c *Class) String() string {
	if c == nil {
		return ""
	}
	return c.Name
}

func (c *Class) clone() *Class {
	cp := *c
	if c.Attrs != nil {
		cp.Attrs = make(map[string]string, len(c.Attrs))
		for k, v := range c.Attrs {
			cp.Attrs[k] = v
		}
	}
	return &cp
}

// Job 一次出队得到的作业
type Job struct {
	Queue   string
	Handle  Handle
	Args    []interface{}
	Payload string // 原始载荷
}
