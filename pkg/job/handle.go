package job

import (
	"fmt"
	"time"

	"github.com/minhyannv/task-go-prioritize/internal/constants"
	"github.com/minhyannv/task-go-prioritize/internal/tags"
)

// ValidationError 绑定参数无效
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return "job: " + e.Msg
}

// Handle 作业类型句柄：普通类型，或绑定了优先级的类型
//
// 句柄的名称由原类型名称加上优先级标签得到，例如 TestWorker{{priority}:10}。
type Handle struct {
	orig     *Class
	conf     *Class
	priority int
	bound    bool
}

// Valid 是否指向一个作业类型
func (h Handle) Valid() bool {
	return h.orig != nil
}

// Class 原始作业类型
func (h Handle) Class() *Class {
	return h.orig
}

// Priority 绑定的优先级
func (h Handle) Priority() (int, bool) {
	return h.priority, h.bound
}

// Bound 是否绑定了优先级
func (h Handle) Bound() bool {
	return h.bound
}

// Name 句柄名称
func (h Handle) Name() string {
	if h.orig == nil {
		return ""
	}
	if !h.bound {
		return h.orig.Name
	}
	return tags.Encode(h.orig.Name, tags.Tag{Key: constants.PriorityTag, Value: h.priority})
}

func (h Handle) String() string {
	return h.Name()
}

// GoString 与 Name 相同
func (h Handle) GoString() string {
	return h.Name()
}

// Equal 名称相同即相等
func (h Handle) Equal(other fmt.Stringer) bool {
	if other == nil {
		return false
	}
	return h.String() == other.String()
}

// Queue 入队时使用的队列；绑定优先级后为优先级队列
func (h Handle) Queue() string {
	if h.conf == nil {
		return ""
	}
	return h.conf.Queue
}

// Retry 失败重试次数
func (h Handle) Retry() int {
	if h.conf == nil {
		return 0
	}
	return h.conf.Retry
}

// Timeout 单次执行超时
func (h Handle) Timeout() time.Duration {
	if h.conf == nil {
		return 0
	}
	return h.conf.Timeout
}

// Attr 声明配置
func (h Handle) Attr(key string) (string, bool) {
	if h.conf == nil {
		return "", false
	}
	v, ok := h.conf.Attrs[key]
	return v, ok
}

// Performer 执行函数
func (h Handle) Performer() Performer {
	if h.conf == nil {
		return nil
	}
	return h.conf.Perform
}

// Unbind 返回无优先级的原始类型句柄
func (h Handle) Unbind() Handle {
	if !h.bound {
		return h
	}
	return h.orig.Handle()
}

// Unbind 同 Handle.Unbind
func Unbind(h Handle) Handle {
	return h.Unbind()
}

// QueueNamer 队列命名约定
type QueueNamer interface {
	Prioritized(queue string) string
}

// Binder 为作业类型绑定优先级
type Binder struct {
	namer QueueNamer
}

// NewBinder 创建绑定器
func NewBinder(namer QueueNamer) *Binder {
	return &Binder{namer: namer}
}

// Bind 绑定优先级。已绑定的句柄会先解除绑定，新的优先级替换旧值。
// 声明配置全部复制，队列改为优先级队列。
func (b *Binder) Bind(h Handle, priority *int) (Handle, error) {
	if !h.Valid() {
		return Handle{}, &ValidationError{Msg: "无效的作业类型"}
	}
	if priority == nil {
		return Handle{}, &ValidationError{Msg: "优先级不能为空"}
	}

	orig := h.Unbind().orig
	conf := orig.clone()
	if conf.Queue != "" {
		conf.Queue = b.namer.Prioritized(conf.Queue)
	}

	return Handle{
		orig:     orig,
		conf:     conf,
		priority: *priority,
		bound:    true,
	}, nil
}

// WithPriority 为作业类型绑定优先级
func (b *Binder) WithPriority(c *Class, priority int) (Handle, error) {
	if c == nil {
		return Handle{}, &ValidationError{Msg: "无效的作业类型"}
	}
	return b.Bind(c.Handle(), &priority)
}
