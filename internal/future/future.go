// Package future 批处理（pipeline / MULTI）中命令结果的延迟读取与后处理
package future

import (
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ErrNotReady 批处理尚未执行时读取结果
var ErrNotReady = errors.New("future: 结果尚未就绪")

// Transform 结果后处理函数
type Transform func(interface{}) interface{}

// Reader 读取命令的原始结果
type Reader func() (interface{}, error)

// Future 命令结果句柄
//
// 非批处理时创建后立即就绪；批处理时在 EXEC 之后由调用方 Resolve。
// 后处理函数按添加顺序组合执行。
type Future struct {
	mu        sync.Mutex
	read      Reader
	transform Transform
	ready     bool
	err       error
}

// New 创建未就绪的 Future
func New(read Reader) *Future {
	return &Future{read: read}
}

// FromCmd 基于 go-redis 命令创建 Future
func FromCmd(cmd redis.Cmder) *Future {
	return New(reader(cmd))
}

// Value 创建已就绪的常量 Future
func Value(v interface{}) *Future {
	f := New(func() (interface{}, error) { return v, nil })
	f.Resolve()
	return f
}

// Failed 创建直接失败的 Future
func Failed(err error) *Future {
	return &Future{err: err, ready: true}
}

// AddTransform 在已有后处理之后追加 fn
func (f *Future) AddTransform(fn Transform) *Future {
	f.mu.Lock()
	defer f.mu.Unlock()

	if prev := f.transform; prev != nil {
		f.transform = func(v interface{}) interface{} { return fn(prev(v)) }
	} else {
		f.transform = fn
	}
	return f
}

// Resolve 标记结果可读
func (f *Future) Resolve() {
	f.mu.Lock()
	f.ready = true
	f.mu.Unlock()
}

// Ready 结果是否可读
func (f *Future) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

// Err 返回同步失败的错误（不读取结果）
func (f *Future) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Result 读取经过后处理的结果，redis.Nil 视为空值
func (f *Future) Result() (interface{}, error) {
	f.mu.Lock()
	read, transform, ready, err := f.read, f.transform, f.ready, f.err
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !ready {
		return nil, ErrNotReady
	}

	v, err := read()
	if errors.Is(err, redis.Nil) {
		v, err = nil, nil
	}
	if err != nil {
		return nil, err
	}
	if transform != nil {
		v = transform(v)
	}
	return v, nil
}

// Text 读取字符串结果，空值返回 redis.Nil
func (f *Future) Text() (string, error) {
	v, err := f.Result()
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case nil:
		return "", redis.Nil
	case string:
		return s, nil
	default:
		return "", fmt.Errorf("future: 结果类型不是字符串: %T", v)
	}
}

// Strings 读取字符串列表结果
func (f *Future) Strings() ([]string, error) {
	v, err := f.Result()
	if err != nil {
		return nil, err
	}
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return s, nil
	case string:
		return []string{s}, nil
	default:
		return nil, fmt.Errorf("future: 结果类型不是字符串列表: %T", v)
	}
}

// Int64 读取整数结果
func (f *Future) Int64() (int64, error) {
	v, err := f.Result()
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case nil:
		return 0, redis.Nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("future: 结果类型不是整数: %T", v)
	}
}

func reader(cmd redis.Cmder) Reader {
	switch c := cmd.(type) {
	case *redis.StringCmd:
		return func() (interface{}, error) { return c.Result() }
	case *redis.IntCmd:
		return func() (interface{}, error) { return c.Result() }
	case *redis.StringSliceCmd:
		return func() (interface{}, error) { return c.Result() }
	case *redis.ZSliceCmd:
		return func() (interface{}, error) { return c.Result() }
	case *redis.StatusCmd:
		return func() (interface{}, error) { return c.Result() }
	case *redis.BoolCmd:
		return func() (interface{}, error) { return c.Result() }
	case *redis.Cmd:
		return func() (interface{}, error) { return c.Result() }
	default:
		return func() (interface{}, error) { return nil, cmd.Err() }
	}
}
