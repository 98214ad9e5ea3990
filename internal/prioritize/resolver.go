package prioritize

import (
	"strconv"

	"github.com/minhyannv/task-go-prioritize/internal/constants"
	"github.com/minhyannv/task-go-prioritize/internal/registry"
	"github.com/minhyannv/task-go-prioritize/internal/tags"
	"github.com/minhyannv/task-go-prioritize/pkg/job"
)

// Resolver 解析带优先级标签的类型名称
//
// 去掉标签后交给 base 解析，再把优先级绑定到结果上；
// 标签无法解析时原样交给 base，由其返回未知类型错误。
type Resolver struct {
	base   registry.Resolver
	binder *job.Binder
}

// NewResolver 创建解析器
func NewResolver(base registry.Resolver, binder *job.Binder) *Resolver {
	return &Resolver{base: base, binder: binder}
}

// Resolve 解析类型名称
func (r *Resolver) Resolve(name string) (job.Handle, error) {
	rest, values := tags.Extract(name, constants.PriorityTag)
	raw, ok := values.Get(constants.PriorityTag)
	if !ok {
		return r.base.Resolve(name)
	}
	priority, err := strconv.Atoi(raw)
	if err != nil {
		return r.base.Resolve(name)
	}

	h, err := r.base.Resolve(rest)
	if err != nil {
		return job.Handle{}, err
	}
	return r.binder.Bind(h, &priority)
}
