// Package prioritize 为列表队列增加按优先级出队的能力
//
// 带有 {{priority}:N} 标签的作业写入以命名约定后缀结尾的有序集合队列，
// 分数为优先级；其余作业仍使用原有的列表队列。
package prioritize

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/minhyannv/task-go-prioritize/internal/constants"
	"github.com/minhyannv/task-go-prioritize/internal/datastore"
	"github.com/minhyannv/task-go-prioritize/internal/future"
	"github.com/minhyannv/task-go-prioritize/internal/models"
	"github.com/minhyannv/task-go-prioritize/internal/naming"
	"github.com/minhyannv/task-go-prioritize/internal/tags"
)

// ErrPipelineUnsupported 优先级队列的删除需要两次往返，不能在批处理中执行
var ErrPipelineUnsupported = errors.New("prioritize: 批处理中不支持从优先级队列删除")

var (
	classPattern = regexp.MustCompile(`"class":"[^ "]+`)
	argsPattern  = regexp.MustCompile(`(?s)"args":.+`)
)

// QueueAccess 支持优先级的队列实现，包装原有的列表实现
type QueueAccess struct {
	base    datastore.QueueAccess
	naming  *naming.Convention
	logger  *zap.Logger
	newUUID func() string
}

// New 创建支持优先级的队列实现
func New(base datastore.QueueAccess, conv *naming.Convention, logger *zap.Logger) *QueueAccess {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueAccess{
		base:    base,
		naming:  conv,
		logger:  logger,
		newUUID: uuid.NewString,
	}
}

// Wrap 用于 datastore.WithQueueAccess
func Wrap(conv *naming.Convention, logger *zap.Logger) datastore.Wrapper {
	return func(base datastore.QueueAccess) datastore.QueueAccess {
		return New(base, conv, logger)
	}
}

// PushToQueue 带优先级的作业写入优先级队列，否则写入列表队列
func (a *QueueAccess) PushToQueue(ctx context.Context, ex *datastore.Executor, queue, item string) *future.Future {
	priority, ok := ExtractPriority(item)
	if !ok {
		return a.base.PushToQueue(ctx, ex, queue, item)
	}

	zqueue := a.naming.Prioritized(queue)
	var add *redis.IntCmd
	err := ex.Group(ctx, func(c redis.Cmdable) error {
		datastore.WatchQueue(ctx, c, zqueue)
		add = c.ZAdd(ctx, datastore.QueueKey(zqueue), redis.Z{
			Score:  float64(priority),
			Member: a.withUUID(item),
		})
		return nil
	})
	if err != nil {
		return ex.Fail(err)
	}
	return ex.Track(future.FromCmd(add))
}

// PopFromQueue 优先级队列取出分数最高的元素
func (a *QueueAccess) PopFromQueue(ctx context.Context, ex *datastore.Executor, queue string) *future.Future {
	backend, err := a.Backend(ctx, ex, queue)
	if err != nil {
		return ex.Fail(err)
	}
	if backend != models.SortedSetBackend {
		return a.base.PopFromQueue(ctx, ex, queue)
	}

	f := future.FromCmd(ex.Cmdable().ZPopMax(ctx, datastore.QueueKey(queue)))
	f.AddTransform(firstMember)
	f.AddTransform(stripUUID)
	return ex.Track(f)
}

// QueueSize 优先级队列统计分数在 [0, +inf) 的元素数量
func (a *QueueAccess) QueueSize(ctx context.Context, ex *datastore.Executor, queue string) *future.Future {
	backend, err := a.Backend(ctx, ex, queue)
	if err != nil {
		return ex.Fail(err)
	}
	if backend != models.SortedSetBackend {
		return a.base.QueueSize(ctx, ex, queue)
	}
	return ex.Track(future.FromCmd(ex.Cmdable().ZCount(ctx, datastore.QueueKey(queue), "0", "+inf")))
}

// EverythingInQueue 优先级队列按分数从高到低列出
func (a *QueueAccess) EverythingInQueue(ctx context.Context, ex *datastore.Executor, queue string) *future.Future {
	backend, err := a.Backend(ctx, ex, queue)
	if err != nil {
		return ex.Fail(err)
	}
	if backend != models.SortedSetBackend {
		return a.base.EverythingInQueue(ctx, ex, queue)
	}

	f := future.FromCmd(ex.Cmdable().ZRevRange(ctx, datastore.QueueKey(queue), 0, -1))
	f.AddTransform(stripUUIDs)
	return ex.Track(f)
}

// RemoveFromQueue 从优先级队列删除一个匹配 data 的元素
//
// 成员带有唯一性标签，只能先读取再删除，因此不能在批处理中执行。
func (a *QueueAccess) RemoveFromQueue(ctx context.Context, ex *datastore.Executor, queue, data string) *future.Future {
	backend, err := a.Backend(ctx, ex, queue)
	if err != nil {
		return ex.Fail(err)
	}
	if backend != models.SortedSetBackend {
		return a.base.RemoveFromQueue(ctx, ex, queue, data)
	}
	if ex.Batched() {
		return ex.Fail(ErrPipelineUnsupported)
	}

	key := datastore.QueueKey(queue)
	members, err := ex.Cmdable().ZRevRange(ctx, key, 0, -1).Result()
	if err != nil {
		return ex.Fail(err)
	}

	member, ok := findMember(members, data)
	if !ok {
		return ex.Track(future.Value(int64(0)))
	}
	return ex.Track(future.FromCmd(ex.Cmdable().ZRem(ctx, key, member)))
}

// ListRange 优先级队列按分数从高到低读取；count 为 1 时返回单个元素
func (a *QueueAccess) ListRange(ctx context.Context, ex *datastore.Executor, key string, start, count int64) *future.Future {
	backend, err := a.Backend(ctx, ex, key)
	if err != nil {
		return ex.Fail(err)
	}
	if backend != models.SortedSetBackend {
		return a.base.ListRange(ctx, ex, key, start, count)
	}
	if count <= 0 {
		return ex.Track(future.Value([]string{}))
	}

	f := future.FromCmd(ex.Cmdable().ZRevRange(ctx, datastore.QueueKey(key), start, start+count-1))
	f.AddTransform(stripUUIDs)
	if count == 1 {
		f.AddTransform(firstString)
	}
	return ex.Track(f)
}

// Backend 判断队列当前的存储结构。批处理中 TYPE 的结果无法立即使用，只按名称判断；
// 否则以 TYPE 为准，队列不存在时退回按名称判断。
func (a *QueueAccess) Backend(ctx context.Context, ex *datastore.Executor, queue string) (models.Backend, error) {
	key := datastore.QueueKey(queue)
	if ex.Batched() {
		return a.byName(key), nil
	}

	typ, err := ex.Cmdable().Type(ctx, key).Result()
	if err != nil {
		return "", err
	}

	backend := models.ListBackend
	switch typ {
	case constants.TypeSortedSet:
		backend = models.SortedSetBackend
	case constants.TypeNone:
		backend = a.byName(key)
	}
	a.logger.Debug("队列存储结构",
		zap.String("queue", key),
		zap.String("type", typ),
		zap.String("backend", string(backend)),
	)
	return backend, nil
}

func (a *QueueAccess) byName(key string) models.Backend {
	if a.naming.IsPrioritized(key) {
		return models.SortedSetBackend
	}
	return models.ListBackend
}

// withUUID 有序集合成员不可重复，为每个元素追加唯一性标签
func (a *QueueAccess) withUUID(item string) string {
	if tags.Has(item, constants.UUIDTag) {
		return item
	}
	return item + tags.Format(constants.UUIDTag, a.newUUID())
}

// ExtractPriority 读取 item 中的优先级标签
func ExtractPriority(item string) (int, bool) {
	_, values := tags.Extract(item, constants.PriorityTag)
	raw, ok := values.Get(constants.PriorityTag)
	if !ok {
		return 0, false
	}
	priority, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return priority, true
}

// WithoutUUID 移除唯一性标签
func WithoutUUID(item string) string {
	return tags.Strip(item, constants.UUIDTag)
}

// findMember data 带优先级时按去掉唯一性标签后的全文匹配，
// 否则只比较 class 与 args 片段。
func findMember(members []string, data string) (string, bool) {
	if _, ok := ExtractPriority(data); ok {
		for _, m := range members {
			if m == data || WithoutUUID(m) == data {
				return m, true
			}
		}
		return "", false
	}

	class := classPattern.FindString(data)
	args := argsPattern.FindString(data)
	if class == "" || args == "" {
		return "", false
	}
	for _, m := range members {
		if strings.Contains(m, class) && strings.Contains(m, args) {
			return m, true
		}
	}
	return "", false
}

func firstMember(v interface{}) interface{} {
	zs, ok := v.([]redis.Z)
	if !ok || len(zs) == 0 {
		return nil
	}
	if s, ok := zs[0].Member.(string); ok {
		return s
	}
	return nil
}

func firstString(v interface{}) interface{} {
	list, ok := v.([]string)
	if !ok || len(list) == 0 {
		return nil
	}
	return list[0]
}

func stripUUID(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return WithoutUUID(s)
}

func stripUUIDs(v interface{}) interface{} {
	list, ok := v.([]string)
	if !ok {
		return v
	}
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = WithoutUUID(s)
	}
	return out
}
