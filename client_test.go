package taskgo

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/minhyannv/task-go-prioritize/internal/config"
	"github.com/minhyannv/task-go-prioritize/pkg/job"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	client, err := NewClient(context.Background(),
		WithConfig(config.DefaultConfig()),
		WithLogger(zap.NewNop()),
		WithRedisClient(rdb),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func testClass() *job.Class {
	return &job.Class{
		Name:    "TestWorker",
		Queue:   "test",
		Perform: func(context.Context, *job.Job) error { return nil },
	}
}

func TestClientEnqueueAndPopByPriority(t *testing.T) {
	ctx := context.Background()
	client, mr := newTestClient(t)
	class := testClass()
	require.NoError(t, client.RegisterClass(class))

	low, err := client.WithPriority(class, 10)
	require.NoError(t, err)
	high, err := client.WithPriority(class, 20)
	require.NoError(t, err)
	require.Equal(t, "test_prioritized", high.Queue())

	require.NoError(t, client.Enqueue(ctx, low, 1))
	require.NoError(t, client.Enqueue(ctx, high, 2))
	require.NoError(t, client.Enqueue(ctx, class.Handle(), 9))

	size, err := client.Size(ctx, "test_prioritized")
	require.NoError(t, err)
	require.EqualValues(t, 2, size)
	size, err = client.Size(ctx, "test")
	require.NoError(t, err)
	require.EqualValues(t, 1, size)

	list, err := mr.List("queue:test")
	require.NoError(t, err)
	require.Equal(t, []string{`{"class":"TestWorker","args":[9]}`}, list)

	items, err := client.List(ctx, "test_prioritized")
	require.NoError(t, err)
	require.Equal(t, []string{
		`{"class":"TestWorker{{priority}:20}","args":[2]}`,
		`{"class":"TestWorker{{priority}:10}","args":[1]}`,
	}, items)

	j, err := client.Pop(ctx, "test_prioritized")
	require.NoError(t, err)
	require.NotNil(t, j)
	priority, ok := j.Handle.Priority()
	require.True(t, ok)
	require.Equal(t, 20, priority)
	require.True(t, j.Handle.Equal(high))
	require.Equal(t, []interface{}{float64(2)}, j.Args)

	j, err = client.Pop(ctx, "test_prioritized")
	require.NoError(t, err)
	priority, _ = j.Handle.Priority()
	require.Equal(t, 10, priority)

	j, err = client.Pop(ctx, "test_prioritized")
	require.NoError(t, err)
	require.Nil(t, j)

	j, err = client.Pop(ctx, "test")
	require.NoError(t, err)
	require.False(t, j.Handle.Bound())
	require.Equal(t, "test", j.Handle.Queue())

	queues, err := client.Queues(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"test", "test_prioritized"}, queues)
}

func TestClientDequeue(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	class := testClass()
	require.NoError(t, client.RegisterClass(class))

	h, err := client.WithPriority(class, 5)
	require.NoError(t, err)
	require.NoError(t, client.Enqueue(ctx, h, "a"))
	require.NoError(t, client.Enqueue(ctx, h, "a"))
	require.NoError(t, client.Enqueue(ctx, h, "b"))

	removed, err := client.Dequeue(ctx, h.Queue(), h, "a")
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	removed, err = client.Dequeue(ctx, h.Queue(), h, "missing")
	require.NoError(t, err)
	require.EqualValues(t, 0, removed)

	size, err := client.Size(ctx, h.Queue())
	require.NoError(t, err)
	require.EqualValues(t, 2, size)
}

func TestClientPeek(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	class := testClass()
	require.NoError(t, client.RegisterClass(class))

	for _, p := range []int{1, 3, 2} {
		h, err := client.WithPriority(class, p)
		require.NoError(t, err)
		require.NoError(t, client.Enqueue(ctx, h, p))
	}

	items, err := client.Peek(ctx, "test_prioritized", 0, 2)
	require.NoError(t, err)
	require.Equal(t, []string{
		`{"class":"TestWorker{{priority}:3}","args":[3]}`,
		`{"class":"TestWorker{{priority}:2}","args":[2]}`,
	}, items)

	items, err = client.Peek(ctx, "test_prioritized", 2, 1)
	require.NoError(t, err)
	require.Equal(t, []string{`{"class":"TestWorker{{priority}:1}","args":[1]}`}, items)

	items, err = client.Peek(ctx, "test_prioritized", 5, 1)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestClientMulti(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	class := testClass()
	h, err := client.WithPriority(class, 7)
	require.NoError(t, err)

	item, err := job.Encode(h, 1)
	require.NoError(t, err)

	results, err := client.Multi(ctx, func(tx *Store) error {
		tx.PushToQueue(ctx, "test", item)
		tx.QueueSize(ctx, "test_prioritized")
		tx.PopFromQueue(ctx, "test_prioritized")
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []interface{}{int64(1), int64(1), item}, results)
}

func TestClientResolveAndSuffix(t *testing.T) {
	client, _ := newTestClient(t)
	class := testClass()
	require.NoError(t, client.RegisterClass(class))

	h, err := client.Resolve("TestWorker{{priority}:20}")
	require.NoError(t, err)
	require.True(t, h.Bound())
	require.Equal(t, "test_prioritized", h.Queue())

	_, err = client.Resolve("Missing{{priority}:20}")
	require.Error(t, err)

	client.SetPrioritizedSuffix("_vip")
	require.Equal(t, "_vip", client.PrioritizedSuffix())

	h, err = client.Bind(class.Handle(), intPtr(3))
	require.NoError(t, err)
	require.Equal(t, "test_vip", h.Queue())

	client.SetPrioritizedSuffix("")
	require.Equal(t, "_prioritized", client.PrioritizedSuffix())
}

func TestClientStats(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient(t)
	require.NoError(t, client.RegisterClass(testClass()))

	stats, err := client.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"TestWorker"}, stats["classes"])
	require.Equal(t, "_prioritized", stats["prioritized_suffix"])
}

func intPtr(i int) *int {
	return &i
}
