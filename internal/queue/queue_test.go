package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/minhyannv/task-go-prioritize/internal/datastore"
	"github.com/minhyannv/task-go-prioritize/internal/naming"
	"github.com/minhyannv/task-go-prioritize/internal/prioritize"
	"github.com/minhyannv/task-go-prioritize/internal/registry"
	"github.com/minhyannv/task-go-prioritize/internal/worker"
	"github.com/minhyannv/task-go-prioritize/pkg/job"
)

func TestGroupProcessesByPriority(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	conv := naming.NewConvention("")
	store := datastore.New(rdb, datastore.WithQueueAccess(prioritize.Wrap(conv, zap.NewNop())))

	var (
		mu   sync.Mutex
		seen []string
	)
	class := &job.Class{Name: "TestWorker", Queue: "test", Perform: func(_ context.Context, j *job.Job) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, j.Handle.Name())
		return nil
	}}
	reg := registry.New(zap.NewNop())
	require.NoError(t, reg.Register(class))

	binder := job.NewBinder(conv)
	for _, p := range []int{1, 3, 2} {
		h, err := binder.WithPriority(class, p)
		require.NoError(t, err)
		item, err := job.Encode(h)
		require.NoError(t, err)
		_, err = store.PushToQueue(ctx, h.Queue(), item).Result()
		require.NoError(t, err)
	}

	g := NewGroup(zap.NewNop(), store, prioritize.NewResolver(reg, binder), []string{"test_prioritized"}, 1,
		worker.Options{PollInterval: 10 * time.Millisecond, DefaultTimeout: time.Second})
	require.NoError(t, g.Start(ctx))
	require.True(t, g.Running())
	require.Error(t, g.Start(ctx))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 3
	}, 2*time.Second, 10*time.Millisecond)

	g.Stop()
	require.False(t, g.Running())

	mu.Lock()
	require.Equal(t, []string{
		"TestWorker{{priority}:3}",
		"TestWorker{{priority}:2}",
		"TestWorker{{priority}:1}",
	}, seen)
	mu.Unlock()

	stats, err := g.GetStats(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"test_prioritized": 0}, stats["queues"])
	require.Equal(t, 0, stats["workers"])
}
