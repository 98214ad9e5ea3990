package datastore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/minhyannv/task-go-prioritize/internal/future"
)

func openTestStore(t *testing.T, opts ...Option) (*DataStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, opts...), mr
}

func TestListQueue(t *testing.T) {
	s, mr := openTestStore(t)
	ctx := context.Background()

	for _, item := range []string{"a", "b", "c"} {
		_, err := s.PushToQueue(ctx, "test", item).Result()
		require.NoError(t, err)
	}

	list, err := mr.List("queue:test")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, list)
	require.True(t, mr.Exists("queues"))

	size, err := s.QueueSize(ctx, "test").Int64()
	require.NoError(t, err)
	require.EqualValues(t, 3, size)

	all, err := s.EverythingInQueue(ctx, "test").Strings()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, all)

	first, err := s.ListRange(ctx, "queue:test", 0, 1).Text()
	require.NoError(t, err)
	require.Equal(t, "a", first)

	window, err := s.ListRange(ctx, "queue:test", 1, 6).Strings()
	require.NoError(t, err)
	require.Equal(t, []string{"b", "c"}, window)

	item, err := s.PopFromQueue(ctx, "test").Text()
	require.NoError(t, err)
	require.Equal(t, "a", item)

	removed, err := s.RemoveFromQueue(ctx, "test", "c").Int64()
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	removed, err = s.RemoveFromQueue(ctx, "test", "missing").Int64()
	require.NoError(t, err)
	require.EqualValues(t, 0, removed)
}

func TestPopEmptyQueue(t *testing.T) {
	s, _ := openTestStore(t)

	v, err := s.PopFromQueue(context.Background(), "empty").Result()
	require.NoError(t, err)
	require.Nil(t, v)

	_, err = s.PopFromQueue(context.Background(), "empty").Text()
	require.ErrorIs(t, err, redis.Nil)
}

func TestMulti(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	_, err := s.PushToQueue(ctx, "test", "x").Result()
	require.NoError(t, err)

	var pending *future.Future
	results, err := s.Multi(ctx, func(tx *DataStore) error {
		require.True(t, tx.Batched())
		tx.PushToQueue(ctx, "test", "y")
		pending = tx.QueueSize(ctx, "test")
		_, err := pending.Result()
		require.ErrorIs(t, err, future.ErrNotReady)
		tx.PopFromQueue(ctx, "test")
		tx.PopFromQueue(ctx, "other")
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []interface{}{int64(2), int64(2), "x", nil}, results)

	size, err := pending.Int64()
	require.NoError(t, err)
	require.EqualValues(t, 2, size)
}

func TestPipelinedAbortsOnFailedFuture(t *testing.T) {
	failing := func(base QueueAccess) QueueAccess { return failingAccess{base} }
	s, mr := openTestStore(t, WithQueueAccess(failing))
	ctx := context.Background()

	_, err := s.Pipelined(ctx, func(tx *DataStore) error {
		tx.PushToQueue(ctx, "test", "y")
		tx.RemoveFromQueue(ctx, "test", "y")
		return nil
	})
	require.ErrorIs(t, err, errRemove)
	require.False(t, mr.Exists("queue:test"))
}

func TestFailIsTrackedInsideBatch(t *testing.T) {
	s, mr := openTestStore(t)
	ctx := context.Background()

	_, err := s.Multi(ctx, func(tx *DataStore) error {
		tx.PushToQueue(ctx, "test", "y")
		tx.Executor().Fail(errRemove)
		return nil
	})
	require.ErrorIs(t, err, errRemove)
	require.False(t, mr.Exists("queue:test"))

	f := s.Executor().Fail(errRemove)
	require.True(t, f.Ready())
	_, err = f.Result()
	require.ErrorIs(t, err, errRemove)
}

func TestQueuesAndRemoveQueue(t *testing.T) {
	s, mr := openTestStore(t)
	ctx := context.Background()
	s.PushToQueue(ctx, "b", "1")
	s.PushToQueue(ctx, "a", "1")

	queues, err := s.Queues(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, queues)

	require.NoError(t, s.RemoveQueue(ctx, "a"))
	require.False(t, mr.Exists("queue:a"))
	queues, err = s.Queues(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"b"}, queues)
}

func TestFailures(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordFailure(ctx, Failure{Queue: "test", Payload: "p", Error: "boom"}))
	failures, err := s.Failures(ctx)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	require.Equal(t, "boom", failures[0].Error)
	require.NotZero(t, failures[0].FailedAt)
}
