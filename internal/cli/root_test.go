package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	taskgo "github.com/minhyannv/task-go-prioritize"
)

func testClientFunc(mr *miniredis.Miniredis) ClientFunc {
	return func(ctx context.Context) (*taskgo.Client, error) {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		return taskgo.NewClient(ctx, taskgo.WithRedisClient(rdb), taskgo.WithLogger(zap.NewNop()))
	}
}

func run(t *testing.T, mr *miniredis.Miniredis, args ...string) string {
	t.Helper()
	root := NewRoot(testClientFunc(mr))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(context.Background()))
	return out.String()
}

func TestPushAndPopByPriority(t *testing.T) {
	mr := miniredis.RunT(t)

	out := run(t, mr, "push", "test", "TestWorker", "--priority", "10", "--args", "[1]")
	require.Equal(t, "TestWorker{{priority}:10} -> test_prioritized\n", out)
	run(t, mr, "push", "test", "TestWorker", "--priority", "20", "--args", "[2]")
	run(t, mr, "push", "test", "TestWorker", "--args", "[9]")

	require.Equal(t, "2\n", run(t, mr, "size", "test_prioritized"))
	require.Equal(t, "1\n", run(t, mr, "size", "test"))

	require.Equal(t,
		"{\"class\":\"TestWorker{{priority}:20}\",\"args\":[2]}\n{\"class\":\"TestWorker{{priority}:10}\",\"args\":[1]}\n",
		run(t, mr, "list", "test_prioritized"))

	require.Equal(t, "{\"class\":\"TestWorker{{priority}:20}\",\"args\":[2]}\n", run(t, mr, "pop", "test_prioritized"))
	require.Equal(t, "{\"class\":\"TestWorker\",\"args\":[9]}\n", run(t, mr, "pop", "test"))
	require.Equal(t, "(empty)\n", run(t, mr, "pop", "test"))

	require.Equal(t, "test\t0\ntest_prioritized\t1\n", run(t, mr, "queues"))
}

func TestPeekAndRemove(t *testing.T) {
	mr := miniredis.RunT(t)
	run(t, mr, "push", "test", "TestWorker", "--priority", "1", "--args", "[\"a\"]")
	run(t, mr, "push", "test", "TestWorker", "--priority", "5", "--args", "[\"b\"]")

	require.Equal(t, "{\"class\":\"TestWorker{{priority}:1}\",\"args\":[\"a\"]}\n",
		run(t, mr, "peek", "test_prioritized", "--start", "1"))

	out := run(t, mr, "remove", "test_prioritized", "TestWorker", "--priority", "1", "--args", "[\"a\"]")
	require.Equal(t, "removed: 1\n", out)
	require.Equal(t, "1\n", run(t, mr, "size", "test_prioritized"))
}

func TestSuffixFlag(t *testing.T) {
	mr := miniredis.RunT(t)
	require.Equal(t, "_prioritized\n", run(t, mr, "suffix"))
	require.Equal(t, "_vip\n", run(t, mr, "suffix", "--suffix", "_vip"))

	out := run(t, mr, "push", "test", "TestWorker", "--priority", "3", "--suffix", "_vip")
	require.Equal(t, "TestWorker{{priority}:3} -> test_vip\n", out)
	require.True(t, mr.Exists("queue:test_vip"))
}

func TestInvalidArgs(t *testing.T) {
	mr := miniredis.RunT(t)
	root := NewRoot(testClientFunc(mr))
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"push", "test", "TestWorker", "--args", "{not json"})
	require.Error(t, root.ExecuteContext(context.Background()))
}
