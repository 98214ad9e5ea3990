package cli

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	taskgo "github.com/minhyannv/task-go-prioritize"
	"github.com/minhyannv/task-go-prioritize/pkg/job"
)

// handleFor 根据命令行参数构造类型句柄，--priority 存在时绑定优先级
func handleFor(cmd *cobra.Command, client *taskgo.Client, class, queue string) (job.Handle, error) {
	c := &job.Class{Name: class, Queue: queue}
	if !cmd.Flags().Changed("priority") {
		return c.Handle(), nil
	}
	priority, _ := cmd.Flags().GetInt("priority")
	return client.WithPriority(c, priority)
}

// newPushCommand 构造 `push` 子命令
func newPushCommand(newClient ClientFunc) *cobra.Command {
	pushCmd := &cobra.Command{
		Use:   "push <queue> <class>",
		Short: "向队列写入一个作业",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("args")
			jobArgs, err := parseArgs(raw)
			if err != nil {
				return err
			}

			return withClient(cmd, newClient, func(client *taskgo.Client) error {
				h, err := handleFor(cmd, client, args[1], args[0])
				if err != nil {
					return err
				}
				if err := client.Enqueue(cmd.Context(), h, jobArgs...); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", h.Name(), h.Queue())
				return nil
			})
		},
	}
	pushCmd.Flags().String("args", "", "作业参数，JSON 数组")
	pushCmd.Flags().Int("priority", 0, "作业优先级，设置后写入优先级队列")
	return pushCmd
}

// newPopCommand 构造 `pop` 子命令
func newPopCommand(newClient ClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "pop <queue>",
		Short: "取出一个作业并输出原始内容",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, newClient, func(client *taskgo.Client) error {
				item, err := client.Store().PopFromQueue(cmd.Context(), args[0]).Text()
				if errors.Is(err, redis.Nil) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "(empty)")
					return nil
				}
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), item)
				return nil
			})
		},
	}
}

// newSizeCommand 构造 `size` 子命令
func newSizeCommand(newClient ClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "size <queue>",
		Short: "输出队列长度",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, newClient, func(client *taskgo.Client) error {
				size, err := client.Size(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), size)
				return nil
			})
		},
	}
}

// newListCommand 构造 `list` 子命令
func newListCommand(newClient ClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list <queue>",
		Short: "按出队顺序列出队列中的全部作业",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, newClient, func(client *taskgo.Client) error {
				items, err := client.List(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				for _, item := range items {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), item)
				}
				return nil
			})
		},
	}
}

// newPeekCommand 构造 `peek` 子命令
func newPeekCommand(newClient ClientFunc) *cobra.Command {
	peekCmd := &cobra.Command{
		Use:   "peek <queue>",
		Short: "查看队列中的一段作业",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, _ := cmd.Flags().GetInt64("start")
			count, _ := cmd.Flags().GetInt64("count")
			return withClient(cmd, newClient, func(client *taskgo.Client) error {
				items, err := client.Peek(cmd.Context(), args[0], start, count)
				if err != nil {
					return err
				}
				for _, item := range items {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), item)
				}
				return nil
			})
		},
	}
	peekCmd.Flags().Int64("start", 0, "起始位置")
	peekCmd.Flags().Int64("count", 1, "数量")
	return peekCmd
}

// newRemoveCommand 构造 `remove` 子命令
func newRemoveCommand(newClient ClientFunc) *cobra.Command {
	removeCmd := &cobra.Command{
		Use:   "remove <queue> <class>",
		Short: "删除队列中与类型和参数匹配的作业",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("args")
			jobArgs, err := parseArgs(raw)
			if err != nil {
				return err
			}

			return withClient(cmd, newClient, func(client *taskgo.Client) error {
				h, err := handleFor(cmd, client, args[1], args[0])
				if err != nil {
					return err
				}
				removed, err := client.Dequeue(cmd.Context(), args[0], h, jobArgs...)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "removed:", removed)
				return nil
			})
		},
	}
	removeCmd.Flags().String("args", "", "作业参数，JSON 数组")
	removeCmd.Flags().Int("priority", 0, "作业优先级")
	return removeCmd
}

// newQueuesCommand 构造 `queues` 子命令
func newQueuesCommand(newClient ClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "queues",
		Short: "列出已知队列及其长度",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, newClient, func(client *taskgo.Client) error {
				queues, err := client.Queues(cmd.Context())
				if err != nil {
					return err
				}
				for _, q := range queues {
					size, err := client.Size(cmd.Context(), q)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", q, size)
				}
				return nil
			})
		},
	}
}
