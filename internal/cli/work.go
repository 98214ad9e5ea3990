package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	taskgo "github.com/minhyannv/task-go-prioritize"
	"github.com/minhyannv/task-go-prioritize/pkg/job"
)

// newSuffixCommand 构造 `suffix` 子命令
func newSuffixCommand(newClient ClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "suffix",
		Short: "输出当前优先级队列后缀",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, newClient, func(client *taskgo.Client) error {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), client.PrioritizedSuffix())
				return nil
			})
		},
	}
}

// newWorkCommand 构造 `work` 子命令
//
// 命令行无法加载业务代码，--class 声明的作业类型只记录日志。
func newWorkCommand(newClient ClientFunc) *cobra.Command {
	workCmd := &cobra.Command{
		Use:   "work",
		Short: "启动 worker 处理作业，直到收到退出信号",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			classes, _ := cmd.Flags().GetStringSlice("class")
			if len(classes) == 0 {
				return fmt.Errorf("至少需要一个 --class")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return withClient(cmd, newClient, func(client *taskgo.Client) error {
				logger := client.Logger()
				for _, name := range classes {
					c := &job.Class{Name: name, Perform: logPerformer(logger)}
					if err := client.RegisterClass(c); err != nil {
						return err
					}
				}

				if err := client.Start(); err != nil {
					return err
				}
				<-ctx.Done()
				client.Stop()
				return nil
			})
		},
	}
	workCmd.Flags().StringSlice("class", nil, "要处理的作业类型，可重复")
	return workCmd
}

func logPerformer(logger *zap.Logger) job.Performer {
	return func(_ context.Context, j *job.Job) error {
		logger.Info("处理作业",
			zap.String("queue", j.Queue),
			zap.String("class", j.Handle.Name()),
			zap.Any("args", j.Args),
		)
		return nil
	}
}
