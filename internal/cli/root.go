// Package cli 包含 taskgo 命令行的 Cobra 命令
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	taskgo "github.com/minhyannv/task-go-prioritize"
)

// ClientFunc 创建命令使用的客户端
type ClientFunc func(ctx context.Context) (*taskgo.Client, error)

// NewRoot 创建 taskgo 根命令并注册全部子命令
func NewRoot(newClient ClientFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskgo",
		Short:         "TaskGo 队列命令行",
		Long:          "TaskGo 队列命令行，用于查看和操作 Redis 中的普通队列与优先级队列。",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("suffix", "", "优先级队列后缀（默认 _prioritized）")

	root.AddCommand(
		newPushCommand(newClient),
		newPopCommand(newClient),
		newSizeCommand(newClient),
		newListCommand(newClient),
		newPeekCommand(newClient),
		newRemoveCommand(newClient),
		newQueuesCommand(newClient),
		newSuffixCommand(newClient),
		newWorkCommand(newClient),
	)
	return root
}

// withClient 创建客户端、应用 --suffix 并在结束后关闭
func withClient(cmd *cobra.Command, newClient ClientFunc, fn func(*taskgo.Client) error) error {
	client, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	if suffix, _ := cmd.Flags().GetString("suffix"); suffix != "" {
		client.SetPrioritizedSuffix(suffix)
	}
	return fn(client)
}

// parseArgs 解析 JSON 数组形式的作业参数
func parseArgs(raw string) ([]interface{}, error) {
	if raw == "" {
		return nil, nil
	}
	var args []interface{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("--args 必须是 JSON 数组: %w", err)
	}
	return args, nil
}
