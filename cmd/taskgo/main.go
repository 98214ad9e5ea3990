package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	taskgo "github.com/minhyannv/task-go-prioritize"
	"github.com/minhyannv/task-go-prioritize/internal/cli"
	"github.com/minhyannv/task-go-prioritize/internal/config"
)

func main() {
	// 命令行默认输出开发格式日志，TASKGO_LOG_FORMAT=json 时输出 JSON
	var (
		logger *zap.Logger
		err    error
	)
	if os.Getenv("TASKGO_LOG_FORMAT") == "json" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "创建日志器失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	root := cli.NewRoot(func(ctx context.Context) (*taskgo.Client, error) {
		cfg, err := config.LoadFromEnv()
		if err != nil {
			return nil, err
		}
		return taskgo.NewClient(ctx, taskgo.WithConfig(cfg), taskgo.WithLogger(logger))
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}
