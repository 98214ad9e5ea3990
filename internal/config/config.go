package config

import (
	"time"

	"github.com/minhyannv/task-go-prioritize/internal/constants"
)

// Config TaskGo配置
type Config struct {
	Redis  RedisConfig  `json:"redis" yaml:"redis"`
	Worker WorkerConfig `json:"worker" yaml:"worker"`
	Task   TaskConfig   `json:"task" yaml:"task"`
	Queue  QueueConfig  `json:"queue" yaml:"queue"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// WorkerConfig Worker配置
type WorkerConfig struct {
	Count        int           `json:"count" yaml:"count"`                 // worker数量
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"` // 队列为空时的轮询间隔
}

// TaskConfig 作业配置，作业类型未声明时使用
type TaskConfig struct {
	DefaultRetry   int           `json:"default_retry" yaml:"default_retry"`
	DefaultTimeout time.Duration `json:"default_timeout" yaml:"default_timeout"`
}

// QueueConfig 队列配置
type QueueConfig struct {
	PrioritizedSuffix string   `json:"prioritized_suffix" yaml:"prioritized_suffix"` // 优先级队列后缀
	Names             []string `json:"names" yaml:"names"`                           // worker 监听的队列，"*" 表示全部
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Redis: RedisConfig{
			Addr:     constants.DefaultRedisAddr,
			Password: constants.DefaultRedisPassword,
			DB:       constants.DefaultRedisDB,
		},
		Worker: WorkerConfig{
			Count:        constants.DefaultWorkerCount,
			PollInterval: constants.DefaultPollIntervalMs * time.Millisecond,
		},
		Task: TaskConfig{
			DefaultRetry:   constants.DefaultRetryCount,
			DefaultTimeout: constants.DefaultTimeoutSec * time.Second,
		},
		Queue: QueueConfig{
			PrioritizedSuffix: constants.DefaultPrioritizedSuffix,
			Names:             []string{constants.AllQueues},
		},
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Redis.Addr == "" {
		c.Redis.Addr = constants.DefaultRedisAddr
	}
	if c.Worker.Count <= 0 {
		c.Worker.Count = constants.DefaultWorkerCount
	}
	if c.Worker.PollInterval <= 0 {
		c.Worker.PollInterval = constants.DefaultPollIntervalMs * time.Millisecond
	}
	if c.Task.DefaultRetry < 0 {
		c.Task.DefaultRetry = constants.DefaultRetryCount
	}
	if c.Task.DefaultTimeout <= 0 {
		c.Task.DefaultTimeout = constants.DefaultTimeoutSec * time.Second
	}
	if c.Queue.PrioritizedSuffix == "" {
		c.Queue.PrioritizedSuffix = constants.DefaultPrioritizedSuffix
	}
	if len(c.Queue.Names) == 0 {
		c.Queue.Names = []string{constants.AllQueues}
	}
	return nil
}
