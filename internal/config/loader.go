package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadFromFile 从文件加载配置
func LoadFromFile(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return config, nil
}

// envBinding 环境变量与配置项的对应关系；值为空或无法解析时保留原值
type envBinding struct {
	name  string
	apply func(c *Config, v string) error
}

var envBindings = []envBinding{
	{"TASKGO_REDIS_ADDR", func(c *Config, v string) error { c.Redis.Addr = v; return nil }},
	{"TASKGO_REDIS_PASSWORD", func(c *Config, v string) error { c.Redis.Password = v; return nil }},
	{"TASKGO_REDIS_DB", intVar(func(c *Config) *int { return &c.Redis.DB })},
	{"TASKGO_WORKER_COUNT", intVar(func(c *Config) *int { return &c.Worker.Count })},
	{"TASKGO_POLL_INTERVAL", durationVar(func(c *Config) *time.Duration { return &c.Worker.PollInterval })},
	{"TASKGO_DEFAULT_RETRY", intVar(func(c *Config) *int { return &c.Task.DefaultRetry })},
	{"TASKGO_DEFAULT_TIMEOUT", durationVar(func(c *Config) *time.Duration { return &c.Task.DefaultTimeout })},
	{"TASKGO_PRIORITIZED_SUFFIX", func(c *Config, v string) error { c.Queue.PrioritizedSuffix = v; return nil }},
	{"TASKGO_QUEUES", func(c *Config, v string) error {
		if names := splitList(v); len(names) > 0 {
			c.Queue.Names = names
		}
		return nil
	}},
}

func intVar(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func durationVar(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

// LoadFromEnv 先加载 envFiles（默认 .env），再用 TASKGO_* 环境变量覆盖默认配置
func LoadFromEnv(envFiles ...string) (*Config, error) {
	// 文件不存在不算错误
	_ = godotenv.Load(envFiles...)

	config := DefaultConfig()
	for _, b := range envBindings {
		v := os.Getenv(b.name)
		if v == "" {
			continue
		}
		// 无法解析时保留默认值
		_ = b.apply(config, v)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}
	return config, nil
}

// SaveToFile 保存配置到文件
func (c *Config) SaveToFile(filepath string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
