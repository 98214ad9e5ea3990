package constants

import "github.com/minhyannv/task-go-prioritize/internal/naming"

// Redis 键名常量
const (
	QueuePrefix = "queue:" // 队列键前缀，队列 test 存放在 queue:test
	QueuesKey   = "queues" // 已知队列名称集合
	FailedKey   = "failed" // 执行失败的作业
)

// 标签键名
const (
	PriorityTag = "priority" // 优先级标签 {{priority}:10}
	UUIDTag     = "uuid"     // 唯一性标签 {{uuid}:...}
)

// Redis TYPE 命令返回值
const (
	TypeSortedSet = "zset"
	TypeList      = "list"
	TypeNone      = "none"
)

// 默认配置常量
const (
	DefaultRetryCount        = 3
	DefaultTimeoutSec        = 30
	DefaultWorkerCount       = 5
	DefaultPollIntervalMs    = 500
	DefaultRedisAddr         = "localhost:6379"
	DefaultRedisPassword     = ""
	DefaultRedisDB           = 0
	DefaultPrioritizedSuffix = naming.DefaultSuffix
	AllQueues                = "*"
)
