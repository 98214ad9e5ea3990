package models

// Backend 队列的存储结构
type Backend string

const (
	ListBackend      Backend = "list" // 列表 (FIFO)
	SortedSetBackend Backend = "zset" // 有序集合 (按优先级)
)
