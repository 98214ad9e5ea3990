package job

import (
	"encoding/json"
	"fmt"
)

// Payload 队列中保存的作业文本 {"class":"...","args":[...]}
type Payload struct {
	Class string        `json:"class"`
	Args  []interface{} `json:"args"`
}

// Encode 编码作业载荷，class 为类型句柄的名称
func Encode(class fmt.Stringer, args ...interface{}) (string, error) {
	if args == nil {
		args = []interface{}{}
	}
	data, err := json.Marshal(Payload{Class: class.String(), Args: args})
	if err != nil {
		return "", fmt.Errorf("编码作业失败: %w", err)
	}
	return string(data), nil
}

// Decode 解析作业载荷
func Decode(item string) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(item), &p); err != nil {
		return nil, fmt.Errorf("解析作业失败: %w", err)
	}
	if p.Class == "" {
		return nil, fmt.Errorf("作业缺少 class 字段: %s", item)
	}
	return &p, nil
}
