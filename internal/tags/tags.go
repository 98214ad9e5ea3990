// Package tags 在文本标识符后追加、提取 {{key}:value} 形式的元数据标签
package tags

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Tag 单个标签
type Tag struct {
	Key   string
	Value interface{}
}

// Values 提取结果，未找到的键不会出现在其中
type Values map[string]string

// Get 获取标签值
func (v Values) Get(key string) (string, bool) {
	val, ok := v[key]
	return val, ok
}

// Encode 按顺序把标签追加到 base 之后
func Encode(base string, tags ...Tag) string {
	var b strings.Builder
	b.WriteString(base)
	for _, t := range tags {
		b.WriteString(Format(t.Key, t.Value))
	}
	return b.String()
}

// Format 生成单个标签文本
func Format(key string, value interface{}) string {
	return fmt.Sprintf("{{%s}:%v}", key, value)
}

// Extract 依次从 source 中移除 keys 对应的标签，返回剩余文本和提取到的值
func Extract(source string, keys ...string) (string, Values) {
	values := make(Values, len(keys))
	rest := source
	for _, key := range keys {
		m := pattern(key).FindStringSubmatch(rest)
		if m == nil {
			continue
		}
		rest = m[1] + m[3]
		values[key] = m[2]
	}
	return rest, values
}

// Has 判断 source 中是否带有 key 标签
func Has(source, key string) bool {
	return pattern(key).MatchString(source)
}

// Strip 移除 key 标签，不存在时原样返回
func Strip(source, key string) string {
	rest, _ := Extract(source, key)
	return rest
}

var patterns sync.Map // key -> *regexp.Regexp

func pattern(key string) *regexp.Regexp {
	if re, ok := patterns.Load(key); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?is)^(.*)\{\{` + regexp.QuoteMeta(key) + `\}:([^}]+)\}(.*)$`)
	actual, _ := patterns.LoadOrStore(key, re)
	return actual.(*regexp.Regexp)
}
