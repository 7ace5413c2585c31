// Package binding 把 JSON 数据绑定到 markup 文本中的 ${path} 占位符。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Scope 是一次插值可见的数据：根数据加上逐层定义的变量（循环变量、页码等）。
// Scope 不可变，With 返回新的子作用域。
type Scope struct {
	parent *Scope
	name   string
	value  any
	data   any
}

// New 创建以 data 为根数据的作用域，data 可以为 nil。
func New(data any) *Scope {
	return &Scope{data: data}
}

// With 返回定义了变量 name 的子作用域，同名变量遮蔽外层变量和根数据中的同名键。
func (s *Scope) With(name string, value any) *Scope {
	return &Scope{parent: s, name: name, value: value, data: s.data}
}

// Lookup 解析 a.b[0].c 形式的路径。首段依次在变量和根数据中查找。
func (s *Scope) Lookup(path string) (any, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}
	head, rest := splitHead(path)
	name, _ := parseSegment(head)
	for cur := s; cur != nil; cur = cur.parent {
		if cur.parent != nil && cur.name == name {
			return resolvePath(map[string]any{name: cur.value}, head+rest)
		}
	}
	if s.data == nil {
		return nil, false
	}
	return resolvePath(s.data, path)
}

// Interpolate 把 ${path} 替换为对应的值；路径不存在时保留原占位符。
func (s *Scope) Interpolate(text string) string {
	if !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := exprPattern.FindStringSubmatch(match)[1]
		if val, ok := s.Lookup(path); ok {
			return Format(val)
		}
		return match
	})
}

// Items 把路径解析为数组，用于循环展开。
func (s *Scope) Items(path string) ([]any, error) {
	val, ok := s.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("数据中找不到 %s", path)
	}
	switch v := val.(type) {
	case []any:
		return v, nil
	case []map[string]any:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out, nil
	case []string:
		out := make([]any, len(v))
		for i, m := range v {
			out[i] = m
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("%s 不是数组，而是 %T", path, val)
	}
}

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 若 data 为空或路径不存在，则返回原占位符。
func Interpolate(text string, data any) string {
	return New(data).Interpolate(text)
}

// Format 把数据值转成文本。JSON 数字解码为 float64，整数值不输出小数部分。
func Format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprint(val)
	}
}

func splitHead(path string) (head, rest string) {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i], path[i:]
	}
	return path, ""
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	name := strings.TrimSpace(segment)
	var indexes []string
	if i := strings.Index(name, "["); i != -1 {
		rest := name[i:]
		name = name[:i]
		for len(rest) > 0 && rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, strings.TrimSpace(rest[1:end]))
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
