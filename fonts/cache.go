package fonts

import (
	"fmt"
	"sort"
	"sync"
)

type cacheKey struct {
	family  string
	variant Variant
}

// Cache 保存已注册的字体族，并在首次使用时按 (family, variant) 加载度量。
// 每个文档持有自己的 Cache，互不干扰。
type Cache struct {
	parser  Parser
	baseDir string

	mu       sync.Mutex
	families map[string]Family
	metrics  map[cacheKey]*Metrics
}

// NewCache 创建字体缓存，parser 为空时使用 SFNTParser。
func NewCache(parser Parser) *Cache {
	if parser == nil {
		parser = SFNTParser{}
	}
	return &Cache{
		parser:   parser,
		families: map[string]Family{},
		metrics:  map[cacheKey]*Metrics{},
	}
}

// SetBaseDir 设置解析相对字体路径时使用的目录。
func (c *Cache) SetBaseDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseDir = dir
}

// Register 注册字体族；同名字体族会被替换并丢弃已加载的度量。
func (c *Cache) Register(f Family) error {
	if f.Name == "" {
		return fmt.Errorf("%w: 字体族名称不能为空", ErrInvalidStyleReference)
	}
	if _, ok := f.Source(Regular); !ok {
		return fmt.Errorf("%w: 字体族 %s 缺少 regular 变体", ErrFontLoad, f.Name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.families[f.Name] = f
	for key := range c.metrics {
		if key.family == f.Name {
			delete(c.metrics, key)
		}
	}
	return nil
}

// Has 报告字体族是否已注册。
func (c *Cache) Has(family string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.families[family]
	return ok
}

// MetricsFor 返回 (family, variant) 的度量；重复调用返回同一个实例。
func (c *Cache) MetricsFor(family string, v Variant) (*Metrics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey{family, v}
	if m, ok := c.metrics[key]; ok {
		return m, nil
	}
	f, ok := c.families[family]
	if !ok {
		return nil, fmt.Errorf("%w: 字体族 %q 未注册", ErrInvalidStyleReference, family)
	}
	src, ok := f.Source(v)
	if !ok {
		return nil, fmt.Errorf("%w: 字体族 %q 没有 %s 变体", ErrInvalidStyleReference, family, v)
	}
	data, err := loadSource(src, c.baseDir)
	if err != nil {
		return nil, err
	}
	face, err := c.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s(%s) 失败: %w", family, v, err)
	}
	m := newMetrics(family, v, src.Builtin, data, face)
	c.metrics[key] = m
	return m, nil
}

// Loaded 返回已经加载的全部度量，按字体族与变体排序，便于写入器按稳定顺序嵌入字体。
func (c *Cache) Loaded() []*Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Metrics, 0, len(c.metrics))
	for _, m := range c.metrics {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Family != out[j].Family {
			return out[i].Family < out[j].Family
		}
		return out[i].Variant < out[j].Variant
	})
	return out
}
