package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Variant 表示字体族中的字形变体。
type Variant uint8

const (
	Regular Variant = iota
	Bold
	Italic
	BoldItalic
)

// VariantOf 根据粗体/斜体标记选择变体。
func VariantOf(bold, italic bool) Variant {
	switch {
	case bold && italic:
		return BoldItalic
	case bold:
		return Bold
	case italic:
		return Italic
	default:
		return Regular
	}
}

func (v Variant) String() string {
	switch v {
	case Regular:
		return "regular"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bold-italic"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// ParseVariant 解析 regular/bold/italic/bold-italic 形式的变体名称。
func ParseVariant(s string) (Variant, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "regular", "normal", "":
		return Regular, true
	case "bold":
		return Bold, true
	case "italic", "oblique":
		return Italic, true
	case "bold-italic", "bolditalic", "bold_italic":
		return BoldItalic, true
	default:
		return Regular, false
	}
}

// Source 描述一个字体变体的数据来源，Bytes 优先于 Path。
// Path 可以是文件路径，也可以是 builtin:<name> 形式的内置字体。
type Source struct {
	Bytes []byte
	Path  string
	// Builtin 为 true 时，文本只能使用 Windows-1252 字符集。
	Builtin bool
}

func (s Source) empty() bool { return len(s.Bytes) == 0 && s.Path == "" }

// Family 是最多包含四个变体的具名字体族。
type Family struct {
	Name       string
	Regular    Source
	Bold       Source
	Italic     Source
	BoldItalic Source
}

// Source 返回指定变体的数据来源。
func (f Family) Source(v Variant) (Source, bool) {
	var src Source
	switch v {
	case Regular:
		src = f.Regular
	case Bold:
		src = f.Bold
	case Italic:
		src = f.Italic
	case BoldItalic:
		src = f.BoldItalic
	}
	return src, !src.empty()
}

// FromFiles 按 {dir}/{name}-Regular.ttf 等约定组装字体族，文件在首次使用时才读取。
func FromFiles(dir, name string, builtin bool) Family {
	path := func(suffix string) Source {
		return Source{Path: filepath.Join(dir, name+"-"+suffix+".ttf"), Builtin: builtin}
	}
	return Family{
		Name:       name,
		Regular:    path("Regular"),
		Bold:       path("Bold"),
		Italic:     path("Italic"),
		BoldItalic: path("BoldItalic"),
	}
}

// loadSource 读取字体字节，baseDir 用于解析相对路径。
func loadSource(src Source, baseDir string) ([]byte, error) {
	if len(src.Bytes) > 0 {
		return src.Bytes, nil
	}
	if strings.HasPrefix(src.Path, builtinPrefix) {
		return Load(src.Path)
	}
	path := src.Path
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取字体文件 %s 失败: %v", ErrFontLoad, src.Path, err)
	}
	return data, nil
}
