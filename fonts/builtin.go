package fonts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10bolditalic"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

const builtinPrefix = "builtin:"

// 内置字体数据，随二进制一起分发，不依赖系统字体目录。
var builtinFonts = map[string][]byte{
	"go-regular":     goregular.TTF,
	"go-bold":        gobold.TTF,
	"go-italic":      goitalic.TTF,
	"go-bold-italic": gobolditalic.TTF,

	"lm-regular":     lmroman10regular.TTF,
	"lm-bold":        lmroman10bold.TTF,
	"lm-italic":      lmroman10italic.TTF,
	"lm-bold-italic": lmroman10bolditalic.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "builtin:go-regular" 或直接 "go-regular"。
func Load(name string) ([]byte, error) {
	key := strings.TrimPrefix(name, builtinPrefix)
	data, ok := builtinFonts[key]
	if !ok {
		return nil, fmt.Errorf("%w: 找不到内置字体 %s", ErrFontLoad, name)
	}
	return data, nil
}

// BuiltinNames 列出全部内置字体名称（已排序）。
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinFonts))
	for name := range builtinFonts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GoFamily 返回基于 Go 字体的完整字体族。
func GoFamily(name string) Family {
	return builtinFamily(name, "go")
}

// LatinModernFamily 返回基于 Latin Modern Roman 的完整字体族。
func LatinModernFamily(name string) Family {
	return builtinFamily(name, "lm")
}

func builtinFamily(name, prefix string) Family {
	src := func(variant string) Source {
		return Source{Path: builtinPrefix + prefix + "-" + variant}
	}
	return Family{
		Name:       name,
		Regular:    src("regular"),
		Bold:       src("bold"),
		Italic:     src("italic"),
		BoldItalic: src("bold-italic"),
	}
}
