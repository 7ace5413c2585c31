package layout

import (
	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/hyphen"
	"github.com/ByLCY/folio/images"
)

// BuildOptions 配置 markup 构建阶段所需的依赖。
type BuildOptions struct {
	// BaseDir 用于解析相对的字体、图片与断词模式文件路径。
	BaseDir string
	// Parser 为空时使用 fonts.SFNTParser。
	Parser fonts.Parser
	// Hyphenator 非空时覆盖 markup 中 hyphenate 的设置。
	Hyphenator hyphen.Hyphenator
	MaxPages   int
	// LoadImage 为空时使用 images.Load。
	LoadImage func(path string) (*images.Image, error)
}
