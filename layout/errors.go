package layout

import (
	"errors"

	"github.com/ByLCY/folio/fonts"
)

// 字体相关错误由 fonts 包定义，这里重新导出，调用方只需引用 layout。
var (
	ErrFontLoad              = fonts.ErrFontLoad
	ErrUnsupportedEncoding   = fonts.ErrUnsupportedEncoding
	ErrInvalidStyleReference = fonts.ErrInvalidStyleReference
)

var (
	// ErrLayoutOverflow 表示某个元素在全新的一页上也无法取得进展。
	ErrLayoutOverflow = errors.New("内容无法放入页面")
	// ErrTextTooWide 表示 DrawText 的文本宽度超过了区域宽度。
	ErrTextTooWide = errors.New("文本宽度超出区域")
)
