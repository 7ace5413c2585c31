package layout

import (
	"golang.org/x/text/language"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/hyphen"
)

// Context 是一次渲染过程共享的只读依赖。
type Context struct {
	Fonts      *fonts.Cache
	Hyphenator hyphen.Hyphenator // 为空时不断词
	Locale     language.Tag

	progress int
}

// Advance 记录一次不占用高度的进展（例如游标前移），供分页循环判断是否陷入死循环。
func (c *Context) Advance() { c.progress++ }

// NewContext 创建不断词、语言为英语的渲染上下文。
func NewContext(cache *fonts.Cache) *Context {
	return &Context{Fonts: cache, Hyphenator: hyphen.None{}, Locale: language.English}
}

// RenderResult 是一次 Render 调用的结果：占用的尺寸，以及是否还有剩余内容。
type RenderResult struct {
	Size    Size
	HasMore bool
}

// Element 是所有可排版内容的统一接口。
//
// Render 把内容画进 area，style 是从父元素继承的样式。返回 HasMore=true 时，
// 下一次在新区域上调用 Render 必须从中断处继续，既不重复也不遗漏。
type Element interface {
	Render(ctx *Context, area *Area, style Style) (RenderResult, error)
}

// Resetter 由带有续排状态的元素实现，Reset 后元素可以从头重新渲染。
type Resetter interface {
	Reset()
}

func reset(elements ...Element) {
	for _, e := range elements {
		if r, ok := e.(Resetter); ok {
			r.Reset()
		}
	}
}
