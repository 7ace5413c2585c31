package layout

import "math"

// Break 插入若干行高度的空白，页面剩余空间不足时只占用剩余部分。
type Break struct {
	Lines float64
}

// NewBreak 创建 lines 行高的空白。
func NewBreak(lines float64) *Break { return &Break{Lines: lines} }

func (b *Break) Render(ctx *Context, area *Area, style Style) (RenderResult, error) {
	if b.Lines <= 0 {
		return RenderResult{}, nil
	}
	h, err := style.LineHeight(ctx.Fonts)
	if err != nil {
		return RenderResult{}, err
	}
	return RenderResult{Size: Size{Height: math.Min(h*b.Lines, area.Height())}}, nil
}

// PageBreak 强制换页：第一次渲染返回 HasMore，第二次（在新页面上）结束。
type PageBreak struct {
	cont bool
}

func NewPageBreak() *PageBreak { return &PageBreak{} }

func (p *PageBreak) Render(ctx *Context, _ *Area, _ Style) (RenderResult, error) {
	ctx.Advance()
	if p.cont {
		p.cont = false
		return RenderResult{}, nil
	}
	p.cont = true
	return RenderResult{HasMore: true}, nil
}

func (p *PageBreak) Reset() { p.cont = false }
