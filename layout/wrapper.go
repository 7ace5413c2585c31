package layout

import "math"

// Padded 在子元素四周留出边距。
type Padded struct {
	Element Element
	Margins Margins
}

func NewPadded(e Element, m Margins) *Padded { return &Padded{Element: e, Margins: m} }

func (p *Padded) Reset() { reset(p.Element) }

func (p *Padded) Render(ctx *Context, area *Area, style Style) (RenderResult, error) {
	available := area.Height()
	area.AddMargins(p.Margins)
	r, err := p.Element.Render(ctx, area, style)
	if err != nil {
		return RenderResult{}, err
	}
	if r.HasMore && r.Size.Height <= epsilon {
		// 子元素一点都没放下，边距不算进展
		return RenderResult{HasMore: true}, nil
	}
	height := r.Size.Height + p.Margins.Top
	if !r.HasMore {
		height += p.Margins.Bottom
	}
	r.Size.Width += p.Margins.Left + p.Margins.Right
	r.Size.Height = math.Min(height, available)
	return r, nil
}

// StyledElement 用额外的样式渲染子元素。
type StyledElement struct {
	Element Element
	Style   Style
}

func NewStyledElement(e Element, s Style) *StyledElement { return &StyledElement{Element: e, Style: s} }

func (s *StyledElement) Reset() { reset(s.Element) }

func (s *StyledElement) Render(ctx *Context, area *Area, style Style) (RenderResult, error) {
	return s.Element.Render(ctx, area, style.Merge(s.Style))
}
