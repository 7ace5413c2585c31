package layout

// PageDecorator 在每页排版正文之前调用，负责页边距与页眉页脚，返回正文区域。
type PageDecorator interface {
	DecoratePage(ctx *Context, area *Area, style Style) (*Area, error)
}

// SimplePageDecorator 应用页边距，在顶部渲染页眉，在底部固定高度的区域渲染页脚。
type SimplePageDecorator struct {
	Margins Margins

	// Header 返回第 page 页（从 1 开始）的页眉，返回 nil 表示该页没有页眉。
	Header    func(page int) Element
	HeaderGap float64 // 页眉与正文之间的距离（mm）

	Footer       func(page int) Element
	FooterHeight float64
}

// NewSimplePageDecorator 创建只有页边距的装饰器。
func NewSimplePageDecorator(m Margins) *SimplePageDecorator {
	return &SimplePageDecorator{Margins: m}
}

func (d *SimplePageDecorator) DecoratePage(ctx *Context, area *Area, style Style) (*Area, error) {
	page := area.PageNumber()
	area.AddMargins(d.Margins)

	if d.Footer != nil && d.FooterHeight > 0 {
		body, footer := area.SplitVertically(area.Height() - d.FooterHeight)
		if el := d.Footer(page); el != nil {
			r, err := el.Render(ctx, footer, style)
			if err != nil {
				return nil, err
			}
			if r.HasMore {
				body.Warn("页脚超出 %.2fmm 的高度", d.FooterHeight)
			}
		}
		area = body
	}

	if d.Header != nil {
		if el := d.Header(page); el != nil {
			r, err := el.Render(ctx, area.Clone(), style)
			if err != nil {
				return nil, err
			}
			if r.HasMore {
				area.Warn("页眉在第 %d 页放不下", page)
			}
			area.AddOffset(Position{Y: r.Size.Height + d.HeaderGap})
		}
	}
	return area, nil
}
