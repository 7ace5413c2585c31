package layout

// LinearLayout 把子元素自上而下依次排列。
type LinearLayout struct {
	elements []Element
	spacing  float64 // 子元素之间的间距（mm）
	index    int
}

// NewLinearLayout 创建纵向布局。
func NewLinearLayout(elements ...Element) *LinearLayout {
	return &LinearLayout{elements: elements}
}

// Push 追加子元素。
func (l *LinearLayout) Push(e Element) *LinearLayout {
	l.elements = append(l.elements, e)
	return l
}

// WithSpacing 设置子元素之间的间距（mm）。
func (l *LinearLayout) WithSpacing(mm float64) *LinearLayout {
	l.spacing = mm
	return l
}

func (l *LinearLayout) Len() int { return len(l.elements) }

func (l *LinearLayout) Reset() {
	l.index = 0
	reset(l.elements...)
}

// Render 每个子元素获得完整宽度与剩余高度；某个子元素返回 HasMore
// 或区域耗尽时，布局本身返回 HasMore，下次从同一个子元素继续。
func (l *LinearLayout) Render(ctx *Context, area *Area, style Style) (RenderResult, error) {
	var result RenderResult
	for l.index < len(l.elements) && area.Height() > epsilon {
		r, err := l.elements[l.index].Render(ctx, area.Clone(), style)
		if err != nil {
			return RenderResult{}, err
		}
		result.Size = result.Size.Stack(r.Size)
		area.AddOffset(Position{Y: r.Size.Height})
		if r.HasMore {
			result.HasMore = true
			return result, nil
		}
		l.index++
		ctx.Advance()
		if l.spacing > 0 && l.index < len(l.elements) {
			gap := l.spacing
			if gap > area.Height() {
				gap = area.Height()
			}
			result.Size.Height += gap
			area.AddOffset(Position{Y: gap})
		}
	}
	result.HasMore = l.index < len(l.elements)
	return result, nil
}
