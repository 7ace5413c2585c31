package layout

import (
	"math"
	"strconv"
)

const (
	// DefaultBullet 是无序列表的默认项目符号。
	DefaultBullet = "–"
	listMarkerGap = 2.0 // 标记与内容之间的间距（mm）
)

type listItem struct {
	content *LinearLayout
	marker  string
	started bool
}

// List 是有序或无序列表。每一项在标记列右侧以 LinearLayout 排版，
// 标记列宽度取最宽的标记，标记在列内右对齐；跨页时标记只画在该项的第一段上。
type List struct {
	items   []*listItem
	ordered bool
	start   int
	bullet  string
	index   int
}

// NewUnorderedList 创建无序列表，bullet 为空时使用 DefaultBullet。
func NewUnorderedList(bullet string) *List {
	if bullet == "" {
		bullet = DefaultBullet
	}
	return &List{bullet: bullet}
}

// NewOrderedList 创建从 1 开始编号的有序列表。
func NewOrderedList() *List { return &List{ordered: true, start: 1} }

// WithStart 设置有序列表的起始编号。
func (l *List) WithStart(n int) *List {
	l.start = n
	l.renumber()
	return l
}

func (l *List) renumber() {
	for i, it := range l.items {
		it.marker = l.markerFor(i)
	}
}

func (l *List) markerFor(i int) string {
	if l.ordered {
		return strconv.Itoa(l.start+i) + "."
	}
	return l.bullet
}

// Push 追加一项，elements 依次纵向排列。
func (l *List) Push(elements ...Element) *List {
	l.items = append(l.items, &listItem{content: NewLinearLayout(elements...), marker: l.markerFor(len(l.items))})
	return l
}

func (l *List) Len() int { return len(l.items) }

// Markers 返回各项的标记文本。
func (l *List) Markers() []string {
	out := make([]string, len(l.items))
	for i, it := range l.items {
		out[i] = it.marker
	}
	return out
}

func (l *List) Reset() {
	l.index = 0
	for _, it := range l.items {
		it.started = false
		it.content.Reset()
	}
}

func (l *List) markerColumn(ctx *Context, style Style) (float64, error) {
	widest := 0.0
	for _, it := range l.items {
		w, err := StyledString{Text: it.marker, Style: style}.Width(ctx.Fonts)
		if err != nil {
			return 0, err
		}
		widest = math.Max(widest, w)
	}
	return widest + listMarkerGap, nil
}

func (l *List) Render(ctx *Context, area *Area, style Style) (RenderResult, error) {
	column, err := l.markerColumn(ctx, style)
	if err != nil {
		return RenderResult{}, err
	}
	var result RenderResult
	for l.index < len(l.items) && area.Height() > epsilon {
		it := l.items[l.index]
		content := area.Clone()
		content.AddOffset(Position{X: column})
		r, err := it.content.Render(ctx, content, style)
		if err != nil {
			return RenderResult{}, err
		}
		if !it.started && (r.Size.Height > epsilon || !r.HasMore) {
			marker := StyledString{Text: it.marker, Style: style}
			w, err := marker.Width(ctx.Fonts)
			if err != nil {
				return RenderResult{}, err
			}
			if err := area.DrawText(ctx, Position{X: column - listMarkerGap - w}, marker); err != nil {
				return RenderResult{}, err
			}
			it.started = true
		}
		result.Size = result.Size.Stack(Size{Width: column + r.Size.Width, Height: r.Size.Height})
		area.AddOffset(Position{Y: r.Size.Height})
		if r.HasMore {
			result.HasMore = true
			return result, nil
		}
		l.index++
		ctx.Advance()
	}
	result.HasMore = l.index < len(l.items)
	return result, nil
}
