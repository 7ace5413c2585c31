package layout

import (
	"fmt"
	"math"

	"github.com/ByLCY/folio/images"
	"github.com/ByLCY/folio/logger"
)

const epsilon = 1e-9

// Area 是页面某个图层上的矩形绘制区域，坐标原点在区域左上角，y 轴向下。
// Area 只是视图，不拥有内容；所有绘制都以指令的形式追加到所属页面。
//
// 拆分（Split*）会消耗原区域：之后再向原区域绘制或拆分会 panic，
// 需要在同一区域上连续排版时使用 Clone。
type Area struct {
	page     *Page
	layer    int
	origin   Position // 页面坐标
	size     Size
	consumed bool
}

func newArea(page *Page, layer int, origin Position, size Size) *Area {
	for len(page.Layers) <= layer {
		page.Layers = append(page.Layers, Layer{})
	}
	return &Area{page: page, layer: layer, origin: origin, size: size}
}

func (a *Area) check() {
	if a.consumed {
		panic("layout: 区域已被拆分，不能再使用")
	}
}

func (a *Area) Size() Size       { return a.size }
func (a *Area) Width() float64   { return a.size.Width }
func (a *Area) Height() float64  { return a.size.Height }
func (a *Area) Origin() Position { return a.origin }
func (a *Area) PageNumber() int  { return a.page.Number }
func (a *Area) LayerIndex() int  { return a.layer }

// Clone 返回覆盖同一范围的独立视图。
func (a *Area) Clone() *Area {
	a.check()
	c := *a
	return &c
}

// AddOffset 把原点移动 p，并相应缩小区域。
func (a *Area) AddOffset(p Position) {
	a.origin = a.origin.Add(p)
	a.size.Width = math.Max(a.size.Width-p.X, 0)
	a.size.Height = math.Max(a.size.Height-p.Y, 0)
}

// AddMargins 按边距缩小区域。
func (a *Area) AddMargins(m Margins) {
	a.origin.X += m.Left
	a.origin.Y += m.Top
	a.size.Width = math.Max(a.size.Width-m.Left-m.Right, 0)
	a.size.Height = math.Max(a.size.Height-m.Top-m.Bottom, 0)
}

func (a *Area) SetWidth(w float64)  { a.size.Width = math.Max(w, 0) }
func (a *Area) SetHeight(h float64) { a.size.Height = math.Max(h, 0) }

// SplitHorizontally 按权重把区域分成并排的若干列，第 i 列宽度为 width*weights[i]/sum(weights)。
// 权重之和不为正数时平均分配。
func (a *Area) SplitHorizontally(weights []float64) []*Area {
	total := 0.0
	for _, w := range weights {
		total += math.Max(w, 0)
	}
	widths := make([]float64, len(weights))
	for i, w := range weights {
		if total > 0 {
			widths[i] = a.size.Width * math.Max(w, 0) / total
		} else {
			widths[i] = a.size.Width / float64(len(weights))
		}
	}
	return a.SplitColumns(widths)
}

// SplitColumns 按给定宽度（mm）从左到右切分区域，超出部分被截断。
func (a *Area) SplitColumns(widths []float64) []*Area {
	a.check()
	a.consumed = true
	out := make([]*Area, 0, len(widths))
	x := 0.0
	for _, w := range widths {
		w = math.Max(math.Min(w, a.size.Width-x), 0)
		col := &Area{page: a.page, layer: a.layer, origin: a.origin.Add(Position{X: x}), size: Size{w, a.size.Height}}
		out = append(out, col)
		x += w
	}
	return out
}

// SplitVertically 在距顶部 at 处把区域切成上下两部分。
func (a *Area) SplitVertically(at float64) (top, bottom *Area) {
	a.check()
	a.consumed = true
	at = math.Max(math.Min(at, a.size.Height), 0)
	top = &Area{page: a.page, layer: a.layer, origin: a.origin, size: Size{a.size.Width, at}}
	bottom = &Area{page: a.page, layer: a.layer, origin: a.origin.Add(Position{Y: at}), size: Size{a.size.Width, a.size.Height - at}}
	return top, bottom
}

// NextLayer 返回下一图层上的同一区域，图层不存在时自动创建。
func (a *Area) NextLayer() *Area {
	a.check()
	return newArea(a.page, a.layer+1, a.origin, a.size)
}

func (a *Area) emit(op Op) {
	a.check()
	l := &a.page.Layers[a.layer]
	l.Ops = append(l.Ops, op)
}

func (a *Area) absolute(points []Position) []Position {
	out := make([]Position, len(points))
	for i, p := range points {
		out[i] = a.origin.Add(p)
	}
	return out
}

// DrawLine 绘制折线，点坐标相对于区域左上角。
func (a *Area) DrawLine(points []Position, style LineStyle) {
	if len(points) < 2 {
		return
	}
	a.emit(Op{Line: &LineOp{Points: a.absolute(points), Style: style}})
}

// DrawPolygon 绘制闭合多边形，fill 为空时只描边。
func (a *Area) DrawPolygon(points []Position, style LineStyle, fill *Color) {
	if len(points) < 3 {
		return
	}
	a.emit(Op{Line: &LineOp{Points: a.absolute(points), Style: style, Closed: true, Fill: fill}})
}

// DrawImage 放置图片。pos 是旋转后外接矩形的左上角（相对区域），size 为未旋转尺寸。
func (a *Area) DrawImage(img *images.Image, source string, pos Position, size Size, rotation float64) {
	a.emit(Op{Image: &ImageOp{Image: img, Source: source, Origin: a.origin.Add(pos), Size: size, Rotation: rotation}})
}

// Warn 在当前页记录一条警告，并写入 WarningLogger。
func (a *Area) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.page.Warnings = append(a.page.Warnings, msg)
	logger.WarningLogger.Printf("第 %d 页: %s", a.page.Number, msg)
}

// DrawText 在 pos（行框左上角）绘制一段不换行的文本。
// 文本宽度超过区域剩余宽度时返回 ErrTextTooWide，调用方需要自行折行。
func (a *Area) DrawText(ctx *Context, pos Position, run StyledString) error {
	m, err := run.Style.Metrics(ctx.Fonts)
	if err != nil {
		return err
	}
	size := run.Style.FontSize()
	w, err := m.TextWidth(run.Text, size)
	if err != nil {
		return err
	}
	lsb, err := m.FirstBearing(run.Text, size)
	if err != nil {
		return err
	}
	if w-lsb > a.size.Width-pos.X+epsilon {
		return fmt.Errorf("%w: %q 宽 %.2fmm，可用 %.2fmm", ErrTextTooWide, run.Text, w-lsb, a.size.Width-pos.X)
	}
	area := a.Clone()
	area.AddOffset(pos)
	section := &TextSection{area: area, ctx: ctx, ascent: m.Ascent(size), first: true}
	return section.Print(run)
}

// TextSection 在 pos 处开始一行文本，ascent 决定基线位置，height 为行高。
// 行高超出区域剩余高度时返回 false。
func (a *Area) TextSection(ctx *Context, pos Position, ascent, height float64) (*TextSection, bool) {
	if pos.Y+height > a.size.Height+epsilon {
		return nil, false
	}
	area := a.Clone()
	area.AddOffset(pos)
	return &TextSection{area: area, ctx: ctx, ascent: ascent, first: true}, true
}

// TextSection 把一行中的多个样式片段依次输出到同一条基线上。
type TextSection struct {
	area   *Area
	ctx    *Context
	ascent float64
	x      float64
	first  bool
}

// Advance 返回当前光标相对行首的位置（mm）。
func (s *TextSection) Advance() float64 { return s.x }

// Skip 把光标右移 dx，用于两端对齐时加宽词间距。
func (s *TextSection) Skip(dx float64) { s.x += dx }

// Print 输出一个片段。行首第一个字形会减去左侧支承，使墨迹与区域左边缘对齐。
func (s *TextSection) Print(run StyledString) error {
	if run.Text == "" {
		return nil
	}
	m, err := run.Style.Metrics(s.ctx.Fonts)
	if err != nil {
		return err
	}
	size := run.Style.FontSize()
	w, err := m.TextWidth(run.Text, size)
	if err != nil {
		return err
	}
	if s.first {
		lsb, err := m.FirstBearing(run.Text, size)
		if err != nil {
			return err
		}
		s.x -= lsb
		s.first = false
	}
	baseline := s.area.origin.Add(Position{X: s.x, Y: s.ascent})
	color := run.Style.TextColor()
	s.area.emit(Op{Text: &TextOp{
		Origin: baseline,
		Text:   run.Text,
		Font:   FontName(m.Family, m.Variant),
		Size:   size,
		Color:  color,
		Width:  w,
	}})

	thickness := size * PtToMm / 18
	effect := func(dy float64) {
		y := baseline.Y + dy
		s.area.emit(Op{Line: &LineOp{
			Points: []Position{{X: baseline.X, Y: y}, {X: baseline.X + w, Y: y}},
			Style:  LineStyle{Thickness: thickness, Color: color},
		}})
	}
	if run.Style.Underline {
		effect(m.Descent(size) / 2)
	}
	if run.Style.Strikethrough {
		effect(-m.Ascent(size) * 0.3)
	}
	s.x += w
	return nil
}
