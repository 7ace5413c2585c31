package layout

import "math"

// Frame 在子元素四周画边框。跨页时，续排部分不画上边框，未结束部分不画下边框。
type Frame struct {
	Element Element
	Line    LineStyle
	Padding float64 // 边框与内容之间的距离（mm）

	started bool
}

// NewFrame 创建使用默认线型的边框。
func NewFrame(e Element) *Frame {
	return &Frame{Element: e, Line: DefaultLineStyle(), Padding: 1}
}

func (f *Frame) Reset() {
	f.started = false
	reset(f.Element)
}

func (f *Frame) Render(ctx *Context, area *Area, style Style) (RenderResult, error) {
	first := !f.started
	f.started = true

	inset := f.Line.Thickness + f.Padding
	top := 0.0
	if first {
		top = inset
	}
	inner := area.Clone()
	inner.AddMargins(Margins{Top: top, Right: inset, Bottom: inset, Left: inset})
	r, err := f.Element.Render(ctx, inner, style)
	if err != nil {
		return RenderResult{}, err
	}
	if r.HasMore && r.Size.Height <= epsilon {
		// 一点内容都没放下，整块移到下一页
		f.started = !first
		return RenderResult{HasMore: true}, nil
	}

	height := top + r.Size.Height
	if !r.HasMore {
		height += inset
	}
	height = math.Min(height, area.Height())
	width := area.Width()

	half := f.Line.Thickness / 2
	left, right := half, width-half
	upper, lower := 0.0, height
	if first {
		upper = half
	}
	if !r.HasMore {
		lower = height - half
	}
	area.DrawLine([]Position{{X: left, Y: upper}, {X: left, Y: lower}}, f.Line)
	area.DrawLine([]Position{{X: right, Y: upper}, {X: right, Y: lower}}, f.Line)
	if first {
		area.DrawLine([]Position{{X: 0, Y: half}, {X: width, Y: half}}, f.Line)
	}
	if !r.HasMore {
		area.DrawLine([]Position{{X: 0, Y: lower}, {X: width, Y: lower}}, f.Line)
	}
	return RenderResult{Size: Size{Width: width, Height: height}, HasMore: r.HasMore}, nil
}

// ShapeKind 是 Shape 的几何类型。
type ShapeKind int

const (
	ShapeRect ShapeKind = iota
	ShapeEllipse
	ShapeRule // 水平分隔线
)

// ParseShapeKind 解析 rect/ellipse/rule。
func ParseShapeKind(s string) (ShapeKind, bool) {
	switch s {
	case "rect", "rectangle":
		return ShapeRect, true
	case "ellipse", "circle":
		return ShapeEllipse, true
	case "rule", "hr", "line":
		return ShapeRule, true
	}
	return ShapeRect, false
}

const ellipseSegments = 64

// Shape 在分配的区域内画一个几何图形，宽度为 0 时占满区域宽度。
type Shape struct {
	Kind      ShapeKind
	Width     float64
	Height    float64
	Line      LineStyle
	Fill      *Color
	Alignment Alignment
}

func (s *Shape) size(available float64) Size {
	w := s.Width
	if w <= 0 || w > available {
		w = available
	}
	h := s.Height
	if s.Kind == ShapeRule && h <= 0 {
		h = s.Line.Thickness
	}
	return Size{Width: w, Height: h}
}

func (s *Shape) Render(_ *Context, area *Area, _ Style) (RenderResult, error) {
	size := s.size(area.Width())
	if size.Height > area.Height()+epsilon {
		return RenderResult{HasMore: true}, nil
	}
	x := s.Alignment.offset(size.Width, area.Width())
	switch s.Kind {
	case ShapeRule:
		y := size.Height / 2
		area.DrawLine([]Position{{X: x, Y: y}, {X: x + size.Width, Y: y}}, s.Line)
	case ShapeEllipse:
		rx, ry := size.Width/2, size.Height/2
		points := make([]Position, ellipseSegments)
		for i := range points {
			a := 2 * math.Pi * float64(i) / ellipseSegments
			points[i] = Position{X: x + rx + rx*math.Cos(a), Y: ry + ry*math.Sin(a)}
		}
		area.DrawPolygon(points, s.Line, s.Fill)
	default:
		area.DrawPolygon([]Position{
			{X: x, Y: 0},
			{X: x + size.Width, Y: 0},
			{X: x + size.Width, Y: size.Height},
			{X: x, Y: size.Height},
		}, s.Line, s.Fill)
	}
	return RenderResult{Size: size}, nil
}
