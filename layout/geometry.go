package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Position 是相对于某个区域左上角的坐标（mm），y 轴向下。
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Position) Add(o Position) Position { return Position{p.X + o.X, p.Y + o.Y} }

// Size 以毫米为单位。
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Stack 返回把 o 放在 s 下方后的整体尺寸。
func (s Size) Stack(o Size) Size {
	w := s.Width
	if o.Width > w {
		w = o.Width
	}
	return Size{Width: w, Height: s.Height + o.Height}
}

// Margins 以毫米为单位。
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// UniformMargins 返回四边相同的边距。
func UniformMargins(v float64) Margins { return Margins{v, v, v, v} }

// SymmetricMargins 返回上下为 vertical、左右为 horizontal 的边距。
func SymmetricMargins(vertical, horizontal float64) Margins {
	return Margins{vertical, horizontal, vertical, horizontal}
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

var (
	Black = Color{}
	White = Color{255, 255, 255}
)

// ParseColor 解析 #RGB 与 #RRGGBB 形式的颜色。
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("无效的颜色 %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("无效的颜色 %q: %w", s, err)
	}
	return Color{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}, nil
}

func (c Color) String() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// LineStyle 描述线条：粗细（mm）、颜色与虚线模式（mm，空表示实线）。
type LineStyle struct {
	Thickness float64   `json:"thickness"`
	Color     Color     `json:"color"`
	Dashes    []float64 `json:"dashes,omitempty"`
}

// DefaultLineStyle 是 0.1mm 的黑色实线。
func DefaultLineStyle() LineStyle { return LineStyle{Thickness: 0.1} }

// Alignment 是行内容的水平分布方式。
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
	AlignJustify
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	default:
		return "left"
	}
}

// ParseAlignment 解析 left/center/right/justify，未知值返回 false。
func ParseAlignment(s string) (Alignment, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left", "start":
		return AlignLeft, true
	case "center", "middle":
		return AlignCenter, true
	case "right", "end":
		return AlignRight, true
	case "justify":
		return AlignJustify, true
	}
	return AlignLeft, false
}

// offset 返回宽度为 width 的内容在 available 中按对齐方式应有的左侧偏移。
func (a Alignment) offset(width, available float64) float64 {
	if width >= available {
		return 0
	}
	switch a {
	case AlignCenter:
		return (available - width) / 2
	case AlignRight:
		return available - width
	default:
		return 0
	}
}
