package layout

import (
	"fmt"

	"github.com/ByLCY/folio/fonts"
)

const (
	DefaultFontSize    = 12.0 // pt
	DefaultLineSpacing = 1.0
)

// Style 描述文本样式。零值字段表示“继承”，因此 Style 可以逐层叠加。
// Style 是可比较的值类型。
type Style struct {
	Family        string  `json:"family,omitempty"`
	Size          float64 `json:"size,omitempty"` // pt
	Bold          bool    `json:"bold,omitempty"`
	Italic        bool    `json:"italic,omitempty"`
	Underline     bool    `json:"underline,omitempty"`
	Strikethrough bool    `json:"strikethrough,omitempty"`
	Color         Color   `json:"color"`
	HasColor      bool    `json:"hasColor,omitempty"`
	LineSpacing   float64 `json:"lineSpacing,omitempty"`
}

// Merge 把 o 叠加到 s 上：o 中已设置的字段覆盖 s，粗体、斜体与装饰取并集。
func (s Style) Merge(o Style) Style {
	if o.Family != "" {
		s.Family = o.Family
	}
	if o.Size > 0 {
		s.Size = o.Size
	}
	if o.HasColor {
		s.Color = o.Color
		s.HasColor = true
	}
	if o.LineSpacing > 0 {
		s.LineSpacing = o.LineSpacing
	}
	s.Bold = s.Bold || o.Bold
	s.Italic = s.Italic || o.Italic
	s.Underline = s.Underline || o.Underline
	s.Strikethrough = s.Strikethrough || o.Strikethrough
	return s
}

// FontSize 返回字号（pt），未设置时为 DefaultFontSize。
func (s Style) FontSize() float64 {
	if s.Size > 0 {
		return s.Size
	}
	return DefaultFontSize
}

// Spacing 返回行距系数，未设置时为 1。
func (s Style) Spacing() float64 {
	if s.LineSpacing > 0 {
		return s.LineSpacing
	}
	return DefaultLineSpacing
}

// TextColor 返回文本颜色，未设置时为黑色。
func (s Style) TextColor() Color {
	if s.HasColor {
		return s.Color
	}
	return Black
}

func (s Style) Variant() fonts.Variant { return fonts.VariantOf(s.Bold, s.Italic) }

// WithColor 返回设置了颜色的副本。
func (s Style) WithColor(c Color) Style {
	s.Color = c
	s.HasColor = true
	return s
}

// Metrics 解析样式对应的字体度量。
func (s Style) Metrics(cache *fonts.Cache) (*fonts.Metrics, error) {
	if s.Family == "" {
		return nil, fmt.Errorf("%w: 样式没有指定字体族", ErrInvalidStyleReference)
	}
	return cache.MetricsFor(s.Family, s.Variant())
}

// LineHeight 返回该样式单行文本的高度（mm），包含行距系数。
func (s Style) LineHeight(cache *fonts.Cache) (float64, error) {
	m, err := s.Metrics(cache)
	if err != nil {
		return 0, err
	}
	return m.LineHeight(s.FontSize()) * s.Spacing(), nil
}

// StyledString 是带样式的文本片段。
type StyledString struct {
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// Styled 创建带样式的文本片段。
func Styled(text string, style Style) StyledString {
	return StyledString{Text: text, Style: style}
}

// Width 返回片段宽度（mm），包含片段内部的字偶距。
func (s StyledString) Width(cache *fonts.Cache) (float64, error) {
	m, err := s.Style.Metrics(cache)
	if err != nil {
		return 0, err
	}
	return m.TextWidth(s.Text, s.Style.FontSize())
}
