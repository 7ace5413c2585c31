package fonts

import (
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// PtToMm 与布局层保持一致：1pt = 0.352777mm。
const PtToMm = 0.352777

// Metrics 是某个字体族变体解析后的度量信息，创建后只读，可被多个元素共享。
// 方法中带 size 参数的返回毫米，其余返回字体单位。
type Metrics struct {
	Family  string
	Variant Variant
	Builtin bool

	data       []byte
	face       Face
	unitsPerEm float64
	ascent     float64
	descent    float64 // 正数
	lineGap    float64
}

func newMetrics(family string, v Variant, builtin bool, data []byte, face Face) *Metrics {
	a, d, g := face.VerticalMetrics()
	return &Metrics{
		Family:     family,
		Variant:    v,
		Builtin:    builtin,
		data:       data,
		face:       face,
		unitsPerEm: float64(face.UnitsPerEm()),
		ascent:     float64(a),
		descent:    -float64(d),
		lineGap:    float64(g),
	}
}

// Data 返回原始字体字节，供写入器嵌入。
func (m *Metrics) Data() []byte { return m.data }

// UnitsPerEm 返回字体的 em 单位数。
func (m *Metrics) UnitsPerEm() float64 { return m.unitsPerEm }

// Scale 返回 size 磅字号下每个字体单位对应的毫米数。
func (m *Metrics) Scale(size float64) float64 {
	return size * PtToMm / m.unitsPerEm
}

func (m *Metrics) Ascent(size float64) float64  { return m.ascent * m.Scale(size) }
func (m *Metrics) Descent(size float64) float64 { return m.descent * m.Scale(size) }
func (m *Metrics) LineGap(size float64) float64 { return m.lineGap * m.Scale(size) }

// LineHeight = ascent + descent + lineGap（毫米）。
func (m *Metrics) LineHeight(size float64) float64 {
	return (m.ascent + m.descent + m.lineGap) * m.Scale(size)
}

// AdvanceWidth 返回字形的前进宽度（字体单位）。
func (m *Metrics) AdvanceWidth(glyph uint16) float64 {
	return float64(m.face.GlyphAdvance(glyph))
}

// LeftSideBearing 返回字形的左侧支承（字体单位）。
func (m *Metrics) LeftSideBearing(glyph uint16) float64 {
	return float64(m.face.LeftSideBearing(glyph))
}

// Kerning 返回字偶距调整（字体单位，负数表示收紧）。
func (m *Metrics) Kerning(left, right uint16) float64 {
	return float64(m.face.Kerning(left, right))
}

// Glyphs 把文本映射为字形编号。文本先做 NFC 规范化；
// 任何没有字形的字符都会返回 ErrUnsupportedEncoding。
func (m *Metrics) Glyphs(s string) ([]uint16, error) {
	s = norm.NFC.String(s)
	if m.Builtin {
		if _, err := charmap.Windows1252.NewEncoder().String(s); err != nil {
			return nil, fmt.Errorf("%w: 内置字体 %s 只支持 Windows-1252 字符: %q", ErrUnsupportedEncoding, m.Family, s)
		}
	}
	glyphs := make([]uint16, 0, len(s))
	for _, r := range s {
		gid := m.face.GlyphIndex(r)
		if gid == 0 {
			return nil, fmt.Errorf("%w: 字体 %s(%s) 缺少字符 %q", ErrUnsupportedEncoding, m.Family, m.Variant, r)
		}
		glyphs = append(glyphs, gid)
	}
	return glyphs, nil
}

// Advances 返回每个字形的前进距离（毫米），已包含与下一个字形之间的字偶距。
func (m *Metrics) Advances(glyphs []uint16, size float64) []float64 {
	scale := m.Scale(size)
	out := make([]float64, len(glyphs))
	for i, g := range glyphs {
		adv := m.AdvanceWidth(g)
		if i+1 < len(glyphs) {
			adv += m.Kerning(g, glyphs[i+1])
		}
		out[i] = adv * scale
	}
	return out
}

// TextWidth 计算一段同样式文本的宽度（毫米）：前进宽度之和加字偶距。
func (m *Metrics) TextWidth(s string, size float64) (float64, error) {
	glyphs, err := m.Glyphs(s)
	if err != nil {
		return 0, err
	}
	w := 0.0
	for _, adv := range m.Advances(glyphs, size) {
		w += adv
	}
	return w, nil
}

// FirstBearing 返回文本首字形的左侧支承（毫米），用于行首对齐修正。
func (m *Metrics) FirstBearing(s string, size float64) (float64, error) {
	for _, r := range norm.NFC.String(s) {
		gid := m.face.GlyphIndex(r)
		if gid == 0 {
			return 0, fmt.Errorf("%w: 字体 %s(%s) 缺少字符 %q", ErrUnsupportedEncoding, m.Family, m.Variant, r)
		}
		return m.LeftSideBearing(gid) * m.Scale(size), nil
	}
	return 0, nil
}
