package fonts

import (
	"fmt"

	"github.com/tdewolff/font"
)

// Parser 把原始字体字节解析为可查询度量的 Face。
type Parser interface {
	Parse(data []byte) (Face, error)
}

// Face 提供字体单位下的字形与度量查询，所有方法都不能修改内部状态。
type Face interface {
	UnitsPerEm() uint16
	// VerticalMetrics 返回 hhea 表中的 ascender/descender/lineGap，descender 通常为负数。
	VerticalMetrics() (ascent, descent, lineGap int16)
	// GlyphIndex 返回字符对应的字形编号，0 表示 .notdef。
	GlyphIndex(r rune) uint16
	GlyphAdvance(glyph uint16) uint16
	LeftSideBearing(glyph uint16) int16
	Kerning(left, right uint16) int16
}

// SFNTParser 使用 github.com/tdewolff/font 解析 TrueType/OpenType 字体。
type SFNTParser struct{}

var _ Parser = SFNTParser{}

// Parse 实现 Parser 接口。
func (SFNTParser) Parse(data []byte) (Face, error) {
	sfnt, err := font.ParseSFNT(data, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontLoad, err)
	}
	if sfnt.Head == nil || sfnt.Hhea == nil || sfnt.Hmtx == nil {
		return nil, fmt.Errorf("%w: 字体缺少 head/hhea/hmtx 表", ErrFontLoad)
	}
	if sfnt.Head.UnitsPerEm == 0 {
		return nil, fmt.Errorf("%w: unitsPerEm 为 0", ErrFontLoad)
	}
	return sfntFace{sfnt}, nil
}

type sfntFace struct {
	sfnt *font.SFNT
}

func (f sfntFace) UnitsPerEm() uint16 { return f.sfnt.Head.UnitsPerEm }

func (f sfntFace) VerticalMetrics() (int16, int16, int16) {
	return f.sfnt.Hhea.Ascender, f.sfnt.Hhea.Descender, f.sfnt.Hhea.LineGap
}

func (f sfntFace) GlyphIndex(r rune) uint16 { return f.sfnt.GlyphIndex(r) }

func (f sfntFace) GlyphAdvance(glyph uint16) uint16 { return f.sfnt.GlyphAdvance(glyph) }

func (f sfntFace) LeftSideBearing(glyph uint16) int16 { return f.sfnt.Hmtx.LeftSideBearing(glyph) }

func (f sfntFace) Kerning(left, right uint16) int16 { return f.sfnt.Kerning(left, right) }
