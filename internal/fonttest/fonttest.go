// Package fonttest provides a deterministic font parser for tests.
//
// Every glyph has the same advance unless overridden, so expected widths can
// be computed by hand. The font "bytes" are a list of key=value settings:
//
//	upem=1000 adv=500 asc=800 desc=200 gap=0 lsb=0 missing=€ kern=AV:-80
package fonttest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/folio/fonts"
)

// Default describes a 1000 upem font with 500 unit advances.
const Default = "upem=1000 adv=500 asc=800 desc=200 gap=0"

// Parser implements fonts.Parser for the settings format above.
type Parser struct{}

var _ fonts.Parser = Parser{}

// Face is the parsed fake font.
type Face struct {
	upem           uint16
	adv            uint16
	asc, desc, gap int16
	lsb            int16
	missing        map[rune]bool
	advances       map[rune]uint16
	kerns          map[[2]uint16]int16
}

// Parse implements fonts.Parser.
func (Parser) Parse(data []byte) (fonts.Face, error) {
	f := &Face{
		upem:     1000,
		adv:      500,
		asc:      800,
		desc:     -200,
		missing:  map[rune]bool{},
		advances: map[rune]uint16{},
		kerns:    map[[2]uint16]int16{},
	}
	for _, field := range strings.Fields(string(data)) {
		key, val, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("%w: bad setting %q", fonts.ErrFontLoad, field)
		}
		switch key {
		case "missing":
			for _, r := range val {
				f.missing[r] = true
			}
			continue
		case "kern":
			pair, amount, _ := strings.Cut(val, ":")
			rs := []rune(pair)
			n, err := strconv.Atoi(amount)
			if len(rs) != 2 || err != nil {
				return nil, fmt.Errorf("%w: bad kern %q", fonts.ErrFontLoad, val)
			}
			f.kerns[[2]uint16{uint16(rs[0]), uint16(rs[1])}] = int16(n)
			continue
		case "width":
			r, w, _ := strings.Cut(val, ":")
			n, err := strconv.Atoi(w)
			if err != nil || len([]rune(r)) != 1 {
				return nil, fmt.Errorf("%w: bad width %q", fonts.ErrFontLoad, val)
			}
			f.advances[[]rune(r)[0]] = uint16(n)
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return nil, fmt.Errorf("%w: bad number in %q", fonts.ErrFontLoad, field)
		}
		switch key {
		case "upem":
			f.upem = uint16(n)
		case "adv":
			f.adv = uint16(n)
		case "asc":
			f.asc = int16(n)
		case "desc":
			f.desc = -int16(n)
		case "gap":
			f.gap = int16(n)
		case "lsb":
			f.lsb = int16(n)
		default:
			return nil, fmt.Errorf("%w: unknown setting %q", fonts.ErrFontLoad, key)
		}
	}
	return f, nil
}

func (f *Face) UnitsPerEm() uint16 { return f.upem }

func (f *Face) VerticalMetrics() (int16, int16, int16) { return f.asc, f.desc, f.gap }

func (f *Face) GlyphIndex(r rune) uint16 {
	if f.missing[r] || r <= 0 || r > 0xffff {
		return 0
	}
	return uint16(r)
}

func (f *Face) GlyphAdvance(glyph uint16) uint16 {
	if adv, ok := f.advances[rune(glyph)]; ok {
		return adv
	}
	return f.adv
}

func (f *Face) LeftSideBearing(uint16) int16 { return f.lsb }

func (f *Face) Kerning(left, right uint16) int16 { return f.kerns[[2]uint16{left, right}] }

// Family returns a family whose four variants all use the given settings.
func Family(name, settings string) fonts.Family {
	src := fonts.Source{Bytes: []byte(settings)}
	return fonts.Family{Name: name, Regular: src, Bold: src, Italic: src, BoldItalic: src}
}

// Cache returns a cache using Parser with the given families registered.
func Cache(families ...fonts.Family) *fonts.Cache {
	c := fonts.NewCache(Parser{})
	for _, f := range families {
		if err := c.Register(f); err != nil {
			panic(err)
		}
	}
	return c
}
