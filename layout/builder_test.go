package layout

import (
	"bytes"
	"errors"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/hyphen"
	"github.com/ByLCY/folio/images"
	"github.com/ByLCY/folio/internal/fonttest"
	"github.com/ByLCY/folio/logger"
)

const testFonts = `
  fonts {
    family Body {
      regular: "body.font"
      bold: "body.font"
      italic: "body.font"
      bold-italic: "body.font"
    }
  }
`

func stubImage(path string) (*images.Image, error) {
	if strings.Contains(path, "missing") {
		return nil, os.ErrNotExist
	}
	return images.FromImage(image.NewRGBA(image.Rect(0, 0, 300, 150))), nil
}

// buildMarkup 在临时目录中写入测试字体，再构建 markup。
func buildMarkup(t *testing.T, markup string, data any, files ...string) (*Document, error) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "body.font"), []byte(fonttest.Default), 0o644); err != nil {
		t.Fatalf("write font: %v", err)
	}
	for i := 0; i+1 < len(files); i += 2 {
		if err := os.WriteFile(filepath.Join(dir, files[i]), []byte(files[i+1]), 0o644); err != nil {
			t.Fatalf("write %s: %v", files[i], err)
		}
	}
	doc, err := dsl.ParseString(markup)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return Build(doc, data, BuildOptions{BaseDir: dir, Parser: fonttest.Parser{}, LoadImage: stubImage})
}

func renderMarkup(t *testing.T, markup string, data any) *Result {
	t.Helper()
	doc, err := buildMarkup(t, markup, data)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	r, err := doc.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return r
}

func findText(r *Result, text string) (TextOp, bool) {
	for _, p := range r.Pages {
		for _, op := range p.Texts() {
			if op.Text == text {
				return op, true
			}
		}
	}
	return TextOp{}, false
}

func TestBuildPageSetup(t *testing.T) {
	r := renderMarkup(t, `doc T {`+testFonts+`
  page A5 landscape margin 10mm 15mm {
    "hello"
  }
}`, nil)
	if len(r.Pages) != 1 {
		t.Fatalf("expected one page, got %d", len(r.Pages))
	}
	if diff := cmp.Diff(Size{Width: 210, Height: 148}, r.Pages[0].Size); diff != "" {
		t.Fatalf("unexpected paper size (-want +got):\n%s", diff)
	}
	op, ok := findText(r, "hello")
	if !ok {
		t.Fatalf("text missing")
	}
	assertApprox(t, "x", op.Origin.X, 15)
	assertApprox(t, "baseline", op.Origin.Y, 10+pt(9.6))
}

func TestBoxMargins(t *testing.T) {
	for _, c := range []struct {
		in   []float64
		want Margins
	}{
		{[]float64{5}, Margins{5, 5, 5, 5}},
		{[]float64{5, 10}, Margins{5, 10, 5, 10}},
		{[]float64{1, 2, 3}, Margins{1, 2, 3, 2}},
		{[]float64{1, 2, 3, 4}, Margins{1, 2, 3, 4}},
	} {
		if diff := cmp.Diff(c.want, boxMargins(c.in)); diff != "" {
			t.Fatalf("boxMargins(%v) (-want +got):\n%s", c.in, diff)
		}
	}
}

func TestBuildInterpolationAndLoops(t *testing.T) {
	data := map[string]any{
		"id": "A-1",
		"items": []any{
			map[string]any{"name": "bolt", "qty": 3.0},
			map[string]any{"name": "nut", "qty": 10.0},
		},
	}
	r := renderMarkup(t, `doc T {`+testFonts+`
  meta { title: "Invoice ${id}" }
  page A4 {
    header align right "Page ${page}"
    paragraph { "Invoice ${id}" }
    each item in items {
      paragraph { "${item.name}: ${item.qty}" }
    }
  }
}`, data)

	texts := resultTexts(r)
	for _, want := range []string{"Page 1", "Invoice A-1", "bolt: 3", "nut: 10"} {
		if !contains(texts, want) {
			t.Fatalf("missing %q in %v", want, texts)
		}
	}
	if r.Meta.Title != "Invoice A-1" || r.Meta.Creator != "folio" {
		t.Fatalf("unexpected meta: %+v", r.Meta)
	}
	header, _ := findText(r, "Page 1")
	assertApprox(t, "header x", header.Origin.X, 190-pt(36))
	body, _ := findText(r, "Invoice A-1")
	assertApprox(t, "body baseline", body.Origin.Y, 20+pt(12)+defaultHeaderGap+pt(9.6))
}

func TestBuildStylesAndSpans(t *testing.T) {
	r := renderMarkup(t, `doc T {`+testFonts+`
  styles {
    style Heading { size: 24pt; bold: true; color: #ff0000 }
    style Sub { extends: Heading; size: 18pt }
  }
  page A4 {
    paragraph style Heading "Title"
    paragraph style Sub "Subtitle"
    paragraph { "a " span italic size 6pt { "b" } }
  }
}`, nil)

	title, ok := findText(r, "Title")
	if !ok {
		t.Fatalf("title missing")
	}
	if title.Size != 24 || title.Font != FontName("Body", fonts.Bold) || title.Color != (Color{R: 255}) {
		t.Fatalf("unexpected title op: %+v", title)
	}
	sub, _ := findText(r, "Subtitle")
	if sub.Size != 18 || sub.Font != FontName("Body", fonts.Bold) || sub.Color != (Color{R: 255}) {
		t.Fatalf("extends should inherit the parent style: %+v", sub)
	}
	b, ok := findText(r, "b")
	if !ok {
		t.Fatalf("span missing")
	}
	if b.Size != 6 || b.Font != FontName("Body", fonts.Italic) {
		t.Fatalf("unexpected span op: %+v", b)
	}
}

func TestBuildElements(t *testing.T) {
	data := map[string]any{"rows": []any{
		map[string]any{"name": "bolt", "qty": 3.0},
		map[string]any{"name": "nut", "qty": 10.0},
	}}
	doc, err := buildMarkup(t, `doc T {`+testFonts+`
  page A4 {
    table weights [1 3] border 0.2mm border-color #00ff00 {
      row bold { cell { "Name" } cell { "Qty" } }
      each r in rows { row { "${r.name}" "${r.qty}" } }
    }
    list ordered start 3 { "first" item { "second" } }
    frame thickness 0.5mm padding 2mm { "framed" }
    shape ellipse width 20mm height 10mm fill #eee
    image "logo.png" scale 0.5 at 10mm 20mm
    break 2
    pagebreak
    "after"
  }
}`, data)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	els := doc.root.elements
	if len(els) != 8 {
		t.Fatalf("expected 8 top-level elements, got %d", len(els))
	}

	table, ok := els[0].(*Table)
	if !ok || table.Rows() != 3 || table.Columns() != 2 {
		t.Fatalf("unexpected table: %#v", els[0])
	}
	deco, ok := table.decorator.(*FrameCellDecorator)
	if !ok || !deco.Inner || !deco.Outer || deco.Line.Color != (Color{G: 255}) {
		t.Fatalf("unexpected table decorator: %#v", table.decorator)
	}
	assertApprox(t, "border", deco.Line.Thickness, 0.2)
	if styled, ok := table.rows[0][0].Element.(*StyledElement); !ok || !styled.Style.Bold {
		t.Fatalf("row style should wrap the cell: %#v", table.rows[0][0].Element)
	}

	list, ok := els[1].(*List)
	if !ok {
		t.Fatalf("expected list, got %#v", els[1])
	}
	if diff := cmp.Diff([]string{"3.", "4."}, list.Markers()); diff != "" {
		t.Fatalf("unexpected markers (-want +got):\n%s", diff)
	}

	frame, ok := els[2].(*Frame)
	if !ok {
		t.Fatalf("expected frame, got %#v", els[2])
	}
	assertApprox(t, "frame thickness", frame.Line.Thickness, 0.5)
	assertApprox(t, "frame padding", frame.Padding, 2)

	shape, ok := els[3].(*Shape)
	if !ok || shape.Kind != ShapeEllipse || shape.Fill == nil || *shape.Fill != (Color{0xee, 0xee, 0xee}) {
		t.Fatalf("unexpected shape: %#v", els[3])
	}

	img, ok := els[4].(*Image)
	if !ok || img.ScaleX != 0.5 || img.ScaleY != 0.5 || img.Position == nil || *img.Position != (Position{10, 20}) {
		t.Fatalf("unexpected image: %#v", els[4])
	}
	if brk, ok := els[5].(*Break); !ok || brk.Lines != 2 {
		t.Fatalf("unexpected break: %#v", els[5])
	}
	if _, ok := els[6].(*PageBreak); !ok {
		t.Fatalf("expected page break, got %#v", els[6])
	}

	r, err := doc.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(r.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(r.Pages))
	}
	if diff := cmp.Diff([]string{"after"}, pageTexts(r.Pages[1])); diff != "" {
		t.Fatalf("unexpected page 2 (-want +got):\n%s", diff)
	}
	for _, want := range []string{"Name", "bolt", "10", "first", "second", "framed"} {
		if !contains(pageTexts(r.Pages[0]), want) {
			t.Fatalf("page 1 is missing %q", want)
		}
	}
}

func TestBuildPageSettings(t *testing.T) {
	doc, err := buildMarkup(t, `doc T {`+testFonts+`
  page A4 spacing 2mm {
    size: 10pt
    line-spacing: 1.5
    lang: "de"
    hyphenate: "de.pat"
    footer align center "- ${page} -"
    "body"
  }
}`, nil, "de.pat", "% German\n1ba 1be\nsil-ben\n")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.style.Size != 10 || doc.style.LineSpacing != 1.5 {
		t.Fatalf("unexpected document style: %+v", doc.style)
	}
	if doc.locale.String() != "de" {
		t.Fatalf("unexpected locale %s", doc.locale)
	}
	dict, ok := doc.hyphenator.(*hyphen.Dictionary)
	if !ok {
		t.Fatalf("expected a hyphenation dictionary, got %T", doc.hyphenator)
	}
	if diff := cmp.Diff([]string{"de"}, dict.Languages()); diff != "" {
		t.Fatalf("unexpected languages (-want +got):\n%s", diff)
	}
	assertApprox(t, "spacing", doc.root.spacing, 2)

	deco, ok := doc.decorator.(*SimplePageDecorator)
	if !ok || deco.Footer == nil || deco.Header != nil {
		t.Fatalf("unexpected decorator: %#v", doc.decorator)
	}
	// 页脚高度默认取一行的高度：10pt * 1.5
	assertApprox(t, "footer height", deco.FooterHeight, pt(15))
}

func TestBuildHyphenatorOption(t *testing.T) {
	src, err := dsl.ParseString(`doc T { page A4 { "x" } }`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	doc, err := Build(src, nil, BuildOptions{Hyphenator: hyphen.None{}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, ok := doc.hyphenator.(hyphen.None); !ok {
		t.Fatalf("option should override the hyphenator, got %T", doc.hyphenator)
	}
}

func TestBuildDefaultsToBuiltinFonts(t *testing.T) {
	src, err := dsl.ParseString(`doc T { page A6 { "Hello" } }`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	doc, err := Build(src, nil, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	r, err := doc.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !contains(resultTexts(r), "Hello") {
		t.Fatalf("unexpected texts: %v", resultTexts(r))
	}
	if len(r.Fonts) != 1 || r.Fonts[0].Family != defaultFamily {
		t.Fatalf("unexpected fonts: %+v", r.Fonts)
	}
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		name   string
		markup string
		check  func(error) bool
	}{
		{"missing page", `doc T { meta { title: "x" } }`, func(err error) bool {
			return strings.Contains(err.Error(), "page")
		}},
		{"undefined style", `doc T {` + testFonts + ` page A4 { paragraph style Nope "x" } }`, func(err error) bool {
			return errors.Is(err, ErrInvalidStyleReference)
		}},
		{"bad length", "doc T {" + testFonts + "page A4 {\n  frame thickness abc { \"x\" }\n} }", func(err error) bool {
			var pe *dsl.Error
			return errors.As(err, &pe) && pe.Pos.Line == 11
		}},
		{"missing image", `doc T {` + testFonts + ` page A4 { image "missing.png" } }`, func(err error) bool {
			return errors.Is(err, os.ErrNotExist)
		}},
		{"loop over scalar", `doc T {` + testFonts + ` page A4 { each x in id { "x" } } }`, func(err error) bool {
			return strings.Contains(err.Error(), "id")
		}},
		{"bad each", `doc T {` + testFonts + ` page A4 { each x { "x" } } }`, func(err error) bool {
			var pe *dsl.Error
			return errors.As(err, &pe)
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := buildMarkup(t, c.markup, map[string]any{"id": "A-1"})
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !c.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestBuildMissingFontFile(t *testing.T) {
	doc, err := buildMarkup(t, `doc T { fonts { family Body { regular: "nope.ttf" } } page A4 { "x" } }`, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// 字体在首次使用时才加载，错误出现在渲染阶段
	if _, err := doc.Render(); !errors.Is(err, fonts.ErrFontLoad) {
		t.Fatalf("expected font load error, got %v", err)
	}
}

func TestBuildWarnsOnUnknownCommands(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(io.Discard)

	doc, err := buildMarkup(t, `doc T {`+testFonts+`
  page A4 {
    bogus 1
    block { header "nested" }
    paragraph { "x" blink { "y" } }
  }
}`, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.Len() != 2 {
		t.Fatalf("unknown commands should be skipped, got %d elements", doc.Len())
	}
	out := buf.String()
	for _, want := range []string{"bogus", "header", "blink"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected a warning mentioning %q, got:\n%s", want, out)
		}
	}
}
