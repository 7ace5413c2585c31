package canvasrenderer

import (
	"bytes"
	"errors"
	"image"
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/images"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

func goDocument(t *testing.T) *layout.Document {
	t.Helper()
	cache := fonts.NewCache(nil)
	if err := cache.Register(fonts.GoFamily("Body")); err != nil {
		t.Fatalf("register: %v", err)
	}
	return layout.NewDocument(cache, "Body")
}

func TestRenderProducesPDF(t *testing.T) {
	doc := goDocument(t)
	doc.SetMeta(layout.DocumentMeta{Title: "Sample", Keywords: []string{"a", "b"}})
	doc.Push(layout.NewParagraph("Hello, world. ").PushStyled("Bold", layout.Style{Bold: true, Underline: true}))

	frame := layout.NewFrame(layout.NewParagraph("framed"))
	frame.Line.Dashes = []float64{1, 0.5}
	doc.Push(frame)

	fill := layout.Color{R: 200, G: 200, B: 200}
	doc.Push(&layout.Shape{Kind: layout.ShapeEllipse, Width: 30, Height: 10, Line: layout.DefaultLineStyle(), Fill: &fill})

	img := layout.NewImage(images.FromImage(image.NewRGBA(image.Rect(0, 0, 60, 30))), "memory")
	img.Rotation = 90
	img.ScaleY = 2
	doc.Push(img)

	result, err := doc.Render()
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	bg := layout.White
	data, err := NewRenderer(Options{Background: &bg}).Render(result)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 16)])
	}
}

func TestRenderSeveralPages(t *testing.T) {
	doc := goDocument(t)
	doc.SetPaperSize(layout.Size{Width: 80, Height: 60})
	doc.Push(layout.NewParagraph(strings.Repeat("lorem ipsum dolor sit amet ", 80)))
	result, err := doc.Render()
	if err != nil {
		t.Fatalf("layout: %v", err)
	}
	if len(result.Pages) < 2 {
		t.Fatalf("expected several pages, got %d", len(result.Pages))
	}
	w := NewWriter(Options{})
	if err := renderer.Replay(result, w); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(w.pages) != len(result.Pages) {
		t.Fatalf("expected %d canvases, got %d", len(result.Pages), len(w.pages))
	}
	if len(w.faces) != 1 {
		t.Fatalf("faces should be reused, got %d", len(w.faces))
	}
	data, err := w.Serialize()
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("serialize: %v", err)
	}
}

func TestRenderEmptyResult(t *testing.T) {
	if _, err := NewRenderer(Options{}).Render(nil); err == nil {
		t.Fatalf("expected error for nil result")
	}
	if _, err := NewWriter(Options{}).Serialize(); err == nil {
		t.Fatalf("expected error when no page was added")
	}
}

func TestWriterRequiresPage(t *testing.T) {
	w := NewWriter(Options{})
	if err := w.DrawLine([]layout.Position{{}, {X: 1}}, renderer.PathStyle{}); err == nil {
		t.Fatalf("drawing before AddPage should fail")
	}
	if err := w.AddPage(10, 10); err != nil {
		t.Fatalf("AddPage: %v", err)
	}
	if err := w.DrawText(renderer.TextRun{Font: 3, Text: "x", Size: 10}); err == nil {
		t.Fatalf("unknown font handle should fail")
	}
}

func TestEmbedFontRejectsGarbage(t *testing.T) {
	_, err := NewWriter(Options{}).EmbedFont("bad", []byte("not a font"))
	if !errors.Is(err, fonts.ErrFontLoad) {
		t.Fatalf("expected font load error, got %v", err)
	}
}

func TestRotatedBox(t *testing.T) {
	s := layout.Size{Width: 20, Height: 10}
	for _, c := range []struct {
		deg  float64
		want layout.Size
	}{
		{0, s},
		{90, layout.Size{Width: 10, Height: 20}},
		{180, s},
	} {
		got := rotatedBox(s, c.deg)
		if math.Abs(got.Width-c.want.Width) > 1e-9 || math.Abs(got.Height-c.want.Height) > 1e-9 {
			t.Fatalf("rotatedBox(%g) = %+v, want %+v", c.deg, got, c.want)
		}
	}
}
