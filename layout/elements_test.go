package layout

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/folio/images"
)

func numberedLines(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("line %02d", i+1)
	}
	return out
}

// 10.5 行高的页面恰好放下 10 行 12pt 文本。
var tenLines = Size{Width: 100, Height: 10.5 * 12 * PtToMm}

func TestParagraphAcrossThreePages(t *testing.T) {
	ctx := newTestContext()
	want := numberedLines(30)
	p := NewParagraph(strings.Join(want, "\n"))

	var got []string
	for n := 1; n <= 3; n++ {
		page := NewPage(n, tenLines)
		r, err := p.Render(ctx, page.Area(), body)
		if err != nil {
			t.Fatalf("page %d: %v", n, err)
		}
		if r.HasMore != (n < 3) {
			t.Fatalf("page %d: HasMore = %v", n, r.HasMore)
		}
		assertApprox(t, fmt.Sprintf("page %d height", n), r.Size.Height, 10*pt(12))
		got = append(got, pageTexts(page)...)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("content not conserved (-want +got):\n%s", diff)
	}
}

func TestParagraphRewrapsOnWiderArea(t *testing.T) {
	ctx := newTestContext()
	p := NewParagraph("aaa bbb ccc ddd eee fff")

	first := NewPage(1, Size{Width: pt(45), Height: pt(18)})
	r, err := p.Render(ctx, first.Area(), body)
	if err != nil || !r.HasMore {
		t.Fatalf("first render: %+v, %v", r, err)
	}
	second := NewPage(2, Size{Width: 100, Height: 100})
	if r, err = p.Render(ctx, second.Area(), body); err != nil || r.HasMore {
		t.Fatalf("second render: %+v, %v", r, err)
	}
	got := append(pageTexts(first), pageTexts(second)...)
	if diff := cmp.Diff([]string{"aaa bbb", "ccc ddd eee fff"}, got); diff != "" {
		t.Fatalf("unexpected fragments (-want +got):\n%s", diff)
	}
}

func TestParagraphAlignment(t *testing.T) {
	ctx := newTestContext()
	for _, c := range []struct {
		align Alignment
		x     float64
	}{{AlignLeft, 0}, {AlignCenter, pt(21)}, {AlignRight, pt(42)}} {
		page := NewPage(1, Size{Width: pt(60), Height: 50})
		if _, err := NewParagraph("abc").Aligned(c.align).Render(ctx, page.Area(), body); err != nil {
			t.Fatalf("%s: %v", c.align, err)
		}
		assertApprox(t, c.align.String()+" x", page.Texts()[0].Origin.X, c.x)
	}
}

func TestParagraphJustify(t *testing.T) {
	ctx := newTestContext()
	page := NewPage(1, Size{Width: pt(54), Height: 50})
	if _, err := NewParagraph("aa bb cc dd").Aligned(AlignJustify).Render(ctx, page.Area(), body); err != nil {
		t.Fatalf("Render: %v", err)
	}
	texts := page.Texts()
	var words []TextOp
	for _, op := range texts {
		if strings.TrimSpace(op.Text) != "" {
			words = append(words, op)
		}
	}
	if len(words) != 4 {
		t.Fatalf("unexpected text ops: %+v", texts)
	}
	assertApprox(t, "bb x", words[1].Origin.X, pt(21))
	assertApprox(t, "cc x", words[2].Origin.X, pt(42))
	assertApprox(t, "last line starts left", words[3].Origin.X, 0)
}

func TestParagraphStyleCascade(t *testing.T) {
	ctx := newTestContext()
	page := NewPage(1, Size{Width: 100, Height: 50})
	red := Style{}.WithColor(Color{R: 255})
	p := NewParagraph("plain ").WithStyle(Style{Size: 10})
	p.PushStyled("red", red)
	if _, err := p.Render(ctx, page.Area(), body); err != nil {
		t.Fatalf("Render: %v", err)
	}
	texts := page.Texts()
	if len(texts) != 2 {
		t.Fatalf("expected two runs, got %+v", texts)
	}
	if texts[0].Size != 10 || texts[1].Size != 10 || texts[1].Color != (Color{R: 255}) || texts[0].Color != Black {
		t.Fatalf("styles not cascaded: %+v", texts)
	}
}

func TestTextElement(t *testing.T) {
	ctx := newTestContext()
	page := NewPage(1, Size{Width: 100, Height: 50})
	r, err := NewText("hello", Style{Bold: true}).Render(ctx, page.Area(), body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	assertApprox(t, "height", r.Size.Height, pt(12))
	if page.Texts()[0].Font != "Body/bold" {
		t.Fatalf("bold not applied: %+v", page.Texts()[0])
	}
	small := NewPage(1, Size{Width: 100, Height: 1})
	if r, err = NewText("hello", Style{}).Render(ctx, small.Area(), body); err != nil || !r.HasMore {
		t.Fatalf("text taller than area should be deferred: %+v %v", r, err)
	}
}

func TestBreakAndPageBreak(t *testing.T) {
	ctx := newTestContext()
	r, err := NewBreak(2).Render(ctx, NewPage(1, Size{Width: 100, Height: 50}).Area(), body)
	if err != nil {
		t.Fatalf("Break: %v", err)
	}
	assertApprox(t, "break height", r.Size.Height, 2*pt(12))
	r, _ = NewBreak(100).Render(ctx, NewPage(1, Size{Width: 100, Height: 5}).Area(), body)
	assertApprox(t, "clamped break", r.Size.Height, 5)

	pb := NewPageBreak()
	if r, _ := pb.Render(ctx, nil, body); !r.HasMore {
		t.Fatalf("first page break render must request a new page")
	}
	if r, _ := pb.Render(ctx, nil, body); r.HasMore {
		t.Fatalf("second page break render must finish")
	}
}

func TestLinearLayoutResumes(t *testing.T) {
	ctx := newTestContext()
	layout := NewLinearLayout(NewParagraph("a\nb"), NewParagraph("c\nd"))
	size := Size{Width: 100, Height: 3.5 * pt(12)}

	first := NewPage(1, size)
	r, err := layout.Render(ctx, first.Area(), body)
	if err != nil || !r.HasMore {
		t.Fatalf("first: %+v %v", r, err)
	}
	assertApprox(t, "first height", r.Size.Height, 3*pt(12))
	second := NewPage(2, size)
	if r, err = layout.Render(ctx, second.Area(), body); err != nil || r.HasMore {
		t.Fatalf("second: %+v %v", r, err)
	}
	got := append(pageTexts(first), pageTexts(second)...)
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, got); diff != "" {
		t.Fatalf("unexpected fragments (-want +got):\n%s", diff)
	}
	if y := second.Texts()[0].Origin.Y; y > pt(12) {
		t.Fatalf("continuation should start at the top, baseline at %g", y)
	}
}

func TestLinearLayoutSpacing(t *testing.T) {
	ctx := newTestContext()
	layout := NewLinearLayout(NewParagraph("a"), NewParagraph("b")).WithSpacing(2)
	r, err := layout.Render(ctx, NewPage(1, Size{Width: 100, Height: 100}).Area(), body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	assertApprox(t, "height", r.Size.Height, 2*pt(12)+2)
}

func TestPaddedAndStyled(t *testing.T) {
	ctx := newTestContext()
	page := NewPage(1, Size{Width: 100, Height: 100})
	el := NewPadded(NewStyledElement(NewParagraph("x"), Style{Italic: true}), UniformMargins(3))
	r, err := el.Render(ctx, page.Area(), body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	assertApprox(t, "height", r.Size.Height, pt(12)+6)
	op := page.Texts()[0]
	assertApprox(t, "x", op.Origin.X, 3)
	if op.Font != "Body/italic" {
		t.Fatalf("style override not applied: %s", op.Font)
	}
}

func TestTableRowHeightIsTallestCell(t *testing.T) {
	ctx := newTestContext()
	long := "long cell text that needs several lines to fit into the column"
	table := NewTable(30, 70)
	if err := table.PushRow(NewParagraph("A"), NewParagraph(long)); err != nil {
		t.Fatalf("PushRow: %v", err)
	}
	r, err := table.Render(ctx, NewPage(1, Size{Width: 100, Height: 200}).Area(), body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	lines, err := Wrap(ctx, []StyledString{Styled(long, body)}, 70)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	if len(lines) < 2 {
		t.Fatalf("long cell should wrap, got %v", lineTexts(lines))
	}
	assertApprox(t, "row height", r.Size.Height, float64(len(lines))*pt(12))
	if r.HasMore {
		t.Fatalf("table should be complete")
	}
}

func TestSingleCellTableMatchesCell(t *testing.T) {
	ctx := newTestContext()
	table := NewTable(1)
	if err := table.PushRow(NewParagraph("one two three")); err != nil {
		t.Fatalf("PushRow: %v", err)
	}
	area := Size{Width: pt(60), Height: 100}
	tr, err := table.Render(ctx, NewPage(1, area).Area(), body)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	pr, err := NewParagraph("one two three").Render(ctx, NewPage(1, area).Area(), body)
	if err != nil {
		t.Fatalf("paragraph: %v", err)
	}
	assertApprox(t, "row height", tr.Size.Height, pr.Size.Height)
	if err := table.PushRow(NewParagraph("a"), NewParagraph("b")); err == nil {
		t.Fatalf("expected error for wrong cell count")
	}
}

func TestTableFrameDecorator(t *testing.T) {
	ctx := newTestContext()
	page := NewPage(1, Size{Width: 100, Height: 100})
	table := NewTable(1, 1).SetDecorator(NewFrameCellDecorator(true, true, false))
	if err := table.PushRow(NewParagraph("A"), NewParagraph("B")); err != nil {
		t.Fatalf("PushRow: %v", err)
	}
	r, err := table.Render(ctx, page.Area(), body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	assertApprox(t, "row height", r.Size.Height, pt(12)+0.2)
	lines := 0
	for _, op := range page.Ops() {
		if op.Line != nil {
			lines++
		}
	}
	if lines != 7 {
		t.Fatalf("expected 7 border lines, got %d", lines)
	}
}

func TestTableCellBorderOverride(t *testing.T) {
	ctx := newTestContext()
	page := NewPage(1, Size{Width: 100, Height: 100})
	table := NewTable(1).SetDecorator(NewFrameCellDecorator(true, true, false))
	thick := LineStyle{Thickness: 1, Color: Color{R: 200}}
	if err := table.PushCells(TableCell{Element: NewParagraph("A"), Border: &thick}); err != nil {
		t.Fatalf("PushCells: %v", err)
	}
	r, err := table.Render(ctx, page.Area(), body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	assertApprox(t, "row height", r.Size.Height, pt(12)+2)
	for _, op := range page.Ops() {
		if op.Line != nil && op.Line.Style.Thickness != 1 {
			t.Fatalf("cell override ignored: %+v", op.Line.Style)
		}
	}
}

func TestTableRowContinuesOnNextPage(t *testing.T) {
	ctx := newTestContext()
	table := NewTable(1)
	if err := table.PushRow(NewParagraph(strings.Join(numberedLines(15), "\n"))); err != nil {
		t.Fatalf("PushRow: %v", err)
	}
	r, err := table.Render(ctx, NewPage(1, tenLines).Area(), body)
	if err != nil || !r.HasMore {
		t.Fatalf("first page: %+v %v", r, err)
	}
	page := NewPage(2, tenLines)
	if r, err = table.Render(ctx, page.Area(), body); err != nil || r.HasMore {
		t.Fatalf("second page: %+v %v", r, err)
	}
	if got := pageTexts(page); len(got) != 5 || got[0] != "line 11" {
		t.Fatalf("unexpected continuation: %v", got)
	}
}

func TestTableRowResumesOnlyUnfinishedCells(t *testing.T) {
	ctx := newTestContext()
	table := NewTable(1, 1)
	err := table.PushRow(NewText("ALPHA", Style{}), NewParagraph(strings.Join(numberedLines(25), "\n")))
	if err != nil {
		t.Fatalf("PushRow: %v", err)
	}
	var got []string
	for n := 1; n <= 3; n++ {
		page := NewPage(n, tenLines)
		r, err := table.Render(ctx, page.Area(), body)
		if err != nil {
			t.Fatalf("page %d: %v", n, err)
		}
		if r.HasMore != (n < 3) {
			t.Fatalf("page %d: HasMore = %v", n, r.HasMore)
		}
		got = append(got, pageTexts(page)...)
	}
	want := append([]string{"ALPHA"}, numberedLines(25)...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("cells re-emitted or lost (-want +got):\n%s", diff)
	}
}

func TestTableContinuationBorderStaysInArea(t *testing.T) {
	ctx := newTestContext()
	page := NewPage(1, Size{Width: 100, Height: 50})
	deco := NewFrameCellDecorator(true, true, true)
	table := NewTable(1, 1).SetDecorator(deco)
	filler := &Shape{Height: 50 - deco.Line.Thickness}
	if err := table.PushRow(filler, NewParagraph(strings.Join(numberedLines(15), "\n"))); err != nil {
		t.Fatalf("PushRow: %v", err)
	}
	if err := table.PushRow(NewParagraph("tail"), NewParagraph("tail")); err != nil {
		t.Fatalf("PushRow: %v", err)
	}
	r, err := table.Render(ctx, page.Area(), body)
	if err != nil || !r.HasMore {
		t.Fatalf("Render: %+v %v", r, err)
	}
	assertApprox(t, "height", r.Size.Height, 50)
	for _, op := range page.Ops() {
		if op.Line == nil {
			continue
		}
		for _, p := range op.Line.Points {
			if p.Y > 50+1e-9 {
				t.Fatalf("border drawn outside the area: %+v", op.Line.Points)
			}
		}
	}
}

func TestOrderedListMarkers(t *testing.T) {
	ctx := newTestContext()
	list := NewOrderedList()
	for i := 0; i < 10; i++ {
		list.Push(NewParagraph("item"))
	}
	page := NewPage(1, Size{Width: 100, Height: 200})
	if _, err := list.Render(ctx, page.Area(), body); err != nil {
		t.Fatalf("Render: %v", err)
	}
	column := pt(18) + listMarkerGap
	for _, op := range page.Texts() {
		switch op.Text {
		case "1.":
			assertApprox(t, "marker 1 x", op.Origin.X, column-listMarkerGap-pt(12))
		case "10.":
			assertApprox(t, "marker 10 x", op.Origin.X, 0)
		case "item":
			assertApprox(t, "content x", op.Origin.X, column)
		}
	}
	if got := list.Markers(); got[0] != "1." || got[9] != "10." {
		t.Fatalf("unexpected markers: %v", got)
	}
	if got := NewOrderedList().Push(NewParagraph("x")).WithStart(8).Markers(); got[0] != "8." {
		t.Fatalf("start number ignored: %v", got)
	}
}

func TestUnorderedListMarkerOncePerItem(t *testing.T) {
	ctx := newTestContext()
	list := NewUnorderedList("")
	list.Push(NewParagraph("a\nb\nc"))
	list.Push(NewParagraph("d\ne\nf"))
	size := Size{Width: 100, Height: 4.5 * pt(12)}

	var all []string
	for n := 1; n <= 2; n++ {
		page := NewPage(n, size)
		r, err := list.Render(ctx, page.Area(), body)
		if err != nil {
			t.Fatalf("page %d: %v", n, err)
		}
		if r.HasMore != (n == 1) {
			t.Fatalf("page %d: HasMore = %v", n, r.HasMore)
		}
		all = append(all, pageTexts(page)...)
	}
	bullets := 0
	for _, s := range all {
		if s == DefaultBullet {
			bullets++
		}
	}
	if bullets != 2 {
		t.Fatalf("expected one bullet per item, got %d in %v", bullets, all)
	}
}

func TestFrameOpenEdgesAcrossPages(t *testing.T) {
	ctx := newTestContext()
	countLines := func(p *Page) int {
		n := 0
		for _, op := range p.Ops() {
			if op.Line != nil {
				n++
			}
		}
		return n
	}

	single := NewPage(1, Size{Width: 100, Height: 100})
	r, err := NewFrame(NewParagraph("x")).Render(ctx, single.Area(), body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	assertApprox(t, "frame height", r.Size.Height, pt(12)+2*1.1)
	if n := countLines(single); n != 4 {
		t.Fatalf("closed frame should have 4 edges, got %d", n)
	}

	frame := NewFrame(NewParagraph(strings.Join(numberedLines(15), "\n")))
	first := NewPage(1, tenLines)
	if r, err = frame.Render(ctx, first.Area(), body); err != nil || !r.HasMore {
		t.Fatalf("first page: %+v %v", r, err)
	}
	second := NewPage(2, tenLines)
	if r, err = frame.Render(ctx, second.Area(), body); err != nil || r.HasMore {
		t.Fatalf("second page: %+v %v", r, err)
	}
	if countLines(first) != 3 || countLines(second) != 3 {
		t.Fatalf("continued frame should leave one edge open per page: %d %d", countLines(first), countLines(second))
	}
}

func TestImageSizingAndDeferral(t *testing.T) {
	img := &images.Image{Width: 300, Height: 600}
	el := NewImage(img, "logo.png")
	el.ScaleX, el.ScaleY = 0.5, 0.5
	assertApprox(t, "width", el.Size().Width, 12.7)
	assertApprox(t, "height", el.Size().Height, 25.4)

	el.Rotation = 90
	el.Alignment = AlignCenter
	page := NewPage(1, Size{Width: 100, Height: 100})
	r, err := el.Render(nil, page.Area(), body)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	assertApprox(t, "bbox width", r.Size.Width, 25.4)
	assertApprox(t, "bbox height", r.Size.Height, 12.7)
	op := page.Ops()[0].Image
	assertApprox(t, "x", op.Origin.X, (100-25.4)/2)
	if op.Source != "logo.png" || op.Rotation != 90 {
		t.Fatalf("unexpected image op: %+v", op)
	}

	small := NewPage(1, Size{Width: 100, Height: 10})
	if r, _ := el.Render(nil, small.Area(), body); !r.HasMore || len(small.Ops()) != 0 {
		t.Fatalf("image taller than area should be deferred")
	}
}

func TestShapes(t *testing.T) {
	page := NewPage(1, Size{Width: 100, Height: 100})
	area := page.Area()
	rect := &Shape{Kind: ShapeRect, Width: 40, Height: 10, Line: DefaultLineStyle(), Fill: &White}
	r, err := rect.Render(nil, area.Clone(), Style{})
	if err != nil || r.Size != (Size{Width: 40, Height: 10}) {
		t.Fatalf("rect: %+v %v", r, err)
	}
	ellipse := &Shape{Kind: ShapeEllipse, Height: 20, Line: DefaultLineStyle()}
	if r, _ = ellipse.Render(nil, area.Clone(), Style{}); r.Size.Width != 100 {
		t.Fatalf("ellipse should fill the width: %+v", r.Size)
	}
	rule := &Shape{Kind: ShapeRule, Line: LineStyle{Thickness: 0.5}}
	if r, _ = rule.Render(nil, area.Clone(), Style{}); r.Size.Height != 0.5 {
		t.Fatalf("rule height should equal its thickness: %+v", r.Size)
	}
	ops := page.Ops()
	if len(ops[0].Line.Points) != 4 || len(ops[1].Line.Points) != ellipseSegments || len(ops[2].Line.Points) != 2 {
		t.Fatalf("unexpected shape ops: %d %d %d", len(ops[0].Line.Points), len(ops[1].Line.Points), len(ops[2].Line.Points))
	}
}
