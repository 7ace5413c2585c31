package layout

import (
	"io"
	"math"
	"os"
	"testing"

	"github.com/ByLCY/folio/internal/fonttest"
	"github.com/ByLCY/folio/logger"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// 测试字体：每个字形 500/1000 em，ascent 800，descent 200，12pt 下字宽 6pt、行高 12pt。
var body = Style{Family: "Body", Size: 12}

func newTestContext(settings ...string) *Context {
	s := fonttest.Default
	if len(settings) > 0 {
		s = settings[0]
	}
	return NewContext(fonttest.Cache(fonttest.Family("Body", s)))
}

func pt(v float64) float64 { return v * PtToMm }

func assertApprox(t *testing.T, what string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Fatalf("%s = %g, want %g", what, got, want)
	}
}

func lineTexts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text()
	}
	return out
}

func pageTexts(p *Page) []string {
	var out []string
	for _, op := range p.Texts() {
		out = append(out, op.Text)
	}
	return out
}
