package layout

import (
	"math"
	"strings"
)

// Paragraph 是自动折行的文本段落，可以跨页续排。
type Paragraph struct {
	runs      []StyledString
	alignment Alignment
	style     Style

	started   bool
	remaining []StyledString
	lines     []Line
	width     float64
}

// NewParagraph 创建段落，text 为空时得到空段落。
func NewParagraph(text string) *Paragraph {
	p := &Paragraph{}
	return p.Push(text)
}

// Push 追加一段继承段落样式的文本。
func (p *Paragraph) Push(text string) *Paragraph {
	return p.PushStyled(text, Style{})
}

// PushStyled 追加一段带样式的文本。
func (p *Paragraph) PushStyled(text string, style Style) *Paragraph {
	if text != "" {
		p.runs = append(p.runs, StyledString{Text: text, Style: style})
	}
	return p
}

// Aligned 设置行对齐方式。
func (p *Paragraph) Aligned(a Alignment) *Paragraph {
	p.alignment = a
	return p
}

// WithStyle 设置段落自身的样式，渲染时叠加在继承样式之上。
func (p *Paragraph) WithStyle(s Style) *Paragraph {
	p.style = s
	return p
}

func (p *Paragraph) Runs() []StyledString { return p.runs }

func (p *Paragraph) Reset() {
	p.started = false
	p.remaining = nil
	p.lines = nil
	p.width = 0
}

func (p *Paragraph) Render(ctx *Context, area *Area, style Style) (RenderResult, error) {
	style = style.Merge(p.style)
	if !p.started {
		p.remaining = make([]StyledString, 0, len(p.runs))
		for _, r := range p.runs {
			p.remaining = append(p.remaining, StyledString{Text: r.Text, Style: style.Merge(r.Style)})
		}
		p.lines = nil
		p.started = true
	}

	width := area.Width()
	if p.lines == nil || math.Abs(p.width-width) > epsilon {
		lines, err := Wrap(ctx, p.remaining, width)
		if err != nil {
			return RenderResult{}, err
		}
		p.lines, p.width = lines, width
	}

	var result RenderResult
	y := 0.0
	for i, line := range p.lines {
		section, ok := area.TextSection(ctx, Position{Y: y}, line.Ascent, line.Height)
		if !ok {
			p.lines = p.lines[i:]
			p.remaining = Rejoin(p.lines)
			result.HasMore = true
			return result, nil
		}
		if err := p.drawLine(section, line, width); err != nil {
			return RenderResult{}, err
		}
		if line.Overflow {
			area.Warn("单词 %q 宽 %.2fmm，超出可用宽度 %.2fmm", line.Text(), line.Width, width)
		}
		y += line.Height
		result.Size = result.Size.Stack(Size{Width: line.Width, Height: line.Height})
	}
	p.lines = []Line{}
	p.remaining = nil
	return result, nil
}

func (p *Paragraph) drawLine(s *TextSection, line Line, width float64) error {
	if p.alignment == AlignJustify && !line.End && !line.Overflow && line.Spaces > 0 {
		extra := (width - line.Width) / float64(line.Spaces)
		for _, run := range line.Runs {
			for j, part := range strings.Split(run.Text, " ") {
				if j > 0 {
					if err := s.Print(StyledString{Text: " ", Style: run.Style}); err != nil {
						return err
					}
					s.Skip(extra)
				}
				if err := s.Print(StyledString{Text: part, Style: run.Style}); err != nil {
					return err
				}
			}
		}
		return nil
	}
	s.Skip(p.alignment.offset(line.Width, width))
	for _, run := range line.Runs {
		if err := s.Print(run); err != nil {
			return err
		}
	}
	return nil
}

// Text 是单行、不折行的文本。
type Text struct {
	run StyledString
}

// NewText 创建单行文本。
func NewText(text string, style Style) *Text {
	return &Text{run: StyledString{Text: text, Style: style}}
}

func (t *Text) Render(ctx *Context, area *Area, style Style) (RenderResult, error) {
	run := StyledString{Text: t.run.Text, Style: style.Merge(t.run.Style)}
	lm, err := measureRuns(ctx, []StyledString{run})
	if err != nil {
		return RenderResult{}, err
	}
	if lm.height > area.Height()+epsilon {
		return RenderResult{HasMore: true}, nil
	}
	if err := area.DrawText(ctx, Position{}, run); err != nil {
		return RenderResult{}, err
	}
	return RenderResult{Size: Size{Width: lm.width, Height: lm.height}}, nil
}
