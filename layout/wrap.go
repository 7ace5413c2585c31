package layout

import (
	"math"
	"strings"
	"unicode"
)

// Line 是折行后的一行文本。
type Line struct {
	Runs       []StyledString `json:"runs"`   // 实际绘制的内容，断词时末尾带连字符
	Source     []StyledString `json:"source"` // 本行对应的原文内容
	Sep        string         `json:"sep"`    // 原文中本行之后的分隔符：" "、"\n"，断词或末行为 ""
	SepStyle   Style          `json:"sepStyle"`
	Width      float64        `json:"width"` // 已扣除行首字形的左侧支承
	Height     float64        `json:"height"`
	Ascent     float64        `json:"ascent"`
	Spaces     int            `json:"spaces"`
	Overflow   bool           `json:"overflow,omitempty"`
	Hyphenated bool           `json:"hyphenated,omitempty"`
	End        bool           `json:"end,omitempty"` // 段落末行或显式换行前的一行
}

// Text 返回行内绘制的纯文本。
func (l Line) Text() string {
	var b strings.Builder
	for _, r := range l.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Rejoin 把尚未绘制的行还原为原文片段，用于在宽度变化时重新折行。
// 连续空白在折行时已经合并为一个空格。
func Rejoin(lines []Line) []StyledString {
	var pieces []piece
	for _, l := range lines {
		for _, r := range l.Source {
			pieces = append(pieces, piece{r.Text, r.Style})
		}
		if l.Sep != "" {
			pieces = append(pieces, piece{l.Sep, l.SepStyle})
		}
	}
	return mergePieces(pieces)
}

type piece struct {
	text  string
	style Style
}

type itemKind int

const (
	itemWord itemKind = iota
	itemSpace
	itemNewline
)

type item struct {
	kind  itemKind
	word  []piece
	style Style
}

func isBreakingSpace(r rune) bool {
	return unicode.IsSpace(r) && r != '\u00a0' && r != '\u202f'
}

// tokenize 把片段拆成单词、空白与换行。单词可以跨越多个样式片段。
func tokenize(runs []StyledString) []item {
	var items []item
	var word []piece
	flush := func() {
		if len(word) > 0 {
			items = append(items, item{kind: itemWord, word: word})
			word = nil
		}
	}
	for _, run := range runs {
		start := -1
		for i, r := range run.Text {
			if r != '\n' && !isBreakingSpace(r) {
				if start < 0 {
					start = i
				}
				continue
			}
			if start >= 0 {
				word = append(word, piece{run.Text[start:i], run.Style})
				start = -1
			}
			flush()
			if r == '\n' {
				items = append(items, item{kind: itemNewline, style: run.Style})
			} else if n := len(items); n == 0 || items[n-1].kind != itemSpace {
				items = append(items, item{kind: itemSpace, style: run.Style})
			}
		}
		if start >= 0 {
			word = append(word, piece{run.Text[start:], run.Style})
		}
	}
	flush()
	return items
}

func mergePieces(pieces []piece) []StyledString {
	var out []StyledString
	for _, p := range pieces {
		if p.text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Style == p.style {
			out[n-1].Text += p.text
			continue
		}
		out = append(out, StyledString{Text: p.text, Style: p.style})
	}
	return out
}

func joinPieces(pieces []piece) string {
	var b strings.Builder
	for _, p := range pieces {
		b.WriteString(p.text)
	}
	return b.String()
}

// splitPieces 在第 k 个字符处把单词切成两段。
func splitPieces(word []piece, k int) (prefix, rest []piece) {
	for i, p := range word {
		n := len([]rune(p.text))
		if k >= n {
			prefix = append(prefix, p)
			k -= n
			continue
		}
		if k > 0 {
			rs := []rune(p.text)
			prefix = append(prefix, piece{string(rs[:k]), p.style})
			rest = append(rest, piece{string(rs[k:]), p.style})
		} else {
			rest = append(rest, p)
		}
		rest = append(rest, word[i+1:]...)
		return prefix, rest
	}
	return prefix, rest
}

type lineMetrics struct {
	width, height, ascent float64
}

// measureRuns 计算一行的宽度与高度：宽度为各片段宽度之和减去行首字形的左侧支承，
// 行高取所有片段 (ascent+descent+lineGap)*行距 的最大值。
func measureRuns(ctx *Context, runs []StyledString) (lineMetrics, error) {
	var lm lineMetrics
	for i, run := range runs {
		m, err := run.Style.Metrics(ctx.Fonts)
		if err != nil {
			return lm, err
		}
		size := run.Style.FontSize()
		w, err := m.TextWidth(run.Text, size)
		if err != nil {
			return lm, err
		}
		if i == 0 {
			lsb, err := m.FirstBearing(run.Text, size)
			if err != nil {
				return lm, err
			}
			w -= lsb
		}
		lm.width += w
		lm.height = math.Max(lm.height, m.LineHeight(size)*run.Style.Spacing())
		lm.ascent = math.Max(lm.ascent, m.Ascent(size))
	}
	return lm, nil
}

type wrapper struct {
	ctx      *Context
	width    float64
	lines    []Line
	cur      []piece
	spaces   int
	space    *Style // 当前行与下一个单词之间待定的空格
	overflow bool
	style    Style // 空行使用的样式
}

// Wrap 按单词边界把片段贪心地折成宽度不超过 width 的行。
//
// 放不下的单词会先尝试断词（前缀加连字符放在本行），否则移到下一行；
// 比整行还宽的单词单独成行并标记 Overflow。"\n" 强制换行。
func Wrap(ctx *Context, runs []StyledString, width float64) ([]Line, error) {
	if len(runs) == 0 {
		return nil, nil
	}
	w := &wrapper{ctx: ctx, width: width, style: runs[0].Style}
	items := tokenize(runs)
	for _, it := range items {
		switch it.kind {
		case itemSpace:
			if len(w.cur) > 0 {
				s := it.style
				w.space = &s
			}
		case itemNewline:
			if err := w.finish("\n", it.style, false); err != nil {
				return nil, err
			}
			w.style = it.style
		case itemWord:
			if err := w.addWord(it.word); err != nil {
				return nil, err
			}
		}
	}
	if len(w.cur) > 0 || len(w.lines) == 0 {
		if err := w.finish("", w.style, false); err != nil {
			return nil, err
		}
	}
	w.lines[len(w.lines)-1].End = true
	return w.lines, nil
}

func (w *wrapper) candidate(word []piece) ([]piece, bool) {
	out := make([]piece, 0, len(w.cur)+len(word)+1)
	out = append(out, w.cur...)
	spaced := false
	if len(w.cur) > 0 && w.space != nil {
		out = append(out, piece{" ", *w.space})
		spaced = true
	}
	return append(out, word...), spaced
}

func (w *wrapper) measure(pieces []piece) (lineMetrics, error) {
	return measureRuns(w.ctx, mergePieces(pieces))
}

func (w *wrapper) accept(word []piece) {
	cand, spaced := w.candidate(word)
	if spaced {
		w.spaces++
	}
	w.cur = cand
	w.space = nil
}

func (w *wrapper) addWord(word []piece) error {
	for len(word) > 0 {
		cand, _ := w.candidate(word)
		lm, err := w.measure(cand)
		if err != nil {
			return err
		}
		if lm.width <= w.width+epsilon && !w.overflow {
			w.accept(word)
			return nil
		}
		prefix, rest, err := w.hyphenate(word)
		if err != nil {
			return err
		}
		if prefix != nil {
			w.accept(prefix)
			if err := w.finish("", prefix[len(prefix)-1].style, true); err != nil {
				return err
			}
			word = rest
			continue
		}
		if len(w.cur) == 0 {
			w.accept(word)
			w.overflow = true
			return nil
		}
		sepStyle := w.style
		if w.space != nil {
			sepStyle = *w.space
		}
		if err := w.finish(" ", sepStyle, false); err != nil {
			return err
		}
	}
	return nil
}

// hyphenate 找出能放进当前行的最长断词前缀。只对单词首尾标点之间的字母部分断词。
func (w *wrapper) hyphenate(word []piece) (prefix, rest []piece, err error) {
	if w.ctx.Hyphenator == nil || w.overflow {
		return nil, nil, nil
	}
	runes := []rune(joinPieces(word))
	lead, trail := 0, len(runes)
	for lead < trail && !unicode.IsLetter(runes[lead]) {
		lead++
	}
	for trail > lead && !unicode.IsLetter(runes[trail-1]) {
		trail--
	}
	if trail-lead < 2 {
		return nil, nil, nil
	}
	offsets := w.ctx.Hyphenator.Hyphenate(string(runes[lead:trail]), w.ctx.Locale)
	for i := len(offsets) - 1; i >= 0; i-- {
		if offsets[i] <= 0 || offsets[i] >= trail-lead {
			continue
		}
		pre, post := splitPieces(word, lead+offsets[i])
		withHyphen := append(append([]piece(nil), pre...), piece{"-", pre[len(pre)-1].style})
		cand, _ := w.candidate(withHyphen)
		lm, err := w.measure(cand)
		if err != nil {
			return nil, nil, err
		}
		if lm.width <= w.width+epsilon {
			return pre, post, nil
		}
	}
	return nil, nil, nil
}

func (w *wrapper) finish(sep string, sepStyle Style, hyphenated bool) error {
	drawn := w.cur
	if hyphenated && len(drawn) > 0 {
		drawn = append(append([]piece(nil), drawn...), piece{"-", drawn[len(drawn)-1].style})
	}
	line := Line{
		Runs:       mergePieces(drawn),
		Source:     mergePieces(w.cur),
		Sep:        sep,
		SepStyle:   sepStyle,
		Spaces:     w.spaces,
		Overflow:   w.overflow,
		Hyphenated: hyphenated,
		End:        sep == "\n",
	}
	if len(line.Runs) > 0 {
		lm, err := measureRuns(w.ctx, line.Runs)
		if err != nil {
			return err
		}
		line.Width, line.Height, line.Ascent = lm.width, lm.height, lm.ascent
	} else {
		// 空行使用换行符所在片段的样式
		m, err := sepStyle.Metrics(w.ctx.Fonts)
		if err != nil {
			return err
		}
		size := sepStyle.FontSize()
		line.Height = m.LineHeight(size) * sepStyle.Spacing()
		line.Ascent = m.Ascent(size)
	}
	w.lines = append(w.lines, line)
	w.cur, w.spaces, w.space, w.overflow = nil, 0, nil, false
	return nil
}
