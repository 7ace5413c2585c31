package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/text/language"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/hyphen"
	"github.com/ByLCY/folio/images"
	"github.com/ByLCY/folio/logger"
)

const (
	defaultFamily    = "Body"
	defaultMargin    = 20.0
	defaultHeaderGap = 3.0
)

type builder struct {
	opts   BuildOptions
	scope  *binding.Scope
	styles map[string]Style
	cache  *fonts.Cache
}

// Build 根据 markup AST 与 JSON 数据构建文档，文本中的 ${path} 从 data 取值。
// 页眉页脚中还可以使用 ${page}。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	page := doc.Page()
	if page == nil {
		return nil, fmt.Errorf("文档中缺少 page 段落")
	}
	if opts.LoadImage == nil {
		opts.LoadImage = images.Load
	}
	b := &builder{
		opts:   opts,
		scope:  binding.New(data),
		styles: map[string]Style{},
		cache:  fonts.NewCache(opts.Parser),
	}
	b.cache.SetBaseDir(opts.BaseDir)

	family, err := b.registerFonts(doc)
	if err != nil {
		return nil, err
	}
	if err := b.collectStyles(doc); err != nil {
		return nil, err
	}

	out := NewDocument(b.cache, family)
	out.SetMeta(b.collectMeta(doc))
	out.SetMaxPages(opts.MaxPages)
	if err := b.applySettings(out, page.Block.Assignments()); err != nil {
		return nil, err
	}
	margins, err := b.setupPage(out, page)
	if err != nil {
		return nil, err
	}
	if err := b.decorate(out, page, margins); err != nil {
		return nil, err
	}

	var body []*dsl.Statement
	for _, st := range page.Block.Statements {
		if st.Assignment != nil || (st.Command != nil && isPageLevel(st.Command.Name)) {
			continue
		}
		body = append(body, st)
	}
	elements, err := b.flow(body, b.scope)
	if err != nil {
		return nil, err
	}
	for _, el := range elements {
		out.Push(el)
	}
	logger.ProgressLogger.Printf("构建完成: %d 个顶层元素", out.Len())
	return out, nil
}

func isPageLevel(name string) bool {
	switch strings.ToLower(name) {
	case "header", "footer":
		return true
	}
	return false
}

func (b *builder) registerFonts(doc *dsl.Document) (string, error) {
	decls := doc.Declarations("family")
	if len(decls) == 0 {
		if err := b.cache.Register(fonts.GoFamily(defaultFamily)); err != nil {
			return "", err
		}
		return defaultFamily, nil
	}
	first := ""
	for _, cmd := range decls {
		fam, err := parseFamily(cmd)
		if err != nil {
			return "", err
		}
		if err := b.cache.Register(fam); err != nil {
			return "", fmt.Errorf("%s: 注册字体族 %s 失败: %w", cmd.Pos, fam.Name, err)
		}
		if first == "" {
			first = fam.Name
		}
	}
	return first, nil
}

// parseFamily 支持两种写法：family Body go（内置字体族）或
// family Body { regular: "..." bold: "..." builtin: true }。
func parseFamily(cmd *dsl.Command) (fonts.Family, error) {
	if len(cmd.Args) == 0 {
		return fonts.Family{}, dsl.Errorf(cmd.Pos, "family 缺少名称")
	}
	name := cmd.Args[0].Value
	if len(cmd.Args) > 1 {
		switch strings.ToLower(cmd.Args[1].Value) {
		case "go":
			return fonts.GoFamily(name), nil
		case "lm", "latin-modern":
			return fonts.LatinModernFamily(name), nil
		default:
			return fonts.Family{}, dsl.Errorf(cmd.Args[1].Pos, "未知的内置字体族 %s", cmd.Args[1].Value)
		}
	}
	props := cmd.Block.Assignments()
	builtin := props["builtin"].Bool()
	src := func(key string) fonts.Source {
		v, ok := props[key]
		if !ok {
			return fonts.Source{}
		}
		return fonts.Source{Path: v.Text(), Builtin: builtin}
	}
	return fonts.Family{
		Name:       name,
		Regular:    src("regular"),
		Bold:       src("bold"),
		Italic:     src("italic"),
		BoldItalic: src("bold-italic"),
	}, nil
}

func (b *builder) collectStyles(doc *dsl.Document) error {
	for _, cmd := range doc.Declarations("style") {
		if len(cmd.Args) == 0 {
			return dsl.Errorf(cmd.Pos, "style 缺少名称")
		}
		name := cmd.Args[0].Value
		s, err := b.styleFromProps(cmd.Block.Assignments())
		if err != nil {
			return fmt.Errorf("%s: 样式 %s: %w", cmd.Pos, name, err)
		}
		b.styles[name] = s
	}
	return nil
}

// styleFromProps 读取 style 声明或 page 设置中的样式属性；extends 引用先前声明的样式。
func (b *builder) styleFromProps(props map[string]*dsl.Value) (Style, error) {
	var base, s Style
	if v, ok := props["extends"]; ok {
		parent, found := b.styles[v.Text()]
		if !found {
			return s, fmt.Errorf("%w: 未定义的样式 %s", ErrInvalidStyleReference, v.Text())
		}
		base = parent
	}
	for _, key := range []string{"family", "font"} {
		if v, ok := props[key]; ok {
			s.Family = v.Text()
		}
	}
	if v, ok := props["size"]; ok {
		l, err := ParseLength(v.Text())
		if err != nil {
			return s, err
		}
		s.Size = l.ToPT()
	}
	s.Bold = props["bold"].Bool()
	s.Italic = props["italic"].Bool()
	s.Underline = props["underline"].Bool()
	s.Strikethrough = props["strikethrough"].Bool()
	if v, ok := props["color"]; ok {
		c, err := ParseColor(v.Text())
		if err != nil {
			return s, err
		}
		s = s.WithColor(c)
	}
	if v, ok := props["line-spacing"]; ok {
		f, err := strconv.ParseFloat(v.Text(), 64)
		if err != nil {
			return s, fmt.Errorf("无法解析行距 %q: %w", v.Text(), err)
		}
		s.LineSpacing = f
	}
	return base.Merge(s), nil
}

func (b *builder) collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{Creator: "folio"}
	for key, v := range doc.Meta() {
		switch key {
		case "title":
			meta.Title = b.scope.Interpolate(v.Text())
		case "author":
			meta.Author = b.scope.Interpolate(v.Text())
		case "subject":
			meta.Subject = b.scope.Interpolate(v.Text())
		case "creator":
			meta.Creator = v.Text()
		case "keywords":
			meta.Keywords = v.Strings()
		}
	}
	return meta
}

// applySettings 处理 page 块中的赋值：默认样式、语言与断词模式。
func (b *builder) applySettings(out *Document, settings map[string]*dsl.Value) error {
	s, err := b.styleFromProps(settings)
	if err != nil {
		return fmt.Errorf("page 设置: %w", err)
	}
	out.SetStyle(s)

	tag := language.English
	if v, ok := settings["lang"]; ok {
		if tag, err = language.Parse(v.Text()); err != nil {
			return fmt.Errorf("page 设置: 无法解析语言 %q: %w", v.Text(), err)
		}
		out.SetLocale(tag)
	}
	if v, ok := settings["hyphenate"]; ok {
		path := b.resolve(v.Text())
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("page 设置: 读取断词模式失败: %w", err)
		}
		patterns, err := hyphen.ReadPatterns(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("page 设置: %s: %w", path, err)
		}
		dict := hyphen.NewDictionary()
		dict.Add(tag, patterns)
		out.SetHyphenator(dict)
	}
	if b.opts.Hyphenator != nil {
		out.SetHyphenator(b.opts.Hyphenator)
	}
	return nil
}

// setupPage 解析 page 行的参数：纸张、方向、页边距与元素间距。
func (b *builder) setupPage(out *Document, page *dsl.PageSection) (Margins, error) {
	a := parseArgs(page.Pos, page.Params)
	paper, _ := PaperSize("A4")
	for _, f := range a.flags {
		if s, ok := PaperSize(f); ok {
			paper = s
		}
	}
	var err error
	if paper.Width, err = a.mm("width", paper.Width); err != nil {
		return Margins{}, err
	}
	if paper.Height, err = a.mm("height", paper.Height); err != nil {
		return Margins{}, err
	}
	if a.flag("landscape") && paper.Width < paper.Height {
		paper.Width, paper.Height = paper.Height, paper.Width
	}
	out.SetPaperSize(paper)

	margins := UniformMargins(defaultMargin)
	vals, err := a.lengths("margin")
	if err != nil {
		return Margins{}, err
	}
	if len(vals) > 0 {
		margins = boxMargins(vals)
	}
	spacing, err := a.mm("spacing", 0)
	if err != nil {
		return Margins{}, err
	}
	out.SetSpacing(spacing)
	return margins, nil
}

// boxMargins 按 CSS 的顺序解释 1~4 个值：上、右、下、左。
func boxMargins(v []float64) Margins {
	switch len(v) {
	case 0:
		return Margins{}
	case 1:
		return UniformMargins(v[0])
	case 2:
		return SymmetricMargins(v[0], v[1])
	case 3:
		return Margins{Top: v[0], Right: v[1], Bottom: v[2], Left: v[1]}
	default:
		return Margins{Top: v[0], Right: v[1], Bottom: v[2], Left: v[3]}
	}
}

func (b *builder) decorate(out *Document, page *dsl.PageSection, margins Margins) error {
	deco := NewSimplePageDecorator(margins)
	for _, cmd := range page.Block.Commands() {
		name := strings.ToLower(cmd.Name)
		if !isPageLevel(name) {
			continue
		}
		a := parseArgs(cmd.Pos, cmd.Args)
		render := b.pageText(cmd)
		// 先用第 1 页构建一次，让 markup 错误在 Build 阶段暴露
		if _, err := render(1); err != nil {
			return err
		}
		var err error
		switch name {
		case "header":
			deco.Header = render.element
			deco.HeaderGap, err = a.mm("gap", defaultHeaderGap)
		case "footer":
			deco.Footer = render.element
			deco.FooterHeight, err = a.mm("height", 0)
			if err == nil && deco.FooterHeight <= 0 {
				style, serr := b.styleFromArgs(a)
				if serr != nil {
					return serr
				}
				deco.FooterHeight, err = out.Style().Merge(style).LineHeight(b.cache)
			}
		}
		if err != nil {
			return err
		}
	}
	out.SetPageDecorator(deco)
	return nil
}

type pageText func(page int) (Element, error)

func (b *builder) pageText(cmd *dsl.Command) pageText {
	return func(page int) (Element, error) {
		return b.paragraph(cmd, b.scope.With("page", page))
	}
}

func (r pageText) element(page int) Element {
	el, err := r(page)
	if err != nil {
		logger.WarningLogger.Printf("第 %d 页的页眉/页脚: %v", page, err)
		return nil
	}
	return el
}

func (b *builder) resolve(path string) string {
	if b.opts.BaseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(b.opts.BaseDir, path)
}

type scopedStatement struct {
	st    *dsl.Statement
	scope *binding.Scope
}

// expand 展开 each <变量> in <路径> { ... } 循环，其余语句原样保留。
func (b *builder) expand(stmts []*dsl.Statement, scope *binding.Scope) ([]scopedStatement, error) {
	var out []scopedStatement
	for _, st := range stmts {
		cmd := st.Command
		if cmd == nil || strings.ToLower(cmd.Name) != "each" {
			out = append(out, scopedStatement{st, scope})
			continue
		}
		if len(cmd.Args) < 3 || cmd.Args[1].Value != "in" {
			return nil, dsl.Errorf(cmd.Pos, "each 的写法是 each <变量> in <路径>")
		}
		var path strings.Builder
		for _, l := range cmd.Args[2:] {
			path.WriteString(l.Raw)
		}
		items, err := scope.Items(path.String())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cmd.Pos, err)
		}
		for _, it := range items {
			nested, err := b.expand(cmd.Statements(), scope.With(cmd.Args[0].Value, it))
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		}
	}
	return out, nil
}

// flow 把语句序列构建为纵向排列的元素，块内直接出现的文本各自成段。
func (b *builder) flow(stmts []*dsl.Statement, scope *binding.Scope) ([]Element, error) {
	items, err := b.expand(stmts, scope)
	if err != nil {
		return nil, err
	}
	var out []Element
	for _, it := range items {
		switch {
		case it.st.Text != nil:
			out = append(out, NewParagraph(it.scope.Interpolate(string(it.st.Text.Value))))
		case it.st.Command != nil:
			el, err := b.element(it.st.Command, it.scope)
			if err != nil {
				return nil, err
			}
			if el != nil {
				out = append(out, el)
			}
		case it.st.Assignment != nil:
			logger.WarningLogger.Printf("%s: 忽略赋值 %s", it.st.Assignment.Pos, it.st.Assignment.Key)
		}
	}
	return out, nil
}

func (b *builder) element(cmd *dsl.Command, scope *binding.Scope) (Element, error) {
	switch name := strings.ToLower(cmd.Name); name {
	case "paragraph", "p":
		return b.paragraph(cmd, scope)
	case "text":
		return b.text(cmd, scope)
	case "list":
		return b.list(cmd, scope)
	case "table":
		return b.table(cmd, scope)
	case "image":
		return b.image(cmd, scope)
	case "frame":
		return b.frame(cmd, scope)
	case "shape":
		return b.shape(cmd)
	case "block":
		return b.block(cmd, scope)
	case "pad":
		return b.pad(cmd, scope)
	case "break":
		return b.lineBreak(cmd)
	case "pagebreak":
		return NewPageBreak(), nil
	case "header", "footer":
		logger.WarningLogger.Printf("%s: %s 只能出现在 page 块的顶层", cmd.Pos, name)
		return nil, nil
	default:
		logger.WarningLogger.Printf("%s: 忽略未知命令 %s", cmd.Pos, cmd.Name)
		return nil, nil
	}
}

// group 把多个元素合成一个，单个元素原样返回。
func group(els []Element) Element {
	if len(els) == 1 {
		return els[0]
	}
	return NewLinearLayout(els...)
}

func (b *builder) paragraph(cmd *dsl.Command, scope *binding.Scope) (*Paragraph, error) {
	a := parseArgs(cmd.Pos, cmd.Args)
	style, err := b.styleFromArgs(a)
	if err != nil {
		return nil, err
	}
	align, err := a.alignment()
	if err != nil {
		return nil, err
	}
	p := NewParagraph("").WithStyle(style).Aligned(align)
	for _, s := range a.strings() {
		p.Push(scope.Interpolate(s))
	}
	runs, err := b.inline(cmd.Statements(), scope, Style{})
	if err != nil {
		return nil, err
	}
	for _, r := range runs {
		p.PushStyled(r.Text, r.Style)
	}
	return p, nil
}

// inline 收集段落内的文本片段：字符串、span 与 br。
func (b *builder) inline(stmts []*dsl.Statement, scope *binding.Scope, style Style) ([]StyledString, error) {
	items, err := b.expand(stmts, scope)
	if err != nil {
		return nil, err
	}
	var out []StyledString
	for _, it := range items {
		if it.st.Text != nil {
			out = append(out, StyledString{Text: it.scope.Interpolate(string(it.st.Text.Value)), Style: style})
			continue
		}
		cmd := it.st.Command
		if cmd == nil {
			continue
		}
		switch strings.ToLower(cmd.Name) {
		case "span":
			a := parseArgs(cmd.Pos, cmd.Args)
			s, err := b.styleFromArgs(a)
			if err != nil {
				return nil, err
			}
			s = style.Merge(s)
			for _, text := range a.strings() {
				out = append(out, StyledString{Text: it.scope.Interpolate(text), Style: s})
			}
			nested, err := b.inline(cmd.Statements(), it.scope, s)
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		case "br":
			out = append(out, StyledString{Text: "\n", Style: style})
		default:
			logger.WarningLogger.Printf("%s: 段落内忽略命令 %s", cmd.Pos, cmd.Name)
		}
	}
	return out, nil
}

func (b *builder) text(cmd *dsl.Command, scope *binding.Scope) (Element, error) {
	a := parseArgs(cmd.Pos, cmd.Args)
	style, err := b.styleFromArgs(a)
	if err != nil {
		return nil, err
	}
	content := strings.Join(a.strings(), "") + cmd.Text()
	return NewText(scope.Interpolate(content), style), nil
}

// withStyle 在样式非空时包一层 StyledElement。
func withStyle(el Element, s Style) Element {
	if s == (Style{}) {
		return el
	}
	return NewStyledElement(el, s)
}

func (b *builder) list(cmd *dsl.Command, scope *binding.Scope) (Element, error) {
	a := parseArgs(cmd.Pos, cmd.Args)
	style, err := b.styleFromArgs(a)
	if err != nil {
		return nil, err
	}
	var l *List
	if a.flag("ordered") {
		l = NewOrderedList()
	} else {
		bullet, _ := a.str("bullet")
		l = NewUnorderedList(bullet)
	}
	items, err := b.expand(cmd.Statements(), scope)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		switch {
		case it.st.Text != nil:
			l.Push(NewParagraph(it.scope.Interpolate(string(it.st.Text.Value))))
		case it.st.Command != nil && strings.ToLower(it.st.Command.Name) == "item":
			item := it.st.Command
			var els []Element
			for _, s := range parseArgs(item.Pos, item.Args).strings() {
				els = append(els, NewParagraph(it.scope.Interpolate(s)))
			}
			body, err := b.flow(item.Statements(), it.scope)
			if err != nil {
				return nil, err
			}
			if els = append(els, body...); len(els) > 0 {
				l.Push(els...)
			}
		case it.st.Command != nil:
			el, err := b.element(it.st.Command, it.scope)
			if err != nil {
				return nil, err
			}
			if el != nil {
				l.Push(el)
			}
		}
	}
	if v, ok := a.str("start"); ok && l.ordered {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, dsl.Errorf(cmd.Pos, "无法解析起始编号 %q", v)
		}
		l.WithStart(n)
	}
	return withStyle(l, style), nil
}

type tableRow struct {
	pos   lexer.Position
	cells []TableCell
}

func (b *builder) table(cmd *dsl.Command, scope *binding.Scope) (Element, error) {
	a := parseArgs(cmd.Pos, cmd.Args)
	style, err := b.styleFromArgs(a)
	if err != nil {
		return nil, err
	}
	items, err := b.expand(cmd.Statements(), scope)
	if err != nil {
		return nil, err
	}
	var rows []tableRow
	for _, it := range items {
		row := it.st.Command
		if row == nil || strings.ToLower(row.Name) != "row" {
			logger.WarningLogger.Printf("%s: 表格中只能包含 row", cmd.Pos)
			continue
		}
		cells, err := b.row(row, it.scope)
		if err != nil {
			return nil, err
		}
		rows = append(rows, tableRow{row.Pos, cells})
	}

	weights, err := a.numbers("weights")
	if err != nil {
		return nil, err
	}
	widths, err := a.lengths("widths")
	if err != nil {
		return nil, err
	}
	var t *Table
	switch {
	case len(widths) > 0:
		t = NewFixedTable(widths...)
	case len(weights) > 0:
		t = NewTable(weights...)
	default:
		n := 1
		if len(rows) > 0 {
			n = len(rows[0].cells)
		}
		if v, ok := a.str("columns"); ok {
			if n, err = strconv.Atoi(v); err != nil || n <= 0 {
				return nil, dsl.Errorf(cmd.Pos, "无法解析列数 %q", v)
			}
		}
		equal := make([]float64, n)
		for i := range equal {
			equal[i] = 1
		}
		t = NewTable(equal...)
	}

	inner, outer := false, false
	line := DefaultLineStyle()
	if v, ok := a.str("border"); ok && v != "none" {
		inner, outer = true, true
		if line.Thickness, err = a.mm("border", line.Thickness); err != nil {
			return nil, err
		}
	}
	if _, ok := a.str("outline"); ok {
		outer = true
		if line.Thickness, err = a.mm("outline", line.Thickness); err != nil {
			return nil, err
		}
	}
	if c, err := a.color("border-color"); err != nil {
		return nil, err
	} else if c != nil {
		line.Color = *c
	}
	if inner || outer {
		d := NewFrameCellDecorator(inner, outer, a.flag("continuation"))
		d.Line = line
		t.SetDecorator(d)
	}

	for _, r := range rows {
		if err := t.PushCells(r.cells...); err != nil {
			return nil, fmt.Errorf("%s: %w", r.pos, err)
		}
	}
	return withStyle(t, style), nil
}

func (b *builder) row(cmd *dsl.Command, scope *binding.Scope) ([]TableCell, error) {
	rowStyle, err := b.styleFromArgs(parseArgs(cmd.Pos, cmd.Args))
	if err != nil {
		return nil, err
	}
	items, err := b.expand(cmd.Statements(), scope)
	if err != nil {
		return nil, err
	}
	var cells []TableCell
	for _, it := range items {
		if it.st.Text != nil {
			p := NewParagraph(it.scope.Interpolate(string(it.st.Text.Value)))
			cells = append(cells, TableCell{Element: withStyle(p, rowStyle)})
			continue
		}
		cmd := it.st.Command
		if cmd == nil || strings.ToLower(cmd.Name) != "cell" {
			continue
		}
		tc, err := b.cell(cmd, it.scope, rowStyle)
		if err != nil {
			return nil, err
		}
		cells = append(cells, tc)
	}
	return cells, nil
}

func (b *builder) cell(cmd *dsl.Command, scope *binding.Scope, rowStyle Style) (TableCell, error) {
	a := parseArgs(cmd.Pos, cmd.Args)
	style, err := b.styleFromArgs(a)
	if err != nil {
		return TableCell{}, err
	}
	align, err := a.alignment()
	if err != nil {
		return TableCell{}, err
	}
	var els []Element
	for _, s := range a.strings() {
		els = append(els, NewParagraph(scope.Interpolate(s)).Aligned(align))
	}
	items, err := b.expand(cmd.Statements(), scope)
	if err != nil {
		return TableCell{}, err
	}
	for _, it := range items {
		if it.st.Text != nil {
			els = append(els, NewParagraph(it.scope.Interpolate(string(it.st.Text.Value))).Aligned(align))
			continue
		}
		if it.st.Command != nil {
			el, err := b.element(it.st.Command, it.scope)
			if err != nil {
				return TableCell{}, err
			}
			if el != nil {
				els = append(els, el)
			}
		}
	}
	var content Element = NewParagraph("")
	if len(els) > 0 {
		content = group(els)
	}
	padding, err := a.mm("padding", 0)
	if err != nil {
		return TableCell{}, err
	}
	if padding > 0 {
		content = NewPadded(content, UniformMargins(padding))
	}
	tc := TableCell{Element: withStyle(content, rowStyle.Merge(style))}
	if _, ok := a.str("border"); ok {
		line, err := b.lineStyle(a, "border")
		if err != nil {
			return TableCell{}, err
		}
		tc.Border = &line
	}
	return tc, nil
}

func (b *builder) image(cmd *dsl.Command, scope *binding.Scope) (Element, error) {
	a := parseArgs(cmd.Pos, cmd.Args)
	srcs := a.strings()
	if len(srcs) == 0 {
		return nil, dsl.Errorf(cmd.Pos, "image 缺少图片路径")
	}
	source := scope.Interpolate(srcs[0])
	img, err := b.opts.LoadImage(b.resolve(source))
	if err != nil {
		return nil, fmt.Errorf("%s: 加载图片 %s 失败: %w", cmd.Pos, source, err)
	}
	el := NewImage(img, source)
	scale, err := a.number("scale", 1)
	if err != nil {
		return nil, err
	}
	if el.ScaleX, err = a.number("scale-x", scale); err != nil {
		return nil, err
	}
	if el.ScaleY, err = a.number("scale-y", scale); err != nil {
		return nil, err
	}
	if el.DPI, err = a.number("dpi", DefaultDPI); err != nil {
		return nil, err
	}
	if el.Rotation, err = a.number("rotate", 0); err != nil {
		return nil, err
	}
	if el.Alignment, err = a.alignment(); err != nil {
		return nil, err
	}
	at, err := a.lengths("at")
	if err != nil {
		return nil, err
	}
	if len(at) == 2 {
		el.Position = &Position{X: at[0], Y: at[1]}
	}
	return el, nil
}

// lineStyle 读取线宽（thicknessKey）、color 与 dash 参数。
func (b *builder) lineStyle(a *args, thicknessKey string) (LineStyle, error) {
	line := DefaultLineStyle()
	var err error
	if line.Thickness, err = a.mm(thicknessKey, line.Thickness); err != nil {
		return line, err
	}
	c, err := a.color("color")
	if err != nil {
		return line, err
	}
	if c != nil {
		line.Color = *c
	}
	if line.Dashes, err = a.lengths("dash"); err != nil {
		return line, err
	}
	return line, nil
}

func (b *builder) frame(cmd *dsl.Command, scope *binding.Scope) (Element, error) {
	a := parseArgs(cmd.Pos, cmd.Args)
	els, err := b.flow(cmd.Statements(), scope)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, dsl.Errorf(cmd.Pos, "frame 缺少内容")
	}
	f := NewFrame(group(els))
	if f.Line, err = b.lineStyle(a, "thickness"); err != nil {
		return nil, err
	}
	if f.Padding, err = a.mm("padding", f.Padding); err != nil {
		return nil, err
	}
	style, err := b.styleFromArgs(a)
	if err != nil {
		return nil, err
	}
	return withStyle(f, style), nil
}

func (b *builder) shape(cmd *dsl.Command) (Element, error) {
	a := parseArgs(cmd.Pos, cmd.Args)
	s := &Shape{Kind: ShapeRect}
	for _, f := range a.flags {
		if k, ok := ParseShapeKind(f); ok {
			s.Kind = k
			break
		}
	}
	var err error
	if s.Width, err = a.mm("width", 0); err != nil {
		return nil, err
	}
	if s.Height, err = a.mm("height", 0); err != nil {
		return nil, err
	}
	if s.Line, err = b.lineStyle(a, "thickness"); err != nil {
		return nil, err
	}
	if s.Fill, err = a.color("fill"); err != nil {
		return nil, err
	}
	if s.Alignment, err = a.alignment(); err != nil {
		return nil, err
	}
	if s.Kind != ShapeRule && s.Height <= 0 {
		return nil, dsl.Errorf(cmd.Pos, "shape 需要 height")
	}
	return s, nil
}

func (b *builder) block(cmd *dsl.Command, scope *binding.Scope) (Element, error) {
	a := parseArgs(cmd.Pos, cmd.Args)
	style, err := b.styleFromArgs(a)
	if err != nil {
		return nil, err
	}
	els, err := b.flow(cmd.Statements(), scope)
	if err != nil {
		return nil, err
	}
	spacing, err := a.mm("spacing", 0)
	if err != nil {
		return nil, err
	}
	return withStyle(NewLinearLayout(els...).WithSpacing(spacing), style), nil
}

func (b *builder) pad(cmd *dsl.Command, scope *binding.Scope) (Element, error) {
	a := parseArgs(cmd.Pos, cmd.Args)
	var vals []float64
	for _, l := range a.rest {
		v, err := ParseLength(l.Value)
		if err != nil {
			return nil, dsl.Errorf(l.Pos, "pad: %v", err)
		}
		vals = append(vals, v.ToMM())
	}
	els, err := b.flow(cmd.Statements(), scope)
	if err != nil {
		return nil, err
	}
	return NewPadded(NewLinearLayout(els...), boxMargins(vals)), nil
}

func (b *builder) lineBreak(cmd *dsl.Command) (Element, error) {
	lines := 1.0
	if len(cmd.Args) > 0 {
		v, err := strconv.ParseFloat(cmd.Args[0].Value, 64)
		if err != nil {
			return nil, dsl.Errorf(cmd.Args[0].Pos, "无法解析空行数 %q", cmd.Args[0].Value)
		}
		lines = v
	}
	return NewBreak(lines), nil
}

// styleFromArgs 读取命令参数中的样式：style <名称>、font、size、color、line-spacing
// 以及 bold/italic/underline/strikethrough 标记。
func (b *builder) styleFromArgs(a *args) (Style, error) {
	var base, s Style
	if name, ok := a.str("style"); ok {
		named, found := b.styles[name]
		if !found {
			return s, fmt.Errorf("%s: %w: 未定义的样式 %s", a.pos, ErrInvalidStyleReference, name)
		}
		base = named
	}
	s.Family, _ = a.str("font")
	if l, ok, err := a.length("size"); err != nil {
		return s, err
	} else if ok {
		s.Size = l.ToPT()
	}
	s.Bold = a.flag("bold")
	s.Italic = a.flag("italic")
	s.Underline = a.flag("underline")
	s.Strikethrough = a.flag("strikethrough") || a.flag("strike")
	c, err := a.color("color")
	if err != nil {
		return s, err
	}
	if c != nil {
		s = s.WithColor(*c)
	}
	if s.LineSpacing, err = a.number("line-spacing", 0); err != nil {
		return s, err
	}
	return base.Merge(s), nil
}

// argArity 列出带值的参数名及其取值个数，-1 表示取后续全部数字或一个 [ ... ] 列表。
var argArity = map[string]int{
	"style": 1, "font": 1, "size": 1, "color": 1, "line-spacing": 1, "align": 1,
	"start": 1, "bullet": 1, "columns": 1, "border": 1, "outline": 1, "border-color": 1,
	"scale": 1, "scale-x": 1, "scale-y": 1, "dpi": 1, "rotate": 1,
	"thickness": 1, "padding": 1, "fill": 1, "width": 1, "height": 1, "gap": 1, "spacing": 1,
	"at": 2,
	"margin": -1, "weights": -1, "widths": -1, "dash": -1,
}

// args 是解析后的命令参数：带值参数、标记（其余标识符）与位置参数。
type args struct {
	pos    lexer.Position
	flags  []string
	values map[string][]*dsl.Lexeme
	rest   []*dsl.Lexeme
}

func parseArgs(pos lexer.Position, lexemes []*dsl.Lexeme) *args {
	a := &args{pos: pos, values: map[string][]*dsl.Lexeme{}}
	for i := 0; i < len(lexemes); i++ {
		l := lexemes[i]
		key := strings.ToLower(l.Value)
		n, keyed := argArity[key]
		if l.Type != "Ident" || !keyed {
			if l.Type == "Ident" {
				a.flags = append(a.flags, key)
			} else {
				a.rest = append(a.rest, l)
			}
			continue
		}
		var vals []*dsl.Lexeme
		switch {
		case n > 0:
			for j := 0; j < n && i+1 < len(lexemes); j++ {
				i++
				vals = append(vals, lexemes[i])
			}
		case i+1 < len(lexemes) && lexemes[i+1].Value == "[":
			for i++; i+1 < len(lexemes); {
				i++
				if lexemes[i].Value == "]" {
					break
				}
				if lexemes[i].Value != "," {
					vals = append(vals, lexemes[i])
				}
			}
		default:
			for i+1 < len(lexemes) && lexemes[i+1].IsNumber() {
				i++
				vals = append(vals, lexemes[i])
			}
		}
		a.values[key] = vals
	}
	return a
}

func (a *args) flag(name string) bool {
	for _, f := range a.flags {
		if f == name {
			return true
		}
	}
	return false
}

func (a *args) str(key string) (string, bool) {
	v := a.values[key]
	if len(v) == 0 {
		return "", false
	}
	return v[0].Value, true
}

// strings 返回位置参数中的字符串。
func (a *args) strings() []string {
	var out []string
	for _, l := range a.rest {
		if l.Type == "String" {
			out = append(out, l.Value)
		}
	}
	return out
}

func (a *args) length(key string) (Length, bool, error) {
	s, ok := a.str(key)
	if !ok {
		return Length{}, false, nil
	}
	l, err := ParseLength(s)
	if err != nil {
		return Length{}, true, dsl.Errorf(a.values[key][0].Pos, "%s: %v", key, err)
	}
	return l, true, nil
}

// mm 返回长度参数的毫米值，没有单位时按毫米处理。
func (a *args) mm(key string, def float64) (float64, error) {
	l, ok, err := a.length(key)
	if err != nil || !ok {
		return def, err
	}
	return l.ToMM(), nil
}

func (a *args) number(key string, def float64) (float64, error) {
	s, ok := a.str(key)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return def, dsl.Errorf(a.values[key][0].Pos, "%s: 无法解析数字 %q", key, s)
	}
	return f, nil
}

func (a *args) numbers(key string) ([]float64, error) {
	var out []float64
	for _, l := range a.values[key] {
		f, err := strconv.ParseFloat(strings.TrimSuffix(l.Value, "%"), 64)
		if err != nil {
			return nil, dsl.Errorf(l.Pos, "%s: 无法解析数字 %q", key, l.Value)
		}
		out = append(out, f)
	}
	return out, nil
}

func (a *args) lengths(key string) ([]float64, error) {
	var out []float64
	for _, l := range a.values[key] {
		v, err := ParseLength(l.Value)
		if err != nil {
			return nil, dsl.Errorf(l.Pos, "%s: %v", key, err)
		}
		out = append(out, v.ToMM())
	}
	return out, nil
}

func (a *args) color(key string) (*Color, error) {
	s, ok := a.str(key)
	if !ok {
		return nil, nil
	}
	c, err := ParseColor(s)
	if err != nil {
		return nil, dsl.Errorf(a.values[key][0].Pos, "%s: %v", key, err)
	}
	return &c, nil
}

func (a *args) alignment() (Alignment, error) {
	s, ok := a.str("align")
	if !ok {
		return AlignLeft, nil
	}
	al, ok := ParseAlignment(s)
	if !ok {
		return AlignLeft, dsl.Errorf(a.values["align"][0].Pos, "未知的对齐方式 %s", s)
	}
	return al, nil
}
