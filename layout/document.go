package layout

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/hyphen"
	"github.com/ByLCY/folio/logger"
)

// Document 是顶层容器：持有元素序列、默认样式、纸张尺寸与字体缓存，并驱动分页。
type Document struct {
	root       *LinearLayout
	fonts      *fonts.Cache
	style      Style
	paper      Size
	decorator  PageDecorator
	hyphenator hyphen.Hyphenator
	locale     language.Tag
	meta       DocumentMeta
	maxPages   int
}

// NewDocument 创建 A4 纵向文档，family 是默认字体族，必须已在 cache 中注册。
func NewDocument(cache *fonts.Cache, family string) *Document {
	a4, _ := PaperSize("A4")
	return &Document{
		root:       NewLinearLayout(),
		fonts:      cache,
		style:      Style{Family: family},
		paper:      a4,
		hyphenator: hyphen.None{},
		locale:     language.English,
	}
}

func (d *Document) Fonts() *fonts.Cache { return d.fonts }

// Push 追加顶层元素。
func (d *Document) Push(e Element) { d.root.Push(e) }

func (d *Document) Len() int { return d.root.Len() }

func (d *Document) SetPaperSize(s Size)               { d.paper = s }
func (d *Document) SetPageDecorator(p PageDecorator)  { d.decorator = p }
func (d *Document) SetHyphenator(h hyphen.Hyphenator) { d.hyphenator = h }
func (d *Document) SetLocale(tag language.Tag)        { d.locale = tag }
func (d *Document) SetMeta(m DocumentMeta)            { d.meta = m }
func (d *Document) SetTitle(title string)             { d.meta.Title = title }
func (d *Document) SetSpacing(mm float64)             { d.root.WithSpacing(mm) }
func (d *Document) SetMaxPages(n int)                 { d.maxPages = n }
func (d *Document) Style() Style                      { return d.style }
func (d *Document) SetStyle(s Style)                  { d.style = d.style.Merge(s) }
func (d *Document) SetFontSize(pt float64)            { d.style.Size = pt }
func (d *Document) SetLineSpacing(factor float64)     { d.style.LineSpacing = factor }

// Render 执行完整的分页排版。任何错误都会使 Render 返回 nil 结果。
// 同一个 Document 可以反复渲染，每次得到相同的结果。
func (d *Document) Render() (*Result, error) {
	d.root.Reset()
	if _, err := d.style.Metrics(d.fonts); err != nil {
		return nil, fmt.Errorf("默认样式无效: %w", err)
	}
	ctx := &Context{Fonts: d.fonts, Hyphenator: d.hyphenator, Locale: d.locale}
	result := &Result{Meta: d.meta}
	// stuck 是上一页没有任何进展时的正文高度，-1 表示上一页有进展
	stuck := -1.0
	for {
		if d.maxPages > 0 && len(result.Pages) >= d.maxPages {
			return nil, fmt.Errorf("%w: 超过最大页数 %d", ErrLayoutOverflow, d.maxPages)
		}
		page := NewPage(len(result.Pages)+1, d.paper)
		result.Pages = append(result.Pages, page)

		area := page.Area()
		if d.decorator != nil {
			var err error
			if area, err = d.decorator.DecoratePage(ctx, area, d.style); err != nil {
				return nil, fmt.Errorf("第 %d 页: %w", page.Number, err)
			}
		}

		available := area.Height()
		before := ctx.progress
		r, err := d.root.Render(ctx, area, d.style)
		if err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", page.Number, err)
		}
		if !r.HasMore {
			break
		}
		if r.Size.Height > epsilon || ctx.progress != before {
			stuck = -1
			continue
		}
		// 连续两页没有进展且正文区域没有变大，继续分页只会无限循环
		if stuck >= 0 && available <= stuck+epsilon {
			return nil, fmt.Errorf("%w: 第 %d 页的内容在整页上也放不下", ErrLayoutOverflow, page.Number)
		}
		stuck = available
	}

	for _, m := range d.fonts.Loaded() {
		result.Fonts = append(result.Fonts, FontRef{
			Name:    FontName(m.Family, m.Variant),
			Family:  m.Family,
			Variant: m.Variant,
			Builtin: m.Builtin,
			Data:    m.Data(),
		})
	}
	logger.ProgressLogger.Printf("排版完成: %d 页, %d 个字体", len(result.Pages), len(result.Fonts))
	return result, nil
}
