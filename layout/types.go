package layout

import (
	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/images"
)

// 该文件定义渲染结果：页面、图层与绘制指令。渲染阶段只向内存追加指令，
// 全部元素渲染完成后再整体交给写入器；调试 JSON 也使用同一结构。

// Result 保存渲染后的页面、用到的字体与文档元信息。
type Result struct {
	Pages []*Page      `json:"pages"`
	Fonts []FontRef    `json:"fonts"`
	Meta  DocumentMeta `json:"meta"`
}

// Warnings 汇总所有页面上的警告。
func (r *Result) Warnings() []string {
	var out []string
	for _, p := range r.Pages {
		out = append(out, p.Warnings...)
	}
	return out
}

// FontRef 描述一个需要嵌入的字体变体，TextOp 通过 Name 引用它。
type FontRef struct {
	Name    string        `json:"name"`
	Family  string        `json:"family"`
	Variant fonts.Variant `json:"variant"`
	Builtin bool          `json:"builtin"`
	Data    []byte        `json:"-"`
}

// FontName 返回字体变体在结果中的引用名，例如 "Body/bold"。
func FontName(family string, v fonts.Variant) string {
	return family + "/" + v.String()
}

// Page 记录页面尺寸与按顺序排列的图层。
type Page struct {
	Number   int      `json:"number"` // 从 1 开始
	Size     Size     `json:"size"`
	Layers   []Layer  `json:"layers"`
	Warnings []string `json:"warnings,omitempty"`
}

// Layer 中的指令按发出的顺序绘制，靠后的图层覆盖靠前的图层。
type Layer struct {
	Ops []Op `json:"ops"`
}

// Ops 返回按绘制顺序展开的全部指令。
func (p *Page) Ops() []Op {
	var out []Op
	for _, l := range p.Layers {
		out = append(out, l.Ops...)
	}
	return out
}

// Texts 返回页面上全部文本指令。
func (p *Page) Texts() []TextOp {
	var out []TextOp
	for _, op := range p.Ops() {
		if op.Text != nil {
			out = append(out, *op.Text)
		}
	}
	return out
}

// Op 是一条绘制指令，三个字段中恰好一个非空。
type Op struct {
	Text  *TextOp  `json:"text,omitempty"`
	Line  *LineOp  `json:"line,omitempty"`
	Image *ImageOp `json:"image,omitempty"`
}

// TextOp 在基线起点绘制一段同样式文本，坐标为页面坐标（mm）。
type TextOp struct {
	Origin Position `json:"origin"`
	Text   string   `json:"text"`
	Font   string   `json:"font"`
	Size   float64  `json:"size"` // pt
	Color  Color    `json:"color"`
	Width  float64  `json:"width"`
}

// LineOp 是折线或多边形。Closed 为真时首尾相连，Fill 非空时填充。
type LineOp struct {
	Points []Position `json:"points"`
	Style  LineStyle  `json:"style"`
	Closed bool       `json:"closed,omitempty"`
	Fill   *Color     `json:"fill,omitempty"`
}

// ImageOp 放置一张图片。Origin 是旋转后外接矩形的左上角，Size 是未旋转时的尺寸，
// Rotation 为绕中心顺时针旋转的角度。
type ImageOp struct {
	Image    *images.Image `json:"-"`
	Source   string        `json:"source,omitempty"`
	Origin   Position      `json:"origin"`
	Size     Size          `json:"size"`
	Rotation float64       `json:"rotation,omitempty"`
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}

// NewPage 创建空白页面，Number 从 1 开始。
func NewPage(number int, size Size) *Page {
	return &Page{Number: number, Size: size, Layers: []Layer{{}}}
}

// Area 返回覆盖整页第一个图层的绘制区域。
func (p *Page) Area() *Area {
	return newArea(p, 0, Position{}, p.Size)
}
