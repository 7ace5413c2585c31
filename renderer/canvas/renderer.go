package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/folio/fonts"
	"github.com/ByLCY/folio/images"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
)

var transparent = color.RGBA{}

// Options configures the canvas writer.
type Options struct {
	// Background 非空时先用该颜色填充整页。
	Background *layout.Color
}

// Renderer 通过 github.com/tdewolff/canvas 把布局结果输出为 PDF。
type Renderer struct {
	opts Options
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ renderer.Writer   = (*Writer)(nil)
)

// NewRenderer creates a PDF renderer.
func NewRenderer(opts Options) *Renderer { return &Renderer{opts: opts} }

// Render renders the result into a PDF byte slice.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	return renderer.Render(result, NewWriter(r.opts))
}

// Writer 实现 renderer.Writer：每页对应一个 canvas，Serialize 时统一写入 PDF。
type Writer struct {
	opts  Options
	meta  layout.DocumentMeta
	fonts []*canvas.FontFamily
	faces map[faceKey]*canvas.FontFace
	pages []*canvas.Canvas
	ctx   *canvas.Context
}

type faceKey struct {
	font  renderer.FontHandle
	size  float64
	color layout.Color
}

// NewWriter creates an empty writer.
func NewWriter(opts Options) *Writer {
	return &Writer{opts: opts, faces: map[faceKey]*canvas.FontFace{}}
}

func (w *Writer) SetInfo(meta layout.DocumentMeta) { w.meta = meta }

func (w *Writer) EmbedFont(name string, data []byte) (renderer.FontHandle, error) {
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", fonts.ErrFontLoad, name, err)
	}
	w.fonts = append(w.fonts, family)
	return renderer.FontHandle(len(w.fonts) - 1), nil
}

func (w *Writer) AddPage(width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("无效的页面尺寸 %gx%g", width, height)
	}
	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	if bg := w.opts.Background; bg != nil {
		ctx.SetFillColor(colorFromLayout(*bg))
		ctx.SetStrokeColor(transparent)
		ctx.DrawPath(0, 0, canvas.Rectangle(width, height))
	}
	w.pages = append(w.pages, c)
	w.ctx = ctx
	return nil
}

func (w *Writer) context() (*canvas.Context, error) {
	if w.ctx == nil {
		return nil, fmt.Errorf("尚未添加页面")
	}
	return w.ctx, nil
}

func (w *Writer) face(run renderer.TextRun) (*canvas.FontFace, error) {
	if int(run.Font) < 0 || int(run.Font) >= len(w.fonts) {
		return nil, fmt.Errorf("无效的字体句柄 %d", run.Font)
	}
	key := faceKey{run.Font, run.Size, run.Color}
	if f, ok := w.faces[key]; ok {
		return f, nil
	}
	f := w.fonts[run.Font].Face(run.Size, colorFromLayout(run.Color), canvas.FontRegular, canvas.FontNormal)
	w.faces[key] = f
	return f, nil
}

// DrawText 在基线起点绘制文本，字号为 pt。
func (w *Writer) DrawText(run renderer.TextRun) error {
	ctx, err := w.context()
	if err != nil {
		return err
	}
	face, err := w.face(run)
	if err != nil {
		return err
	}
	ctx.DrawText(run.Origin.X, run.Origin.Y, canvas.NewTextLine(face, run.Text, canvas.Left))
	return nil
}

// DrawLine 把点序列画成折线，Closed 时闭合并按 Fill 填充。
func (w *Writer) DrawLine(points []layout.Position, style renderer.PathStyle) error {
	ctx, err := w.context()
	if err != nil {
		return err
	}
	if len(points) < 2 {
		return nil
	}
	origin := points[0]
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	for _, pt := range points[1:] {
		p.LineTo(pt.X-origin.X, pt.Y-origin.Y)
	}
	if style.Closed {
		p.Close()
	}

	if style.Fill != nil && style.Closed {
		ctx.SetFillColor(colorFromLayout(*style.Fill))
	} else {
		ctx.SetFillColor(transparent)
	}
	if style.Line.Thickness > 0 {
		ctx.SetStrokeColor(colorFromLayout(style.Line.Color))
		ctx.SetStrokeWidth(style.Line.Thickness)
	} else {
		ctx.SetStrokeColor(transparent)
	}
	ctx.SetDashes(0, style.Line.Dashes...)
	ctx.DrawPath(origin.X, origin.Y, p)
	ctx.SetDashes(0)
	return nil
}

// DrawImage 按像素宽度换算分辨率放置图片；宽高比与像素不一致时纵向缩放，
// 旋转绕外接矩形的中心进行。
func (w *Writer) DrawImage(img *images.Image, pos layout.Position, size layout.Size, rotation float64) error {
	ctx, err := w.context()
	if err != nil {
		return err
	}
	if img == nil || img.Data == nil {
		return fmt.Errorf("图片为空")
	}
	if size.Width <= 0 || size.Height <= 0 {
		return nil
	}
	box := rotatedBox(size, rotation)
	cx, cy := pos.X+box.Width/2, pos.Y+box.Height/2
	x, y := cx-size.Width/2, cy-size.Height/2

	dpmm := float64(img.Width) / size.Width
	natural := float64(img.Height) / dpmm

	ctx.Push()
	if rotation != 0 {
		// canvas 的角度为逆时针
		ctx.RotateAbout(-rotation, cx, cy)
	}
	if sy := size.Height / natural; sy != 1 {
		ctx.ScaleAbout(1, sy, x, y)
	}
	ctx.DrawImage(x, y, img.Data, canvas.DPMM(dpmm))
	ctx.Pop()
	return nil
}

// Serialize 把所有页面写入同一个 PDF。
func (w *Writer) Serialize() ([]byte, error) {
	if len(w.pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}
	var buf bytes.Buffer
	first := w.pages[0]
	out := pdf.New(&buf, first.W, first.H, nil)
	keywords := strings.Join(w.meta.Keywords, ", ")
	out.SetInfo(w.meta.Title, w.meta.Subject, keywords, w.meta.Author, w.meta.Creator)
	for i, c := range w.pages {
		if i > 0 {
			out.NewPage(c.W, c.H)
		}
		c.RenderTo(out)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// rotatedBox 返回旋转 degrees 度后的外接矩形尺寸。
func rotatedBox(s layout.Size, degrees float64) layout.Size {
	rad := degrees * math.Pi / 180
	sin, cos := math.Abs(math.Sin(rad)), math.Abs(math.Cos(rad))
	return layout.Size{Width: s.Width*cos + s.Height*sin, Height: s.Width*sin + s.Height*cos}
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
