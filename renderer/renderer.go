package renderer

import (
	"fmt"

	"github.com/ByLCY/folio/images"
	"github.com/ByLCY/folio/layout"
)

// Renderer 将布局结果输出为最终文件，例如 PDF 或图像。
// Render 返回生成的二进制数据（例如 PDF 字节切片）以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// FontHandle 是写入器为已嵌入字体分配的句柄。
type FontHandle int

// TextRun 是一段同样式文本，Origin 为基线起点（mm），Size 为字号（pt）。
type TextRun struct {
	Font   FontHandle      `json:"font"`
	Origin layout.Position `json:"origin"`
	Text   string          `json:"text"`
	Size   float64         `json:"size"`
	Color  layout.Color    `json:"color"`
}

// PathStyle 描述折线的描边与填充。
type PathStyle struct {
	Line   layout.LineStyle `json:"line"`
	Closed bool             `json:"closed,omitempty"`
	Fill   *layout.Color    `json:"fill,omitempty"`
}

// Writer 是文档写入器。坐标以页面左上角为原点，y 轴向下，单位为毫米。
// 所有绘制调用作用于最近一次 AddPage 创建的页面。
type Writer interface {
	AddPage(width, height float64) error
	EmbedFont(name string, data []byte) (FontHandle, error)
	DrawText(run TextRun) error
	DrawLine(points []layout.Position, style PathStyle) error
	// DrawImage 的 pos 是旋转后外接矩形的左上角，size 是未旋转时的尺寸，rotation 为顺时针角度。
	DrawImage(img *images.Image, pos layout.Position, size layout.Size, rotation float64) error
	SetInfo(meta layout.DocumentMeta)
	Serialize() ([]byte, error)
}

// Replay 把渲染结果交给写入器：先写元信息与字体，再逐页按图层顺序回放绘制指令。
func Replay(result *layout.Result, w Writer) error {
	if result == nil {
		return fmt.Errorf("渲染结果为空")
	}
	if len(result.Pages) == 0 {
		return fmt.Errorf("缺少可渲染的页面")
	}
	w.SetInfo(result.Meta)

	handles := make(map[string]FontHandle, len(result.Fonts))
	for _, f := range result.Fonts {
		h, err := w.EmbedFont(f.Name, f.Data)
		if err != nil {
			return fmt.Errorf("嵌入字体 %s 失败: %w", f.Name, err)
		}
		handles[f.Name] = h
	}

	for _, page := range result.Pages {
		if err := w.AddPage(page.Size.Width, page.Size.Height); err != nil {
			return fmt.Errorf("第 %d 页: %w", page.Number, err)
		}
		for _, op := range page.Ops() {
			if err := replayOp(w, op, handles); err != nil {
				return fmt.Errorf("第 %d 页: %w", page.Number, err)
			}
		}
	}
	return nil
}

func replayOp(w Writer, op layout.Op, handles map[string]FontHandle) error {
	switch {
	case op.Text != nil:
		t := op.Text
		h, ok := handles[t.Font]
		if !ok {
			return fmt.Errorf("文本引用了未嵌入的字体 %s", t.Font)
		}
		return w.DrawText(TextRun{Font: h, Origin: t.Origin, Text: t.Text, Size: t.Size, Color: t.Color})
	case op.Line != nil:
		l := op.Line
		return w.DrawLine(l.Points, PathStyle{Line: l.Style, Closed: l.Closed, Fill: l.Fill})
	case op.Image != nil:
		i := op.Image
		return w.DrawImage(i.Image, i.Origin, i.Size, i.Rotation)
	}
	return nil
}

// Render 回放结果并序列化写入器的输出。
func Render(result *layout.Result, w Writer) ([]byte, error) {
	if err := Replay(result, w); err != nil {
		return nil, err
	}
	data, err := w.Serialize()
	if err != nil {
		return nil, fmt.Errorf("序列化文档失败: %w", err)
	}
	return data, nil
}
