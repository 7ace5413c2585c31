package renderer

import (
	"encoding/json"
	"fmt"

	"github.com/ByLCY/folio/images"
	"github.com/ByLCY/folio/layout"
)

// Call 是 Recorder 记录的一次绘制调用。
type Call struct {
	Kind     string            `json:"kind"` // text, line 或 image
	Text     *TextRun          `json:"text,omitempty"`
	Points   []layout.Position `json:"points,omitempty"`
	Style    *PathStyle        `json:"style,omitempty"`
	Source   string            `json:"source,omitempty"`
	Origin   layout.Position   `json:"origin"`
	Size     layout.Size       `json:"size"`
	Rotation float64           `json:"rotation,omitempty"`
}

// RecordedPage 是一页上的全部调用，顺序与写入顺序一致。
type RecordedPage struct {
	Size  layout.Size `json:"size"`
	Calls []Call      `json:"calls"`
}

// Recorder 是在内存中记录调用的 Writer，Serialize 输出 JSON。用于测试和调试。
type Recorder struct {
	Meta  layout.DocumentMeta `json:"meta"`
	Fonts []string            `json:"fonts"`
	Pages []*RecordedPage     `json:"pages"`
}

var _ Writer = (*Recorder)(nil)

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) SetInfo(meta layout.DocumentMeta) { r.Meta = meta }

func (r *Recorder) EmbedFont(name string, data []byte) (FontHandle, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("字体 %s 没有数据", name)
	}
	r.Fonts = append(r.Fonts, name)
	return FontHandle(len(r.Fonts) - 1), nil
}

func (r *Recorder) AddPage(width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("无效的页面尺寸 %gx%g", width, height)
	}
	r.Pages = append(r.Pages, &RecordedPage{Size: layout.Size{Width: width, Height: height}})
	return nil
}

func (r *Recorder) current() (*RecordedPage, error) {
	if len(r.Pages) == 0 {
		return nil, fmt.Errorf("尚未添加页面")
	}
	return r.Pages[len(r.Pages)-1], nil
}

func (r *Recorder) DrawText(run TextRun) error {
	p, err := r.current()
	if err != nil {
		return err
	}
	if int(run.Font) < 0 || int(run.Font) >= len(r.Fonts) {
		return fmt.Errorf("无效的字体句柄 %d", run.Font)
	}
	p.Calls = append(p.Calls, Call{Kind: "text", Text: &run, Origin: run.Origin})
	return nil
}

func (r *Recorder) DrawLine(points []layout.Position, style PathStyle) error {
	p, err := r.current()
	if err != nil {
		return err
	}
	pts := append([]layout.Position(nil), points...)
	p.Calls = append(p.Calls, Call{Kind: "line", Points: pts, Style: &style})
	return nil
}

func (r *Recorder) DrawImage(img *images.Image, pos layout.Position, size layout.Size, rotation float64) error {
	p, err := r.current()
	if err != nil {
		return err
	}
	if img == nil {
		return fmt.Errorf("图片为空")
	}
	p.Calls = append(p.Calls, Call{Kind: "image", Source: img.Path, Origin: pos, Size: size, Rotation: rotation})
	return nil
}

func (r *Recorder) Serialize() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
