package layout

import (
	"math"

	"github.com/ByLCY/folio/images"
)

// DefaultDPI 是未指定分辨率时假定的图片 DPI。
const DefaultDPI = 300.0

// Image 按像素尺寸、DPI 与缩放比例放置图片。
// 图片不会被拆分：剩余高度放不下时整张推迟到下一页。
type Image struct {
	img    *images.Image
	source string

	ScaleX, ScaleY float64
	DPI            float64
	Rotation       float64 // 顺时针角度
	Alignment      Alignment
	Position       *Position // 非空时按区域内绝对位置放置，不占用布局高度
}

// NewImage 创建图片元素，source 仅用于调试输出。
func NewImage(img *images.Image, source string) *Image {
	return &Image{img: img, source: source, ScaleX: 1, ScaleY: 1}
}

// Size 返回未旋转时的尺寸（mm）：像素 / DPI * 25.4 * 缩放。
func (i *Image) Size() Size {
	dpi := i.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	sx, sy := i.ScaleX, i.ScaleY
	if sx <= 0 {
		sx = 1
	}
	if sy <= 0 {
		sy = 1
	}
	return Size{
		Width:  25.4 * sx * float64(i.img.Width) / dpi,
		Height: 25.4 * sy * float64(i.img.Height) / dpi,
	}
}

// boundingBox 返回旋转 degrees 后的外接矩形尺寸。
func boundingBox(s Size, degrees float64) Size {
	theta := degrees * math.Pi / 180
	c, n := math.Abs(math.Cos(theta)), math.Abs(math.Sin(theta))
	return Size{
		Width:  s.Width*c + s.Height*n,
		Height: s.Width*n + s.Height*c,
	}
}

func (i *Image) Render(_ *Context, area *Area, _ Style) (RenderResult, error) {
	size := i.Size()
	bb := boundingBox(size, i.Rotation)
	if i.Position != nil {
		area.DrawImage(i.img, i.source, *i.Position, size, i.Rotation)
		return RenderResult{}, nil
	}
	if bb.Height > area.Height()+epsilon {
		return RenderResult{HasMore: true}, nil
	}
	x := i.Alignment.offset(bb.Width, area.Width())
	area.DrawImage(i.img, i.source, Position{X: x}, size, i.Rotation)
	return RenderResult{Size: bb}, nil
}
