// Package images 解码文档中引用的图片，布局只需要像素尺寸，写入器使用解码后的 image.Image。
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode 表示图片数据无法识别或损坏。
var ErrDecode = errors.New("图片解码失败")

// Image 是解码后的位图。
type Image struct {
	Data   image.Image
	Width  int // 像素
	Height int // 像素
	Format string
	Path   string
}

// DecodeConfig 只读取图片头部，返回像素尺寸与格式。
func DecodeConfig(data []byte) (width, height int, format string, err error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return cfg.Width, cfg.Height, format, nil
}

// Decode 解码完整的图片数据。
func Decode(data []byte) (*Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: 图片尺寸为 0", ErrDecode)
	}
	return &Image{Data: img, Width: b.Dx(), Height: b.Dy(), Format: format}, nil
}

// Load 读取并解码图片文件。
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", path, err)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	img.Path = path
	return img, nil
}

// FromImage 包装已经在内存中的图片。
func FromImage(img image.Image) *Image {
	b := img.Bounds()
	return &Image{Data: img, Width: b.Dx(), Height: b.Dy(), Format: "memory"}
}
