// Package swatch 生成颜色参考图
package swatch

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/zoeyai/autopainter/pkg/auto/screen"
	"github.com/zoeyai/autopainter/pkg/palette"
)

// DefaultSize 参考图默认边长
const DefaultSize = 12

// Generate 生成纯色参考图
func Generate(c color.RGBA, size int) *image.RGBA {
	if size <= 0 {
		size = DefaultSize
	}
	c.A = 0xff
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

// Crop 以 center 为中心从帧中截取 size x size 的区域，超出帧的部分被裁掉
func Crop(frame image.Image, center image.Point, size int) (*image.RGBA, error) {
	if size <= 0 {
		size = DefaultSize
	}
	half := size / 2
	r := image.Rect(center.X-half, center.Y-half, center.X-half+size, center.Y-half+size).Intersect(frame.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("截取区域超出画面: %v", center)
	}

	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Copy(out, image.Point{}, frame, r, draw.Src, nil)
	return out, nil
}

// Scale 按比例缩放，使用最近邻保持像素边缘清晰
func Scale(img image.Image, factor float64) *image.RGBA {
	b := img.Bounds()
	w := int(float64(b.Dx())*factor + 0.5)
	h := int(float64(b.Dy())*factor + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(out, out.Bounds(), img, b, draw.Src, nil)
	return out
}

// Save 将参考图写入 <palette dir>/<name>.png 并加入调色板
func Save(p *palette.Palette, name string, img image.Image) (string, error) {
	if name == "" {
		return "", fmt.Errorf("颜色名称为空")
	}
	path := p.PathFor(name)
	if err := screen.WritePNG(path, img); err != nil {
		return "", fmt.Errorf("保存参考图失败: %w", err)
	}
	p.Add(name)
	return path, nil
}
