package screen

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/go-vgo/robotgo"
)

// PixelSampler 读取屏幕像素颜色（输入坐标）
type PixelSampler struct{}

// NewPixelSampler 创建取色器
func NewPixelSampler() *PixelSampler {
	return &PixelSampler{}
}

// SamplePixel 读取 (x, y) 处的颜色
func (s *PixelSampler) SamplePixel(x, y int) (color.RGBA, error) {
	return ParseHexColor(robotgo.GetPixelColor(x, y))
}

// ParseHexColor 解析 "rrggbb" 或 "#rrggbb"
func ParseHexColor(hex string) (color.RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("无效的颜色值: %q", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("无效的颜色值: %q", hex)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// HexColor 格式化为 "#rrggbb"
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
