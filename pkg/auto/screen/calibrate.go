package screen

import (
	"fmt"
	"image"

	"github.com/zoeyai/autopainter/pkg/auto"
)

// Mapping 帧坐标到输入坐标的映射（反向缩放 + 偏移）
type Mapping struct {
	Origin auto.Point
	Scale  auto.FrameScale
}

// Calibrate 截取一帧并与输入坐标空间尺寸比较，得到映射关系
func Calibrate(src Source) (Mapping, error) {
	img, err := src.CaptureScreen()
	if err != nil {
		return Mapping{}, fmt.Errorf("校准截图失败: %w", err)
	}
	return MappingFor(src, img), nil
}

// MappingFor 根据已截取的帧计算映射关系
func MappingFor(src Source, frame image.Image) Mapping {
	b := frame.Bounds()
	w, h := src.InputSize()
	return Mapping{
		Origin: src.Origin(),
		Scale:  auto.DetectFrameScale(b.Dx(), b.Dy(), w, h),
	}
}

// ToInput 帧坐标 -> 桌面输入坐标
func (m Mapping) ToInput(x, y int) (int, int) {
	ix, iy := m.Scale.ToInput(x, y)
	return ix + m.Origin.X, iy + m.Origin.Y
}

// ToFrame 桌面输入坐标 -> 帧坐标
func (m Mapping) ToFrame(x, y int) (int, int) {
	return m.Scale.ToFrame(x-m.Origin.X, y-m.Origin.Y)
}
