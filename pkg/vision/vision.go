// Package vision 提供色块参考图的加载和匹配接口
//
// 匹配算法位于子包：
//   - cv:  基于 OpenCV 的 TM_CCOEFF_NORMED 模板匹配
//   - ncc: 纯 Go 的零均值归一化互相关（积分图加速）
//
// 基本用法:
//
//	ref, err := vision.LoadReference("src/color/black.png")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	matches, err := finder.FindAll(frame, ref, 0.8)
package vision

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// 阈值范围
const (
	MinThreshold     = 0.5
	MaxThreshold     = 0.95
	DefaultThreshold = 0.8
)

// ClampThreshold 将阈值限制在 [MinThreshold, MaxThreshold]
func ClampThreshold(t float64) float64 {
	if math.IsNaN(t) {
		return DefaultThreshold
	}
	if t < MinThreshold {
		return MinThreshold
	}
	if t > MaxThreshold {
		return MaxThreshold
	}
	return t
}

var (
	// ErrImageNotFound 参考图文件不存在
	ErrImageNotFound = errors.New("图片不存在")
	// ErrImageDecode 参考图无法解码
	ErrImageDecode = errors.New("图片无法读取")
)

// LoadReference 从文件加载参考图
func LoadReference(path string) (*Reference, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrImageDecode, path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageDecode, path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrImageDecode, path, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: %s: 图像为空", ErrImageDecode, path)
	}

	return &Reference{Path: path, Image: img}, nil
}
