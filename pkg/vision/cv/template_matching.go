// Package cv 提供基于 OpenCV 的模板匹配
package cv

import (
	"image"
	"math"
	"sync"

	"gocv.io/x/gocv"

	"github.com/zoeyai/autopainter/pkg/vision"
)

// Finder 使用 TM_CCOEFF_NORMED 在 BGR 彩色帧上做模板匹配
//
// 返回结果矩阵中每个 >= threshold 的位置，不屏蔽相邻区域。
// 参考图的 Mat 按路径缓存，路径变化时重新转换。
type Finder struct {
	mu      sync.Mutex
	loaded  bool
	refPath string
	tmpl    gocv.Mat
}

// NewFinder 创建模板匹配器
func NewFinder() *Finder {
	return &Finder{}
}

// FindAll 查找所有得分不低于阈值的位置
func (f *Finder) FindAll(frame image.Image, ref *vision.Reference, threshold float64) ([]vision.Match, error) {
	if frame == nil || ref == nil || ref.Image == nil {
		return nil, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmpl, err := f.template(ref)
	if err != nil {
		return nil, err
	}

	src, err := ImageToMat(frame)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if err := checkSourceLargerThanSearch(src, tmpl); err != nil {
		return nil, nil
	}

	result := matchTemplate(src, tmpl)
	defer result.Close()

	return collectMatches(result, threshold)
}

// Close 释放缓存的模板
func (f *Finder) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.release()
}

// template 返回参考图对应的 Mat，路径变化时重建
func (f *Finder) template(ref *vision.Reference) (gocv.Mat, error) {
	if f.loaded && f.refPath == ref.Path {
		return f.tmpl, nil
	}
	f.release()

	mat, err := ImageToMat(ref.Image)
	if err != nil {
		return gocv.Mat{}, err
	}
	f.tmpl = mat
	f.refPath = ref.Path
	f.loaded = true
	return f.tmpl, nil
}

func (f *Finder) release() {
	if f.loaded {
		f.tmpl.Close()
	}
	f.tmpl = gocv.Mat{}
	f.refPath = ""
	f.loaded = false
}

// matchTemplate 计算模板匹配结果矩阵 (CV_32F)
func matchTemplate(src, tmpl gocv.Mat) gocv.Mat {
	result := gocv.NewMat()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(src, tmpl, &result, gocv.TmCcoeffNormed, mask)
	return result
}

// collectMatches 按行优先顺序收集所有达到阈值的位置
func collectMatches(result gocv.Mat, threshold float64) ([]vision.Match, error) {
	rows, cols := result.Rows(), result.Cols()
	if rows == 0 || cols == 0 {
		return nil, nil
	}

	data, err := result.DataPtrFloat32()
	if err != nil {
		return nil, err
	}

	var matches []vision.Match
	for y := 0; y < rows; y++ {
		row := data[y*cols : (y+1)*cols]
		for x, v := range row {
			score := float64(v)
			if math.IsNaN(score) || math.IsInf(score, 0) {
				continue
			}
			if score >= threshold {
				matches = append(matches, vision.Match{X: x, Y: y, Score: score})
			}
		}
	}
	return matches, nil
}

// checkSourceLargerThanSearch 检查源图像是否大于搜索图像
func checkSourceLargerThanSearch(source, search gocv.Mat) error {
	if source.Rows() < search.Rows() || source.Cols() < search.Cols() {
		return &ImageSizeError{
			SourceSize: [2]int{source.Cols(), source.Rows()},
			SearchSize: [2]int{search.Cols(), search.Rows()},
		}
	}
	return nil
}

// ImageSizeError 图像尺寸错误
type ImageSizeError struct {
	SourceSize [2]int
	SearchSize [2]int
}

func (e *ImageSizeError) Error() string {
	return "搜索图像尺寸大于源图像"
}
