package vision

import (
	"image"

	"github.com/zoeyai/autopainter/pkg/auto"
)

// Match 一次匹配结果
type Match struct {
	// X, Y 匹配窗口左上角在帧中的位置
	X int `json:"x"`
	Y int `json:"y"`
	// Score 归一化相关系数，1.0 表示逐像素一致
	Score float64 `json:"score"`
}

// Point 匹配窗口左上角
func (m Match) Point() auto.Point {
	return auto.Point{X: m.X, Y: m.Y}
}

// Rect 匹配区域
func (m Match) Rect(w, h int) image.Rectangle {
	return image.Rect(m.X, m.Y, m.X+w, m.Y+h)
}

// Region 匹配区域（auto.Region）
func (m Match) Region(w, h int) auto.Region {
	return auto.Region{X: m.X, Y: m.Y, Width: w, Height: h}
}

// Reference 参考图（色块）
// 以路径为标识，仅在路径变化时重新加载
type Reference struct {
	Path  string
	Image image.Image
}

// Size 参考图宽高
func (r *Reference) Size() (int, int) {
	if r == nil || r.Image == nil {
		return 0, 0
	}
	b := r.Image.Bounds()
	return b.Dx(), b.Dy()
}

// CenterOf 匹配区域中心（整数除法）
func (r *Reference) CenterOf(m Match) auto.Point {
	w, h := r.Size()
	return m.Region(w, h).Center()
}

// Finder 在帧中查找参考图的所有出现位置
//
// 返回每个得分 >= threshold 的对齐位置，不做非极大值抑制，
// 相邻的多个位置可能对应同一个目标。参考图大于帧时返回空结果。
type Finder interface {
	FindAll(frame image.Image, ref *Reference, threshold float64) ([]Match, error)
}

// FinderFunc 函数形式的 Finder
type FinderFunc func(frame image.Image, ref *Reference, threshold float64) ([]Match, error)

// FindAll 调用 f
func (f FinderFunc) FindAll(frame image.Image, ref *Reference, threshold float64) ([]Match, error) {
	return f(frame, ref, threshold)
}

// Best 返回得分最高的匹配，得分相同时取最先出现的
func Best(matches []Match) (Match, bool) {
	if len(matches) == 0 {
		return Match{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Score > best.Score {
			best = m
		}
	}
	return best, true
}
