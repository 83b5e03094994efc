// Package auto 提供桌面自动化的共享类型和工具函数。
// 具体功能分布在子包中：screen（截图、取色）、input（鼠标、按键状态）。
package auto

import "math"

// Point 表示二维坐标点
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add 返回两点坐标之和
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Region 表示矩形区域
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center 返回区域中心点（整数除法）
func (r Region) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// =====================================================================
// 截图坐标与输入坐标
// =====================================================================
//
// 截图始终是物理像素，而 robotgo.Move 在 DPI 缩放或 Retina 屏下
// 可能使用逻辑坐标。比较截图尺寸与 robotgo.GetScreenSize() 即可得到
// 两个坐标空间之间的比例。

// FrameScale 截图像素 / 输入坐标 的比例
type FrameScale struct {
	X float64
	Y float64
}

// UnitScale 两个坐标空间一致
var UnitScale = FrameScale{X: 1, Y: 1}

// DetectFrameScale 根据截图尺寸与输入坐标空间尺寸计算比例
func DetectFrameScale(frameW, frameH, screenW, screenH int) FrameScale {
	if frameW <= 0 || frameH <= 0 || screenW <= 0 || screenH <= 0 {
		return UnitScale
	}
	return FrameScale{
		X: normalizeScale(float64(frameW) / float64(screenW)),
		Y: normalizeScale(float64(frameH) / float64(screenH)),
	}
}

// ToInput 截图坐标 -> 输入坐标
func (s FrameScale) ToInput(x, y int) (int, int) {
	return ScaleInt(x, 1/s.safeX()), ScaleInt(y, 1/s.safeY())
}

// ToFrame 输入坐标 -> 截图坐标
func (s FrameScale) ToFrame(x, y int) (int, int) {
	return ScaleInt(x, s.safeX()), ScaleInt(y, s.safeY())
}

func (s FrameScale) safeX() float64 {
	if s.X <= 0 {
		return 1
	}
	return s.X
}

func (s FrameScale) safeY() float64 {
	if s.Y <= 0 {
		return 1
	}
	return s.Y
}

func normalizeScale(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 1.0
	}
	if v < 0.5 || v > 4.0 {
		return 1.0
	}
	if math.Abs(v-1.0) < 0.05 {
		return 1.0
	}
	return v
}

// ScaleInt 缩放整数值
func ScaleInt(value int, factor float64) int {
	if factor <= 0 {
		return value
	}
	return int(math.Round(float64(value) * factor))
}
