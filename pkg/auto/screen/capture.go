// Package screen 提供屏幕截图、取色和坐标校准
package screen

import (
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"

	"github.com/zoeyai/autopainter/pkg/auto"
)

// Source 截图来源
type Source interface {
	// CaptureScreen 截取一帧，坐标原点为 Origin()
	CaptureScreen() (image.Image, error)
	// Origin 帧左上角在桌面坐标中的位置
	Origin() auto.Point
	// InputSize 该区域在输入坐标空间中的尺寸
	InputSize() (int, int)
}

// ============ robotgo ============

// RobotgoCapturer 使用 robotgo 截取主屏幕
type RobotgoCapturer struct{}

// NewRobotgoCapturer 创建 robotgo 截图器
func NewRobotgoCapturer() *RobotgoCapturer {
	return &RobotgoCapturer{}
}

// CaptureScreen 截取全屏
func (c *RobotgoCapturer) CaptureScreen() (image.Image, error) {
	img, err := robotgo.CaptureImg()
	if err != nil {
		return nil, fmt.Errorf("截屏失败: %w", err)
	}
	if img == nil {
		return nil, fmt.Errorf("截屏失败: 返回空图像")
	}
	return img, nil
}

// Origin 主屏幕原点
func (c *RobotgoCapturer) Origin() auto.Point {
	return auto.Point{}
}

// InputSize robotgo 报告的屏幕尺寸
func (c *RobotgoCapturer) InputSize() (int, int) {
	return robotgo.GetScreenSize()
}

// ============ kbinani/screenshot ============

// DisplayCapturer 按显示器序号截图，支持多显示器
type DisplayCapturer struct {
	index  int
	bounds image.Rectangle
}

// NewDisplayCapturer 创建指定显示器的截图器
func NewDisplayCapturer(index int) (*DisplayCapturer, error) {
	displays := DisplayBounds()
	if err := CheckDisplay(index, displays); err != nil {
		return nil, err
	}
	return &DisplayCapturer{
		index:  index,
		bounds: displays[index],
	}, nil
}

// CaptureScreen 截取该显示器
func (c *DisplayCapturer) CaptureScreen() (image.Image, error) {
	img, err := screenshot.CaptureRect(c.bounds)
	if err != nil {
		return nil, fmt.Errorf("截取显示器 %d 失败: %w", c.index, err)
	}
	return img, nil
}

// Origin 显示器左上角
func (c *DisplayCapturer) Origin() auto.Point {
	return auto.Point{X: c.bounds.Min.X, Y: c.bounds.Min.Y}
}

// InputSize 显示器边界尺寸
func (c *DisplayCapturer) InputSize() (int, int) {
	return c.bounds.Dx(), c.bounds.Dy()
}

// Bounds 显示器边界
func (c *DisplayCapturer) Bounds() image.Rectangle {
	return c.bounds
}

// ============ 工厂 ============

// 截图后端名称
const (
	BackendRobotgo    = "robotgo"
	BackendScreenshot = "screenshot"
)

// NewSource 按后端名称创建截图来源
func NewSource(backend string, display int) (Source, error) {
	switch backend {
	case "", BackendRobotgo:
		return NewRobotgoCapturer(), nil
	case BackendScreenshot:
		return NewDisplayCapturer(display)
	default:
		return nil, fmt.Errorf("不支持的截图后端: %s", backend)
	}
}

// DisplayBounds 列出所有显示器边界
func DisplayBounds() []image.Rectangle {
	n := screenshot.NumActiveDisplays()
	out := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, screenshot.GetDisplayBounds(i))
	}
	return out
}

// CheckDisplay 检查显示器序号是否有效
func CheckDisplay(index int, displays []image.Rectangle) error {
	if len(displays) == 0 {
		return fmt.Errorf("未检测到显示器")
	}
	if index < 0 || index >= len(displays) {
		return fmt.Errorf("显示器序号越界: %d (共 %d 个)", index, len(displays))
	}
	return nil
}
