// Package input 提供鼠标操作、按键状态查询和剪贴板
package input

import (
	"time"

	"github.com/go-vgo/robotgo"
)

// DefaultSettleDelay 移动后、点击前的等待时间，确保鼠标到位
const DefaultSettleDelay = 50 * time.Millisecond

// Mapper 将帧坐标转换为桌面输入坐标
type Mapper interface {
	ToInput(x, y int) (int, int)
}

type identity struct{}

func (identity) ToInput(x, y int) (int, int) { return x, y }

// Mouse 基于 robotgo 的鼠标
type Mouse struct {
	mapper Mapper
	settle time.Duration
	button string

	move  func(x, y int)
	click func(button string)
	loc   func() (int, int)
	sleep func(time.Duration)
}

// MouseOption 鼠标配置函数
type MouseOption func(*Mouse)

// WithMapper 设置坐标映射
func WithMapper(m Mapper) MouseOption {
	return func(ms *Mouse) {
		if m != nil {
			ms.mapper = m
		}
	}
}

// WithSettleDelay 设置移动后的等待时间
func WithSettleDelay(d time.Duration) MouseOption {
	return func(ms *Mouse) {
		ms.settle = d
	}
}

// WithButton 设置点击按键 ("left" / "right" / "center")
func WithButton(button string) MouseOption {
	return func(ms *Mouse) {
		ms.button = button
	}
}

// NewMouse 创建鼠标
func NewMouse(opts ...MouseOption) *Mouse {
	m := &Mouse{
		mapper: identity{},
		settle: DefaultSettleDelay,
		button: "left",
		move:   func(x, y int) { robotgo.Move(x, y) },
		click:  func(button string) { robotgo.Click(button, false) },
		loc:    robotgo.Location,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MoveTo 移动鼠标到帧坐标 (x, y)
func (m *Mouse) MoveTo(x, y int) {
	ix, iy := m.mapper.ToInput(x, y)
	m.move(ix, iy)
}

// MoveAndClick 移动到帧坐标 (x, y) 并单击
func (m *Mouse) MoveAndClick(x, y int) error {
	m.MoveTo(x, y)
	if m.settle > 0 {
		m.sleep(m.settle)
	}
	m.click(m.button)
	return nil
}

// PointerPosition 获取鼠标位置（桌面输入坐标）
func (m *Mouse) PointerPosition() (int, int) {
	return m.loc()
}
