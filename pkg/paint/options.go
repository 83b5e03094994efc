package paint

import (
	"time"

	"github.com/zoeyai/autopainter/pkg/auto"
	"github.com/zoeyai/autopainter/pkg/auto/input"
	"github.com/zoeyai/autopainter/pkg/vision"
)

// Option 配置选项函数类型
type Option func(*Options)

// Options 涂色引擎配置
type Options struct {
	// Threshold 匹配阈值，限制在 [0.5, 0.95]
	Threshold float64
	// ClickOffset 点击位置修正
	ClickOffset auto.Point
	// LoopInterval 每轮结束后的休眠
	LoopInterval time.Duration
	// IdleInterval 目标路径为空时的休眠
	IdleInterval time.Duration
	// MissLimit 连续未匹配次数超过该值时提交并停止
	MissLimit int
	// CancelKey 取消键
	CancelKey string
	// Sleep 休眠函数，测试时可替换
	Sleep func(time.Duration)
}

// 默认值
const (
	DefaultLoopInterval = 10 * time.Millisecond
	DefaultIdleInterval = 100 * time.Millisecond
	DefaultMissLimit    = 50
	DefaultCancelKey    = "esc"
)

// DefaultOptions 默认配置
func DefaultOptions() *Options {
	return &Options{
		Threshold:    vision.DefaultThreshold,
		ClickOffset:  auto.Point{X: 0, Y: 0},
		LoopInterval: DefaultLoopInterval,
		IdleInterval: DefaultIdleInterval,
		MissLimit:    DefaultMissLimit,
		CancelKey:    DefaultCancelKey,
		Sleep:        time.Sleep,
	}
}

// ApplyOptions 应用配置选项
func ApplyOptions(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.MissLimit <= 0 {
		o.MissLimit = DefaultMissLimit
	}
	o.CancelKey = input.NormalizeKey(o.CancelKey)
	if o.CancelKey == "" {
		o.CancelKey = DefaultCancelKey
	}
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	o.Threshold = vision.ClampThreshold(o.Threshold)
	return o
}

// WithThreshold 设置匹配阈值
func WithThreshold(t float64) Option {
	return func(o *Options) {
		o.Threshold = t
	}
}

// WithClickOffset 设置点击偏移量
func WithClickOffset(x, y int) Option {
	return func(o *Options) {
		o.ClickOffset = auto.Point{X: x, Y: y}
	}
}

// WithLoopInterval 设置每轮休眠
func WithLoopInterval(d time.Duration) Option {
	return func(o *Options) {
		o.LoopInterval = d
	}
}

// WithIdleInterval 设置空闲休眠
func WithIdleInterval(d time.Duration) Option {
	return func(o *Options) {
		o.IdleInterval = d
	}
}

// WithMissLimit 设置连续未匹配上限
func WithMissLimit(n int) Option {
	return func(o *Options) {
		o.MissLimit = n
	}
}

// WithCancelKey 设置取消键
func WithCancelKey(key string) Option {
	return func(o *Options) {
		o.CancelKey = key
	}
}

// WithSleep 替换休眠函数
func WithSleep(fn func(time.Duration)) Option {
	return func(o *Options) {
		o.Sleep = fn
	}
}
