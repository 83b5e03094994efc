package controller

import (
	"time"

	"github.com/zoeyai/autopainter/internal/logger"
)

// Option 配置选项函数类型
type Option func(*Options)

// Options 控制器配置
type Options struct {
	// EventBuffer 事件通道容量
	EventBuffer int
	// CloseTimeout Close 的默认等待时间
	CloseTimeout time.Duration
	// FinishTimeout 队列满时结束事件最多等待多久
	FinishTimeout time.Duration
	// BeforeRun 每次涂色开始前在后台调用，例如切换到浏览器窗口
	BeforeRun func() error
	Logger    *logger.Logger
}

// 默认值
const (
	DefaultEventBuffer   = 256
	DefaultCloseTimeout  = time.Second
	DefaultFinishTimeout = 5 * time.Second
)

// DefaultOptions 默认配置
func DefaultOptions() *Options {
	return &Options{
		EventBuffer:   DefaultEventBuffer,
		CloseTimeout:  DefaultCloseTimeout,
		FinishTimeout: DefaultFinishTimeout,
		Logger:        logger.Default(),
	}
}

// ApplyOptions 应用配置选项
func ApplyOptions(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = DefaultEventBuffer
	}
	if o.CloseTimeout <= 0 {
		o.CloseTimeout = DefaultCloseTimeout
	}
	if o.FinishTimeout <= 0 {
		o.FinishTimeout = DefaultFinishTimeout
	}
	if o.Logger == nil {
		o.Logger = logger.Default()
	}
	return o
}

// WithEventBuffer 设置事件通道容量
func WithEventBuffer(n int) Option {
	return func(o *Options) {
		o.EventBuffer = n
	}
}

// WithCloseTimeout 设置默认关闭等待时间
func WithCloseTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.CloseTimeout = d
	}
}

// WithFinishTimeout 设置结束事件的最长等待时间
func WithFinishTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.FinishTimeout = d
	}
}

// WithBeforeRun 设置涂色前回调
func WithBeforeRun(fn func() error) Option {
	return func(o *Options) {
		o.BeforeRun = fn
	}
}

// WithLogger 设置日志
func WithLogger(l *logger.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}
