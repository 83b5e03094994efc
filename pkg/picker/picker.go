// Package picker 实现取色循环：跟随指针读取像素颜色，按下鼠标左键时确认
package picker

import (
	"errors"
	"image/color"
	"sync"
	"time"

	"github.com/zoeyai/autopainter/internal/logger"
	"github.com/zoeyai/autopainter/pkg/auto"
	"github.com/zoeyai/autopainter/pkg/auto/screen"
)

// ErrPickerRunning 取色循环已在运行
var ErrPickerRunning = errors.New("取色已在进行中")

// Sample 一次取样
type Sample struct {
	Point auto.Point
	Color color.RGBA
}

// Hex 颜色的 "#rrggbb" 形式
func (s Sample) Hex() string {
	return screen.HexColor(s.Color)
}

// Pointer 指针位置（输入坐标）
type Pointer interface {
	PointerPosition() (int, int)
}

// Pixels 读取屏幕像素颜色（输入坐标）
type Pixels interface {
	SamplePixel(x, y int) (color.RGBA, error)
}

// State 按键与鼠标按钮状态
type State interface {
	IsKeyPressed(key string) bool
	IsButtonPressed(button string) bool
	Reset()
}

// Result 循环结束原因
type Result int

const (
	// ResultStopped 调用了 Stop
	ResultStopped Result = iota
	// ResultConfirmed 按下鼠标按钮确认取色
	ResultConfirmed
	// ResultCancelled 按下取消键
	ResultCancelled
)

func (r Result) String() string {
	switch r {
	case ResultConfirmed:
		return "confirmed"
	case ResultCancelled:
		return "cancelled"
	default:
		return "stopped"
	}
}

// Loop 取色循环，同一时刻只运行一个
type Loop struct {
	pointer Pointer
	pixels  Pixels
	state   State
	opts    *Options

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
	result  Result
}

// New 创建取色循环
func New(pointer Pointer, pixels Pixels, state State, opts ...Option) *Loop {
	return &Loop{
		pointer: pointer,
		pixels:  pixels,
		state:   state,
		opts:    ApplyOptions(opts...),
	}
}

// Start 启动取色，每个周期调用 onSample，确认时调用 onConfirm 后结束
func (l *Loop) Start(onSample, onConfirm func(Sample)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return ErrPickerRunning
	}
	l.running = true
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	l.result = ResultStopped

	// 启动前的点击或按键不算数
	l.state.Reset()
	go l.run(l.stop, l.done, onSample, onConfirm)
	return nil
}

// Stop 请求结束取色，不等待
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running && l.stop != nil {
		select {
		case <-l.stop:
		default:
			close(l.stop)
		}
	}
}

// Wait 等待循环结束并返回结束原因，未启动时立即返回
func (l *Loop) Wait() Result {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if done != nil {
		<-done
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.result
}

// Running 是否正在取色
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *Loop) run(stop, done chan struct{}, onSample, onConfirm func(Sample)) {
	result := ResultStopped
	defer func() {
		if r := recover(); r != nil {
			l.opts.Logger.Error("取色异常: %v", r)
		}
		l.mu.Lock()
		l.running = false
		l.result = result
		l.mu.Unlock()
		close(done)
		l.opts.Logger.Debug("取色结束: %s", result)
	}()

	for {
		select {
		case <-stop:
			return
		default:
		}

		if l.state.IsKeyPressed(l.opts.CancelKey) {
			result = ResultCancelled
			return
		}

		x, y := l.pointer.PointerPosition()
		c, err := l.pixels.SamplePixel(x, y)
		if err != nil {
			l.opts.Logger.Debug("取色失败 (%d, %d): %v", x, y, err)
		} else {
			s := Sample{Point: auto.Point{X: x, Y: y}, Color: c}
			if onSample != nil {
				onSample(s)
			}
			if l.state.IsButtonPressed(l.opts.Button) {
				l.opts.Logger.Info("已取色 %s (%d, %d)", s.Hex(), x, y)
				result = ResultConfirmed
				if onConfirm != nil {
					onConfirm(s)
				}
				return
			}
		}

		select {
		case <-stop:
			return
		case <-time.After(l.opts.Interval):
		}
	}
}

// ============ 选项 ============

// Option 配置选项函数类型
type Option func(*Options)

// Options 取色配置
type Options struct {
	Interval  time.Duration
	CancelKey string
	Button    string
	Logger    *logger.Logger
}

// DefaultInterval 默认轮询间隔
const DefaultInterval = 50 * time.Millisecond

// DefaultOptions 默认配置
func DefaultOptions() *Options {
	return &Options{
		Interval:  DefaultInterval,
		CancelKey: "esc",
		Button:    "left",
		Logger:    logger.Default(),
	}
}

// ApplyOptions 应用配置选项
func ApplyOptions(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Logger == nil {
		o.Logger = logger.Default()
	}
	return o
}

// WithInterval 设置轮询间隔
func WithInterval(d time.Duration) Option {
	return func(o *Options) {
		o.Interval = d
	}
}

// WithCancelKey 设置取消键
func WithCancelKey(key string) Option {
	return func(o *Options) {
		if key != "" {
			o.CancelKey = key
		}
	}
}

// WithButton 设置确认按钮
func WithButton(button string) Option {
	return func(o *Options) {
		if button != "" {
			o.Button = button
		}
	}
}

// WithLogger 设置日志
func WithLogger(l *logger.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}
