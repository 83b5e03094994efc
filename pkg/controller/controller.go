// Package controller 管理涂色和取色两个后台循环
//
// 运行标志和目标路径由控制端写入，后台循环每轮读取；
// 后台循环的通知、取样和结束结果通过 Events 通道发给控制端。
package controller

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoeyai/autopainter/internal/logger"
	"github.com/zoeyai/autopainter/pkg/paint"
	"github.com/zoeyai/autopainter/pkg/picker"
)

var (
	// ErrBusy 另一个循环正在运行
	ErrBusy = errors.New("涂色或取色正在进行中")
	// ErrNotBound 未设置涂色引擎或取色循环
	ErrNotBound = errors.New("控制器未绑定")
	// ErrCloseTimeout 关闭时后台循环未在限定时间内结束
	ErrCloseTimeout = errors.New("等待后台任务结束超时")
)

// 状态文本
const (
	StatusPainting = "正在涂色"
	StatusPicking  = "正在取色"
	StatusStopped  = "已停止"
)

// Painter 涂色循环
type Painter interface {
	Run(targetPath func() string, running func() bool) paint.RunResult
}

// Picker 取色循环
type Picker interface {
	Start(onSample, onConfirm func(picker.Sample)) error
	Stop()
	Wait() picker.Result
	Running() bool
}

// Controller 运行控制器
type Controller struct {
	opts *Options
	log  *logger.Logger

	painter Painter
	picker  Picker

	running atomic.Bool
	target  atomic.Pointer[string]
	events  chan Event

	mu        sync.Mutex
	paintDone chan struct{}
}

// New 创建控制器
func New(opts ...Option) *Controller {
	o := ApplyOptions(opts...)
	c := &Controller{
		opts:   o,
		log:    o.Logger,
		events: make(chan Event, o.EventBuffer),
	}
	empty := ""
	c.target.Store(&empty)
	return c
}

// Bind 设置涂色引擎和取色循环
//
// 引擎通常以控制器作为 Notifier 创建，因此在 New 之后绑定。
func (c *Controller) Bind(painter Painter, pk Picker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.painter = painter
	c.picker = pk
}

// Events 事件通道
func (c *Controller) Events() <-chan Event {
	return c.events
}

// ============ 运行标志与目标 ============

// Running 运行标志
func (c *Controller) Running() bool {
	return c.running.Load()
}

// TargetPath 当前目标参考图路径
func (c *Controller) TargetPath() string {
	return *c.target.Load()
}

// SetTarget 切换目标参考图，运行中也可调用
func (c *Controller) SetTarget(path string) {
	c.target.Store(&path)
}

// Painting 涂色循环是否仍在运行（包括已清除标志但尚未退出的情况）
func (c *Controller) Painting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paintDone != nil
}

// ============ 涂色 ============

// StartPainting 以 path 为目标启动涂色
func (c *Controller) StartPainting(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.painter == nil {
		return ErrNotBound
	}
	if c.paintDone != nil {
		return fmt.Errorf("%w: 涂色已在运行", ErrBusy)
	}
	if c.picker != nil && c.picker.Running() {
		return fmt.Errorf("%w: 正在取色", ErrBusy)
	}

	c.SetTarget(path)
	c.running.Store(true)
	done := make(chan struct{})
	c.paintDone = done

	c.emit(Event{Kind: EventStatus, Message: StatusPainting})
	go c.paintWorker(c.painter, done)
	return nil
}

// StopPainting 清除运行标志，不等待
func (c *Controller) StopPainting() {
	c.running.Store(false)
}

func (c *Controller) paintWorker(p Painter, done chan struct{}) {
	var res paint.RunResult
	defer func() {
		if r := recover(); r != nil {
			res = paint.RunResult{Reason: paint.StopFailed, Err: fmt.Errorf("%w: %v", paint.ErrCapability, r)}
			c.Error(res.Err.Error())
		}
		c.running.Store(false)
		c.mu.Lock()
		c.paintDone = nil
		c.mu.Unlock()

		close(done)

		c.emit(Event{Kind: EventStatus, Message: StatusStopped})
		c.emitFinal(Event{Kind: EventRunFinished, Result: res})
	}()

	if c.opts.BeforeRun != nil {
		if err := c.opts.BeforeRun(); err != nil {
			c.log.Warn("运行前准备失败: %v", err)
		}
	}
	res = p.Run(c.TargetPath, c.running.Load)
}

// ============ 取色 ============

// StartPicker 启动取色，涂色运行中返回 ErrBusy
func (c *Controller) StartPicker() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.picker == nil {
		return ErrNotBound
	}
	if c.paintDone != nil {
		return fmt.Errorf("%w: 正在涂色", ErrBusy)
	}

	onSample := func(s picker.Sample) {
		c.emit(Event{Kind: EventSample, Sample: s})
	}
	onConfirm := func(s picker.Sample) {
		c.emit(Event{Kind: EventConfirm, Sample: s})
	}
	if err := c.picker.Start(onSample, onConfirm); err != nil {
		if errors.Is(err, picker.ErrPickerRunning) {
			return fmt.Errorf("%w: %v", ErrBusy, err)
		}
		return err
	}
	c.emit(Event{Kind: EventStatus, Message: StatusPicking})

	go func(pk Picker) {
		r := pk.Wait()
		c.emit(Event{Kind: EventStatus, Message: StatusStopped})
		c.emitFinal(Event{Kind: EventPickerFinished, PickResult: r})
	}(c.picker)
	return nil
}

// StopPicker 结束取色，不等待
func (c *Controller) StopPicker() {
	c.mu.Lock()
	pk := c.picker
	c.mu.Unlock()
	if pk != nil {
		pk.Stop()
	}
}

// ============ 通知 ============

// Warning 实现 paint.Notifier
func (c *Controller) Warning(msg string) {
	c.log.Warn("%s", msg)
	c.emit(Event{Kind: EventWarning, Message: msg})
}

// Error 实现 paint.Notifier
func (c *Controller) Error(msg string) {
	c.log.Error("%s", msg)
	c.emit(Event{Kind: EventError, Message: msg})
}

// emit 非阻塞发送，队列满时丢弃
func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.log.Debug("事件队列已满，丢弃 %s", ev.Kind)
	}
}

// emitFinal 发送结束事件，队列满时最多等待 FinishTimeout
func (c *Controller) emitFinal(ev Event) {
	select {
	case c.events <- ev:
		return
	default:
	}

	timer := time.NewTimer(c.opts.FinishTimeout)
	defer timer.Stop()
	select {
	case c.events <- ev:
	case <-timer.C:
		c.log.Warn("事件队列已满且无人接收，丢弃 %s", ev.Kind)
	}
}

// ============ 关闭 ============

// Close 清除运行标志、停止取色，并在 timeout 内等待后台循环结束
//
// 超时未结束的循环被放弃，返回 ErrCloseTimeout。timeout <= 0 时使用默认值。
func (c *Controller) Close(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = c.opts.CloseTimeout
	}
	c.running.Store(false)

	c.mu.Lock()
	paintDone := c.paintDone
	pk := c.picker
	c.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		if paintDone != nil {
			<-paintDone
		}
		if pk != nil {
			pk.Stop()
			pk.Wait()
		}
		close(finished)
	}()

	select {
	case <-finished:
		c.log.Debug("后台任务已结束")
		return nil
	case <-time.After(timeout):
		c.log.Warn("后台任务在 %v 内未结束，已放弃", timeout)
		return ErrCloseTimeout
	}
}

var _ paint.Notifier = (*Controller)(nil)
