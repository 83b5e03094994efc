// Package paint 实现截图、匹配、点击的涂色循环
package paint

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync/atomic"
	"time"

	"github.com/zoeyai/autopainter/internal/logger"
	"github.com/zoeyai/autopainter/pkg/auto"
	"github.com/zoeyai/autopainter/pkg/vision"
)

// ErrCapability 截图、匹配或点击失败
var ErrCapability = errors.New("系统调用失败")

// ============ 依赖接口 ============

// Capturer 截取一帧
type Capturer interface {
	CaptureScreen() (image.Image, error)
}

// Clicker 移动并点击（帧坐标）
type Clicker interface {
	MoveAndClick(x, y int) error
}

// KeyState 查询按键是否按下
type KeyState interface {
	IsKeyPressed(key string) bool
	// Reset 清除运行开始前累积的按键记录
	Reset()
}

// ImageLoader 加载参考图
type ImageLoader func(path string) (*vision.Reference, error)

// Notifier 向操作者发送通知
type Notifier interface {
	Warning(msg string)
	Error(msg string)
}

// Submitter 提交按钮
type Submitter interface {
	Trigger() bool
}

// FrameObserver 每轮匹配后的回调，chosen 为 nil 表示本轮未匹配
type FrameObserver interface {
	ObserveFrame(frame image.Image, ref *vision.Reference, matches []vision.Match, chosen *vision.Match)
}

// Logger 日志接口，*logger.Logger 满足该接口
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Deps 引擎依赖
type Deps struct {
	Capturer  Capturer
	Finder    vision.Finder
	Clicker   Clicker
	Keys      KeyState
	Loader    ImageLoader
	Notifier  Notifier
	Submitter Submitter
	Observer  FrameObserver
	Logger    Logger
}

// ============ 运行结果 ============

// StopReason 停止原因
type StopReason int

const (
	// StopPredicate 运行标志被清除
	StopPredicate StopReason = iota
	// StopCancelled 检测到取消键
	StopCancelled
	// StopSubmitted 连续未匹配，已提交
	StopSubmitted
	// StopFailed 加载或系统调用失败
	StopFailed
)

func (r StopReason) String() string {
	switch r {
	case StopPredicate:
		return "stopped"
	case StopCancelled:
		return "cancelled"
	case StopSubmitted:
		return "submitted"
	case StopFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RunResult 一次运行的结果
type RunResult struct {
	Reason     StopReason
	Err        error
	Iterations int
	Clicks     int
}

// SubmittedNotice 提交并停止时的通知内容
const SubmittedNotice = "连续未找到匹配，已点击提交并停止"

// ============ 引擎 ============

// Engine 涂色引擎
//
// Run 的状态（参考图、扫描位置、未匹配计数）只由运行中的 goroutine 修改；
// 阈值和点击偏移可在运行时从其他 goroutine 调整。
type Engine struct {
	deps Deps
	opts *Options

	threshold   atomic.Uint64
	clickOffset atomic.Pointer[auto.Point]

	ref    *vision.Reference
	cursor ScanCursor
	misses int
}

// NewEngine 创建涂色引擎
func NewEngine(deps Deps, opts ...Option) *Engine {
	o := ApplyOptions(opts...)
	if deps.Loader == nil {
		deps.Loader = vision.LoadReference
	}
	if deps.Logger == nil {
		deps.Logger = logger.Default()
	}
	if deps.Notifier == nil {
		deps.Notifier = logNotifier{deps.Logger}
	}

	e := &Engine{deps: deps, opts: o}
	e.SetThreshold(o.Threshold)
	e.SetClickOffset(o.ClickOffset.X, o.ClickOffset.Y)
	return e
}

// SetThreshold 设置匹配阈值，超出 [0.5, 0.95] 时取边界值
func (e *Engine) SetThreshold(t float64) {
	e.threshold.Store(math.Float64bits(vision.ClampThreshold(t)))
}

// Threshold 当前匹配阈值
func (e *Engine) Threshold() float64 {
	return math.Float64frombits(e.threshold.Load())
}

// SetClickOffset 设置点击偏移
func (e *Engine) SetClickOffset(x, y int) {
	e.clickOffset.Store(&auto.Point{X: x, Y: y})
}

// ClickOffset 当前点击偏移
func (e *Engine) ClickOffset() auto.Point {
	return *e.clickOffset.Load()
}

// Run 运行涂色循环，直到 running() 返回 false、取消键按下、
// 连续未匹配超过上限或发生致命错误。任何情况下都会返回。
func (e *Engine) Run(targetPath func() string, running func() bool) (res RunResult) {
	e.ref = nil
	e.cursor.Reset()
	e.misses = 0
	if e.deps.Keys != nil {
		e.deps.Keys.Reset()
	}

	defer func() {
		if r := recover(); r != nil {
			res.Reason = StopFailed
			res.Err = fmt.Errorf("%w: %v", ErrCapability, r)
			e.deps.Notifier.Error(res.Err.Error())
		}
		e.deps.Logger.Info("涂色结束: %s (轮次 %d, 点击 %d)", res.Reason, res.Iterations, res.Clicks)
	}()

	for running() {
		if e.deps.Keys != nil && e.deps.Keys.IsKeyPressed(e.opts.CancelKey) {
			res.Reason = StopCancelled
			return res
		}

		path := targetPath()
		if path == "" {
			e.opts.Sleep(e.opts.IdleInterval)
			continue
		}

		if e.ref == nil || e.ref.Path != path {
			if err := e.load(path); err != nil {
				return e.fail(res, err)
			}
		}

		stop, err := e.step(&res)
		if err != nil {
			return e.fail(res, err)
		}
		if stop {
			res.Reason = StopSubmitted
			return res
		}

		e.opts.Sleep(e.opts.LoopInterval)
	}

	res.Reason = StopPredicate
	return res
}

// load 加载新的参考图并清除扫描位置
func (e *Engine) load(path string) error {
	ref, err := e.deps.Loader(path)
	if err != nil {
		e.ref = nil
		return err
	}
	e.ref = ref
	e.cursor.Reset()
	w, h := ref.Size()
	e.deps.Logger.Info("已加载参考图: %s (%dx%d)", path, w, h)
	return nil
}

// step 执行一轮截图、匹配、点击，返回是否应提交并停止
func (e *Engine) step(res *RunResult) (bool, error) {
	start := time.Now()

	frame, err := e.deps.Capturer.CaptureScreen()
	if err != nil {
		return false, fmt.Errorf("%w: 截图失败: %v", ErrCapability, err)
	}

	matches, err := e.deps.Finder.FindAll(frame, e.ref, e.Threshold())
	if err != nil {
		return false, fmt.Errorf("%w: 匹配失败: %v", ErrCapability, err)
	}
	res.Iterations++

	if len(matches) == 0 {
		e.cursor.Reset()
		e.misses++
		e.observe(frame, matches, nil)
		e.deps.Logger.Debug("未找到匹配 (%d/%d)", e.misses, e.opts.MissLimit)

		if e.misses > e.opts.MissLimit {
			if e.deps.Submitter != nil {
				e.deps.Submitter.Trigger()
			}
			e.deps.Notifier.Warning(SubmittedNotice)
			return true, nil
		}
		return false, nil
	}

	m, _ := e.cursor.Next(matches)
	p := e.clickPoint(m)
	if err := e.deps.Clicker.MoveAndClick(p.X, p.Y); err != nil {
		return false, fmt.Errorf("%w: 点击失败: %v", ErrCapability, err)
	}
	e.misses = 0
	res.Clicks++
	e.observe(frame, matches, &m)
	e.deps.Logger.Debug("点击 (%d, %d) 得分 %.3f, 共 %d 个匹配, 耗时 %dms",
		p.X, p.Y, m.Score, len(matches), time.Since(start).Milliseconds())
	return false, nil
}

// clickPoint 匹配中心加点击偏移
func (e *Engine) clickPoint(m vision.Match) auto.Point {
	return e.ref.CenterOf(m).Add(e.ClickOffset())
}

func (e *Engine) observe(frame image.Image, matches []vision.Match, chosen *vision.Match) {
	if e.deps.Observer != nil {
		e.deps.Observer.ObserveFrame(frame, e.ref, matches, chosen)
	}
}

// fail 报告错误并以失败结束
func (e *Engine) fail(res RunResult, err error) RunResult {
	res.Reason = StopFailed
	res.Err = err
	e.deps.Notifier.Error(err.Error())
	return res
}

// Misses 当前连续未匹配次数
func (e *Engine) Misses() int {
	return e.misses
}

// logNotifier 仅写日志的通知器
type logNotifier struct {
	log Logger
}

func (n logNotifier) Warning(msg string) { n.log.Warn("%s", msg) }
func (n logNotifier) Error(msg string)   { n.log.Error("%s", msg) }
