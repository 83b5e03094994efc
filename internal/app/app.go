// Package app 根据配置组装截图、匹配、点击、取色和控制器
package app

import (
	"fmt"
	"time"

	"github.com/zoeyai/autopainter/internal/logger"
	"github.com/zoeyai/autopainter/pkg/auto/input"
	"github.com/zoeyai/autopainter/pkg/auto/screen"
	"github.com/zoeyai/autopainter/pkg/config"
	"github.com/zoeyai/autopainter/pkg/controller"
	"github.com/zoeyai/autopainter/pkg/debugdump"
	"github.com/zoeyai/autopainter/pkg/paint"
	"github.com/zoeyai/autopainter/pkg/palette"
	"github.com/zoeyai/autopainter/pkg/picker"
	"github.com/zoeyai/autopainter/pkg/process"
	"github.com/zoeyai/autopainter/pkg/vision"
	"github.com/zoeyai/autopainter/pkg/vision/cv"
	"github.com/zoeyai/autopainter/pkg/vision/ncc"
)

// App 组装好的运行时组件
type App struct {
	Config     *config.PainterConfig
	Log        *logger.Logger
	Palette    *palette.Palette
	Source     screen.Source
	Mapping    screen.Mapping
	Mouse      *input.Mouse
	State      input.State
	Finder     vision.Finder
	Engine     *paint.Engine
	Submit     *paint.SubmitTrigger
	Picker     *picker.Loop
	Controller *controller.Controller
	Dumper     *debugdump.Dumper

	closeFinder func()
}

// New 按配置创建全部组件，需要可用的显示器和输入设备
func New(cfg *config.PainterConfig, log *logger.Logger) (*App, error) {
	cfg.Validate()
	if log == nil {
		log = logger.Default()
	}

	pal, err := palette.Load(cfg.PaletteFile, cfg.ColorDir)
	if err != nil {
		return nil, err
	}

	src, err := screen.NewSource(cfg.CaptureBackend, cfg.Display)
	if err != nil {
		return nil, err
	}
	mapping, err := screen.Calibrate(src)
	if err != nil {
		return nil, err
	}
	log.Info("截图后端 %s, 原点 (%d, %d), 缩放 %.2fx%.2f",
		cfg.CaptureBackend, mapping.Origin.X, mapping.Origin.Y, mapping.Scale.X, mapping.Scale.Y)

	state, err := input.NewState()
	if err != nil {
		return nil, fmt.Errorf("初始化按键监听失败: %w", err)
	}

	finder, closeFinder, err := NewFinder(cfg.Matcher)
	if err != nil {
		state.Close()
		return nil, err
	}

	a := &App{
		Config:      cfg,
		Log:         log,
		Palette:     pal,
		Source:      src,
		Mapping:     mapping,
		Mouse:       input.NewMouse(input.WithMapper(mapping)),
		State:       state,
		Finder:      finder,
		closeFinder: closeFinder,
	}

	a.Controller = controller.New(ControllerOptions(cfg, log)...)

	// 提交按钮使用引擎当前的阈值
	a.Submit = paint.NewSubmitTrigger(cfg.SubmitImage, src, finder, a.Mouse, func() float64 {
		return a.Engine.Threshold()
	})
	a.Submit.SetLogger(log)

	deps := paint.Deps{
		Capturer:  src,
		Finder:    finder,
		Clicker:   a.Mouse,
		Keys:      state,
		Notifier:  a.Controller,
		Submitter: a.Submit,
		Logger:    log,
	}
	if cfg.DebugDir != "" {
		a.Dumper = debugdump.New(cfg.DebugDir, time.Duration(cfg.DebugEveryMs)*time.Millisecond)
		a.Dumper.SetLogger(log)
		deps.Observer = a.Dumper
	}
	a.Engine = paint.NewEngine(deps, EngineOptions(cfg)...)

	a.Picker = picker.New(a.Mouse, screen.NewPixelSampler(), state, PickerOptions(cfg, log)...)
	a.Controller.Bind(a.Engine, a.Picker)
	return a, nil
}

// Target 返回颜色对应的参考图路径，name 为空时使用默认颜色
func (a *App) Target(name string) (string, error) {
	return TargetPath(a.Palette, name)
}

// Close 停止后台循环并释放资源
func (a *App) Close() error {
	err := a.Controller.Close(0)
	if a.State != nil {
		a.State.Close()
	}
	if a.closeFinder != nil {
		a.closeFinder()
	}
	return err
}

// ============ 配置映射 ============

// NewFinder 按名称创建匹配器，返回释放函数
func NewFinder(matcher string) (vision.Finder, func(), error) {
	switch matcher {
	case "", config.MatcherCV:
		f := cv.NewFinder()
		return f, f.Close, nil
	case config.MatcherNCC:
		return ncc.NewFinder(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("不支持的匹配器: %s", matcher)
	}
}

// EngineOptions 配置 -> 涂色引擎选项
func EngineOptions(cfg *config.PainterConfig) []paint.Option {
	return []paint.Option{
		paint.WithThreshold(cfg.Threshold),
		paint.WithClickOffset(cfg.ClickOffsetX, cfg.ClickOffsetY),
		paint.WithLoopInterval(time.Duration(cfg.LoopIntervalMs) * time.Millisecond),
		paint.WithIdleInterval(time.Duration(cfg.IdleIntervalMs) * time.Millisecond),
		paint.WithMissLimit(cfg.MissLimit),
		paint.WithCancelKey(cfg.CancelKey),
	}
}

// PickerOptions 配置 -> 取色选项
func PickerOptions(cfg *config.PainterConfig, log *logger.Logger) []picker.Option {
	return []picker.Option{
		picker.WithInterval(time.Duration(cfg.PickerIntervalMs) * time.Millisecond),
		picker.WithCancelKey(cfg.CancelKey),
		picker.WithLogger(log),
	}
}

// ControllerOptions 配置 -> 控制器选项
func ControllerOptions(cfg *config.PainterConfig, log *logger.Logger) []controller.Option {
	opts := []controller.Option{controller.WithLogger(log)}
	if fn := process.FocusFunc(cfg.FocusProcess); fn != nil {
		opts = append(opts, controller.WithBeforeRun(fn))
	}
	return opts
}

// TargetPath 颜色名称 -> 参考图路径
func TargetPath(pal *palette.Palette, name string) (string, error) {
	if name == "" {
		name = pal.Default()
		if name == "" {
			return "", fmt.Errorf("%w: 调色板为空", palette.ErrUnknownColor)
		}
	}
	return pal.Path(name)
}
