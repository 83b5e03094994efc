package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zoeyai/autopainter/internal/app"
	"github.com/zoeyai/autopainter/internal/logger"
	"github.com/zoeyai/autopainter/pkg/auto/screen"
	"github.com/zoeyai/autopainter/pkg/config"
	"github.com/zoeyai/autopainter/pkg/controller"
	"github.com/zoeyai/autopainter/pkg/paint"
)

var paintFlags struct {
	color     string
	path      string
	threshold float64
	offsetX   int
	offsetY   int
	matcher   string
	backend   string
	display   int
	focus     string
	debugDir  string
	save      bool
}

var paintCmd = &cobra.Command{
	Use:   "paint",
	Short: "开始自动涂色，按取消键 (默认 Esc) 或 Ctrl+C 停止",
	RunE:  runPaint,
}

func init() {
	f := paintCmd.Flags()
	f.StringVarP(&paintFlags.color, "color", "c", "", "颜色名称 (默认 black)")
	f.StringVar(&paintFlags.path, "path", "", "直接指定参考图路径，优先于 --color")
	f.Float64VarP(&paintFlags.threshold, "threshold", "t", config.DefaultThreshold, "匹配阈值 [0.5, 0.95]")
	f.IntVar(&paintFlags.offsetX, "offset-x", 0, "点击位置 X 偏移")
	f.IntVar(&paintFlags.offsetY, "offset-y", 0, "点击位置 Y 偏移")
	f.StringVar(&paintFlags.matcher, "matcher", config.MatcherCV, "匹配器 cv/ncc")
	f.StringVar(&paintFlags.backend, "backend", config.CaptureRobotgo, "截图后端 robotgo/screenshot")
	f.IntVar(&paintFlags.display, "display", 0, "显示器序号 (screenshot 后端)")
	f.StringVar(&paintFlags.focus, "focus", "", "涂色前激活的浏览器进程名")
	f.StringVar(&paintFlags.debugDir, "debug-dir", "", "保存标注画面的目录")
	f.BoolVar(&paintFlags.save, "save", false, "保存参数到配置文件")

	rootCmd.AddCommand(paintCmd)
}

// applyPaintFlags 命令行参数优先级高于配置文件
func applyPaintFlags(cmd *cobra.Command, cfg *config.PainterConfig) {
	f := cmd.Flags()
	if f.Changed("threshold") {
		cfg.Threshold = paintFlags.threshold
	}
	if f.Changed("offset-x") {
		cfg.ClickOffsetX = paintFlags.offsetX
	}
	if f.Changed("offset-y") {
		cfg.ClickOffsetY = paintFlags.offsetY
	}
	if f.Changed("matcher") {
		cfg.Matcher = paintFlags.matcher
	}
	if f.Changed("backend") {
		cfg.CaptureBackend = paintFlags.backend
	}
	if f.Changed("display") {
		cfg.Display = paintFlags.display
	}
	if f.Changed("focus") {
		cfg.FocusProcess = paintFlags.focus
	}
	if f.Changed("debug-dir") {
		cfg.DebugDir = paintFlags.debugDir
	}
	cfg.Validate()
}

func runPaint(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyPaintFlags(cmd, cfg)
	if cfg.CaptureBackend == config.CaptureScreenshot {
		if err := screen.CheckDisplay(cfg.Display, screen.DisplayBounds()); err != nil {
			return fmt.Errorf("%w, 可用 autopainter displays 查看", err)
		}
	}

	if paintFlags.save {
		m := configManager()
		if err := m.Save(cfg); err != nil {
			logger.Warn("保存配置失败: %v", err)
		} else {
			logger.Info("配置已保存到 %s", m.GetConfigFile())
		}
	}

	if err := checkPermissions(); err != nil {
		return err
	}

	a, err := app.New(cfg, logger.Default())
	if err != nil {
		return err
	}
	defer a.Close()

	target := paintFlags.path
	if target == "" {
		target, err = a.Target(paintFlags.color)
		if err != nil {
			return err
		}
	}

	if err := a.Controller.StartPainting(target); err != nil {
		return err
	}
	fmt.Printf("目标: %s, 阈值 %.2f, 按 %s 停止\n", target, a.Engine.Threshold(), cfg.CancelKey)
	start := time.Now()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			logger.Info("收到中断信号，正在停止...")
			a.Controller.StopPainting()
		case ev := <-a.Controller.Events():
			switch ev.Kind {
			case controller.EventStatus:
				fmt.Printf("[STATUS] %s\n", ev.Message)
			case controller.EventRunFinished:
				elapsed := float64(time.Since(start).Microseconds()) / 1000
				logger.LogEvent("PAINT", ev.Result.Reason != paint.StopFailed, elapsed,
					fmt.Sprintf("%s clicks=%d", ev.Result.Reason, ev.Result.Clicks))
				if a.Dumper != nil {
					fmt.Printf("调试画面: %d 张, 目录 %s\n", a.Dumper.Count(), cfg.DebugDir)
				}
				return finishMessage(ev.Result)
			}
		}
	}
}

// finishMessage 打印结束原因，失败时返回错误
func finishMessage(res paint.RunResult) error {
	fmt.Printf("涂色结束: %s, 共 %d 轮, 点击 %d 次\n", res.Reason, res.Iterations, res.Clicks)
	if res.Reason == paint.StopFailed {
		return res.Err
	}
	return nil
}
