package main

import (
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zoeyai/autopainter/internal/app"
	"github.com/zoeyai/autopainter/internal/logger"
	"github.com/zoeyai/autopainter/pkg/auto/input"
	"github.com/zoeyai/autopainter/pkg/controller"
	"github.com/zoeyai/autopainter/pkg/picker"
	"github.com/zoeyai/autopainter/pkg/swatch"
)

var pickFlags struct {
	copy  bool
	save  string
	solid bool
	size  int
	scale float64
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "跟随鼠标取色，单击左键确认",
	RunE:  runPick,
}

func init() {
	f := pickCmd.Flags()
	f.BoolVar(&pickFlags.copy, "copy", true, "确认后复制颜色值到剪贴板")
	f.StringVar(&pickFlags.save, "save", "", "确认后保存为该颜色名称的参考图")
	f.BoolVar(&pickFlags.solid, "solid", false, "保存纯色参考图而不是截取屏幕区域")
	f.IntVar(&pickFlags.size, "size", swatch.DefaultSize, "参考图边长")
	f.Float64Var(&pickFlags.scale, "scale", 1, "参考图缩放倍数，与画布缩放一致")

	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := checkPermissions(); err != nil {
		return err
	}

	a, err := app.New(cfg, logger.Default())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Controller.StartPicker(); err != nil {
		return err
	}
	fmt.Printf("移动鼠标取色，单击左键确认，按 %s 取消\n", cfg.CancelKey)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var confirmed *picker.Sample
	for {
		select {
		case <-sigCh:
			a.Controller.StopPicker()
		case ev := <-a.Controller.Events():
			switch ev.Kind {
			case controller.EventSample:
				fmt.Printf("\r(%5d, %5d) %s", ev.Sample.Point.X, ev.Sample.Point.Y, ev.Sample.Hex())
			case controller.EventConfirm:
				s := ev.Sample
				confirmed = &s
			case controller.EventPickerFinished:
				fmt.Println()
				if confirmed == nil {
					fmt.Printf("取色结束: %s\n", ev.PickResult)
					return nil
				}
				return onPicked(a, *confirmed)
			}
		}
	}
}

// onPicked 输出、复制并按需保存取到的颜色
func onPicked(a *app.App, s picker.Sample) error {
	hex := s.Hex()
	fmt.Printf("已取色: %s (%d, %d)\n", hex, s.Point.X, s.Point.Y)

	if pickFlags.copy {
		if err := input.CopyToClipboard(hex); err != nil {
			logger.Warn("%v", err)
		} else {
			fmt.Println("已复制到剪贴板")
		}
	}

	if pickFlags.save == "" {
		return nil
	}

	img, err := makeSwatch(a.Source.CaptureScreen, a.Mapping.ToFrame, s, pickFlags.solid, pickFlags.size, pickFlags.scale)
	if err != nil {
		return err
	}

	path, err := swatch.Save(a.Palette, pickFlags.save, img)
	if err != nil {
		return err
	}
	if err := a.Palette.Save(a.Config.PaletteFile); err != nil {
		return err
	}
	fmt.Printf("参考图已保存: %s\n", path)
	return nil
}

// makeSwatch 生成参考图：纯色方块或截取取色点周围区域，再按倍数缩放
func makeSwatch(capture func() (image.Image, error), toFrame func(x, y int) (int, int),
	s picker.Sample, solid bool, size int, scale float64) (image.Image, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("缩放倍数必须大于 0: %v", scale)
	}

	var img image.Image
	if solid {
		img = swatch.Generate(s.Color, size)
	} else {
		frame, err := capture()
		if err != nil {
			return nil, fmt.Errorf("截图失败: %w", err)
		}
		fx, fy := toFrame(s.Point.X, s.Point.Y)
		img, err = swatch.Crop(frame, image.Pt(fx, fy), size)
		if err != nil {
			return nil, err
		}
	}

	if scale != 1 {
		img = swatch.Scale(img, scale)
	}
	return img, nil
}
