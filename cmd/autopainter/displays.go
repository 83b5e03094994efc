package main

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zoeyai/autopainter/pkg/auto/screen"
)

var displaysCmd = &cobra.Command{
	Use:   "displays",
	Short: "列出显示器序号和范围 (用于 --display)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return printDisplays(os.Stdout, screen.DisplayBounds(), cfg.Display)
	},
}

func init() {
	rootCmd.AddCommand(displaysCmd)
}

// printDisplays 输出显示器列表，标出当前配置的显示器
func printDisplays(w io.Writer, displays []image.Rectangle, current int) error {
	if len(displays) == 0 {
		return fmt.Errorf("未检测到显示器")
	}
	for i, b := range displays {
		mark := " "
		if i == current {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %d: %dx%d @ (%d, %d)\n", mark, i, b.Dx(), b.Dy(), b.Min.X, b.Min.Y)
	}
	return nil
}
