package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zoeyai/autopainter/pkg/palette"
)

var colorsCmd = &cobra.Command{
	Use:   "colors",
	Short: "列出调色板中的颜色及缺失的参考图",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		pal, err := palette.Load(cfg.PaletteFile, cfg.ColorDir)
		if err != nil {
			return err
		}

		fmt.Printf("调色板: %d 个颜色 (目录 %s, 默认 %s)\n", pal.Len(), pal.Dir(), pal.Default())
		fmt.Println(strings.Join(pal.Names(), ", "))

		if missing := pal.Missing(); len(missing) > 0 {
			fmt.Printf("\n缺少参考图 (%d): %s\n", len(missing), strings.Join(missing, ", "))
			fmt.Println("可使用 autopainter pick --save <颜色名> 生成")
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "显示当前配置",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		m := configManager()
		fmt.Printf("配置文件: %s (存在: %v)\n", m.GetConfigFile(), m.Exists())
		fmt.Printf("%+v\n", *cfg)
		return nil
	},
}

var configClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "删除配置文件",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configManager().Clear()
	},
}

func init() {
	configCmd.AddCommand(configClearCmd)
	rootCmd.AddCommand(colorsCmd, configCmd)
}
