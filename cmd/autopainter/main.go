package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zoeyai/autopainter/internal/logger"
	"github.com/zoeyai/autopainter/pkg/config"
	"github.com/zoeyai/autopainter/pkg/permissions"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	configFile string
	logLevel   string
	logFile    string

	rootCmd = &cobra.Command{
		Use:           "autopainter",
		Short:         "按颜色自动点击画布上的待涂色块",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("AutoPainter v%s\n", Version)
			fmt.Printf("Build Time: %s\n", BuildTime)
			fmt.Printf("Git Commit: %s\n", GitCommit)
		},
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "配置文件路径 (默认 ~/.autopainter/config.json)")
	pf.StringVar(&logLevel, "log-level", "", "日志级别 debug/info/warn/error")
	pf.StringVar(&logFile, "log-file", "", "日志文件路径")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		logger.Default().Close()
		os.Exit(1)
	}
	logger.Default().Close()
}

// configManager 根据 --config 选择配置管理器
func configManager() *config.Manager {
	if configFile != "" {
		return config.NewManagerWithFile(configFile)
	}
	return config.GetDefaultManager()
}

// loadConfig 加载配置并初始化日志，命令行日志参数优先
func loadConfig(cmd *cobra.Command) (*config.PainterConfig, error) {
	cfg, err := configManager().Load()
	if err != nil {
		logger.Warn("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultPainterConfig()
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("log-file") {
		cfg.LogFile = logFile
	}

	log := logger.Default()
	log.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if cfg.LogFile != "" {
		if err := log.SetFile(cfg.LogFile); err != nil {
			logger.Warn("打开日志文件失败: %v", err)
		}
	}
	return cfg, nil
}

// checkPermissions 缺少权限时打印说明并返回错误
func checkPermissions() error {
	status := permissions.Check()
	if status.AllGranted {
		return nil
	}
	fmt.Println(permissions.Instructions(status))
	permissions.OpenSettings(status)
	return fmt.Errorf("缺少系统权限")
}
