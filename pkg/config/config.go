// Package config 管理涂色程序的本地 JSON 配置
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zoeyai/autopainter/pkg/vision"
)

// 阈值上下限
const (
	MinThreshold     = vision.MinThreshold
	MaxThreshold     = vision.MaxThreshold
	DefaultThreshold = vision.DefaultThreshold
)

// 截图后端
const (
	CaptureRobotgo    = "robotgo"
	CaptureScreenshot = "screenshot"
)

// 匹配算法
const (
	MatcherCV  = "cv"
	MatcherNCC = "ncc"
)

// PainterConfig 涂色配置
type PainterConfig struct {
	Threshold    float64 `json:"threshold"`
	ClickOffsetX int     `json:"click_offset_x"`
	ClickOffsetY int     `json:"click_offset_y"`

	LoopIntervalMs int    `json:"loop_interval_ms"`
	IdleIntervalMs int    `json:"idle_interval_ms"`
	MissLimit      int    `json:"miss_limit"`
	CancelKey      string `json:"cancel_key"`

	SubmitImage string `json:"submit_image"`
	PaletteFile string `json:"palette_file"`
	ColorDir    string `json:"color_dir"`

	CaptureBackend string `json:"capture_backend"`
	Display        int    `json:"display"`
	Matcher        string `json:"matcher"`

	PickerIntervalMs int    `json:"picker_interval_ms"`
	FocusProcess     string `json:"focus_process"`

	DebugDir     string `json:"debug_dir"`
	DebugEveryMs int    `json:"debug_every_ms"`

	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`
}

// DefaultPainterConfig 默认涂色配置
func DefaultPainterConfig() *PainterConfig {
	return &PainterConfig{
		Threshold:        DefaultThreshold,
		LoopIntervalMs:   10,
		IdleIntervalMs:   100,
		MissLimit:        50,
		CancelKey:        "esc",
		SubmitImage:      filepath.Join("src", "icon", "submit.png"),
		PaletteFile:      filepath.Join("src", "data", "colors.json"),
		ColorDir:         filepath.Join("src", "color"),
		CaptureBackend:   CaptureRobotgo,
		Display:          0,
		Matcher:          MatcherCV,
		PickerIntervalMs: 50,
		DebugEveryMs:     1000,
		LogLevel:         "info",
	}
}

// ClampThreshold 将阈值限制在 [MinThreshold, MaxThreshold]
func ClampThreshold(t float64) float64 {
	return vision.ClampThreshold(t)
}

// Validate 修正非法配置值
func (c *PainterConfig) Validate() {
	d := DefaultPainterConfig()

	c.Threshold = ClampThreshold(c.Threshold)
	if c.LoopIntervalMs <= 0 {
		c.LoopIntervalMs = d.LoopIntervalMs
	}
	if c.IdleIntervalMs <= 0 {
		c.IdleIntervalMs = d.IdleIntervalMs
	}
	if c.MissLimit <= 0 {
		c.MissLimit = d.MissLimit
	}
	if c.PickerIntervalMs <= 0 {
		c.PickerIntervalMs = d.PickerIntervalMs
	}
	if c.DebugEveryMs <= 0 {
		c.DebugEveryMs = d.DebugEveryMs
	}
	if c.Display < 0 {
		c.Display = 0
	}

	c.CancelKey = strings.ToLower(strings.TrimSpace(c.CancelKey))
	if c.CancelKey == "" {
		c.CancelKey = d.CancelKey
	}

	switch c.CaptureBackend {
	case CaptureRobotgo, CaptureScreenshot:
	default:
		c.CaptureBackend = d.CaptureBackend
	}
	switch c.Matcher {
	case MatcherCV, MatcherNCC:
	default:
		c.Matcher = d.Matcher
	}

	if c.SubmitImage == "" {
		c.SubmitImage = d.SubmitImage
	}
	if c.PaletteFile == "" {
		c.PaletteFile = d.PaletteFile
	}
	if c.ColorDir == "" {
		c.ColorDir = d.ColorDir
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Manager 配置管理器
type Manager struct {
	configDir  string
	configFile string
	mu         sync.RWMutex
}

// NewManager 创建配置管理器
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return NewManagerWithDir(filepath.Join(homeDir, ".autopainter"))
}

// NewManagerWithDir 使用指定目录创建配置管理器
func NewManagerWithDir(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// NewManagerWithFile 使用指定配置文件创建配置管理器
func NewManagerWithFile(configFile string) *Manager {
	return &Manager{
		configDir:  filepath.Dir(configFile),
		configFile: configFile,
	}
}

// ensureDir 确保配置目录存在
func (m *Manager) ensureDir() error {
	return os.MkdirAll(m.configDir, 0755)
}

// Load 加载配置，文件不存在时返回默认配置
// 未出现在文件中的字段保持默认值
func (m *Manager) Load() (*PainterConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return DefaultPainterConfig(), nil
	}

	data, err := os.ReadFile(m.configFile)
	if err != nil {
		return DefaultPainterConfig(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := DefaultPainterConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return DefaultPainterConfig(), fmt.Errorf("解析配置文件失败: %w", err)
	}

	config.Validate()
	return config, nil
}

// Save 保存配置
func (m *Manager) Save(config *PainterConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureDir(); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(m.configFile, data, 0600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// Clear 清除配置
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return nil
	}

	return os.Remove(m.configFile)
}

// GetConfigDir 获取配置目录
func (m *Manager) GetConfigDir() string {
	return m.configDir
}

// GetConfigFile 获取配置文件路径
func (m *Manager) GetConfigFile() string {
	return m.configFile
}

// Exists 检查配置文件是否存在
func (m *Manager) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := os.Stat(m.configFile)
	return err == nil
}

// 全局配置管理器
var defaultManager = NewManager()

// GetDefaultManager 获取默认配置管理器
func GetDefaultManager() *Manager {
	return defaultManager
}

// Load 使用默认管理器加载配置
func Load() (*PainterConfig, error) {
	return defaultManager.Load()
}

// Save 使用默认管理器保存配置
func Save(config *PainterConfig) error {
	return defaultManager.Save(config)
}

// Clear 使用默认管理器清除配置
func Clear() error {
	return defaultManager.Clear()
}
