package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPainterConfig(t *testing.T) {
	config := DefaultPainterConfig()

	if config.Threshold != 0.8 {
		t.Errorf("默认 Threshold 应为 0.8, 实际为 %v", config.Threshold)
	}
	if config.MissLimit != 50 {
		t.Errorf("默认 MissLimit 应为 50, 实际为 %d", config.MissLimit)
	}
	if config.LoopIntervalMs != 10 || config.IdleIntervalMs != 100 {
		t.Errorf("默认间隔错误: loop=%d idle=%d", config.LoopIntervalMs, config.IdleIntervalMs)
	}
	if config.CancelKey != "esc" {
		t.Errorf("默认 CancelKey 应为 esc, 实际为 %s", config.CancelKey)
	}
	if config.Matcher != MatcherCV || config.CaptureBackend != CaptureRobotgo {
		t.Errorf("默认后端错误: matcher=%s capture=%s", config.Matcher, config.CaptureBackend)
	}

	t.Logf("默认配置: %+v", config)
}

func TestClampThreshold(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{"below range", 0.1, 0.5},
		{"lower bound", 0.5, 0.5},
		{"inside range", 0.8, 0.8},
		{"upper bound", 0.95, 0.95},
		{"above range", 1.2, 0.95},
		{"nan", math.NaN(), DefaultThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampThreshold(tt.input); got != tt.want {
				t.Errorf("ClampThreshold(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	config := &PainterConfig{
		Threshold:      2,
		LoopIntervalMs: -1,
		MissLimit:      0,
		CancelKey:      " ESC ",
		CaptureBackend: "x11",
		Matcher:        "sift",
		Display:        -3,
	}
	config.Validate()

	d := DefaultPainterConfig()
	if config.Threshold != MaxThreshold {
		t.Errorf("Threshold 应被限制为 %v, 实际 %v", MaxThreshold, config.Threshold)
	}
	if config.LoopIntervalMs != d.LoopIntervalMs {
		t.Errorf("LoopIntervalMs 应回退为默认值, 实际 %d", config.LoopIntervalMs)
	}
	if config.MissLimit != d.MissLimit {
		t.Errorf("MissLimit 应回退为默认值, 实际 %d", config.MissLimit)
	}
	if config.CancelKey != "esc" {
		t.Errorf("CancelKey 应规范化为 esc, 实际 %q", config.CancelKey)
	}
	if config.CaptureBackend != CaptureRobotgo || config.Matcher != MatcherCV {
		t.Errorf("未知后端应回退为默认值: %s %s", config.CaptureBackend, config.Matcher)
	}
	if config.Display != 0 {
		t.Errorf("Display 不应为负数, 实际 %d", config.Display)
	}
	if config.SubmitImage != d.SubmitImage {
		t.Errorf("SubmitImage 应回退为默认值, 实际 %q", config.SubmitImage)
	}
}

func TestManagerSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	if manager.Exists() {
		t.Error("初始时配置文件不应存在")
	}

	config := DefaultPainterConfig()
	config.Threshold = 0.9
	config.ClickOffsetX = 3
	config.ClickOffsetY = -2
	config.Matcher = MatcherNCC
	config.CaptureBackend = CaptureScreenshot
	config.Display = 1
	config.FocusProcess = "chrome"

	if err := manager.Save(config); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}
	if !manager.Exists() {
		t.Error("保存后配置文件应存在")
	}

	loaded, err := manager.Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if *loaded != *config {
		t.Errorf("加载的配置不匹配:\n期望 %+v\n实际 %+v", config, loaded)
	}
}

func TestManagerLoadPartialFile(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	data := []byte(`{"threshold": 0.3, "color_dir": "swatches"}`)
	if err := os.WriteFile(manager.GetConfigFile(), data, 0600); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	loaded, err := manager.Load()
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if loaded.Threshold != MinThreshold {
		t.Errorf("阈值应被限制为 %v, 实际 %v", MinThreshold, loaded.Threshold)
	}
	if loaded.ColorDir != "swatches" {
		t.Errorf("ColorDir 应为 swatches, 实际 %s", loaded.ColorDir)
	}
	if loaded.MissLimit != 50 {
		t.Errorf("缺失字段应保持默认值, MissLimit 实际 %d", loaded.MissLimit)
	}
}

func TestManagerClear(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	if err := manager.Save(DefaultPainterConfig()); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}
	if !manager.Exists() {
		t.Fatal("保存后配置文件应存在")
	}

	if err := manager.Clear(); err != nil {
		t.Fatalf("清除配置失败: %v", err)
	}
	if manager.Exists() {
		t.Error("清除后配置文件不应存在")
	}

	// 清除不存在的文件不应报错
	if err := manager.Clear(); err != nil {
		t.Errorf("清除不存在的配置不应报错: %v", err)
	}
}

func TestManagerLoadNonExistent(t *testing.T) {
	manager := NewManagerWithDir(t.TempDir())

	config, err := manager.Load()
	if err != nil {
		t.Fatalf("加载不存在的配置不应报错: %v", err)
	}
	if *config != *DefaultPainterConfig() {
		t.Errorf("应返回默认配置, 实际 %+v", config)
	}
}

func TestManagerLoadCorruptedFile(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	configFile := filepath.Join(tempDir, "config.json")
	if err := os.WriteFile(configFile, []byte("not valid json"), 0600); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	config, err := manager.Load()
	if err == nil {
		t.Error("加载损坏的配置应返回错误")
	}
	if config == nil {
		t.Error("即使出错也应返回默认配置")
	}

	t.Logf("加载损坏配置的错误: %v", err)
}

func TestManagerPaths(t *testing.T) {
	tempDir := t.TempDir()
	manager := NewManagerWithDir(tempDir)

	if manager.GetConfigDir() != tempDir {
		t.Errorf("GetConfigDir 应为 %s", tempDir)
	}
	expectedFile := filepath.Join(tempDir, "config.json")
	if manager.GetConfigFile() != expectedFile {
		t.Errorf("GetConfigFile 应为 %s", expectedFile)
	}

	custom := filepath.Join(tempDir, "nested", "paint.json")
	fm := NewManagerWithFile(custom)
	if fm.GetConfigDir() != filepath.Dir(custom) || fm.GetConfigFile() != custom {
		t.Errorf("NewManagerWithFile 路径错误: %s %s", fm.GetConfigDir(), fm.GetConfigFile())
	}
	if err := fm.Save(DefaultPainterConfig()); err != nil {
		t.Fatalf("保存到嵌套目录失败: %v", err)
	}
}

func TestDefaultManager(t *testing.T) {
	manager := GetDefaultManager()
	if manager == nil {
		t.Fatal("GetDefaultManager 返回 nil")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("无法获取用户目录: %v", err)
	}
	expectedDir := filepath.Join(homeDir, ".autopainter")
	if manager.GetConfigDir() != expectedDir {
		t.Errorf("默认配置目录应为 %s, 实际为 %s", expectedDir, manager.GetConfigDir())
	}
}

func TestConfigFilePermissions(t *testing.T) {
	manager := NewManagerWithDir(t.TempDir())

	if err := manager.Save(DefaultPainterConfig()); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}

	info, err := os.Stat(manager.GetConfigFile())
	if err != nil {
		t.Fatalf("获取文件信息失败: %v", err)
	}
	t.Logf("配置文件权限: %o", info.Mode().Perm())
}
