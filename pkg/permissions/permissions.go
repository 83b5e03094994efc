// Package permissions 检查截屏和控制鼠标所需的系统权限
package permissions

import "strings"

// Status 权限状态
type Status struct {
	Accessibility   bool `json:"accessibility"`
	ScreenRecording bool `json:"screen_recording"`
	AllGranted      bool `json:"all_granted"`
}

func newStatus(accessibility, screenRecording bool) *Status {
	return &Status{
		Accessibility:   accessibility,
		ScreenRecording: screenRecording,
		AllGranted:      accessibility && screenRecording,
	}
}

// Instructions 缺少权限时的说明，全部授权时返回空字符串
func Instructions(s *Status) string {
	if s == nil || s.AllGranted {
		return ""
	}

	var b strings.Builder
	b.WriteString("需要授权以下权限才能自动涂色:\n")
	if !s.Accessibility {
		b.WriteString("  - 辅助功能 (移动鼠标、点击、监听取消键)\n")
		b.WriteString("    系统设置 > 隐私与安全性 > 辅助功能\n")
	}
	if !s.ScreenRecording {
		b.WriteString("  - 屏幕录制 (截屏匹配颜色)\n")
		b.WriteString("    系统设置 > 隐私与安全性 > 屏幕录制\n")
	}
	b.WriteString("授权后需要重启程序才能生效。")
	return b.String()
}
