package permissions

import (
	"strings"
	"testing"
)

func TestInstructions(t *testing.T) {
	tests := []struct {
		name     string
		status   *Status
		contains []string
		empty    bool
	}{
		{"all granted", newStatus(true, true), nil, true},
		{"nil", nil, nil, true},
		{"missing accessibility", newStatus(false, true), []string{"辅助功能"}, false},
		{"missing both", newStatus(false, false), []string{"辅助功能", "屏幕录制"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Instructions(tt.status)
			if tt.empty {
				if got != "" {
					t.Errorf("Instructions() = %q, want empty", got)
				}
				return
			}
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Instructions() 缺少 %q: %s", s, got)
				}
			}
		})
	}

	if strings.Contains(Instructions(newStatus(true, false)), "辅助功能 (") {
		t.Error("只缺屏幕录制时不应提示辅助功能")
	}
}

func TestCheck(t *testing.T) {
	s := Check()
	if s == nil {
		t.Fatal("Check() 返回 nil")
	}
	if s.AllGranted != (s.Accessibility && s.ScreenRecording) {
		t.Errorf("AllGranted 不一致: %+v", s)
	}
}
