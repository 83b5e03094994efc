//go:build windows

package input

import (
	"strings"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetAsyncKeyState = user32.NewProc("GetAsyncKeyState")
)

// 虚拟键码
var virtualKeys = map[string]uint16{
	"esc":    0x1B,
	"enter":  0x0D,
	"space":  0x20,
	"tab":    0x09,
	"delete": 0x2E,
	"ctrl":   0x11,
	"shift":  0x10,
	"alt":    0x12,
	"left":   0x01,
	"right":  0x02,
	"center": 0x04,
}

// winState 通过 GetAsyncKeyState 轮询按键
type winState struct{}

// NewState 创建按键状态查询器
func NewState() (State, error) {
	if err := procGetAsyncKeyState.Find(); err != nil {
		return nil, err
	}
	return winState{}, nil
}

// IsKeyPressed 按键是否按下
func (winState) IsKeyPressed(key string) bool {
	vk, ok := ParseVK(key)
	return ok && isDown(vk)
}

// IsButtonPressed 鼠标按钮是否按下
func (winState) IsButtonPressed(button string) bool {
	vk, ok := ParseVK(button)
	return ok && isDown(vk)
}

// Reset GetAsyncKeyState 只读取当前状态，无需清除
func (winState) Reset() {}

// Close 无需释放
func (winState) Close() error { return nil }

func isDown(vk uint16) bool {
	r, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return uint16(r)&0x8000 != 0
}

// ParseVK 将按键名称转换为 Windows 虚拟键码
// 支持 F1..F12、A..Z、0..9 和常用功能键
func ParseVK(key string) (uint16, bool) {
	k := NormalizeKey(key)
	if vk, ok := virtualKeys[k]; ok {
		return vk, true
	}
	if len(k) == 1 {
		c := strings.ToUpper(k)[0]
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return uint16(c), true
		}
	}
	if len(k) >= 2 && k[0] == 'f' {
		n := 0
		for _, ch := range k[1:] {
			if ch < '0' || ch > '9' {
				return 0, false
			}
			n = n*10 + int(ch-'0')
		}
		if n >= 1 && n <= 12 {
			return uint16(0x70 + n - 1), true
		}
	}
	return 0, false
}
