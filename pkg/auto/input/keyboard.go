package input

import "strings"

// State 按键与鼠标按钮的实时状态
type State interface {
	// IsKeyPressed 按键当前是否按下，key 如 "esc"、"f8"、"a"
	IsKeyPressed(key string) bool
	// IsButtonPressed 鼠标按钮当前是否按下，button 为 "left" / "right" / "center"
	IsButtonPressed(button string) bool
	// Reset 清除此前累积的按下记录，循环开始时调用
	Reset()
	// Close 释放底层资源
	Close() error
}

// 按键别名
var keyAliases = map[string]string{
	"escape":   "esc",
	"return":   "enter",
	"spacebar": "space",
	"del":      "delete",
	"control":  "ctrl",
	"primary":  "left",
	"middle":   "center",
}

// NormalizeKey 统一按键名称（小写、别名）
func NormalizeKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := keyAliases[k]; ok {
		return alias
	}
	return k
}
