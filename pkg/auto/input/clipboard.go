package input

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// CopyToClipboard 复制到剪贴板
func CopyToClipboard(text string) error {
	if err := robotgo.WriteAll(text); err != nil {
		return fmt.Errorf("写入剪贴板失败: %w", err)
	}
	return nil
}
