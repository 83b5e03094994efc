package screen

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// WritePNG 将图像保存为 PNG 文件，自动创建目录
func WritePNG(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("图像为空")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("PNG 编码失败: %w", err)
	}
	return f.Close()
}
