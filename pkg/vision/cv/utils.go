package cv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ImageToMat 将 image.Image 转换为 BGR 格式的 gocv.Mat
func ImageToMat(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("图像转换失败: %w", err)
	}
	// 转换为 BGR（OpenCV 默认格式）
	dst := gocv.NewMat()
	gocv.CvtColor(mat, &dst, gocv.ColorRGBToBGR)
	mat.Close()
	return dst, nil
}
