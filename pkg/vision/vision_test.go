package vision

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/zoeyai/autopainter/pkg/auto"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("创建文件失败: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("编码失败: %v", err)
	}
}

func TestLoadReference(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "black.png")
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(0, 0, color.RGBA{A: 255})
	writePNG(t, valid, img)

	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0644); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"valid png", valid, nil},
		{"missing file", filepath.Join(dir, "missing.png"), ErrImageNotFound},
		{"undecodable file", garbage, ErrImageDecode},
		{"directory", dir, ErrImageDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := LoadReference(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("LoadReference() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadReference() error = %v", err)
			}
			if ref.Path != tt.path {
				t.Errorf("Path = %s, want %s", ref.Path, tt.path)
			}
			if w, h := ref.Size(); w != 4 || h != 3 {
				t.Errorf("Size() = %dx%d, want 4x3", w, h)
			}
		})
	}
}

func TestClampThreshold(t *testing.T) {
	tests := []struct {
		input, want float64
	}{
		{0, 0.5},
		{0.49, 0.5},
		{0.7, 0.7},
		{0.96, 0.95},
		{1, 0.95},
	}
	for _, tt := range tests {
		if got := ClampThreshold(tt.input); got != tt.want {
			t.Errorf("ClampThreshold(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestBest(t *testing.T) {
	if _, ok := Best(nil); ok {
		t.Error("空结果不应返回最佳匹配")
	}

	matches := []Match{
		{X: 1, Y: 1, Score: 0.85},
		{X: 5, Y: 2, Score: 0.97},
		{X: 9, Y: 9, Score: 0.97},
		{X: 0, Y: 0, Score: 0.81},
	}
	best, ok := Best(matches)
	if !ok {
		t.Fatal("应返回最佳匹配")
	}
	if best.X != 5 || best.Y != 2 {
		t.Errorf("得分相同时应取最先出现的匹配, 实际 %+v", best)
	}
}

func TestReferenceCenterOf(t *testing.T) {
	ref := &Reference{Image: image.NewRGBA(image.Rect(0, 0, 9, 4))}
	got := ref.CenterOf(Match{X: 10, Y: 20})
	if got != (auto.Point{X: 14, Y: 22}) {
		t.Errorf("CenterOf() = %+v, want {14 22}", got)
	}

	var empty *Reference
	if w, h := empty.Size(); w != 0 || h != 0 {
		t.Errorf("nil Reference 尺寸应为 0, 实际 %dx%d", w, h)
	}
}

func TestFinderFunc(t *testing.T) {
	var called bool
	f := FinderFunc(func(frame image.Image, ref *Reference, threshold float64) ([]Match, error) {
		called = true
		return []Match{{X: 1, Y: 2, Score: threshold}}, nil
	})

	got, err := f.FindAll(nil, nil, 0.9)
	if err != nil || !called || len(got) != 1 || got[0].Score != 0.9 {
		t.Errorf("FinderFunc 调用异常: %v %v %v", got, err, called)
	}
}
