// Package debugdump 保存带标注的匹配画面，用于排查阈值和点击偏移
package debugdump

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/zoeyai/autopainter/internal/logger"
	"github.com/zoeyai/autopainter/pkg/auto/screen"
	"github.com/zoeyai/autopainter/pkg/vision"
)

var (
	matchColor  = color.RGBA{0, 255, 0, 255}
	chosenColor = color.RGBA{255, 0, 0, 255}
	labelColor  = color.RGBA{255, 255, 0, 255}
)

const labelSize = 11

var (
	fontOnce sync.Once
	goFont   *truetype.Font
)

func labelFont() *truetype.Font {
	fontOnce.Do(func() {
		f, err := truetype.Parse(goregular.TTF)
		if err == nil {
			goFont = f
		}
	})
	return goFont
}

// Dumper 按时间间隔保存标注后的画面，实现 paint.FrameObserver
type Dumper struct {
	dir   string
	every time.Duration
	now   func() time.Time
	log   *logger.Logger

	mu    sync.Mutex
	last  time.Time
	count int
}

// New 创建 Dumper，every <= 0 时每帧都保存
func New(dir string, every time.Duration) *Dumper {
	return &Dumper{
		dir:   dir,
		every: every,
		now:   time.Now,
		log:   logger.Default(),
	}
}

// SetLogger 替换日志
func (d *Dumper) SetLogger(l *logger.Logger) {
	if l != nil {
		d.log = l
	}
}

// Count 已保存的画面数量
func (d *Dumper) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// ObserveFrame 距上次保存超过间隔时保存一帧
func (d *Dumper) ObserveFrame(frame image.Image, ref *vision.Reference, matches []vision.Match, chosen *vision.Match) {
	d.mu.Lock()
	now := d.now()
	if !d.last.IsZero() && now.Sub(d.last) < d.every {
		d.mu.Unlock()
		return
	}
	d.last = now
	d.count++
	seq := d.count
	d.mu.Unlock()

	img := Annotate(frame, ref, matches, chosen)
	name := fmt.Sprintf("frame-%s-%04d.png", now.Format("20060102-150405"), seq)
	path := filepath.Join(d.dir, name)
	if err := screen.WritePNG(path, img); err != nil {
		d.log.Warn("保存调试画面失败: %v", err)
		return
	}
	d.log.Debug("已保存调试画面: %s (%d 个匹配)", path, len(matches))
}

// Annotate 复制画面并标出所有匹配框和得分，选中的匹配用红色
func Annotate(frame image.Image, ref *vision.Reference, matches []vision.Match, chosen *vision.Match) *image.RGBA {
	b := frame.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), frame, b.Min, draw.Src)

	w, h := ref.Size()
	if w == 0 || h == 0 {
		return out
	}

	for _, m := range matches {
		c := matchColor
		if chosen != nil && m.X == chosen.X && m.Y == chosen.Y {
			c = chosenColor
		}
		r := m.Rect(w, h)
		strokeRect(out, r, c)
		drawLabel(out, r.Min.X, r.Max.Y+1, fmt.Sprintf("%.2f", m.Score))
	}
	return out
}

// strokeRect 画 1 像素宽的矩形边框
func strokeRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}

func drawLabel(img *image.RGBA, x, y int, text string) {
	f := labelFont()
	if f == nil {
		return
	}

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(labelSize)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.NewUniform(labelColor))
	c.SetHinting(font.HintingFull)

	pt := freetype.Pt(x, y+int(c.PointToFixed(labelSize)>>6))
	c.DrawString(text, pt)
}
