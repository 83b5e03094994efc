// Package ncc 实现纯 Go 的零均值归一化互相关模板匹配
//
// R、G、B 三个通道分别建立数值及其平方的积分图（summed-area table），
// 任意窗口的均值和方差可在 O(1) 内得到；互相关项逐像素累加。窗口得分
// 取三个通道 NCC 的最小值，颜色不同而亮度相同的窗口不会得到高分。
// 行按 GOMAXPROCS 分块并行计算，结果保持行优先顺序。
package ncc

import (
	"image"
	"math"
	"runtime"
	"sync"

	"github.com/zoeyai/autopainter/pkg/vision"
)

// 方差小于该值视为常量窗口
const flatEpsilon = 1e-3

// 常量通道均值允许的偏差（0-255）
const flatMeanTolerance = 0.5

// 通道数：R、G、B
const channels = 3

// plane 单个通道的数值与积分图
type plane struct {
	val        []float64
	integral   []float64
	integralSq []float64
}

// framePrecomp 帧的三通道预计算结果
type framePrecomp struct {
	ch   [channels]plane
	W, H int
}

// channelStats 模板单个通道的数值与统计量
type channelStats struct {
	val  []float64
	mean float64
	std  float64
}

// flat 通道是否为常量
func (c *channelStats) flat() bool {
	return c.std*c.std <= flatEpsilon
}

// templatePrecomp 模板的三通道统计量
type templatePrecomp struct {
	ch   [channels]channelStats
	W, H int
}

// Finder 纯 Go NCC 匹配器
type Finder struct {
	workers int

	mu      sync.Mutex
	refPath string
	tmpl    *templatePrecomp
}

// Option 配置函数
type Option func(*Finder)

// WithWorkers 设置并行行块数量
func WithWorkers(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.workers = n
		}
	}
}

// NewFinder 创建匹配器
func NewFinder(opts ...Option) *Finder {
	f := &Finder{workers: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FindAll 返回所有得分 >= threshold 的位置，按行优先排列
func (f *Finder) FindAll(frame image.Image, ref *vision.Reference, threshold float64) ([]vision.Match, error) {
	if frame == nil || ref == nil || ref.Image == nil {
		return nil, nil
	}
	pc := f.template(ref)
	if pc == nil {
		return nil, nil
	}

	fb := frame.Bounds()
	if fb.Dx() < pc.W || fb.Dy() < pc.H {
		return nil, nil
	}

	pre := buildFramePrecomp(frame)
	return f.scan(pre, pc, threshold), nil
}

// template 返回参考图的预计算结果，按路径缓存
func (f *Finder) template(ref *vision.Reference) *templatePrecomp {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.tmpl != nil && f.refPath == ref.Path {
		return f.tmpl
	}
	pc := buildTemplatePrecomp(ref.Image)
	f.tmpl = pc
	f.refPath = ref.Path
	return pc
}

// scan 并行扫描所有对齐位置
func (f *Finder) scan(pre *framePrecomp, pc *templatePrecomp, threshold float64) []vision.Match {
	rows := pre.H - pc.H + 1
	workers := f.workers
	if workers > rows {
		workers = rows
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (rows + workers - 1) / workers
	parts := make([][]vision.Match, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		y0 := i * chunk
		y1 := y0 + chunk
		if y1 > rows {
			y1 = rows
		}
		if y0 >= y1 {
			continue
		}
		wg.Add(1)
		go func(i, y0, y1 int) {
			defer wg.Done()
			parts[i] = scanRows(pre, pc, threshold, y0, y1)
		}(i, y0, y1)
	}
	wg.Wait()

	var out []vision.Match
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// scanRows 计算 [y0, y1) 行的所有位置
func scanRows(pre *framePrecomp, pc *templatePrecomp, threshold float64, y0, y1 int) []vision.Match {
	var out []vision.Match
	for y := y0; y < y1; y++ {
		for x := 0; x <= pre.W-pc.W; x++ {
			score := 1.0
			for c := 0; c < channels; c++ {
				s, ok := channelScore(&pre.ch[c], pre.W, &pc.ch[c], pc.W, pc.H, x, y)
				if !ok || s < threshold {
					score = -1
					break
				}
				if s < score {
					score = s
				}
			}
			if score >= threshold {
				out = append(out, vision.Match{X: x, Y: y, Score: score})
			}
		}
	}
	return out
}

// channelScore 计算单个通道在 (x, y) 处的 NCC，ok 为 false 表示该位置不可能匹配
func channelScore(p *plane, W int, t *channelStats, w, h, x, y int) (float64, bool) {
	n := float64(w * h)
	sumF := integralSum(p.integral, W, x, y, x+w-1, y+h-1)
	sumF2 := integralSum(p.integralSq, W, x, y, x+w-1, y+h-1)
	meanF := sumF / n
	varF := (sumF2 - sumF*sumF/n) / n

	switch {
	case t.flat():
		// 常量通道只与同值常量窗口匹配
		if varF > flatEpsilon || math.Abs(meanF-t.mean) > flatMeanTolerance {
			return 0, false
		}
		return 1, true
	case varF <= flatEpsilon:
		return 0, false
	}

	var sumFT float64
	for ty := 0; ty < h; ty++ {
		frow := p.val[(y+ty)*W+x : (y+ty)*W+x+w]
		trow := t.val[ty*w : (ty+1)*w]
		for tx, tv := range trow {
			sumFT += frow[tx] * tv
		}
	}
	numer := sumFT - n*meanF*t.mean
	denom := n * math.Sqrt(varF) * t.std
	if denom <= 0 {
		return 0, false
	}
	score := numer / denom
	if score > 1 {
		score = 1
	}
	return score, true
}

// channel8 将 16 位颜色分量转换为 0-255
func channel8(v uint32) float64 {
	return float64(v) / 257
}

// buildFramePrecomp 计算帧三个通道的数值和积分图
func buildFramePrecomp(frame image.Image) *framePrecomp {
	b := frame.Bounds()
	W, H := b.Dx(), b.Dy()
	need := W * H
	p := &framePrecomp{W: W, H: H}
	for c := range p.ch {
		p.ch[c] = plane{
			val:        make([]float64, need),
			integral:   make([]float64, need),
			integralSq: make([]float64, need),
		}
	}

	rgba, fast := frame.(*image.RGBA)
	var px [channels]float64
	for y := 0; y < H; y++ {
		var rowSum, rowSum2 [channels]float64
		for x := 0; x < W; x++ {
			if fast {
				i := rgba.PixOffset(b.Min.X+x, b.Min.Y+y)
				px[0], px[1], px[2] = float64(rgba.Pix[i]), float64(rgba.Pix[i+1]), float64(rgba.Pix[i+2])
			} else {
				r, g, bb, _ := frame.At(b.Min.X+x, b.Min.Y+y).RGBA()
				px[0], px[1], px[2] = channel8(r), channel8(g), channel8(bb)
			}
			off := y*W + x
			for c := 0; c < channels; c++ {
				pl := &p.ch[c]
				v := px[c]
				pl.val[off] = v
				rowSum[c] += v
				rowSum2[c] += v * v
				if y == 0 {
					pl.integral[off] = rowSum[c]
					pl.integralSq[off] = rowSum2[c]
				} else {
					pl.integral[off] = pl.integral[(y-1)*W+x] + rowSum[c]
					pl.integralSq[off] = pl.integralSq[(y-1)*W+x] + rowSum2[c]
				}
			}
		}
	}
	return p
}

// buildTemplatePrecomp 计算模板三个通道的数值、均值和标准差
func buildTemplatePrecomp(tmpl image.Image) *templatePrecomp {
	b := tmpl.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	pc := &templatePrecomp{W: w, H: h}
	var sum, sum2 [channels]float64
	for c := range pc.ch {
		pc.ch[c].val = make([]float64, w*h)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bb, _ := tmpl.At(b.Min.X+x, b.Min.Y+y).RGBA()
			px := [channels]float64{channel8(r), channel8(g), channel8(bb)}
			for c, v := range px {
				pc.ch[c].val[y*w+x] = v
				sum[c] += v
				sum2[c] += v * v
			}
		}
	}

	n := float64(w * h)
	for c := range pc.ch {
		mean := sum[c] / n
		variance := (sum2[c] - sum[c]*sum[c]/n) / n
		pc.ch[c].mean = mean
		if variance > 0 {
			pc.ch[c].std = math.Sqrt(variance)
		}
	}
	return pc
}

// integralSum 返回闭区间 [x0..x1] x [y0..y1] 的和
func integralSum(I []float64, W int, x0, y0, x1, y1 int) float64 {
	if x0 > x1 || y0 > y1 {
		return 0
	}
	at := func(x, y int) float64 {
		if x < 0 || y < 0 {
			return 0
		}
		return I[y*W+x]
	}
	return at(x1, y1) - at(x0-1, y1) - at(x1, y0-1) + at(x0-1, y0-1)
}
