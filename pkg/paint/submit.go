package paint

import (
	"sync"

	"github.com/zoeyai/autopainter/internal/logger"
	"github.com/zoeyai/autopainter/pkg/vision"
)

// SubmitTrigger 在新截图中查找提交按钮并点击
//
// 提交按钮图片在首次触发时加载，加载成功后复用。
// 点击得分最高的匹配中心，不加点击偏移。任何失败都只记录日志。
type SubmitTrigger struct {
	path      string
	capturer  Capturer
	finder    vision.Finder
	clicker   Clicker
	loader    ImageLoader
	threshold func() float64
	log       Logger

	mu  sync.Mutex
	ref *vision.Reference
}

// NewSubmitTrigger 创建提交触发器，threshold 为 nil 时使用默认阈值
func NewSubmitTrigger(path string, capturer Capturer, finder vision.Finder, clicker Clicker, threshold func() float64) *SubmitTrigger {
	if threshold == nil {
		threshold = func() float64 { return vision.DefaultThreshold }
	}
	return &SubmitTrigger{
		path:      path,
		capturer:  capturer,
		finder:    finder,
		clicker:   clicker,
		loader:    vision.LoadReference,
		threshold: threshold,
		log:       logger.Default(),
	}
}

// SetLogger 替换日志
func (s *SubmitTrigger) SetLogger(l Logger) {
	if l != nil {
		s.log = l
	}
}

// Path 提交按钮图片路径
func (s *SubmitTrigger) Path() string {
	return s.path
}

// Trigger 查找并点击提交按钮，返回是否点击
func (s *SubmitTrigger) Trigger() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ref == nil {
		ref, err := s.loader(s.path)
		if err != nil {
			s.log.Debug("提交按钮图片加载失败: %v", err)
			return false
		}
		s.ref = ref
	}

	frame, err := s.capturer.CaptureScreen()
	if err != nil {
		s.log.Debug("提交时截图失败: %v", err)
		return false
	}

	matches, err := s.finder.FindAll(frame, s.ref, s.threshold())
	if err != nil {
		s.log.Debug("提交按钮匹配失败: %v", err)
		return false
	}

	best, ok := vision.Best(matches)
	if !ok {
		s.log.Debug("未找到提交按钮")
		return false
	}

	p := s.ref.CenterOf(best)
	if err := s.clicker.MoveAndClick(p.X, p.Y); err != nil {
		s.log.Debug("点击提交按钮失败: %v", err)
		return false
	}
	s.log.Info("已点击提交按钮 (%d, %d) 得分 %.3f", p.X, p.Y, best.Score)
	return true
}
