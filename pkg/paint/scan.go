package paint

import (
	"github.com/zoeyai/autopainter/pkg/auto"
	"github.com/zoeyai/autopainter/pkg/vision"
)

// NextInScanOrder 按光栅顺序选择下一个匹配
//
// prev 为 nil 时取最上方一行的最左侧匹配；否则依次尝试：
// 同一行中 x 更大的最近匹配，下方最近一行的最左侧匹配，
// 最后回到最左上角的匹配。matches 为空时返回 false。
func NextInScanOrder(matches []vision.Match, prev *auto.Point) (vision.Match, bool) {
	if len(matches) == 0 {
		return vision.Match{}, false
	}

	first := topLeft(matches)
	if prev == nil {
		return first, true
	}

	var (
		sameRow  vision.Match
		haveSame bool
		below    vision.Match
		haveLow  bool
	)
	for _, m := range matches {
		switch {
		case m.Y == prev.Y && m.X > prev.X:
			if !haveSame || m.X < sameRow.X {
				sameRow, haveSame = m, true
			}
		case m.Y > prev.Y:
			if !haveLow || before(m, below) {
				below, haveLow = m, true
			}
		}
	}

	switch {
	case haveSame:
		return sameRow, true
	case haveLow:
		return below, true
	default:
		return first, true
	}
}

// topLeft 最小 y，其次最小 x
func topLeft(matches []vision.Match) vision.Match {
	best := matches[0]
	for _, m := range matches[1:] {
		if before(m, best) {
			best = m
		}
	}
	return best
}

// before 行优先比较
func before(a, b vision.Match) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// ScanCursor 记录上一次选择的位置
type ScanCursor struct {
	last *auto.Point
}

// Next 选择下一个匹配并记录其位置
func (c *ScanCursor) Next(matches []vision.Match) (vision.Match, bool) {
	m, ok := NextInScanOrder(matches, c.last)
	if ok {
		p := m.Point()
		c.last = &p
	}
	return m, ok
}

// Reset 清除上一次的位置，下次从左上角开始
func (c *ScanCursor) Reset() {
	c.last = nil
}

// Last 上一次选择的位置，没有时返回 nil
func (c *ScanCursor) Last() *auto.Point {
	if c.last == nil {
		return nil
	}
	p := *c.last
	return &p
}
