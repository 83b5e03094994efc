//go:build !windows

package input

import (
	"sync"

	hook "github.com/robotn/gohook"
)

// 鼠标按钮编号
var mouseButtons = map[string]uint16{
	"left":   1,
	"right":  2,
	"center": 3,
}

// tracker 根据全局钩子事件维护按下状态
// 两次查询之间发生的完整按下/抬起也会被报告一次
type tracker struct {
	mu      sync.Mutex
	keys    map[uint16]bool
	keyHits map[uint16]bool
	buttons map[uint16]bool
	btnHits map[uint16]bool
}

func newTracker() *tracker {
	return &tracker{
		keys:    make(map[uint16]bool),
		keyHits: make(map[uint16]bool),
		buttons: make(map[uint16]bool),
		btnHits: make(map[uint16]bool),
	}
}

func (t *tracker) handle(ev hook.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Kind {
	case hook.KeyHold, hook.KeyDown:
		t.keys[ev.Keycode] = true
		t.keyHits[ev.Keycode] = true
	case hook.KeyUp:
		t.keys[ev.Keycode] = false
	case hook.MouseHold:
		t.buttons[ev.Button] = true
		t.btnHits[ev.Button] = true
	case hook.MouseDown, hook.MouseUp:
		t.buttons[ev.Button] = false
		t.btnHits[ev.Button] = true
	}
}

func (t *tracker) keyPressed(code uint16) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	hit := t.keyHits[code]
	delete(t.keyHits, code)
	return t.keys[code] || hit
}

func (t *tracker) buttonPressed(code uint16) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	hit := t.btnHits[code]
	delete(t.btnHits, code)
	return t.buttons[code] || hit
}

// reset 清除未被查询的按下记录，保留仍按住的状态
func (t *tracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.keyHits)
	clear(t.btnHits)
}

// hookState 基于 gohook 的按键状态
type hookState struct {
	t    *tracker
	once sync.Once
}

// NewState 创建按键状态查询器，启动全局钩子
func NewState() (State, error) {
	s := &hookState{t: newTracker()}
	events := hook.Start()
	go func() {
		for ev := range events {
			s.t.handle(ev)
		}
	}()
	return s, nil
}

// IsKeyPressed 按键是否按下
func (s *hookState) IsKeyPressed(key string) bool {
	code, ok := hook.Keycode[NormalizeKey(key)]
	return ok && s.t.keyPressed(code)
}

// IsButtonPressed 鼠标按钮是否按下
func (s *hookState) IsButtonPressed(button string) bool {
	code, ok := mouseButtons[NormalizeKey(button)]
	return ok && s.t.buttonPressed(code)
}

// Reset 清除此前累积的按下记录
func (s *hookState) Reset() {
	s.t.reset()
}

// Close 停止全局钩子
func (s *hookState) Close() error {
	s.once.Do(hook.End)
	return nil
}
