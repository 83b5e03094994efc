package paint

import (
	"errors"
	"testing"
	"time"

	"github.com/zoeyai/autopainter/pkg/auto"
	"github.com/zoeyai/autopainter/pkg/vision"
)

func newTestSubmit(finder *scriptFinder, capturer *fakeCapturer, clicker *fakeClicker, loads *int) *SubmitTrigger {
	s := NewSubmitTrigger("submit.png", capturer, finder, clicker, nil)
	s.loader = fakeLoader(20, 10, loads)
	s.SetLogger(nopLogger{})
	return s
}

func TestSubmitTriggerClicksBestMatchCenter(t *testing.T) {
	finder := &scriptFinder{script: [][]vision.Match{{
		{X: 0, Y: 0, Score: 0.82},
		{X: 40, Y: 60, Score: 0.97},
		{X: 90, Y: 10, Score: 0.9},
	}}}
	clicker := &fakeClicker{}
	var loads int
	s := newTestSubmit(finder, &fakeCapturer{}, clicker, &loads)

	if !s.Trigger() {
		t.Fatal("找到提交按钮时应返回 true")
	}
	// 参考图 20x10，中心不加偏移
	if len(clicker.points) != 1 || clicker.points[0] != (auto.Point{X: 50, Y: 65}) {
		t.Errorf("点击位置 = %v, want [{50 65}]", clicker.points)
	}
	if finder.refs[0] != "submit.png" {
		t.Errorf("应匹配提交按钮图片, 实际 %s", finder.refs[0])
	}
	if finder.thresholds[0] != vision.DefaultThreshold {
		t.Errorf("未指定阈值时应使用默认值, 实际 %v", finder.thresholds[0])
	}
}

func TestSubmitTriggerUsesThresholdFunc(t *testing.T) {
	finder := &scriptFinder{}
	var loads int
	s := NewSubmitTrigger("submit.png", &fakeCapturer{}, finder, &fakeClicker{}, func() float64 { return 0.66 })
	s.loader = fakeLoader(4, 4, &loads)
	s.SetLogger(nopLogger{})

	s.Trigger()
	if len(finder.thresholds) != 1 || finder.thresholds[0] != 0.66 {
		t.Errorf("阈值 = %v, want [0.66]", finder.thresholds)
	}
}

func TestSubmitTriggerLoadsLazilyOnce(t *testing.T) {
	finder := &scriptFinder{script: [][]vision.Match{{m(1, 1)}}}
	var loads int
	s := newTestSubmit(finder, &fakeCapturer{}, &fakeClicker{}, &loads)

	if loads != 0 {
		t.Fatal("创建时不应加载图片")
	}
	s.Trigger()
	s.Trigger()
	if loads != 1 {
		t.Errorf("加载次数 = %d, want 1", loads)
	}
}

func TestSubmitTriggerFailuresAreSilent(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		capturer *fakeCapturer
		finder   *scriptFinder
		clicker  *fakeClicker
		loader   ImageLoader
	}{
		{"no match", &fakeCapturer{}, &scriptFinder{}, &fakeClicker{}, nil},
		{"capture error", &fakeCapturer{err: boom}, &scriptFinder{script: [][]vision.Match{{m(1, 1)}}}, &fakeClicker{}, nil},
		{"find error", &fakeCapturer{}, &scriptFinder{err: boom}, &fakeClicker{}, nil},
		{"click error", &fakeCapturer{}, &scriptFinder{script: [][]vision.Match{{m(1, 1)}}}, &fakeClicker{err: boom}, nil},
		{"load error", &fakeCapturer{}, &scriptFinder{script: [][]vision.Match{{m(1, 1)}}}, &fakeClicker{},
			func(string) (*vision.Reference, error) { return nil, vision.ErrImageNotFound }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var loads int
			s := newTestSubmit(tt.finder, tt.capturer, tt.clicker, &loads)
			if tt.loader != nil {
				s.loader = tt.loader
			}

			if s.Trigger() {
				t.Error("失败时应返回 false")
			}
			if len(tt.clicker.points) != 0 {
				t.Errorf("失败时不应点击, 实际 %v", tt.clicker.points)
			}
		})
	}
}

// 加载失败不缓存，下次触发重试
func TestSubmitTriggerRetriesLoad(t *testing.T) {
	finder := &scriptFinder{script: [][]vision.Match{{m(1, 1)}}}
	clicker := &fakeClicker{}
	var loads int
	s := newTestSubmit(finder, &fakeCapturer{}, clicker, &loads)

	ok := fakeLoader(4, 4, &loads)
	fail := true
	s.loader = func(path string) (*vision.Reference, error) {
		if fail {
			return nil, vision.ErrImageDecode
		}
		return ok(path)
	}

	if s.Trigger() {
		t.Fatal("首次加载失败应返回 false")
	}
	fail = false
	if !s.Trigger() {
		t.Fatal("加载成功后应点击")
	}
	if loads != 1 || len(clicker.points) != 1 {
		t.Errorf("loads = %d, clicks = %d", loads, len(clicker.points))
	}
	if s.Path() != "submit.png" {
		t.Errorf("Path() = %s", s.Path())
	}
}

func TestEngineWithSubmitTrigger(t *testing.T) {
	submitFinder := &scriptFinder{script: [][]vision.Match{{{X: 10, Y: 10, Score: 0.9}}}}
	submitClicker := &fakeClicker{}
	var submitLoads int
	submit := newTestSubmit(submitFinder, &fakeCapturer{}, submitClicker, &submitLoads)

	h := newHarness()
	e := NewEngine(Deps{
		Capturer:  h.capturer,
		Finder:    h.finder,
		Clicker:   h.clicker,
		Loader:    fakeLoader(4, 4, &h.loads),
		Notifier:  h.notifier,
		Submitter: submit,
		Logger:    nopLogger{},
	}, WithMissLimit(3), WithSleep(func(time.Duration) {}))

	res := e.Run(fixedPath("black.png"), limit(100))

	if res.Reason != StopSubmitted {
		t.Fatalf("Reason = %s, want submitted", res.Reason)
	}
	if len(submitClicker.points) != 1 || submitClicker.points[0] != (auto.Point{X: 20, Y: 15}) {
		t.Errorf("提交点击 = %v, want [{20 15}]", submitClicker.points)
	}
}
