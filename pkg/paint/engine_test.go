package paint

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zoeyai/autopainter/pkg/auto"
	"github.com/zoeyai/autopainter/pkg/vision"
)

// ============ 测试替身 ============

type fakeCapturer struct {
	calls int
	err   error
}

func (c *fakeCapturer) CaptureScreen() (image.Image, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return image.NewRGBA(image.Rect(0, 0, 200, 100)), nil
}

// scriptFinder 按调用次序返回匹配结果，超出脚本长度时返回最后一项
type scriptFinder struct {
	script     [][]vision.Match
	calls      int
	thresholds []float64
	refs       []string
	err        error
	panicMsg   string
}

func (f *scriptFinder) FindAll(frame image.Image, ref *vision.Reference, threshold float64) ([]vision.Match, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.calls++
	f.thresholds = append(f.thresholds, threshold)
	f.refs = append(f.refs, ref.Path)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.script) == 0 {
		return nil, nil
	}
	i := f.calls - 1
	if i >= len(f.script) {
		i = len(f.script) - 1
	}
	return f.script[i], nil
}

type fakeClicker struct {
	points []auto.Point
	err    error
}

func (c *fakeClicker) MoveAndClick(x, y int) error {
	if c.err != nil {
		return c.err
	}
	c.points = append(c.points, auto.Point{X: x, Y: y})
	return nil
}

// fakeKeys pressed 为按住状态，latched 为尚未查询的按下记录
type fakeKeys struct {
	pressed map[string]bool
	latched map[string]bool
	queries int
	resets  int
}

func (k *fakeKeys) IsKeyPressed(key string) bool {
	k.queries++
	hit := k.latched[key]
	delete(k.latched, key)
	return k.pressed[key] || hit
}

func (k *fakeKeys) Reset() {
	k.resets++
	clear(k.latched)
}

type fakeNotifier struct {
	warnings []string
	errors   []string
}

func (n *fakeNotifier) Warning(msg string) { n.warnings = append(n.warnings, msg) }
func (n *fakeNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }

type fakeSubmitter struct {
	calls int
}

func (s *fakeSubmitter) Trigger() bool {
	s.calls++
	return true
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type recordingObserver struct {
	frames int
	chosen []*vision.Match
}

func (o *recordingObserver) ObserveFrame(frame image.Image, ref *vision.Reference, matches []vision.Match, chosen *vision.Match) {
	o.frames++
	o.chosen = append(o.chosen, chosen)
}

// fakeLoader 返回指定尺寸的参考图并记录加载次数
func fakeLoader(w, h int, loads *int) ImageLoader {
	return func(path string) (*vision.Reference, error) {
		*loads++
		return &vision.Reference{Path: path, Image: image.NewRGBA(image.Rect(0, 0, w, h))}, nil
	}
}

// limit 前 n 次返回 true
func limit(n int) func() bool {
	calls := 0
	return func() bool {
		calls++
		return calls <= n
	}
}

func fixedPath(p string) func() string {
	return func() string { return p }
}

type harness struct {
	capturer  *fakeCapturer
	finder    *scriptFinder
	clicker   *fakeClicker
	keys      *fakeKeys
	notifier  *fakeNotifier
	submitter *fakeSubmitter
	observer  *recordingObserver
	loads     int
	sleeps    []time.Duration
}

func newHarness(script ...[]vision.Match) *harness {
	return &harness{
		capturer:  &fakeCapturer{},
		finder:    &scriptFinder{script: script},
		clicker:   &fakeClicker{},
		keys:      &fakeKeys{pressed: map[string]bool{}, latched: map[string]bool{}},
		notifier:  &fakeNotifier{},
		submitter: &fakeSubmitter{},
		observer:  &recordingObserver{},
	}
}

func (h *harness) engine(opts ...Option) *Engine {
	opts = append([]Option{WithSleep(func(d time.Duration) { h.sleeps = append(h.sleeps, d) })}, opts...)
	return NewEngine(Deps{
		Capturer:  h.capturer,
		Finder:    h.finder,
		Clicker:   h.clicker,
		Keys:      h.keys,
		Loader:    fakeLoader(10, 6, &h.loads),
		Notifier:  h.notifier,
		Submitter: h.submitter,
		Observer:  h.observer,
		Logger:    nopLogger{},
	}, opts...)
}

// ============ 未匹配与提交 ============

func TestRunSubmitsAfterMissLimitExceeded(t *testing.T) {
	h := newHarness()
	e := h.engine()

	res := e.Run(fixedPath("black.png"), limit(1000))

	if res.Reason != StopSubmitted {
		t.Fatalf("Reason = %s, want submitted", res.Reason)
	}
	if h.capturer.calls != DefaultMissLimit+1 {
		t.Errorf("截图次数 = %d, want %d", h.capturer.calls, DefaultMissLimit+1)
	}
	if h.submitter.calls != 1 {
		t.Errorf("提交次数 = %d, want 1", h.submitter.calls)
	}
	if len(h.notifier.warnings) != 1 || h.notifier.warnings[0] != SubmittedNotice {
		t.Errorf("应发送一次提交警告, 实际 %v", h.notifier.warnings)
	}
	if len(h.clicker.points) != 0 {
		t.Errorf("未匹配时不应点击, 实际 %v", h.clicker.points)
	}
}

func TestRunDoesNotSubmitAtMissLimit(t *testing.T) {
	h := newHarness()
	e := h.engine()

	res := e.Run(fixedPath("black.png"), limit(DefaultMissLimit))

	if res.Reason != StopPredicate {
		t.Fatalf("Reason = %s, want stopped", res.Reason)
	}
	if h.submitter.calls != 0 {
		t.Errorf("恰好达到上限时不应提交, 实际提交 %d 次", h.submitter.calls)
	}
	if e.Misses() != DefaultMissLimit {
		t.Errorf("Misses() = %d, want %d", e.Misses(), DefaultMissLimit)
	}
}

func TestRunHitResetsMissCounter(t *testing.T) {
	var script [][]vision.Match
	for i := 0; i < DefaultMissLimit; i++ {
		script = append(script, nil)
	}
	script = append(script, []vision.Match{m(3, 3)})
	script = append(script, nil)

	h := newHarness(script...)
	e := h.engine()

	res := e.Run(fixedPath("black.png"), limit(1000))

	if res.Reason != StopSubmitted {
		t.Fatalf("Reason = %s, want submitted", res.Reason)
	}
	want := DefaultMissLimit + 1 + DefaultMissLimit + 1
	if h.capturer.calls != want {
		t.Errorf("命中应重置计数, 截图次数 = %d, want %d", h.capturer.calls, want)
	}
	if res.Clicks != 1 || h.submitter.calls != 1 {
		t.Errorf("Clicks = %d, 提交 = %d", res.Clicks, h.submitter.calls)
	}
}

func TestRunCustomMissLimit(t *testing.T) {
	h := newHarness()
	e := h.engine(WithMissLimit(2))

	res := e.Run(fixedPath("black.png"), limit(100))
	if res.Reason != StopSubmitted || h.capturer.calls != 3 {
		t.Errorf("Reason = %s, 截图次数 = %d, want submitted/3", res.Reason, h.capturer.calls)
	}
}

func TestRunSubmitWithoutSubmitter(t *testing.T) {
	h := newHarness()
	e := NewEngine(Deps{
		Capturer: h.capturer,
		Finder:   h.finder,
		Clicker:  h.clicker,
		Loader:   fakeLoader(4, 4, &h.loads),
		Notifier: h.notifier,
		Logger:   nopLogger{},
	}, WithMissLimit(1), WithSleep(func(time.Duration) {}))

	res := e.Run(fixedPath("black.png"), limit(10))
	if res.Reason != StopSubmitted || h.capturer.calls != 2 || len(h.notifier.warnings) != 1 {
		t.Errorf("无提交器时仍应停止并警告, Reason = %s, warnings = %v", res.Reason, h.notifier.warnings)
	}
}

// ============ 取消与运行标志 ============

func TestRunCancelKeyHasPriority(t *testing.T) {
	h := newHarness([]vision.Match{m(1, 1)})
	h.keys.pressed["esc"] = true
	e := h.engine()

	res := e.Run(fixedPath("black.png"), limit(100))

	if res.Reason != StopCancelled {
		t.Fatalf("Reason = %s, want cancelled", res.Reason)
	}
	if h.capturer.calls != 0 || h.finder.calls != 0 || len(h.clicker.points) != 0 {
		t.Errorf("取消后不应截图/匹配/点击: %d %d %d", h.capturer.calls, h.finder.calls, len(h.clicker.points))
	}
	if h.submitter.calls != 0 || len(h.notifier.errors) != 0 {
		t.Error("取消不应提交或报错")
	}
}

// 运行开始前按过的取消键不应让新的运行立即结束，仍按住时照常取消
func TestRunIgnoresCancelPressedBeforeStart(t *testing.T) {
	h := newHarness([]vision.Match{m(1, 1)})
	h.keys.latched["esc"] = true
	e := h.engine()

	res := e.Run(fixedPath("black.png"), limit(3))
	if res.Reason != StopPredicate || res.Clicks != 3 {
		t.Errorf("Reason = %s, Clicks = %d, want stopped after 3 clicks", res.Reason, res.Clicks)
	}
	if h.keys.resets != 1 {
		t.Errorf("Run 应清除一次按键记录, 实际 %d", h.keys.resets)
	}

	h.keys.pressed["esc"] = true
	if res := e.Run(fixedPath("black.png"), limit(3)); res.Reason != StopCancelled {
		t.Errorf("按住取消键时 Reason = %s, want cancelled", res.Reason)
	}
}

func TestRunCustomCancelKey(t *testing.T) {
	h := newHarness([]vision.Match{m(1, 1)})
	h.keys.pressed["esc"] = true
	e := h.engine(WithCancelKey("F8"))

	res := e.Run(fixedPath("black.png"), limit(3))
	if res.Reason != StopPredicate || res.Clicks != 3 {
		t.Errorf("非取消键不应停止, Reason = %s, Clicks = %d", res.Reason, res.Clicks)
	}

	h.keys.pressed["f8"] = true
	res = e.Run(fixedPath("black.png"), limit(3))
	if res.Reason != StopCancelled {
		t.Errorf("Reason = %s, want cancelled", res.Reason)
	}
}

func TestRunPredicateFalse(t *testing.T) {
	h := newHarness()
	e := h.engine()

	res := e.Run(fixedPath("black.png"), func() bool { return false })
	if res.Reason != StopPredicate {
		t.Errorf("Reason = %s, want stopped", res.Reason)
	}
	if h.capturer.calls != 0 || h.loads != 0 || h.keys.queries != 0 {
		t.Error("运行标志为 false 时不应有任何操作")
	}
}

func TestRunEmptyPathIdles(t *testing.T) {
	h := newHarness()
	e := h.engine()

	res := e.Run(fixedPath(""), limit(5))

	if res.Reason != StopPredicate {
		t.Fatalf("Reason = %s, want stopped", res.Reason)
	}
	if h.capturer.calls != 0 || h.loads != 0 {
		t.Errorf("空路径不应截图或加载: %d %d", h.capturer.calls, h.loads)
	}
	if e.Misses() != 0 {
		t.Errorf("空路径不应计入未匹配, Misses() = %d", e.Misses())
	}
	if len(h.sleeps) != 5 {
		t.Fatalf("sleep 次数 = %d, want 5", len(h.sleeps))
	}
	for _, d := range h.sleeps {
		if d != DefaultIdleInterval {
			t.Errorf("空闲间隔 = %v, want %v", d, DefaultIdleInterval)
		}
	}
}

// ============ 点击与扫描 ============

func TestRunClicksCenterPlusOffset(t *testing.T) {
	h := newHarness([]vision.Match{{X: 100, Y: 50, Score: 0.9}})
	e := h.engine(WithClickOffset(2, -1))

	res := e.Run(fixedPath("black.png"), limit(1))

	if res.Clicks != 1 || len(h.clicker.points) != 1 {
		t.Fatalf("应点击一次, 实际 %v", h.clicker.points)
	}
	// 参考图 10x6，中心 (105, 53)，偏移 (2, -1)
	if got := h.clicker.points[0]; got != (auto.Point{X: 107, Y: 52}) {
		t.Errorf("点击位置 = %+v, want {107 52}", got)
	}
	if len(h.sleeps) != 1 || h.sleeps[0] != DefaultLoopInterval {
		t.Errorf("每轮后应等待 %v, 实际 %v", DefaultLoopInterval, h.sleeps)
	}
}

func TestRunFollowsScanOrder(t *testing.T) {
	set := []vision.Match{m(50, 50), m(10, 50), m(10, 10)}
	h := newHarness(set)
	e := h.engine()

	e.Run(fixedPath("black.png"), limit(4))

	want := []auto.Point{{X: 15, Y: 13}, {X: 15, Y: 53}, {X: 55, Y: 53}, {X: 15, Y: 13}}
	if len(h.clicker.points) != len(want) {
		t.Fatalf("点击次数 = %d, want %d", len(h.clicker.points), len(want))
	}
	for i, w := range want {
		if h.clicker.points[i] != w {
			t.Errorf("第 %d 次点击 = %+v, want %+v", i+1, h.clicker.points[i], w)
		}
	}
}

func TestRunMissResetsScanPosition(t *testing.T) {
	set := []vision.Match{m(10, 10), m(50, 10)}
	h := newHarness(set, nil, set)
	e := h.engine()

	e.Run(fixedPath("black.png"), limit(3))

	if len(h.clicker.points) != 2 {
		t.Fatalf("点击次数 = %d, want 2", len(h.clicker.points))
	}
	if h.clicker.points[0] != h.clicker.points[1] {
		t.Errorf("未匹配后应从左上角重新开始: %v", h.clicker.points)
	}
}

func TestRunPathChangeReloadsAndResetsCursor(t *testing.T) {
	set := []vision.Match{m(10, 10), m(50, 10)}
	h := newHarness(set)
	e := h.engine()

	paths := []string{"black.png", "black.png", "red.png"}
	calls := 0
	target := func() string {
		p := paths[calls]
		calls++
		return p
	}

	e.Run(target, limit(3))

	if h.loads != 2 {
		t.Errorf("加载次数 = %d, want 2", h.loads)
	}
	want := []auto.Point{{X: 15, Y: 13}, {X: 55, Y: 13}, {X: 15, Y: 13}}
	for i, w := range want {
		if h.clicker.points[i] != w {
			t.Errorf("第 %d 次点击 = %+v, want %+v", i+1, h.clicker.points[i], w)
		}
	}
	if h.finder.refs[2] != "red.png" {
		t.Errorf("切换后应使用新参考图, 实际 %s", h.finder.refs[2])
	}
}

func TestRunSamePathLoadsOnce(t *testing.T) {
	h := newHarness([]vision.Match{m(1, 1)})
	e := h.engine()

	e.Run(fixedPath("black.png"), limit(10))
	if h.loads != 1 {
		t.Errorf("同一路径只应加载一次, 实际 %d", h.loads)
	}
}

func TestRunObserverSeesEveryFrame(t *testing.T) {
	h := newHarness([]vision.Match{m(1, 1)}, nil)
	e := h.engine()

	e.Run(fixedPath("black.png"), limit(2))

	if h.observer.frames != 2 {
		t.Fatalf("观察帧数 = %d, want 2", h.observer.frames)
	}
	if h.observer.chosen[0] == nil || h.observer.chosen[1] != nil {
		t.Errorf("chosen 应为 [非空, nil], 实际 %v", h.observer.chosen)
	}
}

// ============ 阈值 ============

func TestEngineThreshold(t *testing.T) {
	h := newHarness()
	e := h.engine()

	if e.Threshold() != vision.DefaultThreshold {
		t.Errorf("默认阈值 = %v, want %v", e.Threshold(), vision.DefaultThreshold)
	}

	tests := []struct {
		input, want float64
	}{
		{0.3, 0.5},
		{0.99, 0.95},
		{0.75, 0.75},
	}
	for _, tt := range tests {
		e.SetThreshold(tt.input)
		if got := e.Threshold(); got != tt.want {
			t.Errorf("SetThreshold(%v) -> %v, want %v", tt.input, got, tt.want)
		}
	}

	e.SetThreshold(0.99)
	e.Run(fixedPath("black.png"), limit(1))
	if len(h.finder.thresholds) != 1 || h.finder.thresholds[0] != 0.95 {
		t.Errorf("匹配器应收到截断后的阈值, 实际 %v", h.finder.thresholds)
	}
}

func TestEngineClickOffset(t *testing.T) {
	e := newHarness().engine()
	if e.ClickOffset() != (auto.Point{}) {
		t.Errorf("默认偏移应为 0, 实际 %+v", e.ClickOffset())
	}
	e.SetClickOffset(-3, 4)
	if e.ClickOffset() != (auto.Point{X: -3, Y: 4}) {
		t.Errorf("ClickOffset() = %+v", e.ClickOffset())
	}
}

// ============ 失败 ============

func TestRunLoadErrorsAreFatal(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0644); err != nil {
		t.Fatalf("创建测试文件失败: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"missing", filepath.Join(dir, "missing.png"), vision.ErrImageNotFound},
		{"undecodable", garbage, vision.ErrImageDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			e := NewEngine(Deps{
				Capturer:  h.capturer,
				Finder:    h.finder,
				Clicker:   h.clicker,
				Notifier:  h.notifier,
				Submitter: h.submitter,
				Logger:    nopLogger{},
			}, WithSleep(func(time.Duration) {}))

			res := e.Run(fixedPath(tt.path), limit(100))

			if res.Reason != StopFailed || !errors.Is(res.Err, tt.wantErr) {
				t.Fatalf("Run() = %s / %v, want failed / %v", res.Reason, res.Err, tt.wantErr)
			}
			if len(h.notifier.errors) != 1 {
				t.Errorf("应发送一次错误通知, 实际 %v", h.notifier.errors)
			}
			if h.capturer.calls != 0 {
				t.Error("加载失败后不应截图")
			}
		})
	}
}

func TestRunCapabilityFailures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name  string
		setup func(h *harness)
	}{
		{"capture", func(h *harness) { h.capturer.err = boom }},
		{"find", func(h *harness) { h.finder.err = boom }},
		{"click", func(h *harness) {
			h.finder.script = [][]vision.Match{{m(1, 1)}}
			h.clicker.err = boom
		}},
		{"panic", func(h *harness) { h.finder.panicMsg = "native crash" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			tt.setup(h)
			e := h.engine()

			res := e.Run(fixedPath("black.png"), limit(100))

			if res.Reason != StopFailed {
				t.Fatalf("Reason = %s, want failed", res.Reason)
			}
			if !errors.Is(res.Err, ErrCapability) {
				t.Errorf("错误应包装 ErrCapability, 实际 %v", res.Err)
			}
			if len(h.notifier.errors) != 1 {
				t.Errorf("应发送一次错误通知, 实际 %v", h.notifier.errors)
			}
			if h.submitter.calls != 0 {
				t.Error("失败时不应提交")
			}
		})
	}
}

func TestRunResetsStateBetweenRuns(t *testing.T) {
	h := newHarness()
	e := h.engine()

	e.Run(fixedPath("black.png"), limit(10))
	if e.Misses() != 10 {
		t.Fatalf("Misses() = %d, want 10", e.Misses())
	}

	e.Run(fixedPath("black.png"), func() bool { return false })
	if e.Misses() != 0 {
		t.Errorf("新一轮运行应重置计数, Misses() = %d", e.Misses())
	}
}

func TestStopReasonString(t *testing.T) {
	tests := map[StopReason]string{
		StopPredicate:  "stopped",
		StopCancelled:  "cancelled",
		StopSubmitted:  "submitted",
		StopFailed:     "failed",
		StopReason(99): "unknown",
	}
	for r, want := range tests {
		if r.String() != want {
			t.Errorf("%d.String() = %s, want %s", int(r), r.String(), want)
		}
	}
}
