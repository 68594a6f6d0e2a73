package input

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lexipop/config"
	"lexipop/hotkey"
	"lexipop/platform"
	"lexipop/state"
)

// fakeBackend is a scriptable platform backend.
type fakeBackend struct {
	mu      sync.Mutex
	x, y    int
	pressed bool
	hkErr   error
	posErr  error
	queries int
	closed  bool
}

func (f *fakeBackend) HotkeyPressed() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	if f.hkErr != nil {
		return false, f.hkErr
	}
	return f.pressed, nil
}

func (f *fakeBackend) CursorPos() (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.posErr != nil {
		return 0, 0, f.posErr
	}
	return f.x, f.y, nil
}

func (f *fakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeBackend) set(fn func(*fakeBackend)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeBackend) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries
}

func newTestPoller(set config.Settings, fb *fakeBackend) (*Poller, *state.Shared, *config.Store) {
	store := config.NewStore(&config.Config{Settings: set})
	shared := state.New()
	p := &Poller{
		cfg:     store,
		shared:  shared,
		backend: fb,
		pending: make(chan platform.Backend, 1),
		newBackend: func(hotkey.Spec) (platform.Backend, error) {
			return fb, nil
		},
	}
	return p, shared, store
}

func manualSettings() config.Settings {
	return config.Settings{Hotkey: "shift", MaxLookupLength: 25}
}

func TestManualModeRisingEdgeTriggersOnce(t *testing.T) {
	fb := &fakeBackend{x: 10, y: 10}
	p, shared, store := newTestPoller(manualSettings(), fb)

	// Settle the first tick so the initial position does not count as a move.
	p.tick(store.Snapshot().Settings)
	shared.HitScans.Drain()

	fb.set(func(f *fakeBackend) { f.pressed = true })
	for i := 0; i < 5; i++ {
		p.tick(store.Snapshot().Settings)
	}

	if !shared.Screenshot.TryConsume() {
		t.Fatal("rising edge should set the screenshot latch")
	}
	if shared.Screenshot.TryConsume() {
		t.Fatal("holding the hotkey must not re-trigger")
	}

	// Release and press again: a fresh edge triggers again.
	fb.set(func(f *fakeBackend) { f.pressed = false })
	p.tick(store.Snapshot().Settings)
	fb.set(func(f *fakeBackend) { f.pressed = true })
	p.tick(store.Snapshot().Settings)

	if !shared.Screenshot.TryConsume() {
		t.Fatal("a second rising edge should trigger again")
	}
}

func TestHotkeyIgnoredInAutoScanMode(t *testing.T) {
	set := manualSettings()
	set.AutoScanMode = true

	fb := &fakeBackend{x: 10, y: 10}
	p, shared, store := newTestPoller(set, fb)

	// Mode-entry edge fires exactly once, independent of the hotkey.
	p.tick(store.Snapshot().Settings)
	if !shared.Screenshot.TryConsume() {
		t.Fatal("auto-scan entry should set the latch once")
	}

	fb.set(func(f *fakeBackend) { f.pressed = true })
	for i := 0; i < 3; i++ {
		p.tick(store.Snapshot().Settings)
	}
	if shared.Screenshot.TryConsume() {
		t.Fatal("hotkey edges must not trigger while auto-scan mode is on")
	}
}

func TestAutoScanEntryEdge(t *testing.T) {
	fb := &fakeBackend{x: 10, y: 10}
	p, shared, store := newTestPoller(manualSettings(), fb)

	p.tick(store.Snapshot().Settings)
	if shared.Screenshot.IsSet() {
		t.Fatal("no trigger expected before auto-scan is enabled")
	}

	store.Update(func(c *config.Config) { c.Settings.AutoScanMode = true })
	p.tick(store.Snapshot().Settings)
	if !shared.Screenshot.TryConsume() {
		t.Fatal("toggling auto-scan on should trigger exactly once")
	}

	for i := 0; i < 4; i++ {
		p.tick(store.Snapshot().Settings)
	}
	if shared.Screenshot.TryConsume() {
		t.Fatal("auto-scan without movement must not keep triggering")
	}
}

func TestAutoScanMouseMoveGating(t *testing.T) {
	set := manualSettings()
	set.AutoScanMode = true
	set.AutoScanOnMouseMove = true

	fb := &fakeBackend{x: 10, y: 10}
	p, shared, store := newTestPoller(set, fb)

	// Swallow the mode-entry trigger.
	p.tick(store.Snapshot().Settings)
	shared.Screenshot.TryConsume()
	shared.HitScans.Drain()

	for i := 0; i < 5; i++ {
		p.tick(store.Snapshot().Settings)
	}
	if shared.Screenshot.TryConsume() {
		t.Fatal("unchanged pointer must not trigger")
	}

	fb.set(func(f *fakeBackend) { f.x = 11 })
	p.tick(store.Snapshot().Settings)
	if !shared.Screenshot.TryConsume() {
		t.Fatal("a pointer move should trigger one capture")
	}
	if shared.Screenshot.TryConsume() {
		t.Fatal("one move, one trigger")
	}
}

func TestHitScanQueueFollowsPointer(t *testing.T) {
	fb := &fakeBackend{x: 0, y: 0}
	p, shared, store := newTestPoller(manualSettings(), fb)

	p.tick(store.Snapshot().Settings)
	shared.HitScans.Drain()

	const moves = 4
	for i := 1; i <= moves; i++ {
		fb.set(func(f *fakeBackend) { f.x = i * 7 })
		p.tick(store.Snapshot().Settings)
		p.tick(store.Snapshot().Settings) // unchanged tick in between
	}

	tokens := shared.HitScans.Drain()
	if len(tokens) != moves {
		t.Fatalf("got %d hit-scan tokens, want %d", len(tokens), moves)
	}
	for i, tok := range tokens {
		if tok.Manual || tok.Payload != nil {
			t.Errorf("token %d = %+v, want {Manual:false Payload:<nil>}", i, tok)
		}
	}

	x, y := shared.Cursor()
	if x != moves*7 || y != 0 {
		t.Errorf("published cursor = (%d, %d), want (%d, 0)", x, y, moves*7)
	}
}

func TestHotkeyQueryFailureReadsAsReleased(t *testing.T) {
	fb := &fakeBackend{x: 10, y: 10, hkErr: errors.New("display hiccup")}
	p, shared, store := newTestPoller(manualSettings(), fb)

	for i := 0; i < 3; i++ {
		p.tick(store.Snapshot().Settings)
	}
	if shared.Screenshot.IsSet() {
		t.Fatal("a failing hotkey query must never trigger")
	}

	// Recovery: the first good pressed reading is a fresh rising edge.
	fb.set(func(f *fakeBackend) {
		f.hkErr = nil
		f.pressed = true
	})
	p.tick(store.Snapshot().Settings)
	if !shared.Screenshot.TryConsume() {
		t.Fatal("expected a trigger once the query recovers")
	}
}

func TestCursorQueryFailureSkipsTick(t *testing.T) {
	fb := &fakeBackend{x: 10, y: 10, posErr: errors.New("pointer unavailable"), pressed: true}
	p, shared, store := newTestPoller(manualSettings(), fb)

	p.tick(store.Snapshot().Settings)

	if shared.Screenshot.IsSet() {
		t.Error("a failed cursor read should skip the whole pass")
	}
	if shared.HitScans.Len() != 0 {
		t.Error("no hit-scan token expected on a skipped pass")
	}
	if p.lastPressed {
		t.Error("skipped pass must not persist hotkey state")
	}
}

func TestReapplySettingsSwapsBackend(t *testing.T) {
	// User holds shift the whole time. The shift backend reports pressed,
	// the ctrl backend does not until ctrl is actually held.
	shiftBackend := &fakeBackend{x: 10, y: 10, pressed: true}
	ctrlBackend := &fakeBackend{x: 10, y: 10, pressed: false}

	p, shared, store := newTestPoller(manualSettings(), shiftBackend)

	p.tick(store.Snapshot().Settings)
	if !shared.Screenshot.TryConsume() {
		t.Fatal("shift press should trigger with hotkey \"shift\"")
	}

	// Reconfigure to ctrl while the loop keeps running.
	p.newBackend = func(spec hotkey.Spec) (platform.Backend, error) {
		if len(spec.Mods) != 1 || spec.Mods[0] != hotkey.ModCtrl {
			t.Fatalf("unexpected spec: %v", spec.Mods)
		}
		return ctrlBackend, nil
	}
	store.Update(func(c *config.Config) { c.Settings.Hotkey = "ctrl" })
	if err := p.ReapplySettings(); err != nil {
		t.Fatalf("ReapplySettings: %v", err)
	}

	// Next tick adopts the swap; shift alone no longer triggers.
	shared.Screenshot.TryConsume()
	p.tick(store.Snapshot().Settings)
	p.tick(store.Snapshot().Settings)
	if shared.Screenshot.TryConsume() {
		t.Fatal("shift must not trigger after reconfiguring to ctrl")
	}
	if !shiftBackend.closed {
		t.Error("old backend should be closed after the swap")
	}

	// Pressing ctrl triggers. lastPressed is true from the shift backend's
	// final reading, so release first.
	ctrlBackend.set(func(f *fakeBackend) { f.pressed = false })
	p.tick(store.Snapshot().Settings)
	ctrlBackend.set(func(f *fakeBackend) { f.pressed = true })
	p.tick(store.Snapshot().Settings)
	if !shared.Screenshot.TryConsume() {
		t.Fatal("ctrl press should trigger after reconfiguration")
	}
}

func TestReapplySettingsRejectsBadHotkey(t *testing.T) {
	fb := &fakeBackend{x: 10, y: 10}
	p, _, store := newTestPoller(manualSettings(), fb)

	store.Update(func(c *config.Config) { c.Settings.Hotkey = "ctrl+banana" })
	if err := p.ReapplySettings(); err == nil {
		t.Fatal("expected an error for an unknown modifier")
	}

	// The old backend stays live.
	p.adoptPending()
	if p.currentBackend() != platform.Backend(fb) {
		t.Error("failed reconfiguration must leave the backend in place")
	}
}

func TestDisabledSuspendsSampling(t *testing.T) {
	fb := &fakeBackend{x: 10, y: 10}
	p, shared, _ := newTestPoller(manualSettings(), fb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shared.SetEnabled(false)

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	time.Sleep(250 * time.Millisecond)
	if n := fb.queryCount(); n != 0 {
		t.Errorf("disabled poller queried the backend %d times", n)
	}
	if shared.HitScans.Len() != 0 || shared.Screenshot.IsSet() {
		t.Error("disabled poller produced trigger activity")
	}

	// Re-enable: sampling resumes and the loop still honors the stop flag.
	shared.SetEnabled(true)
	time.Sleep(250 * time.Millisecond)
	if fb.queryCount() == 0 {
		t.Error("re-enabled poller never sampled")
	}

	shared.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop within a second of the running flag flipping")
	}
}

func TestIsVirtualHotkeyDown(t *testing.T) {
	fb := &fakeBackend{}
	p, _, store := newTestPoller(manualSettings(), fb)

	if p.IsVirtualHotkeyDown() {
		t.Error("nothing held, nothing virtual: want false")
	}

	fb.set(func(f *fakeBackend) { f.pressed = true })
	if !p.IsVirtualHotkeyDown() {
		t.Error("held hotkey should read as down")
	}

	fb.set(func(f *fakeBackend) {
		f.pressed = false
		f.hkErr = errors.New("hiccup")
	})
	if p.IsVirtualHotkeyDown() {
		t.Error("query failure should read as not down")
	}

	store.Update(func(c *config.Config) {
		c.Settings.AutoScanMode = true
		c.Settings.AutoScanLookupsWithoutHotkey = true
	})
	if !p.IsVirtualHotkeyDown() {
		t.Error("auto-scan with lookups-without-hotkey should read as always down")
	}
}
