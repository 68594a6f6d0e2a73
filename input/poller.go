// Package input runs the background poll loop that fuses pointer and hotkey
// samples into trigger events: the screenshot latch and the hit-scan queue.
package input

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lexipop/config"
	"lexipop/hotkey"
	"lexipop/platform"
	"lexipop/state"
)

const (
	// tickInterval bounds CPU usage and trigger latency together.
	tickInterval = 10 * time.Millisecond
	// disabledInterval is the coarser nap while sampling is paused.
	disabledInterval = 100 * time.Millisecond
)

// Poller owns one platform backend and runs the sampling loop on a single
// goroutine for the life of the process. All backend state transitions
// happen on that goroutine; reconfiguration hands a replacement backend over
// via a pending slot that the loop adopts at the top of a tick.
type Poller struct {
	cfg    *config.Store
	shared *state.Shared

	mu      sync.RWMutex // guards backend for the off-thread virtual-hotkey query
	backend platform.Backend

	pending    chan platform.Backend
	reapplyMu  sync.Mutex
	newBackend func(hotkey.Spec) (platform.Backend, error)

	lastX, lastY    int
	lastPressed     bool
	startedAutoMode bool
}

// New builds the poller and its initial backend. Errors here are fatal
// configuration problems: an unparsable hotkey or an unusable OS input
// subsystem.
func New(cfg *config.Store, shared *state.Shared) (*Poller, error) {
	p := &Poller{
		cfg:        cfg,
		shared:     shared,
		pending:    make(chan platform.Backend, 1),
		newBackend: platform.New,
	}

	combo := cfg.Snapshot().Settings.Hotkey
	backend, err := p.buildBackend(combo)
	if err != nil {
		return nil, err
	}
	p.backend = backend

	return p, nil
}

func (p *Poller) buildBackend(combo string) (platform.Backend, error) {
	spec, err := hotkey.Parse(combo)
	if err != nil {
		return nil, fmt.Errorf("invalid hotkey: %w", err)
	}

	backend, err := p.newBackend(spec)
	if err != nil {
		return nil, fmt.Errorf("input backend for hotkey %q: %w", combo, err)
	}
	return backend, nil
}

// Run samples until the shared running flag flips or ctx is cancelled.
// Shutdown latency is bounded by one tick.
func (p *Poller) Run(ctx context.Context) {
	slog.Debug("Input poller started")

	for p.shared.Running() {
		select {
		case <-ctx.Done():
			slog.Debug("Input poller stopped", "reason", "context cancelled")
			return
		default:
		}

		if !p.shared.Enabled() {
			time.Sleep(disabledInterval)
			continue
		}

		p.tick(p.cfg.Snapshot().Settings)
		time.Sleep(tickInterval)
	}

	slog.Debug("Input poller stopped")
}

// tick performs one sample-and-trigger pass. Query failures never escape:
// a failed cursor read skips the pass, a failed hotkey read counts as "not
// pressed" for this tick only.
func (p *Poller) tick(set config.Settings) {
	p.adoptPending()

	backend := p.currentBackend()

	x, y, err := backend.CursorPos()
	if err != nil {
		slog.Debug("Cursor query failed, skipping tick", "error", err)
		return
	}

	pressed, err := backend.HotkeyPressed()
	if err != nil {
		slog.Debug("Hotkey query failed, treating as released", "error", err)
		pressed = false
	}

	moved := x != p.lastX || y != p.lastY

	// Manual mode: trigger a capture on the rising edge only, holding the
	// hotkey does not re-trigger.
	if pressed && !p.lastPressed && !set.AutoScanMode {
		slog.Info("Hotkey pressed, triggering capture", "hotkey", set.Hotkey)
		p.shared.Screenshot.Set()
	}

	// Auto-scan mode entry: one capture at the moment of the toggle.
	if set.AutoScanMode && !p.startedAutoMode {
		p.shared.Screenshot.Set()
	}
	p.startedAutoMode = set.AutoScanMode

	// Auto-scan keeps re-triggering only through mouse movement; continuous
	// cadence without movement is the scan worker's business.
	if set.AutoScanMode && set.AutoScanOnMouseMove && moved {
		p.shared.Screenshot.Set()
	}

	// Hit-scan lookups follow the pointer regardless of hotkey or mode.
	if moved {
		p.shared.HitScans.Push(state.HitScan{})
	}
	p.shared.SetCursor(x, y)

	if p.lastPressed && !pressed {
		slog.Info("Hotkey released", "hotkey", set.Hotkey)
	}

	p.lastX, p.lastY = x, y
	p.lastPressed = pressed
}

// IsVirtualHotkeyDown reports whether the hotkey is effectively held right
// now, treating auto-scan with lookups-without-hotkey as always held. Safe
// to call from any goroutine, outside the tick cadence.
func (p *Poller) IsVirtualHotkeyDown() bool {
	pressed, err := p.currentBackend().HotkeyPressed()
	if err != nil {
		pressed = false
	}

	set := p.cfg.Snapshot().Settings
	return pressed || (set.AutoScanMode && set.AutoScanLookupsWithoutHotkey)
}

// ReapplySettings rebuilds the backend from the current configuration and
// hands it to the poll loop, which swaps it in on the next tick. The loop
// keeps running throughout. Construction errors (unknown modifier, dead
// display) are returned to the caller and leave the old backend in place.
func (p *Poller) ReapplySettings() error {
	p.reapplyMu.Lock()
	defer p.reapplyMu.Unlock()

	combo := p.cfg.Snapshot().Settings.Hotkey
	backend, err := p.buildBackend(combo)
	if err != nil {
		return err
	}

	// Replace any swap the loop has not adopted yet.
	select {
	case stale := <-p.pending:
		stale.Close()
	default:
	}
	p.pending <- backend

	slog.Debug("Input settings reapplied", "hotkey", combo)
	return nil
}

// Close releases the active backend. Call only after the loop has stopped.
func (p *Poller) Close() error {
	select {
	case stale := <-p.pending:
		stale.Close()
	default:
	}
	return p.currentBackend().Close()
}

func (p *Poller) adoptPending() {
	select {
	case backend := <-p.pending:
		p.mu.Lock()
		old := p.backend
		p.backend = backend
		p.mu.Unlock()
		if old != nil {
			old.Close()
		}
	default:
	}
}

func (p *Poller) currentBackend() platform.Backend {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.backend
}
