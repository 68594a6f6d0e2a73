package ocr

import (
	"context"
	"image"
	"log/slog"
	"sync"
	"time"

	"lexipop/config"
	"lexipop/state"
	"lexipop/storage"
)

// defaultRearmInterval paces continuous auto-scan when no interval is
// configured.
const defaultRearmInterval = 250 * time.Millisecond

// CaptureFunc grabs the current screen region to recognize.
type CaptureFunc func(ctx context.Context) (image.Image, error)

// Recorder persists scan history.
type Recorder interface {
	RecordScan(*storage.Scan) error
}

// Notifier broadcasts scan activity to the dashboard.
type Notifier interface {
	ScanCompleted(scan storage.Scan, words []Word)
}

// Worker consumes the screenshot latch: capture, recognize, publish the
// word snapshot. In continuous auto-scan it also owns the re-trigger
// cadence, re-arming the latch after the configured interval.
type Worker struct {
	cfg      *config.Store
	shared   *state.Shared
	snapshot *Snapshot
	capture  CaptureFunc
	recorder Recorder
	notifier Notifier

	// Rebuilt per scan so endpoint changes apply without a restart.
	newProvider func(config.Settings) (Provider, error)

	lastScan time.Time

	rearmMu sync.Mutex
	rearm   *time.Timer
}

// NewWorker wires the scan pipeline. The notifier may be nil when the
// dashboard is disabled.
func NewWorker(cfg *config.Store, shared *state.Shared, snapshot *Snapshot, capture CaptureFunc, recorder Recorder, notifier Notifier) *Worker {
	return &Worker{
		cfg:         cfg,
		shared:      shared,
		snapshot:    snapshot,
		capture:     capture,
		recorder:    recorder,
		notifier:    notifier,
		newProvider: NewProvider,
	}
}

// Run blocks on the latch wake channel until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	slog.Debug("OCR worker started")
	defer w.stopRearm()

	for {
		if w.shared.Screenshot.TryConsume() {
			w.scan(ctx)
			continue
		}

		select {
		case <-ctx.Done():
			slog.Debug("OCR worker stopped")
			return
		case <-w.shared.Screenshot.Wake():
		}
	}
}

// scan performs one capture-and-recognize pass.
func (w *Worker) scan(ctx context.Context) {
	set := w.cfg.Snapshot().Settings

	if !w.waitCooldown(ctx, set) {
		return
	}

	trigger := "hotkey"
	if set.AutoScanMode {
		trigger = "auto"
	}

	start := time.Now()
	words, err := w.recognize(ctx, set)
	duration := time.Since(start)

	rec := storage.Scan{
		Trigger:    trigger,
		WordCount:  len(words),
		DurationMs: duration.Milliseconds(),
		Success:    err == nil,
	}
	if err != nil {
		rec.ErrorMessage = err.Error()
		slog.Warn("Scan failed", "trigger", trigger, "error", err)
	} else {
		w.snapshot.Update(words)
		slog.Debug("Scan completed", "trigger", trigger, "words", len(words), "duration", duration)
	}

	w.lastScan = time.Now()

	if w.recorder != nil {
		if recErr := w.recorder.RecordScan(&rec); recErr != nil {
			slog.Warn("Failed to record scan", "error", recErr)
		}
	}
	if w.notifier != nil && err == nil {
		w.notifier.ScanCompleted(rec, words)
	}

	w.scheduleRearm(set)
}

func (w *Worker) recognize(ctx context.Context, set config.Settings) ([]Word, error) {
	img, err := w.capture(ctx)
	if err != nil {
		return nil, err
	}

	provider, err := w.newProvider(set)
	if err != nil {
		return nil, err
	}

	return provider.Recognize(ctx, img)
}

// waitCooldown enforces auto_scan_interval_seconds as a minimum spacing
// between auto scans. Manual scans are never throttled. Returns false if
// ctx was cancelled while waiting.
func (w *Worker) waitCooldown(ctx context.Context, set config.Settings) bool {
	if !set.AutoScanMode || set.AutoScanIntervalSeconds <= 0 || w.lastScan.IsZero() {
		return true
	}

	interval := time.Duration(set.AutoScanIntervalSeconds * float64(time.Second))
	remaining := interval - time.Since(w.lastScan)
	if remaining <= 0 {
		return true
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// scheduleRearm keeps continuous auto-scan going: with auto-scan on and
// mouse-move triggering off, nothing else would ever set the latch again.
func (w *Worker) scheduleRearm(set config.Settings) {
	if !set.AutoScanMode || set.AutoScanOnMouseMove {
		return
	}

	delay := defaultRearmInterval
	if set.AutoScanIntervalSeconds > 0 {
		delay = time.Duration(set.AutoScanIntervalSeconds * float64(time.Second))
	}

	w.rearmMu.Lock()
	defer w.rearmMu.Unlock()
	if w.rearm != nil {
		w.rearm.Stop()
	}
	w.rearm = time.AfterFunc(delay, w.shared.Screenshot.Set)
}

func (w *Worker) stopRearm() {
	w.rearmMu.Lock()
	defer w.rearmMu.Unlock()
	if w.rearm != nil {
		w.rearm.Stop()
	}
}
