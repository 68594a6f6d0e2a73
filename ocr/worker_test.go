package ocr

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"lexipop/config"
	"lexipop/state"
	"lexipop/storage"
)

type fakeProvider struct {
	words []Word
	err   error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Recognize(context.Context, image.Image) ([]Word, error) {
	return f.words, f.err
}

type fakeRecorder struct {
	mu    sync.Mutex
	scans []storage.Scan
}

func (f *fakeRecorder) RecordScan(s *storage.Scan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans = append(f.scans, *s)
	return nil
}

func (f *fakeRecorder) recorded() []storage.Scan {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]storage.Scan(nil), f.scans...)
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls int
	last  []Word
}

func (f *fakeNotifier) ScanCompleted(_ storage.Scan, words []Word) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = words
}

func newTestWorker(set config.Settings, provider Provider) (*Worker, *state.Shared, *fakeRecorder, *fakeNotifier) {
	store := config.NewStore(&config.Config{Settings: set})
	shared := state.New()
	rec := &fakeRecorder{}
	not := &fakeNotifier{}

	capture := func(context.Context) (image.Image, error) {
		return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
	}

	w := NewWorker(store, shared, NewSnapshot(), capture, rec, not)
	w.newProvider = func(config.Settings) (Provider, error) {
		return provider, nil
	}
	return w, shared, rec, not
}

func TestWorkerScanPublishesSnapshot(t *testing.T) {
	words := []Word{{Text: "犬", X: 1, Y: 2, W: 3, H: 4}}
	w, _, rec, not := newTestWorker(config.Settings{Hotkey: "shift"}, &fakeProvider{words: words})

	w.scan(context.Background())

	got, ok := w.snapshot.WordAt(2, 3)
	if !ok || got.Text != "犬" {
		t.Errorf("snapshot word = %+v, %v", got, ok)
	}

	scans := rec.recorded()
	if len(scans) != 1 {
		t.Fatalf("recorded %d scans, want 1", len(scans))
	}
	if scans[0].Trigger != "hotkey" || !scans[0].Success || scans[0].WordCount != 1 {
		t.Errorf("scan record = %+v", scans[0])
	}
	if not.calls != 1 || len(not.last) != 1 {
		t.Errorf("notifier calls = %d, words = %v", not.calls, not.last)
	}
}

func TestWorkerScanFailureKeepsSnapshot(t *testing.T) {
	w, _, rec, not := newTestWorker(config.Settings{Hotkey: "shift"}, &fakeProvider{words: []Word{{Text: "old", W: 10, H: 10}}})

	w.scan(context.Background())

	w.newProvider = func(config.Settings) (Provider, error) {
		return &fakeProvider{err: errors.New("endpoint down")}, nil
	}
	w.scan(context.Background())

	if _, ok := w.snapshot.WordAt(5, 5); !ok {
		t.Error("a failed scan must not clear the previous snapshot")
	}

	scans := rec.recorded()
	if len(scans) != 2 {
		t.Fatalf("recorded %d scans, want 2", len(scans))
	}
	if scans[1].Success || scans[1].ErrorMessage == "" {
		t.Errorf("failed scan record = %+v", scans[1])
	}
	if not.calls != 1 {
		t.Errorf("notifier called %d times, failures must not broadcast", not.calls)
	}
}

func TestWorkerAutoTriggerKind(t *testing.T) {
	set := config.Settings{Hotkey: "shift", AutoScanMode: true, AutoScanOnMouseMove: true}
	w, _, rec, _ := newTestWorker(set, &fakeProvider{})

	w.scan(context.Background())

	scans := rec.recorded()
	if len(scans) != 1 || scans[0].Trigger != "auto" {
		t.Errorf("scan records = %+v, want one auto scan", scans)
	}
}

func TestWorkerRearmsContinuousAutoScan(t *testing.T) {
	set := config.Settings{Hotkey: "shift", AutoScanMode: true}
	w, shared, _, _ := newTestWorker(set, &fakeProvider{})

	w.scan(context.Background())
	defer w.stopRearm()

	deadline := time.After(2 * time.Second)
	for !shared.Screenshot.IsSet() {
		select {
		case <-deadline:
			t.Fatal("continuous auto-scan never re-armed the latch")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWorkerNoRearmWithMouseMoveTriggering(t *testing.T) {
	set := config.Settings{Hotkey: "shift", AutoScanMode: true, AutoScanOnMouseMove: true}
	w, shared, _, _ := newTestWorker(set, &fakeProvider{})

	w.scan(context.Background())

	time.Sleep(3 * defaultRearmInterval)
	if shared.Screenshot.IsSet() {
		t.Error("mouse-move auto-scan must not self-rearm")
	}
}

func TestWorkerRunConsumesLatch(t *testing.T) {
	w, shared, rec, _ := newTestWorker(config.Settings{Hotkey: "shift"}, &fakeProvider{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	shared.Screenshot.Set()

	deadline := time.After(2 * time.Second)
	for len(rec.recorded()) == 0 {
		select {
		case <-deadline:
			t.Fatal("worker never consumed the latch")
		case <-time.After(10 * time.Millisecond):
		}
	}
	if shared.Screenshot.IsSet() {
		t.Error("latch should be cleared after the scan")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}
