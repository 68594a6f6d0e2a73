// Package lookup resolves hit-scan tokens against the OCR snapshot and the
// dictionary.
package lookup

import (
	"context"
	"log/slog"

	"lexipop/config"
	"lexipop/ocr"
	"lexipop/state"
	"lexipop/storage"
)

// maxEntries bounds how many dictionary entries one popup shows.
const maxEntries = 10

// HotkeyState answers whether the hotkey is effectively held right now.
type HotkeyState interface {
	IsVirtualHotkeyDown() bool
}

// Dictionary resolves a term to its entries.
type Dictionary interface {
	LookupEntries(term string, limit int) ([]storage.Entry, error)
}

// Recorder persists lookup history.
type Recorder interface {
	RecordLookup(*storage.Lookup) error
}

// Notifier broadcasts the popup payload to the dashboard.
type Notifier interface {
	LookupCompleted(word ocr.Word, entries []storage.Entry)
}

// Worker consumes the hit-scan queue. Bursts collapse to the newest token;
// non-manual tokens are dropped unless the hotkey is virtually held.
type Worker struct {
	cfg      *config.Store
	shared   *state.Shared
	snapshot *ocr.Snapshot
	hotkey   HotkeyState
	dict     Dictionary
	recorder Recorder
	notifier Notifier

	// Hovering inside the same word produces a token per pixel of travel;
	// only the first one does work.
	lastQuery string
}

// NewWorker wires the lookup pipeline. The notifier may be nil when the
// dashboard is disabled.
func NewWorker(cfg *config.Store, shared *state.Shared, snapshot *ocr.Snapshot, hotkey HotkeyState, dict Dictionary, recorder Recorder, notifier Notifier) *Worker {
	return &Worker{
		cfg:      cfg,
		shared:   shared,
		snapshot: snapshot,
		hotkey:   hotkey,
		dict:     dict,
		recorder: recorder,
		notifier: notifier,
	}
}

// Run blocks on the queue wake channel until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	slog.Debug("Lookup worker started")

	for {
		if tokens := w.shared.HitScans.Drain(); len(tokens) > 0 {
			w.process(tokens[len(tokens)-1])
			continue
		}

		select {
		case <-ctx.Done():
			slog.Debug("Lookup worker stopped")
			return
		case <-w.shared.HitScans.Wake():
		}
	}
}

// process resolves one hit-scan token.
func (w *Worker) process(tok state.HitScan) {
	if !tok.Manual && !w.hotkey.IsVirtualHotkeyDown() {
		return
	}

	x, y := w.shared.Cursor()
	word, ok := w.snapshot.WordAt(x, y)
	if !ok {
		// Leaving a word re-arms it for the next hover.
		w.lastQuery = ""
		return
	}

	set := w.cfg.Snapshot().Settings
	query := clamp(word.Text, set.MaxLookupLength)
	if query == "" || (query == w.lastQuery && !tok.Manual) {
		return
	}
	w.lastQuery = query

	entries, err := w.dict.LookupEntries(query, maxEntries)
	if err != nil {
		slog.Warn("Dictionary lookup failed", "query", query, "error", err)
		return
	}

	rec := storage.Lookup{Query: query, Hit: len(entries) > 0}
	if len(entries) > 0 {
		rec.Headword = entries[0].Headword
	}
	if w.recorder != nil {
		if recErr := w.recorder.RecordLookup(&rec); recErr != nil {
			slog.Warn("Failed to record lookup", "error", recErr)
		}
	}

	slog.Debug("Lookup resolved", "query", query, "entries", len(entries))
	if w.notifier != nil {
		w.notifier.LookupCompleted(word, entries)
	}
}

// clamp truncates the query to at most max runes.
func clamp(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
