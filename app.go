package main

import (
	"context"
	"fmt"
	"log/slog"

	"lexipop/capture"
	"lexipop/config"
	"lexipop/input"
	"lexipop/lookup"
	"lexipop/ocr"
	"lexipop/state"
	"lexipop/storage"
	"lexipop/systray"
	"lexipop/web"
)

// App coordinates the poller, the scan and lookup pipelines, the dashboard
// and the tray
type App struct {
	cfg      *config.Store
	shared   *state.Shared
	db       *storage.DB
	poller   *input.Poller
	capturer capture.Capturer
	snapshot *ocr.Snapshot
	server   *web.Server
	tray     *systray.SystrayManager
}

// NewApp wires all components. Errors here are fatal startup problems.
func NewApp(cfg *config.Config) (*App, error) {
	store := config.NewStore(cfg)
	shared := state.New()

	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	if err := importDictionary(db, cfg.Settings.DictionaryPath); err != nil {
		db.Close()
		return nil, err
	}

	// Constructed before any UI so a bad hotkey or a dead display fails
	// the whole startup.
	poller, err := input.New(store, shared)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to start input backend: %w", err)
	}

	capturer, err := capture.New(capture.Options{
		MagpieCompatibility: cfg.Settings.MagpieCompatibility,
	})
	if err != nil {
		poller.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize screen capture: %w", err)
	}

	var server *web.Server
	if cfg.Dashboard.Enabled {
		server = web.NewServer(db, store, shared, poller, cfg.Dashboard.Port)
	}

	return &App{
		cfg:      store,
		shared:   shared,
		db:       db,
		poller:   poller,
		capturer: capturer,
		snapshot: ocr.NewSnapshot(),
		server:   server,
		tray:     systray.NewSystrayManager(store, shared, cfg.Dashboard.Port, nil),
	}, nil
}

// Run starts every worker and blocks on the tray until quit or ctx
// cancellation.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The web server satisfies both notifier interfaces; a disabled
	// dashboard leaves them nil.
	var scanNotifier ocr.Notifier
	var lookupNotifier lookup.Notifier
	if a.server != nil {
		scanNotifier = a.server
		lookupNotifier = a.server
	}

	scanWorker := ocr.NewWorker(a.cfg, a.shared, a.snapshot, a.capturer.Capture, a.db, scanNotifier)
	lookupWorker := lookup.NewWorker(a.cfg, a.shared, a.snapshot, a.poller, a.db, a.db, lookupNotifier)

	go a.poller.Run(ctx)
	go scanWorker.Run(ctx)
	go lookupWorker.Run(ctx)

	if a.server != nil {
		go func() {
			if err := a.server.Start(); err != nil {
				slog.Error("Web server stopped", "error", err)
			}
		}()
	}

	set := a.cfg.Snapshot().Settings
	slog.Info("Lexipop started", "hotkey", set.Hotkey, "auto_scan", set.AutoScanMode)

	// Stop the tray when the context dies so Run unblocks either way.
	go func() {
		select {
		case <-ctx.Done():
			a.tray.Stop()
		case <-a.tray.WaitForQuit():
		}
	}()

	// Tray libraries want the main goroutine.
	a.tray.Run()

	a.shutdown(cancel)
	return nil
}

func (a *App) shutdown(cancel context.CancelFunc) {
	slog.Info("Shutting down")

	// Poll loop exits within one tick of the flag flip.
	a.shared.Stop()
	cancel()

	if err := a.poller.Close(); err != nil {
		slog.Warn("Failed to close input backend", "error", err)
	}
	if err := a.capturer.Close(); err != nil {
		slog.Warn("Failed to close screen capture", "error", err)
	}
	if err := a.db.Close(); err != nil {
		slog.Warn("Failed to close storage", "error", err)
	}
}

// importDictionary seeds the entries table from the configured TSV on
// first run.
func importDictionary(db *storage.DB, path string) error {
	if path == "" {
		return nil
	}

	count, err := db.EntryCount()
	if err != nil {
		return fmt.Errorf("failed to count dictionary entries: %w", err)
	}
	if count > 0 {
		return nil
	}

	imported, err := db.ImportTSV(path)
	if err != nil {
		return fmt.Errorf("failed to import dictionary: %w", err)
	}

	slog.Info("Dictionary imported", "path", path, "entries", imported)
	return nil
}
