package systray

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"github.com/getlantern/systray"
	"lexipop/config"
	"lexipop/state"
)

// SystrayManager manages the system tray icon and menu
type SystrayManager struct {
	cfg      *config.Store
	shared   *state.Shared
	webPort  int
	iconData []byte
	quit     chan struct{}
}

// NewSystrayManager creates a new systray manager
func NewSystrayManager(cfg *config.Store, shared *state.Shared, webPort int, iconData []byte) *SystrayManager {
	return &SystrayManager{
		cfg:      cfg,
		shared:   shared,
		webPort:  webPort,
		iconData: iconData,
		quit:     make(chan struct{}),
	}
}

// Run starts the system tray (blocking call)
func (m *SystrayManager) Run() {
	systray.Run(m.onReady, m.onExit)
}

// Stop stops the system tray
func (m *SystrayManager) Stop() {
	systray.Quit()
}

// WaitForQuit returns a channel that will be closed when user clicks Quit
func (m *SystrayManager) WaitForQuit() <-chan struct{} {
	return m.quit
}

// onReady is called when the systray is ready
func (m *SystrayManager) onReady() {
	// Set icon
	if len(m.iconData) > 0 {
		systray.SetIcon(m.iconData)
	}

	// Set tooltip
	systray.SetTitle("Lexipop")
	systray.SetTooltip("Lexipop - Screen Dictionary")

	// Add menu items
	mEnabled := systray.AddMenuItemCheckbox("Enabled", "Pause or resume input sampling", m.shared.Enabled())
	mAutoScan := systray.AddMenuItemCheckbox("Auto-scan", "Scan continuously instead of on hotkey", m.cfg.Snapshot().Settings.AutoScanMode)
	systray.AddSeparator()
	mOpenDashboard := systray.AddMenuItem("Open Dashboard", "Open the Lexipop web dashboard")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit Lexipop")

	// Handle menu clicks
	go func() {
		for {
			select {
			case <-mEnabled.ClickedCh:
				m.toggleEnabled(mEnabled)
			case <-mAutoScan.ClickedCh:
				m.toggleAutoScan(mAutoScan)
			case <-mOpenDashboard.ClickedCh:
				m.openDashboard()
			case <-mQuit.ClickedCh:
				slog.Info("User requested quit from system tray")
				close(m.quit)
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when the systray is exiting
func (m *SystrayManager) onExit() {
	slog.Info("System tray exited")
}

func (m *SystrayManager) toggleEnabled(item *systray.MenuItem) {
	enabled := !m.shared.Enabled()
	m.shared.SetEnabled(enabled)
	if enabled {
		item.Check()
	} else {
		item.Uncheck()
	}
	slog.Info("Input sampling toggled from system tray", "enabled", enabled)
}

func (m *SystrayManager) toggleAutoScan(item *systray.MenuItem) {
	var autoScan bool
	m.cfg.Update(func(cfg *config.Config) {
		cfg.Settings.AutoScanMode = !cfg.Settings.AutoScanMode
		autoScan = cfg.Settings.AutoScanMode
	})
	if autoScan {
		item.Check()
	} else {
		item.Uncheck()
	}

	if err := m.cfg.Save(); err != nil {
		slog.Error("Failed to save config", "error", err)
	}
	slog.Info("Auto-scan toggled from system tray", "auto_scan", autoScan)
}

// openDashboard opens the dashboard in the default browser
func (m *SystrayManager) openDashboard() {
	url := fmt.Sprintf("http://localhost:%d", m.webPort)
	slog.Info("Opening dashboard", "url", url)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		slog.Error("Unsupported platform for opening browser", "platform", runtime.GOOS)
		return
	}

	if err := cmd.Start(); err != nil {
		slog.Error("Failed to open dashboard", "error", err)
	}
}
