package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Settings  Settings  `toml:"settings"`
	Dashboard Dashboard `toml:"dashboard"`
	Theme     Theme     `toml:"theme"`
}

type Settings struct {
	Hotkey                       string  `toml:"hotkey"`
	ScanRegion                   string  `toml:"scan_region"`
	MaxLookupLength              int     `toml:"max_lookup_length"`
	OCRProvider                  string  `toml:"ocr_provider"`
	OCREndpoint                  string  `toml:"ocr_endpoint"`
	AutoScanMode                 bool    `toml:"auto_scan_mode"`
	AutoScanOnMouseMove          bool    `toml:"auto_scan_on_mouse_move"`
	AutoScanLookupsWithoutHotkey bool    `toml:"auto_scan_mode_lookups_without_hotkey"`
	AutoScanIntervalSeconds      float64 `toml:"auto_scan_interval_seconds"`
	// Read by the capture collaborator on Windows, not by the input core.
	MagpieCompatibility bool   `toml:"magpie_compatibility"`
	DictionaryPath      string `toml:"dictionary_path"`
}

type Dashboard struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

type Theme struct {
	Name                  string `toml:"theme_name"`
	FontFamily            string `toml:"font_family"`
	FontSizeDefinitions   int    `toml:"font_size_definitions"`
	FontSizeHeader        int    `toml:"font_size_header"`
	CompactMode           bool   `toml:"compact_mode"`
	ColorBackground       string `toml:"color_background"`
	ColorForeground       string `toml:"color_foreground"`
	ColorHighlightWord    string `toml:"color_highlight_word"`
	ColorHighlightReading string `toml:"color_highlight_reading"`
	BackgroundOpacity     int    `toml:"background_opacity"`
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		Settings: Settings{
			Hotkey:                       "shift",
			ScanRegion:                   "region",
			MaxLookupLength:              25,
			OCRProvider:                  "remote",
			OCREndpoint:                  "http://localhost:8765/ocr",
			AutoScanMode:                 false,
			AutoScanOnMouseMove:          false,
			AutoScanLookupsWithoutHotkey: true,
			AutoScanIntervalSeconds:      0.0,
			MagpieCompatibility:          false,
			DictionaryPath:               "",
		},
		Dashboard: Dashboard{
			Enabled: true,
			Port:    8931,
		},
		Theme: Theme{
			Name:                  "Nazeka",
			FontSizeDefinitions:   14,
			FontSizeHeader:        18,
			CompactMode:           true,
			ColorBackground:       "#2E2E2E",
			ColorForeground:       "#F0F0F0",
			ColorHighlightWord:    "#88D8FF",
			ColorHighlightReading: "#90EE90",
			BackgroundOpacity:     245,
		},
	}
}

// Dir returns the lexipop configuration directory, creating it if needed.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}

	dir := filepath.Join(base, "lexipop")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return dir, nil
}

// ConfigPath returns the path to the configuration file
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the TOML file
// If the file doesn't exist, it creates it with default values
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return loadFrom(configPath)
}

func loadFrom(path string) (*Config, error) {
	// If config doesn't exist, create it with defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := defaultConfig()
		if err := save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	// Load existing config on top of the defaults
	cfg := defaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return cfg, nil
}

// save writes the configuration to the TOML file
func save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Store wraps the live configuration for concurrent readers: the input
// poller snapshots it once per tick, the dashboard and tray write through
// Update. Runtime-only state (the enabled flag) lives in the shared sinks,
// not here.
type Store struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewStore wraps a loaded configuration.
func NewStore(cfg *Config) *Store {
	return &Store{cfg: cfg}
}

// Snapshot returns a copy of the current configuration.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.cfg
}

// Update applies fn to the configuration under the write lock.
func (s *Store) Update(fn func(*Config)) {
	s.mu.Lock()
	fn(s.cfg)
	s.mu.Unlock()
}

// Save persists the current configuration to disk.
func (s *Store) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return save(path, s.cfg)
}
