package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"lexipop/config"
)

// handleConfig handles GET and PUT requests for configuration
func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetConfig(w, r)
	case http.MethodPut:
		s.handlePutConfig(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetConfig returns the current configuration
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.cfg.Snapshot()

	response := struct {
		Hotkey                       string       `json:"hotkey"`
		ScanRegion                   string       `json:"scanRegion"`
		MaxLookupLength              int          `json:"maxLookupLength"`
		OCRProvider                  string       `json:"ocrProvider"`
		OCREndpoint                  string       `json:"ocrEndpoint"`
		AutoScanMode                 bool         `json:"autoScanMode"`
		AutoScanOnMouseMove          bool         `json:"autoScanOnMouseMove"`
		AutoScanLookupsWithoutHotkey bool         `json:"autoScanLookupsWithoutHotkey"`
		AutoScanIntervalSeconds      float64      `json:"autoScanIntervalSeconds"`
		MagpieCompatibility          bool         `json:"magpieCompatibility"`
		DictionaryPath               string       `json:"dictionaryPath"`
		Enabled                      bool         `json:"enabled"`
		Theme                        config.Theme `json:"theme"`
	}{
		Hotkey:                       cfg.Settings.Hotkey,
		ScanRegion:                   cfg.Settings.ScanRegion,
		MaxLookupLength:              cfg.Settings.MaxLookupLength,
		OCRProvider:                  cfg.Settings.OCRProvider,
		OCREndpoint:                  cfg.Settings.OCREndpoint,
		AutoScanMode:                 cfg.Settings.AutoScanMode,
		AutoScanOnMouseMove:          cfg.Settings.AutoScanOnMouseMove,
		AutoScanLookupsWithoutHotkey: cfg.Settings.AutoScanLookupsWithoutHotkey,
		AutoScanIntervalSeconds:      cfg.Settings.AutoScanIntervalSeconds,
		MagpieCompatibility:          cfg.Settings.MagpieCompatibility,
		DictionaryPath:               cfg.Settings.DictionaryPath,
		Enabled:                      s.shared.Enabled(),
		Theme:                        cfg.Theme,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handlePutConfig updates the configuration and reconfigures the input
// poller. Reconfiguration failures come back as 422 with the old backend
// still in place.
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hotkey                       *string  `json:"hotkey"`
		ScanRegion                   *string  `json:"scanRegion"`
		MaxLookupLength              *int     `json:"maxLookupLength"`
		OCRProvider                  *string  `json:"ocrProvider"`
		OCREndpoint                  *string  `json:"ocrEndpoint"`
		AutoScanMode                 *bool    `json:"autoScanMode"`
		AutoScanOnMouseMove          *bool    `json:"autoScanOnMouseMove"`
		AutoScanLookupsWithoutHotkey *bool    `json:"autoScanLookupsWithoutHotkey"`
		AutoScanIntervalSeconds      *float64 `json:"autoScanIntervalSeconds"`
		MagpieCompatibility          *bool    `json:"magpieCompatibility"`
		DictionaryPath               *string  `json:"dictionaryPath"`
		Enabled                      *bool    `json:"enabled"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.cfg.Update(func(cfg *config.Config) {
		if req.Hotkey != nil {
			cfg.Settings.Hotkey = *req.Hotkey
		}
		if req.ScanRegion != nil {
			cfg.Settings.ScanRegion = *req.ScanRegion
		}
		if req.MaxLookupLength != nil {
			cfg.Settings.MaxLookupLength = *req.MaxLookupLength
		}
		if req.OCRProvider != nil {
			cfg.Settings.OCRProvider = *req.OCRProvider
		}
		if req.OCREndpoint != nil {
			cfg.Settings.OCREndpoint = *req.OCREndpoint
		}
		if req.AutoScanMode != nil {
			cfg.Settings.AutoScanMode = *req.AutoScanMode
		}
		if req.AutoScanOnMouseMove != nil {
			cfg.Settings.AutoScanOnMouseMove = *req.AutoScanOnMouseMove
		}
		if req.AutoScanLookupsWithoutHotkey != nil {
			cfg.Settings.AutoScanLookupsWithoutHotkey = *req.AutoScanLookupsWithoutHotkey
		}
		if req.AutoScanIntervalSeconds != nil {
			cfg.Settings.AutoScanIntervalSeconds = *req.AutoScanIntervalSeconds
		}
		if req.MagpieCompatibility != nil {
			cfg.Settings.MagpieCompatibility = *req.MagpieCompatibility
		}
		if req.DictionaryPath != nil {
			cfg.Settings.DictionaryPath = *req.DictionaryPath
		}
	})

	if req.Enabled != nil {
		s.shared.SetEnabled(*req.Enabled)
	}

	if err := s.cfg.Save(); err != nil {
		slog.Error("Failed to save config", "error", err)
		http.Error(w, "Failed to save configuration", http.StatusInternalServerError)
		return
	}

	if err := s.reconf.ReapplySettings(); err != nil {
		slog.Warn("Failed to reapply input settings", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	s.BroadcastStatus()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

// handleStats returns statistics for the specified time range
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	daysStr := r.URL.Query().Get("days")
	days := 7 // default to 7 days
	if daysStr != "" {
		if d, err := strconv.Atoi(daysStr); err == nil && d > 0 {
			days = d
		}
	}

	overall, err := s.db.GetOverallStats(days)
	if err != nil {
		slog.Error("Failed to get overall stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	daily, err := s.db.GetDailyStats(days)
	if err != nil {
		slog.Error("Failed to get daily stats", "error", err)
		http.Error(w, "Failed to get statistics", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"overall": overall,
		"daily":   daily,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleHistory returns paginated scan and lookup history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	limit := 50 // default
	offset := 0

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	if offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	scans, err := s.db.GetScans(limit, offset)
	if err != nil {
		slog.Error("Failed to get scans", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	lookups, err := s.db.GetLookups(limit, offset)
	if err != nil {
		slog.Error("Failed to get lookups", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	totalScans, err := s.db.GetScanCount()
	if err != nil {
		slog.Error("Failed to get scan count", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	totalLookups, err := s.db.GetLookupCount()
	if err != nil {
		slog.Error("Failed to get lookup count", "error", err)
		http.Error(w, "Failed to get history", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"scans":        scans,
		"lookups":      lookups,
		"totalScans":   totalScans,
		"totalLookups": totalLookups,
		"limit":        limit,
		"offset":       offset,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleStatus returns the current runtime state
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	set := s.cfg.Snapshot().Settings

	entries, err := s.db.EntryCount()
	if err != nil {
		slog.Error("Failed to count dictionary entries", "error", err)
		http.Error(w, "Failed to get status", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"running":           s.shared.Running(),
		"enabled":           s.shared.Enabled(),
		"autoScanMode":      set.AutoScanMode,
		"hotkey":            set.Hotkey,
		"dictionaryEntries": entries,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
