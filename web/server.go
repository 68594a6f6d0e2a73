package web

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"lexipop/config"
	"lexipop/ocr"
	"lexipop/state"
	"lexipop/storage"
)

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// Reconfigurer rebuilds the input backend after a settings change
type Reconfigurer interface {
	ReapplySettings() error
}

// Server represents the web server
type Server struct {
	db     *storage.DB
	cfg    *config.Store
	shared *state.Shared
	reconf Reconfigurer
	port   int
	hub    *Hub
}

// NewServer creates a new web server
func NewServer(db *storage.DB, cfg *config.Store, shared *state.Shared, reconf Reconfigurer, port int) *Server {
	hub := NewHub()
	go hub.Run()

	return &Server{
		db:     db,
		cfg:    cfg,
		shared: shared,
		reconf: reconf,
		port:   port,
		hub:    hub,
	}
}

// Start starts the web server
func (s *Server) Start() error {
	mux := s.routes()

	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("Starting web server", "port", s.port, "url", fmt.Sprintf("http://localhost:%d", s.port))

	return http.ListenAndServe(addr, mux)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWebSocket)

	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err == nil {
		mux.Handle("/", http.FileServer(http.FS(staticFS)))
	}

	return mux
}

// ScanCompleted broadcasts a finished scan to all connected clients
func (s *Server) ScanCompleted(scan storage.Scan, words []ocr.Word) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeScan,
		Data: ScanMessage{
			Trigger:    scan.Trigger,
			WordCount:  scan.WordCount,
			DurationMs: scan.DurationMs,
			Success:    scan.Success,
		},
	})
}

// LookupCompleted broadcasts a popup payload to all connected clients
func (s *Server) LookupCompleted(word ocr.Word, entries []storage.Entry) {
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeLookup,
		Data: LookupMessage{
			Word:    word,
			Entries: entryMessages(entries),
			Hit:     len(entries) > 0,
		},
	})
}

// BroadcastStatus pushes the runtime state to all connected clients
func (s *Server) BroadcastStatus() {
	set := s.cfg.Snapshot().Settings
	s.hub.BroadcastMessage(Message{
		Type: MessageTypeStatus,
		Data: StatusMessage{
			Enabled:      s.shared.Enabled(),
			AutoScanMode: set.AutoScanMode,
			Hotkey:       set.Hotkey,
		},
	})
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}
