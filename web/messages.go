package web

import (
	"lexipop/ocr"
	"lexipop/storage"
)

// Message types pushed over the websocket
const (
	MessageTypeStatus = "status"
	MessageTypeScan   = "scan"
	MessageTypeLookup = "lookup"
)

// Message is the envelope for all websocket broadcasts
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// StatusMessage reports the runtime state
type StatusMessage struct {
	Enabled      bool   `json:"enabled"`
	AutoScanMode bool   `json:"autoScanMode"`
	Hotkey       string `json:"hotkey"`
}

// ScanMessage reports a completed capture-and-recognize pass
type ScanMessage struct {
	Trigger    string `json:"trigger"`
	WordCount  int    `json:"wordCount"`
	DurationMs int64  `json:"durationMs"`
	Success    bool   `json:"success"`
}

// EntryMessage is one dictionary entry in a popup payload
type EntryMessage struct {
	Headword string `json:"headword"`
	Reading  string `json:"reading"`
	Gloss    string `json:"gloss"`
}

// LookupMessage is the popup payload for a resolved hit-scan
type LookupMessage struct {
	Word    ocr.Word       `json:"word"`
	Entries []EntryMessage `json:"entries"`
	Hit     bool           `json:"hit"`
}

func entryMessages(entries []storage.Entry) []EntryMessage {
	msgs := make([]EntryMessage, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, EntryMessage{
			Headword: e.Headword,
			Reading:  e.Reading,
			Gloss:    e.Gloss,
		})
	}
	return msgs
}
