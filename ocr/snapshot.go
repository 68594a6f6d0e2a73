package ocr

import "sync"

// Snapshot holds the words from the most recent scan. The OCR worker
// replaces it wholesale; the lookup worker reads it per hit-scan.
type Snapshot struct {
	mu    sync.RWMutex
	words []Word
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Update replaces the snapshot contents.
func (s *Snapshot) Update(words []Word) {
	s.mu.Lock()
	s.words = words
	s.mu.Unlock()
}

// Words returns the current word list.
func (s *Snapshot) Words() []Word {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.words
}

// WordAt returns the word whose bounding box contains the point. The last
// match wins so overlapping boxes resolve to the most recently drawn word.
func (s *Snapshot) WordAt(x, y int) (Word, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found Word
	ok := false
	for _, w := range s.words {
		if w.Contains(x, y) {
			found = w
			ok = true
		}
	}
	return found, ok
}
