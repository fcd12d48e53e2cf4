package storage

import (
	"log/slog"
	"sync"
	"time"
)

// JournalEntry is one synchronization event of a layout.
type JournalEntry struct {
	Time   time.Time `json:"time"`
	Layout string    `json:"layout"`
	Kind   string    `json:"kind"`
	Data   any       `json:"data,omitempty"`
}

// Journal keeps one JSONL writer per layout under baseDir/<date>/sync.
type Journal struct {
	baseDir    string
	maxSizeMB  int
	bufferSize int

	writers map[string]*JSONLWriter
	mu      sync.Mutex
}

// NewJournal creates a journal. Writers are opened lazily per layout.
func NewJournal(baseDir string, bufferSize, maxSizeMB int) *Journal {
	return &Journal{
		baseDir:    baseDir,
		maxSizeMB:  maxSizeMB,
		bufferSize: bufferSize,
		writers:    make(map[string]*JSONLWriter),
	}
}

// Record queues an entry for the entry's layout.
func (j *Journal) Record(e JournalEntry) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	return j.writer(e.Layout).Write(e)
}

func (j *Journal) writer(layoutID string) *JSONLWriter {
	j.mu.Lock()
	defer j.mu.Unlock()
	if w, ok := j.writers[layoutID]; ok {
		return w
	}
	w := NewJSONLWriter(j.baseDir, "sync", layoutID, j.bufferSize, j.maxSizeMB)
	j.writers[layoutID] = w
	slog.Debug("journal writer created", "layout", layoutID)
	return w
}

// CloseLayout flushes and closes the writer of one layout.
func (j *Journal) CloseLayout(layoutID string) error {
	j.mu.Lock()
	w, ok := j.writers[layoutID]
	delete(j.writers, layoutID)
	j.mu.Unlock()
	if !ok {
		return nil
	}
	return w.Close()
}

// Close closes every writer.
func (j *Journal) Close() error {
	j.mu.Lock()
	writers := j.writers
	j.writers = make(map[string]*JSONLWriter)
	j.mu.Unlock()

	var lastErr error
	for id, w := range writers {
		if err := w.Close(); err != nil {
			slog.Error("failed to close journal writer", "layout", id, "error", err)
			lastErr = err
		}
	}
	return lastErr
}
