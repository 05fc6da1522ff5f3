package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// JSONLJournal appends trades as JSON lines for later analysis.
type JSONLJournal struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJSONLJournal creates/opens the target file and returns a journal.
func NewJSONLJournal(path string) (*JSONLJournal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLJournal{
		file: file,
		enc:  json.NewEncoder(file),
	}, nil
}

// Record writes a single trade to the underlying JSONL file.
func (j *JSONLJournal) Record(t Trade) {
	j.mu.Lock()
	defer j.mu.Unlock()
	_ = j.enc.Encode(t)
}

// Close flushes and closes the file handle.
func (j *JSONLJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}
