package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/incidentph/hazardfeed/app/normalize"
)

// AlertLog is the durable sink for normalized alerts. Append merges new
// alerts into what is already on disk; the same (text, timestamp) pair is
// recorded at most once.
type AlertLog interface {
	Append(alerts []normalize.Alert) error
	Load() ([]normalize.Alert, error)
}

// FileLog keeps one JSON array file per feed under the data directory. The
// file is read, merged and rewritten whole on every append; writes are
// serialized with a mutex so overlapping request cycles cannot interleave.
type FileLog struct {
	path string
	mu   sync.Mutex
}

func NewFileLog(dataDir, name string) (*FileLog, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &FileLog{
		path: filepath.Join(dataDir, name+"-alerts.json"),
	}, nil
}

func (l *FileLog) Append(alerts []normalize.Alert) error {
	if len(alerts) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	existing, err := l.read()
	if err != nil {
		return err
	}

	merged := make(map[string]normalize.Alert, len(existing)+len(alerts))
	for _, alert := range existing {
		merged[alert.DedupKey()] = alert
	}
	for _, alert := range alerts {
		merged[alert.DedupKey()] = alert
	}

	out := make([]normalize.Alert, 0, len(merged))
	for _, alert := range merged {
		out = append(out, alert)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	return l.write(out)
}

func (l *FileLog) Load() ([]normalize.Alert, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.read()
}

func (l *FileLog) read() ([]normalize.Alert, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read alert log: %w", err)
	}

	var alerts []normalize.Alert
	if err := json.Unmarshal(data, &alerts); err != nil {
		// A corrupt log is abandoned rather than blocking new writes.
		return nil, nil
	}

	return alerts, nil
}

func (l *FileLog) write(alerts []normalize.Alert) error {
	data, err := json.MarshalIndent(alerts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal alert log: %w", err)
	}

	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write alert log: %w", err)
	}

	return nil
}
