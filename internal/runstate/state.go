// Package runstate records the last successful run of the movement report
// and decides how the next one extracts.
package runstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ginjaninja78/kardex-extract/pkg/utils"
)

// ErrNoState is returned by Read when no run has been recorded.
var ErrNoState = errors.New("no run state")

// Mode is how a run selects ledger rows.
type Mode string

const (
	ModeFull        Mode = "full"
	ModeIncremental Mode = "incremental"
	ModeDays        Mode = "days"
)

// RunState is written after the merged output of a run has been saved.
type RunState struct {
	RunID string `json:"run_id"`

	// Timestamp is the start of the run. The next incremental cutoff is
	// derived from it.
	Timestamp time.Time `json:"timestamp"`

	Mode Mode `json:"mode"`

	// Cutoff is the extraction lower bound used, nil for full loads.
	Cutoff *time.Time `json:"cutoff,omitempty"`

	RecordsProcessed int     `json:"records_processed"`
	TotalRecords     int     `json:"total_records"`
	DurationSeconds  float64 `json:"duration_seconds"`
}

// Tracker reads and writes the last RunState.
type Tracker interface {
	Read() (*RunState, error)
	Write(state RunState) error
}

// FileTracker keeps the RunState in a JSON file.
type FileTracker struct {
	path string
}

// NewFileTracker returns a tracker backed by path.
func NewFileTracker(path string) *FileTracker {
	return &FileTracker{path: path}
}

// Read returns the recorded state, ErrNoState when the file is absent, or a
// decode error when it is corrupt.
func (t *FileTracker) Read() (*RunState, error) {
	data, err := os.ReadFile(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("read run state: %w", err)
	}

	var state RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode run state: %w", err)
	}
	if state.Timestamp.IsZero() {
		return nil, fmt.Errorf("decode run state: missing timestamp")
	}
	return &state, nil
}

// Write replaces the recorded state atomically.
func (t *FileTracker) Write(state RunState) error {
	err := utils.WriteFileAtomic(t.path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	})
	if err != nil {
		return fmt.Errorf("write run state: %w", err)
	}
	return nil
}
