// Package refcache keeps point-in-time snapshots of reference tables so
// incremental runs do not re-query them. Entries never expire.
package refcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/kardex-extract/internal/types"
	"github.com/ginjaninja78/kardex-extract/pkg/utils"
)

// ErrMiss is returned by Load when no snapshot exists for the table.
var ErrMiss = errors.New("cache miss")

// Store loads and saves reference table snapshots by name.
type Store interface {
	Load(name string) ([]types.Row, error)
	Save(name string, rows []types.Row) error
}

// =============================================================================
// FILE STORE
// =============================================================================

// envelope is the on-disk format of one snapshot.
type envelope struct {
	Table   string      `json:"table"`
	SavedAt time.Time   `json:"saved_at"`
	Rows    []types.Row `json:"rows"`
}

var safeName = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

// FileStore writes one JSON file per table under a directory.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir, now: time.Now}
}

func (s *FileStore) path(name string) (string, error) {
	if !safeName.MatchString(name) {
		return "", fmt.Errorf("invalid cache name %q", name)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

// Load reads a snapshot. A missing file is ErrMiss; an unreadable or corrupt
// file is an error.
func (s *FileStore) Load(name string) ([]types.Row, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read cache %s: %w", name, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode cache %s: %w", name, err)
	}
	if env.Table != name || env.Rows == nil {
		return nil, fmt.Errorf("decode cache %s: unexpected content", name)
	}
	return env.Rows, nil
}

// Save writes a snapshot atomically.
func (s *FileStore) Save(name string, rows []types.Row) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if rows == nil {
		rows = []types.Row{}
	}
	env := envelope{Table: name, SavedAt: s.now().UTC(), Rows: rows}
	return utils.WriteFileAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", " ")
		return enc.Encode(env)
	})
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// MemoryStore keeps snapshots in memory.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string][]types.Row
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string][]types.Row)}
}

func (m *MemoryStore) Load(name string) ([]types.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.tables[name]
	if !ok {
		return nil, ErrMiss
	}
	return rows, nil
}

func (m *MemoryStore) Save(name string, rows []types.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rows == nil {
		rows = []types.Row{}
	}
	m.tables[name] = rows
	return nil
}

// =============================================================================
// FETCH POLICY
// =============================================================================

// Loader queries a reference table from the source.
type Loader func(ctx context.Context, name string) ([]types.Row, error)

// Fetch returns the rows of a reference table. With useCache set the store
// is consulted first; a miss or a corrupt snapshot falls back to the loader.
// Rows read from the loader are saved back to the store. A failed save is
// logged and does not fail the fetch.
func Fetch(ctx context.Context, store Store, useCache bool, name string, load Loader, log logrus.FieldLogger) ([]types.Row, error) {
	entry := log.WithField("table", name)

	if useCache {
		rows, err := store.Load(name)
		switch {
		case err == nil:
			entry.WithField("rows", len(rows)).Debug("reference table served from cache")
			return rows, nil
		case errors.Is(err, ErrMiss):
			entry.Info("reference cache miss")
		default:
			entry.WithError(err).Warn("reference cache unreadable, querying source")
		}
	}

	rows, err := load(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := store.Save(name, rows); err != nil {
		entry.WithError(err).Warn("failed to save reference cache")
	}
	return rows, nil
}
