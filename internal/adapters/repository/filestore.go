package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/okian/parley/internal/domain/model"
)

const recordExt = ".json"

// FileStore persists one JSON record per session under a data directory.
// Session ids embed their start timestamp, so descending id order doubles
// as most-recent-first ordering.
type FileStore struct {
	mu      sync.Mutex
	dir     string
	perm    fs.FileMode
	dirPerm fs.FileMode
}

// NewFileStore creates a FileStore rooted at dir, creating it if absent.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	s := &FileStore{
		dir:     dir,
		perm:    0o644,
		dirPerm: 0o755,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(s.dir, s.dirPerm); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return s, nil
}

// Save writes rec as pretty-printed JSON to <dir>/<session_id>.json.
func (s *FileStore) Save(_ context.Context, rec model.SessionRecord) error {
	if err := validID(rec.SessionID); err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(rec.SessionID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, s.perm); err != nil {
		return fmt.Errorf("write session record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write session record: %w", err)
	}
	return nil
}

// Load reads and decodes the record for sessionID.
func (s *FileStore) Load(_ context.Context, sessionID string) (model.SessionRecord, error) {
	if err := validID(sessionID); err != nil {
		return model.SessionRecord{}, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(s.path(sessionID))
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.SessionRecord{}, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
		}
		return model.SessionRecord{}, fmt.Errorf("read session record: %w", err)
	}

	var rec model.SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.SessionRecord{}, fmt.Errorf("decode session record: %w", err)
	}
	return rec, nil
}

// List returns persisted session ids, most recent first.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	entries, err := os.ReadDir(s.dir)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("list session records: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, recordExt))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// Count returns the number of persisted records; 0 on read failure.
func (s *FileStore) Count(ctx context.Context) int {
	ids, err := s.List(ctx)
	if err != nil {
		return 0
	}
	return len(ids)
}

func (s *FileStore) path(sessionID string) string {
	return filepath.Join(s.dir, sessionID+recordExt)
}

// validID rejects ids that are empty or escape the data directory.
func validID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
