package trace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/matzehuels/morphtree/pkg/errors"
)

// FileStore keeps one JSON file per trace in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a store rooted at baseDir, creating it if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("trace dir is empty")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Path returns the base directory for trace files.
func (s *FileStore) Path() string {
	return s.baseDir
}

func (s *FileStore) tracePath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// Save writes t as indented JSON.
func (s *FileStore) Save(ctx context.Context, t *Trace) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trace: %w", err)
	}
	if err := os.WriteFile(s.tracePath(t.ID), data, 0o600); err != nil {
		return fmt.Errorf("write trace file: %w", err)
	}
	return nil
}

// Load resolves ref against the stored traces and reads the match.
func (s *FileStore) Load(ctx context.Context, ref string) (*Trace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	return s.read(id)
}

// List reads every trace file, newest first. Unreadable files are skipped.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list()
}

// Delete removes the trace selected by ref.
func (s *FileStore) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(s.tracePath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove trace file: %w", err)
	}
	return nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) read(id string) (*Trace, error) {
	data, err := os.ReadFile(s.tracePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read trace file: %w", err)
	}
	var t Trace
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse trace %s: %w", id, err)
	}
	return &t, nil
}

func (s *FileStore) list() ([]Summary, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read trace dir: %w", err)
	}

	var out []Summary
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		id := entry.Name()[:len(entry.Name())-len(".json")]
		t, err := s.read(id)
		if err != nil {
			continue
		}
		out = append(out, t.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// resolve maps an ID, ID prefix or name to a stored ID. Refs must be valid
// names, so none can reach outside baseDir.
func (s *FileStore) resolve(ref string) (string, error) {
	if err := errors.ValidateName(ref); err != nil {
		return "", err
	}
	if _, err := os.Stat(s.tracePath(ref)); err == nil {
		return ref, nil
	}
	all, err := s.list()
	if err != nil {
		return "", err
	}
	for _, sum := range all {
		if matches(sum, ref) {
			return sum.ID, nil
		}
	}
	return "", notFound(ref)
}

var _ Store = (*FileStore)(nil)
