package template

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"clipforge/internal/pkg/errors"
)

// FileStore keeps one <id>.json per template under a root directory.
type FileStore struct {
	root string
	mu   sync.RWMutex
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.root, id+".json")
}

func (s *FileStore) Create(ctx context.Context, t *Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.listLocked()
	if err != nil {
		return err
	}
	for _, other := range existing {
		if strings.EqualFold(other.Name, t.Name) {
			return ErrNameExists
		}
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return errors.Wrap(err, "template.create", "failed to create templates directory")
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return errors.Wrap(err, "template.create", "failed to encode template")
	}
	if err := os.WriteFile(s.path(t.ID), data, 0o644); err != nil {
		return errors.Wrap(err, "template.create", "failed to write template file")
	}
	return nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(id)
}

func (s *FileStore) getLocked(id string) (*Template, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "template.get", "failed to read template file")
	}
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(err, "template.get", "corrupt template file")
	}
	return &t, nil
}

func (s *FileStore) List(ctx context.Context) ([]Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked()
}

func (s *FileStore) listLocked() ([]Template, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "template.list", "failed to read templates directory")
	}

	var out []Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		t, err := s.getLocked(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "template.delete", "failed to delete template file")
	}
	return nil
}
