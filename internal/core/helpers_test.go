package core

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/penyaskito/dashboard-initiative/internal/entity"
)

// contentDir returns the languages directory inside a fresh module path.
func newModule(t *testing.T) (modulePath, languagesDir string) {
	t.Helper()
	modulePath = t.TempDir()
	return modulePath, filepath.Join(modulePath, "default_content", "languages")
}

func writeContent(t *testing.T, languagesDir, lang, rel, contents string) {
	t.Helper()
	writeFile(t, filepath.Join(languagesDir, lang, filepath.FromSlash(rel)), contents)
}

// stubAuthors hands out sequential ids per name.
type stubAuthors struct {
	mu    sync.Mutex
	ids   map[string]int64
	calls []string
	err   error
}

func (s *stubAuthors) Resolve(_ context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, name)
	if s.err != nil {
		return 0, s.err
	}
	if s.ids == nil {
		s.ids = make(map[string]int64)
	}
	if id, ok := s.ids[name]; ok {
		return id, nil
	}
	s.ids[name] = int64(len(s.ids) + 100)
	return s.ids[name], nil
}

var errInjected = errors.New("injected storage failure")

// failingManager wraps a manager and fails chosen operations.
type failingManager struct {
	entity.Manager
	failSaveAfter map[string]int // entity type -> successful saves before failing
	failDelete    map[string]bool

	mu    sync.Mutex
	saves map[string]int
}

func (m *failingManager) Storage(entityType string) (entity.Storage, error) {
	st, err := m.Manager.Storage(entityType)
	if err != nil {
		return nil, err
	}
	return &failingStorage{Storage: st, m: m}, nil
}

type failingStorage struct {
	entity.Storage
	m *failingManager
}

func (s *failingStorage) Save(ctx context.Context, e *entity.Entity) error {
	s.m.mu.Lock()
	if s.m.saves == nil {
		s.m.saves = make(map[string]int)
	}
	limit, limited := s.m.failSaveAfter[s.EntityType()]
	if limited && s.m.saves[s.EntityType()] >= limit {
		s.m.mu.Unlock()
		return errInjected
	}
	s.m.saves[s.EntityType()]++
	s.m.mu.Unlock()
	return s.Storage.Save(ctx, e)
}

func (s *failingStorage) Delete(ctx context.Context, entities []*entity.Entity) error {
	if s.m.failDelete[s.EntityType()] {
		return errInjected
	}
	return s.Storage.Delete(ctx, entities)
}
