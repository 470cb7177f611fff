package store

import (
	"context"
	"sync"

	"github.com/joescharf/golem/internal/models"
)

// MemStore is an in-memory Store used when the SQLite database cannot be
// opened (the session still works, it just forgets everything on exit).
// It is also handy in tests.
type MemStore struct {
	mu       sync.Mutex
	messages []*models.ChatMessage
	prefs    map[string]string
	memories []*models.MemoryEntry
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{prefs: make(map[string]string)}
}

func (s *MemStore) AppendMessage(_ context.Context, msg *models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ID == "" {
		msg.ID = newULID()
	}
	cp := *msg
	s.messages = append(s.messages, &cp)
	return nil
}

func (s *MemStore) ListMessages(_ context.Context, limit int) ([]*models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]*models.ChatMessage, len(msgs))
	for i, m := range msgs {
		cp := *m
		out[i] = &cp
	}
	return out, nil
}

func (s *MemStore) TrimMessages(_ context.Context, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if max < 0 {
		max = 0
	}
	if len(s.messages) > max {
		s.messages = s.messages[len(s.messages)-max:]
	}
	return nil
}

func (s *MemStore) GetPreference(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.prefs[key]
	return v, ok, nil
}

func (s *MemStore) SetPreference(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[key] = value
	return nil
}

func (s *MemStore) AddMemory(_ context.Context, e *models.MemoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = newULID()
	}
	cp := *e
	s.memories = append(s.memories, &cp)
	return nil
}

func (s *MemStore) ListMemories(_ context.Context) ([]*models.MemoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.MemoryEntry, len(s.memories))
	for i, e := range s.memories {
		cp := *e
		out[i] = &cp
	}
	return out, nil
}

func (s *MemStore) Migrate(_ context.Context) error { return nil }

func (s *MemStore) Close() error { return nil }
