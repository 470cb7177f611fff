package store

import (
	"context"

	"github.com/joescharf/golem/internal/models"
)

// Store defines the persistence interface for golem session state.
//
// Chat messages and memory entries are append-only; preferences are an open
// string-keyed map of JSON-encoded values. Implementations must be safe for
// concurrent use.
type Store interface {
	// Chat history
	AppendMessage(ctx context.Context, msg *models.ChatMessage) error
	ListMessages(ctx context.Context, limit int) ([]*models.ChatMessage, error)
	TrimMessages(ctx context.Context, max int) error

	// Preferences (value is raw JSON)
	GetPreference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error

	// Retrieval entries
	AddMemory(ctx context.Context, e *models.MemoryEntry) error
	ListMemories(ctx context.Context) ([]*models.MemoryEntry, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
