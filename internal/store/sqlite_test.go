package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/golem/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Running migrate again should be a no-op
	err := s.Migrate(ctx)
	assert.NoError(t, err)
}

func TestMessages_AppendListTrim(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := s.AppendMessage(ctx, &models.ChatMessage{
			Role:    models.RoleUser,
			Content: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	// Chronological order, all messages
	msgs, err := s.ListMessages(ctx, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	assert.Equal(t, "message 0", msgs[0].Content)
	assert.Equal(t, "message 4", msgs[4].Content)

	// Limited list returns the most recent, still chronological
	msgs, err = s.ListMessages(ctx, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "message 3", msgs[0].Content)
	assert.Equal(t, "message 4", msgs[1].Content)

	// Trim evicts oldest first
	err = s.TrimMessages(ctx, 3)
	require.NoError(t, err)

	msgs, err = s.ListMessages(ctx, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "message 2", msgs[0].Content)
}

func TestNewULID_MonotonicWithinMillisecond(t *testing.T) {
	// Back-to-back IDs land in the same millisecond; ordering must still
	// follow generation order.
	prev := newULID()
	for i := 0; i < 1000; i++ {
		id := newULID()
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestMessages_RapidAppendsKeepInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	const n = 500
	for i := 0; i < n; i++ {
		require.NoError(t, s.AppendMessage(ctx, &models.ChatMessage{
			Role:    models.RoleUser,
			Content: fmt.Sprintf("message %d", i),
		}))
	}

	msgs, err := s.ListMessages(ctx, 0)
	require.NoError(t, err)
	require.Len(t, msgs, n)
	for i, m := range msgs {
		require.Equal(t, fmt.Sprintf("message %d", i), m.Content)
	}

	// Eviction drops the oldest half, never newer entries
	require.NoError(t, s.TrimMessages(ctx, n/2))
	msgs, err = s.ListMessages(ctx, 0)
	require.NoError(t, err)
	require.Len(t, msgs, n/2)
	assert.Equal(t, fmt.Sprintf("message %d", n/2), msgs[0].Content)
	assert.Equal(t, fmt.Sprintf("message %d", n-1), msgs[len(msgs)-1].Content)
}

func TestMessages_TrimBelowCountIsNoop(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendMessage(ctx, &models.ChatMessage{Role: models.RoleUser, Content: "hi"}))
	require.NoError(t, s.TrimMessages(ctx, 10))

	msgs, err := s.ListMessages(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestPreferences_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetPreference(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetPreference(ctx, "last_served_port", "8000"))

	v, ok, err := s.GetPreference(ctx, "last_served_port")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "8000", v)

	// Upsert overwrites
	require.NoError(t, s.SetPreference(ctx, "last_served_port", "9090"))
	v, _, err = s.GetPreference(ctx, "last_served_port")
	require.NoError(t, err)
	assert.Equal(t, "9090", v)
}

func TestMemories_AppendAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entries, err := s.ListMemories(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries, "empty store should list no memories")

	e := &models.MemoryEntry{
		Text:   "user prefers tabs over spaces",
		Vector: []float64{0.1, 0.2, 0.3},
		Kind:   models.MemoryKindManual,
	}
	require.NoError(t, s.AddMemory(ctx, e))
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())

	entries, err = s.ListMemories(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e.Text, entries[0].Text)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, entries[0].Vector)
	assert.Equal(t, models.MemoryKindManual, entries[0].Kind)
}

func TestMemStore_FallbackBehavesLikeStore(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, s.AppendMessage(ctx, &models.ChatMessage{
			Role:    models.RoleUser,
			Content: fmt.Sprintf("m%d", i),
		}))
	}
	require.NoError(t, s.TrimMessages(ctx, 2))

	msgs, err := s.ListMessages(ctx, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m2", msgs[0].Content)

	require.NoError(t, s.SetPreference(ctx, "rag_enabled", "true"))
	v, ok, err := s.GetPreference(ctx, "rag_enabled")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	entries, err := s.ListMemories(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
