// Package memory implements golem's semantic retrieval store: embedded text
// snippets ranked by cosine similarity against a query embedding.
package memory

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/joescharf/golem/internal/llm"
	"github.com/joescharf/golem/internal/models"
	"github.com/joescharf/golem/internal/store"
)

// Errors reported by Add. Callers translate these into user-visible
// informational results; none of them is fatal to the session.
var (
	ErrEmptyText   = errors.New("empty text")
	ErrNoEmbedding = errors.New("no embedding available")
)

// Store ranks persisted memory entries by embedding similarity.
type Store struct {
	db    store.Store
	embed llm.Embedder
	log   *zap.SugaredLogger
}

// NewStore creates a retrieval store backed by db. embed may be nil, in which
// case Add fails softly and Query always returns nothing.
func NewStore(db store.Store, embed llm.Embedder, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Store{db: db, embed: embed, log: log}
}

// Add embeds text and persists it as a new entry.
func (m *Store) Add(ctx context.Context, text, kind string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	if m.embed == nil {
		return ErrNoEmbedding
	}

	vec, err := m.embed.Embed(ctx, text)
	if err != nil || len(vec) == 0 {
		m.log.Debugw("embedding unavailable", "err", err)
		return ErrNoEmbedding
	}

	return m.db.AddMemory(ctx, &models.MemoryEntry{
		Text:   text,
		Vector: vec,
		Kind:   kind,
	})
}

// Query returns up to k stored texts nearest to the query, best match first.
// Every failure mode degrades to an empty result.
func (m *Store) Query(ctx context.Context, query string, k int) []string {
	query = strings.TrimSpace(query)
	if query == "" || m.embed == nil {
		return nil
	}
	if k <= 0 {
		k = 3
	}

	qv, err := m.embed.Embed(ctx, query)
	if err != nil || len(qv) == 0 {
		m.log.Debugw("query embedding unavailable", "err", err)
		return nil
	}

	entries, err := m.db.ListMemories(ctx)
	if err != nil {
		m.log.Debugw("list memories failed", "err", err)
		return nil
	}

	type scored struct {
		text  string
		score float64
	}
	ranked := make([]scored, 0, len(entries))
	for _, e := range entries {
		if len(e.Vector) == 0 {
			continue
		}
		ranked = append(ranked, scored{text: e.Text, score: cosine(qv, e.Vector)})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.text)
	}
	return out
}

// cosine computes cosine similarity between two vectors. Mismatched lengths
// compare over the shorter prefix; zero vectors score zero.
func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
