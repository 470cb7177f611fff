package models

import "time"

// Memory entry kinds.
const (
	MemoryKindManual = "manual"
	MemoryKindChat   = "chat"
)

// MemoryEntry is one embedded snippet in the retrieval store. Entries are
// append-only for the lifetime of a session.
type MemoryEntry struct {
	ID        string
	Text      string
	Vector    []float64
	Kind      string
	CreatedAt time.Time
}
