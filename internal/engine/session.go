package engine

import (
	"sync"

	"github.com/google/uuid"
)

// SessionGenerator creates session IDs.
type SessionGenerator interface {
	Generate() string
}

// UUIDv7Generator creates time-sortable UUIDv7 session IDs, so listing
// sessions by ID also lists them by start time.
type UUIDv7Generator struct{}

// Generate returns a hyphenated UUIDv7. It panics if the system random
// source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined IDs in order and panics once they
// run out.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator over ids.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next ID.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all session IDs used")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
