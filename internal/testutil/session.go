package testutil

// DefaultSessionID is used when a scenario does not name its session.
const DefaultSessionID = "test-session-00000000-0000-0000-0000-000000000001"

// FixedSessionGenerator returns the same session ID on every call, so a
// scenario run twice journals byte-identical records. It satisfies
// engine.SessionGenerator.
type FixedSessionGenerator struct {
	id string
}

// NewFixedSessionGenerator returns a generator for id, or for
// DefaultSessionID when id is empty.
func NewFixedSessionGenerator(id string) *FixedSessionGenerator {
	if id == "" {
		id = DefaultSessionID
	}
	return &FixedSessionGenerator{id: id}
}

// Generate returns the fixed ID.
func (g *FixedSessionGenerator) Generate() string {
	return g.id
}
