// Package harness runs YAML scenarios against the engine.
//
// A scenario optionally sets up a game (a seeded random board or a fixed
// mine layout), then dispatches a flow of actions and checks per-step
// expectations. Each run uses a fresh in-memory journal, a fixed session
// ID, and a deterministic clock, and the trace is read back from the
// journal, so assertions and golden files check what was actually
// recorded.
package harness
