// Package store provides the SQLite action journal.
//
// The journal is append-only:
//   - sessions: one row per engine run, with its seed and engine version
//   - actions: every dispatched action with its outcome and post-state hash
//
// Ordering uses the logical seq column, never timestamps. All reads are
// ORDER BY seq ASC, id ASC so replays see records in dispatch order.
//
// The journal is an audit and replay log. Game state is never restored from
// it; Replay re-executes the actions from the recorded seed instead.
//
// Open(":memory:") gives a private in-memory journal. The pool is limited
// to a single connection so every query sees the same database.
package store
