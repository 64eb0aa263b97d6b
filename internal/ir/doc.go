// Package ir defines the journal record types and their canonical encoding.
//
// Every action the engine applies is described by an Action (what was asked)
// and an Outcome (what happened). Both are built from Value trees so they can
// be serialized as RFC 8785 canonical JSON and hashed into stable,
// content-addressed identifiers.
//
// Constraints:
//   - No floats; numbers are int64
//   - No null; absent fields are omitted
//   - Logical sequence numbers only, never wall-clock timestamps
//
// ir imports nothing internal.
package ir
