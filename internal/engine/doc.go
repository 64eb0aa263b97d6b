// Package engine drives the game and counter containers from a stream of
// named actions.
//
// # Single writer
//
// The containers are not safe for concurrent use. External input (a
// terminal reader, a scenario file) goes through Enqueue, and a single
// goroutine calling Run applies actions one at a time in FIFO order.
// Dispatch may be called directly when the caller already is that single
// goroutine.
//
// # Journal
//
// Every applied action is stamped with a logical sequence number, given a
// content-addressed ID, and, when a store is attached, journaled together
// with its outcome and a hash of the post-action state. Unknown actions and
// malformed arguments are returned as errors and never journaled, so they
// do not consume sequence numbers.
//
// # Replay
//
// A session records the seed of its mine placer. Replay runs the journaled
// actions against a fresh engine with the same seed and session ID and
// reports any action whose outcome or state hash differs.
package engine
