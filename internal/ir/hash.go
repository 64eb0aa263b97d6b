package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash domains. The version suffix lets the algorithm change without
// colliding with old journals.
const (
	DomainAction = "sweep/action/v1"
	DomainState  = "sweep/state/v1"
)

// hashWithDomain returns hex(SHA-256(domain || 0x00 || data)).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ActionID computes the content-addressed ID of an action. The same session,
// action, arguments, and sequence number always yield the same ID.
func ActionID(sessionID string, uri ActionRef, args Object, seq int64) (string, error) {
	if args == nil {
		args = Object{}
	}
	canonical, err := MarshalCanonical(Object{
		"session_id": String(sessionID),
		"action_uri": String(uri),
		"args":       args,
		"seq":        Int(seq),
	})
	if err != nil {
		return "", fmt.Errorf("action id: %w", err)
	}
	return hashWithDomain(DomainAction, canonical), nil
}

// StateHash fingerprints a snapshot of container state. Replays compare
// these hashes to detect divergence.
func StateHash(state Object) (string, error) {
	canonical, err := MarshalCanonical(state)
	if err != nil {
		return "", fmt.Errorf("state hash: %w", err)
	}
	return hashWithDomain(DomainState, canonical), nil
}

// MustActionID is like ActionID but panics on error. For tests.
func MustActionID(sessionID string, uri ActionRef, args Object, seq int64) string {
	id, err := ActionID(sessionID, uri, args, seq)
	if err != nil {
		panic(err)
	}
	return id
}
