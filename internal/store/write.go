package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/roach88/sweep/internal/ir"
)

// WriteSession records the start of a session. Writing the same session
// twice is a no-op.
func (s *Store) WriteSession(ctx context.Context, sess ir.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, seed, engine_version)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sess.ID, strconv.FormatUint(sess.Seed, 10), sess.EngineVersion)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteRecord appends an action and its outcome. The session must already
// exist. A record with an ID already in the journal is ignored.
func (s *Store) WriteRecord(ctx context.Context, rec ir.Record) error {
	args, err := marshalObject(rec.Action.Args)
	if err != nil {
		return fmt.Errorf("write record: args: %w", err)
	}
	result, err := marshalObject(rec.Outcome.Result)
	if err != nil {
		return fmt.Errorf("write record: result: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO actions
		(id, session_id, seq, action_uri, args, outcome, result, state_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.Action.ID,
		rec.Action.SessionID,
		rec.Action.Seq,
		string(rec.Action.URI),
		args,
		string(rec.Outcome.Case),
		result,
		rec.Outcome.StateHash,
	)
	if err != nil {
		return fmt.Errorf("write record %s: %w", rec.Action.ID, err)
	}
	return nil
}

func marshalObject(obj ir.Object) (string, error) {
	if obj == nil {
		obj = ir.Object{}
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
