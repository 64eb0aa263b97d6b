package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/roach88/sweep/internal/ir"
)

// ErrNotFound is returned when a session does not exist.
var ErrNotFound = errors.New("not found")

// SessionSummary describes a journaled session.
type SessionSummary struct {
	ir.Session
	Actions int   `json:"actions"`
	LastSeq int64 `json:"last_seq"`
}

// ReadSession returns the session with the given ID.
func (s *Store) ReadSession(ctx context.Context, id string) (ir.Session, error) {
	var (
		sess ir.Session
		seed string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seed, engine_version FROM sessions WHERE id = ?
	`, id).Scan(&sess.ID, &seed, &sess.EngineVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ir.Session{}, fmt.Errorf("read session %s: %w", id, err)
	}
	if sess.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return ir.Session{}, fmt.Errorf("read session %s: seed: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns every session in creation order.
func (s *Store) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.seed, s.engine_version, COUNT(a.id), COALESCE(MAX(a.seq), 0)
		FROM sessions s
		LEFT JOIN actions a ON a.session_id = s.id
		GROUP BY s.rowid
		ORDER BY s.rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionSummary{}
	for rows.Next() {
		var (
			sum  SessionSummary
			seed string
		)
		if err := rows.Scan(&sum.ID, &seed, &sum.EngineVersion, &sum.Actions, &sum.LastSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sum.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("session %s: seed: %w", sum.ID, err)
		}
		sessions = append(sessions, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadRecords returns every record of a session ordered by seq. It returns
// an empty slice, not nil, when the session has no actions.
func (s *Store) ReadRecords(ctx context.Context, sessionID string) ([]ir.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, seq, action_uri, args, outcome, result, state_hash
		FROM actions
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	records := []ir.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (ir.Record, error) {
	var rec ir.Record
	var uri, args, outcome, result string
	err := rows.Scan(
		&rec.Action.ID,
		&rec.Action.SessionID,
		&rec.Action.Seq,
		&uri,
		&args,
		&outcome,
		&result,
		&rec.Outcome.StateHash,
	)
	if err != nil {
		return ir.Record{}, fmt.Errorf("scan action: %w", err)
	}

	rec.Action.URI = ir.ActionRef(uri)
	if err := rec.Action.Args.UnmarshalJSON([]byte(args)); err != nil {
		return ir.Record{}, fmt.Errorf("action %s: args: %w", rec.Action.ID, err)
	}
	if rec.Outcome.Case, err = ir.ParseOutcomeCase(outcome); err != nil {
		return ir.Record{}, fmt.Errorf("action %s: %w", rec.Action.ID, err)
	}
	if err := rec.Outcome.Result.UnmarshalJSON([]byte(result)); err != nil {
		return ir.Record{}, fmt.Errorf("action %s: result: %w", rec.Action.ID, err)
	}
	rec.Outcome.ActionID = rec.Action.ID
	rec.Outcome.Seq = rec.Action.Seq
	return rec, nil
}
