package engine

import (
	"context"
	"fmt"

	"github.com/roach88/sweep/internal/ir"
	"github.com/roach88/sweep/internal/store"
)

// Divergence is one difference between a journaled outcome and the outcome
// of re-executing the same action.
type Divergence struct {
	Seq    int64        `json:"seq"`
	Action ir.ActionRef `json:"action"`
	Field  string       `json:"field"`
	Want   string       `json:"want"`
	Got    string       `json:"got"`
}

// ReplayReport summarizes a replay.
type ReplayReport struct {
	SessionID     string       `json:"session_id"`
	Seed          uint64       `json:"seed"`
	EngineVersion string       `json:"engine_version"`
	Actions       int          `json:"actions"`
	Divergences   []Divergence `json:"divergences"`
}

// Deterministic reports whether the replay matched the journal exactly.
func (r *ReplayReport) Deterministic() bool {
	return len(r.Divergences) == 0
}

// Replay re-executes a journaled session on a fresh, unjournaled engine
// using the session's seed and ID, and compares every outcome.
//
// The returned engine holds the replayed final state. Extra options (a
// logger, metrics) are applied to it; options that would change the seed
// or session ID are overridden.
func Replay(ctx context.Context, st *store.Store, sessionID string, opts ...Option) (*ReplayReport, *Engine, error) {
	sess, err := st.ReadSession(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("replay: %w", err)
	}
	records, err := st.ReadRecords(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("replay: %w", err)
	}

	opts = append(opts,
		WithStore(nil),
		WithSeed(sess.Seed),
		WithSessionGenerator(NewFixedGenerator(sess.ID)),
		WithClock(NewClock()),
	)
	e := New(opts...)

	report := &ReplayReport{
		SessionID:     sess.ID,
		Seed:          sess.Seed,
		EngineVersion: sess.EngineVersion,
		Actions:       len(records),
		Divergences:   []Divergence{},
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return report, e, err
		}

		want := rec.Outcome
		got, err := e.Dispatch(ctx, rec.Action.URI, rec.Action.Args)
		if err != nil && !isRejection(err) {
			return report, e, fmt.Errorf("replay seq %d: %w", rec.Action.Seq, err)
		}

		diff := func(field, w, g string) {
			if w != g {
				report.Divergences = append(report.Divergences, Divergence{
					Seq:    rec.Action.Seq,
					Action: rec.Action.URI,
					Field:  field,
					Want:   w,
					Got:    g,
				})
			}
		}
		diff("seq", fmt.Sprint(rec.Action.Seq), fmt.Sprint(got.Seq))
		diff("action_id", rec.Action.ID, got.ActionID)
		diff("case", string(want.Case), string(got.Case))
		diff("state_hash", want.StateHash, got.StateHash)
	}

	return report, e, nil
}
