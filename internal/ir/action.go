package ir

import "fmt"

// ActionRef names an action as "Container.action", e.g. "Game.revealCell".
type ActionRef string

// Action URIs understood by the engine.
const (
	ActionInitializeGame ActionRef = "Game.initializeGame"
	ActionRevealCell     ActionRef = "Game.revealCell"
	ActionToggleFlag     ActionRef = "Game.toggleFlag"
	ActionResetGame      ActionRef = "Game.resetGame"
	ActionIncrement      ActionRef = "Counter.increment"
	ActionDecrement      ActionRef = "Counter.decrement"
	ActionResetCounter   ActionRef = "Counter.reset"
)

// Actions lists every known action URI in a stable order.
var Actions = []ActionRef{
	ActionInitializeGame,
	ActionRevealCell,
	ActionToggleFlag,
	ActionResetGame,
	ActionIncrement,
	ActionDecrement,
	ActionResetCounter,
}

// Known reports whether r is one of Actions.
func (r ActionRef) Known() bool {
	for _, a := range Actions {
		if a == r {
			return true
		}
	}
	return false
}

// OutcomeCase classifies what an action did.
type OutcomeCase string

const (
	// CaseApplied means state changed and subscribers were notified.
	CaseApplied OutcomeCase = "Applied"
	// CaseIgnored means the action was valid input but a no-op, such as
	// revealing a flagged cell.
	CaseIgnored OutcomeCase = "Ignored"
	// CaseRejected means the arguments describe an impossible configuration.
	CaseRejected OutcomeCase = "Rejected"
)

// ParseOutcomeCase validates a stored case string.
func ParseOutcomeCase(s string) (OutcomeCase, error) {
	switch c := OutcomeCase(s); c {
	case CaseApplied, CaseIgnored, CaseRejected:
		return c, nil
	default:
		return "", fmt.Errorf("unknown outcome case %q", s)
	}
}

// Session is one engine run. Seed makes the session reproducible.
type Session struct {
	ID            string `json:"id"`
	Seed          uint64 `json:"seed"`
	EngineVersion string `json:"engine_version"`
}

// Action is a journaled request.
type Action struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	URI       ActionRef `json:"action_uri"`
	Args      Object    `json:"args"`
	Seq       int64     `json:"seq"`
}

// Outcome is the result of applying an Action. Result carries the
// action-specific summary, such as the game status or the counter value;
// StateHash fingerprints the container state after the action.
type Outcome struct {
	ActionID  string      `json:"action_id"`
	Case      OutcomeCase `json:"case"`
	Result    Object      `json:"result"`
	StateHash string      `json:"state_hash"`
	Seq       int64       `json:"seq"`
}

// Record pairs an action with its outcome as stored in the journal.
type Record struct {
	Action  Action  `json:"action"`
	Outcome Outcome `json:"outcome"`
}
