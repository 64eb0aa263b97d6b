package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sweep/internal/grid"
	"github.com/roach88/sweep/internal/ir"
)

// Scenario is a scripted session.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// SessionID fixes the journal's session ID. Empty uses
	// testutil.DefaultSessionID.
	SessionID string `yaml:"session_id,omitempty"`

	// Game, when present, is initialized before the flow runs.
	Game *GameSetup `yaml:"game,omitempty"`

	Flow       []FlowStep  `yaml:"flow"`
	Assertions []Assertion `yaml:"assertions"`
}

// GameSetup describes the opening board. With Layout, mines are placed
// exactly there and Rows, Cols, and Mines may be omitted. Without it,
// mines are placed at random from Seed on the first reveal.
type GameSetup struct {
	Rows   int      `yaml:"rows,omitempty"`
	Cols   int      `yaml:"cols,omitempty"`
	Mines  int      `yaml:"mines,omitempty"`
	Seed   uint64   `yaml:"seed,omitempty"`
	Layout []string `yaml:"layout,omitempty"`
}

// FlowStep dispatches one action.
type FlowStep struct {
	Invoke string         `yaml:"invoke"`
	Args   map[string]any `yaml:"args,omitempty"`
	Expect *Expect        `yaml:"expect,omitempty"`
}

// Expect checks a step's outcome. Unset fields are not checked.
type Expect struct {
	Case   string `yaml:"case,omitempty"`
	Status string `yaml:"status,omitempty"`
	Count  *int   `yaml:"count,omitempty"`
}

// Assertion checks the final state or the journaled trace.
type Assertion struct {
	Type string `yaml:"type"`

	// final_status
	Status string `yaml:"status,omitempty"`

	// cell
	Row   *int   `yaml:"row,omitempty"`
	Col   *int   `yaml:"col,omitempty"`
	State string `yaml:"state,omitempty"`
	Mine  *bool  `yaml:"mine,omitempty"`

	// counter, trace_count
	Count *int `yaml:"count,omitempty"`

	// trace_count
	Action string `yaml:"action,omitempty"`

	// trace_order
	Actions []string `yaml:"actions,omitempty"`
}

// Assertion types.
const (
	AssertFinalStatus = "final_status"
	AssertCell        = "cell"
	AssertCounter     = "counter"
	AssertTraceCount  = "trace_count"
	AssertTraceOrder  = "trace_order"
)

// Cell states used by cell assertions.
const (
	CellHidden   = "hidden"
	CellRevealed = "revealed"
	CellFlagged  = "flagged"
)

// LoadScenario reads a scenario file. Unknown fields are rejected so typos
// fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if s.Game != nil {
		if err := s.Game.resolve(); err != nil {
			return fmt.Errorf("game: %w", err)
		}
	}

	for i, step := range s.Flow {
		if step.Invoke == "" {
			return fmt.Errorf("flow[%d]: invoke is required", i)
		}
		if !ir.ActionRef(step.Invoke).Known() {
			return fmt.Errorf("flow[%d]: unknown action %q", i, step.Invoke)
		}
		if step.Expect != nil && step.Expect.Case != "" {
			if _, err := ir.ParseOutcomeCase(step.Expect.Case); err != nil {
				return fmt.Errorf("flow[%d].expect: %w", i, err)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

// resolve fills Rows, Cols, and Mines from Layout and checks they agree
// with any explicit values.
func (g *GameSetup) resolve() error {
	if len(g.Layout) == 0 {
		return nil
	}
	mines, rows, cols, err := grid.ParseLayout(g.Layout)
	if err != nil {
		return err
	}
	if (g.Rows != 0 && g.Rows != rows) || (g.Cols != 0 && g.Cols != cols) {
		return fmt.Errorf("layout is %dx%d but game declares %dx%d", rows, cols, g.Rows, g.Cols)
	}
	if g.Mines != 0 && g.Mines != len(mines) {
		return fmt.Errorf("layout has %d mines but game declares %d", len(mines), g.Mines)
	}
	g.Rows, g.Cols, g.Mines = rows, cols, len(mines)
	return nil
}

// minePositions returns the layout's mines. Call after resolve.
func (g *GameSetup) minePositions() []grid.Pos {
	mines, _, _, _ := grid.ParseLayout(g.Layout)
	return mines
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertFinalStatus:
		if a.Status == "" {
			return fmt.Errorf("status is required for final_status")
		}
	case AssertCell:
		if a.Row == nil || a.Col == nil {
			return fmt.Errorf("row and col are required for cell")
		}
		switch a.State {
		case "", CellHidden, CellRevealed, CellFlagged:
		default:
			return fmt.Errorf("unknown cell state %q", a.State)
		}
		if a.State == "" && a.Mine == nil {
			return fmt.Errorf("cell needs state or mine")
		}
	case AssertCounter:
		if a.Count == nil {
			return fmt.Errorf("count is required for counter")
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("action is required for trace_count")
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("count must be non-negative for trace_count")
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			return fmt.Errorf("actions list is required for trace_order")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
