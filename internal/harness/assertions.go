package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/sweep/internal/game"
	"github.com/roach88/sweep/internal/grid"
)

// AssertionError is a failed assertion with the trace for context.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  %s\n", ev)
	}
	return buf.String()
}

// evaluateAssertions runs every assertion and returns the failure messages.
func evaluateAssertions(assertions []Assertion, gs game.State, result *Result) []string {
	var msgs []string
	for i, a := range assertions {
		if err := evaluate(a, gs, result); err != nil {
			msgs = append(msgs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return msgs
}

func evaluate(a Assertion, gs game.State, result *Result) error {
	switch a.Type {
	case AssertFinalStatus:
		return assertFinalStatus(gs, a, result.Trace)
	case AssertCell:
		return assertCell(gs.Grid, a, result.Trace)
	case AssertCounter:
		if result.Counter != *a.Count {
			return &AssertionError{
				Type:     AssertCounter,
				Expected: fmt.Sprintf("count %d", *a.Count),
				Actual:   fmt.Sprintf("count %d", result.Counter),
				Trace:    result.Trace,
			}
		}
		return nil
	case AssertTraceCount:
		return assertTraceCount(result.Trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(result.Trace, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func assertFinalStatus(gs game.State, a Assertion, trace []TraceEvent) error {
	if string(gs.Status) == a.Status {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalStatus,
		Expected: a.Status,
		Actual:   string(gs.Status),
		Trace:    trace,
	}
}

func assertCell(g grid.Grid, a Assertion, trace []TraceEvent) error {
	p := grid.Pos{Row: *a.Row, Col: *a.Col}
	if !g.InBounds(p) {
		return &AssertionError{
			Type:     AssertCell,
			Expected: fmt.Sprintf("cell %s on the board", p),
			Actual:   fmt.Sprintf("board is %dx%d", g.Rows(), g.Cols()),
			Trace:    trace,
		}
	}

	cell := g.At(p)
	if a.State != "" {
		if got := cellState(cell); got != a.State {
			return &AssertionError{
				Type:     AssertCell,
				Expected: fmt.Sprintf("cell %s %s", p, a.State),
				Actual:   got,
				Trace:    trace,
			}
		}
	}
	if a.Mine != nil && cell.HasMine != *a.Mine {
		return &AssertionError{
			Type:     AssertCell,
			Expected: fmt.Sprintf("cell %s mine=%t", p, *a.Mine),
			Actual:   fmt.Sprintf("mine=%t", cell.HasMine),
			Trace:    trace,
		}
	}
	return nil
}

func cellState(c grid.Cell) string {
	switch {
	case c.IsRevealed:
		return CellRevealed
	case c.IsFlagged:
		return CellFlagged
	default:
		return CellHidden
	}
}

// assertTraceCount checks the exact number of journaled occurrences of an
// action. Ignored and rejected outcomes count too.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		if string(ev.Action) == a.Action {
			count++
		}
	}
	if count == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d occurrences of %s", *a.Count, a.Action),
		Actual:   fmt.Sprintf("%d occurrences", count),
		Trace:    trace,
	}
}

// assertTraceOrder checks that the actions occur in the given order, each
// after the previous one. Other actions may be interleaved.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, ev := range trace {
		if next < len(a.Actions) && string(ev.Action) == a.Actions[next] {
			next++
		}
	}
	if next == len(a.Actions) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: strings.Join(a.Actions, " -> "),
		Actual:   fmt.Sprintf("%s not found after %s", a.Actions[next], strings.Join(a.Actions[:next], " -> ")),
		Trace:    trace,
	}
}
