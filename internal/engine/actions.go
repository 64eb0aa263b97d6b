package engine

import (
	"strings"

	"github.com/roach88/sweep/internal/game"
	"github.com/roach88/sweep/internal/grid"
	"github.com/roach88/sweep/internal/ir"
)

const (
	containerGame    = "Game"
	containerCounter = "Counter"
)

// action is a validated request, ready to apply.
type action struct {
	uri               ir.ActionRef
	rows, cols, mines int
	row, col          int
	step              int
}

// applied is what applying an action produced.
type applied struct {
	outcome ir.OutcomeCase
	result  ir.Object
	err     error
}

// parseAction checks uri and pulls the typed arguments out of args. Extra
// arguments are ignored. Counter steps default to 1.
func parseAction(uri ir.ActionRef, args ir.Object) (action, error) {
	a := action{uri: uri}
	var err error

	switch uri {
	case ir.ActionInitializeGame:
		if a.rows, err = intArg(args, "rows"); err != nil {
			break
		}
		if a.cols, err = intArg(args, "cols"); err != nil {
			break
		}
		a.mines, err = intArg(args, "mines")
	case ir.ActionRevealCell, ir.ActionToggleFlag:
		if a.row, err = intArg(args, "row"); err != nil {
			break
		}
		a.col, err = intArg(args, "col")
	case ir.ActionIncrement, ir.ActionDecrement:
		var n int64
		n, err = args.IntOr("step", 1)
		a.step = int(n)
	case ir.ActionResetGame, ir.ActionResetCounter:
	default:
		return action{}, unknownAction(uri)
	}

	if err != nil {
		return action{}, invalidArgs(uri, err)
	}
	return a, nil
}

func intArg(args ir.Object, key string) (int, error) {
	n, err := args.Int(key)
	return int(n), err
}

func (a action) container() string {
	container, _, _ := strings.Cut(string(a.uri), ".")
	return container
}

func (a action) apply(e *Engine) applied {
	switch a.uri {
	case ir.ActionInitializeGame:
		if err := e.game.Initialize(a.rows, a.cols, a.mines); err != nil {
			return rejected(a.uri, CodeConfigRejected, err)
		}
		return applied{outcome: ir.CaseApplied, result: gameResult(e.game.State())}
	case ir.ActionRevealCell:
		changed, err := e.game.RevealCell(a.row, a.col)
		if err != nil {
			return rejected(a.uri, CodePlacementFailed, err)
		}
		return gameChange(changed, e.game.State())
	case ir.ActionToggleFlag:
		return gameChange(e.game.ToggleFlag(a.row, a.col), e.game.State())
	case ir.ActionResetGame:
		e.game.Reset()
		return applied{outcome: ir.CaseApplied, result: gameResult(e.game.State())}
	case ir.ActionIncrement:
		e.counter.Increment(a.step)
	case ir.ActionDecrement:
		e.counter.Decrement(a.step)
	case ir.ActionResetCounter:
		e.counter.Reset()
	}
	return applied{outcome: ir.CaseApplied, result: ir.Object{"count": ir.Int(e.counter.Count())}}
}

func rejected(uri ir.ActionRef, code ErrorCode, err error) applied {
	return applied{
		outcome: ir.CaseRejected,
		result:  ir.Object{"error": ir.String(err.Error())},
		err: &RuntimeError{
			Code:    code,
			Message: err.Error(),
			Action:  uri,
			Err:     err,
		},
	}
}

func gameChange(changed bool, s game.State) applied {
	c := ir.CaseIgnored
	if changed {
		c = ir.CaseApplied
	}
	return applied{outcome: c, result: gameResult(s)}
}

func gameResult(s game.State) ir.Object {
	return ir.Object{
		"status":          ir.String(s.Status),
		"revealed":        ir.Int(s.Grid.Counts().Revealed),
		"flags_remaining": ir.Int(s.FlagsRemaining()),
	}
}

// stateHash fingerprints the container an action touched.
func (e *Engine) stateHash(container string) (string, error) {
	if container == containerCounter {
		return ir.StateHash(ir.Object{"count": ir.Int(e.counter.Count())})
	}
	s := e.game.State()
	return ir.StateHash(ir.Object{
		"rows":   ir.Int(s.Rows),
		"cols":   ir.Int(s.Cols),
		"mines":  ir.Int(s.MineCount),
		"status": ir.String(s.Status),
		"cells":  encodeCells(s.Grid),
	})
}

// encodeCells writes one string per row with a letter per cell: h hidden,
// f flagged, r revealed; upper case when the cell holds a mine.
func encodeCells(g grid.Grid) ir.Array {
	rows := make(ir.Array, 0, g.Rows())
	for _, row := range g {
		var b strings.Builder
		for _, c := range row {
			ch := byte('h')
			switch {
			case c.IsRevealed:
				ch = 'r'
			case c.IsFlagged:
				ch = 'f'
			}
			if c.HasMine {
				ch -= 'a' - 'A'
			}
			b.WriteByte(ch)
		}
		rows = append(rows, ir.String(b.String()))
	}
	return rows
}
