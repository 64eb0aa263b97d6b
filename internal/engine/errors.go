package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/sweep/internal/ir"
)

// ErrorCode categorizes RuntimeError.
type ErrorCode string

const (
	// CodeUnknownAction means the action URI is not one the engine serves.
	CodeUnknownAction ErrorCode = "UNKNOWN_ACTION"

	// CodeInvalidArgs means a required argument is missing or mistyped.
	CodeInvalidArgs ErrorCode = "INVALID_ARGS"

	// CodeConfigRejected means Game.initializeGame asked for an impossible
	// board. The action is still journaled with outcome Rejected.
	CodeConfigRejected ErrorCode = "CONFIG_REJECTED"

	// CodePlacementFailed means the placer could not lay out mines on the
	// first reveal, typically a fixed layout that covers the revealed cell.
	// The action is journaled with outcome Rejected and the game is
	// unchanged.
	CodePlacementFailed ErrorCode = "PLACEMENT_FAILED"
)

// RuntimeError reports a problem dispatching an action.
type RuntimeError struct {
	Code    ErrorCode
	Message string
	Action  ir.ActionRef
	Err     error
}

func (e *RuntimeError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s: %s (action=%s)", e.Code, e.Message, e.Action)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, so errors.Is(err,
// grid.ErrTooManyMines) works on a rejected configuration.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsUnknownAction reports whether err is an UNKNOWN_ACTION RuntimeError.
func IsUnknownAction(err error) bool {
	return hasCode(err, CodeUnknownAction)
}

// IsInvalidArgs reports whether err is an INVALID_ARGS RuntimeError.
func IsInvalidArgs(err error) bool {
	return hasCode(err, CodeInvalidArgs)
}

// IsConfigRejected reports whether err is a CONFIG_REJECTED RuntimeError.
func IsConfigRejected(err error) bool {
	return hasCode(err, CodeConfigRejected)
}

// IsPlacementFailed reports whether err is a PLACEMENT_FAILED RuntimeError.
func IsPlacementFailed(err error) bool {
	return hasCode(err, CodePlacementFailed)
}

// isRejection reports whether err came with a journaled Rejected outcome.
func isRejection(err error) bool {
	return IsConfigRejected(err) || IsPlacementFailed(err)
}

func hasCode(err error, code ErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

func unknownAction(uri ir.ActionRef) *RuntimeError {
	return &RuntimeError{
		Code:    CodeUnknownAction,
		Message: "no such action",
		Action:  uri,
	}
}

func invalidArgs(uri ir.ActionRef, err error) *RuntimeError {
	return &RuntimeError{
		Code:    CodeInvalidArgs,
		Message: err.Error(),
		Action:  uri,
		Err:     err,
	}
}
