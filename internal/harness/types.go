package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/sweep/internal/ir"
)

// TraceEvent is one journaled action and its outcome.
type TraceEvent struct {
	Seq    int64          `json:"seq"`
	Action ir.ActionRef   `json:"action_uri"`
	Args   ir.Object      `json:"args"`
	Case   ir.OutcomeCase `json:"case"`
	Result ir.Object      `json:"result"`
}

// String renders the event on one line:
// "<seq> <action> <args> -> <case> <result>" with canonical JSON objects.
func (e TraceEvent) String() string {
	return fmt.Sprintf("%d %s %s -> %s %s", e.Seq, e.Action, canonical(e.Args), e.Case, canonical(e.Result))
}

func canonical(o ir.Object) string {
	if o == nil {
		o = ir.Object{}
	}
	b, err := ir.MarshalCanonical(o)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(b)
}

// Result is the outcome of running a scenario.
type Result struct {
	Pass   bool
	Trace  []TraceEvent
	Errors []string

	// Final state.
	Status  string
	Board   string
	Counter int
}

// NewResult creates a passing Result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result failed.
func (r *Result) AddError(err string) {
	r.Pass = false
	r.Errors = append(r.Errors, err)
}

// Summary joins the errors for display.
func (r *Result) Summary() string {
	if r.Pass {
		return "PASS"
	}
	return "FAIL\n" + strings.Join(r.Errors, "\n")
}
