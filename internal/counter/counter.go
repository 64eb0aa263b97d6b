// Package counter implements the integer counter state container.
//
// Every operation notifies subscribers, including ones that leave the value
// unchanged, such as Increment(0) or Reset on a zero counter.
package counter

import (
	"io"
	"log/slog"

	"github.com/roach88/sweep/internal/observer"
)

// State is the counter snapshot passed to subscribers.
type State struct {
	Count int `json:"count"`
}

// Counter holds a single integer. It is not safe for concurrent use.
type Counter struct {
	count     int
	logger    *slog.Logger
	listeners observer.Registry[State]
}

// New creates a counter at zero. A nil logger discards output.
func New(logger *slog.Logger) *Counter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Counter{logger: logger}
}

// Count returns the current value.
func (c *Counter) Count() int {
	return c.count
}

// State returns the current snapshot.
func (c *Counter) State() State {
	return State{Count: c.count}
}

// Subscribe registers fn to receive the state after every operation.
func (c *Counter) Subscribe(fn func(State)) (unsubscribe func()) {
	return c.listeners.Subscribe(fn)
}

// Increment adds step. Negative steps are allowed.
func (c *Counter) Increment(step int) {
	c.set(c.count + step)
}

// Decrement subtracts step. Negative steps are allowed.
func (c *Counter) Decrement(step int) {
	c.set(c.count - step)
}

// Reset sets the value back to zero.
func (c *Counter) Reset() {
	c.set(0)
}

func (c *Counter) set(v int) {
	c.logger.Debug("counter updated", "from", c.count, "to", v)
	c.count = v
	c.listeners.Notify(c.State())
}
