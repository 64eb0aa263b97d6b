package engine

import "sync/atomic"

// Sequencer hands out strictly increasing logical sequence numbers.
// Clock is the production implementation; tests may supply their own.
type Sequencer interface {
	Next() int64
	Current() int64
}

// Clock is a monotonic logical clock. The first Next returns 1.
// It is safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock positioned at start.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
