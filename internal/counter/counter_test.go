package counter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounter_IncrementDecrement(t *testing.T) {
	c := New(nil)
	c.Increment(5)
	c.Decrement(3)
	assert.Equal(t, 2, c.Count())
	assert.Equal(t, State{Count: 2}, c.State())
}

func TestCounter_Reset(t *testing.T) {
	c := New(nil)
	c.Increment(7)
	c.Reset()
	assert.Equal(t, 0, c.Count())
}

func TestCounter_NegativeSteps(t *testing.T) {
	tests := []struct {
		name string
		run  func(c *Counter)
		want int
	}{
		{"increment negative", func(c *Counter) { c.Increment(-4) }, -4},
		{"decrement negative", func(c *Counter) { c.Decrement(-4) }, 4},
		{"below zero", func(c *Counter) { c.Decrement(1); c.Decrement(1) }, -2},
		{"zero step", func(c *Counter) { c.Increment(0) }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(nil)
			tt.run(c)
			assert.Equal(t, tt.want, c.Count())
		})
	}
}

func TestCounter_NotifiesEveryOperation(t *testing.T) {
	c := New(nil)
	var seen []int
	unsub := c.Subscribe(func(s State) { seen = append(seen, s.Count) })

	c.Increment(5)
	c.Decrement(3)
	c.Increment(0)
	c.Reset()
	c.Reset()
	unsub()
	c.Increment(1)

	assert.Equal(t, []int{5, 2, 2, 0, 0}, seen)
	assert.Equal(t, 1, c.Count())
}

func TestCounter_ListenersInOrder(t *testing.T) {
	c := New(nil)
	var order []string
	c.Subscribe(func(State) { order = append(order, "first") })
	c.Subscribe(func(State) { order = append(order, "second") })

	c.Increment(1)
	assert.Equal(t, []string{"first", "second"}, order)
}
