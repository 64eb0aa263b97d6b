package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: layout
description: layout fills in the board size
game:
  layout: ["*.", ".."]
flow:
  - invoke: Game.revealCell
    args: { row: 1, col: 1 }
    expect: { case: Applied }
assertions:
  - type: cell
    row: 0
    col: 0
    mine: true
`))
	require.NoError(t, err)
	assert.Equal(t, "layout", s.Name)
	require.NotNil(t, s.Game)
	assert.Equal(t, 2, s.Game.Rows)
	assert.Equal(t, 2, s.Game.Cols)
	assert.Equal(t, 1, s.Game.Mines)
	assert.Equal(t, 1, s.Flow[0].Args["row"])
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown field",
			yaml: "name: x\ndescription: y\nflw: []\n",
			want: "parse YAML",
		},
		{
			name: "missing name",
			yaml: "description: y\nflow: [{invoke: Counter.reset}]\n",
			want: "name is required",
		},
		{
			name: "missing description",
			yaml: "name: x\nflow: [{invoke: Counter.reset}]\n",
			want: "description is required",
		},
		{
			name: "empty flow",
			yaml: "name: x\ndescription: y\nflow: []\n",
			want: "flow list is required",
		},
		{
			name: "unknown action",
			yaml: "name: x\ndescription: y\nflow: [{invoke: Game.explode}]\n",
			want: `unknown action "Game.explode"`,
		},
		{
			name: "bad expected case",
			yaml: "name: x\ndescription: y\nflow: [{invoke: Counter.reset, expect: {case: Done}}]\n",
			want: "unknown outcome case",
		},
		{
			name: "layout disagrees with size",
			yaml: "name: x\ndescription: y\ngame: {rows: 3, layout: ['*.']}\nflow: [{invoke: Counter.reset}]\n",
			want: "layout is 1x2",
		},
		{
			name: "layout disagrees with mines",
			yaml: "name: x\ndescription: y\ngame: {mines: 2, layout: ['*.']}\nflow: [{invoke: Counter.reset}]\n",
			want: "layout has 1 mines",
		},
		{
			name: "bad layout glyph",
			yaml: "name: x\ndescription: y\ngame: {layout: ['*x']}\nflow: [{invoke: Counter.reset}]\n",
			want: "unexpected",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\ndescription: y\nflow: [{invoke: Counter.reset}]\nassertions: [{type: vibes}]\n",
			want: `unknown assertion type "vibes"`,
		},
		{
			name: "cell without position",
			yaml: "name: x\ndescription: y\nflow: [{invoke: Counter.reset}]\nassertions: [{type: cell, state: hidden}]\n",
			want: "row and col are required",
		},
		{
			name: "cell with unknown state",
			yaml: "name: x\ndescription: y\nflow: [{invoke: Counter.reset}]\nassertions: [{type: cell, row: 0, col: 0, state: open}]\n",
			want: `unknown cell state "open"`,
		},
		{
			name: "trace_count negative",
			yaml: "name: x\ndescription: y\nflow: [{invoke: Counter.reset}]\nassertions: [{type: trace_count, action: Counter.reset, count: -1}]\n",
			want: "count must be non-negative",
		},
		{
			name: "trace_order empty",
			yaml: "name: x\ndescription: y\nflow: [{invoke: Counter.reset}]\nassertions: [{type: trace_order}]\n",
			want: "actions list is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_Files(t *testing.T) {
	for _, name := range []string{"first_click_win", "hit_mine", "counter", "flood_fill", "rejected_config"} {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)
			assert.Equal(t, name, s.Name)
		})
	}
}

func TestLoadScenario_Missing(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario")
}
