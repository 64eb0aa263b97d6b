package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidFiles(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}),
		"../config/testdata/custom.cue",
		"../harness/testdata/scenarios/hit_mine.yaml",
	)
	require.NoError(t, err)
	assert.Equal(t, "✓ ../config/testdata/custom.cue\n✓ ../harness/testdata/scenarios/hit_mine.yaml\n", out)
}

func TestValidate_InvalidFiles(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: x\ndescription: y\nflow: []\n"), 0o644))

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}),
		"../config/testdata/syntax.cue",
		bad,
		"../config/testdata/custom.cue",
	)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Data ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Files, 3)

	assert.Equal(t, "presets", resp.Data.Files[0].Kind)
	assert.False(t, resp.Data.Files[0].Valid)
	assert.Positive(t, resp.Data.Files[0].Line)

	assert.Equal(t, "scenario", resp.Data.Files[1].Kind)
	assert.Contains(t, resp.Data.Files[1].Error, "flow list is required")

	assert.True(t, resp.Data.Files[2].Valid)
}

func TestValidate_CommandErrors(t *testing.T) {
	_, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "missing.cue")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hi"), 0o644))
	_, err = execute(t, NewValidateCommand(&RootOptions{Format: "text"}), txt)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unsupported file type")

	_, err = execute(t, NewValidateCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
}
