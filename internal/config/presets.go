package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sweep/internal/grid"
)

//go:embed presets.cue
var builtinPresets string

// Preset is a named board configuration.
type Preset struct {
	Name        string `json:"name"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Mines       int    `json:"mines"`
	Description string `json:"description,omitempty"`
}

// Presets is an ordered preset catalog.
type Presets struct {
	list []Preset
}

// All returns the presets in declaration order, built-ins first.
func (p *Presets) All() []Preset {
	out := make([]Preset, len(p.list))
	copy(out, p.list)
	return out
}

// Lookup returns the preset called name.
func (p *Presets) Lookup(name string) (Preset, bool) {
	for _, preset := range p.list {
		if preset.Name == name {
			return preset, true
		}
	}
	return Preset{}, false
}

// LoadPresets compiles the built-in presets unified with each file in
// files.
func LoadPresets(files ...string) (*Presets, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(builtinPresets, cue.Filename("presets.cue"))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read presets: %w", err)
		}
		extra := ctx.CompileBytes(data, cue.Filename(path))
		if err := extra.Err(); err != nil {
			return nil, formatCUEError(err)
		}
		v = v.Unify(extra)
	}

	return compilePresets(v)
}

// compilePresets validates and decodes the presets field. Only the concrete
// presets are validated; #Preset itself is a schema and stays abstract.
func compilePresets(v cue.Value) (*Presets, error) {
	presets := v.LookupPath(cue.ParsePath("presets"))
	if err := presets.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := presets.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	catalog := &Presets{}
	for iter.Next() {
		var p Preset
		if err := iter.Value().Decode(&p); err != nil {
			return nil, formatCUEError(err)
		}
		p.Name = iter.Selector().Unquoted()
		if err := grid.ValidateConfig(p.Rows, p.Cols, p.Mines); err != nil {
			pos := iter.Value().LookupPath(cue.ParsePath("mines")).Pos()
			if !pos.IsValid() {
				pos = iter.Value().Pos()
			}
			return nil, &CompileError{
				Field:   "presets." + p.Name + ".mines",
				Message: err.Error(),
				Pos:     pos,
			}
		}
		catalog.list = append(catalog.list, p)
	}
	return catalog, nil
}

// CompileError is a preset validation error with its CUE source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError turns the first CUE error into a CompileError when it
// carries a position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
