// Package variant implements the variant/policy gate (spec.md §4.9,
// component C9): per-system variant selection with run/world/registry
// scope fallback, and the mode state machine that gates SIMULATE/PROCESS
// verbs.
package variant

import (
	"github.com/dominium/dominium/ids"
	"github.com/dominium/dominium/registry"
)

// Scope is the level a variant selection was made at.
type Scope uint8

const (
	ScopeRun Scope = iota
	ScopeWorld
)

// Mode is the gate's operating mode (spec.md §4.9).
type Mode uint8

const (
	ModeAuthoritative Mode = iota
	ModeDegraded
	ModeFrozen
	ModeTransformOnly
)

// DegradeDetail names why the gate dropped out of authoritative mode.
type DegradeDetail string

// MissingVariant is set when set() targets a variant id absent from
// the registry (spec.md §4.9: "references to unknown variants are
// allowed but force mode → degraded").
const MissingVariant DegradeDetail = "missing_variant"

// Gate holds run-scope and world-scope selections plus registry
// defaults, and the current mode.
type Gate struct {
	Mode   Mode
	Detail DegradeDetail

	runScope   *registry.Registry[ids.RefID, ids.RefID]
	worldScope *registry.Registry[ids.RefID, ids.RefID]
	defaults   *registry.Registry[ids.RefID, ids.RefID]
	known      *registry.Registry[ids.RefID, struct{}]
}

// NewGate returns an authoritative gate with empty selections.
func NewGate() *Gate {
	return &Gate{
		Mode:       ModeAuthoritative,
		runScope:   registry.New[ids.RefID, ids.RefID](0),
		worldScope: registry.New[ids.RefID, ids.RefID](0),
		defaults:   registry.New[ids.RefID, ids.RefID](0),
		known:      registry.New[ids.RefID, struct{}](0),
	}
}

// RegisterVariant marks variantID as a known, resolvable variant.
func (g *Gate) RegisterVariant(variantID ids.RefID) error {
	return g.known.Register(variantID, struct{}{})
}

// RegisterDefault sets systemID's registry-scope default variant.
func (g *Gate) RegisterDefault(systemID, variantID ids.RefID) error {
	return g.defaults.Register(systemID, variantID)
}

// Resolve consults run-scope, then world-scope, then the registry
// default, in that order (spec.md §4.9).
func (g *Gate) Resolve(systemID ids.RefID) (ids.RefID, bool) {
	if v, ok := g.runScope.Find(systemID); ok {
		return v, true
	}
	if v, ok := g.worldScope.Find(systemID); ok {
		return v, true
	}
	if v, ok := g.defaults.Find(systemID); ok {
		return v, true
	}
	return ids.NoRef, false
}

// Set appends or replaces systemID's selection at scope. An unknown
// variantID is accepted but forces the gate into ModeDegraded with
// DegradeDetail MissingVariant (spec.md §4.9). A known variantID returns
// a degraded gate to ModeAuthoritative once every run-scope and
// world-scope selection names a known variant again.
func (g *Gate) Set(systemID, variantID ids.RefID, scope Scope) error {
	target := g.runScope
	if scope == ScopeWorld {
		target = g.worldScope
	}
	if _, exists := target.Find(systemID); exists {
		if err := target.Update(systemID, variantID); err != nil {
			return err
		}
	} else if err := target.Register(systemID, variantID); err != nil {
		return err
	}

	if _, known := g.known.Find(variantID); !known {
		g.Mode = ModeDegraded
		g.Detail = MissingVariant
	} else if g.Mode == ModeDegraded {
		resolved := true
		check := func(_, v ids.RefID) bool {
			if _, ok := g.known.Find(v); !ok {
				resolved = false
			}
			return resolved
		}
		g.runScope.All(check)
		g.worldScope.All(check)
		if resolved {
			g.Mode = ModeAuthoritative
			g.Detail = ""
		}
	}
	return nil
}

// Selection is one system's resolved variant at a given scope, used by
// the save format to dump the world-scope selection table.
type Selection struct {
	SystemID  ids.RefID
	VariantID ids.RefID
}

// WorldSelections returns every world-scope system/variant selection in
// insertion order (spec.md §6: a save file's variants_begin/end section).
func (g *Gate) WorldSelections() []Selection {
	out := make([]Selection, 0, g.worldScope.Len())
	g.worldScope.All(func(systemID, variantID ids.RefID) bool {
		out = append(out, Selection{SystemID: systemID, VariantID: variantID})
		return true
	})
	return out
}

// RefusesSimulateAndProcess reports whether the gate's current mode
// refuses SIMULATE and PROCESS verbs (spec.md §4.9: "in frozen or
// transform_only, the executor refuses all SIMULATE and PROCESS verbs
// with refusal code VARIANT").
func (g *Gate) RefusesSimulateAndProcess() bool {
	return g.Mode == ModeFrozen || g.Mode == ModeTransformOnly
}
