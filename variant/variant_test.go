package variant

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dominium/dominium/ids"
)

func TestResolveFallsBackRunThenWorldThenDefault(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.RegisterVariant(100))
	require.NoError(t, g.RegisterDefault(1, 100))

	v, ok := g.Resolve(1)
	require.True(t, ok)
	require.Equal(t, ids.RefID(100), v)

	require.NoError(t, g.RegisterVariant(200))
	require.NoError(t, g.Set(1, 200, ScopeWorld))
	v, ok = g.Resolve(1)
	require.True(t, ok)
	require.Equal(t, ids.RefID(200), v)

	require.NoError(t, g.RegisterVariant(300))
	require.NoError(t, g.Set(1, 300, ScopeRun))
	v, ok = g.Resolve(1)
	require.True(t, ok)
	require.Equal(t, ids.RefID(300), v)
}

func TestResolveUnknownSystemReturnsFalse(t *testing.T) {
	g := NewGate()
	_, ok := g.Resolve(999)
	require.False(t, ok)
}

func TestSetReplacesExistingSelectionAtSameScope(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.RegisterVariant(1))
	require.NoError(t, g.RegisterVariant(2))
	require.NoError(t, g.Set(1, 1, ScopeRun))
	require.NoError(t, g.Set(1, 2, ScopeRun))

	v, ok := g.Resolve(1)
	require.True(t, ok)
	require.Equal(t, ids.RefID(2), v)
}

func TestSetWithUnknownVariantForcesDegradedMode(t *testing.T) {
	g := NewGate()
	require.Equal(t, ModeAuthoritative, g.Mode)

	require.NoError(t, g.Set(1, 999, ScopeRun))
	require.Equal(t, ModeDegraded, g.Mode)
	require.Equal(t, MissingVariant, g.Detail)

	// the selection is still recorded despite being unknown
	v, ok := g.Resolve(1)
	require.True(t, ok)
	require.Equal(t, ids.RefID(999), v)
}

func TestSetWithKnownVariantDoesNotChangeMode(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.RegisterVariant(1))
	require.NoError(t, g.Set(1, 1, ScopeRun))
	require.Equal(t, ModeAuthoritative, g.Mode)
}

func TestWorldSelectionsReturnsOnlyWorldScopeInInsertionOrder(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.RegisterVariant(10))
	require.NoError(t, g.RegisterVariant(20))
	require.NoError(t, g.Set(2, 20, ScopeWorld))
	require.NoError(t, g.Set(1, 10, ScopeWorld))
	require.NoError(t, g.Set(99, 10, ScopeRun))

	sel := g.WorldSelections()
	require.Equal(t, []Selection{{SystemID: 2, VariantID: 20}, {SystemID: 1, VariantID: 10}}, sel)
}

func TestRefusesSimulateAndProcessOnlyInFrozenOrTransformOnly(t *testing.T) {
	g := NewGate()
	require.False(t, g.RefusesSimulateAndProcess())

	g.Mode = ModeDegraded
	require.False(t, g.RefusesSimulateAndProcess())

	g.Mode = ModeFrozen
	require.True(t, g.RefusesSimulateAndProcess())

	g.Mode = ModeTransformOnly
	require.True(t, g.RefusesSimulateAndProcess())
}
