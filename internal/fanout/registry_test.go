package fanout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("sockA", 7))

	p, ok := r.PrincipalOf("sockA")
	require.True(t, ok)
	require.Equal(t, Principal(7), p)

	require.ElementsMatch(t, []string{"sockA"}, r.ConnectionsFor(7))
}

func TestRegistry_DuplicateConnection(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("sockA", 7))
	err := r.Register("sockA", 8)
	require.ErrorIs(t, err, ErrDuplicateConnection)

	// the offending call must not disturb the original registration
	p, ok := r.PrincipalOf("sockA")
	require.True(t, ok)
	require.Equal(t, Principal(7), p)
	require.Empty(t, r.ConnectionsFor(8))
}

func TestRegistry_MultipleConnectionsPerPrincipal(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("sockA", 7))
	require.NoError(t, r.Register("sockB", 7))

	require.ElementsMatch(t, []string{"sockA", "sockB"}, r.ConnectionsFor(7))

	r.Unregister("sockA")
	require.ElementsMatch(t, []string{"sockB"}, r.ConnectionsFor(7))
}

func TestRegistry_UnregisterIdempotent(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("sockA", 7))
	r.Unregister("sockA")
	r.Unregister("sockA")
	r.Unregister("never-registered")

	require.Empty(t, r.ConnectionsFor(7))
	_, ok := r.PrincipalOf("sockA")
	require.False(t, ok)
}

func TestRegistry_UnknownPrincipalIsEmptyNotError(t *testing.T) {
	r := NewRegistry()
	require.Empty(t, r.ConnectionsFor(999))
}
