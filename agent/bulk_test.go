package agent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dominium/dominium/idset"
	"github.com/dominium/dominium/ids"
	"github.com/dominium/dominium/registry"
)

func TestBulkRevokeGrantsRemovesEveryTargetedID(t *testing.T) {
	grants := registry.New[ids.RefID, AuthorityGrant](0)
	require.NoError(t, grants.Register(1, AuthorityGrant{GrantID: 1}))
	require.NoError(t, grants.Register(2, AuthorityGrant{GrantID: 2}))
	require.NoError(t, grants.Register(3, AuthorityGrant{GrantID: 3}))

	err := BulkRevokeGrants(grants, idset.Of(1, 3))
	require.NoError(t, err)
	require.Equal(t, 1, grants.Len())
	_, ok := grants.Find(2)
	require.True(t, ok)
}

func TestBulkRevokeGrantsAggregatesMissingIDs(t *testing.T) {
	grants := registry.New[ids.RefID, AuthorityGrant](0)
	require.NoError(t, grants.Register(1, AuthorityGrant{GrantID: 1}))

	err := BulkRevokeGrants(grants, idset.Of(1, 99))
	require.Error(t, err)
}

func TestBulkRevokeDelegationsRemovesEveryTargetedID(t *testing.T) {
	delegations := registry.New[ids.RefID, Delegation](0)
	require.NoError(t, delegations.Register(1, Delegation{DelegationID: 1}))
	require.NoError(t, delegations.Register(2, Delegation{DelegationID: 2}))

	require.NoError(t, BulkRevokeDelegations(delegations, idset.Of(2)))
	_, ok := delegations.Find(2)
	require.False(t, ok)
}
