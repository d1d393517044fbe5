package agent

import (
	"github.com/dominium/dominium/idset"
	"github.com/dominium/dominium/ids"
	"github.com/dominium/dominium/internal/errs"
	"github.com/dominium/dominium/registry"
)

// BulkRevokeGrants revokes every grant id in targets, in ascending id
// order for deterministic error ordering, folding any per-id failure
// (an id already absent) into a single aggregate error rather than
// stopping at the first one.
func BulkRevokeGrants(grants *registry.Registry[ids.RefID, AuthorityGrant], targets idset.Set) error {
	var agg errs.Errs
	for _, id := range targets.Sorted() {
		agg.Add(grants.Revoke(id))
	}
	return agg.Err()
}

// BulkRevokeDelegations revokes every delegation id in targets the same
// way BulkRevokeGrants does for authority grants.
func BulkRevokeDelegations(delegations *registry.Registry[ids.RefID, Delegation], targets idset.Set) error {
	var agg errs.Errs
	for _, id := range targets.Sorted() {
		agg.Add(delegations.Revoke(id))
	}
	return agg.Err()
}
