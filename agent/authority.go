package agent

import (
	"github.com/dominium/dominium/bitmask"
	"github.com/dominium/dominium/ids"
	"github.com/dominium/dominium/registry"
)

// EffectiveAuthority folds base authority with every active (non-revoked,
// non-expired) authority grant and delegation targeting subject, in
// registry insertion order (spec.md §4.3's effective_mask, specialized
// to authority). Order does not affect the result since folding is a
// pure bitwise OR, but iteration itself must still be insertion-order to
// keep replay traces comparable step-for-step.
func EffectiveAuthority(
	subject ids.RefID,
	base bitmask.Mask,
	grants *registry.Registry[ids.RefID, AuthorityGrant],
	delegations *registry.Registry[ids.RefID, Delegation],
	now ids.Tick,
) bitmask.Mask {
	mask := base
	if grants != nil {
		grants.All(func(_ ids.RefID, g AuthorityGrant) bool {
			if g.SubjectRef == subject && g.Active(now) {
				mask = mask.Union(g.AuthorityMask)
			}
			return true
		})
	}
	if delegations != nil {
		delegations.All(func(_ ids.RefID, d Delegation) bool {
			if d.DelegateeRef == subject && d.Kind == DelegationAuthority && d.Active(now) {
				mask = mask.Union(d.AuthorityMask)
			}
			return true
		})
	}
	return mask
}

// EffectiveProcessMask folds the process-delegation grants targeting
// subject, used by validate_plan_slice to check whether a delegated
// process capability covers a step's process kind.
func EffectiveProcessMask(
	subject ids.RefID,
	delegations *registry.Registry[ids.RefID, Delegation],
	now ids.Tick,
) bitmask.Mask {
	var mask bitmask.Mask
	if delegations != nil {
		delegations.All(func(_ ids.RefID, d Delegation) bool {
			if d.DelegateeRef == subject && d.Kind == DelegationProcess && d.Active(now) {
				mask = mask.Union(d.AllowedProcessMask)
			}
			return true
		})
	}
	return mask
}
