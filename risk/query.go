package risk

import "github.com/dominium/dominium/ids"

// TypeQuery, FieldQuery, ... implement SPEC_FULL.md's supplemented
// per-entity risk query verbs (risk-type-query, risk-field-query,
// risk-exposure-query, risk-profile-query, risk-event-query,
// risk-attribution-query, risk-policy-query, risk-claim-query,
// risk-region-query). Each spends CostQuery against the same *Budget
// resolve() draws from, refusing RefuseBudget on exhaustion exactly as
// resolve() does; a collapsed region refuses live entity queries with
// RefuseDomainInactive, and the capsule is the only answer until the
// region expands.

// TypeQuery looks up a risk type by id.
func (d *Domain) TypeQuery(typeID ids.RefID, budget *Budget) (RiskType, RefusalReason) {
	if !budget.spend(CostQuery) {
		return RiskType{}, RefuseBudget
	}
	t, ok := d.Types.Find(typeID)
	if !ok {
		return RiskType{}, RefuseFieldMissing
	}
	return t, RefuseNone
}

// FieldQuery looks up a field by id, refusing if its region is collapsed.
func (d *Domain) FieldQuery(fieldID ids.RefID, budget *Budget) (Field, RefusalReason) {
	if !budget.spend(CostQuery) {
		return Field{}, RefuseBudget
	}
	f, ok := d.Fields.Find(fieldID)
	if !ok {
		return Field{}, RefuseFieldMissing
	}
	if d.IsCollapsed(f.RegionID) {
		return Field{}, RefuseDomainInactive
	}
	return f, RefuseNone
}

// ExposureQuery looks up an exposure by id, refusing if its region is
// collapsed.
func (d *Domain) ExposureQuery(exposureID ids.RefID, budget *Budget) (*Exposure, RefusalReason) {
	if !budget.spend(CostQuery) {
		return nil, RefuseBudget
	}
	e, ok := d.Exposures.Find(exposureID)
	if !ok {
		return nil, RefuseExposureMissing
	}
	if d.IsCollapsed(e.RegionID) {
		return nil, RefuseDomainInactive
	}
	return e, RefuseNone
}

// ProfileQuery looks up a profile by id, refusing if its region is
// collapsed.
func (d *Domain) ProfileQuery(profileID ids.RefID, budget *Budget) (*Profile, RefusalReason) {
	if !budget.spend(CostQuery) {
		return nil, RefuseBudget
	}
	p, ok := d.Profiles.Find(profileID)
	if !ok {
		return nil, RefuseProfileMissing
	}
	if d.IsCollapsed(p.RegionID) {
		return nil, RefuseDomainInactive
	}
	return p, RefuseNone
}

// EventQuery looks up a liability event by id, refusing if its region
// is collapsed.
func (d *Domain) EventQuery(eventID ids.RefID, budget *Budget) (Event, RefusalReason) {
	if !budget.spend(CostQuery) {
		return Event{}, RefuseBudget
	}
	e, ok := d.Events.Find(eventID)
	if !ok {
		return Event{}, RefuseEventMissing
	}
	if d.IsCollapsed(e.RegionID) {
		return Event{}, RefuseDomainInactive
	}
	return e, RefuseNone
}

// AttributionQuery looks up a liability attribution by id. Attributions
// carry no region of their own; collapse is gated by their event's region.
func (d *Domain) AttributionQuery(attributionID ids.RefID, budget *Budget) (Attribution, RefusalReason) {
	if !budget.spend(CostQuery) {
		return Attribution{}, RefuseBudget
	}
	a, ok := d.Attributions.Find(attributionID)
	if !ok {
		return Attribution{}, RefuseEventMissing
	}
	if ev, ok := d.Events.Find(a.EventID); ok && d.IsCollapsed(ev.RegionID) {
		return Attribution{}, RefuseDomainInactive
	}
	return a, RefuseNone
}

// PolicyQuery looks up an insurance policy by id, refusing if its region
// is collapsed.
func (d *Domain) PolicyQuery(policyID ids.RefID, budget *Budget) (Policy, RefusalReason) {
	if !budget.spend(CostQuery) {
		return Policy{}, RefuseBudget
	}
	p, ok := d.Policies.Find(policyID)
	if !ok {
		return Policy{}, RefusePolicyMissing
	}
	if d.IsCollapsed(p.RegionID) {
		return Policy{}, RefuseDomainInactive
	}
	return p, RefuseNone
}

// ClaimQuery looks up an insurance claim by id. Claims carry no region
// of their own; collapse is gated by their policy's region.
func (d *Domain) ClaimQuery(claimID ids.RefID, budget *Budget) (*Claim, RefusalReason) {
	if !budget.spend(CostQuery) {
		return nil, RefuseBudget
	}
	c, ok := d.Claims.Find(claimID)
	if !ok {
		return nil, RefuseClaimMissing
	}
	if p, ok := d.Policies.Find(c.PolicyID); ok && d.IsCollapsed(p.RegionID) {
		return nil, RefuseDomainInactive
	}
	return c, RefuseNone
}

// RegionQuery returns regionID's macro-capsule if collapsed; live
// regions have no single summary record and are queried entity-by-entity.
func (d *Domain) RegionQuery(regionID ids.RefID, budget *Budget) (*MacroCapsule, RefusalReason) {
	if !budget.spend(CostQuery) {
		return nil, RefuseBudget
	}
	c, ok := d.Capsule(regionID)
	if !ok {
		return nil, RefuseFieldMissing
	}
	return c, RefuseNone
}
