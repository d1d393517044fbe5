package risk

import (
	"github.com/dominium/dominium/fixedpoint"
	"github.com/dominium/dominium/ids"
)

// RefusalReason names why resolve() could not complete a stage
// (risk_fields.h: dom_risk_refusal_reason).
type RefusalReason uint8

const (
	RefuseNone RefusalReason = iota
	RefuseBudget
	RefuseDomainInactive
	RefuseFieldMissing
	RefuseExposureMissing
	RefuseProfileMissing
	RefuseEventMissing
	RefusePolicyMissing
	RefuseClaimMissing
	RefusePolicy
	RefuseInternal
)

// ResolveFlags records which partial conditions a resolve() call hit
// (risk_fields.h: dom_risk_resolve_flags).
type ResolveFlags uint32

const (
	FlagPartial ResolveFlags = 1 << iota
	FlagDecayed
	FlagOverLimit
	FlagClaimApproved
	FlagClaimDenied
)

// AuditMinQ16 and AuditPenaltyQ16 gate the claim-adjudication audit
// discount (spec.md §4.8).
const (
	AuditMinQ16     = fixedpoint.Q16(0x00008000) // 0.5
	AuditPenaltyQ16 = fixedpoint.Q16(0x00003333) // ~0.2
)

// Result is the outcome of a resolve() call: whatever the fold
// completed before exhausting its budget or region (spec.md §4.8).
type Result struct {
	OK                    bool
	Refusal               RefusalReason
	Flags                 ResolveFlags
	FieldCount            int
	ExposureCount         int
	ExposureOverLimitCount int
	ProfileCount          int
	ClaimCount            int
	ClaimApprovedCount    int
	ClaimDeniedCount      int
	ExposureTotalQ48      fixedpoint.Q48
	ImpactMeanTotalQ48    fixedpoint.Q48
	ClaimPaidTotalQ48     fixedpoint.Q48
}

// applyRatio scales mean by ratio clamped to [0, 1] (spec.md §4.8's
// apply_ratio(type.default_impact_mean, accumulated/limit)).
func applyRatio(mean fixedpoint.Q48, ratio fixedpoint.Q16) fixedpoint.Q48 {
	return mean.MulQ16(ratio.Clamp(0, fixedpoint.One))
}

// Resolve runs the budgeted risk/liability/insurance fold over regionID
// (spec.md §4.8). Budget exhaustion at any stage sets FlagPartial and
// RefuseBudget, but whatever the fold completed so far is still
// returned — never all-or-nothing.
func Resolve(d *Domain, regionID ids.RefID, now ids.Tick, delta fixedpoint.Q16, budget *Budget) Result {
	var res Result

	if d.ExistenceState != ExistenceActive {
		res.Refusal = RefuseDomainInactive
		return res
	}

	// Stage 1: budget gate.
	if !budget.spend(CostAnalytic) {
		res.Refusal = RefuseBudget
		res.Flags |= FlagPartial
		return res
	}
	if capsule, collapsed := d.capsules[regionID]; collapsed {
		res.OK = true
		res.Flags |= FlagPartial
		res.FieldCount = int(capsule.FieldCount)
		res.ExposureCount = int(capsule.ExposureCount)
		res.ProfileCount = int(capsule.ProfileCount)
		res.ExposureTotalQ48 = capsule.ExposureTotalQ48
		return res
	}

	// Stage 2: field scan (accounting only).
	var regionFields []Field
	exhausted := false
	d.Fields.All(func(_ ids.RefID, f Field) bool {
		if f.RegionID != regionID {
			return true
		}
		if !budget.spend(CostMedium) {
			exhausted = true
			return false
		}
		regionFields = append(regionFields, f)
		res.FieldCount++
		return true
	})
	if exhausted {
		res.OK = true
		res.Refusal = RefuseBudget
		res.Flags |= FlagPartial
		return res
	}

	// Stage 3: exposure accumulation.
	var regionExposures []*Exposure
	d.Exposures.All(func(_ ids.RefID, e *Exposure) bool {
		if e.RegionID != regionID {
			return true
		}
		res.ExposureCount++
		for _, f := range regionFields {
			if e.RiskTypeID != 0 && f.RiskTypeID != e.RiskTypeID {
				continue
			}
			dist := f.Center.Distance(e.Location)
			if dist >= f.RadiusQ16 || f.RadiusQ16 == 0 {
				continue
			}
			falloff := f.RadiusQ16.Sub(dist).Div(f.RadiusQ16)
			if falloff < 0 {
				falloff = 0
			}
			rate := falloff.Mul(f.ExposureRateQ16).Mul(e.ExposureRateQ16).Mul(e.SensitivityQ16)
			contribution := rate.ToQ48().MulQ16(delta)
			e.ExposureAccumulatedQ48 = e.ExposureAccumulatedQ48.Add(contribution)
		}
		if e.ExposureLimitQ48 > 0 && e.ExposureAccumulatedQ48 >= e.ExposureLimitQ48 {
			e.OverLimit = true
			res.ExposureOverLimitCount++
			res.Flags |= FlagOverLimit
		}
		res.ExposureTotalQ48 = res.ExposureTotalQ48.Add(e.ExposureAccumulatedQ48)
		regionExposures = append(regionExposures, e)
		return true
	})

	// Stage 4: profile aggregation.
	d.Profiles.All(func(_ ids.RefID, p *Profile) bool {
		if p.RegionID != regionID {
			return true
		}
		var impactMean fixedpoint.Q48
		var spreadSum, uncertaintySum fixedpoint.Q16
		matched := 0
		for _, e := range regionExposures {
			if e.SubjectRef != p.SubjectRef {
				continue
			}
			rt, ok := d.Types.Find(e.RiskTypeID)
			if !ok {
				continue
			}
			ratio := fixedpoint.Zero
			if e.ExposureLimitQ48 != 0 {
				ratio = e.ExposureAccumulatedQ48.Div(e.ExposureLimitQ48).ToQ16()
			}
			impactMean = impactMean.Add(applyRatio(rt.DefaultImpactMeanQ48, ratio))
			spreadSum = spreadSum.Add(e.UncertaintyQ16)
			uncertaintySum = uncertaintySum.Add(e.UncertaintyQ16)
			matched++
		}
		p.ImpactMeanQ48 = impactMean
		if matched > 0 {
			p.ImpactSpreadQ16 = spreadSum.Div(fixedpoint.FromInt(int64(matched)))
			p.UncertaintyQ16 = uncertaintySum.Div(fixedpoint.FromInt(int64(matched)))
		}
		p.ExposureTotalQ48 = impactMean
		res.ProfileCount++
		res.ImpactMeanTotalQ48 = res.ImpactMeanTotalQ48.Add(impactMean)
		return true
	})

	// Stage 5: claim adjudication.
	d.Claims.All(func(_ ids.RefID, c *Claim) bool {
		res.ClaimCount++
		policy, ok := d.Policies.Find(c.PolicyID)
		if !ok || !policy.covers(now) || policy.RegionID != regionID {
			c.Status = ClaimDenied
			res.ClaimDeniedCount++
			res.Flags |= FlagClaimDenied
			return true
		}
		event, ok := d.Events.Find(c.EventID)
		if !ok || event.RiskTypeID != policy.RiskTypeID || event.RegionID != regionID {
			c.Status = ClaimDenied
			res.ClaimDeniedCount++
			res.Flags |= FlagClaimDenied
			return true
		}
		payout := event.LossAmountQ48.Sub(policy.DeductibleQ48)
		if payout < 0 {
			payout = 0
		}
		payout = payout.MulQ16(policy.CoverageRatioQ16)
		if policy.AuditScoreQ16 < AuditMinQ16 {
			payout = payout.MulQ16(fixedpoint.One.Sub(AuditPenaltyQ16))
		}
		payout = payout.Clamp(0, c.ClaimAmountQ48)
		payout = payout.Clamp(0, policy.PayoutLimitQ48)
		c.ApprovedAmountQ48 = payout
		c.ResolvedTick = now
		if payout > 0 {
			c.Status = ClaimApproved
			res.ClaimApprovedCount++
			res.Flags |= FlagClaimApproved
			res.ClaimPaidTotalQ48 = res.ClaimPaidTotalQ48.Add(payout)
		} else {
			c.Status = ClaimDenied
			res.ClaimDeniedCount++
			res.Flags |= FlagClaimDenied
		}
		return true
	})

	res.OK = true
	return res
}
