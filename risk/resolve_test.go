package risk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dominium/dominium/fixedpoint"
	"github.com/dominium/dominium/ids"
)

func setupDomain(t *testing.T) *Domain {
	d := NewDomain()
	require.NoError(t, d.Types.Register(1, RiskType{
		TypeID: 1, RiskClass: RiskClassFire,
		DefaultImpactMeanQ48: fixedpoint.Q48FromInt(100),
	}))
	require.NoError(t, d.Fields.Register(1, Field{
		FieldID: 1, RiskTypeID: 1, RegionID: 1,
		ExposureRateQ16: fixedpoint.One, RadiusQ16: fixedpoint.FromInt(10),
	}))
	require.NoError(t, d.Exposures.Register(1, &Exposure{
		ExposureID: 1, RiskTypeID: 1, RegionID: 1, SubjectRef: 42,
		ExposureRateQ16: fixedpoint.One, SensitivityQ16: fixedpoint.One,
		ExposureLimitQ48: fixedpoint.Q48FromInt(1),
		Location:         Point{X: fixedpoint.FromInt(5)},
	}))
	require.NoError(t, d.Profiles.Register(1, &Profile{
		ProfileID: 1, SubjectRef: 42, RegionID: 1,
	}))
	return d
}

func TestResolveBudgetGateRefusesWithInsufficientBudget(t *testing.T) {
	d := setupDomain(t)
	budget := &Budget{RemainingQ48: 0}
	res := Resolve(d, 1, 0, fixedpoint.One, budget)
	require.False(t, res.OK)
	require.Equal(t, RefuseBudget, res.Refusal)
	require.NotZero(t, res.Flags&FlagPartial)
}

func TestResolveAccumulatesExposureWithinRadius(t *testing.T) {
	d := setupDomain(t)
	budget := &Budget{RemainingQ48: fixedpoint.Q48FromInt(1000)}
	res := Resolve(d, 1, 0, fixedpoint.One, budget)
	require.True(t, res.OK)
	require.Equal(t, 1, res.FieldCount)
	require.Equal(t, 1, res.ExposureCount)
	require.Equal(t, 1, res.ProfileCount)

	exp, _ := d.Exposures.Find(1)
	require.True(t, exp.ExposureAccumulatedQ48 > 0)
}

func TestResolveSetsOverLimitWhenAccumulatedExceedsLimit(t *testing.T) {
	d := setupDomain(t)
	budget := &Budget{RemainingQ48: fixedpoint.Q48FromInt(1000)}
	for i := 0; i < 5; i++ {
		Resolve(d, 1, 0, fixedpoint.FromInt(100), budget)
	}
	exp, _ := d.Exposures.Find(1)
	require.True(t, exp.OverLimit)
}

func TestResolveReturnsCapsuleSnapshotForCollapsedRegion(t *testing.T) {
	d := setupDomain(t)
	d.CollapseRegion(1)
	budget := &Budget{RemainingQ48: fixedpoint.Q48FromInt(1000)}
	res := Resolve(d, 1, 0, fixedpoint.One, budget)
	require.True(t, res.OK)
	require.NotZero(t, res.Flags&FlagPartial)
	require.Equal(t, 1, res.FieldCount)
}

func TestResolveRefusesWhenDomainInactive(t *testing.T) {
	d := setupDomain(t)
	d.ExistenceState = ExistenceRetired
	budget := &Budget{RemainingQ48: fixedpoint.Q48FromInt(1000)}
	res := Resolve(d, 1, 0, fixedpoint.One, budget)
	require.False(t, res.OK)
	require.Equal(t, RefuseDomainInactive, res.Refusal)
}

func TestResolveClaimAdjudicationApprovesWithinCoverage(t *testing.T) {
	d := setupDomain(t)
	require.NoError(t, d.Policies.Register(1, Policy{
		PolicyID: 1, RiskTypeID: 1, RegionID: 1, Active: true,
		StartTick: 0, EndTick: 100,
		CoverageRatioQ16: fixedpoint.One, PayoutLimitQ48: fixedpoint.Q48FromInt(1000),
		AuditScoreQ16: fixedpoint.One,
	}))
	require.NoError(t, d.Events.Register(1, Event{
		EventID: 1, RiskTypeID: 1, RegionID: 1, LossAmountQ48: fixedpoint.Q48FromInt(50),
	}))
	require.NoError(t, d.Claims.Register(1, &Claim{
		ClaimID: 1, PolicyID: 1, EventID: 1, ClaimAmountQ48: fixedpoint.Q48FromInt(50),
	}))

	budget := &Budget{RemainingQ48: fixedpoint.Q48FromInt(1000)}
	res := Resolve(d, 1, 10, fixedpoint.One, budget)
	require.Equal(t, 1, res.ClaimApprovedCount)
	claim, _ := d.Claims.Find(1)
	require.Equal(t, ClaimApproved, claim.Status)
	require.Equal(t, fixedpoint.Q48FromInt(50), claim.ApprovedAmountQ48)
}

func TestResolveClaimDeniedWhenPolicyOutsideWindow(t *testing.T) {
	d := setupDomain(t)
	require.NoError(t, d.Policies.Register(1, Policy{
		PolicyID: 1, RiskTypeID: 1, RegionID: 1, Active: true,
		StartTick: 0, EndTick: 5,
		CoverageRatioQ16: fixedpoint.One, PayoutLimitQ48: fixedpoint.Q48FromInt(1000),
	}))
	require.NoError(t, d.Events.Register(1, Event{EventID: 1, RiskTypeID: 1, RegionID: 1, LossAmountQ48: fixedpoint.Q48FromInt(50)}))
	require.NoError(t, d.Claims.Register(1, &Claim{ClaimID: 1, PolicyID: 1, EventID: 1, ClaimAmountQ48: fixedpoint.Q48FromInt(50)}))

	budget := &Budget{RemainingQ48: fixedpoint.Q48FromInt(1000)}
	res := Resolve(d, 1, 10, fixedpoint.One, budget)
	require.Equal(t, 1, res.ClaimDeniedCount)
	claim, _ := d.Claims.Find(1)
	require.Equal(t, ClaimDenied, claim.Status)
}

func TestCollapseThenExpandRestoresLiveQueries(t *testing.T) {
	d := setupDomain(t)
	d.CollapseRegion(1)
	_, refusal := d.FieldQuery(1, fullBudget())
	require.Equal(t, RefuseDomainInactive, refusal)

	d.ExpandRegion(1)
	_, refusal = d.FieldQuery(1, fullBudget())
	require.Equal(t, RefuseNone, refusal)
}

func TestCollapseRegionIsIdempotent(t *testing.T) {
	d := setupDomain(t)
	c1 := d.CollapseRegion(1)
	c2 := d.CollapseRegion(1)
	require.Same(t, c1, c2)
}

func TestCapsulesPreserveCollapseOrder(t *testing.T) {
	d := NewDomain()
	d.Fields.Register(1, Field{RegionID: 3})
	d.Fields.Register(2, Field{RegionID: 1})
	d.CollapseRegion(3)
	d.CollapseRegion(1)
	caps := d.Capsules()
	require.Len(t, caps, 2)
	require.Equal(t, ids.RefID(3), caps[0].RegionID)
	require.Equal(t, ids.RefID(1), caps[1].RegionID)
}
