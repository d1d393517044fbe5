// Package risk implements the risk/liability/insurance domain (spec.md
// §4.8, component C8, supplemented from
// _examples/original_source/engine/include/domino/world/risk_fields.h):
// risk types, fields, exposures, profiles, liability events and
// attributions, insurance policies and claims, the budgeted resolve
// fold, and region collapse into macro-capsules.
package risk

import (
	"github.com/dominium/dominium/fixedpoint"
	"github.com/dominium/dominium/ids"
	"github.com/dominium/dominium/registry"
)

// RiskClass enumerates the hazard categories a RiskType belongs to
// (risk_fields.h's dom_risk_class).
type RiskClass uint8

const (
	RiskClassUnset RiskClass = iota
	RiskClassFire
	RiskClassFlood
	RiskClassToxic
	RiskClassThermal
	RiskClassFinancial
	RiskClassInfo
)

// ClassCount bounds RiskClass for the macro-capsule per-class histogram
// (risk_fields.h: DOM_RISK_CLASS_COUNT). RiskClassUnset is excluded, so
// the six real classes occupy RiskTypeCounts[risk_class-1].
const ClassCount = 6

// HistBins is the number of buckets in a macro-capsule's exposure
// histogram (risk_fields.h: DOM_RISK_HIST_BINS).
const HistBins = 4

// Point is a continuous-space coordinate, distinct from field.Cell's
// discrete grid index: risk fields and exposures carry a center/location
// and radius used for falloff distance, not a layer cell lookup.
type Point struct {
	X, Y, Z fixedpoint.Q16
}

// Distance returns the Euclidean distance between p and q in Q16.16,
// computed with the deterministic fixed-point square root (spec.md §4.1).
func (p Point) Distance(q Point) fixedpoint.Q16 {
	dx := p.X.Sub(q.X)
	dy := p.Y.Sub(q.Y)
	dz := p.Z.Sub(q.Z)
	sq := dx.Mul(dx).Add(dy.Mul(dy)).Add(dz.Mul(dz))
	return fixedpoint.SqrtQ16(sq)
}

// RiskType is a registered hazard category with default parameters
// (risk_fields.h: dom_risk_type).
type RiskType struct {
	TypeID               ids.RefID
	RiskClass            RiskClass
	DefaultExposureRateQ16 fixedpoint.Q16
	DefaultImpactMeanQ48 fixedpoint.Q48
	DefaultImpactSpreadQ16 fixedpoint.Q16
	DefaultUncertaintyQ16 fixedpoint.Q16
}

// Field is a localized hazard source (dom_risk_field).
type Field struct {
	FieldID       ids.RefID
	RiskTypeID    ids.RefID
	ExposureRateQ16 fixedpoint.Q16
	ImpactMeanQ48 fixedpoint.Q48
	ImpactSpreadQ16 fixedpoint.Q16
	UncertaintyQ16 fixedpoint.Q16
	HazardRef     ids.RefID
	ProvenanceRef ids.RefID
	RegionID      ids.RefID
	RadiusQ16     fixedpoint.Q16
	Center        Point
}

// Exposure is a subject's accumulated exposure to a risk type
// (dom_risk_exposure).
type Exposure struct {
	ExposureID    ids.RefID
	RiskTypeID    ids.RefID // 0 means "any type"
	ExposureRateQ16 fixedpoint.Q16
	ExposureLimitQ48 fixedpoint.Q48
	ExposureAccumulatedQ48 fixedpoint.Q48
	SensitivityQ16 fixedpoint.Q16
	UncertaintyQ16 fixedpoint.Q16
	SubjectRef    ids.RefID
	RegionID      ids.RefID
	Location      Point
	ProvenanceRef ids.RefID
	OverLimit     bool
}

// Profile aggregates a subject's accumulated exposures within a region
// (dom_risk_profile).
type Profile struct {
	ProfileID      ids.RefID
	SubjectRef     ids.RefID
	RegionID       ids.RefID
	ExposureTotalQ48 fixedpoint.Q48
	ImpactMeanQ48  fixedpoint.Q48
	ImpactSpreadQ16 fixedpoint.Q16
	UncertaintyQ16 fixedpoint.Q16
}

// Event is a realized loss (dom_liability_event).
type Event struct {
	EventID       ids.RefID
	RiskTypeID    ids.RefID
	HazardRef     ids.RefID
	ExposureRef   ids.RefID
	LossAmountQ48 fixedpoint.Q48
	EventTick     ids.Tick
	SubjectRef    ids.RefID
	RegionID      ids.RefID
	ProvenanceRef ids.RefID
}

// Attribution assigns responsibility share for an Event
// (dom_liability_attribution).
type Attribution struct {
	AttributionID  ids.RefID
	EventID        ids.RefID
	ResponsibleRef ids.RefID
	RoleTag        uint32
	ComplianceTag  uint32
	NegligenceScoreQ16 fixedpoint.Q16
	ShareRatioQ16  fixedpoint.Q16
	UncertaintyQ16 fixedpoint.Q16
	ProvenanceRef  ids.RefID
}

// Policy is an insurance contract (dom_insurance_policy).
type Policy struct {
	PolicyID      ids.RefID
	HolderRef     ids.RefID
	RiskTypeID    ids.RefID
	CoverageRatioQ16 fixedpoint.Q16
	PremiumQ48    fixedpoint.Q48
	PayoutLimitQ48 fixedpoint.Q48
	DeductibleQ48 fixedpoint.Q48
	AuditTag      uint32
	AuditScoreQ16 fixedpoint.Q16
	StartTick     ids.Tick
	EndTick       ids.Tick
	RegionID      ids.RefID
	Active        bool
}

// covers reports whether now falls within the policy's active window.
func (p Policy) covers(now ids.Tick) bool {
	return p.Active && now >= p.StartTick && now <= p.EndTick
}

// ClaimStatus is a claim's adjudication outcome.
type ClaimStatus uint8

const (
	ClaimPending ClaimStatus = iota
	ClaimApproved
	ClaimDenied
)

// Claim requests payout against a Policy for an Event
// (dom_insurance_claim).
type Claim struct {
	ClaimID        ids.RefID
	PolicyID       ids.RefID
	EventID        ids.RefID
	ClaimAmountQ48 fixedpoint.Q48
	ApprovedAmountQ48 fixedpoint.Q48
	Status         ClaimStatus
	FiledTick      ids.Tick
	ResolvedTick   ids.Tick
	AuditRef       ids.RefID
}

// ExistenceState and ArchivalState give the risk domain a first-class
// lifecycle independent of any individual entity's state, per
// SPEC_FULL.md's supplemented archival/existence state machine.
type ExistenceState uint8

const (
	ExistenceProvisional ExistenceState = iota
	ExistenceActive
	ExistenceRetired
)

type ArchivalState uint8

const (
	ArchivalLive ArchivalState = iota
	ArchivalArchived
)

// Domain owns every registry in the risk surface plus per-region
// macro-capsules produced by collapse.
type Domain struct {
	ExistenceState ExistenceState
	ArchivalState  ArchivalState

	Types        *registry.Registry[ids.RefID, RiskType]
	Fields       *registry.Registry[ids.RefID, Field]
	Exposures    *registry.Registry[ids.RefID, *Exposure]
	Profiles     *registry.Registry[ids.RefID, *Profile]
	Events       *registry.Registry[ids.RefID, Event]
	Attributions *registry.Registry[ids.RefID, Attribution]
	Policies     *registry.Registry[ids.RefID, Policy]
	Claims       *registry.Registry[ids.RefID, *Claim]

	capsules map[ids.RefID]*MacroCapsule
	// capsuleOrder preserves the order regions were collapsed in, for
	// deterministic capsule iteration (spec.md §5).
	capsuleOrder []ids.RefID
}

// NewDomain returns an empty, active risk domain.
func NewDomain() *Domain {
	return &Domain{
		ExistenceState: ExistenceActive,
		Types:          registry.New[ids.RefID, RiskType](0),
		Fields:         registry.New[ids.RefID, Field](0),
		Exposures:      registry.New[ids.RefID, *Exposure](0),
		Profiles:       registry.New[ids.RefID, *Profile](0),
		Events:         registry.New[ids.RefID, Event](0),
		Attributions:   registry.New[ids.RefID, Attribution](0),
		Policies:       registry.New[ids.RefID, Policy](0),
		Claims:         registry.New[ids.RefID, *Claim](0),
		capsules:       make(map[ids.RefID]*MacroCapsule),
	}
}

// IsCollapsed reports whether regionID has a standing macro-capsule.
func (d *Domain) IsCollapsed(regionID ids.RefID) bool {
	_, ok := d.capsules[regionID]
	return ok
}
