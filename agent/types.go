// Package agent implements the agent data model and the per-tick agent
// pipeline (spec.md §3, §4.4, component C4): evaluate_goals_slice,
// plan_actions_slice, validate_plan_slice, emit_commands_slice. Each
// stage is side-effect-free on its inputs except for the output buffer
// it writes, and agents/goals/steps always iterate in insertion order
// (spec.md §4.4, §5).
package agent

import (
	"github.com/dominium/dominium/bitmask"
	"github.com/dominium/dominium/fixedpoint"
	"github.com/dominium/dominium/ids"
)

// GoalStatus is the lifecycle state of a Goal.
type GoalStatus uint8

const (
	GoalPending GoalStatus = iota
	GoalActive
	GoalSatisfied
	GoalAbandoned
	GoalFailed
)

// GoalType selects the step-expansion table used by plan_actions_slice.
type GoalType uint8

const (
	GoalSurvey GoalType = iota
	GoalMaintain
	GoalTransfer
)

// GoalFlags modifies eligibility and planning behavior.
type GoalFlags uint32

const (
	// FlagAllowUnknown lets a goal become eligible even when the agent's
	// belief does not yet cover required_knowledge (spec.md §4.4).
	FlagAllowUnknown GoalFlags = 1 << iota
)

// ScheduleStatus mirrors the agent's per-tick compute scheduling state.
type ScheduleStatus uint8

const (
	ScheduleIdle ScheduleStatus = iota
	ScheduleActive
	ScheduleBlocked
)

// Belief holds everything an agent subjectively knows.
type Belief struct {
	KnowledgeMask         bitmask.Mask
	HungerLevel           fixedpoint.Q16
	ThreatLevel           fixedpoint.Q16
	RiskToleranceQ16      fixedpoint.Q16
	EpistemicConfidenceQ16 fixedpoint.Q16
	KnownResourceRef      ids.RefID
	KnownDestinationRef   ids.RefID
	KnownThreatRef        ids.RefID
}

// Schedule holds an agent's per-tick compute scheduling state.
type Schedule struct {
	NextDueTick    ids.Tick
	ComputeBudget  uint32
	Status         ScheduleStatus
	ActiveGoalID   ids.RefID
	ActivePlanID   ids.RefID
	ResumeStep     uint32
}

// Agent is the simulated actor: capability/authority masks, belief, and
// per-tick schedule.
type Agent struct {
	AgentID         ids.RefID
	CapabilityMask  bitmask.Mask
	AuthorityMask   bitmask.Mask
	Belief          Belief
	Schedule        Schedule
	// Possessed marks the distinguished reference used for operator
	// intent echo (spec.md §3); at most one agent per world is possessed.
	Possessed bool
}

// Preconditions gates a Goal's eligibility.
type Preconditions struct {
	RequiredCapabilities bitmask.Mask
	RequiredAuthority    bitmask.Mask
	RequiredKnowledge    bitmask.Mask
}

// Goal is a single agent objective tracked across ticks.
type Goal struct {
	GoalID              ids.RefID
	AgentID             ids.RefID
	Type                GoalType
	Status              GoalStatus
	BasePriority        int32
	Urgency             int32
	AcceptableRiskQ16   fixedpoint.Q16
	Horizon             uint32
	EpistemicConfidenceQ16 fixedpoint.Q16
	Preconditions       Preconditions
	Conditions          []Condition
	Flags               GoalFlags
	FailureCount        uint32
	OscillationCount    uint32
	AbandonAfterFailures uint32
	AbandonAfterAct     ids.Tick
	DeferUntilAct       ids.Tick
	ConflictGroup       uint32
	SatisfactionFlags   uint32
	Expiry              ids.Tick
	LastUpdateAct       ids.Tick

	// InstitutionRef, when non-zero, is the institution the acting agent
	// must belong to for every synthesized step to validate (spec.md
	// §4.4's "institution membership" validate_plan_slice check).
	InstitutionRef ids.RefID

	// PlanStepCursor tracks progress through the emitted plan's step
	// list; advanced by the command executor on each successful step.
	PlanStepCursor int
	PlanSteps      []PlanStep
}

// Condition is a single named sub-requirement contributing to goal
// satisfaction bookkeeping (spec.md §3: "conditions[≤N]").
type Condition struct {
	Name     string
	Required bool
	Met      bool
}

// MaxConditions bounds Goal.Conditions per spec.md §3 ("conditions[≤N]").
const MaxConditions = 8

// DelegationKind distinguishes the nature of a delegated grant.
type DelegationKind uint8

const (
	DelegationAuthority DelegationKind = iota
	DelegationProcess
)

// Delegation grants effective authority/process capability from a
// delegator to a delegatee (spec.md §3).
type Delegation struct {
	DelegationID      ids.RefID
	DelegatorRef      ids.RefID
	DelegateeRef      ids.RefID
	Kind              DelegationKind
	AllowedProcessMask bitmask.Mask
	AuthorityMask     bitmask.Mask
	Expiry            ids.Tick
	ProvenanceRef     ids.RefID
	Revoked           bool
}

// Active reports whether d currently contributes to the delegatee's
// effective authority (spec.md §3: "!revoked && (expiry == 0 || expiry > now)").
func (d Delegation) Active(now ids.Tick) bool {
	return !d.Revoked && (d.Expiry == 0 || d.Expiry > now)
}

// AuthorityGrant is a standing authority assignment, independent of
// delegation chains.
type AuthorityGrant struct {
	GrantID       ids.RefID
	SubjectRef    ids.RefID
	AuthorityMask bitmask.Mask
	Expiry        ids.Tick
	ProvenanceRef ids.RefID
	Revoked       bool
}

// Active reports whether g currently contributes to effective authority.
func (g AuthorityGrant) Active(now ids.Tick) bool {
	return !g.Revoked && (g.Expiry == 0 || g.Expiry > now)
}

// ConstraintMode selects whether a Constraint allows or denies a match.
type ConstraintMode uint8

const (
	ConstraintAllow ConstraintMode = iota
	ConstraintDeny
)

// Constraint gates process execution by process kind.
type Constraint struct {
	ConstraintID    ids.RefID
	Mode            ConstraintMode
	ProcessKindMask bitmask.Mask
	SubjectRef      ids.RefID
	Active          bool
}

// Matches reports whether the constraint applies to processKind for subject.
func (c Constraint) Matches(subject ids.RefID, processKind bitmask.Mask) bool {
	if !c.Active {
		return false
	}
	if c.SubjectRef != ids.NoRef && c.SubjectRef != subject {
		return false
	}
	return c.ProcessKindMask.Overlaps(processKind)
}

// InstitutionStatus is the institution state machine (spec.md §3).
type InstitutionStatus uint8

const (
	InstitutionActive InstitutionStatus = iota
	InstitutionCollapsed
)

// Institution carries legitimacy and membership state.
type Institution struct {
	InstitutionID ids.RefID
	LegitimacyQ16 fixedpoint.Q16
	Status        InstitutionStatus
	MemberRefs    []ids.RefID
}

// HasMember reports whether ref belongs to the institution.
func (i Institution) HasMember(ref ids.RefID) bool {
	for _, m := range i.MemberRefs {
		if m == ref {
			return true
		}
	}
	return false
}
