package agent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dominium/dominium/bitmask"
	"github.com/dominium/dominium/ids"
	"github.com/dominium/dominium/registry"
)

func newGoalRegistry(t *testing.T, goals ...*Goal) *registry.Registry[ids.RefID, *Goal] {
	r := registry.New[ids.RefID, *Goal](0)
	for _, g := range goals {
		require.NoError(t, r.Register(g.GoalID, g))
	}
	return r
}

func TestEvaluateGoalsSlicePicksHighestPriorityEligibleGoal(t *testing.T) {
	a := &Agent{AgentID: 1, CapabilityMask: 0b111, Schedule: Schedule{ComputeBudget: 1}}
	low := &Goal{GoalID: 1, AgentID: 1, Type: GoalSurvey, Status: GoalPending, BasePriority: 1}
	high := &Goal{GoalID: 2, AgentID: 1, Type: GoalSurvey, Status: GoalPending, BasePriority: 5}
	goals := newGoalRegistry(t, low, high)

	results := EvaluateGoalsSlice([]*Agent{a}, goals, nil, nil, 0)
	require.Len(t, results, 1)
	require.True(t, results[0].Considered)
	require.True(t, results[0].Eligible)
	require.Equal(t, ids.RefID(2), results[0].EmittedGoalID)
}

func TestEvaluateGoalsSliceTiesBreakOnGoalID(t *testing.T) {
	a := &Agent{AgentID: 1, Schedule: Schedule{ComputeBudget: 1}}
	g1 := &Goal{GoalID: 5, AgentID: 1, Type: GoalSurvey, Status: GoalPending, BasePriority: 3}
	g2 := &Goal{GoalID: 2, AgentID: 1, Type: GoalSurvey, Status: GoalPending, BasePriority: 3}
	goals := newGoalRegistry(t, g1, g2)

	results := EvaluateGoalsSlice([]*Agent{a}, goals, nil, nil, 0)
	require.Equal(t, ids.RefID(2), results[0].EmittedGoalID)
}

func TestEvaluateGoalsSliceSkipsAgentNotDue(t *testing.T) {
	a := &Agent{AgentID: 1, Schedule: Schedule{NextDueTick: 10, ComputeBudget: 1}}
	g := &Goal{GoalID: 1, AgentID: 1, Type: GoalSurvey, Status: GoalPending}
	goals := newGoalRegistry(t, g)

	results := EvaluateGoalsSlice([]*Agent{a}, goals, nil, nil, 5)
	require.False(t, results[0].Considered)
	require.False(t, results[0].Eligible)
}

func TestEvaluateGoalsSliceRecordsRefusalWhenNoEligibleGoal(t *testing.T) {
	a := &Agent{AgentID: 1, CapabilityMask: 0, Schedule: Schedule{ComputeBudget: 1}}
	g := &Goal{
		GoalID: 1, AgentID: 1, Type: GoalSurvey, Status: GoalPending,
		Preconditions: Preconditions{RequiredCapabilities: 0b1},
	}
	goals := newGoalRegistry(t, g)

	results := EvaluateGoalsSlice([]*Agent{a}, goals, nil, nil, 0)
	require.True(t, results[0].Considered)
	require.False(t, results[0].Eligible)
	require.Equal(t, RefusalCapability, results[0].RefusalCode)
	require.Equal(t, ids.RefID(1), results[0].RefusalGoalID)
}

func TestEvaluateGoalsSliceHonorsAllowUnknownFlag(t *testing.T) {
	a := &Agent{AgentID: 1, Schedule: Schedule{ComputeBudget: 1}}
	g := &Goal{
		GoalID: 1, AgentID: 1, Type: GoalSurvey, Status: GoalPending,
		Preconditions: Preconditions{RequiredKnowledge: 0b1},
		Flags:         FlagAllowUnknown,
	}
	goals := newGoalRegistry(t, g)

	results := EvaluateGoalsSlice([]*Agent{a}, goals, nil, nil, 0)
	require.True(t, results[0].Eligible)
}

func TestPlanActionsSliceExpandsStepTableAndResolvesTargets(t *testing.T) {
	a := &Agent{AgentID: 1, Belief: Belief{KnownResourceRef: 42, KnownDestinationRef: 7}}
	g := &Goal{GoalID: 1, AgentID: 1, Type: GoalMaintain, Status: GoalPending}
	goals := newGoalRegistry(t, g)
	byID := map[ids.RefID]*Agent{1: a}

	results := []EvaluationResult{{AgentID: 1, Eligible: true, EmittedGoalID: 1}}
	PlanActionsSlice(results, byID, goals)

	stored, ok := goals.Find(1)
	require.True(t, ok)
	require.Len(t, stored.PlanSteps, 2)
	require.Equal(t, ProcessMove, stored.PlanSteps[0].ProcessKind)
	require.Equal(t, uint64(7), stored.PlanSteps[0].TargetID)
	require.Equal(t, ProcessMaintain, stored.PlanSteps[1].ProcessKind)
	require.False(t, stored.PlanSteps[0].Refused)
}

func TestPlanActionsSliceRefusesUnresolvableTarget(t *testing.T) {
	a := &Agent{AgentID: 1} // no known destination
	g := &Goal{GoalID: 1, AgentID: 1, Type: GoalTransfer, Status: GoalPending}
	goals := newGoalRegistry(t, g)
	byID := map[ids.RefID]*Agent{1: a}

	results := []EvaluationResult{{AgentID: 1, Eligible: true, EmittedGoalID: 1}}
	PlanActionsSlice(results, byID, goals)

	stored, _ := goals.Find(1)
	require.True(t, stored.PlanSteps[0].Refused)
	require.Equal(t, RefusalNotFeasible, stored.PlanSteps[0].RefusalCode)
}

func TestValidatePlanSliceRefusesOnDenyConstraint(t *testing.T) {
	a := &Agent{AgentID: 1, CapabilityMask: 0b1, AuthorityMask: 0b1}
	g := &Goal{
		GoalID: 1, AgentID: 1, Type: GoalSurvey, Status: GoalPending,
		Preconditions: Preconditions{RequiredCapabilities: 0b1, RequiredAuthority: 0b1},
		PlanSteps:     []PlanStep{{ProcessKind: ProcessObserve}},
	}
	goals := newGoalRegistry(t, g)
	byID := map[ids.RefID]*Agent{1: a}

	constraints := registry.New[ids.RefID, Constraint](0)
	require.NoError(t, constraints.Register(1, Constraint{
		ConstraintID: 1, Mode: ConstraintDeny, ProcessKindMask: ProcessObserve,
		SubjectRef: 1, Active: true,
	}))

	vc := ValidateContext{Constraints: constraints, Institutions: registry.New[ids.RefID, Institution](0)}
	results := []EvaluationResult{{AgentID: 1, Eligible: true, EmittedGoalID: 1}}
	ValidatePlanSlice(results, byID, goals, vc)

	stored, _ := goals.Find(1)
	require.True(t, stored.PlanSteps[0].Refused)
	require.Equal(t, RefusalConstraint, stored.PlanSteps[0].RefusalCode)
}

func TestValidatePlanSliceRefusesOnMissingInstitutionMembership(t *testing.T) {
	a := &Agent{AgentID: 1, CapabilityMask: 0b1, AuthorityMask: 0b1}
	g := &Goal{
		GoalID: 1, AgentID: 1, Type: GoalSurvey, Status: GoalPending,
		Preconditions:  Preconditions{RequiredCapabilities: 0b1, RequiredAuthority: 0b1},
		InstitutionRef: 7,
		PlanSteps:      []PlanStep{{ProcessKind: ProcessObserve, InstitutionRef: 7}},
	}
	goals := newGoalRegistry(t, g)
	byID := map[ids.RefID]*Agent{1: a}

	institutions := registry.New[ids.RefID, Institution](0)
	require.NoError(t, institutions.Register(7, Institution{
		InstitutionID: 7, Status: InstitutionActive, MemberRefs: []ids.RefID{99},
	}))

	vc := ValidateContext{Constraints: registry.New[ids.RefID, Constraint](0), Institutions: institutions}
	results := []EvaluationResult{{AgentID: 1, Eligible: true, EmittedGoalID: 1}}
	ValidatePlanSlice(results, byID, goals, vc)

	stored, _ := goals.Find(1)
	require.True(t, stored.PlanSteps[0].Refused)
	require.Equal(t, RefusalInstitution, stored.PlanSteps[0].RefusalCode)
}

func TestValidatePlanSliceAllowsActiveInstitutionMember(t *testing.T) {
	a := &Agent{AgentID: 1, CapabilityMask: 0b1, AuthorityMask: 0b1}
	g := &Goal{
		GoalID: 1, AgentID: 1, Type: GoalSurvey, Status: GoalPending,
		Preconditions:  Preconditions{RequiredCapabilities: 0b1, RequiredAuthority: 0b1},
		InstitutionRef: 7,
		PlanSteps:      []PlanStep{{ProcessKind: ProcessObserve, InstitutionRef: 7}},
	}
	goals := newGoalRegistry(t, g)
	byID := map[ids.RefID]*Agent{1: a}

	institutions := registry.New[ids.RefID, Institution](0)
	require.NoError(t, institutions.Register(7, Institution{
		InstitutionID: 7, Status: InstitutionActive, MemberRefs: []ids.RefID{1},
	}))

	vc := ValidateContext{Constraints: registry.New[ids.RefID, Constraint](0), Institutions: institutions}
	results := []EvaluationResult{{AgentID: 1, Eligible: true, EmittedGoalID: 1}}
	ValidatePlanSlice(results, byID, goals, vc)

	stored, _ := goals.Find(1)
	require.False(t, stored.PlanSteps[0].Refused)
}

func TestValidatePlanSliceDelegatedProcessMaskSubstitutesForAuthority(t *testing.T) {
	a := &Agent{AgentID: 1, CapabilityMask: 0b1, AuthorityMask: 0}
	g := &Goal{
		GoalID: 1, AgentID: 1, Type: GoalSurvey, Status: GoalPending,
		Preconditions: Preconditions{RequiredCapabilities: 0b1, RequiredAuthority: 0b1},
		PlanSteps:     []PlanStep{{ProcessKind: ProcessObserve}},
	}
	goals := newGoalRegistry(t, g)
	byID := map[ids.RefID]*Agent{1: a}

	delegations := registry.New[ids.RefID, Delegation](0)
	require.NoError(t, delegations.Register(1, Delegation{
		DelegationID: 1, DelegateeRef: 1, Kind: DelegationProcess,
		AllowedProcessMask: ProcessObserve,
	}))

	vc := ValidateContext{
		Delegations:  delegations,
		Constraints:  registry.New[ids.RefID, Constraint](0),
		Institutions: registry.New[ids.RefID, Institution](0),
	}
	results := []EvaluationResult{{AgentID: 1, Eligible: true, EmittedGoalID: 1}}
	ValidatePlanSlice(results, byID, goals, vc)

	stored, _ := goals.Find(1)
	require.False(t, stored.PlanSteps[0].Refused)
}

func TestEmitCommandsSliceEmitsFirstUnrefusedStepAndUpdatesSchedule(t *testing.T) {
	a := &Agent{AgentID: 1}
	g := &Goal{
		GoalID: 9, AgentID: 1,
		PlanSteps: []PlanStep{
			{ProcessKind: ProcessMove, Refused: true, RefusalCode: RefusalNotFeasible},
			{ProcessKind: ProcessMaintain, TargetID: 42},
		},
	}
	goals := newGoalRegistry(t, g)
	byID := map[ids.RefID]*Agent{1: a}
	counter := NewIDCounter(1)

	results := []EvaluationResult{{AgentID: 1, Eligible: true, EmittedGoalID: 9}}
	cmds := EmitCommandsSlice(results, byID, goals, counter)

	require.Len(t, cmds, 1)
	require.Equal(t, ids.RefID(1), cmds[0].AgentID)
	require.Equal(t, 1, cmds[0].StepIndex)
	require.Equal(t, ProcessMaintain, bitmask.Mask(cmds[0].ProcessKind))
	require.Equal(t, uint64(42), cmds[0].TargetID)
	require.Equal(t, g.GoalID, a.Schedule.ActiveGoalID)
	require.Equal(t, cmds[0].PlanID, a.Schedule.ActivePlanID)
	require.Equal(t, uint32(1), a.Schedule.ResumeStep)
}

func TestEmitCommandsSliceSkipsIneligibleResults(t *testing.T) {
	results := []EvaluationResult{{AgentID: 1, Eligible: false}}
	cmds := EmitCommandsSlice(results, nil, newGoalRegistry(t), NewIDCounter(1))
	require.Empty(t, cmds)
}

func TestFourStagePipelineEndToEndSurveyGrantsCommand(t *testing.T) {
	a := &Agent{AgentID: 1, CapabilityMask: 0b1, AuthorityMask: 0b1, Schedule: Schedule{ComputeBudget: 1}}
	g := &Goal{
		GoalID: 1, AgentID: 1, Type: GoalSurvey, Status: GoalPending,
		Preconditions: Preconditions{RequiredCapabilities: 0b1, RequiredAuthority: 0b1},
	}
	goals := newGoalRegistry(t, g)
	byID := map[ids.RefID]*Agent{1: a}

	results := EvaluateGoalsSlice([]*Agent{a}, goals, nil, nil, 0)
	PlanActionsSlice(results, byID, goals)
	vc := ValidateContext{
		Constraints:  registry.New[ids.RefID, Constraint](0),
		Institutions: registry.New[ids.RefID, Institution](0),
	}
	ValidatePlanSlice(results, byID, goals, vc)
	cmds := EmitCommandsSlice(results, byID, goals, NewIDCounter(1))

	require.Len(t, cmds, 1)
	require.Equal(t, ProcessObserve, bitmask.Mask(cmds[0].ProcessKind))
}
