package agent

import (
	"sort"

	"github.com/dominium/dominium/ids"
	"github.com/dominium/dominium/registry"
)

// Command is the record emitted by emit_commands_slice and consumed by
// the command executor (spec.md §4.4, §4.5).
type Command struct {
	CommandID             ids.RefID
	AgentID               ids.RefID
	GoalID                ids.RefID
	PlanID                ids.RefID
	StepIndex             int
	ProcessKind           uint32
	TargetID              uint64
	RequiredAuthorityMask uint32
}

// EvaluationResult is evaluate_goals_slice's per-agent output.
type EvaluationResult struct {
	AgentID       ids.RefID
	Considered    bool // false if the agent was not due / had no budget this tick
	EmittedGoalID ids.RefID
	Eligible      bool
	RefusalCode   RefusalCode
	RefusalGoalID ids.RefID
}

// eligible reports whether g qualifies to run for a, per spec.md §4.4.
func eligible(
	a *Agent,
	g *Goal,
	grants *registry.Registry[ids.RefID, AuthorityGrant],
	delegations *registry.Registry[ids.RefID, Delegation],
	now ids.Tick,
) (bool, RefusalCode) {
	if !a.CapabilityMask.Contains(g.Preconditions.RequiredCapabilities) {
		return false, RefusalCapability
	}
	eff := EffectiveAuthority(a.AgentID, a.AuthorityMask, grants, delegations, now)
	if !eff.Contains(g.Preconditions.RequiredAuthority) {
		return false, RefusalAuthority
	}
	if !a.Belief.KnowledgeMask.Contains(g.Preconditions.RequiredKnowledge) && g.Flags&FlagAllowUnknown == 0 {
		return false, RefusalKnowledge
	}
	if now < g.DeferUntilAct {
		return false, RefusalTiming
	}
	if g.AbandonAfterAct != 0 && now >= g.AbandonAfterAct {
		return false, RefusalTiming
	}
	return true, RefusalNone
}

// EvaluateGoalsSlice is stage 1 of the agent pipeline. agents and the
// goal registry are iterated in insertion order; within an agent, goals
// are considered in the order they appear in the registry.
func EvaluateGoalsSlice(
	agents []*Agent,
	goals *registry.Registry[ids.RefID, *Goal],
	grants *registry.Registry[ids.RefID, AuthorityGrant],
	delegations *registry.Registry[ids.RefID, Delegation],
	now ids.Tick,
) []EvaluationResult {
	results := make([]EvaluationResult, 0, len(agents))
	for _, a := range agents {
		res := EvaluationResult{AgentID: a.AgentID}
		if a.Schedule.NextDueTick > now || a.Schedule.ComputeBudget == 0 {
			results = append(results, res)
			continue
		}
		res.Considered = true

		type scored struct {
			goal     *Goal
			eligible bool
			code     RefusalCode
		}
		var candidates []scored
		goals.All(func(_ ids.RefID, g *Goal) bool {
			if g.AgentID != a.AgentID {
				return true
			}
			if g.Status != GoalPending && g.Status != GoalActive {
				return true
			}
			ok, code := eligible(a, g, grants, delegations, now)
			candidates = append(candidates, scored{goal: g, eligible: ok, code: code})
			return true
		})

		sort.SliceStable(candidates, func(i, j int) bool {
			si, sj := candidates[i].goal, candidates[j].goal
			pi := si.BasePriority + si.Urgency
			pj := sj.BasePriority + sj.Urgency
			if pi != pj {
				return pi > pj
			}
			return si.GoalID < sj.GoalID
		})

		for _, c := range candidates {
			if c.eligible {
				res.EmittedGoalID = c.goal.GoalID
				res.Eligible = true
				break
			}
		}
		if !res.Eligible {
			for _, c := range candidates {
				if !c.eligible {
					res.RefusalCode = c.code
					res.RefusalGoalID = c.goal.GoalID
					break
				}
			}
		}
		results = append(results, res)
	}
	return results
}

// requiresTarget reports whether a step's process kind needs a resolved
// target before it can be planned.
func requiresTarget(kind uint32) bool {
	return kind != uint32(ProcessObserve)
}

// resolveTarget picks the belief-known reference appropriate to a step's
// process kind.
func resolveTarget(b Belief, kind uint32) ids.RefID {
	switch kind {
	case uint32(ProcessMove):
		return b.KnownDestinationRef
	case uint32(ProcessMaintain):
		return b.KnownResourceRef
	case uint32(ProcessTransfer):
		return b.KnownDestinationRef
	default:
		return ids.NoRef
	}
}

// PlanActionsSlice is stage 2: for each emitted goal, synthesize an
// ordered step list from the goal type table. Planning refuses a step
// with RefusalNotFeasible when it requires a target that belief cannot
// resolve (spec.md §4.4, GOAL_NOT_FEASIBLE).
func PlanActionsSlice(results []EvaluationResult, agentsByID map[ids.RefID]*Agent, goals *registry.Registry[ids.RefID, *Goal]) {
	for i := range results {
		r := &results[i]
		if !r.Eligible {
			continue
		}
		g, ok := goals.Find(r.EmittedGoalID)
		if !ok {
			r.Eligible = false
			continue
		}
		a := agentsByID[r.AgentID]
		kinds := stepTable[g.Type]
		steps := make([]PlanStep, len(kinds))
		for si, kind := range kinds {
			step := PlanStep{ProcessKind: kind, InstitutionRef: g.InstitutionRef}
			if requiresTarget(uint32(kind)) {
				target := resolveTarget(a.Belief, uint32(kind))
				if target == ids.NoRef {
					step.Refused = true
					step.RefusalCode = RefusalNotFeasible
				}
				step.TargetID = uint64(target)
			}
			steps[si] = step
		}
		g.PlanSteps = steps
		g.PlanStepCursor = 0
	}
}

// ValidateContext bundles the registries needed to revalidate a plan step.
type ValidateContext struct {
	Grants       *registry.Registry[ids.RefID, AuthorityGrant]
	Delegations  *registry.Registry[ids.RefID, Delegation]
	Constraints  *registry.Registry[ids.RefID, Constraint]
	Institutions *registry.Registry[ids.RefID, Institution]
	Now          ids.Tick
}

// ValidatePlanSlice is stage 3: each step is re-checked against
// capabilities, effective authority (including delegations), constraints
// (any deny match refuses), and institution membership.
func ValidatePlanSlice(results []EvaluationResult, agentsByID map[ids.RefID]*Agent, goals *registry.Registry[ids.RefID, *Goal], vc ValidateContext) {
	for i := range results {
		r := &results[i]
		if !r.Eligible {
			continue
		}
		g, ok := goals.Find(r.EmittedGoalID)
		if !ok {
			continue
		}
		a := agentsByID[r.AgentID]
		eff := EffectiveAuthority(a.AgentID, a.AuthorityMask, vc.Grants, vc.Delegations, vc.Now)
		procMask := EffectiveProcessMask(a.AgentID, vc.Delegations, vc.Now)

		for si := range g.PlanSteps {
			step := &g.PlanSteps[si]
			if step.Refused {
				continue
			}
			if !a.CapabilityMask.Contains(g.Preconditions.RequiredCapabilities) {
				step.Refused = true
				step.RefusalCode = RefusalCapability
				continue
			}
			if !eff.Contains(g.Preconditions.RequiredAuthority) && !procMask.Overlaps(step.ProcessKind) {
				step.Refused = true
				step.RefusalCode = RefusalAuthority
				continue
			}
			deny := false
			vc.Constraints.All(func(_ ids.RefID, c Constraint) bool {
				if c.Matches(a.AgentID, step.ProcessKind) && c.Mode == ConstraintDeny {
					deny = true
					return false
				}
				return true
			})
			if deny {
				step.Refused = true
				step.RefusalCode = RefusalConstraint
				continue
			}
			if step.InstitutionRef != ids.NoRef {
				inst, ok := vc.Institutions.Find(step.InstitutionRef)
				if !ok || inst.Status != InstitutionActive || !inst.HasMember(a.AgentID) {
					step.Refused = true
					step.RefusalCode = RefusalInstitution
					continue
				}
			}
		}
	}
}

// EmitCommandsSlice is stage 4: the first unrefused step becomes a
// command record.
func EmitCommandsSlice(results []EvaluationResult, agentsByID map[ids.RefID]*Agent, goals *registry.Registry[ids.RefID, *Goal], counter *IDCounter) []Command {
	var commands []Command
	for _, r := range results {
		if !r.Eligible {
			continue
		}
		g, ok := goals.Find(r.EmittedGoalID)
		if !ok {
			continue
		}
		for si := range g.PlanSteps {
			step := g.PlanSteps[si]
			if step.Refused {
				continue
			}
			planID := counter.Next()
			cmd := Command{
				CommandID:             counter.Next(),
				AgentID:               r.AgentID,
				GoalID:                g.GoalID,
				PlanID:                planID,
				StepIndex:             si,
				ProcessKind:           uint32(step.ProcessKind),
				TargetID:              step.TargetID,
				RequiredAuthorityMask: uint32(g.Preconditions.RequiredAuthority),
			}
			if a := agentsByID[r.AgentID]; a != nil {
				a.Schedule.ActiveGoalID = g.GoalID
				a.Schedule.ActivePlanID = planID
				a.Schedule.ResumeStep = uint32(si)
			}
			commands = append(commands, cmd)
			break
		}
	}
	return commands
}
