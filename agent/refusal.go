package agent

// RefusalCode enumerates the structured reasons a goal/plan/step can be
// refused in the agent pipeline (spec.md §4.4).
type RefusalCode uint8

const (
	RefusalNone RefusalCode = iota
	// RefusalCapability: agent.capability_mask does not cover the goal's
	// required capabilities.
	RefusalCapability
	// RefusalAuthority: effective authority does not cover the goal's
	// required authority.
	RefusalAuthority
	// RefusalKnowledge: belief.knowledge_mask does not cover required
	// knowledge and ALLOW_UNKNOWN is not set.
	RefusalKnowledge
	// RefusalTiming: now is before defer_until_act, or at/after a
	// nonzero abandon_after_act.
	RefusalTiming
	// RefusalNotFeasible: a required plan step has no resolvable target
	// in belief (spec.md §4.4, GOAL_NOT_FEASIBLE).
	RefusalNotFeasible
	// RefusalConstraint: an active deny constraint matches the step.
	RefusalConstraint
	// RefusalInstitution: the step requires institution membership the
	// agent does not hold.
	RefusalInstitution
	// RefusalNone is reused as the zero value; RefusalNoEligibleGoal
	// marks "no goal on this agent qualified this tick".
	RefusalNoEligibleGoal
)

// String renders the refusal code the way it would appear in an event line.
func (r RefusalCode) String() string {
	switch r {
	case RefusalNone:
		return "none"
	case RefusalCapability:
		return "capability"
	case RefusalAuthority:
		return "authority"
	case RefusalKnowledge:
		return "epistemic"
	case RefusalTiming:
		return "timing"
	case RefusalNotFeasible:
		return "not_feasible"
	case RefusalConstraint:
		return "constraint"
	case RefusalInstitution:
		return "institution"
	case RefusalNoEligibleGoal:
		return "no_eligible_goal"
	default:
		return "unknown"
	}
}
