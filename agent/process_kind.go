package agent

import (
	"github.com/dominium/dominium/bitmask"
	"github.com/dominium/dominium/ids"
)

// ProcessKind bits identify the action a plan step or command performs.
// These are the command-executor-level kinds (spec.md §4.5); the
// physical-process interpreter (package process) has its own, richer
// kind set for out-of-band process calls (spec.md §4.6).
const (
	ProcessObserve bitmask.Mask = 1 << iota
	ProcessMove
	ProcessMaintain
	ProcessTransfer
)

// PlanStep is one synthesized step of a goal's plan.
type PlanStep struct {
	ProcessKind bitmask.Mask
	TargetID    uint64
	// InstitutionRef, when non-zero, names the institution the acting
	// agent must belong to for this step to validate (spec.md §4.4).
	// PlanActionsSlice copies the goal's InstitutionRef onto every step it
	// synthesizes, whatever the step's kind.
	InstitutionRef ids.RefID
	Refused        bool
	RefusalCode    RefusalCode
}

// stepTable maps a GoalType to its ordered step expansion (spec.md §4.4:
// "a SURVEY goal expands to [observe]; MAINTAIN expands to [move, maintain]").
var stepTable = map[GoalType][]bitmask.Mask{
	GoalSurvey:   {ProcessObserve},
	GoalMaintain: {ProcessMove, ProcessMaintain},
	GoalTransfer: {ProcessTransfer},
}
