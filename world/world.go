// Package world is the composition root (spec.md §6): it owns every
// domain registry, wires the agent/command/process/network/risk/variant
// packages together behind a small verb-shaped method surface, and
// tracks the per-world event ring and last-refusal state every handler
// writes to on completion.
package world

import (
	stdcontext "context"

	"go.uber.org/zap"

	"github.com/dominium/dominium/agent"
	domcontext "github.com/dominium/dominium/context"
	"github.com/dominium/dominium/field"
	"github.com/dominium/dominium/fixedpoint"
	"github.com/dominium/dominium/ids"
	"github.com/dominium/dominium/network"
	"github.com/dominium/dominium/process"
	"github.com/dominium/dominium/registry"
	"github.com/dominium/dominium/risk"
	"github.com/dominium/dominium/tick"
	"github.com/dominium/dominium/variant"
)

// RefusalCode is one of the stable refusal-code strings spec.md §6
// enumerates.
type RefusalCode string

const (
	RefusalNone     RefusalCode = ""
	RefusalInvalid  RefusalCode = "WD-REFUSAL-INVALID"
	RefusalSchema   RefusalCode = "WD-REFUSAL-SCHEMA"
	RefusalTemplate RefusalCode = "WD-REFUSAL-TEMPLATE"
	RefusalProc     RefusalCode = "PROC-REFUSAL"
	RefusalProcFail RefusalCode = "PROC-FAIL"
	RefusalEpistemic RefusalCode = "PROC-REFUSAL-EPISTEMIC"
	RefusalPlaytest RefusalCode = "PLAYTEST-REFUSAL"
	RefusalVariant  RefusalCode = "VARIANT-REFUSAL"
)

// Refusal is the last-refusal state every handler writes on completion
// (spec.md §7: "handlers write the refusal strings to per-world
// last_refusal_{code,detail}").
type Refusal struct {
	Code   RefusalCode
	Detail string
}

// Policy gates which interaction verbs a world accepts, per spec.md §8
// scenario 5 ("world created without policy.interaction.place").
type Policy struct {
	AllowInteractionPlace bool
}

// InteractionObject is a placed world object (spec.md §8 scenario 5:
// "interaction_objects count unchanged").
type InteractionObject struct {
	ObjectID ids.RefID
	Kind     string
}

// World owns the entire simulation state for one run. A process may host
// many Worlds, each isolated (spec.md §5).
type World struct {
	ctx stdcontext.Context

	WorldID  uint64
	Seed     uint64
	Active   bool
	Policy   Policy
	LastRefusal Refusal

	Agents       []*agent.Agent
	AgentsByID   map[ids.RefID]*agent.Agent
	Goals        *registry.Registry[ids.RefID, *agent.Goal]
	Grants       *registry.Registry[ids.RefID, agent.AuthorityGrant]
	Delegations  *registry.Registry[ids.RefID, agent.Delegation]
	Constraints  *registry.Registry[ids.RefID, agent.Constraint]
	Institutions *registry.Registry[ids.RefID, agent.Institution]
	Counter      *agent.IDCounter

	Networks *registry.Registry[ids.RefID, *network.Network]
	Fields   *field.Storage
	Assembly *process.Assembly
	Risk     *risk.Domain
	RiskBudget risk.Budget
	Variants *variant.Gate

	Interactions []InteractionObject

	Tick *tick.World

	Events *EventRing
}

// New constructs an empty, active world from a world-level context.Context
// (the logger/metrics collaborator bundle) and a seed.
func New(ctx stdcontext.Context, worldID, seed uint64) *World {
	goals := registry.New[ids.RefID, *agent.Goal](0)
	grants := registry.New[ids.RefID, agent.AuthorityGrant](0)
	delegations := registry.New[ids.RefID, agent.Delegation](0)
	constraints := registry.New[ids.RefID, agent.Constraint](0)
	institutions := registry.New[ids.RefID, agent.Institution](0)
	networks := registry.New[ids.RefID, *network.Network](0)
	variants := variant.NewGate()

	w := &World{
		ctx:          ctx,
		WorldID:      worldID,
		Seed:         seed,
		Active:       true,
		AgentsByID:   make(map[ids.RefID]*agent.Agent),
		Goals:        goals,
		Grants:       grants,
		Delegations:  delegations,
		Constraints:  constraints,
		Institutions: institutions,
		Counter:      agent.NewIDCounter(seed),
		Networks:     networks,
		Fields:       field.NewStorage(),
		Assembly:     &process.Assembly{},
		Risk:         risk.NewDomain(),
		RiskBudget:   risk.Budget{RemainingQ48: fixedpoint.Q48FromInt(1024)},
		Variants:     variants,
		Events:       NewEventRing(),
	}

	w.Tick = &tick.World{
		HasActiveWorld: true,
		Agents:         w.Agents,
		AgentsByID:     w.AgentsByID,
		Goals:          w.Goals,
		Grants:         w.Grants,
		Delegations:    w.Delegations,
		Constraints:    w.Constraints,
		Institutions:   w.Institutions,
		Counter:        w.Counter,
		Networks:       w.Networks,
	}
	return w
}

func (w *World) refuse(code RefusalCode, detail string) {
	w.LastRefusal = Refusal{Code: code, Detail: detail}
	domcontext.Logger(w.ctx).Warn("verb refused",
		zap.String("code", string(code)), zap.String("detail", detail))
}

func (w *World) clearRefusal() {
	w.LastRefusal = Refusal{}
}

// requireActive is the common precondition every handler checks first
// (spec.md §7: "Precondition ... reported as INVALID").
func (w *World) requireActive() bool {
	if w == nil || !w.Active {
		w.refuse(RefusalInvalid, "no active world")
		return false
	}
	return true
}
