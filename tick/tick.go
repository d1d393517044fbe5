// Package tick implements the tick orchestrator (spec.md §4.10, component
// C10): the single explicit step that runs the agent pipeline (§4.4),
// executes emitted commands (§4.5), advances every network (§4.7), and
// closes a deterministic metrics window. There is no wall-clock
// scheduling — a tick only happens when a verb handler asks for one.
package tick

import (
	"github.com/dominium/dominium/agent"
	"github.com/dominium/dominium/command"
	"github.com/dominium/dominium/fixedpoint"
	"github.com/dominium/dominium/ids"
	"github.com/dominium/dominium/network"
	"github.com/dominium/dominium/registry"
)

// Mode mirrors the variant gate's operating mode for the subset tick
// orchestration cares about (spec.md §4.10: "mode ∈ {frozen,
// transform_only}" refuses the tick).
type Mode uint8

const (
	ModeAuthoritative Mode = iota
	ModeDegraded
	ModeFrozen
	ModeTransformOnly
)

// RefusalReason names why Step declined to advance the tick.
type RefusalReason uint8

const (
	RefusalNone RefusalReason = iota
	RefusalNoActiveWorld
	RefusalMode
	RefusalPaused
)

// Injection is one queued scenario field write, applied in queue order
// at the start of a tick (spec.md §4.10, step 2).
type Injection struct {
	Layer        uint32
	X, Y, Z      int32
	ValueQ16     fixedpoint.Q16
}

// Playtest is the operator-facing run-control state (spec.md §4.10).
type Playtest struct {
	Paused         bool
	Speed          uint32
	SeedOverride   uint64
	PerturbEnabled bool
	PerturbStrengthQ16 fixedpoint.Q16
	PerturbSeed    uint64
}

// PerturbSeedFor mixes the playtest perturb seed with now, per spec.md
// §4.10 ("splitmix64(perturb_seed ⊕ tick)"), returning the zero seed when
// perturbation is disabled.
func (p Playtest) PerturbSeedFor(now ids.Tick) uint64 {
	if !p.PerturbEnabled {
		return 0
	}
	return fixedpoint.SeedStream(p.PerturbSeed, uint64(now))
}

// windowSize is the fixed ring-buffer length for MetricsWindow.
const windowSize = 64

// MetricsWindow is the deterministic, replay-stable metrics ring buffer
// closed at the end of every tick (spec.md §4.10, step 6). It is
// distinct from the operational prometheus metrics package: nothing
// here is a gauge, everything here is a plain counter folded into the
// simulation's own state.
type MetricsWindow struct {
	SimulateTicks    uint64
	IdleTicks        uint64
	ProcessAttempts  uint64
	ProcessFailures  uint64
	ProcessRefusals  uint64
	CommandAttempts  uint64
	CommandFailures  uint64
	NetworkFailures  uint64

	samples [windowSize]Sample
	cursor  int
	filled  int
}

// Sample is one tick's closed counters, recorded into the ring buffer
// (spec.md §3: "{tick, process_attempts, process_failures,
// process_refusals, command_attempts, command_failures,
// network_failures}").
type Sample struct {
	Tick            ids.Tick
	ProcessAttempts uint64
	ProcessFailures uint64
	ProcessRefusals uint64
	CommandAttempts uint64
	CommandFailures uint64
	NetworkFailures uint64
	Idle            bool
}

// reset zeroes the per-tick counters (spec.md §4.10, step 3: "reset
// per-tick metric counters").
func (w *MetricsWindow) reset() {
	w.ProcessAttempts = 0
	w.ProcessFailures = 0
	w.ProcessRefusals = 0
	w.CommandAttempts = 0
	w.CommandFailures = 0
	w.NetworkFailures = 0
}

// close folds this tick's counters into the running totals and ring
// buffer (spec.md §4.10, step 6).
func (w *MetricsWindow) close(now ids.Tick) {
	idle := w.ProcessAttempts == 0 && w.CommandAttempts == 0
	w.SimulateTicks++
	if idle {
		w.IdleTicks++
	}
	w.samples[w.cursor] = Sample{
		Tick:            now,
		ProcessAttempts: w.ProcessAttempts,
		ProcessFailures: w.ProcessFailures,
		ProcessRefusals: w.ProcessRefusals,
		CommandAttempts: w.CommandAttempts,
		CommandFailures: w.CommandFailures,
		NetworkFailures: w.NetworkFailures,
		Idle:            idle,
	}
	w.cursor = (w.cursor + 1) % windowSize
	if w.filled < windowSize {
		w.filled++
	}
}

// Samples returns the buffered samples oldest-first.
func (w *MetricsWindow) Samples() []Sample {
	out := make([]Sample, 0, w.filled)
	start := w.cursor - w.filled
	for i := 0; i < w.filled; i++ {
		idx := ((start+i)%windowSize + windowSize) % windowSize
		out = append(out, w.samples[idx])
	}
	return out
}

// FailureRate is the read-only derived fraction of attempted process and
// command actions across the buffered window that ended in failure
// (spec.md §3's "failure_rate"). Zero when nothing has been attempted.
func (w *MetricsWindow) FailureRate() fixedpoint.Q16 {
	var attempts, failures uint64
	for _, s := range w.Samples() {
		attempts += s.ProcessAttempts + s.CommandAttempts
		failures += s.ProcessFailures + s.CommandFailures
	}
	if attempts == 0 {
		return 0
	}
	return fixedpoint.FromInt(int64(failures)).Div(fixedpoint.FromInt(int64(attempts)))
}

// BottleneckFrequency is the fraction of buffered ticks that saw at
// least one network failure (spec.md §3's "bottleneck_frequency") —
// network edges/nodes failing are the simulation's throughput bottleneck.
func (w *MetricsWindow) BottleneckFrequency() fixedpoint.Q16 {
	samples := w.Samples()
	if len(samples) == 0 {
		return 0
	}
	var bottlenecked int
	for _, s := range samples {
		if s.NetworkFailures > 0 {
			bottlenecked++
		}
	}
	return fixedpoint.FromInt(int64(bottlenecked)).Div(fixedpoint.FromInt(int64(len(samples))))
}

// AgentIdleRate is the fraction of buffered ticks with no process or
// command activity (spec.md §3's "agent_idle_rate").
func (w *MetricsWindow) AgentIdleRate() fixedpoint.Q16 {
	samples := w.Samples()
	if len(samples) == 0 {
		return 0
	}
	var idle int
	for _, s := range samples {
		if s.Idle {
			idle++
		}
	}
	return fixedpoint.FromInt(int64(idle)).Div(fixedpoint.FromInt(int64(len(samples))))
}

// InstitutionStability is the complement of the process-refusal rate
// across the buffered window (spec.md §3's "institution_stability"):
// refusals are denials by institutional constraints/authority checks
// (spec.md §4.4's validate stage), so a low refusal rate reads as a
// stable institutional regime. Clamped to [0, 1]; 1 when nothing has
// been attempted.
func (w *MetricsWindow) InstitutionStability() fixedpoint.Q16 {
	var attempts, refusals uint64
	for _, s := range w.Samples() {
		attempts += s.ProcessAttempts
		refusals += s.ProcessRefusals
	}
	if attempts == 0 {
		return fixedpoint.One
	}
	rate := fixedpoint.FromInt(int64(refusals)).Div(fixedpoint.FromInt(int64(attempts)))
	return fixedpoint.One.Sub(rate).Clamp(0, fixedpoint.One)
}

// World bundles everything a Step call needs: the tick counter, the
// registries the agent pipeline and command executor run over, and the
// run-control state. Orchestration reads/writes these directly rather
// than copying into a parallel structure (spec.md §5: "the entire state
// is owned by the world object; handlers borrow exclusively for the
// duration of a call").
type World struct {
	Now      ids.Tick
	Mode     Mode
	Playtest Playtest
	Window   MetricsWindow
	Queue    []Injection

	Agents      []*agent.Agent
	AgentsByID  map[ids.RefID]*agent.Agent
	Goals       *registry.Registry[ids.RefID, *agent.Goal]
	Grants      *registry.Registry[ids.RefID, agent.AuthorityGrant]
	Delegations *registry.Registry[ids.RefID, agent.Delegation]
	Constraints *registry.Registry[ids.RefID, agent.Constraint]
	Institutions *registry.Registry[ids.RefID, agent.Institution]
	Counter     *agent.IDCounter
	Networks    *registry.Registry[ids.RefID, *network.Network]

	HasActiveWorld bool

	// InjectionApply, when set, is called for each queued Injection in
	// queue order before the pipeline runs. Kept as a callback rather than
	// a hard field.Storage dependency so tick stays independent of which
	// field layer a given world actually uses.
	InjectionApply func(Injection)
}

// Result is what Step reports back to the verb layer.
type Result struct {
	Refused bool
	Reason  RefusalReason
	Now     ids.Tick
	Commands []agent.Command
	Executed []command.Result
}

// Step advances the world by exactly one tick (spec.md §4.10). force
// overrides a paused playtest (an explicit single-step while paused).
func Step(w *World, force bool) Result {
	if !w.HasActiveWorld {
		return Result{Refused: true, Reason: RefusalNoActiveWorld, Now: w.Now}
	}
	if w.Mode == ModeFrozen || w.Mode == ModeTransformOnly {
		return Result{Refused: true, Reason: RefusalMode, Now: w.Now}
	}
	if w.Playtest.Paused && !force {
		return Result{Refused: true, Reason: RefusalPaused, Now: w.Now}
	}

	if w.InjectionApply != nil {
		for _, inj := range w.Queue {
			w.InjectionApply(inj)
		}
	}
	w.Queue = nil

	w.Window.reset()
	w.Now++

	evalResults := agent.EvaluateGoalsSlice(w.Agents, w.Goals, w.Grants, w.Delegations, w.Now)
	agent.PlanActionsSlice(evalResults, w.AgentsByID, w.Goals)
	agent.ValidatePlanSlice(evalResults, w.AgentsByID, w.Goals, agent.ValidateContext{
		Grants:       w.Grants,
		Delegations:  w.Delegations,
		Constraints:  w.Constraints,
		Institutions: w.Institutions,
		Now:          w.Now,
	})
	commands := agent.EmitCommandsSlice(evalResults, w.AgentsByID, w.Goals, w.Counter)
	w.Window.ProcessAttempts += uint64(len(commands))

	executed := make([]command.Result, 0, len(commands))
	for _, cmd := range commands {
		w.Window.CommandAttempts++
		a := w.AgentsByID[cmd.AgentID]
		g, _ := w.Goals.Find(cmd.GoalID)
		res := command.Execute(cmd, a, g, w.Networks, w.Now)
		switch res.Status {
		case command.StatusFailed:
			w.Window.ProcessFailures++
			w.Window.CommandFailures++
		case command.StatusRefused:
			w.Window.ProcessRefusals++
		}
		if res.EdgeFailed != ids.NoRef {
			w.Window.NetworkFailures++
		}
		executed = append(executed, res)
	}

	if w.Networks != nil {
		w.Networks.All(func(_ ids.RefID, net *network.Network) bool {
			net.Tick(w.Now)
			return true
		})
	}

	w.Window.close(w.Now)

	return Result{Now: w.Now, Commands: commands, Executed: executed}
}
