// Package command implements the command executor (spec.md §4.5,
// component C5): the pending → executed | failed | refused state
// machine run over commands emitted by the agent pipeline.
package command

import (
	"github.com/dominium/dominium/agent"
	"github.com/dominium/dominium/bitmask"
	"github.com/dominium/dominium/fixedpoint"
	"github.com/dominium/dominium/ids"
	"github.com/dominium/dominium/network"
	"github.com/dominium/dominium/registry"
)

// Status is a command's terminal or pending state.
type Status uint8

const (
	StatusPending Status = iota
	StatusExecuted
	StatusFailed
	StatusRefused
)

// FailureReason names why a command did not execute, independent of
// Status's coarser classification.
type FailureReason uint8

const (
	FailureNone FailureReason = iota
	FailureUnsupported
	FailureMissing
	FailureCapacity
	FailureInsufficientStorage
)

// KnowInfra is the knowledge bit SURVEY sets on success (spec.md §4.5).
const KnowInfra bitmask.Mask = 1 << 0

// AmountQ16 and TransferAmountQ16 are the fixed MAINTAIN store and
// TRANSFER move amounts (spec.md §4.5's AMOUNT_Q16, TRANSFER_AMOUNT_Q16).
const (
	AmountQ16         = fixedpoint.Q16(5 << 16)
	TransferAmountQ16 = fixedpoint.Q16(3 << 16)
)

// Backoff is the tick delay applied to defer_until_act after a command
// failure (spec.md §4.5).
const Backoff ids.Tick = 4

// Result is the outcome of executing a single command.
type Result struct {
	CommandID    ids.RefID
	Status       Status
	Reason       FailureReason
	EdgeFailed   ids.RefID // set when a TRANSFER drove an edge ok → failed
	NetworkID    ids.RefID
}

// Execute runs one command against the agent/goal it was emitted for
// and the set of networks available to the world, advancing the goal's
// step cursor on success and applying the failure/back-off/abandonment
// rule on failure (spec.md §4.5).
func Execute(
	cmd agent.Command,
	a *agent.Agent,
	g *agent.Goal,
	networks *registry.Registry[ids.RefID, *network.Network],
	now ids.Tick,
) Result {
	res := Result{CommandID: cmd.CommandID}

	switch bitmask.Mask(cmd.ProcessKind) {
	case agent.ProcessObserve:
		executeSurvey(&res, a, networks)
	case agent.ProcessMaintain:
		executeMaintain(&res, cmd, networks, now)
	case agent.ProcessTransfer:
		executeTransfer(&res, cmd, a, networks, now)
	default:
		res.Status = StatusRefused
		res.Reason = FailureUnsupported
	}

	applyOutcome(res, g, now)
	return res
}

// executeSurvey implements SURVEY: requires at least one network;
// grants KNOW_INFRA and sets epistemic confidence to max.
func executeSurvey(res *Result, a *agent.Agent, networks *registry.Registry[ids.RefID, *network.Network]) {
	if networks == nil || networks.Len() == 0 {
		res.Status = StatusFailed
		res.Reason = FailureUnsupported
		return
	}
	a.Belief.KnowledgeMask = a.Belief.KnowledgeMask.Union(KnowInfra)
	a.Belief.EpistemicConfidenceQ16 = fixedpoint.One
	res.Status = StatusExecuted
}

// findNode locates the network holding nodeID.
func findNode(networks *registry.Registry[ids.RefID, *network.Network], nodeID ids.RefID) (*network.Network, bool) {
	var found *network.Network
	networks.All(func(_ ids.RefID, net *network.Network) bool {
		if _, ok := net.Nodes.Find(nodeID); ok {
			found = net
			return false
		}
		return true
	})
	return found, found != nil
}

// executeMaintain implements MAINTAIN: resolves the target node across
// all networks and calls network.Store with the fixed maintain amount.
func executeMaintain(res *Result, cmd agent.Command, networks *registry.Registry[ids.RefID, *network.Network], now ids.Tick) {
	targetID := ids.RefID(cmd.TargetID)
	net, ok := findNode(networks, targetID)
	if !ok {
		res.Status = StatusFailed
		res.Reason = FailureMissing
		return
	}
	res.NetworkID = net.NetworkID
	code := net.Store(targetID, AmountQ16, 0, now)
	switch code {
	case network.ReasonOK:
		res.Status = StatusExecuted
	case network.ReasonMissing:
		res.Status = StatusFailed
		res.Reason = FailureMissing
	case network.ReasonCapacity:
		res.Status = StatusFailed
		res.Reason = FailureCapacity
	case network.ReasonInsufficientStorage:
		res.Status = StatusFailed
		res.Reason = FailureInsufficientStorage
	default:
		res.Status = StatusFailed
		res.Reason = FailureUnsupported
	}
}

// executeTransfer implements TRANSFER: moves TransferAmountQ16 from the
// agent's known resource to the command's target on the unique network
// containing both ends, via the edge connecting them. A failed edge
// marks res.EdgeFailed so the caller can emit a network.fail event.
func executeTransfer(res *Result, cmd agent.Command, a *agent.Agent, networks *registry.Registry[ids.RefID, *network.Network], now ids.Tick) {
	fromID := a.Belief.KnownResourceRef
	toID := ids.RefID(cmd.TargetID)
	net, ok := findNode(networks, fromID)
	if !ok {
		res.Status = StatusFailed
		res.Reason = FailureMissing
		return
	}
	if _, ok := net.Nodes.Find(toID); !ok {
		res.Status = StatusFailed
		res.Reason = FailureMissing
		return
	}
	res.NetworkID = net.NetworkID

	var edgeID ids.RefID
	var found bool
	net.Edges.All(func(id ids.RefID, e *network.Edge) bool {
		if e.FromNodeID == fromID && e.ToNodeID == toID {
			edgeID, found = id, true
			return false
		}
		return true
	})
	if !found {
		res.Status = StatusFailed
		res.Reason = FailureMissing
		return
	}

	code := net.Transfer(edgeID, fromID, toID, TransferAmountQ16, 0, now)
	switch code {
	case network.ReasonOK:
		res.Status = StatusExecuted
	case network.ReasonEdgeCapacity:
		res.Status = StatusFailed
		res.Reason = FailureCapacity
		res.EdgeFailed = edgeID
	case network.ReasonInsufficientStorage:
		res.Status = StatusFailed
		res.Reason = FailureInsufficientStorage
	default:
		res.Status = StatusFailed
		res.Reason = FailureMissing
	}
}

// applyOutcome advances the goal's step cursor on success, or applies
// the failure-count/back-off/abandonment rule on failure (spec.md §4.5).
// A refused command (unsupported process kind) leaves the goal
// untouched: it was never a viable plan step to begin with.
func applyOutcome(res Result, g *agent.Goal, now ids.Tick) {
	if g == nil {
		return
	}
	switch res.Status {
	case StatusExecuted:
		g.PlanStepCursor++
		if g.PlanStepCursor >= len(g.PlanSteps) {
			g.Status = agent.GoalSatisfied
		}
	case StatusFailed:
		g.FailureCount++
		if g.AbandonAfterFailures > 0 && g.FailureCount >= g.AbandonAfterFailures {
			g.Status = agent.GoalAbandoned
		} else {
			g.DeferUntilAct = now + Backoff
		}
	}
}
