package process

import (
	"github.com/dominium/dominium/bitmask"
	"github.com/dominium/dominium/fixedpoint"
	"github.com/dominium/dominium/ids"
	"github.com/dominium/dominium/network"
)

// confidenceRise and uncertaintyFall are the deterministic step sizes a
// successful survey applies to prior confidence/uncertainty (spec.md
// §4.6: "confidence rises, uncertainty falls as a deterministic
// function of prior values"). Each halves the remaining gap: confidence
// moves halfway toward One and uncertainty halfway toward Zero.
func confidenceRise(prior fixedpoint.Q16) fixedpoint.Q16 {
	gap := fixedpoint.One.Sub(prior)
	return prior.Add(gap.Div(fixedpoint.FromInt(2))).Clamp(0, fixedpoint.One)
}

func uncertaintyFall(prior fixedpoint.Q16) fixedpoint.Q16 {
	return prior.Div(fixedpoint.FromInt(2))
}

// runSurvey marks the refined fields surveyed and reports confidence and
// uncertainty computed from a fixed prior (zero confidence, One
// uncertainty), so every successful survey reports One/2 for both; the
// result of an earlier survey of the same site is not read.
func runSurvey(desc Desc, ctx *Context, surveyedMask bitmask.Mask) Result {
	return Result{
		OK:                true,
		SurveyedFieldMask: surveyedMask,
		ConfidenceQ16:     confidenceRise(0),
		UncertaintyQ16:    uncertaintyFall(fixedpoint.One),
	}
}

// runCollect adds resource_amount_q16 to the assembly's stock.
// RESOURCE_EMPTY refuses a zero-amount collect — there is nothing to
// gather.
func runCollect(desc Desc, ctx *Context) Result {
	if desc.ResourceAmountQ16 <= 0 {
		return Result{Failure: FailureResourceEmpty}
	}
	if ctx.Assembly != nil {
		ctx.Assembly.StockQ16 = ctx.Assembly.StockQ16.Add(desc.ResourceAmountQ16)
	}
	return Result{OK: true}
}

// runAssemble consumes stock into progress, one unit of stock per unit
// of progress, capping at complete. CAPACITY refuses when stock cannot
// cover the requested resource_amount_q16.
func runAssemble(desc Desc, ctx *Context) Result {
	if ctx.Assembly == nil {
		return Result{Failure: FailureUnsupported}
	}
	if ctx.Assembly.StockQ16 < desc.ResourceAmountQ16 {
		return Result{Failure: FailureCapacity}
	}
	ctx.Assembly.StockQ16 = ctx.Assembly.StockQ16.Sub(desc.ResourceAmountQ16)
	ctx.Assembly.ProgressQ16 = ctx.Assembly.ProgressQ16.Add(desc.ResourceAmountQ16).Clamp(0, fixedpoint.One)
	if ctx.Assembly.ProgressQ16 >= fixedpoint.One {
		ctx.Assembly.Complete = true
	}
	return Result{OK: true}
}

// runConnect brings a failed edge on the addressed network back to ok,
// the network-mutating half of spec.md §4.6's "connect/repair mutate
// the network".
func runConnect(desc Desc, ctx *Context, now ids.Tick) Result {
	net, ok := resolveNetwork(ctx, desc.NetworkID)
	if !ok {
		return Result{Failure: FailureUnsupported}
	}
	edge, ok := net.Edges.Find(desc.EdgeID)
	if !ok {
		return Result{Failure: FailureResourceEmpty}
	}
	edge.Status = network.EdgeOK
	return Result{OK: true, NetworkTouched: net.NetworkID}
}

// runRepair brings a failed or degraded node on the addressed network
// back to ok.
func runRepair(desc Desc, ctx *Context, now ids.Tick) Result {
	net, ok := resolveNetwork(ctx, desc.NetworkID)
	if !ok {
		return Result{Failure: FailureUnsupported}
	}
	node, ok := net.Nodes.Find(desc.NodeID)
	if !ok {
		return Result{Failure: FailureResourceEmpty}
	}
	node.Status = network.NodeOK
	node.DegradedSinceTick = 0
	return Result{OK: true, NetworkTouched: net.NetworkID}
}

func resolveNetwork(ctx *Context, networkID ids.RefID) (*network.Network, bool) {
	if ctx.Energy == nil {
		return nil, false
	}
	return ctx.Energy.Find(networkID)
}
