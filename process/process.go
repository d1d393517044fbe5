// Package process implements the physical-process interpreter (spec.md
// §4.6, component C6): the ordered precondition pipeline run over a
// local_process_desc against a world snapshot of field storage,
// assembly, constraints, and the energy network.
package process

import (
	"github.com/dominium/dominium/agent"
	"github.com/dominium/dominium/bitmask"
	"github.com/dominium/dominium/field"
	"github.com/dominium/dominium/fixedpoint"
	"github.com/dominium/dominium/ids"
	"github.com/dominium/dominium/network"
	"github.com/dominium/dominium/registry"
)

// Kind identifies a physical process (spec.md §4.6). Distinct from
// agent.ProcessObserve/Move/Maintain/Transfer, which are the
// command-executor-level kinds (spec.md §4.5); this is the richer
// out-of-band set the interpreter itself runs.
type Kind bitmask.Mask

const (
	KindSurvey Kind = 1 << iota
	KindCollect
	KindAssemble
	KindConnect
	KindRepair
)

// FailureMode is the dedicated failure produced by a refused
// precondition, in the fixed evaluation order spec.md §4.6 specifies.
type FailureMode uint8

const (
	FailureNone FailureMode = iota
	FailureNoCapability
	FailureNoAuthority
	FailureConstraint
	FailureEpistemic
	FailureUnsupported
	FailureResourceEmpty
	FailureCapacity
)

// Desc is a local_process_desc: the process request plus its gating
// parameters (spec.md §4.6).
type Desc struct {
	Kind                  Kind
	SubjectRef            ids.RefID
	RequiredFieldMask     bitmask.Mask
	RequiredCapabilities  bitmask.Mask
	RequiredAuthority     bitmask.Mask
	AllowUnknown          bool
	ResourceAmountQ16     fixedpoint.Q16
	EnergyLoadQ16         fixedpoint.Q16
	MinSupportQ16         fixedpoint.Q16
	MaxSurfaceGradientQ16 fixedpoint.Q16
	// SurfaceGradientQ16 and SupportQ16 are the process site's measured
	// configuration, checked against MaxSurfaceGradientQ16/MinSupportQ16.
	SurfaceGradientQ16 fixedpoint.Q16
	SupportQ16         fixedpoint.Q16
	// X/Y/Z locate the field cell this process reads or refines in each
	// layer; Layers lists the layer ids checked against RequiredFieldMask.
	Layers []uint32
	X, Y, Z int32
	// NetworkID/NodeID/EdgeID address CONNECT/REPAIR's target on the
	// energy network.
	NetworkID ids.RefID
	NodeID    ids.RefID
	EdgeID    ids.RefID
}

// Context is the world snapshot the interpreter evaluates a Desc
// against (spec.md §4.6: "a world snapshot of field storage, assembly,
// claims registry, and the energy network").
type Context struct {
	Fields      *field.Storage
	Assembly    *Assembly
	Constraints *registry.Registry[ids.RefID, agent.Constraint]
	Energy      *registry.Registry[ids.RefID, *network.Network]
	CapabilityMask bitmask.Mask
	AuthorityMask  bitmask.Mask
	WorldSeed   uint64
}

// Assembly is the in-progress physical construction a COLLECT/ASSEMBLE
// process mutates.
type Assembly struct {
	AssemblyID   ids.RefID
	StockQ16     fixedpoint.Q16
	ProgressQ16  fixedpoint.Q16
	Complete     bool
}

// Result is the outcome of evaluating one Desc.
type Result struct {
	OK      bool
	Failure FailureMode

	// Survey outputs.
	SurveyedFieldMask bitmask.Mask
	ConfidenceQ16     fixedpoint.Q16
	UncertaintyQ16    fixedpoint.Q16

	// Connect/repair outputs.
	NetworkTouched ids.RefID
}

// Run evaluates desc against ctx, checking preconditions in the fixed
// order spec.md §4.6 specifies, then applies the kind-specific effect
// on success.
func Run(desc Desc, ctx *Context, now ids.Tick) Result {
	if !ctx.CapabilityMask.Contains(desc.RequiredCapabilities) {
		return Result{Failure: FailureNoCapability}
	}
	if !ctx.AuthorityMask.Contains(desc.RequiredAuthority) {
		return Result{Failure: FailureNoAuthority}
	}
	if ctx.Constraints != nil {
		denied := false
		ctx.Constraints.All(func(_ ids.RefID, c agent.Constraint) bool {
			if c.Matches(desc.SubjectRef, bitmask.Mask(desc.Kind)) && c.Mode == agent.ConstraintDeny {
				denied = true
				return false
			}
			return true
		})
		if denied {
			return Result{Failure: FailureConstraint}
		}
	}

	unknownMask, refined := refineRequiredFields(desc, ctx)
	if unknownMask != 0 && !desc.AllowUnknown {
		return Result{Failure: FailureEpistemic, SurveyedFieldMask: refined}
	}

	if desc.MaxSurfaceGradientQ16 > 0 && desc.SurfaceGradientQ16 > desc.MaxSurfaceGradientQ16 {
		return Result{Failure: FailureUnsupported}
	}
	if desc.MinSupportQ16 > 0 && desc.SupportQ16 < desc.MinSupportQ16 {
		return Result{Failure: FailureUnsupported}
	}

	switch desc.Kind {
	case KindSurvey:
		return runSurvey(desc, ctx, refined)
	case KindCollect:
		return runCollect(desc, ctx)
	case KindAssemble:
		return runAssemble(desc, ctx)
	case KindConnect:
		return runConnect(desc, ctx, now)
	case KindRepair:
		return runRepair(desc, ctx, now)
	default:
		return Result{Failure: FailureUnsupported}
	}
}

// refineRequiredFields materializes a deterministic latent value for
// every required field whose objective value is field.Unknown, seeded
// by (world_seed, field_id) (spec.md §4.6). It returns the mask of
// required layers that were unknown before refinement (each of them is
// then materialized) and the mask of required layers covered.
func refineRequiredFields(desc Desc, ctx *Context) (unknownBefore, covered bitmask.Mask) {
	for _, layer := range desc.Layers {
		bit := bitmask.Mask(1) << uint(layer)
		if !desc.RequiredFieldMask.Has(bit) {
			continue
		}
		covered = covered.Set(bit)
		if ctx.Fields.Get(layer, desc.X, desc.Y, desc.Z) != field.Unknown {
			continue
		}
		unknownBefore = unknownBefore.Set(bit)
		seed := fixedpoint.SeedStream(ctx.WorldSeed, uint64(layer))
		_, latent := fixedpoint.SplitMix64(seed)
		materialized := fixedpoint.Q16FromRaw(int64(latent % (1 << 32)))
		_ = ctx.Fields.Set(layer, desc.X, desc.Y, desc.Z, materialized)
	}
	return unknownBefore, covered
}
