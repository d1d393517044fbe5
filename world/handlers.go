package world

import (
	"strconv"

	"github.com/dominium/dominium/agent"
	"github.com/dominium/dominium/bitmask"
	"github.com/dominium/dominium/command"
	domcontext "github.com/dominium/dominium/context"
	"github.com/dominium/dominium/fixedpoint"
	"github.com/dominium/dominium/idset"
	"github.com/dominium/dominium/ids"
	"github.com/dominium/dominium/network"
	"github.com/dominium/dominium/process"
	"github.com/dominium/dominium/risk"
	"github.com/dominium/dominium/tick"
	"github.com/dominium/dominium/variant"
)

// NetworkCreate registers a fresh, empty network and returns its id
// (spec.md §8 scenario 2: "network-create type=electrical").
func (w *World) NetworkCreate(kind string) (ids.RefID, bool) {
	if !w.requireActive() {
		return ids.NoRef, false
	}
	id := w.Counter.Next()
	net := network.New(id)
	if err := w.Networks.Register(id, net); err != nil {
		w.refuse(RefusalInvalid, err.Error())
		return ids.NoRef, false
	}
	w.clearRefusal()
	w.Events.Emit("world.network.create", KV{"network", strconv.FormatUint(uint64(id), 10)}, KV{"type", kind})
	return id, true
}

// AgentAdd registers a new agent with the given capability/authority
// masks (spec.md §8 scenario 2: "agent-add caps=survey auth=basic").
// The agent is due from tick 0 with a compute budget of 1, so the next
// simulate evaluates it.
func (w *World) AgentAdd(capabilities, authority bitmask.Mask) (ids.RefID, bool) {
	if !w.requireActive() {
		return ids.NoRef, false
	}
	id := w.Counter.Next()
	a := &agent.Agent{
		AgentID: id, CapabilityMask: capabilities, AuthorityMask: authority,
		Schedule: agent.Schedule{ComputeBudget: 1},
	}
	w.Agents = append(w.Agents, a)
	w.AgentsByID[id] = a
	w.Tick.Agents = w.Agents
	w.clearRefusal()
	w.Events.Emit("world.agent.add", KV{"agent", strconv.FormatUint(uint64(id), 10)})
	return id, true
}

// GoalAdd registers a goal for agentID of the given type (spec.md §8
// scenario 2: "goal-add agent=<id> type=survey").
func (w *World) GoalAdd(agentID ids.RefID, goalType agent.GoalType, priority int32) (ids.RefID, bool) {
	if !w.requireActive() {
		return ids.NoRef, false
	}
	if _, ok := w.AgentsByID[agentID]; !ok {
		w.refuse(RefusalInvalid, "unknown agent")
		return ids.NoRef, false
	}
	id := w.Counter.Next()
	g := &agent.Goal{
		GoalID:       id,
		AgentID:      agentID,
		Type:         goalType,
		Status:       agent.GoalPending,
		BasePriority: priority,
	}
	if err := w.Goals.Register(id, g); err != nil {
		w.refuse(RefusalInvalid, err.Error())
		return ids.NoRef, false
	}
	w.clearRefusal()
	w.Events.Emit("world.goal.add", KV{"goal", strconv.FormatUint(uint64(id), 10)}, KV{"agent", strconv.FormatUint(uint64(agentID), 10)})
	return id, true
}

// commandEventName maps a command's process kind to its client-facing
// event name (spec.md §8 scenario 2: "client.agent.command process=observe").
func commandEventName(kind uint32) string {
	switch bitmask.Mask(kind) {
	case agent.ProcessObserve:
		return "observe"
	case agent.ProcessMove:
		return "move"
	case agent.ProcessMaintain:
		return "maintain"
	case agent.ProcessTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

func resultTag(status command.Status) string {
	switch status {
	case command.StatusExecuted:
		return "ok"
	case command.StatusFailed:
		return "failed"
	case command.StatusRefused:
		return "refused"
	default:
		return "pending"
	}
}

// Simulate advances the world by n ticks, refusing immediately (without
// advancing any further tick) if the variant gate or tick orchestrator
// itself refuses (spec.md §4.9, §4.10). force is passed through to
// tick.Step for a forced single-step while paused.
func (w *World) Simulate(n uint32, force bool) (ticksRun uint32, ok bool) {
	if !w.requireActive() {
		return 0, false
	}
	if w.Variants.RefusesSimulateAndProcess() {
		w.refuse(RefusalVariant, "variant gate mode blocks simulate")
		return 0, false
	}

	var mode tick.Mode
	switch w.Variants.Mode {
	case variant.ModeDegraded:
		mode = tick.ModeDegraded
	case variant.ModeFrozen:
		mode = tick.ModeFrozen
	case variant.ModeTransformOnly:
		mode = tick.ModeTransformOnly
	}
	w.Tick.Mode = mode

	for i := uint32(0); i < n; i++ {
		res := tick.Step(w.Tick, force)
		if res.Refused {
			switch res.Reason {
			case tick.RefusalPaused:
				w.refuse(RefusalPlaytest, "playtest paused")
			case tick.RefusalMode:
				w.refuse(RefusalVariant, "tick mode blocks simulate")
			default:
				w.refuse(RefusalInvalid, "no active world")
			}
			return ticksRun, ticksRun > 0
		}
		ticksRun++
		w.Events.Emit("world.simulate.tick",
			KV{"tick", strconv.FormatUint(uint64(res.Now), 10)},
			KV{"commands", strconv.Itoa(len(res.Commands))})
		for j, cmd := range res.Commands {
			w.Events.Emit("client.agent.command",
				KV{"process", commandEventName(cmd.ProcessKind)},
				KV{"result", resultTag(res.Executed[j].Status)})
			if res.Executed[j].EdgeFailed != ids.NoRef {
				w.Events.Emit("client.network.fail",
					KV{"edge", strconv.FormatUint(uint64(res.Executed[j].EdgeFailed), 10)},
					KV{"network", strconv.FormatUint(uint64(res.Executed[j].NetworkID), 10)})
			}
		}
		w.observeTick()
	}
	w.clearRefusal()
	return ticksRun, true
}

// observeTick mirrors the tick window's just-closed sample into the
// operational prometheus metrics, if a Metrics collector is attached to
// w's context (spec.md §4.10's metrics window is the deterministic,
// replay-stable record; this is the scrape-only shadow of it).
func (w *World) observeTick() {
	wc := domcontext.FromContext(w.ctx)
	if wc == nil || wc.Metrics == nil {
		return
	}
	samples := w.Tick.Window.Samples()
	if len(samples) == 0 {
		return
	}
	s := samples[len(samples)-1]
	wc.Metrics.ObserveTickRecord(
		s.ProcessAttempts, s.ProcessFailures, s.ProcessRefusals,
		s.CommandAttempts, s.CommandFailures, s.NetworkFailures, s.Idle)
}

// Process runs the physical-process interpreter (spec.md §4.6) against
// agentID's capability/authority masks and the world's field/assembly/
// constraint/energy state, gated by the same variant-mode refusal as
// Simulate (spec.md §4.9: "the executor refuses all SIMULATE and PROCESS
// verbs with refusal code VARIANT").
func (w *World) Process(desc process.Desc, agentID ids.RefID) (process.Result, bool) {
	if !w.requireActive() {
		return process.Result{}, false
	}
	if w.Variants.RefusesSimulateAndProcess() {
		w.refuse(RefusalVariant, "variant gate mode blocks process")
		return process.Result{}, false
	}
	a, ok := w.AgentsByID[agentID]
	if !ok {
		w.refuse(RefusalInvalid, "unknown agent")
		return process.Result{}, false
	}

	ctx := &process.Context{
		Fields:         w.Fields,
		Assembly:       w.Assembly,
		Constraints:    w.Constraints,
		Energy:         w.Networks,
		CapabilityMask: a.CapabilityMask,
		AuthorityMask:  a.AuthorityMask,
		WorldSeed:      w.Seed,
	}
	res := process.Run(desc, ctx, w.Tick.Now)

	switch res.Failure {
	case process.FailureNone:
		w.clearRefusal()
	case process.FailureEpistemic:
		w.refuse(RefusalEpistemic, "process requires unknown fields")
	case process.FailureNoCapability, process.FailureNoAuthority, process.FailureConstraint, process.FailureUnsupported:
		w.refuse(RefusalProc, "process precondition refused")
	case process.FailureResourceEmpty, process.FailureCapacity:
		w.refuse(RefusalProcFail, "process execution failed")
	}

	w.Events.Emit("client.process.result",
		KV{"agent", strconv.FormatUint(uint64(agentID), 10)},
		KV{"kind", strconv.FormatUint(uint64(desc.Kind), 10)},
		KV{"ok", strconv.FormatBool(res.OK)})
	return res, true
}

// VariantSet implements variant-set (spec.md §4.9, §8 scenario 6).
func (w *World) VariantSet(systemID, variantID ids.RefID, scope variant.Scope) bool {
	if !w.requireActive() {
		return false
	}
	if err := w.Variants.Set(systemID, variantID, scope); err != nil {
		w.refuse(RefusalInvalid, err.Error())
		return false
	}
	w.clearRefusal()
	w.Events.Emit("world.variant.set",
		KV{"system", strconv.FormatUint(uint64(systemID), 10)},
		KV{"variant", strconv.FormatUint(uint64(variantID), 10)},
		KV{"mode", variantModeString(w.Variants.Mode)})
	return true
}

func variantModeString(m variant.Mode) string {
	switch m {
	case variant.ModeAuthoritative:
		return "authoritative"
	case variant.ModeDegraded:
		return "degraded"
	case variant.ModeFrozen:
		return "frozen"
	case variant.ModeTransformOnly:
		return "transform_only"
	default:
		return "unknown"
	}
}

// Resolve runs risk.Resolve against the world's risk domain and budget
// (spec.md §4.8, §8 scenario 4).
func (w *World) Resolve(regionID ids.RefID, now ids.Tick, delta fixedpoint.Q16) (risk.Result, bool) {
	if !w.requireActive() {
		return risk.Result{}, false
	}
	res := risk.Resolve(w.Risk, regionID, now, delta, &w.RiskBudget)
	if res.Refusal == risk.RefuseBudget {
		w.refuse(RefusalInvalid, "risk budget exhausted")
	} else {
		w.clearRefusal()
	}
	if wc := domcontext.FromContext(w.ctx); wc != nil && wc.Metrics != nil {
		if res.Flags&risk.FlagPartial != 0 {
			wc.Metrics.RiskBudgetExhausted.Inc()
		}
		wc.Metrics.ClaimsApproved.Add(float64(res.ClaimApprovedCount))
		wc.Metrics.ClaimsDenied.Add(float64(res.ClaimDeniedCount))
		if res.ClaimApprovedCount > 0 && wc.Metrics.ClaimPayoutAvg != nil {
			wc.Metrics.ClaimPayoutAvg.Observe(float64(res.ClaimPaidTotalQ48.Raw()) / float64(res.ClaimApprovedCount))
		}
	}
	w.Events.Emit("world.risk.resolve", KV{"region", strconv.FormatUint(uint64(regionID), 10)})
	return res, true
}

// CollapseRegion folds regionID into a macro-capsule (spec.md §4.8).
func (w *World) CollapseRegion(regionID ids.RefID) *risk.MacroCapsule {
	if !w.requireActive() {
		return nil
	}
	cap := w.Risk.CollapseRegion(regionID)
	w.clearRefusal()
	w.Events.Emit("world.risk.collapse", KV{"region", strconv.FormatUint(uint64(regionID), 10)})
	return cap
}

// ExpandRegion drops regionID's macro-capsule.
func (w *World) ExpandRegion(regionID ids.RefID) {
	if !w.requireActive() {
		return
	}
	w.Risk.ExpandRegion(regionID)
	w.clearRefusal()
	w.Events.Emit("world.risk.expand", KV{"region", strconv.FormatUint(uint64(regionID), 10)})
}

// refusalReasonTag renders a risk.RefusalReason as the structured
// dom_risk_refusal_reason tag SPEC_FULL.md's supplemented query verbs
// report (BUDGET, DOMAIN_INACTIVE, *_MISSING, POLICY, INTERNAL).
func refusalReasonTag(r risk.RefusalReason) string {
	switch r {
	case risk.RefuseNone:
		return "none"
	case risk.RefuseBudget:
		return "BUDGET"
	case risk.RefuseDomainInactive:
		return "DOMAIN_INACTIVE"
	case risk.RefuseFieldMissing:
		return "FIELD_MISSING"
	case risk.RefuseExposureMissing:
		return "EXPOSURE_MISSING"
	case risk.RefuseProfileMissing:
		return "PROFILE_MISSING"
	case risk.RefuseEventMissing:
		return "EVENT_MISSING"
	case risk.RefusePolicyMissing:
		return "POLICY_MISSING"
	case risk.RefuseClaimMissing:
		return "CLAIM_MISSING"
	case risk.RefusePolicy:
		return "POLICY"
	default:
		return "INTERNAL"
	}
}

// RiskTypeQuery implements risk-type-query (SPEC_FULL.md's supplemented
// "region queries as first-class verbs").
func (w *World) RiskTypeQuery(typeID ids.RefID) (risk.RiskType, bool) {
	if !w.requireActive() {
		return risk.RiskType{}, false
	}
	v, refusal := w.Risk.TypeQuery(typeID, &w.RiskBudget)
	if refusal != risk.RefuseNone {
		w.refuse(RefusalInvalid, refusalReasonTag(refusal))
		return risk.RiskType{}, false
	}
	w.clearRefusal()
	w.Events.Emit("world.risk.type.query", KV{"type", strconv.FormatUint(uint64(typeID), 10)})
	return v, true
}

// RiskFieldQuery implements risk-field-query.
func (w *World) RiskFieldQuery(fieldID ids.RefID) (risk.Field, bool) {
	if !w.requireActive() {
		return risk.Field{}, false
	}
	v, refusal := w.Risk.FieldQuery(fieldID, &w.RiskBudget)
	if refusal != risk.RefuseNone {
		w.refuse(RefusalInvalid, refusalReasonTag(refusal))
		return risk.Field{}, false
	}
	w.clearRefusal()
	w.Events.Emit("world.risk.field.query", KV{"field", strconv.FormatUint(uint64(fieldID), 10)})
	return v, true
}

// RiskExposureQuery implements risk-exposure-query.
func (w *World) RiskExposureQuery(exposureID ids.RefID) (*risk.Exposure, bool) {
	if !w.requireActive() {
		return nil, false
	}
	v, refusal := w.Risk.ExposureQuery(exposureID, &w.RiskBudget)
	if refusal != risk.RefuseNone {
		w.refuse(RefusalInvalid, refusalReasonTag(refusal))
		return nil, false
	}
	w.clearRefusal()
	w.Events.Emit("world.risk.exposure.query", KV{"exposure", strconv.FormatUint(uint64(exposureID), 10)})
	return v, true
}

// RiskProfileQuery implements risk-profile-query.
func (w *World) RiskProfileQuery(profileID ids.RefID) (*risk.Profile, bool) {
	if !w.requireActive() {
		return nil, false
	}
	v, refusal := w.Risk.ProfileQuery(profileID, &w.RiskBudget)
	if refusal != risk.RefuseNone {
		w.refuse(RefusalInvalid, refusalReasonTag(refusal))
		return nil, false
	}
	w.clearRefusal()
	w.Events.Emit("world.risk.profile.query", KV{"profile", strconv.FormatUint(uint64(profileID), 10)})
	return v, true
}

// RiskEventQuery implements risk-event-query.
func (w *World) RiskEventQuery(eventID ids.RefID) (risk.Event, bool) {
	if !w.requireActive() {
		return risk.Event{}, false
	}
	v, refusal := w.Risk.EventQuery(eventID, &w.RiskBudget)
	if refusal != risk.RefuseNone {
		w.refuse(RefusalInvalid, refusalReasonTag(refusal))
		return risk.Event{}, false
	}
	w.clearRefusal()
	w.Events.Emit("world.risk.event.query", KV{"event", strconv.FormatUint(uint64(eventID), 10)})
	return v, true
}

// RiskAttributionQuery implements risk-attribution-query.
func (w *World) RiskAttributionQuery(attributionID ids.RefID) (risk.Attribution, bool) {
	if !w.requireActive() {
		return risk.Attribution{}, false
	}
	v, refusal := w.Risk.AttributionQuery(attributionID, &w.RiskBudget)
	if refusal != risk.RefuseNone {
		w.refuse(RefusalInvalid, refusalReasonTag(refusal))
		return risk.Attribution{}, false
	}
	w.clearRefusal()
	w.Events.Emit("world.risk.attribution.query", KV{"attribution", strconv.FormatUint(uint64(attributionID), 10)})
	return v, true
}

// RiskPolicyQuery implements risk-policy-query.
func (w *World) RiskPolicyQuery(policyID ids.RefID) (risk.Policy, bool) {
	if !w.requireActive() {
		return risk.Policy{}, false
	}
	v, refusal := w.Risk.PolicyQuery(policyID, &w.RiskBudget)
	if refusal != risk.RefuseNone {
		w.refuse(RefusalInvalid, refusalReasonTag(refusal))
		return risk.Policy{}, false
	}
	w.clearRefusal()
	w.Events.Emit("world.risk.policy.query", KV{"policy", strconv.FormatUint(uint64(policyID), 10)})
	return v, true
}

// RiskClaimQuery implements risk-claim-query.
func (w *World) RiskClaimQuery(claimID ids.RefID) (*risk.Claim, bool) {
	if !w.requireActive() {
		return nil, false
	}
	v, refusal := w.Risk.ClaimQuery(claimID, &w.RiskBudget)
	if refusal != risk.RefuseNone {
		w.refuse(RefusalInvalid, refusalReasonTag(refusal))
		return nil, false
	}
	w.clearRefusal()
	w.Events.Emit("world.risk.claim.query", KV{"claim", strconv.FormatUint(uint64(claimID), 10)})
	return v, true
}

// RiskRegionQuery implements risk-region-query.
func (w *World) RiskRegionQuery(regionID ids.RefID) (*risk.MacroCapsule, bool) {
	if !w.requireActive() {
		return nil, false
	}
	v, refusal := w.Risk.RegionQuery(regionID, &w.RiskBudget)
	if refusal != risk.RefuseNone {
		w.refuse(RefusalInvalid, refusalReasonTag(refusal))
		return nil, false
	}
	w.clearRefusal()
	w.Events.Emit("world.risk.region.query", KV{"region", strconv.FormatUint(uint64(regionID), 10)})
	return v, true
}

// RevokeGrants revokes every authority grant id in targets, tolerating
// ids that no longer exist and reporting the aggregate failure as a
// single refusal rather than stopping at the first missing id.
func (w *World) RevokeGrants(targets idset.Set) bool {
	if !w.requireActive() {
		return false
	}
	if err := agent.BulkRevokeGrants(w.Grants, targets); err != nil {
		w.refuse(RefusalInvalid, err.Error())
		return false
	}
	w.clearRefusal()
	w.Events.Emit("world.grants.revoke", KV{"count", strconv.Itoa(targets.Len())})
	return true
}

// RevokeDelegations revokes every delegation id in targets the same
// way RevokeGrants does for authority grants.
func (w *World) RevokeDelegations(targets idset.Set) bool {
	if !w.requireActive() {
		return false
	}
	if err := agent.BulkRevokeDelegations(w.Delegations, targets); err != nil {
		w.refuse(RefusalInvalid, err.Error())
		return false
	}
	w.clearRefusal()
	w.Events.Emit("world.delegations.revoke", KV{"count", strconv.Itoa(targets.Len())})
	return true
}

// Place implements the place interaction verb, gated by
// Policy.AllowInteractionPlace (spec.md §8 scenario 5).
func (w *World) Place(kind string) (ids.RefID, bool) {
	if !w.requireActive() {
		return ids.NoRef, false
	}
	if !w.Policy.AllowInteractionPlace {
		w.refuse(RefusalSchema, "policy.interaction.place not granted")
		return ids.NoRef, false
	}
	id := w.Counter.Next()
	w.Interactions = append(w.Interactions, InteractionObject{ObjectID: id, Kind: kind})
	w.clearRefusal()
	w.Events.Emit("world.interaction.place", KV{"object", strconv.FormatUint(uint64(id), 10)}, KV{"kind", kind})
	return id, true
}
