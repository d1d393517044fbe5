package saveformat

import (
	"strconv"

	"github.com/dominium/dominium/agent"
	"github.com/dominium/dominium/ids"
	"github.com/dominium/dominium/network"
	"github.com/dominium/dominium/variant"
	"github.com/dominium/dominium/world"
)

// SaveHeader is the version line every save file begins with.
const SaveHeader = "DOMINIUM_SAVE_V1"

func u64(v uint64) string { return strconv.FormatUint(v, 10) }
func i64(v int64) string  { return strconv.FormatInt(v, 10) }
func ref(v ids.RefID) string { return u64(uint64(v)) }
func tick(v ids.Tick) string { return u64(uint64(v)) }
func b(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// BuildSave assembles the labeled sections spec.md §6 enumerates for
// a save file out of w's current state. It reads only; it never
// mutates w.
func BuildSave(w *world.World) Document {
	return Document{
		Header: SaveHeader,
		Sections: []Section{
			worldDefSection(w),
			summarySection(w),
			localSection(w),
			interactionsSection(w),
			variantsSection(w),
			playtestScenariosSection(w),
			metricsSection(w),
			agentsSection(w),
			goalsSection(w),
			delegationsSection(w),
			authoritySection(w),
			constraintsSection(w),
			institutionsSection(w),
			networksSection(w),
			eventsSection(w),
		},
	}
}

func worldDefSection(w *world.World) Section {
	return Section{Name: "worlddef", Records: []Record{
		Rec("world_id", u64(w.WorldID), "seed", u64(w.Seed), "active", b(w.Active)),
	}}
}

func summarySection(w *world.World) Section {
	return Section{Name: "summary", Records: []Record{
		Rec(
			"agent_count", strconv.Itoa(len(w.Agents)),
			"goal_count", strconv.Itoa(w.Goals.Len()),
			"network_count", strconv.Itoa(w.Networks.Len()),
			"event_count", strconv.Itoa(w.Events.Len()),
		),
	}}
}

func localSection(w *world.World) Section {
	return Section{Name: "local", Records: []Record{
		Rec("allow_interaction_place", b(w.Policy.AllowInteractionPlace)),
	}}
}

func interactionsSection(w *world.World) Section {
	s := Section{Name: "interactions"}
	for _, obj := range w.Interactions {
		s.Records = append(s.Records, Rec("object_id", ref(obj.ObjectID), "kind", obj.Kind))
	}
	return s
}

func variantsSection(w *world.World) Section {
	s := Section{Name: "variants"}
	s.Records = append(s.Records, Rec("mode", variantModeTag(w.Variants.Mode), "detail", string(w.Variants.Detail)))
	for _, sel := range w.Variants.WorldSelections() {
		s.Records = append(s.Records, Rec("system", ref(sel.SystemID), "variant", ref(sel.VariantID)))
	}
	return s
}

func playtestScenariosSection(w *world.World) Section {
	s := Section{Name: "playtest_scenarios"}
	for _, inj := range w.Tick.Queue {
		s.Records = append(s.Records, Rec(
			"layer", u64(uint64(inj.Layer)),
			"x", i64(int64(inj.X)),
			"y", i64(int64(inj.Y)),
			"z", i64(int64(inj.Z)),
			"value", i64(inj.ValueQ16.Raw()),
		))
	}
	return s
}

func metricsSection(w *world.World) Section {
	win := w.Tick.Window
	return Section{Name: "metrics", Records: []Record{
		Rec(
			"simulate_ticks", u64(win.SimulateTicks),
			"idle_ticks", u64(win.IdleTicks),
			"process_attempts", u64(win.ProcessAttempts),
			"process_failures", u64(win.ProcessFailures),
			"process_refusals", u64(win.ProcessRefusals),
			"command_attempts", u64(win.CommandAttempts),
			"command_failures", u64(win.CommandFailures),
			"network_failures", u64(win.NetworkFailures),
		),
		Rec(
			"failure_rate", i64(win.FailureRate().Raw()),
			"bottleneck_frequency", i64(win.BottleneckFrequency().Raw()),
			"agent_idle_rate", i64(win.AgentIdleRate().Raw()),
			"institution_stability", i64(win.InstitutionStability().Raw()),
		),
	}}
}

func agentsSection(w *world.World) Section {
	s := Section{Name: "agents"}
	for _, a := range w.Agents {
		s.Records = append(s.Records, Rec(
			"agent_id", ref(a.AgentID),
			"capability_mask", u64(uint64(a.CapabilityMask)),
			"authority_mask", u64(uint64(a.AuthorityMask)),
			"possessed", b(a.Possessed),
		))
	}
	return s
}

func goalsSection(w *world.World) Section {
	s := Section{Name: "goals"}
	w.Goals.All(func(id ids.RefID, g *agent.Goal) bool {
		s.Records = append(s.Records, Rec(
			"goal_id", ref(g.GoalID),
			"agent_id", ref(g.AgentID),
			"type", strconv.Itoa(int(g.Type)),
			"status", strconv.Itoa(int(g.Status)),
			"base_priority", i64(int64(g.BasePriority)),
		))
		return true
	})
	return s
}

func delegationsSection(w *world.World) Section {
	s := Section{Name: "delegations"}
	w.Delegations.All(func(id ids.RefID, d agent.Delegation) bool {
		s.Records = append(s.Records, Rec(
			"delegation_id", ref(d.DelegationID),
			"delegator", ref(d.DelegatorRef),
			"delegatee", ref(d.DelegateeRef),
			"kind", strconv.Itoa(int(d.Kind)),
			"authority_mask", u64(uint64(d.AuthorityMask)),
			"expiry", tick(d.Expiry),
			"revoked", b(d.Revoked),
		))
		return true
	})
	return s
}

func authoritySection(w *world.World) Section {
	s := Section{Name: "authority"}
	w.Grants.All(func(id ids.RefID, g agent.AuthorityGrant) bool {
		s.Records = append(s.Records, Rec(
			"grant_id", ref(g.GrantID),
			"subject", ref(g.SubjectRef),
			"authority_mask", u64(uint64(g.AuthorityMask)),
			"expiry", tick(g.Expiry),
			"revoked", b(g.Revoked),
		))
		return true
	})
	return s
}

func constraintsSection(w *world.World) Section {
	s := Section{Name: "constraints"}
	w.Constraints.All(func(id ids.RefID, c agent.Constraint) bool {
		s.Records = append(s.Records, Rec(
			"constraint_id", ref(c.ConstraintID),
			"mode", strconv.Itoa(int(c.Mode)),
			"process_kind_mask", u64(uint64(c.ProcessKindMask)),
			"subject", ref(c.SubjectRef),
			"active", b(c.Active),
		))
		return true
	})
	return s
}

func institutionsSection(w *world.World) Section {
	s := Section{Name: "institutions"}
	w.Institutions.All(func(id ids.RefID, inst agent.Institution) bool {
		s.Records = append(s.Records, Rec(
			"institution_id", ref(inst.InstitutionID),
			"legitimacy", i64(inst.LegitimacyQ16.Raw()),
			"status", strconv.Itoa(int(inst.Status)),
			"member_count", strconv.Itoa(len(inst.MemberRefs)),
		))
		return true
	})
	return s
}

func networksSection(w *world.World) Section {
	s := Section{Name: "networks"}
	w.Networks.All(func(id ids.RefID, n *network.Network) bool {
		s.Records = append(s.Records, Rec("kind", "network", "network", ref(n.NetworkID)))
		n.Nodes.All(func(nodeID ids.RefID, node *network.Node) bool {
			s.Records = append(s.Records, Rec(
				"kind", "node",
				"network", ref(n.NetworkID),
				"node", ref(node.NodeID),
				"capacity", i64(node.CapacityQ16.Raw()),
				"stored", i64(node.StoredQ16.Raw()),
				"min_required", i64(node.MinRequired.Raw()),
				"status", strconv.Itoa(int(node.Status)),
			))
			return true
		})
		n.Edges.All(func(edgeID ids.RefID, edge *network.Edge) bool {
			s.Records = append(s.Records, Rec(
				"kind", "edge",
				"network", ref(n.NetworkID),
				"edge", ref(edge.EdgeID),
				"from", ref(edge.FromNodeID),
				"to", ref(edge.ToNodeID),
				"capacity", i64(edge.CapacityQ16.Raw()),
				"status", strconv.Itoa(int(edge.Status)),
			))
			return true
		})
		return true
	})
	return s
}

func eventsSection(w *world.World) Section {
	s := Section{Name: "events"}
	for _, e := range w.Events.All() {
		fields := make([]string, 0, 2+2*len(e.Fields))
		fields = append(fields, "event_seq", u64(uint64(e.Seq)), "event", e.Name)
		for _, kv := range e.Fields {
			fields = append(fields, kv.Key, kv.Value)
		}
		s.Records = append(s.Records, Rec(fields...))
	}
	return s
}

// variantModeTag mirrors spec.md §8's mode vocabulary
// ("authoritative"/"degraded"/"frozen"/"transform_only"), the same
// tags world's VariantSet handler emits in its event.
func variantModeTag(m variant.Mode) string {
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
