// Package verb implements the line-oriented external interface (spec.md
// §6): parsing `verb key=value key=value...` lines, dispatching them
// against a world.World, and formatting the resulting events in the
// bit-exact `event_seq=<u32> event=<name> k=v...` wire format.
package verb

import (
	"strconv"
	"strings"

	"github.com/dominium/dominium/agent"
	"github.com/dominium/dominium/bitmask"
	"github.com/dominium/dominium/fixedpoint"
	"github.com/dominium/dominium/idset"
	"github.com/dominium/dominium/ids"
	"github.com/dominium/dominium/process"
	"github.com/dominium/dominium/variant"
	"github.com/dominium/dominium/world"
)

// Status is one of the four verb outcomes spec.md §6 defines.
type Status string

const (
	StatusOK          Status = "OK"
	StatusUsage       Status = "USAGE"
	StatusUnavailable Status = "UNAVAILABLE"
	StatusFailure     Status = "FAILURE"
)

// Line is a parsed verb invocation.
type Line struct {
	Verb string
	Args map[string]string
}

// Parse tokenizes a line by whitespace (no escaping) — see DESIGN.md's
// tokenization decision. The first token is the verb; subsequent tokens
// must be key=value pairs, silently dropped if malformed.
func Parse(line string) Line {
	fields := strings.Fields(line)
	l := Line{Args: make(map[string]string)}
	if len(fields) == 0 {
		return l
	}
	l.Verb = fields[0]
	for _, f := range fields[1:] {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		l.Args[k] = v
	}
	return l
}

// Result is what Dispatch reports for one verb line.
type Result struct {
	Status Status
	Events []world.Event
}

// Dispatch parses and executes one verb line against w.
func Dispatch(w *world.World, line string) Result {
	l := Parse(line)
	before := w.Events.Len()
	var ok bool

	switch l.Verb {
	case "network-create":
		_, ok = w.NetworkCreate(l.Args["type"])
	case "agent-add":
		caps := parseMask(l.Args["caps"])
		auth := parseMask(l.Args["auth"])
		_, ok = w.AgentAdd(caps, auth)
	case "goal-add":
		agentID := parseRef(l.Args["agent"])
		goalType := parseGoalType(l.Args["type"])
		_, ok = w.GoalAdd(agentID, goalType, 1)
	case "simulate":
		n, err := strconv.ParseUint(l.Args["ticks"], 10, 32)
		if err != nil {
			return Result{Status: StatusUsage}
		}
		_, ok = w.Simulate(uint32(n), l.Args["force"] == "true")
	case "process":
		desc := process.Desc{
			Kind:                  parseProcessKind(l.Args["kind"]),
			SubjectRef:            parseRef(l.Args["subject"]),
			RequiredFieldMask:     parseMask(l.Args["fields"]),
			RequiredCapabilities:  parseMask(l.Args["caps"]),
			RequiredAuthority:     parseMask(l.Args["auth"]),
			AllowUnknown:          l.Args["allow_unknown"] == "true",
			ResourceAmountQ16:     parseQ16(l.Args["resource"]),
			EnergyLoadQ16:         parseQ16(l.Args["energy"]),
			MinSupportQ16:         parseQ16(l.Args["min_support"]),
			MaxSurfaceGradientQ16: parseQ16(l.Args["max_gradient"]),
			SurfaceGradientQ16:    parseQ16(l.Args["gradient"]),
			SupportQ16:            parseQ16(l.Args["support"]),
			Layers:                parseLayers(l.Args["layers"]),
			X:                     parseInt32(l.Args["x"]),
			Y:                     parseInt32(l.Args["y"]),
			Z:                     parseInt32(l.Args["z"]),
			NetworkID:             parseRef(l.Args["network"]),
			NodeID:                parseRef(l.Args["node"]),
			EdgeID:                parseRef(l.Args["edge"]),
		}
		_, ok = w.Process(desc, parseRef(l.Args["agent"]))
	case "variant-set":
		systemID := parseRef(l.Args["system"])
		variantID := parseRef(l.Args["id"])
		ok = w.VariantSet(systemID, variantID, variant.ScopeRun)
	case "resolve":
		region := parseRef(l.Args["region"])
		_, ok = w.Resolve(region, ids.Tick(0), fixedpoint.One)
	case "risk-type-query":
		_, ok = w.RiskTypeQuery(parseRef(l.Args["id"]))
	case "risk-field-query":
		_, ok = w.RiskFieldQuery(parseRef(l.Args["id"]))
	case "risk-exposure-query":
		_, ok = w.RiskExposureQuery(parseRef(l.Args["id"]))
	case "risk-profile-query":
		_, ok = w.RiskProfileQuery(parseRef(l.Args["id"]))
	case "risk-event-query":
		_, ok = w.RiskEventQuery(parseRef(l.Args["id"]))
	case "risk-attribution-query":
		_, ok = w.RiskAttributionQuery(parseRef(l.Args["id"]))
	case "risk-policy-query":
		_, ok = w.RiskPolicyQuery(parseRef(l.Args["id"]))
	case "risk-claim-query":
		_, ok = w.RiskClaimQuery(parseRef(l.Args["id"]))
	case "risk-region-query":
		_, ok = w.RiskRegionQuery(parseRef(l.Args["id"]))
	case "collapse":
		ok = w.CollapseRegion(parseRef(l.Args["region"])) != nil
	case "expand":
		w.ExpandRegion(parseRef(l.Args["region"]))
		ok = true
	case "place":
		_, ok = w.Place(l.Args["type"])
	case "grants-revoke":
		ok = w.RevokeGrants(parseRefSet(l.Args["ids"]))
	case "delegations-revoke":
		ok = w.RevokeDelegations(parseRefSet(l.Args["ids"]))
	default:
		return Result{Status: StatusUsage}
	}

	events := eventsSince(w, before)
	if !ok {
		return Result{Status: StatusUnavailable, Events: events}
	}
	return Result{Status: StatusOK, Events: events}
}

func eventsSince(w *world.World, before int) []world.Event {
	all := w.Events.All()
	if before >= len(all) {
		return nil
	}
	return all[before:]
}

func parseMask(s string) bitmask.Mask {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return bitmask.Mask(n)
}

func parseRef(s string) ids.RefID {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return ids.NoRef
	}
	return ids.RefID(n)
}

// parseRefSet parses a comma-separated list of ids (e.g. "1,2,3") into
// an idset.Set, silently dropping malformed entries.
func parseRefSet(s string) idset.Set {
	set := idset.Of()
	for _, tok := range strings.Split(s, ",") {
		if tok == "" {
			continue
		}
		n, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			continue
		}
		set.Add(ids.RefID(n))
	}
	return set
}

// parseProcessKind maps a process verb's kind= argument to process.Kind,
// defaulting to KindSurvey for an unrecognized or missing value.
func parseProcessKind(s string) process.Kind {
	switch s {
	case "collect":
		return process.KindCollect
	case "assemble":
		return process.KindAssemble
	case "connect":
		return process.KindConnect
	case "repair":
		return process.KindRepair
	default:
		return process.KindSurvey
	}
}

// parseQ16 parses a plain integer verb argument as a whole-number Q16.16
// value, defaulting to zero for a missing or malformed argument.
func parseQ16(s string) fixedpoint.Q16 {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0
	}
	return fixedpoint.FromInt(n)
}

// parseInt32 parses a plain signed integer verb argument, defaulting to
// zero for a missing or malformed argument.
func parseInt32(s string) int32 {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0
	}
	return int32(n)
}

// parseLayers parses a comma-separated list of field layer ids (e.g.
// "0,2,5"), silently dropping malformed entries.
func parseLayers(s string) []uint32 {
	var out []uint32
	for _, tok := range strings.Split(s, ",") {
		if tok == "" {
			continue
		}
		n, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			continue
		}
		out = append(out, uint32(n))
	}
	return out
}

func parseGoalType(s string) agent.GoalType {
	switch s {
	case "maintain":
		return agent.GoalMaintain
	case "transfer":
		return agent.GoalTransfer
	default:
		return agent.GoalSurvey
	}
}

// FormatEvent renders e in the bit-exact wire format spec.md §6
// specifies: `event_seq=<u32> event=<name> k=v...`, LF-terminated by
// the caller (this returns the line without the trailing LF so callers
// can batch-write with their own line separator).
func FormatEvent(e world.Event) string {
	var b strings.Builder
	b.WriteString("event_seq=")
	b.WriteString(strconv.FormatUint(uint64(e.Seq), 10))
	b.WriteString(" event=")
	b.WriteString(e.Name)
	for _, kv := range e.Fields {
		b.WriteByte(' ')
		b.WriteString(kv.Key)
		b.WriteByte('=')
		b.WriteString(kv.Value)
	}
	return b.String()
}
