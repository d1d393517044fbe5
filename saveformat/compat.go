package saveformat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CompatibilityMode mirrors the gate's coarse pass/fail outcome for a
// save's required-vs-provided capability check.
type CompatibilityMode string

const (
	CompatibilityOK       CompatibilityMode = "compatible"
	CompatibilityDegraded CompatibilityMode = "degraded"
	CompatibilityRefused  CompatibilityMode = "refused"
)

// CompatibilityReport is the JSON sidecar written alongside a save file
// as <save>.compat_report.json (spec.md §6).
type CompatibilityReport struct {
	InstallID            string            `json:"install_id"`
	InstanceID           string            `json:"instance_id"`
	RuntimeID            string            `json:"runtime_id"`
	CapabilityBaseline   []string          `json:"capability_baseline"`
	RequiredCapabilities []string          `json:"required_capabilities"`
	ProvidedCapabilities []string          `json:"provided_capabilities"`
	MissingCapabilities  []string          `json:"missing_capabilities"`
	CompatibilityMode    CompatibilityMode `json:"compatibility_mode"`
	RefusalCodes         []string          `json:"refusal_codes"`
	MitigationHints      []string          `json:"mitigation_hints"`
	Timestamp            time.Time         `json:"timestamp"`
	Extensions           map[string]string `json:"extensions,omitempty"`
}

// NewCompatibilityReport builds a report from the save's required
// capability set and the runtime's provided set, diffing them to fill
// MissingCapabilities and CompatibilityMode. now is supplied by the
// caller rather than read via time.Now here. The three report ids come
// from uuid.NewString, so two reports built from the same inputs differ
// in those ids.
func NewCompatibilityReport(required, provided []string, now time.Time) CompatibilityReport {
	providedSet := make(map[string]struct{}, len(provided))
	for _, c := range provided {
		providedSet[c] = struct{}{}
	}
	var missing []string
	for _, c := range required {
		if _, ok := providedSet[c]; !ok {
			missing = append(missing, c)
		}
	}
	mode := CompatibilityOK
	var hints []string
	if len(missing) > 0 {
		mode = CompatibilityDegraded
		hints = append(hints, "install the missing capability providers listed above, or load with --allow-degraded")
	}

	return CompatibilityReport{
		InstallID:            uuid.NewString(),
		InstanceID:           uuid.NewString(),
		RuntimeID:            uuid.NewString(),
		CapabilityBaseline:   provided,
		RequiredCapabilities: required,
		ProvidedCapabilities: provided,
		MissingCapabilities:  missing,
		CompatibilityMode:    mode,
		RefusalCodes:         nil,
		MitigationHints:      hints,
		Timestamp:            now,
	}
}

// MarshalReport renders r as the <save>.compat_report.json sidecar.
func MarshalReport(r CompatibilityReport) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
