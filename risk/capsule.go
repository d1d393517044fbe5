package risk

import (
	"github.com/dominium/dominium/fixedpoint"
	"github.com/dominium/dominium/ids"
)

// MacroCapsule is the frozen summary of a collapsed region (spec.md
// §4.8, risk_fields.h: dom_risk_macro_capsule). It is the sole source
// of truth for a collapsed region's entities until the region expands.
type MacroCapsule struct {
	RegionID         ids.RefID
	FieldCount       uint32
	ExposureCount    uint32
	ProfileCount     uint32
	ExposureTotalQ48 fixedpoint.Q48
	RiskTypeCounts   [ClassCount]uint32
	ExposureHist     [HistBins]fixedpoint.Q16
}

// CollapseRegion performs one final deterministic scan over regionID's
// fields/exposures/profiles and replaces live access to them with a
// macro-capsule. Collapsing an already-collapsed region is a no-op.
func (d *Domain) CollapseRegion(regionID ids.RefID) *MacroCapsule {
	if existing, ok := d.capsules[regionID]; ok {
		return existing
	}

	capsule := &MacroCapsule{RegionID: regionID}
	d.Fields.All(func(_ ids.RefID, f Field) bool {
		if f.RegionID != regionID {
			return true
		}
		capsule.FieldCount++
		if rt, ok := d.Types.Find(f.RiskTypeID); ok && rt.RiskClass > RiskClassUnset && int(rt.RiskClass) <= ClassCount {
			capsule.RiskTypeCounts[rt.RiskClass-1]++
		}
		return true
	})
	d.Exposures.All(func(_ ids.RefID, e *Exposure) bool {
		if e.RegionID != regionID {
			return true
		}
		capsule.ExposureCount++
		capsule.ExposureTotalQ48 = capsule.ExposureTotalQ48.Add(e.ExposureAccumulatedQ48)
		capsule.ExposureHist[histBin(e.ExposureAccumulatedQ48, e.ExposureLimitQ48)] =
			capsule.ExposureHist[histBin(e.ExposureAccumulatedQ48, e.ExposureLimitQ48)].Add(fixedpoint.One)
		return true
	})
	d.Profiles.All(func(_ ids.RefID, p *Profile) bool {
		if p.RegionID == regionID {
			capsule.ProfileCount++
		}
		return true
	})

	d.capsules[regionID] = capsule
	d.capsuleOrder = append(d.capsuleOrder, regionID)
	return capsule
}

// ExpandRegion drops regionID's macro-capsule, restoring live query
// access to its entities.
func (d *Domain) ExpandRegion(regionID ids.RefID) {
	if _, ok := d.capsules[regionID]; !ok {
		return
	}
	delete(d.capsules, regionID)
	for i, id := range d.capsuleOrder {
		if id == regionID {
			d.capsuleOrder = append(d.capsuleOrder[:i], d.capsuleOrder[i+1:]...)
			break
		}
	}
}

// Capsule returns regionID's macro-capsule, if collapsed.
func (d *Domain) Capsule(regionID ids.RefID) (*MacroCapsule, bool) {
	c, ok := d.capsules[regionID]
	return c, ok
}

// Capsules returns every standing macro-capsule in collapse order.
func (d *Domain) Capsules() []*MacroCapsule {
	out := make([]*MacroCapsule, 0, len(d.capsuleOrder))
	for _, id := range d.capsuleOrder {
		out = append(out, d.capsules[id])
	}
	return out
}

// histBin buckets accumulated/limit into one of HistBins quartiles. A
// zero or negative limit always buckets into 0 (no ratio to measure).
func histBin(accumulated, limit fixedpoint.Q48) int {
	if limit <= 0 {
		return 0
	}
	ratio := accumulated.Div(limit)
	bin := int(ratio.Mul(fixedpoint.Q48FromInt(HistBins)).ToInt())
	if bin < 0 {
		bin = 0
	}
	if bin >= HistBins {
		bin = HistBins - 1
	}
	return bin
}
