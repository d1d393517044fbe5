package risk

import "github.com/dominium/dominium/fixedpoint"

// Budget bounds how much analytic work resolve() may perform in a
// single call (spec.md §4.8: "a budgeted fold").
type Budget struct {
	RemainingQ48 fixedpoint.Q48
}

// CostAnalytic is deducted once up front by the budget gate stage.
// CostMedium is deducted per field scanned. CostQuery is deducted once
// per per-entity risk query verb. All are world-tunable unit costs with
// no further structure specified, so they are fixed here.
const (
	CostAnalytic = fixedpoint.Q48(2 << 16)
	CostMedium   = fixedpoint.Q48(1 << 16)
	CostQuery    = fixedpoint.Q48(1 << 15)
)

// spend deducts cost from the budget, reporting whether it could afford
// it. An unaffordable spend leaves the budget untouched.
func (b *Budget) spend(cost fixedpoint.Q48) bool {
	if b.RemainingQ48 < cost {
		return false
	}
	b.RemainingQ48 = b.RemainingQ48.Sub(cost)
	return true
}
