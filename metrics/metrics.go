// Package metrics provides the operational (non-deterministic, scrape-only)
// observability layer. It mirrors the deterministic tick.MetricsWindow
// into prometheus counters one direction only — nothing here is read back
// into the simulation, and nothing here participates in a replay hash.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics wraps a prometheus registerer for a single world instance.
type Metrics struct {
	Registry prometheus.Registerer

	TicksTotal        prometheus.Counter
	IdleTicksTotal     prometheus.Counter
	ProcessAttempts    prometheus.Counter
	ProcessFailures    prometheus.Counter
	ProcessRefusals    prometheus.Counter
	CommandAttempts    prometheus.Counter
	CommandFailures    prometheus.Counter
	NetworkFailures    prometheus.Counter
	RiskBudgetExhausted prometheus.Counter
	ClaimsApproved     prometheus.Counter
	ClaimsDenied       prometheus.Counter

	ClaimPayoutAvg Averager
}

// New creates and registers the world's metric set against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Registry: reg,
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dominium_ticks_total",
			Help: "Total simulation ticks executed.",
		}),
		IdleTicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dominium_idle_ticks_total",
			Help: "Ticks with zero process and command attempts.",
		}),
		ProcessAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dominium_process_attempts_total",
			Help: "Physical process attempts.",
		}),
		ProcessFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dominium_process_failures_total",
			Help: "Physical process failures.",
		}),
		ProcessRefusals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dominium_process_refusals_total",
			Help: "Physical process refusals.",
		}),
		CommandAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dominium_command_attempts_total",
			Help: "Commands executed by the command executor.",
		}),
		CommandFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dominium_command_failures_total",
			Help: "Commands that failed.",
		}),
		NetworkFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dominium_network_failures_total",
			Help: "Network node/edge failures.",
		}),
		RiskBudgetExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dominium_risk_budget_exhausted_total",
			Help: "Risk resolve calls that returned PARTIAL due to budget exhaustion.",
		}),
		ClaimsApproved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dominium_claims_approved_total",
			Help: "Insurance claims approved during resolve.",
		}),
		ClaimsDenied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dominium_claims_denied_total",
			Help: "Insurance claims denied during resolve.",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.TicksTotal, m.IdleTicksTotal, m.ProcessAttempts, m.ProcessFailures,
		m.ProcessRefusals, m.CommandAttempts, m.CommandFailures, m.NetworkFailures,
		m.RiskBudgetExhausted, m.ClaimsApproved, m.ClaimsDenied,
	} {
		_ = reg.Register(c)
	}
	avg, err := NewAverager("dominium_claim_payout_q48", "approved claim payouts, in raw Q48 units", reg)
	if err == nil {
		m.ClaimPayoutAvg = avg
	}
	return m
}

// NewDiscard returns a Metrics instance registered against a private
// registry, for tests and callers that do not expose a scrape endpoint.
func NewDiscard() *Metrics {
	return New(prometheus.NewRegistry())
}

// ObserveTickRecord mirrors one closed tick record into the counters.
// The record arrives as six counts and an idle flag rather than a
// package tick type, to keep metrics free of a dependency on the
// simulation packages it observes.
func (m *Metrics) ObserveTickRecord(processAttempts, processFailures, processRefusals, commandAttempts, commandFailures, networkFailures uint64, idle bool) {
	m.TicksTotal.Inc()
	if idle {
		m.IdleTicksTotal.Inc()
	}
	m.ProcessAttempts.Add(float64(processAttempts))
	m.ProcessFailures.Add(float64(processFailures))
	m.ProcessRefusals.Add(float64(processRefusals))
	m.CommandAttempts.Add(float64(commandAttempts))
	m.CommandFailures.Add(float64(commandFailures))
	m.NetworkFailures.Add(float64(networkFailures))
}
