package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestObserveTickRecordIncrementsCountersAndIdle(t *testing.T) {
	m := NewDiscard()
	m.ObserveTickRecord(2, 1, 1, 2, 1, 1, true)

	require.Equal(t, float64(1), counterValue(t, m.TicksTotal))
	require.Equal(t, float64(1), counterValue(t, m.IdleTicksTotal))
	require.Equal(t, float64(2), counterValue(t, m.ProcessAttempts))
	require.Equal(t, float64(1), counterValue(t, m.ProcessFailures))
}

func TestObserveTickRecordLeavesIdleCounterUntouchedWhenBusy(t *testing.T) {
	m := NewDiscard()
	m.ObserveTickRecord(1, 0, 0, 1, 0, 0, false)

	require.Equal(t, float64(1), counterValue(t, m.TicksTotal))
	require.Equal(t, float64(0), counterValue(t, m.IdleTicksTotal))
}

func TestClaimPayoutAvgTracksRunningMean(t *testing.T) {
	m := NewDiscard()
	require.NotNil(t, m.ClaimPayoutAvg)

	m.ClaimPayoutAvg.Observe(10)
	m.ClaimPayoutAvg.Observe(20)
	require.Equal(t, float64(15), m.ClaimPayoutAvg.Read())
}

func TestNewRegistersEveryCounterExactlyOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	require.NotNil(t, m)

	families, err := reg.Gather()
	require.NoError(t, err)
	// 11 counters plus the claim-payout averager's _count and _sum.
	require.Len(t, families, 13)
}
