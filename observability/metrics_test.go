package observability

import (
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"vusdpool/native/pool"
)

func TestPoolMetricsRecordsOutcomes(t *testing.T) {
	m := NewPoolMetrics(prometheus.NewRegistry())

	m.RecordOperation("borrow", "ok", 5*time.Millisecond)
	m.RecordOperation("borrow", "insufficient_collateral", time.Millisecond)
	m.RecordOperation("borrow", "ok", time.Millisecond)
	m.RecordCompensation("deposit", "applied")
	m.RecordSettlement("deposit", "settled")
	m.RecordRequest("/vusd.pool.v1.PoolService/Borrow", "OK")
	m.RecordThrottle("")

	if got := testutil.ToFloat64(m.operations.WithLabelValues("borrow", "ok")); got != 2 {
		t.Fatalf("ok borrows = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("borrow", "insufficient_collateral")); got != 1 {
		t.Fatalf("rejected borrows = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.compensations.WithLabelValues("deposit", "applied")); got != 1 {
		t.Fatalf("compensations = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.settlements.WithLabelValues("deposit", "settled")); got != 1 {
		t.Fatalf("settlements = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("Borrow", "OK")); got != 1 {
		t.Fatalf("requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.throttles.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("throttles = %v, want 1", got)
	}
}

func TestPoolMetricsGauges(t *testing.T) {
	m := NewPoolMetrics(prometheus.NewRegistry())
	st := pool.Status{Accounts: 3, LiquidityBps: 450, NeedsRegeneration: true}
	st.Pool.TotalSupply = *uint256.NewInt(10_000)
	st.Pool.PoolBalance = *uint256.NewInt(450)
	m.RecordPool(st)

	if got := testutil.ToFloat64(m.poolBalance); got != 450 {
		t.Fatalf("pool balance = %v", got)
	}
	if got := testutil.ToFloat64(m.needsRegeneration); got != 1 {
		t.Fatalf("needs regeneration = %v", got)
	}
	st.NeedsRegeneration = false
	m.RecordPool(st)
	if got := testutil.ToFloat64(m.needsRegeneration); got != 0 {
		t.Fatalf("needs regeneration = %v", got)
	}
	if got := testutil.ToFloat64(m.accounts); got != 3 {
		t.Fatalf("accounts = %v", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *PoolMetrics
	m.RecordOperation("deposit", "ok", time.Second)
	m.RecordPool(pool.Status{})
	m.RecordCompensation("deposit", "applied")
	m.RecordSettlement("deposit", "settled")
	m.RecordRequest("x", "OK")
	m.RecordThrottle("rate")
}
