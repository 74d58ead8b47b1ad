package observability

import (
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"

	"vusdpool/native/pool"
)

const namespace = "vusd"

var (
	poolMetricsOnce sync.Once
	poolRegistry    *PoolMetrics
)

// PoolMetrics collects controller, settlement and transport activity. It
// implements pool.Observer and settlement.Metrics.
type PoolMetrics struct {
	operations    *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	compensations *prometheus.CounterVec
	settlements   *prometheus.CounterVec
	requests      *prometheus.CounterVec
	throttles     *prometheus.CounterVec

	totalSupply       prometheus.Gauge
	poolBalance       prometheus.Gauge
	liquidityBps      prometheus.Gauge
	accounts          prometheus.Gauge
	needsRegeneration prometheus.Gauge
}

// Pool returns the process-wide metrics registered on the default registry.
func Pool() *PoolMetrics {
	poolMetricsOnce.Do(func() {
		poolRegistry = NewPoolMetrics(prometheus.DefaultRegisterer)
	})
	return poolRegistry
}

// NewPoolMetrics builds the collectors and registers them on reg.
func NewPoolMetrics(reg prometheus.Registerer) *PoolMetrics {
	m := &PoolMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "operations_total",
			Help:      "Pool operations segmented by operation and outcome reason.",
		}, []string{"op", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "operation_duration_seconds",
			Help:      "Latency distribution for pool operations including settlement hand-off.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "compensations_total",
			Help:      "Compensation attempts after a settlement failure, by outcome (applied, blocked, failed).",
		}, []string{"op", "outcome"}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "dispatch_total",
			Help:      "Outbox dispatch results segmented by operation and outcome.",
		}, []string{"op", "outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "gRPC requests segmented by method and status code.",
		}, []string{"method", "code"}),
		throttles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "throttles_total",
			Help:      "Requests rejected by rate limiting.",
		}, []string{"reason"}),
		totalSupply: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "total_supply",
			Help:      "Cumulative units deposited into the pool.",
		}),
		poolBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "balance",
			Help:      "Liquid units available to lend.",
		}),
		liquidityBps: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "liquidity_bps",
			Help:      "Pool balance relative to total supply in basis points.",
		}),
		accounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "accounts",
			Help:      "Accounts the ledger has seen.",
		}),
		needsRegeneration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "needs_regeneration",
			Help:      "1 when liquidity has fallen below the regeneration floor.",
		}),
	}
	reg.MustRegister(
		m.operations,
		m.latency,
		m.compensations,
		m.settlements,
		m.requests,
		m.throttles,
		m.totalSupply,
		m.poolBalance,
		m.liquidityBps,
		m.accounts,
		m.needsRegeneration,
	)
	return m
}

// RecordOperation implements pool.Observer.
func (m *PoolMetrics) RecordOperation(op, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	op = normalizeLabel(op)
	m.operations.WithLabelValues(op, normalizeLabel(outcome)).Inc()
	m.latency.WithLabelValues(op).Observe(d.Seconds())
}

// RecordPool implements pool.Observer.
func (m *PoolMetrics) RecordPool(st pool.Status) {
	if m == nil {
		return
	}
	m.totalSupply.Set(toFloat(&st.Pool.TotalSupply))
	m.poolBalance.Set(toFloat(&st.Pool.PoolBalance))
	m.liquidityBps.Set(float64(st.LiquidityBps))
	m.accounts.Set(float64(st.Accounts))
	if st.NeedsRegeneration {
		m.needsRegeneration.Set(1)
	} else {
		m.needsRegeneration.Set(0)
	}
}

// RecordCompensation implements pool.Observer.
func (m *PoolMetrics) RecordCompensation(op, outcome string) {
	if m == nil {
		return
	}
	m.compensations.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
}

// RecordSettlement implements settlement.Metrics.
func (m *PoolMetrics) RecordSettlement(op, outcome string) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
}

// RecordRequest counts a finished gRPC call. code is the status code name.
func (m *PoolMetrics) RecordRequest(method, code string) {
	if m == nil {
		return
	}
	if idx := strings.LastIndex(method, "/"); idx >= 0 {
		method = method[idx+1:]
	}
	m.requests.WithLabelValues(normalizeLabel(method), normalizeLabel(code)).Inc()
}

// RecordThrottle counts a rate-limited request.
func (m *PoolMetrics) RecordThrottle(reason string) {
	if m == nil {
		return
	}
	m.throttles.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}

// toFloat loses precision above 2^53, which is acceptable for gauges.
func toFloat(v *uint256.Int) float64 {
	f, _ := new(big.Float).SetInt(v.ToBig()).Float64()
	return f
}
