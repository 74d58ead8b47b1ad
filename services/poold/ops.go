package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"vusdpool/native/pool"
)

// statusSource is satisfied by *pool.Controller.
type statusSource interface {
	Status() pool.Status
}

type statusResponse struct {
	TotalSupply             string `json:"totalSupply"`
	PoolBalance             string `json:"poolBalance"`
	CollateralFactorBps     uint64 `json:"collateralFactorBps"`
	LiquidationBonusBps     uint64 `json:"liquidationBonusBps"`
	LiquidationThresholdBps uint64 `json:"liquidationThresholdBps"`
	Accounts                int    `json:"accounts"`
	LiquidityBps            uint64 `json:"liquidityBps"`
	NeedsRegeneration       bool   `json:"needsRegeneration"`
}

// newOpsHandler serves /metrics, /healthz and /status. ready is consulted by
// /healthz; a nil ready always reports healthy.
func newOpsHandler(src statusSource, gatherer prometheus.Gatherer, ready func(context.Context) error) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		st := src.Status()
		writeJSON(w, http.StatusOK, statusResponse{
			TotalSupply:             st.Pool.TotalSupply.Dec(),
			PoolBalance:             st.Pool.PoolBalance.Dec(),
			CollateralFactorBps:     st.Pool.Params.CollateralFactorBps,
			LiquidationBonusBps:     st.Pool.Params.LiquidationBonusBps,
			LiquidationThresholdBps: st.Pool.Params.LiquidationThresholdBps,
			Accounts:                st.Accounts,
			LiquidityBps:            st.LiquidityBps,
			NeedsRegeneration:       st.NeedsRegeneration,
		})
	})
	return otelhttp.NewHandler(r, "poold.ops")
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
