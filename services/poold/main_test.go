package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"vusdpool/native/pool"
	"vusdpool/observability"
	"vusdpool/services/poold/config"
	"vusdpool/storage"
	"vusdpool/storage/poolstore"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadLedgerEmpty(t *testing.T) {
	cfg := pool.DefaultConfig()
	ledger, err := loadLedger(poolstore.New(storage.NewMemDB()), cfg, discardLogger())
	require.NoError(t, err)
	require.Equal(t, cfg.Params(), ledger.Pool().Params)
	require.Zero(t, ledger.Len())
}

func TestLoadLedgerKeepsPersistedParams(t *testing.T) {
	ctx := context.Background()
	store := poolstore.New(storage.NewMemDB())
	ctrl, err := pool.NewController(nil, pool.DefaultConfig(), pool.WithJournal(store))
	require.NoError(t, err)
	_, err = ctrl.Deposit(ctx, "lp", uint256.NewInt(1000))
	require.NoError(t, err)
	tuned := pool.Params{CollateralFactorBps: 6000, LiquidationBonusBps: 10500, LiquidationThresholdBps: 7000}
	require.NoError(t, ctrl.SetParams(ctx, tuned))

	ledger, err := loadLedger(store, pool.DefaultConfig(), discardLogger())
	require.NoError(t, err)
	require.Equal(t, tuned, ledger.Pool().Params)
	lp := ledger.Get("lp")
	require.Equal(t, "1000", lp.Balance.Dec())
	pl := ledger.Pool()
	require.Equal(t, "1000", pl.TotalSupply.Dec())
}

func TestOpenJournalBackends(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{config.JournalMemory, config.JournalLevelDB, config.JournalBolt} {
		t.Run(backend, func(t *testing.T) {
			db, err := openJournal(config.JournalConfig{Backend: backend, Path: filepath.Join(dir, backend, "journal")})
			require.NoError(t, err)
			defer db.Close()
			require.NoError(t, db.Put([]byte("k"), []byte("v")))
			got, err := db.Get([]byte("k"))
			require.NoError(t, err)
			require.Equal(t, []byte("v"), got)
		})
	}
	_, err := openJournal(config.JournalConfig{Backend: "rocks"})
	require.Error(t, err)
}

type fixedStatus pool.Status

func (f fixedStatus) Status() pool.Status { return pool.Status(f) }

func TestOpsHandler(t *testing.T) {
	var st pool.Status
	st.Pool.TotalSupply.SetUint64(1000)
	st.Pool.PoolBalance.SetUint64(40)
	st.Pool.Params = pool.DefaultConfig().Params()
	st.Accounts = 2
	st.LiquidityBps = 400
	st.NeedsRegeneration = true

	reg := prometheus.NewRegistry()
	metrics := observability.NewPoolMetrics(reg)
	metrics.RecordPool(st)

	var unhealthy atomic.Bool
	ready := func(context.Context) error {
		if !unhealthy.Load() {
			return nil
		}
		return errors.New("database: closed")
	}
	srv := httptest.NewServer(newOpsHandler(fixedStatus(st), reg, ready))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	var body statusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "1000", body.TotalSupply)
	require.Equal(t, "40", body.PoolBalance)
	require.Equal(t, uint64(7500), body.CollateralFactorBps)
	require.Equal(t, 2, body.Accounts)
	require.True(t, body.NeedsRegeneration)

	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	unhealthy.Store(true)
	resp, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(raw), "vusd_pool_needs_regeneration 1")
}
