package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/net/netutil"
	"google.golang.org/grpc"
	"gorm.io/gorm"

	nativecommon "vusdpool/native/common"
	"vusdpool/native/pool"
	"vusdpool/observability"
	"vusdpool/observability/logging"
	telemetry "vusdpool/observability/otel"
	poolv1 "vusdpool/proto/pool/v1"
	"vusdpool/services/access"
	"vusdpool/services/payments"
	poolserver "vusdpool/services/pool/server"
	"vusdpool/services/poold/config"
	"vusdpool/services/settlement"
	"vusdpool/storage/poolstore"
	"vusdpool/storage/sqldb"
)

const serviceName = "poold"

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "services/poold/config.yaml", "path to poold config")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, logCloser := logging.SetupWithOptions(serviceName, cfg.Environment, cfg.Logging.Options())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("poold stopped", "error", err)
		_ = logCloser.Close()
		os.Exit(1)
	}
	_ = logCloser.Close()
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	logger.Info("poold configured", cfg.LogAttrs()...)
	telCfg := cfg.Telemetry
	telCfg.ServiceName = serviceName
	telCfg.Environment = cfg.Environment
	shutdownTelemetry, err := telemetry.Init(ctx, telCfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Warn("telemetry shutdown", "error", err)
		}
	}()

	kv, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	defer kv.Close()
	journal := poolstore.New(kv)
	ledger, err := loadLedger(journal, cfg.Pool, logger)
	if err != nil {
		return err
	}

	db, err := sqldb.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.Options())
	if err != nil {
		return err
	}
	defer func() { _ = sqldb.Close(db) }()
	if err := migrate(db); err != nil {
		return err
	}

	registry := access.NewRegistry(db)
	intents := payments.NewRegistry(db)
	outbox := settlement.NewOutbox(db)
	metrics := observability.Pool()
	pauses := nativecommon.NewPauses()

	opts := []pool.Option{
		pool.WithSettler(outbox),
		pool.WithJournal(journal),
		pool.WithActorGate(registry),
		pool.WithPauses(pauses),
		pool.WithObserver(metrics),
		pool.WithLogger(logger),
	}
	if cfg.Pool.GateEvent != "" {
		opts = append(opts, pool.WithAllowList(registry))
	}
	ctrl, err := pool.NewController(ledger, cfg.Pool, opts...)
	if err != nil {
		return fmt.Errorf("build controller: %w", err)
	}
	metrics.RecordPool(ctrl.Status())

	dispatcher, err := settlement.NewDispatcher(outbox, settlement.LogBackend{Logger: logger}, ctrl,
		settlement.WithInterval(cfg.Settlement.Interval),
		settlement.WithMaxAttempts(cfg.Settlement.MaxAttempts),
		settlement.WithBatchSize(cfg.Settlement.BatchSize),
		settlement.WithMetrics(metrics),
		settlement.WithDispatcherLogger(logger),
	)
	if err != nil {
		return err
	}

	svc, err := poolserver.New(poolserver.Deps{
		Controller: ctrl,
		Access:     registry,
		Payments:   intents,
		History:    outbox,
		Pauses:     pauses,
		Identity: poolserver.IdentityPolicy{
			Format:    poolserver.AddressFormat(cfg.Identity.AddressFormat),
			Bech32HRP: cfg.Identity.Bech32HRP,
		},
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}
	serverOpts, err := poolserver.ServerOptions(poolserver.Config{
		TLSCertFile:     cfg.TLS.CertPath,
		TLSKeyFile:      cfg.TLS.KeyPath,
		TLSClientCAFile: cfg.TLS.ClientCAPath,
		AllowInsecure:   cfg.TLS.AllowInsecure,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Auth: poolserver.AuthConfig{
			APITokens:        cfg.Auth.APITokens,
			AllowedClientCNs: cfg.Auth.MTLS.AllowedCommonNames,
			JWT: poolserver.JWTConfig{
				Secret:     cfg.Auth.JWT.Secret,
				Issuer:     cfg.Auth.JWT.Issuer,
				Audience:   cfg.Auth.JWT.Audience,
				ScopeClaim: cfg.Auth.JWT.ScopeClaim,
				Leeway:     cfg.Auth.JWT.Leeway,
			},
		},
		Logger:    logger,
		Recorder:  metrics,
		Telemetry: telCfg.Enabled(),
	})
	if err != nil {
		return fmt.Errorf("configure grpc: %w", err)
	}
	grpcServer := grpc.NewServer(serverOpts...)
	poolv1.RegisterPoolServiceServer(grpcServer, svc)

	listener, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.ListenAddress, err)
	}
	if cfg.TLS.AllowInsecure {
		tcpAddr, _ := listener.Addr().(*net.TCPAddr)
		loopback := tcpAddr != nil && tcpAddr.IP != nil && tcpAddr.IP.IsLoopback()
		if cfg.Environment != "dev" && !loopback {
			_ = listener.Close()
			return errors.New("plaintext poold mode is restricted to loopback listeners or dev environment")
		}
	}
	if cfg.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, cfg.MaxConnections)
	}

	opsServer := &http.Server{
		Addr:              cfg.MetricsListenAddress,
		Handler:           newOpsHandler(ctrl, prometheus.DefaultGatherer, pingDatabase(db)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errs := make(chan error, 3)
	go func() {
		if err := dispatcher.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			errs <- fmt.Errorf("settlement dispatcher: %w", err)
		}
	}()
	go func() {
		logger.Info("poold listening", "address", cfg.ListenAddress)
		if err := grpcServer.Serve(listener); err != nil {
			errs <- fmt.Errorf("serve gRPC: %w", err)
		}
	}()
	go func() {
		logger.Info("ops endpoint listening", "address", cfg.MetricsListenAddress)
		if err := opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("serve ops: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errs:
	}
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	done := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("forcing server stop")
		grpcServer.Stop()
	}
	if err := opsServer.Shutdown(shutdownCtx); err != nil {
		_ = opsServer.Close()
	}
	if err := journal.Save(ctrl.Ledger().Snapshot()); err != nil {
		logger.Error("final snapshot", "error", err)
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}

// loadLedger restores the persisted ledger. Persisted risk parameters win over
// the configured ones because UpdateParams writes through the journal.
func loadLedger(journal *poolstore.Store, cfg pool.Config, logger *slog.Logger) (*pool.Ledger, error) {
	snap, found, err := journal.Load()
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if !found {
		logger.Info("starting with an empty ledger")
		return pool.NewLedger(cfg.Params()), nil
	}
	if snap.Pool.Params != cfg.Params() {
		logger.Warn("persisted risk parameters differ from config; keeping persisted values",
			"collateral_factor_bps", snap.Pool.Params.CollateralFactorBps,
			"liquidation_bonus_bps", snap.Pool.Params.LiquidationBonusBps,
			"liquidation_threshold_bps", snap.Pool.Params.LiquidationThresholdBps)
	}
	logger.Info("ledger restored", "accounts", len(snap.Accounts), "total_supply", snap.Pool.TotalSupply.Dec())
	return pool.NewLedgerFromSnapshot(snap), nil
}

func migrate(db *gorm.DB) error {
	for name, fn := range map[string]func(*gorm.DB) error{
		"access":     access.AutoMigrate,
		"payments":   payments.AutoMigrate,
		"settlement": settlement.AutoMigrate,
	} {
		if err := fn(db); err != nil {
			return fmt.Errorf("migrate %s: %w", name, err)
		}
	}
	return nil
}

func pingDatabase(db *gorm.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		return nil
	}
}
