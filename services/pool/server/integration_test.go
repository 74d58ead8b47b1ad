package server

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"gorm.io/gorm"

	"vusdpool/native/pool"
	poolv1 "vusdpool/proto/pool/v1"
	"vusdpool/services/access"
	"vusdpool/services/payments"
	poolclient "vusdpool/services/pool/client"
	"vusdpool/services/settlement"
	"vusdpool/storage/sqldb/sqldbtest"
)

const (
	bufSize   = 1024 * 1024
	testToken = "integration-token"
)

type stack struct {
	api  poolv1.PoolServiceClient
	anon poolv1.PoolServiceClient
	ctrl *pool.Controller
}

func migrateAll(db *gorm.DB) error {
	if err := access.AutoMigrate(db); err != nil {
		return err
	}
	if err := payments.AutoMigrate(db); err != nil {
		return err
	}
	return settlement.AutoMigrate(db)
}

func startStack(t *testing.T, cfg pool.Config) *stack {
	t.Helper()
	db := sqldbtest.Open(t, migrateAll)
	reg := access.NewRegistry(db)
	intents := payments.NewRegistry(db)
	outbox := settlement.NewOutbox(db)

	opts := []pool.Option{pool.WithSettler(outbox), pool.WithActorGate(reg)}
	if cfg.GateEvent != "" {
		opts = append(opts, pool.WithAllowList(reg))
	}
	ctrl, err := pool.NewController(nil, cfg, opts...)
	require.NoError(t, err)

	svc, err := New(Deps{Controller: ctrl, Access: reg, Payments: intents, History: outbox})
	require.NoError(t, err)

	serverOpts, err := ServerOptions(Config{AllowInsecure: true, Auth: AuthConfig{APITokens: []string{testToken}}})
	require.NoError(t, err)
	srv := grpc.NewServer(serverOpts...)
	poolv1.RegisterPoolServiceServer(srv, svc)

	listener := bufconn.Listen(bufSize)
	go func() { _ = srv.Serve(listener) }()
	t.Cleanup(srv.Stop)

	dial := func(extra ...grpc.DialOption) poolv1.PoolServiceClient {
		opts := append([]grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return listener.DialContext(ctx)
			}),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		}, extra...)
		c, err := poolclient.Dial(context.Background(), "passthrough:///bufnet", opts...)
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		return c.Raw()
	}
	return &stack{
		api:  dial(grpc.WithPerRPCCredentials(poolclient.BearerToken{Token: testToken, AllowInsecure: true})),
		anon: dial(),
		ctrl: ctrl,
	}
}

func requireCode(t *testing.T, err error, code codes.Code, msg string) {
	t.Helper()
	st, ok := status.FromError(err)
	require.True(t, ok, "expected status error, got %v", err)
	require.Equal(t, code, st.Code(), st.Message())
	if msg != "" {
		require.Equal(t, msg, st.Message())
	}
}

func TestIntegrationBorrowLifecycle(t *testing.T) {
	ctx := context.Background()
	s := startStack(t, pool.DefaultConfig())

	pl, err := s.anon.GetPool(ctx, &poolv1.GetPoolRequest{})
	require.NoError(t, err)
	require.Equal(t, "0", pl.Pool.TotalSupply)
	require.Equal(t, uint64(7500), pl.Pool.CollateralFactorBps)

	_, err = s.anon.Deposit(ctx, &poolv1.AmountRequest{Account: "lp", Amount: "1"})
	requireCode(t, err, codes.Unauthenticated, "")

	resp, err := s.api.Deposit(ctx, &poolv1.AmountRequest{Account: " lp ", Amount: "200000"})
	require.NoError(t, err)
	require.Equal(t, "lp", resp.Receipt.Actor)
	require.Equal(t, "200000", resp.Receipt.Position.Balance)
	require.Equal(t, "200000", resp.Receipt.Pool.PoolBalance)

	_, err = s.api.DepositCollateral(ctx, &poolv1.AmountRequest{Account: "alice", Amount: "200000"})
	require.NoError(t, err)

	resp, err = s.api.Borrow(ctx, &poolv1.AmountRequest{Account: "alice", Amount: "150000"})
	require.NoError(t, err)
	require.Equal(t, "150000", resp.Receipt.Position.Borrowed)
	require.Equal(t, "0", resp.Receipt.Position.AvailableBorrow)
	require.Equal(t, uint64(10666), resp.Receipt.Position.HealthFactorBps)

	_, err = s.api.Borrow(ctx, &poolv1.AmountRequest{Account: "alice", Amount: "1"})
	requireCode(t, err, codes.FailedPrecondition, "insufficient_collateral")

	_, err = s.api.Borrow(ctx, &poolv1.AmountRequest{Account: "alice", Amount: "ten"})
	requireCode(t, err, codes.InvalidArgument, "invalid_amount")
	_, err = s.api.Borrow(ctx, &poolv1.AmountRequest{Account: "alice", Amount: "0"})
	requireCode(t, err, codes.InvalidArgument, "invalid_amount")

	_, err = s.api.Liquidate(ctx, &poolv1.LiquidateRequest{Liquidator: "lp", Liquidatee: "alice", Amount: "1000"})
	requireCode(t, err, codes.FailedPrecondition, "not_undercollateralized")

	acct, err := s.anon.GetAccount(ctx, &poolv1.GetAccountRequest{Account: "alice"})
	require.NoError(t, err)
	require.Equal(t, "150000", acct.Position.Borrowed)
	require.False(t, acct.Position.Liquidatable)

	hist, err := s.anon.ListSettlements(ctx, &poolv1.ListSettlementsRequest{Account: "alice"})
	require.NoError(t, err)
	require.Len(t, hist.Settlements, 2)
	require.Equal(t, "borrow", hist.Settlements[0].Op)
	require.Equal(t, string(settlement.StatusStaged), hist.Settlements[0].Status)

	hist, err = s.anon.ListSettlements(ctx, &poolv1.ListSettlementsRequest{Account: "alice", Ops: []string{"deposit_collateral"}})
	require.NoError(t, err)
	require.Len(t, hist.Settlements, 1)
}

func TestIntegrationFreezeAndAllowList(t *testing.T) {
	ctx := context.Background()
	cfg := pool.DefaultConfig()
	cfg.GateEvent = "launch"
	s := startStack(t, cfg)

	_, err := s.api.Deposit(ctx, &poolv1.AmountRequest{Account: "alice", Amount: "10"})
	requireCode(t, err, codes.PermissionDenied, "not_allow_listed")

	list, err := s.api.ManageAllowList(ctx, &poolv1.ManageAllowListRequest{Event: "launch", Accounts: []string{"alice", "bob"}, Action: "ADD"})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "bob"}, list.Accounts)

	_, err = s.api.Deposit(ctx, &poolv1.AmountRequest{Account: "alice", Amount: "10"})
	require.NoError(t, err)

	frozen, err := s.api.Freeze(ctx, &poolv1.FreezeRequest{Account: "alice", Reason: "investigation"})
	require.NoError(t, err)
	require.True(t, frozen.Frozen)

	_, err = s.api.Withdraw(ctx, &poolv1.AmountRequest{Account: "alice", Amount: "10"})
	requireCode(t, err, codes.PermissionDenied, "actor_frozen")

	_, err = s.api.Unfreeze(ctx, &poolv1.FreezeRequest{Account: "alice"})
	require.NoError(t, err)
	_, err = s.api.Withdraw(ctx, &poolv1.AmountRequest{Account: "alice", Amount: "10"})
	require.NoError(t, err)

	_, err = s.api.ManageAllowList(ctx, &poolv1.ManageAllowListRequest{Event: "launch", Accounts: []string{"alice"}, Action: "replace"})
	requireCode(t, err, codes.InvalidArgument, "")
}

func TestIntegrationBorrowWithPayment(t *testing.T) {
	ctx := context.Background()
	s := startStack(t, pool.DefaultConfig())

	_, err := s.api.Deposit(ctx, &poolv1.AmountRequest{Account: "lp", Amount: "1000"})
	require.NoError(t, err)

	created, err := s.api.CreatePaymentIntent(ctx, &poolv1.CreatePaymentIntentRequest{Account: "bob", Amount: "50"})
	require.NoError(t, err)
	ref := created.Intent.Reference
	require.NotEmpty(t, ref)
	require.Equal(t, string(payments.StatusPending), created.Intent.Status)

	borrow := &poolv1.BorrowWithPaymentRequest{Account: "bob", Amount: "50", PaymentReference: ref}
	_, err = s.api.BorrowWithPayment(ctx, borrow)
	requireCode(t, err, codes.FailedPrecondition, "payment_not_succeeded")

	_, err = s.api.RecordPaymentEvent(ctx, &poolv1.RecordPaymentEventRequest{Type: payments.EventSucceeded, Reference: ref})
	require.NoError(t, err)

	// Without collateral the borrow is refused and the intent stays usable.
	_, err = s.api.BorrowWithPayment(ctx, borrow)
	requireCode(t, err, codes.FailedPrecondition, "insufficient_collateral")
	intent, err := s.anon.GetPaymentIntent(ctx, &poolv1.GetPaymentIntentRequest{Reference: ref})
	require.NoError(t, err)
	require.False(t, intent.Intent.Consumed)

	_, err = s.api.DepositCollateral(ctx, &poolv1.AmountRequest{Account: "bob", Amount: "100"})
	require.NoError(t, err)

	_, err = s.api.BorrowWithPayment(ctx, &poolv1.BorrowWithPaymentRequest{Account: "bob", Amount: "60", PaymentReference: ref})
	requireCode(t, err, codes.FailedPrecondition, "payment_mismatch")

	resp, err := s.api.BorrowWithPayment(ctx, borrow)
	require.NoError(t, err)
	require.Equal(t, "50", resp.Receipt.Position.Borrowed)

	intent, err = s.anon.GetPaymentIntent(ctx, &poolv1.GetPaymentIntentRequest{Reference: ref})
	require.NoError(t, err)
	require.True(t, intent.Intent.Consumed)
	require.Equal(t, resp.Receipt.ID, intent.Intent.ReceiptID)

	_, err = s.api.BorrowWithPayment(ctx, borrow)
	requireCode(t, err, codes.FailedPrecondition, "payment_consumed")

	_, err = s.api.GetPaymentIntent(ctx, &poolv1.GetPaymentIntentRequest{Reference: "pi_missing"})
	requireCode(t, err, codes.NotFound, "not_found")
}

func TestIntegrationUpdateParams(t *testing.T) {
	ctx := context.Background()
	s := startStack(t, pool.DefaultConfig())

	resp, err := s.api.UpdateParams(ctx, &poolv1.UpdateParamsRequest{CollateralFactorBps: 8000, LiquidationBonusBps: 10500, LiquidationThresholdBps: 8500})
	require.NoError(t, err)
	require.Equal(t, uint64(8000), resp.Pool.CollateralFactorBps)
	require.Equal(t, uint64(8000), s.ctrl.Params().CollateralFactorBps)

	_, err = s.api.UpdateParams(ctx, &poolv1.UpdateParamsRequest{CollateralFactorBps: 9000, LiquidationBonusBps: 10500, LiquidationThresholdBps: 8500})
	requireCode(t, err, codes.InvalidArgument, "invalid_params")
}
