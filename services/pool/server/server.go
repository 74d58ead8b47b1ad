package server

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"github.com/holiman/uint256"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vusdpool/native/pool"
	poolv1 "vusdpool/proto/pool/v1"
	"vusdpool/services/access"
	"vusdpool/services/payments"
	"vusdpool/services/settlement"
)

// AccessManager administers the allow-lists and the freeze registry.
type AccessManager interface {
	ManageAllowList(ctx context.Context, event string, actors []string, action access.Action, by string) error
	AllowList(ctx context.Context, event string) ([]string, error)
	Freeze(ctx context.Context, actor, reason, by string) error
	Unfreeze(ctx context.Context, actor string) error
}

// PaymentService tracks payment intents and gates borrows on them.
type PaymentService interface {
	payments.Gate
	Create(ctx context.Context, reference string, actor pool.AccountID, amount *uint256.Int) (payments.Intent, error)
	Get(ctx context.Context, reference string) (payments.Intent, error)
	RecordEvent(ctx context.Context, evt payments.Event) (payments.Intent, error)
	ListByActor(ctx context.Context, actor pool.AccountID, limit int) ([]payments.Intent, error)
}

// PauseSwitch toggles runtime pauses on top of the configured ones.
type PauseSwitch interface {
	Set(module string, paused bool)
	List() []string
}

// HistorySource lists settlement records per account.
type HistorySource interface {
	History(ctx context.Context, q settlement.HistoryQuery) ([]settlement.Record, error)
}

// Deps wires the service. Access, Payments, History and Pauses are optional;
// the methods that need them report Unimplemented when absent.
type Deps struct {
	Controller *pool.Controller
	Access     AccessManager
	Payments   PaymentService
	History    HistorySource
	Pauses     PauseSwitch
	Identity   IdentityPolicy
	Logger     *slog.Logger
}

// Service implements vusd.pool.v1.PoolService on top of the pool controller.
type Service struct {
	poolv1.UnimplementedPoolServiceServer

	ctrl     *pool.Controller
	access   AccessManager
	payments PaymentService
	history  HistorySource
	pauses   PauseSwitch
	identity IdentityPolicy
	logger   *slog.Logger
}

var _ poolv1.PoolServiceServer = (*Service)(nil)

// New constructs the service.
func New(deps Deps) (*Service, error) {
	if deps.Controller == nil {
		return nil, errors.New("pool controller required")
	}
	if err := deps.Identity.Validate(); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		ctrl:     deps.Controller,
		access:   deps.Access,
		payments: deps.Payments,
		history:  deps.History,
		pauses:   deps.Pauses,
		identity: deps.Identity,
		logger:   logger,
	}, nil
}

type amountOp func(ctx context.Context, actor pool.AccountID, amount *uint256.Int) (pool.Receipt, error)

func (s *Service) Deposit(ctx context.Context, req *poolv1.AmountRequest) (*poolv1.TxResponse, error) {
	return s.runAmount(ctx, "deposit", req, s.ctrl.Deposit)
}

func (s *Service) Withdraw(ctx context.Context, req *poolv1.AmountRequest) (*poolv1.TxResponse, error) {
	return s.runAmount(ctx, "withdraw", req, s.ctrl.Withdraw)
}

func (s *Service) Borrow(ctx context.Context, req *poolv1.AmountRequest) (*poolv1.TxResponse, error) {
	return s.runAmount(ctx, "borrow", req, s.ctrl.Borrow)
}

func (s *Service) Repay(ctx context.Context, req *poolv1.AmountRequest) (*poolv1.TxResponse, error) {
	return s.runAmount(ctx, "repay", req, s.ctrl.Repay)
}

func (s *Service) DepositCollateral(ctx context.Context, req *poolv1.AmountRequest) (*poolv1.TxResponse, error) {
	return s.runAmount(ctx, "deposit_collateral", req, s.ctrl.DepositCollateral)
}

func (s *Service) WithdrawCollateral(ctx context.Context, req *poolv1.AmountRequest) (*poolv1.TxResponse, error) {
	return s.runAmount(ctx, "withdraw_collateral", req, s.ctrl.WithdrawCollateral)
}

func (s *Service) runAmount(ctx context.Context, action string, req *poolv1.AmountRequest, op amountOp) (*poolv1.TxResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	actor, err := s.account(req.Account)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	receipt, err := op(ctx, actor, amount)
	if err != nil {
		return nil, s.translate(action, err)
	}
	return &poolv1.TxResponse{Receipt: s.toReceipt(receipt)}, nil
}

// BorrowWithPayment borrows only against a succeeded, unconsumed payment
// intent for the same account and amount. The intent is released if the
// borrow is refused.
func (s *Service) BorrowWithPayment(ctx context.Context, req *poolv1.BorrowWithPaymentRequest) (*poolv1.TxResponse, error) {
	if s.payments == nil {
		return nil, status.Error(codes.Unimplemented, "payment intents are not configured")
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	actor, err := s.account(req.Account)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	ref := strings.TrimSpace(req.PaymentReference)
	if ref == "" {
		return nil, status.Error(codes.InvalidArgument, "payment_reference required")
	}
	if _, err := s.payments.Consume(ctx, ref, actor, amount); err != nil {
		return nil, s.translate("borrow_with_payment", err)
	}
	receipt, err := s.ctrl.Borrow(ctx, actor, amount)
	if err != nil {
		if relErr := s.payments.Release(context.WithoutCancel(ctx), ref); relErr != nil {
			s.logger.ErrorContext(ctx, "release payment intent failed", "reference", ref, "error", relErr)
		}
		return nil, s.translate("borrow_with_payment", err)
	}
	if err := s.payments.Bind(context.WithoutCancel(ctx), ref, receipt.ID); err != nil {
		s.logger.WarnContext(ctx, "bind payment intent failed", "reference", ref, "receipt", receipt.ID, "error", err)
	}
	return &poolv1.TxResponse{Receipt: s.toReceipt(receipt)}, nil
}

func (s *Service) Liquidate(ctx context.Context, req *poolv1.LiquidateRequest) (*poolv1.TxResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	liquidator, err := s.account(req.Liquidator)
	if err != nil {
		return nil, err
	}
	liquidatee, err := s.account(req.Liquidatee)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	receipt, err := s.ctrl.Liquidate(ctx, liquidator, liquidatee, amount)
	if err != nil {
		return nil, s.translate("liquidate", err)
	}
	return &poolv1.TxResponse{Receipt: s.toReceipt(receipt)}, nil
}

func (s *Service) GetAccount(ctx context.Context, req *poolv1.GetAccountRequest) (*poolv1.GetAccountResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	id, err := s.account(req.Account)
	if err != nil {
		return nil, err
	}
	return &poolv1.GetAccountResponse{Position: toPosition(id, s.ctrl.Account(id), s.ctrl.Params())}, nil
}

func (s *Service) GetPool(context.Context, *poolv1.GetPoolRequest) (*poolv1.GetPoolResponse, error) {
	return &poolv1.GetPoolResponse{Pool: toPool(s.ctrl.Status())}, nil
}

func (s *Service) UpdateParams(ctx context.Context, req *poolv1.UpdateParamsRequest) (*poolv1.GetPoolResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	params := pool.Params{
		CollateralFactorBps:     req.CollateralFactorBps,
		LiquidationBonusBps:     req.LiquidationBonusBps,
		LiquidationThresholdBps: req.LiquidationThresholdBps,
	}
	if err := s.ctrl.SetParams(ctx, params); err != nil {
		return nil, s.translate("update_params", err)
	}
	s.logger.InfoContext(ctx, "pool params updated", "by", principalName(ctx))
	return &poolv1.GetPoolResponse{Pool: toPool(s.ctrl.Status())}, nil
}

func (s *Service) ManageAllowList(ctx context.Context, req *poolv1.ManageAllowListRequest) (*poolv1.ManageAllowListResponse, error) {
	if s.access == nil {
		return nil, status.Error(codes.Unimplemented, "access registry is not configured")
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	event, err := normalizeIdentifier(req.Event)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "event required")
	}
	actors := make([]string, 0, len(req.Accounts))
	for _, raw := range req.Accounts {
		id, err := s.account(raw)
		if err != nil {
			return nil, err
		}
		actors = append(actors, string(id))
	}
	action := access.Action(strings.ToLower(strings.TrimSpace(req.Action)))
	if err := s.access.ManageAllowList(ctx, event, actors, action, principalName(ctx)); err != nil {
		return nil, s.translate("manage_allow_list", err)
	}
	list, err := s.access.AllowList(ctx, event)
	if err != nil {
		return nil, s.translate("manage_allow_list", err)
	}
	return &poolv1.ManageAllowListResponse{Event: event, Accounts: list}, nil
}

func (s *Service) Freeze(ctx context.Context, req *poolv1.FreezeRequest) (*poolv1.FreezeResponse, error) {
	if s.access == nil {
		return nil, status.Error(codes.Unimplemented, "access registry is not configured")
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	id, err := s.account(req.Account)
	if err != nil {
		return nil, err
	}
	if err := s.access.Freeze(ctx, string(id), strings.TrimSpace(req.Reason), principalName(ctx)); err != nil {
		return nil, s.translate("freeze", err)
	}
	s.logger.WarnContext(ctx, "account frozen", "actor", string(id), "by", principalName(ctx))
	return &poolv1.FreezeResponse{Account: string(id), Frozen: true}, nil
}

func (s *Service) Unfreeze(ctx context.Context, req *poolv1.FreezeRequest) (*poolv1.FreezeResponse, error) {
	if s.access == nil {
		return nil, status.Error(codes.Unimplemented, "access registry is not configured")
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	id, err := s.account(req.Account)
	if err != nil {
		return nil, err
	}
	if err := s.access.Unfreeze(ctx, string(id)); err != nil {
		return nil, s.translate("unfreeze", err)
	}
	s.logger.InfoContext(ctx, "account unfrozen", "actor", string(id), "by", principalName(ctx))
	return &poolv1.FreezeResponse{Account: string(id), Frozen: false}, nil
}

func (s *Service) CreatePaymentIntent(ctx context.Context, req *poolv1.CreatePaymentIntentRequest) (*poolv1.PaymentIntentResponse, error) {
	if s.payments == nil {
		return nil, status.Error(codes.Unimplemented, "payment intents are not configured")
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	actor, err := s.account(req.Account)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	intent, err := s.payments.Create(ctx, req.Reference, actor, amount)
	if err != nil {
		return nil, s.translate("create_payment_intent", err)
	}
	return &poolv1.PaymentIntentResponse{Intent: toIntent(intent)}, nil
}

func (s *Service) GetPaymentIntent(ctx context.Context, req *poolv1.GetPaymentIntentRequest) (*poolv1.PaymentIntentResponse, error) {
	if s.payments == nil {
		return nil, status.Error(codes.Unimplemented, "payment intents are not configured")
	}
	if req == nil || strings.TrimSpace(req.Reference) == "" {
		return nil, status.Error(codes.InvalidArgument, "reference required")
	}
	intent, err := s.payments.Get(ctx, strings.TrimSpace(req.Reference))
	if err != nil {
		return nil, s.translate("get_payment_intent", err)
	}
	return &poolv1.PaymentIntentResponse{Intent: toIntent(intent)}, nil
}

// RecordPaymentEvent applies a gateway webhook to the matching intent.
func (s *Service) RecordPaymentEvent(ctx context.Context, req *poolv1.RecordPaymentEventRequest) (*poolv1.PaymentIntentResponse, error) {
	if s.payments == nil {
		return nil, status.Error(codes.Unimplemented, "payment intents are not configured")
	}
	if req == nil || strings.TrimSpace(req.Reference) == "" {
		return nil, status.Error(codes.InvalidArgument, "reference required")
	}
	intent, err := s.payments.RecordEvent(ctx, payments.Event{
		Type:      strings.TrimSpace(req.Type),
		Reference: strings.TrimSpace(req.Reference),
		Reason:    strings.TrimSpace(req.Reason),
	})
	if err != nil {
		return nil, s.translate("record_payment_event", err)
	}
	return &poolv1.PaymentIntentResponse{Intent: toIntent(intent)}, nil
}

// ListPaymentIntents returns the intents created for an account, newest
// first.
func (s *Service) ListPaymentIntents(ctx context.Context, req *poolv1.ListPaymentIntentsRequest) (*poolv1.ListPaymentIntentsResponse, error) {
	if s.payments == nil {
		return nil, status.Error(codes.Unimplemented, "payment intents are not configured")
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	id, err := s.account(req.Account)
	if err != nil {
		return nil, err
	}
	intents, err := s.payments.ListByActor(ctx, id, req.Limit)
	if err != nil {
		return nil, s.translate("list_payment_intents", err)
	}
	out := make([]*poolv1.PaymentIntent, 0, len(intents))
	for _, intent := range intents {
		out = append(out, toIntent(intent))
	}
	return &poolv1.ListPaymentIntentsResponse{Intents: out}, nil
}

// SetPause pauses or resumes the pool or a single operation until the
// process restarts. Pauses from the configuration file stay in force.
func (s *Service) SetPause(ctx context.Context, req *poolv1.SetPauseRequest) (*poolv1.PauseResponse, error) {
	if s.pauses == nil {
		return nil, status.Error(codes.Unimplemented, "runtime pauses are not configured")
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	module := strings.ToLower(strings.TrimSpace(req.Module))
	if !pool.IsPauseScope(module) {
		return nil, status.Error(codes.InvalidArgument, "unknown_pause_scope")
	}
	s.pauses.Set(module, req.Paused)
	s.logger.WarnContext(ctx, "pool pause updated", "module", module, "paused", req.Paused, "by", principalName(ctx))
	return &poolv1.PauseResponse{Paused: s.pauses.List()}, nil
}

// ListSettlements returns the outbox history where the account is either
// party, newest first.
func (s *Service) ListSettlements(ctx context.Context, req *poolv1.ListSettlementsRequest) (*poolv1.ListSettlementsResponse, error) {
	if s.history == nil {
		return nil, status.Error(codes.Unimplemented, "settlement history is not configured")
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}
	id, err := s.account(req.Account)
	if err != nil {
		return nil, err
	}
	q := settlement.HistoryQuery{Actor: string(id), Limit: req.Limit}
	for _, op := range req.Ops {
		if op = strings.TrimSpace(op); op != "" {
			q.Ops = append(q.Ops, pool.Operation(op))
		}
	}
	recs, err := s.history.History(ctx, q)
	if err != nil {
		return nil, s.translate("list_settlements", err)
	}
	out := make([]*poolv1.Settlement, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toSettlement(rec))
	}
	return &poolv1.ListSettlementsResponse{Settlements: out}, nil
}

func (s *Service) account(raw string) (pool.AccountID, error) {
	id, err := s.identity.Normalize(raw)
	if err != nil {
		return "", status.Error(codes.InvalidArgument, err.Error())
	}
	return id, nil
}

func (s *Service) translate(action string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	stErr := toStatus(err)
	switch status.Code(stErr) {
	case codes.Internal, codes.Aborted, codes.Unavailable:
		s.logger.Error("pool request failed", "action", action, "error", err)
	}
	return stErr
}

func parseAmount(raw string) (*uint256.Int, error) {
	amount, err := uint256.FromDecimal(strings.TrimSpace(raw))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid_amount")
	}
	return amount, nil
}

func principalName(ctx context.Context) string {
	if p, ok := PrincipalFrom(ctx); ok {
		return p.Subject
	}
	return "anonymous"
}

func toPosition(id pool.AccountID, acct pool.Account, params pool.Params) *poolv1.Position {
	capacity := pool.BorrowCapacity(params, acct)
	available := pool.AvailableToBorrow(params, acct)
	pos := &poolv1.Position{
		Account:         string(id),
		Balance:         acct.Balance.Dec(),
		Collateral:      acct.Collateral.Dec(),
		Borrowed:        acct.Borrowed.Dec(),
		BorrowCapacity:  capacity.Dec(),
		AvailableBorrow: available.Dec(),
		Liquidatable:    pool.IsLiquidatable(params, acct),
	}
	if hf := pool.HealthFactorBps(params, acct); hf != math.MaxUint64 {
		pos.HealthFactorBps = hf
	}
	return pos
}

func toPool(st pool.Status) *poolv1.Pool {
	return &poolv1.Pool{
		TotalSupply:             st.Pool.TotalSupply.Dec(),
		PoolBalance:             st.Pool.PoolBalance.Dec(),
		CollateralFactorBps:     st.Pool.CollateralFactorBps,
		LiquidationBonusBps:     st.Pool.LiquidationBonusBps,
		LiquidationThresholdBps: st.Pool.LiquidationThresholdBps,
		Accounts:                st.Accounts,
		LiquidityBps:            st.LiquidityBps,
		NeedsRegeneration:       st.NeedsRegeneration,
	}
}

func (s *Service) toReceipt(r pool.Receipt) *poolv1.Receipt {
	out := &poolv1.Receipt{
		ID:           r.ID,
		Op:           string(r.Op),
		Actor:        string(r.Actor),
		Counterparty: string(r.Counterparty),
		Amount:       r.Amount.Dec(),
		Position:     toPosition(r.Actor, r.Account, r.Pool.Params),
		Pool:         toPool(s.ctrl.Status()),
		CommittedAt:  r.CommittedAt,
	}
	if !r.Bonus.IsZero() {
		out.Bonus = r.Bonus.Dec()
	}
	if r.Counterparty != "" {
		out.CounterpartyPosition = toPosition(r.Counterparty, r.CounterpartyAccount, r.Pool.Params)
	}
	return out
}

func toIntent(in payments.Intent) *poolv1.PaymentIntent {
	return &poolv1.PaymentIntent{
		Reference:     in.Reference,
		Account:       in.Actor,
		Amount:        in.Amount,
		Status:        string(in.Status),
		Consumed:      in.Consumed,
		ReceiptID:     in.ReceiptID,
		FailureReason: in.FailureReason,
		UpdatedAt:     in.UpdatedAt,
	}
}

func toSettlement(rec settlement.Record) *poolv1.Settlement {
	out := &poolv1.Settlement{
		ReceiptID:    rec.ID,
		Op:           rec.Op,
		Actor:        rec.Actor,
		Counterparty: rec.Counterparty,
		Amount:       rec.Amount,
		Status:       string(rec.Status),
		Attempts:     rec.Attempts,
		ExternalRef:  rec.ExternalRef,
		Digest:       rec.Digest,
		LastError:    rec.LastError,
		CommittedAt:  rec.CommittedAt,
	}
	if rec.Bonus != "0" {
		out.Bonus = rec.Bonus
	}
	return out
}
