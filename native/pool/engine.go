package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	nativecommon "vusdpool/native/common"
)

// Settler hands a committed receipt to the external settlement layer. It is
// called after the controller lock is released.
type Settler interface {
	Settle(ctx context.Context, receipt Receipt) error
}

// Journal durably records the post-commit state of the touched rows. It is
// called while the controller lock is held and must not block on the network.
type Journal interface {
	Persist(state PoolState, accounts map[AccountID]Account) error
}

// AllowList answers whether actor is admitted to event.
type AllowList interface {
	IsAllowed(ctx context.Context, event string, actor AccountID) (bool, error)
}

// Observer receives operation outcomes for metrics.
type Observer interface {
	RecordOperation(op string, outcome string, duration time.Duration)
	RecordPool(status Status)
	RecordCompensation(op string, outcome string)
}

type noopObserver struct{}

func (noopObserver) RecordOperation(string, string, time.Duration) {}
func (noopObserver) RecordPool(Status) {}
func (noopObserver) RecordCompensation(string, string) {}

// Controller executes pool operations as atomic read-check-write transitions
// over a Ledger. Every operation holds a single lock from the first ledger
// read until the mutations are applied and journaled.
type Controller struct {
	ledger   *Ledger
	cfg      Config
	pauses   nativecommon.PauseView
	gate     nativecommon.ActorGate
	allow    AllowList
	settler  Settler
	journal  Journal
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string

	mu          sync.Mutex
	compensated map[string]struct{}
}

// Option customises the controller instance.
type Option func(*Controller)

// WithSettler wires the settlement hand-off performed after each commit.
func WithSettler(s Settler) Option {
	return func(c *Controller) { c.settler = s }
}

// WithJournal wires the local persistence performed under the lock.
func WithJournal(j Journal) Option {
	return func(c *Controller) { c.journal = j }
}

// WithActorGate installs the governance predicate consulted for every actor.
func WithActorGate(g nativecommon.ActorGate) Option {
	return func(c *Controller) { c.gate = g }
}

// WithAllowList installs the allow-list consulted for gated operations.
func WithAllowList(a AllowList) Option {
	return func(c *Controller) { c.allow = a }
}

// WithPauses installs an external pause view in addition to the configured
// action pauses.
func WithPauses(p nativecommon.PauseView) Option {
	return func(c *Controller) { c.pauses = p }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithObserver wires the metrics sink.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// WithClock sets the function used to timestamp receipts.
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) { c.now = clock }
}

// WithIDGenerator overrides the receipt identifier source.
func WithIDGenerator(gen func() string) Option {
	return func(c *Controller) { c.newID = gen }
}

// NewController constructs a controller over ledger. A nil ledger is replaced
// with an empty one governed by cfg.
func NewController(ledger *Ledger, cfg Config, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ledger == nil {
		ledger = NewLedger(cfg.Params())
	}
	if err := ledger.Pool().Params.Validate(); err != nil {
		return nil, fmt.Errorf("ledger params: %w", err)
	}
	c := &Controller{
		ledger:      ledger,
		cfg:         cfg,
		observer:    noopObserver{},
		logger:      slog.Default(),
		now:         time.Now,
		newID:       uuid.NewString,
		compensated: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.observer == nil {
		c.observer = noopObserver{}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if cfg.GateEvent != "" && c.allow == nil {
		return nil, fmt.Errorf("pool: gate event %q configured without an allow-list", cfg.GateEvent)
	}
	return c, nil
}

// Ledger exposes the underlying ledger for read access and snapshots.
func (c *Controller) Ledger() *Ledger { return c.ledger }

// Account returns the current position of id.
func (c *Controller) Account(id AccountID) Account { return c.ledger.Get(id) }

// Params returns the active risk parameters.
func (c *Controller) Params() Params { return c.ledger.Pool().Params }

// Status reports the pool scalars together with the regeneration flag.
func (c *Controller) Status() Status {
	state := c.ledger.Pool()
	liquidity := LiquidityBps(state)
	return Status{
		Pool:              state,
		Accounts:          c.ledger.Len(),
		LiquidityBps:      liquidity,
		NeedsRegeneration: !state.TotalSupply.IsZero() && liquidity < c.cfg.RegenerationFloorBps,
	}
}

// Deposit credits amount to the actor balance and to the pool liquidity.
func (c *Controller) Deposit(ctx context.Context, actor AccountID, amount *uint256.Int) (Receipt, error) {
	req := request{op: OpDeposit, actor: actor, gated: true}
	return c.execute(ctx, req, func(_ PoolState, _, _ Account) (decision, error) {
		amt, err := positive(amount)
		if err != nil {
			return decision{}, err
		}
		return decision{
			amount: *amt,
			mutations: []Mutation{
				{Field: FieldPoolBalance, Delta: Credit(amt)},
				{Field: FieldTotalSupply, Delta: Credit(amt)},
				{Account: actor, Field: FieldBalance, Delta: Credit(amt)},
			},
		}, nil
	})
}

// Withdraw returns amount from the actor balance out of the pool liquidity.
func (c *Controller) Withdraw(ctx context.Context, actor AccountID, amount *uint256.Int) (Receipt, error) {
	req := request{op: OpWithdraw, actor: actor}
	return c.execute(ctx, req, func(state PoolState, acct, _ Account) (decision, error) {
		amt, err := positive(amount)
		if err != nil {
			return decision{}, err
		}
		if acct.Balance.Lt(amt) {
			return decision{}, ErrInsufficientBalance
		}
		if state.PoolBalance.Lt(amt) {
			return decision{}, ErrInsufficientPoolLiquidity
		}
		post := acct
		post.Balance.Sub(&post.Balance, amt)
		if !c.withdrawKeepsSolvency(state.Params, post) {
			return decision{}, ErrWouldBreachSolvency
		}
		return decision{
			amount: *amt,
			mutations: []Mutation{
				{Field: FieldPoolBalance, Delta: Debit(amt)},
				{Account: actor, Field: FieldBalance, Delta: Debit(amt)},
			},
		}, nil
	})
}

// Borrow lends amount out of the pool against the actor collateral.
func (c *Controller) Borrow(ctx context.Context, actor AccountID, amount *uint256.Int) (Receipt, error) {
	req := request{op: OpBorrow, actor: actor, gated: true}
	return c.execute(ctx, req, func(state PoolState, acct, _ Account) (decision, error) {
		// An insolvent account has no headroom at all, not even for a zero amount.
		if !IsSolvent(state.Params, acct) {
			return decision{}, ErrInsufficientCollateral
		}
		amt, err := positive(amount)
		if err != nil {
			return decision{}, err
		}
		if state.PoolBalance.Lt(amt) {
			return decision{}, ErrInsufficientPoolLiquidity
		}
		var next uint256.Int
		if _, overflow := next.AddOverflow(&acct.Borrowed, amt); overflow {
			return decision{}, ErrInsufficientCollateral
		}
		capacity := BorrowCapacity(state.Params, acct)
		if capacity.Lt(&next) {
			return decision{}, ErrInsufficientCollateral
		}
		return decision{
			amount: *amt,
			mutations: []Mutation{
				{Field: FieldPoolBalance, Delta: Debit(amt)},
				{Account: actor, Field: FieldBorrowed, Delta: Credit(amt)},
			},
		}, nil
	})
}

// Repay reduces the actor debt and returns amount to the pool.
func (c *Controller) Repay(ctx context.Context, actor AccountID, amount *uint256.Int) (Receipt, error) {
	req := request{op: OpRepay, actor: actor}
	return c.execute(ctx, req, func(_ PoolState, acct, _ Account) (decision, error) {
		amt, err := positive(amount)
		if err != nil {
			return decision{}, err
		}
		if acct.Borrowed.Lt(amt) {
			return decision{}, ErrExcessRepayment
		}
		return decision{
			amount: *amt,
			mutations: []Mutation{
				{Field: FieldPoolBalance, Delta: Credit(amt)},
				{Account: actor, Field: FieldBorrowed, Delta: Debit(amt)},
			},
		}, nil
	})
}

// Liquidate lets liquidator repay up to amount of the liquidatee debt in
// exchange for a bonus drawn from the liquidatee balance. The repayment is
// capped at the outstanding debt and the bonus at the liquidatee balance; the
// receipt carries the effective values.
func (c *Controller) Liquidate(ctx context.Context, liquidator, liquidatee AccountID, amount *uint256.Int) (Receipt, error) {
	req := request{op: OpLiquidate, actor: liquidator, counterparty: liquidatee}
	return c.execute(ctx, req, func(state PoolState, buyer, target Account) (decision, error) {
		if liquidator == liquidatee {
			return decision{}, ErrSelfLiquidation
		}
		if !IsLiquidatable(state.Params, target) {
			return decision{}, ErrNotUndercollateralized
		}
		amt, err := positive(amount)
		if err != nil {
			return decision{}, err
		}
		repay := *amt
		if target.Borrowed.Lt(&repay) {
			repay = target.Borrowed
		}
		if buyer.Balance.Lt(&repay) {
			return decision{}, ErrInsufficientLiquidatorBalance
		}
		bonus, err := LiquidationBonus(state.Params, &repay)
		if err != nil {
			return decision{}, err
		}
		if target.Balance.Lt(&bonus) {
			bonus = target.Balance
		}
		muts := []Mutation{
			{Account: liquidator, Field: FieldBalance, Delta: Debit(&repay)},
			{Account: liquidatee, Field: FieldBorrowed, Delta: Debit(&repay)},
		}
		if !bonus.IsZero() {
			muts = append(muts,
				Mutation{Account: liquidatee, Field: FieldBalance, Delta: Debit(&bonus)},
				Mutation{Account: liquidator, Field: FieldBalance, Delta: Credit(&bonus)},
			)
		}
		return decision{amount: repay, bonus: bonus, mutations: muts}, nil
	})
}

// DepositCollateral pledges amount of external collateral for the actor.
func (c *Controller) DepositCollateral(ctx context.Context, actor AccountID, amount *uint256.Int) (Receipt, error) {
	req := request{op: OpDepositCollateral, actor: actor}
	return c.execute(ctx, req, func(_ PoolState, _, _ Account) (decision, error) {
		amt, err := positive(amount)
		if err != nil {
			return decision{}, err
		}
		return decision{
			amount:    *amt,
			mutations: []Mutation{{Account: actor, Field: FieldCollateral, Delta: Credit(amt)}},
		}, nil
	})
}

// WithdrawCollateral releases amount of pledged collateral provided the
// position stays solvent.
func (c *Controller) WithdrawCollateral(ctx context.Context, actor AccountID, amount *uint256.Int) (Receipt, error) {
	req := request{op: OpWithdrawCollateral, actor: actor}
	return c.execute(ctx, req, func(state PoolState, acct, _ Account) (decision, error) {
		amt, err := positive(amount)
		if err != nil {
			return decision{}, err
		}
		if acct.Collateral.Lt(amt) {
			return decision{}, ErrInsufficientCollateralBalance
		}
		post := acct
		post.Collateral.Sub(&post.Collateral, amt)
		if !IsSolvent(state.Params, post) {
			return decision{}, ErrWouldBreachSolvency
		}
		return decision{
			amount:    *amt,
			mutations: []Mutation{{Account: actor, Field: FieldCollateral, Delta: Debit(amt)}},
		}, nil
	})
}

// SetParams replaces the risk parameters after validating them.
func (c *Controller) SetParams(ctx context.Context, params Params) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.ledger.Pool().Params
	c.ledger.SetParams(params)
	if c.journal != nil {
		if err := c.journal.Persist(c.ledger.Pool(), nil); err != nil {
			c.ledger.SetParams(prev)
			return fmt.Errorf("%w: %w", ErrJournalFailed, err)
		}
	}
	c.logger.InfoContext(ctx, "pool risk parameters updated",
		"collateralFactorBps", params.CollateralFactorBps,
		"liquidationBonusBps", params.LiquidationBonusBps,
		"liquidationThresholdBps", params.LiquidationThresholdBps)
	return nil
}

// Compensate applies the inverse of a committed receipt. It is idempotent per
// receipt id and is used when settlement fails after the commit. A reversal
// that would turn a solvent account insolvent is refused with
// ErrCompensationInsolvent and nothing is written; the receipt stays eligible
// so an operator can retry once the account is topped up.
func (c *Controller) Compensate(ctx context.Context, receipt Receipt) error {
	if receipt.ID == "" || len(receipt.Mutations) == 0 {
		return fmt.Errorf("pool: receipt %q has nothing to compensate", receipt.ID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, done := c.compensated[receipt.ID]; done {
		return nil
	}
	inverse := InverseMutations(receipt.Mutations)
	if err := c.compensationKeepsSolvency(inverse); err != nil {
		c.observer.RecordCompensation(string(receipt.Op), "blocked")
		c.logger.ErrorContext(ctx, "pool compensation refused", "receipt", receipt.ID, "op", string(receipt.Op), "actor", string(receipt.Actor), "error", err)
		return fmt.Errorf("pool: compensate %s: %w", receipt.ID, err)
	}
	if err := c.apply(ctx, OpCompensate, inverse); err != nil {
		c.observer.RecordCompensation(string(receipt.Op), "failed")
		c.logger.ErrorContext(ctx, "pool compensation failed", "receipt", receipt.ID, "op", string(receipt.Op), "actor", string(receipt.Actor), "error", err)
		return fmt.Errorf("pool: compensate %s: %w", receipt.ID, err)
	}
	c.compensated[receipt.ID] = struct{}{}
	c.observer.RecordCompensation(string(receipt.Op), "applied")
	c.logger.WarnContext(ctx, "pool operation compensated", "receipt", receipt.ID, "op", string(receipt.Op), "actor", string(receipt.Actor))
	return nil
}

// compensationKeepsSolvency must be called with c.mu held. Accounts that were
// already insolvent before the reversal are left to liquidation.
func (c *Controller) compensationKeepsSolvency(inverse []Mutation) error {
	post, err := c.ledger.Preview(inverse)
	if err != nil {
		// apply surfaces the same error.
		return nil
	}
	params := c.ledger.Pool().Params
	for id, acct := range post {
		if IsSolvent(params, acct) || !IsSolvent(params, c.ledger.Get(id)) {
			continue
		}
		return fmt.Errorf("%w: %s would hold collateral %s against debt %s",
			ErrCompensationInsolvent, id, acct.Collateral.Dec(), acct.Borrowed.Dec())
	}
	return nil
}

type request struct {
	op           Operation
	actor        AccountID
	counterparty AccountID
	// gated operations consult the allow-list when a gate event is set.
	gated bool
}

type decision struct {
	mutations []Mutation
	amount    uint256.Int
	bonus     uint256.Int
}

type planner func(state PoolState, actor, counterparty Account) (decision, error)

func (c *Controller) execute(ctx context.Context, req request, plan planner) (Receipt, error) {
	start := c.now()
	receipt, err := c.commit(ctx, req, plan)
	if err == nil {
		err = c.settle(ctx, receipt)
	}
	outcome := "ok"
	if err != nil {
		outcome = Kind(err)
	}
	c.observer.RecordOperation(string(req.op), outcome, c.now().Sub(start))
	if err != nil {
		return Receipt{}, err
	}
	c.observer.RecordPool(c.Status())
	return receipt, nil
}

func (c *Controller) admit(ctx context.Context, req request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req.actor == "" {
		return ErrInvalidActor
	}
	if req.op == OpLiquidate && req.counterparty == "" {
		return ErrInvalidActor
	}
	scope := moduleName + "." + string(req.op)
	if err := nativecommon.Guard(c.pauses, scope); err != nil {
		return err
	}
	if err := nativecommon.Guard(c.cfg.Pauses, scope); err != nil {
		return err
	}
	if c.gate != nil {
		ok, err := c.gate.Permitted(ctx, string(req.actor))
		if err != nil {
			return fmt.Errorf("pool: actor gate: %w", err)
		}
		if !ok {
			return ErrActorFrozen
		}
	}
	if req.gated && c.cfg.GateEvent != "" {
		ok, err := c.allow.IsAllowed(ctx, c.cfg.GateEvent, req.actor)
		if err != nil {
			return fmt.Errorf("pool: allow-list: %w", err)
		}
		if !ok {
			return ErrNotAllowListed
		}
	}
	return nil
}

func (c *Controller) commit(ctx context.Context, req request, plan planner) (Receipt, error) {
	if err := c.admit(ctx, req); err != nil {
		return Receipt{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.ledger.Pool()
	actor := c.ledger.Get(req.actor)
	var counterparty Account
	if req.counterparty != "" {
		counterparty = c.ledger.Get(req.counterparty)
	}
	d, err := plan(state, actor, counterparty)
	if err != nil {
		return Receipt{}, err
	}
	if err := c.apply(ctx, req.op, d.mutations); err != nil {
		return Receipt{}, err
	}

	receipt := Receipt{
		ID:           c.newID(),
		Op:           req.op,
		Actor:        req.actor,
		Counterparty: req.counterparty,
		Amount:       d.amount,
		Bonus:        d.bonus,
		Mutations:    d.mutations,
		Account:      c.ledger.Get(req.actor),
		Pool:         c.ledger.Pool(),
		CommittedAt:  c.now(),
	}
	if req.counterparty != "" {
		receipt.CounterpartyAccount = c.ledger.Get(req.counterparty)
	}
	c.logger.DebugContext(ctx, "pool operation committed", "op", string(req.op), "actor", string(req.actor), "amount", d.amount.Dec(), "receipt", receipt.ID)
	return receipt, nil
}

// apply must be called with c.mu held.
func (c *Controller) apply(ctx context.Context, op Operation, muts []Mutation) error {
	if err := c.ledger.ApplyDelta(muts); err != nil {
		if IsFatal(err) {
			c.logger.ErrorContext(ctx, "pool ledger invariant violated", "op", string(op), "error", err)
		}
		return err
	}
	if c.journal == nil {
		return nil
	}
	if err := c.journal.Persist(c.ledger.Pool(), c.touched(muts)); err != nil {
		journalErr := fmt.Errorf("%w: %w", ErrJournalFailed, err)
		if rbErr := c.ledger.ApplyDelta(InverseMutations(muts)); rbErr != nil {
			c.logger.ErrorContext(ctx, "pool rollback after journal failure failed", "op", string(op), "error", rbErr)
			return errors.Join(journalErr, rbErr)
		}
		return journalErr
	}
	return nil
}

func (c *Controller) touched(muts []Mutation) map[AccountID]Account {
	accounts := make(map[AccountID]Account)
	for _, m := range muts {
		if m.Account == "" {
			continue
		}
		if _, ok := accounts[m.Account]; ok {
			continue
		}
		accounts[m.Account] = c.ledger.Get(m.Account)
	}
	return accounts
}

func (c *Controller) settle(ctx context.Context, receipt Receipt) error {
	if c.settler == nil {
		return nil
	}
	err := c.settler.Settle(ctx, receipt)
	if err == nil {
		return nil
	}
	settleErr := fmt.Errorf("%w: %w", ErrSettlementFailed, err)
	if compErr := c.Compensate(context.WithoutCancel(ctx), receipt); compErr != nil {
		return errors.Join(settleErr, compErr)
	}
	return settleErr
}

func (c *Controller) withdrawKeepsSolvency(params Params, post Account) bool {
	if c.cfg.withdrawPolicy() == WithdrawCommingled {
		post.Collateral = post.Balance
	}
	return IsSolvent(params, post)
}

func positive(amount *uint256.Int) (*uint256.Int, error) {
	if amount == nil || amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	return amount.Clone(), nil
}
