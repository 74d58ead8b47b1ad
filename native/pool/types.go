package pool

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"
)

// AccountID is the opaque identity of a pool participant. Any stable string
// (for example a ledger address) is sufficient.
type AccountID string

// Account captures the per-participant position tracked by the Ledger.
type Account struct {
	// Balance holds deposited units available to withdraw or to fund a
	// liquidation.
	Balance uint256.Int
	// Collateral holds units pledged against borrowing. It is disjoint from
	// Balance.
	Collateral uint256.Int
	// Borrowed is the outstanding debt.
	Borrowed uint256.Int
}

// IsZero reports whether every field of the account is zero.
func (a Account) IsZero() bool {
	return a.Balance.IsZero() && a.Collateral.IsZero() && a.Borrowed.IsZero()
}

// Params groups the risk scalars expressed in basis points.
type Params struct {
	// CollateralFactorBps is the share of collateral counted as borrowing
	// power.
	CollateralFactorBps uint64
	// LiquidationBonusBps is the liquidator premium expressed above 10000.
	LiquidationBonusBps uint64
	// LiquidationThresholdBps is the ratio below which a position may be
	// liquidated.
	LiquidationThresholdBps uint64
}

// PoolState holds the process-wide pool scalars. It is owned by a Ledger and
// only changes through Controller operations.
type PoolState struct {
	// TotalSupply is the cumulative amount ever deposited.
	TotalSupply uint256.Int
	// PoolBalance is the liquidity currently available to lend.
	PoolBalance uint256.Int
	Params
}

// Snapshot is a full copy of the ledger used for persistence and restores.
type Snapshot struct {
	Pool     PoolState
	Accounts map[AccountID]Account
}

// Field identifies a mutable ledger field.
type Field uint8

const (
	FieldBalance Field = iota + 1
	FieldCollateral
	FieldBorrowed
	FieldTotalSupply
	FieldPoolBalance
)

var fieldNames = map[Field]string{
	FieldBalance:     "balance",
	FieldCollateral:  "collateral",
	FieldBorrowed:    "borrowed",
	FieldTotalSupply: "totalSupply",
	FieldPoolBalance: "poolBalance",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", uint8(f))
}

// ParseField resolves a field from its String form.
func ParseField(name string) (Field, error) {
	for f, n := range fieldNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// PoolScoped reports whether the field lives on PoolState rather than on an
// Account.
func (f Field) PoolScoped() bool {
	return f == FieldTotalSupply || f == FieldPoolBalance
}

// Delta is a signed change applied to a ledger field.
type Delta struct {
	Amount   uint256.Int
	Negative bool
}

// Credit returns a delta that increases a field by amount.
func Credit(amount *uint256.Int) Delta {
	var d Delta
	if amount != nil {
		d.Amount.Set(amount)
	}
	return d
}

// Debit returns a delta that decreases a field by amount.
func Debit(amount *uint256.Int) Delta {
	d := Credit(amount)
	d.Negative = true
	return d
}

// Inverse returns the delta that undoes d.
func (d Delta) Inverse() Delta {
	d.Negative = !d.Negative
	return d
}

func (d Delta) String() string {
	if d.Negative {
		return "-" + d.Amount.Dec()
	}
	return "+" + d.Amount.Dec()
}

// ParseDelta decodes the String form of a delta ("+10", "-10").
func ParseDelta(s string) (Delta, error) {
	if len(s) < 2 || (s[0] != '+' && s[0] != '-') {
		return Delta{}, fmt.Errorf("pool: malformed delta %q", s)
	}
	amount, err := uint256.FromDecimal(s[1:])
	if err != nil {
		return Delta{}, fmt.Errorf("pool: malformed delta %q: %w", s, err)
	}
	d := Credit(amount)
	d.Negative = s[0] == '-'
	return d, nil
}

// Mutation targets a single field. Account is empty for pool-scoped fields.
type Mutation struct {
	Account AccountID
	Field   Field
	Delta   Delta
}

// Inverse returns the mutation that undoes m.
func (m Mutation) Inverse() Mutation {
	m.Delta = m.Delta.Inverse()
	return m
}

func (m Mutation) String() string {
	if m.Field.PoolScoped() {
		return fmt.Sprintf("pool.%s%s", m.Field, m.Delta)
	}
	return fmt.Sprintf("%s.%s%s", m.Account, m.Field, m.Delta)
}

// InverseMutations returns the compensating mutation list for muts, in
// reverse order.
func InverseMutations(muts []Mutation) []Mutation {
	out := make([]Mutation, 0, len(muts))
	for i := len(muts) - 1; i >= 0; i-- {
		out = append(out, muts[i].Inverse())
	}
	return out
}

// Operation names a Controller transition.
type Operation string

const (
	OpDeposit            Operation = "deposit"
	OpWithdraw           Operation = "withdraw"
	OpBorrow             Operation = "borrow"
	OpRepay              Operation = "repay"
	OpLiquidate          Operation = "liquidate"
	OpDepositCollateral  Operation = "deposit_collateral"
	OpWithdrawCollateral Operation = "withdraw_collateral"
	OpCompensate         Operation = "compensate"
	OpSetParams          Operation = "set_params"
)

// Receipt describes a committed Controller decision. It is handed to the
// settlement backend and can be replayed in reverse through Compensate.
type Receipt struct {
	ID           string
	Op           Operation
	Actor        AccountID
	Counterparty AccountID
	// Amount is the effective amount moved. For liquidations it is the debt
	// actually repaid.
	Amount    uint256.Int
	Bonus     uint256.Int
	Mutations []Mutation
	// Account and CounterpartyAccount are post-commit copies.
	Account             Account
	CounterpartyAccount Account
	Pool                PoolState
	CommittedAt         time.Time
}

// Status summarises the pool for operators.
type Status struct {
	Pool     PoolState
	Accounts int
	// LiquidityBps is PoolBalance relative to TotalSupply in basis points.
	LiquidityBps      uint64
	NeedsRegeneration bool
}
