package pool

import (
	"fmt"
	"strings"
)

const (
	bpsDenominator = 10_000

	DefaultCollateralFactorBps     = 7_500
	DefaultLiquidationBonusBps     = 10_500
	DefaultLiquidationThresholdBps = 8_000
	DefaultRegenerationFloorBps    = 500

	// maxLiquidationBonusBps bounds the premium to 100% of the repaid debt.
	maxLiquidationBonusBps = 20_000

	moduleName = "pool"
)

// WithdrawPolicy selects how Withdraw evaluates post-state solvency.
type WithdrawPolicy string

const (
	// WithdrawSeparate treats balance and collateral as disjoint. A withdrawal
	// is refused while the account is insolvent on its collateral.
	WithdrawSeparate WithdrawPolicy = "separate"
	// WithdrawCommingled evaluates borrowing capacity on the balance that
	// remains after the withdrawal.
	WithdrawCommingled WithdrawPolicy = "commingled"
)

// IsPauseScope reports whether module names the whole pool or one of its
// operations, the scopes the controller guards.
func IsPauseScope(module string) bool {
	if module == moduleName {
		return true
	}
	action, ok := strings.CutPrefix(module, moduleName+".")
	if !ok {
		return false
	}
	switch Operation(action) {
	case OpDeposit, OpWithdraw, OpBorrow, OpRepay, OpLiquidate, OpDepositCollateral, OpWithdrawCollateral:
		return true
	default:
		return false
	}
}

// ActionPauses exposes fine-grained switches for pausing individual pool flows.
type ActionPauses struct {
	Deposit   bool `toml:"Deposit" yaml:"deposit"`
	Withdraw  bool `toml:"Withdraw" yaml:"withdraw"`
	Borrow    bool `toml:"Borrow" yaml:"borrow"`
	Repay     bool `toml:"Repay" yaml:"repay"`
	Liquidate bool `toml:"Liquidate" yaml:"liquidate"`
}

// IsPaused implements common.PauseView over the "pool.<action>" scopes.
func (p ActionPauses) IsPaused(module string) bool {
	action, ok := strings.CutPrefix(module, moduleName+".")
	if !ok {
		return false
	}
	switch Operation(action) {
	case OpDeposit, OpDepositCollateral:
		return p.Deposit
	case OpWithdraw, OpWithdrawCollateral:
		return p.Withdraw
	case OpBorrow:
		return p.Borrow
	case OpRepay:
		return p.Repay
	case OpLiquidate:
		return p.Liquidate
	default:
		return false
	}
}

// Config captures the runtime configuration for the pool controller.
type Config struct {
	CollateralFactorBps     uint64         `toml:"CollateralFactorBps" yaml:"collateral_factor_bps"`
	LiquidationBonusBps     uint64         `toml:"LiquidationBonusBps" yaml:"liquidation_bonus_bps"`
	LiquidationThresholdBps uint64         `toml:"LiquidationThresholdBps" yaml:"liquidation_threshold_bps"`
	WithdrawPolicy          WithdrawPolicy `toml:"WithdrawPolicy" yaml:"withdraw_policy"`
	// GateEvent enables allow-list checks on deposits and borrows when set.
	GateEvent            string       `toml:"GateEvent" yaml:"gate_event"`
	RegenerationFloorBps uint64       `toml:"RegenerationFloorBps" yaml:"regeneration_floor_bps"`
	Pauses               ActionPauses `toml:"pauses" yaml:"pauses"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		CollateralFactorBps:     DefaultCollateralFactorBps,
		LiquidationBonusBps:     DefaultLiquidationBonusBps,
		LiquidationThresholdBps: DefaultLiquidationThresholdBps,
		WithdrawPolicy:          WithdrawSeparate,
		RegenerationFloorBps:    DefaultRegenerationFloorBps,
	}
}

// Params extracts the risk scalars from the configuration.
func (c Config) Params() Params {
	return Params{
		CollateralFactorBps:     c.CollateralFactorBps,
		LiquidationBonusBps:     c.LiquidationBonusBps,
		LiquidationThresholdBps: c.LiquidationThresholdBps,
	}
}

// Validate ensures the configuration is internally consistent.
func (c Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	switch c.WithdrawPolicy {
	case "", WithdrawSeparate, WithdrawCommingled:
	default:
		return fmt.Errorf("%w: unknown withdraw policy %q", ErrInvalidParams, c.WithdrawPolicy)
	}
	if c.RegenerationFloorBps > bpsDenominator {
		return fmt.Errorf("%w: regeneration floor %d exceeds %d", ErrInvalidParams, c.RegenerationFloorBps, bpsDenominator)
	}
	return nil
}

// Validate checks the basis-point ranges and the ordering between the
// collateral factor and the liquidation threshold.
func (p Params) Validate() error {
	if p.CollateralFactorBps > bpsDenominator {
		return fmt.Errorf("%w: collateral factor %d exceeds %d", ErrInvalidParams, p.CollateralFactorBps, bpsDenominator)
	}
	if p.LiquidationThresholdBps > bpsDenominator {
		return fmt.Errorf("%w: liquidation threshold %d exceeds %d", ErrInvalidParams, p.LiquidationThresholdBps, bpsDenominator)
	}
	if p.LiquidationThresholdBps < p.CollateralFactorBps {
		return fmt.Errorf("%w: liquidation threshold %d below collateral factor %d", ErrInvalidParams, p.LiquidationThresholdBps, p.CollateralFactorBps)
	}
	if p.LiquidationBonusBps < bpsDenominator || p.LiquidationBonusBps > maxLiquidationBonusBps {
		return fmt.Errorf("%w: liquidation bonus %d outside [%d, %d]", ErrInvalidParams, p.LiquidationBonusBps, bpsDenominator, maxLiquidationBonusBps)
	}
	return nil
}

func (c Config) withdrawPolicy() WithdrawPolicy {
	if c.WithdrawPolicy == "" {
		return WithdrawSeparate
	}
	return c.WithdrawPolicy
}
