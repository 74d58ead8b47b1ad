package pool

import (
	"math"

	"github.com/holiman/uint256"
)

var (
	bpsScale   = uint256.NewInt(bpsDenominator)
	maxUint256 = new(uint256.Int).SetAllOne()
)

// scaleBps returns amount*bps/10000 using a 512-bit intermediate. Results
// that do not fit in 256 bits report overflow.
func scaleBps(amount *uint256.Int, bps uint64) (uint256.Int, bool) {
	var out uint256.Int
	_, overflow := out.MulDivOverflow(amount, uint256.NewInt(bps), bpsScale)
	return out, overflow
}

// BorrowCapacity is the debt a position may carry given its collateral.
func BorrowCapacity(params Params, acct Account) uint256.Int {
	capacity, overflow := scaleBps(&acct.Collateral, params.CollateralFactorBps)
	if overflow {
		return *maxUint256
	}
	return capacity
}

// IsSolvent reports whether the outstanding debt fits in the borrowing
// capacity. Equality is solvent.
func IsSolvent(params Params, acct Account) bool {
	capacity := BorrowCapacity(params, acct)
	return !capacity.Lt(&acct.Borrowed)
}

// IsLiquidatable reports a strict shortfall of the threshold-weighted
// collateral against the debt.
func IsLiquidatable(params Params, acct Account) bool {
	if acct.Borrowed.IsZero() {
		return false
	}
	weighted, overflow := scaleBps(&acct.Collateral, params.LiquidationThresholdBps)
	if overflow {
		return false
	}
	return weighted.Lt(&acct.Borrowed)
}

// LiquidationBonus computes the premium paid to a liquidator for repaying
// repay units of debt.
func LiquidationBonus(params Params, repay *uint256.Int) (uint256.Int, error) {
	if params.LiquidationBonusBps <= bpsDenominator {
		return uint256.Int{}, nil
	}
	bonus, overflow := scaleBps(repay, params.LiquidationBonusBps-bpsDenominator)
	if overflow {
		return uint256.Int{}, ErrOverflow
	}
	return bonus, nil
}

// AvailableToBorrow returns the remaining borrowing capacity, saturating at
// zero for insolvent positions.
func AvailableToBorrow(params Params, acct Account) uint256.Int {
	capacity := BorrowCapacity(params, acct)
	var out uint256.Int
	if _, underflow := out.SubOverflow(&capacity, &acct.Borrowed); underflow {
		return uint256.Int{}
	}
	return out
}

// HealthFactorBps expresses threshold-weighted collateral relative to debt in
// basis points. Positions without debt report math.MaxUint64; values below
// 10000 are liquidatable.
func HealthFactorBps(params Params, acct Account) uint64 {
	if acct.Borrowed.IsZero() {
		return math.MaxUint64
	}
	var out uint256.Int
	_, overflow := out.MulDivOverflow(&acct.Collateral, uint256.NewInt(params.LiquidationThresholdBps), &acct.Borrowed)
	if overflow || !out.IsUint64() {
		return math.MaxUint64
	}
	return out.Uint64()
}

// LiquidityBps expresses PoolBalance relative to TotalSupply in basis points.
// An empty pool reports full liquidity.
func LiquidityBps(state PoolState) uint64 {
	if state.TotalSupply.IsZero() {
		return bpsDenominator
	}
	var out uint256.Int
	_, overflow := out.MulDivOverflow(&state.PoolBalance, bpsScale, &state.TotalSupply)
	if overflow || !out.IsUint64() {
		return math.MaxUint64
	}
	return out.Uint64()
}
