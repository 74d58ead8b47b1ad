package pool

import (
	"errors"
	"math"
	"testing"

	"github.com/holiman/uint256"
)

func TestBorrowCapacityTruncates(t *testing.T) {
	params := DefaultConfig().Params()
	cases := []struct {
		collateral uint64
		want       uint64
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{200_000, 150_000},
		{133, 99},
	}
	for _, tc := range cases {
		got := BorrowCapacity(params, Account{Collateral: *u(tc.collateral)})
		if got.Uint64() != tc.want {
			t.Fatalf("capacity(%d) = %s, want %d", tc.collateral, got.Dec(), tc.want)
		}
	}
}

func TestBorrowCapacityNoIntermediateOverflow(t *testing.T) {
	ceiling := new(uint256.Int).SetAllOne()
	params := Params{CollateralFactorBps: 10_000, LiquidationThresholdBps: 10_000, LiquidationBonusBps: 10_000}
	got := BorrowCapacity(params, Account{Collateral: *ceiling})
	if !got.Eq(ceiling) {
		t.Fatalf("expected full capacity at 100%% factor, got %s", got.Dec())
	}
	params.CollateralFactorBps = 7_500
	got = BorrowCapacity(params, Account{Collateral: *ceiling})
	if !got.Lt(ceiling) || got.IsZero() {
		t.Fatalf("unexpected scaled capacity %s", got.Dec())
	}
}

func TestSolvencyEqualityIsSolvent(t *testing.T) {
	params := DefaultConfig().Params()
	acct := Account{Collateral: *u(200_000), Borrowed: *u(150_000)}
	if !IsSolvent(params, acct) {
		t.Fatalf("equality must be solvent")
	}
	acct.Borrowed = *u(150_001)
	if IsSolvent(params, acct) {
		t.Fatalf("expected insolvent")
	}
}

func TestIsLiquidatableStrictShortfall(t *testing.T) {
	params := DefaultConfig().Params()
	acct := Account{Collateral: *u(100_000), Borrowed: *u(80_000)}
	if IsLiquidatable(params, acct) {
		t.Fatalf("threshold equality must not be liquidatable")
	}
	acct.Collateral = *u(99_000)
	if !IsLiquidatable(params, acct) {
		t.Fatalf("expected liquidatable at 79,200 < 80,000")
	}
	if IsLiquidatable(params, Account{}) {
		t.Fatalf("empty account cannot be liquidated")
	}
}

func TestLiquidationBonus(t *testing.T) {
	params := DefaultConfig().Params()
	bonus, err := LiquidationBonus(params, u(10_000))
	if err != nil {
		t.Fatalf("bonus: %v", err)
	}
	if bonus.Uint64() != 500 {
		t.Fatalf("bonus = %s, want 500", bonus.Dec())
	}
	bonus, err = LiquidationBonus(params, u(19))
	if err != nil || bonus.Uint64() != 0 {
		t.Fatalf("expected truncation to zero, got %s (%v)", bonus.Dec(), err)
	}
	params.LiquidationBonusBps = 10_000
	bonus, err = LiquidationBonus(params, u(10_000))
	if err != nil || !bonus.IsZero() {
		t.Fatalf("expected no bonus at 10000 bps")
	}
}

func TestLiquidationBonusOverflow(t *testing.T) {
	params := Params{LiquidationBonusBps: 20_000 + 10_000}
	ceiling := new(uint256.Int).SetAllOne()
	if _, err := LiquidationBonus(params, ceiling); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestAvailableToBorrowSaturates(t *testing.T) {
	params := DefaultConfig().Params()
	got := AvailableToBorrow(params, Account{Collateral: *u(100), Borrowed: *u(500)})
	if !got.IsZero() {
		t.Fatalf("expected zero, got %s", got.Dec())
	}
	got = AvailableToBorrow(params, Account{Collateral: *u(200_000), Borrowed: *u(100_000)})
	if got.Uint64() != 50_000 {
		t.Fatalf("expected 50000, got %s", got.Dec())
	}
}

func TestHealthFactorBps(t *testing.T) {
	params := DefaultConfig().Params()
	if got := HealthFactorBps(params, Account{Collateral: *u(1)}); got != math.MaxUint64 {
		t.Fatalf("debt-free health = %d", got)
	}
	if got := HealthFactorBps(params, Account{Collateral: *u(100_000), Borrowed: *u(80_000)}); got != 10_000 {
		t.Fatalf("health at threshold = %d, want 10000", got)
	}
	if got := HealthFactorBps(params, Account{Collateral: *u(99_000), Borrowed: *u(80_000)}); got != 9_900 {
		t.Fatalf("health = %d, want 9900", got)
	}
}

func TestLiquidityBps(t *testing.T) {
	if got := LiquidityBps(PoolState{}); got != 10_000 {
		t.Fatalf("empty pool liquidity = %d", got)
	}
	state := PoolState{TotalSupply: *u(1_000_000), PoolBalance: *u(40_000)}
	if got := LiquidityBps(state); got != 400 {
		t.Fatalf("liquidity = %d, want 400", got)
	}
}
