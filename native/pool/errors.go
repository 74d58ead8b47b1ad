package pool

import (
	"errors"

	nativecommon "vusdpool/native/common"
)

var (
	ErrInvalidAmount                 = errors.New("pool: amount must be positive")
	ErrInsufficientBalance           = errors.New("pool: insufficient balance")
	ErrInsufficientPoolLiquidity     = errors.New("pool: insufficient pool liquidity")
	ErrInsufficientCollateral        = errors.New("pool: insufficient collateral")
	ErrWouldBreachSolvency           = errors.New("pool: operation would breach solvency")
	ErrExcessRepayment               = errors.New("pool: repayment exceeds outstanding debt")
	ErrNotUndercollateralized        = errors.New("pool: account is not undercollateralized")
	ErrInsufficientLiquidatorBalance = errors.New("pool: insufficient liquidator balance")
	ErrUnderflow                     = errors.New("pool: ledger underflow")
	ErrOverflow                      = errors.New("pool: ledger overflow")

	ErrInsufficientCollateralBalance = errors.New("pool: insufficient pledged collateral")
	ErrSelfLiquidation               = errors.New("pool: liquidator and liquidatee must differ")
	ErrInvalidParams                 = errors.New("pool: invalid risk parameters")
	ErrActorFrozen                   = errors.New("pool: actor is frozen")
	ErrNotAllowListed                = errors.New("pool: actor is not allow-listed")
	ErrSettlementFailed              = errors.New("pool: settlement failed")
	ErrJournalFailed                 = errors.New("pool: journal write failed")
	ErrUnknownField                  = errors.New("pool: unknown ledger field")
	ErrInvalidActor                  = errors.New("pool: actor identity required")
	ErrCompensationInsolvent         = errors.New("pool: compensation would leave an account insolvent")
)

var errKinds = []struct {
	err  error
	kind string
}{
	{ErrInvalidAmount, "invalid_amount"},
	{ErrInsufficientBalance, "insufficient_balance"},
	{ErrInsufficientPoolLiquidity, "insufficient_pool_liquidity"},
	{ErrInsufficientCollateral, "insufficient_collateral"},
	{ErrWouldBreachSolvency, "would_breach_solvency"},
	{ErrExcessRepayment, "excess_repayment"},
	{ErrNotUndercollateralized, "not_undercollateralized"},
	{ErrInsufficientLiquidatorBalance, "insufficient_liquidator_balance"},
	{ErrUnderflow, "underflow"},
	{ErrOverflow, "overflow"},
	{ErrInsufficientCollateralBalance, "insufficient_collateral_balance"},
	{ErrSelfLiquidation, "self_liquidation"},
	{ErrInvalidParams, "invalid_params"},
	{ErrActorFrozen, "actor_frozen"},
	{ErrNotAllowListed, "not_allow_listed"},
	{ErrSettlementFailed, "settlement_failed"},
	{ErrJournalFailed, "journal_failed"},
	{ErrUnknownField, "unknown_field"},
	{ErrInvalidActor, "invalid_actor"},
	{ErrCompensationInsolvent, "compensation_insolvent"},
	{nativecommon.ErrModulePaused, "paused"},
}

// Kind returns a stable reason code for err, suitable for metric labels and
// transport error details. It returns "" for nil and "internal" for errors
// outside the taxonomy.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, entry := range errKinds {
		if errors.Is(err, entry.err) {
			return entry.kind
		}
	}
	return "internal"
}

// IsFatal reports whether err signals a broken ledger invariant rather than a
// rejected business precondition.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnderflow) || errors.Is(err, ErrOverflow) || errors.Is(err, ErrUnknownField)
}
