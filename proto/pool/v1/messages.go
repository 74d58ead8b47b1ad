package poolv1

import "time"

// Amounts are base-10 strings of the smallest token unit.

type AmountRequest struct {
	Account string `json:"account"`
	Amount  string `json:"amount"`
}

type BorrowWithPaymentRequest struct {
	Account          string `json:"account"`
	Amount           string `json:"amount"`
	PaymentReference string `json:"payment_reference"`
}

type LiquidateRequest struct {
	Liquidator string `json:"liquidator"`
	Liquidatee string `json:"liquidatee"`
	Amount     string `json:"amount"`
}

// Position is an account together with its derived risk figures.
type Position struct {
	Account         string `json:"account"`
	Balance         string `json:"balance"`
	Collateral      string `json:"collateral"`
	Borrowed        string `json:"borrowed"`
	BorrowCapacity  string `json:"borrow_capacity"`
	AvailableBorrow string `json:"available_borrow"`
	// HealthFactorBps is omitted for accounts without debt.
	HealthFactorBps uint64 `json:"health_factor_bps,omitempty"`
	Liquidatable    bool   `json:"liquidatable"`
}

type Pool struct {
	TotalSupply             string `json:"total_supply"`
	PoolBalance             string `json:"pool_balance"`
	CollateralFactorBps     uint64 `json:"collateral_factor_bps"`
	LiquidationBonusBps     uint64 `json:"liquidation_bonus_bps"`
	LiquidationThresholdBps uint64 `json:"liquidation_threshold_bps"`
	Accounts                int    `json:"accounts"`
	LiquidityBps            uint64 `json:"liquidity_bps"`
	NeedsRegeneration       bool   `json:"needs_regeneration"`
}

type Receipt struct {
	ID           string    `json:"id"`
	Op           string    `json:"op"`
	Actor        string    `json:"actor"`
	Counterparty string    `json:"counterparty,omitempty"`
	Amount       string    `json:"amount"`
	Bonus        string    `json:"bonus,omitempty"`
	Position     *Position `json:"position,omitempty"`
	// CounterpartyPosition is set for liquidations.
	CounterpartyPosition *Position `json:"counterparty_position,omitempty"`
	Pool                 *Pool     `json:"pool,omitempty"`
	CommittedAt          time.Time `json:"committed_at"`
}

type TxResponse struct {
	Receipt *Receipt `json:"receipt"`
}

type GetAccountRequest struct {
	Account string `json:"account"`
}

type GetAccountResponse struct {
	Position *Position `json:"position"`
}

type GetPoolRequest struct{}

type GetPoolResponse struct {
	Pool *Pool `json:"pool"`
}

type UpdateParamsRequest struct {
	CollateralFactorBps     uint64 `json:"collateral_factor_bps"`
	LiquidationBonusBps     uint64 `json:"liquidation_bonus_bps"`
	LiquidationThresholdBps uint64 `json:"liquidation_threshold_bps"`
}

type ManageAllowListRequest struct {
	Event    string   `json:"event"`
	Accounts []string `json:"accounts"`
	// Action is "add" or "remove".
	Action string `json:"action"`
}

type ManageAllowListResponse struct {
	Event    string   `json:"event"`
	Accounts []string `json:"accounts"`
}

type FreezeRequest struct {
	Account string `json:"account"`
	Reason  string `json:"reason,omitempty"`
}

type FreezeResponse struct {
	Account string `json:"account"`
	Frozen  bool   `json:"frozen"`
}

type PaymentIntent struct {
	Reference     string    `json:"reference"`
	Account       string    `json:"account"`
	Amount        string    `json:"amount"`
	Status        string    `json:"status"`
	Consumed      bool      `json:"consumed"`
	ReceiptID     string    `json:"receipt_id,omitempty"`
	FailureReason string    `json:"failure_reason,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreatePaymentIntentRequest struct {
	// Reference is generated when empty.
	Reference string `json:"reference,omitempty"`
	Account   string `json:"account"`
	Amount    string `json:"amount"`
}

type GetPaymentIntentRequest struct {
	Reference string `json:"reference"`
}

type RecordPaymentEventRequest struct {
	Type      string `json:"type"`
	Reference string `json:"reference"`
	Reason    string `json:"reason,omitempty"`
}

type PaymentIntentResponse struct {
	Intent *PaymentIntent `json:"intent"`
}

type ListPaymentIntentsRequest struct {
	Account string `json:"account"`
	Limit   int    `json:"limit,omitempty"`
}

type ListPaymentIntentsResponse struct {
	Intents []*PaymentIntent `json:"intents"`
}

// SetPauseRequest toggles a pause scope: "pool" or "pool.<operation>".
type SetPauseRequest struct {
	Module string `json:"module"`
	Paused bool   `json:"paused"`
}

type PauseResponse struct {
	Paused []string `json:"paused"`
}

type ListSettlementsRequest struct {
	Account string   `json:"account"`
	Ops     []string `json:"ops,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}

type Settlement struct {
	ReceiptID    string    `json:"receipt_id"`
	Op           string    `json:"op"`
	Actor        string    `json:"actor"`
	Counterparty string    `json:"counterparty,omitempty"`
	Amount       string    `json:"amount"`
	Bonus        string    `json:"bonus,omitempty"`
	Status       string    `json:"status"`
	Attempts     int       `json:"attempts"`
	ExternalRef  string    `json:"external_ref,omitempty"`
	Digest       string    `json:"digest"`
	LastError    string    `json:"last_error,omitempty"`
	CommittedAt  time.Time `json:"committed_at"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}
