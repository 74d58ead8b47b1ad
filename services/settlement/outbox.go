package settlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vusdpool/native/pool"
)

var ErrRecordNotFound = errors.New("settlement: record not found")

// Outbox stages committed receipts for asynchronous settlement. It
// implements pool.Settler: staging is a local write, so a failure here means
// the receipt can never be settled and the controller compensates at once.
type Outbox struct {
	db *gorm.DB
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Record{})
}

func NewOutbox(db *gorm.DB) *Outbox {
	return &Outbox{db: db}
}

// Settle stages the receipt. Staging the same receipt twice is a no-op.
func (o *Outbox) Settle(ctx context.Context, receipt pool.Receipt) error {
	if strings.TrimSpace(receipt.ID) == "" {
		return fmt.Errorf("settlement: receipt id required")
	}
	muts, err := encodeMutations(receipt.Mutations)
	if err != nil {
		return fmt.Errorf("settlement: encode mutations: %w", err)
	}
	rec := Record{
		ID:           receipt.ID,
		Op:           string(receipt.Op),
		Actor:        string(receipt.Actor),
		Counterparty: string(receipt.Counterparty),
		Amount:       receipt.Amount.Dec(),
		Bonus:        receipt.Bonus.Dec(),
		Mutations:    muts,
		Digest:       Digest(receipt),
		Status:       StatusStaged,
		CommittedAt:  receipt.CommittedAt,
	}
	if err := o.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error; err != nil {
		return fmt.Errorf("settlement: stage %s: %w", receipt.ID, err)
	}
	return nil
}

// Get loads a record by receipt id.
func (o *Outbox) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := o.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("settlement: load %s: %w", id, err)
	}
	return rec, nil
}

// Pending returns up to limit staged records, oldest first.
func (o *Outbox) Pending(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	var recs []Record
	err := o.db.WithContext(ctx).Where("status = ?", StatusStaged).Order("committed_at, id").Limit(limit).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("settlement: pending: %w", err)
	}
	return recs, nil
}

// HistoryQuery filters History.
type HistoryQuery struct {
	Actor string
	// Ops restricts the result to the listed operations when non-empty.
	Ops   []pool.Operation
	Limit int
}

// History lists the records where the actor is either party, newest first.
func (o *Outbox) History(ctx context.Context, q HistoryQuery) ([]Record, error) {
	actor := strings.TrimSpace(q.Actor)
	if actor == "" {
		return nil, pool.ErrInvalidActor
	}
	limit := q.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	tx := o.db.WithContext(ctx).Where("actor = ? OR counterparty = ?", actor, actor)
	if len(q.Ops) > 0 {
		ops := make([]string, 0, len(q.Ops))
		for _, op := range q.Ops {
			ops = append(ops, string(op))
		}
		tx = tx.Where("op IN ?", ops)
	}
	var recs []Record
	if err := tx.Order("committed_at DESC, id DESC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("settlement: history: %w", err)
	}
	return recs, nil
}

func (o *Outbox) markSettled(ctx context.Context, id, ref string) error {
	return o.update(ctx, id, map[string]any{
		"status":       StatusSettled,
		"external_ref": ref,
		"last_error":   "",
		"attempts":     gorm.Expr("attempts + 1"),
	})
}

func (o *Outbox) markAttempt(ctx context.Context, id string, cause error) error {
	return o.update(ctx, id, map[string]any{
		"last_error": truncate(cause.Error()),
		"attempts":   gorm.Expr("attempts + 1"),
	})
}

func (o *Outbox) markStatus(ctx context.Context, id string, status Status, cause error) error {
	updates := map[string]any{"status": status}
	if cause != nil {
		updates["last_error"] = truncate(cause.Error())
	}
	return o.update(ctx, id, updates)
}

func (o *Outbox) update(ctx context.Context, id string, updates map[string]any) error {
	res := o.db.WithContext(ctx).Model(&Record{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("settlement: update %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// truncate bounds error text to 1 KiB on a rune boundary. Postgres rejects
// invalid UTF-8 in text columns.
func truncate(s string) string {
	const max = 1024
	s = strings.ToValidUTF8(s, "\uFFFD")
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
