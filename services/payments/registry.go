package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vusdpool/native/pool"
)

var (
	ErrIntentNotFound     = errors.New("payments: intent not found")
	ErrIntentNotSucceeded = errors.New("payments: intent has not succeeded")
	ErrIntentConsumed     = errors.New("payments: intent already consumed")
	ErrIntentMismatch     = errors.New("payments: intent does not match the borrow request")
	ErrInvalidTransition  = errors.New("payments: invalid intent transition")
	ErrUnknownEvent       = errors.New("payments: unknown webhook event")
)

// Event is a normalised gateway webhook notification.
type Event struct {
	Type      string
	Reference string
	Reason    string
}

// Gate confirms that a borrow is funded by a succeeded preauthorization.
type Gate interface {
	// Consume marks the intent as spent by (actor, amount). An intent can be
	// consumed once.
	Consume(ctx context.Context, reference string, actor pool.AccountID, amount *uint256.Int) (Intent, error)
	// Release makes a consumed intent available again after the borrow it
	// was reserved for failed.
	Release(ctx context.Context, reference string) error
	// Bind records the pool receipt funded by the intent.
	Bind(ctx context.Context, reference, receiptID string) error
}

// Registry stores payment intents. It implements Gate.
type Registry struct {
	db *gorm.DB
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Intent{})
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Create registers a pending intent for a borrow of amount by actor. An empty
// reference is replaced with a generated one.
func (r *Registry) Create(ctx context.Context, reference string, actor pool.AccountID, amount *uint256.Int) (Intent, error) {
	if amount == nil || amount.IsZero() {
		return Intent{}, pool.ErrInvalidAmount
	}
	if strings.TrimSpace(string(actor)) == "" {
		return Intent{}, pool.ErrInvalidActor
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		reference = "pi_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	intent := Intent{
		Reference: reference,
		Actor:     string(actor),
		Amount:    amount.Dec(),
		Status:    StatusPending,
	}
	if err := r.db.WithContext(ctx).Create(&intent).Error; err != nil {
		return Intent{}, fmt.Errorf("payments: create intent: %w", err)
	}
	return intent, nil
}

// Get loads the intent by gateway reference.
func (r *Registry) Get(ctx context.Context, reference string) (Intent, error) {
	var intent Intent
	err := r.db.WithContext(ctx).First(&intent, "reference = ?", strings.TrimSpace(reference)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Intent{}, ErrIntentNotFound
	}
	if err != nil {
		return Intent{}, fmt.Errorf("payments: load intent: %w", err)
	}
	return intent, nil
}

// RecordEvent applies a webhook notification. Replaying the event that
// produced the current status is a no-op.
func (r *Registry) RecordEvent(ctx context.Context, evt Event) (Intent, error) {
	var next Status
	switch evt.Type {
	case EventSucceeded:
		next = StatusSucceeded
	case EventFailed:
		next = StatusFailed
	case EventCanceled:
		next = StatusCanceled
	default:
		return Intent{}, fmt.Errorf("%w: %q", ErrUnknownEvent, evt.Type)
	}

	var out Intent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		intent, err := lockIntent(tx, evt.Reference)
		if err != nil {
			return err
		}
		if intent.Status == next {
			out = intent
			return nil
		}
		if intent.Status != StatusPending {
			// A succeeded intent that has not funded a borrow may still be
			// canceled by the gateway.
			if !(intent.Status == StatusSucceeded && next == StatusCanceled && !intent.Consumed) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, intent.Status, next)
			}
		}
		updates := map[string]any{"status": next}
		if next == StatusFailed || next == StatusCanceled {
			updates["failure_reason"] = strings.TrimSpace(evt.Reason)
		}
		if err := tx.Model(&intent).Updates(updates).Error; err != nil {
			return fmt.Errorf("payments: update intent: %w", err)
		}
		intent.Status = next
		if reason, ok := updates["failure_reason"].(string); ok {
			intent.FailureReason = reason
		}
		out = intent
		return nil
	})
	return out, err
}

// Consume implements Gate.
func (r *Registry) Consume(ctx context.Context, reference string, actor pool.AccountID, amount *uint256.Int) (Intent, error) {
	var out Intent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		intent, err := lockIntent(tx, reference)
		if err != nil {
			return err
		}
		if intent.Status != StatusSucceeded {
			return fmt.Errorf("%w: status %s", ErrIntentNotSucceeded, intent.Status)
		}
		if intent.Consumed {
			return ErrIntentConsumed
		}
		if intent.Actor != string(actor) || amount == nil || intent.Amount != amount.Dec() {
			return ErrIntentMismatch
		}
		if err := tx.Model(&intent).Update("consumed", true).Error; err != nil {
			return fmt.Errorf("payments: consume intent: %w", err)
		}
		intent.Consumed = true
		out = intent
		return nil
	})
	return out, err
}

// Release implements Gate.
func (r *Registry) Release(ctx context.Context, reference string) error {
	res := r.db.WithContext(ctx).Model(&Intent{}).
		Where("reference = ? AND consumed = ? AND receipt_id = ?", strings.TrimSpace(reference), true, "").
		Update("consumed", false)
	if res.Error != nil {
		return fmt.Errorf("payments: release intent: %w", res.Error)
	}
	return nil
}

// Bind implements Gate.
func (r *Registry) Bind(ctx context.Context, reference, receiptID string) error {
	res := r.db.WithContext(ctx).Model(&Intent{}).
		Where("reference = ? AND consumed = ?", strings.TrimSpace(reference), true).
		Update("receipt_id", receiptID)
	if res.Error != nil {
		return fmt.Errorf("payments: bind intent: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrIntentNotFound
	}
	return nil
}

// ListByActor returns the intents created for actor, newest first. The limit
// defaults to 50 and is capped at 500.
func (r *Registry) ListByActor(ctx context.Context, actor pool.AccountID, limit int) ([]Intent, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	var intents []Intent
	err := r.db.WithContext(ctx).Where("actor = ?", string(actor)).Order("created_at DESC").Limit(limit).Find(&intents).Error
	if err != nil {
		return nil, fmt.Errorf("payments: list intents: %w", err)
	}
	return intents, nil
}

func lockIntent(tx *gorm.DB, reference string) (Intent, error) {
	var intent Intent
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&intent, "reference = ?", strings.TrimSpace(reference)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Intent{}, ErrIntentNotFound
	}
	if err != nil {
		return Intent{}, fmt.Errorf("payments: load intent: %w", err)
	}
	return intent, nil
}
