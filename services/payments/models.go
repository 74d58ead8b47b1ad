package payments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the lifecycle state of a payment intent.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// Webhook event types reported by the payment gateway.
const (
	EventSucceeded = "payment_intent.succeeded"
	EventFailed    = "payment_intent.payment_failed"
	EventCanceled  = "payment_intent.canceled"
)

// Intent ties a gateway preauthorization to the borrow it funds.
type Intent struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// Reference is the gateway's intent identifier.
	Reference     string `gorm:"uniqueIndex;size:128"`
	Actor         string `gorm:"index;size:256"`
	Amount        string `gorm:"size:80"`
	Status        Status `gorm:"size:32;index"`
	Consumed      bool
	ReceiptID     string `gorm:"size:64"`
	FailureReason string `gorm:"size:512"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BeforeCreate assigns a UUID primary key.
func (i *Intent) BeforeCreate(_ *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
