package settlement

import "time"

// Status is the outbox state of a receipt.
type Status string

const (
	StatusStaged      Status = "staged"
	StatusSettled     Status = "settled"
	StatusFailed      Status = "failed"
	StatusCompensated Status = "compensated"
)

// Record is a committed pool receipt waiting for, or done with, external
// settlement.
type Record struct {
	ID           string `gorm:"primaryKey;size:64"`
	Op           string `gorm:"size:32;index"`
	Actor        string `gorm:"size:256;index"`
	Counterparty string `gorm:"size:256;index"`
	Amount       string `gorm:"size:80"`
	Bonus        string `gorm:"size:80"`
	// Mutations holds the JSON-encoded ledger deltas needed to compensate.
	Mutations   string    `gorm:"type:text"`
	Digest      string    `gorm:"size:64;uniqueIndex"`
	Status      Status    `gorm:"size:16;index"`
	Attempts    int
	LastError   string    `gorm:"size:1024"`
	ExternalRef string    `gorm:"size:256"`
	CommittedAt time.Time `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
