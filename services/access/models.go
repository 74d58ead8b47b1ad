package access

import "time"

// AllowListEntry admits an actor to a gated event.
type AllowListEntry struct {
	Event     string `gorm:"primaryKey;size:128"`
	Actor     string `gorm:"primaryKey;size:256"`
	AddedBy   string `gorm:"size:256"`
	CreatedAt time.Time
}

// FreezeRecord blocks an actor from every pool operation until removed.
type FreezeRecord struct {
	Actor     string `gorm:"primaryKey;size:256"`
	Reason    string `gorm:"size:512"`
	FrozenBy  string `gorm:"size:256"`
	CreatedAt time.Time
}
