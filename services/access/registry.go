package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vusdpool/native/pool"
)

// Action selects how ManageAllowList changes an event list.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

var (
	ErrEventRequired = errors.New("access: event id required")
	ErrActorRequired = errors.New("access: actor required")
	ErrUnknownAction = errors.New("access: unknown allow-list action")
)

// Registry persists allow-lists and the freeze list. It satisfies
// pool.AllowList and common.ActorGate.
type Registry struct {
	db *gorm.DB
}

// AutoMigrate creates the registry tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&AllowListEntry{}, &FreezeRecord{})
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// ManageAllowList adds or removes actors for event. Adding an actor twice and
// removing an absent actor are both no-ops.
func (r *Registry) ManageAllowList(ctx context.Context, event string, actors []string, action Action, by string) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return ErrEventRequired
	}
	cleaned := make([]string, 0, len(actors))
	for _, actor := range actors {
		actor = strings.TrimSpace(actor)
		if actor == "" {
			return ErrActorRequired
		}
		cleaned = append(cleaned, actor)
	}
	if len(cleaned) == 0 {
		return ErrActorRequired
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch action {
		case ActionAdd:
			entries := make([]AllowListEntry, 0, len(cleaned))
			for _, actor := range cleaned {
				entries = append(entries, AllowListEntry{Event: event, Actor: actor, AddedBy: by})
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&entries).Error; err != nil {
				return fmt.Errorf("access: add to %s: %w", event, err)
			}
		case ActionRemove:
			if err := tx.Where("event = ? AND actor IN ?", event, cleaned).Delete(&AllowListEntry{}).Error; err != nil {
				return fmt.Errorf("access: remove from %s: %w", event, err)
			}
		default:
			return fmt.Errorf("%w: %q", ErrUnknownAction, action)
		}
		return nil
	})
}

// IsAllowed reports whether actor is on the allow-list of event.
func (r *Registry) IsAllowed(ctx context.Context, event string, actor pool.AccountID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&AllowListEntry{}).
		Where("event = ? AND actor = ?", strings.TrimSpace(event), string(actor)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("access: allow-list lookup: %w", err)
	}
	return count > 0, nil
}

// AllowList returns the actors admitted to event in insertion order.
func (r *Registry) AllowList(ctx context.Context, event string) ([]string, error) {
	var entries []AllowListEntry
	if err := r.db.WithContext(ctx).Where("event = ?", strings.TrimSpace(event)).Order("created_at, actor").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("access: list %s: %w", event, err)
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Actor)
	}
	return out, nil
}

// Freeze blocks actor. Freezing an already frozen actor refreshes the reason.
func (r *Registry) Freeze(ctx context.Context, actor, reason, by string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrActorRequired
	}
	rec := FreezeRecord{Actor: actor, Reason: strings.TrimSpace(reason), FrozenBy: by}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "frozen_by"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("access: freeze %s: %w", actor, err)
	}
	return nil
}

// Unfreeze lifts a freeze. Unfreezing an actor that is not frozen is a no-op.
func (r *Registry) Unfreeze(ctx context.Context, actor string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrActorRequired
	}
	if err := r.db.WithContext(ctx).Where("actor = ?", actor).Delete(&FreezeRecord{}).Error; err != nil {
		return fmt.Errorf("access: unfreeze %s: %w", actor, err)
	}
	return nil
}

// IsFrozen reports whether actor is currently frozen.
func (r *Registry) IsFrozen(ctx context.Context, actor string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&FreezeRecord{}).Where("actor = ?", actor).Count(&count).Error; err != nil {
		return false, fmt.Errorf("access: freeze lookup: %w", err)
	}
	return count > 0, nil
}

// Permitted implements common.ActorGate.
func (r *Registry) Permitted(ctx context.Context, actor string) (bool, error) {
	frozen, err := r.IsFrozen(ctx, actor)
	if err != nil {
		return false, err
	}
	return !frozen, nil
}
