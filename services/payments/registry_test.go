package payments

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"vusdpool/native/pool"
	"vusdpool/storage/sqldb/sqldbtest"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(sqldbtest.Open(t, AutoMigrate))
}

func TestIntentLifecycle(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)

	intent, err := reg.Create(ctx, "", "alice", uint256.NewInt(500))
	require.NoError(t, err)
	require.Equal(t, StatusPending, intent.Status)
	require.Contains(t, intent.Reference, "pi_")

	_, err = reg.Consume(ctx, intent.Reference, "alice", uint256.NewInt(500))
	require.ErrorIs(t, err, ErrIntentNotSucceeded)

	updated, err := reg.RecordEvent(ctx, Event{Type: EventSucceeded, Reference: intent.Reference})
	require.NoError(t, err)
	require.Equal(t, StatusSucceeded, updated.Status)

	// Replays are idempotent.
	_, err = reg.RecordEvent(ctx, Event{Type: EventSucceeded, Reference: intent.Reference})
	require.NoError(t, err)

	_, err = reg.Consume(ctx, intent.Reference, "bob", uint256.NewInt(500))
	require.ErrorIs(t, err, ErrIntentMismatch)
	_, err = reg.Consume(ctx, intent.Reference, "alice", uint256.NewInt(499))
	require.ErrorIs(t, err, ErrIntentMismatch)

	consumed, err := reg.Consume(ctx, intent.Reference, "alice", uint256.NewInt(500))
	require.NoError(t, err)
	require.True(t, consumed.Consumed)

	_, err = reg.Consume(ctx, intent.Reference, "alice", uint256.NewInt(500))
	require.ErrorIs(t, err, ErrIntentConsumed)

	_, err = reg.RecordEvent(ctx, Event{Type: EventCanceled, Reference: intent.Reference})
	require.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, reg.Bind(ctx, intent.Reference, "receipt-1"))
	stored, err := reg.Get(ctx, intent.Reference)
	require.NoError(t, err)
	require.Equal(t, "receipt-1", stored.ReceiptID)

	// Bound intents stay consumed.
	require.NoError(t, reg.Release(ctx, intent.Reference))
	stored, err = reg.Get(ctx, intent.Reference)
	require.NoError(t, err)
	require.True(t, stored.Consumed)
}

func TestReleaseAfterFailedBorrow(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)

	intent, err := reg.Create(ctx, "pi_123", "alice", uint256.NewInt(10))
	require.NoError(t, err)
	_, err = reg.RecordEvent(ctx, Event{Type: EventSucceeded, Reference: "pi_123"})
	require.NoError(t, err)
	_, err = reg.Consume(ctx, intent.Reference, "alice", uint256.NewInt(10))
	require.NoError(t, err)

	require.NoError(t, reg.Release(ctx, intent.Reference))
	_, err = reg.Consume(ctx, intent.Reference, "alice", uint256.NewInt(10))
	require.NoError(t, err)
}

func TestFailureEvents(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)

	failed, err := reg.Create(ctx, "pi_fail", "alice", uint256.NewInt(10))
	require.NoError(t, err)
	out, err := reg.RecordEvent(ctx, Event{Type: EventFailed, Reference: failed.Reference, Reason: "card_declined"})
	require.NoError(t, err)
	require.Equal(t, StatusFailed, out.Status)
	require.Equal(t, "card_declined", out.FailureReason)

	_, err = reg.RecordEvent(ctx, Event{Type: EventSucceeded, Reference: failed.Reference})
	require.ErrorIs(t, err, ErrInvalidTransition)

	canceled, err := reg.Create(ctx, "pi_cancel", "alice", uint256.NewInt(10))
	require.NoError(t, err)
	_, err = reg.RecordEvent(ctx, Event{Type: EventSucceeded, Reference: canceled.Reference})
	require.NoError(t, err)
	out, err = reg.RecordEvent(ctx, Event{Type: EventCanceled, Reference: canceled.Reference})
	require.NoError(t, err)
	require.Equal(t, StatusCanceled, out.Status)

	_, err = reg.RecordEvent(ctx, Event{Type: "charge.refunded", Reference: canceled.Reference})
	require.ErrorIs(t, err, ErrUnknownEvent)
	_, err = reg.RecordEvent(ctx, Event{Type: EventSucceeded, Reference: "pi_missing"})
	require.ErrorIs(t, err, ErrIntentNotFound)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)

	_, err := reg.Create(ctx, "", "alice", uint256.NewInt(0))
	require.ErrorIs(t, err, pool.ErrInvalidAmount)
	_, err = reg.Create(ctx, "", "", uint256.NewInt(1))
	require.ErrorIs(t, err, pool.ErrInvalidActor)

	_, err = reg.Create(ctx, "pi_dup", "alice", uint256.NewInt(1))
	require.NoError(t, err)
	_, err = reg.Create(ctx, "pi_dup", "alice", uint256.NewInt(1))
	require.Error(t, err)

	list, err := reg.ListByActor(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
