package access

import (
	"context"
	"errors"
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

func TestManageAllowList(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)

	require.NoError(t, reg.ManageAllowList(ctx, "launch", []string{"alice", "bob"}, ActionAdd, "ops"))
	require.NoError(t, reg.ManageAllowList(ctx, "launch", []string{"alice"}, ActionAdd, "ops"))

	list, err := reg.AllowList(ctx, "launch")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"alice", "bob"}, list)

	ok, err := reg.IsAllowed(ctx, "launch", "alice")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = reg.IsAllowed(ctx, "other", "alice")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, reg.ManageAllowList(ctx, "launch", []string{"alice", "carol"}, ActionRemove, "ops"))
	list, err = reg.AllowList(ctx, "launch")
	require.NoError(t, err)
	require.Equal(t, []string{"bob"}, list)
}

func TestManageAllowListValidation(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)

	require.ErrorIs(t, reg.ManageAllowList(ctx, " ", []string{"a"}, ActionAdd, ""), ErrEventRequired)
	require.ErrorIs(t, reg.ManageAllowList(ctx, "e", nil, ActionAdd, ""), ErrActorRequired)
	require.ErrorIs(t, reg.ManageAllowList(ctx, "e", []string{"a", ""}, ActionAdd, ""), ErrActorRequired)
	require.ErrorIs(t, reg.ManageAllowList(ctx, "e", []string{"a"}, Action("replace"), ""), ErrUnknownAction)
}

func TestFreezeLifecycle(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)

	ok, err := reg.Permitted(ctx, "mallory")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, reg.Freeze(ctx, "mallory", "chargeback", "compliance"))
	require.NoError(t, reg.Freeze(ctx, "mallory", "chargeback confirmed", "compliance"))
	ok, err = reg.Permitted(ctx, "mallory")
	require.NoError(t, err)
	require.False(t, ok)

	var rec FreezeRecord
	require.NoError(t, reg.db.First(&rec, "actor = ?", "mallory").Error)
	require.Equal(t, "chargeback confirmed", rec.Reason)

	require.NoError(t, reg.Unfreeze(ctx, "mallory"))
	require.NoError(t, reg.Unfreeze(ctx, "mallory"))
	frozen, err := reg.IsFrozen(ctx, "mallory")
	require.NoError(t, err)
	require.False(t, frozen)
}

func TestRegistryGatesController(t *testing.T) {
	ctx := context.Background()
	reg := newRegistry(t)
	cfg := pool.DefaultConfig()
	cfg.GateEvent = "launch"
	ctrl, err := pool.NewController(nil, cfg, pool.WithAllowList(reg), pool.WithActorGate(reg))
	require.NoError(t, err)

	_, err = ctrl.Deposit(ctx, "alice", uint256.NewInt(10))
	require.True(t, errors.Is(err, pool.ErrNotAllowListed))

	require.NoError(t, reg.ManageAllowList(ctx, "launch", []string{"alice"}, ActionAdd, "ops"))
	_, err = ctrl.Deposit(ctx, "alice", uint256.NewInt(10))
	require.NoError(t, err)

	require.NoError(t, reg.Freeze(ctx, "alice", "review", "ops"))
	_, err = ctrl.Withdraw(ctx, "alice", uint256.NewInt(5))
	require.ErrorIs(t, err, pool.ErrActorFrozen)
}
