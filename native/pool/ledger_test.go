package pool

import (
	"errors"
	"reflect"
	"testing"

	"github.com/holiman/uint256"
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestLedgerGetUnseenAccount(t *testing.T) {
	ledger := NewLedger(DefaultConfig().Params())
	acct := ledger.Get("nobody")
	if !acct.IsZero() {
		t.Fatalf("expected zero account, got %+v", acct)
	}
	if ledger.Len() != 0 {
		t.Fatalf("reads must not create accounts")
	}
}

func TestLedgerApplyDeltaAtomic(t *testing.T) {
	ledger := NewLedger(DefaultConfig().Params())
	if err := ledger.ApplyDelta([]Mutation{
		{Field: FieldPoolBalance, Delta: Credit(u(100))},
		{Account: "alice", Field: FieldBalance, Delta: Credit(u(100))},
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	before := ledger.Snapshot()

	err := ledger.ApplyDelta([]Mutation{
		{Field: FieldPoolBalance, Delta: Debit(u(50))},
		{Account: "alice", Field: FieldBalance, Delta: Debit(u(50))},
		{Account: "bob", Field: FieldBorrowed, Delta: Debit(u(1))},
	})
	if !errors.Is(err, ErrUnderflow) {
		t.Fatalf("expected underflow, got %v", err)
	}
	if after := ledger.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Fatalf("failed batch mutated state:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestLedgerApplyDeltaOverflow(t *testing.T) {
	ledger := NewLedger(DefaultConfig().Params())
	ceiling := new(uint256.Int).SetAllOne()
	if err := ledger.ApplyDelta([]Mutation{{Account: "a", Field: FieldCollateral, Delta: Credit(ceiling)}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	err := ledger.ApplyDelta([]Mutation{{Account: "a", Field: FieldCollateral, Delta: Credit(u(1))}})
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	got := ledger.Get("a")
	if !got.Collateral.Eq(ceiling) {
		t.Fatalf("collateral changed after overflow: %s", got.Collateral.Dec())
	}
}

func TestLedgerApplyDeltaSequential(t *testing.T) {
	ledger := NewLedger(DefaultConfig().Params())
	// A debit before the matching credit fails even though the batch nets out.
	err := ledger.ApplyDelta([]Mutation{
		{Account: "a", Field: FieldBalance, Delta: Debit(u(5))},
		{Account: "a", Field: FieldBalance, Delta: Credit(u(5))},
	})
	if !errors.Is(err, ErrUnderflow) {
		t.Fatalf("expected underflow, got %v", err)
	}
	if err := ledger.ApplyDelta([]Mutation{
		{Account: "a", Field: FieldBalance, Delta: Credit(u(5))},
		{Account: "a", Field: FieldBalance, Delta: Debit(u(5))},
	}); err != nil {
		t.Fatalf("credit then debit: %v", err)
	}
}

func TestLedgerRejectsMisaddressedFields(t *testing.T) {
	ledger := NewLedger(DefaultConfig().Params())
	cases := []Mutation{
		{Account: "a", Field: FieldPoolBalance, Delta: Credit(u(1))},
		{Field: FieldBalance, Delta: Credit(u(1))},
		{Account: "a", Field: Field(42), Delta: Credit(u(1))},
	}
	for _, m := range cases {
		if err := ledger.ApplyDelta([]Mutation{m}); !errors.Is(err, ErrUnknownField) {
			t.Fatalf("mutation %s: expected unknown field, got %v", m, err)
		}
	}
}

func TestLedgerSnapshotIsolation(t *testing.T) {
	ledger := NewLedger(DefaultConfig().Params())
	if err := ledger.ApplyDelta([]Mutation{{Account: "a", Field: FieldBalance, Delta: Credit(u(7))}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	snap := ledger.Snapshot()
	snap.Accounts["a"] = Account{}
	if got := ledger.Get("a"); got.Balance.Uint64() != 7 {
		t.Fatalf("snapshot aliases ledger state")
	}

	restored := NewLedgerFromSnapshot(ledger.Snapshot())
	if got := restored.Get("a"); got.Balance.Uint64() != 7 {
		t.Fatalf("restore lost balance: %s", got.Balance.Dec())
	}
	if restored.Pool().Params != ledger.Pool().Params {
		t.Fatalf("restore lost params")
	}
}

func TestInverseMutationsUndo(t *testing.T) {
	ledger := NewLedger(DefaultConfig().Params())
	muts := []Mutation{
		{Field: FieldPoolBalance, Delta: Credit(u(10))},
		{Account: "a", Field: FieldBalance, Delta: Credit(u(10))},
		{Account: "a", Field: FieldBalance, Delta: Debit(u(4))},
	}
	if err := ledger.ApplyDelta(muts); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := ledger.ApplyDelta(InverseMutations(muts)); err != nil {
		t.Fatalf("inverse: %v", err)
	}
	if got := ledger.Get("a"); !got.IsZero() {
		t.Fatalf("expected zero account, got balance %s", got.Balance.Dec())
	}
	if p := ledger.Pool(); !p.PoolBalance.IsZero() {
		t.Fatalf("expected empty pool, got %s", p.PoolBalance.Dec())
	}
}

func TestParseFieldAndDelta(t *testing.T) {
	for f := range fieldNames {
		got, err := ParseField(f.String())
		if err != nil || got != f {
			t.Fatalf("round trip %s: %v %v", f, got, err)
		}
	}
	if _, err := ParseField("shares"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected unknown field, got %v", err)
	}
	for _, d := range []Delta{Credit(u(12)), Debit(u(7))} {
		got, err := ParseDelta(d.String())
		if err != nil || got != d {
			t.Fatalf("round trip %s: %+v %v", d, got, err)
		}
	}
	for _, bad := range []string{"", "+", "12", "*3", "-x"} {
		if _, err := ParseDelta(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
