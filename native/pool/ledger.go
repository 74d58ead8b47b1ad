package pool

import (
	"fmt"
	"sync"

	"github.com/holiman/uint256"
)

// Ledger stores account positions and the pool scalars. All writes go through
// ApplyDelta, which either applies every mutation or none of them.
type Ledger struct {
	mu       sync.RWMutex
	pool     PoolState
	accounts map[AccountID]Account
}

// NewLedger returns an empty ledger governed by params.
func NewLedger(params Params) *Ledger {
	return &Ledger{
		pool:     PoolState{Params: params},
		accounts: make(map[AccountID]Account),
	}
}

// NewLedgerFromSnapshot rebuilds a ledger from a persisted snapshot.
func NewLedgerFromSnapshot(snap Snapshot) *Ledger {
	l := NewLedger(snap.Pool.Params)
	l.Restore(snap)
	return l
}

// Get returns the account position, or the zero position for unseen ids.
func (l *Ledger) Get(id AccountID) Account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.accounts[id]
}

// Pool returns a copy of the pool scalars.
func (l *Ledger) Pool() PoolState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.pool
}

// Len reports how many accounts the ledger has seen.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.accounts)
}

// SetParams replaces the risk scalars. Callers are expected to validate
// params first.
func (l *Ledger) SetParams(params Params) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pool.Params = params
}

// Snapshot returns a deep copy of the ledger.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	accounts := make(map[AccountID]Account, len(l.accounts))
	for id, acct := range l.accounts {
		accounts[id] = acct
	}
	return Snapshot{Pool: l.pool, Accounts: accounts}
}

// Restore replaces the ledger contents with snap.
func (l *Ledger) Restore(snap Snapshot) {
	accounts := make(map[AccountID]Account, len(snap.Accounts))
	for id, acct := range snap.Accounts {
		accounts[id] = acct
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pool = snap.Pool
	l.accounts = accounts
}

// ApplyDelta applies muts atomically. Mutations are evaluated in order
// against a staged copy, so an intermediate underflow fails the batch even if
// a later credit would have covered it. On error nothing is written.
func (l *Ledger) ApplyDelta(muts []Mutation) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pool, staged, err := l.stage(muts)
	if err != nil {
		return err
	}
	l.pool = pool
	for id, acct := range staged {
		l.accounts[id] = acct
	}
	return nil
}

// Preview returns the accounts muts would touch, in their post-state, without
// writing anything. It fails exactly when ApplyDelta would.
func (l *Ledger) Preview(muts []Mutation) (map[AccountID]Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, staged, err := l.stage(muts)
	if err != nil {
		return nil, err
	}
	return staged, nil
}

// stage must be called with l.mu held.
func (l *Ledger) stage(muts []Mutation) (PoolState, map[AccountID]Account, error) {
	pool := l.pool
	staged := make(map[AccountID]Account)
	for i, m := range muts {
		if m.Field.PoolScoped() {
			if m.Account != "" {
				return PoolState{}, nil, fmt.Errorf("mutation %d: %w: %s is pool scoped", i, ErrUnknownField, m.Field)
			}
			target := poolField(&pool, m.Field)
			if err := applyDelta(target, m.Delta); err != nil {
				return PoolState{}, nil, fmt.Errorf("mutation %d (%s): %w", i, m, err)
			}
			continue
		}
		if m.Account == "" {
			return PoolState{}, nil, fmt.Errorf("mutation %d: %w: %s requires an account", i, ErrUnknownField, m.Field)
		}
		acct, ok := staged[m.Account]
		if !ok {
			acct = l.accounts[m.Account]
		}
		target := accountField(&acct, m.Field)
		if target == nil {
			return PoolState{}, nil, fmt.Errorf("mutation %d: %w: %s", i, ErrUnknownField, m.Field)
		}
		if err := applyDelta(target, m.Delta); err != nil {
			return PoolState{}, nil, fmt.Errorf("mutation %d (%s): %w", i, m, err)
		}
		staged[m.Account] = acct
	}
	return pool, staged, nil
}

func poolField(p *PoolState, f Field) *uint256.Int {
	switch f {
	case FieldTotalSupply:
		return &p.TotalSupply
	case FieldPoolBalance:
		return &p.PoolBalance
	default:
		return nil
	}
}

func accountField(a *Account, f Field) *uint256.Int {
	switch f {
	case FieldBalance:
		return &a.Balance
	case FieldCollateral:
		return &a.Collateral
	case FieldBorrowed:
		return &a.Borrowed
	default:
		return nil
	}
}

func applyDelta(target *uint256.Int, d Delta) error {
	if d.Negative {
		if _, underflow := target.SubOverflow(target, &d.Amount); underflow {
			return ErrUnderflow
		}
		return nil
	}
	if _, overflow := target.AddOverflow(target, &d.Amount); overflow {
		return ErrOverflow
	}
	return nil
}
