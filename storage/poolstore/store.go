package poolstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"vusdpool/native/pool"
	"vusdpool/storage"
)

const (
	poolPrefix    = "pool/"
	accountPrefix = "account/"
)

var poolScalars = []string{
	"totalSupply",
	"poolBalance",
	"collateralFactorBps",
	"liquidationBonusBps",
	"liquidationThresholdBps",
}

// Store persists the pool ledger as a flat table: one key per scalar under
// pool/ and one key per account field under account/<id>/. Values are
// decimal strings.
type Store struct {
	db storage.Database
}

func New(db storage.Database) *Store {
	return &Store{db: db}
}

// Persist writes the pool scalars and the given accounts in one batch. It
// satisfies pool.Journal.
func (s *Store) Persist(state pool.PoolState, accounts map[pool.AccountID]pool.Account) error {
	batch := storage.NewBatch()
	batch.Put(poolKey("totalSupply"), []byte(state.TotalSupply.Dec()))
	batch.Put(poolKey("poolBalance"), []byte(state.PoolBalance.Dec()))
	batch.Put(poolKey("collateralFactorBps"), []byte(strconv.FormatUint(state.CollateralFactorBps, 10)))
	batch.Put(poolKey("liquidationBonusBps"), []byte(strconv.FormatUint(state.LiquidationBonusBps, 10)))
	batch.Put(poolKey("liquidationThresholdBps"), []byte(strconv.FormatUint(state.LiquidationThresholdBps, 10)))
	for id, acct := range accounts {
		batch.Put(accountKey(id, pool.FieldBalance), []byte(acct.Balance.Dec()))
		batch.Put(accountKey(id, pool.FieldCollateral), []byte(acct.Collateral.Dec()))
		batch.Put(accountKey(id, pool.FieldBorrowed), []byte(acct.Borrowed.Dec()))
	}
	if err := s.db.Write(batch); err != nil {
		return fmt.Errorf("poolstore: persist: %w", err)
	}
	return nil
}

// Save writes a full snapshot.
func (s *Store) Save(snap pool.Snapshot) error {
	return s.Persist(snap.Pool, snap.Accounts)
}

// Load rebuilds a snapshot. The boolean is false when nothing has been
// persisted yet.
func (s *Store) Load() (pool.Snapshot, bool, error) {
	snap := pool.Snapshot{Accounts: make(map[pool.AccountID]pool.Account)}

	found := false
	for _, name := range poolScalars {
		raw, err := s.db.Get(poolKey(name))
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return pool.Snapshot{}, false, fmt.Errorf("poolstore: load %s: %w", name, err)
		}
		found = true
		if err := setPoolScalar(&snap.Pool, name, string(raw)); err != nil {
			return pool.Snapshot{}, false, err
		}
	}

	err := s.db.Iterate([]byte(accountPrefix), func(key, value []byte) error {
		id, field, err := parseAccountKey(string(key))
		if err != nil {
			return err
		}
		v, err := uint256.FromDecimal(string(value))
		if err != nil {
			return fmt.Errorf("poolstore: %s: %w", key, err)
		}
		acct := snap.Accounts[id]
		switch field {
		case pool.FieldBalance.String():
			acct.Balance = *v
		case pool.FieldCollateral.String():
			acct.Collateral = *v
		case pool.FieldBorrowed.String():
			acct.Borrowed = *v
		default:
			return fmt.Errorf("poolstore: %s: %w", key, pool.ErrUnknownField)
		}
		snap.Accounts[id] = acct
		found = true
		return nil
	})
	if err != nil {
		return pool.Snapshot{}, false, err
	}
	return snap, found, nil
}

func setPoolScalar(state *pool.PoolState, name, raw string) error {
	switch name {
	case "totalSupply", "poolBalance":
		v, err := uint256.FromDecimal(raw)
		if err != nil {
			return fmt.Errorf("poolstore: %s: %w", name, err)
		}
		if name == "totalSupply" {
			state.TotalSupply = *v
		} else {
			state.PoolBalance = *v
		}
		return nil
	}
	bps, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("poolstore: %s: %w", name, err)
	}
	switch name {
	case "collateralFactorBps":
		state.CollateralFactorBps = bps
	case "liquidationBonusBps":
		state.LiquidationBonusBps = bps
	case "liquidationThresholdBps":
		state.LiquidationThresholdBps = bps
	}
	return nil
}

func poolKey(name string) []byte {
	return []byte(poolPrefix + name)
}

func accountKey(id pool.AccountID, field pool.Field) []byte {
	return []byte(accountPrefix + string(id) + "/" + field.String())
}

func parseAccountKey(key string) (pool.AccountID, string, error) {
	rest := strings.TrimPrefix(key, accountPrefix)
	idx := strings.LastIndexByte(rest, '/')
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", fmt.Errorf("poolstore: malformed account key %q", key)
	}
	return pool.AccountID(rest[:idx]), rest[idx+1:], nil
}
