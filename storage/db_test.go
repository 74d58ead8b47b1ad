package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]Database {
	t.Helper()
	dir := t.TempDir()
	level, err := NewLevelDB(filepath.Join(dir, "level"))
	if err != nil {
		t.Fatalf("open leveldb: %v", err)
	}
	bolt, err := NewBoltDB(filepath.Join(dir, "pool.bolt"))
	if err != nil {
		t.Fatalf("open bolt: %v", err)
	}
	dbs := map[string]Database{
		"mem":     NewMemDB(),
		"leveldb": level,
		"bolt":    bolt,
	}
	t.Cleanup(func() {
		for _, db := range dbs {
			db.Close()
		}
	})
	return dbs
}

func TestDatabaseGetPutDelete(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := db.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			if err := db.Put([]byte("k"), []byte("v")); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, err := db.Get([]byte("k"))
			if err != nil || string(got) != "v" {
				t.Fatalf("get = %q, %v", got, err)
			}
			if err := db.Delete([]byte("k")); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := db.Get([]byte("k")); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected deleted key to be missing, got %v", err)
			}
		})
	}
}

func TestDatabaseBatchAndIterate(t *testing.T) {
	for name, db := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := db.Put([]byte("account/b/balance"), []byte("stale")); err != nil {
				t.Fatalf("put: %v", err)
			}
			batch := NewBatch()
			batch.Put([]byte("account/a/balance"), []byte("1"))
			batch.Put([]byte("account/b/balance"), []byte("2"))
			batch.Put([]byte("pool/balance"), []byte("3"))
			batch.Delete([]byte("account/c/balance"))
			if err := db.Write(batch); err != nil {
				t.Fatalf("write: %v", err)
			}

			var keys, values []string
			err := db.Iterate([]byte("account/"), func(key, value []byte) error {
				keys = append(keys, string(key))
				values = append(values, string(value))
				return nil
			})
			if err != nil {
				t.Fatalf("iterate: %v", err)
			}
			if len(keys) != 2 || keys[0] != "account/a/balance" || keys[1] != "account/b/balance" {
				t.Fatalf("unexpected keys %v", keys)
			}
			if values[1] != "2" {
				t.Fatalf("batch did not overwrite: %v", values)
			}

			stop := errors.New("stop")
			visited := 0
			err = db.Iterate(nil, func(_, _ []byte) error {
				visited++
				return stop
			})
			if !errors.Is(err, stop) || visited != 1 {
				t.Fatalf("iterate did not stop: visited=%d err=%v", visited, err)
			}
		})
	}
}
