package sqldbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"vusdpool/storage/sqldb"
)

// Open returns an isolated in-memory SQLite database that is closed when
// the test finishes. migrate runs against the fresh schema. A single
// connection keeps shared-cache writers from tripping table locks.
func Open(t testing.TB, migrate func(*gorm.DB) error) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sqldb.Open(sqldb.DriverSQLite, dsn, sqldb.Options{MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close(db) })
	if migrate != nil {
		if err := migrate(db); err != nil {
			t.Fatalf("failed to migrate: %v", err)
		}
	}
	return db
}
