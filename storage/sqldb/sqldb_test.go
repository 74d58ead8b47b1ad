package sqldb_test

import (
	"testing"

	"gorm.io/gorm"

	"vusdpool/storage/sqldb"
	"vusdpool/storage/sqldb/sqldbtest"
)

type widget struct {
	ID   uint
	Name string
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := sqldb.Open("mysql", "dsn", sqldb.Options{}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if _, err := sqldb.Open(sqldb.DriverSQLite, "  ", sqldb.Options{}); err == nil {
		t.Fatalf("expected dsn error")
	}
}

func TestOpenTestMigrates(t *testing.T) {
	db := sqldbtest.Open(t, func(db *gorm.DB) error { return db.AutoMigrate(&widget{}) })
	if err := db.Create(&widget{Name: "x"}).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	var count int64
	if err := db.Model(&widget{}).Count(&count).Error; err != nil || count != 1 {
		t.Fatalf("count = %d, %v", count, err)
	}
}
