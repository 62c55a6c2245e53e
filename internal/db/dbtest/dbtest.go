// Package dbtest opens a private in-memory sqlite database per test.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/losalerces/backend/internal/config"
	"github.com/losalerces/backend/internal/db"
	"github.com/losalerces/backend/internal/model"
)

// Open returns a migrated database that is closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.DBConfig{
		Driver: config.DriverSQLite,
		Name:   fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
		// One connection keeps the shared-cache database free of table locks.
		MaxOpenConns: 1,
	}
	gdb, err := db.NewGormDB(cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}
