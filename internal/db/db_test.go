package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/losalerces/backend/internal/config"
	"github.com/losalerces/backend/internal/model"
)

func TestNewGormDB_SQLiteMigrates(t *testing.T) {
	cfg := &config.DBConfig{
		Driver:       config.DriverSQLite,
		Name:         fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name()),
		MaxOpenConns: 1,
	}

	gdb, err := NewGormDB(cfg)
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(gdb))

	for _, table := range []string{"Cliente", "Contactos", "Productos", "Personal", "Cotizacion", "ProductoCotizacion", "PersonalCotizacion", "Usuarios", "Roles", "UserRoles"} {
		assert.True(t, gdb.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestNewGormDB_UnknownDriver(t *testing.T) {
	_, err := NewGormDB(&config.DBConfig{Driver: "oracle", Name: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported db driver")
}

func TestGormLogger_SkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	l := newGormLogger(log.New(&buf, "", 0), false)
	sql := func() (string, int64) { return `SELECT * FROM "Usuarios" WHERE normalized_email = 'X'`, 0 }

	l.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(context.Background(), time.Now(), sql, errors.New("connection reset"))
	assert.Contains(t, buf.String(), "connection reset")
}
