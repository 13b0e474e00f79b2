package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DSN(t *testing.T) {
	cfg := Config{
		Host:           "db.internal",
		Port:           5432,
		Database:       "ecohabit",
		User:           "eco",
		Password:       "secret",
		SSLMode:        "require",
		ConnectTimeout: 10_000_000_000,
	}

	dsn := cfg.DSN()

	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "dbname=ecohabit")
	assert.Contains(t, dsn, "sslmode=require")
	assert.Contains(t, dsn, "connect_timeout=10")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "require", cfg.SSLMode)
	assert.EqualValues(t, 10, cfg.MaxConns)
}

func TestTxOptions(t *testing.T) {
	assert.Equal(t, pgx.ReadWrite, DefaultTxOptions().AccessMode)
	assert.Equal(t, pgx.ReadOnly, ReadOnlyTxOptions().AccessMode)
}

func TestIsForeignKeyViolation(t *testing.T) {
	fkErr := &pgconn.PgError{Code: "23503"}

	assert.True(t, IsForeignKeyViolation(fkErr))
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("insert: %w", fkErr)))
	assert.False(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsForeignKeyViolation(errors.New("plain error")))
	assert.False(t, IsForeignKeyViolation(nil))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(pgx.ErrNoRows))
	assert.True(t, IsNoRows(fmt.Errorf("scan: %w", pgx.ErrNoRows)))
	assert.False(t, IsNoRows(errors.New("other")))
}

func TestGetMigrations_Ordered(t *testing.T) {
	migrations := GetMigrations()
	require.NotEmpty(t, migrations)

	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version, "versions must be sequential")
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.UpSQL)
	}
}
