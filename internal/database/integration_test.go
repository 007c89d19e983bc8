//go:build integration

package database

import (
	"context"
	"os"
	"testing"

	"postboard/internal/logging"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: go test -tags integration ./internal/database/ (DATABASE_URL in env or ../../.env)
func TestMigrationsAgainstPostgres(t *testing.T) {
	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	logger := logging.Discard()
	mg, err := NewMigrator(dsn, logger)
	require.NoError(t, err)
	defer mg.Close()

	require.NoError(t, mg.Up())
	require.NoError(t, mg.Up(), "second run is a no-op")

	version, dirty, ok, err := mg.Version()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, dirty)
	assert.Equal(t, uint(2), version)

	db, err := Open(context.Background(), Config{DSN: dsn, MaxOpenConns: 2})
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM POSTS"))
	assert.GreaterOrEqual(t, count, 0)
}
