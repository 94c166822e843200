package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	data, err := fs.ReadFile(migrations, "migrations/00001_create_users.sql")
	require.NoError(t, err)
	assert.Contains(t, string(data), "-- +goose Up")
	assert.Contains(t, string(data), "UNIQUE INDEX")
}

func TestMigratePostgres_UsesSeam(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUp
	defer func() { gooseUp = orig }()

	var gotDir string
	gooseUp = func(ctx context.Context, d *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, MigratePostgres(context.Background(), db))
	assert.Equal(t, "migrations", gotDir)

	gooseUp = func(ctx context.Context, d *sql.DB, dir string) error {
		return errors.New("boom")
	}
	err = MigratePostgres(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "running migrations")
}
