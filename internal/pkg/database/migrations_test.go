package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
)

func writeMigration(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestRunMigrations_AppliesInOrder(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "000002_second.up.sql", "CREATE TABLE b (id INT)")
	writeMigration(t, dir, "000001_first.up.sql", "CREATE TABLE a (id INT)")
	writeMigration(t, dir, "000001_first.down.sql", "DROP TABLE a")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE a").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE b").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err = RunMigrations(sqlx.NewDb(db, "sqlmock"), dir, logger.New("test"))

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_StopsOnFailure(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "000001_first.up.sql", "CREATE TABLE a (id INT)")
	writeMigration(t, dir, "000002_second.up.sql", "CREATE TABLE b (id INT)")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE a").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = RunMigrations(sqlx.NewDb(db, "sqlmock"), dir, logger.New("test"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "000001_first.up.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_EmptyDir(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = RunMigrations(sqlx.NewDb(db, "sqlmock"), t.TempDir(), logger.New("test"))

	assert.ErrorContains(t, err, "no migrations found")
}
