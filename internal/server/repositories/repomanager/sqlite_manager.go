package repomanager

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/secureledger/vault/internal/dbx"
	"github.com/secureledger/vault/internal/server/migrations"
	"github.com/secureledger/vault/internal/server/repositories/biometrics"
	"github.com/secureledger/vault/internal/server/repositories/credentials"
	"github.com/secureledger/vault/internal/server/repositories/resettokens"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager backs the vault with a single embedded database
// file, for single-node deployments without a Postgres instance.
type SQLiteRepositoryManager struct {
}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

// OpenSQLite opens the embedded database ready for concurrent callers.
// sqlite allows a single writer, so without a busy timeout a second
// transaction fails immediately with SQLITE_BUSY instead of waiting for its
// turn. The pool is capped at one connection so transactions queue inside
// the process, and the busy timeout covers writers outside it.
func OpenSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", sqliteDSN(dsn))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func sqliteDSN(path string) string {
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (m *SQLiteRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	return credentials.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) ResetTokens(db dbx.DBTX) resettokens.Repository {
	return resettokens.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Biometrics(db dbx.DBTX) biometrics.Repository {
	return biometrics.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.SQLite)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, "sqlite"); err != nil {
		return err
	}

	return nil
}
