// Package repomanager hands out repositories bound to a DB handle or an open
// transaction, and owns schema migrations for the chosen backend.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/secureledger/vault/internal/dbx"
	"github.com/secureledger/vault/internal/server/repositories/biometrics"
	"github.com/secureledger/vault/internal/server/repositories/credentials"
	"github.com/secureledger/vault/internal/server/repositories/resettokens"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Credentials(db dbx.DBTX) credentials.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
	Biometrics(db dbx.DBTX) biometrics.Repository
}
