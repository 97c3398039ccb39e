package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/secureledger/vault/internal/common"
	"github.com/secureledger/vault/internal/dbx"
	"github.com/secureledger/vault/internal/server/models"
)

// SQLiteRepository implements Repository for the embedded sqlite backend.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository constructs a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, cred *models.Credential) error {
	query := `
		INSERT INTO credentials (user_id, encrypted_username, username_nonce, encrypted_password, password_nonce, hint, version, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			encrypted_username = excluded.encrypted_username,
			username_nonce = excluded.username_nonce,
			encrypted_password = excluded.encrypted_password,
			password_nonce = excluded.password_nonce,
			hint = excluded.hint,
			version = excluded.version,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		cred.UserID, cred.EncryptedUsername, cred.UsernameNonce,
		cred.EncryptedPassword, cred.PasswordNonce, cred.Hint, cred.Version, cred.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, userID string) (*models.Credential, error) {
	query := `
		SELECT user_id, encrypted_username, username_nonce, encrypted_password, password_nonce, hint, version, updated_at
		FROM credentials
		WHERE user_id = ?
	`
	cred := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&cred.UserID, &cred.EncryptedUsername, &cred.UsernameNonce,
		&cred.EncryptedPassword, &cred.PasswordNonce, &cred.Hint, &cred.Version, &cred.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return cred, nil
}
