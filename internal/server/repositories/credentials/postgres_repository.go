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

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, cred *models.Credential) error {
	query := `
		INSERT INTO credentials (user_id, encrypted_username, username_nonce, encrypted_password, password_nonce, hint, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			encrypted_username = EXCLUDED.encrypted_username,
			username_nonce = EXCLUDED.username_nonce,
			encrypted_password = EXCLUDED.encrypted_password,
			password_nonce = EXCLUDED.password_nonce,
			hint = EXCLUDED.hint,
			version = EXCLUDED.version,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		cred.UserID, cred.EncryptedUsername, cred.UsernameNonce,
		cred.EncryptedPassword, cred.PasswordNonce, cred.Hint, cred.Version, cred.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.Credential, error) {
	query := `
		SELECT user_id, encrypted_username, username_nonce, encrypted_password, password_nonce, hint, version, updated_at
		FROM credentials
		WHERE user_id = $1
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
