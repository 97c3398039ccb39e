package resettokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) Create(ctx context.Context, token *models.ResetToken) error {
	query := `
		INSERT INTO reset_tokens (id, user_id, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.UserID, token.Token, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}

// Consume is the one true compare-and-set in the system: the conditional
// UPDATE either claims the row or matches nothing.
func (r *PostgresRepository) Consume(ctx context.Context, tokenValue string, now time.Time) (string, error) {
	query := `
		UPDATE reset_tokens
		SET consumed_at = $2
		WHERE token = $1 AND consumed_at IS NULL AND expires_at > $2
		RETURNING user_id
	`
	var userID string
	err := r.db.QueryRowContext(ctx, query, tokenValue, now).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return userID, nil
}

func (r *PostgresRepository) Find(ctx context.Context, tokenValue string) (*models.ResetToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, consumed_at, created_at
		FROM reset_tokens
		WHERE token = $1
	`
	token := &models.ResetToken{}
	err := r.db.QueryRowContext(ctx, query, tokenValue).Scan(
		&token.ID, &token.UserID, &token.Token, &token.ExpiresAt, &token.ConsumedAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return token, nil
}

func (r *PostgresRepository) DeleteActiveByUser(ctx context.Context, userID string) error {
	query := `
		DELETE FROM reset_tokens
		WHERE user_id = $1 AND consumed_at IS NULL
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}
