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

// SQLiteRepository implements Repository for the embedded sqlite backend.
// The conditional-update consume works the same way; sqlite serializes
// writers, so the single-winner property holds.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository constructs a repository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, token *models.ResetToken) error {
	query := `
		INSERT INTO reset_tokens (id, user_id, token, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.UserID, token.Token, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}

func (r *SQLiteRepository) Consume(ctx context.Context, tokenValue string, now time.Time) (string, error) {
	query := `
		UPDATE reset_tokens
		SET consumed_at = ?
		WHERE token = ? AND consumed_at IS NULL AND expires_at > ?
		RETURNING user_id
	`
	var userID string
	err := r.db.QueryRowContext(ctx, query, now, tokenValue, now).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return userID, nil
}

func (r *SQLiteRepository) Find(ctx context.Context, tokenValue string) (*models.ResetToken, error) {
	query := `
		SELECT id, user_id, token, expires_at, consumed_at, created_at
		FROM reset_tokens
		WHERE token = ?
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

func (r *SQLiteRepository) DeleteActiveByUser(ctx context.Context, userID string) error {
	query := `
		DELETE FROM reset_tokens
		WHERE user_id = ? AND consumed_at IS NULL
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}
