package biometrics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/secureledger/vault/internal/common"
	"github.com/secureledger/vault/internal/dbx"
	"github.com/secureledger/vault/internal/server/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, bio *models.Biometric) error {
	query := `
		INSERT INTO biometrics (user_id, encrypted_template, template_nonce, version, enrolled_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			encrypted_template = excluded.encrypted_template,
			template_nonce = excluded.template_nonce,
			version = excluded.version,
			enrolled_at = excluded.enrolled_at
	`
	_, err := r.db.ExecContext(ctx, query,
		bio.UserID, bio.EncryptedTemplate, bio.TemplateNonce, bio.Version, bio.EnrolledAt)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, userID string) (*models.Biometric, error) {
	query := `
		SELECT user_id, encrypted_template, template_nonce, version, enrolled_at
		FROM biometrics
		WHERE user_id = ?
	`
	bio := &models.Biometric{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&bio.UserID, &bio.EncryptedTemplate, &bio.TemplateNonce, &bio.Version, &bio.EnrolledAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return bio, nil
}
