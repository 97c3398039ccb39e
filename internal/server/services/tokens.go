package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/secureledger/vault/internal/common"
	"github.com/secureledger/vault/internal/dbx"
	"github.com/secureledger/vault/internal/server/config"
	"github.com/secureledger/vault/internal/server/models"
	"github.com/secureledger/vault/internal/server/repositories/repomanager"
)

// resetTokenBytes is the entropy of a token value before encoding. 32 bytes
// is well past the 128-bit guessing floor.
const resetTokenBytes = 32

// TokenService issues and consumes password-reset tokens. It owns every
// lifecycle transition; the repositories underneath are passive storage.
type TokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokenTTL    time.Duration
}

func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *TokenService {
	return &TokenService{
		db:          db,
		repomanager: m,
		tokenTTL:    cfg.ResetTokenTTL,
	}
}

// Issue generates a fresh token for userID and persists it. Any still-active
// token for the same user is removed in the same transaction, so at most one
// token per user can ever be consumed.
func (s *TokenService) Issue(ctx context.Context, userID string) (*models.ResetToken, error) {

	value, err := common.MakeURLSafeToken(resetTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating token value: %w", err)
	}

	now := time.Now().UTC()
	token := &models.ResetToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     value,
		ExpiresAt: now.Add(s.tokenTTL),
		CreatedAt: now,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.ResetTokens(tx)

		if err := repo.DeleteActiveByUser(ctx, userID); err != nil {
			return fmt.Errorf("error superseding active tokens: %w", err)
		}

		return repo.Create(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	return token, nil
}

// ValidateAndConsume atomically consumes the token and returns the bound
// user id. Exactly one concurrent caller succeeds; losers get
// common.ErrTokenConsumed, and stale or unknown values get
// common.ErrTokenExpired / common.ErrTokenNotFound.
func (s *TokenService) ValidateAndConsume(ctx context.Context, tokenValue string) (string, error) {
	return s.consume(ctx, s.db, tokenValue)
}

// consume runs the conditional-update claim against the given handle, which
// may be an open transaction. When the claim matches nothing, a follow-up
// read classifies the failure. A consumed token stays "already consumed"
// even after its expiry passes; consumption is terminal.
func (s *TokenService) consume(ctx context.Context, db dbx.DBTX, tokenValue string) (string, error) {
	repo := s.repomanager.ResetTokens(db)
	now := time.Now().UTC()

	userID, err := repo.Consume(ctx, tokenValue, now)
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return "", fmt.Errorf("error consuming token: %w", err)
	}

	token, err := repo.Find(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrTokenNotFound
		}
		return "", fmt.Errorf("error inspecting token: %w", err)
	}

	if token.ConsumedAt != nil {
		return "", common.ErrTokenConsumed
	}
	if !now.Before(token.ExpiresAt) {
		return "", common.ErrTokenExpired
	}

	// The claim lost to a concurrent consumer that committed between our
	// two statements.
	return "", common.ErrTokenConsumed
}
