// Package services implements the vault's business operations on top of the
// cipher envelope and the storage repositories.
package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"fmt"
	"time"

	"github.com/secureledger/vault/internal/cryptox"
	"github.com/secureledger/vault/internal/dbx"
	"github.com/secureledger/vault/internal/server/models"
	"github.com/secureledger/vault/internal/server/repositories/credentials"
	"github.com/secureledger/vault/internal/server/repositories/repomanager"
)

// Credentials is the decrypted credential payload returned to authorized
// callers. It never includes ciphertext, nonces, or key material.
type Credentials struct {
	Username string
	Password string
	Hint     string
}

// VaultService orchestrates the cipher envelope, the credential store, and
// the token service. It is the sole API surface consumed by the transport.
type VaultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      *cryptox.Cipher
	tokens      *TokenService
}

func NewVaultService(db *sql.DB, m repomanager.RepositoryManager, cipher *cryptox.Cipher, tokens *TokenService) *VaultService {
	return &VaultService{
		db:          db,
		repomanager: m,
		cipher:      cipher,
		tokens:      tokens,
	}
}

// StoreCredentials seals the payload and upserts the record. Calling it
// again for the same user fully replaces the previous record.
func (s *VaultService) StoreCredentials(ctx context.Context, userID string, creds Credentials) error {
	repo := s.repomanager.Credentials(s.db)
	return s.sealAndUpsert(ctx, repo, userID, creds)
}

// RetrieveCredentials fetches and opens the record for userID. Fails with
// common.ErrorNotFound when no record exists and common.ErrCrypto when
// decryption fails (corruption or key mismatch; not retried).
func (s *VaultService) RetrieveCredentials(ctx context.Context, userID string) (*Credentials, error) {
	repo := s.repomanager.Credentials(s.db)

	cred, err := repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	username, err := s.cipher.Open(cred.EncryptedUsername, cred.UsernameNonce)
	if err != nil {
		return nil, err
	}
	password, err := s.cipher.Open(cred.EncryptedPassword, cred.PasswordNonce)
	if err != nil {
		return nil, err
	}

	return &Credentials{
		Username: string(username),
		Password: string(password),
		Hint:     cred.Hint,
	}, nil
}

// InitiatePasswordReset issues a reset token for userID. Fails with
// common.ErrorNotFound when the user has no credential record.
func (s *VaultService) InitiatePasswordReset(ctx context.Context, userID string) (*models.ResetToken, error) {
	repo := s.repomanager.Credentials(s.db)

	if _, err := repo.Get(ctx, userID); err != nil {
		return nil, err
	}

	return s.tokens.Issue(ctx, userID)
}

// CompletePasswordReset consumes the token and reseals the record with the
// new password, keeping the stored username and hint. Consume and upsert
// share one transaction: on any failure the record is left untouched.
func (s *VaultService) CompletePasswordReset(ctx context.Context, tokenValue string, newPassword string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		userID, err := s.tokens.consume(ctx, tx, tokenValue)
		if err != nil {
			return err
		}

		repo := s.repomanager.Credentials(tx)
		cred, err := repo.Get(ctx, userID)
		if err != nil {
			return err
		}

		username, err := s.cipher.Open(cred.EncryptedUsername, cred.UsernameNonce)
		if err != nil {
			return err
		}

		return s.sealAndUpsert(ctx, repo, userID, Credentials{
			Username: string(username),
			Password: newPassword,
			Hint:     cred.Hint,
		})
	})
}

// EnrollBiometrics seals the raw enrollment template and upserts it for the
// user. The user must already have a credential record.
func (s *VaultService) EnrollBiometrics(ctx context.Context, userID string, template []byte) error {
	if _, err := s.repomanager.Credentials(s.db).Get(ctx, userID); err != nil {
		return err
	}

	ciphertext, nonce, err := s.cipher.Seal(template)
	if err != nil {
		return err
	}

	repo := s.repomanager.Biometrics(s.db)
	return repo.Upsert(ctx, &models.Biometric{
		UserID:            userID,
		EncryptedTemplate: ciphertext,
		TemplateNonce:     nonce,
		Version:           cryptox.SchemeVersion,
		EnrolledAt:        time.Now().UTC(),
	})
}

// VerifyBiometrics opens the enrolled template and compares it with the
// candidate in constant time. Fails with common.ErrorNotFound when the user
// has never enrolled.
func (s *VaultService) VerifyBiometrics(ctx context.Context, userID string, candidate []byte) (bool, error) {
	repo := s.repomanager.Biometrics(s.db)

	bio, err := repo.Get(ctx, userID)
	if err != nil {
		return false, err
	}

	template, err := s.cipher.Open(bio.EncryptedTemplate, bio.TemplateNonce)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(template, candidate) == 1, nil
}

func (s *VaultService) sealAndUpsert(ctx context.Context, repo credentials.Repository, userID string, creds Credentials) error {
	usernameCT, usernameNonce, err := s.cipher.Seal([]byte(creds.Username))
	if err != nil {
		return fmt.Errorf("error sealing username: %w", err)
	}
	passwordCT, passwordNonce, err := s.cipher.Seal([]byte(creds.Password))
	if err != nil {
		return fmt.Errorf("error sealing password: %w", err)
	}

	return repo.Upsert(ctx, &models.Credential{
		UserID:            userID,
		EncryptedUsername: usernameCT,
		UsernameNonce:     usernameNonce,
		EncryptedPassword: passwordCT,
		PasswordNonce:     passwordNonce,
		Hint:              creds.Hint,
		Version:           cryptox.SchemeVersion,
		UpdatedAt:         time.Now().UTC(),
	})
}
