// Package credentials declares the repository contract for encrypted
// credential records in persistent storage.
package credentials

import (
	"context"

	"github.com/secureledger/vault/internal/server/models"
)

// Repository defines operations over credential records. At most one record
// exists per user id; writes are idempotent upserts.
type Repository interface {
	// Upsert atomically replaces any existing record for cred.UserID.
	Upsert(ctx context.Context, cred *models.Credential) error

	// Get returns the stored record or common.ErrorNotFound when absent.
	Get(ctx context.Context, userID string) (*models.Credential, error)
}
