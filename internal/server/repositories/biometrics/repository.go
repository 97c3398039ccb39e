// Package biometrics declares the repository contract for sealed biometric
// enrollment templates.
package biometrics

import (
	"context"

	"github.com/secureledger/vault/internal/server/models"
)

// Repository defines operations over biometric enrollments, one per user.
type Repository interface {
	// Upsert replaces any existing enrollment for bio.UserID.
	Upsert(ctx context.Context, bio *models.Biometric) error

	// Get returns the stored enrollment or common.ErrorNotFound when absent.
	Get(ctx context.Context, userID string) (*models.Biometric, error)
}
