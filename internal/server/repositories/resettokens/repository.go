// Package resettokens declares the repository contract for password-reset
// tokens in persistent storage.
package resettokens

import (
	"context"
	"time"

	"github.com/secureledger/vault/internal/server/models"
)

// Repository defines operations for issuing, consuming, and superseding
// reset tokens. Implementations are passive persistence surfaces; lifecycle
// decisions live in the service layer.
type Repository interface {
	// Create inserts a new token row.
	Create(ctx context.Context, token *models.ResetToken) error

	// Consume marks the token consumed and returns its user id, in one
	// conditional write: the row must exist, be unconsumed, and expire
	// strictly after now. Exactly one concurrent caller can succeed; all
	// others get common.ErrorNotFound and classify the failure via Find.
	Consume(ctx context.Context, tokenValue string, now time.Time) (string, error)

	// Find returns the token row by its opaque value, consumed or not.
	// Returns common.ErrorNotFound when absent.
	Find(ctx context.Context, tokenValue string) (*models.ResetToken, error)

	// DeleteActiveByUser removes any unconsumed tokens for the user, so a
	// newly issued token is the only live one. Deleting zero rows is not an
	// error.
	DeleteActiveByUser(ctx context.Context, userID string) error
}
