package models

import "time"

// ResetToken is a single-use, time-limited password-reset token bound to a
// user. ConsumedAt is nil while the token is still active; it is set exactly
// once by the atomic consume. Expiry is derived at read time from ExpiresAt
// rather than stored as a state column.
type ResetToken struct {
	ID         string
	UserID     string
	Token      string
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// Active reports whether the token can still be consumed at the given
// instant. A token exactly at its expiry is already expired.
func (t *ResetToken) Active(now time.Time) bool {
	return t.ConsumedAt == nil && now.Before(t.ExpiresAt)
}
