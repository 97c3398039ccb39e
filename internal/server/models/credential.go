// Package models defines server-side data models persisted in the database.
package models

import "time"

// Credential is the encrypted credential record for one user. Username and
// password are sealed independently, each with its own nonce; the hint is
// plaintext because it is shown to users before they authenticate.
type Credential struct {
	UserID            string
	EncryptedUsername []byte
	UsernameNonce     []byte
	EncryptedPassword []byte
	PasswordNonce     []byte
	Hint              string
	// Version is the envelope scheme version the row was sealed with.
	Version   int
	UpdatedAt time.Time
}
