package models

import "time"

// Biometric holds one user's sealed biometric enrollment template.
type Biometric struct {
	UserID            string
	EncryptedTemplate []byte
	TemplateNonce     []byte
	Version           int
	EnrolledAt        time.Time
}
