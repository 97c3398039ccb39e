// Package common defines shared constants and sentinel errors used across
// the vault. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// ErrCrypto covers sealing/opening failures: absent or malformed key,
	// tampered ciphertext, wrong nonce. Never retried.
	ErrCrypto = errors.New("crypto error")

	// ErrStorage wraps I/O failures from the durable store. Callers may
	// retry with backoff; the vault itself does not.
	ErrStorage = errors.New("storage error")

	// Reset-token lifecycle errors. Kept distinct internally; the transport
	// collapses them into one external message.
	ErrTokenNotFound = errors.New("reset token not found")
	ErrTokenExpired  = errors.New("reset token expired")
	ErrTokenConsumed = errors.New("reset token already consumed")
)
