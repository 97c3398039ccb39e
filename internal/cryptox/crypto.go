// Package cryptox implements the cipher envelope around stored secrets:
// authenticated encryption with AES-256-GCM and a fresh random nonce per
// seal, plus argon2id derivation of the master key from a passphrase.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"github.com/secureledger/vault/internal/common"
	"golang.org/x/crypto/argon2"
)

// SchemeVersion identifies the envelope layout stored with every record.
// Bump on any change to cipher, key size or nonce handling.
const SchemeVersion = 1

// KeySize is the required master key length (AES-256).
const KeySize = 32

const nonceSize = 12

// Cipher seals and opens secret payloads under a process-wide master key.
// The key is read-only after construction and safe to share across requests.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher validates the master key and builds the AEAD. The key must be
// exactly KeySize bytes; anything else is a configuration error.
func NewCipher(masterKey []byte) (*Cipher, error) {
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d", common.ErrCrypto, KeySize, len(masterKey))
	}
	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	return &Cipher{aead: aead}, nil
}

// Seal encrypts plaintext and returns the ciphertext together with the
// nonce used. A new random nonce is generated on every call; nonces are
// never derived from input or counters.
func (c *Cipher) Seal(plaintext []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	return c.aead.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// Open decrypts and authenticates ciphertext. Tampered data, a wrong nonce
// and a wrong key all fail with the same error, so callers cannot tell the
// cases apart.
func (c *Cipher) Open(ciphertext, nonce []byte) ([]byte, error) {
	if len(nonce) != nonceSize {
		return nil, fmt.Errorf("%w: authentication failed", common.ErrCrypto)
	}
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", common.ErrCrypto)
	}
	return plaintext, nil
}

// DeriveMasterKey derives a KeySize-byte master key from a passphrase and
// salt using argon2id. Same inputs always produce the same key.
func DeriveMasterKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// MakeVerifier returns a hash of the master key that is safe to store or
// compare without revealing the key itself.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}
