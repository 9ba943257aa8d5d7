package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Credential verifies a secret presented at login.
type Credential interface {
	Verify(secret string) bool
}

// Hasher turns a plaintext secret into a stored Credential.
type Hasher interface {
	Hash(secret string) (Credential, error)
}

// MaxSecretBytes is the longest secret bcrypt accepts.
const MaxSecretBytes = 72

// ErrSecretTooLong is returned by hashers that cannot store the secret.
var ErrSecretTooLong = errors.New("secret too long")

// Bcrypt stores secrets as bcrypt hashes.
type Bcrypt struct {
	Cost int
}

// Hash implements Hasher.
func (b Bcrypt) Hash(secret string) (Credential, error) {
	if len(secret) > MaxSecretBytes {
		return nil, fmt.Errorf("hash secret: %w", ErrSecretTooLong)
	}
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}
	return bcryptCredential(hash), nil
}

type bcryptCredential []byte

func (c bcryptCredential) Verify(secret string) bool {
	return bcrypt.CompareHashAndPassword(c, []byte(secret)) == nil
}

// Plaintext keeps secrets as-is. Only meant for demos and tests.
type Plaintext struct{}

// Hash implements Hasher.
func (Plaintext) Hash(secret string) (Credential, error) {
	return plainCredential(secret), nil
}

type plainCredential string

func (c plainCredential) Verify(secret string) bool {
	return subtle.ConstantTimeCompare([]byte(c), []byte(secret)) == 1
}

// NewHasher returns the hasher for the configured scheme ("bcrypt" or "plain").
func NewHasher(scheme string, cost int) (Hasher, error) {
	switch scheme {
	case "", "bcrypt":
		return Bcrypt{Cost: cost}, nil
	case "plain":
		return Plaintext{}, nil
	default:
		return nil, fmt.Errorf("unknown credential scheme %q", scheme)
	}
}
