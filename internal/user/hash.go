package user

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// legacySalt is the single fixed salt shared by every legacy hash. Keeping
// it byte-identical is what makes previously stored hashes verify; see the
// auth.scheme config option for the per-hash-salted alternative.
const legacySalt = "gearXchange"

const bcryptCost = 12

// Hasher derives and checks credential hashes. The identifier passed to
// Compare is the string the caller logged in with; the legacy scheme mixes
// it into the hash input, bcrypt ignores it.
type Hasher interface {
	Hash(password, username string) (string, error)
	Compare(stored, password, identifier string) bool
}

// NewHasher returns the hasher for a configured scheme name.
func NewHasher(scheme string) (Hasher, error) {
	switch scheme {
	case "", "legacy":
		return LegacyHasher{}, nil
	case "bcrypt":
		return BcryptHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown auth scheme %q", scheme)
	}
}

// LegacyHasher implements the original hex SHA-256 scheme over
// salt || password || username. A single global salt is weak against
// precomputation; it stays available only for hash compatibility.
type LegacyHasher struct{}

// Hash derives the legacy hash for a password and username.
func (LegacyHasher) Hash(password, username string) (string, error) {
	sum := sha256.Sum256([]byte(legacySalt + password + username))
	return hex.EncodeToString(sum[:]), nil
}

// Compare recomputes the hash with the supplied identifier. Logging in by
// email therefore only matches when the account was registered under that
// exact string; stored hashes keep verifying exactly as before.
func (h LegacyHasher) Compare(stored, password, identifier string) bool {
	computed, _ := h.Hash(password, identifier)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(computed)) == 1
}

// BcryptHasher hashes credentials with bcrypt and per-hash random salts.
type BcryptHasher struct{}

// Hash derives a bcrypt hash; the username is not part of the input.
func (BcryptHasher) Hash(password, _ string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Compare verifies a plaintext password against a bcrypt hash.
func (BcryptHasher) Compare(stored, password, _ string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
