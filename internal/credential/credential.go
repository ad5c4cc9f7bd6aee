package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize          = 16     // Salt size in bytes
	KeySize           = 32     // Derived key size in bytes
	MinIterations     = 100000 // Lowest PBKDF2 iteration count accepted
	DefaultIterations = 210000 // Default PBKDF2 iterations (OWASP minimum)
)

var ErrInvalidParameter = errors.New("invalid parameter")

// Credential is the stored verifier for one password: salt, iteration count
// and the derived key. The password itself is never stored.
type Credential struct {
	Salt       []byte `json:"salt"`
	Iterations int    `json:"iterations"`
	Key        []byte `json:"key"`
}

// Store derives and verifies credentials. It owns no persistent state.
type Store struct {
	Iterations int
}

// NewStore returns a Store using the default iteration count.
func NewStore() *Store {
	return &Store{Iterations: DefaultIterations}
}

// GenerateSalt returns SaltSize cryptographically secure random bytes.
func (s *Store) GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Derive computes the PBKDF2-HMAC-SHA256 key for password. It is a pure
// function of (password, salt, iterations).
func (s *Store) Derive(password, salt []byte, iterations int) ([]byte, error) {
	if iterations < MinIterations {
		return nil, fmt.Errorf("%w: iterations %d below minimum %d", ErrInvalidParameter, iterations, MinIterations)
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrInvalidParameter, SaltSize, len(salt))
	}
	return pbkdf2.Key(password, salt, iterations, KeySize, sha256.New), nil
}

// Create generates a fresh salt and derives a new Credential for password.
func (s *Store) Create(password []byte) (*Credential, error) {
	salt, err := s.GenerateSalt()
	if err != nil {
		return nil, err
	}
	key, err := s.Derive(password, salt, s.Iterations)
	if err != nil {
		return nil, err
	}
	return &Credential{
		Salt:       salt,
		Iterations: s.Iterations,
		Key:        key,
	}, nil
}

// Verify recomputes the derived key for password using the credential's
// stored salt and iterations and compares it to the stored key in constant
// time.
func (s *Store) Verify(password []byte, cred *Credential) bool {
	if cred == nil {
		return false
	}
	key, err := s.Derive(password, cred.Salt, cred.Iterations)
	if err != nil {
		return false
	}
	defer ClearBytes(key)
	return ConstantTimeCompare(key, cred.Key)
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices.
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// ClearBytes securely clears a byte slice.
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
