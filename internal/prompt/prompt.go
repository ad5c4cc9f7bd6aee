// Package prompt reads passwords for lockdir. Interactive reads go through
// the terminal without echoing; environment variables allow scripted use.
// Passwords are only ever handled as in-memory byte slices, never as
// command-line arguments.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/illarion/lockdir/internal/credential"
)

// Environment overrides for non-interactive use.
const (
	UserPasswordEnv  = "LOCKDIR_PASSWORD"
	AdminPasswordEnv = "LOCKDIR_ADMIN_PASSWORD"
)

var (
	ErrMismatch = errors.New("passwords do not match")
	ErrTooShort = errors.New("password too short")
)

// ReadPassword reads a password from the terminal without echoing.
func ReadPassword(prompt string) ([]byte, error) {
	fmt.Print(prompt)

	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println() // new line after the hidden input

	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}

// ReadNewPassword prompts twice for a new password, requiring both entries
// to match and meet the minimum length.
func ReadNewPassword(label string, minLen int) ([]byte, error) {
	first, err := ReadPassword(fmt.Sprintf("Enter %s: ", label))
	if err != nil {
		return nil, err
	}
	defer credential.ClearBytes(first)

	second, err := ReadPassword(fmt.Sprintf("Confirm %s: ", label))
	if err != nil {
		return nil, err
	}
	defer credential.ClearBytes(second)

	if !credential.ConstantTimeCompare(first, second) {
		return nil, ErrMismatch
	}
	if len(first) < minLen {
		return nil, fmt.Errorf("%w: minimum %d characters", ErrTooShort, minLen)
	}

	result := make([]byte, len(first))
	copy(result, first)
	return result, nil
}

// FromEnv returns the password from the given environment variable, or nil
// when it is unset. The caller owns the returned copy.
func FromEnv(name string) []byte {
	password := os.Getenv(name)
	if password == "" {
		return nil
	}
	result := make([]byte, len(password))
	copy(result, password)
	return result
}
