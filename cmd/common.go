package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/illarion/lockdir/internal/core"
	"github.com/illarion/lockdir/internal/credential"
	"github.com/illarion/lockdir/internal/keyring"
	"github.com/illarion/lockdir/internal/prompt"
	"github.com/illarion/lockdir/internal/registry"
)

// StoreEnv overrides the default registry location.
const StoreEnv = "LOCKDIR_STORE"

// Exit codes, one per failure category, for scripting.
const (
	ExitOK                 = 0
	ExitFailure            = 1
	ExitNotInitialized     = 2
	ExitInvalidCredential  = 3
	ExitPathNotFound       = 4
	ExitAlreadyLocked      = 5
	ExitNotLocked          = 6
	ExitCorruptStore       = 7
	ExitConcurrent         = 8
	ExitPartialFailure     = 9
	ExitInvalidParameter   = 10
	ExitAlreadyInitialized = 11
)

// StorePath resolves the registry file location: the --store flag wins,
// then the LOCKDIR_STORE environment variable, then the per-user default.
func StorePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(StoreEnv); env != "" {
		return env
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		// No home directory; keep the store next to the binary's CWD.
		return "lockdir.db"
	}
	return filepath.Join(configDir, "lockdir", "registry.db")
}

// HandleError prints a human-readable message for every failure kind and
// exits with its category code.
func HandleError(err error) {
	switch {
	case errors.Is(err, registry.ErrNotInitialized):
		fmt.Fprintf(os.Stderr, "Error: lockdir not initialized\n")
		fmt.Fprintf(os.Stderr, "Run 'lockdir setup' first\n")
		os.Exit(ExitNotInitialized)
	case errors.Is(err, registry.ErrAlreadyInitialized):
		fmt.Fprintf(os.Stderr, "Error: lockdir is already set up\n")
		fmt.Fprintf(os.Stderr, "Use 'lockdir admin change-pass' to change passwords\n")
		os.Exit(ExitAlreadyInitialized)
	case errors.Is(err, core.ErrInvalidCredential):
		fmt.Fprintf(os.Stderr, "Error: wrong password\n")
		os.Exit(ExitInvalidCredential)
	case errors.Is(err, core.ErrPathNotFound), errors.Is(err, core.ErrNotDirectory):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitPathNotFound)
	case errors.Is(err, core.ErrAlreadyLocked):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitAlreadyLocked)
	case errors.Is(err, core.ErrNotLocked):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitNotLocked)
	case errors.Is(err, registry.ErrCorruptStore):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		fmt.Fprintf(os.Stderr, "The store has not been modified; restore it from a backup\n")
		os.Exit(ExitCorruptStore)
	case errors.Is(err, registry.ErrConcurrentModification):
		fmt.Fprintf(os.Stderr, "Error: another lockdir command is running, try again\n")
		os.Exit(ExitConcurrent)
	case errors.Is(err, core.ErrPartialFailure):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitPartialFailure)
	case errors.Is(err, credential.ErrInvalidParameter):
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitInvalidParameter)
	default:
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitFailure)
	}
}

// openRegistry opens the store or exits with the mapped failure code.
func openRegistry(store string) *registry.Registry {
	reg, err := registry.Open(store)
	if err != nil {
		HandleError(err)
	}
	return reg
}

// userPassword obtains the user password: environment variable first, then
// the OS keyring (verified, a stale entry falls through), then an
// interactive prompt. The caller clears the returned bytes.
func userPassword(reg *registry.Registry, verify func([]byte) error) ([]byte, error) {
	if pw := prompt.FromEnv(prompt.UserPasswordEnv); pw != nil {
		return pw, nil
	}

	if id, err := reg.ID(); err == nil {
		if pw, err := keyring.UserPassword(id); err == nil {
			if verify(pw) == nil {
				return pw, nil
			}
			credential.ClearBytes(pw)
			fmt.Fprintln(os.Stderr, "Keyring password is stale, prompting instead")
		}
	}

	return prompt.ReadPassword("Enter user password: ")
}

// adminPassword obtains the admin password from the environment or an
// interactive prompt. The admin password is never cached in the keyring.
func adminPassword() ([]byte, error) {
	if pw := prompt.FromEnv(prompt.AdminPasswordEnv); pw != nil {
		return pw, nil
	}
	return prompt.ReadPassword("Enter admin password: ")
}
