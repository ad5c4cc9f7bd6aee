package cmd

import (
	"fmt"
	"os"

	"github.com/illarion/lockdir/internal/core"
	"github.com/illarion/lockdir/internal/credential"
	"github.com/illarion/lockdir/internal/hider"
	"github.com/illarion/lockdir/internal/keyring"
	"github.com/illarion/lockdir/internal/prompt"
)

// KeyringSave verifies the user password and caches it in the OS keyring
// under this registry's ID.
func KeyringSave(store string) {
	reg := openRegistry(StorePath(store))
	defer reg.Close()

	engine := core.NewEngine(reg, hider.New())

	password, err := prompt.ReadPassword("Enter user password: ")
	if err != nil {
		HandleError(err)
	}
	defer credential.ClearBytes(password)

	if err := engine.VerifyUserPassword(password); err != nil {
		HandleError(err)
	}

	id, err := reg.ID()
	if err != nil {
		HandleError(err)
	}

	if err := keyring.SaveUserPassword(id, password); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to save to keyring: %s\n", err)
		os.Exit(ExitFailure)
	}

	fmt.Println("Password saved to keyring")
}

// KeyringForget removes the cached user password from the OS keyring.
func KeyringForget(store string) {
	reg := openRegistry(StorePath(store))
	defer reg.Close()

	id, err := reg.ID()
	if err != nil {
		HandleError(err)
	}

	if err := keyring.ForgetUserPassword(id); err != nil {
		fmt.Println("No password stored in keyring")
		return
	}

	fmt.Println("Password removed from keyring")
}

// KeyringStatus reports whether a password is cached for this registry.
func KeyringStatus(store string) {
	reg := openRegistry(StorePath(store))
	defer reg.Close()

	id, err := reg.ID()
	if err != nil {
		HandleError(err)
	}

	if keyring.HasUserPassword(id) {
		fmt.Println("Password: stored in keyring")
	} else {
		fmt.Println("Password: not stored")
	}
}
