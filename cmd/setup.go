package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/lockdir/internal/core"
	"github.com/illarion/lockdir/internal/credential"
	"github.com/illarion/lockdir/internal/prompt"
)

// Setup performs first-time initialization: it creates the registry and
// records independently salted user and admin credentials.
func Setup(store string) {
	fmt.Println("=== lockdir setup ===")

	userPassword := readSetupPassword(prompt.UserPasswordEnv, "user password")
	defer credential.ClearBytes(userPassword)

	adminPassword := readSetupPassword(prompt.AdminPasswordEnv, "admin password")
	defer credential.ClearBytes(adminPassword)

	if err := core.Setup(StorePath(store), userPassword, adminPassword); err != nil {
		HandleError(err)
	}

	fmt.Println("✓ Setup complete")
	fmt.Println("You can now use 'lockdir lock' and 'lockdir unlock'")
}

// readSetupPassword takes a password from the environment or prompts twice,
// retrying until the entries match and meet the minimum length.
func readSetupPassword(envName, label string) []byte {
	if pw := prompt.FromEnv(envName); pw != nil {
		return pw
	}

	for {
		password, err := prompt.ReadNewPassword(label, core.MinPasswordLen)
		switch {
		case err == nil:
			return password
		case errors.Is(err, prompt.ErrMismatch):
			fmt.Fprintln(os.Stderr, "Passwords don't match. Try again.")
		case errors.Is(err, prompt.ErrTooShort):
			fmt.Fprintf(os.Stderr, "Password too short. Minimum %d characters.\n", core.MinPasswordLen)
		default:
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(ExitFailure)
		}
	}
}
