package core

import (
	"fmt"

	"github.com/illarion/lockdir/internal/credential"
	"github.com/illarion/lockdir/internal/registry"
)

// MinPasswordLen is the shortest password accepted at setup and on password
// changes.
const MinPasswordLen = 6

// ValidatePassword rejects passwords shorter than MinPasswordLen.
func ValidatePassword(password []byte) error {
	if len(password) < MinPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters",
			credential.ErrInvalidParameter, MinPasswordLen)
	}
	return nil
}

// Setup creates a new registry at storePath with independently salted user
// and admin credentials. It fails with registry.ErrAlreadyInitialized when
// a store already exists.
func Setup(storePath string, userPassword, adminPassword []byte) error {
	if err := ValidatePassword(userPassword); err != nil {
		return err
	}
	if err := ValidatePassword(adminPassword); err != nil {
		return err
	}

	creds := credential.NewStore()
	userCred, err := creds.Create(userPassword)
	if err != nil {
		return err
	}
	adminCred, err := creds.Create(adminPassword)
	if err != nil {
		return err
	}

	reg, err := registry.Create(storePath, &registry.State{
		UserCredential:  userCred,
		AdminCredential: adminCred,
		Folders:         []registry.FolderRecord{},
	})
	if err != nil {
		return err
	}
	return reg.Close()
}
