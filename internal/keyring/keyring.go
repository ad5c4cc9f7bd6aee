// Package keyring caches the lockdir user password in the OS keyring,
// keyed by the registry ID so that multiple stores never collide.
package keyring

import (
	"github.com/zalando/go-keyring"
)

const serviceName = "lockdir"

// SaveUserPassword stores the user password for a registry in the OS
// keyring. The keyring API only takes strings, so an immutable copy of the
// password is made here that ClearBytes on the caller's slice cannot reach.
func SaveUserPassword(registryID string, password []byte) error {
	return keyring.Set(serviceName, registryID, string(password))
}

// UserPassword retrieves the cached user password for a registry.
func UserPassword(registryID string) ([]byte, error) {
	password, err := keyring.Get(serviceName, registryID)
	if err != nil {
		return nil, err
	}
	return []byte(password), nil
}

// ForgetUserPassword removes the cached user password for a registry.
func ForgetUserPassword(registryID string) error {
	return keyring.Delete(serviceName, registryID)
}

// HasUserPassword reports whether a password is cached for a registry.
func HasUserPassword(registryID string) bool {
	_, err := keyring.Get(serviceName, registryID)
	return err == nil
}
