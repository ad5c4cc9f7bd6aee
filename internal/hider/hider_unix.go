//go:build !windows

package hider

import (
	"fmt"
	"os"
)

const (
	hiddenMode   = 0000 // no access for anyone
	revealedMode = 0700 // owner rwx only
)

// platformToggler restricts access by dropping all permission bits on the
// folder. Unix has no hidden attribute, so inaccessibility is the mark.
type platformToggler struct{}

func (platformToggler) Hide(path string) error {
	if err := os.Chmod(path, hiddenMode); err != nil {
		return fmt.Errorf("failed to restrict %s: %w", path, err)
	}
	return nil
}

func (platformToggler) Reveal(path string) error {
	if err := os.Chmod(path, revealedMode); err != nil {
		return fmt.Errorf("failed to restore %s: %w", path, err)
	}
	return nil
}
