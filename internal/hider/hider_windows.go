//go:build windows

package hider

import (
	"fmt"
	"syscall"
)

// platformToggler sets the hidden and system attributes on the folder, the
// same mark Explorer uses for protected operating system folders.
type platformToggler struct{}

func (platformToggler) Hide(path string) error {
	return setAttributes(path, func(attrs uint32) uint32 {
		return attrs | syscall.FILE_ATTRIBUTE_HIDDEN | syscall.FILE_ATTRIBUTE_SYSTEM
	})
}

func (platformToggler) Reveal(path string) error {
	return setAttributes(path, func(attrs uint32) uint32 {
		return attrs &^ (syscall.FILE_ATTRIBUTE_HIDDEN | syscall.FILE_ATTRIBUTE_SYSTEM)
	})
}

func setAttributes(path string, change func(uint32) uint32) error {
	p, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("invalid path %s: %w", path, err)
	}
	attrs, err := syscall.GetFileAttributes(p)
	if err != nil {
		return fmt.Errorf("failed to read attributes of %s: %w", path, err)
	}
	if err := syscall.SetFileAttributes(p, change(attrs)); err != nil {
		return fmt.Errorf("failed to set attributes of %s: %w", path, err)
	}
	return nil
}
