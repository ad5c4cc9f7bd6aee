// Package hider toggles the OS-level attribute that makes a folder hidden
// and access-restricted. The core depends only on the Toggler interface;
// the concrete mechanism is a thin wrapper over one platform call.
package hider

// Toggler marks a folder hidden/restricted and reverses that mark.
type Toggler interface {
	// Hide makes the folder at path hidden and inaccessible.
	Hide(path string) error

	// Reveal reverses Hide, making the folder visible and accessible again.
	Reveal(path string) error
}

// New returns the Toggler for the current platform.
func New() Toggler {
	return platformToggler{}
}
