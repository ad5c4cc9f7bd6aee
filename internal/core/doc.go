// Package core implements lockdir's lock/unlock state machine and the
// privileged admin operations on top of the registry. It owns no persistent
// state and no copies of records; all mutations go through the registry,
// and the platform hide/reveal mechanism is an injected capability.
package core
