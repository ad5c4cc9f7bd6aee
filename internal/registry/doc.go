// Package registry persists lockdir's state: the user and admin credentials
// plus the ordered list of folder records. Everything lives in a single
// bbolt database file.
//
// Every mutation fully rewrites the mutable keys (credentials, folder list,
// checksum) inside one transaction, so a crash can never leave a torn write
// behind. bbolt's advisory file lock, taken with a short timeout, turns an
// accidental concurrent invocation into ErrConcurrentModification instead of
// a silent overwrite.
package registry
