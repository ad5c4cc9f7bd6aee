// Package credential derives and verifies password credentials for lockdir.
//
// A Credential holds the salted, iterated PBKDF2-HMAC-SHA256 hash material
// needed to verify a password without storing it:
//   - 16-byte random salt (stored unencrypted)
//   - 210,000 iterations by default, 100,000 minimum
//   - 32-byte derived key
//
// Verification uses constant-time comparison so that timing does not leak
// where two keys first differ.
//
// Memory safety:
//   - Use ClearBytes() to zero password and key material after use
package credential
