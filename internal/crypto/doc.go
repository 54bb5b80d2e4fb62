// Package crypto holds the credential primitives used by the server.
//
// Contents
//
//   - Argon2id password hashing in PHC string form (HashPassword,
//     VerifyPassword)
//   - HS256 bearer tokens whose signing key is derived from the configured
//     secret with HKDF (TokenIssuer)
//   - Short fingerprints for logging tokens without revealing them
//     (Fingerprint)
//
// # Notes
//
// Derived keys are wiped after use where practical. Secrets never appear in
// errors or logs.
package crypto
