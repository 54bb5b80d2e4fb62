// Package user manages accounts and bearer tokens.
//
// It enforces the password policy, hashes passwords with argon2id, issues
// signed tokens on login and keeps a per-user audit trail of account and
// simulation activity, persisting everything via the domain.UserStore.
package user
