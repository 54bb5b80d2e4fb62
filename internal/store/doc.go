// Package store provides persistence for simulations, results and accounts.
//
// It contains two implementations of domain.Store:
//   - FileStore serialises each collection as a JSON file under a data
//     directory. Writes go through a temp file and an atomic rename.
//   - SQLiteStore keeps the same records in a SQLite database using the
//     pure-Go modernc.org/sqlite driver.
//
// TokenFileStore is the client-side cache of login tokens used by the CLI.
//
// All methods are safe for concurrent use.
package store
