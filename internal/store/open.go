package store

import (
	"fmt"
	"path/filepath"

	"acidbase/internal/domain"
)

// Supported storage drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open returns the store selected by driver. For DriverFile path is a
// directory; for DriverSQLite it is the database file, defaulting to
// acidbase.db inside a directory path.
func Open(driver, path string) (domain.Store, error) {
	switch driver {
	case DriverFile, "":
		return NewFileStore(path), nil
	case DriverSQLite:
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, "acidbase.db")
		}
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
