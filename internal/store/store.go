package store

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/jeefy/lorademo/internal/models"
)

// Store persists the demo dataset. Save replaces whatever was stored before;
// there are no partial updates or deletes.
type Store interface {
	Save(ctx context.Context, examples []models.Example) error
	Load(ctx context.Context) ([]models.Example, error)
	Path() string
	Close() error
}

// Open picks a backend from the file extension: .db, .sqlite and .sqlite3
// use SQLite, anything else is a JSON array file.
func Open(path string) (Store, error) {
	if IsSQLite(path) {
		return NewSQLite(path)
	}
	return NewJSONFile(path), nil
}

// IsSQLite reports whether Open would use the SQLite backend for path.
func IsSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	default:
		return false
	}
}
