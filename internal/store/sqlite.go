package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/jeefy/lorademo/internal/models"
)

const schema = `CREATE TABLE IF NOT EXISTS examples (
	position    INTEGER PRIMARY KEY,
	instruction TEXT NOT NULL,
	input       TEXT NOT NULL,
	output      TEXT NOT NULL
)`

type sqliteStore struct {
	path string
	db   *sql.DB
}

// NewSQLite opens (creating if needed) a SQLite database at path holding the
// dataset in an examples table.
func NewSQLite(path string) (Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &sqliteStore{path: path, db: db}, nil
}

func (s *sqliteStore) Path() string { return s.path }

func (s *sqliteStore) Close() error { return s.db.Close() }

func (s *sqliteStore) Save(ctx context.Context, examples []models.Example) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM examples`); err != nil {
		return fmt.Errorf("store: clear examples: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO examples (position, instruction, input, output) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store: prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, e := range examples {
		if _, err := stmt.ExecContext(ctx, i, e.Instruction, e.Input, e.Output); err != nil {
			return fmt.Errorf("store: insert example %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

func (s *sqliteStore) Load(ctx context.Context) ([]models.Example, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT instruction, input, output FROM examples ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("store: query examples: %w", err)
	}
	defer rows.Close()
	out := []models.Example{}
	for rows.Next() {
		var e models.Example
		if err := rows.Scan(&e.Instruction, &e.Input, &e.Output); err != nil {
			return nil, fmt.Errorf("store: scan example: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
