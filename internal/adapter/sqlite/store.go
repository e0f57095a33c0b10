package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ducnd58233/dataset-cache/internal/domain"
	"github.com/ducnd58233/dataset-cache/internal/port"
)

// Store implements port.HistoryRepository using SQLite
type Store struct {
	db *sql.DB
}

// Ensure Store implements port.HistoryRepository
var _ port.HistoryRepository = (*Store)(nil)

// Open opens a connection to the SQLite database, creating the schema if
// needed.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// migrate creates or updates the database schema
func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS operations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			destination TEXT NOT NULL DEFAULT '',
			mime_type TEXT NOT NULL DEFAULT '',
			succeeded BOOLEAN NOT NULL DEFAULT FALSE,
			message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_operations_kind ON operations(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_operations_created_at ON operations(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, migration)
		}
	}

	return nil
}

// Record stores one operation outcome
func (s *Store) Record(op *domain.Operation) error {
	createdAt := op.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := s.db.Exec(
		`INSERT INTO operations (kind, source, destination, mime_type, succeeded, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(op.Kind), op.Source, op.Destination, op.MIMEType, op.Succeeded, op.Message, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record operation: %w", err)
	}

	op.ID, _ = result.LastInsertId()
	op.CreatedAt = createdAt
	return nil
}

// Recent returns up to limit operations, newest first
func (s *Store) Recent(limit int) ([]*domain.Operation, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, kind, source, destination, mime_type, succeeded, message, created_at
		 FROM operations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query operations: %w", err)
	}
	defer rows.Close()

	var ops []*domain.Operation
	for rows.Next() {
		op := &domain.Operation{}
		var kind string
		if err := rows.Scan(&op.ID, &kind, &op.Source, &op.Destination,
			&op.MIMEType, &op.Succeeded, &op.Message, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		op.Kind = domain.OperationKind(kind)
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// PruneOlderThan deletes operations older than the given age
func (s *Store) PruneOlderThan(age time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-age)

	result, err := s.db.Exec(`DELETE FROM operations WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune operations: %w", err)
	}

	deleted, _ := result.RowsAffected()
	return int(deleted), nil
}
