// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/smartsplit/internal/models"
	"github.com/mmynk/smartsplit/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store using SQLite.
// People are kept in a single table ordered by position.
type Store struct {
	db *sql.DB
}

// New creates a Store with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*Store, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces all stored people in one transaction.
func (s *Store) Save(ctx context.Context, people []models.Person) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM people"); err != nil {
		return fmt.Errorf("failed to clear people: %w", err)
	}

	for i, p := range people {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO people (position, name, balance) VALUES (?, ?, ?)",
			i, p.Name, p.Balance,
		)
		if err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Load retrieves all people in position order.
func (s *Store) Load(ctx context.Context) ([]models.Person, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, balance FROM people ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query people: %w", err)
	}
	defer rows.Close()

	people := []models.Person{}
	for rows.Next() {
		var name sql.NullString
		var balance sql.NullFloat64
		if err := rows.Scan(&name, &balance); err != nil {
			return nil, fmt.Errorf("%w: %v", storage.ErrCorruptData, err)
		}
		if !name.Valid || name.String == "" || !balance.Valid {
			return nil, fmt.Errorf("%w: row %d is incomplete", storage.ErrCorruptData, len(people))
		}
		people = append(people, models.Person{Name: name.String, Balance: balance.Float64})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	return people, nil
}

// Delete removes all stored people. The database file itself is kept.
func (s *Store) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM people"); err != nil {
		return fmt.Errorf("failed to delete people: %w", err)
	}
	return nil
}
