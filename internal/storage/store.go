// Package storage provides abstractions for persisting the ledger's people.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/smartsplit/internal/models"
)

// ErrCorruptData is returned by Load when persisted data exists but cannot be
// read back as an ordered list of people.
var ErrCorruptData = errors.New("corrupt ledger data")

// Store defines the interface for ledger persistence.
// This abstraction allows swapping backends (JSON file, SQLite)
// without changing the session layer.
type Store interface {
	// Save replaces everything previously persisted with people, in order.
	Save(ctx context.Context, people []models.Person) error

	// Load returns the persisted people in order.
	// Missing data is not an error: an empty collection is returned.
	// Malformed data returns an error wrapping ErrCorruptData.
	Load(ctx context.Context) ([]models.Person, error)

	// Delete removes persisted data. It is a no-op when nothing is persisted.
	Delete(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// LoadBestEffort loads people from store and never fails.
//
// Any load failure, corrupt data and read errors alike, degrades to an empty
// ledger. The returned slice is always usable; the error reports why the
// fallback happened so the caller can log it.
func LoadBestEffort(ctx context.Context, store Store) ([]models.Person, error) {
	people, err := store.Load(ctx)
	if err != nil {
		return []models.Person{}, err
	}
	if people == nil {
		people = []models.Person{}
	}
	return people, nil
}
