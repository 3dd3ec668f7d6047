// Package jsonfile provides the default storage.Store: a pretty-printed JSON
// array of {"name", "balance"} records in a single file.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mmynk/smartsplit/internal/models"
	"github.com/mmynk/smartsplit/internal/storage"
)

// DefaultPath is the file name used when none is configured.
const DefaultPath = "split_data.json"

const indent = "    "

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store persists people to a JSON file.
//
// Writes are plain whole-file overwrites: there is no locking and no atomic
// rename, so a crash mid-write can leave a corrupt file. Load treats that as
// ErrCorruptData.
type Store struct {
	path string
}

// New creates a Store for the file at path.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// record mirrors models.Person with pointers so missing fields are detectable.
type record struct {
	Name    *string  `json:"name"`
	Balance *float64 `json:"balance"`
}

// Save writes people to the file, replacing previous contents.
func (s *Store) Save(_ context.Context, people []models.Person) error {
	if people == nil {
		people = []models.Person{}
	}
	data, err := json.MarshalIndent(people, "", indent)
	if err != nil {
		return fmt.Errorf("failed to encode people: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	return nil
}

// Load reads people from the file. A missing file yields an empty collection.
func (s *Store) Load(_ context.Context) ([]models.Person, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Person{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	return decode(data)
}

// Delete removes the file if present.
func (s *Store) Delete(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete data file: %w", err)
	}
	return nil
}

// Close is a no-op; the file is only open during Save and Load.
func (s *Store) Close() error {
	return nil
}

func decode(data []byte) ([]models.Person, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array", storage.ErrCorruptData)
	}

	var records []record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrCorruptData, err)
	}

	people := make([]models.Person, 0, len(records))
	for i, r := range records {
		if r.Name == nil || *r.Name == "" {
			return nil, fmt.Errorf("%w: record %d has no name", storage.ErrCorruptData, i)
		}
		if r.Balance == nil {
			return nil, fmt.Errorf("%w: record %d has no balance", storage.ErrCorruptData, i)
		}
		people = append(people, models.Person{Name: *r.Name, Balance: *r.Balance})
	}
	return people, nil
}
