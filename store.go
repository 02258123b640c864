package devtrack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"
)

// Backend reads and writes the whole projects document.
//
// Read must return an error matching fs.ErrNotExist when the document does
// not exist yet.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// Store is the durable collection of project records, backed by a single
// JSON document.
//
// Every operation is a full read-modify-write of the document. Two processes
// saving at the same time lose one of the updates: the last full write wins.
// UpsertVersion can be used to detect it.
type Store struct {
	backend  Backend
	currency string
	now      func() time.Time
}

// NewStore returns a Store on the backend. Amounts saved without a currency
// are recorded in the given currency (DefaultCurrency if empty).
func NewStore(backend Backend, currency string) *Store {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Store{backend: backend, currency: currency, now: time.Now}
}

// Currency returns the store's default currency.
func (s *Store) Currency() string { return s.currency }

// Load reads the current collection.
//
// A missing, empty or invalid document is an empty collection, not an error.
// Read failures are logged and also result in an empty collection.
func (s *Store) Load(ctx context.Context) *Collection {
	c, err := s.load(ctx)
	if err != nil {
		log.Printf("warning, %v: using an empty collection instead", err)
		return NewCollection()
	}
	return c
}

// load is like Load but returns backend read failures, other than a missing
// document, as ErrIO. Mutations use it so that a document that could not be
// read is never overwritten.
func (s *Store) load(ctx context.Context) (*Collection, error) {
	data, err := s.backend.Read(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		return NewCollection(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read projects document: %w", ErrIO, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return NewCollection(), nil
	}
	c := NewCollection()
	if err := json.Unmarshal(data, c); err != nil {
		log.Printf("warning, projects document is invalid, starting from an empty collection: %v", err)
		return NewCollection(), nil
	}
	return c, nil
}

// Persist writes the full collection, replacing the document.
func (s *Store) Persist(ctx context.Context, c *Collection) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: cannot encode projects: %w", ErrIO, err)
	}
	data = append(data, '\n')
	if err := s.backend.Write(ctx, data); err != nil {
		return fmt.Errorf("%w: cannot write projects document: %w", ErrIO, err)
	}
	return nil
}

// validName returns the trimmed project name or a validation error.
func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: project name must not be blank", ErrValidation)
	}
	return name, nil
}

// Upsert saves the record under the project name, replacing any previous
// record of that project wholesale. The stored record is stamped with the
// current time and the next version, and returned.
//
// Errors match ErrValidation when nothing was written because the name or
// the record is invalid, and ErrIO when the document could not be read or
// written.
func (s *Store) Upsert(ctx context.Context, name string, r *Record) (*Record, error) {
	return s.upsert(ctx, name, r, nil)
}

// UpsertVersion is like Upsert but only saves when the stored version of the
// project is still expected (0 for a project that must not exist yet).
// Otherwise it returns an error matching ErrConflict.
func (s *Store) UpsertVersion(ctx context.Context, name string, r *Record, expected int64) (*Record, error) {
	return s.upsert(ctx, name, r, &expected)
}

func (s *Store) upsert(ctx context.Context, name string, r *Record, expected *int64) (*Record, error) {
	name, err := validName(name)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: project %q has no record", ErrValidation, name)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("project %q: %w", name, err)
	}

	c, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	var previous int64
	if prev, ok := c.Get(name); ok {
		previous = prev.Version
	}
	if expected != nil && *expected != previous {
		return nil, fmt.Errorf("%w: project %q is at version %d, expected %d", ErrConflict, name, previous, *expected)
	}

	stored := r.withCurrency(s.currency)
	if cur := stored.foreignCurrency(s.currency); cur != "" {
		return nil, fmt.Errorf("%w: project %q: currency %s does not match the portfolio currency %s", ErrValidation, name, cur, s.currency)
	}
	stored.Timestamp = s.now().UTC()
	stored.Version = previous + 1
	c.Set(name, &stored)

	if err := s.Persist(ctx, c); err != nil {
		return nil, err
	}
	return &stored, nil
}

// Delete removes a project and reports whether it existed. The document is
// only written when the project existed.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	name, err := validName(name)
	if err != nil {
		return false, err
	}
	c, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	if !c.Delete(name) {
		return false, nil
	}
	if err := s.Persist(ctx, c); err != nil {
		return false, err
	}
	return true, nil
}

// Get loads the collection and returns one project's record.
func (s *Store) Get(ctx context.Context, name string) (*Record, error) {
	r, ok := s.Load(ctx).Get(strings.TrimSpace(name))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return r, nil
}
