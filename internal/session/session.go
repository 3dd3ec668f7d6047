// Package session dispatches user actions against one ledger and one store.
//
// A Session is what a presentation surface talks to. It loads the ledger on
// open using the best-effort policy, serializes actions so that only one runs
// at a time, and persists only when asked to save.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmynk/smartsplit/internal/calculator"
	"github.com/mmynk/smartsplit/internal/ledger"
	"github.com/mmynk/smartsplit/internal/metrics"
	"github.com/mmynk/smartsplit/internal/models"
	"github.com/mmynk/smartsplit/internal/storage"
)

var (
	ErrNotEnoughPeople = errors.New("add at least 2 people first")
	ErrNoPeople        = errors.New("add people first")
)

// Action names used in logs and metrics.
const (
	ActionAddPeople   = "add_people"
	ActionAddExpense  = "add_expense"
	ActionEditBalance = "edit_balance"
	ActionSave        = "save"
	ActionReset       = "reset"
)

// Session owns the ledger for the lifetime of the process.
type Session struct {
	mu      sync.Mutex
	ledger  *ledger.Ledger
	store   storage.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithMetrics records actions in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Open loads the persisted ledger from store and returns a session around it.
// Load failures never prevent opening: the session starts empty and the cause
// is logged.
func Open(ctx context.Context, store storage.Store, opts ...Option) *Session {
	s := &Session{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	people, err := storage.LoadBestEffort(ctx, store)
	if err != nil {
		s.logger.Warn("Failed to load data, starting with an empty ledger", "error", err)
		s.metrics.LoadFallback()
	} else {
		s.logger.Info("Ledger loaded", "people", len(people))
	}
	s.ledger = ledger.New(people)
	s.metrics.SetPeople(s.ledger.Len())

	return s
}

// People returns the current people in ledger order.
func (s *Session) People() []models.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.People()
}

// Settlements suggests payments that would settle the current balances.
func (s *Session) Settlements() []models.DebtEdge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return calculator.SuggestSettlements(s.ledger.People())
}

// AddPeople adds one person per comma-separated name. It returns how many
// were added and the people as they stand after the action.
func (s *Session) AddPeople(raw string) (int, []models.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := s.ledger.AddPeople(raw)
	s.done(ActionAddPeople, nil, "added", added)
	return added, s.ledger.People()
}

// AddExpense splits amount paid by payer among beneficiaries, or among
// everyone when beneficiaries is empty. It returns the people as they stand
// after the action, whether or not it succeeded.
func (s *Session) AddExpense(payer int, amount float64, beneficiaries []int) ([]models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.ledger.Len() < 2 {
		err = ErrNotEnoughPeople
	} else {
		err = s.ledger.ApplyExpense(payer, amount, beneficiaries)
	}
	s.done(ActionAddExpense, err,
		"payer", payer,
		"amount", amount,
		"beneficiaries", beneficiaries,
	)
	return s.ledger.People(), err
}

// EditBalance overwrites the balance of the person at index and returns the
// people as they stand after the action.
func (s *Session) EditBalance(index int, value float64) ([]models.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.ledger.Len() == 0 {
		err = ErrNoPeople
	} else {
		err = s.ledger.SetBalance(index, value)
	}
	s.done(ActionEditBalance, err, "index", index, "value", value)
	return s.ledger.People(), err
}

// Save persists the current people and returns how many were written. On
// failure the in-memory ledger is left untouched and the error is returned
// for the user to see.
func (s *Session) Save(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	people := s.ledger.People()
	err := s.store.Save(ctx, people)
	if err != nil {
		err = fmt.Errorf("failed to save ledger: %w", err)
	}
	s.done(ActionSave, err)
	if err != nil {
		return 0, err
	}
	return len(people), nil
}

// Reset deletes persisted data and clears the ledger. The ledger is only
// cleared once deletion succeeded.
func (s *Session) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.Delete(ctx)
	if err != nil {
		err = fmt.Errorf("failed to reset ledger: %w", err)
	} else {
		s.ledger.Reset()
	}
	s.done(ActionReset, err)
	return err
}

// done logs and counts a finished action. Callers hold s.mu.
func (s *Session) done(action string, err error, args ...any) {
	s.metrics.ObserveAction(action, err)
	s.metrics.SetPeople(s.ledger.Len())

	args = append([]any{"action", action, "people", s.ledger.Len()}, args...)
	if err != nil {
		s.logger.Warn("Action failed", append(args, "error", err)...)
		return
	}
	s.logger.Info("Action applied", args...)
}
