// Package ledger holds the in-memory collection of people and their running
// balances, and the operations that change them.
package ledger

import (
	"errors"
	"fmt"
	"math"

	"github.com/mmynk/smartsplit/internal/calculator"
	"github.com/mmynk/smartsplit/internal/models"
)

// ErrInvalidSelection is returned when an operation references a person that
// does not exist, uses a non-positive amount, or resolves to no beneficiaries.
// The ledger is left unchanged whenever it is returned.
var ErrInvalidSelection = errors.New("invalid selection")

// Ledger is an ordered collection of people. Order is insertion order and is
// the display order. The zero value is an empty, ready-to-use ledger.
//
// A Ledger is not safe for concurrent use; callers serialize actions.
type Ledger struct {
	people []models.Person
}

// New creates a ledger holding a copy of people, in order.
func New(people []models.Person) *Ledger {
	l := &Ledger{}
	l.people = append(l.people, people...)
	return l
}

// AddPeople appends one person per comma-separated name in raw and returns the
// number of people added. Names are trimmed, empty tokens dropped, and
// duplicates accepted.
func (l *Ledger) AddPeople(raw string) int {
	names := calculator.ParseNames(raw)
	for _, name := range names {
		l.people = append(l.people, models.NewPerson(name))
	}
	return len(names)
}

// ApplyExpense records that the person at payer paid amount on behalf of the
// people at beneficiaries.
//
// An empty beneficiaries list means everyone currently in the ledger. Each
// entry of beneficiaries is one share, so the payer may also be a beneficiary
// and nets against themselves. The payer's balance increases by amount and
// every share decreases by amount/len(beneficiaries).
func (l *Ledger) ApplyExpense(payer int, amount float64, beneficiaries []int) error {
	if !l.valid(payer) {
		return fmt.Errorf("%w: payer index %d out of range [0, %d)", ErrInvalidSelection, payer, len(l.people))
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %v", ErrInvalidSelection, amount)
	}

	if len(beneficiaries) == 0 {
		beneficiaries = l.everyone()
	}
	for _, i := range beneficiaries {
		if !l.valid(i) {
			return fmt.Errorf("%w: beneficiary index %d out of range [0, %d)", ErrInvalidSelection, i, len(l.people))
		}
	}

	share, err := calculator.SplitEvenly(amount, len(beneficiaries))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}

	l.people[payer].Balance += amount
	for _, i := range beneficiaries {
		l.people[i].Balance -= share
	}
	return nil
}

// SetBalance overwrites the balance of the person at index.
func (l *Ledger) SetBalance(index int, value float64) error {
	if !l.valid(index) {
		return fmt.Errorf("%w: index %d out of range [0, %d)", ErrInvalidSelection, index, len(l.people))
	}
	l.people[index].Balance = value
	return nil
}

// Reset removes every person.
func (l *Ledger) Reset() {
	l.people = nil
}

// People returns a copy of the people in ledger order.
func (l *Ledger) People() []models.Person {
	out := make([]models.Person, len(l.people))
	copy(out, l.people)
	return out
}

// Len returns the number of people.
func (l *Ledger) Len() int {
	return len(l.people)
}

// Total returns the sum of all balances. It drifts from zero only by floating
// point rounding of inexact shares and by manual edits.
func (l *Ledger) Total() float64 {
	var sum float64
	for _, p := range l.people {
		sum += p.Balance
	}
	return sum
}

func (l *Ledger) valid(i int) bool {
	return i >= 0 && i < len(l.people)
}

func (l *Ledger) everyone() []int {
	all := make([]int, len(l.people))
	for i := range all {
		all[i] = i
	}
	return all
}
