package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/smartsplit/internal/ledger"
	"github.com/mmynk/smartsplit/internal/metrics"
	"github.com/mmynk/smartsplit/internal/models"
	"github.com/mmynk/smartsplit/internal/storage/jsonfile"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// setupSession opens a session over a JSON file in a temp directory.
func setupSession(t *testing.T) (*Session, string, *metrics.Metrics) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "split_data.json")
	m := metrics.New(prometheus.NewRegistry())
	s := Open(context.Background(), jsonfile.New(path), WithMetrics(m), WithLogger(quietLogger()))
	return s, path, m
}

func TestSession_ExpenseScenario(t *testing.T) {
	s, _, m := setupSession(t)

	if added, _ := s.AddPeople("Alice, Bob, Carol"); added != 3 {
		t.Fatalf("AddPeople() = %d, want 3", added)
	}
	people, err := s.AddExpense(0, 30, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}

	want := []float64{20, -10, -10}
	for i, p := range people {
		if math.Abs(p.Balance-want[i]) > 0.01 {
			t.Errorf("%s balance = %v, want %v", p.Name, p.Balance, want[i])
		}
	}

	edges := s.Settlements()
	if len(edges) != 2 || edges[0].To != "Alice" || edges[1].To != "Alice" {
		t.Errorf("unexpected settlements: %+v", edges)
	}

	if got := testutil.ToFloat64(m.Actions().WithLabelValues(ActionAddExpense, metrics.ResultOK)); got != 1 {
		t.Errorf("add_expense ok count = %v, want 1", got)
	}
}

func TestSession_AddExpense_Guards(t *testing.T) {
	s, _, m := setupSession(t)

	s.AddPeople("Solo")
	if _, err := s.AddExpense(0, 10, nil); !errors.Is(err, ErrNotEnoughPeople) {
		t.Errorf("AddExpense with one person error = %v, want ErrNotEnoughPeople", err)
	}

	s.AddPeople("Other")
	if _, err := s.AddExpense(0, 0, nil); !errors.Is(err, ledger.ErrInvalidSelection) {
		t.Errorf("AddExpense zero amount error = %v, want ErrInvalidSelection", err)
	}
	for _, p := range s.People() {
		if p.Balance != 0 {
			t.Errorf("%s balance changed on failed expense: %v", p.Name, p.Balance)
		}
	}

	if got := testutil.ToFloat64(m.Actions().WithLabelValues(ActionAddExpense, metrics.ResultError)); got != 2 {
		t.Errorf("add_expense error count = %v, want 2", got)
	}
}

func TestSession_EditBalance(t *testing.T) {
	s, _, _ := setupSession(t)

	if _, err := s.EditBalance(0, 5); !errors.Is(err, ErrNoPeople) {
		t.Errorf("EditBalance on empty ledger error = %v, want ErrNoPeople", err)
	}

	s.AddPeople("Alice")
	if _, err := s.EditBalance(0, 12.34); err != nil {
		t.Fatalf("EditBalance() error = %v", err)
	}
	if got := s.People()[0].Balance; got != 12.34 {
		t.Errorf("balance = %v, want 12.34", got)
	}
	if _, err := s.EditBalance(3, 1); !errors.Is(err, ledger.ErrInvalidSelection) {
		t.Errorf("EditBalance out of range error = %v, want ErrInvalidSelection", err)
	}
}

func TestSession_SaveAndReopen(t *testing.T) {
	s, path, _ := setupSession(t)
	ctx := context.Background()

	s.AddPeople("A, B")
	if _, err := s.EditBalance(0, 10); err != nil {
		t.Fatalf("EditBalance() error = %v", err)
	}
	if _, err := s.EditBalance(1, -5); err != nil {
		t.Fatalf("EditBalance() error = %v", err)
	}
	if _, err := s.Save(ctx); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reopened := Open(ctx, jsonfile.New(path), WithLogger(quietLogger()))
	want := []models.Person{{Name: "A", Balance: 10}, {Name: "B", Balance: -5}}
	if diff := cmp.Diff(want, reopened.People()); diff != "" {
		t.Errorf("reopened people differ (-want +got):\n%s", diff)
	}
}

func TestSession_UnsavedChangesAreNotPersisted(t *testing.T) {
	s, path, _ := setupSession(t)

	s.AddPeople("A, B")

	reopened := Open(context.Background(), jsonfile.New(path), WithLogger(quietLogger()))
	if got := reopened.People(); len(got) != 0 {
		t.Errorf("expected nothing persisted without Save, got %+v", got)
	}
}

func TestSession_SaveFailureKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "split_data.json")
	s := Open(context.Background(), jsonfile.New(path), WithLogger(quietLogger()))

	s.AddPeople("A, B")
	if _, err := s.Save(context.Background()); err == nil {
		t.Fatal("expected Save to fail writing into a missing directory")
	}
	if got := len(s.People()); got != 2 {
		t.Errorf("people after failed save = %d, want 2", got)
	}
}

func TestSession_Reset(t *testing.T) {
	s, path, _ := setupSession(t)
	ctx := context.Background()

	s.AddPeople("A, B")
	if _, err := s.Save(ctx); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if got := len(s.People()); got != 0 {
		t.Errorf("people after Reset = %d, want 0", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected data file removed, stat err = %v", err)
	}

	loaded, err := jsonfile.New(path).Load(ctx)
	if err != nil || len(loaded) != 0 {
		t.Errorf("Load after Reset = %v, %v; want empty, nil", loaded, err)
	}
}

func TestOpen_CorruptFileFallsBackToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "split_data.json")
	if err := os.WriteFile(path, []byte(`[{"name": "A"}]`), 0644); err != nil {
		t.Fatalf("could not write fixture: %v", err)
	}
	m := metrics.New(prometheus.NewRegistry())

	s := Open(context.Background(), jsonfile.New(path), WithMetrics(m), WithLogger(quietLogger()))

	if got := len(s.People()); got != 0 {
		t.Errorf("people = %d, want 0", got)
	}
	if got := testutil.ToFloat64(m.LoadFallbacks()); got != 1 {
		t.Errorf("load fallbacks = %v, want 1", got)
	}

	// The session is fully usable after the fallback.
	s.AddPeople("B, C")
	if _, err := s.AddExpense(0, 10, nil); err != nil {
		t.Errorf("AddExpense after fallback error = %v", err)
	}
}

func TestSession_ActionsReturnTheirOwnSnapshot(t *testing.T) {
	s, _, _ := setupSession(t)

	added, people := s.AddPeople("Alice, Bob")
	want := []models.Person{{Name: "Alice"}, {Name: "Bob"}}
	if added != 2 {
		t.Errorf("AddPeople() added = %d, want 2", added)
	}
	if diff := cmp.Diff(want, people); diff != "" {
		t.Errorf("AddPeople() people (-want +got):\n%s", diff)
	}

	// The returned slice is a copy taken inside the action.
	people[0].Balance = 99
	s.AddPeople("Carol")

	people, err := s.EditBalance(1, -4)
	if err != nil {
		t.Fatalf("EditBalance() error = %v", err)
	}
	want = []models.Person{{Name: "Alice"}, {Name: "Bob", Balance: -4}, {Name: "Carol"}}
	if diff := cmp.Diff(want, people); diff != "" {
		t.Errorf("EditBalance() people (-want +got):\n%s", diff)
	}

	people, err = s.AddExpense(0, 9, []int{9})
	if !errors.Is(err, ledger.ErrInvalidSelection) {
		t.Fatalf("AddExpense() error = %v, want ErrInvalidSelection", err)
	}
	if diff := cmp.Diff(want, people); diff != "" {
		t.Errorf("failed AddExpense() people (-want +got):\n%s", diff)
	}

	saved, err := s.Save(context.Background())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved != 3 {
		t.Errorf("Save() saved = %d, want 3", saved)
	}
}

func TestSession_ConcurrentActionsSeeConsistentSnapshots(t *testing.T) {
	s, _, _ := setupSession(t)

	const workers = 8
	var wg sync.WaitGroup
	sizes := make([]int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			added, people := s.AddPeople("A, B")
			if added != 2 {
				t.Errorf("AddPeople() added = %d, want 2", added)
			}
			sizes[i] = len(people)
		}(i)
	}
	wg.Wait()

	// Every snapshot reflects a distinct point in the serialized order.
	seen := map[int]bool{}
	for _, n := range sizes {
		if n%2 != 0 || n < 2 || n > 2*workers {
			t.Errorf("snapshot size %d is not a whole number of actions", n)
		}
		if seen[n] {
			t.Errorf("two actions returned the same snapshot size %d", n)
		}
		seen[n] = true
	}
}
