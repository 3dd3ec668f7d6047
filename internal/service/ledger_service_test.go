package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/google/go-cmp/cmp"

	"github.com/mmynk/smartsplit/internal/auth"
	"github.com/mmynk/smartsplit/internal/middleware"
	"github.com/mmynk/smartsplit/internal/session"
	"github.com/mmynk/smartsplit/internal/storage/jsonfile"
	"github.com/mmynk/smartsplit/pkg/api"
)

// setupTestServer serves a LedgerService backed by a JSON file in a temp dir.
func setupTestServer(t *testing.T, opts ...connect.HandlerOption) (api.LedgerServiceClient, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "split_data.json")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := session.Open(context.Background(), jsonfile.New(path), session.WithLogger(logger))

	mux := http.NewServeMux()
	mux.Handle(api.NewLedgerServiceHandler(NewLedgerService(sess), opts...))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return api.NewLedgerServiceClient(http.DefaultClient, server.URL), path
}

func addPeople(t *testing.T, client api.LedgerServiceClient, names string) {
	t.Helper()
	if _, err := client.AddPeople(context.Background(), connect.NewRequest(&api.AddPeopleRequest{Names: names})); err != nil {
		t.Fatalf("AddPeople failed: %v", err)
	}
}

func TestAddPeople(t *testing.T) {
	client, _ := setupTestServer(t)

	resp, err := client.AddPeople(context.Background(), connect.NewRequest(&api.AddPeopleRequest{
		Names: " Alice, ,Bob,,Alice ",
	}))
	if err != nil {
		t.Fatalf("AddPeople failed: %v", err)
	}

	if resp.Msg.Added != 3 {
		t.Errorf("expected 3 added, got %d", resp.Msg.Added)
	}
	want := []api.Person{
		{Index: 0, Name: "Alice"},
		{Index: 1, Name: "Bob"},
		{Index: 2, Name: "Alice"},
	}
	if diff := cmp.Diff(want, resp.Msg.People); diff != "" {
		t.Errorf("people mismatch (-want +got):\n%s", diff)
	}
}

func TestAddExpense_SplitsAmongEveryone(t *testing.T) {
	client, _ := setupTestServer(t)
	addPeople(t, client, "Alice, Bob, Carol")

	resp, err := client.AddExpense(context.Background(), connect.NewRequest(&api.AddExpenseRequest{
		Payer:  0,
		Amount: 30,
	}))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	want := []float64{20, -10, -10}
	for i, p := range resp.Msg.People {
		if math.Abs(p.Balance-want[i]) > 0.01 {
			t.Errorf("%s: expected balance %.2f, got %.2f", p.Name, want[i], p.Balance)
		}
	}

	list, err := client.ListPeople(context.Background(), connect.NewRequest(&api.ListPeopleRequest{}))
	if err != nil {
		t.Fatalf("ListPeople failed: %v", err)
	}
	if math.Abs(list.Msg.Total) > 0.01 {
		t.Errorf("expected total near 0, got %f", list.Msg.Total)
	}
}

func TestAddExpense_InvalidArgument(t *testing.T) {
	tests := []struct {
		name   string
		people string
		req    *api.AddExpenseRequest
	}{
		{"not enough people", "Alice", &api.AddExpenseRequest{Payer: 0, Amount: 10}},
		{"payer out of range", "Alice, Bob", &api.AddExpenseRequest{Payer: 5, Amount: 10}},
		{"zero amount", "Alice, Bob", &api.AddExpenseRequest{Payer: 0, Amount: 0}},
		{"negative amount", "Alice, Bob", &api.AddExpenseRequest{Payer: 0, Amount: -3}},
		{"beneficiary out of range", "Alice, Bob", &api.AddExpenseRequest{Payer: 0, Amount: 10, Beneficiaries: []int{1, 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := setupTestServer(t)
			addPeople(t, client, tt.people)

			_, err := client.AddExpense(context.Background(), connect.NewRequest(tt.req))
			if connect.CodeOf(err) != connect.CodeInvalidArgument {
				t.Fatalf("expected invalid_argument, got %v", err)
			}

			list, err := client.ListPeople(context.Background(), connect.NewRequest(&api.ListPeopleRequest{}))
			if err != nil {
				t.Fatalf("ListPeople failed: %v", err)
			}
			for _, p := range list.Msg.People {
				if p.Balance != 0 {
					t.Errorf("%s balance changed to %f after rejected expense", p.Name, p.Balance)
				}
			}
		})
	}
}

func TestSetBalance(t *testing.T) {
	client, _ := setupTestServer(t)

	_, err := client.SetBalance(context.Background(), connect.NewRequest(&api.SetBalanceRequest{Index: 0, Balance: 5}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Fatalf("expected invalid_argument on empty ledger, got %v", err)
	}

	addPeople(t, client, "Alice, Bob")
	resp, err := client.SetBalance(context.Background(), connect.NewRequest(&api.SetBalanceRequest{Index: 1, Balance: -12.5}))
	if err != nil {
		t.Fatalf("SetBalance failed: %v", err)
	}
	if resp.Msg.People[1].Balance != -12.5 {
		t.Errorf("expected Bob balance -12.5, got %f", resp.Msg.People[1].Balance)
	}

	_, err = client.SetBalance(context.Background(), connect.NewRequest(&api.SetBalanceRequest{Index: 2, Balance: 1}))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("expected invalid_argument for out of range index, got %v", err)
	}
}

func TestSaveAndReset(t *testing.T) {
	client, path := setupTestServer(t)
	addPeople(t, client, "Alice, Bob")

	saved, err := client.Save(context.Background(), connect.NewRequest(&api.SaveRequest{}))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.Msg.Saved != 2 {
		t.Errorf("expected 2 saved, got %d", saved.Msg.Saved)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected data file to exist: %v", err)
	}

	if _, err := client.Reset(context.Background(), connect.NewRequest(&api.ResetRequest{})); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected data file to be removed, stat error = %v", err)
	}

	list, err := client.ListPeople(context.Background(), connect.NewRequest(&api.ListPeopleRequest{}))
	if err != nil {
		t.Fatalf("ListPeople failed: %v", err)
	}
	if len(list.Msg.People) != 0 {
		t.Errorf("expected empty ledger after reset, got %d people", len(list.Msg.People))
	}
}

func TestSave_WriteFailureIsInternal(t *testing.T) {
	dir := t.TempDir()
	// A directory where the data file should be makes the write fail.
	path := filepath.Join(dir, "split_data.json")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sess := session.Open(context.Background(), jsonfile.New(path), session.WithLogger(logger))
	sess.AddPeople("Alice")

	mux := http.NewServeMux()
	mux.Handle(api.NewLedgerServiceHandler(NewLedgerService(sess)))
	server := httptest.NewServer(mux)
	defer server.Close()

	client := api.NewLedgerServiceClient(http.DefaultClient, server.URL)
	_, err := client.Save(context.Background(), connect.NewRequest(&api.SaveRequest{}))
	if connect.CodeOf(err) != connect.CodeInternal {
		t.Fatalf("expected internal, got %v", err)
	}
	if len(sess.People()) != 1 {
		t.Errorf("failed save must not change the ledger")
	}
}

func TestGetSettlements(t *testing.T) {
	client, _ := setupTestServer(t)
	addPeople(t, client, "Alice, Bob, Carol")

	if _, err := client.AddExpense(context.Background(), connect.NewRequest(&api.AddExpenseRequest{
		Payer:         0,
		Amount:        30,
		Beneficiaries: []int{0, 1, 2},
	})); err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	resp, err := client.GetSettlements(context.Background(), connect.NewRequest(&api.GetSettlementsRequest{}))
	if err != nil {
		t.Fatalf("GetSettlements failed: %v", err)
	}

	want := []api.Settlement{
		{From: "Bob", To: "Alice", Amount: 10},
		{From: "Carol", To: "Alice", Amount: 10},
	}
	approx := cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 0.01 })
	if diff := cmp.Diff(want, resp.Msg.Settlements, approx); diff != "" {
		t.Errorf("settlements mismatch (-want +got):\n%s", diff)
	}
}

// syncBuffer collects log output written from server goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRequireAuth(t *testing.T) {
	var logs syncBuffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	tokens := auth.NewTokenManager("test-secret-key-for-tokens", time.Hour)
	interceptors := connect.WithInterceptors(middleware.RequireAuth(tokens, logger), middleware.LoggingInterceptor(logger))
	client, _ := setupTestServer(t, interceptors)

	_, err := client.ListPeople(context.Background(), connect.NewRequest(&api.ListPeopleRequest{}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated without token, got %v", err)
	}

	bad := connect.NewRequest(&api.ListPeopleRequest{})
	bad.Header().Set("Authorization", "Bearer not-a-token")
	if _, err := client.ListPeople(context.Background(), bad); connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("expected unauthenticated with bad token, got %v", err)
	}

	token, err := tokens.Generate("tester")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	req := connect.NewRequest(&api.ListPeopleRequest{})
	req.Header().Set("Authorization", "Bearer "+token)
	if _, err := client.ListPeople(context.Background(), req); err != nil {
		t.Errorf("ListPeople with valid token failed: %v", err)
	}

	out := logs.String()
	if got := strings.Count(out, `msg="RPC rejected"`); got != 2 {
		t.Errorf("expected 2 rejected calls logged, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, `msg="RPC ok"`) || !strings.Contains(out, "subject=tester") {
		t.Errorf("expected authenticated call logged with its subject:\n%s", out)
	}
}

func TestAddPeople_ConcurrentResponsesMatchTheirOwnAction(t *testing.T) {
	client, _ := setupTestServer(t)

	const calls = 10
	var wg sync.WaitGroup
	sizes := make(chan int, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := client.AddPeople(context.Background(), connect.NewRequest(&api.AddPeopleRequest{Names: "Alice, Bob"}))
			if err != nil {
				t.Errorf("AddPeople failed: %v", err)
				return
			}
			sizes <- len(resp.Msg.People)
		}()
	}
	wg.Wait()
	close(sizes)

	seen := map[int]bool{}
	for n := range sizes {
		if n%2 != 0 {
			t.Errorf("response listed %d people, not a whole number of actions", n)
		}
		if seen[n] {
			t.Errorf("two responses listed the same %d people", n)
		}
		seen[n] = true
	}
	if len(seen) != calls {
		t.Errorf("expected %d distinct snapshots, got %d", calls, len(seen))
	}
}
