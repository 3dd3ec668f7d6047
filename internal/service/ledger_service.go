package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mmynk/smartsplit/internal/ledger"
	"github.com/mmynk/smartsplit/internal/models"
	"github.com/mmynk/smartsplit/internal/session"
	"github.com/mmynk/smartsplit/pkg/api"
)

var _ api.LedgerServiceHandler = (*LedgerService)(nil)

// LedgerService implements the Connect LedgerService on top of a Session.
type LedgerService struct {
	session *session.Session
}

// NewLedgerService creates a new LedgerService driving the given session.
func NewLedgerService(s *session.Session) *LedgerService {
	return &LedgerService{session: s}
}

// ListPeople returns everyone in ledger order with the balance total.
func (s *LedgerService) ListPeople(ctx context.Context, req *connect.Request[api.ListPeopleRequest]) (*connect.Response[api.ListPeopleResponse], error) {
	people := s.session.People()

	var total float64
	for _, p := range people {
		total += p.Balance
	}

	return connect.NewResponse(&api.ListPeopleResponse{
		People: toAPIPeople(people),
		Total:  total,
	}), nil
}

// AddPeople adds one person per comma-separated name.
func (s *LedgerService) AddPeople(ctx context.Context, req *connect.Request[api.AddPeopleRequest]) (*connect.Response[api.AddPeopleResponse], error) {
	added, people := s.session.AddPeople(req.Msg.Names)

	return connect.NewResponse(&api.AddPeopleResponse{
		Added:  added,
		People: toAPIPeople(people),
	}), nil
}

// AddExpense splits an expense between the selected beneficiaries.
func (s *LedgerService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	people, err := s.session.AddExpense(req.Msg.Payer, req.Msg.Amount, req.Msg.Beneficiaries)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.AddExpenseResponse{
		People: toAPIPeople(people),
	}), nil
}

// SetBalance overwrites one person's balance.
func (s *LedgerService) SetBalance(ctx context.Context, req *connect.Request[api.SetBalanceRequest]) (*connect.Response[api.SetBalanceResponse], error) {
	people, err := s.session.EditBalance(req.Msg.Index, req.Msg.Balance)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.SetBalanceResponse{
		People: toAPIPeople(people),
	}), nil
}

// Save persists the ledger.
func (s *LedgerService) Save(ctx context.Context, req *connect.Request[api.SaveRequest]) (*connect.Response[api.SaveResponse], error) {
	saved, err := s.session.Save(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.SaveResponse{
		Saved: saved,
	}), nil
}

// Reset clears the ledger and its persisted data.
func (s *LedgerService) Reset(ctx context.Context, req *connect.Request[api.ResetRequest]) (*connect.Response[api.ResetResponse], error) {
	if err := s.session.Reset(ctx); err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ResetResponse{}), nil
}

// GetSettlements suggests payments that would settle all balances.
func (s *LedgerService) GetSettlements(ctx context.Context, req *connect.Request[api.GetSettlementsRequest]) (*connect.Response[api.GetSettlementsResponse], error) {
	edges := s.session.Settlements()

	settlements := make([]api.Settlement, 0, len(edges))
	for _, e := range edges {
		settlements = append(settlements, api.Settlement{From: e.From, To: e.To, Amount: e.Amount})
	}

	return connect.NewResponse(&api.GetSettlementsResponse{
		Settlements: settlements,
	}), nil
}

func toAPIPeople(people []models.Person) []api.Person {
	out := make([]api.Person, 0, len(people))
	for i, p := range people {
		out = append(out, api.Person{Index: i, Name: p.Name, Balance: p.Balance})
	}
	return out
}

// toConnectError maps selection mistakes to invalid_argument and everything
// else (storage failures) to internal.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidSelection),
		errors.Is(err, session.ErrNotEnoughPeople),
		errors.Is(err, session.ErrNoPeople):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		slog.Error("Ledger action failed", "error", err)
		return connect.NewError(connect.CodeInternal, err)
	}
}
