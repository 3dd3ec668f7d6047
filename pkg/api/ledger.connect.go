package api

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "smartsplit.v1.LedgerService"

// Procedure paths, suitable for routing and for comparison with
// connect.Spec.Procedure in interceptors.
const (
	LedgerServiceListPeopleProcedure     = "/smartsplit.v1.LedgerService/ListPeople"
	LedgerServiceAddPeopleProcedure      = "/smartsplit.v1.LedgerService/AddPeople"
	LedgerServiceAddExpenseProcedure     = "/smartsplit.v1.LedgerService/AddExpense"
	LedgerServiceSetBalanceProcedure     = "/smartsplit.v1.LedgerService/SetBalance"
	LedgerServiceSaveProcedure           = "/smartsplit.v1.LedgerService/Save"
	LedgerServiceResetProcedure          = "/smartsplit.v1.LedgerService/Reset"
	LedgerServiceGetSettlementsProcedure = "/smartsplit.v1.LedgerService/GetSettlements"
)

// LedgerServiceHandler is implemented by the server side of LedgerService.
type LedgerServiceHandler interface {
	ListPeople(context.Context, *connect.Request[ListPeopleRequest]) (*connect.Response[ListPeopleResponse], error)
	AddPeople(context.Context, *connect.Request[AddPeopleRequest]) (*connect.Response[AddPeopleResponse], error)
	AddExpense(context.Context, *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error)
	SetBalance(context.Context, *connect.Request[SetBalanceRequest]) (*connect.Response[SetBalanceResponse], error)
	Save(context.Context, *connect.Request[SaveRequest]) (*connect.Response[SaveResponse], error)
	Reset(context.Context, *connect.Request[ResetRequest]) (*connect.Response[ResetResponse], error)
	GetSettlements(context.Context, *connect.Request[GetSettlementsRequest]) (*connect.Response[GetSettlementsResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)

	listPeople := connect.NewUnaryHandler(LedgerServiceListPeopleProcedure, svc.ListPeople, opts...)
	addPeople := connect.NewUnaryHandler(LedgerServiceAddPeopleProcedure, svc.AddPeople, opts...)
	addExpense := connect.NewUnaryHandler(LedgerServiceAddExpenseProcedure, svc.AddExpense, opts...)
	setBalance := connect.NewUnaryHandler(LedgerServiceSetBalanceProcedure, svc.SetBalance, opts...)
	save := connect.NewUnaryHandler(LedgerServiceSaveProcedure, svc.Save, opts...)
	reset := connect.NewUnaryHandler(LedgerServiceResetProcedure, svc.Reset, opts...)
	getSettlements := connect.NewUnaryHandler(LedgerServiceGetSettlementsProcedure, svc.GetSettlements, opts...)

	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LedgerServiceListPeopleProcedure:
			listPeople.ServeHTTP(w, r)
		case LedgerServiceAddPeopleProcedure:
			addPeople.ServeHTTP(w, r)
		case LedgerServiceAddExpenseProcedure:
			addExpense.ServeHTTP(w, r)
		case LedgerServiceSetBalanceProcedure:
			setBalance.ServeHTTP(w, r)
		case LedgerServiceSaveProcedure:
			save.ServeHTTP(w, r)
		case LedgerServiceResetProcedure:
			reset.ServeHTTP(w, r)
		case LedgerServiceGetSettlementsProcedure:
			getSettlements.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// LedgerServiceClient is a client for the smartsplit.v1.LedgerService service.
type LedgerServiceClient interface {
	ListPeople(context.Context, *connect.Request[ListPeopleRequest]) (*connect.Response[ListPeopleResponse], error)
	AddPeople(context.Context, *connect.Request[AddPeopleRequest]) (*connect.Response[AddPeopleResponse], error)
	AddExpense(context.Context, *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error)
	SetBalance(context.Context, *connect.Request[SetBalanceRequest]) (*connect.Response[SetBalanceResponse], error)
	Save(context.Context, *connect.Request[SaveRequest]) (*connect.Response[SaveResponse], error)
	Reset(context.Context, *connect.Request[ResetRequest]) (*connect.Response[ResetResponse], error)
	GetSettlements(context.Context, *connect.Request[GetSettlementsRequest]) (*connect.Response[GetSettlementsResponse], error)
}

// NewLedgerServiceClient constructs a client for the LedgerService. baseURL is
// the server root, e.g. http://localhost:8080.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &ledgerServiceClient{
		listPeople:     connect.NewClient[ListPeopleRequest, ListPeopleResponse](httpClient, baseURL+LedgerServiceListPeopleProcedure, opts...),
		addPeople:      connect.NewClient[AddPeopleRequest, AddPeopleResponse](httpClient, baseURL+LedgerServiceAddPeopleProcedure, opts...),
		addExpense:     connect.NewClient[AddExpenseRequest, AddExpenseResponse](httpClient, baseURL+LedgerServiceAddExpenseProcedure, opts...),
		setBalance:     connect.NewClient[SetBalanceRequest, SetBalanceResponse](httpClient, baseURL+LedgerServiceSetBalanceProcedure, opts...),
		save:           connect.NewClient[SaveRequest, SaveResponse](httpClient, baseURL+LedgerServiceSaveProcedure, opts...),
		reset:          connect.NewClient[ResetRequest, ResetResponse](httpClient, baseURL+LedgerServiceResetProcedure, opts...),
		getSettlements: connect.NewClient[GetSettlementsRequest, GetSettlementsResponse](httpClient, baseURL+LedgerServiceGetSettlementsProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	listPeople     *connect.Client[ListPeopleRequest, ListPeopleResponse]
	addPeople      *connect.Client[AddPeopleRequest, AddPeopleResponse]
	addExpense     *connect.Client[AddExpenseRequest, AddExpenseResponse]
	setBalance     *connect.Client[SetBalanceRequest, SetBalanceResponse]
	save           *connect.Client[SaveRequest, SaveResponse]
	reset          *connect.Client[ResetRequest, ResetResponse]
	getSettlements *connect.Client[GetSettlementsRequest, GetSettlementsResponse]
}

func (c *ledgerServiceClient) ListPeople(ctx context.Context, req *connect.Request[ListPeopleRequest]) (*connect.Response[ListPeopleResponse], error) {
	return c.listPeople.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) AddPeople(ctx context.Context, req *connect.Request[AddPeopleRequest]) (*connect.Response[AddPeopleResponse], error) {
	return c.addPeople.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) AddExpense(ctx context.Context, req *connect.Request[AddExpenseRequest]) (*connect.Response[AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) SetBalance(ctx context.Context, req *connect.Request[SetBalanceRequest]) (*connect.Response[SetBalanceResponse], error) {
	return c.setBalance.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) Save(ctx context.Context, req *connect.Request[SaveRequest]) (*connect.Response[SaveResponse], error) {
	return c.save.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) Reset(ctx context.Context, req *connect.Request[ResetRequest]) (*connect.Response[ResetResponse], error) {
	return c.reset.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetSettlements(ctx context.Context, req *connect.Request[GetSettlementsRequest]) (*connect.Response[GetSettlementsResponse], error) {
	return c.getSettlements.CallUnary(ctx, req)
}
