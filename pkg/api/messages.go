// Package api defines the smartsplit.v1 LedgerService wire messages together
// with its Connect handler and client constructors. Messages are plain Go
// structs carried by a JSON codec.
package api

// Person is one ledger entry as seen over the wire.
type Person struct {
	Index   int     `json:"index"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// Settlement is a suggested payment from a debtor to a creditor.
type Settlement struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

type ListPeopleRequest struct{}

type ListPeopleResponse struct {
	People []Person `json:"people"`
	Total  float64  `json:"total"`
}

// AddPeopleRequest carries a comma-separated list of names.
type AddPeopleRequest struct {
	Names string `json:"names"`
}

type AddPeopleResponse struct {
	Added  int      `json:"added"`
	People []Person `json:"people"`
}

// AddExpenseRequest records an expense paid by Payer. An empty Beneficiaries
// list splits the amount among everyone.
type AddExpenseRequest struct {
	Payer         int     `json:"payer"`
	Amount        float64 `json:"amount"`
	Beneficiaries []int   `json:"beneficiaries,omitempty"`
}

type AddExpenseResponse struct {
	People []Person `json:"people"`
}

type SetBalanceRequest struct {
	Index   int     `json:"index"`
	Balance float64 `json:"balance"`
}

type SetBalanceResponse struct {
	People []Person `json:"people"`
}

type SaveRequest struct{}

type SaveResponse struct {
	Saved int `json:"saved"`
}

type ResetRequest struct{}

type ResetResponse struct{}

type GetSettlementsRequest struct{}

type GetSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}
