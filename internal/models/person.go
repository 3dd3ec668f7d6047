package models

// Person is one member of the ledger with a running balance.
//
// A positive balance means the others owe this person money; a negative balance
// means this person owes money. Names are not unique: two entries named "Alice"
// are two distinct people.
type Person struct {
	// Name is the display name, as entered by the user.
	Name string `json:"name"`

	// Balance starts at 0.0 and moves with every expense or manual edit.
	Balance float64 `json:"balance"`
}

// NewPerson creates a person with a zero balance.
func NewPerson(name string) Person {
	return Person{Name: name}
}

// DebtEdge is a suggested payment that moves balances toward zero.
// It is derived from balances and never persisted.
type DebtEdge struct {
	From   string  `json:"from"` // Person who owes
	To     string  `json:"to"`   // Person who is owed
	Amount float64 `json:"amount"`
}
