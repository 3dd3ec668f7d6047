// Package report renders the ledger as the "name: balance" listing shown to users.
package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/mmynk/smartsplit/internal/models"
)

// Amount formats a balance with exactly two decimals.
func Amount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Line renders one person as "name: balance".
func Line(p models.Person) string {
	return fmt.Sprintf("%s: %s", p.Name, Amount(p.Balance))
}

// Lines renders every person in ledger order.
func Lines(people []models.Person) []string {
	lines := make([]string, len(people))
	for i, p := range people {
		lines[i] = Line(p)
	}
	return lines
}

// Write prints the listing to w, one person per line.
func Write(w io.Writer, people []models.Person) error {
	for _, line := range Lines(people) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Settlement renders a suggested payment as "from -> to: amount".
func Settlement(e models.DebtEdge) string {
	return fmt.Sprintf("%s -> %s: %s", e.From, e.To, Amount(e.Amount))
}
