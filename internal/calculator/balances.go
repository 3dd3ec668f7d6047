package calculator

import "github.com/mmynk/smartsplit/internal/models"

// settleEpsilon is the residue below which a balance counts as settled.
const settleEpsilon = 0.01

type party struct {
	name   string
	amount float64 // always positive
}

// SuggestSettlements computes payments that bring every balance back to zero.
//
// Algorithm:
// - Debtors are people with a negative balance, creditors with a positive one
// - Both lists keep ledger order
// - Greedy: the current debtor pays the current creditor min(owed, due)
// - Residues below one cent are treated as settled to avoid floating point noise
//
// Balances in the ledger are not touched. When balances do not sum to zero the
// unmatched remainder is simply left without an edge.
func SuggestSettlements(people []models.Person) []models.DebtEdge {
	var debtors, creditors []party
	for _, p := range people {
		switch {
		case p.Balance <= -settleEpsilon:
			debtors = append(debtors, party{name: p.Name, amount: -p.Balance})
		case p.Balance >= settleEpsilon:
			creditors = append(creditors, party{name: p.Name, amount: p.Balance})
		}
	}

	var edges []models.DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := debtor.amount
		if creditor.amount < amount {
			amount = creditor.amount
		}

		if amount >= settleEpsilon {
			edges = append(edges, models.DebtEdge{
				From:   debtor.name,
				To:     creditor.name,
				Amount: amount,
			})
		}

		debtor.amount -= amount
		creditor.amount -= amount

		if debtor.amount < settleEpsilon {
			i++
		}
		if creditor.amount < settleEpsilon {
			j++
		}
	}

	return edges
}
