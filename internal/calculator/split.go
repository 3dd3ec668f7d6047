package calculator

import (
	"fmt"
	"strings"
)

// ParseNames splits a comma-separated list of names.
// Surrounding whitespace is trimmed and empty tokens are dropped, so
// "A, B ,, C" yields [A B C]. Duplicates are kept.
func ParseNames(raw string) []string {
	var names []string
	for _, token := range strings.Split(raw, ",") {
		name := strings.TrimSpace(token)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// SplitEvenly returns the share each of n beneficiaries owes for amount.
// The result is a plain float division; amount - n*share may be non-zero
// when the division is inexact.
func SplitEvenly(amount float64, n int) (float64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("must have at least one beneficiary")
	}
	return amount / float64(n), nil
}
