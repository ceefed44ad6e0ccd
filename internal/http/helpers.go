package http

import (
	"strings"

	"trackboard/internal/core"
)

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseAmount accepts "12.34" or "12,34". An empty amount is rejected.
func parseAmount(s string) (core.Money, error) {
	cents, err := core.ParseNonNegativeCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}
