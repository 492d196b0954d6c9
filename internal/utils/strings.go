package utils

import (
	"sort"
	"strconv"
	"strings"
)

// TrimOrEmpty normalizes user input without turning nil into "nil".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseSeatNumbers splits comma/semicolon separated seat numbers into a
// sorted, de-duplicated slice. Non-numeric tokens are skipped.
func ParseSeatNumbers(raw string) []int {
	seen := map[int]bool{}
	out := []int{}
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// FormatSeatNumbers renders a seat list as "3,4,7" for logs and receipts.
func FormatSeatNumbers(seats []int) string {
	parts := make([]string, 0, len(seats))
	for _, n := range seats {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ",")
}
