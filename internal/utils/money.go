package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatAriary renders an integer amount with thousand separators, e.g.
// "Ar 150 000". Fares are whole Ariary; there are no decimals to carry.
func FormatAriary(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%sAr %s", sign, formatThousand(amount))
}

// ParseAriary parses "Ar 150 000" or "150000" into an integer amount.
func ParseAriary(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToLower(s), "ar")
	replacer := strings.NewReplacer(".", "", ",", "", " ", "")
	s = replacer.Replace(s)
	if s == "" {
		return 0, fmt.Errorf("invalid ariary amount")
	}
	return strconv.ParseInt(s, 10, 64)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(' ')
		}
		out.WriteRune(c)
	}
	return out.String()
}
