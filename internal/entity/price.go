package domain

import (
	"strconv"
	"strings"
)

// MaxUnitPrice bounds a parsed price so that MaxUnitPrice*MaxQuantity stays
// far inside int64.
const MaxUnitPrice int64 = 1_000_000_000

// ParseUnitPrice extracts a whole-rupee price from a display label such as
// "₹1,250/kg". Every non-digit rune is dropped; no digits, or a value above
// MaxUnitPrice, yields 0.
func ParseUnitPrice(display string) int64 {
	var b strings.Builder
	for _, r := range display {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil || n > MaxUnitPrice {
		return 0
	}
	return n
}
