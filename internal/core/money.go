// Package core provides money parsing and handling utilities.
//
// Amounts are kept as exact decimals end to end; float64 only appears at
// the chart boundary.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input into a non-negative decimal amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and keeps
// every fractional digit the user typed. Signs, exponents, thousands
// separators and anything that is not a plain decimal number are rejected.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,5")  -> 12.5, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return decimal.Zero, ErrInvalidAmount
	}
	if parts[0] == "" && (len(parts) == 1 || parts[1] == "") {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, p := range parts {
		for _, r := range p {
			if r < '0' || r > '9' {
				return decimal.Zero, ErrInvalidAmount
			}
		}
	}
	if parts[0] == "" {
		s = "0" + s
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with two decimal places, as the value
// axis of every chart does.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
