// Package core holds the ledger domain: directions, money, drafts and
// committed transactions.
//
// This file contains parsing between the textual amounts carried by provider
// SMS ("3,045.00") and the integer-cents representation used everywhere else.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts an SMS-formatted amount to Money.
//
// Provider messages use a comma as thousands separator and a dot as decimal
// separator; the separators are stripped before parsing. Zero is a valid
// amount (fees are frequently "0.00"), negative values are not.
//
// Examples:
//
//	ParseAmount("3,045.00") -> 304500 cents
//	ParseAmount("0.74")     -> 74 cents
//	ParseAmount("550")      -> 55000 cents
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, ErrInvalidAmount
	}
	// Two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return Money{Cents: iv*100 + fracCents}, nil
}

// Taka returns the taka value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Taka() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount with two decimal places, without separators.
func (m Money) String() string {
	sign := ""
	c := m.Cents
	if c < 0 {
		sign = "-"
		c = -c
	}
	return sign + strconv.FormatInt(c/100, 10) + "." + pad2(c%100)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
