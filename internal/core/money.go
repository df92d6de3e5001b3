// Package core implements the ledger domain: jars, money, the transaction
// reducer and the derived views.
//
// This file contains money parsing, formatting and JSON representation.
// Balances and amounts are integer cents everywhere in the core; decimal
// values only appear at the edges (request parsing, persisted JSON), so the
// sum of a distribution always equals the distributed amount exactly.
package core

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is a currency amount in integer cents.
type Money struct {
	Cents int64
}

// MaxAmountCents is the largest amount the ledger accepts. The cap keeps
// cents×weight well inside int64 during distribution.
const MaxAmountCents = (1<<63 - 1) / 100

// Validate rejects non-positive and oversized amounts. Zero is a valid
// balance but never a valid transaction amount.
func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

// String formats the amount with exactly two decimal places, e.g. "550.00".
func (m Money) String() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// MarshalJSON emits a plain JSON number ("550.00") so the persisted schema
// keeps saldo/monto as numbers.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string. Backups
// written by older float-based exports may carry long fractional tails;
// those are rounded half-up on the third decimal like ParseMoney does.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "null" {
		m.Cents = 0
		return nil
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMoney converts a non-negative decimal string to cents with half-up
// rounding on the third decimal place. Both dot (12.34) and comma (12,34)
// decimal separators are accepted.
//
// Examples:
//
//	ParseMoney("12.34")  -> 1234 cents
//	ParseMoney("12,34")  -> 1234 cents
//	ParseMoney("12.345") -> 1235 cents (rounds up)
//	ParseMoney("0")      -> 0 cents (valid balance, invalid amount)
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only non-negative values are representable in the ledger
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
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	if iv > MaxAmountCents/100 {
		return Money{}, ErrInvalidAmount
	}
	// Take first two fractional digits; half-up rounding on the third
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
	cents := iv*100 + fracCents
	if cents > MaxAmountCents {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents}, nil
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// Sub returns m - other without flooring; callers decide whether negative
// results are representable.
func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

// SubFloored returns m - other floored at zero, the best-effort reversal
// subtraction.
func (m Money) SubFloored(other Money) Money {
	cents := m.Cents - other.Cents
	if cents < 0 {
		cents = 0
	}
	return Money{Cents: cents}
}

// LessThan reports m < other.
func (m Money) LessThan(other Money) bool {
	return m.Cents < other.Cents
}
