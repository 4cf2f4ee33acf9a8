// Package money parses and formats Brazilian Real amounts.
//
// Amounts typed in the frontend arrive either in pt-BR notation ("1.234,56"),
// in dot-decimal notation ("1234.56"), or as the raw digit string produced by
// the currency input mask ("123456", read as cents). All values are
// non-negative; direction is carried by the transaction kind.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for empty, negative or malformed amounts.
var ErrInvalidAmount = errors.New("invalid amount")

var hundred = decimal.NewFromInt(100)

// Parse accepts pt-BR ("1.234,56") and dot-decimal ("1234.56") notation and
// rounds half-up to cents.
//
// A single comma is always the decimal separator. Without a comma, a single dot
// followed by one or two digits is a decimal separator; any other dots are
// thousands separators.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return decimal.Zero, ErrInvalidAmount
	}

	switch strings.Count(s, ",") {
	case 0:
		s = normaliseDots(s)
	case 1:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	default:
		return decimal.Zero, ErrInvalidAmount
	}

	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

func normaliseDots(s string) string {
	n := strings.Count(s, ".")
	if n == 0 {
		return s
	}
	last := strings.LastIndex(s, ".")
	frac := len(s) - last - 1
	if n == 1 && frac <= 2 {
		return s
	}
	return strings.ReplaceAll(s, ".", "")
}

// FromCentsDigits reads the digit string kept by the currency input mask:
// every typed digit shifts left, the last two are cents. Non-digits are ignored.
func FromCentsDigits(s string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return decimal.Zero, ErrInvalidAmount
	}
	cents, err := decimal.NewFromString(b.String())
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return cents.Div(hundred), nil
}

// Format renders d as "R$ 1.234,56".
func Format(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteString("-")
	}
	b.WriteString("R$ ")
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}
