package money

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// Money represents a monetary value in whole rupiah. Rupiah has no minor unit in
// circulation so every amount is an exact integer.
type Money = int64

// ErrInvalid is returned when a textual amount cannot be parsed.
var ErrInvalid = errors.New("money: invalid amount")

// Currency prefix used by Format.
const Currency = "Rp"

// id-ID groups thousands with '.' and never shows decimals for rupiah.
const groupFormat = "#.###,"

// Format renders m the way tills in Indonesia print it, e.g. "Rp 50.000".
func Format(m Money) string {
	return Currency + " " + Group(m)
}

// Group renders m with id-ID thousand separators and no currency prefix.
func Group(m Money) string {
	return humanize.FormatInteger(groupFormat, int(m))
}

// Parse reads a non-negative amount typed by a cashier. An optional "Rp" prefix is
// accepted, followed by plain digits or thousands groups joined by one separator
// ('.', ',', space or no-break space), e.g. "50000" or "50.000". Decimal fractions
// such as "50000.00" or "50.000,00" are rejected since rupiah has no minor unit.
func Parse(raw string) (Money, error) {
	value := strings.TrimSpace(raw)
	if len(value) >= 2 && strings.EqualFold(value[:2], Currency) {
		value = strings.TrimSpace(value[2:])
	}
	digits, ok := ungroup(value)
	if !ok {
		return 0, ErrInvalid
	}
	parsed, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}
	return parsed, nil
}

// ungroup strips thousands separators from value. The leading group holds one to
// three digits and every following group exactly three, all joined by the same
// separator.
func ungroup(value string) (string, bool) {
	i := strings.IndexFunc(value, isSeparator)
	if i < 0 {
		return value, allDigits(value)
	}
	sep, _ := utf8.DecodeRuneInString(value[i:])
	groups := strings.Split(value, string(sep))
	for n, g := range groups {
		if !allDigits(g) || (n == 0 && len(g) > 3) || (n > 0 && len(g) != 3) {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}

func isSeparator(r rune) bool {
	return r == '.' || r == ',' || r == ' ' || r == '\u00a0'
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Mul returns price × qty.
func Mul(price Money, qty int) Money {
	return price * Money(qty)
}

// RoundUp rounds m up to the next multiple of step. Multiples are returned unchanged.
func RoundUp(m, step Money) Money {
	if step <= 0 {
		return m
	}
	rem := m % step
	if rem == 0 {
		return m
	}
	if m > 0 {
		return m + step - rem
	}
	return m - rem
}
