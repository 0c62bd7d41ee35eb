// Package numfmt normalizes locale-ambiguous numeric strings coming out of
// Spanish payroll documents. Amounts arrive either in European notation
// ("24.214,44") or already normalized ("24214.44"); hour counts use a
// thousands dot ("1.708 h" means 1708 hours).
package numfmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reThousandsComma = regexp.MustCompile(`^\d+\.\d{3},\d+$`)
	reCommaDecimal   = regexp.MustCompile(`^\d+,\d+$`)
	reThousandsHours = regexp.MustCompile(`^\d{1,3}\.\d{3}$`)
	reDigits         = regexp.MustCompile(`\d`)
)

// ParseAmount interprets a monetary or base amount string.
//
// "24.214,44" -> 24214.44 (dot as thousands, comma as decimal);
// "3.000,5"   -> 3000.5;
// "24214.44"  -> 24214.44 (idempotent on normalized input).
func ParseAmount(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("parse amount: empty input")
	}

	switch {
	case reThousandsComma.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case reCommaDecimal.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", text, err)
	}
	return d, nil
}

// ParseHours interprets an annual hours figure such as "1.708", "1.708 h" or
// "1760 horas". In this context a dot followed by exactly three digits is a
// thousands separator, never a decimal point.
func ParseHours(text string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.TrimSuffix(s, "horas")
	s = strings.TrimSuffix(s, "h")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse hours: empty input")
	}

	if reThousandsHours.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	// Tolerate a decimal tail ("1760,00"): hours ceilings are whole numbers.
	if i := strings.IndexAny(s, ",."); i >= 0 {
		if !reDigits.MatchString(s[i+1:]) {
			return 0, fmt.Errorf("parse hours %q: malformed", text)
		}
		s = s[:i]
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse hours %q: %w", text, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("parse hours %q: negative", text)
	}
	return n, nil
}

// ParseDays parses a contributed-days count: a non-negative integer without
// leading zeros ("0" itself is allowed).
func ParseDays(text string) (int, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, fmt.Errorf("parse days: empty input")
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, fmt.Errorf("parse days %q: leading zeros", text)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("parse days %q: %w", text, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("parse days %q: negative", text)
	}
	return n, nil
}
