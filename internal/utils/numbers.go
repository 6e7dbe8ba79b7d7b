package utils

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reThousandsDot   = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
	reThousandsComma = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)
	reNumberChars    = regexp.MustCompile(`[^\d.,\-]`)

	ErrNotANumber = errors.New("not a number")
)

// ParseQuantity parses locale-formatted integer quantities: "66.147" -> 66147,
// "1.200,00" -> 1200, "12 unidades" -> 12. Fractions are rounded.
func ParseQuantity(s string) (int64, error) {
	f, err := parseLocaleNumber(s, true)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("negative quantity %q", s)
	}
	if f >= math.MaxInt64 {
		return 0, fmt.Errorf("quantity out of range %q", s)
	}
	return int64(math.Round(f)), nil
}

// ParsePrice parses currency text with two-decimal semantics: "R$ 201,99" -> 201.99,
// "1.234,56" -> 1234.56, "201.99" -> 201.99.
func ParsePrice(s string) (float64, error) {
	f, err := parseLocaleNumber(s, false)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("negative price %q", s)
	}
	return RoundCents(f), nil
}

// ParseDecimal parses a locale-formatted measure without rounding: "2,8" -> 2.8.
func ParseDecimal(s string) (float64, error) {
	return parseLocaleNumber(s, false)
}

// RoundCents rounds to two decimals.
func RoundCents(f float64) float64 {
	return math.Round(f*100) / 100
}

// parseLocaleNumber normalizes thousand separators and decimal commas.
// A lone separator followed by exactly three digits is a thousands separator when
// preferThousands is set (quantities) or when it repeats ("1.234.567").
func parseLocaleNumber(s string, preferThousands bool) (float64, error) {
	clean := reNumberChars.ReplaceAllString(strings.TrimSpace(s), "")
	clean = strings.Trim(clean, ".,")
	if clean == "" || clean == "-" {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}

	hasDot := strings.Contains(clean, ".")
	hasComma := strings.Contains(clean, ",")

	switch {
	case hasDot && hasComma:
		// whichever comes last is the decimal mark
		if strings.LastIndex(clean, ",") > strings.LastIndex(clean, ".") {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case hasComma:
		if reThousandsComma.MatchString(strings.TrimPrefix(clean, "-")) && (preferThousands || strings.Count(clean, ",") > 1) {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.Replace(clean, ",", ".", 1)
		}
	case hasDot:
		if reThousandsDot.MatchString(strings.TrimPrefix(clean, "-")) && (preferThousands || strings.Count(clean, ".") > 1) {
			clean = strings.ReplaceAll(clean, ".", "")
		}
	}

	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}
	return f, nil
}
