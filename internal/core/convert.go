package core

// convert.go provides tolerant parsers for typed cells.
//
// These functions handle the messy reality of spreadsheet exports:
//   - Currency symbols and thousand separators in numbers
//   - Accounting negatives written as (123.45)
//   - Whole numbers exported with a trailing ".0"
//
// A value that cannot be parsed yields nil rather than an error, so a stray
// "approx. 50" in a numeric column leaves the field unset without failing
// the row.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// cleanNumber strips currency symbols, thousands separators, and accounting
// parentheses. It returns false when the remainder is not numeric.
func cleanNumber(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return "", false
	}
	return s, true
}

// ParseDecimal parses a decimal cell. Returns nil for empty or unparseable input.
func ParseDecimal(s string) *float64 {
	clean, ok := cleanNumber(s)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// ParseInteger parses an integer cell. "1,200" and "12.0" are accepted;
// a value with a fractional part is not.
func ParseInteger(s string) *int64 {
	clean, ok := cleanNumber(s)
	if !ok {
		return nil
	}
	if i, err := strconv.ParseInt(clean, 10, 64); err == nil {
		return &i
	}

	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return nil
	}
	i := int64(f)
	return &i
}

// SplitList splits a list cell on delim, trimming items and dropping empty
// ones. Returns nil when no items remain.
func SplitList(s, delim string) []string {
	if delim == "" {
		delim = ";"
	}
	var items []string
	for _, part := range strings.Split(s, delim) {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
