package core

// convert.go turns raw CSV cells into attribute values.
//
// Typing is numeric-first and total: every string maps to exactly one Value.
//   - Integer literals ("42", "-7", "+3") become integral Numbers
//   - Decimal and scientific literals ("3.5", ".5", "1e3") become Numbers
//   - Everything else, including "", "NaN" and "Inf", stays Text verbatim
//
// Header cells additionally go through CleanCell to strip spreadsheet artifacts.

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// numericRegex validates that a string is a plain decimal or scientific literal.
// strconv.ParseFloat alone would also accept "NaN", "Inf" and hex floats.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseValue converts a raw cell into a typed attribute value.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Text(raw)
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}

	if !numericRegex.MatchString(s) {
		return Text(raw)
	}

	// Overflowing literals ("1e999") report ErrRange; keep them as text.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Text(raw)
	}
	return Float(f)
}

// CleanCell removes common CSV artifacts from a header cell:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// ParseSeparator reads a single-rune separator from user input.
// "\t" and "tab" name the tab character. An empty string yields 0, meaning
// "use the default".
func ParseSeparator(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case `\t`, "tab":
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("separator must be a single character, got %q", s)
	}
	if r[0] == '\r' || r[0] == '\n' || r[0] == utf8.RuneError {
		return 0, fmt.Errorf("invalid separator %q", s)
	}
	return r[0], nil
}
