package parser

// clean.go converts raw cells into typed field values.
//
// Every cleaner degrades to nil/empty on failure instead of returning an
// error: a single corrupt field must never discard an otherwise usable row.
// Only the assembler's required-field check can reject a row.

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numericChars strips everything but digits, decimal point and sign.
var numericChars = regexp.MustCompile(`[^\d.\-]`)

// yearPattern extracts the first 4-digit run from a cell like "Thn 1987".
var yearPattern = regexp.MustCompile(`\d{4}`)

// cleanArea converts an area cell to square meters.
//
// Handles the formats seen in real exports:
//   - plain numbers: "1500", " 250 ", "1500.00"
//   - the colon triplet "6153:00:00", a prior export's format corruption
//     where only the leading component is the actual value
//   - decorated text: "1500 m2"
//
// Returns nil for anything that cannot be reduced to a non-negative number.
func cleanArea(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	// "6153:00:00" -> "6153"; the trailing parts are artifacts, not units.
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}

	s = numericChars.ReplaceAllString(s, "")
	if s == "" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// cleanValue converts a monetary cell to a number. Rupiah amounts arrive
// as "Rp 1.500.000" or "1,500,000"; both separators are stripped along
// with currency symbols and whitespace. Unparseable values become nil.
func cleanValue(raw string) *float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	s = strings.NewReplacer("Rp", "", "rp", "", "RP", "", "$", "", ".", "", ",", "", " ", "").Replace(s)
	s = numericChars.ReplaceAllString(s, "")
	if s == "" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// cleanYear extracts a 4-digit year. Years outside 1900..(current year+1)
// are implausible for an asset inventory and become nil.
func cleanYear(raw string) *int {
	m := yearPattern.FindString(raw)
	if m == "" {
		return nil
	}

	y, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	if y < 1900 || y > time.Now().Year()+1 {
		return nil
	}
	return &y
}

// cleanText trims a text cell and collapses internal whitespace runs,
// preserving the original casing.
func cleanText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// cleanDistrict treats the placeholder cells "0" and "-" as no district.
func cleanDistrict(raw string) string {
	s := cleanText(raw)
	if s == "0" || s == "-" {
		return ""
	}
	return s
}
