package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

var (
	nonDigits  = regexp.MustCompile(`[^0-9]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// nameDelimiter separates "Last, First" in the source table
const nameDelimiter = ", "

// NormalizeSalary extracts a numeric salary from a raw table cell.
// Every character that is not a decimal digit is removed before parsing,
// so "$1,234,567" becomes 1234567 and a decimal point is dropped along
// with the currency symbol and separators ("$1,234.50" becomes 123450).
// Returns nil when no digits remain.
func NormalizeSalary(raw string) *float64 {
	digits := nonDigits.ReplaceAllString(raw, "")
	if digits == "" {
		return nil
	}

	val, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return nil
	}
	return &val
}

// SplitName splits a "Last, First" name on the first comma+space.
// When the delimiter is missing the whole trimmed name is returned as the
// last name, the first name is empty and ok is false.
func SplitName(full string) (last, first string, ok bool) {
	full = strings.TrimSpace(full)
	idx := strings.Index(full, nameDelimiter)
	if idx < 0 {
		return full, "", false
	}
	return strings.TrimSpace(full[:idx]), strings.TrimSpace(full[idx+len(nameDelimiter):]), true
}

// FormatSalary formats a salary as dollars with thousands separators and cents
func FormatSalary(salary float64) string {
	return "$" + humanize.FormatFloat("#,###.##", salary)
}

// FormatMillions formats a salary in millions for axis labels
func FormatMillions(salary float64) string {
	return fmt.Sprintf("$%sM", humanize.FormatFloat("#,###.##", salary/1e6))
}

// Millions scales a salary to millions of dollars
func Millions(salary float64) float64 {
	return salary / 1e6
}

// CollapseWhitespace replaces every whitespace run with a single underscore
func CollapseWhitespace(s string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(s), "_")
}

// Float returns a pointer to v
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v
func Int(v int) *int { return &v }

// String returns a pointer to v
func String(v string) *string { return &v }
