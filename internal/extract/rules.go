package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/KaramelBytes/ffcdb-cli/internal/table"
)

// Bound selects which end of a tonnage range ExtractTonnageOrZero reads.
type Bound int

const (
	BoundMin Bound = iota
	BoundMax
)

var (
	rangeRe = regexp.MustCompile(`^\s*(\d+)\s*-\s*(\d+)`)
	openRe  = regexp.MustCompile(`^\s*(\d+)(\+)?`)
)

// BoolFromPrefix reports whether cell is a string starting with prefix.
// Matching is case-sensitive; numbers and empty cells are false.
func BoolFromPrefix(cell table.Cell, prefix string) bool {
	return cell.IsString() && strings.HasPrefix(cell.Str, prefix)
}

// CoerceNumericOrNull converts cell to a number. The sentinel, empty cells
// and text that does not parse are null (ok == false).
func CoerceNumericOrNull(cell table.Cell, p Policy) (float64, bool) {
	if cell.IsString() && strings.TrimSpace(cell.Str) == p.NotListed {
		return 0, false
	}
	return cell.Float()
}

// CategoryOrNull passes cell through as a category label. The sentinel and
// empty cells are null.
func CategoryOrNull(cell table.Cell, p Policy) (string, bool) {
	s := cell.Text()
	if s == "" || s == p.NotListed {
		return "", false
	}
	return s, true
}

// ExtractTonnageOrZero reads a ';'-separated tonnage band such as
// "10 - 100; 500+". Patterns match at the start of each token. A token
// matching "N - M" offers N as the min candidate
// and M as the max candidate; otherwise a token matching "N" or "N+" offers
// N for both. The result is the largest candidate across tokens for either
// bound, and 0 when no token matches.
func ExtractTonnageOrZero(cell table.Cell, bound Bound) float64 {
	s := cell.Text()
	if s == "" {
		return 0
	}
	best := 0.0
	for _, tok := range strings.Split(s, ";") {
		var digits string
		if m := rangeRe.FindStringSubmatch(tok); m != nil {
			digits = m[2]
			if bound == BoundMin {
				digits = m[1]
			}
		} else if m := openRe.FindStringSubmatch(tok); m != nil {
			digits = m[1]
		} else {
			continue
		}
		v, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			continue
		}
		if v > best {
			best = v
		}
	}
	return best
}

// HasCompoundFlag decodes a "decision; reason; reason" cell. It is false
// when the raw text ends with the No token or has fewer than three
// ';'-separated segments, and true otherwise. Non-string cells are false.
func HasCompoundFlag(cell table.Cell, p Policy) bool {
	if !cell.IsString() {
		return false
	}
	if strings.HasSuffix(cell.Str, p.No) {
		return false
	}
	return len(strings.Split(cell.Str, ";")) >= 3
}

// IsNonZero reports whether cell holds a number other than zero. Numeric
// strings are parsed; empty cells, NaN and other text are false.
// pandas compares a missing value with != 0 as true; here a blank
// inventory or source cell means the chemical is not listed there.
func IsNonZero(cell table.Cell) bool {
	f, ok := cell.Float()
	return ok && f != 0
}
