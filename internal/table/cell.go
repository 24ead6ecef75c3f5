package table

import (
	"math"
	"strconv"
	"strings"
)

// CellKind tags the value held by a raw Cell.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
)

// Cell is one raw spreadsheet value: empty, a string or a number.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
}

// StringCell wraps s as a string cell.
func StringCell(s string) Cell { return Cell{Kind: CellString, Str: s} }

// NumberCell wraps f as a numeric cell.
func NumberCell(f float64) Cell { return Cell{Kind: CellNumber, Num: f} }

// EmptyCell returns the missing-value cell.
func EmptyCell() Cell { return Cell{} }

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// IsString reports whether the cell holds text.
func (c Cell) IsString() bool { return c.Kind == CellString }

// Text renders the cell the way it appears in a spreadsheet.
func (c Cell) Text() string {
	switch c.Kind {
	case CellString:
		return c.Str
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'g', -1, 64)
	default:
		return ""
	}
}

// Float returns the numeric value of the cell. Strings are parsed after
// trimming; empty cells, non-numeric text and NaN or infinite values
// report false.
func (c Cell) Float() (float64, bool) {
	switch c.Kind {
	case CellNumber:
		return c.Num, finite(c.Num)
	case CellString:
		return parseFinite(c.Str)
	default:
		return 0, false
	}
}

// parseFinite parses s as a finite float. strconv also accepts spellings
// such as "nan" and "Infinity"; those are rejected.
func parseFinite(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(f) {
		return 0, false
	}
	return f, true
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// InferCell turns a text field into a typed cell: blank is empty, a finite
// number is a number, everything else (including "nan") stays text.
func InferCell(s string) Cell {
	if strings.TrimSpace(s) == "" {
		return EmptyCell()
	}
	if f, ok := parseFinite(s); ok {
		return NumberCell(f)
	}
	return StringCell(s)
}
