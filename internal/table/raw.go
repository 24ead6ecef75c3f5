package table

import (
	"fmt"
	"regexp"
)

// Raw is the immutable, column-major view of an ingested sheet. Column
// names are kept verbatim, embedded newlines included.
type Raw struct {
	names []string
	index map[string]int
	cols  [][]Cell
	rows  int
}

// NewRaw builds a rectangular table from a header and row-major records.
// Short rows are padded with empty cells. A row carrying a non-empty value
// beyond the header is rejected with ErrRagged. Blank header cells become
// "Unnamed: <i>" and repeated names get ".1", ".2" suffixes so that every
// column is addressable.
func NewRaw(header []string, records [][]Cell) (*Raw, error) {
	names := uniqueNames(header)
	r := &Raw{
		names: names,
		index: make(map[string]int, len(names)),
		cols:  make([][]Cell, len(names)),
		rows:  len(records),
	}
	for i, n := range names {
		r.index[n] = i
		r.cols[i] = make([]Cell, len(records))
	}
	for ri, rec := range records {
		for ci, c := range rec {
			if ci >= len(names) {
				if !c.IsEmpty() {
					return nil, fmt.Errorf("%w: row %d has a value in column %d beyond the %d-column header", ErrRagged, ri+1, ci+1, len(names))
				}
				continue
			}
			r.cols[ci][ri] = c
		}
	}
	return r, nil
}

func uniqueNames(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := h
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			name = fmt.Sprintf("%s.%d", name, n+1)
		} else {
			seen[name] = 0
		}
		out[i] = name
	}
	return out
}

// Columns returns the column names in sheet order.
func (r *Raw) Columns() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of data rows.
func (r *Raw) Len() int { return r.rows }

// Has reports whether the named column exists.
func (r *Raw) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Column returns the cells of the named column. Callers must not modify
// the returned slice.
func (r *Raw) Column(name string) ([]Cell, error) {
	i, ok := r.index[name]
	if !ok {
		return nil, &MissingColumnError{Column: name}
	}
	return r.cols[i], nil
}

// Match returns, in sheet order, every column whose name matches re.
func (r *Raw) Match(re *regexp.Regexp) []string {
	var out []string
	for _, n := range r.names {
		if re.MatchString(n) {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks the rectangular invariant.
func (r *Raw) Validate() error {
	if len(r.names) != len(r.cols) {
		return fmt.Errorf("%w: %d names for %d columns", ErrRagged, len(r.names), len(r.cols))
	}
	for i, col := range r.cols {
		if len(col) != r.rows {
			return fmt.Errorf("%w: column %q has %d rows, want %d", ErrRagged, r.names[i], len(col), r.rows)
		}
	}
	return nil
}
