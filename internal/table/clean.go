package table

import "fmt"

// Clean is the normalized output table: an ordered mapping from field name
// to typed column, every column exactly Len() rows long.
type Clean struct {
	rows   int
	order  []string
	cols   map[string]*Column
	sealed bool
}

// NewClean returns an empty table for rows rows.
func NewClean(rows int) *Clean {
	return &Clean{rows: rows, cols: make(map[string]*Column)}
}

// Add appends columns in order. It fails without adding anything if the
// table is sealed, a name is already taken or a length is wrong.
func (c *Clean) Add(cols ...*Column) error {
	if c.sealed {
		return ErrSealed
	}
	seen := make(map[string]struct{}, len(cols))
	for _, col := range cols {
		if _, ok := c.cols[col.Name()]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateField, col.Name())
		}
		if _, ok := seen[col.Name()]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateField, col.Name())
		}
		seen[col.Name()] = struct{}{}
		if col.Len() != c.rows {
			return fmt.Errorf("%w: %q has %d rows, want %d", ErrLengthMismatch, col.Name(), col.Len(), c.rows)
		}
	}
	for _, col := range cols {
		c.order = append(c.order, col.Name())
		c.cols[col.Name()] = col
	}
	return nil
}

// Column returns the named field.
func (c *Clean) Column(name string) (*Column, error) {
	col, ok := c.cols[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return col, nil
}

// Has reports whether the named field exists.
func (c *Clean) Has(name string) bool {
	_, ok := c.cols[name]
	return ok
}

// Fields returns field names in output order.
func (c *Clean) Fields() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the row count.
func (c *Clean) Len() int { return c.rows }

// Seal finalizes the table; further Add calls fail with ErrSealed.
func (c *Clean) Seal() { c.sealed = true }

// Sealed reports whether Seal was called.
func (c *Clean) Sealed() bool { return c.sealed }

// Snapshot returns a sealed read-only view holding the current columns.
// Columns are shared, which is safe because they are immutable.
func (c *Clean) Snapshot() *Clean {
	s := &Clean{rows: c.rows, order: c.Fields(), cols: make(map[string]*Column, len(c.cols)), sealed: true}
	for k, v := range c.cols {
		s.cols[k] = v
	}
	return s
}

// NumericFields returns, in output order, the fields usable for numeric
// analysis (bool, int and float kinds).
func (c *Clean) NumericFields() []string {
	var out []string
	for _, n := range c.order {
		if c.cols[n].Kind().Numeric() {
			out = append(out, n)
		}
	}
	return out
}

// FieldsInGroup returns, in output order, the fields tagged with group.
func (c *Clean) FieldsInGroup(group string) []string {
	var out []string
	for _, n := range c.order {
		if c.cols[n].Group() == group {
			out = append(out, n)
		}
	}
	return out
}
