package table

import (
	"fmt"
	"strconv"
)

// Kind is the value type of a clean column.
type Kind uint8

const (
	KindBool Kind = iota + 1
	KindInt
	KindFloat
	KindCategory
	KindText
)

var kindNames = map[Kind]string{
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindCategory: "category",
	KindText:     "text",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown column kind %q", s)
}

// Numeric reports whether the kind takes part in numeric analysis.
// Booleans count as 0/1.
func (k Kind) Numeric() bool {
	return k == KindBool || k == KindInt || k == KindFloat
}

// Column is one typed clean field. Columns are immutable once constructed;
// the constructors take ownership of the slices they are given.
type Column struct {
	name   string
	kind   Kind
	bools  []bool
	ints   []int64
	floats []float64
	strs   []string
	valid  []bool
	group  string
}

// NewBoolColumn builds a non-nullable boolean column.
func NewBoolColumn(name string, vals []bool) *Column {
	return &Column{name: name, kind: KindBool, bools: vals}
}

// NewIntColumn builds a nullable integer column; valid[i] false marks null.
func NewIntColumn(name string, vals []int64, valid []bool) *Column {
	return &Column{name: name, kind: KindInt, ints: vals, valid: valid}
}

// NewFloatColumn builds a nullable float column.
func NewFloatColumn(name string, vals []float64, valid []bool) *Column {
	return &Column{name: name, kind: KindFloat, floats: vals, valid: valid}
}

// NewCategoryColumn builds a nullable categorical column. Empty strings are
// stored as null.
func NewCategoryColumn(name string, vals []string, valid []bool) *Column {
	return newStringColumn(name, KindCategory, vals, valid)
}

// NewTextColumn builds a nullable free-text column. Empty strings are
// stored as null.
func NewTextColumn(name string, vals []string, valid []bool) *Column {
	return newStringColumn(name, KindText, vals, valid)
}

func newStringColumn(name string, kind Kind, vals []string, valid []bool) *Column {
	for i := range vals {
		if vals[i] == "" {
			valid[i] = false
		}
	}
	return &Column{name: name, kind: kind, strs: vals, valid: valid}
}

// WithGroup returns a copy of c tagged with group, for example the family
// of pattern-discovered fields it belongs to.
func (c *Column) WithGroup(group string) *Column {
	cp := *c
	cp.group = group
	return &cp
}

// Group returns the tag set by WithGroup, or "".
func (c *Column) Group() string { return c.group }

// Name returns the clean field name.
func (c *Column) Name() string { return c.name }

// Kind returns the column type.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of rows.
func (c *Column) Len() int {
	switch c.kind {
	case KindBool:
		return len(c.bools)
	case KindInt:
		return len(c.ints)
	case KindFloat:
		return len(c.floats)
	default:
		return len(c.strs)
	}
}

// IsNull reports whether row i holds no value. Boolean columns are never null.
func (c *Column) IsNull(i int) bool {
	if c.kind == KindBool {
		return false
	}
	return !c.valid[i]
}

// Bool returns row i of a boolean column.
func (c *Column) Bool(i int) bool { return c.kind == KindBool && c.bools[i] }

// Int returns row i of an integer column.
func (c *Column) Int(i int) (int64, bool) {
	if c.kind != KindInt || !c.valid[i] {
		return 0, false
	}
	return c.ints[i], true
}

// Str returns row i of a categorical or text column.
func (c *Column) Str(i int) (string, bool) {
	if (c.kind != KindCategory && c.kind != KindText) || !c.valid[i] {
		return "", false
	}
	return c.strs[i], true
}

// Float returns row i as a float for numeric kinds; booleans map to 0/1.
func (c *Column) Float(i int) (float64, bool) {
	switch c.kind {
	case KindBool:
		if c.bools[i] {
			return 1, true
		}
		return 0, true
	case KindInt:
		if !c.valid[i] {
			return 0, false
		}
		return float64(c.ints[i]), true
	case KindFloat:
		if !c.valid[i] {
			return 0, false
		}
		return c.floats[i], true
	default:
		return 0, false
	}
}

// Format renders row i as a delimited-file cell. Nulls render empty.
func (c *Column) Format(i int) string {
	switch c.kind {
	case KindBool:
		if c.bools[i] {
			return "True"
		}
		return "False"
	case KindInt:
		if !c.valid[i] {
			return ""
		}
		return strconv.FormatInt(c.ints[i], 10)
	case KindFloat:
		if !c.valid[i] {
			return ""
		}
		return strconv.FormatFloat(c.floats[i], 'g', -1, 64)
	default:
		if !c.valid[i] {
			return ""
		}
		return c.strs[i]
	}
}
