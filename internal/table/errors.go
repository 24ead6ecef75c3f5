package table

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is matched by every MissingColumnError.
	ErrMissingColumn = errors.New("missing raw column")
	// ErrUnknownField indicates a clean field lookup that does not exist.
	ErrUnknownField = errors.New("unknown clean field")
	// ErrDuplicateField indicates a second column written under an existing name.
	ErrDuplicateField = errors.New("duplicate clean field")
	// ErrLengthMismatch indicates a column whose row count differs from the table.
	ErrLengthMismatch = errors.New("column length mismatch")
	// ErrSealed indicates a write to a table that was already finalized.
	ErrSealed = errors.New("clean table is sealed")
	// ErrRagged indicates a raw row with values beyond the header.
	ErrRagged = errors.New("raw table is not rectangular")
)

// MissingColumnError names a raw column that the dataset schema promised but
// the loaded sheet does not contain.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMissingColumn.Error(), e.Column)
}

func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }
