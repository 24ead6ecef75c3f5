package parser

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/ffcdb-cli/internal/table"
)

// Options selects what to read from a spreadsheet-like file.
type Options struct {
	// SheetName picks a workbook sheet by name (case-insensitive).
	SheetName string
	// SheetIndex is the 1-based sheet used when SheetName is empty.
	SheetIndex int
	// Delimiter for CSV. If 0, it is chosen from the file extension.
	Delimiter rune
}

// Parser reads a raw table from a file on disk.
type Parser interface {
	CanParse(filename string) bool
	Parse(path string, opt Options) (*table.Raw, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ParseFile selects a parser based on filename and returns the raw table.
func ParseFile(path string, opt Options) (*table.Raw, error) {
	for _, p := range registry {
		if p.CanParse(path) {
			return p.Parse(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
}

func init() {
	Register(xlsxParser{})
	Register(csvParser{})
}

// ErrUnsupported indicates a format is not supported.
var ErrUnsupported = errors.New("unsupported spreadsheet format")
