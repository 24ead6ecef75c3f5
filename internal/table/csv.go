package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/KaramelBytes/ffcdb-cli/internal/utils"
	"gopkg.in/yaml.v3"
)

// SchemaSuffix is appended to a cleaned file path to name its schema sidecar.
const SchemaSuffix = ".schema.yaml"

// Schema records field order and kinds so a reload restores typed columns.
type Schema struct {
	Fields []FieldSpec `yaml:"fields"`
}

// FieldSpec is one schema entry.
type FieldSpec struct {
	Name  string `yaml:"name"`
	Kind  string `yaml:"kind"`
	Group string `yaml:"group,omitempty"`
}

// SchemaOf describes c.
func SchemaOf(c *Clean) Schema {
	s := Schema{Fields: make([]FieldSpec, 0, len(c.order))}
	for _, n := range c.order {
		col := c.cols[n]
		s.Fields = append(s.Fields, FieldSpec{Name: n, Kind: col.Kind().String(), Group: col.Group()})
	}
	return s
}

// WriteCSV writes a row-index column (blank header) followed by every field.
func WriteCSV(w io.Writer, c *Clean) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(c.order)+1)
	header = append(header, "")
	header = append(header, c.order...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(header))
	for i := 0; i < c.rows; i++ {
		rec[0] = strconv.Itoa(i)
		for j, n := range c.order {
			rec[j+1] = c.cols[n].Format(i)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV loads a file produced by WriteCSV. With a nil schema the column
// kinds are inferred from the values.
func ReadCSV(r io.Reader, schema *Schema) (*Clean, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("read csv: empty file")
	}
	header := records[0]
	if len(header) == 0 {
		return nil, errors.New("read csv: empty header")
	}
	names := header[1:]
	body := records[1:]
	for i, rec := range body {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("read csv: row %d has %d fields, want %d", i+1, len(rec), len(header))
		}
	}
	kinds := make([]Kind, len(names))
	groups := make([]string, len(names))
	if schema != nil {
		if len(schema.Fields) != len(names) {
			return nil, fmt.Errorf("schema lists %d fields, file has %d", len(schema.Fields), len(names))
		}
		for i, f := range schema.Fields {
			if f.Name != names[i] {
				return nil, fmt.Errorf("schema field %d is %q, file has %q", i, f.Name, names[i])
			}
			k, err := ParseKind(f.Kind)
			if err != nil {
				return nil, err
			}
			kinds[i] = k
			groups[i] = f.Group
		}
	} else {
		for i := range names {
			kinds[i] = inferKind(body, i+1)
		}
	}
	out := NewClean(len(body))
	for i, name := range names {
		col, err := parseColumn(name, kinds[i], body, i+1)
		if err != nil {
			return nil, err
		}
		if groups[i] != "" {
			col = col.WithGroup(groups[i])
		}
		if err := out.Add(col); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parseColumn(name string, kind Kind, body [][]string, idx int) (*Column, error) {
	n := len(body)
	switch kind {
	case KindBool:
		vals := make([]bool, n)
		for i, rec := range body {
			b, ok := parseBool(rec[idx])
			if !ok {
				return nil, fmt.Errorf("field %q row %d: invalid bool %q", name, i, rec[idx])
			}
			vals[i] = b
		}
		return NewBoolColumn(name, vals), nil
	case KindInt:
		vals, valid := make([]int64, n), make([]bool, n)
		for i, rec := range body {
			if rec[idx] == "" {
				continue
			}
			v, err := strconv.ParseInt(rec[idx], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("field %q row %d: %w", name, i, err)
			}
			vals[i], valid[i] = v, true
		}
		return NewIntColumn(name, vals, valid), nil
	case KindFloat:
		vals, valid := make([]float64, n), make([]bool, n)
		for i, rec := range body {
			if rec[idx] == "" {
				continue
			}
			v, err := strconv.ParseFloat(rec[idx], 64)
			if err != nil {
				return nil, fmt.Errorf("field %q row %d: %w", name, i, err)
			}
			vals[i], valid[i] = v, true
		}
		return NewFloatColumn(name, vals, valid), nil
	case KindCategory, KindText:
		vals, valid := make([]string, n), make([]bool, n)
		for i, rec := range body {
			vals[i], valid[i] = rec[idx], rec[idx] != ""
		}
		if kind == KindCategory {
			return NewCategoryColumn(name, vals, valid), nil
		}
		return NewTextColumn(name, vals, valid), nil
	default:
		return nil, fmt.Errorf("field %q: unsupported kind %s", name, kind)
	}
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "True", "true", "TRUE":
		return true, true
	case "False", "false", "FALSE":
		return false, true
	}
	return false, false
}

// inferKind picks the narrowest kind that parses every non-empty value.
// An all-empty column is treated as float, matching a column of nulls.
func inferKind(body [][]string, idx int) Kind {
	isBool, isInt, isFloat := true, true, true
	seen := false
	for _, rec := range body {
		v := rec[idx]
		if v == "" {
			isBool = false
			continue
		}
		seen = true
		if _, ok := parseBool(v); !ok {
			isBool = false
		}
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			isInt = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			isFloat = false
		}
	}
	switch {
	case !seen:
		return KindFloat
	case isBool:
		return KindBool
	case isInt:
		return KindInt
	case isFloat:
		return KindFloat
	default:
		return KindText
	}
}

// SaveFile writes c to path and its schema to path+SchemaSuffix. Both are
// staged before either replaces an existing file.
func SaveFile(path string, c *Clean) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, c); err != nil {
		return err
	}
	sb, err := yaml.Marshal(SchemaOf(c))
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	return utils.SafeWriteFiles(
		utils.FileData{Path: path + SchemaSuffix, Data: sb},
		utils.FileData{Path: path, Data: buf.Bytes()},
	)
}

// LoadFile reads a cleaned file, using its schema sidecar when present.
func LoadFile(path string) (*Clean, error) {
	var schema *Schema
	sb, err := os.ReadFile(path + SchemaSuffix)
	switch {
	case err == nil:
		var s Schema
		if err := yaml.Unmarshal(sb, &s); err != nil {
			return nil, fmt.Errorf("parse schema: %w", err)
		}
		schema = &s
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read schema: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cleaned file: %w", err)
	}
	return ReadCSV(bytes.NewReader(data), schema)
}
