package extract

import (
	"math"

	"github.com/KaramelBytes/ffcdb-cli/internal/table"
)

type mapping struct{ src, dst string }

// Identity emits CAS validity and the CAS/CFSAN identifier.
func Identity(p Policy) Extractor {
	return &rule{
		name:     "identity",
		provides: []string{FieldCASValidity, FieldCASNumber},
		fn: func(raw *table.Raw, _ *table.Clean) ([]*table.Column, error) {
			valid, err := prefixColumn(raw, ColCASValidity, FieldCASValidity, p.Valid)
			if err != nil {
				return nil, err
			}
			cells, err := raw.Column(ColCASNumber)
			if err != nil {
				return nil, err
			}
			vals, ok := make([]string, len(cells)), make([]bool, len(cells))
			for i, c := range cells {
				vals[i] = c.Text()
				ok[i] = !c.IsEmpty()
			}
			return []*table.Column{valid, table.NewTextColumn(FieldCASNumber, vals, ok)}, nil
		},
	}
}

// Priority emits the two "yes/no + why" prioritisation flags.
func Priority(p Policy) Extractor {
	ms := []mapping{
		{ColHazardAuth, FieldHazardAuth},
		{ColConcernNon, FieldConcernNonAuth},
	}
	return &rule{
		name:     "priority",
		provides: dsts(ms),
		fn: func(raw *table.Raw, _ *table.Clean) ([]*table.Column, error) {
			out := make([]*table.Column, 0, len(ms))
			for _, m := range ms {
				col, err := prefixColumn(raw, m.src, m.dst, p.Yes)
				if err != nil {
					return nil, err
				}
				out = append(out, col)
			}
			return out, nil
		},
	}
}

// References emits ref_count, the number of sources citing the chemical.
func References(p Policy) Extractor {
	return &rule{
		name:     "references",
		provides: []string{FieldRefCount},
		fn: func(raw *table.Raw, _ *table.Clean) ([]*table.Column, error) {
			col, err := intColumn(raw, ColRefCount, FieldRefCount, p)
			if err != nil {
				return nil, err
			}
			return []*table.Column{col}, nil
		},
	}
}

// HazardScores emits the ECHA and GHS-J hazard sums as nullable floats.
func HazardScores(p Policy) Extractor {
	ms := []mapping{
		{ColECHAHH, FieldECHAHH},
		{ColECHAENVH, FieldECHAENVH},
		{ColGHSJHH, FieldGHSJHH},
		{ColGHSJENVH, FieldGHSJENVH},
	}
	return &rule{
		name:     "hazard-scores",
		provides: dsts(ms),
		fn: func(raw *table.Raw, _ *table.Clean) ([]*table.Column, error) {
			out := make([]*table.Column, 0, len(ms))
			for _, m := range ms {
				cells, err := raw.Column(m.src)
				if err != nil {
					return nil, err
				}
				vals, ok := make([]float64, len(cells)), make([]bool, len(cells))
				for i, c := range cells {
					vals[i], ok[i] = CoerceNumericOrNull(c, p)
				}
				out = append(out, table.NewFloatColumn(m.dst, vals, ok))
			}
			return out, nil
		},
	}
}

// HazardLabels emits signal words, classifications and the Danish EPA
// predictions as nullable categories.
func HazardLabels(p Policy) Extractor {
	ms := []mapping{
		{ColECHASignal, FieldECHASignal},
		{ColECHAClass, FieldECHAClass},
		{ColGHSJSignal, FieldGHSJSignal},
		{ColGHSJClass, FieldGHSJClass},
		{ColDanishClass, FieldGHSAlignedClass},
		{ColDanishHH, FieldGHSAlignedHH},
		{ColDanishENVH, FieldGHSAlignedENVH},
	}
	return &rule{
		name:     "hazard-labels",
		provides: dsts(ms),
		fn: func(raw *table.Raw, _ *table.Clean) ([]*table.Column, error) {
			out := make([]*table.Column, 0, len(ms))
			for _, m := range ms {
				cells, err := raw.Column(m.src)
				if err != nil {
					return nil, err
				}
				vals, ok := make([]string, len(cells)), make([]bool, len(cells))
				for i, c := range cells {
					vals[i], ok[i] = CategoryOrNull(c, p)
				}
				out = append(out, table.NewCategoryColumn(m.dst, vals, ok))
			}
			return out, nil
		},
	}
}

func prefixColumn(raw *table.Raw, src, dst, prefix string) (*table.Column, error) {
	cells, err := raw.Column(src)
	if err != nil {
		return nil, err
	}
	vals := make([]bool, len(cells))
	for i, c := range cells {
		vals[i] = BoolFromPrefix(c, prefix)
	}
	return table.NewBoolColumn(dst, vals), nil
}

// intColumn coerces src to integers, truncating fractions. Values outside
// the int64 range are null like any other unusable cell.
func intColumn(raw *table.Raw, src, dst string, p Policy) (*table.Column, error) {
	cells, err := raw.Column(src)
	if err != nil {
		return nil, err
	}
	vals, ok := make([]int64, len(cells)), make([]bool, len(cells))
	for i, c := range cells {
		f, valid := CoerceNumericOrNull(c, p)
		if !valid || math.IsNaN(f) || math.Abs(f) >= math.MaxInt64 {
			continue
		}
		vals[i], ok[i] = int64(f), true
	}
	return table.NewIntColumn(dst, vals, ok), nil
}

func dsts(ms []mapping) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.dst
	}
	return out
}
