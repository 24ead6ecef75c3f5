package extract

import (
	"strings"

	"github.com/KaramelBytes/ffcdb-cli/internal/table"
)

// Tonnage emits the min and max registered tonnage read from column.
// Rows without a usable band are 0, not null.
func Tonnage(column string) Extractor {
	return &rule{
		name:     "tonnage",
		provides: []string{FieldTonnageMin, FieldTonnageMax},
		fn: func(raw *table.Raw, _ *table.Clean) ([]*table.Column, error) {
			cells, err := raw.Column(column)
			if err != nil {
				return nil, err
			}
			n := len(cells)
			lo, hi, valid := make([]float64, n), make([]float64, n), make([]bool, n)
			for i, c := range cells {
				lo[i] = ExtractTonnageOrZero(c, BoundMin)
				hi[i] = ExtractTonnageOrZero(c, BoundMax)
				valid[i] = true
			}
			return []*table.Column{
				table.NewFloatColumn(FieldTonnageMin, lo, valid),
				table.NewFloatColumn(FieldTonnageMax, hi, valid),
			}, nil
		},
	}
}

// CPPdb emits whether the CPPdb assessment considers the chemical a food
// contact substance.
func CPPdb(p Policy) Extractor {
	return &rule{
		name:     "cppdb",
		provides: []string{FieldCPPdbFC},
		fn: func(raw *table.Raw, _ *table.Clean) ([]*table.Column, error) {
			cells, err := raw.Column(ColCPPdb)
			if err != nil {
				return nil, err
			}
			vals := make([]bool, len(cells))
			for i, c := range cells {
				vals[i] = HasCompoundFlag(c, p)
			}
			return []*table.Column{table.NewBoolColumn(FieldCPPdbFC, vals)}, nil
		},
	}
}

// FoodContact emits food_contact: the list column mentions "food" in any
// case, or CPPdb fc is set. With an empty listColumn only CPPdb fc counts.
func FoodContact(listColumn string) Extractor {
	return &rule{
		name:     "food-contact",
		requires: []string{FieldCPPdbFC},
		provides: []string{FieldFoodContact},
		fn: func(raw *table.Raw, clean *table.Clean) ([]*table.Column, error) {
			fc, err := clean.Column(FieldCPPdbFC)
			if err != nil {
				return nil, err
			}
			var lists []table.Cell
			if listColumn != "" {
				if lists, err = raw.Column(listColumn); err != nil {
					return nil, err
				}
			}
			vals := make([]bool, clean.Len())
			for i := range vals {
				vals[i] = fc.Bool(i)
				if !vals[i] && lists != nil {
					vals[i] = strings.Contains(strings.ToLower(lists[i].Text()), "food")
				}
			}
			return []*table.Column{table.NewBoolColumn(FieldFoodContact, vals)}, nil
		},
	}
}
