package extract

import (
	"github.com/KaramelBytes/ffcdb-cli/internal/table"
)

// Extractor turns raw columns into one or more clean fields.
//
// Requires lists clean fields the extractor reads from the in-progress
// table; Provides lists the fields it always writes. Pattern-driven
// extractors may write further fields discovered from the raw header.
type Extractor interface {
	Name() string
	Requires() []string
	Provides() []string
	Extract(raw *table.Raw, clean *table.Clean) ([]*table.Column, error)
}

type extractFunc func(raw *table.Raw, clean *table.Clean) ([]*table.Column, error)

// rule is the Extractor used by every family in this package.
type rule struct {
	name     string
	requires []string
	provides []string
	fn       extractFunc
}

func (r *rule) Name() string       { return r.name }
func (r *rule) Requires() []string { return append([]string(nil), r.requires...) }
func (r *rule) Provides() []string { return append([]string(nil), r.provides...) }

func (r *rule) Extract(raw *table.Raw, clean *table.Clean) ([]*table.Column, error) {
	return r.fn(raw, clean)
}

// Options configures the default extractor set.
type Options struct {
	Policy Policy
	// TonnageColumn is the raw tonnage band column. Empty disables the
	// tonnage extractor.
	TonnageColumn string
	// FoodListColumn is the raw list-membership column searched for "food".
	// Empty makes food_contact depend on the CPPdb flag alone.
	FoodListColumn string
}

// DefaultOptions returns the options matching the published workbook.
func DefaultOptions() Options {
	return Options{
		Policy:         DefaultPolicy(),
		TonnageColumn:  ColTonnage,
		FoodListColumn: ColFoodLists,
	}
}

// Default returns the full extractor set in registration order.
func Default(opt Options) []Extractor {
	p := opt.Policy
	out := []Extractor{
		Identity(p),
		Priority(p),
		References(p),
		HazardScores(p),
		HazardLabels(p),
		Materials(p),
		Sources(),
	}
	if opt.TonnageColumn != "" {
		out = append(out, Tonnage(opt.TonnageColumn))
	}
	out = append(out, CPPdb(p), FoodContact(opt.FoodListColumn))
	return out
}
