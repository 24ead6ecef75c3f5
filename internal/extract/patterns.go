package extract

import (
	"regexp"

	"github.com/KaramelBytes/ffcdb-cli/internal/table"
)

var (
	materialRe = regexp.MustCompile(materialPattern)
	sourceRe   = regexp.MustCompile(sourcePattern)
)

// CanonicalMaterials is the reporting order for the FCCdb global inventory
// materials. Materials discovered outside this list are reported after it.
var CanonicalMaterials = []string{
	"Plastics",
	"Coatings",
	"Paper & board",
	"Rubber",
	"Inks",
	"Adhesives",
	"Metals & alloys",
	"Glass",
	"Ceramics",
	"Wood",
	"Cork",
	"Textiles",
	"Silicones",
	"Ion exchange resins",
	"Waxes",
	"Colorants",
	"Lubricants",
	"Biocides",
}

// DiscoverMaterials returns raw column -> material name pairs in header
// order for every column matching "Global \nInventory: <material>".
func DiscoverMaterials(raw *table.Raw) [][2]string {
	var out [][2]string
	for _, name := range raw.Columns() {
		if m := materialRe.FindStringSubmatch(name); m != nil {
			out = append(out, [2]string{name, m[1]})
		}
	}
	return out
}

// OrderMaterials sorts names by CanonicalMaterials, keeping unknown names
// after the known ones in their given order.
func OrderMaterials(names []string) []string {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	out := make([]string, 0, len(names))
	for _, m := range CanonicalMaterials {
		if present[m] {
			out = append(out, m)
			delete(present, m)
		}
	}
	for _, n := range names {
		if present[n] {
			out = append(out, n)
			delete(present, n)
		}
	}
	return out
}

// MaterialFields returns the material flags of c in reporting order.
func MaterialFields(c *table.Clean) []string {
	return OrderMaterials(c.FieldsInGroup(GroupMaterial))
}

// Materials emits one presence flag per discovered inventory material plus
// the Usage count.
func Materials(p Policy) Extractor {
	return &rule{
		name:     "materials",
		provides: []string{FieldUsageCount},
		fn: func(raw *table.Raw, _ *table.Clean) ([]*table.Column, error) {
			var out []*table.Column
			for _, pair := range DiscoverMaterials(raw) {
				col, err := nonZeroColumn(raw, pair[0], pair[1], GroupMaterial)
				if err != nil {
					return nil, err
				}
				out = append(out, col)
			}
			usage, err := intColumn(raw, ColUsageCount, FieldUsageCount, p)
			if err != nil {
				return nil, err
			}
			return append(out, usage), nil
		},
	}
}

// Sources emits one citation flag per "S<n>" column and the Source count,
// the number of flags set on the row.
func Sources() Extractor {
	return &rule{
		name:     "sources",
		provides: []string{FieldSourceCount},
		fn: func(raw *table.Raw, _ *table.Clean) ([]*table.Column, error) {
			counts := make([]int64, raw.Len())
			var out []*table.Column
			for _, name := range raw.Match(sourceRe) {
				col, err := nonZeroColumn(raw, name, name, GroupSource)
				if err != nil {
					return nil, err
				}
				for i := range counts {
					if col.Bool(i) {
						counts[i]++
					}
				}
				out = append(out, col)
			}
			valid := make([]bool, len(counts))
			for i := range valid {
				valid[i] = true
			}
			return append(out, table.NewIntColumn(FieldSourceCount, counts, valid)), nil
		},
	}
}

func nonZeroColumn(raw *table.Raw, src, dst, group string) (*table.Column, error) {
	cells, err := raw.Column(src)
	if err != nil {
		return nil, err
	}
	vals := make([]bool, len(cells))
	for i, c := range cells {
		vals[i] = IsNonZero(c)
	}
	return table.NewBoolColumn(dst, vals).WithGroup(group), nil
}
