package analysis

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KaramelBytes/ffcdb-cli/internal/extract"
	"github.com/KaramelBytes/ffcdb-cli/internal/table"
)

// MaterialStat counts chemicals recorded for one inventory material.
type MaterialStat struct {
	Material     string
	Count        int
	Hazardous    int
	HazardousPct float64
}

// FoodContactSplit divides hazardous chemicals by food contact status.
type FoodContactSplit struct {
	Hazardous int
	InContact int
	NoContact int
}

// MaterialReport is the data behind the material and hazard charts.
type MaterialReport struct {
	Materials   []MaterialStat
	FoodContact FoodContactSplit
}

// Materials computes per-material and food contact counts. Material fields
// are the bool fields named in materials that exist in c, in that order;
// pass extract.OrderMaterials output to follow the canonical order.
func Materials(c *table.Clean, materials []string) (*MaterialReport, error) {
	hazard, err := c.Column(extract.FieldHazardAuth)
	if err != nil {
		return nil, err
	}
	rep := &MaterialReport{}
	for _, m := range materials {
		col, err := c.Column(m)
		if err != nil {
			continue
		}
		if col.Kind() != table.KindBool {
			return nil, fmt.Errorf("material field %q is %s, want bool", m, col.Kind())
		}
		st := MaterialStat{Material: m}
		for i := 0; i < c.Len(); i++ {
			if !col.Bool(i) {
				continue
			}
			st.Count++
			if hazard.Bool(i) {
				st.Hazardous++
			}
		}
		if st.Count > 0 {
			st.HazardousPct = float64(st.Hazardous) * 100 / float64(st.Count)
		}
		rep.Materials = append(rep.Materials, st)
	}

	food, err := c.Column(extract.FieldFoodContact)
	if err != nil {
		return nil, err
	}
	for i := 0; i < c.Len(); i++ {
		if !hazard.Bool(i) {
			continue
		}
		rep.FoodContact.Hazardous++
		if food.Bool(i) {
			rep.FoodContact.InContact++
		}
	}
	rep.FoodContact.NoContact = rep.FoodContact.Hazardous - rep.FoodContact.InContact
	return rep, nil
}

// Text renders the report for a terminal.
func (r *MaterialReport) Text() string {
	var b strings.Builder
	b.WriteString("[MATERIALS]\n")
	width := len("Material")
	for _, m := range r.Materials {
		width = max(width, len(m.Material))
	}
	b.WriteString(fmt.Sprintf("%-*s  %8s  %9s  %7s\n", width, "Material", "Chemicals", "Hazardous", "Haz %"))
	for _, m := range r.Materials {
		b.WriteString(fmt.Sprintf("%-*s  %8d  %9d  %6.2f%%\n", width, m.Material, m.Count, m.Hazardous, m.HazardousPct))
	}
	fc := r.FoodContact
	b.WriteString("\n[HAZARDOUS SUBSTANCES IN CONTACT WITH FOOD]\n")
	b.WriteString(fmt.Sprintf("In contact: %d (%.2f%%)\n", fc.InContact, pct(fc.InContact, fc.Hazardous)))
	b.WriteString(fmt.Sprintf("No contact: %d (%.2f%%)\n", fc.NoContact, pct(fc.NoContact, fc.Hazardous)))
	return b.String()
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

// WriteCSV writes one row per material.
func (r *MaterialReport) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"material", "count", "hazardous", "hazardous_pct"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, m := range r.Materials {
		rec := []string{
			m.Material,
			strconv.Itoa(m.Count),
			strconv.Itoa(m.Hazardous),
			strconv.FormatFloat(m.HazardousPct, 'f', 2, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write material %s: %w", m.Material, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
