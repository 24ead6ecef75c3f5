package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/ffcdb-cli/internal/table"
)

// Options controls the dataset summary.
type Options struct {
	// TopValues caps the categories listed per categorical field.
	TopValues int
	// Examples caps the sample values listed per text field.
	Examples int
	// OutlierThreshold flags numeric values with robust |z| above it; 0 disables.
	OutlierThreshold float64
	// TopCorrelations caps the pairs listed when a matrix is attached.
	TopCorrelations int
}

// DefaultOptions returns reasonable defaults for the summary.
func DefaultOptions() Options {
	return Options{
		TopValues:        5,
		Examples:         3,
		OutlierThreshold: 3.5,
		TopCorrelations:  10,
	}
}

// Report is a markdown-friendly summary of a clean table.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Corr     *CorrMatrix
	Strong   []PairCorr
	Warnings []string
	opt      Options
}

// ColumnSummary captures kind and statistics per field.
type ColumnSummary struct {
	Name    string
	Kind    table.Kind
	NonNull int
	Missing int
	Unique  int
	// Bool fields
	TrueCount int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical top values
	TopValues    []CategoryCount
	ExampleTexts []string
}

type CategoryCount struct {
	Value string
	Count int
}

// Summarize builds a Report for c.
func Summarize(name string, c *table.Clean, opt Options) (*Report, error) {
	rep := &Report{Name: name, Rows: c.Len(), opt: opt}
	for _, field := range c.Fields() {
		col, err := c.Column(field)
		if err != nil {
			return nil, err
		}
		cs := ColumnSummary{Name: field, Kind: col.Kind()}
		switch col.Kind() {
		case table.KindBool:
			cs.NonNull = col.Len()
			for i := 0; i < col.Len(); i++ {
				if col.Bool(i) {
					cs.TrueCount++
				}
			}
			cs.Unique = 1
			if cs.TrueCount > 0 && cs.TrueCount < cs.NonNull {
				cs.Unique = 2
			}
			if col.Len() == 0 {
				cs.Unique = 0
			}
		case table.KindInt, table.KindFloat:
			summarizeNumeric(col, &cs, opt.OutlierThreshold)
		default:
			summarizeStrings(col, &cs, opt)
		}
		if cs.NonNull == 0 && c.Len() > 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s has no values", safeName(field)))
		}
		rep.Cols = append(rep.Cols, cs)
	}
	return rep, nil
}

func summarizeNumeric(col *table.Column, cs *ColumnSummary, threshold float64) {
	var vals []float64
	seen := map[float64]bool{}
	for i := 0; i < col.Len(); i++ {
		v, ok := col.Float(i)
		if !ok {
			cs.Missing++
			continue
		}
		vals = append(vals, v)
		seen[v] = true
	}
	cs.NonNull = len(vals)
	cs.Unique = len(seen)
	if len(vals) == 0 {
		return
	}
	cs.Min, cs.Max = vals[0], vals[0]
	for _, v := range vals[1:] {
		cs.Min = math.Min(cs.Min, v)
		cs.Max = math.Max(cs.Max, v)
	}
	cs.Mean, cs.Std = stat.MeanStdDev(vals, nil)
	if len(vals) < 2 {
		cs.Std = 0
	}
	if threshold <= 0 {
		return
	}
	cs.OutlierThreshold = threshold
	median, mad := medianMAD(vals)
	if mad == 0 {
		return
	}
	for _, v := range vals {
		// 0.6745 scales MAD to the standard deviation of a normal sample.
		z := math.Abs(0.6745 * (v - median) / mad)
		if z > threshold {
			cs.OutliersCount++
			cs.OutliersMaxAbsZ = math.Max(cs.OutliersMaxAbsZ, z)
		}
	}
}

func summarizeStrings(col *table.Column, cs *ColumnSummary, opt Options) {
	counts := map[string]int{}
	for i := 0; i < col.Len(); i++ {
		s, ok := col.Str(i)
		if !ok {
			cs.Missing++
			continue
		}
		cs.NonNull++
		counts[s]++
		if col.Kind() == table.KindText && len(cs.ExampleTexts) < opt.Examples {
			cs.ExampleTexts = append(cs.ExampleTexts, s)
		}
	}
	cs.Unique = len(counts)
	if col.Kind() != table.KindCategory {
		return
	}
	for v, n := range counts {
		cs.TopValues = append(cs.TopValues, CategoryCount{Value: v, Count: n})
	}
	sort.Slice(cs.TopValues, func(i, j int) bool {
		if cs.TopValues[i].Count == cs.TopValues[j].Count {
			return cs.TopValues[i].Value < cs.TopValues[j].Value
		}
		return cs.TopValues[i].Count > cs.TopValues[j].Count
	})
	if len(cs.TopValues) > opt.TopValues {
		cs.TopValues = cs.TopValues[:opt.TopValues]
	}
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	median = stat.Quantile(0.5, stat.LinInterp, cp, nil)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = stat.Quantile(0.5, stat.LinInterp, dev, nil)
	return
}

// Markdown renders the report.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case table.KindBool:
			b.WriteString(fmt.Sprintf(": true %d of %d", c.TrueCount, c.NonNull))
		case table.KindInt, table.KindFloat:
			if c.NonNull == 0 {
				break
			}
			b.WriteString(fmt.Sprintf(": min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			if c.OutlierThreshold > 0 && c.OutliersCount > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f (max |z|≈%.2f)", c.OutliersCount, c.OutlierThreshold, c.OutliersMaxAbsZ))
			}
		case table.KindCategory:
			if len(c.TopValues) > 0 {
				b.WriteString(": top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		case table.KindText:
			if len(c.ExampleTexts) > 0 {
				b.WriteString(": e.g., ")
				for i, ex := range c.ExampleTexts {
					if i > 0 {
						b.WriteString(" | ")
					}
					b.WriteString(safeVal(ex))
				}
			}
		}
		b.WriteString("\n")
	}
	if r.Corr != nil && len(r.Corr.Columns) >= 2 {
		b.WriteString(fmt.Sprintf("\n[CORRELATIONS (%s)]\n", r.Corr.Method))
		for _, p := range TopPairs(r.Corr, r.opt.TopCorrelations) {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.A, p.B, p.R))
		}
	}
	if len(r.Strong) > 0 {
		b.WriteString("\n[STRONG CORRELATIONS]\n")
		for _, p := range r.Strong {
			b.WriteString(fmt.Sprintf("- %s ~ %s: %g\n", p.A, p.B, p.R))
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return safeVal(s)
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
