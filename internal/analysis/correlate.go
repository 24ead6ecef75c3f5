package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/ffcdb-cli/internal/table"
)

// Method names a correlation coefficient.
type Method string

const (
	Pearson  Method = "pearson"
	Kendall  Method = "kendall"
	Spearman Method = "spearman"
)

// ErrUnknownMethod is returned for a correlation method other than
// pearson, kendall or spearman.
var ErrUnknownMethod = errors.New("correlation method should be one of pearson, kendall, spearman")

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case Pearson, Kendall, Spearman:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// CorrMatrix holds a symmetric correlation matrix across numeric fields.
// Pairs without enough complete observations are NaN.
type CorrMatrix struct {
	Method  Method
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
}

// Correlate computes the pairwise correlation of every bool, int and float
// field in c. Each pair uses only rows where both values are present.
func Correlate(c *table.Clean, method Method) (*CorrMatrix, error) {
	var corr func(x, y []float64) float64
	switch method {
	case Pearson:
		corr = pearson
	case Spearman:
		corr = spearman
	case Kendall:
		corr = kendallTauB
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	names := c.NumericFields()
	n := len(names)
	vals := make([][]float64, n)
	valid := make([][]bool, n)
	for i, name := range names {
		col, err := c.Column(name)
		if err != nil {
			return nil, err
		}
		vals[i] = make([]float64, c.Len())
		valid[i] = make([]bool, c.Len())
		for r := 0; r < c.Len(); r++ {
			vals[i][r], valid[i][r] = col.Float(r)
		}
	}

	m := &CorrMatrix{Method: method, Columns: names, Values: make([][]float64, n)}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
	}
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < n; i++ {
		g.Go(func() error {
			x := make([]float64, 0, c.Len())
			y := make([]float64, 0, c.Len())
			for j := i; j < n; j++ {
				x, y = x[:0], y[:0]
				for r := 0; r < c.Len(); r++ {
					if valid[i][r] && valid[j][r] {
						x = append(x, vals[i][r])
						y = append(y, vals[j][r])
					}
				}
				r := math.NaN()
				if len(x) >= 2 {
					r = corr(x, y)
				}
				// Goroutine i is the only writer of (i, j>=i) and (j>=i, i).
				m.Values[i][j] = r
				m.Values[j][i] = r
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

func pearson(x, y []float64) float64 {
	if constant(x) || constant(y) {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

func spearman(x, y []float64) float64 {
	return pearson(ranks(x), ranks(y))
}

func constant(x []float64) bool {
	for _, v := range x[1:] {
		if v != x[0] {
			return false
		}
	}
	return true
}

// ranks returns 1-based ranks with ties sharing their average rank.
func ranks(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })
	out := make([]float64, len(x))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}

// kendallTauB computes tau-b in O(n log n) with Knight's algorithm.
func kendallTauB(x, y []float64) float64 {
	n := len(x)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		if x[idx[a]] != x[idx[b]] {
			return x[idx[a]] < x[idx[b]]
		}
		return y[idx[a]] < y[idx[b]]
	})

	tot := float64(n) * float64(n-1) / 2
	var xTies, jointTies float64
	for i := 0; i < n; {
		j := i
		for j+1 < n && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		xTies += pairs(j - i + 1)
		for k := i; k <= j; {
			l := k
			for l+1 <= j && y[idx[l+1]] == y[idx[k]] {
				l++
			}
			jointTies += pairs(l - k + 1)
			k = l + 1
		}
		i = j + 1
	}

	ys := make([]float64, n)
	for i, k := range idx {
		ys[i] = y[k]
	}
	swaps := mergeCount(ys, make([]float64, n))

	var yTies float64
	for i := 0; i < n; {
		j := i
		for j+1 < n && ys[j+1] == ys[i] {
			j++
		}
		yTies += pairs(j - i + 1)
		i = j + 1
	}

	den := math.Sqrt(tot-xTies) * math.Sqrt(tot-yTies)
	if den == 0 {
		return math.NaN()
	}
	return (tot - xTies - yTies + jointTies - 2*swaps) / den
}

func pairs(t int) float64 { return float64(t) * float64(t-1) / 2 }

// mergeCount sorts a ascending and returns the number of strict inversions.
func mergeCount(a, buf []float64) float64 {
	if len(a) < 2 {
		return 0
	}
	mid := len(a) / 2
	swaps := mergeCount(a[:mid], buf[:mid]) + mergeCount(a[mid:], buf[mid:])
	i, j, k := 0, mid, 0
	for i < mid && j < len(a) {
		if a[j] < a[i] {
			buf[k] = a[j]
			swaps += float64(mid - i)
			j++
		} else {
			buf[k] = a[i]
			i++
		}
		k++
	}
	k += copy(buf[k:], a[i:mid])
	copy(buf[k:], a[j:])
	copy(a, buf[:len(a)])
	return swaps
}

// StrongPairs lists every unordered pair with |r| > threshold once, in
// matrix order, with r rounded to decimals. NaN cells and the diagonal are
// skipped.
func StrongPairs(m *CorrMatrix, threshold float64, decimals int) []PairCorr {
	n := len(m.Columns)
	vals := make([][]float64, n)
	for i := range vals {
		vals[i] = append([]float64(nil), m.Values[i]...)
	}
	var out []PairCorr
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := vals[i][j]
			if i == j || math.IsNaN(v) || math.Abs(v) <= threshold {
				continue
			}
			out = append(out, PairCorr{A: m.Columns[i], B: m.Columns[j], R: round(v, decimals)})
			vals[j][i] = math.NaN()
		}
	}
	return out
}

// TopPairs returns up to limit pairs ordered by |r|, ties by name.
func TopPairs(m *CorrMatrix, limit int) []PairCorr {
	var ps []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if r := m.Values[i][j]; !math.IsNaN(r) {
				ps = append(ps, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r})
			}
		}
	}
	sort.SliceStable(ps, func(i, j int) bool {
		ai, aj := math.Abs(ps[i].R), math.Abs(ps[j].R)
		if ai == aj {
			return ps[i].A+ps[i].B < ps[j].A+ps[j].B
		}
		return ai > aj
	})
	if limit > 0 && len(ps) > limit {
		ps = ps[:limit]
	}
	return ps
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// WriteMatrixCSV writes the matrix with a blank corner cell. NaN is empty.
func WriteMatrixCSV(w io.Writer, m *CorrMatrix) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{""}, m.Columns...)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(m.Columns)+1)
	for i, name := range m.Columns {
		rec[0] = name
		for j, v := range m.Values[i] {
			rec[j+1] = formatFloat(v)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %s: %w", name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePairsCSV writes pairs as column_a,column_b,correlation rows.
func WritePairsCSV(w io.Writer, ps []PairCorr) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"column_a", "column_b", "correlation"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, p := range ps {
		if err := cw.Write([]string{p.A, p.B, formatFloat(p.R)}); err != nil {
			return fmt.Errorf("write pair: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
