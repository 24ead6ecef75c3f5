package analysis

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/ffcdb-cli/internal/table"
)

func floats(name string, vals ...float64) *table.Column {
	valid := make([]bool, len(vals))
	for i, v := range vals {
		valid[i] = !math.IsNaN(v)
		if !valid[i] {
			vals[i] = 0
		}
	}
	return table.NewFloatColumn(name, vals, valid)
}

func cleanOf(t *testing.T, cols ...*table.Column) *table.Clean {
	t.Helper()
	c := table.NewClean(cols[0].Len())
	require.NoError(t, c.Add(cols...))
	c.Seal()
	return c
}

var nan = math.NaN()

func corrFixture(t *testing.T) *table.Clean {
	return cleanOf(t,
		floats("a", 1, 2, 3, 4, 5),
		floats("b", 2, 4, 6, 8, 10),
		floats("c", 5, 4, 3, 2, 1),
		floats("e", 1, 2, nan, nan, nan),
		floats("f", nan, nan, nan, nan, nan),
		table.NewCategoryColumn("label", []string{"x", "y", "x", "y", "x"}, []bool{true, true, true, true, true}),
	)
}

func cell(m *CorrMatrix, a, b string) float64 {
	idx := map[string]int{}
	for i, c := range m.Columns {
		idx[c] = i
	}
	return m.Values[idx[a]][idx[b]]
}

func TestCorrelateMethods(t *testing.T) {
	c := corrFixture(t)
	for _, method := range []Method{Pearson, Spearman, Kendall} {
		m, err := Correlate(c, method)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "e", "f"}, m.Columns, "non-numeric fields are excluded")
		assert.InDelta(t, 1, cell(m, "a", "b"), 1e-12, method)
		assert.InDelta(t, -1, cell(m, "a", "c"), 1e-12, method)
		assert.InDelta(t, 1, cell(m, "a", "a"), 1e-12, method)
		// Only the two complete rows count for e.
		assert.InDelta(t, 1, cell(m, "a", "e"), 1e-12, method)
		assert.True(t, math.IsNaN(cell(m, "a", "f")), method)
		assert.Equal(t, cell(m, "b", "c"), cell(m, "c", "b"))
	}
}

func TestCorrelateWithTies(t *testing.T) {
	c := cleanOf(t, floats("x", 1, 2, 2, 3), floats("y", 1, 2, 3, 3))

	m, err := Correlate(c, Kendall)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, cell(m, "x", "y"), 1e-12)

	m, err = Correlate(c, Spearman)
	require.NoError(t, err)
	// ranks x = 1, 2.5, 2.5, 4 and y = 1, 2, 3.5, 3.5
	assert.InDelta(t, 5.0/6.0, cell(m, "x", "y"), 1e-12)
}

func TestCorrelateUnknownMethod(t *testing.T) {
	_, err := Correlate(corrFixture(t), Method("cosine"))
	require.ErrorIs(t, err, ErrUnknownMethod)

	_, err = ParseMethod("Cosine")
	require.ErrorIs(t, err, ErrUnknownMethod)
	m, err := ParseMethod(" Kendall ")
	require.NoError(t, err)
	assert.Equal(t, Kendall, m)
}

func TestStrongPairs(t *testing.T) {
	m := &CorrMatrix{
		Columns: []string{"A", "B", "C"},
		Values: [][]float64{
			{1, 0.8123, nan},
			{0.8123, 1, -0.9651},
			{nan, -0.9651, 1},
		},
	}
	got := StrongPairs(m, 0.5, 2)
	assert.Equal(t, []PairCorr{{A: "A", B: "B", R: 0.81}, {A: "B", B: "C", R: -0.97}}, got)
	assert.Equal(t, -0.9651, m.Values[2][1], "input matrix is not modified")
}

func TestStrongPairsNeverRepeats(t *testing.T) {
	m, err := Correlate(corrFixture(t), Pearson)
	require.NoError(t, err)
	seen := map[[2]string]bool{}
	for _, p := range StrongPairs(m, 0.1, 3) {
		assert.NotEqual(t, p.A, p.B)
		assert.False(t, seen[[2]string{p.A, p.B}], "%v repeated", p)
		assert.False(t, seen[[2]string{p.B, p.A}], "%v mirrored", p)
		seen[[2]string{p.A, p.B}] = true
	}
	assert.NotEmpty(t, seen)
}

func TestCorrelationCSVWriters(t *testing.T) {
	m := &CorrMatrix{Columns: []string{"A", "B"}, Values: [][]float64{{1, nan}, {nan, 1}}}
	var buf bytes.Buffer
	require.NoError(t, WriteMatrixCSV(&buf, m))
	assert.Equal(t, ",A,B\nA,1,\nB,,1\n", buf.String())

	buf.Reset()
	require.NoError(t, WritePairsCSV(&buf, []PairCorr{{A: "A", B: "B", R: -0.5}}))
	assert.Equal(t, "column_a,column_b,correlation\nA,B,-0.5\n", buf.String())
}

func TestSummarizeMarkdown(t *testing.T) {
	c := cleanOf(t,
		table.NewBoolColumn("CAS validity", []bool{true, false, true}),
		table.NewIntColumn("ref_count", []int64{3, 0, 12}, []bool{true, false, true}),
		table.NewCategoryColumn("ECHA: Signal Word", []string{"Danger", "Danger", "Warning"}, []bool{true, true, true}),
		table.NewTextColumn("CAS/CFSAN number", []string{"50-00-0", "", ""}, []bool{true, false, false}),
		floats("GHS-J: HH", nan, nan, nan),
	)
	rep, err := Summarize("FFCdb_clean.csv", c, DefaultOptions())
	require.NoError(t, err)
	md := rep.Markdown()

	assert.True(t, strings.HasPrefix(md, "[DATASET SUMMARY]\nFile: FFCdb_clean.csv\nRows: 3\nColumns: 5\n"))
	assert.Contains(t, md, "- CAS validity: bool (non-null 3, missing 0.0%): true 2 of 3\n")
	assert.Contains(t, md, "- ref_count: int (non-null 2, missing 33.3%): min 3, max 12, mean 7.5")
	assert.Contains(t, md, "top: Danger(2), Warning(1)")
	assert.Contains(t, md, "e.g., 50-00-0")
	assert.Contains(t, md, "[NOTES]\n- GHS-J: HH has no values\n")
}

func TestSummarizeFlagsOutliers(t *testing.T) {
	c := cleanOf(t, floats("v", 1, 1.1, 0.9, 1, 1.05, 0.95, 50))
	rep, err := Summarize("", c, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Cols[0].OutliersCount)
}
