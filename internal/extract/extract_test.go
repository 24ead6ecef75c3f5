package extract

import (
	"testing"

	"github.com/KaramelBytes/ffcdb-cli/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawOf builds a raw table from column -> cells, in the given header order.
func rawOf(t *testing.T, header []string, cols map[string][]table.Cell) *table.Raw {
	t.Helper()
	n := 0
	for _, c := range cols {
		n = len(c)
		break
	}
	rows := make([][]table.Cell, n)
	for i := range rows {
		rows[i] = make([]table.Cell, len(header))
		for j, h := range header {
			rows[i][j] = cols[h][i]
		}
	}
	raw, err := table.NewRaw(header, rows)
	require.NoError(t, err)
	return raw
}

func run(t *testing.T, e Extractor, raw *table.Raw, clean *table.Clean) map[string]*table.Column {
	t.Helper()
	if clean == nil {
		clean = table.NewClean(raw.Len())
	}
	cols, err := e.Extract(raw, clean)
	require.NoError(t, err)
	out := map[string]*table.Column{}
	for _, c := range cols {
		out[c.Name()] = c
	}
	for _, want := range e.Provides() {
		require.Contains(t, out, want, "%s must write %s", e.Name(), want)
	}
	return out
}

func str(ss ...string) []table.Cell {
	out := make([]table.Cell, len(ss))
	for i, s := range ss {
		out[i] = table.InferCell(s)
	}
	return out
}

func TestIdentityAndReferences(t *testing.T) {
	raw := rawOf(t, []string{ColCASValidity, ColCASNumber, ColRefCount}, map[string][]table.Cell{
		ColCASValidity: str("valid - EC number", "invalid"),
		ColCASNumber:   str("50-00-0", ""),
		ColRefCount:    str("3", "not listed"),
	})
	p := DefaultPolicy()

	id := run(t, Identity(p), raw, nil)
	assert.True(t, id[FieldCASValidity].Bool(0))
	assert.False(t, id[FieldCASValidity].Bool(1))
	s, ok := id[FieldCASNumber].Str(0)
	assert.True(t, ok)
	assert.Equal(t, "50-00-0", s)
	assert.True(t, id[FieldCASNumber].IsNull(1))

	refs := run(t, References(p), raw, nil)
	assert.Equal(t, table.KindInt, refs[FieldRefCount].Kind())
	n, ok := refs[FieldRefCount].Int(0)
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)
	assert.True(t, refs[FieldRefCount].IsNull(1))
}

func TestHazardScoresAndLabelsMapSentinelToNull(t *testing.T) {
	scoreCols := []string{ColECHAHH, ColECHAENVH, ColGHSJHH, ColGHSJENVH}
	labelCols := []string{ColECHASignal, ColECHAClass, ColGHSJSignal, ColGHSJClass, ColDanishClass, ColDanishHH, ColDanishENVH}
	cols := map[string][]table.Cell{}
	for _, c := range scoreCols {
		cols[c] = str("12", "not listed")
	}
	for _, c := range labelCols {
		cols[c] = str("Danger", "not listed")
	}
	raw := rawOf(t, append(scoreCols, labelCols...), cols)
	p := DefaultPolicy()

	scores := run(t, HazardScores(p), raw, nil)
	for _, f := range []string{FieldECHAHH, FieldECHAENVH, FieldGHSJHH, FieldGHSJENVH} {
		v, ok := scores[f].Float(0)
		assert.True(t, ok, f)
		assert.Equal(t, 12.0, v, f)
		assert.True(t, scores[f].IsNull(1), f)
	}

	labels := run(t, HazardLabels(p), raw, nil)
	for _, f := range []string{FieldECHASignal, FieldGHSAlignedHH, FieldGHSAlignedENVH} {
		assert.Equal(t, table.KindCategory, labels[f].Kind())
		assert.True(t, labels[f].IsNull(1), f)
	}
}

func TestMaterialsDiscoveredFromHeader(t *testing.T) {
	header := []string{"Global \nInventory: Plastics", "Global \nInventory: Coatings", "Inventory: Glass", ColUsageCount}
	raw := rawOf(t, header, map[string][]table.Cell{
		"Global \nInventory: Plastics": {table.NumberCell(3), table.NumberCell(0)},
		"Global \nInventory: Coatings": {table.EmptyCell(), table.NumberCell(1)},
		"Inventory: Glass":             str("1", "1"),
		ColUsageCount:                  {table.NumberCell(2), table.NumberCell(1)},
	})

	cols, err := Materials(DefaultPolicy()).Extract(raw, table.NewClean(2))
	require.NoError(t, err)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name()
	}
	assert.Equal(t, []string{"Plastics", "Coatings", FieldUsageCount}, names)
	assert.True(t, cols[0].Bool(0))
	assert.False(t, cols[0].Bool(1))
	assert.False(t, cols[1].Bool(0))
	assert.True(t, cols[1].Bool(1))
	assert.Equal(t, GroupMaterial, cols[0].Group())
	assert.Equal(t, GroupMaterial, cols[1].Group())
	assert.Equal(t, "", cols[2].Group())
}

func TestMaterialFieldsKeepsDiscoveredNames(t *testing.T) {
	header := []string{"Global \nInventory: Bamboo", "Global \nInventory: Glass", "Global \nInventory: Plastics", ColUsageCount}
	raw := rawOf(t, header, map[string][]table.Cell{
		"Global \nInventory: Bamboo":   str("1"),
		"Global \nInventory: Glass":    str("0"),
		"Global \nInventory: Plastics": str("1"),
		ColUsageCount:                  str("2"),
	})
	cols, err := Materials(DefaultPolicy()).Extract(raw, table.NewClean(1))
	require.NoError(t, err)
	clean := table.NewClean(1)
	require.NoError(t, clean.Add(cols...))

	assert.Equal(t, []string{"Plastics", "Glass", "Bamboo"}, MaterialFields(clean))
}

func TestSourcesCountFlags(t *testing.T) {
	header := []string{"S1", "S2", "S10", "Sx", "SS1"}
	raw := rawOf(t, header, map[string][]table.Cell{
		"S1":  str("1", "0"),
		"S2":  str("1", ""),
		"S10": str("0", "4"),
		"Sx":  str("1", "1"),
		"SS1": str("1", "1"),
	})

	got := run(t, Sources(), raw, nil)
	assert.Len(t, got, 4)
	assert.Equal(t, GroupSource, got["S1"].Group())
	assert.True(t, got["S1"].Bool(0))
	assert.True(t, got["S10"].Bool(1))
	n, _ := got[FieldSourceCount].Int(0)
	assert.Equal(t, int64(2), n)
	n, _ = got[FieldSourceCount].Int(1)
	assert.Equal(t, int64(1), n)
}

func TestFoodContactCombinesListAndCPPdb(t *testing.T) {
	raw := rawOf(t, []string{ColCPPdb, ColFoodLists}, map[string][]table.Cell{
		ColCPPdb:     str("yes; List A; fc", "yes; no", "no", "no"),
		ColFoodLists: str("", "EU Food Contact list", "toys", ""),
	})
	p := DefaultPolicy()

	clean := table.NewClean(raw.Len())
	fc := run(t, CPPdb(p), raw, nil)
	require.NoError(t, clean.Add(fc[FieldCPPdbFC]))

	food := run(t, FoodContact(ColFoodLists), raw, clean)[FieldFoodContact]
	assert.Equal(t, []bool{true, true, false, false}, bools(food))

	cppOnly := run(t, FoodContact(""), raw, clean)[FieldFoodContact]
	assert.Equal(t, []bool{true, false, false, false}, bools(cppOnly))
}

func TestFoodContactNeedsCPPdbField(t *testing.T) {
	raw := rawOf(t, []string{ColFoodLists}, map[string][]table.Cell{ColFoodLists: str("food")})
	_, err := FoodContact(ColFoodLists).Extract(raw, table.NewClean(1))
	require.ErrorIs(t, err, table.ErrUnknownField)
	assert.Equal(t, []string{FieldCPPdbFC}, FoodContact("").Requires())
}

func TestTonnageDefaultsToZero(t *testing.T) {
	raw := rawOf(t, []string{ColTonnage}, map[string][]table.Cell{
		ColTonnage: str("10 - 100; 500+", "not listed"),
	})
	got := run(t, Tonnage(ColTonnage), raw, nil)
	lo, _ := got[FieldTonnageMin].Float(0)
	hi, _ := got[FieldTonnageMax].Float(0)
	assert.Equal(t, 500.0, lo)
	assert.Equal(t, 500.0, hi)
	zero, ok := got[FieldTonnageMax].Float(1)
	assert.True(t, ok)
	assert.Equal(t, 0.0, zero)
}

func TestMissingRawColumnIsReported(t *testing.T) {
	raw := rawOf(t, []string{"unrelated"}, map[string][]table.Cell{"unrelated": str("x")})
	for _, e := range Default(DefaultOptions()) {
		if e.Name() == "sources" {
			continue
		}
		_, err := e.Extract(raw, table.NewClean(1))
		var mce *table.MissingColumnError
		if e.Name() == "food-contact" {
			require.ErrorIs(t, err, table.ErrUnknownField)
			continue
		}
		require.ErrorAs(t, err, &mce, e.Name())
		assert.NotEmpty(t, mce.Column)
	}
}

func TestDefaultOptionalExtractors(t *testing.T) {
	names := func(es []Extractor) []string {
		out := make([]string, len(es))
		for i, e := range es {
			out[i] = e.Name()
		}
		return out
	}
	full := names(Default(DefaultOptions()))
	assert.Contains(t, full, "tonnage")
	assert.Equal(t, "food-contact", full[len(full)-1])

	opt := DefaultOptions()
	opt.TonnageColumn = ""
	assert.NotContains(t, names(Default(opt)), "tonnage")
}

func bools(c *table.Column) []bool {
	out := make([]bool, c.Len())
	for i := range out {
		out[i] = c.Bool(i)
	}
	return out
}
