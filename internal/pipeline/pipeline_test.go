package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KaramelBytes/ffcdb-cli/internal/extract"
	"github.com/KaramelBytes/ffcdb-cli/internal/table"
)

type fakeExtractor struct {
	name     string
	requires []string
	provides []string
	fn       func(raw *table.Raw, clean *table.Clean) ([]*table.Column, error)
}

func (f *fakeExtractor) Name() string       { return f.name }
func (f *fakeExtractor) Requires() []string { return f.requires }
func (f *fakeExtractor) Provides() []string { return f.provides }
func (f *fakeExtractor) Extract(raw *table.Raw, clean *table.Clean) ([]*table.Column, error) {
	return f.fn(raw, clean)
}

// constant provides field with every row set to v.
func constant(name, field string, v bool, requires ...string) *fakeExtractor {
	return &fakeExtractor{
		name:     name,
		requires: requires,
		provides: []string{field},
		fn: func(raw *table.Raw, _ *table.Clean) ([]*table.Column, error) {
			vals := make([]bool, raw.Len())
			for i := range vals {
				vals[i] = v
			}
			return []*table.Column{table.NewBoolColumn(field, vals)}, nil
		},
	}
}

func oneRowRaw(t *testing.T) *table.Raw {
	t.Helper()
	raw, err := table.NewRaw([]string{"x"}, [][]table.Cell{{table.NumberCell(1)}})
	require.NoError(t, err)
	return raw
}

func TestScheduleLevels(t *testing.T) {
	p, err := New(zap.NewNop(),
		constant("c", "C", true, "A", "B"),
		constant("a", "A", true),
		constant("b", "B", false, "A"),
		constant("d", "D", true),
	)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "d"}, {"b"}, {"c"}}, p.Levels())
}

func TestScheduleErrors(t *testing.T) {
	_, err := New(nil, constant("a", "A", true, "missing"))
	require.ErrorIs(t, err, ErrUnknownDependency)

	_, err = New(nil, constant("a", "A", true, "B"), constant("b", "B", true, "A"))
	require.ErrorIs(t, err, ErrDependencyCycle)

	_, err = New(nil, constant("a", "A", true, "A"))
	require.ErrorIs(t, err, ErrDependencyCycle)

	_, err = New(nil, constant("a", "A", true), constant("a2", "A", false))
	require.ErrorIs(t, err, ErrDuplicateProvider)
}

func TestRunRespectsDependencies(t *testing.T) {
	var sawA, sawPeer bool
	reader := &fakeExtractor{
		name:     "reader",
		requires: []string{"A"},
		provides: []string{"R"},
		fn: func(raw *table.Raw, clean *table.Clean) ([]*table.Column, error) {
			sawA = clean.Has("A")
			sawPeer = clean.Has("P")
			a, err := clean.Column("A")
			if err != nil {
				return nil, err
			}
			return []*table.Column{table.NewBoolColumn("R", []bool{!a.Bool(0)})}, nil
		},
	}
	p, err := New(zap.NewNop(), constant("a", "A", true), reader, constant("peer", "P", true, "A"))
	require.NoError(t, err)

	clean, err := p.Run(context.Background(), oneRowRaw(t))
	require.NoError(t, err)
	assert.True(t, sawA)
	assert.False(t, sawPeer, "extractors of one level must not see each other")
	assert.Equal(t, []string{"A", "R", "P"}, clean.Fields())
	assert.True(t, clean.Sealed())
}

func TestRunAbortsOnExtractorError(t *testing.T) {
	boom := errors.New("boom")
	failing := &fakeExtractor{
		name:     "failing",
		provides: []string{"F"},
		fn: func(*table.Raw, *table.Clean) ([]*table.Column, error) {
			return nil, boom
		},
	}
	p, err := New(zap.NewNop(), constant("a", "A", true), failing)
	require.NoError(t, err)

	clean, err := p.Run(context.Background(), oneRowRaw(t))
	require.ErrorIs(t, err, boom)
	assert.Nil(t, clean)
}

func TestRunRejectsIncompleteOutput(t *testing.T) {
	lazy := &fakeExtractor{
		name:     "lazy",
		provides: []string{"A", "B"},
		fn: func(raw *table.Raw, _ *table.Clean) ([]*table.Column, error) {
			return []*table.Column{table.NewBoolColumn("A", make([]bool, raw.Len()))}, nil
		},
	}
	p, err := New(nil, lazy)
	require.NoError(t, err)
	_, err = p.Run(context.Background(), oneRowRaw(t))
	require.ErrorIs(t, err, ErrIncompleteOutput)
}

func TestRunHonoursCancelledContext(t *testing.T) {
	p, err := New(nil, constant("a", "A", true))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Run(ctx, oneRowRaw(t))
	require.ErrorIs(t, err, context.Canceled)
}

// ffcdbRaw builds a raw table carrying every column the default extractors
// read, filled from overrides and blank otherwise.
func ffcdbRaw(t *testing.T, rows int, overrides map[string][]table.Cell) *table.Raw {
	t.Helper()
	header := []string{
		extract.ColCASValidity, extract.ColCASNumber, extract.ColHazardAuth, extract.ColConcernNon,
		extract.ColRefCount, extract.ColUsageCount, extract.ColECHAHH, extract.ColECHAENVH,
		extract.ColECHASignal, extract.ColECHAClass, extract.ColGHSJHH, extract.ColGHSJENVH,
		extract.ColGHSJSignal, extract.ColGHSJClass, extract.ColDanishClass, extract.ColDanishHH,
		extract.ColDanishENVH, extract.ColCPPdb, extract.ColTonnage, extract.ColFoodLists,
		"Global \nInventory: Plastics", "Global \nInventory: Coatings", "S1", "S2",
	}
	recs := make([][]table.Cell, rows)
	for i := range recs {
		recs[i] = make([]table.Cell, len(header))
		for j, h := range header {
			if cells, ok := overrides[h]; ok {
				recs[i][j] = cells[i]
			}
		}
	}
	raw, err := table.NewRaw(header, recs)
	require.NoError(t, err)
	return raw
}

func TestDefaultPipelineEndToEnd(t *testing.T) {
	raw := ffcdbRaw(t, 1, map[string][]table.Cell{
		extract.ColCASValidity:         {table.StringCell("valid - EC number")},
		extract.ColRefCount:            {table.StringCell("3")},
		extract.ColHazardAuth:          {table.StringCell("yes; IARC")},
		extract.ColECHASignal:          {table.StringCell("not listed")},
		extract.ColTonnage:             {table.StringCell("10 - 100; 500+")},
		extract.ColCPPdb:               {table.StringCell("yes; List A; fc")},
		"Global \nInventory: Plastics": {table.NumberCell(3)},
		"Global \nInventory: Coatings": {table.NumberCell(0)},
		"S2":                           {table.NumberCell(1)},
	})
	p, err := New(zap.NewNop(), extract.Default(extract.DefaultOptions())...)
	require.NoError(t, err)

	clean, err := p.Run(context.Background(), raw)
	require.NoError(t, err)

	col := func(name string) *table.Column {
		c, err := clean.Column(name)
		require.NoError(t, err, name)
		return c
	}
	assert.True(t, col("CAS validity").Bool(0))
	n, ok := col("ref_count").Int(0)
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)
	assert.True(t, col("Hazardous auth").Bool(0))
	assert.True(t, col("ECHA: Signal Word").IsNull(0))
	assert.True(t, col("Plastics").Bool(0))
	assert.False(t, col("Coatings").Bool(0))
	assert.False(t, col("S1").Bool(0))
	sc, _ := col("Source count").Int(0)
	assert.Equal(t, int64(1), sc)
	hi, _ := col("Tonnage max").Float(0)
	assert.Equal(t, 500.0, hi)
	assert.True(t, col("food_contact").Bool(0))
	assert.Equal(t, "food_contact", clean.Fields()[len(clean.Fields())-1])
}

func TestDefaultPipelineIsDeterministic(t *testing.T) {
	raw := ffcdbRaw(t, 2, map[string][]table.Cell{
		extract.ColCASValidity: {table.StringCell("valid"), table.StringCell("invalid")},
		extract.ColECHAHH:      {table.NumberCell(2.5), table.StringCell("not listed")},
		"S1":                   {table.NumberCell(1), table.NumberCell(0)},
	})
	p, err := New(zap.NewNop(), extract.Default(extract.DefaultOptions())...)
	require.NoError(t, err)

	var outs [2]bytes.Buffer
	for i := range outs {
		clean, err := p.Run(context.Background(), raw)
		require.NoError(t, err)
		require.NoError(t, table.WriteCSV(&outs[i], clean))
	}
	assert.Equal(t, outs[0].String(), outs[1].String())
}

type stubSource struct {
	raw *table.Raw
	ok  bool
	err error
}

func (s stubSource) LoadRaw() (*table.Raw, bool, error) { return s.raw, s.ok, s.err }

func TestCleanToWritesArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "FFCdb_clean.csv")
	p, err := New(zap.NewNop(), extract.Default(extract.DefaultOptions())...)
	require.NoError(t, err)

	res, err := p.CleanTo(context.Background(), stubSource{raw: ffcdbRaw(t, 2, nil), ok: true}, path)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 2, res.Rows)
	assert.NotEmpty(t, res.RunID)

	loaded, err := table.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.Fields, loaded.Fields())
}

func TestCleanToSkipsUnavailableSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.csv")
	p, err := New(nil, constant("a", "A", true))
	require.NoError(t, err)

	res, err := p.CleanTo(context.Background(), stubSource{}, path)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestCleanToMissingColumnWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clean.csv")
	p, err := New(nil, extract.Default(extract.DefaultOptions())...)
	require.NoError(t, err)

	_, err = p.CleanTo(context.Background(), stubSource{raw: oneRowRaw(t), ok: true}, path)
	require.ErrorIs(t, err, table.ErrMissingColumn)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
