package analysis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/ffcdb-cli/internal/table"
)

func TestLinearRegressionRecoversPlane(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6}
	b := []float64{2, 1, 4, 3, 6, 5}
	y := make([]float64, len(a))
	for i := range y {
		y[i] = 2*a[i] + 3*b[i] + 1
	}
	c := cleanOf(t,
		floats("y", y...),
		floats("a", a...),
		floats("b", b...),
		table.NewBoolColumn("k", make([]bool, len(a))),
		table.NewTextColumn("note", make([]string, len(a)), make([]bool, len(a))),
	)

	reg, err := LinearRegression(c, "y")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "k"}, reg.Features)
	assert.InDelta(t, 2, reg.Coefficients[0], 1e-9)
	assert.InDelta(t, 3, reg.Coefficients[1], 1e-9)
	assert.InDelta(t, 0, reg.Coefficients[2], 1e-9)
	assert.InDelta(t, 1, reg.Intercept, 1e-9)
	assert.InDelta(t, 1, reg.R2, 1e-9)
	assert.InDelta(t, y[3], reg.Predicted[3], 1e-9)

	assert.Contains(t, reg.Text(), "[LINEAR REGRESSION: y]")

	var buf bytes.Buffer
	require.NoError(t, reg.WriteCoefficientsCSV(&buf))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "feature,coefficient", lines[0])
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "(intercept),"))

	buf.Reset()
	require.NoError(t, reg.WritePredictionsCSV(&buf))
	assert.Equal(t, 7, strings.Count(buf.String(), "\n"))
}

func TestLinearRegressionNullsAsZero(t *testing.T) {
	c := cleanOf(t, floats("y", 1, 2, 3), floats("x", 1, nan, 3))
	reg, err := LinearRegression(c, "y")
	require.NoError(t, err)
	assert.Len(t, reg.Coefficients, 1)
}

func TestLinearRegressionErrors(t *testing.T) {
	c := cleanOf(t, floats("y", 1, 2, 3))
	_, err := LinearRegression(c, "y")
	require.ErrorIs(t, err, ErrNoFeatures)

	_, err = LinearRegression(c, "missing")
	require.ErrorIs(t, err, table.ErrUnknownField)

	flat := cleanOf(t, floats("y", 1, 2, 3), floats("x", 4, 4, 4))
	_, err = LinearRegression(flat, "y")
	require.Error(t, err)
}
