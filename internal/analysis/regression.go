package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/KaramelBytes/ffcdb-cli/internal/table"
)

// ErrNoFeatures is returned when a regression has no explanatory fields.
var ErrNoFeatures = errors.New("regression needs at least one feature and two rows")

// Regression is an ordinary least squares fit of one field on the others.
type Regression struct {
	Target       string
	Features     []string
	Coefficients []float64
	Intercept    float64
	R2           float64
	Observed     []float64
	Predicted    []float64
}

// LinearRegression regresses target on every other numeric field of c.
// Nulls count as 0. Rank-deficient designs get the minimum-norm solution.
func LinearRegression(c *table.Clean, target string) (*Regression, error) {
	tcol, err := c.Column(target)
	if err != nil {
		return nil, err
	}
	if !tcol.Kind().Numeric() {
		return nil, fmt.Errorf("regression target %q is %s", target, tcol.Kind())
	}
	var features []string
	for _, f := range c.NumericFields() {
		if f != target {
			features = append(features, f)
		}
	}
	n, p := c.Len(), len(features)
	if p == 0 || n < 2 {
		return nil, ErrNoFeatures
	}

	x := mat.NewDense(n, p, nil)
	for j, f := range features {
		col, err := c.Column(f)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			v, _ := col.Float(i)
			x.Set(i, j, v)
		}
	}
	y := make([]float64, n)
	for i := range y {
		y[i], _ = tcol.Float(i)
	}

	// Center so the intercept drops out of the solve.
	means := make([]float64, p)
	for j := range means {
		means[j] = mat.Sum(x.ColView(j)) / float64(n)
	}
	yMean := 0.0
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)
	xc := mat.NewDense(n, p, nil)
	xc.Apply(func(_, j int, v float64) float64 { return v - means[j] }, x)
	yc := mat.NewVecDense(n, nil)
	for i, v := range y {
		yc.SetVec(i, v-yMean)
	}

	var svd mat.SVD
	if ok := svd.Factorize(xc, mat.SVDThin); !ok {
		return nil, errors.New("regression: SVD factorization failed")
	}
	rank := svd.Rank(1e-10)
	if rank == 0 {
		return nil, fmt.Errorf("regression: features of %q are constant", target)
	}
	var beta mat.VecDense
	svd.SolveVecTo(&beta, yc, rank)

	reg := &Regression{
		Target:       target,
		Features:     features,
		Coefficients: make([]float64, p),
		Observed:     y,
		Predicted:    make([]float64, n),
	}
	reg.Intercept = yMean
	for j := 0; j < p; j++ {
		reg.Coefficients[j] = beta.AtVec(j)
		reg.Intercept -= reg.Coefficients[j] * means[j]
	}
	var ssRes, ssTot float64
	for i := 0; i < n; i++ {
		pred := reg.Intercept
		for j := 0; j < p; j++ {
			pred += reg.Coefficients[j] * x.At(i, j)
		}
		reg.Predicted[i] = pred
		ssRes += (y[i] - pred) * (y[i] - pred)
		ssTot += (y[i] - yMean) * (y[i] - yMean)
	}
	reg.R2 = math.NaN()
	if ssTot > 0 {
		reg.R2 = 1 - ssRes/ssTot
	}
	return reg, nil
}

// Text renders coefficients, intercept and R².
func (r *Regression) Text() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[LINEAR REGRESSION: %s]\n", safeName(r.Target)))
	for i, f := range r.Features {
		b.WriteString(fmt.Sprintf("- %s: %.6g\n", safeName(f), r.Coefficients[i]))
	}
	b.WriteString(fmt.Sprintf("Intercept: %.6g\n", r.Intercept))
	b.WriteString(fmt.Sprintf("R²: %.4f\n", r.R2))
	return b.String()
}

// WriteCoefficientsCSV writes feature,coefficient rows, intercept last.
func (r *Regression) WriteCoefficientsCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"feature", "coefficient"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, f := range r.Features {
		if err := cw.Write([]string{f, formatFloat(r.Coefficients[i])}); err != nil {
			return fmt.Errorf("write coefficient: %w", err)
		}
	}
	if err := cw.Write([]string{"(intercept)", formatFloat(r.Intercept)}); err != nil {
		return fmt.Errorf("write intercept: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// WritePredictionsCSV writes observed,predicted rows.
func (r *Regression) WritePredictionsCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"observed", "predicted"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range r.Observed {
		rec := []string{
			strconv.FormatFloat(r.Observed[i], 'g', -1, 64),
			strconv.FormatFloat(r.Predicted[i], 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
