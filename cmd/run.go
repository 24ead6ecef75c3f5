package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/ffcdb-cli/internal/analysis"
	"github.com/KaramelBytes/ffcdb-cli/internal/dataset"
	"github.com/KaramelBytes/ffcdb-cli/internal/extract"
	"github.com/KaramelBytes/ffcdb-cli/internal/pipeline"
	"github.com/KaramelBytes/ffcdb-cli/internal/source"
	"github.com/KaramelBytes/ffcdb-cli/internal/table"
	"github.com/KaramelBytes/ffcdb-cli/internal/utils"
)

// Output file names inside the data folder.
const (
	materialsFile              = "materials.csv"
	regressionCoefficientsFile = "regression_coefficients.csv"
	regressionPredictionsFile  = "regression_predictions.csv"
)

func runAll(cmd *cobra.Command, args []string) error {
	method, err := analysis.ParseMethod(flagCorrMethod)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	src := newSource()

	if flagForceDownload || !src.IsDownloaded() {
		if _, err := downloadRaw(ctx, out, src); err != nil {
			// A failed fetch falls back to whatever is cached.
			logger.Warn("download failed", zap.Error(err))
			fmt.Fprintf(out, "⚠ Warning: download failed: %v\n", err)
		}
	}
	if flagForceCleanup || !src.IsCleaned() {
		if _, err := cleanRaw(ctx, out, src); err != nil {
			return err
		}
	}
	if !src.IsCleaned() {
		fmt.Fprintln(out, "⚠ No cleaned dataset available; nothing to report")
		return nil
	}
	if !flagCorrelation && !flagVisualisation && !flagSaveVisualisation && !flagRegression && !flagSaveRegression {
		return nil
	}

	clean, err := table.LoadFile(src.CleanedPath)
	if err != nil {
		return fmt.Errorf("load cleaned dataset: %w", err)
	}
	m, err := openManifest()
	if err != nil {
		return err
	}
	if flagCorrelation {
		if err := correlationReport(out, clean, method, m); err != nil {
			return err
		}
	}
	if flagVisualisation || flagSaveVisualisation {
		if err := materialReport(out, clean, flagVisualisation, flagSaveVisualisation, m); err != nil {
			return err
		}
	}
	if flagRegression || flagSaveRegression {
		if err := regressionReport(out, clean, flagRegression, flagSaveRegression, m); err != nil {
			return err
		}
	}
	return m.Save()
}

func newSource() *source.FFCdb {
	return source.New(cfg, nil, logger)
}

func newPipeline() (*pipeline.Pipeline, error) {
	opt := extract.DefaultOptions()
	opt.TonnageColumn = cfg.TonnageColumn
	opt.FoodListColumn = cfg.FoodListColumn
	return pipeline.New(logger.Named("pipeline"), extract.Default(opt)...)
}

func openManifest() (*dataset.Manifest, error) {
	return dataset.OpenManifest(cfg.DataFolder, dataset.Source{
		URL:     cfg.APIXLURL,
		RawFile: cfg.RawPath(),
		Sheet:   cfg.DataSheetName,
	})
}

// downloadRaw fetches the workbook. A rejected request is reported and
// returns false with no error.
func downloadRaw(ctx context.Context, out io.Writer, src *source.FFCdb) (bool, error) {
	ok, err := src.Download(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		fmt.Fprintf(out, "⚠ Download of %s was rejected; cached copy left untouched\n", src.URL)
		return false, nil
	}
	fmt.Fprintf(out, "✓ Downloaded raw dataset to %s\n", src.RawPath)
	return true, nil
}

// cleanRaw runs the pipeline over the cached workbook and starts a new run
// in the manifest.
func cleanRaw(ctx context.Context, out io.Writer, src pipeline.RawSource) (*pipeline.Result, error) {
	p, err := newPipeline()
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	res, err := p.CleanTo(ctx, src, cfg.CleanedPath())
	if err != nil {
		return nil, err
	}
	if res.Skipped {
		fmt.Fprintln(out, "⚠ Raw dataset not available; cleaning skipped")
		return res, nil
	}
	m, err := openManifest()
	if err != nil {
		return nil, err
	}
	m.RecordRun(res.RunID, res.Rows, res.Fields)
	if _, err := m.AddArtifact(dataset.KindCleaned, res.Path); err != nil {
		return nil, err
	}
	if _, err := m.AddArtifact(dataset.KindSchema, res.Path+table.SchemaSuffix); err != nil {
		return nil, err
	}
	if err := m.Save(); err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "✓ Cleaned %d rows into %d fields: %s\n", res.Rows, len(res.Fields), res.Path)
	return res, nil
}

func correlationReport(out io.Writer, clean *table.Clean, method analysis.Method, m *dataset.Manifest) error {
	mtx, err := analysis.Correlate(clean, method)
	if err != nil {
		return err
	}
	strong := analysis.StrongPairs(mtx, cfg.CorrThreshold, cfg.CorrDecimals)
	matrixPath := cfg.DataPath(fmt.Sprintf("correlations_%s.csv", method))
	strongPath := cfg.DataPath(fmt.Sprintf("strong_correlations_%s.csv", method))
	if err := writeArtifact(m, dataset.KindCorrelations, matrixPath, func(w io.Writer) error {
		return analysis.WriteMatrixCSV(w, mtx)
	}); err != nil {
		return err
	}
	if err := writeArtifact(m, dataset.KindStrongPairs, strongPath, func(w io.Writer) error {
		return analysis.WritePairsCSV(w, strong)
	}); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Wrote %s correlation matrix to %s\n", method, matrixPath)
	fmt.Fprintf(out, "✓ Wrote %d strong correlations (|r| > %g) to %s\n", len(strong), cfg.CorrThreshold, strongPath)
	return nil
}

func materialReport(out io.Writer, clean *table.Clean, show, save bool, m *dataset.Manifest) error {
	materials := extract.MaterialFields(clean)
	if len(materials) == 0 {
		// Tables loaded without a schema carry no groups.
		materials = extract.CanonicalMaterials
	}
	rep, err := analysis.Materials(clean, materials)
	if err != nil {
		return err
	}
	if show {
		fmt.Fprint(out, rep.Text())
	}
	if save {
		path := cfg.DataPath(materialsFile)
		if err := writeArtifact(m, dataset.KindMaterials, path, rep.WriteCSV); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Wrote material report to %s\n", path)
	}
	return nil
}

func regressionReport(out io.Writer, clean *table.Clean, show, save bool, m *dataset.Manifest) error {
	reg, err := analysis.LinearRegression(clean, extract.FieldHazardAuth)
	if err != nil {
		return err
	}
	if show {
		fmt.Fprint(out, reg.Text())
	}
	if save {
		coefPath := cfg.DataPath(regressionCoefficientsFile)
		predPath := cfg.DataPath(regressionPredictionsFile)
		if err := writeArtifact(m, dataset.KindRegression, coefPath, reg.WriteCoefficientsCSV); err != nil {
			return err
		}
		if err := writeArtifact(m, dataset.KindRegression, predPath, reg.WritePredictionsCSV); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Wrote regression coefficients to %s\n", coefPath)
	}
	return nil
}

// writeArtifact renders a report in memory, writes it atomically and
// registers it in m when m is not nil.
func writeArtifact(m *dataset.Manifest, kind, path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return fmt.Errorf("render %s: %w", kind, err)
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return err
	}
	if m == nil {
		return nil
	}
	_, err := m.AddArtifact(kind, path)
	return err
}
