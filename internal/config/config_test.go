package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at empty temp dirs so no
// developer config or .env leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data", c.DataFolder)
	assert.Equal(t, filepath.Join("data", "FFCdb.xlsx"), c.RawPath())
	assert.Equal(t, filepath.Join("data", "FFCdb_clean.csv"), c.CleanedPath())
	assert.Equal(t, DefaultSheetName, c.DataSheetName)
	assert.Equal(t, DefaultAPIXLURL, c.APIXLURL)
	assert.Equal(t, 0.5, c.CorrThreshold)
	assert.Equal(t, 2, c.CorrDecimals)
	assert.Equal(t, "ECHA \nregistered tonnage band", c.TonnageColumn)
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "constants.toml")
	body := "data_folder = \"cache\"\ndata_sheet_name = \"Sheet2\"\ncorr_threshold = 0.8\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FFCDB_LOG_LEVEL=debug\n"), 0o644))
	t.Setenv("FFCDB_DATA_SHEET_NAME", "FromEnv")
	t.Cleanup(func() { os.Unsetenv("FFCDB_LOG_LEVEL") })

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cache", c.DataFolder)
	assert.Equal(t, "FromEnv", c.DataSheetName)
	assert.Equal(t, 0.8, c.CorrThreshold)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
}

func TestSaveAndReload(t *testing.T) {
	dir := isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Set("cleaned_file", "/abs/clean.csv"))
	require.NoError(t, c.Set("corr_decimals", "3"))

	path := filepath.Join(dir, "ffcdb.yaml")
	require.NoError(t, Save(c, path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/abs/clean.csv", got.CleanedPath())
	assert.Equal(t, 3, got.CorrDecimals)
	assert.Equal(t, c.TonnageColumn, got.TonnageColumn)
}

func TestSetValidates(t *testing.T) {
	c := &Global{}
	assert.Error(t, c.Set("corr_threshold", "2"))
	assert.Error(t, c.Set("corr_decimals", "x"))
	assert.Error(t, c.Set("http_timeout_sec", "0"))
	assert.Error(t, c.Set("log_format", "xml"))
	assert.Error(t, c.Set("api_key", "secret"))
	require.NoError(t, c.Set("log_level", "warn"))
	assert.Equal(t, "warn", c.LogLevel)
}
