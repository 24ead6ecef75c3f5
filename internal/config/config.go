package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Defaults for the published FCCdb release.
const (
	DefaultAPIXLURL  = "https://zenodo.org/api/files/9b157c7a-93cc-4812-aeff-3c1fe71dbafd/FCCdb_201130_v5_Zenodo.xlsx"
	DefaultSheetName = "FCCdb_FINAL_LIST"
)

// Global configuration structure.
type Global struct {
	DataFolder    string `mapstructure:"data_folder" yaml:"data_folder"`
	FFCdbFile     string `mapstructure:"ffc_db_file" yaml:"ffc_db_file"`
	CleanedFile   string `mapstructure:"cleaned_file" yaml:"cleaned_file"`
	APIXLURL      string `mapstructure:"api_xl_url" yaml:"api_xl_url"`
	DataSheetName string `mapstructure:"data_sheet_name" yaml:"data_sheet_name"`

	// Correlation report
	CorrThreshold float64 `mapstructure:"corr_threshold" yaml:"corr_threshold"`
	CorrDecimals  int     `mapstructure:"corr_decimals" yaml:"corr_decimals"`

	// Raw columns whose headers differ between FCCdb releases
	TonnageColumn  string `mapstructure:"tonnage_column" yaml:"tonnage_column"`
	FoodListColumn string `mapstructure:"food_list_column" yaml:"food_list_column"`

	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat      string `mapstructure:"log_format" yaml:"log_format"`
}

// RawPath is the cached raw spreadsheet path. Relative file names live in
// the data folder.
func (c *Global) RawPath() string { return c.inDataFolder(c.FFCdbFile) }

// CleanedPath is the cleaned table path.
func (c *Global) CleanedPath() string { return c.inDataFolder(c.CleanedFile) }

// DataPath places name in the data folder.
func (c *Global) DataPath(name string) string { return c.inDataFolder(name) }

func (c *Global) inDataFolder(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataFolder, p)
}

// Set updates key from its string form.
func (c *Global) Set(key, val string) error {
	switch key {
	case "data_folder":
		c.DataFolder = val
	case "ffc_db_file":
		c.FFCdbFile = val
	case "cleaned_file":
		c.CleanedFile = val
	case "api_xl_url":
		c.APIXLURL = val
	case "data_sheet_name":
		c.DataSheetName = val
	case "corr_threshold":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("invalid float for corr_threshold: %v (use 0..1)", val)
		}
		c.CorrThreshold = f
	case "corr_decimals":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for corr_decimals: %v", val)
		}
		c.CorrDecimals = i
	case "tonnage_column":
		c.TonnageColumn = val
	case "food_list_column":
		c.FoodListColumn = val
	case "http_timeout_sec":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
		}
		c.HTTPTimeoutSec = i
	case "log_level":
		switch val {
		case "debug", "info", "warn", "error":
			c.LogLevel = val
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch val {
		case "console", "json":
			c.LogFormat = val
		default:
			return fmt.Errorf("invalid log_format: %s (use console or json)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.ffcdb/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := homeDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, .env and defaults.
// Precedence: env (FFCDB_*) > config file > defaults. A .env file in the
// working directory seeds the environment without overriding it.
// The config file is cfgFile when set, otherwise config.{yaml,toml,json}
// from the working directory or ~/.ffcdb.
func Load(cfgFile string) (*Global, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("FFCDB")
	v.AutomaticEnv()

	v.SetDefault("data_folder", "data")
	v.SetDefault("ffc_db_file", "FFCdb.xlsx")
	v.SetDefault("cleaned_file", "FFCdb_clean.csv")
	v.SetDefault("api_xl_url", DefaultAPIXLURL)
	v.SetDefault("data_sheet_name", DefaultSheetName)
	v.SetDefault("corr_threshold", 0.5)
	v.SetDefault("corr_decimals", 2)
	v.SetDefault("tonnage_column", "ECHA \nregistered tonnage band")
	v.SetDefault("food_list_column", "Specific \nFCM lists where included")
	v.SetDefault("http_timeout_sec", 120)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if dir, err := homeDir(); err == nil {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".ffcdb"), nil
}
