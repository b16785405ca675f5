package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/KaramelBytes/bnbeda/internal/plots"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	InputPath        string  `mapstructure:"input_path" yaml:"input_path"`
	OutputDir        string  `mapstructure:"output_dir" yaml:"output_dir"`
	BenchmarkPrice   float64 `mapstructure:"benchmark_price" yaml:"benchmark_price"`
	OutlierSigma     float64 `mapstructure:"outlier_sigma" yaml:"outlier_sigma"`
	MaxMinimumNights int     `mapstructure:"max_minimum_nights" yaml:"max_minimum_nights"`
	XLSXSheet        string  `mapstructure:"xlsx_sheet" yaml:"xlsx_sheet"`

	// Plot export
	HistogramBins int     `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	PlotWidthIn   float64 `mapstructure:"plot_width_in" yaml:"plot_width_in"`
	PlotHeightIn  float64 `mapstructure:"plot_height_in" yaml:"plot_height_in"`
	PlotFormat    string  `mapstructure:"plot_format" yaml:"plot_format"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// EnvPrefix namespaces the environment overrides.
const EnvPrefix = "BNBEDA"

// LogLevels lists the accepted log_level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.bnbeda/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := defaultDir()
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

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Only the input path and the
// benchmark price can be set from the environment.
func Load(cfgFile string) (*Global, error) {
	return load(cfgFile, true)
}

// LoadFile loads the config file over the defaults, ignoring the
// environment. Use it before Save so env overrides are not persisted.
func LoadFile(cfgFile string) (*Global, error) {
	return load(cfgFile, false)
}

func load(cfgFile string, withEnv bool) (*Global, error) {
	v := viper.New()
	if withEnv {
		v.SetEnvPrefix(EnvPrefix)
		_ = v.BindEnv("input_path")
		_ = v.BindEnv("benchmark_price")
	}
	plotDefaults := plots.DefaultOptions()

	v.SetDefault("input_path", filepath.Join("data", "AB_NYC_2019.csv"))
	v.SetDefault("output_dir", "plots")
	v.SetDefault("benchmark_price", 150.0)
	v.SetDefault("outlier_sigma", 2.0)
	v.SetDefault("max_minimum_nights", 365)
	v.SetDefault("xlsx_sheet", "")
	v.SetDefault("histogram_bins", plotDefaults.Bins)
	v.SetDefault("plot_width_in", plotDefaults.WidthIn)
	v.SetDefault("plot_height_in", plotDefaults.HeightIn)
	v.SetDefault("plot_format", plotDefaults.Format)
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.PlotFormat = strings.ToLower(strings.TrimPrefix(c.PlotFormat, "."))
	c.LogLevel = strings.ToLower(c.LogLevel)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges.
func (c *Global) Validate() error {
	if strings.TrimSpace(c.InputPath) == "" {
		return fmt.Errorf("input_path must not be empty")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.BenchmarkPrice <= 0 {
		return fmt.Errorf("benchmark_price must be positive, got %g", c.BenchmarkPrice)
	}
	if c.OutlierSigma <= 0 {
		return fmt.Errorf("outlier_sigma must be positive, got %g", c.OutlierSigma)
	}
	if c.MaxMinimumNights <= 0 {
		return fmt.Errorf("max_minimum_nights must be positive, got %d", c.MaxMinimumNights)
	}
	if c.HistogramBins <= 0 {
		return fmt.Errorf("histogram_bins must be positive, got %d", c.HistogramBins)
	}
	if c.PlotWidthIn <= 0 || c.PlotHeightIn <= 0 {
		return fmt.Errorf("plot size must be positive, got %gx%g", c.PlotWidthIn, c.PlotHeightIn)
	}
	if !slices.Contains(plots.Formats, c.PlotFormat) {
		return fmt.Errorf("invalid plot_format: %s (use %s)", c.PlotFormat, strings.Join(plots.Formats, ", "))
	}
	if !slices.Contains(LogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level: %s (use %s)", c.LogLevel, strings.Join(LogLevels, ", "))
	}
	return nil
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".bnbeda"), nil
}
