package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Regions lists the metropolitan areas that ship trips, stations and weather files.
var Regions = []string{"Montreal", "Toronto", "Washington"}

var (
	ErrUnknownRegion   = errors.New("unknown region")
	ErrMonthNotAllowed = errors.New("month not available")
)

// Global configuration structure.
type Global struct {
	DataDir         string   `mapstructure:"data_dir" yaml:"data_dir"`
	Region          string   `mapstructure:"region" yaml:"region"`
	Year            int      `mapstructure:"year" yaml:"year"`
	Month           int      `mapstructure:"month" yaml:"month"`
	RegionalMonths  []int    `mapstructure:"regional_months" yaml:"regional_months"`
	RegionalPattern string   `mapstructure:"regional_pattern" yaml:"regional_pattern"`
	CasesFile       string   `mapstructure:"cases_file" yaml:"cases_file"`
	CaseState       string   `mapstructure:"case_state" yaml:"case_state"`
	ExcludeColumns  []string `mapstructure:"exclude_columns" yaml:"exclude_columns"`

	// Row caps keep memory bounded; rows past the cap are ignored.
	TripsMaxRows    int `mapstructure:"trips_max_rows" yaml:"trips_max_rows"`
	RegionalMaxRows int `mapstructure:"regional_max_rows" yaml:"regional_max_rows"`

	// Output
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	ChartFormat string `mapstructure:"chart_format" yaml:"chart_format"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.ridestats/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".ridestats")
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
// Precedence: env (including an optional .env file) > config file > defaults.
// CLI flags are applied on top by the caller.
func Load(cfgFile string) (*Global, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("RIDESTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", "data")
	v.SetDefault("region", "Washington")
	v.SetDefault("year", 2020)
	v.SetDefault("month", 4)
	v.SetDefault("regional_months", []int{4, 5, 6})
	v.SetDefault("regional_pattern", "Washington/%04d%02d-capitalbikeshare-tripdata.csv")
	v.SetDefault("cases_file", "us_counties_covid19_daily.csv")
	v.SetDefault("case_state", "Washington")
	v.SetDefault("exclude_columns", []string{"yearid"})
	v.SetDefault("trips_max_rows", 1000000)
	v.SetDefault("regional_max_rows", 100000)
	v.SetDefault("output_dir", "out")
	v.SetDefault("chart_format", "png")
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".ridestats"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit --config that cannot be read is an error; a missing default file is not.
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// CanonicalRegion maps a case-insensitive region name onto the Regions entry.
func CanonicalRegion(name string) (string, error) {
	for _, r := range Regions {
		if strings.EqualFold(r, strings.TrimSpace(name)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q (use %s)", ErrUnknownRegion, name, strings.Join(Regions, ", "))
}

// Validate reports every problem at once. It must pass before any input path is built,
// because region and month become path fragments.
func (c *Global) Validate() error {
	var result *multierror.Error
	if r, err := CanonicalRegion(c.Region); err != nil {
		result = multierror.Append(result, err)
	} else {
		c.Region = r
	}
	if !slices.Contains(c.RegionalMonths, c.Month) {
		result = multierror.Append(result, fmt.Errorf("%w: %d (use one of %v)", ErrMonthNotAllowed, c.Month, c.RegionalMonths))
	}
	if c.Year < 1 {
		result = multierror.Append(result, fmt.Errorf("invalid year: %d", c.Year))
	}
	if c.TripsMaxRows < 0 || c.RegionalMaxRows < 0 {
		result = multierror.Append(result, fmt.Errorf("row caps must not be negative (trips %d, regional %d)", c.TripsMaxRows, c.RegionalMaxRows))
	}
	c.ChartFormat = strings.ToLower(strings.TrimSpace(c.ChartFormat))
	switch c.ChartFormat {
	case "png", "html":
	default:
		result = multierror.Append(result, fmt.Errorf("unsupported chart_format: %q (use png or html)", c.ChartFormat))
	}
	if strings.TrimSpace(c.CaseState) == "" {
		result = multierror.Append(result, errors.New("case_state must not be empty"))
	}
	return result.ErrorOrNil()
}
