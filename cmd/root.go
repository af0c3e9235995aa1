package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/ridestats-cli/internal/config"
	"github.com/KaramelBytes/ridestats-cli/internal/logging"
)

var (
	// Global flags
	cfgFile  string
	debug    bool
	logLevel string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "ridestats",
	Short: "ridestats: bike-share trips vs weather and case counts",
	Long: `ridestats loads a region's bike-share trips, weather and COVID-19 case counts, and tests five
hypotheses about rider behaviour with daily aggregates, correlations and charts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗ Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.ridestats/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config load it again and report the error
		warnf(os.Stderr, "failed to load config: %v", err)
		return
	}
	cfg = c
	applyLogLevel()
}

func applyLogLevel() {
	level := ""
	if cfg != nil {
		level = cfg.LogLevel
	}
	if logLevel != "" {
		level = logLevel
	}
	if debug {
		level = "debug"
	}
	if level == "" {
		return
	}
	if err := logging.SetLevel(level); err != nil {
		warnf(os.Stderr, "%v", err)
	}
}

// ensureConfig returns the loaded configuration, loading it if startup could not.
func ensureConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	applyLogLevel()
	return cfg, nil
}

func successf(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, a...))
}

func warnf(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, "%s %s\n", color.YellowString("⚠ Warning:"), fmt.Sprintf(format, a...))
}
