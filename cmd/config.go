package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/ridestats-cli/internal/config"
	"github.com/KaramelBytes/ridestats-cli/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set ridestats configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "data_dir: %s\n", c.DataDir)
		fmt.Fprintf(out, "region: %s\n", c.Region)
		fmt.Fprintf(out, "year: %d\n", c.Year)
		fmt.Fprintf(out, "month: %d\n", c.Month)
		fmt.Fprintf(out, "regional_months: %s\n", joinInts(c.RegionalMonths))
		fmt.Fprintf(out, "regional_pattern: %s\n", c.RegionalPattern)
		fmt.Fprintf(out, "cases_file: %s\n", c.CasesFile)
		fmt.Fprintf(out, "case_state: %s\n", c.CaseState)
		if len(c.ExcludeColumns) > 0 {
			fmt.Fprintf(out, "exclude_columns: %s\n", strings.Join(c.ExcludeColumns, ","))
		}
		fmt.Fprintf(out, "trips_max_rows: %d\n", c.TripsMaxRows)
		fmt.Fprintf(out, "regional_max_rows: %d\n", c.RegionalMaxRows)
		fmt.Fprintf(out, "output_dir: %s\n", c.OutputDir)
		fmt.Fprintf(out, "chart_format: %s\n", c.ChartFormat)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		switch key {
		case "data_dir":
			c.DataDir = val
		case "region":
			r, err := cfgpkg.CanonicalRegion(val)
			if err != nil {
				return err
			}
			c.Region = r
		case "year":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for year: %v", val)
			}
			c.Year = i
		case "month":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 || i > 12 {
				return fmt.Errorf("invalid month: %v", val)
			}
			c.Month = i
		case "regional_months":
			months, err := parseInts(val)
			if err != nil {
				return fmt.Errorf("invalid regional_months: %w", err)
			}
			c.RegionalMonths = months
		case "regional_pattern":
			c.RegionalPattern = val
		case "cases_file":
			c.CasesFile = val
		case "case_state":
			c.CaseState = val
		case "exclude_columns":
			c.ExcludeColumns = splitList(val)
		case "trips_max_rows", "regional_max_rows":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			if key == "trips_max_rows" {
				c.TripsMaxRows = i
			} else {
				c.RegionalMaxRows = i
			}
		case "output_dir":
			c.OutputDir = val
		case "chart_format":
			switch strings.ToLower(val) {
			case "png", "html":
				c.ChartFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid chart_format: %s (use png or html)", val)
			}
		case "log_level":
			if _, err := logging.ParseLevel(val); err != nil {
				return err
			}
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		successf(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, p := range splitList(s) {
		i, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}
