package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ridestats-cli/internal/dataset"
	"github.com/KaramelBytes/ridestats-cli/internal/pipeline"
	"github.com/KaramelBytes/ridestats-cli/internal/render"
	"github.com/KaramelBytes/ridestats-cli/internal/utils"
)

var (
	runRegion      string
	runMonth       int
	runYear        int
	runDataDir     string
	runOutDir      string
	runFormat      string
	runInteractive bool
	runNoCharts    bool
	runQuiet       bool
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full analysis for one region and month",
	Long: `Load, clean and analyse one region/month, then write the result tables, charts, a Markdown
summary and a manifest into <out>/<Region>-<YYYY>-<MM>/.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		base, err := ensureConfig()
		if err != nil {
			return err
		}
		c := *base
		f := cmd.Flags()
		if f.Changed("region") {
			c.Region = runRegion
		}
		if f.Changed("month") {
			c.Month = runMonth
		}
		if f.Changed("year") {
			c.Year = runYear
		}
		if f.Changed("data-dir") {
			c.DataDir = runDataDir
		}
		if f.Changed("out") {
			c.OutputDir = runOutDir
		}
		if f.Changed("format") {
			c.ChartFormat = runFormat
		}
		if runInteractive {
			region, month, err := dataset.Prompt(cmd.InOrStdin(), cmd.OutOrStdout(), c.RegionalMonths)
			if err != nil {
				return fmt.Errorf("prompt: %w", err)
			}
			c.Region, c.Month = region, month
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		res, err := pipeline.Run(ctx, pipeline.Input{Config: &c})
		if err != nil {
			return err
		}

		runDir := utils.RunDir(c.OutputDir, res.Region, res.Year, res.Month)
		manifest := pipeline.NewManifest(res, runDir)
		tables, err := pipeline.WriteTables(runDir, res)
		if err != nil {
			return err
		}
		manifest.AddFiles(tables...)

		if !runNoCharts {
			sink, err := render.New(c.ChartFormat, filepath.Join(runDir, "charts"))
			if err != nil {
				return err
			}
			charts, err := render.Charts(sink, res)
			if err != nil {
				return fmt.Errorf("render charts: %w", err)
			}
			manifest.AddFiles(charts...)
		}

		md := res.Report().Markdown()
		summary := filepath.Join(runDir, "summary.md")
		if err := utils.SafeWriteFile(summary, []byte(md)); err != nil {
			return err
		}
		manifest.AddFiles(summary)
		if err := manifest.Save(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !runQuiet {
			fmt.Fprintln(out, md)
		}
		if res.WeatherDuration.Table != nil && res.WeatherDuration.Table.Len() == 0 {
			warnf(cmd.ErrOrStderr(), "weather and trips share no dates; the weather vs duration analysis is empty")
		}
		successf(out, "Wrote %d files to %s (run %s)", len(manifest.Files)+1, runDir, manifest.RunID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCommand)
	runCommand.Flags().StringVarP(&runRegion, "region", "r", "", "region: Montreal|Toronto|Washington (overrides config)")
	runCommand.Flags().IntVarP(&runMonth, "month", "m", 0, "month of the regional trip file (overrides config)")
	runCommand.Flags().IntVar(&runYear, "year", 0, "year of the regional trip file (overrides config)")
	runCommand.Flags().StringVar(&runDataDir, "data-dir", "", "input data directory (overrides config)")
	runCommand.Flags().StringVarP(&runOutDir, "out", "o", "", "output directory (overrides config)")
	runCommand.Flags().StringVar(&runFormat, "format", "", "chart format: png|html (overrides config)")
	runCommand.Flags().BoolVarP(&runInteractive, "interactive", "i", false, "prompt for region and month")
	runCommand.Flags().BoolVar(&runNoCharts, "no-charts", false, "skip chart rendering")
	runCommand.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "do not print the summary")
}
