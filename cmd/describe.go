package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ridestats-cli/internal/analysis"
	"github.com/KaramelBytes/ridestats-cli/internal/dataset"
)

var (
	descDateCol   string
	descMaxRows   int
	descExclude   []string
	descCorr      bool
	descDelimiter string
	descMarkdown  bool
)

var describeCmd = &cobra.Command{
	Use:   "describe <file.csv>",
	Short: "Descriptive statistics and correlations of a CSV's numeric columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := dataset.Options{MaxRows: descMaxRows}
		switch descDelimiter {
		case "", ",":
		case ";":
			opt.Delimiter = ';'
		case "\t", "tab":
			opt.Delimiter = '\t'
		default:
			return fmt.Errorf("unsupported --delimiter: %s", descDelimiter)
		}
		f, err := dataset.ReadCSV(args[0], opt)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, w := range f.Warnings {
			warnf(cmd.ErrOrStderr(), "%s", w)
		}

		tab, skipped, err := analysis.FromFrame(f, descDateCol)
		if err != nil {
			return err
		}
		tab = tab.Without(descExclude...)
		if len(tab.Columns) == 0 {
			return fmt.Errorf("%s: no numeric columns", f.Name)
		}
		if len(skipped) > 0 {
			fmt.Fprintf(out, "Skipped non-numeric columns: %s\n", strings.Join(skipped, ", "))
		}

		stats := analysis.Describe(tab)
		var corr *analysis.CorrMatrix
		if descCorr {
			corr = analysis.Correlate(tab)
		}
		if descMarkdown {
			rep := &analysis.Report{Name: f.Name, Rows: tab.Len(), Stats: stats, Corr: corr}
			fmt.Fprintln(out, rep.Markdown())
			return nil
		}
		fmt.Fprintf(out, "%s: %d rows\n", f.Name, tab.Len())
		writeStats(out, stats)
		if corr != nil {
			fmt.Fprintln(out)
			writeCorr(out, corr)
		}
		return nil
	},
}

func writeStats(w io.Writer, stats []analysis.Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, s := range stats {
		table.Append([]string{
			s.Column, strconv.Itoa(s.Count),
			fmtStat(s.Mean), fmtStat(s.Std), fmtStat(s.Min),
			fmtStat(s.Q25), fmtStat(s.Q50), fmtStat(s.Q75), fmtStat(s.Max),
		})
	}
	table.Render()
}

func writeCorr(w io.Writer, m *analysis.CorrMatrix) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{""}, m.Columns...))
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i, c := range m.Columns {
		row := []string{c}
		for _, v := range m.Values[i] {
			row = append(row, fmtStat(v))
		}
		table.Append(row)
	}
	table.Render()
}

func fmtStat(v float64) string {
	if v != v {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().StringVar(&descDateCol, "date-col", "", "date column to parse and exclude from statistics")
	describeCmd.Flags().IntVar(&descMaxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	describeCmd.Flags().StringSliceVar(&descExclude, "exclude", []string{"yearid"}, "columns to leave out (comma-separated)")
	describeCmd.Flags().BoolVar(&descCorr, "correlations", true, "print the Pearson correlation matrix")
	describeCmd.Flags().StringVar(&descDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	describeCmd.Flags().BoolVar(&descMarkdown, "markdown", false, "print a Markdown report instead of tables")
}
