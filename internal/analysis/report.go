package analysis

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Report is the textual summary of a weather/duration analysis.
type Report struct {
	Name   string
	From   time.Time
	To     time.Time
	Rows   int
	Stats  []Summary
	Corr   *CorrMatrix
	Tests  []PairTest
	Target string
	Notes  []string
}

// Markdown renders the report as plain sections suitable for a terminal or a .md file.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("Name: %s\n", r.Name))
	}
	if !r.From.IsZero() {
		b.WriteString(fmt.Sprintf("Dates: %s .. %s\n", r.From.Format("2006-01-02"), r.To.Format("2006-01-02")))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))

	if len(r.Stats) > 0 {
		b.WriteString("\n[DESCRIPTIVE STATISTICS]\n")
		b.WriteString("| column | count | mean | std | min | 25% | 50% | 75% | max |\n")
		b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
		for _, s := range r.Stats {
			b.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s | %s | %s | %s | %s |\n",
				s.Column, s.Count, num(s.Mean), num(s.Std), num(s.Min), num(s.Q25), num(s.Q50), num(s.Q75), num(s.Max)))
		}
	}

	if r.Corr != nil && len(r.Corr.Columns) > 1 {
		b.WriteString("\n[CORRELATION]\n")
		b.WriteString("| |")
		for _, c := range r.Corr.Columns {
			b.WriteString(" " + c + " |")
		}
		b.WriteString("\n|---|")
		b.WriteString(strings.Repeat("---|", len(r.Corr.Columns)))
		b.WriteString("\n")
		for i, c := range r.Corr.Columns {
			b.WriteString("| " + c + " |")
			for _, v := range r.Corr.Values[i] {
				b.WriteString(" " + num(v) + " |")
			}
			b.WriteString("\n")
		}
	}

	if len(r.Tests) > 0 {
		target := r.Target
		if target == "" {
			target = r.Tests[0].Y
		}
		b.WriteString(fmt.Sprintf("\n[PEARSON TESTS vs %s]\n", target))
		for _, t := range r.Tests {
			b.WriteString(fmt.Sprintf("- %s: r=%.3f, p=%.4g (n=%d)\n", t.X, t.R, t.P, t.N))
		}
	}

	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notes {
			b.WriteString("- " + n + "\n")
		}
	}
	return b.String()
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}
