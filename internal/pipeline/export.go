package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/KaramelBytes/ridestats-cli/internal/aggregate"
	"github.com/KaramelBytes/ridestats-cli/internal/analysis"
	"github.com/KaramelBytes/ridestats-cli/internal/utils"
)

const dateLayout = "2006-01-02"

// WriteTables exports every result table as CSV into dir and returns the written paths.
func WriteTables(dir string, r *Result) ([]string, error) {
	files := []struct {
		name string
		rows [][]string
	}{
		{"weather_duration.csv", tableRows(r.WeatherDuration.Table)},
		{"correlation.csv", corrRows(r.WeatherDuration.Corr)},
		{"class_duration.csv", classDurationRows(r.ClassDuration)},
		{"member_activity.csv", activityRows(r.MemberActivity)},
		{"class_distance.csv", [][]string{
			{"member_casual", aggregate.ColDistance},
			{"member", formatFloat(r.ClassDistance.Member)},
			{"casual", formatFloat(r.ClassDistance.Casual)},
		}},
		{"cases_distance.csv", tableRows(r.CasesDistance)},
	}
	var written []string
	for _, f := range files {
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.WriteAll(f.rows); err != nil {
			return written, fmt.Errorf("encode %s: %w", f.name, err)
		}
		path := filepath.Join(dir, f.name)
		if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func tableRows(t *analysis.Table) [][]string {
	if t == nil {
		return [][]string{{"date"}}
	}
	rows := [][]string{append([]string{"date"}, t.Columns...)}
	for i, d := range t.Dates {
		row := []string{d.Format(dateLayout)}
		for _, v := range t.Values[i] {
			row = append(row, formatFloat(v))
		}
		rows = append(rows, row)
	}
	return rows
}

func corrRows(m *analysis.CorrMatrix) [][]string {
	if m == nil {
		return [][]string{{""}}
	}
	rows := [][]string{append([]string{""}, m.Columns...)}
	for i, c := range m.Columns {
		row := []string{c}
		for _, v := range m.Values[i] {
			row = append(row, formatFloat(v))
		}
		rows = append(rows, row)
	}
	return rows
}

func classDurationRows(cd ClassDuration) [][]string {
	rows := [][]string{{"date", "member_casual", aggregate.ColAverageDuration}}
	for _, s := range []struct {
		class  string
		series aggregate.Series
	}{{"member", cd.Member}, {"casual", cd.Casual}} {
		for _, p := range s.series.Points {
			rows = append(rows, []string{p.Date.Format(dateLayout), s.class, formatFloat(p.Value)})
		}
	}
	return rows
}

func activityRows(rows []aggregate.ActivityRow) [][]string {
	out := [][]string{{"date", "is_member", aggregate.ColClassCount, aggregate.ColDayCount, aggregate.ColPercentage}}
	for _, r := range rows {
		member := "0"
		if r.IsMember {
			member = "1"
		}
		out = append(out, []string{
			r.Date.Format(dateLayout), member,
			strconv.Itoa(r.MCount), strconv.Itoa(r.DCount), formatFloat(r.Percentage),
		})
	}
	return out
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
