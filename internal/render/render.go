// Package render draws the finished analysis tables as static PNG charts (gonum/plot) or as
// interactive HTML pages (go-echarts).
package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/ridestats-cli/internal/aggregate"
	"github.com/KaramelBytes/ridestats-cli/internal/analysis"
	"github.com/KaramelBytes/ridestats-cli/internal/pipeline"
	"github.com/KaramelBytes/ridestats-cli/internal/utils"
)

// Labeled is a daily series with a legend label.
type Labeled struct {
	Label  string
	Series aggregate.Series
}

// Sink writes one chart per call and returns the written path. An empty path with a nil error
// means there was nothing to draw.
type Sink interface {
	// ScatterGrid draws one scatter panel per x column against y.
	ScatterGrid(name, title string, t *analysis.Table, xs []string, y string) (string, error)
	Heatmap(name, title string, m *analysis.CorrMatrix) (string, error)
	Lines(name, title, yLabel string, series ...Labeled) (string, error)
	// Bars draws grouped daily bars, one group member per series.
	Bars(name, title, yLabel string, series ...Labeled) (string, error)
	CategoryBars(name, title, yLabel string, labels []string, values []float64) (string, error)
	// LineBar overlays column line on bars of column bar, sharing the date axis.
	LineBar(name, title string, t *analysis.Table, line, bar string) (string, error)
}

// New returns the sink for a chart format, writing into dir.
func New(format, dir string) (Sink, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}
	switch strings.ToLower(format) {
	case "png":
		return &PNG{Dir: dir}, nil
	case "html":
		return &HTML{Dir: dir}, nil
	default:
		return nil, fmt.Errorf("unsupported chart format: %q (use png or html)", format)
	}
}

// Charts draws every hypothesis chart of a run and returns the written files.
func Charts(s Sink, r *pipeline.Result) ([]string, error) {
	wd := r.WeatherDuration
	member, casual := activitySeries(r.MemberActivity)
	steps := []func() (string, error){
		func() (string, error) {
			return s.ScatterGrid("weather_duration_scatter", "Total daily trip duration vs weather", wd.Table, wd.Columns, aggregate.ColDuration)
		},
		func() (string, error) {
			return s.Heatmap("weather_duration_corr", "Correlation of weather and daily duration", wd.Corr)
		},
		func() (string, error) {
			return s.Lines("class_duration", "Daily average trip duration", "Trip Duration (sec)",
				Labeled{"member riders", r.ClassDuration.Member}, Labeled{"casual riders", r.ClassDuration.Casual})
		},
		func() (string, error) {
			return s.Bars("member_activity", "Trips per day by rider class", "Member Count",
				Labeled{"casual", casual}, Labeled{"member", member})
		},
		func() (string, error) {
			return s.CategoryBars("class_distance", "Distance of members and casual riders", aggregate.ColDistance,
				[]string{"casual", "member"}, []float64{r.ClassDistance.Casual, r.ClassDistance.Member})
		},
		func() (string, error) {
			return s.LineBar("cases_distance", "Daily average distance and confirmed cases", r.CasesDistance,
				aggregate.ColAverageDistance, aggregate.ColCases)
		},
	}
	var files []string
	for _, step := range steps {
		path, err := step()
		if err != nil {
			return files, err
		}
		if path != "" {
			files = append(files, path)
		}
	}
	return files, nil
}

func activitySeries(rows []aggregate.ActivityRow) (member, casual aggregate.Series) {
	member.Name, casual.Name = aggregate.ColClassCount, aggregate.ColClassCount
	for _, r := range rows {
		p := aggregate.Point{Date: r.Date, Value: float64(r.MCount)}
		if r.IsMember {
			member.Points = append(member.Points, p)
		} else {
			casual.Points = append(casual.Points, p)
		}
	}
	return member, casual
}

// unionDates is the sorted set of dates over all series.
func unionDates(series []Labeled) []time.Time {
	seen := map[time.Time]bool{}
	var out []time.Time
	for _, s := range series {
		for _, p := range s.Series.Points {
			if !seen[p.Date] {
				seen[p.Date] = true
				out = append(out, p.Date)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func dateLabels(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format("2006-01-02")
	}
	return out
}

func empty(series []Labeled) bool {
	for _, s := range series {
		if s.Series.Len() > 0 {
			return false
		}
	}
	return true
}
