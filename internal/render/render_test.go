package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/ridestats-cli/internal/aggregate"
	"github.com/KaramelBytes/ridestats-cli/internal/analysis"
	"github.com/KaramelBytes/ridestats-cli/internal/pipeline"
)

func day(d int) time.Time { return time.Date(2020, 4, d, 0, 0, 0, 0, time.UTC) }

func sampleResult() *pipeline.Result {
	wt := &analysis.Table{Columns: []string{"max_temp", "precip", aggregate.ColDuration}}
	for i, row := range [][]float64{{10, 0, 300}, {14, 1, 350}, {12, 0.5, 600}, {9, 2, 200}} {
		wt.Dates = append(wt.Dates, day(i+1))
		wt.Values = append(wt.Values, row)
	}
	member := aggregate.Series{Name: aggregate.ColAverageDuration, Points: []aggregate.Point{{Date: day(1), Value: 100}, {Date: day(2), Value: 300}}}
	casual := aggregate.Series{Name: aggregate.ColAverageDuration, Points: []aggregate.Point{{Date: day(1), Value: 200}, {Date: day(3), Value: 600}}}
	cases := &analysis.Table{
		Columns: []string{aggregate.ColCases, aggregate.ColTripCount, aggregate.ColDistance, aggregate.ColAverageDistance},
		Dates:   []time.Time{day(1), day(2)},
		Values:  [][]float64{{12, 2, 1400, 700}, {9, 1, 1730, 1730}},
	}
	return &pipeline.Result{
		Region: "Washington", Year: 2020, Month: 4,
		WeatherDuration: pipeline.WeatherDuration{
			Table:   wt,
			Columns: []string{"max_temp", "precip"},
			Corr:    analysis.Correlate(wt),
		},
		ClassDuration: pipeline.ClassDuration{Member: member, Casual: casual},
		MemberActivity: []aggregate.ActivityRow{
			{Date: day(1), IsMember: false, MCount: 1, DCount: 2, Percentage: 50},
			{Date: day(1), IsMember: true, MCount: 1, DCount: 2, Percentage: 50},
			{Date: day(2), IsMember: true, MCount: 2, DCount: 2, Percentage: 100},
		},
		ClassDistance: pipeline.ClassDistance{Member: 1400, Casual: 1730},
		CasesDistance: cases,
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New("svg", t.TempDir())
	assert.Error(t, err)
}

func TestPNGCharts(t *testing.T) {
	dir := t.TempDir()
	sink, err := New("png", dir)
	require.NoError(t, err)
	files, err := Charts(sink, sampleResult())
	require.NoError(t, err)
	require.Len(t, files, 6)
	for _, f := range files {
		assert.Equal(t, ".png", filepath.Ext(f))
		info, err := os.Stat(f)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestHTMLCharts(t *testing.T) {
	dir := t.TempDir()
	sink, err := New("HTML", dir)
	require.NoError(t, err)
	files, err := Charts(sink, sampleResult())
	require.NoError(t, err)
	require.Len(t, files, 6)

	b, err := os.ReadFile(filepath.Join(dir, "cases_distance.html"))
	require.NoError(t, err)
	page := string(b)
	assert.True(t, strings.Contains(page, "echarts"))
	assert.Contains(t, page, aggregate.ColAverageDistance)
	assert.Contains(t, page, "2020-04-02")
}

func TestChartsSkipEmptyTables(t *testing.T) {
	sink, err := New("png", t.TempDir())
	require.NoError(t, err)
	files, err := Charts(sink, &pipeline.Result{})
	require.NoError(t, err)
	assert.Len(t, files, 1, "only the class distance bars have data")
}

func TestActivitySeriesSplitsClasses(t *testing.T) {
	member, casual := activitySeries(sampleResult().MemberActivity)
	assert.Equal(t, 2, member.Len())
	assert.Equal(t, 1, casual.Len())
	v, ok := member.Get(day(2))
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
}
