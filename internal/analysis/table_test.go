package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/ridestats-cli/internal/aggregate"
	"github.com/KaramelBytes/ridestats-cli/internal/dataset"
	"github.com/KaramelBytes/ridestats-cli/internal/ride"
)

func date(y, m, d int) time.Time { return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC) }

func series(name string, vals map[int]float64) aggregate.Series {
	s := aggregate.Series{Name: name}
	for d := 1; d <= 31; d++ {
		if v, ok := vals[d]; ok {
			s.Points = append(s.Points, aggregate.Point{Date: date(2020, 4, d), Value: v})
		}
	}
	return s
}

func TestOuterJoinKeepsAllDatesThenDropNA(t *testing.T) {
	a := series("a", map[int]float64{1: 1, 2: 2})
	b := series("b", map[int]float64{2: 20, 3: 30})
	tab := FromSeries(a, b)
	require.Equal(t, []string{"a", "b"}, tab.Columns)
	require.Equal(t, 3, tab.Len())
	assert.True(t, math.IsNaN(tab.Values[0][1]))
	assert.True(t, math.IsNaN(tab.Values[2][0]))

	clean := tab.DropNA()
	require.Equal(t, 1, clean.Len())
	assert.Equal(t, date(2020, 4, 2), clean.Dates[0])
	assert.Equal(t, []float64{2, 20}, clean.Values[0])
}

func TestInnerJoinRequiresBothSides(t *testing.T) {
	a := FromSeries(series("cases", map[int]float64{1: 5, 2: 6, 3: 7}))
	b := FromSeries(series("count", map[int]float64{2: 10, 3: 11, 4: 12}))
	got := InnerJoin(a, b)
	want := &Table{
		Columns: []string{"cases", "count"},
		Dates:   []time.Time{date(2020, 4, 2), date(2020, 4, 3)},
		Values:  [][]float64{{6, 10}, {7, 11}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("inner join mismatch (-want +got):\n%s", diff)
	}
}

func TestFromWeatherAndColumns(t *testing.T) {
	w := &ride.WeatherTable{
		Columns: []string{"yearid", "max_temp"},
		Rows: []ride.WeatherRecord{
			{Date: date(2020, 4, 1), Values: []float64{2020, 10}},
			{Date: date(2020, 4, 2), Values: []float64{2020, 12}},
		},
	}
	tab := OuterJoin(FromWeather(w), FromSeries(series(aggregate.ColDuration, map[int]float64{1: 300, 2: 500})))
	assert.Equal(t, []string{"max_temp"}, AnalysisColumns(tab, []string{"YearID"}, aggregate.ColDuration))
	assert.Equal(t, []string{"max_temp", aggregate.ColDuration}, tab.Without("yearid").Columns)

	col, err := tab.Column("max_temp")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 12}, col)
	_, err = tab.Column("humidity")
	assert.Error(t, err)

	withAvg := tab.WithColumn("ratio", func(row []float64) float64 { return row[2] / row[1] })
	assert.Equal(t, []float64{2020, 10, 300, 30}, withAvg.Values[0])
	assert.Len(t, tab.Columns, 3, "input untouched")
}

func TestMonthRangeUsesCalendarLength(t *testing.T) {
	for _, tc := range []struct{ year, month, days int }{
		{2020, 4, 30}, {2020, 5, 31}, {2020, 6, 30}, {2020, 2, 29}, {2021, 2, 28}, {2020, 12, 31},
	} {
		assert.Equal(t, tc.days, DaysIn(tc.year, tc.month), "%d-%02d", tc.year, tc.month)
	}
	from, to := MonthRange(2020, 4)
	assert.Equal(t, date(2020, 4, 1), from)
	assert.Equal(t, date(2020, 4, 30), to)
}

func TestFilterDatesIsInclusive(t *testing.T) {
	tab := &Table{Columns: []string{"cases"}}
	for _, d := range []time.Time{date(2020, 3, 31), date(2020, 4, 1), date(2020, 4, 30), date(2020, 5, 1)} {
		tab.Dates = append(tab.Dates, d)
		tab.Values = append(tab.Values, []float64{1})
	}
	got := tab.FilterDates(MonthRange(2020, 4))
	assert.Equal(t, []time.Time{date(2020, 4, 1), date(2020, 4, 30)}, got.Dates)
}

func TestDescribe(t *testing.T) {
	tab := &Table{Columns: []string{"x", "empty"}}
	for i, v := range []float64{4, 1, 3, 2} {
		tab.Dates = append(tab.Dates, date(2020, 4, i+1))
		tab.Values = append(tab.Values, []float64{v, math.NaN()})
	}
	stats := Describe(tab)
	require.Len(t, stats, 2)
	assert.Equal(t, Summary{Column: "x", Count: 4, Mean: 2.5, Std: 1.29, Min: 1, Q25: 1.75, Q50: 2.5, Q75: 3.25, Max: 4}, stats[0])
	assert.Equal(t, 0, stats[1].Count)
	assert.True(t, math.IsNaN(stats[1].Mean))
}

func TestCorrelateSymmetricAndBounded(t *testing.T) {
	tab := &Table{Columns: []string{"up", "double", "down", "flat"}}
	for i := 1; i <= 5; i++ {
		x := float64(i)
		tab.Dates = append(tab.Dates, date(2020, 4, i))
		tab.Values = append(tab.Values, []float64{x, 2 * x, -x + 0.1*x*x, 7})
	}
	m := Correlate(tab)
	for i := range m.Columns {
		assert.Equal(t, 1.0, m.Values[i][i])
		for j := range m.Columns {
			assert.Equal(t, m.Values[i][j], m.Values[j][i])
			assert.LessOrEqual(t, math.Abs(m.Values[i][j]), 1.0)
		}
	}
	r, ok := m.At("up", "double")
	require.True(t, ok)
	assert.Equal(t, 1.0, r)
	r, _ = m.At("flat", "up")
	assert.Equal(t, 0.0, r)
	r, _ = m.At("down", "up")
	assert.Less(t, r, -0.9)
	_, ok = m.At("up", "missing")
	assert.False(t, ok)
}

func TestPearsonTest(t *testing.T) {
	tab := &Table{Columns: []string{"x", "y"}}
	ys := []float64{2, 4, 5, 4, 5}
	for i, y := range ys {
		tab.Dates = append(tab.Dates, date(2020, 4, i+1))
		tab.Values = append(tab.Values, []float64{float64(i + 1), y})
	}
	res, err := PearsonTest(tab, "x", "y")
	require.NoError(t, err)
	assert.Equal(t, 5, res.N)
	assert.InDelta(t, 0.7746, res.R, 1e-4)
	assert.InDelta(t, 0.1240, res.P, 1e-3)

	_, err = PearsonTest(tab.FilterDates(date(2020, 4, 1), date(2020, 4, 2)), "x", "y")
	assert.True(t, errors.Is(err, ErrTooFewPairs))
	_, err = PearsonTest(tab, "x", "z")
	assert.Error(t, err)
}

func TestReportMarkdown(t *testing.T) {
	tab := &Table{Columns: []string{"max_temp", "duration_sec"}}
	for i := 1; i <= 4; i++ {
		tab.Dates = append(tab.Dates, date(2020, 4, i))
		tab.Values = append(tab.Values, []float64{float64(10 + i), float64(100 * i)})
	}
	pt, err := PearsonTest(tab, "max_temp", "duration_sec")
	require.NoError(t, err)
	r := &Report{Name: "Washington 2020-04", Rows: tab.Len(), Stats: Describe(tab), Corr: Correlate(tab), Tests: []PairTest{pt}}
	md := r.Markdown()
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 4", "[DESCRIPTIVE STATISTICS]", "| max_temp | 4 | 12.50 |", "[CORRELATION]", "[PEARSON TESTS vs duration_sec]", "- max_temp: r=1.000"} {
		assert.True(t, strings.Contains(md, want), "missing %q in:\n%s", want, md)
	}
}

func TestFromFrameKeepsNumericColumns(t *testing.T) {
	f, err := dataset.ParseCSV(strings.NewReader("date,station,temp,rain\n2020-04-01,A,10,\n2020-04-02,B,12.5,1\n"), dataset.Options{})
	require.NoError(t, err)
	tab, skipped, err := FromFrame(f, "date")
	require.NoError(t, err)
	assert.Equal(t, []string{"temp", "rain"}, tab.Columns)
	assert.Equal(t, []string{"station"}, skipped)
	assert.Equal(t, date(2020, 4, 2), tab.Dates[1])
	assert.True(t, math.IsNaN(tab.Values[0][1]))
	assert.Equal(t, 12.5, tab.Values[1][0])

	undated, skipped, err := FromFrame(f, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"temp", "rain"}, undated.Columns)
	assert.Equal(t, []string{"date", "station"}, skipped)
	assert.True(t, undated.Dates[0].IsZero())

	_, _, err = FromFrame(f, "day")
	assert.True(t, errors.Is(err, dataset.ErrMissingColumn))
}
