package aggregate

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/ridestats-cli/internal/ride"
)

func day(d int) time.Time { return time.Date(2020, 4, d, 0, 0, 0, 0, time.UTC) }

func at(d, h int) time.Time { return time.Date(2020, 4, d, h, 15, 0, 0, time.UTC) }

func sampleTrips() []ride.Trip {
	return []ride.Trip{
		{Start: at(1, 8), DurationSec: 100, IsMember: true},
		{Start: at(1, 17), DurationSec: 200, IsMember: false},
		{Start: at(2, 7), DurationSec: 300, IsMember: true},
		{Start: at(2, 9), DurationSec: 500, IsMember: true},
		{Start: at(3, 12), DurationSec: 60, IsMember: false},
	}
}

func TestDailyDurationScenario(t *testing.T) {
	trips := []ride.Trip{
		{Start: at(1, 8), DurationSec: 100, IsMember: true},
		{Start: at(1, 9), DurationSec: 200, IsMember: false},
	}
	total, ok := DailyDuration(trips).Get(day(1))
	require.True(t, ok)
	assert.Equal(t, 300.0, total)

	avg := AverageDurationByClass(trips)
	m, ok := avg[ride.Member].Get(day(1))
	require.True(t, ok)
	assert.Equal(t, 100.0, m)
	c, ok := avg[ride.Casual].Get(day(1))
	require.True(t, ok)
	assert.Equal(t, 200.0, c)
}

func TestGroupDailyIsIdempotent(t *testing.T) {
	once := DailyDuration(sampleTrips())
	twice := GroupDaily(once.Name, once.Points, func(p Point) time.Time { return p.Date }, func(p Point) float64 { return p.Value }, Sum)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("regrouping changed the series (-once +twice):\n%s", diff)
	}
}

func TestClassNumeratorsReconcileWithDailyTotal(t *testing.T) {
	trips := sampleTrips()
	totals := DailyDuration(trips)
	byClass := DailyClassDuration(trips)
	for _, p := range totals.Points {
		var sum float64
		for _, s := range byClass {
			if v, ok := s.Get(p.Date); ok {
				sum += v
			}
		}
		assert.Equal(t, p.Value, sum, p.Date)
	}
}

func TestAverageDurationAbsentForEmptyClassDay(t *testing.T) {
	avg := AverageDurationByClass(sampleTrips())
	_, ok := avg[ride.Casual].Get(day(2))
	assert.False(t, ok, "no casual trips on day 2: no point, not NaN")
	m, ok := avg[ride.Member].Get(day(2))
	require.True(t, ok)
	assert.Equal(t, 400.0, m)
	_, ok = avg[ride.Member].Get(day(3))
	assert.False(t, ok)
}

func TestDivideSkipsZeroAndMissingDenominators(t *testing.T) {
	num := Series{Points: []Point{{day(1), 10}, {day(2), 10}, {day(3), 10}}}
	den := Series{Points: []Point{{day(1), 4}, {day(2), 0}}}
	got := Divide("q", num, den)
	assert.Equal(t, []Point{{day(1), 2.5}}, got.Points)
}

func TestMemberActivity(t *testing.T) {
	rows := MemberActivity(sampleTrips())
	want := []ActivityRow{
		{Date: day(1), IsMember: false, MCount: 1, DCount: 2, Percentage: 50},
		{Date: day(1), IsMember: true, MCount: 1, DCount: 2, Percentage: 50},
		{Date: day(2), IsMember: true, MCount: 2, DCount: 2, Percentage: 100},
		{Date: day(3), IsMember: false, MCount: 1, DCount: 1, Percentage: 100},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("member activity mismatch (-want +got):\n%s", diff)
	}
}

func TestWithDistanceDropsIdenticalEndpoints(t *testing.T) {
	same := ride.LatLng{Lng: -77.0, Lat: 38.9}
	trips := []ride.RegionalTrip{
		{Start: same, End: same, Class: ride.Casual, StartedAt: at(1, 8)},
		{Start: same, End: ride.LatLng{Lng: -77.01, Lat: 38.91}, Class: ride.Member, StartedAt: at(1, 9)},
		{Start: same, End: ride.LatLng{Lng: -77.02, Lat: 38.9}, Class: ride.Casual, StartedAt: at(2, 9)},
	}
	kept, dropped := WithDistance(trips)
	assert.Equal(t, 1, dropped)
	require.Len(t, kept, 2)
	assert.Zero(t, trips[1].Distance, "input untouched")
	assert.Greater(t, kept[0].Distance, 1000.0)

	daily := DailyDistance(kept)
	assert.Equal(t, 2, daily.Len())
	v, _ := daily.Get(day(1))
	assert.Equal(t, Round2(kept[0].Distance), v)

	counts := DailyTripCounts(trips)
	n, _ := counts.Get(day(1))
	assert.Equal(t, 2.0, n)

	byClass := DistanceByClass(kept)
	assert.InDelta(t, kept[0].Distance, byClass[ride.Member], 1e-9)
	assert.InDelta(t, kept[1].Distance, byClass[ride.Casual], 1e-9)
}

func TestDailyCasesSumsOneState(t *testing.T) {
	d := day(5)
	cases := []ride.CaseRecord{
		{Date: d, State: "Washington", Cases: 5},
		{Date: d, State: "Washington", Cases: 7},
		{Date: d, State: "Oregon", Cases: 100},
	}
	got := DailyCases(cases, "Washington")
	assert.Equal(t, Series{Name: ColCases, Points: []Point{{Date: d, Value: 12}}}, got)
}

func TestRound2HalfToEven(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.234))
	assert.Equal(t, 2.5, Round2(2.5))
	assert.Equal(t, 0.12, Round2(0.125))
}
