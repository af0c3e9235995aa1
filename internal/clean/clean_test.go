package clean

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/ridestats-cli/internal/dataset"
	"github.com/KaramelBytes/ridestats-cli/internal/ride"
)

func frame(t *testing.T, name string, lines ...string) *dataset.Frame {
	t.Helper()
	f, err := dataset.ParseCSV(strings.NewReader(strings.Join(lines, "\n")+"\n"), dataset.Options{})
	require.NoError(t, err)
	f.Name = name
	return f
}

func TestParseDateLayouts(t *testing.T) {
	for _, s := range []string{"2020-04-01", "2020-04-01 08:15", "2020-04-01 08:15:30", "4/1/2020 08:15", "2020-04-01T08:15:30Z"} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC), ride.Day(got), s)
	}
	_, err := ParseDate("first of April")
	assert.True(t, errors.Is(err, ErrUnparseableDate))
}

func TestNormalizeDatesFailsWholeColumn(t *testing.T) {
	f := frame(t, "trips.csv", "start_date,n", "2020-04-01,1", ",2", "yesterday,3")
	_, err := NormalizeDates(f, "start_date")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnparseableDate))
	assert.Contains(t, err.Error(), "row 3")
}

func TestDropIncompleteReturnsNewFrame(t *testing.T) {
	f := frame(t, "x.csv", "a,b,c", "1,2,3", "1,,3", "NaN,2,3", "1,2,")
	got, err := DropIncomplete(f, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
	assert.Equal(t, 4, f.Len(), "input frame must not change")

	all, err := DropIncomplete(f)
	require.NoError(t, err)
	assert.Equal(t, 1, all.Len())
}

func TestTripsKeepOnlyPositiveDurations(t *testing.T) {
	f := frame(t, "trips.csv",
		"start_date,end_date,duration_sec,is_member",
		"2020-04-01 08:00,2020-04-01 08:01,100,1",
		"2020-04-01 09:00,2020-04-01 09:00,0,0",
		"2020-04-01 10:00,2020-04-01 09:59,-60,1",
		"2020-04-01 11:00,,200,0",
		"2020-04-02 12:00,2020-04-02 12:03,200,0",
	)
	trips, rep, err := Trips(f)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	for _, tr := range trips {
		assert.Greater(t, tr.DurationSec, 0.0)
	}
	assert.Equal(t, 100.0, trips[0].DurationSec, "cleaning never adjusts values")
	assert.True(t, trips[0].IsMember)
	assert.False(t, trips[1].IsMember)
	assert.Equal(t, Report{Table: "trips.csv", Input: 5, Incomplete: 1, Filtered: 2, Output: 2}, rep)
}

func TestTripsUnparseableDateAborts(t *testing.T) {
	f := frame(t, "trips.csv", "start_date,end_date,duration_sec,is_member", "soon,2020-04-01,5,1")
	_, _, err := Trips(f)
	assert.True(t, errors.Is(err, ErrUnparseableDate))
}

func TestTripsMissingColumn(t *testing.T) {
	f := frame(t, "trips.csv", "start_date,duration_sec", "2020-04-01,5")
	_, _, err := Trips(f)
	assert.True(t, errors.Is(err, dataset.ErrMissingColumn))
}

func TestWeatherIndexesByDate(t *testing.T) {
	f := frame(t, "weather.csv",
		"date,yearid,max_temp,precip",
		"2020-04-02,2020,15.5,0",
		"2020-04-01,2020,12,n/a",
		"2020-04-02,2020,16,1.2",
	)
	w, rep, err := Weather(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"yearid", "max_temp", "precip"}, w.Columns)
	require.Len(t, w.Rows, 2)
	assert.Equal(t, time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC), w.Rows[0].Date)
	assert.True(t, math.IsNaN(w.Rows[0].Values[2]))
	assert.Equal(t, []float64{2020, 16, 1.2}, w.Rows[1].Values)
	assert.Equal(t, 1, rep.Filtered)
}

func TestRegionalTripsDropRowsWithNullCoordinates(t *testing.T) {
	f := frame(t, "202004-capitalbikeshare-tripdata.csv",
		"ride_id,started_at,start_lat,start_lng,end_lat,end_lng,member_casual",
		"a,2020-04-01 08:00:00,38.9,-77.0,38.91,-77.01,member",
		"b,2020-04-01 09:00:00,38.9,,38.91,-77.01,casual",
		"c,2020-04-02 09:00:00,38.9,-77.0,38.9,-77.0,casual",
	)
	trips, rep, err := RegionalTrips(f)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, 1, rep.Incomplete)
	assert.Equal(t, ride.LatLng{Lat: 38.9, Lng: -77.0}, trips[0].Start)
	assert.Equal(t, ride.LatLng{Lat: 38.91, Lng: -77.01}, trips[0].End)
	assert.Equal(t, ride.Member, trips[0].Class)
	assert.Equal(t, ride.Casual, trips[1].Class)
}

func TestCases(t *testing.T) {
	f := frame(t, "cases.csv",
		"date,county,state,fips,cases,deaths",
		"2020-04-01,King,Washington,53033,5,0",
		"2020-04-01,Pierce,Washington,53053,7,0",
		"2020-04-01,Kings,New York,36047,,0",
	)
	cases, rep, err := Cases(f)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, 1, rep.Incomplete)
	assert.Equal(t, ride.CaseRecord{Date: time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC), State: "Washington", Cases: 7}, cases[1])
}

func TestWeatherSkipsTextColumns(t *testing.T) {
	f := frame(t, "weather.csv",
		"date,max_temp,events",
		"2020-04-01,10,Rain",
		"2020-04-02,n/a,Sun",
		"2020-04-03,11,",
	)
	w, rep, err := Weather(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"max_temp"}, w.Columns)
	require.Len(t, w.Rows, 2)
	assert.Equal(t, []float64{10}, w.Rows[0].Values)
	assert.True(t, math.IsNaN(w.Rows[1].Values[0]))
	assert.Equal(t, []string{"events"}, rep.Skipped)
	assert.Equal(t, 1, rep.Incomplete)
	assert.Equal(t, "weather.csv: 3 rows in, 1 incomplete, 0 filtered, 2 kept (non-numeric: events)", rep.String())
}

func TestRegionalTripsDropRowsMissingAnyField(t *testing.T) {
	f := frame(t, "202004-capitalbikeshare-tripdata.csv",
		"ride_id,started_at,start_station_name,start_lat,start_lng,end_lat,end_lng,member_casual",
		"a,2020-04-01 08:00:00,Union Station,38.9,-77.0,38.91,-77.01,member",
		"b,2020-04-01 09:00:00,,38.9,-77.0,38.9,-77.02,casual",
	)
	trips, rep, err := RegionalTrips(f)
	require.NoError(t, err)
	require.Len(t, trips, 1)
	assert.Equal(t, ride.Member, trips[0].Class)
	assert.Equal(t, Report{Table: f.Name, Input: 2, Incomplete: 1, Output: 1}, rep)

	_, _, err = RegionalTrips(frame(t, "r.csv", "ride_id,started_at", "a,2020-04-01"))
	assert.True(t, errors.Is(err, dataset.ErrMissingColumn))
}
