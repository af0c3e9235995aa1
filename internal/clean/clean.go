// Package clean turns raw frames into typed, validated tables.
package clean

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/ridestats-cli/internal/dataset"
	"github.com/KaramelBytes/ridestats-cli/internal/ride"
)

// ErrUnparseableDate aborts a run: dates are never partially recovered.
var ErrUnparseableDate = errors.New("unparseable date")

var dateLayouts = []string{
	time.RFC3339, "2006-01-02", "2006/01/02", "01/02/2006", "2006-01-02 15:04", "2006-01-02 15:04:05",
	"2006-01-02T15:04:05", "2006-01-02 15:04:05.000", "1/2/2006 15:04", "1/2/2006 15:04:05", "1/2/2006",
}

// ParseDate accepts the date and timestamp layouts found in the inputs.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, s)
}

// NormalizeDates parses one column. Empty cells yield the zero time; any other value that does not
// parse fails the whole column.
func NormalizeDates(f *dataset.Frame, column string) ([]time.Time, error) {
	vals, err := f.Column(column)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(vals))
	for i, v := range vals {
		if v == "" {
			continue
		}
		t, err := ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("%s column %s row %d: %w", f.Name, column, i+1, err)
		}
		out[i] = t
	}
	return out, nil
}

// DropIncomplete returns a new frame without the rows that have an empty value in any of the
// given columns. With no columns every field is checked.
func DropIncomplete(f *dataset.Frame, columns ...string) (*dataset.Frame, error) {
	var idx []int
	if len(columns) == 0 {
		for i := range f.Header {
			idx = append(idx, i)
		}
	} else {
		var err error
		if idx, err = f.Require(columns...); err != nil {
			return nil, err
		}
	}
	kept := make([][]string, 0, len(f.Rows))
	for _, row := range f.Rows {
		if complete(row, idx) {
			kept = append(kept, row)
		}
	}
	return f.WithRows(kept), nil
}

func complete(row []string, idx []int) bool {
	for _, i := range idx {
		if isMissing(row[i]) {
			return false
		}
	}
	return true
}

func isMissing(v string) bool {
	switch strings.ToLower(v) {
	case "", "na", "nan", "null", "n/a":
		return true
	}
	return false
}

// FilterPositiveDuration keeps trips with a strictly positive duration. Values are never adjusted.
func FilterPositiveDuration(trips []ride.Trip) []ride.Trip {
	out := make([]ride.Trip, 0, len(trips))
	for _, t := range trips {
		if t.DurationSec > 0 {
			out = append(out, t)
		}
	}
	return out
}

// Report counts what cleaning removed from a table.
type Report struct {
	Table      string
	Input      int
	Incomplete int
	Filtered   int
	Output     int
	// Skipped lists non-numeric columns left out of the typed table.
	Skipped []string
}

func (r Report) String() string {
	s := fmt.Sprintf("%s: %d rows in, %d incomplete, %d filtered, %d kept", r.Table, r.Input, r.Incomplete, r.Filtered, r.Output)
	if len(r.Skipped) > 0 {
		s += fmt.Sprintf(" (non-numeric: %s)", strings.Join(r.Skipped, ", "))
	}
	return s
}

// Trips cleans a trips.csv frame: incomplete rows go, dates are normalized, non-positive
// durations are filtered.
func Trips(f *dataset.Frame) ([]ride.Trip, Report, error) {
	rep := Report{Table: f.Name, Input: f.Len()}
	full, err := DropIncomplete(f, "start_date", "end_date", "duration_sec", "is_member")
	if err != nil {
		return nil, rep, err
	}
	rep.Incomplete = f.Len() - full.Len()

	starts, err := NormalizeDates(full, "start_date")
	if err != nil {
		return nil, rep, err
	}
	ends, err := NormalizeDates(full, "end_date")
	if err != nil {
		return nil, rep, err
	}
	idx, _ := full.Require("duration_sec", "is_member")
	trips := make([]ride.Trip, 0, full.Len())
	for i, row := range full.Rows {
		d, err := strconv.ParseFloat(row[idx[0]], 64)
		if err != nil {
			return nil, rep, fmt.Errorf("%s row %d: duration_sec %q: %w", f.Name, i+1, row[idx[0]], err)
		}
		class, err := ride.ParseRiderClass(row[idx[1]])
		if err != nil {
			return nil, rep, fmt.Errorf("%s row %d: is_member: %w", f.Name, i+1, err)
		}
		trips = append(trips, ride.Trip{Start: starts[i], End: ends[i], DurationSec: d, IsMember: class == ride.Member})
	}
	out := FilterPositiveDuration(trips)
	rep.Filtered = len(trips) - len(out)
	rep.Output = len(out)
	return out, rep, nil
}

// Weather cleans a weather.csv frame into a date-indexed table. Numeric columns become conditions
// with missing cells as NaN, dropped after joining. Text columns are left out, but a row missing
// one of them is still incomplete.
func Weather(f *dataset.Frame) (*ride.WeatherTable, Report, error) {
	rep := Report{Table: f.Name, Input: f.Len()}
	dateIdx, err := f.Require("date")
	if err != nil {
		return nil, rep, err
	}
	dates, err := NormalizeDates(f, "date")
	if err != nil {
		return nil, rep, err
	}
	var cols, text []int
	tbl := &ride.WeatherTable{}
	for i, h := range f.Header {
		if i == dateIdx[0] {
			continue
		}
		if !isNumericColumn(f, i) {
			text = append(text, i)
			rep.Skipped = append(rep.Skipped, h)
			continue
		}
		cols = append(cols, i)
		tbl.Columns = append(tbl.Columns, h)
	}

	byDate := make(map[time.Time]int)
	for i, row := range f.Rows {
		if dates[i].IsZero() || !complete(row, text) {
			rep.Incomplete++
			continue
		}
		rec := ride.WeatherRecord{Date: ride.Day(dates[i]), Values: make([]float64, len(cols))}
		for j, c := range cols {
			rec.Values[j] = parseNumber(row[c])
		}
		// One record per date: a repeated date replaces the earlier row.
		if k, dup := byDate[rec.Date]; dup {
			tbl.Rows[k] = rec
			rep.Filtered++
			continue
		}
		byDate[rec.Date] = len(tbl.Rows)
		tbl.Rows = append(tbl.Rows, rec)
	}
	sort.Slice(tbl.Rows, func(i, j int) bool { return tbl.Rows[i].Date.Before(tbl.Rows[j].Date) })
	rep.Output = len(tbl.Rows)
	return tbl, rep, nil
}

// isNumericColumn reports whether every present cell of column j parses as a number. A column with
// no present cells counts as numeric, all of it missing.
func isNumericColumn(f *dataset.Frame, j int) bool {
	for _, row := range f.Rows {
		if isMissing(row[j]) {
			continue
		}
		if _, err := strconv.ParseFloat(row[j], 64); err != nil {
			return false
		}
	}
	return true
}

func parseNumber(s string) float64 {
	if isMissing(s) {
		return math.NaN()
	}
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return x
}

var regionalColumns = []string{"start_lng", "start_lat", "end_lng", "end_lat", "member_casual", "started_at"}

// RegionalTrips cleans the monthly regional export. A row with any empty field is dropped
// entirely, whether or not the analysis reads that field.
func RegionalTrips(f *dataset.Frame) ([]ride.RegionalTrip, Report, error) {
	rep := Report{Table: f.Name, Input: f.Len()}
	if _, err := f.Require(regionalColumns...); err != nil {
		return nil, rep, err
	}
	full, err := DropIncomplete(f)
	if err != nil {
		return nil, rep, err
	}
	rep.Incomplete = f.Len() - full.Len()

	started, err := NormalizeDates(full, "started_at")
	if err != nil {
		return nil, rep, err
	}
	idx, _ := full.Require(regionalColumns...)
	out := make([]ride.RegionalTrip, 0, full.Len())
	for i, row := range full.Rows {
		var c [4]float64
		for k := 0; k < 4; k++ {
			v, err := strconv.ParseFloat(row[idx[k]], 64)
			if err != nil {
				return nil, rep, fmt.Errorf("%s row %d: %s %q: %w", f.Name, i+1, regionalColumns[k], row[idx[k]], err)
			}
			c[k] = v
		}
		class, err := ride.ParseRiderClass(row[idx[4]])
		if err != nil {
			return nil, rep, fmt.Errorf("%s row %d: member_casual: %w", f.Name, i+1, err)
		}
		out = append(out, ride.RegionalTrip{
			Start:     ride.LatLng{Lng: c[0], Lat: c[1]},
			End:       ride.LatLng{Lng: c[2], Lat: c[3]},
			Class:     class,
			StartedAt: started[i],
		})
	}
	rep.Output = len(out)
	return out, rep, nil
}

// Cases cleans the national case-count file. Rows without a date, state or count are dropped.
func Cases(f *dataset.Frame) ([]ride.CaseRecord, Report, error) {
	rep := Report{Table: f.Name, Input: f.Len()}
	full, err := DropIncomplete(f, "date", "state", "cases")
	if err != nil {
		return nil, rep, err
	}
	rep.Incomplete = f.Len() - full.Len()
	dates, err := NormalizeDates(full, "date")
	if err != nil {
		return nil, rep, err
	}
	idx, _ := full.Require("state", "cases")
	out := make([]ride.CaseRecord, 0, full.Len())
	for i, row := range full.Rows {
		n, err := strconv.ParseFloat(row[idx[1]], 64)
		if err != nil {
			return nil, rep, fmt.Errorf("%s row %d: cases %q: %w", f.Name, i+1, row[idx[1]], err)
		}
		out = append(out, ride.CaseRecord{Date: ride.Day(dates[i]), State: row[idx[0]], Cases: int(n)})
	}
	rep.Output = len(out)
	return out, rep, nil
}
