// Package ride holds the typed tables the analysis works on.
package ride

import (
	"fmt"
	"strings"
	"time"
)

// Day truncates t to its calendar date in t's own location and returns it as midnight UTC,
// so that values from different sources compare and hash equal.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Trip is one row of a region's trips.csv after cleaning.
type Trip struct {
	Start       time.Time
	End         time.Time
	DurationSec float64
	IsMember    bool
}

// Day is the calendar bucket the trip is counted in.
func (t Trip) Day() time.Time { return Day(t.Start) }

// Class maps the member flag to a rider class.
func (t Trip) Class() RiderClass {
	if t.IsMember {
		return Member
	}
	return Casual
}

// RiderClass distinguishes subscribers from pay-per-ride users.
type RiderClass int

const (
	Casual RiderClass = iota
	Member
)

func (c RiderClass) String() string {
	if c == Member {
		return "member"
	}
	return "casual"
}

// ParseRiderClass accepts the member_casual values and 0/1 flags.
func ParseRiderClass(s string) (RiderClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "member", "1", "true":
		return Member, nil
	case "casual", "0", "false":
		return Casual, nil
	default:
		return Casual, fmt.Errorf("unknown rider class %q", s)
	}
}

// LatLng is a coordinate in degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

// RegionalTrip is one row of the monthly regional trip export.
type RegionalTrip struct {
	Start     LatLng
	End       LatLng
	Class     RiderClass
	StartedAt time.Time
	// Distance is filled in by the distance builder; zero until then.
	Distance float64
}

// WeatherRecord is one day of weather conditions; Values align with WeatherTable.Columns.
// Missing measurements are NaN.
type WeatherRecord struct {
	Date   time.Time
	Values []float64
}

// WeatherTable is weather indexed by date, one record per date, sorted ascending.
type WeatherTable struct {
	Columns []string
	Rows    []WeatherRecord
}

// CaseRecord is one row of the daily case-count file.
type CaseRecord struct {
	Date  time.Time
	State string
	Cases int
}
