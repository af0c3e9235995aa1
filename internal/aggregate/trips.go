package aggregate

import (
	"sort"
	"time"

	"github.com/KaramelBytes/ridestats-cli/internal/geo"
	"github.com/KaramelBytes/ridestats-cli/internal/ride"
)

func tripDuration(t ride.Trip) float64 { return t.DurationSec }
func tripClass(t ride.Trip) ride.RiderClass { return t.Class() }

// DailyDuration is the total ride duration per day.
func DailyDuration(trips []ride.Trip) Series {
	return GroupDaily(ColDuration, trips, ride.Trip.Day, tripDuration, Sum)
}

// DailyCounts is the number of trips per day.
func DailyCounts(trips []ride.Trip) Series {
	return GroupDaily(ColDayCount, trips, ride.Trip.Day, nil, Count)
}

// DailyClassCounts is the number of trips per day for each rider class.
func DailyClassCounts(trips []ride.Trip) map[ride.RiderClass]Series {
	return GroupDailyBy(ColClassCount, trips, ride.Trip.Day, tripClass, nil, Count)
}

// DailyClassDuration is the total duration per day for each rider class.
func DailyClassDuration(trips []ride.Trip) map[ride.RiderClass]Series {
	return GroupDailyBy(ColDuration, trips, ride.Trip.Day, tripClass, tripDuration, Sum)
}

// AverageDurationByClass is total duration over trip count per (day, class), rounded to two
// decimals. A day without trips of a class has no point for that class.
func AverageDurationByClass(trips []ride.Trip) map[ride.RiderClass]Series {
	sums := DailyClassDuration(trips)
	counts := DailyClassCounts(trips)
	out := make(map[ride.RiderClass]Series, len(sums))
	for class, s := range sums {
		avg := Divide(ColAverageDuration, s, counts[class])
		for i := range avg.Points {
			avg.Points[i].Value = Round2(avg.Points[i].Value)
		}
		out[class] = avg
	}
	return out
}

// ActivityRow is one (day, class) line of the member activity table.
type ActivityRow struct {
	Date       time.Time
	IsMember   bool
	MCount     int
	DCount     int
	Percentage float64
}

// MemberActivity joins the per-class daily counts with the daily totals and adds each class's
// share of the day in percent. Rows are ordered by date, casual before member.
func MemberActivity(trips []ride.Trip) []ActivityRow {
	totals := DailyCounts(trips)
	var rows []ActivityRow
	for class, s := range DailyClassCounts(trips) {
		for _, p := range s.Points {
			total, _ := totals.Get(p.Date)
			row := ActivityRow{Date: p.Date, IsMember: class == ride.Member, MCount: int(p.Value), DCount: int(total)}
			if total > 0 {
				row.Percentage = p.Value / total * 100
			}
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return !rows[i].IsMember && rows[j].IsMember
	})
	return rows
}

// WithDistance sets each regional trip's distance and drops trips whose distance is zero.
// The input slice is not modified.
func WithDistance(trips []ride.RegionalTrip) (kept []ride.RegionalTrip, dropped int) {
	kept = make([]ride.RegionalTrip, 0, len(trips))
	for _, t := range trips {
		t.Distance = geo.TripDistance(t.Start, t.End)
		if geo.IsZero(t.Distance) {
			dropped++
			continue
		}
		kept = append(kept, t)
	}
	return kept, dropped
}

func regionalDay(t ride.RegionalTrip) time.Time { return t.StartedAt }

// DailyDistance sums per-trip distances, each rounded to two decimals, per day.
func DailyDistance(trips []ride.RegionalTrip) Series {
	return GroupDaily(ColDistance, trips, regionalDay, func(t ride.RegionalTrip) float64 { return Round2(t.Distance) }, Sum)
}

// DailyTripCounts is the number of regional trips per day.
func DailyTripCounts(trips []ride.RegionalTrip) Series {
	return GroupDaily(ColTripCount, trips, regionalDay, nil, Count)
}

// DistanceByClass totals distance per rider class.
func DistanceByClass(trips []ride.RegionalTrip) map[ride.RiderClass]float64 {
	out := map[ride.RiderClass]float64{ride.Casual: 0, ride.Member: 0}
	for _, t := range trips {
		out[t.Class] += t.Distance
	}
	return out
}

// DailyCases sums the case counts of one state per day.
func DailyCases(cases []ride.CaseRecord, state string) Series {
	var rows []ride.CaseRecord
	for _, c := range cases {
		if c.State == state {
			rows = append(rows, c)
		}
	}
	return GroupDaily(ColCases, rows, func(c ride.CaseRecord) time.Time { return c.Date }, func(c ride.CaseRecord) float64 { return float64(c.Cases) }, Sum)
}
