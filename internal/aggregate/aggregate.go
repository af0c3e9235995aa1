// Package aggregate reduces trip and case tables to one value per calendar day.
package aggregate

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/KaramelBytes/ridestats-cli/internal/ride"
)

// Stable column names of the daily series, shared with every renderer.
const (
	ColDuration        = "duration_sec"
	ColDayCount        = "d_count"
	ColClassCount      = "m_count"
	ColPercentage      = "percentage"
	ColAverageDuration = "average_duration"
	ColDistance        = "distance"
	ColTripCount       = "count"
	ColCases           = "cases"
	ColAverageDistance = "avg_dis"
)

// Reducer folds the values of one day.
type Reducer int

const (
	Sum Reducer = iota
	Count
)

// Point is one day of a series.
type Point struct {
	Date  time.Time
	Value float64
}

// Series is a daily aggregate, one point per date, sorted by date.
type Series struct {
	Name   string
	Points []Point
}

// Len is the number of days.
func (s Series) Len() int { return len(s.Points) }

// Get looks up the value for a date.
func (s Series) Get(d time.Time) (float64, bool) {
	d = ride.Day(d)
	i := sort.Search(len(s.Points), func(i int) bool { return !s.Points[i].Date.Before(d) })
	if i < len(s.Points) && s.Points[i].Date.Equal(d) {
		return s.Points[i].Value, true
	}
	return 0, false
}

// Values lists the values in date order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Total sums every point.
func (s Series) Total() float64 { return floats.Sum(s.Values()) }

// Round2 rounds half to even at two decimals.
func Round2(x float64) float64 { return scalar.RoundEven(x, 2) }

type acc struct {
	sum float64
	n   int
}

func (a acc) reduce(r Reducer) float64 {
	if r == Count {
		return float64(a.n)
	}
	return a.sum
}

// GroupDaily buckets rows by calendar date, ignoring time of day, and reduces each bucket.
func GroupDaily[T any](name string, rows []T, dateOf func(T) time.Time, valueOf func(T) float64, r Reducer) Series {
	buckets := make(map[time.Time]*acc)
	for _, row := range rows {
		d := ride.Day(dateOf(row))
		a := buckets[d]
		if a == nil {
			a = &acc{}
			buckets[d] = a
		}
		if valueOf != nil {
			a.sum += valueOf(row)
		}
		a.n++
	}
	return fromBuckets(name, buckets, r)
}

// GroupDailyBy is GroupDaily with a second key; each key gets its own series.
func GroupDailyBy[T any, K comparable](name string, rows []T, dateOf func(T) time.Time, keyOf func(T) K, valueOf func(T) float64, r Reducer) map[K]Series {
	buckets := make(map[K]map[time.Time]*acc)
	for _, row := range rows {
		k := keyOf(row)
		byDay := buckets[k]
		if byDay == nil {
			byDay = make(map[time.Time]*acc)
			buckets[k] = byDay
		}
		d := ride.Day(dateOf(row))
		a := byDay[d]
		if a == nil {
			a = &acc{}
			byDay[d] = a
		}
		if valueOf != nil {
			a.sum += valueOf(row)
		}
		a.n++
	}
	out := make(map[K]Series, len(buckets))
	for k, byDay := range buckets {
		out[k] = fromBuckets(name, byDay, r)
	}
	return out
}

func fromBuckets(name string, buckets map[time.Time]*acc, r Reducer) Series {
	s := Series{Name: name, Points: make([]Point, 0, len(buckets))}
	for d, a := range buckets {
		s.Points = append(s.Points, Point{Date: d, Value: a.reduce(r)})
	}
	sort.Slice(s.Points, func(i, j int) bool { return s.Points[i].Date.Before(s.Points[j].Date) })
	return s
}

// Divide returns num/den over the dates present in both with a non-zero denominator. Other dates
// are absent from the result rather than NaN or Inf.
func Divide(name string, num, den Series) Series {
	out := Series{Name: name}
	for _, p := range num.Points {
		d, ok := den.Get(p.Date)
		if !ok || d == 0 {
			continue
		}
		out.Points = append(out.Points, Point{Date: p.Date, Value: p.Value / d})
	}
	return out
}
