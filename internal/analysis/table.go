package analysis

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/ridestats-cli/internal/aggregate"
	"github.com/KaramelBytes/ridestats-cli/internal/ride"
)

// Table is a date-keyed numeric table. Values is row-major and aligned with Dates; a missing cell is NaN.
type Table struct {
	Columns []string
	Dates   []time.Time
	Values  [][]float64
}

// Len is the number of rows.
func (t *Table) Len() int { return len(t.Dates) }

// ColumnIndex finds a column by exact name.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i := slices.Index(t.Columns, name)
	return i, i >= 0
}

// Column copies one column out of the table.
func (t *Table) Column(name string) ([]float64, error) {
	j, ok := t.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("column %q not in table", name)
	}
	out := make([]float64, t.Len())
	for i, row := range t.Values {
		out[i] = row[j]
	}
	return out, nil
}

// FromSeries builds a table from daily series; the union of their dates becomes the index.
func FromSeries(series ...aggregate.Series) *Table {
	t := &Table{}
	for _, s := range series {
		t = OuterJoin(t, single(s))
	}
	return t
}

func single(s aggregate.Series) *Table {
	t := &Table{Columns: []string{s.Name}}
	for _, p := range s.Points {
		t.Dates = append(t.Dates, p.Date)
		t.Values = append(t.Values, []float64{p.Value})
	}
	return t
}

// FromWeather turns the weather table into an analysis table.
func FromWeather(w *ride.WeatherTable) *Table {
	t := &Table{Columns: slices.Clone(w.Columns)}
	for _, r := range w.Rows {
		t.Dates = append(t.Dates, r.Date)
		t.Values = append(t.Values, slices.Clone(r.Values))
	}
	return t
}

type joinKind int

const (
	inner joinKind = iota
	outer
)

// OuterJoin aligns a and b on date keeping every date of either side. Cells missing on one side are NaN.
func OuterJoin(a, b *Table) *Table { return join(a, b, outer) }

// InnerJoin aligns a and b on date keeping only dates present in both.
func InnerJoin(a, b *Table) *Table { return join(a, b, inner) }

func join(a, b *Table, kind joinKind) *Table {
	out := &Table{Columns: append(slices.Clone(a.Columns), b.Columns...)}
	ai := indexByDate(a)
	bi := indexByDate(b)

	var dates []time.Time
	for d := range ai {
		if _, ok := bi[d]; ok || kind == outer {
			dates = append(dates, d)
		}
	}
	if kind == outer {
		for d := range bi {
			if _, ok := ai[d]; !ok {
				dates = append(dates, d)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	na, nb := len(a.Columns), len(b.Columns)
	for _, d := range dates {
		row := make([]float64, 0, na+nb)
		row = append(row, rowOrNaN(a, ai, d, na)...)
		row = append(row, rowOrNaN(b, bi, d, nb)...)
		out.Dates = append(out.Dates, d)
		out.Values = append(out.Values, row)
	}
	return out
}

func indexByDate(t *Table) map[time.Time]int {
	m := make(map[time.Time]int, t.Len())
	for i, d := range t.Dates {
		m[ride.Day(d)] = i
	}
	return m
}

func rowOrNaN(t *Table, idx map[time.Time]int, d time.Time, n int) []float64 {
	if i, ok := idx[d]; ok {
		return t.Values[i]
	}
	row := make([]float64, n)
	for k := range row {
		row[k] = math.NaN()
	}
	return row
}

// DropNA returns a table without the rows that contain any NaN.
func (t *Table) DropNA() *Table {
	out := &Table{Columns: t.Columns}
	for i, row := range t.Values {
		if slices.ContainsFunc(row, math.IsNaN) {
			continue
		}
		out.Dates = append(out.Dates, t.Dates[i])
		out.Values = append(out.Values, row)
	}
	return out
}

// Select returns a table holding only the named columns, in the given order. Unknown names are skipped.
func (t *Table) Select(names ...string) *Table {
	var idx []int
	out := &Table{Dates: t.Dates}
	for _, n := range names {
		if j, ok := t.ColumnIndex(n); ok {
			idx = append(idx, j)
			out.Columns = append(out.Columns, n)
		}
	}
	out.Values = make([][]float64, t.Len())
	for i, row := range t.Values {
		r := make([]float64, len(idx))
		for k, j := range idx {
			r[k] = row[j]
		}
		out.Values[i] = r
	}
	return out
}

// Without drops the named columns, compared case-insensitively.
func (t *Table) Without(names ...string) *Table {
	var keep []string
	for _, c := range t.Columns {
		if !slices.ContainsFunc(names, func(n string) bool { return strings.EqualFold(n, c) }) {
			keep = append(keep, c)
		}
	}
	return t.Select(keep...)
}

// WithColumn appends a column computed from each row.
func (t *Table) WithColumn(name string, f func(row []float64) float64) *Table {
	out := &Table{Columns: append(slices.Clone(t.Columns), name), Dates: t.Dates, Values: make([][]float64, t.Len())}
	for i, row := range t.Values {
		out.Values[i] = append(slices.Clone(row), f(row))
	}
	return out
}

// AnalysisColumns lists the columns to test against target: every column except the excluded
// ones (categorical codes such as yearid) and the target itself.
func AnalysisColumns(t *Table, exclude []string, target string) []string {
	var out []string
	for _, c := range t.Columns {
		if c == target || slices.ContainsFunc(exclude, func(e string) bool { return strings.EqualFold(e, c) }) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// MonthRange returns the first and last day of a month, using the real calendar length.
func MonthRange(year, month int) (from, to time.Time) {
	from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, DaysIn(year, month)-1)
}

// DaysIn is the number of days of a month, leap years included.
func DaysIn(year, month int) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FilterDates keeps the rows dated within [from, to], both ends inclusive.
func (t *Table) FilterDates(from, to time.Time) *Table {
	from, to = ride.Day(from), ride.Day(to)
	out := &Table{Columns: t.Columns}
	for i, d := range t.Dates {
		dd := ride.Day(d)
		if dd.Before(from) || dd.After(to) {
			continue
		}
		out.Dates = append(out.Dates, t.Dates[i])
		out.Values = append(out.Values, t.Values[i])
	}
	return out
}
