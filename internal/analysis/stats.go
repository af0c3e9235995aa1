package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/KaramelBytes/ridestats-cli/internal/aggregate"
)

// ErrTooFewPairs is returned when a significance test has fewer than three complete observations.
var ErrTooFewPairs = errors.New("need at least 3 complete pairs")

// Summary is the descriptive statistics of one column. NaN cells are ignored.
type Summary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Q50    float64
	Q75    float64
	Max    float64
}

// Describe summarises every column of t, rounded to two decimals. Std uses the n-1 denominator
// and quartiles interpolate linearly between order statistics.
func Describe(t *Table) []Summary {
	out := make([]Summary, 0, len(t.Columns))
	for j, name := range t.Columns {
		vals := make([]float64, 0, t.Len())
		for _, row := range t.Values {
			if !math.IsNaN(row[j]) {
				vals = append(vals, row[j])
			}
		}
		s := Summary{Column: name, Count: len(vals)}
		if len(vals) == 0 {
			s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max = nan(), nan(), nan(), nan(), nan(), nan(), nan()
			out = append(out, s)
			continue
		}
		sort.Float64s(vals)
		s.Mean = aggregate.Round2(stat.Mean(vals, nil))
		if len(vals) > 1 {
			s.Std = aggregate.Round2(stat.StdDev(vals, nil))
		} else {
			s.Std = nan()
		}
		s.Min = aggregate.Round2(vals[0])
		s.Q25 = aggregate.Round2(quantile(vals, 0.25))
		s.Q50 = aggregate.Round2(quantile(vals, 0.50))
		s.Q75 = aggregate.Round2(quantile(vals, 0.75))
		s.Max = aggregate.Round2(vals[len(vals)-1])
		out = append(out, s)
	}
	return out
}

func nan() float64 { return math.NaN() }

// quantile expects sorted input.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// CorrMatrix is a symmetric Pearson correlation matrix.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64
}

// At returns the coefficient for two named columns.
func (m *CorrMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, c := range m.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// Correlate computes pairwise Pearson coefficients over the rows where both cells are present,
// rounded to two decimals. A constant column correlates 0 with everything but itself.
func Correlate(t *Table) *CorrMatrix {
	n := len(t.Columns)
	m := &CorrMatrix{Columns: t.Columns, Values: make([][]float64, n)}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			x, y := pairs(t, i, j)
			r := pearson(x, y)
			m.Values[i][j] = aggregate.Round2(r)
			m.Values[j][i] = m.Values[i][j]
		}
	}
	return m
}

func pairs(t *Table, i, j int) (x, y []float64) {
	for _, row := range t.Values {
		if math.IsNaN(row[i]) || math.IsNaN(row[j]) {
			continue
		}
		x = append(x, row[i])
		y = append(y, row[j])
	}
	return x, y
}

func pearson(x, y []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// PairTest is a Pearson coefficient with its two-tailed p-value.
type PairTest struct {
	X, Y string
	N    int
	R    float64
	P    float64
}

// PearsonTest correlates column x against column y and tests r != 0 with a Student's t
// distribution on n-2 degrees of freedom.
func PearsonTest(t *Table, x, y string) (PairTest, error) {
	i, ok := t.ColumnIndex(x)
	if !ok {
		return PairTest{}, fmt.Errorf("column %q not in table", x)
	}
	j, ok := t.ColumnIndex(y)
	if !ok {
		return PairTest{}, fmt.Errorf("column %q not in table", y)
	}
	xs, ys := pairs(t, i, j)
	res := PairTest{X: x, Y: y, N: len(xs)}
	if len(xs) < 3 {
		return res, fmt.Errorf("pearson %s/%s: %w", x, y, ErrTooFewPairs)
	}
	res.R = pearson(xs, ys)
	switch {
	case math.Abs(res.R) >= 1:
		res.P = 0
	default:
		df := float64(len(xs) - 2)
		tv := res.R * math.Sqrt(df/(1-res.R*res.R))
		dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		res.P = 2 * dist.Survival(math.Abs(tv))
	}
	return res, nil
}
