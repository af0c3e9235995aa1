package analysis

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/ridestats-cli/internal/clean"
	"github.com/KaramelBytes/ridestats-cli/internal/dataset"
)

// FromFrame converts the numeric columns of a raw frame into a table. A column is numeric when
// every non-empty cell parses as a number; other columns are returned in skipped. When dateCol is
// empty the rows are left undated.
func FromFrame(f *dataset.Frame, dateCol string) (t *Table, skipped []string, err error) {
	var dates []time.Time
	dateIdx := -1
	if dateCol != "" {
		idx, err := f.Require(dateCol)
		if err != nil {
			return nil, nil, err
		}
		dateIdx = idx[0]
		if dates, err = clean.NormalizeDates(f, dateCol); err != nil {
			return nil, nil, err
		}
	}

	var numeric []int
	t = &Table{}
	for j, h := range f.Header {
		if j == dateIdx {
			continue
		}
		if isNumericColumn(f, j) {
			numeric = append(numeric, j)
			t.Columns = append(t.Columns, h)
		} else {
			skipped = append(skipped, h)
		}
	}
	for i, row := range f.Rows {
		vals := make([]float64, len(numeric))
		for k, j := range numeric {
			vals[k] = cell(row[j])
		}
		var d time.Time
		if dates != nil {
			d = dates[i]
		}
		t.Dates = append(t.Dates, d)
		t.Values = append(t.Values, vals)
	}
	return t, skipped, nil
}

func isNumericColumn(f *dataset.Frame, j int) bool {
	seen := false
	for _, row := range f.Rows {
		v := strings.TrimSpace(row[j])
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

func cell(s string) float64 {
	x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return x
}
