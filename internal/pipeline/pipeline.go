// Package pipeline runs a full region/month analysis: load, clean, then the five hypothesis
// branches over the cleaned tables.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/KaramelBytes/ridestats-cli/internal/aggregate"
	"github.com/KaramelBytes/ridestats-cli/internal/analysis"
	"github.com/KaramelBytes/ridestats-cli/internal/clean"
	"github.com/KaramelBytes/ridestats-cli/internal/config"
	"github.com/KaramelBytes/ridestats-cli/internal/dataset"
	"github.com/KaramelBytes/ridestats-cli/internal/logging"
	"github.com/KaramelBytes/ridestats-cli/internal/ride"
)

// Input configures one run. When Bundle is nil the inputs are resolved and read from Config.
type Input struct {
	Config *config.Global
	Bundle *dataset.Bundle
}

// WeatherDuration relates daily weather conditions to total daily ride duration.
type WeatherDuration struct {
	// Table holds the analysis columns followed by duration_sec, one row per date with no gaps.
	Table   *analysis.Table
	Columns []string
	Stats   []analysis.Summary
	Corr    *analysis.CorrMatrix
	Tests   []analysis.PairTest
}

// ClassDuration is the daily average trip duration of each rider class.
type ClassDuration struct {
	Member aggregate.Series
	Casual aggregate.Series
}

// ClassDistance is the total distance ridden by each rider class over the month.
type ClassDistance struct {
	Member float64
	Casual float64
}

// Result is everything a run computes. All tables are final and read-only.
type Result struct {
	Region string
	Year   int
	Month  int

	Cleaning     []clean.Report
	ZeroDistance int

	WeatherDuration WeatherDuration
	ClassDuration   ClassDuration
	MemberActivity  []aggregate.ActivityRow
	ClassDistance   ClassDistance
	// CasesDistance has columns cases, count, distance, avg_dis.
	CasesDistance *analysis.Table
}

type cleaned struct {
	trips    []ride.Trip
	weather  *ride.WeatherTable
	regional []ride.RegionalTrip
	cases    []ride.CaseRecord
}

// Run executes the pipeline. The context is checked between stages.
func Run(ctx context.Context, in Input) (*Result, error) {
	if in.Config == nil {
		return nil, errors.New("pipeline: nil config")
	}
	cfg := in.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bundle := in.Bundle
	if bundle == nil {
		src, err := dataset.Resolve(cfg)
		if err != nil {
			return nil, err
		}
		bundle, err = dataset.Load(ctx, src, dataset.Caps{Trips: cfg.TripsMaxRows, Regional: cfg.RegionalMaxRows})
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Region: cfg.Region, Year: cfg.Year, Month: cfg.Month}
	c, err := cleanAll(bundle, res)
	if err != nil {
		return nil, err
	}

	var kept []ride.RegionalTrip
	branches := []struct {
		name string
		fn   func() error
	}{
		{"weather/duration", func() error {
			wd, err := weatherDuration(c.trips, c.weather, cfg.ExcludeColumns)
			res.WeatherDuration = wd
			return err
		}},
		{"class duration", func() error {
			res.ClassDuration = classDuration(c.trips)
			return nil
		}},
		{"member activity", func() error {
			res.MemberActivity = aggregate.MemberActivity(c.trips)
			return nil
		}},
		{"class distance", func() error {
			kept, res.ZeroDistance = aggregate.WithDistance(c.regional)
			by := aggregate.DistanceByClass(kept)
			res.ClassDistance = ClassDistance{Member: by[ride.Member], Casual: by[ride.Casual]}
			return nil
		}},
		{"cases/distance", func() error {
			res.CasesDistance = casesDistance(c.cases, c.regional, kept, cfg)
			return nil
		}},
	}
	for _, b := range branches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.fn(); err != nil {
			logging.Errorf("branch %s failed: %v", b.name, err)
			return nil, fmt.Errorf("%s: %w", b.name, err)
		}
		logging.Debugf("branch %s done", b.name)
	}
	if res.ZeroDistance > 0 {
		logging.Debugf("dropped %d regional trips with zero distance", res.ZeroDistance)
	}
	logging.Infof("%s %04d-%02d: %d weather/duration days, %d cases/distance days",
		res.Region, res.Year, res.Month, res.WeatherDuration.Table.Len(), res.CasesDistance.Len())
	return res, nil
}

func cleanAll(b *dataset.Bundle, res *Result) (*cleaned, error) {
	var (
		c   cleaned
		rep clean.Report
		err error
	)
	if c.trips, rep, err = clean.Trips(b.Trips); err != nil {
		return nil, fmt.Errorf("clean trips: %w", err)
	}
	res.Cleaning = append(res.Cleaning, rep)
	if c.weather, rep, err = clean.Weather(b.Weather); err != nil {
		return nil, fmt.Errorf("clean weather: %w", err)
	}
	res.Cleaning = append(res.Cleaning, rep)
	if c.regional, rep, err = clean.RegionalTrips(b.Regional); err != nil {
		return nil, fmt.Errorf("clean regional trips: %w", err)
	}
	res.Cleaning = append(res.Cleaning, rep)
	if c.cases, rep, err = clean.Cases(b.Cases); err != nil {
		return nil, fmt.Errorf("clean cases: %w", err)
	}
	res.Cleaning = append(res.Cleaning, rep)
	for _, r := range res.Cleaning {
		logging.Debugf("%s", r)
	}
	return &c, nil
}

func weatherDuration(trips []ride.Trip, weather *ride.WeatherTable, exclude []string) (WeatherDuration, error) {
	conditions := analysis.FromWeather(weather)
	duration := analysis.FromSeries(aggregate.DailyDuration(trips))
	// Rows are dropped on every column, excluded ones included, before those are removed.
	tab := analysis.OuterJoin(conditions, duration).DropNA().Without(exclude...)
	wd := WeatherDuration{
		Table:   tab,
		Columns: analysis.AnalysisColumns(tab, exclude, aggregate.ColDuration),
		Stats:   analysis.Describe(tab),
		Corr:    analysis.Correlate(tab),
	}
	if tab.Len() == 0 {
		if shared := analysis.InnerJoin(conditions, duration).Len(); shared > 0 {
			logging.Warnf("all %d days shared by weather and trips were dropped for missing values", shared)
		} else {
			logging.Warnf("no dates shared by weather and trips")
		}
		return wd, nil
	}
	for _, col := range wd.Columns {
		pt, err := analysis.PearsonTest(tab, col, aggregate.ColDuration)
		if errors.Is(err, analysis.ErrTooFewPairs) {
			logging.Debugf("skip significance test: %v", err)
			continue
		}
		if err != nil {
			return wd, err
		}
		wd.Tests = append(wd.Tests, pt)
	}
	return wd, nil
}

func classDuration(trips []ride.Trip) ClassDuration {
	avg := aggregate.AverageDurationByClass(trips)
	cd := ClassDuration{Member: avg[ride.Member], Casual: avg[ride.Casual]}
	cd.Member.Name = aggregate.ColAverageDuration
	cd.Casual.Name = aggregate.ColAverageDuration
	return cd
}

// casesDistance joins daily cases for the configured state and month with the daily regional trip
// count and distance. Trip counts include zero-distance trips; distances do not.
func casesDistance(cases []ride.CaseRecord, all, withDistance []ride.RegionalTrip, cfg *config.Global) *analysis.Table {
	from, to := analysis.MonthRange(cfg.Year, cfg.Month)
	daily := analysis.FromSeries(aggregate.DailyCases(cases, cfg.CaseState)).FilterDates(from, to)
	counts := analysis.FromSeries(aggregate.DailyTripCounts(all))
	dist := analysis.FromSeries(aggregate.DailyDistance(withDistance))
	t := analysis.InnerJoin(analysis.InnerJoin(daily, counts), dist)
	return t.WithColumn(aggregate.ColAverageDistance, func(row []float64) float64 {
		return aggregate.Round2(row[2] / row[1])
	})
}

// Report is the text summary of a run.
func (r *Result) Report() *analysis.Report {
	wd := r.WeatherDuration
	rep := &analysis.Report{
		Name:   fmt.Sprintf("%s %04d-%02d weather vs daily duration", r.Region, r.Year, r.Month),
		Stats:  wd.Stats,
		Corr:   wd.Corr,
		Tests:  wd.Tests,
		Target: aggregate.ColDuration,
	}
	if wd.Table != nil {
		rep.Rows = wd.Table.Len()
		if n := wd.Table.Len(); n > 0 {
			rep.From, rep.To = wd.Table.Dates[0], wd.Table.Dates[n-1]
		}
	}
	for _, c := range r.Cleaning {
		rep.Notes = append(rep.Notes, c.String())
	}
	rep.Notes = append(rep.Notes,
		fmt.Sprintf("mean daily average duration: member %.2f s, casual %.2f s",
			mean(r.ClassDuration.Member), mean(r.ClassDuration.Casual)),
		fmt.Sprintf("total distance: member %.2f, casual %.2f (%d zero-distance trips dropped)",
			r.ClassDistance.Member, r.ClassDistance.Casual, r.ZeroDistance),
	)
	if col, r, ok := strongest(wd); ok {
		rep.Notes = append(rep.Notes, fmt.Sprintf("strongest correlate of %s: %s (r=%.2f)", aggregate.ColDuration, col, r))
	}
	if r.CasesDistance != nil {
		rep.Notes = append(rep.Notes, fmt.Sprintf("cases vs distance: %d days joined", r.CasesDistance.Len()))
	}
	return rep
}

// strongest picks the analysis column with the largest absolute correlation to duration. Ties keep
// the earlier column.
func strongest(wd WeatherDuration) (col string, r float64, ok bool) {
	if wd.Corr == nil {
		return "", 0, false
	}
	for _, c := range wd.Columns {
		v, found := wd.Corr.At(c, aggregate.ColDuration)
		if !found || math.IsNaN(v) {
			continue
		}
		if !ok || math.Abs(v) > math.Abs(r) {
			col, r, ok = c, v, true
		}
	}
	return col, r, ok
}

func mean(s aggregate.Series) float64 {
	if s.Len() == 0 {
		return 0
	}
	return s.Total() / float64(s.Len())
}
