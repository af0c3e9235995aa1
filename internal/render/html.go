package render

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/KaramelBytes/ridestats-cli/internal/analysis"
	"github.com/KaramelBytes/ridestats-cli/internal/utils"
)

// HTML renders interactive pages with go-echarts.
type HTML struct {
	Dir string
	// AssetsHost overrides where the echarts scripts load from; empty uses the library default.
	AssetsHost string
}

var heatColors = []string{"#313695", "#4575b4", "#74add1", "#abd9e9", "#e0f3f8", "#ffffbf", "#fee090", "#fdae61", "#f46d43", "#d73027", "#a50026"}

func (s *HTML) initOpts(title string) opts.Initialization {
	return opts.Initialization{PageTitle: title, Width: "1200px", Height: "600px", AssetsHost: s.AssetsHost}
}

func (s *HTML) write(name string, chs ...components.Charter) (string, error) {
	page := components.NewPage()
	if s.AssetsHost != "" {
		page.SetAssetsHost(s.AssetsHost)
	}
	page.AddCharts(chs...)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	path := filepath.Join(s.Dir, name+".html")
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

func (s *HTML) ScatterGrid(name, title string, t *analysis.Table, xs []string, y string) (string, error) {
	if t == nil || t.Len() == 0 || len(xs) == 0 {
		return "", nil
	}
	ys, err := t.Column(y)
	if err != nil {
		return "", err
	}
	var chs []components.Charter
	for _, x := range xs {
		xv, err := t.Column(x)
		if err != nil {
			return "", err
		}
		data := make([]opts.ScatterData, len(xv))
		for i := range xv {
			data[i] = opts.ScatterData{Value: []interface{}{xv[i], ys[i]}}
		}
		sc := charts.NewScatter()
		sc.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "600px", Height: "420px", AssetsHost: s.AssetsHost}),
			charts.WithTitleOpts(opts.Title{Title: x, Subtitle: title}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: x, NameLocation: "middle", NameGap: 25}),
			charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: y}),
		)
		sc.AddSeries(x, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
		chs = append(chs, sc)
	}
	return s.write(name, chs...)
}

func (s *HTML) Heatmap(name, title string, m *analysis.CorrMatrix) (string, error) {
	if m == nil || len(m.Columns) < 2 {
		return "", nil
	}
	data := make([]opts.HeatMapData, 0, len(m.Columns)*len(m.Columns))
	for i := range m.Columns {
		for j := range m.Columns {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{j, i, m.Values[i][j]}})
		}
	}
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "800px", AssetsHost: s.AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: m.Columns, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: m.Columns, SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        -1,
			Max:        1,
			InRange:    &opts.VisualMapInRange{Color: heatColors},
		}),
	)
	hm.SetXAxis(m.Columns).AddSeries("correlation", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)
	return s.write(name, hm)
}

// aligned returns the values of each series on the shared date axis; gaps are "-", which echarts skips.
func aligned(series []Labeled) ([]string, [][]interface{}) {
	dates := unionDates(series)
	out := make([][]interface{}, len(series))
	for i, ls := range series {
		out[i] = make([]interface{}, len(dates))
		for k, d := range dates {
			if v, ok := ls.Series.Get(d); ok {
				out[i][k] = v
			} else {
				out[i][k] = "-"
			}
		}
	}
	return dateLabels(dates), out
}

func (s *HTML) Lines(name, title, yLabel string, series ...Labeled) (string, error) {
	if empty(series) {
		return "", nil
	}
	labels, vals := aligned(series)
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(s.initOpts(title)),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel}),
	)
	line.SetXAxis(labels)
	for i, ls := range series {
		data := make([]opts.LineData, len(vals[i]))
		for k, v := range vals[i] {
			data[k] = opts.LineData{Value: v}
		}
		line.AddSeries(ls.Label, data)
	}
	return s.write(name, line)
}

func (s *HTML) Bars(name, title, yLabel string, series ...Labeled) (string, error) {
	if empty(series) {
		return "", nil
	}
	labels, vals := aligned(series)
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(s.initOpts(title)),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel}),
	)
	bar.SetXAxis(labels)
	for i, ls := range series {
		data := make([]opts.BarData, len(vals[i]))
		for k, v := range vals[i] {
			data[k] = opts.BarData{Value: v}
		}
		bar.AddSeries(ls.Label, data)
	}
	return s.write(name, bar)
}

func (s *HTML) CategoryBars(name, title, yLabel string, labels []string, values []float64) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	data := make([]opts.BarData, len(values))
	for i, v := range values {
		data[i] = opts.BarData{Value: v}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "700px", Height: "500px", AssetsHost: s.AssetsHost}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: yLabel}),
	)
	bar.SetXAxis(labels).
		AddSeries(yLabel, data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return s.write(name, bar)
}

// LineBar draws bar on the left axis and line on a second right-hand axis.
func (s *HTML) LineBar(name, title string, t *analysis.Table, line, bar string) (string, error) {
	if t == nil || t.Len() == 0 {
		return "", nil
	}
	lv, err := t.Column(line)
	if err != nil {
		return "", err
	}
	bv, err := t.Column(bar)
	if err != nil {
		return "", err
	}
	labels := dateLabels(t.Dates)
	barData := make([]opts.BarData, len(bv))
	for i, v := range bv {
		barData[i] = opts.BarData{Value: v}
	}
	lineData := make([]opts.LineData, len(lv))
	for i, v := range lv {
		lineData[i] = opts.LineData{Value: v}
	}

	b := charts.NewBar()
	b.SetGlobalOptions(
		charts.WithInitializationOpts(s.initOpts(title)),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: bar}),
	)
	b.ExtendYAxis(opts.YAxis{Name: line})
	b.SetXAxis(labels).AddSeries(bar, barData)

	l := charts.NewLine()
	l.SetXAxis(labels).AddSeries(line, lineData, charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))
	b.Overlap(l)
	return s.write(name, b)
}
