package render

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/KaramelBytes/ridestats-cli/internal/analysis"
)

// PNG renders static images with gonum/plot.
type PNG struct {
	Dir string
}

const gridCols = 4

func (s *PNG) path(name string) string { return filepath.Join(s.Dir, name+".png") }

func (s *PNG) ScatterGrid(name, title string, t *analysis.Table, xs []string, y string) (string, error) {
	if t == nil || t.Len() == 0 || len(xs) == 0 {
		return "", nil
	}
	ys, err := t.Column(y)
	if err != nil {
		return "", err
	}
	cols := min(gridCols, len(xs))
	rows := (len(xs) + cols - 1) / cols
	plots := make([][]*plot.Plot, rows)
	for r := range plots {
		plots[r] = make([]*plot.Plot, cols)
		for c := range plots[r] {
			p := plot.New()
			k := r*cols + c
			if k >= len(xs) {
				p.HideAxes()
				plots[r][c] = p
				continue
			}
			xv, err := t.Column(xs[k])
			if err != nil {
				return "", err
			}
			pts := make(plotter.XYs, len(xv))
			for i := range xv {
				pts[i] = plotter.XY{X: xv[i], Y: ys[i]}
			}
			sc, err := plotter.NewScatter(pts)
			if err != nil {
				return "", err
			}
			sc.GlyphStyle.Color = plotutil.Color(k)
			sc.GlyphStyle.Radius = vg.Points(2)
			p.Add(sc)
			p.Title.Text = xs[k]
			p.X.Label.Text = xs[k]
			p.Y.Label.Text = y
			plots[r][c] = p
		}
	}
	return s.saveTiles(name, title, plots, vg.Length(cols)*4*vg.Inch, vg.Length(rows)*3.5*vg.Inch)
}

func (s *PNG) saveTiles(name, title string, plots [][]*plot.Plot, w, h vg.Length) (string, error) {
	img := vgimg.New(w, h)
	dc := draw.New(img)
	if title != "" {
		top := plot.New()
		top.Title.Text = title
		top.HideAxes()
		top.Draw(draw.Crop(dc, 0, 0, h-vg.Inch/2, 0))
		dc = draw.Crop(dc, 0, 0, 0, -vg.Inch/2)
	}
	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      len(plots[0]),
		PadX:      vg.Millimeter * 4,
		PadY:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align(plots, tiles, dc)
	for r := range plots {
		for c := range plots[r] {
			plots[r][c].Draw(canvases[r][c])
		}
	}

	path := s.path(name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ.
type corrGrid struct{ m *analysis.CorrMatrix }

func (g corrGrid) Dims() (c, r int)   { return len(g.m.Columns), len(g.m.Columns) }
func (g corrGrid) Z(c, r int) float64 { return g.m.Values[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

func (s *PNG) Heatmap(name, title string, m *analysis.CorrMatrix) (string, error) {
	if m == nil || len(m.Columns) < 2 {
		return "", nil
	}
	p := plot.New()
	p.Title.Text = title
	hm := plotter.NewHeatMap(corrGrid{m}, palette.Heat(12, 1))
	hm.Min, hm.Max = -1, 1
	p.Add(hm)

	var (
		pts    plotter.XYs
		labels []string
		ticks  []plot.Tick
	)
	for i, c := range m.Columns {
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: c})
		for j := range m.Columns {
			pts = append(pts, plotter.XY{X: float64(j), Y: float64(i)})
			labels = append(labels, fmt.Sprintf("%.2f", m.Values[i][j]))
		}
	}
	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: labels})
	if err != nil {
		return "", err
	}
	p.Add(lbl)
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight

	side := vg.Length(len(m.Columns))*vg.Inch + 3*vg.Inch
	path := s.path(name)
	if err := p.Save(side, side, path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

func dateXYs(s Labeled) plotter.XYs {
	pts := make(plotter.XYs, 0, s.Series.Len())
	for _, pt := range s.Series.Points {
		pts = append(pts, plotter.XY{X: float64(pt.Date.Unix()), Y: pt.Value})
	}
	return pts
}

func (s *PNG) Lines(name, title, yLabel string, series ...Labeled) (string, error) {
	if empty(series) {
		return "", nil
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = yLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02"}
	for i, ls := range series {
		if ls.Series.Len() == 0 {
			continue
		}
		line, err := plotter.NewLine(dateXYs(ls))
		if err != nil {
			return "", err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(ls.Label, line)
	}
	p.Legend.Top = true
	path := s.path(name)
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

func (s *PNG) Bars(name, title, yLabel string, series ...Labeled) (string, error) {
	if empty(series) {
		return "", nil
	}
	dates := unionDates(series)
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	w := vg.Points(6)
	for i, ls := range series {
		vals := make(plotter.Values, len(dates))
		for k, d := range dates {
			if v, ok := ls.Series.Get(d); ok {
				vals[k] = v
			}
		}
		bc, err := plotter.NewBarChart(vals, w)
		if err != nil {
			return "", err
		}
		bc.Color = plotutil.Color(i)
		bc.LineStyle.Width = 0
		bc.Offset = w * vg.Length(2*i-len(series)+1) / 2
		p.Add(bc)
		p.Legend.Add(ls.Label, bc)
	}
	p.Legend.Top = true
	p.NominalX(dateLabels(dates)...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight

	path := s.path(name)
	if err := p.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

func (s *PNG) CategoryBars(name, title, yLabel string, labels []string, values []float64) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	bc, err := plotter.NewBarChart(plotter.Values(values), vg.Points(40))
	if err != nil {
		return "", err
	}
	bc.Color = plotutil.Color(0)
	p.Add(bc)
	p.NominalX(labels...)

	path := s.path(name)
	if err := p.Save(6*vg.Inch, 5*vg.Inch, path); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

// LineBar stacks the line panel above the bar panel; gonum/plot has no secondary y axis.
func (s *PNG) LineBar(name, title string, t *analysis.Table, line, bar string) (string, error) {
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

	top := plot.New()
	top.Y.Label.Text = line
	pts := make(plotter.XYs, len(lv))
	for i, v := range lv {
		pts[i] = plotter.XY{X: float64(i), Y: v}
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return "", err
	}
	l.Color = plotutil.Color(0)
	top.Add(l)
	top.Legend.Add(line, l)
	top.Legend.Top = true
	top.NominalX(labels...)

	bottom := plot.New()
	bottom.Y.Label.Text = bar
	bc, err := plotter.NewBarChart(plotter.Values(bv), vg.Points(8))
	if err != nil {
		return "", err
	}
	bc.Color = plotutil.Color(1)
	bottom.Add(bc)
	bottom.Legend.Add(bar, bc)
	bottom.Legend.Top = true
	bottom.NominalX(labels...)
	bottom.X.Tick.Label.Rotation = math.Pi / 2
	bottom.X.Tick.Label.XAlign = draw.XRight

	return s.saveTiles(name, title, [][]*plot.Plot{{top}, {bottom}}, 14*vg.Inch, 9*vg.Inch)
}
