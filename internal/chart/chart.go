// Package chart renders per-category stat vs salary comparisons: every
// member as a point, an OLS line of best fit, the category average with a
// crosshair, and the qualifying offer as a reference line.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/fr4nk3nst1ner/offersleuth/internal/aggregate"
	"github.com/fr4nk3nst1ner/offersleuth/internal/models"
	"github.com/fr4nk3nst1ner/offersleuth/internal/utils"
)

var (
	// ErrUndefinedAverage means the category has no average for one of the axes
	ErrUndefinedAverage = errors.New("average undefined")
	// ErrNoPoints means no member has both values
	ErrNoPoints = errors.New("no points to plot")
)

var (
	averageColor   = color.RGBA{R: 220, A: 255}
	thresholdColor = color.RGBA{R: 128, B: 128, A: 255}
	fitColor       = color.RGBA{B: 200, A: 255}
)

// Point is one cohort member on the chart, in axis units
type Point struct {
	X, Y  float64
	Label string
}

// ScatterSpec describes one chart
type ScatterSpec struct {
	Category  string
	X, Y      models.Stat
	Points    []Point
	AvgX      *float64
	AvgY      *float64
	Threshold float64 // salary dollars
}

// axisValue converts a raw stat into axis units, salaries in millions
func axisValue(s models.Stat, v float64) float64 {
	if s == models.StatSalary {
		return utils.Millions(v)
	}
	return v
}

func axisLabel(s models.Stat) string {
	if s == models.StatSalary {
		return "Salary (in millions)"
	}
	return s.Label()
}

// Points collects the members that have both x and y
func Points(entities []models.ScrapedEntity, x, y models.Stat) []Point {
	var pts []Point
	for _, e := range entities {
		xv, yv := x.Value(e), y.Value(e)
		if xv == nil || yv == nil {
			continue
		}
		pts = append(pts, Point{
			X:     axisValue(x, *xv),
			Y:     axisValue(y, *yv),
			Label: e.FullName,
		})
	}
	return pts
}

// Scatter builds the chart for spec. It refuses to render when either
// average is undefined or there is nothing to plot.
func Scatter(spec ScatterSpec) (*plot.Plot, error) {
	if spec.AvgX == nil || spec.AvgY == nil {
		return nil, fmt.Errorf("%s %s vs %s: %w", spec.Category, spec.X.Label(), spec.Y.Label(), ErrUndefinedAverage)
	}
	if len(spec.Points) == 0 {
		return nil, fmt.Errorf("%s %s vs %s: %w", spec.Category, spec.X.Label(), spec.Y.Label(), ErrNoPoints)
	}

	avgX, avgY := axisValue(spec.X, *spec.AvgX), axisValue(spec.Y, *spec.AvgY)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s %s vs %s", spec.Category, spec.X.Label(), spec.Y.Label())
	p.X.Label.Text = axisLabel(spec.X)
	p.Y.Label.Text = axisLabel(spec.Y)

	xs := make([]float64, len(spec.Points))
	ys := make([]float64, len(spec.Points))
	xys := make(plotter.XYs, len(spec.Points))
	for i, pt := range spec.Points {
		xs[i], ys[i] = pt.X, pt.Y
		xys[i].X, xys[i].Y = pt.X, pt.Y
	}

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	p.Add(scatter)

	xMin, xMax := floats.Min(xs), floats.Max(xs)
	yMin, yMax := floats.Min(ys), floats.Max(ys)
	xMin, xMax = min(xMin, avgX), max(xMax, avgX)
	yMin, yMax = min(yMin, avgY), max(yMax, avgY)

	if fit, ok := BestFit(xs, ys); ok {
		line := plotter.NewFunction(func(x float64) float64 { return fit.Alpha + fit.Beta*x })
		line.XMin, line.XMax = xMin, xMax
		line.Color = fitColor
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("best fit", line)
	}

	threshold := utils.Millions(spec.Threshold)
	switch {
	case spec.Y == models.StatSalary:
		yMin, yMax = min(yMin, threshold), max(yMax, threshold)
		hline, err := segment(xMin, threshold, xMax, threshold, thresholdColor)
		if err != nil {
			return nil, err
		}
		p.Add(hline)
		p.Legend.Add("qualifying offer", hline)
	case spec.X == models.StatSalary:
		xMin, xMax = min(xMin, threshold), max(xMax, threshold)
		vline, err := segment(threshold, yMin, threshold, yMax, thresholdColor)
		if err != nil {
			return nil, err
		}
		p.Add(vline)
		p.Legend.Add("qualifying offer", vline)
	}

	vertical, err := segment(avgX, yMin, avgX, yMax, averageColor)
	if err != nil {
		return nil, err
	}
	horizontal, err := segment(xMin, avgY, xMax, avgY, averageColor)
	if err != nil {
		return nil, err
	}
	marker, err := plotter.NewScatter(plotter.XYs{{X: avgX, Y: avgY}})
	if err != nil {
		return nil, err
	}
	marker.GlyphStyle.Color = averageColor
	marker.GlyphStyle.Shape = draw.CircleGlyph{}
	marker.GlyphStyle.Radius = vg.Points(4)
	p.Add(vertical, horizontal, marker)
	p.Legend.Add(spec.Category+" average", marker)

	return p, nil
}

func segment(x0, y0, x1, y1 float64, c color.Color) (*plotter.Line, error) {
	line, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y0}, {X: x1, Y: y1}})
	if err != nil {
		return nil, err
	}
	line.Color = c
	line.Width = vg.Points(1)
	return line, nil
}

// Fit is an ordinary least squares line y = Alpha + Beta*x
type Fit struct {
	Alpha, Beta float64
}

// BestFit returns the OLS line through the points. ok is false when there
// are fewer than two points or every x is the same.
func BestFit(xs, ys []float64) (Fit, bool) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return Fit{}, false
	}
	if stat.Variance(xs, nil) == 0 {
		return Fit{}, false
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Fit{Alpha: alpha, Beta: beta}, true
}

// Renderer writes charts as PNG files into Dir
type Renderer struct {
	Dir    string
	Width  vg.Length
	Height vg.Length
	Logger *slog.Logger
}

// NewRenderer sizes charts in centimeters
func NewRenderer(dir string, widthCM, heightCM int) *Renderer {
	return &Renderer{
		Dir:    dir,
		Width:  vg.Length(widthCM) * vg.Centimeter,
		Height: vg.Length(heightCM) * vg.Centimeter,
		Logger: slog.Default(),
	}
}

// RenderAll draws every stat vs salary chart for every category that has
// an aggregate. Pairs without an average or without points are skipped.
func (r *Renderer) RenderAll(entities []models.ScrapedEntity, aggs []models.CategoryAggregate, threshold float64) ([]string, error) {
	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating plot dir: %w", err)
	}

	var written []string
	for _, agg := range aggs {
		members := aggregate.Members(entities, agg.Category)
		for _, s := range models.StatsFor(agg.Category) {
			spec := ScatterSpec{
				Category:  agg.Category,
				X:         s,
				Y:         models.StatSalary,
				Points:    Points(members, s, models.StatSalary),
				AvgX:      agg.Average(s),
				AvgY:      agg.AvgSalary,
				Threshold: threshold,
			}
			p, err := Scatter(spec)
			if errors.Is(err, ErrUndefinedAverage) || errors.Is(err, ErrNoPoints) {
				r.Logger.Debug("skipping chart", "category", agg.Category, "stat", s.Label(), "reason", err)
				continue
			}
			if err != nil {
				return written, err
			}

			path := filepath.Join(r.Dir, FileName(agg.Category, s, models.StatSalary))
			if err := p.Save(r.Width, r.Height, path); err != nil {
				return written, fmt.Errorf("saving %s: %w", path, err)
			}
			written = append(written, path)
		}
	}
	return written, nil
}

// FileName is "<category>_<x>_vs_<y>.png" in lower snake case
func FileName(category string, x, y models.Stat) string {
	name := fmt.Sprintf("%s_%s_vs_%s", utils.CollapseWhitespace(category), x.Column(), y.Column())
	name = strings.ToLower(strings.NewReplacer("/", "_", "\\", "_").Replace(name))
	return name + ".png"
}
