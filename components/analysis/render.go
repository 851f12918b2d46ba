package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ettle/strcase"
	"github.com/google/uuid"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"

	"github.com/goliatone/go-macro-dashboard/components/dashboard"
)

const (
	defaultWidth  = 1024
	defaultHeight = 512
	minPoints     = 2
)

var periodColors = []drawing.Color{
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
}

// RendererOptions configures a ChartRenderer.
type RendererOptions struct {
	OutDir string
	Width  int
	Height int
	Logger *zap.Logger
}

// ChartRenderer writes annotated PNG charts for dataset columns.
type ChartRenderer struct {
	outDir string
	width  int
	height int
	logger *zap.Logger
}

// NewChartRenderer builds a renderer with safe defaults.
func NewChartRenderer(opts RendererOptions) *ChartRenderer {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &ChartRenderer{
		outDir: opts.OutDir,
		width:  opts.Width,
		height: opts.Height,
		logger: opts.Logger,
	}
}

// RenderRequest selects the table, output prefix, and periods to chart.
type RenderRequest struct {
	TableID string
	Prefix  string
	Title   string
	Periods []dashboard.Period
}

// RenderResult lists what a render run wrote.
type RenderResult struct {
	RunID string
	Dir   string
	Files []string
}

// RenderTable writes one full-series chart per column plus one chart per
// column and period with enough points. Files land in <outDir>/<prefix>/<table>/.
func (r *ChartRenderer) RenderTable(ctx context.Context, ds *dashboard.Dataset, req RenderRequest) (RenderResult, error) {
	if ds == nil {
		return RenderResult{}, errors.New("analysis: dataset is required")
	}
	if req.TableID == "" {
		req.TableID = ds.Name
	}
	if req.Title == "" {
		req.Title = req.TableID
	}
	result := RenderResult{
		RunID: uuid.NewString(),
		Dir:   filepath.Join(r.outDir, filepath.FromSlash(strings.Trim(req.Prefix, "/")), req.TableID),
	}
	logger := r.logger.With(zap.String("run_id", result.RunID), zap.String("table", req.TableID))
	if err := os.MkdirAll(result.Dir, 0o755); err != nil {
		return result, fmt.Errorf("analysis: create %s: %w", result.Dir, err)
	}

	for _, column := range ds.Columns {
		years, values := ds.Series(column)
		if len(years) < minPoints {
			logger.Debug("column skipped", zap.String("column", column), zap.Int("points", len(years)))
			continue
		}
		stats := ComputePeriodStats(ds, column, req.Periods)
		base := fmt.Sprintf("%s_%s", req.TableID, strcase.ToSnake(column))

		name := dashboard.FullSeriesImageName(base, ".png")
		title := fmt.Sprintf("%s: %s", req.Title, column)
		if err := r.writeChart(ctx, filepath.Join(result.Dir, name), title, column, years, values, stats); err != nil {
			return result, err
		}
		result.Files = append(result.Files, name)

		for _, s := range stats {
			pYears, pValues := slicePeriod(years, values, s.Period)
			if len(pYears) < minPoints {
				continue
			}
			name := periodImageName(base, s.Period)
			title := fmt.Sprintf("%s: %s (%d-%d)", req.Title, column, s.Period.Start, s.Period.End)
			if err := r.writeChart(ctx, filepath.Join(result.Dir, name), title, column, pYears, pValues, []PeriodStats{s}); err != nil {
				return result, err
			}
			result.Files = append(result.Files, name)
		}
	}
	logger.Info("charts rendered", zap.Int("files", len(result.Files)), zap.String("dir", result.Dir))
	return result, nil
}

func (r *ChartRenderer) writeChart(ctx context.Context, path, title, yName string, years []int, values []float64, stats []PeriodStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ch := r.buildChart(title, yName, years, values, stats)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("analysis: create %s: %w", path, err)
	}
	if err := ch.Render(chart.PNG, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("analysis: render %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func (r *ChartRenderer) buildChart(title, yName string, years []int, values []float64, stats []PeriodStats) chart.Chart {
	xs := make([]float64, len(years))
	for i, year := range years {
		xs[i] = float64(year)
	}
	yMin, yMax := paddedRange(values)

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    yName,
			XValues: xs,
			YValues: values,
			Style: chart.Style{
				StrokeColor: chart.ColorBlue,
				StrokeWidth: 2,
				DotWidth:    3,
				DotColor:    chart.ColorBlue,
			},
		},
	}
	for i, s := range stats {
		start, end := float64(s.FirstYear), float64(s.LastYear)
		if start == end {
			start, end = start-0.4, end+0.4
		}
		color := periodColors[i%len(periodColors)]
		series = append(series, chart.ContinuousSeries{
			Name:    s.Period.Name,
			XValues: []float64{start, end},
			YValues: []float64{s.Mean, s.Mean},
			Style: chart.Style{
				StrokeColor:     color,
				StrokeWidth:     2,
				StrokeDashArray: []float64{6, 4},
			},
		})
	}
	if annotations := PlaceAnnotations(stats, yMin, yMax); len(annotations) > 0 {
		points := make([]chart.Value2, len(annotations))
		for i, a := range annotations {
			points[i] = chart.Value2{XValue: a.X, YValue: a.Y, Label: a.Label}
		}
		series = append(series, chart.AnnotationSeries{Annotations: points})
	}

	ch := chart.Chart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Año",
			ValueFormatter: yearFormatter,
		},
		YAxis: chart.YAxis{
			Name:  yName,
			Range: &chart.ContinuousRange{Min: yMin, Max: yMax},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return ch
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(math.Round(f)))
	}
	return ""
}

// paddedRange widens the value range by 10% on each side so lines and labels
// do not touch the frame. A flat series still gets a non-empty range.
func paddedRange(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.1, 1)
	}
	return lo - pad, hi + pad
}

// periodImageName names a period chart so it never reads as a full-series one.
func periodImageName(base string, period dashboard.Period) string {
	name := fmt.Sprintf("%s_%s.png", base, strcase.ToSnake(period.Name))
	if dashboard.IsFullSeriesImage(name) {
		name = fmt.Sprintf("%s_%s_%d_%d.png", base, strcase.ToSnake(period.Name), period.Start, period.End)
	}
	return name
}

func slicePeriod(years []int, values []float64, period dashboard.Period) ([]int, []float64) {
	var pYears []int
	var pValues []float64
	for i, year := range years {
		if period.Contains(year) {
			pYears = append(pYears, year)
			pValues = append(pValues, values[i])
		}
	}
	return pYears, pValues
}
