package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "420px"

// SeriesChartRenderer renders a dataset as an interactive ECharts line chart
// with one series per value column.
type SeriesChartRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
	height     string
}

// SeriesChartOption customizes renderer behavior.
type SeriesChartOption func(*SeriesChartRenderer)

// WithChartCache injects a render cache. Passing nil disables caching.
func WithChartCache(cache RenderCache) SeriesChartOption {
	return func(r *SeriesChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the chart theme (defaults to Westeros).
func WithChartTheme(theme string) SeriesChartOption {
	return func(r *SeriesChartRenderer) {
		r.theme = theme
	}
}

// WithChartAssetsHost rewrites the assets host the ECharts JS loads from.
func WithChartAssetsHost(host string) SeriesChartOption {
	return func(r *SeriesChartRenderer) {
		r.assetsHost = host
	}
}

// WithChartHeight sets the CSS height of the chart container.
func WithChartHeight(height string) SeriesChartOption {
	return func(r *SeriesChartRenderer) {
		r.height = height
	}
}

// NewSeriesChartRenderer builds a renderer with a five minute render cache.
func NewSeriesChartRenderer(options ...SeriesChartOption) *SeriesChartRenderer {
	r := &SeriesChartRenderer{
		cache:  NewChartCache(5 * time.Minute),
		theme:  types.ThemeWesteros,
		height: defaultChartHeight,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

var _ ChartRenderer = (*SeriesChartRenderer)(nil)

// RenderSeries returns a standalone HTML document holding the chart.
func (r *SeriesChartRenderer) RenderSeries(_ context.Context, title string, ds *Dataset) (string, error) {
	if ds == nil || len(ds.Rows) == 0 || len(ds.Columns) == 0 {
		return "", fmt.Errorf("dashboard: chart requires a non-empty dataset")
	}
	render := func() (string, error) {
		return r.render(title, ds)
	}
	if r.cache == nil {
		return render()
	}
	return r.cache.GetOrRender(ds.Name, title+"|"+datasetHash(ds), render)
}

// Purge drops every cached chart so the next request renders fresh data.
func (r *SeriesChartRenderer) Purge() {
	if r.cache != nil {
		r.cache.Purge()
	}
}

func (r *SeriesChartRenderer) render(title string, ds *Dataset) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(r.globalChartOptions(title)...)

	labels := make([]string, len(ds.Rows))
	for i, row := range ds.Rows {
		labels[i] = row.Label
	}
	line.SetXAxis(labels)
	for idx, column := range ds.Columns {
		line.AddSeries(seriesName(column), toLineData(ds, idx))
	}
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false), ConnectNulls: opts.Bool(false)}),
	)
	return renderChart(line)
}

func (r *SeriesChartRenderer) globalChartOptions(title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: r.height,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithToolboxOpts(opts.Toolbox{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	}
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// toLineData maps one column to chart points. Null cells stay nil so the line
// shows a gap.
func toLineData(ds *Dataset, idx int) []opts.LineData {
	data := make([]opts.LineData, len(ds.Rows))
	for i, row := range ds.Rows {
		point := opts.LineData{Name: row.Label}
		if idx < len(row.Values) && row.Values[idx].Valid {
			point.Value = row.Values[idx].Decimal.InexactFloat64()
		}
		data[i] = point
	}
	return data
}

func seriesName(column string) string {
	return labelFromKey(strings.TrimSpace(column))
}
