package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultChartsBasePath is the public path chart images are served from.
	DefaultChartsBasePath = "/assets/charts"
	defaultChartRoute     = "/tablas/%s/grafico"
)

// Options configures the dashboard Service. Collaborators are interfaces so the
// storage and chart backends can be swapped without touching page logic.
type Options struct {
	Config         *Config
	Tables         TableSource
	Images         ImageLister
	Charts         ChartRenderer
	Telemetry      Telemetry
	RefreshHook    RefreshHook
	Logger         *zap.Logger
	ChartsBasePath string
	// ChartRoute is a fmt pattern receiving the table id, e.g. "/tablas/%s/grafico".
	ChartRoute string
	PageSize   int
}

// Service builds table pages from the manifest, validated tables, and chart images.
type Service struct {
	opts Options
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Config == nil {
		cfg, err := DefaultConfig()
		if err != nil {
			opts.Logger.Warn("embedded manifest unavailable", zap.Error(err))
			cfg = NewConfig(nil)
		}
		opts.Config = cfg
	}
	if opts.Images == nil {
		opts.Images = NewDirImageLister(nil)
	}
	if opts.ChartsBasePath == "" {
		opts.ChartsBasePath = DefaultChartsBasePath
	}
	if opts.ChartRoute == "" {
		opts.ChartRoute = defaultChartRoute
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	for _, name := range opts.Config.DuplicateTables() {
		opts.Logger.Warn("table declared in more than one section; first declaration wins",
			zap.String("table", name))
	}
	return &Service{opts: opts}
}

// Config exposes the read-only manifest configuration.
func (s *Service) Config() *Config {
	return s.opts.Config
}

// TableConfig looks up the manifest entry for tableID.
func (s *Service) TableConfig(tableID string) (TableEntry, bool) {
	return s.opts.Config.TableConfig(tableID)
}

// TableMetadata looks up the manifest metadata for tableID.
func (s *Service) TableMetadata(tableID string) (TableMetadata, bool) {
	return s.opts.Config.TableMetadata(tableID)
}

// Dataset returns the validated dataset for tableID or a DataNotFoundError.
func (s *Service) Dataset(ctx context.Context, tableID string) (*Dataset, error) {
	if tableID == "" {
		return nil, errMissingTableID
	}
	if s.opts.Tables == nil {
		return nil, errMissingTableSource
	}
	tables, err := s.opts.Tables.LoadValidatedTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: load validated tables: %w", err)
	}
	ds, ok := tables[tableID]
	if !ok || ds == nil {
		return nil, &DataNotFoundError{Table: tableID}
	}
	return ds, nil
}

// TablePage builds the page for a manifest table, taking title, description,
// and asset prefix from the configuration.
func (s *Service) TablePage(ctx context.Context, tableID string, page int) (TablePage, error) {
	req := TablePageRequest{
		TableID: tableID,
		Title:   tableID,
		Page:    page,
	}
	if entry, ok := s.opts.Config.TableConfig(tableID); ok {
		req.Title = entry.Label
		if entry.Metadata != nil {
			req.Description = entry.Metadata.Notes
		}
		req.PathPrefix = s.opts.Config.SectionPath(tableID)
	}
	return s.BuildTablePage(ctx, req)
}

// BuildTablePage assembles chart tabs and the paginated data table for a table.
// A table without a validated dataset fails with DataNotFoundError.
func (s *Service) BuildTablePage(ctx context.Context, req TablePageRequest) (TablePage, error) {
	ds, err := s.Dataset(ctx, req.TableID)
	if err != nil {
		s.recordTelemetry(ctx, "dashboard.page.error", map[string]any{
			"table": req.TableID,
			"error": err.Error(),
		})
		return TablePage{}, err
	}

	names, err := s.opts.Images.ListTableImages(ctx, req.PathPrefix, req.TableID)
	if err != nil {
		return TablePage{}, fmt.Errorf("dashboard: list images for %s: %w", req.TableID, err)
	}
	tabs, active := buildChartTabs(s.opts.ChartsBasePath, req.PathPrefix, req.TableID, names)

	styles := TableStyles(req.Styles)
	page := TablePage{
		TableID:     req.TableID,
		Title:       req.Title,
		Description: req.Description,
		Tabs:        tabs,
		ActiveTab:   active,
		Table:       buildDataTable(ds, req.Page, s.opts.PageSize, styles),
	}
	if page.Title == "" {
		page.Title = req.TableID
	}
	if len(names) == 0 {
		page.Fallback = noChartsFallback
	}
	if meta, ok := s.opts.Config.TableMetadata(req.TableID); ok {
		page.Metadata = &meta
	}
	if s.opts.Charts != nil {
		page.ChartURL = fmt.Sprintf(s.opts.ChartRoute, req.TableID)
	}

	s.recordTelemetry(ctx, "dashboard.page.build", map[string]any{
		"table":  req.TableID,
		"images": len(names),
		"rows":   len(ds.Rows),
		"page":   page.Table.Window.Page,
	})
	return page, nil
}

// SeriesChart renders the interactive chart for tableID.
func (s *Service) SeriesChart(ctx context.Context, tableID string) (string, error) {
	if s.opts.Charts == nil {
		return "", fmt.Errorf("dashboard: chart renderer not configured")
	}
	ds, err := s.Dataset(ctx, tableID)
	if err != nil {
		return "", err
	}
	title := tableID
	if entry, ok := s.opts.Config.TableConfig(tableID); ok {
		title = entry.Label
	}
	return s.opts.Charts.RenderSeries(ctx, title, ds)
}

// RefreshTables drops cached datasets and rendered charts when the
// collaborators support it, then notifies the refresh hook. The hook is
// notified even when nothing was cached so open pages still reload.
func (s *Service) RefreshTables(ctx context.Context) error {
	invalidated := false
	if invalidator, ok := s.opts.Tables.(interface{ Invalidate() }); ok {
		invalidator.Invalidate()
		invalidated = true
	}
	if purger, ok := s.opts.Charts.(interface{ Purge() }); ok {
		purger.Purge()
	}
	s.recordTelemetry(ctx, "dashboard.tables.refresh", map[string]any{
		"invalidated": invalidated,
	})
	if s.opts.RefreshHook == nil {
		return nil
	}
	event := RefreshEvent{Type: EventTablesRefreshed, At: time.Now().UTC()}
	if err := s.opts.RefreshHook.TablesRefreshed(ctx, event); err != nil {
		return fmt.Errorf("dashboard: refresh hook: %w", err)
	}
	return nil
}

// SectionTables lists a section's entries together with whether each has a
// validated dataset. Load failures mark every table as unavailable.
func (s *Service) SectionTables(ctx context.Context, key string) (Section, map[string]bool, error) {
	section, ok := s.opts.Config.Section(key)
	if !ok {
		return Section{}, nil, fmt.Errorf("%w: %s", ErrSectionNotFound, key)
	}
	available := make(map[string]bool, len(section.Tables))
	if s.opts.Tables == nil {
		return section, available, nil
	}
	tables, err := s.opts.Tables.LoadValidatedTables(ctx)
	if err != nil {
		s.opts.Logger.Warn("load validated tables failed", zap.String("section", key), zap.Error(err))
		return section, available, nil
	}
	for _, entry := range section.Tables {
		_, available[entry.Table] = tables[entry.Table]
	}
	return section, available, nil
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}
