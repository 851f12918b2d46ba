package dashboard

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTables struct {
	tables      map[string]*Dataset
	err         error
	invalidated int
}

func (s *stubTables) LoadValidatedTables(context.Context) (map[string]*Dataset, error) {
	return s.tables, s.err
}

func (s *stubTables) Invalidate() { s.invalidated++ }

type stubImages struct {
	names      []string
	lastPrefix string
}

func (s *stubImages) ListTableImages(_ context.Context, prefix, _ string) ([]string, error) {
	s.lastPrefix = prefix
	return s.names, nil
}

type stubCharts struct{ calls int }

func (s *stubCharts) RenderSeries(context.Context, string, *Dataset) (string, error) {
	s.calls++
	return "<div>chart</div>", nil
}

type recordingTelemetry struct{ events []string }

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.events = append(r.events, event)
}

func newTestService(t *testing.T, tables *stubTables, images ImageLister) *Service {
	t.Helper()
	return NewService(Options{
		Config: mustConfig(t, fiscalManifest),
		Tables: tables,
		Images: images,
	})
}

func TestBuildTablePageMissingDataFailsFast(t *testing.T) {
	images := &stubImages{names: []string{"a_full.png"}}
	service := newTestService(t, &stubTables{tables: map[string]*Dataset{}}, images)

	_, err := service.BuildTablePage(context.Background(), TablePageRequest{TableID: "ingresos_totales"})
	require.Error(t, err)
	var notFound *DataNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ingresos_totales", notFound.Table)
	assert.Empty(t, images.lastPrefix, "images are not listed for missing data")
}

func TestBuildTablePageWithoutImages(t *testing.T) {
	tables := &stubTables{tables: map[string]*Dataset{"ingresos_totales": yearsDataset(3)}}
	service := newTestService(t, tables, &stubImages{})

	page, err := service.BuildTablePage(context.Background(), TablePageRequest{TableID: "ingresos_totales", Title: "Ingresos"})
	require.NoError(t, err)
	require.Len(t, page.Tabs, 2)
	for _, tab := range page.Tabs {
		assert.True(t, tab.Empty())
		assert.Equal(t, emptyTabPlaceholder, tab.Placeholder)
	}
	assert.Empty(t, page.ActiveTab)
	assert.Equal(t, noChartsFallback, page.Fallback)
	assert.Len(t, page.Table.Rows, 3)
	assert.Equal(t, DefaultStyles(), page.Table.Styles)
}

func TestBuildTablePagePartitionsImages(t *testing.T) {
	tables := &stubTables{tables: map[string]*Dataset{"ingresos_totales": yearsDataset(1)}}
	service := newTestService(t, tables, &stubImages{names: []string{"a_full.png", "b.png"}})

	page, err := service.BuildTablePage(context.Background(), TablePageRequest{
		TableID:    "ingresos_totales",
		PathPrefix: "sector_fiscal",
	})
	require.NoError(t, err)
	require.Len(t, page.Tabs, 2)

	full, sub := page.Tabs[0], page.Tabs[1]
	assert.Equal(t, TabFullSeries, full.ID)
	require.Len(t, full.Images, 1)
	assert.Equal(t, "a_full.png", full.Images[0].Name)
	assert.Equal(t, "/assets/charts/sector_fiscal/ingresos_totales/a_full.png", full.Images[0].URL)
	require.Len(t, sub.Images, 1)
	assert.Equal(t, "b.png", sub.Images[0].Name)

	assert.Equal(t, TabFullSeries, page.ActiveTab)
	assert.Empty(t, page.Fallback)
	assert.Equal(t, "ingresos_totales", page.Title, "title falls back to the table id")
}

func TestBuildTablePageActiveTabFallsBackToSubSeries(t *testing.T) {
	tables := &stubTables{tables: map[string]*Dataset{"ingresos_totales": yearsDataset(1)}}
	service := newTestService(t, tables, &stubImages{names: []string{"b_1990.png"}})

	page, err := service.BuildTablePage(context.Background(), TablePageRequest{TableID: "ingresos_totales"})
	require.NoError(t, err)
	assert.Equal(t, TabSubSeries, page.ActiveTab)
	assert.Equal(t, emptyTabPlaceholder, page.Tabs[0].Placeholder)
}

func TestBuildTablePagePaginatesAndStyles(t *testing.T) {
	tables := &stubTables{tables: map[string]*Dataset{"ingresos_totales": yearsDataset(25)}}
	service := newTestService(t, tables, nil)

	page, err := service.BuildTablePage(context.Background(), TablePageRequest{
		TableID: "ingresos_totales",
		Page:    3,
		Styles:  StyleSpec{StyleCell: map[string]any{"fontSize": "12px"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Table.Window.Page)
	require.Len(t, page.Table.Rows, 5)
	assert.Equal(t, []string{"2020", "20"}, page.Table.Rows[0])
	assert.Len(t, page.Table.Records, 25, "records hold the full dataset")
	assert.Equal(t, "12px", page.Table.Styles.Properties(StyleCell)["fontSize"])
	assert.Contains(t, page.Table.CellStyle, "font-size: 12px;")
	assert.Equal(t, "14px", DefaultStyles().Properties(StyleCell)["fontSize"])
}

func TestTablePageUsesManifest(t *testing.T) {
	tables := &stubTables{tables: map[string]*Dataset{"ingresos_totales": yearsDataset(2)}}
	images := &stubImages{}
	charts := &stubCharts{}
	service := NewService(Options{
		Config: mustConfig(t, fiscalManifest),
		Tables: tables,
		Images: images,
		Charts: charts,
	})

	page, err := service.TablePage(context.Background(), "ingresos_totales", 1)
	require.NoError(t, err)
	assert.Equal(t, "Ingresos Totales", page.Title)
	assert.Equal(t, "Sector público no financiero.", page.Description)
	require.NotNil(t, page.Metadata)
	assert.Equal(t, "Millones de bolivianos", page.Metadata.Units)
	assert.Equal(t, "/tablas/ingresos_totales/grafico", page.ChartURL)
	assert.Equal(t, "sector_fiscal", images.lastPrefix)

	html, err := service.SeriesChart(context.Background(), "ingresos_totales")
	require.NoError(t, err)
	assert.Contains(t, html, "chart")
	assert.Equal(t, 1, charts.calls)
}

func TestServiceErrors(t *testing.T) {
	service := NewService(Options{Config: mustConfig(t, fiscalManifest)})
	_, err := service.Dataset(context.Background(), "ingresos_totales")
	assert.ErrorIs(t, err, errMissingTableSource)

	_, err = service.Dataset(context.Background(), "")
	assert.ErrorIs(t, err, errMissingTableID)

	boom := errors.New("db down")
	service = newTestService(t, &stubTables{err: boom}, nil)
	_, err = service.Dataset(context.Background(), "ingresos_totales")
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsDataNotFound(err))

	_, err = service.SeriesChart(context.Background(), "ingresos_totales")
	assert.Error(t, err, "no chart renderer configured")
}

func TestRefreshTablesInvalidatesSource(t *testing.T) {
	tables := &stubTables{}
	telemetry := &recordingTelemetry{}
	service := NewService(Options{Config: mustConfig(t, fiscalManifest), Tables: tables, Telemetry: telemetry})

	require.NoError(t, service.RefreshTables(context.Background()))
	assert.Equal(t, 1, tables.invalidated)
	assert.Equal(t, []string{"dashboard.tables.refresh"}, telemetry.events)
}

type staticTables map[string]*Dataset

func (s staticTables) LoadValidatedTables(context.Context) (map[string]*Dataset, error) {
	return s, nil
}

type purgingCharts struct {
	stubCharts
	purges int
}

func (p *purgingCharts) Purge() { p.purges++ }

func TestRefreshTablesNotifiesWithoutInvalidator(t *testing.T) {
	hook := NewBroadcastHook()
	events, cancel := hook.Subscribe()
	defer cancel()
	charts := &purgingCharts{}
	telemetry := &recordingTelemetry{}
	service := NewService(Options{
		Config:      mustConfig(t, fiscalManifest),
		Tables:      staticTables{},
		Charts:      charts,
		Telemetry:   telemetry,
		RefreshHook: hook,
	})

	require.NoError(t, service.RefreshTables(context.Background()))
	assert.Equal(t, 1, charts.purges, "rendered charts are dropped")
	assert.Equal(t, []string{"dashboard.tables.refresh"}, telemetry.events)
	select {
	case event := <-events:
		assert.Equal(t, EventTablesRefreshed, event.Type)
	default:
		t.Fatalf("expected refresh event for a source without Invalidate")
	}
}

func TestSectionTables(t *testing.T) {
	tables := &stubTables{tables: map[string]*Dataset{"ingresos_totales": yearsDataset(1)}}
	service := newTestService(t, tables, nil)

	section, available, err := service.SectionTables(context.Background(), "sector_fiscal")
	require.NoError(t, err)
	assert.Equal(t, "Sector Fiscal", section.Name)
	assert.True(t, available["ingresos_totales"])
	assert.False(t, available["gastos_totales"])

	_, _, err = service.SectionTables(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSectionNotFound)
	assert.True(t, IsNotFound(err))
}

func TestNewServiceDefaultsToEmbeddedManifest(t *testing.T) {
	service := NewService(Options{Images: NewDirImageLister(fstest.MapFS{})})
	_, ok := service.TableConfig("ingresos_totales")
	assert.True(t, ok)
}

func TestBuildTablePageRecordsTelemetry(t *testing.T) {
	telemetry := &recordingTelemetry{}
	service := NewService(Options{
		Config:    mustConfig(t, fiscalManifest),
		Tables:    &stubTables{tables: map[string]*Dataset{"ingresos_totales": yearsDataset(1)}},
		Telemetry: telemetry,
	})
	_, err := service.BuildTablePage(context.Background(), TablePageRequest{TableID: "ingresos_totales"})
	require.NoError(t, err)
	_, err = service.BuildTablePage(context.Background(), TablePageRequest{TableID: "missing"})
	require.Error(t, err)
	assert.Equal(t, []string{"dashboard.page.build", "dashboard.page.error"}, telemetry.events)
}
