package dashboard

import (
	"context"
)

// TableSource exposes the validated-table cache. Implementations own database
// access, validation, and refresh policy; the dashboard only consumes the result.
type TableSource interface {
	LoadValidatedTables(ctx context.Context) (map[string]*Dataset, error)
}

// ImageLister returns the chart image filenames generated for a table.
// Filenames are returned in a stable order.
type ImageLister interface {
	ListTableImages(ctx context.Context, prefix, tableID string) ([]string, error)
}

// ChartRenderer renders the interactive chart markup for a dataset.
type ChartRenderer interface {
	RenderSeries(ctx context.Context, title string, ds *Dataset) (string, error)
}

// Section groups tables for navigation.
type Section struct {
	Key    string    `yaml:"-" json:"key"`
	Name   string    `yaml:"name" json:"name"`
	Path   string    `yaml:"path" json:"path"`
	Tables TableList `yaml:"tablas" json:"tablas"`
}

// TableEntry describes a single table declared in the manifest.
type TableEntry struct {
	Key        string         `yaml:"-" json:"key"`
	SectionKey string         `yaml:"-" json:"section"`
	Table      string         `yaml:"tabla" json:"tabla"`
	Label      string         `yaml:"label" json:"label"`
	Metadata   *TableMetadata `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	Periods    []Period       `yaml:"periodos,omitempty" json:"periodos,omitempty"`
}

// TableMetadata carries optional descriptive information about a table.
type TableMetadata struct {
	Sources []string `yaml:"fuentes,omitempty" json:"fuentes,omitempty"`
	Units   string   `yaml:"unidad,omitempty" json:"unidad,omitempty"`
	Period  string   `yaml:"periodo,omitempty" json:"periodo,omitempty"`
	Notes   string   `yaml:"notas,omitempty" json:"notas,omitempty"`
}

// Period is an analyst-defined historical sub-period (inclusive years).
type Period struct {
	Name  string `yaml:"nombre" json:"nombre"`
	Start int    `yaml:"inicio" json:"inicio"`
	End   int    `yaml:"fin" json:"fin"`
}

// Contains reports whether year falls inside the period.
func (p Period) Contains(year int) bool {
	return year >= p.Start && year <= p.End
}

// TablePageRequest captures the inputs needed to build a table page.
type TablePageRequest struct {
	TableID     string
	Title       string
	Description string
	PathPrefix  string
	Page        int
	Styles      StyleSpec
}

// RefreshHook is notified after the validated-table cache is dropped so
// transports (WebSocket/SSE) can tell open pages to reload.
type RefreshHook interface {
	TablesRefreshed(ctx context.Context, event RefreshEvent) error
}
