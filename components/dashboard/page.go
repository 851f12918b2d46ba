package dashboard

const (
	// TabFullSeries identifies the whole-range chart tab.
	TabFullSeries = "serie-completa"
	// TabSubSeries identifies the sub-period chart tab.
	TabSubSeries = "sub-series"

	fullSeriesLabel     = "Serie completa"
	subSeriesLabel      = "Sub-series"
	emptyTabPlaceholder = "No hay gráficos en esta categoría"
	noChartsFallback    = "Todavía no se generaron gráficos para esta tabla."
)

// TablePage is the renderable description of a table page.
type TablePage struct {
	TableID     string         `json:"table_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Metadata    *TableMetadata `json:"metadata,omitempty"`
	Tabs        []ChartTab     `json:"tabs"`
	ActiveTab   string         `json:"active_tab,omitempty"`
	Fallback    string         `json:"fallback,omitempty"`
	ChartURL    string         `json:"chart_url,omitempty"`
	Table       DataTable      `json:"table"`
}

// ChartTab groups chart images shown together.
type ChartTab struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Images      []ChartImage `json:"images,omitempty"`
	Placeholder string       `json:"placeholder,omitempty"`
}

// Empty reports whether the tab has no images.
func (t ChartTab) Empty() bool { return len(t.Images) == 0 }

// ChartImage is a single pre-rendered chart.
type ChartImage struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DataTable is the paginated rendering of a dataset. Rows hold the formatted
// cells of the current page only; Records hold the whole dataset.
type DataTable struct {
	Columns     []string         `json:"columns"`
	Records     []map[string]any `json:"records"`
	Rows        [][]string       `json:"rows"`
	Window      PageWindow       `json:"window"`
	Styles      StyleSpec        `json:"styles"`
	TableStyle  string           `json:"table_style"`
	CellStyle   string           `json:"cell_style"`
	HeaderStyle string           `json:"header_style"`
}

// Node is a generic layout node used to describe a page as a tree.
type Node struct {
	Type     string         `json:"type"`
	ID       string         `json:"id,omitempty"`
	Props    map[string]any `json:"props,omitempty"`
	Children []Node         `json:"children,omitempty"`
}

// Layout returns the page as a tree of layout nodes.
func (p TablePage) Layout() Node {
	header := Node{
		Type:  "header",
		Props: map[string]any{"title": p.Title, "description": p.Description},
	}
	root := Node{
		Type:     "container",
		ID:       p.TableID,
		Children: []Node{header},
	}
	if p.Metadata != nil {
		root.Children = append(root.Children, Node{
			Type:  "metadata",
			Props: map[string]any{"metadata": *p.Metadata},
		})
	}

	tabs := Node{
		Type:  "tabs",
		ID:    p.TableID + "-tabs",
		Props: map[string]any{"active": p.ActiveTab},
	}
	for _, tab := range p.Tabs {
		child := Node{
			Type:  "tab",
			ID:    tab.ID,
			Props: map[string]any{"label": tab.Label},
		}
		if tab.Empty() {
			child.Children = []Node{{Type: "placeholder", Props: map[string]any{"text": tab.Placeholder}}}
		} else {
			grid := Node{Type: "image-grid"}
			for _, img := range tab.Images {
				grid.Children = append(grid.Children, Node{
					Type:  "image",
					ID:    img.Name,
					Props: map[string]any{"src": img.URL, "alt": img.Name},
				})
			}
			child.Children = []Node{grid}
		}
		tabs.Children = append(tabs.Children, child)
	}
	root.Children = append(root.Children, tabs)
	if p.Fallback != "" {
		root.Children = append(root.Children, Node{Type: "text", Props: map[string]any{"text": p.Fallback}})
	}

	root.Children = append(root.Children, Node{
		Type: "data-table",
		ID:   p.TableID + "-table",
		Props: map[string]any{
			"columns":   p.Table.Columns,
			"data":      p.Table.Records,
			"page_size": p.Table.Window.PageSize,
			"page":      p.Table.Window.Page,
			"styles":    p.Table.Styles,
		},
	})
	return root
}

func buildChartTabs(basePath, prefix, tableID string, names []string) ([]ChartTab, string) {
	full, sub := PartitionImages(names)
	tabs := []ChartTab{
		newChartTab(TabFullSeries, fullSeriesLabel, basePath, prefix, tableID, full),
		newChartTab(TabSubSeries, subSeriesLabel, basePath, prefix, tableID, sub),
	}
	active := ""
	for _, tab := range tabs {
		if !tab.Empty() {
			active = tab.ID
			break
		}
	}
	return tabs, active
}

func newChartTab(id, label, basePath, prefix, tableID string, names []string) ChartTab {
	tab := ChartTab{ID: id, Label: label}
	if len(names) == 0 {
		tab.Placeholder = emptyTabPlaceholder
		return tab
	}
	tab.Images = make([]ChartImage, len(names))
	for i, name := range names {
		tab.Images[i] = ChartImage{Name: name, URL: ImageURL(basePath, prefix, tableID, name)}
	}
	return tab
}

func buildDataTable(ds *Dataset, page, pageSize int, styles StyleSpec) DataTable {
	window := Paginate(len(ds.Rows), page, pageSize)
	rows := make([][]string, 0, window.End-window.Start)
	for _, row := range ds.Rows[window.Start:window.End] {
		cells := make([]string, 0, len(row.Values)+1)
		cells = append(cells, row.Label)
		for _, value := range row.Values {
			cells = append(cells, FormatValue(value))
		}
		rows = append(rows, cells)
	}
	return DataTable{
		Columns:     ds.AllColumns(),
		Records:     ds.Records(),
		Rows:        rows,
		Window:      window,
		Styles:      styles,
		TableStyle:  styles.CSS(StyleTable),
		CellStyle:   styles.CSS(StyleCell),
		HeaderStyle: styles.CSS(StyleHeader),
	}
}
