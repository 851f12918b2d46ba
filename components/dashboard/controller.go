package dashboard

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// Template names rendered by the controller.
const (
	TemplateIndex   = "index.html"
	TemplateSection = "section.html"
	TemplateTable   = "table.html"
	TemplateError   = "error.html"
)

// PageService is the subset of Service the controller renders from.
type PageService interface {
	Config() *Config
	TablePage(ctx context.Context, tableID string, page int) (TablePage, error)
	SectionTables(ctx context.Context, key string) (Section, map[string]bool, error)
}

// ControllerOptions wires the controller's collaborators.
type ControllerOptions struct {
	Service  PageService
	Renderer Renderer
	// LiveURL is the refresh WebSocket path; table pages reload on events
	// when set.
	LiveURL string
}

// Controller turns service results into HTML pages.
type Controller struct {
	service  PageService
	renderer Renderer
	liveURL  string
}

// NewController wires the service and renderer into a controller.
func NewController(opts ControllerOptions) *Controller {
	return &Controller{service: opts.Service, renderer: opts.Renderer, liveURL: opts.LiveURL}
}

// SectionLink is a navigation entry for a table inside a section page.
type SectionLink struct {
	Table     string `json:"tabla"`
	Label     string `json:"label"`
	URL       string `json:"url"`
	Available bool   `json:"available"`
}

// RenderIndex writes the section index.
func (c *Controller) RenderIndex(ctx context.Context, out io.Writer) error {
	if err := c.ready(); err != nil {
		return err
	}
	cfg := c.service.Config()
	return c.render(TemplateIndex, map[string]any{
		"title":    siteTitle(cfg),
		"sections": cfg.Sections(),
	}, out)
}

// RenderSection writes the table list for a section.
func (c *Controller) RenderSection(ctx context.Context, key string, out io.Writer) error {
	if err := c.ready(); err != nil {
		return err
	}
	section, available, err := c.service.SectionTables(ctx, key)
	if err != nil {
		return err
	}
	links := make([]SectionLink, 0, len(section.Tables))
	for _, entry := range section.Tables {
		links = append(links, SectionLink{
			Table:     entry.Table,
			Label:     entry.Label,
			URL:       TableURL(entry.Table),
			Available: available[entry.Table],
		})
	}
	return c.render(TemplateSection, map[string]any{
		"title":   siteTitle(c.service.Config()),
		"section": section,
		"tables":  links,
	}, out)
}

// RenderTable writes the table page for tableID.
func (c *Controller) RenderTable(ctx context.Context, tableID string, page int, out io.Writer) error {
	if err := c.ready(); err != nil {
		return err
	}
	tablePage, err := c.service.TablePage(ctx, tableID, page)
	if err != nil {
		return err
	}
	window := tablePage.Table.Window
	data := map[string]any{
		"title":     siteTitle(c.service.Config()),
		"page":      tablePage,
		"table_url": TableURL(tableID),
	}
	if c.liveURL != "" {
		data["live_url"] = c.liveURL
	}
	if window.HasPrev() {
		data["prev_page"] = window.Page - 1
	}
	if window.HasNext() {
		data["next_page"] = window.Page + 1
	}
	if entry, ok := c.service.Config().TableConfig(tableID); ok {
		if section, ok := c.service.Config().Section(entry.SectionKey); ok {
			data["section"] = section
		}
	}
	return c.render(TemplateTable, data, out)
}

// RenderError writes an error page and returns the status code it represents.
func (c *Controller) RenderError(status int, cause error, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("dashboard: renderer not configured")
	}
	message := http.StatusText(status)
	if cause != nil && status < http.StatusInternalServerError {
		message = cause.Error()
	}
	return c.render(TemplateError, map[string]any{
		"status":  status,
		"message": message,
	}, out)
}

func (c *Controller) ready() error {
	if c.service == nil {
		return errors.New("dashboard: controller service not configured")
	}
	if c.renderer == nil {
		return errors.New("dashboard: renderer not configured")
	}
	return nil
}

func (c *Controller) render(name string, data map[string]any, out io.Writer) error {
	_, err := c.renderer.Render(name, data, out)
	return err
}

// TableURL is the HTML route of a table page.
func TableURL(tableID string) string {
	return "/tablas/" + tableID
}

// SectionURL is the HTML route of a section page.
func SectionURL(key string) string {
	return "/secciones/" + key
}

func siteTitle(cfg *Config) string {
	if cfg != nil && cfg.Title() != "" {
		return cfg.Title()
	}
	return "Dashboard"
}
