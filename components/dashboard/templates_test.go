package dashboard

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"net/http"
	"strings"
	"testing"
)

func newTemplateController(t *testing.T, rows int, images []string) *Controller {
	t.Helper()
	renderer, err := NewTemplateRenderer()
	if err != nil {
		t.Fatalf("NewTemplateRenderer returned error: %v", err)
	}
	service := NewService(Options{
		Config: mustConfig(t, fiscalManifest),
		Tables: &stubTables{tables: map[string]*Dataset{"ingresos_totales": yearsDataset(rows)}},
		Images: &stubImages{names: images},
	})
	return NewController(ControllerOptions{Service: service, Renderer: renderer, LiveURL: "/ws/refresh"})
}

func assertContainsAll(t *testing.T, html string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in rendered page:\n%s", want, html)
		}
	}
}

func TestTemplatesFSHoldsPages(t *testing.T) {
	for _, name := range []string{TemplateIndex, TemplateSection, TemplateTable, TemplateError} {
		if _, err := fs.Stat(TemplatesFS(), name); err != nil {
			t.Fatalf("expected embedded template %s: %v", name, err)
		}
	}
}

func TestTemplateRendererIgnoresWorkingDirectory(t *testing.T) {
	t.Chdir(t.TempDir())
	controller := newTemplateController(t, 1, nil)

	var buf bytes.Buffer
	if err := controller.RenderIndex(context.Background(), &buf); err != nil {
		t.Fatalf("RenderIndex returned error: %v", err)
	}
	assertContainsAll(t, buf.String(), "<h1>Tablero</h1>")
}

func TestTemplatesRenderIndex(t *testing.T) {
	controller := newTemplateController(t, 1, nil)

	var buf bytes.Buffer
	if err := controller.RenderIndex(context.Background(), &buf); err != nil {
		t.Fatalf("RenderIndex returned error: %v", err)
	}
	assertContainsAll(t, buf.String(),
		"<title>Tablero</title>",
		`<a href="/secciones/sector_fiscal">Sector Fiscal</a>`,
		`<a href="/secciones/sector_real">Sector Real</a>`,
		"(2 tablas)",
		"(1 tablas)",
	)
}

func TestTemplatesRenderSection(t *testing.T) {
	controller := newTemplateController(t, 1, nil)

	var buf bytes.Buffer
	if err := controller.RenderSection(context.Background(), "sector_fiscal", &buf); err != nil {
		t.Fatalf("RenderSection returned error: %v", err)
	}
	assertContainsAll(t, buf.String(),
		"<title>Sector Fiscal | Tablero</title>",
		"<h1>Sector Fiscal</h1>",
		`<a href="/tablas/ingresos_totales">Ingresos Totales</a>`,
		`<li class="unavailable">Gastos (sin datos)</li>`,
	)
}

func TestTemplatesRenderTablePage(t *testing.T) {
	controller := newTemplateController(t, 25, []string{"ingresos_totales_valor_full.png"})

	var buf bytes.Buffer
	if err := controller.RenderTable(context.Background(), "ingresos_totales", 2, &buf); err != nil {
		t.Fatalf("RenderTable returned error: %v", err)
	}
	html := buf.String()
	assertContainsAll(t, html,
		"<title>Ingresos Totales | Tablero</title>",
		"<h1>Ingresos Totales</h1>",
		"<p>Sector público no financiero.</p>",
		"<dd>Millones de bolivianos</dd>",
		"<dd>Ministerio de Economía</dd>",
		`<a href="/secciones/sector_fiscal">Sector Fiscal</a>`,
		`<label for="tab-serie-completa">Serie completa</label>`,
		`<label for="tab-sub-series">Sub-series</label>`,
		`id="tab-serie-completa" checked`,
		`<img src="/assets/charts/sector_fiscal/ingresos_totales/ingresos_totales_valor_full.png" alt="ingresos_totales_valor_full.png">`,
		`<p class="placeholder">No hay gráficos en esta categoría</p>`,
		"<th ",
		">anio</th>",
		">2010</td>",
		">10</td>",
		"font-size: 14px;",
		`<a href="/tablas/ingresos_totales?page=1">`,
		`<a href="/tablas/ingresos_totales?page=3">`,
		"Página 2 de 3",
		`"/ws/refresh"`,
	)
	if strings.Contains(html, ">2000</td>") {
		t.Fatalf("rows of the first page must not render on page 2")
	}
	if strings.Contains(html, `class="fallback"`) {
		t.Fatalf("fallback must not render when charts exist")
	}
}

func TestTemplatesRenderTableWithoutCharts(t *testing.T) {
	controller := newTemplateController(t, 3, nil)

	var buf bytes.Buffer
	if err := controller.RenderTable(context.Background(), "ingresos_totales", 1, &buf); err != nil {
		t.Fatalf("RenderTable returned error: %v", err)
	}
	html := buf.String()
	assertContainsAll(t, html,
		`<p class="fallback">Todavía no se generaron gráficos para esta tabla.</p>`,
		"Página 1 de 1",
	)
	if strings.Count(html, `<p class="placeholder">`) != 2 {
		t.Fatalf("expected both tabs to show the placeholder")
	}
	if strings.Contains(html, " checked") {
		t.Fatalf("no tab should be active without charts")
	}
	if strings.Contains(html, "?page=") {
		t.Fatalf("single page must not render pager links")
	}
}

func TestTemplatesRenderError(t *testing.T) {
	controller := newTemplateController(t, 1, nil)

	var buf bytes.Buffer
	if err := controller.RenderError(http.StatusNotFound, errors.New("tabla desconocida"), &buf); err != nil {
		t.Fatalf("RenderError returned error: %v", err)
	}
	assertContainsAll(t, buf.String(), "<h1>Error 404</h1>", "<p>tabla desconocida</p>")
}
