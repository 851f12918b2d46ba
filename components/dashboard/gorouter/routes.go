package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	"github.com/goliatone/go-macro-dashboard/components/dashboard"
	"github.com/goliatone/go-macro-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-macro-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-macro-dashboard/components/dashboard/queries"
)

// DashboardService is the read side the routes need beyond the Executor.
type DashboardService interface {
	Config() *dashboard.Config
	TableMetadata(tableID string) (dashboard.TableMetadata, bool)
	SeriesChart(ctx context.Context, tableID string) (string, error)
}

// Config wires go-router with the dashboard controller, service, and API.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *dashboard.Controller
	Service    DashboardService
	API        httpapi.Executor
	Broadcast  *dashboard.BroadcastHook
	Logger     *zap.Logger
	// AssetsDir is the on-disk root of the rendered chart images.
	AssetsDir string
	BasePath  string
	Routes    RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	Index       string
	Section     string
	Table       string
	TableChart  string
	APISections string
	APITable    string
	APIMetadata string
	APIPage     string
	APIStyles   string
	APIRefresh  string
	Charts      string
	WebSocket   string
}

// Register mounts the dashboard HTML pages, JSON API, chart assets, and the
// refresh WebSocket on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	if cfg.Service == nil {
		return errors.New("gorouter: service is required")
	}
	routes := cfg.routes()
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.AssetsDir != "" {
		cfg.Router.Static(routes.Charts, cfg.AssetsDir, router.Static{
			Root:   cfg.AssetsDir,
			MaxAge: 3600,
		})
	}

	r := cfg.Router
	if base := strings.TrimRight(cfg.BasePath, "/"); base != "" {
		r = cfg.Router.Group(base)
	}
	h := &handlers{
		controller: cfg.Controller,
		service:    cfg.Service,
		api:        cfg.API,
		logger:     logger,
	}

	r.Get(routes.Index, router.WrapHandler(func(ctx router.Context) error {
		return h.index(ctx)
	}))
	r.Get(routes.Section, router.WrapHandler(func(ctx router.Context) error {
		return h.section(ctx, ctx.Param("section"))
	}))
	r.Get(routes.Table, router.WrapHandler(func(ctx router.Context) error {
		return h.table(ctx, ctx.Param("table"), httpapi.PageParam(ctx.Query("page")))
	}))
	r.Get(routes.TableChart, router.WrapHandler(func(ctx router.Context) error {
		return h.chart(ctx, ctx.Param("table"))
	}))
	r.Get(routes.APISections, router.WrapHandler(func(ctx router.Context) error {
		return h.apiSections(ctx)
	}))
	r.Get(routes.APIMetadata, router.WrapHandler(func(ctx router.Context) error {
		return h.apiMetadata(ctx, ctx.Param("table"))
	}))
	r.Get(routes.APIStyles, router.WrapHandler(func(ctx router.Context) error {
		return ctx.JSON(http.StatusOK, dashboard.DefaultStyles())
	}))

	if cfg.API != nil {
		r.Get(routes.APITable, router.WrapHandler(func(ctx router.Context) error {
			return h.apiTable(ctx, ctx.Param("table"))
		}))
		r.Get(routes.APIPage, router.WrapHandler(func(ctx router.Context) error {
			return h.apiPage(ctx, ctx.Param("table"), httpapi.PageParam(ctx.Query("page")))
		}))
		r.Post(routes.APIRefresh, router.WrapHandler(func(ctx router.Context) error {
			return h.apiRefresh(ctx, ctx.Body())
		}))
	}
	if cfg.Broadcast != nil {
		registerWebSocket(r, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

// responder is the slice of router.Context the handlers write through.
type responder interface {
	Context() context.Context
	JSON(code int, v any) error
	Send(b []byte) error
	SetHeader(k, v string) router.Context
}

type handlers struct {
	controller *dashboard.Controller
	service    DashboardService
	api        httpapi.Executor
	logger     *zap.Logger
}

func (h *handlers) index(ctx responder) error {
	return h.page(ctx, func(out io.Writer) error {
		return h.controller.RenderIndex(ctx.Context(), out)
	})
}

func (h *handlers) section(ctx responder, key string) error {
	return h.page(ctx, func(out io.Writer) error {
		return h.controller.RenderSection(ctx.Context(), key, out)
	})
}

func (h *handlers) table(ctx responder, tableID string, page int) error {
	return h.page(ctx, func(out io.Writer) error {
		return h.controller.RenderTable(ctx.Context(), tableID, page, out)
	})
}

func (h *handlers) chart(ctx responder, tableID string) error {
	html, err := h.service.SeriesChart(ctx.Context(), tableID)
	if err != nil {
		return h.fail(ctx, err)
	}
	return sendHTML(ctx, http.StatusOK, []byte(html))
}

func (h *handlers) apiSections(ctx responder) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"title":    h.service.Config().Title(),
		"sections": h.service.Config().Sections(),
	})
}

func (h *handlers) apiMetadata(ctx responder, tableID string) error {
	meta, ok := h.service.TableMetadata(tableID)
	if !ok {
		return respondError(ctx, http.StatusNotFound, errors.New("no metadata for table "+tableID))
	}
	return ctx.JSON(http.StatusOK, meta)
}

func (h *handlers) apiTable(ctx responder, tableID string) error {
	entry, err := h.api.TableConfig(ctx.Context(), queries.TableConfigInput{TableID: tableID})
	if err != nil {
		return respondError(ctx, httpapi.StatusCode(err), err)
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (h *handlers) apiPage(ctx responder, tableID string, page int) error {
	result, err := h.api.TablePage(ctx.Context(), queries.TablePageInput{TableID: tableID, Page: page})
	if err != nil {
		return respondError(ctx, httpapi.StatusCode(err), err)
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"page":   result,
		"layout": result.Layout(),
	})
}

func (h *handlers) apiRefresh(ctx responder, body []byte) error {
	var payload commands.RefreshTablesInput
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
	}
	if err := h.api.Refresh(ctx.Context(), payload); err != nil {
		return respondError(ctx, httpapi.StatusCode(err), err)
	}
	return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
}

// page renders an HTML page, falling back to the error template on failure.
func (h *handlers) page(ctx responder, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return h.fail(ctx, err)
	}
	return sendHTML(ctx, http.StatusOK, buf.Bytes())
}

func (h *handlers) fail(ctx responder, cause error) error {
	status := httpapi.StatusCode(cause)
	if status >= http.StatusInternalServerError {
		h.logger.Error("page failed", zap.Error(cause))
	}
	var buf bytes.Buffer
	if err := h.controller.RenderError(status, cause, &buf); err != nil {
		return respondError(ctx, status, cause)
	}
	return sendHTML(ctx, status, buf.Bytes())
}

func sendHTML(ctx responder, status int, body []byte) error {
	if setter, ok := ctx.(interface{ Status(int) router.Context }); ok && status != http.StatusOK {
		setter.Status(status)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(body)
}

func respondError(ctx responder, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func (cfg Config[T]) routes() RouteConfig {
	return defaultRouteConfig(cfg.Routes)
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Index == "" {
		routes.Index = "/"
	}
	if routes.Section == "" {
		routes.Section = "/secciones/:section"
	}
	if routes.Table == "" {
		routes.Table = "/tablas/:table"
	}
	if routes.TableChart == "" {
		routes.TableChart = "/tablas/:table/grafico"
	}
	if routes.APISections == "" {
		routes.APISections = "/api/secciones"
	}
	if routes.APITable == "" {
		routes.APITable = "/api/tablas/:table"
	}
	if routes.APIMetadata == "" {
		routes.APIMetadata = "/api/tablas/:table/metadata"
	}
	if routes.APIPage == "" {
		routes.APIPage = "/api/tablas/:table/pagina"
	}
	if routes.APIStyles == "" {
		routes.APIStyles = "/api/estilos"
	}
	if routes.APIRefresh == "" {
		routes.APIRefresh = "/api/tablas/refresh"
	}
	if routes.Charts == "" {
		routes.Charts = dashboard.DefaultChartsBasePath
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws/refresh"
	}
	return routes
}
