package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-macro-dashboard/components/dashboard"
	"github.com/goliatone/go-macro-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-macro-dashboard/components/dashboard/queries"
)

// Executor is the transport-neutral API surface shared by the net/http
// handlers and the go-router adapter.
type Executor interface {
	TableConfig(ctx context.Context, input queries.TableConfigInput) (dashboard.TableEntry, error)
	TablePage(ctx context.Context, input queries.TablePageInput) (dashboard.TablePage, error)
	Refresh(ctx context.Context, input commands.RefreshTablesInput) error
}

// CommandExecutor adapts go-command queriers and commanders to Executor.
type CommandExecutor struct {
	TableConfigQuerier gocommand.Querier[queries.TableConfigInput, dashboard.TableEntry]
	TablePageQuerier   gocommand.Querier[queries.TablePageInput, dashboard.TablePage]
	RefreshCommander   gocommand.Commander[commands.RefreshTablesInput]
}

var _ Executor = (*CommandExecutor)(nil)

var errNotConfigured = errors.New("httpapi: handler not configured")

func (e *CommandExecutor) TableConfig(ctx context.Context, input queries.TableConfigInput) (dashboard.TableEntry, error) {
	if e.TableConfigQuerier == nil {
		return dashboard.TableEntry{}, errNotConfigured
	}
	return e.TableConfigQuerier.Query(ctx, input)
}

func (e *CommandExecutor) TablePage(ctx context.Context, input queries.TablePageInput) (dashboard.TablePage, error) {
	if e.TablePageQuerier == nil {
		return dashboard.TablePage{}, errNotConfigured
	}
	return e.TablePageQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshTablesInput) error {
	if e.RefreshCommander == nil {
		return errNotConfigured
	}
	return e.RefreshCommander.Execute(ctx, input)
}

// Handlers exposes net/http endpoints backed by an Executor.
type Handlers struct {
	API Executor
}

// HandleTableConfig writes the manifest entry for tableID.
func (h *Handlers) HandleTableConfig(w http.ResponseWriter, r *http.Request, tableID string) {
	entry, err := h.API.TableConfig(r.Context(), queries.TableConfigInput{TableID: tableID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleTablePage writes the page model for tableID. The page number comes
// from the "page" query parameter.
func (h *Handlers) HandleTablePage(w http.ResponseWriter, r *http.Request, tableID string) {
	page := PageParam(r.URL.Query().Get("page"))
	result, err := h.API.TablePage(r.Context(), queries.TablePageInput{TableID: tableID, Page: page})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleRefresh drops the validated-table cache.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var payload commands.RefreshTablesInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.API.Refresh(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// StatusCode maps dashboard errors onto HTTP status codes.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case dashboard.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PageParam parses a 1-based page number, defaulting to the first page.
func PageParam(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusCode(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
