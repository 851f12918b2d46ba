package queries

import (
	"context"
	"testing"

	dashboard "github.com/goliatone/go-macro-dashboard/components/dashboard"
)

type stubConfigService struct {
	entries map[string]dashboard.TableEntry
}

func (s *stubConfigService) TableConfig(tableID string) (dashboard.TableEntry, bool) {
	entry, ok := s.entries[tableID]
	return entry, ok
}

type stubPageService struct {
	calls    int
	lastID   string
	lastPage int
}

func (s *stubPageService) TablePage(_ context.Context, tableID string, page int) (dashboard.TablePage, error) {
	s.calls++
	s.lastID, s.lastPage = tableID, page
	return dashboard.TablePage{TableID: tableID}, nil
}

func TestTableConfigQuery(t *testing.T) {
	service := &stubConfigService{entries: map[string]dashboard.TableEntry{
		"ingresos_totales": {Table: "ingresos_totales", Label: "Ingresos Totales"},
	}}
	query := NewTableConfigQuery(service)

	entry, err := query.Query(context.Background(), TableConfigInput{TableID: "ingresos_totales"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if entry.Label != "Ingresos Totales" {
		t.Fatalf("expected label Ingresos Totales, got %q", entry.Label)
	}

	_, err = query.Query(context.Background(), TableConfigInput{TableID: "tabla_inexistente"})
	if !dashboard.IsDataNotFound(err) {
		t.Fatalf("expected DataNotFoundError, got %v", err)
	}
}

func TestTablePageQuery(t *testing.T) {
	service := &stubPageService{}
	query := NewTablePageQuery(service)
	page, err := query.Query(context.Background(), TablePageInput{TableID: "pib_real", Page: 3})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 1 || service.lastID != "pib_real" || service.lastPage != 3 {
		t.Fatalf("unexpected service call: %+v", service)
	}
	if page.TableID != "pib_real" {
		t.Fatalf("expected page for pib_real, got %q", page.TableID)
	}
}
