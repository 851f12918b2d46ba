package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-macro-dashboard/components/dashboard"
)

// TablePageInput selects a table and data-table page.
type TablePageInput struct {
	TableID string
	Page    int
}

type pageService interface {
	TablePage(ctx context.Context, tableID string, page int) (dashboard.TablePage, error)
}

// TablePageQuery builds the page model for a table.
type TablePageQuery struct {
	service pageService
}

// NewTablePageQuery builds the query.
func NewTablePageQuery(service pageService) *TablePageQuery {
	return &TablePageQuery{service: service}
}

var _ gocommand.Querier[TablePageInput, dashboard.TablePage] = (*TablePageQuery)(nil)

// Query delegates to the service.
func (q *TablePageQuery) Query(ctx context.Context, input TablePageInput) (dashboard.TablePage, error) {
	return q.service.TablePage(ctx, input.TableID, input.Page)
}
