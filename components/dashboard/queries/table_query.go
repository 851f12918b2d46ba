package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-macro-dashboard/components/dashboard"
)

// TableConfigInput identifies a manifest table.
type TableConfigInput struct {
	TableID string
}

type tableConfigService interface {
	TableConfig(tableID string) (dashboard.TableEntry, bool)
}

// TableConfigQuery resolves a table's manifest entry.
type TableConfigQuery struct {
	service tableConfigService
}

// NewTableConfigQuery builds the query.
func NewTableConfigQuery(service tableConfigService) *TableConfigQuery {
	return &TableConfigQuery{service: service}
}

var _ gocommand.Querier[TableConfigInput, dashboard.TableEntry] = (*TableConfigQuery)(nil)

// Query returns the first manifest entry for the table or a DataNotFoundError.
func (q *TableConfigQuery) Query(_ context.Context, input TableConfigInput) (dashboard.TableEntry, error) {
	entry, ok := q.service.TableConfig(input.TableID)
	if !ok {
		return dashboard.TableEntry{}, &dashboard.DataNotFoundError{Table: input.TableID}
	}
	return entry, nil
}
