package remote

import (
	"context"
	"io"
)

// CSVSource fetches the published CSV export of a table.
type CSVSource interface {
	FetchCSV(ctx context.Context, table string) (io.ReadCloser, error)
}
