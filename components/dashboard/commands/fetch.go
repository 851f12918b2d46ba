package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	"go.uber.org/zap"

	dashboard "github.com/goliatone/go-macro-dashboard/components/dashboard"
	"github.com/goliatone/go-macro-dashboard/pkg/remote"
)

// FetchTablesInput selects the tables to download. Empty means every manifest table.
type FetchTablesInput struct {
	Tables []string
}

// FetchTablesCommand downloads published CSV exports and imports them into
// the table store.
type FetchTablesCommand struct {
	config    *dashboard.Config
	source    remote.CSVSource
	store     csvImporter
	logger    *zap.Logger
	telemetry Telemetry
}

// NewFetchTablesCommand wires dependencies.
func NewFetchTablesCommand(config *dashboard.Config, source remote.CSVSource, store csvImporter, logger *zap.Logger, telemetry Telemetry) *FetchTablesCommand {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FetchTablesCommand{
		config:    config,
		source:    source,
		store:     store,
		logger:    logger,
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[FetchTablesInput] = (*FetchTablesCommand)(nil)

// Execute fetches and imports each selected table. Unpublished tables fail an
// explicit request and are skipped otherwise.
func (c *FetchTablesCommand) Execute(ctx context.Context, msg FetchTablesInput) error {
	if c.config == nil || c.source == nil || c.store == nil {
		return errors.New("fetch command requires config, source, and table store")
	}
	explicit := len(msg.Tables) > 0
	names := msg.Tables
	if !explicit {
		names = c.config.TableNames()
	}

	imported, rows := 0, 0
	for _, name := range names {
		n, err := c.fetch(ctx, name)
		if errors.Is(err, remote.ErrNotPublished) && !explicit {
			c.logger.Warn("table not published, skipped", zap.String("table", name))
			continue
		}
		if err != nil {
			return err
		}
		imported++
		rows += n
	}
	c.telemetry.Record(ctx, "dashboard.command.fetch", map[string]any{
		"tables": imported,
		"rows":   rows,
	})
	return nil
}

func (c *FetchTablesCommand) fetch(ctx context.Context, table string) (int, error) {
	body, err := c.source.FetchCSV(ctx, table)
	if err != nil {
		return 0, err
	}
	defer body.Close()
	n, err := c.store.ImportCSV(ctx, table, body)
	if err != nil {
		return n, fmt.Errorf("fetch %s: %w", table, err)
	}
	c.logger.Info("table imported", zap.String("table", table), zap.Int("rows", n))
	return n, nil
}
