package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"go.uber.org/zap"

	"github.com/goliatone/go-macro-dashboard/components/analysis"
	dashboard "github.com/goliatone/go-macro-dashboard/components/dashboard"
)

// RenderChartsInput selects the tables to render. Empty means every manifest table.
type RenderChartsInput struct {
	Tables []string
}

type chartWriter interface {
	RenderTable(ctx context.Context, ds *dashboard.Dataset, req analysis.RenderRequest) (analysis.RenderResult, error)
}

// RenderChartsCommand writes the PNG charts the table pages display.
type RenderChartsCommand struct {
	config    *dashboard.Config
	tables    dashboard.TableSource
	charts    chartWriter
	logger    *zap.Logger
	telemetry Telemetry
}

// NewRenderChartsCommand wires dependencies.
func NewRenderChartsCommand(config *dashboard.Config, tables dashboard.TableSource, charts chartWriter, logger *zap.Logger, telemetry Telemetry) *RenderChartsCommand {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RenderChartsCommand{
		config:    config,
		tables:    tables,
		charts:    charts,
		logger:    logger,
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[RenderChartsInput] = (*RenderChartsCommand)(nil)

// Execute renders charts for each selected table. Explicitly requested tables
// must exist; when rendering everything, tables without data are skipped.
func (c *RenderChartsCommand) Execute(ctx context.Context, msg RenderChartsInput) error {
	if c.config == nil || c.tables == nil || c.charts == nil {
		return errors.New("render command requires config, tables, and chart renderer")
	}
	datasets, err := c.tables.LoadValidatedTables(ctx)
	if err != nil {
		return err
	}
	explicit := len(msg.Tables) > 0
	names := msg.Tables
	if !explicit {
		names = c.config.TableNames()
	}

	files := 0
	for _, name := range names {
		ds, ok := datasets[name]
		if !ok {
			if explicit {
				return &dashboard.DataNotFoundError{Table: name}
			}
			c.logger.Warn("no validated data, charts skipped", zap.String("table", name))
			continue
		}
		req := analysis.RenderRequest{
			TableID: name,
			Prefix:  c.config.SectionPath(name),
			Periods: c.config.PeriodsFor(name),
		}
		if entry, ok := c.config.TableConfig(name); ok {
			req.Title = entry.Label
		}
		result, err := c.charts.RenderTable(ctx, ds, req)
		if err != nil {
			return err
		}
		files += len(result.Files)
	}
	c.telemetry.Record(ctx, "dashboard.command.render", map[string]any{
		"tables": len(names),
		"files":  files,
	})
	return nil
}
