package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RefreshTablesInput requests that cached tables are reloaded on next use.
type RefreshTablesInput struct {
	Reason string `json:"reason,omitempty"`
}

type tableRefresher interface {
	RefreshTables(ctx context.Context) error
}

// RefreshTablesCommand drops the validated-table cache.
type RefreshTablesCommand struct {
	service   tableRefresher
	telemetry Telemetry
}

// NewRefreshTablesCommand creates the command.
func NewRefreshTablesCommand(service tableRefresher, telemetry Telemetry) *RefreshTablesCommand {
	return &RefreshTablesCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshTablesInput] = (*RefreshTablesCommand)(nil)

// Execute invalidates the table cache through the service.
func (c *RefreshTablesCommand) Execute(ctx context.Context, msg RefreshTablesInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if err := c.service.RefreshTables(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.refresh", map[string]any{
		"reason": msg.Reason,
	})
	return nil
}
