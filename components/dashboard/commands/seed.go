package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gocommand "github.com/goliatone/go-command"
)

// SeedTablesInput points at a directory of <table>.csv files.
type SeedTablesInput struct {
	Dir string
	// Only limits the import to these table names when set.
	Only []string
}

type csvImporter interface {
	ImportCSV(ctx context.Context, table string, r io.Reader) (int, error)
}

// SeedTablesCommand loads CSV files into the table store.
type SeedTablesCommand struct {
	store     csvImporter
	telemetry Telemetry
}

// NewSeedTablesCommand wires dependencies.
func NewSeedTablesCommand(store csvImporter, telemetry Telemetry) *SeedTablesCommand {
	return &SeedTablesCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SeedTablesInput] = (*SeedTablesCommand)(nil)

// Execute imports every matching CSV file, named after its table.
func (c *SeedTablesCommand) Execute(ctx context.Context, msg SeedTablesInput) error {
	if c.store == nil {
		return errors.New("seed command requires table store")
	}
	paths, err := filepath.Glob(filepath.Join(msg.Dir, "*.csv"))
	if err != nil {
		return err
	}
	only := make(map[string]struct{}, len(msg.Only))
	for _, name := range msg.Only {
		only[name] = struct{}{}
	}
	imported, rows := 0, 0
	for _, path := range paths {
		table := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if _, ok := only[table]; len(only) > 0 && !ok {
			continue
		}
		n, err := c.importFile(ctx, table, path)
		if err != nil {
			return err
		}
		imported++
		rows += n
	}
	c.telemetry.Record(ctx, "dashboard.command.seed", map[string]any{
		"dir":    msg.Dir,
		"tables": imported,
		"rows":   rows,
	})
	return nil
}

func (c *SeedTablesCommand) importFile(ctx context.Context, table, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	n, err := c.store.ImportCSV(ctx, table, f)
	if err != nil {
		return n, fmt.Errorf("seed %s: %w", filepath.Base(path), err)
	}
	return n, nil
}
