package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	core "github.com/goliatone/go-macro-dashboard/components/dashboard"
)

type checkCmd struct {
	Strict bool `help:"Fail when any manifest table has no validated data."`
}

func (cmd *checkCmd) Run(ctx context.Context, g *Globals) error {
	logger, err := newLogger(g.Debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := g.loadConfig(logger)
	if err != nil {
		return err
	}
	store, err := g.openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	tables, err := store.LoadValidatedTables(ctx)
	if err != nil {
		return err
	}
	missing := writeReport(os.Stdout, cfg, tables)
	if cmd.Strict && missing > 0 {
		return fmt.Errorf("macrodash: %d tables without validated data", missing)
	}
	return nil
}

// writeReport prints one line per manifest table and returns how many have no
// validated dataset.
func writeReport(out io.Writer, cfg *core.Config, tables map[string]*core.Dataset) int {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tTABLE\tSTATUS\tROWS")
	missing := 0
	for _, section := range cfg.Sections() {
		for _, entry := range section.Tables {
			ds, ok := tables[entry.Table]
			if !ok {
				missing++
				fmt.Fprintf(w, "%s\t%s\tsin datos\t-\n", section.Key, entry.Table)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\tok\t%d\n", section.Key, entry.Table, len(ds.Rows))
		}
	}
	for _, name := range cfg.DuplicateTables() {
		fmt.Fprintf(w, "-\t%s\tduplicada\t-\n", name)
	}
	w.Flush()
	return missing
}
