package main

import (
	"context"

	core "github.com/goliatone/go-macro-dashboard/components/dashboard"
	"github.com/goliatone/go-macro-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-macro-dashboard/pkg/remote"
)

type importCmd struct {
	Dir  string   `arg:"" type:"existingdir" help:"Directory of <table>.csv files."`
	Only []string `help:"Only import these tables (repeatable)."`
}

func (cmd *importCmd) Run(ctx context.Context, g *Globals) error {
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

	seed := commands.NewSeedTablesCommand(store, core.NewZapTelemetry(logger))
	return seed.Execute(ctx, commands.SeedTablesInput{Dir: cmd.Dir, Only: cmd.Only})
}

type fetchCmd struct {
	URL    string   `required:"" env:"MACRODASH_SOURCE_URL" help:"Base URL serving <table>.csv exports."`
	APIKey string   `name:"api-key" env:"MACRODASH_SOURCE_KEY" help:"Bearer token for the source."`
	Table  []string `help:"Only fetch these tables (repeatable). Defaults to every manifest table."`
}

func (cmd *fetchCmd) Run(ctx context.Context, g *Globals) error {
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

	source, err := remote.NewHTTPClient(remote.HTTPConfig{BaseURL: cmd.URL, APIKey: cmd.APIKey})
	if err != nil {
		return err
	}
	fetch := commands.NewFetchTablesCommand(cfg, source, store, logger, core.NewZapTelemetry(logger))
	return fetch.Execute(ctx, commands.FetchTablesInput{Tables: cmd.Table})
}
