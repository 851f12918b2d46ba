package main

import (
	"context"

	"github.com/goliatone/go-macro-dashboard/components/analysis"
	core "github.com/goliatone/go-macro-dashboard/components/dashboard"
	"github.com/goliatone/go-macro-dashboard/components/dashboard/commands"
)

type renderCmd struct {
	Table  []string `help:"Only render these tables (repeatable). Defaults to every manifest table."`
	Width  int      `default:"1200" help:"Chart width in pixels."`
	Height int      `default:"600" help:"Chart height in pixels."`
}

func (cmd *renderCmd) Run(ctx context.Context, g *Globals) error {
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

	charts := analysis.NewChartRenderer(analysis.RendererOptions{
		OutDir: g.AssetsDir,
		Width:  cmd.Width,
		Height: cmd.Height,
		Logger: logger,
	})
	render := commands.NewRenderChartsCommand(cfg, store, charts, logger, core.NewZapTelemetry(logger))
	return render.Execute(ctx, commands.RenderChartsInput{Tables: cmd.Table})
}
