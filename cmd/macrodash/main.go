package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
)

// Globals are flags shared by every subcommand.
type Globals struct {
	Manifest  string        `type:"path" env:"MACRODASH_MANIFEST" help:"Manifest YAML file (defaults to the embedded manifest)."`
	Driver    string        `default:"sqlite" enum:"sqlite,postgres" env:"MACRODASH_DRIVER" help:"Database driver (sqlite, postgres)."`
	DSN       string        `default:"file:macrodash.db" env:"MACRODASH_DSN" help:"Database connection string."`
	AssetsDir string        `name:"assets-dir" default:"assets/charts" type:"path" env:"MACRODASH_ASSETS" help:"Directory holding rendered chart images."`
	TTL       time.Duration `default:"5m" help:"How long validated tables are cached."`
	Debug     bool          `help:"Enable development logging."`
}

type cli struct {
	Globals

	Serve    serveCmd    `cmd:"" default:"withargs" help:"Serve the dashboard over HTTP."`
	Render   renderCmd   `cmd:"" help:"Render PNG analysis charts for manifest tables."`
	Check    checkCmd    `cmd:"" help:"Validate the manifest and report which tables have data."`
	AddTable addTableCmd `cmd:"" name:"add-table" help:"Add a table entry to a manifest file."`
	Import   importCmd   `cmd:"" help:"Import <table>.csv files into the database."`
	Fetch    fetchCmd    `cmd:"" help:"Download published CSV exports and import them."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var app cli
	kctx := kong.Parse(&app,
		kong.Name("macrodash"),
		kong.Description("Bolivian macroeconomic series dashboard."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run(&app.Globals)
	kctx.FatalIfErrorf(err)
}
