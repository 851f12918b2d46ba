package main

import (
	"fmt"

	"go.uber.org/zap"

	core "github.com/goliatone/go-macro-dashboard/components/dashboard"
	macrodash "github.com/goliatone/go-macro-dashboard/pkg/dashboard"
	"github.com/goliatone/go-macro-dashboard/pkg/tablestore"
)

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadConfig reads the manifest and logs tables declared in more than one section.
func (g *Globals) loadConfig(logger *zap.Logger) (*core.Config, error) {
	cfg, err := macrodash.LoadConfig(g.Manifest)
	if err != nil {
		return nil, err
	}
	for _, name := range cfg.DuplicateTables() {
		logger.Warn("table declared in more than one section; first declaration wins", zap.String("table", name))
	}
	return cfg, nil
}

func (g *Globals) openStore(cfg *core.Config, logger *zap.Logger) (*tablestore.Store, error) {
	store, err := tablestore.Open(tablestore.Config{
		Driver: g.Driver,
		DSN:    g.DSN,
		Tables: cfg.TableNames(),
		TTL:    g.TTL,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("macrodash: open %s database: %w", g.Driver, err)
	}
	return store, nil
}
