// Package dashboard is the public entry point for embedding the macroeconomic
// dashboard in another program.
package dashboard

import (
	core "github.com/goliatone/go-macro-dashboard/components/dashboard"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Config is the resolved manifest configuration.
type Config = core.Config

// Controller renders dashboard HTML pages.
type Controller = core.Controller

// ControllerOptions re-export for convenience.
type ControllerOptions = core.ControllerOptions

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// LoadConfig reads the manifest at path, or the embedded manifest when path
// is empty.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return core.DefaultConfig()
	}
	doc, err := core.ReadManifest(path)
	if err != nil {
		return nil, err
	}
	return core.NewConfig(doc), nil
}

// NewController builds a controller backed by the embedded templates.
func NewController(service *Service, liveURL string) (*Controller, error) {
	renderer, err := core.NewTemplateRenderer()
	if err != nil {
		return nil, err
	}
	return core.NewController(ControllerOptions{
		Service:  service,
		Renderer: renderer,
		LiveURL:  liveURL,
	}), nil
}
