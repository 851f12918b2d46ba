package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	core "github.com/goliatone/go-macro-dashboard/components/dashboard"
	"github.com/goliatone/go-macro-dashboard/components/dashboard/commands"
	"github.com/goliatone/go-macro-dashboard/components/dashboard/gorouter"
	"github.com/goliatone/go-macro-dashboard/components/dashboard/httpapi"
	"github.com/goliatone/go-macro-dashboard/components/dashboard/queries"
	macrodash "github.com/goliatone/go-macro-dashboard/pkg/dashboard"
)

const liveRoute = "/ws/refresh"

type serveCmd struct {
	Host        string `default:"127.0.0.1" help:"Interface to listen on."`
	Port        int    `default:"8050" help:"Port to listen on."`
	Open        bool   `help:"Open the dashboard in a browser tab once the server starts."`
	Live        bool   `default:"true" negatable:"" help:"Reload open table pages after a table refresh."`
	EChartsHost string `name:"echarts-host" help:"Alternate host for the ECharts JavaScript assets."`
}

func (cmd *serveCmd) Run(ctx context.Context, g *Globals) error {
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

	chartOpts := []core.SeriesChartOption{}
	if cmd.EChartsHost != "" {
		chartOpts = append(chartOpts, core.WithChartAssetsHost(cmd.EChartsHost))
	}
	hook := core.NewBroadcastHook()
	service := macrodash.NewService(macrodash.Options{
		Config:      cfg,
		Tables:      store,
		Images:      core.NewDirImageLister(os.DirFS(g.AssetsDir)),
		Charts:      core.NewSeriesChartRenderer(chartOpts...),
		Telemetry:   core.NewZapTelemetry(logger),
		RefreshHook: hook,
		Logger:      logger,
	})

	liveURL := ""
	if cmd.Live {
		liveURL = liveRoute
	}
	controller, err := macrodash.NewController(service, liveURL)
	if err != nil {
		return fmt.Errorf("macrodash: load templates: %w", err)
	}
	executor := &httpapi.CommandExecutor{
		TableConfigQuerier: queries.NewTableConfigQuery(service),
		TablePageQuerier:   queries.NewTablePageQuery(service),
		RefreshCommander:   commands.NewRefreshTablesCommand(service, core.NewZapTelemetry(logger)),
	}

	server := router.NewFiberAdapter()
	routes := gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: controller,
		Service:    service,
		API:        executor,
		Logger:     logger,
		AssetsDir:  g.AssetsDir,
		Routes:     gorouter.RouteConfig{WebSocket: liveRoute},
	}
	if cmd.Live {
		routes.Broadcast = hook
	}
	if err := gorouter.Register(routes); err != nil {
		return err
	}

	addr := net.JoinHostPort(cmd.Host, strconv.Itoa(cmd.Port))
	url := "http://" + addr + "/"
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(addr)
	}()
	logger.Info("dashboard listening", zap.String("url", url), zap.Int("tables", len(cfg.TableNames())))
	if cmd.Open {
		go func() {
			time.Sleep(500 * time.Millisecond)
			if err := openBrowser(url); err != nil {
				logger.Warn("open browser failed", zap.Error(err))
			}
		}()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = exec.Command("xdg-open", url)
	default:
		return errors.New("macrodash: no browser launcher for " + runtime.GOOS)
	}
	return cmd.Start()
}
