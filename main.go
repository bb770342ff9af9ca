package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/iedon/corner-site-go/config"
	"github.com/iedon/corner-site-go/site"
)

type cli struct {
	Config   string           `short:"c" help:"Path to configuration file (.json, .yaml, .toml). Defaults only when empty." type:"path"`
	LogLevel string           `name:"log-level" help:"Override logLevel (debug, info, warn, error)."`
	Version  kong.VersionFlag `help:"Print version and exit."`

	Build  buildCmd  `cmd:"" default:"1" help:"Generate sitemap, robots.txt, head fragment and theme stylesheet."`
	Routes routesCmd `cmd:"" help:"Print the collected content routes, one per line."`
	Watch  watchCmd  `cmd:"" help:"Build, then rebuild whenever content or static assets change."`
}

// app is bound into every command's Run method.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	ctx    context.Context
}

func main() {
	var args cli
	kctx := kong.Parse(&args,
		kong.Name("corner-site"),
		kong.Description("Static site metadata generator for Corner of Progress."),
		kong.Vars{"version": SERVER_SIGNATURE},
		kong.UsageOnError(),
	)

	cfg, err := config.Load(args.Config)
	if err != nil {
		newLogger(args.LogLevel).Error("config", "error", err)
		os.Exit(1)
	}
	if args.LogLevel != "" {
		cfg.LogLevel = args.LogLevel
	}

	logger := newLogger(cfg.LogLevel)
	logger.Debug("starting", "version", SERVER_SIGNATURE, "command", kctx.Command(), "baseUrl", cfg.BaseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := kctx.Run(&app{cfg: cfg, logger: logger, ctx: ctx}); err != nil {
		logger.Error(kctx.Command(), "error", err)
		stop()
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

type buildCmd struct {
	Output string `short:"o" help:"Override outputDir." type:"path"`
}

func (b *buildCmd) Run(a *app) error {
	if b.Output != "" {
		a.cfg.OutputDir = b.Output
	}
	return site.NewService(a.cfg, a.logger).BuildStatic(a.ctx)
}

type routesCmd struct{}

func (routesCmd) Run(a *app) error {
	routes, err := site.NewService(a.cfg, a.logger).Routes(a.ctx)
	if err != nil {
		return err
	}
	for _, route := range routes {
		fmt.Println(route)
	}
	return nil
}

type watchCmd struct {
	Debounce time.Duration `help:"Quiet period before rebuilding." default:"500ms"`
}

func (w *watchCmd) Run(a *app) error {
	return site.NewService(a.cfg, a.logger).Watch(a.ctx, w.Debounce)
}
