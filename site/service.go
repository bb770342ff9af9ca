package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/docker/go-units"
	"github.com/iedon/corner-site-go/config"
	"github.com/iedon/corner-site-go/content"
	"github.com/iedon/corner-site-go/fsutil"
	"github.com/iedon/corner-site-go/gitutil"
	"github.com/iedon/corner-site-go/head"
	"github.com/iedon/corner-site-go/robots"
	"github.com/iedon/corner-site-go/sitemap"
	"github.com/iedon/corner-site-go/theme"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tdewolff/minify/v2"
)

const (
	sitemapOutput   = "sitemap.xml"
	sitemapGzOutput = "sitemap.xml.gz"
	robotsOutput    = "robots.txt"
)

// Service orchestrates route collection and static output generation.
type Service struct {
	cfg    *config.Config
	logger *slog.Logger

	source    sitemap.Source
	collector *sitemap.Collector
	head      *head.Head
	minifier  *minify.M
	metrics   *Metrics

	mu sync.Mutex
}

// Option customizes a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	source   sitemap.Source
	registry *prometheus.Registry
}

// WithSource replaces the on-disk content store.
func WithSource(src sitemap.Source) Option {
	return func(o *serviceOptions) { o.source = src }
}

// WithRegistry registers build metrics on reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *serviceOptions) { o.registry = reg }
}

// NewService constructs a Service instance.
func NewService(cfg *config.Config, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}

	src := o.source
	if src == nil {
		src = newContentStore(cfg, logger)
	}

	return &Service{
		cfg:       cfg,
		logger:    logger,
		source:    src,
		collector: sitemap.NewCollector(src, cfg.Content.Collection),
		head:      head.New(cfg.Head, cfg.BaseURL),
		minifier:  newMinifier(),
		metrics:   newMetrics(o.registry),
	}
}

func newContentStore(cfg *config.Config, logger *slog.Logger) *content.Store {
	storeOpts := []content.Option{content.WithLogger(logger)}
	if cfg.Content.HistoryEnabled() {
		repo, err := gitutil.Open(cfg.Content.Dir)
		switch {
		case err == nil:
			logger.Debug("using git history for lastmod", "repository", repo.Dir)
			storeOpts = append(storeOpts, content.WithHistory(repo))
		case errors.Is(err, gitutil.ErrNotRepository):
			logger.Debug("content is not under git, using file times", "dir", cfg.Content.Dir)
		default:
			logger.Warn("open content repository", "error", err)
		}
	}
	return content.NewStore(cfg.Content.Dir, storeOpts...)
}

// Routes returns the slugs of the configured collection.
func (s *Service) Routes(ctx context.Context) ([]string, error) {
	return s.collector.Routes(ctx)
}

// BuildStatic regenerates the output directory. The previous output stays
// in place when any step fails.
func (s *Service) BuildStatic(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	err := s.build(ctx)
	s.metrics.observeBuild(start, err)

	if s.cfg.MetricsFile != "" {
		if werr := s.metrics.WriteTextfile(s.cfg.MetricsFile); werr != nil {
			s.logger.Warn("write metrics", "file", s.cfg.MetricsFile, "error", werr)
		}
	}
	return err
}

func (s *Service) build(ctx context.Context) error {
	routes, err := s.collectRoutes(ctx)
	if err != nil {
		s.metrics.fetchErrors.Inc()
		return fmt.Errorf("collect routes: %w", err)
	}

	set, err := sitemap.Build(s.cfg.Sitemap.Hostname, routes, sitemap.Options{
		Static:        s.cfg.Sitemap.Routes,
		TrailingSlash: s.cfg.Sitemap.TrailingSlash,
	})
	if err != nil {
		return err
	}
	s.metrics.routes.Set(float64(len(set.URLs)))

	stage, err := fsutil.NewStaging(s.cfg.OutputDir)
	if err != nil {
		return err
	}
	defer stage.Cleanup()

	if err := s.copyStatic(stage); err != nil {
		return err
	}
	if err := s.writeSitemap(stage, set); err != nil {
		return err
	}
	if err := s.writeRobots(stage); err != nil {
		return err
	}
	if err := s.writeHead(stage); err != nil {
		return err
	}
	if err := s.writeTheme(stage); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	attrs := []any{"routes", len(routes), "urls", len(set.URLs), "output", s.cfg.OutputDir}
	if size, err := fsutil.DirSize(stage.Dir); err != nil {
		s.logger.Debug("measure output size", "error", err)
	} else {
		attrs = append(attrs, "size", units.HumanSize(float64(size)))
	}
	if err := stage.Publish(); err != nil {
		return err
	}

	s.logger.Info("static build completed", attrs...)
	return nil
}

func (s *Service) collectRoutes(ctx context.Context) ([]sitemap.Route, error) {
	if s.cfg.Sitemap.LastMod {
		return s.collector.DatedRoutes(ctx)
	}
	paths, err := s.collector.Routes(ctx)
	if err != nil {
		return nil, err
	}
	return sitemap.Undated(paths), nil
}

func (s *Service) copyStatic(stage *fsutil.Staging) error {
	info, err := os.Stat(s.cfg.StaticDir)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debug("no static assets", "dir", s.cfg.StaticDir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat static dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrStaticNotDir, s.cfg.StaticDir)
	}
	n, err := fsutil.CopyTree(s.cfg.StaticDir, stage.Dir, s.isBuildOutput)
	if err != nil {
		return fmt.Errorf("copy static assets: %w", err)
	}
	s.logger.Debug("copied static assets", "files", n)
	return nil
}

func (s *Service) writeSitemap(stage *fsutil.Staging, set *sitemap.URLSet) error {
	raw, err := set.Bytes()
	if err != nil {
		return err
	}
	data, err := s.minify(mediaXML, sitemapOutput, raw)
	if err != nil {
		return err
	}
	if err := stage.WriteFile(sitemapOutput, data); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}

	if !s.cfg.Sitemap.GzipEnabled() {
		return nil
	}
	var buf bytes.Buffer
	if err := sitemap.WriteGzip(&buf, data); err != nil {
		return err
	}
	if err := stage.WriteFile(sitemapGzOutput, buf.Bytes()); err != nil {
		return fmt.Errorf("write compressed sitemap: %w", err)
	}
	s.logger.Debug("sitemap written",
		"size", units.HumanSize(float64(len(data))),
		"compressed", units.HumanSize(float64(buf.Len())),
	)
	return nil
}

func (s *Service) writeRobots(stage *fsutil.Staging) error {
	var buf bytes.Buffer
	if err := robots.Render(&buf, robots.FromConfig(s.cfg.Robots)); err != nil {
		return err
	}
	if err := stage.WriteFile(robotsOutput, buf.Bytes()); err != nil {
		return fmt.Errorf("write robots.txt: %w", err)
	}
	return nil
}

func (s *Service) writeHead(stage *fsutil.Staging) error {
	var buf bytes.Buffer
	if err := s.head.Render(&buf, ""); err != nil {
		return err
	}
	data, err := s.minify(mediaHTML, s.cfg.HeadOutput, buf.Bytes())
	if err != nil {
		return err
	}
	if err := stage.WriteFile(s.cfg.HeadOutput, data); err != nil {
		return fmt.Errorf("write head fragment: %w", err)
	}
	return nil
}

func (s *Service) writeTheme(stage *fsutil.Staging) error {
	var buf bytes.Buffer
	if err := theme.Stylesheet(&buf, s.cfg.Theme.Style, s.cfg.Theme.ClassPrefix); err != nil {
		return err
	}
	data, err := s.minify(mediaCSS, s.cfg.Theme.Output, buf.Bytes())
	if err != nil {
		return err
	}
	if err := stage.WriteFile(s.cfg.Theme.Output, data); err != nil {
		return fmt.Errorf("write theme stylesheet: %w", err)
	}
	return nil
}
