package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultBaseURL is used when neither BASE_URL nor the config file provide one.
	DefaultBaseURL = "http://localhost:3000"

	// BaseURLEnv names the environment variable that overrides baseUrl.
	BaseURLEnv = "BASE_URL"

	baseURLPlaceholder = "${baseUrl}"
)

// HeadConfig describes the site-wide document head.
type HeadConfig struct {
	Title         string    `json:"title" yaml:"title" toml:"title"`
	TitleTemplate string    `json:"titleTemplate" yaml:"titleTemplate" toml:"titleTemplate"`
	Lang          string    `json:"lang" yaml:"lang" toml:"lang"`
	Description   string    `json:"description" yaml:"description" toml:"description"`
	SiteName      string    `json:"siteName" yaml:"siteName" toml:"siteName"`
	TwitterSite   string    `json:"twitterSite" yaml:"twitterSite" toml:"twitterSite"`
	TwitterCard   string    `json:"twitterCard" yaml:"twitterCard" toml:"twitterCard"`
	OGImage       string    `json:"ogImage" yaml:"ogImage" toml:"ogImage"`
	OGImageWidth  int       `json:"ogImageWidth" yaml:"ogImageWidth" toml:"ogImageWidth"`
	OGImageHeight int       `json:"ogImageHeight" yaml:"ogImageHeight" toml:"ogImageHeight"`
	TwitterImage  string    `json:"twitterImage" yaml:"twitterImage" toml:"twitterImage"`
	Favicon       string    `json:"favicon" yaml:"favicon" toml:"favicon"`
	Meta          []MetaTag `json:"meta" yaml:"meta" toml:"meta"`
}

// MetaTag is an additional <meta> element. A tag with the same Hid as a
// built-in one replaces it.
type MetaTag struct {
	Hid      string `json:"hid" yaml:"hid" toml:"hid"`
	Name     string `json:"name" yaml:"name" toml:"name"`
	Property string `json:"property" yaml:"property" toml:"property"`
	Content  string `json:"content" yaml:"content" toml:"content"`
}

// RobotsRule is one user-agent group of robots.txt.
type RobotsRule struct {
	UserAgent  string   `json:"userAgent" yaml:"userAgent" toml:"userAgent"`
	Allow      []string `json:"allow" yaml:"allow" toml:"allow"`
	Disallow   []string `json:"disallow" yaml:"disallow" toml:"disallow"`
	CrawlDelay int      `json:"crawlDelay" yaml:"crawlDelay" toml:"crawlDelay"`
	Sitemap    string   `json:"sitemap" yaml:"sitemap" toml:"sitemap"`
}

// SitemapConfig controls sitemap generation.
type SitemapConfig struct {
	Hostname      string   `json:"hostname" yaml:"hostname" toml:"hostname"`
	Gzip          *bool    `json:"gzip" yaml:"gzip" toml:"gzip"`
	Routes        []string `json:"routes" yaml:"routes" toml:"routes"`
	TrailingSlash bool     `json:"trailingSlash" yaml:"trailingSlash" toml:"trailingSlash"`
	LastMod       bool     `json:"lastmod" yaml:"lastmod" toml:"lastmod"`
}

// GzipEnabled reports whether a compressed copy of the sitemap is written.
func (s SitemapConfig) GzipEnabled() bool {
	return s.Gzip == nil || *s.Gzip
}

// ContentConfig locates the content collection the sitemap is built from.
type ContentConfig struct {
	Dir        string `json:"dir" yaml:"dir" toml:"dir"`
	Collection string `json:"collection" yaml:"collection" toml:"collection"`
	GitHistory *bool  `json:"gitHistory" yaml:"gitHistory" toml:"gitHistory"`
}

// HistoryEnabled reports whether UpdatedAt is taken from git commits.
func (c ContentConfig) HistoryEnabled() bool {
	return c.GitHistory == nil || *c.GitHistory
}

// ThemeConfig selects the code highlighting stylesheet.
type ThemeConfig struct {
	Style       string `json:"style" yaml:"style" toml:"style"`
	Output      string `json:"output" yaml:"output" toml:"output"`
	ClassPrefix string `json:"classPrefix" yaml:"classPrefix" toml:"classPrefix"`
}

// Config encapsulates build options.
type Config struct {
	BaseURL     string        `json:"baseUrl" yaml:"baseUrl" toml:"baseUrl"`
	OutputDir   string        `json:"outputDir" yaml:"outputDir" toml:"outputDir"`
	StaticDir   string        `json:"staticDir" yaml:"staticDir" toml:"staticDir"`
	HeadOutput  string        `json:"headOutput" yaml:"headOutput" toml:"headOutput"`
	LogLevel    string        `json:"logLevel" yaml:"logLevel" toml:"logLevel"`
	MetricsFile string        `json:"metricsFile" yaml:"metricsFile" toml:"metricsFile"`
	Head        HeadConfig    `json:"head" yaml:"head" toml:"head"`
	Robots      []RobotsRule  `json:"robots" yaml:"robots" toml:"robots"`
	Sitemap     SitemapConfig `json:"sitemap" yaml:"sitemap" toml:"sitemap"`
	Content     ContentConfig `json:"content" yaml:"content" toml:"content"`
	Theme       ThemeConfig   `json:"theme" yaml:"theme" toml:"theme"`
}

var (
	// ErrUnsupportedFormat is returned for config files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported config format")
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid config")
)

// Load reads configuration from disk and applies sane defaults. An empty
// path yields the defaults. Environment files next to the config file (or
// in the working directory) are loaded first and never override variables
// already present in the process environment.
func Load(path string) (*Config, error) {
	envDir := "."
	if path != "" {
		envDir = filepath.Dir(path)
	}
	if err := LoadEnv(filepath.Join(envDir, ".env.local"), filepath.Join(envDir, ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if path != "" {
		if err := decodeFile(filepath.Clean(path), cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnv loads the given dotenv files in order, skipping missing ones.
// Earlier files win because existing variables are never overwritten.
func LoadEnv(files ...string) error {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat env file: %w", err)
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("load env file %s: %w", file, err)
		}
	}
	return nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() error {
	if env := strings.TrimSpace(os.Getenv(BaseURLEnv)); env != "" {
		c.BaseURL = env
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}

	if c.OutputDir == "" {
		c.OutputDir = "./dist"
	}
	if c.StaticDir == "" {
		c.StaticDir = "./static"
	}
	if c.HeadOutput == "" {
		c.HeadOutput = "_head.html"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	c.applyHeadDefaults()

	if c.Robots == nil {
		c.Robots = []RobotsRule{{
			UserAgent: "*",
			Allow:     []string{"/"},
			Sitemap:   baseURLPlaceholder + "/sitemap.xml",
		}}
	}
	for i := range c.Robots {
		rule := &c.Robots[i]
		rule.UserAgent = strings.TrimSpace(rule.UserAgent)
		if rule.UserAgent == "" {
			rule.UserAgent = "*"
		}
		rule.Sitemap = c.Expand(rule.Sitemap)
	}

	c.Sitemap.Hostname = strings.TrimRight(strings.TrimSpace(c.Expand(c.Sitemap.Hostname)), "/")
	if c.Sitemap.Hostname == "" {
		c.Sitemap.Hostname = c.BaseURL
	}
	if c.Sitemap.Routes == nil {
		c.Sitemap.Routes = []string{"/"}
	}

	if c.Content.Dir == "" {
		c.Content.Dir = "./content"
	}
	c.Content.Collection = strings.Trim(strings.ReplaceAll(strings.TrimSpace(c.Content.Collection), "\\", "/"), "/")
	if c.Content.Collection == "" {
		c.Content.Collection = "posts"
	}

	if c.Theme.Style == "" {
		c.Theme.Style = "monokai"
	}
	if c.Theme.Output == "" {
		c.Theme.Output = "css/highlight.css"
	}
	if c.Theme.ClassPrefix == "" {
		c.Theme.ClassPrefix = "z-"
	}
	return nil
}

func (c *Config) applyHeadDefaults() {
	h := &c.Head
	if h.TitleTemplate == "" {
		h.TitleTemplate = "%s Corner of Progress"
	}
	if h.Lang == "" {
		h.Lang = "en"
	}
	if h.SiteName == "" {
		h.SiteName = "Corner of Progress"
	}
	if h.Description == "" {
		h.Description = "Personal corner on the internet where I share my thoughts on various topics, learnings, new discoveries & development."
	}
	if h.TwitterSite == "" {
		h.TwitterSite = "@duy_anh_ngac"
	}
	if h.TwitterCard == "" {
		h.TwitterCard = "summary_large_image"
	}
	if h.OGImage == "" {
		h.OGImage = baseURLPlaceholder + "/img/og-logo.png"
	}
	if h.OGImageWidth <= 0 {
		h.OGImageWidth = 1200
	}
	if h.OGImageHeight <= 0 {
		h.OGImageHeight = 627
	}
	if h.TwitterImage == "" {
		h.TwitterImage = baseURLPlaceholder + "/img/twitter-card-logo.png"
	}
	if h.Favicon == "" {
		h.Favicon = "/favicon.ico"
	}
	h.OGImage = c.Expand(h.OGImage)
	h.TwitterImage = c.Expand(h.TwitterImage)
	for i := range h.Meta {
		h.Meta[i].Content = c.Expand(h.Meta[i].Content)
	}
}

// Expand substitutes ${baseUrl} with the effective base URL.
func (c *Config) Expand(value string) string {
	return strings.ReplaceAll(value, baseURLPlaceholder, c.BaseURL)
}

func (c *Config) validate() error {
	if err := validateAbsoluteURL("baseUrl", c.BaseURL); err != nil {
		return err
	}
	if err := validateAbsoluteURL("sitemap.hostname", c.Sitemap.Hostname); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown logLevel %q", ErrInvalidConfig, c.LogLevel)
	}
	if strings.Count(c.Head.TitleTemplate, "%s") != 1 {
		return fmt.Errorf("%w: head.titleTemplate must contain exactly one %%s", ErrInvalidConfig)
	}
	if escapesRoot(c.Content.Collection) || path.Clean(c.Content.Collection) == "." {
		return fmt.Errorf("%w: content.collection %q", ErrInvalidConfig, c.Content.Collection)
	}
	for _, route := range c.Sitemap.Routes {
		if strings.Contains(route, "://") {
			return fmt.Errorf("%w: sitemap route %q must be a path", ErrInvalidConfig, route)
		}
	}
	for _, rule := range c.Robots {
		if rule.CrawlDelay < 0 {
			return fmt.Errorf("%w: negative robots crawlDelay", ErrInvalidConfig)
		}
	}
	for _, rel := range []string{c.HeadOutput, c.Theme.Output} {
		if filepath.IsAbs(rel) || escapesRoot(rel) {
			return fmt.Errorf("%w: output path %q must stay inside outputDir", ErrInvalidConfig, rel)
		}
	}
	return nil
}

func validateAbsoluteURL(field, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: %s must use http or https: %q", ErrInvalidConfig, field, raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: %s has no host: %q", ErrInvalidConfig, field, raw)
	}
	return nil
}

func escapesRoot(rel string) bool {
	cleaned := path.Clean(filepath.ToSlash(rel))
	return path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../")
}
