package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func unsetBaseURL(t *testing.T) {
	t.Helper()
	t.Setenv(BaseURLEnv, "")
	require.NoError(t, os.Unsetenv(BaseURLEnv))
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_NoFile_ReproducesSiteDefaults(t *testing.T) {
	unsetBaseURL(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, DefaultBaseURL, cfg.BaseURL)
	require.Equal(t, DefaultBaseURL, cfg.Sitemap.Hostname)
	require.True(t, cfg.Sitemap.GzipEnabled())
	require.Equal(t, []string{"/"}, cfg.Sitemap.Routes)
	require.Equal(t, "posts", cfg.Content.Collection)
	require.True(t, cfg.Content.HistoryEnabled())
	require.Equal(t, "%s Corner of Progress", cfg.Head.TitleTemplate)
	require.Equal(t, "en", cfg.Head.Lang)
	require.Equal(t, "http://localhost:3000/img/og-logo.png", cfg.Head.OGImage)
	require.Equal(t, "http://localhost:3000/img/twitter-card-logo.png", cfg.Head.TwitterImage)
	require.Equal(t, 1200, cfg.Head.OGImageWidth)
	require.Equal(t, 627, cfg.Head.OGImageHeight)

	require.Len(t, cfg.Robots, 1)
	require.Equal(t, "*", cfg.Robots[0].UserAgent)
	require.Equal(t, []string{"/"}, cfg.Robots[0].Allow)
	require.Equal(t, "http://localhost:3000/sitemap.xml", cfg.Robots[0].Sitemap)
}

func TestLoad_BaseURLEnv_OverridesFileAndPropagates(t *testing.T) {
	t.Setenv(BaseURLEnv, "https://corner.example.org/")
	dir := t.TempDir()
	path := writeFile(t, dir, "site.json", `{"baseUrl": "https://ignored.example.org"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://corner.example.org", cfg.BaseURL)
	require.Equal(t, "https://corner.example.org", cfg.Sitemap.Hostname)
	require.Equal(t, "https://corner.example.org/sitemap.xml", cfg.Robots[0].Sitemap)
	require.Equal(t, "https://corner.example.org/img/og-logo.png", cfg.Head.OGImage)
}

func TestLoad_DotEnvNextToConfig_SetsBaseURL(t *testing.T) {
	unsetBaseURL(t)
	dir := t.TempDir()
	writeFile(t, dir, ".env", "BASE_URL=https://from-dotenv.example.org\n")
	path := writeFile(t, dir, "site.json", `{}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://from-dotenv.example.org", cfg.BaseURL)
}

func TestLoad_DotEnvLocal_TakesPrecedence(t *testing.T) {
	unsetBaseURL(t)
	dir := t.TempDir()
	writeFile(t, dir, ".env", "BASE_URL=https://shared.example.org\n")
	writeFile(t, dir, ".env.local", "BASE_URL=https://local.example.org\n")
	path := writeFile(t, dir, "site.json", `{}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://local.example.org", cfg.BaseURL)
}

func TestLoad_YAML(t *testing.T) {
	unsetBaseURL(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "site.yaml", `
baseUrl: https://yaml.example.org
outputDir: ./public
sitemap:
  gzip: false
  lastmod: true
  routes: ["/", "/about"]
content:
  collection: articles
robots:
  - userAgent: Googlebot
    disallow: ["/drafts"]
    sitemap: ${baseUrl}/sitemap.xml
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://yaml.example.org", cfg.BaseURL)
	require.Equal(t, "./public", cfg.OutputDir)
	require.False(t, cfg.Sitemap.GzipEnabled())
	require.True(t, cfg.Sitemap.LastMod)
	require.Equal(t, []string{"/", "/about"}, cfg.Sitemap.Routes)
	require.Equal(t, "articles", cfg.Content.Collection)
	require.Len(t, cfg.Robots, 1)
	require.Equal(t, "Googlebot", cfg.Robots[0].UserAgent)
	require.Equal(t, []string{"/drafts"}, cfg.Robots[0].Disallow)
	require.Equal(t, "https://yaml.example.org/sitemap.xml", cfg.Robots[0].Sitemap)
}

func TestLoad_TOML(t *testing.T) {
	unsetBaseURL(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "site.toml", `
baseUrl = "https://toml.example.org"
logLevel = "DEBUG"

[head]
titleTemplate = "%s | Notes"

[theme]
style = "dracula"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "https://toml.example.org", cfg.BaseURL)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "%s | Notes", cfg.Head.TitleTemplate)
	require.Equal(t, "dracula", cfg.Theme.Style)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	unsetBaseURL(t)
	path := writeFile(t, t.TempDir(), "site.ini", "baseUrl=x")

	_, err := Load(path)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_MissingFile(t *testing.T) {
	unsetBaseURL(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := map[string]string{
		"relative base url":      `{"baseUrl": "corner.example.org"}`,
		"ftp base url":           `{"baseUrl": "ftp://corner.example.org"}`,
		"bad log level":          `{"logLevel": "verbose"}`,
		"template without verb":  `{"head": {"titleTemplate": "Corner of Progress"}}`,
		"escaping collection":    `{"content": {"collection": "../secrets"}}`,
		"absolute sitemap route": `{"sitemap": {"routes": ["https://elsewhere.example.org/"]}}`,
		"escaping theme output":  `{"theme": {"output": "../../outside.css"}}`,
		"negative crawl delay":   `{"robots": [{"userAgent": "*", "crawlDelay": -1}]}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			unsetBaseURL(t)
			path := writeFile(t, t.TempDir(), "site.json", body)
			_, err := Load(path)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_EmptyRobotsList_IsKept(t *testing.T) {
	unsetBaseURL(t)
	path := writeFile(t, t.TempDir(), "site.json", `{"robots": []}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Robots)
	require.Empty(t, cfg.Robots)
}
