package robots

import (
	"testing"

	"github.com/iedon/corner-site-go/config"
	"github.com/stretchr/testify/require"
)

func TestRender_EmptyRulesUsesPermissiveDefault(t *testing.T) {
	require.Equal(t, "User-agent: *\nAllow: /\n", String(nil))
}

func TestRender_SiteDefault(t *testing.T) {
	rules := []Rule{{UserAgent: "*", Allow: []string{"/"}, Sitemap: "http://localhost:3000/sitemap.xml"}}
	require.Equal(t, "User-agent: *\nAllow: /\nSitemap: http://localhost:3000/sitemap.xml\n", String(rules))
}

func TestRender_MultipleGroups(t *testing.T) {
	rules := []Rule{
		{UserAgent: "Googlebot", Disallow: []string{"/drafts", "/private"}, CrawlDelay: 5},
		{UserAgent: "  ", Allow: []string{"/"}},
	}
	want := "User-agent: Googlebot\n" +
		"Disallow: /drafts\n" +
		"Disallow: /private\n" +
		"Crawl-delay: 5\n" +
		"\n" +
		"User-agent: *\n" +
		"Allow: /\n"
	require.Equal(t, want, String(rules))
}

func TestFromConfig(t *testing.T) {
	rules := FromConfig([]config.RobotsRule{{UserAgent: "*", Allow: []string{"/"}, CrawlDelay: 2, Sitemap: "https://x.test/sitemap.xml"}})
	require.Equal(t, []Rule{{UserAgent: "*", Allow: []string{"/"}, CrawlDelay: 2, Sitemap: "https://x.test/sitemap.xml"}}, rules)
}
