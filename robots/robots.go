// Package robots renders robots.txt.
package robots

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/iedon/corner-site-go/config"
)

// Rule is one user-agent group.
type Rule struct {
	UserAgent  string
	Allow      []string
	Disallow   []string
	CrawlDelay int
	Sitemap    string
}

// Default is the permissive rule used when no rules are configured.
var Default = Rule{UserAgent: "*", Allow: []string{"/"}}

// FromConfig converts configured rules.
func FromConfig(rules []config.RobotsRule) []Rule {
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, Rule{
			UserAgent:  r.UserAgent,
			Allow:      r.Allow,
			Disallow:   r.Disallow,
			CrawlDelay: r.CrawlDelay,
			Sitemap:    r.Sitemap,
		})
	}
	return out
}

// Render writes rules to w, one group per rule separated by a blank line.
func Render(w io.Writer, rules []Rule) error {
	if len(rules) == 0 {
		rules = []Rule{Default}
	}

	bw := bufio.NewWriter(w)
	for i, rule := range rules {
		if i > 0 {
			bw.WriteString("\n")
		}
		writeGroup(bw, rule)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write robots.txt: %w", err)
	}
	return nil
}

// String renders rules into a string.
func String(rules []Rule) string {
	var sb strings.Builder
	_ = Render(&sb, rules)
	return sb.String()
}

func writeGroup(bw *bufio.Writer, rule Rule) {
	agent := strings.TrimSpace(rule.UserAgent)
	if agent == "" {
		agent = "*"
	}
	line(bw, "User-agent", agent)
	for _, p := range rule.Allow {
		line(bw, "Allow", p)
	}
	for _, p := range rule.Disallow {
		line(bw, "Disallow", p)
	}
	if rule.CrawlDelay > 0 {
		line(bw, "Crawl-delay", fmt.Sprint(rule.CrawlDelay))
	}
	if s := strings.TrimSpace(rule.Sitemap); s != "" {
		line(bw, "Sitemap", s)
	}
}

func line(bw *bufio.Writer, key, value string) {
	bw.WriteString(key)
	bw.WriteString(": ")
	bw.WriteString(strings.TrimSpace(value))
	bw.WriteString("\n")
}
