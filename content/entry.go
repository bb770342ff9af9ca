package content

import "time"

// Heading represents a table-of-contents entry.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Depth int    `json:"depth"`
}

// Entry is a single document of a content collection. Only Slug is
// required to build sitemap routes; the rest mirrors what the content
// loader exposes to pages.
type Entry struct {
	Slug        string         `json:"slug"`
	Dir         string         `json:"dir"`
	Path        string         `json:"path"`
	Extension   string         `json:"extension"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	TOC         []Heading      `json:"toc,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	Fields      map[string]any `json:"-"`
}
