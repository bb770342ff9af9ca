package sitemap

import (
	"context"
	"time"

	"github.com/iedon/corner-site-go/content"
)

// Source fetches every entry of a named content collection.
type Source interface {
	Fetch(ctx context.Context, collection string) ([]content.Entry, error)
}

// Route is a sitemap path with an optional modification time.
type Route struct {
	Path    string
	LastMod time.Time
}

// Collector turns a content collection into sitemap routes.
type Collector struct {
	src        Source
	collection string
}

// NewCollector binds a collector to one collection of src.
func NewCollector(src Source, collection string) *Collector {
	return &Collector{src: src, collection: collection}
}

// Routes fetches the collection once and returns the entry slugs in fetch
// order. A fetch error is returned as is.
func (c *Collector) Routes(ctx context.Context) ([]string, error) {
	entries, err := c.src.Fetch(ctx, c.collection)
	if err != nil {
		return nil, err
	}
	routes := make([]string, 0, len(entries))
	for _, entry := range entries {
		routes = append(routes, entry.Slug)
	}
	return routes, nil
}

// DatedRoutes is Routes keeping each entry's UpdatedAt.
func (c *Collector) DatedRoutes(ctx context.Context) ([]Route, error) {
	entries, err := c.src.Fetch(ctx, c.collection)
	if err != nil {
		return nil, err
	}
	routes := make([]Route, 0, len(entries))
	for _, entry := range entries {
		routes = append(routes, Route{Path: entry.Slug, LastMod: entry.UpdatedAt})
	}
	return routes, nil
}

// Undated wraps plain paths as routes without modification times.
func Undated(paths []string) []Route {
	routes := make([]Route, 0, len(paths))
	for _, p := range paths {
		routes = append(routes, Route{Path: p})
	}
	return routes
}
