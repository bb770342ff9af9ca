package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/klauspost/compress/gzip"
)

const (
	// Namespace is the sitemaps.org protocol namespace.
	Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	// MaxURLs is the protocol limit of locations in one sitemap file.
	MaxURLs = 50000
	// MaxSize is the protocol limit of an uncompressed sitemap file.
	MaxSize = 50 * units.MiB
)

// URL is a single <url> element.
type URL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// URLSet is the <urlset> document.
type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// Options tunes how routes become locations.
type Options struct {
	// Static routes are listed before the collected ones.
	Static        []string
	TrailingSlash bool
}

// Build resolves routes against hostname. Duplicate locations keep their
// first occurrence.
func Build(hostname string, routes []Route, opts Options) (*URLSet, error) {
	base, err := normalizeHostname(hostname)
	if err != nil {
		return nil, err
	}

	all := make([]Route, 0, len(opts.Static)+len(routes))
	all = append(all, Undated(opts.Static)...)
	all = append(all, routes...)

	set := &URLSet{Xmlns: Namespace, URLs: make([]URL, 0, len(all))}
	seen := make(map[string]struct{}, len(all))
	for _, route := range all {
		loc := joinLocation(base, route.Path, opts.TrailingSlash)
		if _, ok := seen[loc]; ok {
			continue
		}
		seen[loc] = struct{}{}

		u := URL{Loc: loc}
		if !route.LastMod.IsZero() {
			u.LastMod = route.LastMod.UTC().Format(time.RFC3339)
		}
		set.URLs = append(set.URLs, u)
	}

	if len(set.URLs) > MaxURLs {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyURLs, len(set.URLs), MaxURLs)
	}
	return set, nil
}

// Locations lists the resolved URLs in document order.
func (s *URLSet) Locations() []string {
	locs := make([]string, 0, len(s.URLs))
	for _, u := range s.URLs {
		locs = append(locs, u.Loc)
	}
	return locs
}

// Encode writes the XML document including the XML declaration.
func (s *URLSet) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Bytes encodes the document and enforces the size limit.
func (s *URLSet) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return nil, err
	}
	if buf.Len() > MaxSize {
		return nil, fmt.Errorf("%w: %s", ErrSitemapTooLarge, units.BytesSize(float64(buf.Len())))
	}
	return buf.Bytes(), nil
}

// WriteGzip compresses data into w.
func WriteGzip(w io.Writer, data []byte) error {
	zw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return err
	}
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("gzip sitemap: %w", err)
	}
	return zw.Close()
}

func normalizeHostname(hostname string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(hostname), "/")
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidHostname, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidHostname, hostname)
	}
	return trimmed, nil
}

func joinLocation(base, route string, trailingSlash bool) string {
	trimmed := strings.Trim(strings.TrimSpace(route), "/")
	if trimmed == "" {
		return base + "/"
	}
	segments := strings.Split(trimmed, "/")
	escaped := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		escaped = append(escaped, url.PathEscape(segment))
	}
	loc := base + "/" + strings.Join(escaped, "/")
	if trailingSlash {
		loc += "/"
	}
	return loc
}
