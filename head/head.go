// Package head builds the shared document head fragment.
package head

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/iedon/corner-site-go/config"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Tag is a <meta> or <link> element. Tags with a Hid can be replaced by a
// configured meta tag carrying the same Hid.
type Tag struct {
	Element string
	Hid     string
	Attr    []html.Attribute
}

// Get returns the value of attribute key.
func (t Tag) Get(key string) (string, bool) {
	for _, a := range t.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func (t Tag) node() *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(t.Element)),
		Data:     t.Element,
		Attr:     t.Attr,
	}
}

// Head holds the resolved site-wide head configuration.
type Head struct {
	cfg     config.HeadConfig
	baseURL string
}

// New resolves cfg against baseURL.
func New(cfg config.HeadConfig, baseURL string) *Head {
	return &Head{cfg: cfg, baseURL: strings.TrimRight(baseURL, "/")}
}

// Title applies the title template to page. An empty page title yields the
// site title.
func (h *Head) Title(page string) string {
	page = strings.TrimSpace(page)
	if page == "" {
		if h.cfg.Title != "" {
			return h.cfg.Title
		}
		return h.cfg.SiteName
	}
	return strings.Replace(h.cfg.TitleTemplate, "%s", page, 1)
}

// Tags lists the head elements in document order.
func (h *Head) Tags() []Tag {
	title := h.Title("")
	tags := []Tag{
		{Element: "meta", Attr: attrs("charset", "utf-8")},
		{Element: "meta", Attr: attrs("name", "viewport", "content", "width=device-width, initial-scale=1")},
		{Element: "meta", Hid: "content-language", Attr: attrs("http-equiv", "content-language", "content", h.cfg.Lang)},
		namedMeta("description", h.cfg.Description),
		propertyMeta("og:site_name", h.cfg.SiteName),
		propertyMeta("og:type", "website"),
		propertyMeta("og:url", h.baseURL),
		propertyMeta("og:title", title),
		propertyMeta("og:description", h.cfg.Description),
		propertyMeta("og:image", h.resolve(h.cfg.OGImage)),
		propertyMeta("og:image:width", strconv.Itoa(h.cfg.OGImageWidth)),
		propertyMeta("og:image:height", strconv.Itoa(h.cfg.OGImageHeight)),
		namedMeta("twitter:site", h.cfg.TwitterSite),
		namedMeta("twitter:card", h.cfg.TwitterCard),
		namedMeta("twitter:url", h.baseURL),
		namedMeta("twitter:title", title),
		namedMeta("twitter:description", h.cfg.Description),
		namedMeta("twitter:image", h.resolve(h.cfg.TwitterImage)),
	}

	if h.cfg.Lang == "" {
		tags = slices.DeleteFunc(tags, func(t Tag) bool { return t.Hid == "content-language" })
	}

	for _, m := range h.cfg.Meta {
		tag := fromConfig(m)
		if i := indexHid(tags, m.Hid); i >= 0 {
			tags[i] = tag
			continue
		}
		tags = append(tags, tag)
	}

	if h.cfg.Favicon != "" {
		tags = append(tags, Tag{Element: "link", Attr: attrs("rel", "icon", "type", "image/x-icon", "href", h.cfg.Favicon)})
	}
	tags = append(tags, Tag{Element: "link", Attr: attrs("rel", "canonical", "href", h.baseURL)})
	return tags
}

// Render writes the <title> element followed by every tag, one per line.
func (h *Head) Render(w io.Writer, pageTitle string) error {
	bw := bufio.NewWriter(w)

	title := &html.Node{Type: html.ElementNode, DataAtom: atom.Title, Data: "title"}
	title.AppendChild(&html.Node{Type: html.TextNode, Data: h.Title(pageTitle)})
	if err := html.Render(bw, title); err != nil {
		return fmt.Errorf("render title: %w", err)
	}
	bw.WriteString("\n")

	for _, tag := range h.Tags() {
		if err := html.Render(bw, tag.node()); err != nil {
			return fmt.Errorf("render %s: %w", tag.Element, err)
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

func (h *Head) resolve(ref string) string {
	if ref == "" || strings.Contains(ref, "://") {
		return ref
	}
	return h.baseURL + "/" + strings.TrimLeft(ref, "/")
}

func namedMeta(name, content string) Tag {
	return Tag{Element: "meta", Hid: name, Attr: attrs("name", name, "content", content)}
}

func propertyMeta(property, content string) Tag {
	return Tag{Element: "meta", Hid: property, Attr: attrs("property", property, "content", content)}
}

func fromConfig(m config.MetaTag) Tag {
	tag := Tag{Element: "meta", Hid: m.Hid}
	if m.Name != "" {
		tag.Attr = append(tag.Attr, html.Attribute{Key: "name", Val: m.Name})
	}
	if m.Property != "" {
		tag.Attr = append(tag.Attr, html.Attribute{Key: "property", Val: m.Property})
	}
	tag.Attr = append(tag.Attr, html.Attribute{Key: "content", Val: m.Content})
	return tag
}

func indexHid(tags []Tag, hid string) int {
	if hid == "" {
		return -1
	}
	for i, t := range tags {
		if t.Hid == hid {
			return i
		}
	}
	return -1
}

func attrs(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}
