package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LastModifier reports when a file last changed, typically from VCS history.
// ok is false when the file has no recorded history.
type LastModifier interface {
	LastModified(path string) (ts time.Time, ok bool, err error)
}

// Store reads content collections from a directory tree.
type Store struct {
	root    string
	parser  *markdownParser
	history LastModifier
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithHistory takes UpdatedAt from h instead of file modification times.
func WithHistory(h LastModifier) Option {
	return func(s *Store) { s.history = h }
}

// WithLogger sets the logger used for per-entry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore constructs a Store rooted at dir. A relative dir is resolved
// against the working directory once, so entry paths handed to the
// history lookup are absolute.
func NewStore(dir string, opts ...Option) *Store {
	root := dir
	if abs, err := filepath.Abs(dir); err == nil {
		root = abs
	}
	s := &Store{root: root, parser: newMarkdownParser()}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// CollectionDir resolves the on-disk directory of a collection.
func (s *Store) CollectionDir(collection string) (string, error) {
	rel, err := normalizeCollection(collection)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

// Fetch returns every entry that is a direct child of the collection
// directory, ordered by file name. Hidden files and files starting with
// '-' are treated as drafts and skipped.
func (s *Store) Fetch(ctx context.Context, collection string) ([]Entry, error) {
	rel, err := normalizeCollection(collection)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, filepath.FromSlash(rel))

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
		}
		return nil, fmt.Errorf("stat collection: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrCollectionNotFound, collection)
	}

	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", collection, err)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if item.IsDir() || isIgnored(item.Name()) || !isSupported(item.Name()) {
			continue
		}
		entry, err := s.load(filepath.Join(dir, item.Name()), "/"+rel)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("content entry", "collection", collection, "slug", entry.Slug)
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Store) load(file, dir string) (Entry, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return Entry{}, fmt.Errorf("read %s: %w", file, err)
	}
	info, err := os.Stat(file)
	if err != nil {
		return Entry{}, fmt.Errorf("stat %s: %w", file, err)
	}

	ext := strings.ToLower(filepath.Ext(file))
	slug := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	entry := Entry{
		Slug:      slug,
		Dir:       dir,
		Path:      path.Join(dir, slug),
		Extension: ext,
	}

	var doc *document
	switch ext {
	case ".md":
		doc, err = s.parser.Parse(data)
	case ".json":
		doc, err = decodeData(data, json.Unmarshal)
	case ".yaml", ".yml":
		doc, err = decodeData(data, yaml.Unmarshal)
	}
	if err != nil {
		if errors.Is(err, ErrMalformedEntry) {
			return Entry{}, fmt.Errorf("%s: %w", file, err)
		}
		return Entry{}, fmt.Errorf("%w: %s: %w", ErrMalformedEntry, file, err)
	}

	entry.Fields = doc.Fields
	entry.TOC = doc.TOC
	entry.Title = firstNonEmpty(stringField(doc.Fields, "title"), doc.Title, deriveTitle(slug))
	entry.Description = truncateDescription(firstNonEmpty(stringField(doc.Fields, "description"), doc.Description))

	mtime := info.ModTime()
	if ts, ok := timeField(doc.Fields, "createdAt", "date"); ok {
		entry.CreatedAt = ts
	} else {
		entry.CreatedAt = mtime
	}
	entry.UpdatedAt = s.updatedAt(file, mtime)
	return entry, nil
}

func (s *Store) updatedAt(file string, fallback time.Time) time.Time {
	if s.history == nil {
		return fallback
	}
	ts, ok, err := s.history.LastModified(file)
	if err != nil {
		s.logger.Warn("content history", "file", file, "error", err)
		return fallback
	}
	if !ok {
		return fallback
	}
	return ts
}

func decodeData(data []byte, unmarshal func([]byte, any) error) (*document, error) {
	fields := map[string]any{}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := unmarshal(data, &fields); err != nil {
			return nil, err
		}
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return &document{Fields: fields}, nil
}

func normalizeCollection(collection string) (string, error) {
	candidate := strings.TrimSpace(strings.ReplaceAll(collection, "\\", "/"))
	candidate = strings.Trim(candidate, "/")
	if candidate == "" || strings.Contains(candidate, "\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}
	cleaned := path.Clean(candidate)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidCollection, collection)
	}
	return cleaned, nil
}

func isIgnored(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "-")
}

func isSupported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
