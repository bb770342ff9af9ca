// Package theme writes the syntax highlighting stylesheet.
package theme

import (
	"errors"
	"fmt"
	"io"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// ErrUnknownStyle is returned for style names chroma does not know.
var ErrUnknownStyle = errors.New("unknown highlight style")

// Stylesheet writes class-based CSS for the named chroma style. Class
// names carry prefix, matching highlighted markup produced with the same
// prefix.
func Stylesheet(w io.Writer, name, prefix string) error {
	style, ok := styles.Registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStyle, name)
	}

	formatter := chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.WithAllClasses(true),
		chromahtml.ClassPrefix(prefix),
	)
	if err := formatter.WriteCSS(w, style); err != nil {
		return fmt.Errorf("write %s stylesheet: %w", style.Name, err)
	}
	return nil
}

// Names lists the available style names.
func Names() []string {
	return styles.Names()
}
