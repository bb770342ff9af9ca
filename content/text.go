package content

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const descriptionLimit = 160

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func deriveTitle(slug string) string {
	name := strings.ReplaceAll(slug, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "Untitled"
	}
	return cases.Title(language.English).String(name)
}

func truncateDescription(raw string) string {
	text := strings.Join(strings.Fields(raw), " ")
	runes := []rune(text)
	if len(runes) <= descriptionLimit {
		return text
	}
	return strings.TrimSpace(string(runes[:descriptionLimit-3])) + "..."
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// timeField reads a timestamp from front matter. YAML decoders hand back
// either a time.Time or the raw string depending on the library.
func timeField(fields map[string]any, keys ...string) (time.Time, bool) {
	for _, key := range keys {
		switch v := fields[key].(type) {
		case time.Time:
			return v, true
		case string:
			value := strings.TrimSpace(v)
			for _, layout := range dateLayouts {
				if ts, err := time.Parse(layout, value); err == nil {
					return ts, true
				}
			}
		}
	}
	return time.Time{}, false
}
