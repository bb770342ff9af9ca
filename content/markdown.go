package content

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// document is what a Markdown source contributes to an Entry.
type document struct {
	Fields      map[string]any
	Title       string
	Description string
	TOC         []Heading
}

// markdownParser extracts front matter and navigation data from Markdown.
// It never renders HTML; bodies are rendered by the site framework.
type markdownParser struct {
	md goldmark.Markdown
}

func newMarkdownParser() *markdownParser {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.DefinitionList,
			extension.Footnote,
			meta.Meta,
		),
		goldmark.WithParserOptions(
			parser.WithAttribute(),
		),
	)
	return &markdownParser{md: md}
}

func (p *markdownParser) Parse(src []byte) (*document, error) {
	pc := parser.NewContext()
	root := p.md.Parser().Parse(text.NewReader(src), parser.WithContext(pc))

	fields, err := meta.TryGet(pc)
	if err != nil {
		return nil, fmt.Errorf("%w: front matter: %w", ErrMalformedEntry, err)
	}
	if fields == nil {
		fields = map[string]any{}
	}

	doc := &document{Fields: fields}
	slugCounts := make(map[string]int)

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			txt := extractText(node, src)
			if node.Level == 1 {
				if doc.Title == "" {
					doc.Title = txt
				}
				return ast.WalkSkipChildren, nil
			}
			attr, _ := node.AttributeString("id")
			id := attributeToString(attr)
			if id == "" {
				base := slugify(txt)
				count := slugCounts[base]
				if count > 0 {
					id = fmt.Sprintf("%s-%d", base, count)
				} else {
					id = base
				}
				slugCounts[base] = count + 1
			} else {
				slugCounts[id]++
			}
			if node.Level <= 3 {
				doc.TOC = append(doc.TOC, Heading{ID: id, Text: txt, Depth: node.Level})
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			if doc.Description == "" {
				doc.Description = extractText(node, src)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return doc, nil
}

func extractText(root ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if n == root || !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}

func attributeToString(value any) string {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return ""
	}
}

func slugify(input string) string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return "section"
	}
	var sb strings.Builder
	lastDash := false
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		case r == ' ' || r == '-' || r == '_' || r == '.':
			if sb.Len() == 0 || lastDash {
				continue
			}
			sb.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(sb.String(), "-")
	if slug == "" {
		return "section"
	}
	return slug
}
