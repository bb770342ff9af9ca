package site

import (
	"fmt"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/xml"
)

const (
	mediaXML  = "text/xml"
	mediaCSS  = "text/css"
	mediaHTML = "text/html"
)

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc(mediaXML, xml.Minify)
	m.AddFunc(mediaCSS, css.Minify)
	m.Add(mediaHTML, &html.Minifier{
		KeepDefaultAttrVals: true,
		KeepEndTags:         true,
		KeepQuotes:          true,
	})
	return m
}

func (s *Service) minify(mediatype, name string, raw []byte) ([]byte, error) {
	out, err := s.minifier.Bytes(mediatype, raw)
	if err != nil {
		return nil, fmt.Errorf("minify %s: %w", name, err)
	}
	return out, nil
}
