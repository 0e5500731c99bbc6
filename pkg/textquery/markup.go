package textquery

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/usestring/swagman-mcp/pkg/contenttype"
)

// compileCSS returns an extractor yielding the trimmed text of every element
// the selector matches. Empty text is skipped.
func compileCSS(expression string) (extractor, error) {
	sel, err := cascadia.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid CSS selector: %w", err)
	}
	return func(body []byte, _ string, limit int) ([]any, []string, error) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return nil, nil, fmt.Errorf("parsing HTML: %w", err)
		}
		var values []any
		doc.FindMatcher(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if text := strings.TrimSpace(s.Text()); text != "" {
				values = append(values, text)
			}
			return limit <= 0 || len(values) < limit
		})
		return values, nil, nil
	}, nil
}

// compileXPath returns an extractor that parses HTML bodies leniently and
// everything else as XML.
func compileXPath(expression string) (extractor, error) {
	expr, err := xpath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid XPath expression: %w", err)
	}
	return func(body []byte, contentType string, limit int) ([]any, []string, error) {
		var texts []string
		if contenttype.Classify(contentType) == contenttype.HTML {
			doc, err := htmlquery.Parse(bytes.NewReader(body))
			if err != nil {
				return nil, nil, fmt.Errorf("parsing HTML: %w", err)
			}
			for _, n := range htmlquery.QuerySelectorAll(doc, expr) {
				texts = append(texts, htmlquery.InnerText(n))
			}
		} else {
			doc, err := xmlquery.Parse(bytes.NewReader(body))
			if err != nil {
				return nil, nil, fmt.Errorf("parsing XML: %w", err)
			}
			for _, n := range xmlquery.QuerySelectorAll(doc, expr) {
				texts = append(texts, n.InnerText())
			}
		}
		return nonEmpty(texts, limit), nil, nil
	}, nil
}

func nonEmpty(texts []string, limit int) []any {
	var values []any
	for _, t := range texts {
		if limit > 0 && len(values) >= limit {
			break
		}
		if t = strings.TrimSpace(t); t != "" {
			values = append(values, t)
		}
	}
	return values
}
