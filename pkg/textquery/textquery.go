// Package textquery extracts values from example response bodies that jq
// cannot read directly. HTML is queried with CSS selectors, XML with XPath,
// form bodies by key and YAML through jq. Everything else falls back to
// regular expressions.
//
// An expression is compiled once and then run over every body a query
// touches, so a malformed selector fails before any body is parsed.
package textquery

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/usestring/swagman-mcp/pkg/contenttype"
)

// Extraction modes.
const (
	ModeCSS   = "css"
	ModeXPath = "xpath"
	ModeRegex = "regex"
	ModeForm  = "form"
	ModeJQ    = "jq"
)

var errNoJQ = errors.New("jq mode is not available")

// DetectMode picks the extraction mode for a body of the given content type.
func DetectMode(contentType string) string {
	switch contenttype.Classify(contentType) {
	case contenttype.JSON, contenttype.YAML:
		return ModeJQ
	case contenttype.HTML:
		return ModeCSS
	case contenttype.XML:
		return ModeXPath
	case contenttype.Form:
		return ModeForm
	default:
		return ModeRegex
	}
}

// Result holds the values extracted from one body.
type Result struct {
	Values []any    `json:"values"`
	Mode   string   `json:"mode"`
	Errors []string `json:"errors,omitempty"`
}

// JQFunc runs a jq expression over a JSON document, returning the values and
// per-value errors.
type JQFunc func(data []byte, expression string, maxResults int) (values []any, errs []string, err error)

// JQValidator checks a jq expression without running it.
type JQValidator func(expression string) error

// Engine compiles extraction expressions. jq support is supplied by the
// caller so the package stays free of a jq implementation.
type Engine struct {
	jq         JQFunc
	validateJQ JQValidator
}

// NewEngine returns an Engine. When jq or validate is nil, jq mode is
// unavailable.
func NewEngine(jq JQFunc, validate JQValidator) *Engine {
	return &Engine{jq: jq, validateJQ: validate}
}

// extractor runs a compiled expression over one body.
type extractor func(body []byte, contentType string, limit int) (values []any, errs []string, err error)

type compiled struct {
	run extractor
	err error
}

// Query is a compiled expression. With no fixed mode it compiles lazily for
// each content type it meets and remembers the outcome. A Query is not safe
// for concurrent use.
type Query struct {
	engine     *Engine
	expression string
	mode       string
	byMode     map[string]compiled
}

// Compile prepares expression for mode. An empty mode defers the choice to
// each body's content type; the expression is then checked on first use.
func (e *Engine) Compile(expression, mode string) (*Query, error) {
	if expression == "" {
		return nil, errors.New("expression is required")
	}
	q := &Query{engine: e, expression: expression, mode: mode, byMode: make(map[string]compiled)}
	if mode != "" {
		if _, err := q.extractor(mode); err != nil {
			return nil, err
		}
	}
	return q, nil
}

// Mode reports the fixed mode, or "" when the mode is detected per body.
func (q *Query) Mode() string { return q.mode }

// Run extracts at most limit values from body. A limit of zero or less means
// no limit.
func (q *Query) Run(body []byte, contentType string, limit int) (*Result, error) {
	mode := q.mode
	if mode == "" {
		mode = DetectMode(contentType)
	}
	run, err := q.extractor(mode)
	if err != nil {
		return nil, err
	}
	values, errs, err := run(body, contentType, limit)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []any{}
	}
	return &Result{Values: values, Mode: mode, Errors: errs}, nil
}

func (q *Query) extractor(mode string) (extractor, error) {
	if c, ok := q.byMode[mode]; ok {
		return c.run, c.err
	}
	var c compiled
	switch mode {
	case ModeCSS:
		c.run, c.err = compileCSS(q.expression)
	case ModeXPath:
		c.run, c.err = compileXPath(q.expression)
	case ModeRegex:
		c.run, c.err = compileRegex(q.expression)
	case ModeForm:
		c.run = formExtractor(q.expression)
	case ModeJQ:
		c.run, c.err = q.engine.compileJQ(q.expression)
	default:
		c.err = fmt.Errorf("unknown mode %q (valid: css, xpath, regex, form, jq)", mode)
	}
	q.byMode[mode] = c
	return c.run, c.err
}

func (e *Engine) compileJQ(expression string) (extractor, error) {
	if e.jq == nil || e.validateJQ == nil {
		return nil, errNoJQ
	}
	if err := e.validateJQ(expression); err != nil {
		return nil, err
	}
	return func(body []byte, contentType string, limit int) ([]any, []string, error) {
		data := body
		if !contenttype.IsJSON(contentType) {
			var err error
			if data, err = yamlToJSON(body); err != nil {
				return nil, nil, err
			}
		}
		return e.jq(data, expression, limit)
	}, nil
}

// yamlToJSON re-encodes a YAML document as JSON.
func yamlToJSON(body []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	data, err := json.Marshal(stringKeys(v))
	if err != nil {
		return nil, fmt.Errorf("encoding YAML as JSON: %w", err)
	}
	return data, nil
}

// stringKeys rewrites mappings with non-string keys, which yaml.v3 decodes
// into map[any]any, so they can be encoded as JSON objects.
func stringKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			val[k] = stringKeys(child)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[fmt.Sprint(k)] = stringKeys(child)
		}
		return out
	case []any:
		for i, child := range val {
			val[i] = stringKeys(child)
		}
		return val
	default:
		return v
	}
}
