package collection

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

// Request is a Postman request. The collection format allows a bare URL
// string in place of the request object; both decode into this type.
type Request struct {
	Method      string   `json:"method,omitempty"`
	URL         *URL     `json:"url,omitempty"`
	Header      []Header `json:"header,omitempty"`
	Body        *Body    `json:"body,omitempty"`
	Description Text     `json:"description,omitempty"`
}

// UnmarshalJSON accepts the string shorthand.
func (r *Request) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var u URL
		if err := u.UnmarshalJSON(data); err != nil {
			return err
		}
		*r = Request{Method: "GET", URL: &u}
		return nil
	}
	type plain Request
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Request(p)
	return nil
}

// Header is a request or response header entry.
type Header struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Body is a request body.
type Body struct {
	Mode    string `json:"mode,omitempty"`
	Raw     string `json:"raw,omitempty"`
	Options *struct {
		Raw *struct {
			Language string `json:"language,omitempty"`
		} `json:"raw,omitempty"`
	} `json:"options,omitempty"`
}

// URL is a Postman URL, given either as a raw string or as an object with
// pre-split parts.
type URL struct {
	Raw      string     `json:"raw,omitempty"`
	Protocol string     `json:"protocol,omitempty"`
	Host     []string   `json:"host,omitempty"`
	Port     string     `json:"port,omitempty"`
	Path     []string   `json:"path,omitempty"`
	Query    []Query    `json:"query,omitempty"`
	Variable []Variable `json:"variable,omitempty"`
}

// Query is a URL query parameter.
type Query struct {
	Key      string  `json:"key"`
	Value    *string `json:"value"`
	Disabled bool    `json:"disabled,omitempty"`
}

// UnmarshalJSON accepts the string form, and host/path given as a single
// string or as arrays of strings or {"value": ...} segments.
func (u *URL) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*u = URL{Raw: raw}
		return nil
	}

	var obj struct {
		Raw      string          `json:"raw"`
		Protocol string          `json:"protocol"`
		Host     json.RawMessage `json:"host"`
		Port     string          `json:"port"`
		Path     json.RawMessage `json:"path"`
		Query    []Query         `json:"query"`
		Variable []Variable      `json:"variable"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("url: %w", err)
	}

	host, err := segments(obj.Host, ".")
	if err != nil {
		return fmt.Errorf("url host: %w", err)
	}
	path, err := segments(obj.Path, "/")
	if err != nil {
		return fmt.Errorf("url path: %w", err)
	}

	*u = URL{
		Raw:      obj.Raw,
		Protocol: obj.Protocol,
		Host:     host,
		Port:     obj.Port,
		Path:     path,
		Query:    obj.Query,
		Variable: obj.Variable,
	}
	return nil
}

// segments decodes a string (split on sep) or an array of segments.
func segments(data json.RawMessage, sep string) ([]string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return strings.Split(strings.Trim(s, sep), sep), nil
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = bytes.TrimSpace(p)
		if len(p) > 0 && p[0] == '"' {
			var s string
			if err := json.Unmarshal(p, &s); err != nil {
				return nil, err
			}
			out = append(out, s)
			continue
		}
		var seg struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(p, &seg); err != nil {
			return nil, err
		}
		out = append(out, seg.Value)
	}
	return out, nil
}

// URI returns the request URL as written in the collection.
func (r *Request) URI() string {
	if r == nil || r.URL == nil {
		return ""
	}
	return r.URL.String()
}

// String returns the raw URL, rebuilding it from parts when raw is absent.
func (u *URL) String() string {
	if u.Raw != "" {
		return u.Raw
	}
	var b strings.Builder
	if u.Protocol != "" {
		b.WriteString(u.Protocol)
		b.WriteString("://")
	}
	b.WriteString(strings.Join(u.Host, "."))
	if u.Port != "" {
		b.WriteString(":")
		b.WriteString(u.Port)
	}
	if len(u.Path) > 0 {
		b.WriteString("/")
		b.WriteString(strings.Join(u.Path, "/"))
	}
	n := 0
	for _, q := range u.Query {
		if q.Disabled {
			continue
		}
		n++
		if n == 1 {
			b.WriteString("?")
		} else {
			b.WriteString("&")
		}
		b.WriteString(q.Key)
		if q.Value != nil {
			b.WriteString("=")
			b.WriteString(*q.Value)
		}
	}
	return b.String()
}

var (
	schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	templateVar  = regexp.MustCompile(`^\{\{\s*([^{}]+?)\s*\}\}$`)
)

// PathSegments returns the URL path split into segments, without host,
// query or fragment.
func (u *URL) PathSegments() []string {
	if u.Path != nil {
		out := make([]string, 0, len(u.Path))
		for _, s := range u.Path {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	raw := u.Raw
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	hasHost := false
	if loc := schemePrefix.FindStringIndex(raw); loc != nil {
		raw = raw[loc[1]:]
		hasHost = true
	}

	parts := strings.Split(raw, "/")
	// A leading {{baseUrl}} style variable or a bare host stands for the host.
	if len(parts) > 0 && (hasHost || looksLikeHost(parts[0])) {
		parts = parts[1:]
	}

	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// NormalizedPath returns the templated request path, e.g. "users/{id}".
// Path variables (":id") and template variables ("{{id}}") become "{id}".
// With normalizeIDs set, literal numeric, UUID and long hex segments are
// replaced by {id}, {uuid} and {hex}.
func (r *Request) NormalizedPath(normalizeIDs bool) string {
	if r == nil || r.URL == nil {
		return ""
	}
	segs := r.URL.PathSegments()
	for i, seg := range segs {
		segs[i] = normalizeSegment(seg, normalizeIDs)
	}
	return strings.Join(segs, "/")
}

func looksLikeHost(seg string) bool {
	if strings.HasPrefix(seg, "{{") {
		return true
	}
	if seg == "" || strings.HasPrefix(seg, ":") {
		return false
	}
	return strings.Contains(seg, ".") || strings.Contains(seg, ":") || seg == "localhost"
}

func normalizeSegment(seg string, normalizeIDs bool) string {
	if strings.HasPrefix(seg, ":") && len(seg) > 1 {
		return "{" + seg[1:] + "}"
	}
	if m := templateVar.FindStringSubmatch(seg); m != nil {
		return "{" + m[1] + "}"
	}
	if normalizeIDs {
		return NormalizePathSegment(seg)
	}
	return seg
}
