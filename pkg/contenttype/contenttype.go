// Package contenttype classifies the content types of recorded example
// bodies.
package contenttype

import (
	"mime"
	"strings"
	"unicode/utf8"
)

// Category is the broad kind of a body, which decides how it can be queried.
type Category string

const (
	JSON   Category = "json"
	XML    Category = "xml"
	HTML   Category = "html"
	YAML   Category = "yaml"
	Form   Category = "form"
	Text   Category = "text"
	Binary Category = "binary"
)

// exact maps media types whose subtype carries no usable marker.
var exact = map[string]Category{
	"text/html":                         HTML,
	"application/xhtml+xml":             HTML,
	"application/x-www-form-urlencoded": Form,
	"application/javascript":            Text,
	"application/ecmascript":            Text,
	"application/graphql":               Text,
	"application/sql":                   Text,
}

// markers are searched for in the subtype, first match wins, so
// "application/vnd.api+json" is JSON and "application/atom+xml" is XML.
var markers = []struct {
	marker   string
	category Category
}{
	{"json", JSON},
	{"xml", XML},
	{"yaml", YAML},
}

// binaryTypes are top-level types that never hold text.
var binaryTypes = map[string]bool{"image": true, "audio": true, "video": true, "font": true}

// binaryMarkers flag application/* subtypes that are known to be binary.
var binaryMarkers = []string{"octet-stream", "zip", "pdf", "protobuf", "msgpack"}

// mediaType lowercases a Content-Type value and drops its parameters.
func mediaType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// Classify returns the category of a Content-Type value. Empty and
// unrecognized values are Binary.
func Classify(contentType string) Category {
	mt := mediaType(contentType)
	if c, ok := exact[mt]; ok {
		return c
	}
	kind, sub, _ := strings.Cut(mt, "/")
	for _, m := range markers {
		if strings.Contains(sub, m.marker) {
			return m.category
		}
	}
	if kind == "text" {
		return Text
	}
	return Binary
}

// IsBinary reports whether a body should be skipped by text queries. Types
// that Classify cannot place fall back to UTF-8 validation of data.
func IsBinary(contentType string, data []byte) bool {
	if Classify(contentType) != Binary {
		return false
	}
	kind, sub, _ := strings.Cut(mediaType(contentType), "/")
	if binaryTypes[kind] {
		return true
	}
	for _, m := range binaryMarkers {
		if strings.Contains(sub, m) {
			return true
		}
	}
	return !utf8.Valid(data)
}

// IsJSON reports whether contentType is JSON or a +json variant.
func IsJSON(contentType string) bool {
	return Classify(contentType) == JSON
}

var previewLanguages = map[string]string{
	"json":       "application/json",
	"xml":        "application/xml",
	"html":       "text/html",
	"text":       "text/plain",
	"javascript": "application/javascript",
}

// FromPreviewLanguage maps the preview language Postman records on saved
// responses ("json", "xml", "html", "text") to a content type. Unknown
// languages map to "".
func FromPreviewLanguage(lang string) string {
	return previewLanguages[strings.ToLower(lang)]
}
