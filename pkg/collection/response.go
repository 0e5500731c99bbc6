package collection

import (
	"bytes"
	"errors"
	"strings"

	"github.com/goccy/go-json"

	"github.com/usestring/swagman-mcp/pkg/contenttype"
	"github.com/usestring/swagman-mcp/pkg/example"
)

// Response is a recorded example response.
type Response struct {
	ID              string   `json:"id,omitempty"`
	Name            string   `json:"name,omitempty"`
	OriginalRequest *Request `json:"originalRequest,omitempty"`
	Status          string   `json:"status,omitempty"`
	Code            int      `json:"code,omitempty"`
	Header          Headers  `json:"header,omitempty"`
	Body            string   `json:"body,omitempty"`
	PreviewLanguage string   `json:"_postman_previewlanguage,omitempty"`
}

// Headers is a header list. Older exports store response headers as a single
// string; that form carries no usable entries and decodes to an empty list.
type Headers []Header

// UnmarshalJSON accepts the list and the legacy string forms.
func (h *Headers) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		*h = nil
		return nil
	}
	var list []Header
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*h = list
	return nil
}

// Get returns the value of the first enabled header named key,
// case-insensitively.
func (h Headers) Get(key string) string {
	for _, hdr := range h {
		if !hdr.Disabled && strings.EqualFold(hdr.Key, key) {
			return hdr.Value
		}
	}
	return ""
}

// ContentType returns the response content type from its headers, falling
// back to the preview language Postman recorded.
func (r *Response) ContentType() string {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return contenttype.FromPreviewLanguage(r.PreviewLanguage)
}

// IsJSON reports whether the response is labeled as JSON.
func (r *Response) IsJSON() bool {
	return contenttype.Classify(r.ContentType()) == contenttype.JSON
}

// DecodeBody returns the response body as an example value. ok is false when
// the body is empty or is unlabeled non-JSON text. A body labeled JSON that
// does not parse yields a *BodyDecodeError.
func (r *Response) DecodeBody(opts ...example.DecodeOption) (value any, ok bool, err error) {
	body := bytes.TrimSpace([]byte(r.Body))
	if len(body) == 0 {
		return nil, false, nil
	}

	v, err := example.Decode(body, opts...)
	if err != nil {
		if r.IsJSON() && errors.Is(err, example.ErrInvalidJSON) {
			return nil, false, &BodyDecodeError{Response: r.Name, Code: r.Code, Err: err}
		}
		return nil, false, nil
	}
	return v, true, nil
}
