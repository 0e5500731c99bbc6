package collection

import "fmt"

// MissingFieldError reports a leaf item without an expected field.
type MissingFieldError struct {
	Item  string // item name, or its URI when unnamed
	Field string // e.g. "request", "response", "request.url"
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("item %q: missing %s", e.Item, e.Field)
}

// BodyDecodeError reports a response body labeled JSON that is not valid JSON.
type BodyDecodeError struct {
	Response string
	Code     int
	Err      error
}

func (e *BodyDecodeError) Error() string {
	return fmt.Sprintf("response %q (%d): decoding JSON body: %v", e.Response, e.Code, e.Err)
}

func (e *BodyDecodeError) Unwrap() error {
	return e.Err
}

// CheckLeaf verifies that a leaf item has the request and response fields
// the extractors need.
func CheckLeaf(it *Item) error {
	name := it.Name
	if it.Request == nil {
		return &MissingFieldError{Item: name, Field: "request"}
	}
	if name == "" {
		name = it.Request.URI()
	}
	if it.Request.URL == nil {
		return &MissingFieldError{Item: name, Field: "request.url"}
	}
	if it.Response == nil {
		return &MissingFieldError{Item: name, Field: "response"}
	}
	return nil
}
