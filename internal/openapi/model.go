package openapi

import (
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Version is the OpenAPI version of generated documents.
const Version = "3.0.3"

// Document is an OpenAPI document. Maps are insertion-ordered so output
// follows collection order.
type Document struct {
	OpenAPI    string                                    `json:"openapi"`
	Info       Info                                      `json:"info"`
	Servers    []Server                                  `json:"servers,omitempty"`
	Paths      *orderedmap.OrderedMap[string, *PathItem] `json:"paths"`
	Components Components                                `json:"components"`
	Tags       []Tag                                     `json:"tags,omitempty"`
}

// Info is the document's info block.
type Info struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

// Server is an API server entry.
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// PathItem holds the operations of one path.
type PathItem struct {
	Get     *Operation `json:"get,omitempty"`
	Put     *Operation `json:"put,omitempty"`
	Post    *Operation `json:"post,omitempty"`
	Delete  *Operation `json:"delete,omitempty"`
	Options *Operation `json:"options,omitempty"`
	Head    *Operation `json:"head,omitempty"`
	Patch   *Operation `json:"patch,omitempty"`
}

// Operation is one method on a path.
type Operation struct {
	Tags        []string                                  `json:"tags,omitempty"`
	Summary     string                                    `json:"summary,omitempty"`
	Description string                                    `json:"description,omitempty"`
	OperationID string                                    `json:"operationId,omitempty"`
	Parameters  []Parameter                               `json:"parameters,omitempty"`
	RequestBody *RequestBody                              `json:"requestBody,omitempty"`
	Responses   *orderedmap.OrderedMap[string, *Response] `json:"responses"`
}

// Parameter is a path or query parameter.
type Parameter struct {
	Name     string             `json:"name"`
	In       string             `json:"in"`
	Required bool               `json:"required,omitempty"`
	Schema   *jsonschema.Schema `json:"schema"`
	Example  any                `json:"example,omitempty"`
}

// RequestBody describes a request payload.
type RequestBody struct {
	Content  map[string]MediaType `json:"content"`
	Required bool                 `json:"required,omitempty"`
}

// Response describes one status code.
type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// MediaType binds a schema to a content type.
type MediaType struct {
	Schema *jsonschema.Schema `json:"schema"`
}

// Components holds reusable schemas.
type Components struct {
	Schemas *orderedmap.OrderedMap[string, *jsonschema.Schema] `json:"schemas"`
}

// Tag groups operations, one per top-level folder.
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// operation returns the slot for method, or nil for unsupported methods.
func (p *PathItem) operation(method string) **Operation {
	switch method {
	case "get":
		return &p.Get
	case "put":
		return &p.Put
	case "post":
		return &p.Post
	case "delete":
		return &p.Delete
	case "options":
		return &p.Options
	case "head":
		return &p.Head
	case "patch":
		return &p.Patch
	}
	return nil
}
