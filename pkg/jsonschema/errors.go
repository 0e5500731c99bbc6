package jsonschema

import "fmt"

// TypeMappingError reports an example value whose runtime category has no
// entry in the type lattice, such as a fractional number or a Go value that is
// not a decoded JSON value.
type TypeMappingError struct {
	Value any
}

func (e *TypeMappingError) Error() string {
	return fmt.Sprintf("no schema type for value %v (%T)", e.Value, e.Value)
}
