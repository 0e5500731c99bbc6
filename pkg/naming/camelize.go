// Package naming derives stable identifiers for schema entries.
package naming

import (
	"strings"
)

// Camelize turns arbitrary text into a PascalCase identifier.
// Runs of characters outside ASCII [A-Za-z0-9] act as delimiters and are
// dropped, so results are always valid OpenAPI component keys. The
// first letter of every remaining segment is upper-cased and the segments are
// concatenated. The rest of each segment is left untouched, so already clean
// identifiers come back unchanged.
//
//	Camelize("foo-bar_baz") == "FooBarBaz"
//	Camelize("users/{id}")  == "UsersId"
//	Camelize("FooBar")      == "FooBar"
func Camelize(s string) string {
	segments := strings.FieldsFunc(s, func(r rune) bool { return !isASCIIAlnum(r) })

	var sb strings.Builder
	sb.Grow(len(s))
	for _, seg := range segments {
		sb.WriteString(strings.ToUpper(seg[:1]))
		sb.WriteString(seg[1:])
	}
	return sb.String()
}

func isASCIIAlnum(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9'
}
