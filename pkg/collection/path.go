package collection

import (
	"regexp"
	"strings"
)

var (
	uuidPattern    = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	numericPattern = regexp.MustCompile(`^\d+$`)
	hexPattern     = regexp.MustCompile(`^[0-9a-f]{8,}$`)
)

// NormalizePathSegment templates literal identifiers in a path segment.
// - numeric segments -> "{id}"
// - UUID patterns -> "{uuid}"
// - hex patterns (8+ chars) -> "{hex}"
func NormalizePathSegment(segment string) string {
	lower := strings.ToLower(segment)

	// UUID first, it also matches the hex pattern's alphabet
	if uuidPattern.MatchString(lower) {
		return "{uuid}"
	}
	if numericPattern.MatchString(segment) {
		return "{id}"
	}
	if hexPattern.MatchString(lower) {
		return "{hex}"
	}
	return segment
}
