package indexer

import (
	"net/url"
	"strings"
	"unicode"
)

// isDelimiter separates tokens. Besides whitespace it covers URL syntax,
// Postman's {{var}} and :param markers, and snake or kebab case.
func isDelimiter(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune("/?&=.-_:{}", r)
}

// Tokenize lowercases s and splits it into tokens of at least two bytes.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), isDelimiter)
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// TokenizeURL tokenizes the host, path and query keys of a request URL, in
// that order. Query values are example data and are skipped.
func TokenizeURL(rawURL string) []string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Tokenize(rawURL)
	}
	parts := []string{u.Host, u.Path}
	for _, pair := range strings.Split(u.RawQuery, "&") {
		key, _, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		parts = append(parts, key)
	}
	return Tokenize(strings.Join(parts, " "))
}

// TokenizeName tokenizes an item or folder name, breaking camelCase words
// apart, so "getUserById" yields get, user, by, id. Runs of capitals stay
// together.
func TokenizeName(name string) []string {
	var b strings.Builder
	afterLower := false
	for _, r := range name {
		if afterLower && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		afterLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	return Tokenize(b.String())
}
