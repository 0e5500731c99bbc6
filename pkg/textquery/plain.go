package textquery

import (
	"fmt"
	"net/url"
	"regexp"
)

// compileRegex returns an extractor yielding the first capture group of each
// match, or the whole match when the pattern has no groups.
func compileRegex(expression string) (extractor, error) {
	re, err := regexp.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}
	group := 0
	if re.NumSubexp() > 0 {
		group = 1
	}
	return func(body []byte, _ string, limit int) ([]any, []string, error) {
		n := -1
		if limit > 0 {
			n = limit
		}
		var values []any
		for _, m := range re.FindAllSubmatch(body, n) {
			values = append(values, string(m[group]))
		}
		return values, nil, nil
	}, nil
}

// formExtractor looks a key up in a form-urlencoded body. "*" or "." yields
// a single map of every field; fields sent more than once become lists.
func formExtractor(key string) extractor {
	return func(body []byte, _ string, limit int) ([]any, []string, error) {
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, nil, fmt.Errorf("parsing form body: %w", err)
		}
		if key == "*" || key == "." {
			fields := make(map[string]any, len(form))
			for k, vs := range form {
				if len(vs) == 1 {
					fields[k] = vs[0]
					continue
				}
				list := make([]any, len(vs))
				for i, v := range vs {
					list[i] = v
				}
				fields[k] = list
			}
			return []any{fields}, nil, nil
		}
		var values []any
		for _, v := range form[key] {
			if limit > 0 && len(values) >= limit {
				break
			}
			values = append(values, v)
		}
		return values, nil, nil
	}
}
