package collection

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

// Environment holds {{name}} substitutions for request URLs.
// A nil *Environment substitutes nothing.
type Environment struct {
	Name   string             `json:"name,omitempty"`
	Values []EnvironmentValue `json:"values"`
}

// EnvironmentValue is one environment entry.
type EnvironmentValue struct {
	Key     string `json:"key"`
	Value   any    `json:"value"`
	Enabled *bool  `json:"enabled,omitempty"`
}

// ParseEnvironment decodes a Postman environment export.
func ParseEnvironment(data []byte) (*Environment, error) {
	var env Environment
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &env, nil
}

// LoadEnvironment reads and parses an environment file.
func LoadEnvironment(ctx context.Context, path string) (*Environment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading environment %s: %w", path, err)
	}
	return ParseEnvironment(data)
}

// EnvironmentFromVariables builds an environment from collection variables.
func EnvironmentFromVariables(vars []Variable) *Environment {
	env := &Environment{Values: make([]EnvironmentValue, 0, len(vars))}
	for _, v := range vars {
		enabled := !v.Disabled
		env.Values = append(env.Values, EnvironmentValue{Key: v.Key, Value: v.Value, Enabled: &enabled})
	}
	return env
}

var placeholder = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// Lookup returns the value of an enabled entry.
func (e *Environment) Lookup(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, v := range e.Values {
		if v.Key != key || (v.Enabled != nil && !*v.Enabled) {
			continue
		}
		if v.Value == nil {
			return "", true
		}
		return fmt.Sprint(v.Value), true
	}
	return "", false
}

// Expand replaces known {{name}} placeholders in s. Unknown names are kept.
func (e *Environment) Expand(s string) string {
	if e == nil || !strings.Contains(s, "{{") {
		return s
	}
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := e.Lookup(name); ok {
			return v
		}
		return m
	})
}

// Apply returns a copy of item with placeholders in its request URL
// expanded. The input item is not modified.
func (e *Environment) Apply(item Item) Item {
	if e == nil || item.Request == nil || item.Request.URL == nil {
		return item
	}

	req := *item.Request
	u := *req.URL
	u.Raw = e.Expand(u.Raw)
	u.Host = e.expandAll(u.Host)
	u.Path = e.expandAll(u.Path)
	req.URL = &u
	item.Request = &req
	return item
}

func (e *Environment) expandAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = e.Expand(s)
	}
	return out
}
