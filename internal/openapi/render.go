package openapi

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatYAML:
		return Format(s), nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported format: %s (supported: json, yaml)", s)
}

// Render encodes doc, applying overlays in order. An overlay starting with
// '[' is an RFC 6902 JSON Patch, anything else an RFC 7386 merge patch.
// Overlaid documents lose their original key order.
func Render(doc *Document, format Format, overlays ...[]byte) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}

	for i, overlay := range overlays {
		data, err = applyOverlay(data, overlay)
		if err != nil {
			return nil, fmt.Errorf("overlay %d: %w", i+1, err)
		}
	}

	switch format {
	case FormatJSON, "":
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return nil, fmt.Errorf("indenting JSON: %w", err)
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	case FormatYAML:
		return jsonToYAML(data)
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml)", format)
	}
}

// WriteFile renders doc to path, creating parent directories.
func WriteFile(path string, doc *Document, format Format, overlays ...[]byte) error {
	data, err := Render(doc, format, overlays...)
	if err != nil {
		return err
	}
	return WriteBytes(path, data)
}

// WriteBytes writes an already rendered document to path, creating parent
// directories.
func WriteBytes(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// Write renders doc to w.
func Write(w io.Writer, doc *Document, format Format, overlays ...[]byte) error {
	data, err := Render(doc, format, overlays...)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func applyOverlay(doc, overlay []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(overlay)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		patch, err := jsonpatch.DecodePatch(trimmed)
		if err != nil {
			return nil, fmt.Errorf("decoding JSON patch: %w", err)
		}
		return patch.Apply(doc)
	}
	return jsonpatch.MergePatch(doc, trimmed)
}

// jsonToYAML re-encodes a JSON document as block-style YAML, keeping key
// order.
func jsonToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decoding JSON as YAML: %w", err)
	}
	clearStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}
