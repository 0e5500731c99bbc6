package parser

import (
	"strings"

	"github.com/usestring/swagman-mcp/pkg/collection"
)

// Title returns info.name.
func (p *Parser) Title() string {
	if !p.c.Info.HasName {
		return DefaultTitle
	}
	return p.c.Info.Name
}

// Description returns info.description.
func (p *Parser) Description() string {
	if !p.c.Info.HasDescription {
		return DefaultDescription
	}
	return string(p.c.Info.Description)
}

// Version returns info.version.
func (p *Parser) Version() string {
	if !p.c.Info.HasVersion {
		return DefaultVersion
	}
	return string(p.c.Info.Version)
}

// Host returns the API host. Collections do not record one.
func (p *Parser) Host() string {
	return DefaultHost
}

// BasePath returns the API base path.
func (p *Parser) BasePath() string {
	return DefaultBasePath
}

// Schemes returns the API URL schemes.
func (p *Parser) Schemes() []string {
	return append([]string(nil), DefaultSchemes...)
}

// Schema returns info.schema, or collection.DefaultSchema when absent.
func (p *Parser) Schema() string {
	if p.c.Info.Schema == "" {
		return collection.DefaultSchema
	}
	return p.c.Info.Schema
}

// SchemaVersion extracts the format version from the info.schema URL, e.g.
// "v2.1.0" from ".../collection/v2.1.0/collection.json". It returns "" when
// the schema is not such a URL.
func (p *Parser) SchemaVersion() string {
	m := schemaURLPattern.FindStringSubmatch(p.Schema())
	if m == nil {
		return ""
	}
	return m[1]
}

// VersionNumber is SchemaVersion without its leading "v".
func (p *Parser) VersionNumber() string {
	return strings.TrimPrefix(p.SchemaVersion(), "v")
}
