// Package prompts contains MCP prompt implementations for swagman.
package prompts

// Config holds configuration needed by prompts.
type Config struct {
	DefaultCollection string
	MergeFolders      bool
	NormalizeIDs      bool
}
