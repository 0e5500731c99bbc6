// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/usestring/swagman-mcp/internal/validate"
	"github.com/usestring/swagman-mcp/pkg/parser"
)

// Tool output limit defaults
const (
	DefaultSearchLimitValue = 10
	DefaultListLimitValue   = 50
	QueryMaxResultsValue    = 1000
)

// Config holds all configuration for the CLI and the MCP server.
type Config struct {
	CollectionPath  string        // SWAGMAN_COLLECTION, default "" (tools must name a collection)
	EnvironmentPath string        // SWAGMAN_ENVIRONMENT, default ""
	LoadTimeout     time.Duration // SWAGMAN_LOAD_TIMEOUT_MS, default 15000ms (15s)

	// Reference schemas for collection validation
	SchemaDir            string // SWAGMAN_SCHEMA_DIR, default "" (embedded schemas)
	DefaultSchemaVersion string // SWAGMAN_DEFAULT_SCHEMA_VERSION, default "2.1.0"

	// Inference behavior
	NormalizeIDs    bool // SWAGMAN_NORMALIZE_IDS, default false
	MergeFolders    bool // SWAGMAN_MERGE_FOLDERS, default false
	SentinelMarkers bool // SWAGMAN_SENTINEL_MARKERS, default false

	// OpenAPI output
	OpenAPIFormat string // SWAGMAN_OPENAPI_FORMAT, default "json"

	CollectionCacheMaxItems int // COLLECTION_CACHE_MAX_ITEMS, default 16

	// Tool output limits
	DefaultSearchLimit int // DEFAULT_SEARCH_LIMIT
	DefaultListLimit   int // DEFAULT_LIST_LIMIT
	QueryMaxResults    int // QUERY_MAX_RESULTS, default 1000

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFormat     string // LOG_FORMAT, "text" or "json", default "text"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		CollectionPath:  getEnvString("SWAGMAN_COLLECTION", ""),
		EnvironmentPath: getEnvString("SWAGMAN_ENVIRONMENT", ""),
		LoadTimeout:     getEnvDurationMs("SWAGMAN_LOAD_TIMEOUT_MS", 15000),

		SchemaDir:            getEnvString("SWAGMAN_SCHEMA_DIR", ""),
		DefaultSchemaVersion: getEnvString("SWAGMAN_DEFAULT_SCHEMA_VERSION", validate.DefaultVersion),

		NormalizeIDs:    getEnvBool("SWAGMAN_NORMALIZE_IDS", false),
		MergeFolders:    getEnvBool("SWAGMAN_MERGE_FOLDERS", false),
		SentinelMarkers: getEnvBool("SWAGMAN_SENTINEL_MARKERS", false),

		OpenAPIFormat: getEnvString("SWAGMAN_OPENAPI_FORMAT", "json"),

		CollectionCacheMaxItems: getEnvInt("COLLECTION_CACHE_MAX_ITEMS", 16),

		DefaultSearchLimit: getEnvInt("DEFAULT_SEARCH_LIMIT", DefaultSearchLimitValue),
		DefaultListLimit:   getEnvInt("DEFAULT_LIST_LIMIT", DefaultListLimitValue),
		QueryMaxResults:    getEnvInt("QUERY_MAX_RESULTS", QueryMaxResultsValue),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// ValidatorOptions returns the collection validator options the
// configuration selects.
func (c *Config) ValidatorOptions() []validate.Option {
	opts := []validate.Option{validate.WithDefaultVersion(c.DefaultSchemaVersion)}
	if c.SchemaDir != "" {
		opts = append(opts, validate.WithSchemaDir(c.SchemaDir))
	}
	return opts
}

// ParserOptions returns the parser options the configuration selects.
func (c *Config) ParserOptions() []parser.Option {
	return []parser.Option{
		parser.WithNormalizeIDs(c.NormalizeIDs),
		parser.WithMergeFolders(c.MergeFolders),
		parser.WithSentinelMarkers(c.SentinelMarkers),
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
