// Package config provides configuration management for the buildcheck CLI.
//
// Configuration is layered: defaults, then an optional buildcheck.yaml
// file, then BUILDCHECK_* environment variables, then explicitly set
// command-line flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	Manifest           string `koanf:"manifest"`
	CompiledSQL        string `koanf:"compiled_sql"`
	Dialect            string `koanf:"dialect"`
	CheckTables        bool   `koanf:"check_tables"`
	CheckRequirements  bool   `koanf:"check_requirements"`
	RequirementsConfig string `koanf:"requirements_config"`
	RestrictToFiles    string `koanf:"restrict_to_files"`

	// Substitution pairs in original=substitute form, applied to table
	// references before validation.
	DatabaseSubstitutions []string `koanf:"database_substitutions"`
	SchemaSubstitutions   []string `koanf:"schema_substitutions"`

	Verbose bool   `koanf:"verbose"`
	Output  string `koanf:"output"`
}

// Default configuration values.
const (
	DefaultManifest    = "target/manifest.json"
	DefaultCompiledSQL = "target/compiled"
	DefaultDialect     = "snowflake"
	DefaultOutput      = "auto" // Auto-detect: TTY=styled text, non-TTY=plain
)
