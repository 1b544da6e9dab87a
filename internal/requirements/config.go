// Package requirements evaluates governance rules against manifest models:
// required columns keyed by materialization, incremental strategy, tag and
// package, description and data-type requirements, and glob-style
// exemption patterns.
package requirements

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RequiredColumn is one required-column rule. Description set to true
// requires the column to carry a non-empty description; DataType, when set,
// must match the declared type case-insensitively.
type RequiredColumn struct {
	Name        string `yaml:"name"`
	Description bool   `yaml:"description"`
	DataType    string `yaml:"data_type"`
}

// ColumnRules groups the required columns for one materialization,
// strategy, tag, or package key.
type ColumnRules struct {
	RequiredColumns []RequiredColumn `yaml:"required_columns"`
}

// Config is the requirements configuration document.
type Config struct {
	RequiredColumns struct {
		Always []RequiredColumn `yaml:"always"`
	} `yaml:"required_columns"`

	MaterializationRequirements     map[string]ColumnRules `yaml:"materialization_requirements"`
	IncrementalStrategyRequirements map[string]ColumnRules `yaml:"incremental_strategy_requirements"`
	TagRequirements                 map[string]ColumnRules `yaml:"tag_requirements"`
	PackageRequirements             map[string]ColumnRules `yaml:"package_requirements"`

	ColumnValidation struct {
		RequireDescriptions []string `yaml:"require_descriptions"`
	} `yaml:"column_validation"`

	ModelRequirements struct {
		RequireDescription bool `yaml:"require_description"`
	} `yaml:"model_requirements"`

	// Exclusions hold glob-style model-name patterns; * matches any
	// sequence and matching is anchored at the start of the name.
	Exclusions struct {
		FullyExempt       []string `yaml:"fully_exempt"`
		DescriptionExempt []string `yaml:"description_exempt"`
	} `yaml:"exclusions"`
}

// LoadConfig reads and parses a requirements configuration file. A missing
// file or malformed YAML is fatal for the whole run.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading requirements config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing requirements config %s: %w", path, err)
	}
	return &cfg, nil
}
