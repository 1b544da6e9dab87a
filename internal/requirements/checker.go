package requirements

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/leapstack-labs/buildcheck/internal/manifest"
)

// Result is the outcome of checking one model's requirements.
type Result struct {
	NodeID            string   `json:"node_id"`
	ModelName         string   `json:"model_name"`
	RequirementsValid bool     `json:"requirements_valid"`
	Errors            []string `json:"errors"`
	Warnings          []string `json:"warnings"`
}

// Checker evaluates the configured requirements against manifest models.
type Checker struct {
	manifest *manifest.Manifest
	config   *Config

	fullyExempt       []*regexp.Regexp
	descriptionExempt []*regexp.Regexp
}

// NewChecker creates a checker, compiling the exemption patterns up front.
// An invalid pattern is fatal.
func NewChecker(m *manifest.Manifest, cfg *Config) (*Checker, error) {
	fully, err := compilePatterns(cfg.Exclusions.FullyExempt)
	if err != nil {
		return nil, err
	}
	desc, err := compilePatterns(cfg.Exclusions.DescriptionExempt)
	if err != nil {
		return nil, err
	}

	return &Checker{
		manifest:          m,
		config:            cfg,
		fullyExempt:       fully,
		descriptionExempt: desc,
	}, nil
}

// compilePatterns translates glob-style patterns to regexps: * becomes .*
// and matching is anchored at the start of the model name.
func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := regexp.Compile("^(?:" + strings.ReplaceAll(pattern, "*", ".*") + ")")
		if err != nil {
			return nil, fmt.Errorf("invalid exemption pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

func matchesAny(patterns []*regexp.Regexp, name string) bool {
	for _, re := range patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// CheckAll checks every model in the manifest.
func (c *Checker) CheckAll() []*Result {
	ids := c.manifest.ModelIDs()
	results := make([]*Result, 0, len(ids))
	for _, id := range ids {
		results = append(results, c.CheckModel(id))
	}
	return results
}

// CheckModel checks the requirements of one model.
func (c *Checker) CheckModel(id string) *Result {
	result := &Result{
		NodeID:            id,
		RequirementsValid: true,
		Errors:            []string{},
		Warnings:          []string{},
	}

	node := c.manifest.Model(id)
	if node == nil {
		result.RequirementsValid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Model not found in manifest: %s", id))
		return result
	}
	result.ModelName = node.Name

	if matchesAny(c.fullyExempt, node.Name) {
		result.Warnings = append(result.Warnings, "Model is fully exempt from requirements")
		return result
	}

	result.Errors = append(result.Errors, c.checkRequiredColumns(node)...)
	result.Errors = append(result.Errors, c.checkColumnDescriptions(node)...)
	result.Errors = append(result.Errors, c.checkModelLevel(node)...)
	result.RequirementsValid = len(result.Errors) == 0

	return result
}

// requiredColumnsFor assembles the required-column rules that apply to one
// model: always-required, then materialization, incremental strategy (for
// incremental models only), tag, and package keyed rules.
func (c *Checker) requiredColumnsFor(node *manifest.Node) []RequiredColumn {
	required := append([]RequiredColumn{}, c.config.RequiredColumns.Always...)

	materialization := node.Materialization()
	if rules, ok := c.config.MaterializationRequirements[materialization]; ok {
		required = append(required, rules.RequiredColumns...)
	}

	if materialization == "incremental" {
		if rules, ok := c.config.IncrementalStrategyRequirements[node.IncrementalStrategy()]; ok {
			required = append(required, rules.RequiredColumns...)
		}
	}

	for _, tag := range node.Tags {
		if rules, ok := c.config.TagRequirements[tag]; ok {
			required = append(required, rules.RequiredColumns...)
		}
	}

	if rules, ok := c.config.PackageRequirements[node.PackageName]; ok {
		required = append(required, rules.RequiredColumns...)
	}

	return required
}

func (c *Checker) checkRequiredColumns(node *manifest.Node) []string {
	var errors []string

	for _, req := range c.requiredColumnsFor(node) {
		col, ok := node.Columns[req.Name]
		if !ok {
			errors = append(errors, fmt.Sprintf("Missing required column: %s", req.Name))
			continue
		}

		if req.Description && col.Description == "" {
			errors = append(errors, fmt.Sprintf("Column '%s' missing required description", req.Name))
		}

		if req.DataType != "" {
			got := strings.ToLower(col.DataType)
			want := strings.ToLower(req.DataType)
			if got != want {
				errors = append(errors, fmt.Sprintf(
					"Column '%s' has data type '%s', expected '%s'", req.Name, got, want))
			}
		}
	}

	return errors
}

func (c *Checker) checkColumnDescriptions(node *manifest.Node) []string {
	if matchesAny(c.descriptionExempt, node.Name) {
		return nil
	}

	var errors []string
	for _, name := range c.config.ColumnValidation.RequireDescriptions {
		if col, ok := node.Columns[name]; ok && col.Description == "" {
			errors = append(errors, fmt.Sprintf("Column '%s' requires a description", name))
		}
	}
	return errors
}

func (c *Checker) checkModelLevel(node *manifest.Node) []string {
	var errors []string
	if c.config.ModelRequirements.RequireDescription && node.Description == "" {
		errors = append(errors, "Model missing required description")
	}
	return errors
}
