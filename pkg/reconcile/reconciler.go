package reconcile

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/buildcheck/pkg/sqlparse"
)

// ManifestReader is the manifest collaborator the reconciler consumes. The
// manifest itself is loaded and owned elsewhere; the reconciler only reads.
type ManifestReader interface {
	// ModelIDs returns the identifiers of all model nodes, in manifest order.
	ModelIDs() []string
	// ModelColumns returns the declared column names for a model.
	ModelColumns(id string) []string
	// ModelPath returns the declared source file path for a model, or ""
	// when the manifest carries none.
	ModelPath(id string) string
	// ReferenceableTables returns every model and source that a compiled
	// SQL file may legitimately reference.
	ReferenceableTables() []TableMeta
}

// Options configures a Reconciler.
type Options struct {
	// CompiledRoot is the directory holding compiled SQL files, laid out
	// by each model's declared relative path.
	CompiledRoot string
	// Parser parses compiled SQL. Required.
	Parser Parser
	// CheckTables enables table-reference validation against the catalog.
	CheckTables bool
	// Subs rewrites catalog/schema segments of extracted references.
	Subs Substitutions
	// Logger receives verbose diagnostics. Defaults to a discard logger.
	Logger *slog.Logger
}

// CheckResult is the fixed-shape outcome of checking one model.
type CheckResult struct {
	NodeID            string   `json:"node_id"`
	OriginalFilePath  string   `json:"original_file_path"`
	SQLFilePath       string   `json:"sql_file_path"`
	SQLFileExists     bool     `json:"sql_file_exists"`
	SQLParsed         bool     `json:"sql_parsed"`
	TableReferences   []string `json:"table_references"`
	ValidReferences   []string `json:"valid_references"`
	InvalidReferences []string `json:"invalid_references"`
	ReferencesValid   bool     `json:"references_valid"`
	ManifestColumns   []string `json:"manifest_columns"`
	SQLColumns        []string `json:"sql_columns"`
	ColumnsMatch      bool     `json:"columns_match"`
	MissingInSQL      []string `json:"missing_in_sql"`
	ExtraInSQL        []string `json:"extra_in_sql"`
	Errors            []string `json:"errors"`
}

// Passed reports whether the model check found no errors and no mismatches.
func (r *CheckResult) Passed() bool {
	return len(r.Errors) == 0 && r.ColumnsMatch && r.ReferencesValid
}

// HasErrors reports whether the check hit a hard error (missing file,
// parse failure). Mismatches are not errors.
func (r *CheckResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Reconciler runs the per-model check pipeline: locate the compiled file,
// parse it, extract columns and table references, and match both against
// the manifest. One model's failure never stops the batch.
type Reconciler struct {
	manifest ManifestReader
	opts     Options
	catalog  ReferenceCatalog
	log      *slog.Logger
}

// NewReconciler creates a reconciler. The reference catalog is built once,
// up front, and only read afterwards.
func NewReconciler(manifest ManifestReader, opts Options) *Reconciler {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := &Reconciler{
		manifest: manifest,
		opts:     opts,
		log:      log,
	}
	if opts.CheckTables {
		r.catalog = BuildCatalog(manifest.ReferenceableTables())
		log.Debug("built reference catalog", "keys", len(r.catalog))
	}
	return r
}

// CheckAll checks every model in the manifest and returns one result per
// model, in manifest iteration order.
func (r *Reconciler) CheckAll() []*CheckResult {
	ids := r.manifest.ModelIDs()
	results := make([]*CheckResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, r.CheckModel(id))
	}
	return results
}

// CheckModel runs the full pipeline for one model.
func (r *Reconciler) CheckModel(id string) *CheckResult {
	result := &CheckResult{
		NodeID:            id,
		ReferencesValid:   true,
		TableReferences:   []string{},
		ValidReferences:   []string{},
		InvalidReferences: []string{},
		ManifestColumns:   []string{},
		SQLColumns:        []string{},
		MissingInSQL:      []string{},
		ExtraInSQL:        []string{},
		Errors:            []string{},
	}

	declaredPath := r.manifest.ModelPath(id)
	result.OriginalFilePath = declaredPath
	if declaredPath == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("model %s has no original_file_path in the manifest", id))
		return result
	}

	sqlPath := filepath.Join(r.opts.CompiledRoot, withSQLExtension(declaredPath))
	result.SQLFilePath = sqlPath

	content, err := os.ReadFile(sqlPath)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("compiled SQL file not found: %s", sqlPath))
		return result
	}
	result.SQLFileExists = true

	tree, ok := r.opts.Parser.Parse(string(content))
	if !ok {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to parse SQL file: %s", sqlPath))
		return result
	}
	result.SQLParsed = true

	r.checkColumns(id, tree, result)
	if r.opts.CheckTables {
		r.checkTables(tree, result)
	}

	r.log.Debug("checked model",
		"model", id,
		"columns_match", result.ColumnsMatch,
		"references_valid", result.ReferencesValid)

	return result
}

// checkColumns compares the SQL projection against the declared columns.
// Comparison is case-sensitive on both sides.
func (r *Reconciler) checkColumns(id string, tree *sqlparse.SelectStmt, result *CheckResult) {
	declared := make(map[string]struct{})
	for _, col := range r.manifest.ModelColumns(id) {
		declared[col] = struct{}{}
	}
	extracted := ExtractColumns(tree)

	result.ManifestColumns = sortedKeys(declared)
	result.SQLColumns = sortedKeys(extracted)
	result.MissingInSQL = sortedDifference(declared, extracted)
	result.ExtraInSQL = sortedDifference(extracted, declared)
	result.ColumnsMatch = len(result.MissingInSQL) == 0 && len(result.ExtraInSQL) == 0
}

// checkTables extracts table references, applies substitutions, and
// partitions the set into valid and invalid against the catalog.
func (r *Reconciler) checkTables(tree *sqlparse.SelectStmt, result *CheckResult) {
	substituted := make(map[string]struct{})
	for ref := range ExtractTableRefs(tree) {
		substituted[r.opts.Subs.Apply(ref)] = struct{}{}
	}

	valid := make(map[string]struct{})
	invalid := make(map[string]struct{})
	for ref := range substituted {
		if _, ok := r.catalog.Resolve(ref); ok {
			valid[ref] = struct{}{}
		} else {
			invalid[ref] = struct{}{}
		}
	}

	result.TableReferences = sortedKeys(substituted)
	result.ValidReferences = sortedKeys(valid)
	result.InvalidReferences = sortedKeys(invalid)
	result.ReferencesValid = len(invalid) == 0
}

// withSQLExtension strips any extension from the declared path and appends
// .sql, so manifests declaring .sql, .sql.jinja, or no extension all map to
// the compiled file.
func withSQLExtension(path string) string {
	ext := filepath.Ext(path)
	if ext != "" {
		path = strings.TrimSuffix(path, ext)
	}
	return path + ".sql"
}

// sortedKeys returns the keys of a set, sorted.
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedDifference returns a − b, sorted.
func sortedDifference(a, b map[string]struct{}) []string {
	diff := make([]string, 0)
	for k := range a {
		if _, ok := b[k]; !ok {
			diff = append(diff, k)
		}
	}
	sort.Strings(diff)
	return diff
}
