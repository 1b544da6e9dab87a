package reconcile

import "strings"

// TableKind distinguishes catalog entries built from models and sources.
type TableKind string

// Catalog entry kinds.
const (
	KindModel  TableKind = "model"
	KindSource TableKind = "source"
)

// TableMeta describes one referenceable table from the manifest.
type TableMeta struct {
	Kind    TableKind
	ID      string
	Name    string
	Catalog string
	Schema  string
}

// ReferenceCatalog maps normalized reference strings to the table they
// address. Each table is inserted at every granularity its metadata
// supports: name, schema.name, and catalog.schema.name.
type ReferenceCatalog map[string]TableMeta

// BuildCatalog constructs the lookup table for a set of referenceable
// tables. Keys are lower-cased; duplicate keys are overwritten silently,
// last write wins. The manifest is assumed free of colliding identifiers.
func BuildCatalog(tables []TableMeta) ReferenceCatalog {
	catalog := make(ReferenceCatalog)

	for _, table := range tables {
		if table.Name == "" {
			continue
		}
		name := strings.ToLower(table.Name)
		catalog[name] = table

		if table.Schema != "" {
			schema := strings.ToLower(table.Schema)
			catalog[schema+"."+name] = table

			if table.Catalog != "" {
				catalog[strings.ToLower(table.Catalog)+"."+schema+"."+name] = table
			}
		}
	}

	return catalog
}

// Resolve looks up a substituted reference string. Matching is exact; no
// partial or fuzzy matching is attempted.
func (c ReferenceCatalog) Resolve(ref string) (TableMeta, bool) {
	meta, ok := c[ref]
	return meta, ok
}
