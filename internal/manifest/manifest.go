// Package manifest loads a dbt-style manifest.json and exposes the model
// and source metadata the checkers consume.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/leapstack-labs/buildcheck/pkg/reconcile"
)

// Resource ID prefixes in the manifest's nodes/sources maps.
const (
	modelPrefix  = "model."
	sourcePrefix = "source."
)

// Manifest is the parsed manifest document. Nodes holds models, tests,
// seeds and snapshots keyed by resource ID; Sources holds source tables.
type Manifest struct {
	Nodes   map[string]*Node `json:"nodes"`
	Sources map[string]*Node `json:"sources"`
}

// Node is one manifest entry. The same shape covers nodes and sources;
// sources leave the config fields empty.
type Node struct {
	Name             string             `json:"name"`
	ResourceType     string             `json:"resource_type"`
	OriginalFilePath string             `json:"original_file_path"`
	PatchPath        string             `json:"patch_path"`
	Database         string             `json:"database"`
	Schema           string             `json:"schema"`
	PackageName      string             `json:"package_name"`
	Description      string             `json:"description"`
	Tags             []string           `json:"tags"`
	Columns          map[string]*Column `json:"columns"`
	Config           NodeConfig         `json:"config"`
}

// Column is one declared column with its governance metadata.
type Column struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DataType    string `json:"data_type"`
}

// NodeConfig carries the materialization settings of a model.
type NodeConfig struct {
	Materialized        string `json:"materialized"`
	IncrementalStrategy string `json:"incremental_strategy"`
}

// Load reads and parses a manifest file. A missing file or malformed JSON
// is fatal for the whole run.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	if m.Nodes == nil {
		m.Nodes = make(map[string]*Node)
	}
	if m.Sources == nil {
		m.Sources = make(map[string]*Node)
	}
	return &m, nil
}

// ModelIDs returns the IDs of all model nodes, sorted.
func (m *Manifest) ModelIDs() []string {
	var ids []string
	for id := range m.Nodes {
		if strings.HasPrefix(id, modelPrefix) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Model returns the node for a model ID, or nil.
func (m *Manifest) Model(id string) *Node {
	return m.Nodes[id]
}

// ModelColumns returns the declared column names for a model, sorted.
func (m *Manifest) ModelColumns(id string) []string {
	node := m.Nodes[id]
	if node == nil {
		return nil
	}
	cols := make([]string, 0, len(node.Columns))
	for name := range node.Columns {
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}

// ModelPath returns the declared source file path for a model, or "".
func (m *Manifest) ModelPath(id string) string {
	node := m.Nodes[id]
	if node == nil {
		return ""
	}
	return node.OriginalFilePath
}

// ReferenceableTables returns every model and source as catalog metadata.
// Models come first, then sources, each group sorted by ID, so catalog
// collisions resolve deterministically.
func (m *Manifest) ReferenceableTables() []reconcile.TableMeta {
	var tables []reconcile.TableMeta

	for _, id := range m.ModelIDs() {
		node := m.Nodes[id]
		tables = append(tables, reconcile.TableMeta{
			Kind:    reconcile.KindModel,
			ID:      id,
			Name:    node.Name,
			Catalog: node.Database,
			Schema:  node.Schema,
		})
	}

	var sourceIDs []string
	for id := range m.Sources {
		sourceIDs = append(sourceIDs, id)
	}
	sort.Strings(sourceIDs)
	for _, id := range sourceIDs {
		node := m.Sources[id]
		tables = append(tables, reconcile.TableMeta{
			Kind:    reconcile.KindSource,
			ID:      id,
			Name:    node.Name,
			Catalog: node.Database,
			Schema:  node.Schema,
		})
	}

	return tables
}

// Materialization returns the model's materialization, defaulting to view
// when the manifest carries none.
func (n *Node) Materialization() string {
	if n.Config.Materialized == "" {
		return "view"
	}
	return n.Config.Materialized
}

// IncrementalStrategy returns the model's incremental strategy, defaulting
// to merge when the manifest carries none.
func (n *Node) IncrementalStrategy() string {
	if n.Config.IncrementalStrategy == "" {
		return "merge"
	}
	return n.Config.IncrementalStrategy
}

// strippedPatchPath returns the patch path with the package prefix removed:
// "pkg://models/schema.yml" becomes "models/schema.yml".
func (n *Node) strippedPatchPath() string {
	if n.PatchPath == "" {
		return ""
	}
	if _, rest, found := strings.Cut(n.PatchPath, "://"); found {
		return rest
	}
	return n.PatchPath
}
