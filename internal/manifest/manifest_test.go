package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/buildcheck/internal/manifest"
	"github.com/leapstack-labs/buildcheck/pkg/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `{
	"nodes": {
		"model.proj.users": {
			"name": "users",
			"resource_type": "model",
			"original_file_path": "models/users.sql",
			"patch_path": "proj://models/schema.yml",
			"database": "analytics",
			"schema": "public",
			"package_name": "proj",
			"description": "All users",
			"tags": ["core"],
			"columns": {
				"id": {"name": "id", "description": "Primary key", "data_type": "bigint"},
				"name": {"name": "name"}
			},
			"config": {"materialized": "table"}
		},
		"model.proj.orders": {
			"name": "orders",
			"resource_type": "model",
			"original_file_path": "models/orders.sql",
			"database": "analytics",
			"schema": "public",
			"package_name": "proj",
			"columns": {},
			"config": {"materialized": "incremental", "incremental_strategy": "delete+insert"}
		},
		"test.proj.not_null_users_id": {
			"name": "not_null_users_id",
			"resource_type": "test",
			"original_file_path": "tests/x.sql"
		}
	},
	"sources": {
		"source.proj.raw.events": {
			"name": "events",
			"resource_type": "source",
			"database": "raw_db",
			"schema": "raw"
		}
	}
}`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	m, err := manifest.Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	assert.Len(t, m.Nodes, 3)
	assert.Len(t, m.Sources, 1)

	users := m.Model("model.proj.users")
	require.NotNil(t, users)
	assert.Equal(t, "users", users.Name)
	assert.Equal(t, "analytics", users.Database)
	assert.Equal(t, []string{"core"}, users.Tags)
	assert.Equal(t, "Primary key", users.Columns["id"].Description)
	assert.Equal(t, "bigint", users.Columns["id"].DataType)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := manifest.Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading manifest")
}

func TestLoadMalformedJSON(t *testing.T) {
	_, err := manifest.Load(writeManifest(t, "{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing manifest")
}

func TestModelIDsFiltersByPrefix(t *testing.T) {
	m, err := manifest.Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, []string{"model.proj.orders", "model.proj.users"}, m.ModelIDs())
}

func TestModelColumnsSorted(t *testing.T) {
	m, err := manifest.Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, m.ModelColumns("model.proj.users"))
	assert.Empty(t, m.ModelColumns("model.proj.orders"))
	assert.Nil(t, m.ModelColumns("model.proj.missing"))
}

func TestModelPath(t *testing.T) {
	m, err := manifest.Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, "models/users.sql", m.ModelPath("model.proj.users"))
	assert.Equal(t, "", m.ModelPath("model.proj.missing"))
}

func TestReferenceableTables(t *testing.T) {
	m, err := manifest.Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	tables := m.ReferenceableTables()
	require.Len(t, tables, 3)

	assert.Equal(t, reconcile.KindModel, tables[0].Kind)
	assert.Equal(t, "orders", tables[0].Name)
	assert.Equal(t, "users", tables[1].Name)

	assert.Equal(t, reconcile.KindSource, tables[2].Kind)
	assert.Equal(t, "events", tables[2].Name)
	assert.Equal(t, "raw_db", tables[2].Catalog)
	assert.Equal(t, "raw", tables[2].Schema)
}

func TestMaterializationDefaults(t *testing.T) {
	m, err := manifest.Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	assert.Equal(t, "table", m.Model("model.proj.users").Materialization())
	assert.Equal(t, "delete+insert", m.Model("model.proj.orders").IncrementalStrategy())

	bare := &manifest.Node{}
	assert.Equal(t, "view", bare.Materialization())
	assert.Equal(t, "merge", bare.IncrementalStrategy())
}

func TestRestrictToByOriginalFilePath(t *testing.T) {
	m, err := manifest.Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	m.RestrictTo([]string{"models/users.sql"})

	assert.Equal(t, []string{"model.proj.users"}, m.ModelIDs())
	// Non-model nodes and sources survive restriction
	assert.NotNil(t, m.Nodes["test.proj.not_null_users_id"])
	assert.Len(t, m.Sources, 1)
}

func TestRestrictToByPatchPath(t *testing.T) {
	m, err := manifest.Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	// The package prefix of patch_path is stripped before matching
	m.RestrictTo([]string{"models/schema.yml"})

	assert.Equal(t, []string{"model.proj.users"}, m.ModelIDs())
}

func TestRestrictToNormalizesBackslashes(t *testing.T) {
	m, err := manifest.Load(writeManifest(t, sampleManifest))
	require.NoError(t, err)

	m.RestrictTo([]string{`models\users.sql`})
	assert.Equal(t, []string{"model.proj.users"}, m.ModelIDs())
}

func TestReadRestrictFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "files.txt")
	content := "# changed files\nmodels/users.sql\n\nmodels\\orders.sql\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	paths, err := manifest.ReadRestrictFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"models/users.sql", "models/orders.sql"}, paths)
}

func TestReadRestrictFileMissing(t *testing.T) {
	_, err := manifest.ReadRestrictFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}
