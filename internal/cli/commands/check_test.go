package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checkManifest = `{
	"nodes": {
		"model.proj.users": {
			"name": "users",
			"resource_type": "model",
			"original_file_path": "models/users.sql",
			"database": "analytics",
			"schema": "public",
			"columns": {
				"id": {"name": "id"},
				"email": {"name": "email"}
			}
		}
	},
	"sources": {
		"source.proj.raw.users": {
			"name": "users",
			"resource_type": "source",
			"database": "raw_db",
			"schema": "raw"
		}
	}
}`

// writeProject lays out a manifest and compiled SQL files in a temp dir and
// points the environment at them.
func writeProject(t *testing.T, manifestJSON string, files map[string]string) {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(manifestJSON), 0o644))
	for path, sql := range files {
		full := filepath.Join(dir, "compiled", path)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(sql), 0o644))
	}

	t.Setenv("BUILDCHECK_MANIFEST", filepath.Join(dir, "manifest.json"))
	t.Setenv("BUILDCHECK_COMPILED_SQL", filepath.Join(dir, "compiled"))
	t.Setenv("BUILDCHECK_OUTPUT", "json")
}

func executeCheck(t *testing.T) (string, error) {
	t.Helper()
	cmd := NewCheckCommand()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	err := cmd.Execute()
	return buf.String(), err
}

func TestCheckCommandPasses(t *testing.T) {
	writeProject(t, checkManifest, map[string]string{
		"models/users.sql": "SELECT id, email FROM raw_db.raw.users",
	})

	out, err := executeCheck(t)
	require.NoError(t, err)
	assert.Contains(t, out, `"columns_match": true`)
	assert.Contains(t, out, `"passed": 1`)
	assert.Contains(t, out, `"failed": 0`)
}

func TestCheckCommandColumnMismatchFails(t *testing.T) {
	writeProject(t, checkManifest, map[string]string{
		"models/users.sql": "SELECT id FROM raw_db.raw.users",
	})

	out, err := executeCheck(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 models failed validation")
	assert.Contains(t, out, `"columns_match": false`)
	assert.Contains(t, out, "email")
}

func TestCheckCommandTableValidation(t *testing.T) {
	writeProject(t, checkManifest, map[string]string{
		"models/users.sql": "SELECT id, email FROM raw_db.raw.users JOIN unknown_db.s.t ON 1 = 1",
	})
	t.Setenv("BUILDCHECK_CHECK_TABLES", "true")

	out, err := executeCheck(t)
	require.Error(t, err)
	assert.Contains(t, out, `"references_valid": false`)
	assert.Contains(t, out, "unknown_db.s.t")
}

func TestCheckCommandMissingFile(t *testing.T) {
	writeProject(t, checkManifest, nil)

	out, err := executeCheck(t)
	require.Error(t, err)
	assert.Contains(t, out, `"sql_file_exists": false`)
	assert.Contains(t, out, "compiled SQL file not found")
}

func TestCheckCommandUnknownDialect(t *testing.T) {
	writeProject(t, checkManifest, map[string]string{
		"models/users.sql": "SELECT id, email FROM raw_db.raw.users",
	})
	t.Setenv("BUILDCHECK_DIALECT", "oracle")

	_, err := executeCheck(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestListCommandJSON(t *testing.T) {
	writeProject(t, checkManifest, nil)

	cmd := NewListCommand()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), `"node_id": "model.proj.users"`)
	assert.Contains(t, buf.String(), `"materialization": "view"`)
}

func TestListCommandTable(t *testing.T) {
	writeProject(t, checkManifest, nil)
	t.Setenv("BUILDCHECK_OUTPUT", "text")

	cmd := NewListCommand()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "Models (1 total)")
	assert.Contains(t, out, "model.proj.users")
	assert.Contains(t, out, "models/users.sql")
}
