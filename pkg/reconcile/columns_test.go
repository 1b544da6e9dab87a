package reconcile_test

import (
	"sort"
	"testing"

	"github.com/leapstack-labs/buildcheck/pkg/reconcile"
	"github.com/leapstack-labs/buildcheck/pkg/sqlparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractColumns(t *testing.T, sql string) []string {
	t.Helper()
	stmt, err := sqlparse.ParseDialect(sql, sqlparse.Snowflake)
	require.NoError(t, err)

	set := reconcile.ExtractColumns(stmt)
	cols := make([]string, 0, len(set))
	for col := range set {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func TestExtractColumns(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "bare columns",
			sql:  "SELECT id, name, email FROM raw_users",
			want: []string{"email", "id", "name"},
		},
		{
			name: "aliases win over column names",
			sql:  "SELECT id AS user_id, name FROM t",
			want: []string{"name", "user_id"},
		},
		{
			name: "qualified columns use the column part",
			sql:  "SELECT u.id, u.name FROM users u",
			want: []string{"id", "name"},
		},
		{
			name: "function call exposes its name",
			sql:  "SELECT count(*), now() FROM t",
			want: []string{"count", "now"},
		},
		{
			name: "alias wins over function name",
			sql:  "SELECT count(*) AS n FROM t",
			want: []string{"n"},
		},
		{
			name: "cast recurses to the inner name",
			sql:  "SELECT CAST(amount AS numeric) FROM t",
			want: []string{"amount"},
		},
		{
			name: "cast shorthand recurses too",
			sql:  "SELECT amount::numeric FROM t",
			want: []string{"amount"},
		},
		{
			name: "parens recurse to the inner name",
			sql:  "SELECT (id) FROM t",
			want: []string{"id"},
		},
		{
			name: "nameless expressions are skipped",
			sql:  "SELECT id, a + b, 'x', 42 FROM t",
			want: []string{"id"},
		},
		{
			name: "nameless expressions with aliases are kept",
			sql:  "SELECT a + b AS total, 'x' AS label FROM t",
			want: []string{"label", "total"},
		},
		{
			name: "stars are skipped",
			sql:  "SELECT *, t.*, id FROM t",
			want: []string{"id"},
		},
		{
			name: "case expression needs an alias",
			sql:  "SELECT CASE WHEN x > 0 THEN 1 ELSE 0 END AS sign, CASE WHEN y THEN 1 END FROM t",
			want: []string{"sign"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractColumns(t, tt.sql))
		})
	}
}

func TestExtractColumnsOutermostOnly(t *testing.T) {
	sql := `WITH staged AS (
		SELECT raw_id, raw_name, raw_extra FROM source_table
	)
	SELECT raw_id AS id, raw_name AS name FROM staged`

	assert.Equal(t, []string{"id", "name"}, extractColumns(t, sql))
}

func TestExtractColumnsNestedCTEs(t *testing.T) {
	sql := `WITH a AS (
		SELECT x, y, z FROM t1
	), b AS (
		SELECT x FROM a
	)
	SELECT b.x, current_timestamp() AS checked_at FROM b`

	assert.Equal(t, []string{"checked_at", "x"}, extractColumns(t, sql))
}

func TestExtractColumnsSetOperationUsesLeftBranch(t *testing.T) {
	sql := "SELECT id, name FROM a UNION ALL SELECT ident, label FROM b"
	assert.Equal(t, []string{"id", "name"}, extractColumns(t, sql))
}

func TestExtractColumnsPreservesCase(t *testing.T) {
	// Column comparison is case-sensitive; extraction must not fold case.
	sql := `SELECT UserID, "MixedCase" AS DisplayName FROM t`
	assert.Equal(t, []string{"DisplayName", "UserID"}, extractColumns(t, sql))
}

func TestExtractColumnsNilTree(t *testing.T) {
	assert.Empty(t, reconcile.ExtractColumns(nil))
}
