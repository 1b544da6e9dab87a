package sqlparse

import "strings"

// Dialect describes the syntax toggles that vary between the SQL dialects
// this parser understands. The structural subset (SELECT, CTEs, joins,
// subqueries) is shared; dialects differ only in which extensions are
// accepted.
type Dialect struct {
	Name         string
	AllowQualify bool // QUALIFY clause (Snowflake, DuckDB, BigQuery)
	AllowIlike   bool // ILIKE operator (Snowflake, DuckDB, Postgres, Redshift)
}

// Builtin dialects.
var (
	ANSI      = &Dialect{Name: "ansi"}
	Postgres  = &Dialect{Name: "postgres", AllowIlike: true}
	Snowflake = &Dialect{Name: "snowflake", AllowQualify: true, AllowIlike: true}
	BigQuery  = &Dialect{Name: "bigquery", AllowQualify: true}
	DuckDB    = &Dialect{Name: "duckdb", AllowQualify: true, AllowIlike: true}
	Redshift  = &Dialect{Name: "redshift", AllowQualify: true, AllowIlike: true}
)

// dialects maps dialect names (and common aliases) to their definitions.
var dialects = map[string]*Dialect{
	"ansi":       ANSI,
	"postgres":   Postgres,
	"postgresql": Postgres,
	"snowflake":  Snowflake,
	"bigquery":   BigQuery,
	"duckdb":     DuckDB,
	"redshift":   Redshift,
}

// LookupDialect returns the dialect registered under the given name.
// Names are matched case-insensitively.
func LookupDialect(name string) (*Dialect, bool) {
	d, ok := dialects[strings.ToLower(name)]
	return d, ok
}

// DialectNames returns the names of all registered dialects.
func DialectNames() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	return names
}
