// Package reconcile implements the manifest-vs-compiled-SQL consistency
// engine: extracting output columns and table references from parsed SQL,
// applying identifier substitutions, resolving references against a
// manifest-derived catalog, and assembling one CheckResult per model.
package reconcile

import "github.com/leapstack-labs/buildcheck/pkg/sqlparse"

// Parser turns SQL text into a structural tree. A parse failure is reported
// as an absent tree, never as an error: compiled SQL comes from an external
// build step and a malformed file must not stop the batch.
type Parser interface {
	Parse(sql string) (*sqlparse.SelectStmt, bool)
}

// StdParser is the default Parser backed by pkg/sqlparse.
type StdParser struct {
	dialect *sqlparse.Dialect
}

// NewStdParser creates a parser for the named dialect.
func NewStdParser(dialectName string) (*StdParser, error) {
	d, ok := sqlparse.LookupDialect(dialectName)
	if !ok {
		return nil, &UnknownDialectError{Name: dialectName}
	}
	return &StdParser{dialect: d}, nil
}

// Parse implements Parser. The boolean is false when the SQL could not be
// parsed; the tree is nil in that case.
func (p *StdParser) Parse(sql string) (*sqlparse.SelectStmt, bool) {
	stmt, err := sqlparse.ParseDialect(sql, p.dialect)
	if err != nil || stmt == nil {
		return nil, false
	}
	return stmt, true
}

// UnknownDialectError reports a dialect name with no registered parser.
type UnknownDialectError struct {
	Name string
}

func (e *UnknownDialectError) Error() string {
	return "unknown SQL dialect: " + e.Name
}
