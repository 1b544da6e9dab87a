package reconcile

import "github.com/leapstack-labs/buildcheck/pkg/sqlparse"

// ExtractColumns returns the set of output column names produced by the
// outermost projection of the statement. CTE-internal projections are
// ignored: when the statement is WITH ... SELECT, only the final query's
// select list contributes names.
//
// The name of each projected expression is derived with this precedence:
// explicit alias, then bare column name for direct column references, then
// any name the expression structurally exposes (a function call's name,
// recursing through casts and parentheses). Expressions exposing no name
// contribute nothing. Wildcard projections are never expanded.
//
// Column case is preserved as written; comparison against manifest columns
// is case-sensitive.
func ExtractColumns(stmt *sqlparse.SelectStmt) map[string]struct{} {
	columns := make(map[string]struct{})
	if stmt == nil || stmt.Body == nil {
		return columns
	}

	core := outermostCore(stmt.Body)
	if core == nil {
		return columns
	}

	for _, item := range core.Columns {
		if name := projectionName(item); name != "" {
			columns[name] = struct{}{}
		}
	}

	return columns
}

// outermostCore returns the first select core of the statement body. For a
// set operation the left-most branch defines the output column names.
func outermostCore(body *sqlparse.SelectBody) *sqlparse.SelectCore {
	for body != nil {
		if body.Left != nil {
			return body.Left
		}
		body = body.Right
	}
	return nil
}

// projectionName derives the output name of one select-list item, or ""
// when the item exposes no name.
func projectionName(item sqlparse.SelectItem) string {
	if item.Star || item.TableStar != "" {
		return ""
	}
	if item.Alias != "" {
		return item.Alias
	}
	return exprName(item.Expr)
}

// exprName returns the name an expression structurally exposes.
func exprName(expr sqlparse.Expr) string {
	switch e := expr.(type) {
	case *sqlparse.ColumnRef:
		return e.Column
	case *sqlparse.FuncCall:
		return e.Name
	case *sqlparse.CastExpr:
		return exprName(e.Expr)
	case *sqlparse.ParenExpr:
		return exprName(e.Expr)
	default:
		return ""
	}
}
