package reconcile

import (
	"strings"

	"github.com/leapstack-labs/buildcheck/pkg/sqlparse"
)

// ExtractTableRefs returns the set of base-table references in the
// statement, normalized to lower-cased dotted strings with 1-3 segments.
// Extraction covers the whole tree: CTE bodies, subqueries, joins, and
// derived tables all contribute, because every referenced table must be
// valid regardless of nesting depth.
//
// A bare (unqualified) reference whose name case-insensitively matches a
// CTE alias is excluded; a qualified reference sharing a name with a CTE
// alias is kept, since a qualified reference cannot refer to a CTE.
func ExtractTableRefs(stmt *sqlparse.SelectStmt) map[string]struct{} {
	w := &tableWalker{
		ctes: make(map[string]struct{}),
		refs: make(map[string]struct{}),
	}

	w.collectCTEs(stmt)
	w.collectRefs(stmt)

	out := make(map[string]struct{}, len(w.refs))
	for ref := range w.refs {
		if !strings.Contains(ref, ".") {
			if _, isCTE := w.ctes[ref]; isCTE {
				continue
			}
		}
		out[ref] = struct{}{}
	}
	return out
}

type tableWalker struct {
	ctes map[string]struct{} // lower-cased CTE aliases
	refs map[string]struct{} // lower-cased dotted references
}

// ---------- CTE alias collection ----------

func (w *tableWalker) collectCTEs(stmt *sqlparse.SelectStmt) {
	if stmt == nil {
		return
	}
	if stmt.With != nil {
		for _, cte := range stmt.With.CTEs {
			w.ctes[strings.ToLower(cte.Name)] = struct{}{}
			w.collectCTEs(cte.Select)
		}
	}
	w.collectCTEsBody(stmt.Body)
}

func (w *tableWalker) collectCTEsBody(body *sqlparse.SelectBody) {
	if body == nil {
		return
	}
	w.collectCTEsCore(body.Left)
	w.collectCTEsBody(body.Right)
}

func (w *tableWalker) collectCTEsCore(core *sqlparse.SelectCore) {
	if core == nil {
		return
	}
	for _, item := range core.Columns {
		w.collectCTEsExpr(item.Expr)
	}
	if core.From != nil {
		w.collectCTEsTableRef(core.From.Source)
		for _, join := range core.From.Joins {
			w.collectCTEsTableRef(join.Right)
			w.collectCTEsExpr(join.Condition)
		}
	}
	w.collectCTEsExpr(core.Where)
	for _, e := range core.GroupBy {
		w.collectCTEsExpr(e)
	}
	w.collectCTEsExpr(core.Having)
	w.collectCTEsExpr(core.Qualify)
	for _, item := range core.OrderBy {
		w.collectCTEsExpr(item.Expr)
	}
	w.collectCTEsExpr(core.Limit)
	w.collectCTEsExpr(core.Offset)
}

func (w *tableWalker) collectCTEsTableRef(ref sqlparse.TableRef) {
	switch r := ref.(type) {
	case *sqlparse.DerivedTable:
		w.collectCTEs(r.Select)
	case *sqlparse.LateralTable:
		w.collectCTEs(r.Select)
	}
}

func (w *tableWalker) collectCTEsExpr(expr sqlparse.Expr) {
	forEachSubquery(expr, w.collectCTEs)
}

// ---------- Table reference collection ----------

func (w *tableWalker) collectRefs(stmt *sqlparse.SelectStmt) {
	if stmt == nil {
		return
	}
	if stmt.With != nil {
		for _, cte := range stmt.With.CTEs {
			w.collectRefs(cte.Select)
		}
	}
	w.collectRefsBody(stmt.Body)
}

func (w *tableWalker) collectRefsBody(body *sqlparse.SelectBody) {
	if body == nil {
		return
	}
	w.collectRefsCore(body.Left)
	w.collectRefsBody(body.Right)
}

func (w *tableWalker) collectRefsCore(core *sqlparse.SelectCore) {
	if core == nil {
		return
	}
	for _, item := range core.Columns {
		w.collectRefsExpr(item.Expr)
	}
	if core.From != nil {
		w.collectRefsTableRef(core.From.Source)
		for _, join := range core.From.Joins {
			w.collectRefsTableRef(join.Right)
			w.collectRefsExpr(join.Condition)
		}
	}
	w.collectRefsExpr(core.Where)
	for _, e := range core.GroupBy {
		w.collectRefsExpr(e)
	}
	w.collectRefsExpr(core.Having)
	w.collectRefsExpr(core.Qualify)
	for _, item := range core.OrderBy {
		w.collectRefsExpr(item.Expr)
	}
	w.collectRefsExpr(core.Limit)
	w.collectRefsExpr(core.Offset)
}

func (w *tableWalker) collectRefsTableRef(ref sqlparse.TableRef) {
	switch r := ref.(type) {
	case *sqlparse.TableName:
		w.refs[normalizeTableName(r)] = struct{}{}
	case *sqlparse.DerivedTable:
		w.collectRefs(r.Select)
	case *sqlparse.LateralTable:
		w.collectRefs(r.Select)
	}
}

func (w *tableWalker) collectRefsExpr(expr sqlparse.Expr) {
	forEachSubquery(expr, w.collectRefs)
}

// normalizeTableName builds the lower-cased dotted reference string from
// whichever segments are present.
func normalizeTableName(t *sqlparse.TableName) string {
	var parts []string
	if t.Catalog != "" {
		parts = append(parts, strings.ToLower(t.Catalog))
	}
	if t.Schema != "" {
		parts = append(parts, strings.ToLower(t.Schema))
	}
	parts = append(parts, strings.ToLower(t.Name))
	return strings.Join(parts, ".")
}

// forEachSubquery walks an expression tree and invokes fn on every embedded
// statement (scalar subqueries, IN subqueries, EXISTS bodies).
func forEachSubquery(expr sqlparse.Expr, fn func(*sqlparse.SelectStmt)) {
	switch e := expr.(type) {
	case nil:
		return
	case *sqlparse.SubqueryExpr:
		fn(e.Select)
	case *sqlparse.ExistsExpr:
		fn(e.Select)
	case *sqlparse.InExpr:
		forEachSubquery(e.Expr, fn)
		for _, v := range e.Values {
			forEachSubquery(v, fn)
		}
		if e.Query != nil {
			fn(e.Query)
		}
	case *sqlparse.BinaryExpr:
		forEachSubquery(e.Left, fn)
		forEachSubquery(e.Right, fn)
	case *sqlparse.UnaryExpr:
		forEachSubquery(e.Expr, fn)
	case *sqlparse.ParenExpr:
		forEachSubquery(e.Expr, fn)
	case *sqlparse.CastExpr:
		forEachSubquery(e.Expr, fn)
	case *sqlparse.FuncCall:
		for _, arg := range e.Args {
			forEachSubquery(arg, fn)
		}
		forEachSubquery(e.Filter, fn)
		if e.Window != nil {
			for _, pe := range e.Window.PartitionBy {
				forEachSubquery(pe, fn)
			}
			for _, item := range e.Window.OrderBy {
				forEachSubquery(item.Expr, fn)
			}
		}
	case *sqlparse.CaseExpr:
		forEachSubquery(e.Operand, fn)
		for _, when := range e.Whens {
			forEachSubquery(when.Condition, fn)
			forEachSubquery(when.Result, fn)
		}
		forEachSubquery(e.Else, fn)
	case *sqlparse.BetweenExpr:
		forEachSubquery(e.Expr, fn)
		forEachSubquery(e.Low, fn)
		forEachSubquery(e.High, fn)
	case *sqlparse.IsNullExpr:
		forEachSubquery(e.Expr, fn)
	case *sqlparse.LikeExpr:
		forEachSubquery(e.Expr, fn)
		forEachSubquery(e.Pattern, fn)
	}
}
