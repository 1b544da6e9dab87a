package sqlparse

import (
	"fmt"
	"strings"
)

// parseCaseExpr parses: CASE [operand] (WHEN cond THEN result)+ [ELSE result] END
func (p *Parser) parseCaseExpr() Expr {
	p.expect(TOKEN_CASE)

	caseExpr := &CaseExpr{}

	if !p.check(TOKEN_WHEN) {
		caseExpr.Operand = p.parseExpr()
	}

	for p.match(TOKEN_WHEN) {
		when := WhenClause{Condition: p.parseExpr()}
		p.expect(TOKEN_THEN)
		when.Result = p.parseExpr()
		caseExpr.Whens = append(caseExpr.Whens, when)
	}

	if p.match(TOKEN_ELSE) {
		caseExpr.Else = p.parseExpr()
	}

	p.expect(TOKEN_END)
	return caseExpr
}

// parseCastExpr parses: CAST "(" expr AS type_name ")"
func (p *Parser) parseCastExpr() Expr {
	p.expect(TOKEN_CAST)
	p.expect(TOKEN_LPAREN)

	cast := &CastExpr{Expr: p.parseExpr()}
	p.expect(TOKEN_AS)
	cast.TypeName = p.parseTypeName()

	p.expect(TOKEN_RPAREN)
	return cast
}

// parseTypeName parses a type name such as int, varchar(255), numeric(10, 2),
// double precision, or timestamp with time zone.
func (p *Parser) parseTypeName() string {
	var parts []string

	for p.check(TOKEN_IDENT) || p.check(TOKEN_WITH) {
		parts = append(parts, p.token.Literal)
		p.nextToken()
	}

	if len(parts) == 0 {
		p.addError(fmt.Sprintf("unexpected %s, expected type name", p.token.Type))
		return ""
	}

	name := strings.Join(parts, " ")

	// Precision/scale arguments: numeric(10, 2)
	if p.match(TOKEN_LPAREN) {
		var args []string
		for p.check(TOKEN_NUMBER) {
			args = append(args, p.token.Literal)
			p.nextToken()
			if !p.match(TOKEN_COMMA) {
				break
			}
		}
		p.expect(TOKEN_RPAREN)
		name += "(" + strings.Join(args, ", ") + ")"
	}

	// Array suffix: int[]
	if p.match(TOKEN_LBRACKET) {
		p.expect(TOKEN_RBRACKET)
		name += "[]"
	}

	return name
}

// parseExistsExpr parses: EXISTS "(" statement ")"
func (p *Parser) parseExistsExpr(not bool) Expr {
	p.expect(TOKEN_EXISTS)
	p.expect(TOKEN_LPAREN)

	exists := &ExistsExpr{Not: not, Select: p.parseStatement()}
	p.expect(TOKEN_RPAREN)
	return exists
}

// parseFuncCall parses a function call. The function name token is current.
func (p *Parser) parseFuncCall(name string) Expr {
	fn := &FuncCall{Name: name}
	p.nextToken() // name
	p.expect(TOKEN_LPAREN)

	if !p.check(TOKEN_RPAREN) {
		fn.Distinct = p.match(TOKEN_DISTINCT)

		if p.check(TOKEN_STAR) && p.checkPeek(TOKEN_RPAREN) {
			fn.Star = true
			p.nextToken()
		} else {
			fn.Args = p.parseExprList()
		}
	}

	p.expect(TOKEN_RPAREN)

	// FILTER (WHERE cond)
	if p.check(TOKEN_FILTER) && p.checkPeek(TOKEN_LPAREN) {
		p.nextToken()
		p.expect(TOKEN_LPAREN)
		p.expect(TOKEN_WHERE)
		fn.Filter = p.parseExpr()
		p.expect(TOKEN_RPAREN)
	}

	// OVER (window spec)
	if p.match(TOKEN_OVER) {
		fn.Window = p.parseWindowSpec()
	}

	return fn
}

// parseWindowSpec parses: "(" [PARTITION BY exprs] [ORDER BY items] [frame] ")"
func (p *Parser) parseWindowSpec() *WindowSpec {
	spec := &WindowSpec{}
	p.expect(TOKEN_LPAREN)

	if p.check(TOKEN_PARTITION) {
		p.nextToken()
		p.expect(TOKEN_BY)
		spec.PartitionBy = p.parseExprList()
	}

	if p.check(TOKEN_ORDER) {
		p.nextToken()
		p.expect(TOKEN_BY)
		spec.OrderBy = p.parseOrderByItems()
	}

	// Frame clauses (ROWS/RANGE BETWEEN ... AND ...) are accepted but not
	// retained; they never contribute columns or table references.
	if p.check(TOKEN_ROWS) || p.check(TOKEN_RANGE) {
		for !p.check(TOKEN_RPAREN) && !p.check(TOKEN_EOF) {
			p.nextToken()
		}
	}

	p.expect(TOKEN_RPAREN)
	return spec
}
