package sqlparse

import "fmt"

// parseExpr parses an expression at the lowest precedence level.
func (p *Parser) parseExpr() Expr {
	return p.parseOr()
}

// parseExprList parses a comma-separated list of expressions.
func (p *Parser) parseExprList() []Expr {
	var exprs []Expr

	for {
		exprs = append(exprs, p.parseExpr())
		if !p.match(TOKEN_COMMA) {
			break
		}
	}

	return exprs
}

// parseOr parses OR expressions.
func (p *Parser) parseOr() Expr {
	left := p.parseAnd()

	for p.check(TOKEN_OR) {
		p.nextToken()
		left = &BinaryExpr{Left: left, Op: TOKEN_OR, Right: p.parseAnd()}
	}

	return left
}

// parseAnd parses AND expressions.
func (p *Parser) parseAnd() Expr {
	left := p.parseNot()

	for p.check(TOKEN_AND) {
		p.nextToken()
		left = &BinaryExpr{Left: left, Op: TOKEN_AND, Right: p.parseNot()}
	}

	return left
}

// parseNot parses NOT expressions.
func (p *Parser) parseNot() Expr {
	if p.check(TOKEN_NOT) {
		p.nextToken()
		return &UnaryExpr{Op: TOKEN_NOT, Expr: p.parseNot()}
	}
	return p.parseComparison()
}

// parseComparison parses comparison operators and the SQL-specific
// predicates: IS [NOT] NULL, [NOT] IN, [NOT] BETWEEN, [NOT] LIKE/ILIKE.
func (p *Parser) parseComparison() Expr {
	left := p.parseAdditive()

	for {
		switch p.token.Type {
		case TOKEN_EQ, TOKEN_NE, TOKEN_LT, TOKEN_GT, TOKEN_LE, TOKEN_GE:
			op := p.token.Type
			p.nextToken()
			left = &BinaryExpr{Left: left, Op: op, Right: p.parseAdditive()}
			continue

		case TOKEN_IS:
			p.nextToken()
			not := p.match(TOKEN_NOT)
			switch p.token.Type {
			case TOKEN_NULL:
				p.nextToken()
				left = &IsNullExpr{Expr: left, Not: not}
			case TOKEN_TRUE, TOKEN_FALSE:
				lit := &Literal{Type: LiteralBool, Value: p.token.Literal}
				p.nextToken()
				cmp := &BinaryExpr{Left: left, Op: TOKEN_IS, Right: lit}
				if not {
					left = &UnaryExpr{Op: TOKEN_NOT, Expr: cmp}
				} else {
					left = cmp
				}
			default:
				p.addError(fmt.Sprintf("unexpected %s after IS", p.token.Type))
			}
			continue
		}

		// [NOT] IN / BETWEEN / LIKE / ILIKE
		not := false
		if p.check(TOKEN_NOT) &&
			(p.checkPeek(TOKEN_IN) || p.checkPeek(TOKEN_BETWEEN) ||
				p.checkPeek(TOKEN_LIKE) || p.checkPeek(TOKEN_ILIKE)) {
			not = true
			p.nextToken()
		}

		switch p.token.Type {
		case TOKEN_IN:
			left = p.parseInExpr(left, not)
			continue
		case TOKEN_BETWEEN:
			p.nextToken()
			low := p.parseAdditive()
			p.expect(TOKEN_AND)
			left = &BetweenExpr{Expr: left, Not: not, Low: low, High: p.parseAdditive()}
			continue
		case TOKEN_LIKE, TOKEN_ILIKE:
			op := p.token.Type
			if op == TOKEN_ILIKE && !p.dialect.AllowIlike {
				p.addError(fmt.Sprintf("ILIKE is not supported by the %s dialect", p.dialect.Name))
			}
			p.nextToken()
			left = &LikeExpr{Expr: left, Not: not, Pattern: p.parseAdditive(), Op: op}
			continue
		}

		return left
	}
}

// parseInExpr parses: IN "(" (subquery | expr_list) ")"
func (p *Parser) parseInExpr(left Expr, not bool) Expr {
	p.expect(TOKEN_IN)
	p.expect(TOKEN_LPAREN)

	in := &InExpr{Expr: left, Not: not}
	if p.check(TOKEN_SELECT) || p.check(TOKEN_WITH) {
		in.Query = p.parseStatement()
	} else {
		in.Values = p.parseExprList()
	}

	p.expect(TOKEN_RPAREN)
	return in
}

// parseAdditive parses +, -, and || expressions.
func (p *Parser) parseAdditive() Expr {
	left := p.parseMultiplicative()

	for p.check(TOKEN_PLUS) || p.check(TOKEN_MINUS) || p.check(TOKEN_DPIPE) {
		op := p.token.Type
		p.nextToken()
		left = &BinaryExpr{Left: left, Op: op, Right: p.parseMultiplicative()}
	}

	return left
}

// parseMultiplicative parses *, /, and % expressions.
func (p *Parser) parseMultiplicative() Expr {
	left := p.parseUnary()

	for p.check(TOKEN_STAR) || p.check(TOKEN_SLASH) || p.check(TOKEN_PERCENT) {
		op := p.token.Type
		p.nextToken()
		left = &BinaryExpr{Left: left, Op: op, Right: p.parseUnary()}
	}

	return left
}

// parseUnary parses unary + and - expressions.
func (p *Parser) parseUnary() Expr {
	if p.check(TOKEN_MINUS) || p.check(TOKEN_PLUS) {
		op := p.token.Type
		p.nextToken()
		return &UnaryExpr{Op: op, Expr: p.parseUnary()}
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by postfix forms:
// "::" type casts and "[...]" subscripts.
func (p *Parser) parsePostfix() Expr {
	expr := p.parsePrimary()

	for {
		if p.check(TOKEN_DCOLON) {
			p.nextToken()
			expr = &CastExpr{Expr: expr, TypeName: p.parseTypeName()}
			continue
		}

		// Subscript access keeps the base expression
		if p.match(TOKEN_LBRACKET) {
			p.parseExpr()
			p.expect(TOKEN_RBRACKET)
			continue
		}

		return expr
	}
}

// parsePrimary parses a primary expression: literals, column references,
// function calls, CASE, CAST, EXISTS, subqueries, and parenthesized
// expressions.
func (p *Parser) parsePrimary() Expr {
	switch p.token.Type {
	case TOKEN_NUMBER:
		lit := &Literal{Type: LiteralNumber, Value: p.token.Literal}
		p.nextToken()
		return lit

	case TOKEN_STRING:
		lit := &Literal{Type: LiteralString, Value: p.token.Literal}
		p.nextToken()
		return lit

	case TOKEN_TRUE, TOKEN_FALSE:
		lit := &Literal{Type: LiteralBool, Value: p.token.Literal}
		p.nextToken()
		return lit

	case TOKEN_NULL:
		p.nextToken()
		return &Literal{Type: LiteralNull, Value: "NULL"}

	case TOKEN_CASE:
		return p.parseCaseExpr()

	case TOKEN_CAST:
		return p.parseCastExpr()

	case TOKEN_EXISTS:
		return p.parseExistsExpr(false)

	case TOKEN_STAR:
		p.nextToken()
		return &StarExpr{}

	case TOKEN_LPAREN:
		p.nextToken()
		if p.check(TOKEN_SELECT) || p.check(TOKEN_WITH) {
			sub := &SubqueryExpr{Select: p.parseStatement()}
			p.expect(TOKEN_RPAREN)
			return sub
		}
		expr := &ParenExpr{Expr: p.parseExpr()}
		p.expect(TOKEN_RPAREN)
		return expr

	case TOKEN_IDENT:
		if p.checkPeek(TOKEN_LPAREN) {
			return p.parseFuncCall(p.token.Literal)
		}
		return p.parseColumnRef()

	// Keywords that double as function names: LEFT(s, n), RIGHT(s, n),
	// FILTER(...) in some dialects.
	case TOKEN_LEFT, TOKEN_RIGHT, TOKEN_FILTER, TOKEN_FIRST, TOKEN_LAST:
		if p.checkPeek(TOKEN_LPAREN) {
			return p.parseFuncCall(p.token.Literal)
		}
	}

	p.addError(fmt.Sprintf("unexpected %s in expression", p.token.Type))
	p.nextToken()
	return &Literal{Type: LiteralNull, Value: "NULL"}
}

// parseColumnRef parses a (possibly qualified) column reference. For a
// reference a.b.c the table qualifier is "a.b" and the column is "c".
// A trailing ".*" yields a StarExpr with the preceding parts as qualifier.
func (p *Parser) parseColumnRef() Expr {
	parts := []string{p.token.Literal}
	p.nextToken()

	for p.check(TOKEN_DOT) {
		if p.checkPeek(TOKEN_STAR) {
			p.nextToken() // .
			p.nextToken() // *
			return &StarExpr{Table: joinParts(parts)}
		}
		p.nextToken()
		if !p.check(TOKEN_IDENT) {
			p.addError(fmt.Sprintf("unexpected %s, expected identifier after '.'", p.token.Type))
			break
		}
		parts = append(parts, p.token.Literal)
		p.nextToken()
	}

	col := &ColumnRef{Column: parts[len(parts)-1]}
	if len(parts) > 1 {
		col.Table = joinParts(parts[:len(parts)-1])
	}
	return col
}

// joinParts joins identifier parts with dots.
func joinParts(parts []string) string {
	result := parts[0]
	for _, part := range parts[1:] {
		result += "." + part
	}
	return result
}
