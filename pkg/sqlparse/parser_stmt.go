package sqlparse

import "fmt"

// parseStatement parses a complete statement: [WITH ...] select_body.
func (p *Parser) parseStatement() *SelectStmt {
	stmt := &SelectStmt{}

	if p.check(TOKEN_WITH) {
		stmt.With = p.parseWithClause()
	}

	stmt.Body = p.parseSelectBody()
	return stmt
}

// parseWithClause parses: WITH [RECURSIVE] cte ("," cte)*
func (p *Parser) parseWithClause() *WithClause {
	p.expect(TOKEN_WITH)

	with := &WithClause{}
	with.Recursive = p.match(TOKEN_RECURSIVE)

	for {
		cte := p.parseCTE()
		if cte == nil {
			break
		}
		with.CTEs = append(with.CTEs, cte)

		if !p.match(TOKEN_COMMA) {
			break
		}
	}

	return with
}

// parseCTE parses: name ["(" column ("," column)* ")"] AS "(" statement ")"
func (p *Parser) parseCTE() *CTE {
	if !p.check(TOKEN_IDENT) {
		p.addError(fmt.Sprintf("unexpected %s, expected CTE name", p.token.Type))
		return nil
	}

	cte := &CTE{Name: p.token.Literal}
	p.nextToken()

	if p.match(TOKEN_LPAREN) {
		for p.check(TOKEN_IDENT) {
			cte.Columns = append(cte.Columns, p.token.Literal)
			p.nextToken()
			if !p.match(TOKEN_COMMA) {
				break
			}
		}
		p.expect(TOKEN_RPAREN)
	}

	p.expect(TOKEN_AS)
	p.expect(TOKEN_LPAREN)
	cte.Select = p.parseStatement()
	p.expect(TOKEN_RPAREN)

	return cte
}

// parseSelectBody parses a select core with optional chained set operations.
func (p *Parser) parseSelectBody() *SelectBody {
	body := &SelectBody{Left: p.parseSelectCore()}

	switch p.token.Type {
	case TOKEN_UNION:
		p.nextToken()
		if p.match(TOKEN_ALL) {
			body.Op = SetOpUnionAll
			body.All = true
		} else {
			body.Op = SetOpUnion
			p.match(TOKEN_DISTINCT)
		}
		body.Right = p.parseSelectBody()
	case TOKEN_INTERSECT:
		p.nextToken()
		body.Op = SetOpIntersect
		p.match(TOKEN_ALL)
		body.Right = p.parseSelectBody()
	case TOKEN_EXCEPT:
		p.nextToken()
		body.Op = SetOpExcept
		p.match(TOKEN_ALL)
		body.Right = p.parseSelectBody()
	}

	return body
}

// parseSelectCore parses a single SELECT core with its clauses.
func (p *Parser) parseSelectCore() *SelectCore {
	core := &SelectCore{}

	if !p.expect(TOKEN_SELECT) {
		return core
	}

	if p.match(TOKEN_DISTINCT) {
		core.Distinct = true
	} else {
		p.match(TOKEN_ALL)
	}

	core.Columns = p.parseSelectList()

	if p.match(TOKEN_FROM) {
		core.From = p.parseFromClause()
	}

	if p.match(TOKEN_WHERE) {
		core.Where = p.parseExpr()
	}

	if p.check(TOKEN_GROUP) {
		p.nextToken()
		p.expect(TOKEN_BY)
		core.GroupBy = p.parseExprList()
	}

	if p.match(TOKEN_HAVING) {
		core.Having = p.parseExpr()
	}

	if p.check(TOKEN_QUALIFY) {
		if !p.dialect.AllowQualify {
			p.addError(fmt.Sprintf("QUALIFY is not supported by the %s dialect", p.dialect.Name))
		}
		p.nextToken()
		core.Qualify = p.parseExpr()
	}

	if p.check(TOKEN_ORDER) {
		p.nextToken()
		p.expect(TOKEN_BY)
		core.OrderBy = p.parseOrderByItems()
	}

	if p.match(TOKEN_LIMIT) {
		core.Limit = p.parseExpr()
	}

	if p.match(TOKEN_OFFSET) {
		core.Offset = p.parseExpr()
	}

	return core
}

// parseSelectList parses the projection list of a SELECT.
func (p *Parser) parseSelectList() []SelectItem {
	var items []SelectItem

	for {
		items = append(items, p.parseSelectItem())
		if !p.match(TOKEN_COMMA) {
			break
		}
	}

	return items
}

// parseSelectItem parses a single projection: *, t.*, or expr [AS] [alias].
func (p *Parser) parseSelectItem() SelectItem {
	// SELECT *
	if p.check(TOKEN_STAR) {
		p.nextToken()
		return SelectItem{Star: true}
	}

	// SELECT t.*
	if p.check(TOKEN_IDENT) && p.checkPeek(TOKEN_DOT) && p.checkPeek2(TOKEN_STAR) {
		item := SelectItem{TableStar: p.token.Literal}
		p.nextToken() // ident
		p.nextToken() // .
		p.nextToken() // *
		return item
	}

	item := SelectItem{Expr: p.parseExpr()}

	if p.match(TOKEN_AS) {
		if p.check(TOKEN_IDENT) {
			item.Alias = p.token.Literal
			p.nextToken()
		} else {
			p.addError(fmt.Sprintf("unexpected %s, expected alias after AS", p.token.Type))
		}
	} else if p.check(TOKEN_IDENT) {
		// Bare alias without AS
		item.Alias = p.token.Literal
		p.nextToken()
	}

	return item
}

// parseOrderByItems parses the items of an ORDER BY clause.
// The ORDER BY keywords themselves have already been consumed.
func (p *Parser) parseOrderByItems() []OrderByItem {
	var items []OrderByItem

	for {
		item := OrderByItem{Expr: p.parseExpr()}

		if p.match(TOKEN_DESC) {
			item.Desc = true
		} else {
			p.match(TOKEN_ASC)
		}

		if p.match(TOKEN_NULLS) {
			if p.match(TOKEN_FIRST) {
				v := true
				item.NullsFirst = &v
			} else if p.match(TOKEN_LAST) {
				v := false
				item.NullsFirst = &v
			} else {
				p.addError(fmt.Sprintf("unexpected %s, expected FIRST or LAST", p.token.Type))
			}
		}

		items = append(items, item)

		if !p.match(TOKEN_COMMA) {
			break
		}
	}

	return items
}
