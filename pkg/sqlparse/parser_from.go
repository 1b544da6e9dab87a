package sqlparse

import (
	"fmt"
	"strings"
)

// parseFromClause parses the FROM clause: table_ref (join | "," table_ref)*
func (p *Parser) parseFromClause() *FromClause {
	from := &FromClause{Source: p.parseTableRef()}

	for {
		if p.match(TOKEN_COMMA) {
			from.Joins = append(from.Joins, &Join{
				Type:  JoinComma,
				Right: p.parseTableRef(),
			})
			continue
		}

		if p.check(TOKEN_JOIN) || p.check(TOKEN_LEFT) || p.check(TOKEN_RIGHT) ||
			p.check(TOKEN_FULL) || p.check(TOKEN_INNER) || p.check(TOKEN_CROSS) ||
			p.check(TOKEN_NATURAL) {
			join := p.parseJoin()
			if join == nil {
				break
			}
			from.Joins = append(from.Joins, join)
			continue
		}

		break
	}

	return from
}

// parseJoin parses a single JOIN: [NATURAL] join_type JOIN table_ref [ON expr | USING (...)]
func (p *Parser) parseJoin() *Join {
	join := &Join{Type: JoinInner}

	join.Natural = p.match(TOKEN_NATURAL)

	switch p.token.Type {
	case TOKEN_LEFT:
		join.Type = JoinLeft
		p.nextToken()
		p.match(TOKEN_OUTER)
	case TOKEN_RIGHT:
		join.Type = JoinRight
		p.nextToken()
		p.match(TOKEN_OUTER)
	case TOKEN_FULL:
		join.Type = JoinFull
		p.nextToken()
		p.match(TOKEN_OUTER)
	case TOKEN_INNER:
		p.nextToken()
	case TOKEN_CROSS:
		join.Type = JoinCross
		p.nextToken()
	}

	if !p.expect(TOKEN_JOIN) {
		return nil
	}

	join.Right = p.parseTableRef()

	// CROSS and NATURAL joins carry no condition
	if join.Natural {
		if p.check(TOKEN_ON) {
			p.addError("NATURAL JOIN cannot have ON clause")
		} else if p.check(TOKEN_USING) {
			p.addError("NATURAL JOIN cannot have USING clause")
		}
		return join
	}
	if join.Type == JoinCross {
		return join
	}

	if p.match(TOKEN_ON) {
		join.Condition = p.parseExpr()
	} else if p.match(TOKEN_USING) {
		p.expect(TOKEN_LPAREN)
		for p.check(TOKEN_IDENT) {
			join.Using = append(join.Using, p.token.Literal)
			p.nextToken()
			if !p.match(TOKEN_COMMA) {
				break
			}
		}
		p.expect(TOKEN_RPAREN)
	}

	return join
}

// parseTableRef parses a table reference: a table name, derived table, or
// LATERAL subquery.
func (p *Parser) parseTableRef() TableRef {
	switch p.token.Type {
	case TOKEN_LATERAL:
		return p.parseLateralTable()
	case TOKEN_LPAREN:
		return p.parseDerivedTable()
	case TOKEN_IDENT:
		return p.parseTableName()
	default:
		p.addError(fmt.Sprintf("unexpected %s, expected table reference", p.token.Type))
		p.nextToken()
		return nil
	}
}

// parseTableName parses a dotted table name with up to three parts and an
// optional alias: [catalog.][schema.]name [[AS] alias]
func (p *Parser) parseTableName() *TableName {
	parts := []string{p.token.Literal}
	p.nextToken()

	for p.check(TOKEN_DOT) {
		p.nextToken()
		if !p.check(TOKEN_IDENT) {
			p.addError(fmt.Sprintf("unexpected %s, expected identifier after '.'", p.token.Type))
			break
		}
		parts = append(parts, p.token.Literal)
		p.nextToken()
	}

	table := &TableName{}
	switch len(parts) {
	case 1:
		table.Name = parts[0]
	case 2:
		table.Schema = parts[0]
		table.Name = parts[1]
	case 3:
		table.Catalog = parts[0]
		table.Schema = parts[1]
		table.Name = parts[2]
	default:
		p.addError(fmt.Sprintf("table name %q has too many parts", strings.Join(parts, ".")))
		table.Name = parts[len(parts)-1]
	}

	table.Alias = p.parseTableAlias()
	return table
}

// parseDerivedTable parses a parenthesized subquery in a FROM clause.
func (p *Parser) parseDerivedTable() *DerivedTable {
	p.expect(TOKEN_LPAREN)

	if !p.check(TOKEN_SELECT) && !p.check(TOKEN_WITH) {
		p.addError(fmt.Sprintf("unexpected %s, expected subquery", p.token.Type))
	}

	derived := &DerivedTable{Select: p.parseStatement()}
	p.expect(TOKEN_RPAREN)

	derived.Alias = p.parseTableAlias()
	return derived
}

// parseLateralTable parses: LATERAL "(" statement ")" [[AS] alias]
func (p *Parser) parseLateralTable() *LateralTable {
	p.expect(TOKEN_LATERAL)
	p.expect(TOKEN_LPAREN)

	lateral := &LateralTable{Select: p.parseStatement()}
	p.expect(TOKEN_RPAREN)

	lateral.Alias = p.parseTableAlias()
	return lateral
}

// parseTableAlias parses an optional [AS] alias after a table reference.
func (p *Parser) parseTableAlias() string {
	if p.match(TOKEN_AS) {
		if p.check(TOKEN_IDENT) {
			alias := p.token.Literal
			p.nextToken()
			return alias
		}
		p.addError(fmt.Sprintf("unexpected %s, expected alias after AS", p.token.Type))
		return ""
	}

	if p.check(TOKEN_IDENT) {
		alias := p.token.Literal
		p.nextToken()
		return alias
	}

	return ""
}
