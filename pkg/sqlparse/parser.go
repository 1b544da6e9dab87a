// Package sqlparse provides a structural SQL parser for a practical subset
// of SELECT statements: WITH/CTEs, set operations, joins, subqueries, and
// the expression grammar needed to recover projections and table references.
//
// The parser is split across multiple files:
//
//   - parser.go (this file): public API, Parser struct, token helpers
//   - parser_stmt.go: statement parsing (WITH, SELECT body, select list)
//   - parser_from.go: FROM clause parsing (table refs, JOINs)
//   - parser_expr.go: expression precedence parsing and primaries
//   - parser_special.go: CASE, CAST, EXISTS, window specifications
//
// Grammar overview:
//
//	statement     → [WITH cte_list] select_body [";"]
//	select_body   → select_core [(UNION|INTERSECT|EXCEPT) [ALL] select_body]
//	select_core   → SELECT [DISTINCT] select_list [FROM from_clause]
//	                [WHERE expr] [GROUP BY expr_list] [HAVING expr]
//	                [QUALIFY expr] [ORDER BY order_list] [LIMIT expr] [OFFSET expr]
//
// Usage:
//
//	stmt, err := sqlparse.Parse("SELECT a, b FROM t")
package sqlparse

import "fmt"

// Parser parses SQL into an AST.
type Parser struct {
	lexer   *Lexer
	dialect *Dialect
	token   Token // current token
	peek    Token // lookahead token
	peek2   Token // second lookahead token
	errors  []error
}

// NewParser creates a new parser for the given SQL input and dialect.
// A nil dialect defaults to ANSI.
func NewParser(sql string, dialect *Dialect) *Parser {
	if dialect == nil {
		dialect = ANSI
	}
	p := &Parser{
		lexer:   NewLexer(sql),
		dialect: dialect,
	}
	// Read three tokens to initialize current, peek, and peek2
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses the SQL using the ANSI dialect and returns the AST.
func Parse(sql string) (*SelectStmt, error) {
	return ParseDialect(sql, ANSI)
}

// ParseDialect parses the SQL using the given dialect and returns the AST.
func ParseDialect(sql string, dialect *Dialect) (*SelectStmt, error) {
	p := NewParser(sql, dialect)
	stmt := p.parseStatement()

	// Allow a trailing semicolon, then require end of input.
	p.match(TOKEN_SEMI)
	if !p.check(TOKEN_EOF) && len(p.errors) == 0 {
		p.addError(fmt.Sprintf("unexpected %s after statement", p.token.Type))
	}

	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return stmt, nil
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t TokenType) bool {
	return p.token.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t TokenType) bool {
	return p.peek.Type == t
}

// checkPeek2 returns true if the peek2 token is of the given type.
func (p *Parser) checkPeek2(t TokenType) bool {
	return p.peek2.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("unexpected %s, expected %s", p.token.Type, t))
	return false
}

// addError adds a parse error.
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{
		Pos:     p.token.Pos,
		Message: msg,
	})
}

// ---------- Keyword Helpers ----------

// isKeyword returns true if the token is a reserved keyword that can't be
// used as a bare alias.
func (p *Parser) isKeyword(tok Token) bool {
	switch tok.Type {
	case TOKEN_FROM, TOKEN_WHERE, TOKEN_GROUP, TOKEN_HAVING, TOKEN_ORDER,
		TOKEN_LIMIT, TOKEN_OFFSET, TOKEN_UNION, TOKEN_INTERSECT, TOKEN_EXCEPT,
		TOKEN_LEFT, TOKEN_RIGHT, TOKEN_INNER, TOKEN_OUTER, TOKEN_FULL,
		TOKEN_CROSS, TOKEN_NATURAL, TOKEN_JOIN, TOKEN_ON, TOKEN_USING,
		TOKEN_QUALIFY, TOKEN_WHEN, TOKEN_THEN, TOKEN_ELSE, TOKEN_END,
		TOKEN_AND, TOKEN_OR:
		return true
	}
	return false
}

// isJoinKeyword returns true if token is a JOIN-related keyword.
func (p *Parser) isJoinKeyword(tok Token) bool {
	switch tok.Type {
	case TOKEN_JOIN, TOKEN_LEFT, TOKEN_RIGHT, TOKEN_INNER, TOKEN_OUTER,
		TOKEN_FULL, TOKEN_CROSS, TOKEN_NATURAL, TOKEN_ON, TOKEN_USING,
		TOKEN_LATERAL:
		return true
	}
	return false
}

// isClauseKeyword returns true if token starts a new clause.
func (p *Parser) isClauseKeyword(tok Token) bool {
	switch tok.Type {
	case TOKEN_WHERE, TOKEN_GROUP, TOKEN_HAVING, TOKEN_ORDER, TOKEN_LIMIT,
		TOKEN_OFFSET, TOKEN_UNION, TOKEN_INTERSECT, TOKEN_EXCEPT, TOKEN_QUALIFY:
		return true
	}
	return false
}
