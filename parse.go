package main

import (
	"fmt"
	"strconv"
)

//
// Recursive descent parser.  One parser instance handles one source
// line: a mandatory statement number followed by a single statement.
// Parse problems panic with a *basicError and unwind to the call()
// boundary, the same channel the lexer uses
//

type parser struct {
	lex    *Lexer
	stmtNo int16
}

func parseLine(line string) *stmtNode {

	lexer := newLexer(line)

	//
	// Blank (or all whitespace) lines are ignored
	//

	if lexer.tokens[0].token == EOL {
		return nil
	}

	p := &parser{lex: lexer}

	return p.parseStmtLine()
}

//
// A statement line is 'INTEGER stmt EOL'.  Anything else in the
// leading position is a missing statement number, and a number
// outside 1..32767 is rejected before it can be truncated by the
// int16 conversion
//

func (p *parser) parseStmtLine() *stmtNode {

	t := p.peek()

	if t.token != INTEGER {
		panic(&basicError{kind: errMissingLineNumber, msg: EMISSINGLINENUMBER,
			line: p.lex.line, loc: t.symLoc})
	}

	if t.int64Val < minStmtNo || t.int64Val > maxStmtNo {
		p.parseError(EILLEGALLINENUMBER, t.symLoc)
	}

	p.stmtNo = int16(t.int64Val)
	p.next()

	verb := *p.peek()

	stmt := p.parseStatement()

	last := *p.peek()
	p.expect(EOL)

	stmt.stmtNo = p.stmtNo
	stmt.tokenLoc.pos = verb.symLoc.pos
	stmt.tokenLoc.end = lastTokenEnd(p.lex, last)

	return stmt
}

//
// The end of the statement span is the end of the last token before
// EOL.  The EOL token itself points just past the line
//

func lastTokenEnd(lex *Lexer, eol Lval) position {

	if lex.idx > 0 {
		return lex.tokens[lex.idx-1].symLoc.end
	}

	return eol.symLoc.end
}

func (p *parser) parseStatement() *stmtNode {

	t := p.peek()

	switch t.token {
	case REM:
		p.next()
		return p.makeStmt(REM)

	case LET:
		return p.parseLet()

	case GOTO:
		p.next()
		return p.makeStmt(GOTO, p.parseJumpTarget())

	case PRINT:
		return p.parsePrint()

	case IF:
		return p.parseIf()

	case GOSUB:
		p.next()
		return p.makeStmt(GOSUB, p.parseJumpTarget())

	case RETURN:
		p.next()
		return p.makeStmt(RETURN)

	case END:
		p.next()
		return p.makeStmt(END)

	default:
		p.unexpected(t)
		return nil
	}
}

func (p *parser) parseLet() *stmtNode {

	p.next()

	id := p.expect(IDENT)

	v := makeLeafNode(id, IDENT, id.stringVal)

	p.expect(ASSIGN)

	return p.makeStmt(LET, v, p.parseRpnExpr())
}

//
// PRINT with no expressions emits an empty line.  Expressions are
// separated by commas and printed space-separated
//

func (p *parser) parsePrint() *stmtNode {

	p.next()

	if p.peek().token == EOL {
		return p.makeStmt(PRINT)
	}

	exprs := []*tokenNode{p.parseRpnExpr()}

	for p.peek().token == COMMA {
		p.next()
		exprs = append(exprs, p.parseRpnExpr())
	}

	return p.makeStmt(PRINT, exprs...)
}

//
// 'IF cond THEN target' and 'IF cond THEN GOTO target' are
// equivalent.  The target is a full expression, evaluated only
// when the condition holds
//

func (p *parser) parseIf() *stmtNode {

	p.next()

	cond := p.parseRpnExpr()

	p.expect(THEN)

	if p.peek().token == GOTO {
		p.next()
	}

	return p.makeStmt(IF, cond, p.parseJumpTarget())
}

func (p *parser) parseJumpTarget() *tokenNode {

	return p.parseRpnExpr()
}

//
// Expression grammar, precedence climbing:
//
//	expr    : sum [relop sum]      at most one comparison
//	sum     : term {('+'|'-') term}
//	term    : unary {('*'|'/'|'%') unary}
//	unary   : '-' unary | power
//	power   : primary ['^' unary]  right associative
//	primary : INTEGER | FLOAT | IDENT | '(' expr ')'
//
// The tree is compiled to a postfix token list hung off an NRPN
// node; the tree itself is retained as the NRPN operand so runtime
// diagnostics can re-render the source expression
//

func (p *parser) parseRpnExpr() *tokenNode {

	return makeNrpnTokenNode(p.parseExpr())
}

func (p *parser) parseExpr() *tokenNode {

	left := p.parseSum()

	if !isRelop(p.peek().token) {
		return left
	}

	op := *p.next()

	node := makeBinaryNode(op.token, left, p.parseSum())

	//
	// Comparisons do not associate: 'a < b < c' is rejected rather
	// than silently comparing a boolean to c
	//

	if isRelop(p.peek().token) {
		p.parseError("Comparisons cannot be chained", p.peek().symLoc)
	}

	return node
}

func (p *parser) parseSum() *tokenNode {

	left := p.parseTerm()

	for p.peek().token == PLUS || p.peek().token == MINUS {
		op := *p.next()
		left = makeBinaryNode(op.token, left, p.parseTerm())
	}

	return left
}

func (p *parser) parseTerm() *tokenNode {

	left := p.parseUnary()

	for {
		tok := p.peek().token
		if tok != STAR && tok != SLASH && tok != PERCENT {
			return left
		}

		op := *p.next()
		left = makeBinaryNode(op.token, left, p.parseUnary())
	}
}

func (p *parser) parseUnary() *tokenNode {

	if p.peek().token == MINUS {
		minus := *p.next()

		node := makeTokenNode(UNEG, p.parseUnary())
		node.tlocs = uint16(minus.symLoc.pos.column)
		node.tloce = node.operands[0].tloce

		return node
	}

	return p.parsePower()
}

//
// '^' binds tighter than unary minus and associates to the right,
// so -2^2 is -4 and 2^3^2 is 512
//

func (p *parser) parsePower() *tokenNode {

	base := p.parsePrimary()

	if p.peek().token != POW {
		return base
	}

	p.next()

	return makeBinaryNode(POW, base, p.parseUnary())
}

func (p *parser) parsePrimary() *tokenNode {

	t := p.peek()

	switch t.token {
	case INTEGER:
		p.next()
		return makeLeafNode(t, INTEGER, t.int64Val)

	case FLOAT:
		p.next()
		return makeLeafNode(t, FLOAT, t.float64Val)

	case IDENT:
		p.next()
		return makeLeafNode(t, IDENT, t.stringVal)

	case LPAR:
		p.next()
		node := p.parseExpr()
		p.expect(RPAR)
		return node

	default:
		p.unexpected(t)
		return nil
	}
}

func isRelop(token int) bool {

	switch token {
	case EQ, NE, LT, LE, GT, GE:
		return true
	}

	return false
}

//
// Token access.  next() never advances past the terminating EOL,
// so the parser can always peek safely
//

func (p *parser) peek() *Lval {

	return &p.lex.tokens[p.lex.idx]
}

func (p *parser) next() *Lval {

	t := &p.lex.tokens[p.lex.idx]

	if t.token != EOL {
		p.lex.idx++
	}

	return t
}

func (p *parser) expect(token int) *Lval {

	t := p.peek()

	if t.token != token {
		if t.token == EOL {
			p.parseError("Unexpected end of input", t.symLoc)
		}

		p.parseError(fmt.Sprintf("Expected %s, got %s", getTokenName(token),
			getTokenName(t.token)), t.symLoc)
	}

	return p.next()
}

func (p *parser) unexpected(t *Lval) {

	if t.token == EOL {
		p.parseError("Unexpected end of input", t.symLoc)
	}

	p.parseError(fmt.Sprintf("Unexpected %s", getTokenName(t.token)), t.symLoc)
}

func (p *parser) parseError(msg string, loc symLoc) {

	panic(&basicError{kind: errParse, msg: msg, line: p.lex.line, loc: loc,
		stmtNo: p.stmtNo})
}

func (p *parser) makeStmt(token int, operands ...*tokenNode) *stmtNode {

	return makeStmtNode(p.lex.line, token, operands...)
}

//
// This function renders an expression tree back to source form.
// Non-leaf operands are parenthesized, so operator precedence
// survives a round trip through the lexer and parser
//

func exprString(tp *tokenNode) string {

	switch tp.token {
	case NRPN:
		return exprString(tp.operands[0])

	case INTEGER:
		return strconv.FormatInt(tp.tokenData.(int64), 10)

	case FLOAT:
		return basicFormat(tp.tokenData.(float64))

	case IDENT:
		return tp.tokenData.(string)

	case UNEG:
		return "-" + exprOperandString(tp.operands[0])

	default:
		return exprOperandString(tp.operands[0]) + " " + opLexeme(tp.token) +
			" " + exprOperandString(tp.operands[1])
	}
}

func exprOperandString(tp *tokenNode) string {

	switch tp.token {
	case INTEGER, FLOAT, IDENT:
		return exprString(tp)
	}

	return "(" + exprString(tp) + ")"
}

func opLexeme(token int) string {

	switch token {
	case PLUS:
		return "+"
	case MINUS:
		return "-"
	case STAR:
		return "*"
	case SLASH:
		return "/"
	case PERCENT:
		return "%"
	case POW:
		return "^"
	case EQ:
		return "=="
	case NE:
		return "!="
	case LT:
		return "<"
	case LE:
		return "<="
	case GT:
		return ">"
	case GE:
		return ">="
	}

	fatalError(fmt.Sprintf("No lexeme for token %s", getTokenName(token)))

	return ""
}
