package simkernel

import (
	"strconv"
	"strings"
)

// Parser builds an expression tree from source text with position tracking
type Parser struct {
	lx       *lexer
	tok      token
	ahead    *token
	filename string
	lines    []string
	logger   *Logger
}

// NewParser creates a new parser
func NewParser(source, filename string) *Parser {
	return &Parser{
		lx:       newLexer(source, filename),
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// SetLogger enables parse tracing on the given logger
func (p *Parser) SetLogger(l *Logger) { p.logger = l }

// Lines returns the source split into lines, for error context
func (p *Parser) Lines() []string { return p.lines }

// Parse parses text as a program and returns its Global node
func Parse(text, filename string) (*Expr, error) {
	return NewParser(text, filename).Parse()
}

// Parse parses the whole source as a program: statements separated by ';'
func (p *Parser) Parse() (*Expr, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var stmts []*Expr
	for p.tok.typ != tokEOF {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, e)
		if p.tok.typ == tokEOF {
			break
		}
		if !p.isOp(";") {
			return nil, p.errorHere(ExpectSemicolon)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	root := NewExpr(KindGlobal, stmts...)
	if p.logger != nil {
		p.logger.DebugCat(CatParse, "parsed %d statements from %s", len(stmts), p.filename)
	}
	return root, nil
}

func (p *Parser) advance() error {
	if p.ahead != nil {
		p.tok = *p.ahead
		p.ahead = nil
		return nil
	}
	tok, err := p.lx.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// peek returns the token after the current one
func (p *Parser) peek() (token, error) {
	if p.ahead == nil {
		tok, err := p.lx.next()
		if err != nil {
			return token{}, err
		}
		p.ahead = &tok
	}
	return *p.ahead, nil
}

func (p *Parser) isOp(op string) bool {
	return p.tok.typ == tokOperator && p.tok.text == op
}

func (p *Parser) errorHere(code SyntaxCode) *SyntaxError {
	pos := p.tok.pos
	near := p.tok.text
	if p.tok.typ == tokEOF {
		near = ""
	} else if p.tok.typ == tokString {
		near = strconv.Quote(near)
	}
	return &SyntaxError{Code: code, Position: &pos, Near: near}
}

// expect consumes the operator op or fails with code
func (p *Parser) expect(op string, code SyntaxCode) error {
	if !p.isOp(op) {
		return p.errorHere(code)
	}
	return p.advance()
}

// build creates a node and checks its syntax, reporting failures at pos
func (p *Parser) build(pos SourcePosition, kind Kind, args ...*Expr) (*Expr, error) {
	e := NewExpr(kind, args...)
	if err := e.CheckSyntax(); err != nil {
		se := err.(*SyntaxError)
		se.Position = &pos
		return nil, se
	}
	return e, nil
}

// binaryLevel parses a left associative chain of the given operators
func (p *Parser) binaryLevel(operand func() (*Expr, error), ops map[string]Kind) (*Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for p.tok.typ == tokOperator {
		kind, ok := ops[p.tok.text]
		if !ok {
			break
		}
		pos := p.tok.pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.operand(operand)
		if err != nil {
			return nil, err
		}
		if left, err = p.build(pos, kind, left, right); err != nil {
			return nil, err
		}
	}
	return left, nil
}

// operand parses the right side of an operator, where an expression is mandatory
func (p *Parser) operand(parse func() (*Expr, error)) (*Expr, error) {
	if !p.startsExpression() {
		return nil, p.errorHere(ExpectExpression)
	}
	return parse()
}

func (p *Parser) startsExpression() bool {
	switch p.tok.typ {
	case tokInteger, tokReal, tokString, tokIdent:
		return true
	case tokOperator:
		switch p.tok.text {
		case "(", "{", "!", "-", "+":
			return true
		}
	}
	return false
}

var (
	assignOps     = map[string]Kind{"=": KindSet, ":=": KindDefine}
	orOps         = map[string]Kind{"||": KindOr}
	andOps        = map[string]Kind{"&&": KindAnd}
	comparisonOps = map[string]Kind{
		"==": KindEqual, "!=": KindNotEqual, "<=": KindLessEqual,
		">=": KindGreaterEqual, "<": KindLess, ">": KindGreater,
	}
	additionOps       = map[string]Kind{"+": KindPlus, "-": KindSubtract}
	multiplicationOps = map[string]Kind{"*": KindMultiply, "/": KindDivide, "%": KindMod}
)

func (p *Parser) parseExpression() (*Expr, error) {
	if !p.startsExpression() {
		return nil, p.errorHere(ExpectExpression)
	}
	return p.binaryLevel(p.parseOr, assignOps)
}

func (p *Parser) parseOr() (*Expr, error) { return p.binaryLevel(p.parseAnd, orOps) }

func (p *Parser) parseAnd() (*Expr, error) { return p.binaryLevel(p.parseComparison, andOps) }

func (p *Parser) parseComparison() (*Expr, error) {
	return p.binaryLevel(p.parseAddition, comparisonOps)
}

func (p *Parser) parseAddition() (*Expr, error) {
	return p.binaryLevel(p.parseMultiplication, additionOps)
}

func (p *Parser) parseMultiplication() (*Expr, error) {
	return p.binaryLevel(p.parseFactor, multiplicationOps)
}

// parseFactor handles the prefix operators ! - +
func (p *Parser) parseFactor() (*Expr, error) {
	if p.tok.typ == tokOperator {
		pos := p.tok.pos
		var kind Kind
		switch p.tok.text {
		case "!":
			kind = KindNot
		case "-":
			kind = KindMinus
		case "+":
			if err := p.advance(); err != nil {
				return nil, err
			}
			return p.operand(p.parseFactor)
		default:
			return p.parsePower()
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.operand(p.parseFactor)
		if err != nil {
			return nil, err
		}
		return p.build(pos, kind, x)
	}
	return p.parsePower()
}

// parsePower handles a ^ b, where b may carry a prefix operator
func (p *Parser) parsePower() (*Expr, error) {
	left, err := p.parseAt()
	if err != nil {
		return nil, err
	}
	for p.isOp("^") {
		pos := p.tok.pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.operand(p.parseFactor)
		if err != nil {
			return nil, err
		}
		if left, err = p.build(pos, KindPower, left, right); err != nil {
			return nil, err
		}
	}
	return left, nil
}

// parseAt handles f @ x, which is f[x] and associates to the right
func (p *Parser) parseAt() (*Expr, error) {
	head, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if !p.isOp("@") {
		return head, nil
	}
	pos := p.tok.pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	arg, err := p.operand(p.parseAt)
	if err != nil {
		return nil, err
	}
	return p.call(pos, head, []*Expr{arg})
}

// parsePostfix parses a primary followed by any number of f[...] and l[[...]]
func (p *Parser) parsePostfix() (*Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.isOp("[") {
		pos := p.tok.pos
		next, err := p.peek()
		if err != nil {
			return nil, err
		}
		if next.typ == tokOperator && next.text == "[" {
			e, err = p.parseExtract(pos, e)
		} else {
			e, err = p.parseCall(pos, e)
		}
		if err != nil {
			return nil, err
		}
	}
	return e, nil
}

// parseCall parses [args]; arguments after the first may be blocks
func (p *Parser) parseCall(pos SourcePosition, head *Expr) (*Expr, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	var args []*Expr
	if !p.isOp("]") {
		first, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, first)
		for p.isOp(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			arg, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
	}
	if err := p.expect("]", ExpectRightBracket); err != nil {
		return nil, err
	}
	return p.call(pos, head, args)
}

// call builds the builtin named by head, or EvaluateAt[head, {args}]
func (p *Parser) call(pos SourcePosition, head *Expr, args []*Expr) (*Expr, error) {
	if head.SymbolQ() {
		if kind, ok := LookupBuiltin(head.s); ok {
			return p.build(pos, kind, args...)
		}
	}
	list, err := p.build(pos, KindList, args...)
	if err != nil {
		return nil, err
	}
	return p.build(pos, KindEvaluateAt, head, list)
}

// parseExtract parses [[i]] or [[i, j, ...]]
func (p *Parser) parseExtract(pos SourcePosition, list *Expr) (*Expr, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	var idx []*Expr
	for {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		idx = append(idx, e)
		if !p.isOp(",") {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect("]", ExpectRightBracket); err != nil {
		return nil, err
	}
	if err := p.expect("]", ExpectRightBracket); err != nil {
		return nil, err
	}
	position := idx[0]
	if len(idx) > 1 {
		position = NewExpr(KindSequence, idx...)
	}
	return p.build(pos, KindExtract, list, position)
}

// parseBlock parses a; b; c into a Block. A single expression without ';'
// stays as it is, and the last ';' may be omitted.
func (p *Parser) parseBlock() (*Expr, error) {
	pos := p.tok.pos
	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.isOp(";") {
		return first, nil
	}
	stmts := []*Expr{first}
	for p.isOp(";") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if !p.startsExpression() {
			break
		}
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, e)
	}
	return p.build(pos, KindBlock, stmts...)
}

func (p *Parser) parsePrimary() (*Expr, error) {
	tok := p.tok
	switch tok.typ {
	case tokInteger:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if v, err := strconv.Atoi(tok.text); err == nil {
			return NewInteger(v), nil
		}
		v, _ := strconv.ParseFloat(tok.text, 64)
		return NewReal(v), nil

	case tokReal:
		if err := p.advance(); err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, &SyntaxError{Code: GeneralSyntaxError, Position: &tok.pos, Near: tok.text}
		}
		return NewReal(v), nil

	case tokString:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return NewString(tok.text), nil

	case tokIdent:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.literal(tok)

	case tokOperator:
		switch tok.text {
		case "(":
			if err := p.advance(); err != nil {
				return nil, err
			}
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")", ExpectRightParen); err != nil {
				return nil, err
			}
			return e, nil
		case "{":
			return p.parseList()
		}
	}
	return nil, p.errorHere(ExpectExpression)
}

// literal turns an identifier into a Bool, a constant, a Symbol or x_
func (p *Parser) literal(tok token) (*Expr, error) {
	switch tok.text {
	case "True":
		return NewBool(true), nil
	case "False":
		return NewBool(false), nil
	}
	if kind, ok := LookupConstant(tok.text); ok {
		if p.isOp("_") {
			return nil, &SyntaxError{Code: PatternExpectSymbol, Position: &tok.pos, Near: tok.text}
		}
		return NewExpr(kind), nil
	}
	sym := NewSymbol(tok.text)
	if !p.isOp("_") {
		return sym, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.build(tok.pos, KindPattern, sym)
}

func (p *Parser) parseList() (*Expr, error) {
	pos := p.tok.pos
	if err := p.advance(); err != nil {
		return nil, err
	}
	var items []*Expr
	if !p.isOp("}") {
		for {
			e, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			items = append(items, e)
			if !p.isOp(",") {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect("}", ExpectRightBrace); err != nil {
		return nil, err
	}
	return p.build(pos, KindList, items...)
}
