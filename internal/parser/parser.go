// Package parser implements a recursive-descent, one-token-lookahead parser
// that builds an internal/ast.Program from a internal/lexer token stream.
package parser

import (
	"github.com/curria-lang/curria/internal/ast"
	"github.com/curria-lang/curria/internal/errs"
	"github.com/curria-lang/curria/internal/token"
)

// tokenSource is the subset of *lexer.Lexer the parser depends on, letting
// tests drive the parser from a canned token slice.
type tokenSource interface {
	Next() token.Token
}

// Parser is a recursive-descent parser with one-token lookahead. Comments
// are transparently skipped: every advance loops past COMMENT tokens.
type Parser struct {
	lex  tokenSource
	sink *errs.Sink
	tok  token.Token

	// loopDepth tracks lexical nesting inside while bodies, so break/continue
	// outside a loop can be rejected statically (see DESIGN.md's resolution
	// of the BreakOrContinueOutsideWhile open question).
	loopDepth int
}

// New creates a Parser over lex, reporting errors to sink.
func New(lex tokenSource, sink *errs.Sink) *Parser {
	p := &Parser{lex: lex, sink: sink}
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.tok = p.lex.Next()
	for p.tok.Kind == token.COMMENT {
		p.tok = p.lex.Next()
	}
}

func (p *Parser) pos() token.Position { return p.tok.Pos }

// tokenText renders the current token's value for error messages.
func (p *Parser) tokenText() string {
	if p.tok.Value == nil {
		return p.tok.Kind.String()
	}
	if s, ok := p.tok.Value.(string); ok {
		return s
	}
	return p.tok.Kind.String()
}

// Parse parses the full program: zero or more function definitions
// followed by EOF.
func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{
		Base:      ast.Base{Pos: token.Position{Line: 1, Column: 1}},
		Functions: map[string]*ast.FunctionDef{},
	}

	for p.tok.Kind == token.IDENT {
		fn, err := p.parseFunctionDef()
		if err != nil {
			return nil, err
		}
		if _, dup := prog.Functions[fn.Name]; dup {
			return nil, p.sink.FatalError(errs.KindDuplicateDef, fn.Pos, "duplicate function definition %q", fn.Name)
		}
		prog.Functions[fn.Name] = fn
		prog.Order = append(prog.Order, fn.Name)
	}

	if p.tok.Kind != token.EOF {
		return nil, p.sink.FatalError(errs.KindUnexpectedToken, p.pos(), "unexpected token %q at top level", p.tokenText())
	}
	return prog, nil
}

func (p *Parser) parseFunctionDef() (*ast.FunctionDef, error) {
	pos := p.pos()
	name := p.tok.Value.(string)
	p.advance()

	p.expectBracket(token.LPAREN)
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	p.expectBracket(token.RPAREN)

	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, p.sink.FatalError(errs.KindUnexpectedToken, p.pos(), "unexpected token %q: function_def expected a block", p.tokenText())
	}
	return &ast.FunctionDef{Base: ast.Base{Pos: pos}, Name: name, Parameters: params, Block: block}, nil
}

func (p *Parser) parseParamList() ([]string, error) {
	var params []string
	if p.tok.Kind != token.IDENT {
		return params, nil
	}
	params = append(params, p.tok.Value.(string))
	p.advance()
	for p.tok.Kind == token.COMMA {
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		params = append(params, name)
	}
	return params, nil
}

func (p *Parser) expectIdent() (string, error) {
	if p.tok.Kind != token.IDENT {
		return "", p.sink.FatalError(errs.KindExpectingIdent, p.pos(), "expected identifier, found %q", p.tokenText())
	}
	name := p.tok.Value.(string)
	p.advance()
	return name, nil
}

// expectBracket consumes a bracket/semicolon-shaped token if present;
// otherwise it records a recoverable error and does not consume, allowing
// best-effort recovery (spec: missing ';'/bracket are recoverable).
func (p *Parser) expectBracket(kind token.Kind) {
	if p.tok.Kind != kind {
		p.sink.Save(errs.KindMissingBracket, p.pos(), "expected %q, found %q", kind, p.tokenText())
		return
	}
	p.advance()
}

func (p *Parser) expectSemicolon() {
	if p.tok.Kind != token.SEMICOLON {
		p.sink.Save(errs.KindMissingSemiColon, p.pos(), "missing ';', found %q", p.tokenText())
		return
	}
	p.advance()
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	if p.tok.Kind != token.LBRACE {
		return nil, nil
	}
	pos := p.pos()
	p.advance()
	var stmts []ast.Statement
	for {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt == nil {
			break
		}
		stmts = append(stmts, stmt)
	}
	p.expectBracket(token.RBRACE)
	return &ast.Block{Base: ast.Base{Pos: pos}, Statements: stmts}, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.tok.Kind {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.RETURN:
		return p.parseReturn()
	case token.BREAK:
		return p.parseBreak()
	case token.CONTINUE:
		return p.parseContinue()
	case token.IDENT:
		return p.parseVariableOrAssignment()
	default:
		return nil, nil
	}
}

func (p *Parser) parseVariableOrAssignment() (ast.Statement, error) {
	access, err := p.parseVariableAccess()
	if err != nil {
		return nil, err
	}
	if access == nil {
		return nil, nil
	}
	if p.tok.Kind == token.ASSIGN {
		pos := p.pos()
		p.advance()
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, p.sink.FatalError(errs.KindExpectingExpr, p.pos(), "assignment expected an expression, found %q", p.tokenText())
		}
		p.expectSemicolon()
		return &ast.Assignment{Base: ast.Base{Pos: pos}, Target: access, Value: value}, nil
	}
	p.expectSemicolon()
	return access, nil
}

func (p *Parser) parseVariableAccess() (*ast.VariableAccess, error) {
	pos := p.pos()
	first, err := p.parseFunCall()
	if err != nil {
		return nil, err
	}
	if first == nil {
		return nil, nil
	}
	chain := []ast.Atom{first}
	for p.tok.Kind == token.DOT {
		p.advance()
		next, err := p.parseFunCall()
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, p.sink.FatalError(errs.KindUnexpectedToken, p.pos(), "unexpected token %q: variable_access expected an identifier", p.tokenText())
		}
		chain = append(chain, next)
	}
	return &ast.VariableAccess{Base: ast.Base{Pos: pos}, Chain: chain}, nil
}

func (p *Parser) parseFunCall() (ast.Atom, error) {
	if p.tok.Kind != token.IDENT {
		return nil, nil
	}
	pos := p.pos()
	name := p.tok.Value.(string)
	p.advance()
	if p.tok.Kind != token.LPAREN {
		return &ast.Identifier{Base: ast.Base{Pos: pos}, Name: name}, nil
	}
	p.advance()
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	p.expectBracket(token.RPAREN)
	return &ast.FunctionCall{Base: ast.Base{Pos: pos}, Name: name, Args: args}, nil
}

func (p *Parser) parseArgList() ([]ast.Expression, error) {
	var args []ast.Expression
	first, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if first == nil {
		return args, nil
	}
	args = append(args, first)
	for p.tok.Kind == token.COMMA {
		p.advance()
		next, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, p.sink.FatalError(errs.KindExpectingExpr, p.pos(), "unexpected token %q: argument_list expected an expression", p.tokenText())
		}
		args = append(args, next)
	}
	return args, nil
}

func (p *Parser) parseIf() (ast.Statement, error) {
	pos := p.pos()
	p.advance()
	p.expectBracket(token.LPAREN)
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if cond == nil {
		return nil, p.sink.FatalError(errs.KindExpectingExpr, p.pos(), "if expected a condition expression, found %q", p.tokenText())
	}
	p.expectBracket(token.RPAREN)
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if then == nil {
		return nil, p.sink.FatalError(errs.KindUnexpectedToken, p.pos(), "unexpected token %q: if_statement_then expected a block", p.tokenText())
	}
	if p.tok.Kind != token.ELSE {
		return &ast.If{Base: ast.Base{Pos: pos}, Cond: cond, Then: then}, nil
	}
	p.advance()
	elseBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if elseBlock == nil {
		return nil, p.sink.FatalError(errs.KindUnexpectedToken, p.pos(), "unexpected token %q: if_statement_else expected a block", p.tokenText())
	}
	return &ast.If{Base: ast.Base{Pos: pos}, Cond: cond, Then: then, Else: elseBlock}, nil
}

func (p *Parser) parseWhile() (ast.Statement, error) {
	pos := p.pos()
	p.advance()
	p.expectBracket(token.LPAREN)
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if cond == nil {
		return nil, p.sink.FatalError(errs.KindExpectingExpr, p.pos(), "while expected a condition expression, found %q", p.tokenText())
	}
	p.expectBracket(token.RPAREN)
	p.loopDepth++
	body, err := p.parseBlock()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, p.sink.FatalError(errs.KindUnexpectedToken, p.pos(), "unexpected token %q: while_statement expected a block", p.tokenText())
	}
	return &ast.While{Base: ast.Base{Pos: pos}, Cond: cond, Body: body}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	pos := p.pos()
	p.advance()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.expectSemicolon()
	return &ast.Return{Base: ast.Base{Pos: pos}, Expr: expr}, nil
}

func (p *Parser) parseBreak() (ast.Statement, error) {
	pos := p.pos()
	if p.loopDepth == 0 {
		return nil, p.sink.FatalError(errs.KindBreakContinueOutside, pos, "break outside of a while loop")
	}
	p.advance()
	p.expectSemicolon()
	return &ast.Break{Base: ast.Base{Pos: pos}}, nil
}

func (p *Parser) parseContinue() (ast.Statement, error) {
	pos := p.pos()
	if p.loopDepth == 0 {
		return nil, p.sink.FatalError(errs.KindBreakContinueOutside, pos, "continue outside of a while loop")
	}
	p.advance()
	p.expectSemicolon()
	return &ast.Continue{Base: ast.Base{Pos: pos}}, nil
}

// ---- Expressions, lowest to highest precedence ----

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expression, error) {
	pos := p.pos()
	left, err := p.parseAnd()
	if err != nil || left == nil {
		return left, err
	}
	for p.tok.Kind == token.OR {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		if right == nil {
			return nil, p.sink.FatalError(errs.KindExpectingExpr, p.pos(), "unexpected token %q: expression expected an operand", p.tokenText())
		}
		left = &ast.Or{Base: ast.Base{Pos: pos}, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	pos := p.pos()
	left, err := p.parseNotOperand()
	if err != nil || left == nil {
		return left, err
	}
	for p.tok.Kind == token.AND {
		p.advance()
		right, err := p.parseNotOperand()
		if err != nil {
			return nil, err
		}
		if right == nil {
			return nil, p.sink.FatalError(errs.KindExpectingExpr, p.pos(), "unexpected token %q: or_operand expected an operand", p.tokenText())
		}
		left = &ast.And{Base: ast.Base{Pos: pos}, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNotOperand() (ast.Expression, error) {
	pos := p.pos()
	if p.tok.Kind != token.NOT {
		return p.parseComparison()
	}
	p.advance()
	operand, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if operand == nil {
		return nil, p.sink.FatalError(errs.KindExpectingExpr, p.pos(), "unexpected token %q: negation expected an expression", p.tokenText())
	}
	return &ast.NegatedLogical{Base: ast.Base{Pos: pos}, Operand: operand}, nil
}

var comparisonOps = map[token.Kind]ast.CompareOp{
	token.EQ:    ast.CmpEQ,
	token.NOT_EQ: ast.CmpNE,
	token.GT:    ast.CmpGT,
	token.LT:    ast.CmpLT,
	token.GT_EQ: ast.CmpGE,
	token.LT_EQ: ast.CmpLE,
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	pos := p.pos()
	left, err := p.parseAdditive()
	if err != nil || left == nil {
		return left, err
	}
	op, ok := comparisonOps[p.tok.Kind]
	if !ok {
		return left, nil
	}
	p.advance()
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if right == nil {
		return nil, p.sink.FatalError(errs.KindExpectingExpr, p.pos(), "unexpected token %q: comparison expected an operand", p.tokenText())
	}
	return &ast.Comparison{Base: ast.Base{Pos: pos}, Op: op, Left: left, Right: right}, nil
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	pos := p.pos()
	left, err := p.parseMultiplicative()
	if err != nil || left == nil {
		return left, err
	}
	for p.tok.Kind == token.PLUS || p.tok.Kind == token.MINUS {
		isAdd := p.tok.Kind == token.PLUS
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		if right == nil {
			return nil, p.sink.FatalError(errs.KindExpectingExpr, p.pos(), "unexpected token %q: additive_expression expected an operand", p.tokenText())
		}
		if isAdd {
			left = &ast.Add{Base: ast.Base{Pos: pos}, Left: left, Right: right}
		} else {
			left = &ast.Sub{Base: ast.Base{Pos: pos}, Left: left, Right: right}
		}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	pos := p.pos()
	left, err := p.parseFactor()
	if err != nil || left == nil {
		return left, err
	}
	for p.tok.Kind == token.STAR || p.tok.Kind == token.SLASH {
		isMul := p.tok.Kind == token.STAR
		p.advance()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		if right == nil {
			return nil, p.sink.FatalError(errs.KindExpectingExpr, p.pos(), "unexpected token %q: multiplicative_expression expected an operand", p.tokenText())
		}
		if isMul {
			left = &ast.Mul{Base: ast.Base{Pos: pos}, Left: left, Right: right}
		} else {
			left = &ast.Div{Base: ast.Base{Pos: pos}, Left: left, Right: right}
		}
	}
	return left, nil
}

// parseFactor handles '^' and '->' at the same left-associative precedence
// level, dispatching via a kind-to-constructor choice the same way
// parseAdditive/parseMultiplicative do. This is the resolution of the
// original source's ExponentialExpression/FACTOR_OPERATOR_MAPPING
// inconsistency: the mapping table (never actually wired
// into the original's _parse_factor) is adopted as the real design, giving
// '^' and '->' their own distinct AST nodes as spec.md's grammar requires.
func (p *Parser) parseFactor() (ast.Expression, error) {
	pos := p.pos()
	left, err := p.parseUnaryFactor()
	if err != nil || left == nil {
		return left, err
	}
	for p.tok.Kind == token.CARET || p.tok.Kind == token.ARROW {
		isPower := p.tok.Kind == token.CARET
		p.advance()
		right, err := p.parseUnaryFactor()
		if err != nil {
			return nil, err
		}
		if right == nil {
			return nil, p.sink.FatalError(errs.KindExpectingExpr, p.pos(), "unexpected token %q: factor expected an operand", p.tokenText())
		}
		if isPower {
			left = &ast.Power{Base: ast.Base{Pos: pos}, Left: left, Right: right}
		} else {
			left = &ast.Transfer{Base: ast.Base{Pos: pos}, Left: left, Right: right}
		}
	}
	return left, nil
}

func (p *Parser) parseUnaryFactor() (ast.Expression, error) {
	pos := p.pos()
	if p.tok.Kind != token.MINUS {
		return p.parseAtom()
	}
	p.advance()
	operand, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if operand == nil {
		return nil, p.sink.FatalError(errs.KindExpectingExpr, p.pos(), "unexpected token %q: negation expected an expression", p.tokenText())
	}
	return &ast.NegatedArithmetic{Base: ast.Base{Pos: pos}, Operand: operand}, nil
}

func (p *Parser) parseAtom() (ast.Expression, error) {
	if c := p.tryParseConstant(); c != nil {
		return c, nil
	}
	if p.tok.Kind == token.LPAREN {
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if expr == nil {
			return nil, p.sink.FatalError(errs.KindExpectingExpr, p.pos(), "unexpected token %q: bracket_expression expected an expression", p.tokenText())
		}
		p.expectBracket(token.RPAREN)
		return expr, nil
	}
	access, err := p.parseVariableAccess()
	if err != nil {
		return nil, err
	}
	if access == nil {
		return nil, nil
	}
	if len(access.Chain) == 1 {
		return access.Chain[0], nil
	}
	return access, nil
}

func (p *Parser) tryParseConstant() *ast.Constant {
	pos := p.pos()
	switch p.tok.Kind {
	case token.INT:
		v := p.tok.Value.(int64)
		p.advance()
		return &ast.Constant{Base: ast.Base{Pos: pos}, Kind: ast.ConstInt, Value: v}
	case token.FLOAT:
		v := p.tok.Value.(float64)
		p.advance()
		return &ast.Constant{Base: ast.Base{Pos: pos}, Kind: ast.ConstFloat, Value: v}
	case token.STR:
		v := p.tok.Value.([]byte)
		p.advance()
		return &ast.Constant{Base: ast.Base{Pos: pos}, Kind: ast.ConstStr, Value: v}
	case token.TRUE:
		p.advance()
		return &ast.Constant{Base: ast.Base{Pos: pos}, Kind: ast.ConstBool, Value: true}
	case token.FALSE:
		p.advance()
		return &ast.Constant{Base: ast.Base{Pos: pos}, Kind: ast.ConstBool, Value: false}
	case token.CURR:
		lexeme := p.tok.Value.(string)
		p.advance()
		return &ast.Constant{Base: ast.Base{Pos: pos}, Kind: ast.ConstCurrency, Value: parseCurrencyLexeme(lexeme)}
	default:
		return nil
	}
}

// parseCurrencyLexeme splits a CURR token's lexeme (digits + currency code)
// back into its amount and code. The lexer always produces well-formed
// lexemes (numeric body immediately followed by USD/EUR/PLN).
func parseCurrencyLexeme(lexeme string) ast.CurrencyLiteral {
	i := len(lexeme)
	for i > 0 && (lexeme[i-1] < '0' || lexeme[i-1] > '9') && lexeme[i-1] != '.' {
		i--
	}
	numPart := lexeme[:i]
	code := lexeme[i:]
	amount := parseFloatLenient(numPart)
	return ast.CurrencyLiteral{Amount: amount, Code: code}
}

func parseFloatLenient(s string) float64 {
	var intPart, fracPart float64
	var decimals int
	seenDot := false
	for _, r := range s {
		if r == '.' {
			seenDot = true
			continue
		}
		d := float64(r - '0')
		if !seenDot {
			intPart = intPart*10 + d
		} else {
			fracPart = fracPart*10 + d
			decimals++
		}
	}
	div := 1.0
	for i := 0; i < decimals; i++ {
		div *= 10
	}
	return intPart + fracPart/div
}
