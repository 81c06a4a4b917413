package main

import (
	"errors"
	"fmt"
	"lotusCalc/contracts"
	"strings"
)

// Expression nodes. Trees are immutable and rebuilt from scratch on
// every re-parse; nothing edits a node after the parser returns it.
type Expr interface {
	exprNode()
}

type LiteralExpr struct {
	Value contracts.Value
}

type CellRefExpr struct {
	Ref contracts.Reference
}

type RangeRefExpr struct {
	Range contracts.RangeReference
}

type NameRefExpr struct {
	Name string
}

type UnaryExpr struct {
	Op      string
	Operand Expr
}

type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
}

type CallExpr struct {
	Name string
	Args []Expr
}

func (*LiteralExpr) exprNode()  {}
func (*CellRefExpr) exprNode()  {}
func (*RangeRefExpr) exprNode() {}
func (*NameRefExpr) exprNode()  {}
func (*UnaryExpr) exprNode()    {}
func (*BinaryExpr) exprNode()   {}
func (*CallExpr) exprNode()     {}

var ParseError = errors.New("parse error")

// FormulaPrefixes mark a cell's raw content as a formula. "=" and "@"
// are interchangeable; both are stripped before tokenization.
const FormulaPrefixes = "=@"

func IsFormula(raw string) bool {
	return raw != "" && strings.IndexByte(FormulaPrefixes, raw[0]) >= 0
}

// FormulaBody strips the formula marker from raw cell content.
func FormulaBody(raw string) string {
	if IsFormula(raw) {
		return raw[1:]
	}
	return raw
}

// ParseFormula parses a formula body into an expression tree.
func ParseFormula(body string) (Expr, error) {
	tokens, err := Tokenize(body)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	expr, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.current().Type != TokenEOF {
		return nil, fmt.Errorf("%w: unexpected %q at %d", ParseError, p.current().Text, p.current().Pos)
	}
	return expr, nil
}

// parser is a precedence-climbing recursive descent parser. Binding
// order, tightest first: ^ (right-assoc), unary +/-, * /, binary + -,
// & (concatenation), comparisons (left-assoc, loosest) so that
// A1+B1>10 parses as (A1+B1)>10.
type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) current() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Type: TokenEOF}
}

func (p *parser) advance() Token {
	tok := p.current()
	p.pos++
	return tok
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenComparison {
		op := p.advance().Text
		right, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseConcat() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenOperator && p.current().Text == "&" {
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: "&", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenOperator && (p.current().Text == "+" || p.current().Text == "-") {
		op := p.advance().Text
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (Expr, error) {
	left, err := p.parsePower()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenOperator && (p.current().Text == "*" || p.current().Text == "/") {
		op := p.advance().Text
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parsePower() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.current().Type == TokenOperator && p.current().Text == "^" {
		p.advance()
		// recurse at the same level for right-associativity
		right, err := p.parsePower()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: "^", Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.current().Type == TokenOperator && (p.current().Text == "-" || p.current().Text == "+") {
		op := p.advance().Text
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: op, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.current()

	switch tok.Type {
	case TokenNumber:
		p.advance()
		return &LiteralExpr{Value: contracts.NumberValue(tok.Number)}, nil

	case TokenString:
		p.advance()
		return &LiteralExpr{Value: contracts.TextValue(tok.Text)}, nil

	case TokenError:
		p.advance()
		kind, _ := contracts.ParseErrorCode(tok.Text)
		return &LiteralExpr{Value: contracts.ErrorValue(kind)}, nil

	case TokenCell:
		p.advance()
		start, err := contracts.ParseReference(tok.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ParseError, err)
		}
		if p.current().Type == TokenColon {
			p.advance()
			endTok := p.current()
			if endTok.Type != TokenCell {
				return nil, fmt.Errorf("%w: expected cell after %q at %d", ParseError, ":", endTok.Pos)
			}
			p.advance()
			end, err := contracts.ParseReference(endTok.Text)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ParseError, err)
			}
			return &RangeRefExpr{Range: contracts.NewRangeReference(start, end)}, nil
		}
		return &CellRefExpr{Ref: start}, nil

	case TokenIdentifier:
		p.advance()
		return &NameRefExpr{Name: tok.Text}, nil

	case TokenFunction:
		p.advance()
		return p.parseCall(tok)

	case TokenLeftParen:
		p.advance()
		inner, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if p.current().Type != TokenRightParen {
			return nil, fmt.Errorf("%w: missing closing parenthesis at %d", ParseError, p.current().Pos)
		}
		p.advance()
		return inner, nil
	}

	return nil, fmt.Errorf("%w: unexpected %q at %d", ParseError, tok.Text, tok.Pos)
}

func (p *parser) parseCall(nameTok Token) (Expr, error) {
	if p.current().Type != TokenLeftParen {
		return nil, fmt.Errorf("%w: expected ( after %s", ParseError, nameTok.Text)
	}
	p.advance()

	call := &CallExpr{Name: nameTok.Text}
	if p.current().Type == TokenRightParen {
		p.advance()
		return call, nil
	}

	for {
		arg, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		switch p.current().Type {
		case TokenComma:
			p.advance()
		case TokenRightParen:
			p.advance()
			return call, nil
		default:
			return nil, fmt.Errorf("%w: expected , or ) in %s() at %d", ParseError, nameTok.Text, p.current().Pos)
		}
	}
}

// WalkExpr visits every node of the tree depth-first.
func WalkExpr(expr Expr, visit func(Expr)) {
	if expr == nil {
		return
	}
	visit(expr)
	switch node := expr.(type) {
	case *UnaryExpr:
		WalkExpr(node.Operand, visit)
	case *BinaryExpr:
		WalkExpr(node.Left, visit)
		WalkExpr(node.Right, visit)
	case *CallExpr:
		for _, arg := range node.Args {
			WalkExpr(arg, visit)
		}
	}
}
