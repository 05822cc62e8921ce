package parser

import (
	"math"
	"strconv"

	"pseudocoder/interpreter-go/pkg/ast"
)

// Binary operator levels, loosest first. NOT sits between AND and the comparisons.
var infixOperatorSets = [][]string{
	{"OR"},
	{"AND"},
	{"=", "<>", "<", ">", "<=", ">="},
	{"&"},
	{"+", "-"},
	{"*", "/", "MOD", "DIV"},
}

const notLevel = 2

// minIntMagnitude only fits INTEGER when negated, so "-" followed by it is folded into one literal.
const minIntMagnitude = "9223372036854775808"

func (p *parser) parseExpression() (ast.Expression, error) {
	return p.parseLevel(0)
}

func (p *parser) parseLevel(level int) (ast.Expression, error) {
	if level == len(infixOperatorSets) {
		return p.parseUnary()
	}
	if level == notLevel && p.atKeyword("NOT") {
		start := p.next()
		operand, err := p.parseLevel(level)
		if err != nil {
			return nil, err
		}
		return annotateExpression(ast.NewUnaryExpression("NOT", operand), p.spanFrom(start)), nil
	}
	start := p.peek()
	left, err := p.parseLevel(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.matchInfix(infixOperatorSets[level])
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseLevel(level + 1)
		if err != nil {
			return nil, err
		}
		left = annotateExpression(ast.NewBinaryExpression(op, left, right), p.spanFrom(start))
	}
}

func (p *parser) matchInfix(ops []string) (string, bool) {
	tok := p.peek()
	if tok.kind != tokenOperator && tok.kind != tokenKeyword {
		return "", false
	}
	for _, op := range ops {
		if tok.text == op {
			return op, true
		}
	}
	return "", false
}

func (p *parser) parseUnary() (ast.Expression, error) {
	if p.atText(tokenOperator, "-") {
		start := p.next()
		if p.at(tokenInteger) && p.peek().text == minIntMagnitude {
			lit := p.next()
			expr := ast.NewIntegerLiteral(math.MinInt64)
			return annotateExpression(expr, ast.Span{Start: start.start, End: lit.end}), nil
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return annotateExpression(ast.NewUnaryExpression("-", operand), p.spanFrom(start)), nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Expression, error) {
	tok := p.peek()
	span := ast.Span{Start: tok.start, End: tok.end}
	switch tok.kind {
	case tokenInteger:
		p.next()
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, p.errorf(tok, "integer literal %s out of range", tok.text)
		}
		return annotateExpression(ast.NewIntegerLiteral(n), span), nil
	case tokenReal:
		p.next()
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid real literal %s", tok.text)
		}
		return annotateExpression(ast.NewRealLiteral(f), span), nil
	case tokenString:
		p.next()
		return annotateExpression(ast.NewStringLiteral(tok.text), span), nil
	case tokenChar:
		p.next()
		return annotateExpression(ast.NewCharLiteral(tok.text), span), nil
	case tokenDate:
		p.next()
		day, _ := strconv.Atoi(tok.text[0:2])
		month, _ := strconv.Atoi(tok.text[3:5])
		year, _ := strconv.Atoi(tok.text[6:10])
		return annotateExpression(ast.NewDateLiteral(year, month, day), span), nil
	case tokenKeyword:
		switch tok.text {
		case "TRUE", "FALSE":
			p.next()
			return annotateExpression(ast.NewBooleanLiteral(tok.text == "TRUE"), span), nil
		}
	case tokenIdentifier:
		id, _ := p.expectIdentifier()
		if !p.atText(tokenPunct, "(") {
			return id, nil
		}
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		return annotateExpression(ast.NewFunctionCall(id, args), p.spanFrom(tok)), nil
	case tokenPunct:
		if tok.text == "(" {
			p.next()
			inner, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectText(tokenPunct, ")"); err != nil {
				return nil, err
			}
			return inner, nil
		}
	}
	return nil, p.errorf(tok, "expected expression, found %s", tok)
}

// parseArguments reads a parenthesised, comma separated argument list.
func (p *parser) parseArguments() ([]ast.Expression, error) {
	if _, err := p.expectText(tokenPunct, "("); err != nil {
		return nil, err
	}
	args := make([]ast.Expression, 0)
	if p.atText(tokenPunct, ")") {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.atText(tokenPunct, ",") {
			p.next()
			continue
		}
		if _, err := p.expectText(tokenPunct, ")"); err != nil {
			return nil, err
		}
		return args, nil
	}
}
