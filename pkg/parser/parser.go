package parser

import (
	"fmt"

	"pseudocoder/interpreter-go/pkg/ast"
)

// ParseProgram parses pseudocode source into a program tree.
func ParseProgram(source []byte) (*ast.Program, error) {
	tokens, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	body, err := p.parseStatements(nil)
	if err != nil {
		return nil, err
	}
	if !p.at(tokenEOF) {
		return nil, p.errorf(p.peek(), "unexpected %s", p.peek())
	}
	program := ast.NewProgram(body)
	if len(tokens) > 0 {
		ast.SetSpan(program, ast.Span{Start: tokens[0].start, End: tokens[len(tokens)-1].end})
	}
	return program, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(offset int) token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *parser) previous() token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) at(kind tokenKind) bool {
	return p.peek().kind == kind
}

func (p *parser) atKeyword(words ...string) bool {
	tok := p.peek()
	if tok.kind != tokenKeyword {
		return false
	}
	for _, w := range words {
		if tok.text == w {
			return true
		}
	}
	return false
}

func (p *parser) atText(kind tokenKind, text string) bool {
	tok := p.peek()
	return tok.kind == kind && tok.text == text
}

func (p *parser) expectKeyword(word string) (token, error) {
	if !p.atKeyword(word) {
		return token{}, p.errorf(p.peek(), "expected %s, found %s", word, p.peek())
	}
	return p.next(), nil
}

func (p *parser) expectText(kind tokenKind, text string) (token, error) {
	if !p.atText(kind, text) {
		return token{}, p.errorf(p.peek(), "expected '%s', found %s", text, p.peek())
	}
	return p.next(), nil
}

func (p *parser) expectIdentifier() (*ast.Identifier, error) {
	tok := p.peek()
	if tok.kind != tokenIdentifier {
		return nil, p.errorf(tok, "expected identifier, found %s", tok)
	}
	p.next()
	id := ast.NewIdentifier(tok.text)
	ast.SetSpan(id, ast.Span{Start: tok.start, End: tok.end})
	return id, nil
}

func (p *parser) skipNewlines() {
	for p.at(tokenNewline) {
		p.next()
	}
}

// endOfStatement requires a line break (or the end of input) after a statement.
func (p *parser) endOfStatement() error {
	switch p.peek().kind {
	case tokenNewline:
		p.next()
		return nil
	case tokenEOF:
		return nil
	default:
		return p.errorf(p.peek(), "expected end of line, found %s", p.peek())
	}
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return &SyntaxError{
		Line:       tok.start.Line,
		Column:     tok.start.Column,
		Message:    fmt.Sprintf(format, args...),
		Incomplete: tok.kind == tokenEOF,
	}
}

func (p *parser) spanFrom(start token) ast.Span {
	return ast.Span{Start: start.start, End: p.previous().end}
}

func annotateStatement(stmt ast.Statement, span ast.Span) ast.Statement {
	ast.SetSpan(stmt, span)
	return stmt
}

func annotateExpression(expr ast.Expression, span ast.Span) ast.Expression {
	ast.SetSpan(expr, span)
	return expr
}
