package parser

import (
	"strings"

	"pseudocoder/interpreter-go/pkg/ast"
)

// parseStatements reads statements until one of the terminator keywords (left unconsumed) or
// the end of input. Reaching the end while terminators are pending is an incomplete error.
func (p *parser) parseStatements(terminators []string) ([]ast.Statement, error) {
	stmts := make([]ast.Statement, 0)
	for {
		p.skipNewlines()
		if p.at(tokenEOF) {
			if len(terminators) > 0 {
				return nil, p.errorf(p.peek(), "expected %s before end of input", strings.Join(terminators, " or "))
			}
			return stmts, nil
		}
		if p.atKeyword(terminators...) {
			return stmts, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *parser) parseStatement() (ast.Statement, error) {
	tok := p.peek()
	if tok.kind == tokenIdentifier {
		return p.parseAssignment()
	}
	if tok.kind != tokenKeyword {
		return nil, p.errorf(tok, "unexpected %s at start of statement", tok)
	}
	switch tok.text {
	case "DECLARE":
		return p.parseVariableDeclaration()
	case "CONSTANT":
		return p.parseConstantDeclaration()
	case "OUTPUT":
		return p.parseOutput()
	case "CALL":
		return p.parseProcedureCall()
	case "RETURN":
		return p.parseReturn()
	case "IF":
		return p.parseIf()
	case "FOR":
		return p.parseFor()
	case "WHILE":
		return p.parseWhile()
	case "DO":
		return p.parseDoWhile()
	case "PROCEDURE":
		return p.parseProcedureDefinition()
	case "FUNCTION":
		return p.parseFunctionDefinition()
	default:
		return nil, p.errorf(tok, "unexpected %s at start of statement", tok)
	}
}

func (p *parser) parseVariableDeclaration() (ast.Statement, error) {
	start := p.next()
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText(tokenPunct, ":"); err != nil {
		return nil, err
	}
	typ, err := p.parseTypeReference()
	if err != nil {
		return nil, err
	}
	stmt := annotateStatement(ast.NewVariableDeclaration(name, typ), p.spanFrom(start))
	return stmt, p.endOfStatement()
}

// parseConstantDeclaration accepts `CONSTANT name [: TYPE] = value`. Without an explicit type
// the value must be a literal whose type is implied.
func (p *parser) parseConstantDeclaration() (ast.Statement, error) {
	start := p.next()
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	var typ ast.Expression
	if p.atText(tokenPunct, ":") {
		p.next()
		if typ, err = p.parseTypeReference(); err != nil {
			return nil, err
		}
	}
	if !p.atText(tokenOperator, "=") && !p.atText(tokenOperator, "<-") {
		return nil, p.errorf(p.peek(), "expected '=' in constant declaration, found %s", p.peek())
	}
	p.next()
	valueTok := p.peek()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if typ == nil {
		typeName := literalTypeName(value)
		if typeName == "" {
			return nil, p.errorf(valueTok, "constant '%s' needs an explicit type", name.Name)
		}
		typ = annotateExpression(ast.NewIdentifier(typeName), value.Span())
	}
	stmt := annotateStatement(ast.NewConstantDeclaration(name, typ, value), p.spanFrom(start))
	return stmt, p.endOfStatement()
}

func literalTypeName(expr ast.Expression) string {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return "INTEGER"
	case *ast.RealLiteral:
		return "REAL"
	case *ast.StringLiteral:
		return "STRING"
	case *ast.CharLiteral:
		return "CHAR"
	case *ast.BooleanLiteral:
		return "BOOLEAN"
	case *ast.DateLiteral:
		return "DATE"
	case *ast.UnaryExpression:
		if e.Operator == "-" {
			return literalTypeName(e.Operand)
		}
	}
	return ""
}

func (p *parser) parseAssignment() (ast.Statement, error) {
	start := p.peek()
	target, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if !p.atText(tokenOperator, "<-") {
		return nil, p.errorf(p.peek(), "expected '<-' after '%s', found %s", target.Name, p.peek())
	}
	p.next()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt := annotateStatement(ast.NewAssignment(target, value), p.spanFrom(start))
	return stmt, p.endOfStatement()
}

func (p *parser) parseOutput() (ast.Statement, error) {
	start := p.next()
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt := annotateStatement(ast.NewOutputStatement(value), p.spanFrom(start))
	return stmt, p.endOfStatement()
}

func (p *parser) parseProcedureCall() (ast.Statement, error) {
	start := p.next()
	callee, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	var args []ast.Expression
	if p.atText(tokenPunct, "(") {
		if args, err = p.parseArguments(); err != nil {
			return nil, err
		}
	}
	stmt := annotateStatement(ast.NewProcedureCall(callee, args), p.spanFrom(start))
	return stmt, p.endOfStatement()
}

func (p *parser) parseReturn() (ast.Statement, error) {
	start := p.next()
	var value ast.Expression
	if !p.at(tokenNewline) && !p.at(tokenEOF) {
		var err error
		if value, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	stmt := annotateStatement(ast.NewReturnStatement(value), p.spanFrom(start))
	return stmt, p.endOfStatement()
}

func (p *parser) parseIf() (ast.Statement, error) {
	start := p.next()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipNewlines()
	if _, err := p.expectKeyword("THEN"); err != nil {
		return nil, err
	}
	consequent, err := p.parseStatements([]string{"ELSE", "ENDIF"})
	if err != nil {
		return nil, err
	}
	var alternate []ast.Statement
	if p.atKeyword("ELSE") {
		p.next()
		if alternate, err = p.parseStatements([]string{"ENDIF"}); err != nil {
			return nil, err
		}
	}
	if _, err := p.expectKeyword("ENDIF"); err != nil {
		return nil, err
	}
	stmt := annotateStatement(ast.NewIfStatement(cond, consequent, alternate), p.spanFrom(start))
	return stmt, p.endOfStatement()
}

func (p *parser) parseFor() (ast.Statement, error) {
	start := p.next()
	variable, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText(tokenOperator, "<-"); err != nil {
		return nil, err
	}
	from, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("TO"); err != nil {
		return nil, err
	}
	to, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	var step ast.Expression
	if p.atKeyword("STEP") {
		p.next()
		if step, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	body, err := p.parseStatements([]string{"ENDFOR", "NEXT"})
	if err != nil {
		return nil, err
	}
	if p.atKeyword("NEXT") {
		p.next()
		if p.at(tokenIdentifier) {
			closing := p.peek()
			if closing.text != variable.Name {
				return nil, p.errorf(closing, "NEXT %s does not match FOR %s", closing.text, variable.Name)
			}
			p.next()
		}
	} else {
		p.next()
	}
	stmt := annotateStatement(ast.NewForLoop(variable, from, to, step, body), p.spanFrom(start))
	return stmt, p.endOfStatement()
}

func (p *parser) parseWhile() (ast.Statement, error) {
	start := p.next()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.atKeyword("DO") {
		p.next()
	}
	body, err := p.parseStatements([]string{"ENDWHILE"})
	if err != nil {
		return nil, err
	}
	p.next()
	stmt := annotateStatement(ast.NewWhileLoop(cond, body), p.spanFrom(start))
	return stmt, p.endOfStatement()
}

// parseDoWhile reads `DO ... WHILE cond`. Inside the body a WHILE line ending in DO opens a
// nested pre-condition loop; any other WHILE line closes the DO block.
func (p *parser) parseDoWhile() (ast.Statement, error) {
	start := p.next()
	body := make([]ast.Statement, 0)
	for {
		p.skipNewlines()
		if p.at(tokenEOF) {
			return nil, p.errorf(p.peek(), "expected WHILE before end of input")
		}
		if p.atKeyword("WHILE") && !p.whileLineEndsWithDo() {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	p.next()
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt := annotateStatement(ast.NewDoWhileLoop(body, cond), p.spanFrom(start))
	return stmt, p.endOfStatement()
}

func (p *parser) whileLineEndsWithDo() bool {
	last := p.peek()
	for offset := 1; ; offset++ {
		tok := p.peekAt(offset)
		if tok.kind == tokenNewline || tok.kind == tokenEOF {
			return last.kind == tokenKeyword && last.text == "DO"
		}
		last = tok
	}
}

func (p *parser) parseProcedureDefinition() (ast.Statement, error) {
	start := p.next()
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParameterList()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatements([]string{"ENDPROCEDURE"})
	if err != nil {
		return nil, err
	}
	p.next()
	stmt := annotateStatement(ast.NewProcedureDefinition(name, params, body), p.spanFrom(start))
	return stmt, p.endOfStatement()
}

func (p *parser) parseFunctionDefinition() (ast.Statement, error) {
	start := p.next()
	name, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	params, err := p.parseParameterList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("RETURNS"); err != nil {
		return nil, err
	}
	returnType, err := p.parseTypeReference()
	if err != nil {
		return nil, err
	}
	body, err := p.parseStatements([]string{"ENDFUNCTION"})
	if err != nil {
		return nil, err
	}
	p.next()
	stmt := annotateStatement(ast.NewFunctionDefinition(name, params, returnType, body), p.spanFrom(start))
	return stmt, p.endOfStatement()
}

// parseParameterList reads an optional parenthesised parameter list. A BYREF or BYVAL marker
// applies to every following parameter until the next marker.
func (p *parser) parseParameterList() ([]*ast.Parameter, error) {
	params := make([]*ast.Parameter, 0)
	if !p.atText(tokenPunct, "(") {
		return params, nil
	}
	p.next()
	if p.atText(tokenPunct, ")") {
		p.next()
		return params, nil
	}
	byRef := false
	for {
		start := p.peek()
		switch {
		case p.atKeyword("BYREF", "REF"):
			byRef = true
			p.next()
		case p.atKeyword("BYVAL"):
			byRef = false
			p.next()
		}
		name, err := p.expectIdentifier()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectText(tokenPunct, ":"); err != nil {
			return nil, err
		}
		typ, err := p.parseTypeReference()
		if err != nil {
			return nil, err
		}
		param := ast.NewParameter(name, typ, byRef)
		ast.SetSpan(param, p.spanFrom(start))
		params = append(params, param)
		if p.atText(tokenPunct, ",") {
			p.next()
			continue
		}
		if _, err := p.expectText(tokenPunct, ")"); err != nil {
			return nil, err
		}
		return params, nil
	}
}

// parseTypeReference reads a type name. Types are ordinary identifiers bound in the namespace.
func (p *parser) parseTypeReference() (ast.Expression, error) {
	id, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}
	return id, nil
}
