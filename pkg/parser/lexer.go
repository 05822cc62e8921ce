package parser

import (
	"fmt"
	"unicode"

	"pseudocoder/interpreter-go/pkg/ast"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNewline
	tokenIdentifier
	tokenKeyword
	tokenInteger
	tokenReal
	tokenString
	tokenChar
	tokenDate
	tokenOperator
	tokenPunct
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of input"
	case tokenNewline:
		return "end of line"
	case tokenIdentifier:
		return "identifier"
	case tokenKeyword:
		return "keyword"
	case tokenInteger:
		return "integer"
	case tokenReal:
		return "real"
	case tokenString:
		return "string"
	case tokenChar:
		return "char"
	case tokenDate:
		return "date"
	case tokenOperator:
		return "operator"
	case tokenPunct:
		return "punctuation"
	default:
		return fmt.Sprintf("token(%d)", int(k))
	}
}

type token struct {
	kind  tokenKind
	text  string
	start ast.Position
	end   ast.Position
}

func (t token) String() string {
	switch t.kind {
	case tokenEOF, tokenNewline:
		return t.kind.String()
	case tokenString:
		return fmt.Sprintf("%q", t.text)
	default:
		return fmt.Sprintf("'%s'", t.text)
	}
}

var keywords = map[string]struct{}{
	"DECLARE": {}, "CONSTANT": {}, "OUTPUT": {}, "CALL": {}, "RETURN": {}, "RETURNS": {},
	"IF": {}, "THEN": {}, "ELSE": {}, "ENDIF": {},
	"FOR": {}, "TO": {}, "STEP": {}, "NEXT": {}, "ENDFOR": {},
	"WHILE": {}, "DO": {}, "ENDWHILE": {},
	"PROCEDURE": {}, "ENDPROCEDURE": {}, "FUNCTION": {}, "ENDFUNCTION": {},
	"BYREF": {}, "REF": {}, "BYVAL": {},
	"AND": {}, "OR": {}, "NOT": {}, "MOD": {}, "DIV": {},
	"TRUE": {}, "FALSE": {},
}

type lexer struct {
	src  []rune
	pos  int
	line int
	col  int
	out  []token
}

func tokenize(source []byte) ([]token, error) {
	lx := &lexer{src: []rune(string(source)), line: 1, col: 1}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return lx.out, nil
}

func (lx *lexer) run() error {
	for {
		lx.skipSpaceAndComments()
		if lx.pos >= len(lx.src) {
			lx.emit(tokenEOF, "", lx.position())
			return nil
		}
		start := lx.position()
		ch := lx.src[lx.pos]
		switch {
		case ch == '\n':
			lx.advance()
			lx.emit(tokenNewline, "\n", start)
		case ch == '\r':
			lx.advance()
		case unicode.IsLetter(ch) || ch == '_':
			word := lx.takeWhile(func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' })
			if _, ok := keywords[word]; ok {
				lx.emit(tokenKeyword, word, start)
			} else {
				lx.emit(tokenIdentifier, word, start)
			}
		case unicode.IsDigit(ch):
			lx.lexNumber(start)
		case ch == '"':
			if err := lx.lexQuoted('"', tokenString, start); err != nil {
				return err
			}
		case ch == '\'':
			if err := lx.lexQuoted('\'', tokenChar, start); err != nil {
				return err
			}
		case ch == '←':
			lx.advance()
			lx.emit(tokenOperator, "<-", start)
		case ch == '<':
			lx.advance()
			switch lx.peekRune() {
			case '-':
				lx.advance()
				lx.emit(tokenOperator, "<-", start)
			case '=':
				lx.advance()
				lx.emit(tokenOperator, "<=", start)
			case '>':
				lx.advance()
				lx.emit(tokenOperator, "<>", start)
			default:
				lx.emit(tokenOperator, "<", start)
			}
		case ch == '>':
			lx.advance()
			if lx.peekRune() == '=' {
				lx.advance()
				lx.emit(tokenOperator, ">=", start)
			} else {
				lx.emit(tokenOperator, ">", start)
			}
		case ch == '=' || ch == '+' || ch == '-' || ch == '*' || ch == '/' || ch == '&':
			lx.advance()
			lx.emit(tokenOperator, string(ch), start)
		case ch == '(' || ch == ')' || ch == ',' || ch == ':':
			lx.advance()
			lx.emit(tokenPunct, string(ch), start)
		default:
			return &SyntaxError{Line: start.Line, Column: start.Column, Message: fmt.Sprintf("unexpected character %q", ch)}
		}
	}
}

func (lx *lexer) lexNumber(start ast.Position) {
	if lx.matchesDate() {
		text := string(lx.src[lx.pos : lx.pos+10])
		for i := 0; i < 10; i++ {
			lx.advance()
		}
		lx.emit(tokenDate, text, start)
		return
	}
	digits := lx.takeWhile(unicode.IsDigit)
	if lx.peekRune() == '.' && lx.pos+1 < len(lx.src) && unicode.IsDigit(lx.src[lx.pos+1]) {
		lx.advance()
		frac := lx.takeWhile(unicode.IsDigit)
		lx.emit(tokenReal, digits+"."+frac, start)
		return
	}
	lx.emit(tokenInteger, digits, start)
}

// matchesDate reports whether the input at pos reads dd/mm/yyyy with no trailing digit.
func (lx *lexer) matchesDate() bool {
	const layout = "00/00/0000"
	if lx.pos+len(layout) > len(lx.src) {
		return false
	}
	for idx, want := range layout {
		got := lx.src[lx.pos+idx]
		if want == '/' && got != '/' {
			return false
		}
		if want == '0' && !unicode.IsDigit(got) {
			return false
		}
	}
	end := lx.pos + len(layout)
	return end >= len(lx.src) || !unicode.IsDigit(lx.src[end])
}

func (lx *lexer) lexQuoted(quote rune, kind tokenKind, start ast.Position) error {
	lx.advance()
	begin := lx.pos
	for lx.pos < len(lx.src) && lx.src[lx.pos] != quote {
		if lx.src[lx.pos] == '\n' {
			break
		}
		lx.advance()
	}
	if lx.pos >= len(lx.src) || lx.src[lx.pos] != quote {
		return &SyntaxError{Line: start.Line, Column: start.Column, Message: fmt.Sprintf("unterminated %s literal", kind)}
	}
	text := string(lx.src[begin:lx.pos])
	lx.advance()
	lx.emit(kind, text, start)
	return nil
}

func (lx *lexer) skipSpaceAndComments() {
	for lx.pos < len(lx.src) {
		ch := lx.src[lx.pos]
		switch {
		case ch == ' ' || ch == '\t':
			lx.advance()
		case ch == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '/':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.advance()
			}
		default:
			return
		}
	}
}

func (lx *lexer) takeWhile(pred func(rune) bool) string {
	begin := lx.pos
	for lx.pos < len(lx.src) && pred(lx.src[lx.pos]) {
		lx.advance()
	}
	return string(lx.src[begin:lx.pos])
}

func (lx *lexer) peekRune() rune {
	if lx.pos >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos]
}

func (lx *lexer) advance() {
	if lx.src[lx.pos] == '\n' {
		lx.line++
		lx.col = 1
	} else {
		lx.col++
	}
	lx.pos++
}

func (lx *lexer) position() ast.Position {
	return ast.Position{Line: lx.line, Column: lx.col}
}

func (lx *lexer) emit(kind tokenKind, text string, start ast.Position) {
	end := lx.position()
	if kind == tokenNewline {
		end = ast.Position{Line: start.Line, Column: start.Column + 1}
	}
	lx.out = append(lx.out, token{kind: kind, text: text, start: start, end: end})
}
