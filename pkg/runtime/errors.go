package runtime

import (
	"errors"
	"fmt"
	"strings"

	"pseudocoder/interpreter-go/pkg/ast"
)

// ErrorKind classifies runtime failures.
type ErrorKind string

const (
	ErrUndefinedIdentifier   ErrorKind = "UndefinedIdentifier"
	ErrDuplicateDeclaration  ErrorKind = "DuplicateDeclaration"
	ErrUninitializedSlotRead ErrorKind = "UninitializedSlotRead"
	ErrTypeMismatch          ErrorKind = "TypeMismatch"
	ErrArityMismatch         ErrorKind = "ArityMismatch"
	ErrMissingReturn         ErrorKind = "MissingReturn"
	ErrInvalidLiteral        ErrorKind = "InvalidLiteral"
	ErrStackExhausted        ErrorKind = "StackExhausted"
	ErrNotAVariable          ErrorKind = "NotAVariable"
	ErrDivisionByZero        ErrorKind = "DivisionByZero"
	ErrIntegerOverflow       ErrorKind = "IntegerOverflow"
	ErrInvalidStep           ErrorKind = "InvalidStep"
	ErrReturnOutsideFunction ErrorKind = "ReturnOutsideFunction"
)

// Error is the single error type raised while evaluating a program.
type Error struct {
	Kind       ErrorKind
	Identifier string
	Message    string
	Span       ast.Span
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if !e.Span.IsZero() {
		b.WriteString(" at ")
		b.WriteString(e.Span.String())
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// Errorf builds a runtime error of the given kind.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IdentifierError builds a runtime error tied to a named binding.
func IdentifierError(kind ErrorKind, name string, format string, args ...any) *Error {
	return &Error{Kind: kind, Identifier: name, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the runtime error kind from err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind, true
	}
	return "", false
}

// IsKind reports whether err is a runtime error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	got, ok := KindOf(err)
	return ok && got == kind
}

// WithSpan attaches span to err when it is a runtime error that has no location yet.
func WithSpan(err error, span ast.Span) error {
	if err == nil || span.IsZero() {
		return err
	}
	var rerr *Error
	if errors.As(err, &rerr) && rerr.Span.IsZero() {
		rerr.Span = span
	}
	return err
}

// AnnotateIdentifier attributes an anonymous runtime error to name. Errors that already carry
// an identifier, and errors that are not *Error, are returned unchanged.
func AnnotateIdentifier(err error, name string) error {
	var rerr *Error
	if errors.As(err, &rerr) && rerr.Identifier == "" {
		rerr.Identifier = name
		rerr.Message = "'" + name + "': " + rerr.Message
	}
	return err
}
