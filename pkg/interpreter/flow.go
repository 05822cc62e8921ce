package interpreter

import (
	"pseudocoder/interpreter-go/pkg/ast"
	"pseudocoder/interpreter-go/pkg/runtime"
)

type flowKind int

const (
	flowContinue flowKind = iota
	flowReturn
)

// flow is the outcome of executing a statement. A return carries its value (nil for a bare
// RETURN) up to the invocation that owns it.
type flow struct {
	kind  flowKind
	value runtime.Value
	span  ast.Span
}

var continueFlow = flow{kind: flowContinue}

func returnFlow(value runtime.Value, span ast.Span) flow {
	return flow{kind: flowReturn, value: value, span: span}
}
