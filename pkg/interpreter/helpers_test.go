package interpreter

import (
	"bytes"
	"strings"
	"testing"

	"pseudocoder/interpreter-go/pkg/ast"
	"pseudocoder/interpreter-go/pkg/runtime"
)

func newTestInterpreter(t *testing.T) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	interp, err := NewWithOptions(Options{Output: &out})
	if err != nil {
		t.Fatalf("interpreter: %v", err)
	}
	return interp, &out
}

func runProgram(t *testing.T, stmts ...ast.Statement) (*Interpreter, string) {
	t.Helper()
	interp, out := newTestInterpreter(t)
	if err := interp.ExecuteProgram(ast.Prog(stmts...)); err != nil {
		t.Fatalf("program failed: %v", err)
	}
	return interp, out.String()
}

func runProgramErr(t *testing.T, kind runtime.ErrorKind, stmts ...ast.Statement) (*Interpreter, string) {
	t.Helper()
	interp, out := newTestInterpreter(t)
	err := interp.ExecuteProgram(ast.Prog(stmts...))
	if !runtime.IsKind(err, kind) {
		t.Fatalf("expected %s, got %v", kind, err)
	}
	return interp, out.String()
}

func outputLines(out string) []string {
	trimmed := strings.TrimRight(out, "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func mustLookup(t *testing.T, interp *Interpreter, name string) runtime.Value {
	t.Helper()
	v, err := interp.GlobalNamespace().Lookup(name)
	if err != nil {
		t.Fatalf("lookup %s: %v", name, err)
	}
	return v
}

func expectInteger(t *testing.T, v runtime.Value, want int64) {
	t.Helper()
	iv, ok := v.(runtime.IntegerValue)
	if !ok || iv.Val != want {
		t.Fatalf("expected INTEGER %d, got %#v", want, v)
	}
}

func expectReal(t *testing.T, v runtime.Value, want float64) {
	t.Helper()
	rv, ok := v.(runtime.RealValue)
	if !ok || rv.Val != want {
		t.Fatalf("expected REAL %v, got %#v", want, v)
	}
}
