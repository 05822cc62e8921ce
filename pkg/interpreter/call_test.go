package interpreter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"pseudocoder/interpreter-go/pkg/ast"
	"pseudocoder/interpreter-go/pkg/runtime"
)

func bumpProcedure(byRef bool) *ast.ProcedureDefinition {
	param := ast.Param("n", "INTEGER")
	if byRef {
		param = ast.RefParam("n", "INTEGER")
	}
	return ast.Proc("bump", []*ast.Parameter{param},
		ast.Assign("n", ast.Bin("+", ast.ID("n"), ast.Int(1))),
	)
}

func TestByReferenceParameterAliasesCallerSlot(t *testing.T) {
	interp, _ := runProgram(t,
		ast.Declare("a", "INTEGER"),
		ast.Assign("a", ast.Int(1)),
		bumpProcedure(true),
		ast.CallProc("bump", ast.ID("a")),
	)
	expectInteger(t, mustLookup(t, interp, "a"), 2)
}

func TestByValueParameterCopies(t *testing.T) {
	interp, _ := runProgram(t,
		ast.Declare("a", "INTEGER"),
		ast.Assign("a", ast.Int(1)),
		bumpProcedure(false),
		ast.CallProc("bump", ast.ID("a")),
	)
	expectInteger(t, mustLookup(t, interp, "a"), 1)
}

func TestByReferenceRequiresVariable(t *testing.T) {
	runProgramErr(t, runtime.ErrTypeMismatch,
		bumpProcedure(true),
		ast.CallProc("bump", ast.Int(1)),
	)
	runProgramErr(t, runtime.ErrTypeMismatch,
		ast.Declare("r", "REAL"),
		bumpProcedure(true),
		ast.CallProc("bump", ast.ID("r")),
	)
}

func TestByValueArgumentTypeChecked(t *testing.T) {
	runProgramErr(t, runtime.ErrTypeMismatch,
		bumpProcedure(false),
		ast.CallProc("bump", ast.Real(1.5)),
	)
}

func TestArityMismatch(t *testing.T) {
	runProgramErr(t, runtime.ErrArityMismatch,
		bumpProcedure(false),
		ast.CallProc("bump"),
	)
	runProgramErr(t, runtime.ErrArityMismatch,
		ast.Fn("one", nil, "INTEGER", ast.Ret(ast.Int(1))),
		ast.Output(ast.Call("one", ast.Int(1))),
	)
}

func TestFunctionReturnsValue(t *testing.T) {
	_, out := runProgram(t,
		ast.Fn("square", []*ast.Parameter{ast.Param("x", "INTEGER")}, "INTEGER",
			ast.Ret(ast.Bin("*", ast.ID("x"), ast.ID("x"))),
		),
		ast.Output(ast.Call("square", ast.Int(7))),
	)
	if out != "49\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestFunctionReturnInsideLoopStopsBody(t *testing.T) {
	_, out := runProgram(t,
		ast.Fn("firstOver", []*ast.Parameter{ast.Param("limit", "INTEGER")}, "INTEGER",
			ast.Declare("i", "INTEGER"),
			ast.For("i", ast.Int(1), ast.Int(100), nil,
				ast.If(ast.Bin(">", ast.Bin("*", ast.ID("i"), ast.ID("i")), ast.ID("limit")),
					ast.Block(ast.Ret(ast.ID("i"))),
					nil,
				),
				ast.Output(ast.ID("i")),
			),
			ast.Ret(ast.Int(-1)),
		),
		ast.Output(ast.Call("firstOver", ast.Int(5))),
	)
	if out != "1\n2\n3\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestMissingReturnOnlyOnTakenPath(t *testing.T) {
	sign := ast.Fn("positive", []*ast.Parameter{ast.Param("x", "INTEGER")}, "BOOLEAN",
		ast.If(ast.Bin(">", ast.ID("x"), ast.Int(0)),
			ast.Block(ast.Ret(ast.Bool(true))),
			nil,
		),
	)
	_, out := runProgram(t, sign, ast.Output(ast.Call("positive", ast.Int(3))))
	if out != "TRUE\n" {
		t.Fatalf("unexpected output %q", out)
	}
	runProgramErr(t, runtime.ErrMissingReturn, sign, ast.Output(ast.Call("positive", ast.Int(-3))))
}

func TestReturnValueTypeChecked(t *testing.T) {
	runProgramErr(t, runtime.ErrTypeMismatch,
		ast.Fn("half", nil, "INTEGER", ast.Ret(ast.Bin("/", ast.Int(4), ast.Int(2)))),
		ast.Output(ast.Call("half")),
	)
	runProgramErr(t, runtime.ErrMissingReturn,
		ast.Fn("nothing", nil, "INTEGER", ast.Ret(nil)),
		ast.Output(ast.Call("nothing")),
	)
}

func TestProcedureReturnEndsEarly(t *testing.T) {
	_, out := runProgram(t,
		ast.Proc("p", nil,
			ast.Output(ast.Str("a")),
			ast.Ret(nil),
			ast.Output(ast.Str("b")),
		),
		ast.CallProc("p"),
		ast.Output(ast.Str("c")),
	)
	if out != "a\nc\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestCallingNonCallable(t *testing.T) {
	runProgramErr(t, runtime.ErrTypeMismatch,
		ast.Const("k", "INTEGER", ast.Int(1)),
		ast.CallProc("k"),
	)
	runProgramErr(t, runtime.ErrTypeMismatch,
		ast.Proc("p", nil),
		ast.Output(ast.Call("p")),
	)
}

func TestLexicalScoping(t *testing.T) {
	// inner sees the global x, not the caller's local x.
	_, out := runProgram(t,
		ast.Declare("x", "INTEGER"),
		ast.Assign("x", ast.Int(1)),
		ast.Proc("inner", nil, ast.Output(ast.ID("x"))),
		ast.Proc("outer", nil,
			ast.Declare("x", "INTEGER"),
			ast.Assign("x", ast.Int(2)),
			ast.CallProc("inner"),
		),
		ast.CallProc("outer"),
	)
	if out != "1\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRecursion(t *testing.T) {
	fact := ast.Fn("fact", []*ast.Parameter{ast.Param("n", "INTEGER")}, "INTEGER",
		ast.If(ast.Bin("<=", ast.ID("n"), ast.Int(1)),
			ast.Block(ast.Ret(ast.Int(1))),
			ast.Block(ast.Ret(ast.Bin("*", ast.ID("n"), ast.Call("fact", ast.Bin("-", ast.ID("n"), ast.Int(1)))))),
		),
	)
	_, out := runProgram(t, fact, ast.Output(ast.Call("fact", ast.Int(10))))
	if out != "3628800\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestUnboundedRecursionExhaustsStack(t *testing.T) {
	var out bytes.Buffer
	interp, err := NewWithOptions(Options{Output: &out, MaxCallDepth: 50})
	if err != nil {
		t.Fatalf("interpreter: %v", err)
	}
	forever := ast.Proc("forever", nil, ast.CallProc("forever"))
	err = interp.ExecuteProgram(ast.Prog(forever, ast.CallProc("forever")))
	if !runtime.IsKind(err, runtime.ErrStackExhausted) {
		t.Fatalf("expected StackExhausted, got %v", err)
	}
	if interp.depth != 0 {
		t.Fatalf("depth should unwind to 0, got %d", interp.depth)
	}
}

func TestMaxCallDepthCeiling(t *testing.T) {
	if _, err := NewWithOptions(Options{MaxCallDepth: MaxAllowedCallDepth + 1}); err == nil {
		t.Fatalf("expected a call depth above %d to be rejected", MaxAllowedCallDepth)
	}
	if _, err := NewWithOptions(Options{MaxCallDepth: 100000000}); err == nil {
		t.Fatalf("expected an enormous call depth to be rejected")
	}

	var out bytes.Buffer
	interp, err := NewWithOptions(Options{Output: &out, MaxCallDepth: MaxAllowedCallDepth})
	if err != nil {
		t.Fatalf("interpreter: %v", err)
	}
	deeper := ast.Fn("d", []*ast.Parameter{ast.Param("n", "INTEGER")}, "INTEGER",
		ast.Ret(ast.Bin("+", ast.Int(1), ast.Call("d", ast.Bin("+", ast.ID("n"), ast.Int(1))))),
	)
	err = interp.ExecuteProgram(ast.Prog(deeper, ast.Output(ast.Call("d", ast.Int(0)))))
	if !runtime.IsKind(err, runtime.ErrStackExhausted) {
		t.Fatalf("expected StackExhausted at the ceiling, got %v", err)
	}
	if interp.depth != 0 {
		t.Fatalf("depth should unwind to 0, got %d", interp.depth)
	}
}

func TestInvocationReleasesSlots(t *testing.T) {
	interp, _ := runProgram(t,
		ast.Declare("a", "INTEGER"),
		ast.Assign("a", ast.Int(1)),
		ast.Proc("p", []*ast.Parameter{ast.Param("x", "INTEGER"), ast.RefParam("y", "INTEGER")},
			ast.Declare("tmp", "INTEGER"),
			ast.Assign("tmp", ast.ID("x")),
		),
		ast.CallProc("p", ast.Int(5), ast.ID("a")),
		ast.CallProc("p", ast.Int(6), ast.ID("a")),
	)
	if live := interp.arena.Live(); live != 1 {
		t.Fatalf("expected only the global slot to stay live, got %d", live)
	}
}

func TestCallTracingLogs(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer zerolog.SetGlobalLevel(prev)

	var logs bytes.Buffer
	logger := zerolog.New(&logs).Level(zerolog.TraceLevel)
	var out bytes.Buffer
	interp, err := NewWithOptions(Options{Output: &out, Logger: &logger})
	if err != nil {
		t.Fatalf("interpreter: %v", err)
	}
	prog := ast.Prog(ast.Proc("p", nil), ast.CallProc("p"))
	if err := interp.ExecuteProgram(prog); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(logs.String(), `"callee":"p"`) {
		t.Fatalf("expected trace entry for p, got %s", logs.String())
	}
	if strings.Count(logs.String(), `"callee":"p"`) != 2 || !strings.Contains(logs.String(), `"message":"leave"`) {
		t.Fatalf("expected enter and leave entries for p, got %s", logs.String())
	}
}
