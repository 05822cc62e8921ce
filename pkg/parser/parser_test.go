package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pseudocoder/interpreter-go/pkg/ast"
	"pseudocoder/interpreter-go/pkg/parser"
)

func parse(t *testing.T, source string) *ast.Program {
	t.Helper()
	prog, err := parser.ParseProgram([]byte(source))
	require.NoError(t, err)
	require.NotNil(t, prog)
	return prog
}

func TestParseDeclarationsAndAssignment(t *testing.T) {
	prog := parse(t, `
// running total
DECLARE total : INTEGER
CONSTANT Rate : REAL = 1.5
CONSTANT Greeting = "hi"
total <- 3 + 4 * 2
`)
	require.Len(t, prog.Body, 4)

	decl, ok := prog.Body[0].(*ast.VariableDeclaration)
	require.True(t, ok)
	assert.Equal(t, "total", decl.Name.Name)
	assert.Equal(t, "INTEGER", decl.Type.(*ast.Identifier).Name)
	assert.Equal(t, 3, decl.Span().Start.Line)

	rate := prog.Body[1].(*ast.ConstantDeclaration)
	assert.Equal(t, "REAL", rate.Type.(*ast.Identifier).Name)
	assert.Equal(t, 1.5, rate.Value.(*ast.RealLiteral).Value)

	greeting := prog.Body[2].(*ast.ConstantDeclaration)
	assert.Equal(t, "STRING", greeting.Type.(*ast.Identifier).Name)

	assign := prog.Body[3].(*ast.Assignment)
	assert.Equal(t, "total", assign.Target.Name)
	sum := assign.Value.(*ast.BinaryExpression)
	assert.Equal(t, "+", sum.Operator)
	product := sum.Right.(*ast.BinaryExpression)
	assert.Equal(t, "*", product.Operator)
}

func TestParseOperatorPrecedence(t *testing.T) {
	prog := parse(t, `OUTPUT NOT a < b AND c = d OR e`)
	out := prog.Body[0].(*ast.OutputStatement)
	or := out.Value.(*ast.BinaryExpression)
	require.Equal(t, "OR", or.Operator)
	and := or.Left.(*ast.BinaryExpression)
	require.Equal(t, "AND", and.Operator)
	not := and.Left.(*ast.UnaryExpression)
	require.Equal(t, "NOT", not.Operator)
	assert.Equal(t, "<", not.Operand.(*ast.BinaryExpression).Operator)
	assert.Equal(t, "=", and.Right.(*ast.BinaryExpression).Operator)
}

func TestParseConcatenationBindsLooserThanArithmetic(t *testing.T) {
	prog := parse(t, `OUTPUT "n=" & -x MOD 3`)
	concat := prog.Body[0].(*ast.OutputStatement).Value.(*ast.BinaryExpression)
	require.Equal(t, "&", concat.Operator)
	mod := concat.Right.(*ast.BinaryExpression)
	require.Equal(t, "MOD", mod.Operator)
	assert.Equal(t, "-", mod.Left.(*ast.UnaryExpression).Operator)
}

func TestParseLiterals(t *testing.T) {
	prog := parse(t, `OUTPUT 'c'
OUTPUT TRUE
OUTPUT 25/12/2024
OUTPUT -9223372036854775808
OUTPUT (1 + 2) * 3`)
	require.Len(t, prog.Body, 5)
	assert.Equal(t, "c", prog.Body[0].(*ast.OutputStatement).Value.(*ast.CharLiteral).Value)
	assert.True(t, prog.Body[1].(*ast.OutputStatement).Value.(*ast.BooleanLiteral).Value)
	date := prog.Body[2].(*ast.OutputStatement).Value.(*ast.DateLiteral)
	assert.Equal(t, [3]int{25, 12, 2024}, [3]int{date.Day, date.Month, date.Year})
	assert.Equal(t, int64(-9223372036854775808), prog.Body[3].(*ast.OutputStatement).Value.(*ast.IntegerLiteral).Value)
	product := prog.Body[4].(*ast.OutputStatement).Value.(*ast.BinaryExpression)
	assert.Equal(t, "*", product.Operator)
	assert.Equal(t, "+", product.Left.(*ast.BinaryExpression).Operator)
}

func TestParseDivisionIsNotADate(t *testing.T) {
	prog := parse(t, `OUTPUT 6 / 3 / 2`)
	div := prog.Body[0].(*ast.OutputStatement).Value.(*ast.BinaryExpression)
	assert.Equal(t, "/", div.Operator)
}

func TestParseIfElse(t *testing.T) {
	prog := parse(t, `IF x > 1
  THEN
    OUTPUT "big"
  ELSE
    OUTPUT "small"
ENDIF`)
	stmt := prog.Body[0].(*ast.IfStatement)
	require.Len(t, stmt.Consequent, 1)
	require.Len(t, stmt.Alternate, 1)
}

func TestParseForLoops(t *testing.T) {
	prog := parse(t, `FOR i <- 1 TO 10 STEP 2
  OUTPUT i
ENDFOR
FOR j <- 3 TO 1 STEP -1
  OUTPUT j
NEXT j`)
	require.Len(t, prog.Body, 2)
	first := prog.Body[0].(*ast.ForLoop)
	assert.Equal(t, "i", first.Variable.Name)
	assert.Equal(t, int64(2), first.Step.(*ast.IntegerLiteral).Value)
	second := prog.Body[1].(*ast.ForLoop)
	assert.Equal(t, "-", second.Step.(*ast.UnaryExpression).Operator)

	_, err := parser.ParseProgram([]byte("FOR i <- 1 TO 2\nNEXT k"))
	require.Error(t, err)
}

func TestParseLoops(t *testing.T) {
	prog := parse(t, `WHILE n > 0 DO
  n <- n - 1
ENDWHILE
DO
  WHILE m > 0 DO
    m <- m - 1
  ENDWHILE
  n <- n + 1
WHILE n < 3`)
	require.Len(t, prog.Body, 2)
	assert.Len(t, prog.Body[0].(*ast.WhileLoop).Body, 1)
	doWhile := prog.Body[1].(*ast.DoWhileLoop)
	require.Len(t, doWhile.Body, 2)
	_, nested := doWhile.Body[0].(*ast.WhileLoop)
	assert.True(t, nested)
	assert.Equal(t, "<", doWhile.Condition.(*ast.BinaryExpression).Operator)
}

func TestParseProceduresAndFunctions(t *testing.T) {
	prog := parse(t, `PROCEDURE Swap(BYREF a : INTEGER, b : INTEGER)
  DECLARE t : INTEGER
  t <- a
  a <- b
  b <- t
ENDPROCEDURE

FUNCTION Max(BYVAL x : INTEGER, y : INTEGER) RETURNS INTEGER
  IF x > y THEN
    RETURN x
  ENDIF
  RETURN y
ENDFUNCTION

PROCEDURE Hello
  OUTPUT "hello"
  RETURN
ENDPROCEDURE

CALL Swap(p, q)
CALL Hello
OUTPUT Max(1, 2)`)
	require.Len(t, prog.Body, 6)

	swap := prog.Body[0].(*ast.ProcedureDefinition)
	require.Len(t, swap.Params, 2)
	assert.True(t, swap.Params[0].ByRef)
	assert.True(t, swap.Params[1].ByRef, "BYREF carries over to following parameters")

	maxFn := prog.Body[1].(*ast.FunctionDefinition)
	assert.False(t, maxFn.Params[0].ByRef)
	assert.False(t, maxFn.Params[1].ByRef)
	assert.Equal(t, "INTEGER", maxFn.ReturnType.(*ast.Identifier).Name)

	hello := prog.Body[2].(*ast.ProcedureDefinition)
	assert.Empty(t, hello.Params)
	assert.Nil(t, hello.Body[1].(*ast.ReturnStatement).Argument)

	call := prog.Body[3].(*ast.ProcedureCall)
	assert.Len(t, call.Arguments, 2)
	assert.Empty(t, prog.Body[4].(*ast.ProcedureCall).Arguments)

	fnCall := prog.Body[5].(*ast.OutputStatement).Value.(*ast.FunctionCall)
	assert.Equal(t, "Max", fnCall.Callee.Name)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"missing arrow":       "x 3",
		"bad character":       "OUTPUT 1 ? 2",
		"unterminated string": "OUTPUT \"abc",
		"trailing tokens":     "OUTPUT 1 2",
		"untyped constant":    "CONSTANT k = a",
		"stray terminator":    "ENDIF",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parser.ParseProgram([]byte(src))
			require.Error(t, err)
			var serr *parser.SyntaxError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, 1, serr.Line)
			assert.False(t, parser.IsIncomplete(err))
		})
	}
}

func TestParseIncompleteInput(t *testing.T) {
	for _, src := range []string{
		"IF x THEN\n  OUTPUT 1",
		"WHILE TRUE",
		"PROCEDURE P(a : INTEGER",
		"DO\n  OUTPUT 1",
		"OUTPUT 1 +",
	} {
		_, err := parser.ParseProgram([]byte(src))
		require.Error(t, err, src)
		assert.True(t, parser.IsIncomplete(err), "expected incomplete for %q, got %v", src, err)
	}
}
