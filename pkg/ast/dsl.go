package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(value)
}

func Real(value float64) *RealLiteral {
	return NewRealLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Chr(value string) *CharLiteral {
	return NewCharLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Date(day, month, year int) *DateLiteral {
	return NewDateLiteral(year, month, day)
}

// Type helpers. Types are plain identifiers resolved in the namespace.

func Ty(name string) *Identifier {
	return NewIdentifier(name)
}

// Expression helpers.

func Bin(op string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Un(op string, operand Expression) *UnaryExpression {
	return NewUnaryExpression(op, operand)
}

func Call(name string, args ...Expression) *FunctionCall {
	return NewFunctionCall(ID(name), args)
}

// Statement helpers.

func Declare(name, typ string) *VariableDeclaration {
	return NewVariableDeclaration(ID(name), Ty(typ))
}

func Const(name, typ string, value Expression) *ConstantDeclaration {
	return NewConstantDeclaration(ID(name), Ty(typ), value)
}

func Assign(name string, value Expression) *Assignment {
	return NewAssignment(ID(name), value)
}

func Output(value Expression) *OutputStatement {
	return NewOutputStatement(value)
}

func CallProc(name string, args ...Expression) *ProcedureCall {
	return NewProcedureCall(ID(name), args)
}

func Ret(argument Expression) *ReturnStatement {
	return NewReturnStatement(argument)
}

func If(cond Expression, consequent []Statement, alternate []Statement) *IfStatement {
	return NewIfStatement(cond, consequent, alternate)
}

func For(variable string, from, to, step Expression, body ...Statement) *ForLoop {
	return NewForLoop(ID(variable), from, to, step, body)
}

func While(cond Expression, body ...Statement) *WhileLoop {
	return NewWhileLoop(cond, body)
}

func DoWhile(cond Expression, body ...Statement) *DoWhileLoop {
	return NewDoWhileLoop(body, cond)
}

func Block(stmts ...Statement) []Statement {
	return stmts
}

// Definition helpers.

func Param(name, typ string) *Parameter {
	return NewParameter(ID(name), Ty(typ), false)
}

func RefParam(name, typ string) *Parameter {
	return NewParameter(ID(name), Ty(typ), true)
}

func Proc(name string, params []*Parameter, body ...Statement) *ProcedureDefinition {
	return NewProcedureDefinition(ID(name), params, body)
}

func Fn(name string, params []*Parameter, returnType string, body ...Statement) *FunctionDefinition {
	return NewFunctionDefinition(ID(name), params, Ty(returnType), body)
}

func Prog(stmts ...Statement) *Program {
	return NewProgram(stmts)
}
