package ast

// Declarations

type VariableDeclaration struct {
	nodeImpl
	statementMarker

	Name *Identifier `json:"name"`
	Type Expression  `json:"type"`
}

func NewVariableDeclaration(name *Identifier, typ Expression) *VariableDeclaration {
	return &VariableDeclaration{nodeImpl: newNodeImpl(NodeVariableDeclaration), Name: name, Type: typ}
}

type ConstantDeclaration struct {
	nodeImpl
	statementMarker

	Name  *Identifier `json:"name"`
	Type  Expression  `json:"type"`
	Value Expression  `json:"value"`
}

func NewConstantDeclaration(name *Identifier, typ Expression, value Expression) *ConstantDeclaration {
	return &ConstantDeclaration{nodeImpl: newNodeImpl(NodeConstantDeclaration), Name: name, Type: typ, Value: value}
}

// Simple statements

type Assignment struct {
	nodeImpl
	statementMarker

	Target *Identifier `json:"target"`
	Value  Expression  `json:"value"`
}

func NewAssignment(target *Identifier, value Expression) *Assignment {
	return &Assignment{nodeImpl: newNodeImpl(NodeAssignment), Target: target, Value: value}
}

type OutputStatement struct {
	nodeImpl
	statementMarker

	Value Expression `json:"value"`
}

func NewOutputStatement(value Expression) *OutputStatement {
	return &OutputStatement{nodeImpl: newNodeImpl(NodeOutputStatement), Value: value}
}

type ProcedureCall struct {
	nodeImpl
	statementMarker

	Callee    *Identifier  `json:"callee"`
	Arguments []Expression `json:"arguments"`
}

func NewProcedureCall(callee *Identifier, args []Expression) *ProcedureCall {
	return &ProcedureCall{nodeImpl: newNodeImpl(NodeProcedureCall), Callee: callee, Arguments: args}
}

// ReturnStatement carries an optional argument; a bare RETURN is only useful inside procedures.
type ReturnStatement struct {
	nodeImpl
	statementMarker

	Argument Expression `json:"argument,omitempty"`
}

func NewReturnStatement(argument Expression) *ReturnStatement {
	return &ReturnStatement{nodeImpl: newNodeImpl(NodeReturnStatement), Argument: argument}
}

// Control flow

type IfStatement struct {
	nodeImpl
	statementMarker

	Condition  Expression  `json:"condition"`
	Consequent []Statement `json:"consequent"`
	Alternate  []Statement `json:"alternate,omitempty"`
}

func NewIfStatement(condition Expression, consequent []Statement, alternate []Statement) *IfStatement {
	return &IfStatement{nodeImpl: newNodeImpl(NodeIfStatement), Condition: condition, Consequent: consequent, Alternate: alternate}
}

// ForLoop iterates an already-declared variable. Step is nil when the source omits STEP.
type ForLoop struct {
	nodeImpl
	statementMarker

	Variable *Identifier `json:"variable"`
	From     Expression  `json:"from"`
	To       Expression  `json:"to"`
	Step     Expression  `json:"step,omitempty"`
	Body     []Statement `json:"body"`
}

func NewForLoop(variable *Identifier, from, to, step Expression, body []Statement) *ForLoop {
	return &ForLoop{nodeImpl: newNodeImpl(NodeForLoop), Variable: variable, From: from, To: to, Step: step, Body: body}
}

type WhileLoop struct {
	nodeImpl
	statementMarker

	Condition Expression  `json:"condition"`
	Body      []Statement `json:"body"`
}

func NewWhileLoop(condition Expression, body []Statement) *WhileLoop {
	return &WhileLoop{nodeImpl: newNodeImpl(NodeWhileLoop), Condition: condition, Body: body}
}

type DoWhileLoop struct {
	nodeImpl
	statementMarker

	Body      []Statement `json:"body"`
	Condition Expression  `json:"condition"`
}

func NewDoWhileLoop(body []Statement, condition Expression) *DoWhileLoop {
	return &DoWhileLoop{nodeImpl: newNodeImpl(NodeDoWhileLoop), Body: body, Condition: condition}
}
