package ast

// Definitions

type Parameter struct {
	nodeImpl

	Name  *Identifier `json:"name"`
	Type  Expression  `json:"type"`
	ByRef bool        `json:"byRef,omitempty"`
}

func NewParameter(name *Identifier, typ Expression, byRef bool) *Parameter {
	return &Parameter{nodeImpl: newNodeImpl(NodeParameter), Name: name, Type: typ, ByRef: byRef}
}

type ProcedureDefinition struct {
	nodeImpl
	statementMarker

	ID     *Identifier  `json:"id"`
	Params []*Parameter `json:"params"`
	Body   []Statement  `json:"body"`
}

func NewProcedureDefinition(id *Identifier, params []*Parameter, body []Statement) *ProcedureDefinition {
	return &ProcedureDefinition{nodeImpl: newNodeImpl(NodeProcedureDefinition), ID: id, Params: params, Body: body}
}

type FunctionDefinition struct {
	nodeImpl
	statementMarker

	ID         *Identifier  `json:"id"`
	Params     []*Parameter `json:"params"`
	ReturnType Expression   `json:"returnType"`
	Body       []Statement  `json:"body"`
}

func NewFunctionDefinition(id *Identifier, params []*Parameter, returnType Expression, body []Statement) *FunctionDefinition {
	return &FunctionDefinition{nodeImpl: newNodeImpl(NodeFunctionDefinition), ID: id, Params: params, ReturnType: returnType, Body: body}
}
