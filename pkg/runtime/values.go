package runtime

import (
	"fmt"

	"pseudocoder/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindInteger Kind = iota
	KindReal
	KindString
	KindChar
	KindBoolean
	KindDate
	KindProcedure
	KindFunction
	KindType
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "INTEGER"
	case KindReal:
		return "REAL"
	case KindString:
		return "STRING"
	case KindChar:
		return "CHAR"
	case KindBoolean:
		return "BOOLEAN"
	case KindDate:
		return "DATE"
	case KindProcedure:
		return "PROCEDURE"
	case KindFunction:
		return "FUNCTION"
	case KindType:
		return "TYPE"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is implemented by every runtime value.
type Value interface {
	Kind() Kind
}

//----- Scalars -----

type IntegerValue struct{ Val int64 }

func (IntegerValue) Kind() Kind { return KindInteger }

type RealValue struct{ Val float64 }

func (RealValue) Kind() Kind { return KindReal }

type StringValue struct{ Val string }

func (StringValue) Kind() Kind { return KindString }

type CharValue struct{ Val rune }

func (CharValue) Kind() Kind { return KindChar }

type BooleanValue struct{ Val bool }

func (BooleanValue) Kind() Kind { return KindBoolean }

// DateValue is only produced by the DATE descriptor, which validates its fields.
type DateValue struct {
	Year  int
	Month int
	Day   int
}

func (DateValue) Kind() Kind { return KindDate }

//----- Callables -----

// Parameter is a resolved formal parameter.
type Parameter struct {
	Name  string
	Type  *TypeDescriptor
	ByRef bool
}

// ProcedureValue captures a procedure together with the namespace it was defined in.
type ProcedureValue struct {
	Name    string
	Params  []Parameter
	Body    []ast.Statement
	Closure *Namespace
}

func (*ProcedureValue) Kind() Kind { return KindProcedure }

// FunctionValue is a procedure that must produce a value of ReturnType.
type FunctionValue struct {
	Name       string
	Params     []Parameter
	ReturnType *TypeDescriptor
	Body       []ast.Statement
	Closure    *Namespace
}

func (*FunctionValue) Kind() Kind { return KindFunction }

//----- Types -----

// TypeValue wraps a descriptor so it can be bound as a namespace constant.
type TypeValue struct {
	Descriptor *TypeDescriptor
}

func (*TypeValue) Kind() Kind { return KindType }
