package interpreter

import (
	"fmt"

	"pseudocoder/interpreter-go/pkg/ast"
	"pseudocoder/interpreter-go/pkg/runtime"
)

// evaluate computes the value of expr. It never mutates namespaces except through callee side effects.
func (i *Interpreter) evaluate(node ast.Expression, ns *runtime.Namespace) (runtime.Value, error) {
	switch n := node.(type) {
	case *ast.Identifier:
		return ns.Lookup(n.Name)
	case *ast.IntegerLiteral:
		return i.types.Integer().Construct(n.Value)
	case *ast.RealLiteral:
		return i.types.Real().Construct(n.Value)
	case *ast.BooleanLiteral:
		return i.types.Boolean().Construct(n.Value)
	case *ast.StringLiteral:
		return i.constructOptional(i.types.StringType(), n.Value)
	case *ast.CharLiteral:
		return i.constructOptional(i.types.Char(), n.Value)
	case *ast.DateLiteral:
		return i.constructOptional(i.types.Date(), runtime.DateValue{Year: n.Year, Month: n.Month, Day: n.Day})
	case *ast.UnaryExpression:
		return i.evaluateUnaryExpression(n, ns)
	case *ast.BinaryExpression:
		return i.evaluateBinaryExpression(n, ns)
	case *ast.FunctionCall:
		return i.evaluateFunctionCall(n, ns)
	case nil:
		return nil, fmt.Errorf("interpreter: nil expression")
	default:
		return nil, fmt.Errorf("unsupported expression type: %s", n.NodeType())
	}
}

func (i *Interpreter) constructOptional(desc *runtime.TypeDescriptor, native any) (runtime.Value, error) {
	if !i.types.Enabled(desc.Name) {
		return nil, runtime.Errorf(runtime.ErrInvalidLiteral, "%s literals are not enabled", desc.Name)
	}
	return desc.Construct(native)
}

func (i *Interpreter) evaluateUnaryExpression(expr *ast.UnaryExpression, ns *runtime.Namespace) (runtime.Value, error) {
	operand, err := i.evaluate(expr.Operand, ns)
	if err != nil {
		return nil, err
	}
	return applyUnary(expr.Operator, operand)
}

func (i *Interpreter) evaluateBinaryExpression(expr *ast.BinaryExpression, ns *runtime.Namespace) (runtime.Value, error) {
	left, err := i.evaluate(expr.Left, ns)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluate(expr.Right, ns)
	if err != nil {
		return nil, err
	}
	return applyBinary(expr.Operator, left, right)
}

func (i *Interpreter) evaluateFunctionCall(call *ast.FunctionCall, ns *runtime.Namespace) (runtime.Value, error) {
	callee, err := ns.Lookup(call.Callee.Name)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(*runtime.FunctionValue)
	if !ok {
		return nil, runtime.IdentifierError(runtime.ErrTypeMismatch, call.Callee.Name, "'%s' is %s, not a function", call.Callee.Name, runtime.DescribeKind(callee))
	}
	return i.invokeFunction(fn, call.Arguments, ns)
}
