package interpreter

import (
	"fmt"
	"math"

	"pseudocoder/interpreter-go/pkg/ast"
	"pseudocoder/interpreter-go/pkg/runtime"
)

// executeBlock runs statements in order until one fails or produces a return.
func (i *Interpreter) executeBlock(stmts []ast.Statement, lookup, action *runtime.Namespace) (flow, error) {
	for _, stmt := range stmts {
		result, err := i.execute(stmt, lookup, action)
		if err != nil {
			return continueFlow, runtime.WithSpan(err, stmt.Span())
		}
		if result.kind == flowReturn {
			return result, nil
		}
	}
	return continueFlow, nil
}

// execute runs one statement. Names are resolved in lookup; declarations land in action.
func (i *Interpreter) execute(node ast.Statement, lookup, action *runtime.Namespace) (flow, error) {
	switch n := node.(type) {
	case *ast.VariableDeclaration:
		return continueFlow, i.executeVariableDeclaration(n, lookup, action)
	case *ast.ConstantDeclaration:
		return continueFlow, i.executeConstantDeclaration(n, lookup, action)
	case *ast.Assignment:
		return continueFlow, i.executeAssignment(n, lookup, action)
	case *ast.OutputStatement:
		return continueFlow, i.executeOutput(n, lookup)
	case *ast.ProcedureCall:
		return continueFlow, i.executeProcedureCall(n, lookup)
	case *ast.ReturnStatement:
		return i.executeReturn(n, lookup)
	case *ast.IfStatement:
		return i.executeIf(n, lookup, action)
	case *ast.ForLoop:
		return i.executeForLoop(n, lookup, action)
	case *ast.WhileLoop:
		return i.executeWhileLoop(n, lookup, action)
	case *ast.DoWhileLoop:
		return i.executeDoWhileLoop(n, lookup, action)
	case *ast.ProcedureDefinition:
		return continueFlow, i.executeProcedureDefinition(n, lookup, action)
	case *ast.FunctionDefinition:
		return continueFlow, i.executeFunctionDefinition(n, lookup, action)
	case nil:
		return continueFlow, fmt.Errorf("interpreter: nil statement")
	default:
		return continueFlow, fmt.Errorf("unsupported statement type: %s", n.NodeType())
	}
}

func (i *Interpreter) executeVariableDeclaration(decl *ast.VariableDeclaration, lookup, action *runtime.Namespace) error {
	typ, err := i.resolveType(decl.Type, lookup)
	if err != nil {
		return err
	}
	_, err = action.DeclareVariable(decl.Name.Name, typ)
	return err
}

func (i *Interpreter) executeConstantDeclaration(decl *ast.ConstantDeclaration, lookup, action *runtime.Namespace) error {
	typ, err := i.resolveType(decl.Type, lookup)
	if err != nil {
		return err
	}
	value, err := i.evaluate(decl.Value, lookup)
	if err != nil {
		return err
	}
	return action.DeclareConstant(decl.Name.Name, typ, value)
}

func (i *Interpreter) executeAssignment(assign *ast.Assignment, lookup, action *runtime.Namespace) error {
	value, err := i.evaluate(assign.Value, lookup)
	if err != nil {
		return err
	}
	return action.Assign(assign.Target.Name, value)
}

func (i *Interpreter) executeOutput(stmt *ast.OutputStatement, lookup *runtime.Namespace) error {
	value, err := i.evaluate(stmt.Value, lookup)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(i.out, valueToString(value)); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return nil
}

func (i *Interpreter) executeProcedureCall(call *ast.ProcedureCall, lookup *runtime.Namespace) error {
	callee, err := lookup.Lookup(call.Callee.Name)
	if err != nil {
		return err
	}
	switch fn := callee.(type) {
	case *runtime.ProcedureValue:
		return i.invokeProcedure(fn, call.Arguments, lookup)
	case *runtime.FunctionValue:
		_, err := i.invokeFunction(fn, call.Arguments, lookup)
		return err
	default:
		return runtime.IdentifierError(runtime.ErrTypeMismatch, call.Callee.Name, "'%s' is %s, not a procedure", call.Callee.Name, runtime.DescribeKind(callee))
	}
}

func (i *Interpreter) executeReturn(stmt *ast.ReturnStatement, lookup *runtime.Namespace) (flow, error) {
	if stmt.Argument == nil {
		return returnFlow(nil, stmt.Span()), nil
	}
	value, err := i.evaluate(stmt.Argument, lookup)
	if err != nil {
		return continueFlow, err
	}
	return returnFlow(value, stmt.Span()), nil
}

func (i *Interpreter) executeIf(stmt *ast.IfStatement, lookup, action *runtime.Namespace) (flow, error) {
	cond, err := i.evaluateCondition(stmt.Condition, lookup)
	if err != nil {
		return continueFlow, err
	}
	if cond {
		return i.executeBlock(stmt.Consequent, lookup, action)
	}
	return i.executeBlock(stmt.Alternate, lookup, action)
}

func (i *Interpreter) executeForLoop(loop *ast.ForLoop, lookup, action *runtime.Namespace) (flow, error) {
	from, err := i.evaluateInteger(loop.From, lookup, "FOR start")
	if err != nil {
		return continueFlow, err
	}
	to, err := i.evaluateInteger(loop.To, lookup, "FOR end")
	if err != nil {
		return continueFlow, err
	}
	step := int64(1)
	if loop.Step != nil {
		step, err = i.evaluateInteger(loop.Step, lookup, "FOR step")
		if err != nil {
			return continueFlow, err
		}
	}
	if step == 0 {
		return continueFlow, runtime.Errorf(runtime.ErrInvalidStep, "FOR step must not be zero")
	}
	slot, err := action.LookupVariable(loop.Variable.Name)
	if err != nil {
		return continueFlow, err
	}
	arena := action.Arena()
	for counter := from; (step > 0 && counter <= to) || (step < 0 && counter >= to); counter += step {
		if err := arena.Set(slot, runtime.IntegerValue{Val: counter}); err != nil {
			return continueFlow, runtime.WithSpan(runtime.AnnotateIdentifier(err, loop.Variable.Name), loop.Variable.Span())
		}
		result, err := i.executeBlock(loop.Body, lookup, action)
		if err != nil || result.kind == flowReturn {
			return result, err
		}
		if (step > 0 && counter > math.MaxInt64-step) || (step < 0 && counter < math.MinInt64-step) {
			break
		}
	}
	return continueFlow, nil
}

func (i *Interpreter) executeWhileLoop(loop *ast.WhileLoop, lookup, action *runtime.Namespace) (flow, error) {
	for {
		cond, err := i.evaluateCondition(loop.Condition, lookup)
		if err != nil {
			return continueFlow, err
		}
		if !cond {
			return continueFlow, nil
		}
		result, err := i.executeBlock(loop.Body, lookup, action)
		if err != nil || result.kind == flowReturn {
			return result, err
		}
	}
}

func (i *Interpreter) executeDoWhileLoop(loop *ast.DoWhileLoop, lookup, action *runtime.Namespace) (flow, error) {
	for {
		result, err := i.executeBlock(loop.Body, lookup, action)
		if err != nil || result.kind == flowReturn {
			return result, err
		}
		cond, err := i.evaluateCondition(loop.Condition, lookup)
		if err != nil {
			return continueFlow, err
		}
		if !cond {
			return continueFlow, nil
		}
	}
}

func (i *Interpreter) executeProcedureDefinition(def *ast.ProcedureDefinition, lookup, action *runtime.Namespace) error {
	params, err := i.resolveParameters(def.Params, lookup)
	if err != nil {
		return err
	}
	proc := &runtime.ProcedureValue{
		Name:    def.ID.Name,
		Params:  params,
		Body:    def.Body,
		Closure: action,
	}
	return action.DeclareConstant(def.ID.Name, i.types.Procedure(), proc)
}

func (i *Interpreter) executeFunctionDefinition(def *ast.FunctionDefinition, lookup, action *runtime.Namespace) error {
	params, err := i.resolveParameters(def.Params, lookup)
	if err != nil {
		return err
	}
	returnType, err := i.resolveType(def.ReturnType, lookup)
	if err != nil {
		return err
	}
	fn := &runtime.FunctionValue{
		Name:       def.ID.Name,
		Params:     params,
		ReturnType: returnType,
		Body:       def.Body,
		Closure:    action,
	}
	return action.DeclareConstant(def.ID.Name, i.types.Function(), fn)
}

func (i *Interpreter) resolveParameters(params []*ast.Parameter, lookup *runtime.Namespace) ([]runtime.Parameter, error) {
	out := make([]runtime.Parameter, 0, len(params))
	for _, p := range params {
		typ, err := i.resolveType(p.Type, lookup)
		if err != nil {
			return nil, runtime.WithSpan(err, p.Span())
		}
		out = append(out, runtime.Parameter{Name: p.Name.Name, Type: typ, ByRef: p.ByRef})
	}
	return out, nil
}

// resolveType evaluates a type expression and insists it names a type.
func (i *Interpreter) resolveType(expr ast.Expression, lookup *runtime.Namespace) (*runtime.TypeDescriptor, error) {
	value, err := i.evaluate(expr, lookup)
	if err != nil {
		return nil, err
	}
	tv, ok := value.(*runtime.TypeValue)
	if !ok || tv.Descriptor == nil {
		name := ""
		if id, isID := expr.(*ast.Identifier); isID {
			name = id.Name
		}
		return nil, runtime.IdentifierError(runtime.ErrTypeMismatch, name, "expected a type, got %s", runtime.DescribeKind(value))
	}
	return tv.Descriptor, nil
}

func (i *Interpreter) evaluateCondition(expr ast.Expression, lookup *runtime.Namespace) (bool, error) {
	value, err := i.evaluate(expr, lookup)
	if err != nil {
		return false, err
	}
	b, ok := value.(runtime.BooleanValue)
	if !ok {
		return false, runtime.Errorf(runtime.ErrTypeMismatch, "condition must be BOOLEAN, got %s", runtime.DescribeKind(value))
	}
	return b.Val, nil
}

func (i *Interpreter) evaluateInteger(expr ast.Expression, lookup *runtime.Namespace, what string) (int64, error) {
	value, err := i.evaluate(expr, lookup)
	if err != nil {
		return 0, err
	}
	iv, ok := value.(runtime.IntegerValue)
	if !ok {
		return 0, runtime.Errorf(runtime.ErrTypeMismatch, "%s must be INTEGER, got %s", what, runtime.DescribeKind(value))
	}
	return iv.Val, nil
}
