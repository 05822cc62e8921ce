package interpreter

import (
	"pseudocoder/interpreter-go/pkg/ast"
	"pseudocoder/interpreter-go/pkg/runtime"
)

// invokeProcedure runs proc to completion. A RETURN inside the body ends it early.
func (i *Interpreter) invokeProcedure(proc *runtime.ProcedureValue, args []ast.Expression, caller *runtime.Namespace) error {
	ns, err := i.enter(proc.Name, proc.Params, proc.Closure, args, caller)
	if err != nil {
		return err
	}
	defer i.leave(ns)
	_, err = i.executeBlock(proc.Body, ns, ns)
	return err
}

// invokeFunction runs fn and captures the value of the first RETURN reached.
func (i *Interpreter) invokeFunction(fn *runtime.FunctionValue, args []ast.Expression, caller *runtime.Namespace) (runtime.Value, error) {
	ns, err := i.enter(fn.Name, fn.Params, fn.Closure, args, caller)
	if err != nil {
		return nil, err
	}
	defer i.leave(ns)
	result, err := i.executeBlock(fn.Body, ns, ns)
	if err != nil {
		return nil, err
	}
	if result.kind != flowReturn {
		return nil, runtime.IdentifierError(runtime.ErrMissingReturn, fn.Name, "function '%s' finished without RETURN", fn.Name)
	}
	if result.value == nil {
		return nil, runtime.WithSpan(runtime.IdentifierError(runtime.ErrMissingReturn, fn.Name, "function '%s' reached RETURN without a value", fn.Name), result.span)
	}
	if err := fn.ReturnType.Check(result.value); err != nil {
		return nil, runtime.WithSpan(runtime.AnnotateIdentifier(err, fn.Name), result.span)
	}
	return result.value, nil
}

// enter binds args to params in a fresh namespace chained to the callee's defining namespace.
func (i *Interpreter) enter(name string, params []runtime.Parameter, closure *runtime.Namespace, args []ast.Expression, caller *runtime.Namespace) (*runtime.Namespace, error) {
	if i.depth >= i.maxDepth {
		return nil, runtime.IdentifierError(runtime.ErrStackExhausted, name, "call depth exceeded %d while calling '%s'", i.maxDepth, name)
	}
	if len(args) != len(params) {
		return nil, runtime.IdentifierError(runtime.ErrArityMismatch, name, "'%s' expects %d arguments, got %d", name, len(params), len(args))
	}
	ns := runtime.NewNamespace(closure, name)
	for idx, param := range params {
		if err := i.bindParameter(ns, param, args[idx], caller); err != nil {
			ns.Release()
			return nil, runtime.WithSpan(err, args[idx].Span())
		}
	}
	i.depth++
	i.log.Trace().Str("callee", name).Int("depth", i.depth).Int("args", len(args)).Msg("enter")
	return ns, nil
}

func (i *Interpreter) leave(ns *runtime.Namespace) {
	i.log.Trace().Str("callee", ns.Label()).Int("depth", i.depth).Msg("leave")
	i.depth--
	ns.Release()
}

func (i *Interpreter) bindParameter(ns *runtime.Namespace, param runtime.Parameter, arg ast.Expression, caller *runtime.Namespace) error {
	if param.ByRef {
		id, ok := arg.(*ast.Identifier)
		if !ok {
			return runtime.IdentifierError(runtime.ErrTypeMismatch, param.Name, "reference parameter '%s' requires a variable argument", param.Name)
		}
		slot, err := caller.LookupVariable(id.Name)
		if err != nil {
			return err
		}
		return ns.BindReference(param.Name, param.Type, slot)
	}
	value, err := i.evaluate(arg, caller)
	if err != nil {
		return err
	}
	return ns.BindValue(param.Name, param.Type, value)
}
