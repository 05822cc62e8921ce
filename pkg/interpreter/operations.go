package interpreter

import (
	"math"
	"strings"

	"pseudocoder/interpreter-go/pkg/runtime"
)

func applyUnary(op string, operand runtime.Value) (runtime.Value, error) {
	switch op {
	case "-":
		switch v := operand.(type) {
		case runtime.IntegerValue:
			if v.Val == math.MinInt64 {
				return nil, runtime.Errorf(runtime.ErrIntegerOverflow, "negating %d overflows INTEGER", v.Val)
			}
			return runtime.IntegerValue{Val: -v.Val}, nil
		case runtime.RealValue:
			return runtime.RealValue{Val: -v.Val}, nil
		}
		return nil, operandMismatch(op, "numeric", operand)
	case "NOT":
		if b, ok := operand.(runtime.BooleanValue); ok {
			return runtime.BooleanValue{Val: !b.Val}, nil
		}
		return nil, operandMismatch(op, "BOOLEAN", operand)
	default:
		return nil, runtime.Errorf(runtime.ErrTypeMismatch, "unknown unary operator %s", op)
	}
}

func applyBinary(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case "+", "-", "*":
		return evaluateArithmetic(op, left, right)
	case "/":
		return evaluateDivision(left, right)
	case "MOD", "DIV":
		return evaluateIntegerDivision(op, left, right)
	case "&":
		return evaluateConcatenation(left, right)
	case "<", ">", "<=", ">=":
		return evaluateComparison(op, left, right)
	case "=", "<>":
		eq, err := valuesEqual(left, right)
		if err != nil {
			return nil, err
		}
		if op == "<>" {
			eq = !eq
		}
		return runtime.BooleanValue{Val: eq}, nil
	case "AND", "OR":
		l, lok := left.(runtime.BooleanValue)
		r, rok := right.(runtime.BooleanValue)
		if !lok || !rok {
			return nil, binaryMismatch(op, "BOOLEAN", left, right)
		}
		if op == "AND" {
			return runtime.BooleanValue{Val: l.Val && r.Val}, nil
		}
		return runtime.BooleanValue{Val: l.Val || r.Val}, nil
	default:
		return nil, runtime.Errorf(runtime.ErrTypeMismatch, "unknown binary operator %s", op)
	}
}

// evaluateArithmetic yields REAL when either operand is REAL and INTEGER otherwise.
func evaluateArithmetic(op string, left, right runtime.Value) (runtime.Value, error) {
	if !isNumericValue(left) || !isNumericValue(right) {
		return nil, binaryMismatch(op, "numeric", left, right)
	}
	li, lInt := left.(runtime.IntegerValue)
	ri, rInt := right.(runtime.IntegerValue)
	if lInt && rInt {
		return integerArithmetic(op, li.Val, ri.Val)
	}
	l, r := numericToFloat(left), numericToFloat(right)
	switch op {
	case "+":
		return runtime.RealValue{Val: l + r}, nil
	case "-":
		return runtime.RealValue{Val: l - r}, nil
	default:
		return runtime.RealValue{Val: l * r}, nil
	}
}

func integerArithmetic(op string, l, r int64) (runtime.Value, error) {
	var result int64
	overflow := false
	switch op {
	case "+":
		result = l + r
		overflow = (r > 0 && result < l) || (r < 0 && result > l)
	case "-":
		result = l - r
		overflow = (r < 0 && result < l) || (r > 0 && result > l)
	default:
		result = l * r
		if l != 0 && r != 0 {
			overflow = result/r != l || (l == -1 && r == math.MinInt64) || (r == -1 && l == math.MinInt64)
		}
	}
	if overflow {
		return nil, runtime.Errorf(runtime.ErrIntegerOverflow, "%d %s %d overflows INTEGER", l, op, r)
	}
	return runtime.IntegerValue{Val: result}, nil
}

// evaluateDivision always yields REAL.
func evaluateDivision(left, right runtime.Value) (runtime.Value, error) {
	if !isNumericValue(left) || !isNumericValue(right) {
		return nil, binaryMismatch("/", "numeric", left, right)
	}
	divisor := numericToFloat(right)
	if divisor == 0 {
		return nil, runtime.Errorf(runtime.ErrDivisionByZero, "division by zero")
	}
	return runtime.RealValue{Val: numericToFloat(left) / divisor}, nil
}

// evaluateIntegerDivision truncates toward zero; MOD takes the sign of the dividend.
func evaluateIntegerDivision(op string, left, right runtime.Value) (runtime.Value, error) {
	l, lok := left.(runtime.IntegerValue)
	r, rok := right.(runtime.IntegerValue)
	if !lok || !rok {
		return nil, binaryMismatch(op, "INTEGER", left, right)
	}
	if r.Val == 0 {
		return nil, runtime.Errorf(runtime.ErrDivisionByZero, "%s by zero", op)
	}
	if op == "MOD" {
		if r.Val == -1 {
			return runtime.IntegerValue{Val: 0}, nil
		}
		return runtime.IntegerValue{Val: l.Val % r.Val}, nil
	}
	if l.Val == math.MinInt64 && r.Val == -1 {
		return nil, runtime.Errorf(runtime.ErrIntegerOverflow, "%d DIV %d overflows INTEGER", l.Val, r.Val)
	}
	return runtime.IntegerValue{Val: l.Val / r.Val}, nil
}

func evaluateConcatenation(left, right runtime.Value) (runtime.Value, error) {
	l, lok := textOf(left)
	r, rok := textOf(right)
	if !lok || !rok {
		return nil, binaryMismatch("&", "STRING or CHAR", left, right)
	}
	var b strings.Builder
	b.Grow(len(l) + len(r))
	b.WriteString(l)
	b.WriteString(r)
	return runtime.StringValue{Val: b.String()}, nil
}

func evaluateComparison(op string, left, right runtime.Value) (runtime.Value, error) {
	if !isNumericValue(left) || !isNumericValue(right) {
		return nil, binaryMismatch(op, "numeric", left, right)
	}
	return runtime.BooleanValue{Val: comparisonOp(op, compareNumbers(left, right))}, nil
}

func comparisonOp(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	case "=":
		return cmp == 0
	case "<>":
		return cmp != 0
	default:
		return false
	}
}

// valuesEqual accepts two numbers or two values of the same textual, boolean or date kind.
func valuesEqual(left, right runtime.Value) (bool, error) {
	if isNumericValue(left) && isNumericValue(right) {
		return compareNumbers(left, right) == 0, nil
	}
	switch l := left.(type) {
	case runtime.StringValue:
		if r, ok := right.(runtime.StringValue); ok {
			return l.Val == r.Val, nil
		}
	case runtime.CharValue:
		if r, ok := right.(runtime.CharValue); ok {
			return l.Val == r.Val, nil
		}
	case runtime.BooleanValue:
		if r, ok := right.(runtime.BooleanValue); ok {
			return l.Val == r.Val, nil
		}
	case runtime.DateValue:
		if r, ok := right.(runtime.DateValue); ok {
			return l == r, nil
		}
	}
	return false, runtime.Errorf(runtime.ErrTypeMismatch, "cannot compare %s with %s", runtime.DescribeKind(left), runtime.DescribeKind(right))
}

func compareNumbers(left, right runtime.Value) int {
	li, lInt := left.(runtime.IntegerValue)
	ri, rInt := right.(runtime.IntegerValue)
	if lInt && rInt {
		switch {
		case li.Val < ri.Val:
			return -1
		case li.Val > ri.Val:
			return 1
		}
		return 0
	}
	l, r := numericToFloat(left), numericToFloat(right)
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	}
	return 0
}

func isNumericValue(val runtime.Value) bool {
	switch val.(type) {
	case runtime.IntegerValue, runtime.RealValue:
		return true
	default:
		return false
	}
}

func numericToFloat(val runtime.Value) float64 {
	switch v := val.(type) {
	case runtime.IntegerValue:
		return float64(v.Val)
	case runtime.RealValue:
		return v.Val
	default:
		return math.NaN()
	}
}

func textOf(val runtime.Value) (string, bool) {
	switch v := val.(type) {
	case runtime.StringValue:
		return v.Val, true
	case runtime.CharValue:
		return string(v.Val), true
	default:
		return "", false
	}
}

func operandMismatch(op, want string, operand runtime.Value) error {
	return runtime.Errorf(runtime.ErrTypeMismatch, "%s expects a %s operand, got %s", op, want, runtime.DescribeKind(operand))
}

func binaryMismatch(op, want string, left, right runtime.Value) error {
	return runtime.Errorf(runtime.ErrTypeMismatch, "%s expects %s operands, got %s and %s", op, want, runtime.DescribeKind(left), runtime.DescribeKind(right))
}
