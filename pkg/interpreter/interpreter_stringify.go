package interpreter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"pseudocoder/interpreter-go/pkg/runtime"
)

// valueToString renders the canonical OUTPUT text of a value.
func valueToString(val runtime.Value) string {
	switch v := val.(type) {
	case runtime.IntegerValue:
		return strconv.FormatInt(v.Val, 10)
	case runtime.RealValue:
		return formatReal(v.Val)
	case runtime.StringValue:
		return v.Val
	case runtime.CharValue:
		return string(v.Val)
	case runtime.BooleanValue:
		if v.Val {
			return "TRUE"
		}
		return "FALSE"
	case runtime.DateValue:
		return fmt.Sprintf("%02d/%02d/%04d", v.Day, v.Month, v.Year)
	case *runtime.ProcedureValue:
		return fmt.Sprintf("<procedure %s>", v.Name)
	case *runtime.FunctionValue:
		return fmt.Sprintf("<function %s>", v.Name)
	case *runtime.TypeValue:
		return fmt.Sprintf("<type %s>", v.Descriptor)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatReal prints the shortest round-tripping form, keeping a fractional part on integral values.
func formatReal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
