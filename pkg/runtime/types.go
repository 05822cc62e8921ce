package runtime

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// TypeDescriptor tests membership of values and constructs values from native Go data.
type TypeDescriptor struct {
	Name      string
	accepts   func(Value) bool
	construct func(native any) (Value, error)
}

// NewTypeDescriptor builds a descriptor from a membership predicate and a constructor.
func NewTypeDescriptor(name string, accepts func(Value) bool, construct func(any) (Value, error)) *TypeDescriptor {
	return &TypeDescriptor{Name: name, accepts: accepts, construct: construct}
}

func (t *TypeDescriptor) String() string {
	if t == nil {
		return "<nil type>"
	}
	return t.Name
}

// Accepts reports whether v is a member of the type.
func (t *TypeDescriptor) Accepts(v Value) bool {
	if t == nil || v == nil || t.accepts == nil {
		return false
	}
	return t.accepts(v)
}

// Construct builds a member of the type from its native representation.
func (t *TypeDescriptor) Construct(native any) (Value, error) {
	if t == nil || t.construct == nil {
		return nil, Errorf(ErrInvalidLiteral, "type %s cannot construct values", t)
	}
	return t.construct(native)
}

// Check returns a TypeMismatch error when v is not a member of the type.
func (t *TypeDescriptor) Check(v Value) error {
	if t.Accepts(v) {
		return nil
	}
	return Errorf(ErrTypeMismatch, "expected %s, got %s", t, DescribeKind(v))
}

// DescribeKind names the category of v for diagnostics.
func DescribeKind(v Value) string {
	if v == nil {
		return "nothing"
	}
	if tv, ok := v.(*TypeValue); ok && tv.Descriptor != nil {
		return "type " + tv.Descriptor.Name
	}
	return v.Kind().String()
}

func kindPredicate(kind Kind) func(Value) bool {
	return func(v Value) bool { return v.Kind() == kind }
}

//----- Built-in descriptors -----

func newIntegerType() *TypeDescriptor {
	return NewTypeDescriptor("INTEGER", kindPredicate(KindInteger), func(native any) (Value, error) {
		switch n := native.(type) {
		case int64:
			return IntegerValue{Val: n}, nil
		case int:
			return IntegerValue{Val: int64(n)}, nil
		case int32:
			return IntegerValue{Val: int64(n)}, nil
		}
		return nil, Errorf(ErrInvalidLiteral, "cannot build INTEGER from %T", native)
	})
}

func newRealType() *TypeDescriptor {
	return NewTypeDescriptor("REAL", kindPredicate(KindReal), func(native any) (Value, error) {
		switch n := native.(type) {
		case float64:
			return RealValue{Val: n}, nil
		case float32:
			return RealValue{Val: float64(n)}, nil
		case int64:
			return RealValue{Val: float64(n)}, nil
		case int:
			return RealValue{Val: float64(n)}, nil
		}
		return nil, Errorf(ErrInvalidLiteral, "cannot build REAL from %T", native)
	})
}

func newBooleanType() *TypeDescriptor {
	return NewTypeDescriptor("BOOLEAN", kindPredicate(KindBoolean), func(native any) (Value, error) {
		if b, ok := native.(bool); ok {
			return BooleanValue{Val: b}, nil
		}
		return nil, Errorf(ErrInvalidLiteral, "cannot build BOOLEAN from %T", native)
	})
}

func newStringType() *TypeDescriptor {
	return NewTypeDescriptor("STRING", kindPredicate(KindString), func(native any) (Value, error) {
		if s, ok := native.(string); ok {
			return StringValue{Val: s}, nil
		}
		return nil, Errorf(ErrInvalidLiteral, "cannot build STRING from %T", native)
	})
}

func newCharType() *TypeDescriptor {
	return NewTypeDescriptor("CHAR", kindPredicate(KindChar), func(native any) (Value, error) {
		switch c := native.(type) {
		case rune:
			return CharValue{Val: c}, nil
		case string:
			if utf8.RuneCountInString(c) != 1 {
				return nil, Errorf(ErrInvalidLiteral, "CHAR literal %q must hold exactly one character", c)
			}
			r, _ := utf8.DecodeRuneInString(c)
			return CharValue{Val: r}, nil
		}
		return nil, Errorf(ErrInvalidLiteral, "cannot build CHAR from %T", native)
	})
}

func newDateType() *TypeDescriptor {
	return NewTypeDescriptor("DATE", kindPredicate(KindDate), func(native any) (Value, error) {
		var d DateValue
		switch n := native.(type) {
		case DateValue:
			d = n
		case time.Time:
			d = DateValue{Year: n.Year(), Month: int(n.Month()), Day: n.Day()}
		default:
			return nil, Errorf(ErrInvalidLiteral, "cannot build DATE from %T", native)
		}
		if err := validateDate(d); err != nil {
			return nil, err
		}
		return d, nil
	})
}

func validateDate(d DateValue) error {
	switch {
	case d.Day < 1 || d.Day > 31:
		return Errorf(ErrInvalidLiteral, "date day %d out of range 1..31", d.Day)
	case d.Month < 1 || d.Month > 12:
		return Errorf(ErrInvalidLiteral, "date month %d out of range 1..12", d.Month)
	case d.Year <= 1973:
		return Errorf(ErrInvalidLiteral, "date year %d must be after 1973", d.Year)
	}
	return nil
}

func newCallableType(name string, kind Kind) *TypeDescriptor {
	return NewTypeDescriptor(name, kindPredicate(kind), func(native any) (Value, error) {
		if v, ok := native.(Value); ok && v.Kind() == kind {
			return v, nil
		}
		return nil, Errorf(ErrInvalidLiteral, "cannot build %s from %T", name, native)
	})
}

//----- Registry -----

// OptionalTypes lists the built-in types that may be switched off.
var OptionalTypes = []string{"STRING", "CHAR", "DATE"}

// TypeRegistry owns the built-in descriptors of one interpreter.
type TypeRegistry struct {
	integer   *TypeDescriptor
	real      *TypeDescriptor
	boolean   *TypeDescriptor
	str       *TypeDescriptor
	char      *TypeDescriptor
	date      *TypeDescriptor
	procedure *TypeDescriptor
	function  *TypeDescriptor
	typ       *TypeDescriptor

	enabled map[string]bool
	order   []*TypeDescriptor
}

// NewTypeRegistry creates the built-in descriptors. optional selects which of OptionalTypes
// are exposed; nil enables all of them.
func NewTypeRegistry(optional []string) (*TypeRegistry, error) {
	r := &TypeRegistry{
		integer:   newIntegerType(),
		real:      newRealType(),
		boolean:   newBooleanType(),
		str:       newStringType(),
		char:      newCharType(),
		date:      newDateType(),
		procedure: newCallableType("PROCEDURE", KindProcedure),
		function:  newCallableType("FUNCTION", KindFunction),
		typ:       newCallableType("TYPE", KindType),
		enabled:   make(map[string]bool),
	}
	r.order = []*TypeDescriptor{r.integer, r.real, r.boolean}
	for _, desc := range r.order {
		r.enabled[desc.Name] = true
	}
	if optional == nil {
		optional = OptionalTypes
	}
	for _, name := range optional {
		var desc *TypeDescriptor
		switch name {
		case "STRING":
			desc = r.str
		case "CHAR":
			desc = r.char
		case "DATE":
			desc = r.date
		default:
			return nil, fmt.Errorf("unknown optional type %q", name)
		}
		if r.enabled[name] {
			continue
		}
		r.enabled[name] = true
		r.order = append(r.order, desc)
	}
	return r, nil
}

func (r *TypeRegistry) Integer() *TypeDescriptor    { return r.integer }
func (r *TypeRegistry) Real() *TypeDescriptor       { return r.real }
func (r *TypeRegistry) Boolean() *TypeDescriptor    { return r.boolean }
func (r *TypeRegistry) StringType() *TypeDescriptor { return r.str }
func (r *TypeRegistry) Char() *TypeDescriptor       { return r.char }
func (r *TypeRegistry) Date() *TypeDescriptor       { return r.date }
func (r *TypeRegistry) Procedure() *TypeDescriptor  { return r.procedure }
func (r *TypeRegistry) Function() *TypeDescriptor   { return r.function }
func (r *TypeRegistry) Type() *TypeDescriptor       { return r.typ }

// Enabled reports whether the named built-in is exposed to programs.
func (r *TypeRegistry) Enabled(name string) bool {
	return r.enabled[name]
}

// Names returns the exposed built-ins in registration order.
func (r *TypeRegistry) Names() []string {
	out := make([]string, len(r.order))
	for i, desc := range r.order {
		out[i] = desc.Name
	}
	return out
}

// Install declares every exposed built-in as a constant of ns.
func (r *TypeRegistry) Install(ns *Namespace) error {
	for _, desc := range r.order {
		if err := ns.DeclareConstant(desc.Name, r.typ, &TypeValue{Descriptor: desc}); err != nil {
			return err
		}
	}
	return nil
}
