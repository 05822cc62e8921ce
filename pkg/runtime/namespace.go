package runtime

import "sort"

// Namespace provides lexical scoping for pseudocode programs. Constants are bound to values
// directly; variables are bound to slot handles in the shared arena.
type Namespace struct {
	arena     *SlotArena
	parent    *Namespace
	label     string
	constants map[string]Value
	variables map[string]SlotHandle
	owned     []SlotHandle
}

// NewGlobalNamespace creates the root namespace of a run.
func NewGlobalNamespace(arena *SlotArena) *Namespace {
	if arena == nil {
		arena = NewSlotArena()
	}
	return &Namespace{
		arena:     arena,
		label:     "global",
		constants: make(map[string]Value),
		variables: make(map[string]SlotHandle),
	}
}

// NewNamespace creates a child namespace sharing the parent's arena.
func NewNamespace(parent *Namespace, label string) *Namespace {
	ns := NewGlobalNamespace(parent.arena)
	ns.parent = parent
	ns.label = label
	return ns
}

func (n *Namespace) Arena() *SlotArena {
	return n.arena
}

// Label names the activation that owns the namespace ("global" at the root).
func (n *Namespace) Label() string {
	return n.label
}

// Lookup resolves name to a value, reading through variable slots and walking the parent chain.
func (n *Namespace) Lookup(name string) (Value, error) {
	for ns := n; ns != nil; ns = ns.parent {
		if v, ok := ns.constants[name]; ok {
			return v, nil
		}
		if h, ok := ns.variables[name]; ok {
			v, err := ns.arena.Get(h)
			if err != nil {
				return nil, AnnotateIdentifier(err, name)
			}
			return v, nil
		}
	}
	return nil, IdentifierError(ErrUndefinedIdentifier, name, "undefined identifier '%s'", name)
}

// LookupVariable resolves name to its slot. A constant found first fails with NotAVariable.
func (n *Namespace) LookupVariable(name string) (SlotHandle, error) {
	for ns := n; ns != nil; ns = ns.parent {
		if _, ok := ns.constants[name]; ok {
			return -1, IdentifierError(ErrNotAVariable, name, "'%s' is a constant", name)
		}
		if h, ok := ns.variables[name]; ok {
			return h, nil
		}
	}
	return -1, IdentifierError(ErrUndefinedIdentifier, name, "undefined variable '%s'", name)
}

// HasInCurrentScope reports whether name is declared directly in this namespace.
func (n *Namespace) HasInCurrentScope(name string) bool {
	if _, ok := n.constants[name]; ok {
		return true
	}
	_, ok := n.variables[name]
	return ok
}

// DeclareVariable allocates a fresh unset slot of typ under name.
func (n *Namespace) DeclareVariable(name string, typ *TypeDescriptor) (SlotHandle, error) {
	if err := n.checkFree(name); err != nil {
		return -1, err
	}
	h := n.arena.Allocate(typ)
	n.variables[name] = h
	n.owned = append(n.owned, h)
	return h, nil
}

// DeclareConstant binds an immutable value after checking it against typ.
func (n *Namespace) DeclareConstant(name string, typ *TypeDescriptor, value Value) error {
	if err := n.checkFree(name); err != nil {
		return err
	}
	if err := typ.Check(value); err != nil {
		return AnnotateIdentifier(err, name)
	}
	n.constants[name] = value
	return nil
}

// BindReference aliases an existing slot under name. The slot must have been declared with typ.
func (n *Namespace) BindReference(name string, typ *TypeDescriptor, h SlotHandle) error {
	if err := n.checkFree(name); err != nil {
		return err
	}
	if got := n.arena.Type(h); got != typ {
		return IdentifierError(ErrTypeMismatch, name, "reference parameter '%s' expects a %s variable, got %s", name, typ, got)
	}
	n.variables[name] = h
	return nil
}

// BindValue declares a new slot under name holding a copy of value.
func (n *Namespace) BindValue(name string, typ *TypeDescriptor, value Value) error {
	h, err := n.DeclareVariable(name, typ)
	if err != nil {
		return err
	}
	if err := n.arena.Set(h, value); err != nil {
		return AnnotateIdentifier(err, name)
	}
	return nil
}

// Assign writes value into the slot that name resolves to.
func (n *Namespace) Assign(name string, value Value) error {
	h, err := n.LookupVariable(name)
	if err != nil {
		return err
	}
	if err := n.arena.Set(h, value); err != nil {
		return AnnotateIdentifier(err, name)
	}
	return nil
}

// Release frees the slots this namespace allocated. Aliased slots belong to their owner.
func (n *Namespace) Release() {
	for _, h := range n.owned {
		n.arena.Release(h)
	}
	n.owned = nil
}

// Keys returns the bindings in sorted order (useful for determinism in tests).
func (n *Namespace) Keys() []string {
	keys := make([]string, 0, len(n.constants)+len(n.variables))
	for k := range n.constants {
		keys = append(keys, k)
	}
	for k := range n.variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (n *Namespace) checkFree(name string) error {
	if n.HasInCurrentScope(name) {
		return IdentifierError(ErrDuplicateDeclaration, name, "'%s' is already declared in this scope", name)
	}
	return nil
}
