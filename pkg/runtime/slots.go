package runtime

// SlotHandle addresses a storage cell in a SlotArena. Handles stay valid until released.
type SlotHandle int

type slot struct {
	typ   *TypeDescriptor
	value Value
	set   bool
	live  bool
}

// SlotArena stores every variable cell of a run. Namespaces hold handles into it, so two
// namespaces holding the same handle observe each other's writes.
type SlotArena struct {
	slots []slot
	free  []SlotHandle
}

func NewSlotArena() *SlotArena {
	return &SlotArena{}
}

// Allocate creates an unset cell restricted to typ.
func (a *SlotArena) Allocate(typ *TypeDescriptor) SlotHandle {
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[h] = slot{typ: typ, live: true}
		return h
	}
	a.slots = append(a.slots, slot{typ: typ, live: true})
	return SlotHandle(len(a.slots) - 1)
}

// Release returns the cell to the free list.
func (a *SlotArena) Release(h SlotHandle) {
	if !a.valid(h) {
		return
	}
	a.slots[h] = slot{}
	a.free = append(a.free, h)
}

// Type returns the descriptor the cell was declared with.
func (a *SlotArena) Type(h SlotHandle) *TypeDescriptor {
	if !a.valid(h) {
		return nil
	}
	return a.slots[h].typ
}

// IsSet reports whether the cell holds a value.
func (a *SlotArena) IsSet(h SlotHandle) bool {
	return a.valid(h) && a.slots[h].set
}

// Get reads the cell, failing with UninitializedSlotRead when nothing was written yet.
func (a *SlotArena) Get(h SlotHandle) (Value, error) {
	if !a.valid(h) {
		return nil, Errorf(ErrUninitializedSlotRead, "slot %d is not live", h)
	}
	s := a.slots[h]
	if !s.set {
		return nil, Errorf(ErrUninitializedSlotRead, "slot of type %s read before assignment", s.typ)
	}
	return s.value, nil
}

// Set writes v into the cell after checking it against the cell's type.
func (a *SlotArena) Set(h SlotHandle, v Value) error {
	if !a.valid(h) {
		return Errorf(ErrUninitializedSlotRead, "slot %d is not live", h)
	}
	s := &a.slots[h]
	if err := s.typ.Check(v); err != nil {
		return err
	}
	s.value = v
	s.set = true
	return nil
}

// Live counts allocated cells.
func (a *SlotArena) Live() int {
	return len(a.slots) - len(a.free)
}

func (a *SlotArena) valid(h SlotHandle) bool {
	return h >= 0 && int(h) < len(a.slots) && a.slots[h].live
}
