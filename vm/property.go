package vm

import (
	"fmt"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Impersonator properties
// ---------------------------------------------------------------------------

// PropertyDescriptor keys out-of-band data attached to wrappers. Identity
// is the pointer: two descriptors made with the same name are different
// keys. ID is only used when inspecting or printing.
type PropertyDescriptor struct {
	base
	name string
	id   uuid.UUID
}

// NewPropertyDescriptor creates a fresh descriptor.
func NewPropertyDescriptor(name string) *PropertyDescriptor {
	return &PropertyDescriptor{name: name, id: uuid.New()}
}

func (d *PropertyDescriptor) Name() string  { return d.name }
func (d *PropertyDescriptor) ID() uuid.UUID { return d.id }

func (d *PropertyDescriptor) String() string {
	return fmt.Sprintf("#<impersonator-property:%s>", d.name)
}

// ApplicationMark is impersonator-prop:application-mark. A procedure
// wrapper carrying it with value (key . mark) installs the mark for the
// extent of each application.
var ApplicationMark = NewPropertyDescriptor("application-mark")

// PropertyPredicate is the predicate view of a descriptor.
type PropertyPredicate struct {
	base
	desc *PropertyDescriptor
}

func (*PropertyPredicate) Callable() bool { return true }
func (p *PropertyPredicate) String() string {
	return fmt.Sprintf("#<procedure:%s?>", p.desc.name)
}

// Call implements Procedure.
func (p *PropertyPredicate) Call(args []Value, vm *VM, cont Cont) (Thunk, error) {
	if len(args) != 1 {
		return nil, arityError(p.desc.name+"?", "expects 1 argument, given %d", len(args))
	}
	_, ok := LookupProperty(args[0], p.desc)
	return ReturnValue(FromBool(ok), vm, cont)
}

// PropertyAccessor is the accessor view of a descriptor.
type PropertyAccessor struct {
	base
	desc *PropertyDescriptor
}

func (*PropertyAccessor) Callable() bool { return true }
func (a *PropertyAccessor) String() string {
	return fmt.Sprintf("#<procedure:%s-accessor>", a.desc.name)
}

// Call implements Procedure. With a second argument, a missing property
// yields that argument (applied to no arguments when it is a procedure)
// instead of failing.
func (a *PropertyAccessor) Call(args []Value, vm *VM, cont Cont) (Thunk, error) {
	who := a.desc.name + "-accessor"
	if len(args) < 1 || len(args) > 2 {
		return nil, arityError(who, "expects 1 or 2 arguments, given %d", len(args))
	}
	if v, ok := LookupProperty(args[0], a.desc); ok {
		return ReturnValue(v, vm, cont)
	}
	if len(args) == 2 {
		if IsProcedure(args[1]) {
			return Apply(args[1], nil, vm, cont)
		}
		return ReturnValue(args[1], vm, cont)
	}
	return nil, raise(ErrLookupFailure, who, "contract violation: %s does not have property %s", args[0], a.desc.name)
}

// MakeProperty creates a descriptor with its predicate and accessor.
func MakeProperty(name string) (*PropertyDescriptor, *PropertyPredicate, *PropertyAccessor) {
	d := NewPropertyDescriptor(name)
	return d, &PropertyPredicate{desc: d}, &PropertyAccessor{desc: d}
}

// ---------------------------------------------------------------------------
// Property tables
// ---------------------------------------------------------------------------

// PropertyTable is the ordered, immutable property mapping of one wrapper.
type PropertyTable struct {
	keys []*PropertyDescriptor
	vals []Value
}

// NewPropertyTable builds a table. A key given twice keeps its first
// position and takes its last value.
func NewPropertyTable(keys []*PropertyDescriptor, vals []Value) *PropertyTable {
	t := &PropertyTable{}
outer:
	for i, k := range keys {
		for j, existing := range t.keys {
			if existing == k {
				t.vals[j] = vals[i]
				continue outer
			}
		}
		t.keys = append(t.keys, k)
		t.vals = append(t.vals, vals[i])
	}
	return t
}

// Get returns the value for key in this table only.
func (t *PropertyTable) Get(key *PropertyDescriptor) (Value, bool) {
	if t == nil {
		return nil, false
	}
	for i, k := range t.keys {
		if k == key {
			return t.vals[i], true
		}
	}
	return nil, false
}

// Len returns the number of entries.
func (t *PropertyTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Each calls fn for every entry in order.
func (t *PropertyTable) Each(fn func(key *PropertyDescriptor, val Value)) {
	if t == nil {
		return
	}
	for i, k := range t.keys {
		fn(k, t.vals[i])
	}
}

// LookupProperty walks the wrapper chain of v from the outside in and
// returns the first value stored under key.
func LookupProperty(v Value, key *PropertyDescriptor) (Value, bool) {
	for {
		w, ok := v.(Wrapper)
		if !ok {
			return nil, false
		}
		if val, found := w.Properties().Get(key); found {
			return val, true
		}
		v = w.Target()
	}
}
