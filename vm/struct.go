package vm

import "fmt"

// ---------------------------------------------------------------------------
// Struct types
// ---------------------------------------------------------------------------

// StructType describes a family of structs: field count, which fields are
// immutable, an optional supertype whose fields come first, and how
// equal? treats instances.
type StructType struct {
	base
	name        string
	super       *StructType
	fields      int
	immutables  map[int]bool // relative field indices
	transparent bool
	equal       Value
}

// StructTypeOptions configures NewStructType.
type StructTypeOptions struct {
	Super       *StructType
	Immutables  []int // relative indices of immutable fields
	Transparent bool  // equal? compares fields
	// Equal, when set, is a procedure (a b recur) deciding equal? for two
	// instances. recur compares sub-values in the caller's mode.
	Equal Value
}

// NewStructType creates a struct type with the given number of own fields.
func NewStructType(name string, fields int, opts StructTypeOptions) *StructType {
	t := &StructType{
		name:        name,
		super:       opts.Super,
		fields:      fields,
		immutables:  make(map[int]bool, len(opts.Immutables)),
		transparent: opts.Transparent,
		equal:       opts.Equal,
	}
	for _, i := range opts.Immutables {
		t.immutables[i] = true
	}
	return t
}

func (t *StructType) Immutable() bool { return true }
func (t *StructType) String() string  { return "#<struct-type:" + t.name + ">" }

// Name returns the type's name.
func (t *StructType) Name() string { return t.name }

// Super returns the supertype or nil.
func (t *StructType) Super() *StructType { return t.super }

// offset is the absolute index of this type's first own field.
func (t *StructType) offset() int {
	if t.super == nil {
		return 0
	}
	return t.super.TotalFields()
}

// TotalFields counts own and inherited fields.
func (t *StructType) TotalFields() int {
	return t.offset() + t.fields
}

// IsSubtypeOf reports whether t is other or derives from it.
func (t *StructType) IsSubtypeOf(other *StructType) bool {
	for c := t; c != nil; c = c.super {
		if c == other {
			return true
		}
	}
	return false
}

// IsImmutableField reports whether absolute field index abs is immutable.
func (t *StructType) IsImmutableField(abs int) bool {
	for c := t; c != nil; c = c.super {
		off := c.offset()
		if abs >= off && abs < off+c.fields {
			return c.immutables[abs-off]
		}
	}
	return false
}

// Make creates an instance. Inherited fields come first.
func (t *StructType) Make(fields ...Value) (*Struct, error) {
	if len(fields) != t.TotalFields() {
		return nil, arityError("make-"+t.name, "expects %d arguments, given %d", t.TotalFields(), len(fields))
	}
	vals := make([]Value, len(fields))
	copy(vals, fields)
	return &Struct{typ: t, fields: vals}, nil
}

// Accessor returns the accessor for own field i.
func (t *StructType) Accessor(i int) (*StructFieldAccessor, error) {
	if i < 0 || i >= t.fields {
		return nil, raise(ErrIndexOutOfRange, "make-struct-field-accessor", "field %d out of range for %s", i, t.name)
	}
	return &StructFieldAccessor{typ: t, field: i}, nil
}

// Mutator returns the mutator for own field i. Immutable fields have no
// mutator.
func (t *StructType) Mutator(i int) (*StructFieldMutator, error) {
	if i < 0 || i >= t.fields {
		return nil, raise(ErrIndexOutOfRange, "make-struct-field-mutator", "field %d out of range for %s", i, t.name)
	}
	if t.immutables[i] {
		return nil, raise(ErrImmutableTarget, "make-struct-field-mutator", "field %d of %s is immutable", i, t.name)
	}
	return &StructFieldMutator{typ: t, field: i}, nil
}

// Struct is an instance of a StructType.
type Struct struct {
	base
	typ    *StructType
	fields []Value
}

func (s *Struct) StructType() *StructType { return s.typ }
func (s *Struct) String() string          { return show(s, printDepth) }

// Immutable is true when every field is immutable.
func (s *Struct) Immutable() bool {
	for i := range s.fields {
		if !s.typ.IsImmutableField(i) {
			return false
		}
	}
	return true
}

// IsStruct reports whether v is a struct, looking through wrappers.
func IsStruct(v Value) bool {
	_, ok := Base(v).(*Struct)
	return ok
}

// ---------------------------------------------------------------------------
// Field selectors
// ---------------------------------------------------------------------------

// StructFieldAccessor reads one field.
type StructFieldAccessor struct {
	base
	typ   *StructType
	field int
}

func (*StructFieldAccessor) Callable() bool { return true }
func (a *StructFieldAccessor) String() string {
	return fmt.Sprintf("#<procedure:%s-field%d>", a.typ.name, a.field)
}

// AbsoluteIndex is the field's index within an instance.
func (a *StructFieldAccessor) AbsoluteIndex() int { return a.typ.offset() + a.field }

// Owner returns the struct type the field belongs to.
func (a *StructFieldAccessor) Owner() *StructType { return a.typ }

// Call implements Procedure.
func (a *StructFieldAccessor) Call(args []Value, vm *VM, cont Cont) (Thunk, error) {
	who := a.typ.name + "-ref"
	if len(args) != 1 {
		return nil, arityError(who, "expects 1 argument, given %d", len(args))
	}
	if st := args[0].StructType(); st == nil || !st.IsSubtypeOf(a.typ) {
		return nil, typeError(who, "expected %s, given %s", a.typ.name, args[0])
	}
	return structRef(args[0], a.AbsoluteIndex(), vm, cont)
}

// StructFieldMutator writes one field.
type StructFieldMutator struct {
	base
	typ   *StructType
	field int
}

func (*StructFieldMutator) Callable() bool { return true }
func (m *StructFieldMutator) String() string {
	return fmt.Sprintf("#<procedure:set-%s-field%d!>", m.typ.name, m.field)
}

// AbsoluteIndex is the field's index within an instance.
func (m *StructFieldMutator) AbsoluteIndex() int { return m.typ.offset() + m.field }

// Owner returns the struct type the field belongs to.
func (m *StructFieldMutator) Owner() *StructType { return m.typ }

// Call implements Procedure.
func (m *StructFieldMutator) Call(args []Value, vm *VM, cont Cont) (Thunk, error) {
	who := "set-" + m.typ.name + "!"
	if len(args) != 2 {
		return nil, arityError(who, "expects 2 arguments, given %d", len(args))
	}
	if st := args[0].StructType(); st == nil || !st.IsSubtypeOf(m.typ) {
		return nil, typeError(who, "expected %s, given %s", m.typ.name, args[0])
	}
	if m.typ.IsImmutableField(m.AbsoluteIndex()) {
		return nil, raise(ErrImmutableTarget, who, "field %d of %s is immutable", m.field, m.typ.name)
	}
	return structSet(args[0], m.AbsoluteIndex(), args[1], vm, cont)
}

// selectorOwner returns the owning type of an accessor or mutator.
func selectorOwner(sel Value) (*StructType, bool) {
	switch s := sel.(type) {
	case *StructFieldAccessor:
		return s.typ, true
	case *StructFieldMutator:
		return s.typ, true
	}
	return nil, false
}

func selectorIndex(sel Value) int {
	switch s := sel.(type) {
	case *StructFieldAccessor:
		return s.AbsoluteIndex()
	case *StructFieldMutator:
		return s.AbsoluteIndex()
	}
	return -1
}

// ---------------------------------------------------------------------------
// Intercepted field access
// ---------------------------------------------------------------------------

func structRef(v Value, field int, vm *VM, cont Cont) (Thunk, error) {
	switch x := v.(type) {
	case *Struct:
		return ReturnValue(x.fields[field], vm, cont)
	case *StructWrapper:
		h, ok := x.handlerFor(field, false)
		if !ok {
			return structRef(x.target, field, vm, cont)
		}
		return structRef(x.target, field, vm, ThenCont(cont, func(vals []Value, vm *VM, cont Cont) (Thunk, error) {
			orig, err := singleValue("struct-ref", vals)
			if err != nil {
				return nil, err
			}
			vm.metrics.handlerInvoked("struct-ref")
			return Apply(h, []Value{x.target, orig}, vm, ThenCont(cont, func(vals []Value, vm *VM, cont Cont) (Thunk, error) {
				got, err := singleValue(x.who(), vals)
				if err != nil {
					return nil, err
				}
				return checkChaperoneResult(x, x.who(), got, orig, vm, cont)
			}))
		}))
	}
	return nil, typeError("struct-ref", "expected struct, given %s", v)
}

func structSet(v Value, field int, val Value, vm *VM, cont Cont) (Thunk, error) {
	switch x := v.(type) {
	case *Struct:
		x.fields[field] = val
		return ReturnValue(Void, vm, cont)
	case *StructWrapper:
		h, ok := x.handlerFor(field, true)
		if !ok {
			return structSet(x.target, field, val, vm, cont)
		}
		vm.metrics.handlerInvoked("struct-set!")
		return Apply(h, []Value{x.target, val}, vm, ThenCont(cont, func(vals []Value, vm *VM, cont Cont) (Thunk, error) {
			got, err := singleValue(x.who(), vals)
			if err != nil {
				return nil, err
			}
			return checkChaperoneResults(x, x.who(), []Value{got}, []Value{val}, vm, cont, func(vm *VM, cont Cont) (Thunk, error) {
				return structSet(x.target, field, got, vm, cont)
			})
		}))
	}
	return nil, typeError("struct-set!", "expected struct, given %s", v)
}
