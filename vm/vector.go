package vm

// Vector is a fixed-length vector of cells.
type Vector struct {
	base
	items     []Value
	immutable bool
}

// NewVector returns a mutable vector holding vals.
func NewVector(vals ...Value) *Vector {
	items := make([]Value, len(vals))
	copy(items, vals)
	return &Vector{items: items}
}

// MakeVector returns a mutable vector of n copies of fill.
func MakeVector(n int, fill Value) *Vector {
	items := make([]Value, n)
	for i := range items {
		items[i] = fill
	}
	return &Vector{items: items}
}

// NewImmutableVector returns an immutable vector holding vals.
func NewImmutableVector(vals ...Value) *Vector {
	v := NewVector(vals...)
	v.immutable = true
	return v
}

func (v *Vector) Immutable() bool { return v.immutable }
func (v *Vector) String() string  { return show(v, printDepth) }

// Len returns the number of cells.
func (v *Vector) Len() int { return len(v.items) }

// IsVector reports whether v is a vector, looking through wrappers.
func IsVector(v Value) bool {
	_, ok := Base(v).(*Vector)
	return ok
}

// VectorLength returns the length of a possibly wrapped vector. Length is
// never intercepted.
func VectorLength(v Value) (int, error) {
	vec, ok := Base(v).(*Vector)
	if !ok {
		return 0, typeError("vector-length", "expected vector, given %s", v)
	}
	return vec.Len(), nil
}

func checkIndex(who string, v Value, i int) error {
	n, err := VectorLength(v)
	if err != nil {
		return typeError(who, "expected vector, given %s", v)
	}
	if i < 0 || i >= n {
		return raise(ErrIndexOutOfRange, who, "index %d out of range [0, %d) for %s", i, n, v)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Intercepted access
// ---------------------------------------------------------------------------

// VectorRef reads cell i of v. Each wrapper layer's ref handler sees the
// value produced by the layers inside it, innermost first.
func VectorRef(v Value, i int, vm *VM, cont Cont) (Thunk, error) {
	if err := checkIndex("vector-ref", v, i); err != nil {
		return nil, err
	}
	return vectorRef(v, i, vm, cont)
}

func vectorRef(v Value, i int, vm *VM, cont Cont) (Thunk, error) {
	switch x := v.(type) {
	case *Vector:
		return ReturnValue(x.items[i], vm, cont)
	case *VectorWrapper:
		return vectorRef(x.target, i, vm, ThenCont(cont, func(vals []Value, vm *VM, cont Cont) (Thunk, error) {
			orig, err := singleValue("vector-ref", vals)
			if err != nil {
				return nil, err
			}
			vm.metrics.handlerInvoked("vector-ref")
			return Apply(x.ref, []Value{x.target, Fixnum(i), orig}, vm, ThenCont(cont, func(vals []Value, vm *VM, cont Cont) (Thunk, error) {
				got, err := singleValue(x.who(), vals)
				if err != nil {
					return nil, err
				}
				return checkChaperoneResult(x, x.who(), got, orig, vm, cont)
			}))
		}))
	}
	return nil, typeError("vector-ref", "expected vector, given %s", v)
}

// VectorSet writes val into cell i of v. Each wrapper layer's set handler
// runs before the write reaches the next layer in, outermost first. Bounds
// and mutability are checked against the base before any handler runs.
func VectorSet(v Value, i int, val Value, vm *VM, cont Cont) (Thunk, error) {
	if err := checkIndex("vector-set!", v, i); err != nil {
		return nil, err
	}
	if b, ok := Base(v).(*Vector); ok && b.immutable {
		return nil, raise(ErrImmutableTarget, "vector-set!", "cannot mutate immutable vector %s", b)
	}
	return vectorSet(v, i, val, vm, cont)
}

func vectorSet(v Value, i int, val Value, vm *VM, cont Cont) (Thunk, error) {
	switch x := v.(type) {
	case *Vector:
		x.items[i] = val
		return ReturnValue(Void, vm, cont)
	case *VectorWrapper:
		vm.metrics.handlerInvoked("vector-set!")
		return Apply(x.set, []Value{x.target, Fixnum(i), val}, vm, ThenCont(cont, func(vals []Value, vm *VM, cont Cont) (Thunk, error) {
			got, err := singleValue(x.who(), vals)
			if err != nil {
				return nil, err
			}
			return checkChaperoneResults(x, x.who(), []Value{got}, []Value{val}, vm, cont, func(vm *VM, cont Cont) (Thunk, error) {
				return vectorSet(x.target, i, got, vm, cont)
			})
		}))
	}
	return nil, typeError("vector-set!", "expected vector, given %s", v)
}

func (vm *VM) registerVectorPrimitives() {
	vm.define(NewSimplePrimitive("vector", 0, Variadic, func(args []Value) (Value, error) {
		return NewVector(args...), nil
	}))

	vm.define(NewSimplePrimitive("vector-immutable", 0, Variadic, func(args []Value) (Value, error) {
		return NewImmutableVector(args...), nil
	}))

	vm.define(NewSimplePrimitive("vector-length", 1, 1, func(args []Value) (Value, error) {
		n, err := VectorLength(args[0])
		if err != nil {
			return nil, err
		}
		return Fixnum(n), nil
	}))

	vm.define(NewPrimitive("vector-ref", 2, 2, func(args []Value, vm *VM, cont Cont) (Thunk, error) {
		i, err := indexArg("vector-ref", args[1])
		if err != nil {
			return nil, err
		}
		return VectorRef(args[0], i, vm, cont)
	}))

	vm.define(NewPrimitive("vector-set!", 3, 3, func(args []Value, vm *VM, cont Cont) (Thunk, error) {
		i, err := indexArg("vector-set!", args[1])
		if err != nil {
			return nil, err
		}
		return VectorSet(args[0], i, args[2], vm, cont)
	}))
}

func indexArg(who string, v Value) (int, error) {
	n, ok := v.(Fixnum)
	if !ok {
		return 0, typeError(who, "expected exact integer index, given %s", v)
	}
	return int(n), nil
}
