package vm

// Box is a single mutable cell.
type Box struct {
	base
	value     Value
	immutable bool
}

// NewBox returns a mutable box holding v.
func NewBox(v Value) *Box { return &Box{value: v} }

// NewImmutableBox returns an immutable box holding v.
func NewImmutableBox(v Value) *Box { return &Box{value: v, immutable: true} }

func (b *Box) Immutable() bool { return b.immutable }
func (b *Box) String() string  { return show(b, printDepth) }

// IsBox reports whether v is a box, looking through wrappers.
func IsBox(v Value) bool {
	_, ok := Base(v).(*Box)
	return ok
}

// Unbox reads the contents of a possibly wrapped box.
func Unbox(v Value, vm *VM, cont Cont) (Thunk, error) {
	switch x := v.(type) {
	case *Box:
		return ReturnValue(x.value, vm, cont)
	case *BoxWrapper:
		return Unbox(x.target, vm, ThenCont(cont, func(vals []Value, vm *VM, cont Cont) (Thunk, error) {
			orig, err := singleValue("unbox", vals)
			if err != nil {
				return nil, err
			}
			vm.metrics.handlerInvoked("unbox")
			return Apply(x.unbox, []Value{x.target, orig}, vm, ThenCont(cont, func(vals []Value, vm *VM, cont Cont) (Thunk, error) {
				got, err := singleValue(x.who(), vals)
				if err != nil {
					return nil, err
				}
				return checkChaperoneResult(x, x.who(), got, orig, vm, cont)
			}))
		}))
	}
	return nil, typeError("unbox", "expected box, given %s", v)
}

// SetBox writes val into a possibly wrapped box. An immutable base is
// rejected before any handler runs.
func SetBox(v Value, val Value, vm *VM, cont Cont) (Thunk, error) {
	if b, ok := Base(v).(*Box); ok && b.immutable {
		return nil, raise(ErrImmutableTarget, "set-box!", "cannot mutate immutable box %s", b)
	}
	return setBox(v, val, vm, cont)
}

func setBox(v Value, val Value, vm *VM, cont Cont) (Thunk, error) {
	switch x := v.(type) {
	case *Box:
		x.value = val
		return ReturnValue(Void, vm, cont)
	case *BoxWrapper:
		vm.metrics.handlerInvoked("set-box!")
		return Apply(x.set, []Value{x.target, val}, vm, ThenCont(cont, func(vals []Value, vm *VM, cont Cont) (Thunk, error) {
			got, err := singleValue(x.who(), vals)
			if err != nil {
				return nil, err
			}
			return checkChaperoneResults(x, x.who(), []Value{got}, []Value{val}, vm, cont, func(vm *VM, cont Cont) (Thunk, error) {
				return setBox(x.target, got, vm, cont)
			})
		}))
	}
	return nil, typeError("set-box!", "expected box, given %s", v)
}

func (vm *VM) registerBoxPrimitives() {
	vm.define(NewSimplePrimitive("box", 1, 1, func(args []Value) (Value, error) {
		return NewBox(args[0]), nil
	}))
	vm.define(NewSimplePrimitive("box-immutable", 1, 1, func(args []Value) (Value, error) {
		return NewImmutableBox(args[0]), nil
	}))
	vm.define(NewPrimitive("unbox", 1, 1, func(args []Value, vm *VM, cont Cont) (Thunk, error) {
		return Unbox(args[0], vm, cont)
	}))
	vm.define(NewPrimitive("set-box!", 2, 2, func(args []Value, vm *VM, cont Cont) (Thunk, error) {
		return SetBox(args[0], args[1], vm, cont)
	}))
}
