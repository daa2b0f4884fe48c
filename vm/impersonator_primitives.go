package vm

// ---------------------------------------------------------------------------
// Wrapper construction
// ---------------------------------------------------------------------------
//
// Every factory takes its required arguments followed by optional
// (descriptor, value) property pairs. All validation happens before the
// wrapper is allocated, so a failed construction leaves nothing behind.

// findPropStart returns the index of the first property descriptor.
func findPropStart(args []Value) int {
	for i, v := range args {
		if _, ok := v.(*PropertyDescriptor); ok {
			return i
		}
	}
	return len(args)
}

// unpackProperties splits args into the required prefix and a property
// table built from the trailing pairs.
func unpackProperties(args []Value, who string) ([]Value, *PropertyTable, error) {
	idx := findPropStart(args)
	required, props := args[:idx], args[idx:]
	if len(props)%2 != 0 {
		return nil, nil, arityError(who, "not all properties have corresponding values")
	}
	keys := make([]*PropertyDescriptor, 0, len(props)/2)
	vals := make([]Value, 0, len(props)/2)
	for i := 0; i < len(props); i += 2 {
		k, ok := props[i].(*PropertyDescriptor)
		if !ok {
			return nil, nil, typeError(who, "%s is not a property descriptor", props[i])
		}
		keys = append(keys, k)
		vals = append(vals, props[i+1])
	}
	return required, NewPropertyTable(keys, vals), nil
}

func requireCallable(who, what string, v Value) error {
	if !v.Callable() {
		return raise(ErrNotCallable, who, "%s is not a procedure: %s", what, v)
	}
	return nil
}

func (vm *VM) created(w Wrapper) Value {
	vm.metrics.wrapperCreated(w)
	log.Debugf("created %s %s wrapper (depth %d, %d properties)", w.Kind(), w.Strength(), Depth(w), w.Properties().Len())
	return w
}

// MakeProcedureWrapper implements impersonate-procedure and
// chaperone-procedure: (proc check prop-pairs ...).
func (vm *VM) MakeProcedureWrapper(strength Strength, args []Value) (Value, error) {
	who := "impersonate-procedure"
	if strength == Chaperone {
		who = "chaperone-procedure"
	}
	args, props, err := unpackProperties(args, who)
	if err != nil {
		return nil, err
	}
	if len(args) != 2 {
		return nil, arityError(who, "not given 2 required arguments")
	}
	proc, check := args[0], args[1]
	if !IsProcedure(proc) {
		return nil, typeError(who, "first argument not a procedure: %s", proc)
	}
	if err := requireCallable(who, "handler", check); err != nil {
		return nil, err
	}
	vm.profiler.MarkNonLoop(check)
	return vm.created(&ProcedureWrapper{
		wrapper: wrapper{target: proc, strength: strength, props: props},
		check:   check,
	}), nil
}

// MakeVectorWrapper implements impersonate-vector and chaperone-vector:
// (vec ref-handler set-handler prop-pairs ...).
func (vm *VM) MakeVectorWrapper(strength Strength, args []Value) (Value, error) {
	who := "impersonate-vector"
	if strength == Chaperone {
		who = "chaperone-vector"
	}
	args, props, err := unpackProperties(args, who)
	if err != nil {
		return nil, err
	}
	if len(args) != 3 {
		return nil, arityError(who, "not given 3 required arguments")
	}
	vec, ref, set := args[0], args[1], args[2]
	if !IsVector(vec) {
		return nil, typeError(who, "first argument not a vector: %s", vec)
	}
	if err := requireCallable(who, "ref handler", ref); err != nil {
		return nil, err
	}
	if err := requireCallable(who, "set handler", set); err != nil {
		return nil, err
	}
	if strength == Impersonator && vec.Immutable() {
		return nil, raise(ErrImmutableTarget, who, "cannot impersonate immutable vector")
	}
	vm.profiler.MarkNonLoop(ref)
	vm.profiler.MarkNonLoop(set)
	return vm.created(&VectorWrapper{
		wrapper: wrapper{target: vec, strength: strength, props: props},
		ref:     ref,
		set:     set,
	}), nil
}

// MakeBoxWrapper implements impersonate-box and chaperone-box:
// (box unbox-handler set-handler prop-pairs ...).
func (vm *VM) MakeBoxWrapper(strength Strength, args []Value) (Value, error) {
	who := "impersonate-box"
	if strength == Chaperone {
		who = "chaperone-box"
	}
	args, props, err := unpackProperties(args, who)
	if err != nil {
		return nil, err
	}
	if len(args) != 3 {
		return nil, arityError(who, "not given 3 required arguments")
	}
	box, unbox, set := args[0], args[1], args[2]
	if !IsBox(box) {
		return nil, typeError(who, "first argument not a box: %s", box)
	}
	if err := requireCallable(who, "unbox handler", unbox); err != nil {
		return nil, err
	}
	if err := requireCallable(who, "set-box! handler", set); err != nil {
		return nil, err
	}
	if strength == Impersonator && box.Immutable() {
		return nil, raise(ErrImmutableTarget, who, "cannot impersonate immutable box")
	}
	vm.profiler.MarkNonLoop(unbox)
	vm.profiler.MarkNonLoop(set)
	return vm.created(&BoxWrapper{
		wrapper: wrapper{target: box, strength: strength, props: props},
		unbox:   unbox,
		set:     set,
	}), nil
}

// MakeStructWrapper implements impersonate-struct and chaperone-struct:
// (struct [selector handler] ... prop-pairs ...). With no selector pairs
// the struct itself is returned.
//
// Only the impersonator variant refuses selectors on immutable fields.
// The chaperone variant accepts them and relies on the chaperone contract.
func (vm *VM) MakeStructWrapper(strength Strength, args []Value) (Value, error) {
	who := "impersonate-struct"
	if strength == Chaperone {
		who = "chaperone-struct"
	}
	args, props, err := unpackProperties(args, who)
	if err != nil {
		return nil, err
	}
	if len(args) < 1 || len(args)%2 != 1 {
		return nil, arityError(who, "arity mismatch")
	}
	if len(args) == 1 {
		return args[0], nil
	}

	target, rest := args[0], args[1:]
	st := target.StructType()
	if st == nil || !IsStruct(target) {
		return nil, typeError(who, "not given struct: %s", target)
	}

	overrides := make([]Value, 0, len(rest)/2)
	handlers := make([]Value, 0, len(rest)/2)
	for i := 0; i < len(rest); i += 2 {
		overrides = append(overrides, rest[i])
		handlers = append(handlers, rest[i+1])
	}

	for _, sel := range overrides {
		owner, ok := selectorOwner(sel)
		if !ok || !st.IsSubtypeOf(owner) {
			return nil, raise(ErrInvalidFieldSelector, who, "not given valid field accessor: %s", sel)
		}
		if strength == Impersonator && st.IsImmutableField(selectorIndex(sel)) {
			return nil, raise(ErrImmutableTarget, who, "cannot impersonate immutable field")
		}
	}
	for _, h := range handlers {
		if err := requireCallable(who, "supplied handler", h); err != nil {
			return nil, err
		}
	}

	return vm.created(&StructWrapper{
		wrapper:   wrapper{target: target, strength: strength, props: props},
		overrides: overrides,
		handlers:  handlers,
	}), nil
}

// MakeContinuationMarkKeyWrapper implements the continuation-mark-key
// factories: (key handler prop-pairs ...). Interception of marks through
// a key is not implemented yet; the key is returned unchanged.
func (vm *VM) MakeContinuationMarkKeyWrapper(strength Strength, args []Value) (Value, error) {
	who := "impersonate-continuation-mark-key"
	if strength == Chaperone {
		who = "chaperone-continuation-mark-key"
	}
	args, _, err := unpackProperties(args, who)
	if err != nil {
		return nil, err
	}
	if len(args) != 2 {
		return nil, arityError(who, "not given 2 required arguments")
	}
	key, ok := args[0].(*ContinuationMarkKey)
	if !ok {
		return nil, typeError(who, "expected continuation-mark-key, given %s", args[0])
	}
	log.Debugf("%s: mark interception not implemented, returning key", who)
	return key, nil
}

// ---------------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------------

type factory func(vm *VM, strength Strength, args []Value) (Value, error)

func (vm *VM) registerImpersonatorPrimitives() {
	factories := []struct {
		impName, chpName string
		make             factory
	}{
		{"impersonate-procedure", "chaperone-procedure", (*VM).MakeProcedureWrapper},
		{"impersonate-vector", "chaperone-vector", (*VM).MakeVectorWrapper},
		{"impersonate-struct", "chaperone-struct", (*VM).MakeStructWrapper},
		{"impersonate-box", "chaperone-box", (*VM).MakeBoxWrapper},
		{"impersonate-continuation-mark-key", "chaperone-continuation-mark-key", (*VM).MakeContinuationMarkKeyWrapper},
	}
	for _, f := range factories {
		build := f.make
		vm.define(NewPrimitive(f.impName, 1, Variadic, func(args []Value, vm *VM, cont Cont) (Thunk, error) {
			w, err := build(vm, Impersonator, args)
			if err != nil {
				return nil, err
			}
			return ReturnValue(w, vm, cont)
		}))
		vm.define(NewPrimitive(f.chpName, 1, Variadic, func(args []Value, vm *VM, cont Cont) (Thunk, error) {
			w, err := build(vm, Chaperone, args)
			if err != nil {
				return nil, err
			}
			return ReturnValue(w, vm, cont)
		}))
	}

	// Hash tables cannot be wrapped yet; both factories return the table.
	for _, name := range []string{"chaperone-hash", "impersonate-hash"} {
		vm.define(NewSimplePrimitive(name, 1, Variadic, func(args []Value) (Value, error) {
			return args[0], nil
		}))
	}

	vm.define(NewSimplePrimitive("impersonator?", 1, 1, func(args []Value) (Value, error) {
		return FromBool(args[0].IsImpersonator()), nil
	}))
	vm.define(NewSimplePrimitive("chaperone?", 1, 1, func(args []Value) (Value, error) {
		return FromBool(args[0].IsChaperone()), nil
	}))

	vm.define(NewPrimitive("make-impersonator-property", 1, 1, func(args []Value, vm *VM, cont Cont) (Thunk, error) {
		sym, ok := args[0].(*Symbol)
		if !ok {
			return nil, typeError("make-impersonator-property", "expected symbol, given %s", args[0])
		}
		d, pred, acc := MakeProperty(sym.Name())
		return ReturnMultiVals([]Value{d, pred, acc}, vm, cont)
	}))

	vm.defineValue("impersonator-prop:application-mark", ApplicationMark)
}
