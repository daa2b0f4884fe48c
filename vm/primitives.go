package vm

// registerPrimitives binds every primitive this package provides.
func (vm *VM) registerPrimitives() {
	vm.registerControlPrimitives()
	vm.registerMarkPrimitives()
	vm.registerVectorPrimitives()
	vm.registerBoxPrimitives()
	vm.registerEqualPrimitives()
	vm.registerImpersonatorPrimitives()
}

func (vm *VM) registerControlPrimitives() {
	vm.define(NewPrimitive("values", 0, Variadic, func(args []Value, vm *VM, cont Cont) (Thunk, error) {
		return ReturnMultiVals(args, vm, cont)
	}))

	callcc := NewPrimitive("call/cc", 1, 1, func(args []Value, vm *VM, cont Cont) (Thunk, error) {
		return CallCC(args[0], vm, cont)
	})
	vm.define(callcc)
	vm.defineValue("call-with-current-continuation", callcc)

	vm.define(NewSimplePrimitive("procedure?", 1, 1, func(args []Value) (Value, error) {
		return FromBool(IsProcedure(args[0])), nil
	}))
	vm.define(NewSimplePrimitive("vector?", 1, 1, func(args []Value) (Value, error) {
		return FromBool(IsVector(args[0])), nil
	}))
	vm.define(NewSimplePrimitive("box?", 1, 1, func(args []Value) (Value, error) {
		return FromBool(IsBox(args[0])), nil
	}))
	vm.define(NewSimplePrimitive("struct?", 1, 1, func(args []Value) (Value, error) {
		return FromBool(IsStruct(args[0])), nil
	}))
	vm.define(NewSimplePrimitive("cons", 2, 2, func(args []Value) (Value, error) {
		return Cons(args[0], args[1]), nil
	}))
	vm.define(NewSimplePrimitive("mcons", 2, 2, func(args []Value) (Value, error) {
		return MCons(args[0], args[1]), nil
	}))
}
