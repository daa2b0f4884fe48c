package vm

// ---------------------------------------------------------------------------
// Chaperone result verification
// ---------------------------------------------------------------------------
//
// Chaperone handlers promise to return values that are chaperone-of? the
// values they were given. The promise is only checked when the VM is
// configured with CheckChaperones; otherwise results pass through as-is.

func verifyingChaperone(w Wrapper, vm *VM) bool {
	return w.IsChaperone() && vm.config.CheckChaperones
}

// checkChaperoneResult delivers got to cont once it has been verified
// against orig.
func checkChaperoneResult(w Wrapper, who string, got, orig Value, vm *VM, cont Cont) (Thunk, error) {
	return checkChaperoneResults(w, who, []Value{got}, []Value{orig}, vm, cont, func(vm *VM, cont Cont) (Thunk, error) {
		return ReturnValue(got, vm, cont)
	})
}

// checkChaperoneResults verifies got[i] against orig[i] left to right and
// then runs next.
func checkChaperoneResults(w Wrapper, who string, got, orig []Value, vm *VM, cont Cont, next func(vm *VM, cont Cont) (Thunk, error)) (Thunk, error) {
	if !verifyingChaperone(w, vm) {
		return next(vm, cont)
	}
	return verifyFrom(0, who, got, orig, vm, cont, next)
}

func verifyFrom(i int, who string, got, orig []Value, vm *VM, cont Cont, next func(vm *VM, cont Cont) (Thunk, error)) (Thunk, error) {
	if i == len(got) {
		return next(vm, cont)
	}
	return Equal(got[i], orig[i], ModeChaperoneOf, vm, ThenCont(cont, func(vals []Value, vm *VM, cont Cont) (Thunk, error) {
		if len(vals) != 1 || !IsTruthy(vals[0]) {
			log.Debugf("%s: rejected %s in place of %s", who, got[i], orig[i])
			return nil, raise(ErrChaperoneViolation, who, "non-chaperone result; received %s, expected a chaperone of %s", got[i], orig[i])
		}
		return verifyFrom(i+1, who, got, orig, vm, cont, next)
	}))
}
