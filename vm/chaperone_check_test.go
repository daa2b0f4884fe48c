package vm

import (
	"testing"
)

func checkingVM() *VM {
	return NewVMWithConfig(Config{CheckChaperones: true})
}

var replaceWith99 = NewSimplePrimitive("replace", 1, Variadic, func(args []Value) (Value, error) {
	return Fixnum(99), nil
})

func TestChaperoneVerificationOffByDefault(t *testing.T) {
	vm := NewVM()
	w := call(t, vm, "chaperone-vector", NewVector(Fixnum(1)), replaceWith99, lastArg)
	if got := call(t, vm, "vector-ref", w, Fixnum(0)); got != Fixnum(99) {
		t.Errorf("vector-ref = %s, want 99 when verification is off", got)
	}
}

func TestChaperoneVerificationRejectsReplacement(t *testing.T) {
	vm := checkingVM()
	st := pointType()
	s := mustMake(t, st, Fixnum(1), Fixnum(2))
	setX, _ := st.Mutator(0)

	vec := call(t, vm, "chaperone-vector", NewVector(Fixnum(1)), replaceWith99, replaceWith99)
	wantKind(t, callErr(t, vm, "vector-ref", vec, Fixnum(0)), ErrChaperoneViolation)
	wantKind(t, callErr(t, vm, "vector-set!", vec, Fixnum(0), Fixnum(5)), ErrChaperoneViolation)

	box := NewBox(Fixnum(1))
	bw := call(t, vm, "chaperone-box", box, replaceWith99, replaceWith99)
	wantKind(t, callErr(t, vm, "unbox", bw), ErrChaperoneViolation)
	wantKind(t, callErr(t, vm, "set-box!", bw, Fixnum(5)), ErrChaperoneViolation)
	if box.value != Fixnum(1) {
		t.Errorf("box = %s, want 1 after a rejected write", box.value)
	}

	sw := call(t, vm, "chaperone-struct", s, accessor(t, st, 0), replaceWith99, setX, replaceWith99)
	_, err := vm.Call(accessor(t, st, 0), sw)
	wantKind(t, err, ErrChaperoneViolation)
	_, err = vm.Call(setX, sw, Fixnum(5))
	wantKind(t, err, ErrChaperoneViolation)

	pw := call(t, vm, "chaperone-procedure", add, replaceWith99)
	_, err = vm.Call(pw, Fixnum(1))
	wantKind(t, err, ErrChaperoneViolation)
}

func TestChaperoneVerificationAcceptsChaperones(t *testing.T) {
	vm := checkingVM()
	inner := NewVector(Fixnum(1))
	outer := NewVector(inner)

	rewrap := NewPrimitive("rewrap", 3, 3, func(args []Value, vm *VM, cont Cont) (Thunk, error) {
		w, err := vm.MakeVectorWrapper(Chaperone, []Value{args[2], lastArg, lastArg})
		if err != nil {
			return nil, err
		}
		return ReturnValue(w, vm, cont)
	})
	w := call(t, vm, "chaperone-vector", outer, rewrap, lastArg)

	got := call(t, vm, "vector-ref", w, Fixnum(0))
	if Base(got) != Value(inner) || !got.IsChaperone() {
		t.Errorf("vector-ref = %s, want a chaperone of the inner vector", got)
	}
	call(t, vm, "vector-set!", w, Fixnum(0), Fixnum(3))
	if outer.items[0] != Fixnum(3) {
		t.Errorf("stored = %s, want 3", outer.items[0])
	}
}

func TestImpersonatorsAreNotVerified(t *testing.T) {
	vm := checkingVM()
	w := call(t, vm, "impersonate-vector", NewVector(Fixnum(1)), replaceWith99, lastArg)
	if got := call(t, vm, "vector-ref", w, Fixnum(0)); got != Fixnum(99) {
		t.Errorf("vector-ref = %s, want 99", got)
	}
}
