package vm

import (
	"testing"
)

func TestMakeImpersonatorProperty(t *testing.T) {
	vm := NewVM()
	desc, pred, acc := makeProperty(t, vm, "color")

	if desc.Name() != "color" {
		t.Errorf("Name = %q, want %q", desc.Name(), "color")
	}
	if !IsProcedure(pred) || !IsProcedure(acc) {
		t.Error("predicate and accessor should be procedures")
	}
	wantKind(t, callErr(t, vm, "make-impersonator-property", NewString("color")), ErrTypeMismatch)
}

func TestPropertyDescriptorsAreDistinct(t *testing.T) {
	vm := NewVM()
	d1, p1, a1 := makeProperty(t, vm, "p")
	d2, p2, _ := makeProperty(t, vm, "p")

	if d1 == d2 || d1.ID() == d2.ID() {
		t.Fatal("descriptors with the same name should be distinct")
	}

	w := call(t, vm, "chaperone-vector", NewVector(), lastArg, lastArg, d1, Fixnum(1))

	got, err := vm.Call1(p1, w)
	if err != nil {
		t.Fatalf("p1?: %v", err)
	}
	wantBool(t, "p1?", got, true)

	got, err = vm.Call1(p2, w)
	if err != nil {
		t.Fatalf("p2?: %v", err)
	}
	wantBool(t, "p2?", got, false)

	got, err = vm.Call1(a1, w)
	if err != nil {
		t.Fatalf("p1 accessor: %v", err)
	}
	if got != Fixnum(1) {
		t.Errorf("p1 accessor = %s, want 1", got)
	}
}

func TestPropertyLastWrapWins(t *testing.T) {
	vm := NewVM()
	desc, _, acc := makeProperty(t, vm, "p")
	other, _, otherAcc := makeProperty(t, vm, "q")

	w1 := call(t, vm, "chaperone-box", NewBox(Null), lastArg, lastArg, desc, Fixnum(1), other, Fixnum(9))
	w2 := call(t, vm, "impersonate-box", w1, lastArg, lastArg, desc, Fixnum(2))

	got, err := vm.Call1(acc, w2)
	if err != nil {
		t.Fatalf("accessor: %v", err)
	}
	if got != Fixnum(2) {
		t.Errorf("outer lookup = %s, want 2", got)
	}

	// The outer layer does not carry q; lookup continues inward.
	got, err = vm.Call1(otherAcc, w2)
	if err != nil {
		t.Fatalf("accessor: %v", err)
	}
	if got != Fixnum(9) {
		t.Errorf("inner lookup = %s, want 9", got)
	}
}

func TestPropertyRepeatedKeyKeepsLastValue(t *testing.T) {
	vm := NewVM()
	desc, _, acc := makeProperty(t, vm, "p")

	w := call(t, vm, "chaperone-procedure", add, identity, desc, Fixnum(1), desc, Fixnum(2))
	got, err := vm.Call1(acc, w)
	if err != nil {
		t.Fatalf("accessor: %v", err)
	}
	if got != Fixnum(2) {
		t.Errorf("accessor = %s, want 2", got)
	}
	if n := w.(Wrapper).Properties().Len(); n != 1 {
		t.Errorf("property count = %d, want 1", n)
	}
}

func TestPropertyAccessorFailure(t *testing.T) {
	vm := NewVM()
	_, pred, acc := makeProperty(t, vm, "p")
	plain := NewVector()

	got, err := vm.Call1(pred, plain)
	if err != nil {
		t.Fatalf("predicate: %v", err)
	}
	wantBool(t, "p? on unwrapped value", got, false)

	_, err = vm.Call(acc, plain)
	wantKind(t, err, ErrLookupFailure)

	got, err = vm.Call1(acc, plain, Fixnum(0))
	if err != nil {
		t.Fatalf("accessor with default: %v", err)
	}
	if got != Fixnum(0) {
		t.Errorf("accessor default = %s, want 0", got)
	}

	thunk := fn("default", func(args []Value) (Value, error) { return Intern("none"), nil })
	got, err = vm.Call1(acc, plain, thunk)
	if err != nil {
		t.Fatalf("accessor with thunk: %v", err)
	}
	if got != Value(Intern("none")) {
		t.Errorf("accessor thunk default = %s, want none", got)
	}

	_, err = vm.Call(acc)
	wantKind(t, err, ErrArityMismatch)
}

func TestPropertyTableNilSafe(t *testing.T) {
	var pt *PropertyTable
	if pt.Len() != 0 {
		t.Error("nil table should be empty")
	}
	if _, ok := pt.Get(ApplicationMark); ok {
		t.Error("nil table should have no entries")
	}
	pt.Each(func(*PropertyDescriptor, Value) { t.Error("nil table should not iterate") })
}
