package vm

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// identity returns all of its arguments unchanged. It serves as a
// procedure check handler.
var identity = NewPrimitive("identity", 0, Variadic, func(args []Value, vm *VM, cont Cont) (Thunk, error) {
	return ReturnMultiVals(args, vm, cont)
})

// lastArg returns its final argument. It serves as a vector, box or
// struct handler that changes nothing.
var lastArg = NewSimplePrimitive("last-arg", 1, Variadic, func(args []Value) (Value, error) {
	return args[len(args)-1], nil
})

func fn(name string, body func(args []Value) (Value, error)) *Primitive {
	return NewSimplePrimitive(name, 0, Variadic, body)
}

func call(t *testing.T, vm *VM, name string, args ...Value) Value {
	t.Helper()
	vals, err := vm.CallNamed(name, args...)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	if len(vals) != 1 {
		t.Fatalf("%s: got %d values, want 1", name, len(vals))
	}
	return vals[0]
}

func callErr(t *testing.T, vm *VM, name string, args ...Value) error {
	t.Helper()
	_, err := vm.CallNamed(name, args...)
	if err == nil {
		t.Fatalf("%s: expected an error", name)
	}
	return err
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Errorf("error = %v, want kind %v", err, kind)
	}
	var e *Error
	if !errors.As(err, &e) {
		t.Errorf("error %v is not a *vm.Error", err)
	}
}

func wantBool(t *testing.T, what string, got Value, want bool) {
	t.Helper()
	if got != FromBool(want) {
		t.Errorf("%s = %s, want %s", what, got, FromBool(want))
	}
}

// pointType is a transparent two-field struct type; field 1 is immutable.
func pointType() *StructType {
	return NewStructType("point", 2, StructTypeOptions{Immutables: []int{1}, Transparent: true})
}

func mustMake(t *testing.T, st *StructType, fields ...Value) *Struct {
	t.Helper()
	s, err := st.Make(fields...)
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	return s
}

func makeProperty(t *testing.T, vm *VM, name string) (*PropertyDescriptor, Value, Value) {
	t.Helper()
	vals, err := vm.CallNamed("make-impersonator-property", Intern(name))
	if err != nil {
		t.Fatalf("make-impersonator-property: %v", err)
	}
	if len(vals) != 3 {
		t.Fatalf("make-impersonator-property returned %d values", len(vals))
	}
	return vals[0].(*PropertyDescriptor), vals[1], vals[2]
}

func accessor(t *testing.T, st *StructType, i int) *StructFieldAccessor {
	t.Helper()
	a, err := st.Accessor(i)
	if err != nil {
		t.Fatalf("Accessor(%d): %v", i, err)
	}
	return a
}
