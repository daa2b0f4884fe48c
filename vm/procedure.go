package vm

import "fmt"

// Procedure is any applicable value.
type Procedure interface {
	Value
	Call(args []Value, vm *VM, cont Cont) (Thunk, error)
}

// Apply applies f to args, delivering its results to cont.
func Apply(f Value, args []Value, vm *VM, cont Cont) (Thunk, error) {
	p, ok := f.(Procedure)
	if !ok || !f.Callable() {
		return nil, raise(ErrNotCallable, "application", "not a procedure: %s", f.String())
	}
	vm.profiler.RecordInvocation(p)
	return p.Call(args, vm, cont)
}

// IsProcedure reports whether v can be applied, looking through wrappers.
func IsProcedure(v Value) bool {
	_, ok := v.(Procedure)
	return ok && v.Callable()
}

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// Variadic marks a primitive without an upper arity bound.
const Variadic = -1

// PrimitiveFunc is the body of a primitive in continuation-passing style.
type PrimitiveFunc func(args []Value, vm *VM, cont Cont) (Thunk, error)

// Primitive is a procedure implemented in Go.
type Primitive struct {
	base
	name     string
	min, max int
	fn       PrimitiveFunc
}

// NewPrimitive creates a primitive accepting between min and max
// arguments (max may be Variadic).
func NewPrimitive(name string, min, max int, fn PrimitiveFunc) *Primitive {
	return &Primitive{name: name, min: min, max: max, fn: fn}
}

// NewSimplePrimitive creates a primitive that never runs user code and
// returns exactly one value.
func NewSimplePrimitive(name string, min, max int, fn func(args []Value) (Value, error)) *Primitive {
	return NewPrimitive(name, min, max, func(args []Value, vm *VM, cont Cont) (Thunk, error) {
		v, err := fn(args)
		if err != nil {
			return nil, err
		}
		return ReturnValue(v, vm, cont)
	})
}

func (*Primitive) Callable() bool   { return true }
func (p *Primitive) String() string { return fmt.Sprintf("#<procedure:%s>", p.name) }

// Name returns the primitive's name.
func (p *Primitive) Name() string { return p.name }

// Call implements Procedure.
func (p *Primitive) Call(args []Value, vm *VM, cont Cont) (Thunk, error) {
	if len(args) < p.min || (p.max != Variadic && len(args) > p.max) {
		return nil, arityError(p.name, "%s, given %d", p.arityString(), len(args))
	}
	return p.fn(args, vm, cont)
}

func (p *Primitive) arityString() string {
	switch {
	case p.max == Variadic:
		return fmt.Sprintf("expects at least %d arguments", p.min)
	case p.min == p.max:
		return fmt.Sprintf("expects %d arguments", p.min)
	default:
		return fmt.Sprintf("expects %d to %d arguments", p.min, p.max)
	}
}
